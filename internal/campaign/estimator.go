package campaign

import (
	"context"
	"log"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/unclebandit/clinic-booking/internal/model"
)

// Estimator gives a display-only recipient estimate for an audience. It never
// decides who receives a campaign.
type Estimator interface {
	Estimate(ctx context.Context, audience model.Audience) int
}

// StaticEstimator looks estimates up in a fixed table. Unknown audiences
// estimate to zero.
type StaticEstimator map[model.Audience]int

func (s StaticEstimator) Estimate(_ context.Context, audience model.Audience) int {
	return s[audience]
}

var (
	PortalEstimates = StaticEstimator{
		model.AudienceAll:      1000,
		model.AudienceActive:   650,
		model.AudienceInactive: 350,
		model.AudienceNew:      200,
	}
	DashboardEstimates = StaticEstimator{
		model.AudienceAll:      30000,
		model.AudienceActive:   15000,
		model.AudienceInactive: 10000,
		model.AudienceNew:      2000,
	}
)

// EstimateTable picks a static table by name; anything but "dashboard" is
// the portal table.
func EstimateTable(name string) StaticEstimator {
	if name == "dashboard" {
		return DashboardEstimates
	}
	return PortalEstimates
}

// AudienceSizer reports the real size of a segment.
type AudienceSizer interface {
	AudienceSize(ctx context.Context, audience model.Audience) (*model.AudienceSize, error)
}

// RemoteEstimator asks the campaign service for segment sizes and caches the
// answers. Failed lookups fall back to a static table and are not cached.
type RemoteEstimator struct {
	API      AudienceSizer
	Fallback StaticEstimator
	cache    *cache.Cache
}

func NewRemoteEstimator(api AudienceSizer, fallback StaticEstimator, ttl time.Duration) *RemoteEstimator {
	return &RemoteEstimator{
		API:      api,
		Fallback: fallback,
		cache:    cache.New(ttl, 2*ttl),
	}
}

func (r *RemoteEstimator) Estimate(ctx context.Context, audience model.Audience) int {
	if !audience.Valid() {
		return 0
	}
	if n, ok := r.cache.Get(string(audience)); ok {
		return n.(int)
	}

	size, err := r.API.AudienceSize(ctx, audience)
	if err != nil {
		log.Printf("⚠️ audience size for %s unavailable, using static estimate: %v\n", audience, err)
		return r.Fallback.Estimate(ctx, audience)
	}

	r.cache.Set(string(audience), size.EstimatedCount, cache.DefaultExpiration)
	return size.EstimatedCount
}

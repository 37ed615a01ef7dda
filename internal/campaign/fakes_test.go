package campaign_test

import (
	"context"
	"strconv"
	"sync"

	"github.com/unclebandit/clinic-booking/internal/model"
)

type createCall struct {
	Draft model.CampaignDraft
	Key   string
}

type sendCall struct {
	ID  string
	Cap *int
}

// fakeAPI records every backend call the dispatcher makes.
type fakeAPI struct {
	mu        sync.Mutex
	creates   []createCall
	sends     []sendCall
	createErr error
	sendErr   error
	// sendErrs fail sends in order before sendErr applies.
	sendErrs  []error
	campaigns map[string]*model.Campaign
	byKey     map[string]string
	sizes     map[model.Audience]int
	sizeErr   error
	sizeCalls int
}

func (f *fakeAPI) CreateCampaign(_ context.Context, d model.CampaignDraft, key string) (*model.Campaign, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.creates = append(f.creates, createCall{Draft: d, Key: key})
	if f.createErr != nil {
		return nil, f.createErr
	}
	if f.campaigns == nil {
		f.campaigns, f.byKey = map[string]*model.Campaign{}, map[string]string{}
	}
	if id, ok := f.byKey[key]; ok && key != "" {
		cp := *f.campaigns[id]
		return &cp, nil
	}
	c := &model.Campaign{
		ID:    "camp-" + strconv.Itoa(len(f.campaigns)+1),
		Title: d.Title, Message: d.Message, TargetAudience: d.TargetAudience,
		MaxRecipients: d.MaxRecipients, Status: model.StatusDraft,
	}
	f.campaigns[c.ID] = c
	if key != "" {
		f.byKey[key] = c.ID
	}
	cp := *c
	return &cp, nil
}

func (f *fakeAPI) campaignCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.campaigns)
}

func (f *fakeAPI) SendCampaign(_ context.Context, id string, max *int) (*model.SendSummary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sends = append(f.sends, sendCall{ID: id, Cap: max})
	if len(f.sendErrs) > 0 {
		err := f.sendErrs[0]
		f.sendErrs = f.sendErrs[1:]
		return nil, err
	}
	if f.sendErr != nil {
		return nil, f.sendErr
	}
	n := 10
	if max != nil {
		n = *max
	}
	if c, ok := f.campaigns[id]; ok {
		c.Status, c.SentCount = model.StatusSent, n
	}
	return &model.SendSummary{Message: "Campaign sent", CampaignID: id, SentCount: n, Requested: max}, nil
}

func (f *fakeAPI) AudienceSize(_ context.Context, a model.Audience) (*model.AudienceSize, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sizeCalls++
	if f.sizeErr != nil {
		return nil, f.sizeErr
	}
	return &model.AudienceSize{TargetAudience: a, EstimatedCount: f.sizes[a]}, nil
}

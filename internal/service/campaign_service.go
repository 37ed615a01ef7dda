// internal/service/campaign_service.go
package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/hashicorp/go-multierror"

	appErrors "github.com/unclebandit/clinic-booking/internal/errors"
	"github.com/unclebandit/clinic-booking/internal/model"
	"github.com/unclebandit/clinic-booking/internal/queue"
	"github.com/unclebandit/clinic-booking/internal/repository"
)

const notificationListLimit = 100

type CampaignService struct {
	CampaignRepo     repository.CampaignRepositoryInterface
	PatientRepo      repository.PatientRepositoryInterface
	NotificationRepo repository.NotificationRepositoryInterface
	Queue            queue.Queue

	mu  sync.Mutex
	rng *rand.Rand
}

func NewCampaignService(
	campaigns repository.CampaignRepositoryInterface,
	patients repository.PatientRepositoryInterface,
	notifications repository.NotificationRepositoryInterface,
	q queue.Queue,
) *CampaignService {
	return &CampaignService{
		CampaignRepo:     campaigns,
		PatientRepo:      patients,
		NotificationRepo: notifications,
		Queue:            q,
		rng:              rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// WithRand fixes the sampling source, mainly for tests.
func (s *CampaignService) WithRand(rng *rand.Rand) *CampaignService {
	s.rng = rng
	return s
}

type CampaignDetails struct {
	*model.Campaign
	Stats map[string]int `json:"stats"`
}

// ValidateRecipientCap accepts nil (no cap) or 1..MaxRecipientCap.
func ValidateRecipientCap(n *int) error {
	if n == nil {
		return nil
	}
	if *n <= 0 || *n > model.MaxRecipientCap {
		return appErrors.NewValidation("max_recipients",
			fmt.Sprintf("must be between 1 and %d", model.MaxRecipientCap))
	}
	return nil
}

func validateDraft(d model.CampaignDraft) error {
	if strings.TrimSpace(d.Title) == "" {
		return appErrors.NewValidation("title", "is required")
	}
	if strings.TrimSpace(d.Message) == "" {
		return appErrors.NewValidation("message", "is required")
	}
	if !d.TargetAudience.Valid() {
		return appErrors.NewValidation("target_audience", fmt.Sprintf("unknown audience %q", d.TargetAudience))
	}
	return ValidateRecipientCap(d.MaxRecipients)
}

// CreateCampaign stores a draft. With a non-empty idempotency key a repeated
// call returns the campaign created first and created=false.
func (s *CampaignService) CreateCampaign(ctx context.Context, d model.CampaignDraft, idempotencyKey, createdBy string) (*model.Campaign, bool, error) {
	if err := validateDraft(d); err != nil {
		return nil, false, err
	}

	if idempotencyKey != "" {
		existing, err := s.CampaignRepo.GetByIdempotencyKey(ctx, idempotencyKey)
		if err != nil {
			return nil, false, err
		}
		if existing != nil {
			return existing, false, nil
		}
	}

	c := &model.Campaign{
		Title:          d.Title,
		Message:        d.Message,
		TargetAudience: d.TargetAudience,
		MaxRecipients:  d.MaxRecipients,
		ScheduledFor:   d.ScheduledFor,
		Status:         model.StatusDraft,
		CreatedBy:      createdBy,
		IdempotencyKey: idempotencyKey,
	}

	err := s.CampaignRepo.Create(ctx, c)
	if errors.Is(err, repository.ErrDuplicateIdempotencyKey) {
		existing, gerr := s.CampaignRepo.GetByIdempotencyKey(ctx, idempotencyKey)
		if gerr != nil {
			return nil, false, gerr
		}
		return existing, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return c, true, nil
}

// SendCampaign claims a draft, resolves the audience, samples up to the cap,
// queues one notification per recipient and marks the campaign sent. A nil
// cap falls back to the cap stored on the campaign. When nothing could be
// queued the claim is released and the campaign stays a draft.
func (s *CampaignService) SendCampaign(ctx context.Context, campaignID string, maxRecipients *int) (*model.SendSummary, error) {
	if err := ValidateRecipientCap(maxRecipients); err != nil {
		return nil, err
	}

	campaign, err := s.CampaignRepo.GetByID(ctx, campaignID)
	if err != nil {
		return nil, err
	}
	if campaign.Status != model.StatusDraft {
		return nil, appErrors.NewCampaignNotDraft(campaignID, string(campaign.Status))
	}
	if err := s.CampaignRepo.ClaimForSending(ctx, campaignID); err != nil {
		return nil, err
	}

	limit := maxRecipients
	if limit == nil {
		limit = campaign.MaxRecipients
	}

	eligible, err := s.PatientRepo.AudienceIDs(ctx, campaign.TargetAudience)
	if err != nil {
		s.releaseClaim(ctx, campaignID)
		return nil, fmt.Errorf("resolve audience %s: %w", campaign.TargetAudience, err)
	}
	recipients := s.sample(eligible, limit)

	var result *multierror.Error
	queued := 0
	for _, userID := range recipients {
		n, err := s.NotificationRepo.CreateForCampaign(ctx, campaign, userID)
		if err != nil {
			result = multierror.Append(result, fmt.Errorf("create notification for %s: %w", userID, err))
			continue
		}
		if err := s.Queue.Publish(queue.CampaignSendsTopic, n.ID); err != nil {
			result = multierror.Append(result, fmt.Errorf("enqueue notification %s: %w", n.ID, err))
			continue
		}
		queued++
	}
	notificationsQueued.Add(float64(queued))

	if err := result.ErrorOrNil(); err != nil {
		if queued == 0 {
			s.releaseClaim(ctx, campaignID)
			return nil, fmt.Errorf("campaign %s: no notifications queued: %w", campaignID, err)
		}
		log.Printf("⚠️ campaign %s: %d of %d notifications not queued: %v\n", campaignID, len(recipients)-queued, len(recipients), err)
	}

	if err := s.CampaignRepo.MarkSent(ctx, campaignID, queued); err != nil {
		return nil, err
	}
	campaignsSent.Inc()

	return &model.SendSummary{
		Message:    fmt.Sprintf("Campaign sent to %d users", queued),
		CampaignID: campaignID,
		SentCount:  queued,
		Requested:  limit,
		Eligible:   len(eligible),
	}, nil
}

func (s *CampaignService) releaseClaim(ctx context.Context, campaignID string) {
	if err := s.CampaignRepo.ReleaseClaim(context.WithoutCancel(ctx), campaignID); err != nil {
		log.Printf("❌ campaign %s: release claim: %v\n", campaignID, err)
	}
}

func (s *CampaignService) sample(ids []string, n *int) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.rng == nil {
		s.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return SampleRecipients(ids, n, s.rng)
}

// AllCampaigns lists every campaign, newest first.
func (s *CampaignService) AllCampaigns(ctx context.Context, status string) ([]model.Campaign, error) {
	ptrs, _, err := s.CampaignRepo.ListCampaigns(ctx, 0, 0, status)
	if err != nil {
		return nil, err
	}
	campaigns := make([]model.Campaign, len(ptrs))
	for i, c := range ptrs {
		campaigns[i] = *c
	}
	return campaigns, nil
}

// ListCampaigns fetches campaigns with pagination
func (s *CampaignService) ListCampaigns(ctx context.Context, page, pageSize int, status string) ([]model.Campaign, map[string]int, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	if pageSize > 100 {
		pageSize = 100
	}
	offset := (page - 1) * pageSize

	ptrs, total, err := s.CampaignRepo.ListCampaigns(ctx, offset, pageSize, status)
	if err != nil {
		return nil, nil, err
	}

	campaigns := make([]model.Campaign, len(ptrs))
	for i, c := range ptrs {
		campaigns[i] = *c
	}

	totalPages := (total + pageSize - 1) / pageSize
	pagination := map[string]int{
		"page":        page,
		"page_size":   pageSize,
		"total_count": total,
		"total_pages": totalPages,
	}

	return campaigns, pagination, nil
}

func (s *CampaignService) GetCampaignDetailsWithStats(ctx context.Context, campaignID string) (*CampaignDetails, error) {
	campaign, err := s.CampaignRepo.GetByID(ctx, campaignID)
	if err != nil {
		return nil, err
	}

	stats, err := s.NotificationRepo.CampaignStats(ctx, campaignID)
	if err != nil {
		return nil, err
	}

	return &CampaignDetails{Campaign: campaign, Stats: stats}, nil
}

// AudienceSize counts the patients a segment currently resolves to.
func (s *CampaignService) AudienceSize(ctx context.Context, audience model.Audience) (*model.AudienceSize, error) {
	if !audience.Valid() {
		return nil, appErrors.NewValidation("target_audience", fmt.Sprintf("unknown audience %q", audience))
	}
	n, err := s.PatientRepo.CountAudience(ctx, audience)
	if err != nil {
		return nil, err
	}
	return &model.AudienceSize{TargetAudience: audience, EstimatedCount: n}, nil
}

func (s *CampaignService) ListNotifications(ctx context.Context, userID string) ([]*model.Notification, error) {
	if userID == "" {
		return nil, appErrors.NewValidation("user_id", "is required")
	}
	return s.NotificationRepo.ListByUser(ctx, userID, notificationListLimit)
}

// MarkNotificationRead counts a campaign open the first time its notification is read.
func (s *CampaignService) MarkNotificationRead(ctx context.Context, id string) error {
	n, changed, err := s.NotificationRepo.MarkRead(ctx, id)
	if err != nil {
		return err
	}
	if changed && n.CampaignID != nil {
		return s.CampaignRepo.IncrementOpened(ctx, *n.CampaignID)
	}
	return nil
}

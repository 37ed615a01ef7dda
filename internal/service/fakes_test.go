package service_test

import (
	"context"
	"errors"
	"sort"
	"strconv"
	"sync"

	appErrors "github.com/unclebandit/clinic-booking/internal/errors"
	"github.com/unclebandit/clinic-booking/internal/model"
	"github.com/unclebandit/clinic-booking/internal/repository"
)

// In-memory repositories shared by the service tests.

type fakeCampaignRepo struct {
	mu        sync.Mutex
	campaigns map[string]*model.Campaign
	order     []string
	nextID    int
	createErr error
	// readers, when set, holds every GetByID caller until all have read.
	readers *sync.WaitGroup
}

func newFakeCampaignRepo() *fakeCampaignRepo {
	return &fakeCampaignRepo{campaigns: map[string]*model.Campaign{}}
}

func (f *fakeCampaignRepo) Create(_ context.Context, c *model.Campaign) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	if c.IdempotencyKey != "" {
		for _, existing := range f.campaigns {
			if existing.IdempotencyKey == c.IdempotencyKey {
				return repository.ErrDuplicateIdempotencyKey
			}
		}
	}
	f.nextID++
	c.ID = "c" + strconv.Itoa(f.nextID)
	cp := *c
	f.campaigns[c.ID] = &cp
	f.order = append(f.order, c.ID)
	return nil
}

func (f *fakeCampaignRepo) GetByID(_ context.Context, id string) (*model.Campaign, error) {
	f.mu.Lock()
	c, ok := f.campaigns[id]
	var cp model.Campaign
	if ok {
		cp = *c
	}
	f.mu.Unlock()

	if f.readers != nil {
		f.readers.Done()
		f.readers.Wait()
	}
	if !ok {
		return nil, appErrors.NewCampaignNotFound(id)
	}
	return &cp, nil
}

func (f *fakeCampaignRepo) GetByIdempotencyKey(_ context.Context, key string) (*model.Campaign, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.campaigns {
		if c.IdempotencyKey == key {
			cp := *c
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeCampaignRepo) ListCampaigns(_ context.Context, offset, limit int, status string) ([]*model.Campaign, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var filtered []*model.Campaign
	for i := len(f.order) - 1; i >= 0; i-- {
		c := f.campaigns[f.order[i]]
		if status != "" && string(c.Status) != status {
			continue
		}
		filtered = append(filtered, c)
	}
	total := len(filtered)
	if offset >= total {
		return []*model.Campaign{}, total, nil
	}
	end := offset + limit
	if limit <= 0 || end > total {
		end = total
	}
	return filtered[offset:end], total, nil
}

func (f *fakeCampaignRepo) moveStatus(id string, from, to model.CampaignStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.campaigns[id]
	if !ok || c.Status != from {
		return appErrors.NewCampaignNotDraft(id, "not "+string(from))
	}
	c.Status = to
	return nil
}

func (f *fakeCampaignRepo) ClaimForSending(_ context.Context, id string) error {
	return f.moveStatus(id, model.StatusDraft, model.StatusSending)
}

func (f *fakeCampaignRepo) ReleaseClaim(_ context.Context, id string) error {
	return f.moveStatus(id, model.StatusSending, model.StatusDraft)
}

func (f *fakeCampaignRepo) MarkSent(_ context.Context, id string, sentCount int) error {
	if err := f.moveStatus(id, model.StatusSending, model.StatusSent); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.campaigns[id].SentCount = sentCount
	return nil
}

func (f *fakeCampaignRepo) IncrementOpened(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.campaigns[id].OpenedCount++
	return nil
}

type fakePatientRepo struct {
	patients map[string]*model.Patient
	segments map[model.Audience][]string
}

func (f *fakePatientRepo) GetByID(_ context.Context, id string) (*model.Patient, error) {
	return f.patients[id], nil
}

func (f *fakePatientRepo) AudienceIDs(_ context.Context, audience model.Audience) ([]string, error) {
	ids, ok := f.segments[audience]
	if !ok {
		return nil, errors.New("unknown audience")
	}
	out := append([]string(nil), ids...)
	sort.Strings(out)
	return out, nil
}

func (f *fakePatientRepo) CountAudience(ctx context.Context, audience model.Audience) (int, error) {
	ids, err := f.AudienceIDs(ctx, audience)
	return len(ids), err
}

type fakeNotificationRepo struct {
	mu            sync.Mutex
	notifications map[string]*model.Notification
	createErrFor  map[string]error
	updates       []string
}

func newFakeNotificationRepo() *fakeNotificationRepo {
	return &fakeNotificationRepo{notifications: map[string]*model.Notification{}, createErrFor: map[string]error{}}
}

func (f *fakeNotificationRepo) CreateForCampaign(_ context.Context, c *model.Campaign, userID string) (*model.Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.createErrFor[userID]; err != nil {
		return nil, err
	}
	for _, n := range f.notifications {
		if n.CampaignID != nil && *n.CampaignID == c.ID && n.UserID == userID {
			return n, nil
		}
	}
	id := "n" + userID + "-" + c.ID
	campaignID := c.ID
	n := &model.Notification{
		ID: id, UserID: userID, CampaignID: &campaignID,
		Title: c.Title, Message: c.Message, Type: model.NotificationTypeCampaign,
		Status: model.NotificationPending,
	}
	f.notifications[id] = n
	return n, nil
}

func (f *fakeNotificationRepo) GetByID(_ context.Context, id string) (*model.Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n, ok := f.notifications[id]
	if !ok {
		return nil, appErrors.NewNotificationNotFound(id)
	}
	cp := *n
	return &cp, nil
}

func (f *fakeNotificationRepo) UpdateStatus(_ context.Context, id, status, lastError string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := f.notifications[id]
	n.Status = status
	n.LastError = lastError
	if status == model.NotificationFailed {
		n.RetryCount++
	}
	f.updates = append(f.updates, id+":"+status)
	return nil
}

func (f *fakeNotificationRepo) ListByUser(_ context.Context, userID string, limit int) ([]*model.Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []*model.Notification{}
	for _, n := range f.notifications {
		if n.UserID == userID && len(out) < limit {
			out = append(out, n)
		}
	}
	return out, nil
}

func (f *fakeNotificationRepo) MarkRead(_ context.Context, id string) (*model.Notification, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n, ok := f.notifications[id]
	if !ok {
		return nil, false, appErrors.NewNotificationNotFound(id)
	}
	changed := !n.Read
	n.Read = true
	cp := *n
	return &cp, changed, nil
}

func (f *fakeNotificationRepo) CampaignStats(_ context.Context, campaignID string) (map[string]int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	stats := map[string]int{"total": 0, "pending": 0, "sent": 0, "failed": 0}
	for _, n := range f.notifications {
		if n.CampaignID != nil && *n.CampaignID == campaignID {
			stats[n.Status]++
			stats["total"]++
		}
	}
	return stats, nil
}

// recordingQueue captures published IDs without delivering them.
type recordingQueue struct {
	mu        sync.Mutex
	published []string
	failFor   map[string]bool
}

func (q *recordingQueue) Publish(_ string, payload any) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	id := payload.(string)
	if q.failFor[id] {
		return errors.New("broker unavailable")
	}
	q.published = append(q.published, id)
	return nil
}

func (q *recordingQueue) Subscribe(string, func(payload any) error) error { return nil }

package campaign

import (
	"context"

	"github.com/google/uuid"

	appErrors "github.com/unclebandit/clinic-booking/internal/errors"
	"github.com/unclebandit/clinic-booking/internal/model"
)

// CampaignAPI is the part of the backend the dispatcher talks to.
type CampaignAPI interface {
	CreateCampaign(ctx context.Context, draft model.CampaignDraft, idempotencyKey string) (*model.Campaign, error)
	SendCampaign(ctx context.Context, id string, maxRecipients *int) (*model.SendSummary, error)
}

// Dispatcher creates a campaign and then sends it. Nothing is retried here;
// callers resubmit with the same key to reach the campaign created before.
type Dispatcher struct {
	API    CampaignAPI
	NewKey func() string
}

func NewDispatcher(api CampaignAPI) *Dispatcher {
	return &Dispatcher{API: api, NewKey: uuid.NewString}
}

// Submit runs create then send. An empty key gets a fresh one. A failed
// create is a *CreationError and no send is attempted; a failed send is a
// *SendError. A campaign the backend reports as already sent is not sent
// again.
func (d *Dispatcher) Submit(ctx context.Context, draft model.CampaignDraft, sel RecipientSelection, key string) (*model.SendSummary, error) {
	draft.MaxRecipients = sel.Cap()

	if key == "" && d.NewKey != nil {
		key = d.NewKey()
	}

	created, err := d.API.CreateCampaign(ctx, draft, key)
	if err != nil {
		return nil, &appErrors.CreationError{Err: err}
	}

	if created.Status == model.StatusSent {
		return &model.SendSummary{
			Message:    "Campaign already sent",
			CampaignID: created.ID,
			SentCount:  created.SentCount,
			Requested:  created.MaxRecipients,
		}, nil
	}

	summary, err := d.API.SendCampaign(ctx, created.ID, sel.Cap())
	if err != nil {
		return nil, &appErrors.SendError{CampaignID: created.ID, Err: err}
	}
	if summary.CampaignID == "" {
		summary.CampaignID = created.ID
	}
	return summary, nil
}

// internal/model/campaign.go
package model

import "time"

// Audience is the coarse segment a campaign targets. The campaign service
// resolves it to concrete recipients.
type Audience string

const (
	AudienceAll      Audience = "all"
	AudienceActive   Audience = "active"
	AudienceInactive Audience = "inactive"
	AudienceNew      Audience = "new"
)

// Audiences lists every known segment in display order.
var Audiences = []Audience{AudienceAll, AudienceActive, AudienceInactive, AudienceNew}

func (a Audience) Valid() bool {
	switch a {
	case AudienceAll, AudienceActive, AudienceInactive, AudienceNew:
		return true
	}
	return false
}

type CampaignStatus string

const (
	StatusDraft     CampaignStatus = "draft"
	StatusScheduled CampaignStatus = "scheduled"
	// StatusSending marks a campaign claimed by one send while its
	// notifications are queued.
	StatusSending CampaignStatus = "sending"
	StatusSent    CampaignStatus = "sent"
)

const (
	// MaxMessageLength is a soft limit, longer messages are still accepted.
	MaxMessageLength = 500
	// MaxRecipientCap is the largest recipient cap a send may carry.
	MaxRecipientCap = 100000
)

type Campaign struct {
	ID             string         `db:"id" json:"id"`
	Title          string         `db:"title" json:"title"`
	Message        string         `db:"message" json:"message"`
	TargetAudience Audience       `db:"target_audience" json:"target_audience"`
	MaxRecipients  *int           `db:"max_recipients" json:"max_recipients"`
	ScheduledFor   *time.Time     `db:"scheduled_for" json:"scheduled_for,omitempty"`
	Status         CampaignStatus `db:"status" json:"status"`
	SentCount      int            `db:"sent_count" json:"sent_count"`
	OpenedCount    int            `db:"opened_count" json:"opened_count"`
	BookedCount    int            `db:"booked_count" json:"booked_count"`
	CreatedBy      string         `db:"created_by" json:"created_by"`
	IdempotencyKey string         `db:"idempotency_key" json:"-"`
	CreatedAt      time.Time      `db:"created_at" json:"created_at"`
}

// CampaignDraft is the create payload sent to POST /campaigns.
type CampaignDraft struct {
	Title          string     `json:"title"`
	Message        string     `json:"message"`
	TargetAudience Audience   `json:"target_audience"`
	ScheduledFor   *time.Time `json:"scheduled_for"`
	MaxRecipients  *int       `json:"max_recipients"`
}

// SendSummary is returned by POST /campaigns/{id}/send.
type SendSummary struct {
	Message    string `json:"message"`
	CampaignID string `json:"campaign_id,omitempty"`
	SentCount  int    `json:"sent_count"`
	Requested  *int   `json:"requested,omitempty"`
	Eligible   int    `json:"eligible"`
}

// AudienceSize is the segment size reported by the campaign service.
type AudienceSize struct {
	TargetAudience Audience `json:"target_audience"`
	EstimatedCount int      `json:"estimated_count"`
}

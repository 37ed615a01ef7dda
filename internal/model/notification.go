// internal/model/notification.go
package model

import "time"

const (
	NotificationPending = "pending"
	NotificationSent    = "sent"
	NotificationFailed  = "failed"
)

const (
	NotificationTypeCampaign  = "campaign"
	NotificationTypeReminder  = "reminder"
	NotificationTypePostVisit = "post_visit"
	NotificationTypeGeneral   = "general"
)

type Notification struct {
	ID         string    `db:"id" json:"id"`
	UserID     string    `db:"user_id" json:"user_id"`
	CampaignID *string   `db:"campaign_id" json:"campaign_id,omitempty"`
	Title      string    `db:"title" json:"title"`
	Message    string    `db:"message" json:"message"`
	Type       string    `db:"type" json:"type"`
	Read       bool      `db:"read" json:"read"`
	Status     string    `db:"status" json:"status"` // pending, sent, failed
	LastError  string    `db:"last_error" json:"last_error,omitempty"`
	RetryCount int       `db:"retry_count" json:"retry_count"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

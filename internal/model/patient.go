// internal/model/patient.go
package model

import "time"

// Patient is a notification recipient.
type Patient struct {
	ID        string    `db:"id" json:"id"`
	Phone     string    `db:"phone" json:"phone"`
	Name      string    `db:"name" json:"name"`
	FCMToken  string    `db:"fcm_token" json:"fcm_token,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

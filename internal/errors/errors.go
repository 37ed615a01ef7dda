package appErrors

import (
	"errors"
	"fmt"
)

// ErrCampaignNotFound is returned when no campaign has the given ID.
type ErrCampaignNotFound struct {
	CampaignID string
}

func (e *ErrCampaignNotFound) Error() string {
	return fmt.Sprintf("campaign with ID %s not found", e.CampaignID)
}

func NewCampaignNotFound(id string) error {
	return &ErrCampaignNotFound{CampaignID: id}
}

type ErrNotificationNotFound struct {
	NotificationID string
}

func (e *ErrNotificationNotFound) Error() string {
	return fmt.Sprintf("notification with ID %s not found", e.NotificationID)
}

func NewNotificationNotFound(id string) error {
	return &ErrNotificationNotFound{NotificationID: id}
}

// ErrCampaignNotDraft is returned when a send targets a campaign that already left draft.
type ErrCampaignNotDraft struct {
	CampaignID string
	Status     string
}

func (e *ErrCampaignNotDraft) Error() string {
	return fmt.Sprintf("campaign %s cannot be sent in status: %s", e.CampaignID, e.Status)
}

func NewCampaignNotDraft(id, status string) error {
	return &ErrCampaignNotDraft{CampaignID: id, Status: status}
}

// ValidationError blocks an operation locally. Message is shown to the user as is.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

func NewValidation(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// APIError is a non-2xx answer from the backend. Detail is the backend's
// own explanation and may be empty.
type APIError struct {
	StatusCode int
	Detail     string
}

func (e *APIError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("backend returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("backend returned status %d: %s", e.StatusCode, e.Detail)
}

const (
	genericCreateMessage = "failed to create the campaign"
	genericSendMessage   = "failed to send the campaign"
)

// CreationError means the campaign record could not be created.
type CreationError struct {
	Err error
}

func (e *CreationError) Error() string { return "create campaign: " + e.Err.Error() }
func (e *CreationError) Unwrap() error { return e.Err }

// UserMessage is the backend detail when there is one, a generic message otherwise.
func (e *CreationError) UserMessage() string { return userMessage(e.Err, genericCreateMessage) }

// SendError means the campaign was created but the send call failed.
type SendError struct {
	CampaignID string
	Err        error
}

func (e *SendError) Error() string {
	return fmt.Sprintf("send campaign %s: %s", e.CampaignID, e.Err.Error())
}
func (e *SendError) Unwrap() error { return e.Err }

func (e *SendError) UserMessage() string { return userMessage(e.Err, genericSendMessage) }

func userMessage(err error, fallback string) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Detail != "" {
		return apiErr.Detail
	}
	return fallback
}

// ErrInvalidCredentials covers a wrong or expired OTP as well as a bad
// username or password. The cases are deliberately not told apart.
var ErrInvalidCredentials = errors.New("invalid credentials or verification code")

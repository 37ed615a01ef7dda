// Package push hands rendered notifications to the device push provider.
package push

import (
	"context"
	"log"
)

type Message struct {
	UserID      string
	DeviceToken string
	Title       string
	Body        string
	Data        map[string]string
}

type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// LogSender stands in for the push provider and only logs what it would send.
type LogSender struct{}

func (LogSender) Send(_ context.Context, msg Message) error {
	log.Printf("📲 push to %s (device %s): %s\n", msg.UserID, maskToken(msg.DeviceToken), msg.Title)
	return nil
}

// maskToken keeps only the last four characters of a device token.
func maskToken(token string) string {
	const visible = 4
	if len(token) <= visible {
		return "****"
	}
	return "…" + token[len(token)-visible:]
}

// SenderFunc adapts a function to Sender.
type SenderFunc func(ctx context.Context, msg Message) error

func (f SenderFunc) Send(ctx context.Context, msg Message) error { return f(ctx, msg) }

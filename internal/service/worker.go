package service

import (
	"context"
	"fmt"

	"github.com/unclebandit/clinic-booking/internal/model"
	"github.com/unclebandit/clinic-booking/internal/push"
	"github.com/unclebandit/clinic-booking/internal/repository"
)

const defaultRecipientName = "valued patient"

// DeliveryService renders a queued notification for its recipient and hands
// it to the push sender.
type DeliveryService struct {
	Notifications repository.NotificationRepositoryInterface
	Patients      repository.PatientRepositoryInterface
	Sender        push.Sender
}

func NewDeliveryService(
	notifications repository.NotificationRepositoryInterface,
	patients repository.PatientRepositoryInterface,
	sender push.Sender,
) *DeliveryService {
	return &DeliveryService{Notifications: notifications, Patients: patients, Sender: sender}
}

// Deliver is safe to call again for a notification that was already sent.
// Patients without a device token still see the notification in the app.
func (d *DeliveryService) Deliver(ctx context.Context, notificationID string) error {
	n, err := d.Notifications.GetByID(ctx, notificationID)
	if err != nil {
		return err
	}
	if n.Status == model.NotificationSent {
		return nil
	}

	patient, err := d.Patients.GetByID(ctx, n.UserID)
	if err != nil {
		return err
	}
	if patient == nil {
		notificationsDelivered.WithLabelValues(model.NotificationFailed).Inc()
		return d.Notifications.UpdateStatus(ctx, n.ID, model.NotificationFailed, "recipient not found")
	}

	name := patient.Name
	if name == "" {
		name = defaultRecipientName
	}
	data := map[string]string{"name": name}

	if patient.FCMToken != "" {
		msg := push.Message{
			UserID:      patient.ID,
			DeviceToken: patient.FCMToken,
			Title:       RenderTemplate(n.Title, data),
			Body:        RenderTemplate(n.Message, data),
			Data:        map[string]string{"notification_id": n.ID, "type": n.Type},
		}
		if err := d.Sender.Send(ctx, msg); err != nil {
			notificationsDelivered.WithLabelValues(model.NotificationFailed).Inc()
			if uerr := d.Notifications.UpdateStatus(ctx, n.ID, model.NotificationFailed, err.Error()); uerr != nil {
				return fmt.Errorf("push failed (%v) and status update failed: %w", err, uerr)
			}
			return err
		}
	}

	notificationsDelivered.WithLabelValues(model.NotificationSent).Inc()
	return d.Notifications.UpdateStatus(ctx, n.ID, model.NotificationSent, "")
}

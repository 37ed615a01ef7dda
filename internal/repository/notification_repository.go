package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	appErrors "github.com/unclebandit/clinic-booking/internal/errors"
	"github.com/unclebandit/clinic-booking/internal/model"
)

type NotificationRepositoryInterface interface {
	CreateForCampaign(ctx context.Context, campaign *model.Campaign, userID string) (*model.Notification, error)
	GetByID(ctx context.Context, id string) (*model.Notification, error)
	UpdateStatus(ctx context.Context, id, status, lastError string) error
	ListByUser(ctx context.Context, userID string, limit int) ([]*model.Notification, error)
	MarkRead(ctx context.Context, id string) (*model.Notification, bool, error)
	CampaignStats(ctx context.Context, campaignID string) (map[string]int, error)
}

type NotificationRepository struct {
	DB *sql.DB
}

const notificationColumns = `id, user_id, campaign_id, title, message, type, read, status,
    last_error, retry_count, created_at`

// CreateForCampaign is idempotent: a second call for the same campaign and
// user returns the row created by the first.
func (r *NotificationRepository) CreateForCampaign(ctx context.Context, campaign *model.Campaign, userID string) (*model.Notification, error) {
	campaignID := campaign.ID
	n := &model.Notification{
		ID:         uuid.NewString(),
		UserID:     userID,
		CampaignID: &campaignID,
		Title:      campaign.Title,
		Message:    campaign.Message,
		Type:       model.NotificationTypeCampaign,
		Status:     model.NotificationPending,
		CreatedAt:  time.Now().UTC(),
	}

	query := `
        INSERT INTO notifications (id, user_id, campaign_id, title, message, type, status, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
        ON CONFLICT (campaign_id, user_id) DO NOTHING
    `
	res, err := r.DB.ExecContext(ctx, query, n.ID, n.UserID, campaignID, n.Title, n.Message, n.Type, n.Status, n.CreatedAt)
	if err != nil {
		return nil, err
	}
	inserted, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if inserted == 1 {
		return n, nil
	}

	existing := `SELECT ` + notificationColumns + ` FROM notifications WHERE campaign_id=$1 AND user_id=$2`
	return scanNotification(r.DB.QueryRowContext(ctx, existing, campaignID, userID))
}

func (r *NotificationRepository) GetByID(ctx context.Context, id string) (*model.Notification, error) {
	query := `SELECT ` + notificationColumns + ` FROM notifications WHERE id=$1`
	n, err := scanNotification(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.NewNotificationNotFound(id)
		}
		return nil, err
	}
	return n, nil
}

func (r *NotificationRepository) UpdateStatus(ctx context.Context, id, status, lastError string) error {
	query := `UPDATE notifications SET status=$1, last_error=$2, retry_count=retry_count+1 WHERE id=$3`
	if status == model.NotificationSent {
		query = `UPDATE notifications SET status=$1, last_error=$2 WHERE id=$3`
	}
	_, err := r.DB.ExecContext(ctx, query, status, lastError, id)
	return err
}

func (r *NotificationRepository) ListByUser(ctx context.Context, userID string, limit int) ([]*model.Notification, error) {
	query := `SELECT ` + notificationColumns + ` FROM notifications WHERE user_id=$1 ORDER BY created_at DESC LIMIT $2`
	rows, err := r.DB.QueryContext(ctx, query, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []*model.Notification{}
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

// MarkRead flags the notification as read. The bool reports whether this
// call changed it, so a campaign open is only counted once.
func (r *NotificationRepository) MarkRead(ctx context.Context, id string) (*model.Notification, bool, error) {
	res, err := r.DB.ExecContext(ctx, `UPDATE notifications SET read=TRUE WHERE id=$1 AND read=FALSE`, id)
	if err != nil {
		return nil, false, err
	}
	changed, err := res.RowsAffected()
	if err != nil {
		return nil, false, err
	}

	n, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, false, err
	}
	return n, changed == 1, nil
}

func (r *NotificationRepository) CampaignStats(ctx context.Context, campaignID string) (map[string]int, error) {
	query := `SELECT status, COUNT(*) FROM notifications WHERE campaign_id=$1 GROUP BY status`
	rows, err := r.DB.QueryContext(ctx, query, campaignID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stats := map[string]int{"total": 0, model.NotificationPending: 0, model.NotificationSent: 0, model.NotificationFailed: 0}
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		stats[status] = count
		stats["total"] += count
	}
	return stats, rows.Err()
}

func scanNotification(row rowScanner) (*model.Notification, error) {
	var n model.Notification
	err := row.Scan(
		&n.ID, &n.UserID, &n.CampaignID, &n.Title, &n.Message, &n.Type, &n.Read, &n.Status,
		&n.LastError, &n.RetryCount, &n.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &n, nil
}

var _ NotificationRepositoryInterface = (*NotificationRepository)(nil)

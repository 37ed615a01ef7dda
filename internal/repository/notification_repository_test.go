package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unclebandit/clinic-booking/internal/model"
)

var notificationRowColumns = []string{
	"id", "user_id", "campaign_id", "title", "message", "type", "read", "status",
	"last_error", "retry_count", "created_at",
}

func TestNotificationRepository_CreateForCampaignInserts(t *testing.T) {
	db, mock := newMock(t)
	repo := &NotificationRepository{DB: db}
	campaign := &model.Campaign{ID: "c1", Title: "T", Message: "M"}

	mock.ExpectExec(regexp.QuoteMeta("ON CONFLICT (campaign_id, user_id) DO NOTHING")).
		WithArgs(sqlmock.AnyArg(), "p1", "c1", "T", "M", "campaign", "pending", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	n, err := repo.CreateForCampaign(context.Background(), campaign, "p1")
	require.NoError(t, err)
	assert.Equal(t, "p1", n.UserID)
	require.NotNil(t, n.CampaignID)
	assert.Equal(t, "c1", *n.CampaignID)
	assert.Equal(t, model.NotificationPending, n.Status)
}

func TestNotificationRepository_CreateForCampaignReturnsExisting(t *testing.T) {
	db, mock := newMock(t)
	repo := &NotificationRepository{DB: db}
	campaign := &model.Campaign{ID: "c1", Title: "T", Message: "M"}

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO notifications")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta("WHERE campaign_id=$1 AND user_id=$2")).
		WithArgs("c1", "p1").
		WillReturnRows(sqlmock.NewRows(notificationRowColumns).
			AddRow("n-old", "p1", "c1", "T", "M", "campaign", false, "sent", "", 0, time.Now()))

	n, err := repo.CreateForCampaign(context.Background(), campaign, "p1")
	require.NoError(t, err)
	assert.Equal(t, "n-old", n.ID)
	assert.Equal(t, model.NotificationSent, n.Status)
}

func TestNotificationRepository_MarkRead(t *testing.T) {
	db, mock := newMock(t)
	repo := &NotificationRepository{DB: db}

	mock.ExpectExec(regexp.QuoteMeta("UPDATE notifications SET read=TRUE WHERE id=$1 AND read=FALSE")).
		WithArgs("n1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta("FROM notifications WHERE id=$1")).
		WithArgs("n1").
		WillReturnRows(sqlmock.NewRows(notificationRowColumns).
			AddRow("n1", "p1", "c1", "T", "M", "campaign", true, "sent", "", 0, time.Now()))

	n, changed, err := repo.MarkRead(context.Background(), "n1")
	require.NoError(t, err)
	assert.True(t, changed)
	assert.True(t, n.Read)
}

func TestNotificationRepository_CampaignStats(t *testing.T) {
	db, mock := newMock(t)
	repo := &NotificationRepository{DB: db}

	mock.ExpectQuery(regexp.QuoteMeta("GROUP BY status")).
		WithArgs("c1").
		WillReturnRows(sqlmock.NewRows([]string{"status", "count"}).
			AddRow("sent", 8).
			AddRow("failed", 2))

	stats, err := repo.CampaignStats(context.Background(), "c1")
	require.NoError(t, err)
	assert.Equal(t, 10, stats["total"])
	assert.Equal(t, 8, stats["sent"])
	assert.Equal(t, 0, stats["pending"])
}

func TestNotificationRepository_UpdateStatusFailedBumpsRetry(t *testing.T) {
	db, mock := newMock(t)
	repo := &NotificationRepository{DB: db}

	mock.ExpectExec(regexp.QuoteMeta("retry_count=retry_count+1")).
		WithArgs("failed", "boom", "n1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.UpdateStatus(context.Background(), "n1", model.NotificationFailed, "boom"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

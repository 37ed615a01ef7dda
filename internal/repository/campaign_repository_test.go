package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/unclebandit/clinic-booking/internal/errors"
	"github.com/unclebandit/clinic-booking/internal/model"
)

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, mock
}

var campaignRowColumns = []string{
	"id", "title", "message", "target_audience", "max_recipients", "scheduled_for",
	"status", "sent_count", "opened_count", "booked_count", "created_by", "created_at",
}

func TestCampaignRepository_Create(t *testing.T) {
	db, mock := newMock(t)
	repo := &CampaignRepository{DB: db}

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO campaigns")).
		WithArgs(sqlmock.AnyArg(), "Title", "Body", "active", sqlmock.AnyArg(), sqlmock.AnyArg(),
			"draft", "admin", "key-1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	c := &model.Campaign{Title: "Title", Message: "Body", TargetAudience: model.AudienceActive, IdempotencyKey: "key-1"}
	require.NoError(t, repo.Create(context.Background(), c))

	assert.NotEmpty(t, c.ID)
	assert.Equal(t, model.StatusDraft, c.Status)
	assert.Equal(t, "admin", c.CreatedBy)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCampaignRepository_CreateDuplicateKey(t *testing.T) {
	db, mock := newMock(t)
	repo := &CampaignRepository{DB: db}

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO campaigns")).
		WillReturnError(&pq.Error{Code: "23505"})

	err := repo.Create(context.Background(), &model.Campaign{Title: "t", Message: "m", IdempotencyKey: "k"})
	assert.ErrorIs(t, err, ErrDuplicateIdempotencyKey)
}

func TestCampaignRepository_GetByID(t *testing.T) {
	db, mock := newMock(t)
	repo := &CampaignRepository{DB: db}
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta("FROM campaigns WHERE id=$1")).
		WithArgs("c1").
		WillReturnRows(sqlmock.NewRows(campaignRowColumns).
			AddRow("c1", "T", "M", "new", int64(5000), nil, "draft", 0, 0, 0, "admin", now))

	c, err := repo.GetByID(context.Background(), "c1")
	require.NoError(t, err)
	assert.Equal(t, model.AudienceNew, c.TargetAudience)
	require.NotNil(t, c.MaxRecipients)
	assert.Equal(t, 5000, *c.MaxRecipients)
	assert.Nil(t, c.ScheduledFor)
}

func TestCampaignRepository_GetByIDNotFound(t *testing.T) {
	db, mock := newMock(t)
	repo := &CampaignRepository{DB: db}

	mock.ExpectQuery(regexp.QuoteMeta("FROM campaigns WHERE id=$1")).
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByID(context.Background(), "missing")
	var notFound *appErrors.ErrCampaignNotFound
	assert.ErrorAs(t, err, &notFound)
}

func TestCampaignRepository_GetByIdempotencyKeyMissing(t *testing.T) {
	db, mock := newMock(t)
	repo := &CampaignRepository{DB: db}

	mock.ExpectQuery(regexp.QuoteMeta("WHERE idempotency_key=$1")).
		WithArgs("k").
		WillReturnError(sql.ErrNoRows)

	c, err := repo.GetByIdempotencyKey(context.Background(), "k")
	assert.NoError(t, err)
	assert.Nil(t, c)
}

func TestCampaignRepository_ListCampaignsWithStatus(t *testing.T) {
	db, mock := newMock(t)
	repo := &CampaignRepository{DB: db}
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta("AND status=$1 ORDER BY created_at DESC LIMIT $2 OFFSET $3")).
		WithArgs("sent", 10, 20).
		WillReturnRows(sqlmock.NewRows(campaignRowColumns).
			AddRow("c2", "T2", "M2", "all", nil, nil, "sent", 7, 1, 0, "admin", now).
			AddRow("c1", "T1", "M1", "all", nil, nil, "sent", 3, 0, 0, "admin", now))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM campaigns WHERE 1=1 AND status=$1")).
		WithArgs("sent").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(22))

	list, total, err := repo.ListCampaigns(context.Background(), 20, 10, "sent")
	require.NoError(t, err)
	assert.Equal(t, 22, total)
	require.Len(t, list, 2)
	assert.Equal(t, "c2", list[0].ID)
	assert.Equal(t, 7, list[0].SentCount)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCampaignRepository_ListCampaignsUnbounded(t *testing.T) {
	db, mock := newMock(t)
	repo := &CampaignRepository{DB: db}
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta("FROM campaigns WHERE 1=1 ORDER BY created_at DESC")).
		WithoutArgs().
		WillReturnRows(sqlmock.NewRows(campaignRowColumns).
			AddRow("c1", "T1", "M1", "all", nil, nil, "draft", 0, 0, 0, "admin", now))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM campaigns WHERE 1=1")).
		WithoutArgs().
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	list, total, err := repo.ListCampaigns(context.Background(), 0, 0, "")
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Len(t, list, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCampaignRepository_MarkSent(t *testing.T) {
	db, mock := newMock(t)
	repo := &CampaignRepository{DB: db}

	mock.ExpectExec(regexp.QuoteMeta("UPDATE campaigns SET status=$1, sent_count=$2 WHERE id=$3 AND status=$4")).
		WithArgs("sent", 12, "c1", "sending").
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.MarkSent(context.Background(), "c1", 12))

	mock.ExpectExec(regexp.QuoteMeta("UPDATE campaigns SET status=$1")).
		WithArgs("sent", 12, "c1", "sending").
		WillReturnResult(sqlmock.NewResult(0, 0))
	err := repo.MarkSent(context.Background(), "c1", 12)
	var notDraft *appErrors.ErrCampaignNotDraft
	assert.ErrorAs(t, err, &notDraft)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCampaignRepository_ClaimForSending(t *testing.T) {
	db, mock := newMock(t)
	repo := &CampaignRepository{DB: db}

	mock.ExpectExec(regexp.QuoteMeta("UPDATE campaigns SET status=$1 WHERE id=$2 AND status=$3")).
		WithArgs("sending", "c1", "draft").
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.ClaimForSending(context.Background(), "c1"))

	// a second claim loses the conditional update
	mock.ExpectExec(regexp.QuoteMeta("UPDATE campaigns SET status=$1 WHERE id=$2 AND status=$3")).
		WithArgs("sending", "c1", "draft").
		WillReturnResult(sqlmock.NewResult(0, 0))
	err := repo.ClaimForSending(context.Background(), "c1")
	var notDraft *appErrors.ErrCampaignNotDraft
	assert.ErrorAs(t, err, &notDraft)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCampaignRepository_ReleaseClaim(t *testing.T) {
	db, mock := newMock(t)
	repo := &CampaignRepository{DB: db}

	mock.ExpectExec(regexp.QuoteMeta("UPDATE campaigns SET status=$1 WHERE id=$2 AND status=$3")).
		WithArgs("draft", "c1", "sending").
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.ReleaseClaim(context.Background(), "c1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

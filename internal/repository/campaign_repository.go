package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	appErrors "github.com/unclebandit/clinic-booking/internal/errors"
	"github.com/unclebandit/clinic-booking/internal/model"
)

// ErrDuplicateIdempotencyKey is returned by Create when another campaign
// already holds the same idempotency key.
var ErrDuplicateIdempotencyKey = errors.New("duplicate idempotency key")

type CampaignRepositoryInterface interface {
	Create(ctx context.Context, c *model.Campaign) error
	GetByID(ctx context.Context, id string) (*model.Campaign, error)
	GetByIdempotencyKey(ctx context.Context, key string) (*model.Campaign, error)
	ListCampaigns(ctx context.Context, offset, limit int, status string) ([]*model.Campaign, int, error)
	ClaimForSending(ctx context.Context, id string) error
	ReleaseClaim(ctx context.Context, id string) error
	MarkSent(ctx context.Context, id string, sentCount int) error
	IncrementOpened(ctx context.Context, id string) error
}

type CampaignRepository struct {
	DB *sql.DB
}

const campaignColumns = `id, title, message, target_audience, max_recipients, scheduled_for,
    status, sent_count, opened_count, booked_count, created_by, created_at`

// ====================== Campaign CRUD ======================

func (r *CampaignRepository) Create(ctx context.Context, c *model.Campaign) error {
	c.ID = uuid.NewString()
	c.CreatedAt = time.Now().UTC()
	if c.Status == "" {
		c.Status = model.StatusDraft
	}
	if c.CreatedBy == "" {
		c.CreatedBy = model.RoleAdmin
	}

	var key sql.NullString
	if c.IdempotencyKey != "" {
		key = sql.NullString{String: c.IdempotencyKey, Valid: true}
	}

	query := `
        INSERT INTO campaigns (id, title, message, target_audience, max_recipients, scheduled_for,
            status, created_by, idempotency_key, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
    `
	_, err := r.DB.ExecContext(ctx, query,
		c.ID, c.Title, c.Message, c.TargetAudience, c.MaxRecipients, c.ScheduledFor,
		c.Status, c.CreatedBy, key, c.CreatedAt,
	)
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		return ErrDuplicateIdempotencyKey
	}
	return err
}

func (r *CampaignRepository) GetByID(ctx context.Context, id string) (*model.Campaign, error) {
	query := `SELECT ` + campaignColumns + ` FROM campaigns WHERE id=$1`
	c, err := scanCampaign(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.NewCampaignNotFound(id)
		}
		return nil, err
	}
	return c, nil
}

// GetByIdempotencyKey returns nil, nil when no campaign carries the key.
func (r *CampaignRepository) GetByIdempotencyKey(ctx context.Context, key string) (*model.Campaign, error) {
	query := `SELECT ` + campaignColumns + ` FROM campaigns WHERE idempotency_key=$1`
	c, err := scanCampaign(r.DB.QueryRowContext(ctx, query, key))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return c, nil
}

// ListCampaigns returns campaigns newest first and the total matching count.
// A limit of zero or less returns every campaign.
func (r *CampaignRepository) ListCampaigns(ctx context.Context, offset, limit int, status string) ([]*model.Campaign, int, error) {
	campaigns := []*model.Campaign{}
	query := `SELECT ` + campaignColumns + ` FROM campaigns WHERE 1=1`
	countQuery := `SELECT COUNT(*) FROM campaigns WHERE 1=1`
	args := []interface{}{}
	argPos := 1

	if status != "" {
		filter := fmt.Sprintf(" AND status=$%d", argPos)
		query += filter
		countQuery += filter
		args = append(args, status)
		argPos++
	}
	countArgs := append([]interface{}{}, args...)

	query += " ORDER BY created_at DESC"
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", argPos, argPos+1)
		args = append(args, limit, offset)
	}

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	for rows.Next() {
		c, err := scanCampaign(rows)
		if err != nil {
			return nil, 0, err
		}
		campaigns = append(campaigns, c)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	var total int
	if err := r.DB.QueryRowContext(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, err
	}

	return campaigns, total, nil
}

// ClaimForSending moves a draft to sending. Only one caller can win; the
// others get ErrCampaignNotDraft.
func (r *CampaignRepository) ClaimForSending(ctx context.Context, id string) error {
	return r.moveStatus(ctx, id, model.StatusDraft, model.StatusSending)
}

// ReleaseClaim puts a claimed campaign back to draft so it can be sent again.
func (r *CampaignRepository) ReleaseClaim(ctx context.Context, id string) error {
	return r.moveStatus(ctx, id, model.StatusSending, model.StatusDraft)
}

func (r *CampaignRepository) moveStatus(ctx context.Context, id string, from, to model.CampaignStatus) error {
	query := `UPDATE campaigns SET status=$1 WHERE id=$2 AND status=$3`
	res, err := r.DB.ExecContext(ctx, query, to, id, from)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return appErrors.NewCampaignNotDraft(id, "not "+string(from))
	}
	return nil
}

// MarkSent finishes a claimed campaign.
func (r *CampaignRepository) MarkSent(ctx context.Context, id string, sentCount int) error {
	query := `UPDATE campaigns SET status=$1, sent_count=$2 WHERE id=$3 AND status=$4`
	res, err := r.DB.ExecContext(ctx, query, model.StatusSent, sentCount, id, model.StatusSending)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return appErrors.NewCampaignNotDraft(id, "not "+string(model.StatusSending))
	}
	return nil
}

func (r *CampaignRepository) IncrementOpened(ctx context.Context, id string) error {
	_, err := r.DB.ExecContext(ctx, `UPDATE campaigns SET opened_count=opened_count+1 WHERE id=$1`, id)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCampaign(row rowScanner) (*model.Campaign, error) {
	var c model.Campaign
	err := row.Scan(
		&c.ID, &c.Title, &c.Message, &c.TargetAudience, &c.MaxRecipients, &c.ScheduledFor,
		&c.Status, &c.SentCount, &c.OpenedCount, &c.BookedCount, &c.CreatedBy, &c.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

var _ CampaignRepositoryInterface = (*CampaignRepository)(nil)

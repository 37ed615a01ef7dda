package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/unclebandit/clinic-booking/internal/model"
)

const (
	activeWindow = "180 days"
	newWindow    = "30 days"
)

// PatientRepositoryInterface defines methods used by service
type PatientRepositoryInterface interface {
	GetByID(ctx context.Context, id string) (*model.Patient, error)
	AudienceIDs(ctx context.Context, audience model.Audience) ([]string, error)
	CountAudience(ctx context.Context, audience model.Audience) (int, error)
}

// PatientRepository is the concrete implementation
type PatientRepository struct {
	DB *sql.DB
}

// GetByID fetches a patient by ID, nil when absent.
func (r *PatientRepository) GetByID(ctx context.Context, id string) (*model.Patient, error) {
	query := `
        SELECT id, phone, name, fcm_token, created_at
        FROM patients
        WHERE id = $1
    `
	var p model.Patient
	err := r.DB.QueryRowContext(ctx, query, id).Scan(&p.ID, &p.Phone, &p.Name, &p.FCMToken, &p.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

// AudienceIDs resolves a segment to the IDs of its patients.
func (r *PatientRepository) AudienceIDs(ctx context.Context, audience model.Audience) ([]string, error) {
	cond, err := audienceCondition(audience)
	if err != nil {
		return nil, err
	}

	rows, err := r.DB.QueryContext(ctx, `SELECT p.id FROM patients p WHERE `+cond+` ORDER BY p.id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *PatientRepository) CountAudience(ctx context.Context, audience model.Audience) (int, error) {
	cond, err := audienceCondition(audience)
	if err != nil {
		return 0, err
	}

	var n int
	err = r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM patients p WHERE `+cond).Scan(&n)
	return n, err
}

func audienceCondition(audience model.Audience) (string, error) {
	recentVisit := `EXISTS (
            SELECT 1 FROM appointments a
            WHERE a.patient_id = p.id
              AND a.status <> 'cancelled'
              AND a.appointment_date >= NOW() - INTERVAL '` + activeWindow + `')`

	switch audience {
	case model.AudienceAll:
		return "TRUE", nil
	case model.AudienceActive:
		return recentVisit, nil
	case model.AudienceInactive:
		return "NOT " + recentVisit, nil
	case model.AudienceNew:
		return "p.created_at >= NOW() - INTERVAL '" + newWindow + "'", nil
	}
	return "", fmt.Errorf("unknown audience %q", audience)
}

var _ PatientRepositoryInterface = (*PatientRepository)(nil)

package reports

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Overview is the school dashboard snapshot. All values are raw counts.
type Overview struct {
	Students            int `json:"students"`
	IndustrySupervisors int `json:"industry_supervisors"`
	UniversitySupers    int `json:"university_supervisors"`
	ConfirmedMeetings   int `json:"confirmed_meetings"`
	PendingMeetings     int `json:"pending_meetings"`
	LogbookSubmitted    int `json:"logbook_submitted"`
	LogbookReviewed     int `json:"logbook_reviewed"`
}

// Repository runs the aggregate queries behind the reports endpoints.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a reports repository.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// Overview collects per-school counts in one round trip.
func (r *Repository) Overview(ctx context.Context, schoolID uuid.UUID) (*Overview, error) {
	o := &Overview{}
	err := r.db.QueryRow(ctx, `
		SELECT
			(SELECT COUNT(*) FROM users WHERE school_id = $1 AND role = 'student'),
			(SELECT COUNT(*) FROM users WHERE school_id = $1 AND role = 'industry_supervisor'),
			(SELECT COUNT(*) FROM users WHERE school_id = $1 AND role = 'university_supervisor'),
			(SELECT COUNT(*) FROM meetings WHERE school_id = $1 AND status = 'confirmed'),
			(SELECT COUNT(*) FROM meetings WHERE school_id = $1 AND status = 'pending'),
			(SELECT COUNT(*) FROM logbook_entries WHERE school_id = $1 AND status = 'submitted'),
			(SELECT COUNT(*) FROM logbook_entries WHERE school_id = $1 AND status = 'reviewed')`,
		schoolID,
	).Scan(&o.Students, &o.IndustrySupervisors, &o.UniversitySupers,
		&o.ConfirmedMeetings, &o.PendingMeetings, &o.LogbookSubmitted, &o.LogbookReviewed)
	if err != nil {
		return nil, fmt.Errorf("overview counts: %w", err)
	}
	return o, nil
}

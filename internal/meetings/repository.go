package meetings

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/attachpro/backend/internal/models"
)

const meetingColumns = `id, school_id, initiator_id, student_profile_id, industry_supervisor_id,
	kind, scheduled_at, purpose, student_response, student_note, student_proposed_at,
	industry_response, industry_note, industry_proposed_at, status, created_at, updated_at`

// Repository handles meeting persistence and the transactional respond path.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a meetings repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMeeting(row rowScanner) (*models.Meeting, error) {
	var m models.Meeting
	err := row.Scan(&m.ID, &m.SchoolID, &m.InitiatorID, &m.StudentProfileID, &m.IndustrySupervisorID,
		&m.Kind, &m.ScheduledAt, &m.Purpose, &m.StudentResponse, &m.StudentNote, &m.StudentProposedAt,
		&m.IndustryResponse, &m.IndustryNote, &m.IndustryProposedAt, &m.Status, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, err
	}
	return &m, nil
}

// Create inserts a meeting with both participant states pending.
func (r *Repository) Create(ctx context.Context, m *models.Meeting) error {
	m.StudentResponse = models.ResponsePending
	m.IndustryResponse = models.ResponsePending
	m.Status = models.MeetingPending
	const q = `INSERT INTO meetings (school_id, initiator_id, student_profile_id, industry_supervisor_id,
			kind, scheduled_at, purpose)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, q, m.SchoolID, m.InitiatorID, m.StudentProfileID, m.IndustrySupervisorID,
		string(m.Kind), m.ScheduledAt, m.Purpose).
		Scan(&m.ID, &m.CreatedAt, &m.UpdatedAt)
}

// GetByID returns a meeting within a school.
func (r *Repository) GetByID(ctx context.Context, schoolID, id uuid.UUID) (*models.Meeting, error) {
	return scanMeeting(r.pool.QueryRow(ctx,
		`SELECT `+meetingColumns+` FROM meetings WHERE id = $1 AND school_id = $2`, id, schoolID))
}

// Respond applies one participant's answer and re-derives the aggregate
// status in the same transaction. The row is locked for the read-modify-write
// so two concurrent responses serialize instead of losing an update.
// Returns the updated meeting and whether this response confirmed it.
func (r *Repository) Respond(ctx context.Context, schoolID, id uuid.UUID, slot Slot, state models.ResponseState, note *string, proposedAt *time.Time) (*models.Meeting, bool, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, false, fmt.Errorf("%w: begin", models.ErrTransactionAborted)
	}
	defer tx.Rollback(ctx)

	m, err := scanMeeting(tx.QueryRow(ctx,
		`SELECT `+meetingColumns+` FROM meetings WHERE id = $1 AND school_id = $2 FOR UPDATE`, id, schoolID))
	if err != nil {
		return nil, false, err
	}

	wasConfirmed := m.Status == models.MeetingConfirmed
	switch slot {
	case SlotStudent:
		m.StudentResponse = state
		m.StudentNote = note
		m.StudentProposedAt = proposedAt
	case SlotIndustry:
		m.IndustryResponse = state
		m.IndustryNote = note
		m.IndustryProposedAt = proposedAt
	default:
		return nil, false, models.ErrForbidden
	}
	m.Status = DeriveStatus(m)

	const q = `UPDATE meetings SET
			student_response = $2, student_note = $3, student_proposed_at = $4,
			industry_response = $5, industry_note = $6, industry_proposed_at = $7,
			status = $8, updated_at = NOW()
		WHERE id = $1`
	if _, err := tx.Exec(ctx, q, m.ID,
		string(m.StudentResponse), m.StudentNote, m.StudentProposedAt,
		string(m.IndustryResponse), m.IndustryNote, m.IndustryProposedAt,
		string(m.Status)); err != nil {
		return nil, false, fmt.Errorf("%w: %v", models.ErrTransactionAborted, err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, false, fmt.Errorf("%w: commit", models.ErrTransactionAborted)
	}
	return m, m.Status == models.MeetingConfirmed && !wasConfirmed, nil
}

// ListForInitiator returns meetings created by a university supervisor.
func (r *Repository) ListForInitiator(ctx context.Context, schoolID, initiatorID uuid.UUID) ([]*models.Meeting, error) {
	return r.list(ctx, `SELECT `+meetingColumns+` FROM meetings
		WHERE school_id = $1 AND initiator_id = $2 ORDER BY scheduled_at DESC`, schoolID, initiatorID)
}

// ListForIndustrySupervisor returns meetings where the user holds the industry seat.
func (r *Repository) ListForIndustrySupervisor(ctx context.Context, schoolID, userID uuid.UUID) ([]*models.Meeting, error) {
	return r.list(ctx, `SELECT `+meetingColumns+` FROM meetings
		WHERE school_id = $1 AND industry_supervisor_id = $2 ORDER BY scheduled_at DESC`, schoolID, userID)
}

// ListForStudentProfile returns meetings where the profile holds the student seat.
func (r *Repository) ListForStudentProfile(ctx context.Context, schoolID, profileID uuid.UUID) ([]*models.Meeting, error) {
	return r.list(ctx, `SELECT `+meetingColumns+` FROM meetings
		WHERE school_id = $1 AND student_profile_id = $2 ORDER BY scheduled_at DESC`, schoolID, profileID)
}

// ListConfirmed returns only confirmed meetings of a school. School admins
// are not participants and must not see pending negotiation detail.
func (r *Repository) ListConfirmed(ctx context.Context, schoolID uuid.UUID) ([]*models.Meeting, error) {
	return r.list(ctx, `SELECT `+meetingColumns+` FROM meetings
		WHERE school_id = $1 AND status = 'confirmed' ORDER BY scheduled_at DESC`, schoolID)
}

func (r *Repository) list(ctx context.Context, q string, args ...any) ([]*models.Meeting, error) {
	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []*models.Meeting
	for rows.Next() {
		m, err := scanMeeting(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, m)
	}
	return list, rows.Err()
}

package logbook

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/attachpro/backend/internal/models"
)

const entryColumns = `id, student_profile_id, school_id, entry_date, activity, refined_activity,
	evidence_url, status, supervisor_comment, reviewed_by, created_at, updated_at`

// Repository handles logbook entry persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a logbook repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(row rowScanner) (*models.LogbookEntry, error) {
	var e models.LogbookEntry
	err := row.Scan(&e.ID, &e.StudentProfileID, &e.SchoolID, &e.EntryDate, &e.Activity, &e.RefinedActivity,
		&e.EvidenceURL, &e.Status, &e.SupervisorComment, &e.ReviewedBy, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, err
	}
	return &e, nil
}

// Create inserts a logbook entry.
func (r *Repository) Create(ctx context.Context, e *models.LogbookEntry) error {
	const q = `INSERT INTO logbook_entries (student_profile_id, school_id, entry_date, activity, evidence_url)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, status, created_at, updated_at`
	return r.pool.QueryRow(ctx, q, e.StudentProfileID, e.SchoolID, e.EntryDate, e.Activity, e.EvidenceURL).
		Scan(&e.ID, &e.Status, &e.CreatedAt, &e.UpdatedAt)
}

// GetByID returns an entry within a school.
func (r *Repository) GetByID(ctx context.Context, schoolID, id uuid.UUID) (*models.LogbookEntry, error) {
	return scanEntry(r.pool.QueryRow(ctx,
		`SELECT `+entryColumns+` FROM logbook_entries WHERE id = $1 AND school_id = $2`, id, schoolID))
}

// SetRefinedActivity stores the rewritten activity text once the refiner returns.
func (r *Repository) SetRefinedActivity(ctx context.Context, id uuid.UUID, refined string) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE logbook_entries SET refined_activity = $2, updated_at = NOW() WHERE id = $1`, id, refined)
	return err
}

// Review marks an entry reviewed with the supervisor's comment.
func (r *Repository) Review(ctx context.Context, schoolID, id, reviewerID uuid.UUID, comment string) (*models.LogbookEntry, error) {
	const q = `UPDATE logbook_entries SET
			status = 'reviewed', supervisor_comment = $3, reviewed_by = $4, updated_at = NOW()
		WHERE id = $1 AND school_id = $2
		RETURNING ` + entryColumns
	return scanEntry(r.pool.QueryRow(ctx, q, id, schoolID, comment, reviewerID))
}

// ListForStudentProfile returns a student's entries, newest first.
func (r *Repository) ListForStudentProfile(ctx context.Context, schoolID, profileID uuid.UUID) ([]*models.LogbookEntry, error) {
	return r.list(ctx, `SELECT `+entryColumns+` FROM logbook_entries
		WHERE school_id = $1 AND student_profile_id = $2 ORDER BY entry_date DESC`, schoolID, profileID)
}

// ListForSupervisor returns entries of students assigned to the supervisor,
// newest first.
func (r *Repository) ListForSupervisor(ctx context.Context, schoolID, supervisorID uuid.UUID) ([]*models.LogbookEntry, error) {
	return r.list(ctx, `SELECT `+prefixedEntryColumns("e")+` FROM logbook_entries e
		INNER JOIN student_profiles p ON p.id = e.student_profile_id
		WHERE e.school_id = $1 AND (p.industry_supervisor_id = $2 OR p.university_supervisor_id = $2)
		ORDER BY e.entry_date DESC`, schoolID, supervisorID)
}

// ListBySchool returns all entries of a school, newest first.
func (r *Repository) ListBySchool(ctx context.Context, schoolID uuid.UUID) ([]*models.LogbookEntry, error) {
	return r.list(ctx, `SELECT `+entryColumns+` FROM logbook_entries
		WHERE school_id = $1 ORDER BY entry_date DESC`, schoolID)
}

func (r *Repository) list(ctx context.Context, q string, args ...any) ([]*models.LogbookEntry, error) {
	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []*models.LogbookEntry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, e)
	}
	return list, rows.Err()
}

func prefixedEntryColumns(alias string) string {
	return alias + ".id, " + alias + ".student_profile_id, " + alias + ".school_id, " +
		alias + ".entry_date, " + alias + ".activity, " + alias + ".refined_activity, " +
		alias + ".evidence_url, " + alias + ".status, " + alias + ".supervisor_comment, " +
		alias + ".reviewed_by, " + alias + ".created_at, " + alias + ".updated_at"
}

// CountByStatus returns total and reviewed entry counts for a school.
func (r *Repository) CountByStatus(ctx context.Context, schoolID uuid.UUID) (total, reviewed int, err error) {
	err = r.pool.QueryRow(ctx,
		`SELECT COUNT(*), COUNT(*) FILTER (WHERE status = 'reviewed') FROM logbook_entries WHERE school_id = $1`,
		schoolID).Scan(&total, &reviewed)
	return total, reviewed, err
}

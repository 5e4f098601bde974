package students

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/attachpro/backend/internal/auth"
	"github.com/attachpro/backend/internal/models"
	"github.com/attachpro/backend/internal/roster"
)

const profileColumns = `id, user_id, school_id, school_name, admission_no, department,
	attachment_org, industry_supervisor_id, university_supervisor_id, created_at, updated_at`

// Repository handles student profile persistence and transactional onboarding.
type Repository struct {
	pool  *pgxpool.Pool
	users *auth.Repository
}

// NewRepository creates a students repository.
func NewRepository(pool *pgxpool.Pool, users *auth.Repository) *Repository {
	return &Repository{pool: pool, users: users}
}

func scanProfile(row pgx.Row) (*models.StudentProfile, error) {
	var p models.StudentProfile
	err := row.Scan(&p.ID, &p.UserID, &p.SchoolID, &p.SchoolName, &p.AdmissionNo, &p.Department,
		&p.AttachmentOrg, &p.IndustrySupervisorID, &p.UniversitySupervisorID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

// CreateWithUser atomically creates a student user and its profile. On any
// failure both inserts roll back, leaving no orphan identity. Uniqueness
// violations map to specific error kinds; everything else surfaces as
// ErrTransactionAborted.
func (r *Repository) CreateWithUser(ctx context.Context, user *models.User, profile *models.StudentProfile) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("%w: begin", models.ErrTransactionAborted)
	}
	defer tx.Rollback(ctx)

	user.Role = models.RoleStudent
	if user.Status == "" {
		user.Status = models.UserActive
	}
	if err := r.users.CreateTx(ctx, tx, user); err != nil {
		if errors.Is(err, models.ErrDuplicateEmail) || errors.Is(err, models.ErrValidation) {
			return err
		}
		return fmt.Errorf("%w: %v", models.ErrTransactionAborted, err)
	}

	profile.UserID = user.ID
	const insertProfile = `INSERT INTO student_profiles (user_id, school_id, school_name, admission_no, department, attachment_org)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at`
	err = tx.QueryRow(ctx, insertProfile, profile.UserID, profile.SchoolID, profile.SchoolName,
		profile.AdmissionNo, profile.Department, profile.AttachmentOrg).
		Scan(&profile.ID, &profile.CreatedAt, &profile.UpdatedAt)
	if err != nil {
		if auth.IsUniqueViolation(err, "student_profiles_admission_no_key") {
			return models.ErrDuplicateAdmissionNo
		}
		return fmt.Errorf("%w: %v", models.ErrTransactionAborted, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("%w: commit", models.ErrTransactionAborted)
	}
	return nil
}

// BulkResult summarises a bulk onboarding run.
type BulkResult struct {
	Successful int      `json:"successful"`
	Failed     int      `json:"failed"`
	Errors     []string `json:"errors"`
}

// profileCreator is the single write the batch loop performs per row.
// *Repository satisfies it with a transactional insert.
type profileCreator interface {
	CreateWithUser(ctx context.Context, user *models.User, profile *models.StudentProfile) error
}

// BulkCreate onboards roster rows independently: each row gets its own
// transaction, and a failing row is recorded and skipped without aborting
// the batch. passwordHash is the shared placeholder credential.
func (r *Repository) BulkCreate(ctx context.Context, schoolID uuid.UUID, schoolName, passwordHash string, rows []roster.Row) BulkResult {
	return bulkCreate(ctx, r, schoolID, schoolName, passwordHash, rows)
}

func bulkCreate(ctx context.Context, store profileCreator, schoolID uuid.UUID, schoolName, passwordHash string, rows []roster.Row) BulkResult {
	var result BulkResult
	for i, row := range rows {
		if err := createRow(ctx, store, schoolID, schoolName, passwordHash, row); err != nil {
			result.Failed++
			result.Errors = append(result.Errors, rowError(i, row, err))
			continue
		}
		result.Successful++
	}
	return result
}

func createRow(ctx context.Context, store profileCreator, schoolID uuid.UUID, schoolName, passwordHash string, row roster.Row) error {
	if row.Name == "" || row.Email == "" || row.AdmissionNo == "" || row.Department == "" {
		return models.ErrValidation
	}
	user := &models.User{
		SchoolID: &schoolID,
		FullName: row.Name,
		Email:    row.Email,
		Password: passwordHash,
		Status:   models.UserPending, // must change the placeholder password on first use
	}
	profile := &models.StudentProfile{
		SchoolID:    schoolID,
		SchoolName:  schoolName,
		AdmissionNo: row.AdmissionNo,
		Department:  row.Department,
	}
	return store.CreateWithUser(ctx, user, profile)
}

func rowError(i int, row roster.Row, err error) string {
	switch {
	case errors.Is(err, models.ErrDuplicateEmail):
		return fmt.Sprintf("row %d (%s): email already registered", i+1, row.Email)
	case errors.Is(err, models.ErrDuplicateAdmissionNo):
		return fmt.Sprintf("row %d (%s): admission number already registered", i+1, row.Email)
	case errors.Is(err, models.ErrValidation):
		return fmt.Sprintf("row %d (%s): missing required field", i+1, row.Email)
	default:
		return fmt.Sprintf("row %d (%s): could not be imported", i+1, row.Email)
	}
}

// GetByID returns a profile by ID within a school.
func (r *Repository) GetByID(ctx context.Context, schoolID, id uuid.UUID) (*models.StudentProfile, error) {
	return scanProfile(r.pool.QueryRow(ctx,
		`SELECT `+profileColumns+` FROM student_profiles WHERE id = $1 AND school_id = $2`, id, schoolID))
}

// GetByUserID returns the profile owned by a user.
func (r *Repository) GetByUserID(ctx context.Context, userID uuid.UUID) (*models.StudentProfile, error) {
	return scanProfile(r.pool.QueryRow(ctx,
		`SELECT `+profileColumns+` FROM student_profiles WHERE user_id = $1`, userID))
}

// ListBySchool returns all student profiles of a school with their users.
func (r *Repository) ListBySchool(ctx context.Context, schoolID uuid.UUID) ([]models.StudentWithUser, error) {
	const q = `SELECT p.id, p.user_id, p.school_id, p.school_name, p.admission_no, p.department,
			p.attachment_org, p.industry_supervisor_id, p.university_supervisor_id, p.created_at, p.updated_at,
			u.id, u.school_id, u.full_name, u.email, u.role, u.status, u.created_at
		FROM student_profiles p
		INNER JOIN users u ON u.id = p.user_id
		WHERE p.school_id = $1
		ORDER BY u.full_name`
	rows, err := r.pool.Query(ctx, q, schoolID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.StudentWithUser
	for rows.Next() {
		var s models.StudentWithUser
		if err := rows.Scan(&s.Profile.ID, &s.Profile.UserID, &s.Profile.SchoolID, &s.Profile.SchoolName,
			&s.Profile.AdmissionNo, &s.Profile.Department, &s.Profile.AttachmentOrg,
			&s.Profile.IndustrySupervisorID, &s.Profile.UniversitySupervisorID,
			&s.Profile.CreatedAt, &s.Profile.UpdatedAt,
			&s.User.ID, &s.User.SchoolID, &s.User.FullName, &s.User.Email, &s.User.Role, &s.User.Status, &s.User.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, s)
	}
	return list, rows.Err()
}

// AssignSupervisors sets the industry and/or university supervisor slots.
// Nil arguments leave the slot unchanged.
func (r *Repository) AssignSupervisors(ctx context.Context, schoolID, profileID uuid.UUID, industryID, universityID *uuid.UUID) (*models.StudentProfile, error) {
	const q = `UPDATE student_profiles SET
			industry_supervisor_id = COALESCE($3, industry_supervisor_id),
			university_supervisor_id = COALESCE($4, university_supervisor_id),
			updated_at = NOW()
		WHERE id = $1 AND school_id = $2
		RETURNING ` + profileColumns
	return scanProfile(r.pool.QueryRow(ctx, q, profileID, schoolID, industryID, universityID))
}

// UpdateSelf applies a student's own profile changes.
func (r *Repository) UpdateSelf(ctx context.Context, userID uuid.UUID, attachmentOrg, department *string) (*models.StudentProfile, error) {
	const q = `UPDATE student_profiles SET
			attachment_org = COALESCE($2, attachment_org),
			department = COALESCE($3, department),
			updated_at = NOW()
		WHERE user_id = $1
		RETURNING ` + profileColumns
	return scanProfile(r.pool.QueryRow(ctx, q, userID, attachmentOrg, department))
}

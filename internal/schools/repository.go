package schools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/attachpro/backend/internal/auth"
	"github.com/attachpro/backend/internal/models"
)

const schoolColumns = `id, name, contact_email, status, subscription_expires_at,
	logo_url, primary_color, settings, created_at, updated_at`

// Repository handles school (tenant) persistence.
type Repository struct {
	pool  *pgxpool.Pool
	users *auth.Repository
}

// NewRepository creates a schools repository.
func NewRepository(pool *pgxpool.Pool, users *auth.Repository) *Repository {
	return &Repository{pool: pool, users: users}
}

func scanSchool(row pgx.Row) (*models.School, error) {
	var s models.School
	err := row.Scan(&s.ID, &s.Name, &s.ContactEmail, &s.Status, &s.SubscriptionExpiresAt,
		&s.LogoURL, &s.PrimaryColor, &s.Settings, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, err
	}
	return &s, nil
}

// CreateWithAdmin atomically creates a school and its first school_admin user.
// The school starts on trial with a 30-day subscription window. On any
// failure both inserts roll back; uniqueness violations map to their
// specific error kinds, everything else surfaces as ErrTransactionAborted.
func (r *Repository) CreateWithAdmin(ctx context.Context, school *models.School, admin *models.User) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("%w: begin", models.ErrTransactionAborted)
	}
	defer tx.Rollback(ctx)

	school.Status = models.SchoolTrial
	school.SubscriptionExpiresAt = time.Now().Add(models.TrialPeriod)
	if school.Settings == nil {
		school.Settings = json.RawMessage(`{}`)
	}
	const insertSchool = `INSERT INTO schools (name, contact_email, status, subscription_expires_at, settings)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at`
	err = tx.QueryRow(ctx, insertSchool, school.Name, school.ContactEmail,
		string(school.Status), school.SubscriptionExpiresAt, school.Settings).
		Scan(&school.ID, &school.CreatedAt, &school.UpdatedAt)
	if err != nil {
		if auth.IsUniqueViolation(err, "schools_contact_email_key") {
			return models.ErrDuplicateContactEmail
		}
		return fmt.Errorf("%w: %v", models.ErrTransactionAborted, err)
	}

	admin.SchoolID = &school.ID
	admin.Role = models.RoleSchoolAdmin
	admin.Status = models.UserActive
	if err := r.users.CreateTx(ctx, tx, admin); err != nil {
		if errors.Is(err, models.ErrDuplicateEmail) {
			return err
		}
		return fmt.Errorf("%w: %v", models.ErrTransactionAborted, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("%w: commit", models.ErrTransactionAborted)
	}
	return nil
}

// GetByID returns a school by ID.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.School, error) {
	return scanSchool(r.pool.QueryRow(ctx, `SELECT `+schoolColumns+` FROM schools WHERE id = $1`, id))
}

// List returns all schools, newest first.
func (r *Repository) List(ctx context.Context) ([]*models.School, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+schoolColumns+` FROM schools ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []*models.School
	for rows.Next() {
		var s models.School
		if err := rows.Scan(&s.ID, &s.Name, &s.ContactEmail, &s.Status, &s.SubscriptionExpiresAt,
			&s.LogoURL, &s.PrimaryColor, &s.Settings, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, err
		}
		list = append(list, &s)
	}
	return list, rows.Err()
}

// UpdateStatus changes a school's lifecycle status.
func (r *Repository) UpdateStatus(ctx context.Context, id uuid.UUID, status models.SchoolStatus) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE schools SET status = $2, updated_at = NOW() WHERE id = $1`, id, string(status))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

// SelfUpdate holds the tenant self-service mutable fields. Nil fields are
// left unchanged.
type SelfUpdate struct {
	Name         *string
	LogoURL      *string
	PrimaryColor *string
	Settings     json.RawMessage
}

// UpdateSelf applies tenant self-service changes to name, branding and settings.
func (r *Repository) UpdateSelf(ctx context.Context, id uuid.UUID, upd SelfUpdate) (*models.School, error) {
	const q = `UPDATE schools SET
			name = COALESCE($2, name),
			logo_url = COALESCE($3, logo_url),
			primary_color = COALESCE($4, primary_color),
			settings = COALESCE($5, settings),
			updated_at = NOW()
		WHERE id = $1
		RETURNING ` + schoolColumns
	return scanSchool(r.pool.QueryRow(ctx, q, id, upd.Name, upd.LogoURL, upd.PrimaryColor, upd.Settings))
}

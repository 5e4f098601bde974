package auth

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/attachpro/backend/internal/models"
)

const userColumns = `id, school_id, full_name, email, password_hash, role, status,
	last_login_at, failed_logins, reset_token, reset_token_expires_at, created_at, updated_at`

// Repository handles user persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates an auth repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.SchoolID, &u.FullName, &u.Email, &u.Password, &u.Role, &u.Status,
		&u.LastLoginAt, &u.FailedLogins, &u.ResetToken, &u.ResetTokenExpiresAt, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

// IsUniqueViolation reports whether err is a unique-constraint violation,
// optionally on a specific constraint name.
func IsUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != "23505" {
		return false
	}
	return constraint == "" || pgErr.ConstraintName == constraint
}

// GetByID returns a user by ID.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
}

// GetByEmail returns a user by email (platform-wide; emails are globally unique).
func (r *Repository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email))
}

// Create inserts a new user. Duplicate emails map to ErrDuplicateEmail.
func (r *Repository) Create(ctx context.Context, u *models.User) error {
	return r.create(ctx, r.pool, u)
}

// CreateTx inserts a new user inside an existing transaction.
func (r *Repository) CreateTx(ctx context.Context, tx pgx.Tx, u *models.User) error {
	return r.create(ctx, tx, u)
}

type execQuerier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func (r *Repository) create(ctx context.Context, q execQuerier, u *models.User) error {
	if err := models.ValidateTenancy(u.Role, u.SchoolID); err != nil {
		return err
	}
	const sql = `INSERT INTO users (school_id, full_name, email, password_hash, role, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at`
	err := q.QueryRow(ctx, sql, u.SchoolID, u.FullName, u.Email, u.Password, string(u.Role), string(u.Status)).
		Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if IsUniqueViolation(err, "users_email_key") {
			return models.ErrDuplicateEmail
		}
		return err
	}
	return nil
}

// RecordLoginSuccess stamps last_login_at and resets the failure counter.
func (r *Repository) RecordLoginSuccess(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE users SET last_login_at = NOW(), failed_logins = 0, updated_at = NOW() WHERE id = $1`, id)
	return err
}

// RecordLoginFailure increments the failure counter and returns the new count.
func (r *Repository) RecordLoginFailure(ctx context.Context, id uuid.UUID) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx,
		`UPDATE users SET failed_logins = failed_logins + 1, updated_at = NOW() WHERE id = $1 RETURNING failed_logins`, id).
		Scan(&count)
	return count, err
}

// SetStatus updates the lifecycle status (lock/unlock).
func (r *Repository) SetStatus(ctx context.Context, id uuid.UUID, status models.UserStatus) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE users SET status = $2, updated_at = NOW() WHERE id = $1`, id, string(status))
	return err
}

// SetResetToken stores a password reset token with expiry.
func (r *Repository) SetResetToken(ctx context.Context, id uuid.UUID, token string, expiresAt time.Time) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE users SET reset_token = $2, reset_token_expires_at = $3, updated_at = NOW() WHERE id = $1`,
		id, token, expiresAt)
	return err
}

// GetByResetToken returns the user holding an unexpired reset token.
func (r *Repository) GetByResetToken(ctx context.Context, token string) (*models.User, error) {
	return scanUser(r.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE reset_token = $1 AND reset_token_expires_at > NOW()`, token))
}

// ResetPassword sets a new password hash, clears the reset token, unlocks the
// account and zeroes the failure counter.
func (r *Repository) ResetPassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE users SET password_hash = $2, reset_token = NULL, reset_token_expires_at = NULL,
			failed_logins = 0, status = 'active', updated_at = NOW() WHERE id = $1`,
		id, passwordHash)
	return err
}

// UpdatePassword sets a new password hash for an authenticated change.
func (r *Repository) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE users SET password_hash = $2, updated_at = NOW() WHERE id = $1`, id, passwordHash)
	return err
}

// ListBySchool returns users of a school, optionally filtered by role.
func (r *Repository) ListBySchool(ctx context.Context, schoolID uuid.UUID, role models.Role) ([]models.UserPublic, error) {
	sql := `SELECT id, school_id, full_name, email, role, status, created_at
		FROM users WHERE school_id = $1`
	args := []any{schoolID}
	if role != "" {
		sql += ` AND role = $2`
		args = append(args, string(role))
	}
	sql += ` ORDER BY full_name, email`
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.UserPublic
	for rows.Next() {
		var u models.UserPublic
		if err := rows.Scan(&u.ID, &u.SchoolID, &u.FullName, &u.Email, &u.Role, &u.Status, &u.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, u)
	}
	return list, rows.Err()
}

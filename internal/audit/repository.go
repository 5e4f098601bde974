package audit

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/attachpro/backend/internal/models"
)

// Repository handles audit_logs persistence. The table is append-only: no
// update or delete is exposed.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates an audit repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Insert appends one audit row.
func (r *Repository) Insert(ctx context.Context, log *models.AuditLog) error {
	const q = `INSERT INTO audit_logs (user_id, action, entity_type, entity_id, metadata, ip, user_agent)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at`
	return r.pool.QueryRow(ctx, q, log.UserID, log.Action, log.EntityType, log.EntityID,
		log.Metadata, log.IP, log.UserAgent).
		Scan(&log.ID, &log.CreatedAt)
}

// ListBySchool returns audit rows for actors of one school, newest first.
func (r *Repository) ListBySchool(ctx context.Context, schoolID uuid.UUID, limit int) ([]*models.AuditLog, error) {
	const q = `SELECT a.id, a.user_id, a.action, a.entity_type, a.entity_id, a.metadata, a.ip, a.user_agent, a.created_at
		FROM audit_logs a
		INNER JOIN users u ON u.id = a.user_id
		WHERE u.school_id = $1
		ORDER BY a.created_at DESC
		LIMIT $2`
	return r.list(ctx, q, schoolID, limit)
}

// ListAll returns audit rows platform-wide, newest first.
func (r *Repository) ListAll(ctx context.Context, limit int) ([]*models.AuditLog, error) {
	const q = `SELECT id, user_id, action, entity_type, entity_id, metadata, ip, user_agent, created_at
		FROM audit_logs
		ORDER BY created_at DESC
		LIMIT $1`
	return r.list(ctx, q, limit)
}

func (r *Repository) list(ctx context.Context, q string, args ...any) ([]*models.AuditLog, error) {
	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []*models.AuditLog
	for rows.Next() {
		var a models.AuditLog
		if err := rows.Scan(&a.ID, &a.UserID, &a.Action, &a.EntityType, &a.EntityID,
			&a.Metadata, &a.IP, &a.UserAgent, &a.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, &a)
	}
	return list, rows.Err()
}

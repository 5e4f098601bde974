package attendance

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/attachpro/backend/internal/auth"
	"github.com/attachpro/backend/internal/models"
)

// Summary is an aggregate of attendance over a date range. Counts are raw;
// clients derive their own percentages.
type Summary struct {
	StudentProfileID uuid.UUID `json:"student_profile_id"`
	DaysPresent      int       `json:"days_present"`
	DaysCheckedOut   int       `json:"days_checked_out"`
}

// Repository persists attendance records.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates an attendance repository.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// CheckIn records today's check-in for a student. A second check-in on the
// same day returns ErrDuplicateCheckIn via the unique (student, day)
// constraint rather than a pre-read.
func (r *Repository) CheckIn(ctx context.Context, schoolID, profileID uuid.UUID, day time.Time) (*models.AttendanceRecord, error) {
	rec := &models.AttendanceRecord{}
	err := r.db.QueryRow(ctx, `
		INSERT INTO attendance_records (student_profile_id, school_id, day)
		VALUES ($1, $2, $3)
		RETURNING id, student_profile_id, school_id, day, check_in_at, check_out_at`,
		profileID, schoolID, day,
	).Scan(&rec.ID, &rec.StudentProfileID, &rec.SchoolID, &rec.Day, &rec.CheckInAt, &rec.CheckOutAt)
	if err != nil {
		if auth.IsUniqueViolation(err, "attendance_records_student_profile_id_day_key") {
			return nil, models.ErrDuplicateCheckIn
		}
		return nil, fmt.Errorf("check in: %w", err)
	}
	return rec, nil
}

// CheckOut stamps the check-out time on today's record.
func (r *Repository) CheckOut(ctx context.Context, schoolID, profileID uuid.UUID, day time.Time) (*models.AttendanceRecord, error) {
	rec := &models.AttendanceRecord{}
	err := r.db.QueryRow(ctx, `
		UPDATE attendance_records
		SET check_out_at = NOW()
		WHERE school_id = $1 AND student_profile_id = $2 AND day = $3
		RETURNING id, student_profile_id, school_id, day, check_in_at, check_out_at`,
		schoolID, profileID, day,
	).Scan(&rec.ID, &rec.StudentProfileID, &rec.SchoolID, &rec.Day, &rec.CheckInAt, &rec.CheckOutAt)
	if err != nil {
		return nil, fmt.Errorf("check out: %w", err)
	}
	return rec, nil
}

// ListForStudent returns a student's records, newest first.
func (r *Repository) ListForStudent(ctx context.Context, schoolID, profileID uuid.UUID) ([]*models.AttendanceRecord, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, student_profile_id, school_id, day, check_in_at, check_out_at
		FROM attendance_records
		WHERE school_id = $1 AND student_profile_id = $2
		ORDER BY day DESC`,
		schoolID, profileID)
	if err != nil {
		return nil, fmt.Errorf("list attendance: %w", err)
	}
	defer rows.Close()

	var out []*models.AttendanceRecord
	for rows.Next() {
		rec := &models.AttendanceRecord{}
		if err := rows.Scan(&rec.ID, &rec.StudentProfileID, &rec.SchoolID, &rec.Day, &rec.CheckInAt, &rec.CheckOutAt); err != nil {
			return nil, fmt.Errorf("scan attendance: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// SummaryForStudent aggregates one student's attendance.
func (r *Repository) SummaryForStudent(ctx context.Context, schoolID, profileID uuid.UUID) (*Summary, error) {
	s := &Summary{StudentProfileID: profileID}
	err := r.db.QueryRow(ctx, `
		SELECT COUNT(*), COUNT(*) FILTER (WHERE check_out_at IS NOT NULL)
		FROM attendance_records
		WHERE school_id = $1 AND student_profile_id = $2`,
		schoolID, profileID,
	).Scan(&s.DaysPresent, &s.DaysCheckedOut)
	if err != nil {
		return nil, fmt.Errorf("attendance summary: %w", err)
	}
	return s, nil
}

// SummaryBySchool aggregates attendance per student across a school.
func (r *Repository) SummaryBySchool(ctx context.Context, schoolID uuid.UUID) ([]Summary, error) {
	rows, err := r.db.Query(ctx, `
		SELECT student_profile_id, COUNT(*), COUNT(*) FILTER (WHERE check_out_at IS NOT NULL)
		FROM attendance_records
		WHERE school_id = $1
		GROUP BY student_profile_id`,
		schoolID)
	if err != nil {
		return nil, fmt.Errorf("school attendance summary: %w", err)
	}
	defer rows.Close()

	var out []Summary
	for rows.Next() {
		var s Summary
		if err := rows.Scan(&s.StudentProfileID, &s.DaysPresent, &s.DaysCheckedOut); err != nil {
			return nil, fmt.Errorf("scan summary: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

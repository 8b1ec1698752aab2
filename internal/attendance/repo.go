package attendance

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Repository persists attendance records in Postgres.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a repo.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

const recordColumns = `id, student_id, student_name, course, rfid_tag, image_url, date, time_in, time_out, status, created_at, updated_at`

// OpenCheckIn returns today's open IN record for a student, or nil. At most
// one should exist; created_at ordering picks the first deterministically if
// the invariant was ever violated.
func (r *Repository) OpenCheckIn(ctx context.Context, studentID, date string) (*Record, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+recordColumns+`
		FROM attendance_records
		WHERE date = $1 AND student_id = $2 AND status = $3
		ORDER BY created_at
		LIMIT 1
	`, date, studentID, StatusIn)
	return scanRecord(row)
}

// Insert writes a new record. Creation and update timestamps are assigned by
// the database.
func (r *Repository) Insert(ctx context.Context, rec Record) (Record, error) {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO attendance_records (id, student_id, student_name, course, rfid_tag, image_url, date, time_in, time_out, status)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
		RETURNING created_at, updated_at
	`, rec.ID, rec.StudentID, rec.StudentName, rec.Course, rec.RFIDTag, rec.ImageURL,
		rec.Date, rec.TimeIn, rec.TimeOut, rec.Status)
	if err := row.Scan(&rec.CreatedAt, &rec.UpdatedAt); err != nil {
		return Record{}, err
	}
	return rec, nil
}

// CheckOut closes a record in place: time_out, status OUT, refreshed
// update timestamp. Everything else is left untouched.
func (r *Repository) CheckOut(ctx context.Context, id, timeOut string) (Record, error) {
	row := r.db.QueryRowContext(ctx, `
		UPDATE attendance_records
		SET time_out = $2, status = $3, updated_at = NOW()
		WHERE id = $1
		RETURNING `+recordColumns+`
	`, id, timeOut, StatusOut)
	rec, err := scanRecord(row)
	if err != nil {
		return Record{}, err
	}
	if rec == nil {
		return Record{}, fmt.Errorf("attendance record %s not found", id)
	}
	return *rec, nil
}

// Get returns a single record by id, or nil.
func (r *Repository) Get(ctx context.Context, id string) (*Record, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+recordColumns+` FROM attendance_records WHERE id = $1
	`, id)
	return scanRecord(row)
}

// ListByDate returns all records for a calendar date, newest first.
func (r *Repository) ListByDate(ctx context.Context, date string) ([]Record, error) {
	return r.list(ctx, `
		SELECT `+recordColumns+`
		FROM attendance_records
		WHERE date = $1
		ORDER BY created_at DESC
	`, date)
}

// ListByStudent returns a student's full attendance history, newest first.
func (r *Repository) ListByStudent(ctx context.Context, studentID string) ([]Record, error) {
	return r.list(ctx, `
		SELECT `+recordColumns+`
		FROM attendance_records
		WHERE student_id = $1
		ORDER BY created_at DESC
	`, studentID)
}

// ListLatest returns the newest records across all students, feeding the
// kiosk's recent-attendance table.
func (r *Repository) ListLatest(ctx context.Context, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = 10
	}
	return r.list(ctx, `
		SELECT `+recordColumns+`
		FROM attendance_records
		ORDER BY created_at DESC
		LIMIT $1
	`, limit)
}

func (r *Repository) list(ctx context.Context, query string, args ...any) ([]Record, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []Record
	for rows.Next() {
		var rec Record
		if err := rows.Scan(&rec.ID, &rec.StudentID, &rec.StudentName, &rec.Course, &rec.RFIDTag,
			&rec.ImageURL, &rec.Date, &rec.TimeIn, &rec.TimeOut, &rec.Status, &rec.CreatedAt, &rec.UpdatedAt); err != nil {
			return nil, err
		}
		res = append(res, rec)
	}
	return res, rows.Err()
}

func scanRecord(row *sql.Row) (*Record, error) {
	var rec Record
	err := row.Scan(&rec.ID, &rec.StudentID, &rec.StudentName, &rec.Course, &rec.RFIDTag,
		&rec.ImageURL, &rec.Date, &rec.TimeIn, &rec.TimeOut, &rec.Status, &rec.CreatedAt, &rec.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

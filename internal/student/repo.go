package student

import (
	"context"
	"database/sql"
	"errors"
)

// Repository reads student records from Postgres.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a repo.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

const studentColumns = `id, student_id, first_name, last_name, course, department, class, rfid_tag, profile_image_url, deleted_at`

// FindByTag returns the active student owning a tag, or nil when no active
// student matches. Ordering makes the pick deterministic should the tag
// uniqueness assumption ever be violated.
func (r *Repository) FindByTag(ctx context.Context, tag string) (*Student, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+studentColumns+`
		FROM students
		WHERE rfid_tag = $1 AND deleted_at IS NULL
		ORDER BY created_at
		LIMIT 1
	`, tag)
	return scanStudent(row)
}

// GetByStudentID returns a student by their school-issued id, active or not.
func (r *Repository) GetByStudentID(ctx context.Context, studentID string) (*Student, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+studentColumns+`
		FROM students
		WHERE student_id = $1
	`, studentID)
	return scanStudent(row)
}

// ListActive returns all non-deleted students, used to warm kiosk caches on
// startup.
func (r *Repository) ListActive(ctx context.Context) ([]Student, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+studentColumns+`
		FROM students
		WHERE deleted_at IS NULL
		ORDER BY student_id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []Student
	for rows.Next() {
		var s Student
		if err := rows.Scan(&s.ID, &s.StudentID, &s.FirstName, &s.LastName, &s.Course,
			&s.Department, &s.Class, &s.RFIDTag, &s.ProfileImageURL, &s.DeletedAt); err != nil {
			return nil, err
		}
		res = append(res, s)
	}
	return res, rows.Err()
}

func scanStudent(row *sql.Row) (*Student, error) {
	var s Student
	err := row.Scan(&s.ID, &s.StudentID, &s.FirstName, &s.LastName, &s.Course,
		&s.Department, &s.Class, &s.RFIDTag, &s.ProfileImageURL, &s.DeletedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

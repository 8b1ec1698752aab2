package attendance

import (
	"context"
	"fmt"

	"github.com/MrQuby/rfid-gate-attendance-system/internal/student"
)

// Store is the subset of the repository the writer needs.
type Store interface {
	OpenCheckIn(ctx context.Context, studentID, date string) (*Record, error)
	Insert(ctx context.Context, rec Record) (Record, error)
	CheckOut(ctx context.Context, id, timeOut string) (Record, error)
}

// Resolver maps a tag to a student; satisfied by *student.Resolver.
type Resolver interface {
	Resolve(ctx context.Context, tag string) (*student.Student, error)
}

// Result is the authoritative outcome of one scan. Action is StatusIn or
// StatusOut; server-assigned timestamps may make it differ from the kiosk's
// optimistic guess.
type Result struct {
	Action  string          `json:"action"`
	Record  Record          `json:"record"`
	Student student.Student `json:"student"`
}

// Service implements the attendance writer: it decides whether a scan is a
// check-in or a check-out and performs the matching single-row write.
type Service struct {
	resolver Resolver
	store    Store
}

// NewService creates a service.
func NewService(resolver Resolver, store Store) *Service {
	return &Service{resolver: resolver, store: store}
}

// CheckIn handles one scanned tag. If the student already has an open IN
// record today the scan is a check-out of that record, never a duplicate IN.
// After a check-out, a further scan the same day opens a fresh IN record.
func (s *Service) CheckIn(ctx context.Context, tag string) (Result, error) {
	st, err := s.resolver.Resolve(ctx, tag)
	if err != nil {
		return Result{}, err
	}

	date := Today()
	open, err := s.store.OpenCheckIn(ctx, st.StudentID, date)
	if err != nil {
		return Result{}, fmt.Errorf("open check-in lookup for %s: %w", st.StudentID, err)
	}
	if open != nil {
		rec, err := s.store.CheckOut(ctx, open.ID, clockTime())
		if err != nil {
			return Result{}, fmt.Errorf("check-out of record %s: %w", open.ID, err)
		}
		return Result{Action: StatusOut, Record: rec, Student: *st}, nil
	}

	imageURL := ""
	if st.ProfileImageURL != nil {
		imageURL = *st.ProfileImageURL
	}
	rec, err := s.store.Insert(ctx, Record{
		StudentID:   st.StudentID,
		StudentName: st.FullName(),
		Course:      st.Course,
		RFIDTag:     st.RFIDTag,
		ImageURL:    imageURL,
		Date:        date,
		TimeIn:      clockTime(),
		TimeOut:     nil,
		Status:      StatusIn,
	})
	if err != nil {
		return Result{}, fmt.Errorf("check-in insert for %s: %w", st.StudentID, err)
	}
	return Result{Action: StatusIn, Record: rec, Student: *st}, nil
}

// CheckOut closes an existing record directly by id.
func (s *Service) CheckOut(ctx context.Context, recordID string) (Record, error) {
	rec, err := s.store.CheckOut(ctx, recordID, clockTime())
	if err != nil {
		return Record{}, fmt.Errorf("check-out of record %s: %w", recordID, err)
	}
	return rec, nil
}

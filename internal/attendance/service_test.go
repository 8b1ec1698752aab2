package attendance

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/MrQuby/rfid-gate-attendance-system/internal/student"
)

type fakeResolver struct {
	s   *student.Student
	err error
}

func (f *fakeResolver) Resolve(_ context.Context, _ string) (*student.Student, error) {
	return f.s, f.err
}

type fakeStore struct {
	records []Record
	failAll bool
}

func (f *fakeStore) OpenCheckIn(_ context.Context, studentID, date string) (*Record, error) {
	if f.failAll {
		return nil, errors.New("store down")
	}
	for i := range f.records {
		r := f.records[i]
		if r.Date == date && r.StudentID == studentID && r.Status == StatusIn {
			return &r, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) Insert(_ context.Context, rec Record) (Record, error) {
	if f.failAll {
		return Record{}, errors.New("store down")
	}
	rec.ID = fmt.Sprintf("rec-%d", len(f.records)+1)
	rec.CreatedAt = nowFunc()
	rec.UpdatedAt = rec.CreatedAt
	f.records = append(f.records, rec)
	return rec, nil
}

func (f *fakeStore) CheckOut(_ context.Context, id, timeOut string) (Record, error) {
	if f.failAll {
		return Record{}, errors.New("store down")
	}
	for i := range f.records {
		if f.records[i].ID == id {
			f.records[i].TimeOut = &timeOut
			f.records[i].Status = StatusOut
			f.records[i].UpdatedAt = nowFunc()
			return f.records[i], nil
		}
	}
	return Record{}, fmt.Errorf("attendance record %s not found", id)
}

func (f *fakeStore) countFor(studentID, date string) int {
	n := 0
	for _, r := range f.records {
		if r.StudentID == studentID && r.Date == date {
			n++
		}
	}
	return n
}

var testStudent = student.Student{
	ID:        "uuid-1",
	StudentID: "S001",
	FirstName: "Ana",
	LastName:  "Cruz",
	Course:    "BSIT",
	RFIDTag:   "A1B2C3",
}

func atLocal(t *testing.T, hour, min int) time.Time {
	t.Helper()
	return time.Date(2026, 8, 31, hour, min, 0, 0, time.Local)
}

func TestCheckInThenCheckOut(t *testing.T) {
	defer func() { nowFunc = time.Now }()

	store := &fakeStore{}
	svc := NewService(&fakeResolver{s: &testStudent}, store)
	ctx := context.Background()

	// Morning scan creates an open IN record.
	nowFunc = func() time.Time { return atLocal(t, 8, 0) }
	res, err := svc.CheckIn(ctx, "A1B2C3")
	if err != nil {
		t.Fatalf("CheckIn() error = %v", err)
	}
	if res.Action != StatusIn {
		t.Errorf("Action = %s, want IN", res.Action)
	}
	rec := res.Record
	if rec.Date != "2026-08-31" || rec.TimeIn != "08:00 AM" {
		t.Errorf("record date/timeIn = %s/%s, want 2026-08-31/08:00 AM", rec.Date, rec.TimeIn)
	}
	if rec.TimeOut != nil {
		t.Errorf("TimeOut = %v, want nil", *rec.TimeOut)
	}
	if rec.StudentName != "Ana Cruz" || rec.Course != "BSIT" || rec.RFIDTag != "A1B2C3" {
		t.Errorf("denormalized fields = %q/%q/%q", rec.StudentName, rec.Course, rec.RFIDTag)
	}

	// Evening scan of the same tag closes the same record.
	nowFunc = func() time.Time { return atLocal(t, 17, 0) }
	res2, err := svc.CheckIn(ctx, "A1B2C3")
	if err != nil {
		t.Fatalf("second CheckIn() error = %v", err)
	}
	if res2.Action != StatusOut {
		t.Errorf("second Action = %s, want OUT", res2.Action)
	}
	if res2.Record.ID != rec.ID {
		t.Errorf("check-out record id = %s, want same record %s", res2.Record.ID, rec.ID)
	}
	if res2.Record.TimeOut == nil || *res2.Record.TimeOut != "05:00 PM" {
		t.Errorf("TimeOut = %v, want 05:00 PM", res2.Record.TimeOut)
	}
	if res2.Record.TimeIn != "08:00 AM" {
		t.Errorf("TimeIn changed on check-out: %s", res2.Record.TimeIn)
	}
	if n := store.countFor("S001", "2026-08-31"); n != 1 {
		t.Errorf("record count = %d, want 1", n)
	}
}

func TestThirdScanOpensFreshRecord(t *testing.T) {
	defer func() { nowFunc = time.Now }()
	nowFunc = func() time.Time { return atLocal(t, 8, 0) }

	store := &fakeStore{}
	svc := NewService(&fakeResolver{s: &testStudent}, store)
	ctx := context.Background()

	for _, want := range []string{StatusIn, StatusOut, StatusIn} {
		res, err := svc.CheckIn(ctx, "A1B2C3")
		if err != nil {
			t.Fatalf("CheckIn() error = %v", err)
		}
		if res.Action != want {
			t.Fatalf("Action = %s, want %s", res.Action, want)
		}
	}
	// After OUT there is no open IN record, so the third scan starts a new
	// one rather than corrupting the closed record.
	if n := store.countFor("S001", "2026-08-31"); n != 2 {
		t.Errorf("record count after third scan = %d, want 2", n)
	}
	if store.records[0].Status != StatusOut {
		t.Errorf("first record status = %s, want OUT untouched", store.records[0].Status)
	}
}

func TestCheckInUnresolvedTag(t *testing.T) {
	store := &fakeStore{}
	svc := NewService(&fakeResolver{err: student.ErrTagNotResolved}, store)

	_, err := svc.CheckIn(context.Background(), "NOPE")
	if !errors.Is(err, student.ErrTagNotResolved) {
		t.Fatalf("CheckIn() error = %v, want ErrTagNotResolved", err)
	}
	if len(store.records) != 0 {
		t.Errorf("records written for unresolved tag: %d", len(store.records))
	}
}

func TestCheckInStoreFailure(t *testing.T) {
	store := &fakeStore{failAll: true}
	svc := NewService(&fakeResolver{s: &testStudent}, store)

	_, err := svc.CheckIn(context.Background(), "A1B2C3")
	if err == nil {
		t.Fatal("CheckIn() error = nil, want store failure")
	}
	if errors.Is(err, student.ErrTagNotResolved) {
		t.Error("store failure must not read as tag-not-resolved")
	}
}

func TestDirectCheckOutUnknownRecord(t *testing.T) {
	svc := NewService(&fakeResolver{s: &testStudent}, &fakeStore{})
	if _, err := svc.CheckOut(context.Background(), "missing"); err == nil {
		t.Error("CheckOut() error = nil, want not-found failure")
	}
}

package attendance

import "time"

// Record statuses. A record is created IN and flipped to OUT by the matching
// second scan of the day.
const (
	StatusIn  = "IN"
	StatusOut = "OUT"
)

// Layouts for the stored date and time strings. These are part of the
// external contract; reporting tooling parses them as-is.
const (
	DateLayout = "2006-01-02"
	TimeLayout = "03:04 PM"
)

// nowFunc is overridable in tests.
var nowFunc = time.Now

// Record is one check-in event. Student fields are denormalized at write
// time and do not follow later edits to the student.
type Record struct {
	ID          string    `json:"id"`
	StudentID   string    `json:"studentId"`
	StudentName string    `json:"studentName"`
	Course      string    `json:"course"`
	RFIDTag     string    `json:"rfidTag"`
	ImageURL    string    `json:"imageUrl"`
	Date        string    `json:"date"`
	TimeIn      string    `json:"timeIn"`
	TimeOut     *string   `json:"timeOut"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Open reports whether the record is an open check-in.
func (r Record) Open() bool {
	return r.Status == StatusIn && r.TimeOut == nil
}

// Today returns the local calendar date string. Derived once per scan so a
// scan straddling midnight stays on one side.
func Today() string {
	return nowFunc().Format(DateLayout)
}

// clockTime returns the local wall-clock string for record fields.
func clockTime() string {
	return nowFunc().Format(TimeLayout)
}

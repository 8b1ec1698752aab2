package student

import (
	"errors"
	"time"
)

// ErrTagNotResolved means the scanned tag does not belong to any active student.
var ErrTagNotResolved = errors.New("no student for tag")

// Student is the identity record the scan engine resolves tags against.
// Students are created and edited by the admin tooling; this system only
// reads them. Field names mirror the stored document contract.
type Student struct {
	ID              string     `json:"id"`
	StudentID       string     `json:"studentId"`
	FirstName       string     `json:"firstName"`
	LastName        string     `json:"lastName"`
	Course          string     `json:"course"`
	Department      string     `json:"department"`
	Class           string     `json:"class"`
	RFIDTag         string     `json:"rfidTag"`
	ProfileImageURL *string    `json:"profileImageURL,omitempty"`
	DeletedAt       *time.Time `json:"deletedAt,omitempty"`
}

// FullName joins first and last name for denormalized attendance rows.
func (s Student) FullName() string {
	switch {
	case s.FirstName == "":
		return s.LastName
	case s.LastName == "":
		return s.FirstName
	default:
		return s.FirstName + " " + s.LastName
	}
}

// Active reports whether the student may check in.
func (s Student) Active() bool {
	return s.DeletedAt == nil
}

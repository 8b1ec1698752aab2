package kiosk

import (
	"sync"
	"time"

	"github.com/MrQuby/rfid-gate-attendance-system/internal/attendance"
	"github.com/MrQuby/rfid-gate-attendance-system/internal/student"
)

// Display states. A scan moves the display to StateProcessing from anywhere;
// terminal outcomes other than INVALID revert to StateWaiting after the
// dwell period.
type State string

const (
	StateWaiting    State = "WAITING"
	StateProcessing State = "PROCESSING"
	StateCheckedIn  State = "CHECKED_IN"
	StateCheckedOut State = "CHECKED_OUT"
	StateInvalid    State = "INVALID"
	StateError      State = "ERROR"
)

// Entry is one student shown on the kiosk, with the IN/OUT status of their
// latest scan.
type Entry struct {
	Student student.Student
	Status  string
}

// Snapshot is an immutable view of the display for rendering.
type Snapshot struct {
	State   State
	Current *Entry
	Last    *Entry
	// Recent lists prior scans most-recent-first, excluding the current
	// student, at most displaySlots entries.
	Recent []Entry
}

const displaySlots = 4

// Display owns the kiosk's transient UI state: the featured student, the
// recent-scan history and the single auto-revert timer. All transitions go
// through its methods; rendering reads snapshots.
type Display struct {
	dwell    time.Duration
	capacity int
	onChange func(Snapshot)

	mu        sync.Mutex
	state     State
	current   *Entry
	last      *Entry
	recent    []Entry
	revert    *time.Timer
	revertGen uint64
}

// NewDisplay creates a display in the waiting state. onChange, when non-nil,
// is invoked after every transition with a fresh snapshot.
func NewDisplay(dwell time.Duration, capacity int, onChange func(Snapshot)) *Display {
	if dwell <= 0 {
		dwell = 5 * time.Second
	}
	if capacity <= 0 {
		capacity = 5
	}
	return &Display{dwell: dwell, capacity: capacity, onChange: onChange, state: StateWaiting}
}

// BeginScan marks a new scan in flight. Any pending revert timer is
// cancelled so a slow previous dwell cannot clear the new result.
func (d *Display) BeginScan() {
	d.mu.Lock()
	d.cancelRevertLocked()
	d.state = StateProcessing
	snap := d.snapshotLocked()
	d.mu.Unlock()
	d.notify(snap)
}

// ShowResult renders the authoritative outcome of a valid scan and arms the
// auto-revert timer. The scanned student moves to the front of the recent
// history, replacing any earlier entry for the same student id.
func (d *Display) ShowResult(res attendance.Result) {
	entry := Entry{Student: res.Student, Status: res.Action}

	d.mu.Lock()
	d.cancelRevertLocked()
	if res.Action == attendance.StatusOut {
		d.state = StateCheckedOut
	} else {
		d.state = StateCheckedIn
	}
	d.current = &entry
	d.last = &entry
	d.pushRecentLocked(entry)
	d.armRevertLocked()
	snap := d.snapshotLocked()
	d.mu.Unlock()
	d.notify(snap)
}

// ShowInvalid renders an unresolved tag. Invalid results are never pushed
// into history and persist until the next scan; there is no auto-revert.
func (d *Display) ShowInvalid(tag string) {
	d.mu.Lock()
	d.cancelRevertLocked()
	d.state = StateInvalid
	d.current = &Entry{
		Student: student.Student{StudentID: "INVALID", FirstName: "Invalid", LastName: "Student", RFIDTag: tag},
		Status:  string(StateInvalid),
	}
	snap := d.snapshotLocked()
	d.mu.Unlock()
	d.notify(snap)
}

// ShowError renders a scan that failed after resolution (write or transport
// failure). Like valid results it auto-reverts.
func (d *Display) ShowError(st *student.Student) {
	d.mu.Lock()
	d.cancelRevertLocked()
	d.state = StateError
	if st != nil {
		d.current = &Entry{Student: *st, Status: string(StateError)}
	} else {
		d.current = nil
	}
	d.armRevertLocked()
	snap := d.snapshotLocked()
	d.mu.Unlock()
	d.notify(snap)
}

// State returns the current display state.
func (d *Display) State() State {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}

// Snapshot returns a copy of the display for rendering.
func (d *Display) Snapshot() Snapshot {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.snapshotLocked()
}

// Close cancels the pending revert timer.
func (d *Display) Close() {
	d.mu.Lock()
	d.cancelRevertLocked()
	d.mu.Unlock()
}

func (d *Display) pushRecentLocked(e Entry) {
	filtered := make([]Entry, 0, d.capacity)
	filtered = append(filtered, e)
	for _, prev := range d.recent {
		if prev.Student.StudentID == e.Student.StudentID {
			continue
		}
		if len(filtered) == d.capacity {
			break
		}
		filtered = append(filtered, prev)
	}
	d.recent = filtered
}

func (d *Display) armRevertLocked() {
	d.revertGen++
	gen := d.revertGen
	d.revert = time.AfterFunc(d.dwell, func() { d.revertExpired(gen) })
}

func (d *Display) cancelRevertLocked() {
	// Bump the generation so a timer that already fired but has not taken
	// the lock yet becomes a no-op.
	d.revertGen++
	if d.revert != nil {
		d.revert.Stop()
		d.revert = nil
	}
}

func (d *Display) revertExpired(gen uint64) {
	d.mu.Lock()
	if gen != d.revertGen {
		d.mu.Unlock()
		return
	}
	d.revert = nil
	d.current = nil
	d.state = StateWaiting
	snap := d.snapshotLocked()
	d.mu.Unlock()
	d.notify(snap)
}

func (d *Display) snapshotLocked() Snapshot {
	snap := Snapshot{State: d.state}
	if d.current != nil {
		cp := *d.current
		snap.Current = &cp
	}
	if d.last != nil {
		cp := *d.last
		snap.Last = &cp
	}
	for _, e := range d.recent {
		if d.current != nil && e.Student.StudentID == d.current.Student.StudentID {
			continue
		}
		if len(snap.Recent) == displaySlots {
			break
		}
		snap.Recent = append(snap.Recent, e)
	}
	return snap
}

func (d *Display) notify(snap Snapshot) {
	if d.onChange != nil {
		d.onChange(snap)
	}
}

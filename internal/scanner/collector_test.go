package scanner

import (
	"sync"
	"testing"
	"time"
)

type flushRecorder struct {
	mu   sync.Mutex
	tags []string
}

func (f *flushRecorder) flush(tag string) {
	f.mu.Lock()
	f.tags = append(f.tags, tag)
	f.mu.Unlock()
}

func (f *flushRecorder) snapshot() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.tags...)
}

func press(c *Collector, s string) {
	for _, r := range s {
		c.Press(Key{Rune: r})
	}
}

func TestCollectorEnterFlushesOnce(t *testing.T) {
	rec := &flushRecorder{}
	c := NewCollector(50*time.Millisecond, rec.flush)
	defer c.Stop()

	press(c, "A1B2C3")
	c.Press(Key{Enter: true})

	// Wait past the quiet period; the cancelled timer must not fire a
	// second flush.
	time.Sleep(150 * time.Millisecond)

	got := rec.snapshot()
	if len(got) != 1 || got[0] != "A1B2C3" {
		t.Errorf("flushes = %v, want exactly [A1B2C3]", got)
	}
}

func TestCollectorQuietPeriodFlush(t *testing.T) {
	rec := &flushRecorder{}
	c := NewCollector(50*time.Millisecond, rec.flush)
	defer c.Stop()

	press(c, "0011223344")
	time.Sleep(200 * time.Millisecond)

	got := rec.snapshot()
	if len(got) != 1 || got[0] != "0011223344" {
		t.Errorf("flushes = %v, want exactly [0011223344]", got)
	}
}

func TestCollectorQuietTimerNotExtended(t *testing.T) {
	rec := &flushRecorder{}
	c := NewCollector(80*time.Millisecond, rec.flush)
	defer c.Stop()

	// Characters arriving after the quiet window opened do not extend it;
	// a reader slower than the window gets its scan split.
	press(c, "AB")
	time.Sleep(160 * time.Millisecond)
	press(c, "CD")
	time.Sleep(200 * time.Millisecond)

	got := rec.snapshot()
	if len(got) != 2 || got[0] != "AB" || got[1] != "CD" {
		t.Errorf("flushes = %v, want [AB CD]", got)
	}
}

func TestCollectorIgnoredKeys(t *testing.T) {
	tests := []struct {
		name string
		keys []Key
	}{
		{name: "form field input", keys: []Key{{Rune: 'A', FromField: true}, {Enter: true, FromField: true}}},
		{name: "enter with empty buffer", keys: []Key{{Enter: true}}},
		{name: "non-graphic runes", keys: []Key{{Rune: '\t'}, {Rune: 0x1b}, {Enter: true}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &flushRecorder{}
			c := NewCollector(30*time.Millisecond, rec.flush)
			defer c.Stop()

			for _, k := range tt.keys {
				c.Press(k)
			}
			time.Sleep(100 * time.Millisecond)

			if got := rec.snapshot(); len(got) != 0 {
				t.Errorf("flushes = %v, want none", got)
			}
		})
	}
}

func TestCollectorBackToBackScans(t *testing.T) {
	rec := &flushRecorder{}
	c := NewCollector(50*time.Millisecond, rec.flush)
	defer c.Stop()

	press(c, "TAG1")
	c.Press(Key{Enter: true})
	press(c, "TAG2")
	c.Press(Key{Enter: true})
	time.Sleep(150 * time.Millisecond)

	got := rec.snapshot()
	if len(got) != 2 || got[0] != "TAG1" || got[1] != "TAG2" {
		t.Errorf("flushes = %v, want [TAG1 TAG2]", got)
	}
}

func TestCollectorStopDiscardsBuffer(t *testing.T) {
	rec := &flushRecorder{}
	c := NewCollector(50*time.Millisecond, rec.flush)

	press(c, "ABANDONED")
	c.Stop()
	time.Sleep(120 * time.Millisecond)

	if got := rec.snapshot(); len(got) != 0 {
		t.Errorf("flushes = %v, want none after Stop", got)
	}
}

package scanner

import (
	"bufio"
	"context"
	"io"
	"sync"
	"time"
	"unicode"
)

// Key is one key-press event from the reader's ambient input surface.
// RFID keyboard-wedge readers type the tag as rapid single characters
// followed by Enter or silence.
type Key struct {
	Rune  rune
	Enter bool
	// FromField marks events originating inside an interactive form field;
	// the collector must not intercept normal typing.
	FromField bool
}

// Collector buffers key presses into one tag per physical scan and hands the
// completed tag to flush. A scan completes on Enter or when the quiet-period
// timer, started when the buffer first becomes non-empty, expires. The timer
// is deliberately not extended by later characters (see DESIGN.md).
type Collector struct {
	quiet time.Duration
	flush func(tag string)

	mu    sync.Mutex
	buf   []rune
	timer *time.Timer
}

// NewCollector creates a collector delivering completed tags to flush.
// flush is called without the collector's lock held, once per scan.
func NewCollector(quiet time.Duration, flush func(tag string)) *Collector {
	if quiet <= 0 {
		quiet = 200 * time.Millisecond
	}
	return &Collector{quiet: quiet, flush: flush}
}

// Press feeds one key event into the buffer.
func (c *Collector) Press(k Key) {
	if k.FromField {
		return
	}

	c.mu.Lock()
	if k.Enter {
		tag := c.takeLocked()
		c.mu.Unlock()
		if tag != "" {
			c.flush(tag)
		}
		return
	}
	if !unicode.IsGraphic(k.Rune) {
		c.mu.Unlock()
		return
	}

	first := len(c.buf) == 0
	c.buf = append(c.buf, k.Rune)
	if first {
		if c.timer != nil {
			c.timer.Stop()
		}
		c.timer = time.AfterFunc(c.quiet, c.quietExpired)
	}
	c.mu.Unlock()
}

// Stop cancels any pending quiet-period timer and discards the buffer.
func (c *Collector) Stop() {
	c.mu.Lock()
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	c.buf = nil
	c.mu.Unlock()
}

func (c *Collector) quietExpired() {
	c.mu.Lock()
	tag := c.takeLocked()
	c.mu.Unlock()
	if tag != "" {
		c.flush(tag)
	}
}

// takeLocked drains the buffer and retires the timer; the timer fires at
// most once per scan and is never reused.
func (c *Collector) takeLocked() string {
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	if len(c.buf) == 0 {
		return ""
	}
	tag := string(c.buf)
	c.buf = nil
	return tag
}

// ReadFrom pumps runes from r into the collector until EOF or ctx is done.
// Carriage returns and newlines are treated as the Enter terminator, which
// is how wedge readers present on a tty.
func (c *Collector) ReadFrom(ctx context.Context, r io.Reader) error {
	br := bufio.NewReader(r)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		ru, _, err := br.ReadRune()
		if err != nil {
			if err == io.EOF {
				return nil
			}
			return err
		}
		switch ru {
		case '\n', '\r':
			c.Press(Key{Enter: true})
		default:
			c.Press(Key{Rune: ru})
		}
	}
}

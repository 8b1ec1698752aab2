package kiosk

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/MrQuby/rfid-gate-attendance-system/internal/attendance"
	"github.com/MrQuby/rfid-gate-attendance-system/internal/metrics"
	"github.com/MrQuby/rfid-gate-attendance-system/internal/queue"
	"github.com/MrQuby/rfid-gate-attendance-system/internal/student"
)

// Writer records one scan; satisfied by *attendance.Service.
type Writer interface {
	CheckIn(ctx context.Context, tag string) (attendance.Result, error)
}

// Engine runs the scan cycle: completed tag in, display transition out.
// Scans are serialized by a single-slot in-flight guard; a tag arriving
// while one is being processed is dropped and counted, so a slow write can
// never land out of order on the display.
type Engine struct {
	writer  Writer
	display *Display
	events  queue.Queue
	log     *zap.Logger

	inFlight atomic.Bool
}

// NewEngine creates an engine. events may be nil when no feed worker runs.
func NewEngine(writer Writer, display *Display, events queue.Queue, log *zap.Logger) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{writer: writer, display: display, events: events, log: log}
}

// HandleTag accepts one completed tag from the collector and processes it
// asynchronously so the input loop stays responsive. Errors are local to
// the scan; the collector loop is never aborted.
func (e *Engine) HandleTag(ctx context.Context, tag string) {
	if !e.inFlight.CompareAndSwap(false, true) {
		metrics.ScansTotal.WithLabelValues("dropped").Inc()
		e.log.Warn("scan dropped, previous scan still in flight", zap.String("tag", tag))
		return
	}
	go func() {
		defer e.inFlight.Store(false)
		e.process(ctx, tag)
	}()
}

func (e *Engine) process(ctx context.Context, tag string) {
	start := time.Now()
	e.display.BeginScan()

	res, err := e.writer.CheckIn(ctx, tag)
	switch {
	case errors.Is(err, student.ErrTagNotResolved):
		metrics.ScansTotal.WithLabelValues("invalid").Inc()
		e.display.ShowInvalid(tag)
	case err != nil:
		metrics.ScansTotal.WithLabelValues("error").Inc()
		e.log.Error("scan failed", zap.String("tag", tag), zap.Error(err))
		e.display.ShowError(nil)
	default:
		outcome := "checked_in"
		if res.Action == attendance.StatusOut {
			outcome = "checked_out"
		}
		metrics.ScansTotal.WithLabelValues(outcome).Inc()
		e.display.ShowResult(res)
		e.publish(ctx, res)
		e.log.Info("scan recorded",
			zap.String("student_id", res.Student.StudentID),
			zap.String("action", res.Action),
			zap.String("record_id", res.Record.ID))
	}
	metrics.ScanDuration.Observe(time.Since(start).Seconds())
}

func (e *Engine) publish(ctx context.Context, res attendance.Result) {
	if e.events == nil {
		return
	}
	if err := e.events.Publish(ctx, queue.Message{Type: "scan", Body: []byte(res.Record.ID)}); err != nil {
		e.log.Warn("scan event publish failed", zap.String("record_id", res.Record.ID), zap.Error(err))
	}
}

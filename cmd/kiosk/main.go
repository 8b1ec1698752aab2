package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/MrQuby/rfid-gate-attendance-system/internal/attendance"
	"github.com/MrQuby/rfid-gate-attendance-system/internal/config"
	"github.com/MrQuby/rfid-gate-attendance-system/internal/kiosk"
	"github.com/MrQuby/rfid-gate-attendance-system/internal/logging"
	"github.com/MrQuby/rfid-gate-attendance-system/internal/queue"
	"github.com/MrQuby/rfid-gate-attendance-system/internal/scanner"
	"github.com/MrQuby/rfid-gate-attendance-system/internal/store"
	"github.com/MrQuby/rfid-gate-attendance-system/internal/student"
)

// The kiosk binary runs the full scan pipeline at the gate: the RFID reader
// presents as a keyboard wedge on stdin, completed tags go through the
// resolver and attendance writer, and the display state is rendered to the
// terminal.
func main() {
	cfg := config.Load()
	log := logging.New(cfg)
	defer log.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Info("shutdown signal received")
		cancel()
	}()

	db, err := store.NewDB(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatal("db connect failed", zap.Error(err))
	}
	defer db.Close()

	redisClient := store.NewRedis(cfg.RedisAddr)

	var q queue.Queue
	if cfg.QueueBackend == "memory" {
		q = queue.NewInMemory(64)
	} else {
		q = queue.NewRedisQueue(redisClient.Client, queue.DefaultKey)
	}

	studentRepo := student.NewRepository(db.Client)
	cache := student.NewMemoryCache()
	resolver := student.NewResolver(cache, studentRepo, log)

	// Warm the local cache with the full active roster so the common case
	// never leaves the kiosk.
	if roster, err := studentRepo.ListActive(ctx); err != nil {
		log.Warn("roster warm-up failed, resolving from store per scan", zap.Error(err))
	} else {
		resolver.Warm(ctx, roster)
		log.Info("roster cached", zap.Int("students", len(roster)))
	}

	svc := attendance.NewService(resolver, attendance.NewRepository(db.Client))

	display := kiosk.NewDisplay(cfg.DisplayDwell, cfg.RecentCapacity, render)
	defer display.Close()

	engine := kiosk.NewEngine(svc, display, q, log)

	collector := scanner.NewCollector(cfg.ScanQuietPeriod, func(tag string) {
		engine.HandleTag(ctx, tag)
	})
	defer collector.Stop()

	fmt.Println("READY — scan a card")
	if err := collector.ReadFrom(ctx, os.Stdin); err != nil && ctx.Err() == nil {
		log.Fatal("input loop failed", zap.Error(err))
	}

	// Let an in-flight scan land before exiting.
	time.Sleep(200 * time.Millisecond)
	log.Info("kiosk stopped")
}

func render(snap kiosk.Snapshot) {
	switch snap.State {
	case kiosk.StateProcessing:
		fmt.Println("... processing")
	case kiosk.StateWaiting:
		fmt.Println("WAITING — please scan RFID")
	case kiosk.StateInvalid:
		fmt.Println("INVALID STUDENT")
	case kiosk.StateError:
		fmt.Println("ERROR — attendance not recorded")
	default:
		cur := snap.Current
		if cur == nil {
			return
		}
		verb := "CHECKED IN"
		if snap.State == kiosk.StateCheckedOut {
			verb = "CHECKED OUT"
		}
		fmt.Printf("%s — %s (%s) %s\n", verb, cur.Student.FullName(), cur.Student.StudentID, cur.Student.Course)
		for i, e := range snap.Recent {
			fmt.Printf("  recent %d: %s [%s]\n", i+1, e.Student.FullName(), e.Status)
		}
	}
}

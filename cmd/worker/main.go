package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/MrQuby/rfid-gate-attendance-system/internal/attendance"
	"github.com/MrQuby/rfid-gate-attendance-system/internal/config"
	"github.com/MrQuby/rfid-gate-attendance-system/internal/logging"
	"github.com/MrQuby/rfid-gate-attendance-system/internal/queue"
	"github.com/MrQuby/rfid-gate-attendance-system/internal/store"
)

// The feed worker consumes scan events and maintains the recent-attendance
// list in redis, which backs the kiosk's live table.
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

	repo := attendance.NewRepository(db.Client)
	feed := attendance.NewFeed(redisClient.Client, attendance.FeedKey, 10)

	messages, err := q.Consume(ctx)
	if err != nil {
		log.Fatal("queue consume init failed", zap.Error(err))
	}

	log.Info("feed worker started, waiting for scan events")
	for msg := range messages {
		if msg.Type != "scan" {
			continue
		}

		id := string(msg.Body)
		rec, err := repo.Get(ctx, id)
		if err != nil {
			log.Error("fetch record failed", zap.String("record_id", id), zap.Error(err))
			continue
		}
		if rec == nil {
			log.Warn("scan event for unknown record", zap.String("record_id", id))
			continue
		}

		if err := feed.Push(ctx, *rec); err != nil {
			log.Error("feed push failed", zap.String("record_id", id), zap.Error(err))
			continue
		}
		log.Info("feed updated",
			zap.String("record_id", rec.ID),
			zap.String("student_id", rec.StudentID),
			zap.String("status", rec.Status))
	}

	log.Info("feed worker stopped")
}

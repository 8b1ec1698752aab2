package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/MrQuby/rfid-gate-attendance-system/internal/attendance"
	"github.com/MrQuby/rfid-gate-attendance-system/internal/auth"
	"github.com/MrQuby/rfid-gate-attendance-system/internal/config"
	"github.com/MrQuby/rfid-gate-attendance-system/internal/httpmiddleware"
	"github.com/MrQuby/rfid-gate-attendance-system/internal/kiosk"
	"github.com/MrQuby/rfid-gate-attendance-system/internal/logging"
	"github.com/MrQuby/rfid-gate-attendance-system/internal/queue"
	"github.com/MrQuby/rfid-gate-attendance-system/internal/store"
	"github.com/MrQuby/rfid-gate-attendance-system/internal/student"
)

func main() {
	cfg := config.Load()
	log := logging.New(cfg)
	defer log.Sync()

	if cfg.Env == "production" || cfg.Env == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := runHTTP(cfg, log); err != nil {
		log.Fatal("http server failed", zap.Error(err))
	}
}

func runHTTP(cfg config.App, log *zap.Logger) error {
	ctx := context.Background()

	db, err := store.NewDB(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
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
	cache := student.NewRedisCache(redisClient.Client, time.Hour, log)
	resolver := student.NewResolver(cache, studentRepo, log)

	attRepo := attendance.NewRepository(db.Client)
	svc := attendance.NewService(resolver, attRepo)
	feed := attendance.NewFeed(redisClient.Client, attendance.FeedKey, 10)
	registry := kiosk.NewRegistry(db.Client)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		SkipPaths: []string{"/healthz", "/metrics"},
	}))
	r.Use(corsMiddleware())
	r.Use(securityHeaders())
	r.Use(httpmiddleware.NewTokenBucket(cfg.RateLimitPerMin, cfg.RateLimitPerMin).GinMiddleware())

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.GET("/healthz", func(c *gin.Context) {
		redisHealthy := redisClient.Healthy(c.Request.Context())
		dbHealthy := db.Client.PingContext(c.Request.Context()) == nil
		status := http.StatusOK
		if !redisHealthy || !dbHealthy {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, gin.H{"status": "ok", "redis": redisHealthy, "db": dbHealthy})
	})

	r.POST("/v1/kiosks/register", func(c *gin.Context) {
		var req struct {
			KioskID string `json:"kiosk_id" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		if err := registry.Upsert(c.Request.Context(), req.KioskID); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		tokens, err := auth.Issue(req.KioskID, "kiosk", cfg.JWTIssuer, cfg.JWTSigningKey, cfg.AccessTTL, cfg.RefreshTTL)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "token issue failed"})
			return
		}

		_ = registry.SaveRefreshToken(c.Request.Context(), req.KioskID, tokens.RefreshToken, tokens.RefreshExp)

		c.JSON(http.StatusCreated, gin.H{
			"access_token":  tokens.AccessToken,
			"refresh_token": tokens.RefreshToken,
			"expires_at":    tokens.AccessExp.Unix(),
		})
	})

	authGroup := r.Group("/v1", auth.KioskAuth(cfg.JWTSigningKey, cfg.JWTIssuer))

	// Scan ingestion for kiosks without a local database connection. The
	// same resolve/check-in/check-out pipeline the kiosk binary runs.
	authGroup.POST("/scans", func(c *gin.Context) {
		var req struct {
			Tag string `json:"tag" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		res, err := svc.CheckIn(c.Request.Context(), req.Tag)
		if errors.Is(err, student.ErrTagNotResolved) {
			c.JSON(http.StatusNotFound, gin.H{"error": "no student for tag"})
			return
		}
		if err != nil {
			log.Error("scan failed", zap.String("tag", req.Tag), zap.Error(err))
			c.JSON(http.StatusBadGateway, gin.H{"error": "scan failed"})
			return
		}

		if err := q.Publish(c.Request.Context(), queue.Message{Type: "scan", Body: []byte(res.Record.ID)}); err != nil {
			log.Warn("scan event publish failed", zap.Error(err))
		}

		c.JSON(http.StatusOK, res)
	})

	authGroup.GET("/attendance", func(c *gin.Context) {
		var (
			records []attendance.Record
			err     error
		)
		switch {
		case c.Query("student_id") != "":
			records, err = attRepo.ListByStudent(c.Request.Context(), c.Query("student_id"))
		case c.Query("date") != "":
			records, err = attRepo.ListByDate(c.Request.Context(), c.Query("date"))
		default:
			records, err = attRepo.ListByDate(c.Request.Context(), attendance.Today())
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"records": records})
	})

	authGroup.GET("/attendance/latest", func(c *gin.Context) {
		limit := 10
		if v := c.Query("limit"); v != "" {
			if parsed, err := strconv.Atoi(v); err == nil {
				limit = parsed
			}
		}

		// Feed cache first; fall back to the store when the worker has not
		// populated it yet.
		records, err := feed.Latest(c.Request.Context(), limit)
		if err != nil || len(records) == 0 {
			records, err = attRepo.ListLatest(c.Request.Context(), limit)
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"records": records})
	})

	authGroup.GET("/students/by-tag/:tag", func(c *gin.Context) {
		st, err := resolver.Resolve(c.Request.Context(), c.Param("tag"))
		if errors.Is(err, student.ErrTagNotResolved) {
			c.JSON(http.StatusNotFound, gin.H{"error": "no student for tag"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, st)
	})

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("starting server", zap.String("port", cfg.HTTPPort))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("server error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn("server forced shutdown", zap.Error(err))
	}

	log.Info("server exited")
	return nil
}

// CORS middleware for the admin dashboard.
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if origin == "" {
			origin = "*"
		}

		c.Header("Access-Control-Allow-Origin", origin)
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")
		c.Header("Access-Control-Allow-Credentials", "true")
		c.Header("Access-Control-Max-Age", "86400")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

func securityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Header("X-XSS-Protection", "1; mode=block")
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")

		if gin.Mode() == gin.ReleaseMode {
			c.Header("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		}

		c.Next()
	}
}

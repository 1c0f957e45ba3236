package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"absensi/internal/attendance"
	"absensi/internal/auth"
	"absensi/internal/config"
	"absensi/internal/handler"
	"absensi/internal/notify"
	"absensi/internal/ratelimit"
	"absensi/internal/store"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf(".env not loaded: %v", err)
	}
	cfg := config.Load()

	if cfg.Env == "production" || cfg.Env == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := runHTTP(cfg); err != nil {
		log.Fatalf("http server failed: %v", err)
	}
}

func runHTTP(cfg config.App) error {
	var (
		db  *store.DB
		err error
	)
	if cfg.DBBackend == "postgres" {
		db, err = store.NewPostgres(cfg.DatabaseURL)
	} else {
		db, err = store.NewSQLite(cfg.SQLitePath)
	}
	if err != nil {
		return err
	}
	defer db.Close()

	repo := attendance.NewRepository(db)
	if err := repo.Migrate(context.Background()); err != nil {
		return err
	}

	var redisClient *store.Redis
	var limiter ratelimit.Limiter
	if cfg.RateBackend == "redis" {
		redisClient = store.NewRedis(cfg.RedisAddr)
		defer redisClient.Close()
		limiter = ratelimit.NewRedis(redisClient.Client, cfg.MinSubmitInterval)
	} else {
		mem := ratelimit.NewMemory(cfg.MinSubmitInterval)
		mem.StartSweeper(cfg.RateSweepEvery)
		defer mem.Stop()
		limiter = mem
	}

	notifier := notify.NewTelegram(cfg.TelegramToken, cfg.TelegramChatID)
	if cfg.TelegramToken == "" || cfg.TelegramChatID == "" {
		log.Println("Telegram not configured (TELEGRAM_TOKEN / TELEGRAM_CHAT_ID not set)")
	}
	if cfg.AdminPass == "" {
		log.Println("WARNING: ADMIN_PASS not set, admin login disabled")
	}

	feed := attendance.NewFeed()
	svc := attendance.NewService(repo, limiter, notifier, feed, cfg.NotifyStatuses)
	h := handler.New(svc, repo, feed, db, redisClient, cfg)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		SkipPaths: []string{"/healthz", "/metrics"},
	}))
	r.Use(corsMiddleware())
	r.Use(securityHeaders())

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/healthz", h.Healthz)

	r.POST("/v1/attendance", h.Submit)
	r.POST("/v1/login", h.Login)
	r.POST("/v1/logout", h.Logout)

	admin := r.Group("/v1", auth.AdminOnly(cfg.SessionSecret, cfg.JWTIssuer))
	admin.GET("/records", h.ListRecords)
	admin.GET("/records/feed", h.Feed)
	admin.GET("/export/csv", h.ExportCSV)
	admin.GET("/export/zip", h.ExportZIP)
	admin.GET("/backup", h.Backup)

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	})

	// No write deadline: the SSE feed holds its connection open.
	srv := &http.Server{
		Addr:        ":" + cfg.HTTPPort,
		Handler:     r,
		ReadTimeout: 15 * time.Second,
		IdleTimeout: 60 * time.Second,
	}

	go func() {
		log.Printf("Starting server on :%s (db=%s, rate=%s)", cfg.HTTPPort, db.Backend, cfg.RateBackend)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced shutdown: %v", err)
	}

	log.Println("Server exited")
	return nil
}

// CORS middleware for browser requests
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if origin == "" {
			origin = "*"
		}

		c.Header("Access-Control-Allow-Origin", origin)
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Accept")
		c.Header("Access-Control-Allow-Credentials", "true")
		c.Header("Access-Control-Max-Age", "86400")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// Security headers middleware
func securityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")

		if gin.Mode() == gin.ReleaseMode {
			c.Header("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		}

		c.Next()
	}
}

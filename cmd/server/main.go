package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"

	"github.com/ahmetcoskunkizilkaya/jobboard-api/internal/apps"
	"github.com/ahmetcoskunkizilkaya/jobboard-api/internal/apps/applications"
	"github.com/ahmetcoskunkizilkaya/jobboard-api/internal/apps/companies"
	"github.com/ahmetcoskunkizilkaya/jobboard-api/internal/apps/jobs"
	"github.com/ahmetcoskunkizilkaya/jobboard-api/internal/apps/messaging"
	"github.com/ahmetcoskunkizilkaya/jobboard-api/internal/config"
	"github.com/ahmetcoskunkizilkaya/jobboard-api/internal/database"
	"github.com/ahmetcoskunkizilkaya/jobboard-api/internal/dispatch"
	"github.com/ahmetcoskunkizilkaya/jobboard-api/internal/handlers"
	"github.com/ahmetcoskunkizilkaya/jobboard-api/internal/logging"
	"github.com/ahmetcoskunkizilkaya/jobboard-api/internal/mail"
	"github.com/ahmetcoskunkizilkaya/jobboard-api/internal/middleware"
	"github.com/ahmetcoskunkizilkaya/jobboard-api/internal/push"
	"github.com/ahmetcoskunkizilkaya/jobboard-api/internal/realtime"
	"github.com/ahmetcoskunkizilkaya/jobboard-api/internal/routes"
	"github.com/ahmetcoskunkizilkaya/jobboard-api/internal/scheduler"
	"github.com/ahmetcoskunkizilkaya/jobboard-api/internal/services"
)

func main() {
	// Structured logging (JSON to stdout)
	logging.Setup()

	cfg := config.Load()

	if cfg.JWTSecret == "" {
		slog.Error("JWT_SECRET environment variable is required")
		os.Exit(1)
	}
	if cfg.DBPassword == "" {
		slog.Error("DB_PASSWORD environment variable is required")
		os.Exit(1)
	}

	// Database
	db, err := database.Connect(cfg)
	if err != nil {
		slog.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	if err := database.Migrate(db); err != nil {
		slog.Error("migration failed", "error", err)
		os.Exit(1)
	}

	// PostgreSQL log handler (ERROR+ async batch)
	pgLogHandler := logging.NewPGHandler(db)
	logging.Attach(pgLogHandler)

	// Sentry error tracking
	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			EnableTracing:    true,
			TracesSampleRate: 0.2,
			Environment:      cfg.AppEnv,
		}); err != nil {
			slog.Error("sentry init failed", "error", err)
		}
	}

	startCtx, cancelStart := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancelStart()

	// Side effects
	tasks := dispatch.New(cfg.DispatchWorkers, cfg.DispatchQueue, cfg.DispatchTimeout)

	var publisher realtime.Publisher = realtime.NopPublisher{}
	var redisPublisher *realtime.RedisPublisher
	if cfg.RedisURL != "" {
		redisPublisher, err = realtime.NewRedisPublisher(startCtx, cfg.RedisURL, cfg.RealtimePrefix)
		if err != nil {
			slog.Error("realtime disabled", "error", err)
		} else {
			publisher = redisPublisher
			slog.Info("realtime fan-out enabled")
		}
	}
	signer := realtime.NewSigner(cfg.RealtimeAppKey, cfg.RealtimeSecret)

	pushService := push.NewService(db, cfg)
	if !pushService.Available() {
		slog.Warn("web push disabled, VAPID keys not configured")
	}

	var mailer mail.Mailer = mail.LogMailer{}
	if cfg.GmailCredsPath != "" && cfg.GmailTokenPath != "" {
		gmailer, err := mail.NewGmailMailer(startCtx, cfg.GmailCredsPath, cfg.GmailTokenPath, cfg.MailFrom)
		if err != nil {
			slog.Error("gmail mailer unavailable, falling back to log mailer", "error", err)
		} else {
			mailer = gmailer
		}
	}
	renderer, err := mail.NewRenderer()
	if err != nil {
		slog.Error("mail templates failed to load", "error", err)
		os.Exit(1)
	}

	// Services
	authService := services.NewAuthService(db, cfg, tasks, mailer, renderer)
	userService := services.NewUserService(db)

	// Housekeeping
	sched, err := scheduler.New(scheduler.NewCleaner(db, cfg.LogRetentionDays))
	if err != nil {
		slog.Error("scheduler setup failed", "error", err)
		os.Exit(1)
	}
	sched.Start()

	deps := &apps.Deps{
		DB:           db,
		Config:       cfg,
		Tasks:        tasks,
		Realtime:     publisher,
		Signer:       signer,
		Push:         pushService,
		Auth:         middleware.JWTProtected(cfg, authService),
		OptionalAuth: middleware.OptionalAuth(authService),
	}

	plugins := []apps.Plugin{
		companies.New(),
		jobs.New(),
		applications.New(),
		messaging.New(),
	}

	app := routes.NewApp(cfg)
	routes.Setup(app, deps, routes.Handlers{
		Auth:   handlers.NewAuthHandler(authService),
		Users:  handlers.NewUserHandler(userService),
		Push:   handlers.NewPushHandler(pushService),
		Health: handlers.NewHealthHandler(db, redisPublisher != nil, pushService.Available()),
	}, plugins)

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("server starting", "port", cfg.Port)
		if err := app.Listen(":" + cfg.Port); err != nil {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	<-quit
	slog.Info("shutting down server...")

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		slog.Error("server shutdown error", "error", err)
	}

	stopCtx, cancelStop := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancelStop()
	if err := tasks.Stop(stopCtx); err != nil {
		slog.Warn("dispatcher did not drain", "error", err)
	}
	sched.Stop(stopCtx)
	if redisPublisher != nil {
		if err := redisPublisher.Close(); err != nil {
			slog.Error("redis close error", "error", err)
		}
	}

	pgLogHandler.Stop()
	sentry.Flush(2 * time.Second)

	if err := database.Close(db); err != nil {
		slog.Error("database close error", "error", err)
	}

	slog.Info("server stopped")
}

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/joho/godotenv"

	apispec "github.com/kartsetup/setupsheet/api"
	"github.com/kartsetup/setupsheet/internal/api"
	"github.com/kartsetup/setupsheet/internal/auth"
	"github.com/kartsetup/setupsheet/internal/config"
	"github.com/kartsetup/setupsheet/internal/database"
	"github.com/kartsetup/setupsheet/internal/notify"
	"github.com/kartsetup/setupsheet/internal/submission"
	"github.com/kartsetup/setupsheet/internal/team"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	setupLogger(cfg.LogLevel)

	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{Dsn: cfg.SentryDSN, Release: cfg.Version}); err != nil {
			slog.Warn("sentry initialization failed; errors will only be logged", "error", err)
		}
		defer sentry.Flush(2 * time.Second)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.New(ctx, cfg.DatabaseURL, database.PoolOptions{
		MaxConns:        cfg.DBMaxConns,
		MinConns:        cfg.DBMinConns,
		MaxConnLifetime: cfg.DBMaxConnLifetime,
	})
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := db.Migrate(ctx); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	teamRepo := team.NewRepository(db.Pool())
	userRepo := auth.NewRepository(db.Pool())
	subRepo := submission.NewRepository(db.Pool())

	dispatcher := notify.NewDispatcher(userRepo, newMailer(cfg), notify.Options{
		Workers:      cfg.NotifyWorkers,
		QueueSize:    cfg.NotifyQueueSize,
		Timeout:      cfg.NotifyTimeout,
		ManagerEmail: cfg.ManagerEmail,
		DashboardURL: cfg.DashboardURL,
	})
	dispatcherDone := make(chan struct{})
	go func() {
		defer close(dispatcherDone)
		dispatcher.Start(ctx)
	}()

	authService := auth.NewService(userRepo, teamRepo, auth.NewTokenIssuer(cfg.TokenSecret, cfg.TokenTTL), cfg.BcryptCost)
	subService := submission.NewService(teamRepo, userRepo, subRepo, dispatcher)

	router := api.NewRouter(api.RouterDeps{
		DBPinger:       db,
		Version:        cfg.Version,
		Teams:          teamRepo,
		Submissions:    subService,
		Auth:           authService,
		OpenAPISpec:    apispec.OpenAPISpec,
		AllowedOrigins: cfg.CORSAllowedOrigins,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		slog.Info("starting setup sheet server", "port", cfg.Port, "version", cfg.Version, "mail", cfg.MailEnabled())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case <-ctx.Done():
		slog.Info("shutting down server")
	case err := <-serverErr:
		slog.Error("server error", "error", err)
		stop()
		<-dispatcherDone
		os.Exit(1)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
	}
	<-dispatcherDone

	slog.Info("server stopped gracefully")
}

func setupLogger(level string) {
	var logLevel slog.Level
	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	})
	slog.SetDefault(slog.New(handler))
}

func newMailer(cfg *config.Config) notify.Mailer {
	if !cfg.MailEnabled() {
		slog.Warn("SMTP_HOST not set; notifications will be logged instead of sent")
		return notify.LogMailer{}
	}
	return notify.NewSMTPMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword, cfg.MailFrom())
}

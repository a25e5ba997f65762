package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jonboulle/clockwork"

	httpadapter "github.com/couchcryptid/weatherwatch/internal/adapter/http"
	"github.com/couchcryptid/weatherwatch/internal/config"
	"github.com/couchcryptid/weatherwatch/internal/fetch"
	"github.com/couchcryptid/weatherwatch/internal/ingest"
	"github.com/couchcryptid/weatherwatch/internal/observability"
	"github.com/couchcryptid/weatherwatch/internal/report"
	"github.com/couchcryptid/weatherwatch/internal/store"
)

// reportStartDelay lets the first ingestion pass land before the report
// scheduler starts checking the clock.
const reportStartDelay = 15 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()
	clock := clockwork.NewRealClock()

	db, err := store.Open(cfg.DatabasePath)
	if err != nil {
		logger.Error("failed to open database", "error", err, "path", cfg.DatabasePath)
		os.Exit(1)
	}

	if err := db.EnsureSchema(context.Background()); err != nil {
		logger.Error("failed to prepare schema", "error", err)
		os.Exit(1)
	}

	fetcher := fetch.New(cfg.BaseURL, cfg.FetchTimeout, clock, metrics, logger)
	loop := ingest.New(fetcher, db, cfg.Locations, cfg.RefreshPeriod, clock, logger, metrics)
	srv := httpadapter.NewServer(cfg.HTTPAddr, loop, db, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Either loop failing is fatal for the whole process. The HTTP
	// server only reports its own startup failures here.
	fatal := make(chan error, 3)

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			fatal <- err
		}
	}()

	go func() {
		fatal <- loop.Run(ctx)
	}()

	if cfg.ReportsEnabled {
		mailer := report.NewSMTPMailer(cfg.SMTPHost, cfg.SMTPPort,
			cfg.SMTPUsername, cfg.SMTPPassword, cfg.ReportFrom, cfg.ReportRecipients)
		scheduler := report.NewScheduler(db, mailer, cfg.ReportLocation, cfg.ReportTimes,
			cfg.FutureHours, cfg.FutureDays, clock, logger, metrics)
		go func() {
			select {
			case <-ctx.Done():
				fatal <- nil
				return
			case <-clock.After(reportStartDelay):
			}
			fatal <- scheduler.Run(ctx)
		}()
	} else {
		logger.Info("email reports disabled")
	}

	exitCode := 0
	select {
	case <-ctx.Done():
		logger.Info("shutting down")
	case err := <-fatal:
		if err != nil {
			logger.Error("fatal error", "error", err)
			exitCode = 1
		}
		stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if err := db.Close(); err != nil {
		logger.Error("database close error", "error", err)
	}

	logger.Info("shutdown complete")
	os.Exit(exitCode)
}

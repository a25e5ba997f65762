// Package ingest orchestrates the fetch → change-detect → extract → store
// cycle across all configured locations on a fixed cadence.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/weatherwatch/internal/domain"
	"github.com/couchcryptid/weatherwatch/internal/extract"
	"github.com/couchcryptid/weatherwatch/internal/observability"
)

// PageFetcher retrieves the raw page for one location.
type PageFetcher interface {
	Fetch(ctx context.Context, locationID string) ([]byte, error)
}

// Storage is the write surface the loop needs from the persistent store.
type Storage interface {
	UpsertLocation(ctx context.Context, loc domain.Location) error
	WatermarkChanged(ctx context.Context, locationID, observed string) (bool, error)
	ReplaceHourly(ctx context.Context, readings []domain.HourlyReading) error
	ReplaceDaily(ctx context.Context, conditions []domain.DailyCondition) error
	ReplaceWarnings(ctx context.Context, warnings []domain.Warning) error
}

// Loop polls every configured location sequentially, forever. There is no
// per-location fault isolation: any fetch, extraction, or storage failure
// aborts the loop and propagates to the supervisor, which treats it as
// fatal. Partial or silently-wrong persisted state is worse than stopping.
type Loop struct {
	fetcher   PageFetcher
	storage   Storage
	locations []string
	interval  time.Duration
	clock     clockwork.Clock
	logger    *slog.Logger
	metrics   *observability.Metrics
	ready     atomic.Bool
}

// New creates the ingestion loop. Locations are polled in the given order
// within every pass.
func New(fetcher PageFetcher, storage Storage, locations []string, interval time.Duration,
	clock clockwork.Clock, logger *slog.Logger, metrics *observability.Metrics) *Loop {
	return &Loop{
		fetcher:   fetcher,
		storage:   storage,
		locations: locations,
		interval:  interval,
		clock:     clock,
		logger:    logger,
		metrics:   metrics,
	}
}

// CheckReadiness returns nil once at least one full pass has completed.
func (l *Loop) CheckReadiness(_ context.Context) error {
	if !l.ready.Load() {
		return errors.New("no ingestion pass has completed yet")
	}
	return nil
}

// Run executes passes until the context is cancelled or a pass fails.
// A cancelled context is a clean stop (nil); everything else is fatal.
func (l *Loop) Run(ctx context.Context) error {
	l.logger.Info("ingest loop started",
		"locations", len(l.locations), "interval", l.interval)
	l.metrics.IngestRunning.Set(1)
	defer l.metrics.IngestRunning.Set(0)

	for {
		start := l.clock.Now()
		if err := l.pass(ctx); err != nil {
			if ctx.Err() != nil {
				l.logger.Info("ingest loop stopping", "reason", ctx.Err())
				return nil
			}
			return err
		}
		l.ready.Store(true)

		elapsed := l.clock.Since(start)
		l.metrics.PassesCompleted.Inc()
		l.metrics.PassDuration.Observe(elapsed.Seconds())

		// Sleeping only the remainder keeps the poll interval accurate
		// instead of compounding drift by the pass duration.
		select {
		case <-ctx.Done():
			l.logger.Info("ingest loop stopping", "reason", ctx.Err())
			return nil
		case <-l.clock.After(nextDelay(l.interval, elapsed)):
		}
	}
}

// pass polls every location once, in order.
func (l *Loop) pass(ctx context.Context) error {
	l.logger.Info("starting ingestion pass")
	for _, id := range l.locations {
		if err := l.ingestLocation(ctx, id); err != nil {
			return fmt.Errorf("location %s: %w", id, err)
		}
	}
	return nil
}

func (l *Loop) ingestLocation(ctx context.Context, locationID string) error {
	body, err := l.fetcher.Fetch(ctx, locationID)
	if err != nil {
		return err
	}

	page, err := extract.ParsePage(body)
	if err != nil {
		return err
	}

	loc := page.Location()
	if err := l.storage.UpsertLocation(ctx, loc); err != nil {
		return err
	}

	changed, err := l.storage.WatermarkChanged(ctx, loc.ID, page.Watermark())
	if err != nil {
		return err
	}
	if !changed {
		l.logger.Info("no data update", "location", loc.ID)
		l.metrics.LocationsUnchanged.Inc()
		return nil
	}

	hourly, daily, err := page.Forecast()
	if err != nil {
		return err
	}
	warnings, err := page.Warnings(l.clock.Now().UTC())
	if err != nil {
		return err
	}

	if err := l.storage.ReplaceHourly(ctx, hourly); err != nil {
		return err
	}
	if err := l.storage.ReplaceDaily(ctx, daily); err != nil {
		return err
	}
	if err := l.storage.ReplaceWarnings(ctx, warnings); err != nil {
		return err
	}

	l.metrics.LocationsChanged.Inc()
	l.metrics.RecordsWritten.WithLabelValues("hourly").Add(float64(len(hourly)))
	l.metrics.RecordsWritten.WithLabelValues("daily").Add(float64(len(daily)))
	l.metrics.RecordsWritten.WithLabelValues("warnings").Add(float64(len(warnings)))
	l.logger.Info("data updated", "location", loc.ID,
		"hourly", len(hourly), "daily", len(daily), "warnings", len(warnings))
	return nil
}

// nextDelay is the remainder of the poll interval after a pass, floored at
// zero for passes that overran it.
func nextDelay(interval, elapsed time.Duration) time.Duration {
	if elapsed >= interval {
		return 0
	}
	return interval - elapsed
}

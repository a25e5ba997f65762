// Package fetch retrieves raw weather pages over HTTP with bounded retry.
package fetch

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/weatherwatch/internal/observability"
)

const (
	// maxAttempts bounds retries per fetch; the final failure propagates.
	maxAttempts = 3
	// retryPause is the fixed wait between attempts.
	retryPause = time.Second

	// userAgent is a browser identity; the source rejects default client
	// identifiers.
	userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
)

// Fetcher performs the network fetch for one location. It retries
// transport-level failures and non-200 statuses; a 200 response with
// unparsable content is an extraction concern, not a fetch concern.
type Fetcher struct {
	baseURL    string
	httpClient *http.Client
	clock      clockwork.Clock
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// New creates a Fetcher rooted at baseURL (pages live at baseURL/<id>).
func New(baseURL string, timeout time.Duration, clock clockwork.Clock, metrics *observability.Metrics, logger *slog.Logger) *Fetcher {
	return &Fetcher{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		clock:      clock,
		metrics:    metrics,
		logger:     logger,
	}
}

// Fetch GETs the page for a location, retrying up to the attempt bound with
// a fixed pause between attempts. On exhaustion the final failure is
// returned.
func (f *Fetcher) Fetch(ctx context.Context, locationID string) ([]byte, error) {
	pageURL := f.baseURL + "/" + locationID

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if attempt > 1 {
			f.metrics.FetchRetries.Inc()
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-f.clock.After(retryPause):
			}
		}

		f.metrics.FetchAttempts.Inc()
		body, err := f.attempt(ctx, pageURL)
		if err == nil {
			return body, nil
		}
		lastErr = err
		f.logger.Warn("fetch attempt failed",
			"location", locationID, "attempt", attempt, "error", err)
	}

	return nil, fmt.Errorf("fetch %s after %d attempts: %w", locationID, maxAttempts, lastErr)
}

func (f *Fetcher) attempt(ctx context.Context, pageURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}
	return body, nil
}

package ingest_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/weatherwatch/internal/domain"
	"github.com/couchcryptid/weatherwatch/internal/ingest"
	"github.com/couchcryptid/weatherwatch/internal/observability"
)

// pageHTML builds a minimal but complete weather page with the given
// watermark, two day entries, and one hourly report.
func pageHTML(watermark string) []byte {
	return fmt.Appendf(nil, `<html><body>
<script type="application/json" data-state-id="forecast">{
  "data": {
    "location": {"id": "2643743", "name": "London", "container": "Greater London",
      "latitude": 51.5085, "longitude": -0.1257},
    "lastUpdated": %q,
    "issueDate": "2024-06-15T05:00:00+01:00",
    "forecasts": [
      {"detailed": {"reports": [
         {"localDate": "2024-06-15", "timeslot": "06:00", "temperatureC": 14, "feelsLikeTemperatureC": 12,
          "windSpeedMph": 10, "gustSpeedMph": 12, "windDirection": "SW", "humidity": 82,
          "precipitationProbabilityInPercent": 10, "pressure": 1019, "visibility": "Good", "weatherType": 3}]},
       "summary": {"report": {"localDate": "2024-06-15", "maxTempC": 20, "minTempC": 11,
         "sunrise": "04:43", "sunset": "21:21", "uvIndex": 9}}},
      {"detailed": {"reports": []},
       "summary": {"report": {"localDate": "2024-06-16", "maxTempC": 21, "minTempC": 12,
         "sunrise": "04:43", "sunset": "21:21", "uvIndex": 6}}}
    ]
  }
}</script>
</body></html>`, watermark)
}

type stubFetcher struct {
	mu    sync.Mutex
	pages map[string][]byte
	err   error
	calls []string
}

func (f *stubFetcher) Fetch(_ context.Context, locationID string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, locationID)
	if f.err != nil {
		return nil, f.err
	}
	return f.pages[locationID], nil
}

type stubStorage struct {
	mu             sync.Mutex
	locations      []domain.Location
	watermarks     map[string]string
	hourlyBatches  [][]domain.HourlyReading
	dailyBatches   [][]domain.DailyCondition
	warningBatches [][]domain.Warning
	replaceErr     error
}

func newStubStorage() *stubStorage {
	return &stubStorage{watermarks: map[string]string{}}
}

func (s *stubStorage) UpsertLocation(_ context.Context, loc domain.Location) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.locations = append(s.locations, loc)
	return nil
}

func (s *stubStorage) WatermarkChanged(_ context.Context, locationID, observed string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if stored, ok := s.watermarks[locationID]; ok && stored == observed {
		return false, nil
	}
	s.watermarks[locationID] = observed
	return true, nil
}

func (s *stubStorage) ReplaceHourly(_ context.Context, readings []domain.HourlyReading) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.replaceErr != nil {
		return s.replaceErr
	}
	s.hourlyBatches = append(s.hourlyBatches, readings)
	return nil
}

func (s *stubStorage) ReplaceDaily(_ context.Context, conditions []domain.DailyCondition) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dailyBatches = append(s.dailyBatches, conditions)
	return nil
}

func (s *stubStorage) ReplaceWarnings(_ context.Context, warnings []domain.Warning) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.warningBatches = append(s.warningBatches, warnings)
	return nil
}

func testLoop(fetcher ingest.PageFetcher, storage ingest.Storage, clock clockwork.Clock) *ingest.Loop {
	return ingest.New(fetcher, storage, []string{"2643743"}, time.Minute,
		clock,
		slog.New(slog.NewTextHandler(io.Discard, nil)),
		observability.NewMetricsForTesting())
}

// runPasses drives the loop through n passes with a fake clock, then
// cancels it and waits for a clean return.
func runPasses(t *testing.T, loop *ingest.Loop, clock *clockwork.FakeClock, n int) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- loop.Run(ctx) }()

	// Each pass ends parked on the inter-pass sleep.
	for i := 0; i < n-1; i++ {
		clock.BlockUntil(1)
		clock.Advance(time.Minute)
	}
	clock.BlockUntil(1)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err, "cancellation is a clean stop")
	case <-time.After(5 * time.Second):
		t.Fatal("loop did not stop")
	}
}

func TestRun_ChangedLocationIsExtractedAndStored(t *testing.T) {
	fetcher := &stubFetcher{pages: map[string][]byte{"2643743": pageHTML("v1")}}
	storage := newStubStorage()
	clock := clockwork.NewFakeClock()
	loop := testLoop(fetcher, storage, clock)

	require.Error(t, loop.CheckReadiness(context.Background()))

	runPasses(t, loop, clock, 1)

	require.Len(t, storage.locations, 1)
	assert.Equal(t, "London", storage.locations[0].Name)
	assert.Equal(t, "Greater London", storage.locations[0].Region)

	require.Len(t, storage.hourlyBatches, 1)
	require.Len(t, storage.hourlyBatches[0], 1)
	assert.Equal(t, 3600, storage.hourlyBatches[0][0].UTCOffset)

	require.Len(t, storage.dailyBatches, 1)
	assert.Len(t, storage.dailyBatches[0], 1, "today suppressed, one future day")

	require.Len(t, storage.warningBatches, 1)
	assert.Empty(t, storage.warningBatches[0])

	assert.NoError(t, loop.CheckReadiness(context.Background()))
}

func TestRun_UnchangedWatermarkSkipsWork(t *testing.T) {
	fetcher := &stubFetcher{pages: map[string][]byte{"2643743": pageHTML("v1")}}
	storage := newStubStorage()
	clock := clockwork.NewFakeClock()
	loop := testLoop(fetcher, storage, clock)

	runPasses(t, loop, clock, 3)

	assert.Len(t, fetcher.calls, 3, "every pass still fetches")
	assert.Len(t, storage.locations, 3, "location row refreshed every pass")
	assert.Len(t, storage.hourlyBatches, 1, "extraction only on the changed pass")
	assert.Len(t, storage.dailyBatches, 1)
}

func TestRun_FetchFailureIsFatal(t *testing.T) {
	fetcher := &stubFetcher{err: errors.New("connection refused")}
	storage := newStubStorage()
	loop := testLoop(fetcher, storage, clockwork.NewFakeClock())

	err := loop.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "location 2643743")
	assert.Contains(t, err.Error(), "connection refused")
	assert.Empty(t, storage.hourlyBatches)
}

func TestRun_UnparsablePageIsFatal(t *testing.T) {
	fetcher := &stubFetcher{pages: map[string][]byte{"2643743": []byte("<html>maintenance</html>")}}
	loop := testLoop(fetcher, newStubStorage(), clockwork.NewFakeClock())

	err := loop.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "payload script not found")
}

func TestRun_StorageFailureIsFatal(t *testing.T) {
	fetcher := &stubFetcher{pages: map[string][]byte{"2643743": pageHTML("v1")}}
	storage := newStubStorage()
	storage.replaceErr = errors.New("disk I/O error")
	loop := testLoop(fetcher, storage, clockwork.NewFakeClock())

	err := loop.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk I/O error")
}

package store_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/weatherwatch/internal/domain"
	"github.com/couchcryptid/weatherwatch/internal/store"
)

const testLocationID = "2643743"

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "weather.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	require.NoError(t, s.EnsureSchema(context.Background()))
	return s
}

func testLocation() domain.Location {
	return domain.Location{
		ID:        testLocationID,
		Name:      "London",
		Region:    "Greater London",
		Latitude:  51.5085,
		Longitude: -0.1257,
	}
}

func seedLocation(t *testing.T, s *store.Store) {
	t.Helper()
	require.NoError(t, s.UpsertLocation(context.Background(), testLocation()))
}

func testReading(ts time.Time) domain.HourlyReading {
	return domain.HourlyReading{
		LocationID:        testLocationID,
		Timestamp:         ts,
		Temperature:       14,
		FeelsLike:         12,
		WindSpeed:         10,
		WindDirection:     "SW",
		Humidity:          82,
		PrecipitationOdds: 10,
		Pressure:          1019,
		Visibility:        domain.VisibilityGood,
		WeatherType:       domain.WeatherSunnyIntervals,
		UTCOffset:         3600,
	}
}

func TestEnsureSchema_Idempotent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	seedLocation(t, s)
	require.NoError(t, s.SetWatermark(ctx, testLocationID, "v1"))

	// A second schema pass must not drop existing data.
	require.NoError(t, s.EnsureSchema(ctx))

	v, ok, err := s.Watermark(ctx, testLocationID)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "v1", v)
}

func TestUpsertLocation_UpdatesInPlace(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	seedLocation(t, s)
	require.NoError(t, s.SetWatermark(ctx, testLocationID, "v1"))

	updated := testLocation()
	updated.Name = "City of London"
	updated.Latitude = 51.5156
	require.NoError(t, s.UpsertLocation(ctx, updated))

	loc, err := s.LocationInfo(ctx, testLocationID)
	require.NoError(t, err)
	assert.Equal(t, "City of London", loc.Name)
	assert.Equal(t, 51.5156, loc.Latitude)

	// The watermark lives in its own table and must survive the upsert.
	v, ok, err := s.Watermark(ctx, testLocationID)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "v1", v)
}

func TestLocationInfo_NotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.LocationInfo(context.Background(), "nowhere")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestWatermarkChanged(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	seedLocation(t, s)

	t.Run("never seen counts as changed", func(t *testing.T) {
		changed, err := s.WatermarkChanged(ctx, testLocationID, "v1")
		require.NoError(t, err)
		assert.True(t, changed)
	})

	t.Run("same value is unchanged and idempotent", func(t *testing.T) {
		changed, err := s.WatermarkChanged(ctx, testLocationID, "v1")
		require.NoError(t, err)
		assert.False(t, changed)

		v, ok, err := s.Watermark(ctx, testLocationID)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, "v1", v)
	})

	t.Run("new value persists", func(t *testing.T) {
		changed, err := s.WatermarkChanged(ctx, testLocationID, "v2")
		require.NoError(t, err)
		assert.True(t, changed)

		v, _, err := s.Watermark(ctx, testLocationID)
		require.NoError(t, err)
		assert.Equal(t, "v2", v)
	})
}

func TestReplaceHourly_OverwritesByKey(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	seedLocation(t, s)

	ts := time.Date(2024, 6, 15, 6, 0, 0, 0, time.UTC)
	first := testReading(ts)
	require.NoError(t, s.ReplaceHourly(ctx, []domain.HourlyReading{first, testReading(ts.Add(time.Hour))}))

	// A newer fetch for the same key replaces the whole record.
	second := testReading(ts)
	second.Temperature = 20
	second.WindSpeed = 45
	second.Visibility = domain.VisibilityVeryPoor
	require.NoError(t, s.ReplaceHourly(ctx, []domain.HourlyReading{second}))

	readings, err := s.FutureWeather(ctx, testLocationID, ts.Add(-24*time.Hour), 10)
	require.NoError(t, err)
	require.Len(t, readings, 2)
	assert.Equal(t, 20, readings[0].Temperature)
	assert.Equal(t, 45, readings[0].WindSpeed)
	assert.Equal(t, domain.VisibilityVeryPoor, readings[0].Visibility)
}

func TestReplaceHourly_BatchIsAtomic(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	seedLocation(t, s)

	ts := time.Date(2024, 6, 15, 6, 0, 0, 0, time.UTC)
	prior := []domain.HourlyReading{testReading(ts), testReading(ts.Add(time.Hour))}
	require.NoError(t, s.ReplaceHourly(ctx, prior))

	// Third record violates the locations foreign key, failing the batch
	// mid-way. The first two must not become visible.
	bad := testReading(ts)
	bad.Temperature = 99
	batch := []domain.HourlyReading{bad, testReading(ts.Add(time.Hour)), testReading(ts.Add(2 * time.Hour))}
	batch[1].Temperature = 99
	batch[2].LocationID = "no-such-location"

	err := s.ReplaceHourly(ctx, batch)
	require.Error(t, err)

	readings, err := s.FutureWeather(ctx, testLocationID, ts.Add(-24*time.Hour), 10)
	require.NoError(t, err)
	require.Len(t, readings, 2, "failed batch must not add rows")
	for _, r := range readings {
		assert.Equal(t, 14, r.Temperature, "failed batch must not modify prior rows")
	}
}

func TestFutureWeather(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	seedLocation(t, s)

	base := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	var batch []domain.HourlyReading
	for i := -2; i <= 3; i++ {
		batch = append(batch, testReading(base.Add(time.Duration(i)*time.Hour)))
	}
	require.NoError(t, s.ReplaceHourly(ctx, batch))

	// Readings carry a +1h offset, so local 12:00 is absolute 11:00. At
	// absolute ref 11:00 the local 12:00 row is exactly "now", not future.
	ref := base.Add(-time.Hour)
	readings, err := s.FutureWeather(ctx, testLocationID, ref, 10)
	require.NoError(t, err)
	require.Len(t, readings, 3)
	assert.Equal(t, base.Add(time.Hour), readings[0].Timestamp)
	assert.True(t, readings[0].Absolute().After(ref))

	t.Run("ordered and limited", func(t *testing.T) {
		limited, err := s.FutureWeather(ctx, testLocationID, base.Add(-4*time.Hour), 2)
		require.NoError(t, err)
		require.Len(t, limited, 2)
		assert.True(t, limited[0].Timestamp.Before(limited[1].Timestamp))
	})

	t.Run("round trips pressure and enums", func(t *testing.T) {
		assert.Equal(t, 1019, readings[0].Pressure)
		assert.Equal(t, domain.VisibilityGood, readings[0].Visibility)
		assert.Equal(t, domain.WeatherSunnyIntervals, readings[0].WeatherType)
	})
}

func TestFutureConditions(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	seedLocation(t, s)

	pollution := 3
	today := time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)
	conditions := []domain.DailyCondition{
		{LocationID: testLocationID, Date: today, MaxTemperature: 20, MinTemperature: 11,
			Sunrise: "04:43", Sunset: "21:21", UVIndex: 9, UTCOffset: 3600},
		{LocationID: testLocationID, Date: today.AddDate(0, 0, 1), MaxTemperature: 21, MinTemperature: 12,
			Sunrise: "04:43", Sunset: "21:21", UVIndex: 6, PollutionIndex: &pollution, UTCOffset: 3600},
		{LocationID: testLocationID, Date: today.AddDate(0, 0, 2), MaxTemperature: 19, MinTemperature: 13,
			Sunrise: "04:44", Sunset: "21:22", UVIndex: 5, UTCOffset: 3600},
	}
	require.NoError(t, s.ReplaceDaily(ctx, conditions))

	// Mid-afternoon today: today's record is in the past, two days remain.
	ref := today.Add(15 * time.Hour)
	got, err := s.FutureConditions(ctx, testLocationID, ref, 7)
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, today.AddDate(0, 0, 1), got[0].Date)
	require.NotNil(t, got[0].PollutionIndex)
	assert.Equal(t, 3, *got[0].PollutionIndex)
	assert.Nil(t, got[0].PollenIndex)
	assert.Nil(t, got[1].PollutionIndex)

	t.Run("limit", func(t *testing.T) {
		one, err := s.FutureConditions(ctx, testLocationID, ref, 1)
		require.NoError(t, err)
		require.Len(t, one, 1)
		assert.Equal(t, today.AddDate(0, 0, 1), one[0].Date)
	})
}

func TestFutureWarnings(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	seedLocation(t, s)

	ref := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	warnings := []domain.Warning{
		{LocationID: testLocationID, Level: domain.WarningYellow, WeatherType: "Wind",
			Issued: ref.Add(-24 * time.Hour), Start: ref.Add(-time.Hour), End: ref.Add(time.Hour),
			Description: "ongoing"},
		{LocationID: testLocationID, Level: domain.WarningAmber, WeatherType: "Rain",
			Issued: ref.Add(-24 * time.Hour), Start: ref.Add(6 * time.Hour), End: ref.Add(12 * time.Hour),
			Description: "upcoming"},
		{LocationID: testLocationID, Level: domain.WarningRed, WeatherType: "Snow",
			Issued: ref.Add(-72 * time.Hour), Start: ref.Add(-48 * time.Hour), End: ref.Add(-24 * time.Hour),
			Description: "expired"},
	}
	require.NoError(t, s.ReplaceWarnings(ctx, warnings))

	got, err := s.FutureWarnings(ctx, testLocationID, ref)
	require.NoError(t, err)
	require.Len(t, got, 2, "expired warning filtered out")

	assert.Equal(t, "Wind", got[0].WeatherType)
	assert.True(t, got[0].ActiveAt(ref))
	assert.Equal(t, "Rain", got[1].WeatherType)
	assert.False(t, got[1].ActiveAt(ref))

	t.Run("re-issue is a new row", func(t *testing.T) {
		reissued := warnings[0]
		reissued.Issued = ref.Add(-time.Hour)
		require.NoError(t, s.ReplaceWarnings(ctx, []domain.Warning{reissued}))

		got, err := s.FutureWarnings(ctx, testLocationID, ref)
		require.NoError(t, err)
		assert.Len(t, got, 3)
	})
}

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/couchcryptid/weatherwatch/internal/domain"
)

// Read-side conveniences for the report collaborator. Every "future"
// comparison subtracts the record's own capture-time UTC offset, so records
// written under different offsets compare on one absolute clock.

// LocationInfo returns a location's stored display record, or ErrNotFound.
func (s *Store) LocationInfo(ctx context.Context, locationID string) (domain.Location, error) {
	var loc domain.Location
	err := s.db.QueryRowContext(ctx, `
		SELECT location_id, name, region, latitude, longitude
		FROM locations WHERE location_id = ?`, locationID).
		Scan(&loc.ID, &loc.Name, &loc.Region, &loc.Latitude, &loc.Longitude)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Location{}, fmt.Errorf("location %s: %w", locationID, ErrNotFound)
	}
	if err != nil {
		return domain.Location{}, fmt.Errorf("get location %s: %w", locationID, err)
	}
	return loc, nil
}

// FutureWeather returns up to hours hourly readings strictly after ref,
// ordered by time.
func (s *Store) FutureWeather(ctx context.Context, locationID string, ref time.Time, hours int) ([]domain.HourlyReading, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT location_id, timestamp, temperature, feels_like, wind_speed, wind_direction,
		       humidity, precipitation_odds, pressure, visibility, weather_type, utc_offset
		FROM hourly_readings
		WHERE location_id = ? AND timestamp - utc_offset > ?
		ORDER BY timestamp
		LIMIT ?`, locationID, ref.Unix(), hours)
	if err != nil {
		return nil, fmt.Errorf("query future weather %s: %w", locationID, err)
	}
	defer rows.Close()

	var readings []domain.HourlyReading
	for rows.Next() {
		var (
			r                 domain.HourlyReading
			ts                int64
			visibility, wtype int
		)
		if err := rows.Scan(&r.LocationID, &ts, &r.Temperature, &r.FeelsLike, &r.WindSpeed,
			&r.WindDirection, &r.Humidity, &r.PrecipitationOdds, &r.Pressure,
			&visibility, &wtype, &r.UTCOffset); err != nil {
			return nil, fmt.Errorf("scan hourly reading: %w", err)
		}
		r.Timestamp = time.Unix(ts, 0).UTC()
		r.Pressure += pressureBaseline
		if r.Visibility, err = domain.VisibilityFromCode(visibility); err != nil {
			return nil, fmt.Errorf("reading %s@%d: %w", r.LocationID, ts, err)
		}
		if r.WeatherType, err = domain.WeatherTypeFromCode(wtype); err != nil {
			return nil, fmt.Errorf("reading %s@%d: %w", r.LocationID, ts, err)
		}
		readings = append(readings, r)
	}
	return readings, rows.Err()
}

// FutureConditions returns up to days daily-condition records for days
// starting after ref, ordered by date.
func (s *Store) FutureConditions(ctx context.Context, locationID string, ref time.Time, days int) ([]domain.DailyCondition, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT location_id, date, max_temperature, min_temperature, sunrise, sunset,
		       uv_index, pollution_index, pollen_index, utc_offset
		FROM daily_conditions
		WHERE location_id = ? AND date - utc_offset > ?
		ORDER BY date
		LIMIT ?`, locationID, ref.Unix(), days)
	if err != nil {
		return nil, fmt.Errorf("query future conditions %s: %w", locationID, err)
	}
	defer rows.Close()

	var conditions []domain.DailyCondition
	for rows.Next() {
		var (
			c                 domain.DailyCondition
			date              int64
			pollution, pollen sql.NullInt64
		)
		if err := rows.Scan(&c.LocationID, &date, &c.MaxTemperature, &c.MinTemperature,
			&c.Sunrise, &c.Sunset, &c.UVIndex, &pollution, &pollen, &c.UTCOffset); err != nil {
			return nil, fmt.Errorf("scan daily condition: %w", err)
		}
		c.Date = time.Unix(date, 0).UTC()
		c.PollutionIndex = intPointer(pollution)
		c.PollenIndex = intPointer(pollen)
		conditions = append(conditions, c)
	}
	return conditions, rows.Err()
}

// FutureWarnings returns all warnings that have not yet ended at ref,
// ordered by start time. Callers derive "active" via Warning.ActiveAt.
func (s *Store) FutureWarnings(ctx context.Context, locationID string, ref time.Time) ([]domain.Warning, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT location_id, level, weather_type, issued, starts_at, ends_at, utc_offset, description
		FROM warnings
		WHERE location_id = ? AND ends_at - utc_offset > ?
		ORDER BY starts_at`, locationID, ref.Unix())
	if err != nil {
		return nil, fmt.Errorf("query future warnings %s: %w", locationID, err)
	}
	defer rows.Close()

	var warnings []domain.Warning
	for rows.Next() {
		var (
			w                   domain.Warning
			level               int
			issued, starts, end int64
		)
		if err := rows.Scan(&w.LocationID, &level, &w.WeatherType, &issued, &starts, &end,
			&w.UTCOffset, &w.Description); err != nil {
			return nil, fmt.Errorf("scan warning: %w", err)
		}
		if w.Level, err = domain.WarningLevelFromCode(level); err != nil {
			return nil, fmt.Errorf("warning %s/%s: %w", w.LocationID, w.WeatherType, err)
		}
		w.Issued = time.Unix(issued, 0).UTC()
		w.Start = time.Unix(starts, 0).UTC()
		w.End = time.Unix(end, 0).UTC()
		warnings = append(warnings, w)
	}
	return warnings, rows.Err()
}

func intPointer(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	n := int(v.Int64)
	return &n
}

// Package store owns the SQLite schema and all read/write primitives for
// weather data. It is the single source of truth shared by the ingestion
// loop (writer) and the report loop (reader); per-statement and per-batch
// atomicity come from the storage engine, not in-process locking.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // pure-Go SQLite driver, no CGO required

	"github.com/couchcryptid/weatherwatch/internal/domain"
)

// pressureBaseline is subtracted from pressures on write and added back on
// read. Stored values cluster around zero, a source-data convention kept
// for compatibility with existing databases.
const pressureBaseline = 1013

// ErrNotFound is returned by lookups for a location with no stored row.
var ErrNotFound = errors.New("location not found")

// Store wraps the SQLite handle and schema lifecycle.
type Store struct {
	db *sql.DB
}

// Open initializes the database connection, creating the parent directory
// as needed. The handle is limited to a single connection: SQLite serializes
// writers anyway, and one connection keeps the ingest and report loops'
// interleaved statements on the engine's own transactional guarantees.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	dsn := fmt.Sprintf("file:%s?_pragma=foreign_keys(ON)&_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(0)
	db.SetConnMaxIdleTime(5 * time.Minute)

	return &Store{db: db}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

const schema = `
CREATE TABLE IF NOT EXISTS locations (
	location_id TEXT PRIMARY KEY,
	name        TEXT NOT NULL,
	region      TEXT NOT NULL DEFAULT '',
	latitude    REAL NOT NULL DEFAULT 0,
	longitude   REAL NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS hourly_readings (
	location_id        TEXT NOT NULL,
	timestamp          INTEGER NOT NULL,
	temperature        INTEGER NOT NULL,
	feels_like         INTEGER NOT NULL,
	wind_speed         INTEGER NOT NULL,
	wind_direction     TEXT NOT NULL,
	humidity           INTEGER NOT NULL,
	precipitation_odds INTEGER NOT NULL,
	pressure           INTEGER NOT NULL,
	visibility         INTEGER NOT NULL,
	weather_type       INTEGER NOT NULL,
	utc_offset         INTEGER NOT NULL,
	PRIMARY KEY (location_id, timestamp),
	FOREIGN KEY (location_id) REFERENCES locations(location_id)
);

CREATE TABLE IF NOT EXISTS daily_conditions (
	location_id     TEXT NOT NULL,
	date            INTEGER NOT NULL,
	max_temperature INTEGER NOT NULL,
	min_temperature INTEGER NOT NULL,
	sunrise         TEXT NOT NULL,
	sunset          TEXT NOT NULL,
	uv_index        INTEGER NOT NULL,
	pollution_index INTEGER,
	pollen_index    INTEGER,
	utc_offset      INTEGER NOT NULL,
	PRIMARY KEY (location_id, date),
	FOREIGN KEY (location_id) REFERENCES locations(location_id)
);

CREATE TABLE IF NOT EXISTS warnings (
	location_id  TEXT NOT NULL,
	level        INTEGER NOT NULL,
	weather_type TEXT NOT NULL,
	issued       INTEGER NOT NULL,
	starts_at    INTEGER NOT NULL,
	ends_at      INTEGER NOT NULL,
	utc_offset   INTEGER NOT NULL,
	description  TEXT NOT NULL DEFAULT '',
	PRIMARY KEY (location_id, weather_type, issued),
	FOREIGN KEY (location_id) REFERENCES locations(location_id)
);

CREATE TABLE IF NOT EXISTS watermarks (
	location_id  TEXT PRIMARY KEY,
	last_updated TEXT NOT NULL,
	FOREIGN KEY (location_id) REFERENCES locations(location_id)
);
`

// EnsureSchema idempotently creates all tables. Safe on every process
// start; existing data is never dropped or migrated.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

// UpsertLocation inserts a location row or refreshes its display fields in
// place. The watermark lives in its own table and is left untouched.
func (s *Store) UpsertLocation(ctx context.Context, loc domain.Location) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO locations (location_id, name, region, latitude, longitude)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(location_id) DO UPDATE SET
			name = excluded.name,
			region = excluded.region,
			latitude = excluded.latitude,
			longitude = excluded.longitude`,
		loc.ID, loc.Name, loc.Region, loc.Latitude, loc.Longitude)
	if err != nil {
		return fmt.Errorf("upsert location %s: %w", loc.ID, err)
	}
	return nil
}

// Watermark returns the stored "last updated" value for a location, with
// ok=false when the location has never been seen.
func (s *Store) Watermark(ctx context.Context, locationID string) (string, bool, error) {
	var v string
	err := s.db.QueryRowContext(ctx,
		`SELECT last_updated FROM watermarks WHERE location_id = ?`, locationID).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get watermark %s: %w", locationID, err)
	}
	return v, true, nil
}

// SetWatermark unconditionally overwrites a location's watermark.
func (s *Store) SetWatermark(ctx context.Context, locationID, value string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO watermarks (location_id, last_updated) VALUES (?, ?)
		ON CONFLICT(location_id) DO UPDATE SET last_updated = excluded.last_updated`,
		locationID, value)
	if err != nil {
		return fmt.Errorf("set watermark %s: %w", locationID, err)
	}
	return nil
}

// WatermarkChanged is the change-detection gate: it reports whether the
// observed watermark differs from the stored one (a never-seen location
// always counts as changed) and persists the observed value only when it
// does. Comparison is exact string equality; the value is opaque and never
// interpreted as a timestamp.
func (s *Store) WatermarkChanged(ctx context.Context, locationID, observed string) (bool, error) {
	stored, ok, err := s.Watermark(ctx, locationID)
	if err != nil {
		return false, err
	}
	if ok && stored == observed {
		return false, nil
	}
	if err := s.SetWatermark(ctx, locationID, observed); err != nil {
		return false, err
	}
	return true, nil
}

// replaceMany runs n INSERT OR REPLACE executions of query inside one
// transaction, so a batch is either fully visible or not at all.
func (s *Store) replaceMany(ctx context.Context, query string, n int, row func(i int) []any) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i := 0; i < n; i++ {
		if _, err := stmt.ExecContext(ctx, row(i)...); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// ReplaceHourly atomically writes one fetch's hourly batch. Records sharing
// a (location, timestamp) key with stored rows replace them entirely.
func (s *Store) ReplaceHourly(ctx context.Context, readings []domain.HourlyReading) error {
	err := s.replaceMany(ctx, `
		INSERT OR REPLACE INTO hourly_readings
			(location_id, timestamp, temperature, feels_like, wind_speed, wind_direction,
			 humidity, precipitation_odds, pressure, visibility, weather_type, utc_offset)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		len(readings), func(i int) []any {
			r := readings[i]
			return []any{
				r.LocationID, r.Timestamp.Unix(), r.Temperature, r.FeelsLike,
				r.WindSpeed, r.WindDirection, r.Humidity, r.PrecipitationOdds,
				r.Pressure - pressureBaseline, int(r.Visibility), int(r.WeatherType), r.UTCOffset,
			}
		})
	if err != nil {
		return fmt.Errorf("replace hourly readings: %w", err)
	}
	return nil
}

// ReplaceDaily atomically writes one fetch's daily-conditions batch.
func (s *Store) ReplaceDaily(ctx context.Context, conditions []domain.DailyCondition) error {
	err := s.replaceMany(ctx, `
		INSERT OR REPLACE INTO daily_conditions
			(location_id, date, max_temperature, min_temperature, sunrise, sunset,
			 uv_index, pollution_index, pollen_index, utc_offset)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		len(conditions), func(i int) []any {
			c := conditions[i]
			return []any{
				c.LocationID, c.Date.Unix(), c.MaxTemperature, c.MinTemperature,
				c.Sunrise, c.Sunset, c.UVIndex, nullableInt(c.PollutionIndex),
				nullableInt(c.PollenIndex), c.UTCOffset,
			}
		})
	if err != nil {
		return fmt.Errorf("replace daily conditions: %w", err)
	}
	return nil
}

// ReplaceWarnings atomically writes one fetch's warning batch. A warning's
// key includes its issued timestamp, so a re-issue lands as a new row and
// existing warnings are never mutated.
func (s *Store) ReplaceWarnings(ctx context.Context, warnings []domain.Warning) error {
	err := s.replaceMany(ctx, `
		INSERT OR REPLACE INTO warnings
			(location_id, level, weather_type, issued, starts_at, ends_at, utc_offset, description)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		len(warnings), func(i int) []any {
			w := warnings[i]
			return []any{
				w.LocationID, int(w.Level), w.WeatherType, w.Issued.Unix(),
				w.Start.Unix(), w.End.Unix(), w.UTCOffset, w.Description,
			}
		})
	if err != nil {
		return fmt.Errorf("replace warnings: %w", err)
	}
	return nil
}

func nullableInt(p *int) any {
	if p == nil {
		return nil
	}
	return *p
}

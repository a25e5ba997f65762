package domain

import "time"

// Location identifies one place the watcher tracks. The ID is the stable
// external key used in page URLs and as the foreign key for every other
// record.
type Location struct {
	ID        string
	Name      string
	Region    string
	Latitude  float64
	Longitude float64
}

// HourlyReading is the weather at one (location, timestamp). Timestamp is
// the source's locale-local wall time; UTCOffset is the signed seconds
// offset in force when the forecast was issued.
type HourlyReading struct {
	LocationID        string
	Timestamp         time.Time
	Temperature       int // degrees C
	FeelsLike         int // degrees C
	WindSpeed         int // mph; gust speed when gusts are operationally relevant
	WindDirection     string
	Humidity          int // percent
	PrecipitationOdds int // percent
	Pressure          int // hPa
	Visibility        Visibility
	WeatherType       WeatherType
	UTCOffset         int // seconds
}

// Absolute returns the reading's timestamp as an absolute instant by
// removing the capture-time UTC offset.
func (r HourlyReading) Absolute() time.Time {
	return r.Timestamp.Add(-time.Duration(r.UTCOffset) * time.Second)
}

// DailyCondition holds the whole-day figures for one (location, day).
// Pollution and pollen indices are not reported for every location, so they
// stay nil when absent rather than defaulting to zero.
type DailyCondition struct {
	LocationID     string
	Date           time.Time // local midnight of the day
	MaxTemperature int       // degrees C
	MinTemperature int       // degrees C
	Sunrise        string    // local clock-of-day, "HH:MM"
	Sunset         string    // local clock-of-day, "HH:MM"
	UVIndex        int
	PollutionIndex *int
	PollenIndex    *int
	UTCOffset      int // seconds
}

// Warning is one extreme-weather warning. Warnings are never updated in
// place; a re-issue carries a new issued timestamp and is a new record.
type Warning struct {
	LocationID  string
	Level       WarningLevel
	WeatherType string
	Issued      time.Time // local wall time
	Start       time.Time // local wall time
	End         time.Time // local wall time
	UTCOffset   int       // seconds, per the GMT/BST heuristic
	Description string
}

// ActiveAt reports whether the warning is in force at the given absolute
// reference time, i.e. ref falls within [start, end) once the warning's
// offset is removed.
func (w Warning) ActiveAt(ref time.Time) bool {
	off := time.Duration(w.UTCOffset) * time.Second
	start := w.Start.Add(-off)
	end := w.End.Add(-off)
	return !ref.Before(start) && ref.Before(end)
}

package http

import (
	"time"

	"github.com/couchcryptid/weatherwatch/internal/domain"
)

// Wire shapes for the read API. Wall times are serialized as local
// RFC 3339 strings carrying the capture-time offset, so clients see the
// forecast's own clock.

type locationJSON struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Region    string  `json:"region"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

func newLocationJSON(loc domain.Location) locationJSON {
	return locationJSON{
		ID:        loc.ID,
		Name:      loc.Name,
		Region:    loc.Region,
		Latitude:  loc.Latitude,
		Longitude: loc.Longitude,
	}
}

type hourlyJSON struct {
	Time              string `json:"time"`
	Temperature       int    `json:"temperatureC"`
	FeelsLike         int    `json:"feelsLikeC"`
	WindSpeed         int    `json:"windSpeedMph"`
	WindDirection     string `json:"windDirection"`
	Humidity          int    `json:"humidityPercent"`
	PrecipitationOdds int    `json:"precipitationPercent"`
	Pressure          int    `json:"pressureHPa"`
	Visibility        string `json:"visibility"`
	WeatherType       string `json:"weatherType"`
}

func newHourlyJSON(r domain.HourlyReading) hourlyJSON {
	return hourlyJSON{
		Time:              localRFC3339(r.Timestamp, r.UTCOffset),
		Temperature:       r.Temperature,
		FeelsLike:         r.FeelsLike,
		WindSpeed:         r.WindSpeed,
		WindDirection:     r.WindDirection,
		Humidity:          r.Humidity,
		PrecipitationOdds: r.PrecipitationOdds,
		Pressure:          r.Pressure,
		Visibility:        r.Visibility.String(),
		WeatherType:       r.WeatherType.String(),
	}
}

type dailyJSON struct {
	Date           string `json:"date"`
	MaxTemperature int    `json:"maxTempC"`
	MinTemperature int    `json:"minTempC"`
	Sunrise        string `json:"sunrise"`
	Sunset         string `json:"sunset"`
	UVIndex        int    `json:"uvIndex"`
	PollutionIndex *int   `json:"pollutionIndex"`
	PollenIndex    *int   `json:"pollenIndex"`
}

func newDailyJSON(c domain.DailyCondition) dailyJSON {
	return dailyJSON{
		Date:           c.Date.Format("2006-01-02"),
		MaxTemperature: c.MaxTemperature,
		MinTemperature: c.MinTemperature,
		Sunrise:        c.Sunrise,
		Sunset:         c.Sunset,
		UVIndex:        c.UVIndex,
		PollutionIndex: c.PollutionIndex,
		PollenIndex:    c.PollenIndex,
	}
}

type warningJSON struct {
	Level       string `json:"level"`
	WeatherType string `json:"weatherType"`
	Issued      string `json:"issued"`
	Start       string `json:"start"`
	End         string `json:"end"`
	Active      bool   `json:"active"`
	Description string `json:"description"`
}

func newWarningJSON(w domain.Warning, now time.Time) warningJSON {
	return warningJSON{
		Level:       w.Level.String(),
		WeatherType: w.WeatherType,
		Issued:      localRFC3339(w.Issued, w.UTCOffset),
		Start:       localRFC3339(w.Start, w.UTCOffset),
		End:         localRFC3339(w.End, w.UTCOffset),
		Active:      w.ActiveAt(now),
		Description: w.Description,
	}
}

// localRFC3339 renders a stored wall time in its own captured offset.
func localRFC3339(wall time.Time, offsetSeconds int) string {
	zone := time.FixedZone("", offsetSeconds)
	return time.Date(wall.Year(), wall.Month(), wall.Day(),
		wall.Hour(), wall.Minute(), wall.Second(), 0, zone).Format(time.RFC3339)
}

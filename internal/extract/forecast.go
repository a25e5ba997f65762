package extract

import (
	"fmt"
	"time"

	"github.com/couchcryptid/weatherwatch/internal/domain"
)

// gustThresholdMph is the gust speed at or above which gusts become the
// operationally relevant figure and replace the sustained wind speed.
const gustThresholdMph = 40

const (
	localTimeLayout = "2006-01-02 15:04"
	localDateLayout = "2006-01-02"
)

// Forecast extracts the hourly and daily batches from the page's payload.
//
// The UTC offset is derived once from the payload's issue datetime and
// attached to every record. The first forecast entry is "today" and is
// always excluded from daily extraction: its whole-day indices (UV above
// all) are only meaningful once the day has progressed, and capturing them
// mid-day or at night corrupts later historical reads.
func (p *Page) Forecast() ([]domain.HourlyReading, []domain.DailyCondition, error) {
	offset, err := domain.ForecastOffset(p.payload.IssueDate)
	if err != nil {
		return nil, nil, fmt.Errorf("derive forecast offset: %w", err)
	}

	locationID := p.payload.Location.ID
	var hourly []domain.HourlyReading
	var daily []domain.DailyCondition

	for i, fc := range p.payload.Forecasts {
		for _, rep := range fc.Detailed.Reports {
			reading, err := hourlyFromReport(locationID, rep, offset)
			if err != nil {
				return nil, nil, err
			}
			hourly = append(hourly, reading)
		}

		if i == 0 {
			continue
		}
		condition, err := dailyFromSummary(locationID, fc.Summary.Report, offset)
		if err != nil {
			return nil, nil, err
		}
		daily = append(daily, condition)
	}

	return hourly, daily, nil
}

func hourlyFromReport(locationID string, rep report, offset int) (domain.HourlyReading, error) {
	ts, err := time.Parse(localTimeLayout, rep.LocalDate+" "+rep.Timeslot)
	if err != nil {
		return domain.HourlyReading{}, fmt.Errorf("parse report time %q %q: %w", rep.LocalDate, rep.Timeslot, err)
	}
	visibility, err := domain.ParseVisibility(rep.Visibility)
	if err != nil {
		return domain.HourlyReading{}, fmt.Errorf("report at %s: %w", ts.Format(localTimeLayout), err)
	}
	weatherType, err := domain.WeatherTypeFromCode(rep.WeatherType)
	if err != nil {
		return domain.HourlyReading{}, fmt.Errorf("report at %s: %w", ts.Format(localTimeLayout), err)
	}

	windSpeed := rep.WindSpeedMph
	if rep.GustSpeedMph >= gustThresholdMph {
		windSpeed = rep.GustSpeedMph
	}

	return domain.HourlyReading{
		LocationID:        locationID,
		Timestamp:         ts,
		Temperature:       rep.TemperatureC,
		FeelsLike:         rep.FeelsLikeTemperatureC,
		WindSpeed:         windSpeed,
		WindDirection:     rep.WindDirection,
		Humidity:          rep.Humidity,
		PrecipitationOdds: rep.PrecipitationProbabilityInPercent,
		Pressure:          rep.Pressure,
		Visibility:        visibility,
		WeatherType:       weatherType,
		UTCOffset:         offset,
	}, nil
}

func dailyFromSummary(locationID string, day daySummary, offset int) (domain.DailyCondition, error) {
	date, err := time.Parse(localDateLayout, day.LocalDate)
	if err != nil {
		return domain.DailyCondition{}, fmt.Errorf("parse summary date %q: %w", day.LocalDate, err)
	}

	return domain.DailyCondition{
		LocationID:     locationID,
		Date:           date,
		MaxTemperature: day.MaxTempC,
		MinTemperature: day.MinTempC,
		Sunrise:        day.Sunrise,
		Sunset:         day.Sunset,
		UVIndex:        day.UVIndex,
		PollutionIndex: day.PollutionIndex,
		PollenIndex:    day.PollenIndex,
		UTCOffset:      offset,
	}, nil
}

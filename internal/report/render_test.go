package report

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/weatherwatch/internal/domain"
)

func testSummary() Summary {
	pollen := 3
	return Summary{
		Location:    domain.Location{ID: "2643743", Name: "London", Region: "Greater London"},
		GeneratedAt: time.Date(2024, 6, 15, 7, 0, 0, 0, time.UTC),
		Hourly: []domain.HourlyReading{
			{
				LocationID:        "2643743",
				Timestamp:         time.Date(2024, 6, 15, 9, 0, 0, 0, time.UTC),
				Temperature:       17,
				FeelsLike:         15,
				WindSpeed:         12,
				WindDirection:     "SW",
				Humidity:          70,
				PrecipitationOdds: 20,
				Pressure:          1018,
				Visibility:        domain.VisibilityGood,
				WeatherType:       domain.WeatherSunnyIntervals,
				UTCOffset:         3600,
			},
		},
		Daily: []domain.DailyCondition{
			{
				LocationID:     "2643743",
				Date:           time.Date(2024, 6, 16, 0, 0, 0, 0, time.UTC),
				MaxTemperature: 21,
				MinTemperature: 12,
				Sunrise:        "04:43",
				Sunset:         "21:21",
				UVIndex:        6,
				PollenIndex:    &pollen,
			},
		},
		Warnings: []domain.Warning{
			{
				LocationID:  "2643743",
				Level:       domain.WarningYellow,
				WeatherType: "wind",
				Issued:      time.Date(2024, 6, 14, 11, 0, 0, 0, time.UTC),
				Start:       time.Date(2024, 6, 15, 6, 0, 0, 0, time.UTC),
				End:         time.Date(2024, 6, 15, 21, 0, 0, 0, time.UTC),
				UTCOffset:   3600,
				Description: "Gusts of up to 60 mph are expected.",
			},
		},
	}
}

func TestRender(t *testing.T) {
	body, err := Render(testSummary())
	require.NoError(t, err)

	assert.Contains(t, body, "<h1>London, Greater London</h1>")
	assert.Contains(t, body, "09:00")
	assert.Contains(t, body, "17&deg;C")
	assert.Contains(t, body, "12 mph SW")
	assert.Contains(t, body, "Sun 16 Jun")
	assert.Contains(t, body, "Yellow warning of wind")
	assert.Contains(t, body, "Gusts of up to 60 mph are expected.")
}

func TestRender_ActiveWarningIsFlagged(t *testing.T) {
	s := testSummary()

	// 07:00 UTC is inside the warning's 06:00 to 21:00 BST window.
	body, err := Render(s)
	require.NoError(t, err)
	assert.Contains(t, body, "(in force now)")

	s.GeneratedAt = time.Date(2024, 6, 15, 4, 0, 0, 0, time.UTC)
	body, err = Render(s)
	require.NoError(t, err)
	assert.NotContains(t, body, "(in force now)")
}

func TestRender_MissingIndices(t *testing.T) {
	s := testSummary()
	s.Daily[0].PollenIndex = nil
	s.Daily[0].PollutionIndex = nil

	body, err := Render(s)
	require.NoError(t, err)
	assert.Contains(t, body, "n/a")
}

func TestSummarySubject(t *testing.T) {
	s := testSummary()
	assert.Equal(t, "Weather for London, Sat 15 Jun (1 warnings in force)", s.Subject())

	s.Warnings = nil
	assert.Equal(t, "Weather for London, Sat 15 Jun", s.Subject())
}

// Command mockpage generates a synthetic weather page in the exact shape the
// ingestion pipeline scrapes. It is useful for local runs against a static
// file server and for eyeballing extraction behavior without hitting the
// real site.
//
// Usage:
//
//	go run ./cmd/mockpage -id 2643743 -name London -region "Greater London" \
//	  -days 3 -hours 8 -warning -o testdata/london.html
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"time"
)

var weatherTypes = []int{0, 1, 2, 3, 7, 8, 10, 11, 12, 15}

var visibilities = []string{"Poor", "Moderate", "Good", "Very Good", "Excellent"}

var directions = []string{"N", "NE", "E", "SE", "S", "SW", "W", "NW"}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	id := flag.String("id", "2643743", "location id")
	name := flag.String("name", "London", "location name")
	region := flag.String("region", "Greater London", "containing region")
	lat := flag.Float64("lat", 51.5085, "latitude")
	lon := flag.Float64("lon", -0.1257, "longitude")
	days := flag.Int("days", 3, "number of forecast days")
	hours := flag.Int("hours", 8, "hourly reports on the first day")
	warning := flag.Bool("warning", false, "include a weather warning banner")
	base := flag.String("base", "", "base date, RFC 3339 (default now)")
	seed := flag.Int64("seed", 0, "random seed (0 means time-based)")
	out := flag.String("o", "", "output path (default stdout)")
	flag.Parse()

	now := time.Now()
	if *base != "" {
		parsed, err := time.Parse(time.RFC3339, *base)
		if err != nil {
			return fmt.Errorf("invalid -base: %w", err)
		}
		now = parsed
	}
	if *seed == 0 {
		*seed = now.UnixNano()
	}
	rng := rand.New(rand.NewSource(*seed))

	payload := buildPayload(rng, *id, *name, *region, *lat, *lon, *days, *hours, now)
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return err
	}

	banner := ""
	if *warning {
		banner = buildWarning(now)
	}

	page := fmt.Sprintf(`<html>
<head><title>%s - Weather</title></head>
<body>
%s<script type="application/json" data-state-id="forecast">%s</script>
</body>
</html>
`, *name, banner, data)

	if *out == "" {
		fmt.Print(page)
		return nil
	}
	if err := os.WriteFile(*out, []byte(page), 0o600); err != nil {
		return err
	}
	log.Printf("wrote %s (%d days, %d first-day reports)", *out, *days, *hours)
	return nil
}

func buildPayload(rng *rand.Rand, id, name, region string, lat, lon float64,
	days, hours int, now time.Time) map[string]any {
	forecasts := make([]map[string]any, 0, days)
	for d := 0; d < days; d++ {
		day := now.AddDate(0, 0, d)

		reportHours := hours
		if d > 0 {
			reportHours = 24
		}
		reports := make([]map[string]any, 0, reportHours)
		for h := 0; h < reportHours; h++ {
			slot := day.Truncate(time.Hour).Add(time.Duration(h) * time.Hour)
			temp := 8 + rng.Intn(18)
			wind := 3 + rng.Intn(25)
			reports = append(reports, map[string]any{
				"localDate":                         slot.Format("2006-01-02"),
				"timeslot":                          slot.Format("15:04"),
				"temperatureC":                      temp,
				"feelsLikeTemperatureC":             temp - rng.Intn(4),
				"windSpeedMph":                      wind,
				"gustSpeedMph":                      wind + rng.Intn(20),
				"windDirection":                     directions[rng.Intn(len(directions))],
				"humidity":                          40 + rng.Intn(55),
				"precipitationProbabilityInPercent": rng.Intn(100),
				"pressure":                          995 + rng.Intn(40),
				"visibility":                        visibilities[rng.Intn(len(visibilities))],
				"weatherType":                       weatherTypes[rng.Intn(len(weatherTypes))],
			})
		}

		summary := map[string]any{
			"localDate": day.Format("2006-01-02"),
			"maxTempC":  15 + rng.Intn(12),
			"minTempC":  4 + rng.Intn(8),
			"sunrise":   "05:12",
			"sunset":    "20:48",
			"uvIndex":   1 + rng.Intn(9),
		}
		if rng.Intn(2) == 0 {
			summary["pollutionIndex"] = 1 + rng.Intn(9)
		}
		if rng.Intn(2) == 0 {
			summary["pollenIndex"] = 1 + rng.Intn(4)
		}

		forecasts = append(forecasts, map[string]any{
			"detailed": map[string]any{"reports": reports},
			"summary":  map[string]any{"report": summary},
		})
	}

	return map[string]any{
		"data": map[string]any{
			"location": map[string]any{
				"id":        id,
				"name":      name,
				"container": region,
				"latitude":  lat,
				"longitude": lon,
			},
			"lastUpdated": now.UTC().Format("2006-01-02T15:04:05.000Z"),
			"issueDate":   now.Format("2006-01-02T15:04:05+01:00"),
			"forecasts":   forecasts,
		},
	}
}

func buildWarning(now time.Time) string {
	start := now.Add(6 * time.Hour)
	end := now.Add(18 * time.Hour)
	return fmt.Sprintf(`<div class="wr-c-weather-warning">
  <p class="wr-c-weather-warning__issued-at-date">Issued at %s BST on %s</p>
  <h3>Yellow warning of wind</h3>
  <div class="wr-c-weather-warning__warning-period">
    <p>%s</p>
    <p class="wr-o-active">Active now</p>
    <p>%s</p>
  </div>
  <p class="wr-c-weather-warning__warning-text">Gusts of up to 60 mph are expected. Expect some travel disruption.</p>
</div>
`,
		now.Format("15:04"), now.Format("Monday 2 January"),
		start.Format("Monday 2 January, 15:04"),
		end.Format("Monday 2 January, 15:04"))
}

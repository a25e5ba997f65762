// Command inspect dumps what the database currently knows about a location:
// its stored details, watermark, upcoming hourly weather, daily conditions,
// and warnings. Useful for checking ingestion output without standing up
// the HTTP API.
//
// Usage:
//
//	go run ./cmd/inspect -db weatherwatch.db -location 2643743 -hours 12 -days 5
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/couchcryptid/weatherwatch/internal/store"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	dbPath := flag.String("db", "weatherwatch.db", "database path")
	locationID := flag.String("location", "", "location id to inspect")
	hours := flag.Int("hours", 12, "hourly readings to show")
	days := flag.Int("days", 5, "daily conditions to show")
	flag.Parse()

	if *locationID == "" {
		flag.Usage()
		return fmt.Errorf("missing required flag: -location")
	}
	if _, err := os.Stat(*dbPath); err != nil {
		return fmt.Errorf("database %s: %w", *dbPath, err)
	}

	db, err := store.Open(*dbPath)
	if err != nil {
		return err
	}
	defer db.Close()

	ctx := context.Background()
	now := time.Now().UTC()

	loc, err := db.LocationInfo(ctx, *locationID)
	if err != nil {
		return err
	}
	fmt.Printf("%s (%s), %s  [%.4f, %.4f]\n", loc.Name, loc.ID, loc.Region, loc.Latitude, loc.Longitude)

	if watermark, ok, err := db.Watermark(ctx, *locationID); err != nil {
		return err
	} else if ok {
		fmt.Printf("last update marker: %s\n", watermark)
	} else {
		fmt.Println("last update marker: none")
	}

	readings, err := db.FutureWeather(ctx, *locationID, now, *hours)
	if err != nil {
		return err
	}
	fmt.Printf("\nNext %d hourly readings:\n", len(readings))
	for _, r := range readings {
		fmt.Printf("  %s  %-20s %3d°C (feels %d°C)  %2d mph %-3s  rain %d%%  %d hPa  %s\n",
			r.Timestamp.Format("Mon 15:04"), r.WeatherType, r.Temperature, r.FeelsLike,
			r.WindSpeed, r.WindDirection, r.PrecipitationOdds, r.Pressure, r.Visibility)
	}

	conditions, err := db.FutureConditions(ctx, *locationID, now, *days)
	if err != nil {
		return err
	}
	fmt.Printf("\nNext %d days:\n", len(conditions))
	for _, c := range conditions {
		fmt.Printf("  %s  %d to %d°C  sun %s to %s  UV %d  pollution %s  pollen %s\n",
			c.Date.Format("Mon 2 Jan"), c.MinTemperature, c.MaxTemperature,
			c.Sunrise, c.Sunset, c.UVIndex, fmtIndex(c.PollutionIndex), fmtIndex(c.PollenIndex))
	}

	warnings, err := db.FutureWarnings(ctx, *locationID, now)
	if err != nil {
		return err
	}
	fmt.Printf("\nWarnings in force or upcoming: %d\n", len(warnings))
	for _, w := range warnings {
		active := ""
		if w.ActiveAt(now) {
			active = "  (active now)"
		}
		fmt.Printf("  %s warning of %s, %s to %s%s\n    %s\n",
			w.Level, w.WeatherType,
			w.Start.Format("Mon 2 Jan 15:04"), w.End.Format("Mon 2 Jan 15:04"),
			active, w.Description)
	}

	return nil
}

func fmtIndex(p *int) string {
	if p == nil {
		return "n/a"
	}
	return fmt.Sprintf("%d", *p)
}

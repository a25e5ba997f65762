// Package extract turns a fetched weather page into normalized record
// batches. Extraction is pure: the same page bytes always yield the same
// records, and a malformed page fails the whole call rather than producing
// a partial batch.
package extract

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/PuerkitoBio/goquery"

	"github.com/couchcryptid/weatherwatch/internal/domain"
)

// forecastScriptSelector locates the embedded forecast payload.
const forecastScriptSelector = `script[data-state-id="forecast"]`

// envelope wraps the payload as embedded in the page.
type envelope struct {
	Data payload `json:"data"`
}

// payload mirrors the JSON the source embeds in each location page.
type payload struct {
	Location    payloadLocation `json:"location"`
	LastUpdated string          `json:"lastUpdated"`
	IssueDate   string          `json:"issueDate"`
	Forecasts   []forecast      `json:"forecasts"`
}

type payloadLocation struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Container string  `json:"container"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type forecast struct {
	Detailed struct {
		Reports []report `json:"reports"`
	} `json:"detailed"`
	Summary struct {
		Report daySummary `json:"report"`
	} `json:"summary"`
}

type report struct {
	LocalDate                         string `json:"localDate"`
	Timeslot                          string `json:"timeslot"`
	TemperatureC                      int    `json:"temperatureC"`
	FeelsLikeTemperatureC             int    `json:"feelsLikeTemperatureC"`
	WindSpeedMph                      int    `json:"windSpeedMph"`
	GustSpeedMph                      int    `json:"gustSpeedMph"`
	WindDirection                     string `json:"windDirection"`
	Humidity                          int    `json:"humidity"`
	PrecipitationProbabilityInPercent int    `json:"precipitationProbabilityInPercent"`
	Pressure                          int    `json:"pressure"`
	Visibility                        string `json:"visibility"`
	WeatherType                       int    `json:"weatherType"`
}

type daySummary struct {
	LocalDate      string `json:"localDate"`
	MaxTempC       int    `json:"maxTempC"`
	MinTempC       int    `json:"minTempC"`
	Sunrise        string `json:"sunrise"`
	Sunset         string `json:"sunset"`
	UVIndex        int    `json:"uvIndex"`
	PollutionIndex *int   `json:"pollutionIndex"`
	PollenIndex    *int   `json:"pollenIndex"`
}

// Page is one fetched weather page, parsed once and shared by the forecast
// and warning extractors.
type Page struct {
	doc     *goquery.Document
	payload payload
}

// ParsePage parses the page markup and decodes the embedded forecast
// payload. A page without the payload script is unparsable content, which
// is an extraction failure, not a fetch failure.
func ParsePage(body []byte) (*Page, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse page markup: %w", err)
	}

	script := doc.Find(forecastScriptSelector)
	if script.Length() == 0 {
		return nil, errors.New("forecast payload script not found in page")
	}

	var env envelope
	if err := json.Unmarshal([]byte(script.First().Text()), &env); err != nil {
		return nil, fmt.Errorf("decode forecast payload: %w", err)
	}
	if env.Data.Location.ID == "" {
		return nil, errors.New("forecast payload has no location id")
	}
	if len(env.Data.Forecasts) == 0 {
		return nil, errors.New("forecast payload has no forecasts")
	}

	return &Page{doc: doc, payload: env.Data}, nil
}

// Location returns the page's location record. The source's "container" is
// its name for the enclosing region.
func (p *Page) Location() domain.Location {
	loc := p.payload.Location
	return domain.Location{
		ID:        loc.ID,
		Name:      loc.Name,
		Region:    loc.Container,
		Latitude:  loc.Latitude,
		Longitude: loc.Longitude,
	}
}

// Watermark returns the source's opaque "last updated" value. It is only
// ever compared for equality, never parsed.
func (p *Page) Watermark() string {
	return p.payload.LastUpdated
}

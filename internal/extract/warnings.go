package extract

import (
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/couchcryptid/weatherwatch/internal/domain"
)

// Warning markup selectors, per the source's component classes.
const (
	warningSelector       = "div.wr-c-weather-warning"
	warningIssuedSelector = "p.wr-c-weather-warning__issued-at-date"
	warningPeriodSelector = "div.wr-c-weather-warning__warning-period p"
	warningTextSelector   = "p.wr-c-weather-warning__warning-text"

	// warningHeadingSep splits "<Level> warning of <Type>" headings.
	warningHeadingSep = " warning of "

	// warningActiveClass marks the decorative "active now" element inside
	// the warning period, which is not a date.
	warningActiveClass = "wr-o-active"
)

// Warnings extracts the page's weather warnings, if any. The free-text
// dates carry no year, so today's date drives year inference. A banner that
// does not match the expected markup or token pattern fails the whole call;
// a silently mis-dated warning is worse than a visible failure.
func (p *Page) Warnings(today time.Time) ([]domain.Warning, error) {
	var warnings []domain.Warning
	var firstErr error

	p.doc.Find(warningSelector).EachWithBreak(func(i int, sel *goquery.Selection) bool {
		w, err := parseWarning(p.payload.Location.ID, sel, today)
		if err != nil {
			firstErr = fmt.Errorf("warning %d: %w", i, err)
			return false
		}
		warnings = append(warnings, w)
		return true
	})
	if firstErr != nil {
		return nil, firstErr
	}

	return warnings, nil
}

func parseWarning(locationID string, sel *goquery.Selection, today time.Time) (domain.Warning, error) {
	heading := strings.TrimSpace(sel.Find("h3").First().Text())
	levelText, weatherType, found := strings.Cut(heading, warningHeadingSep)
	if !found {
		return domain.Warning{}, fmt.Errorf("heading %q does not match %q pattern", heading, warningHeadingSep)
	}
	level, err := domain.ParseWarningLevel(levelText)
	if err != nil {
		return domain.Warning{}, err
	}

	issuedText := strings.TrimSpace(sel.Find(warningIssuedSelector).First().Text())
	if issuedText == "" {
		return domain.Warning{}, fmt.Errorf("no issued-at text")
	}

	periods := periodTexts(sel)
	if len(periods) != 2 {
		return domain.Warning{}, fmt.Errorf("expected 2 warning period dates, found %d", len(periods))
	}

	issued, err := domain.ParseWarningDate(issuedText, today)
	if err != nil {
		return domain.Warning{}, fmt.Errorf("issued: %w", err)
	}
	start, err := domain.ParseWarningDate(periods[0], today)
	if err != nil {
		return domain.Warning{}, fmt.Errorf("start: %w", err)
	}
	end, err := domain.ParseWarningDate(periods[1], today)
	if err != nil {
		return domain.Warning{}, fmt.Errorf("end: %w", err)
	}

	return domain.Warning{
		LocationID:  locationID,
		Level:       level,
		WeatherType: strings.TrimSpace(weatherType),
		Issued:      issued,
		Start:       start,
		End:         end,
		UTCOffset:   domain.WarningOffset(issuedText),
		Description: strings.TrimSpace(sel.Find(warningTextSelector).First().Text()),
	}, nil
}

// periodTexts collects the warning period's start/end date texts, skipping
// the "active" decoration element.
func periodTexts(sel *goquery.Selection) []string {
	var texts []string
	sel.Find(warningPeriodSelector).Each(func(_ int, p *goquery.Selection) {
		if class, _ := p.Attr("class"); strings.Contains(class, warningActiveClass) {
			return
		}
		texts = append(texts, strings.TrimSpace(p.Text()))
	})
	return texts
}

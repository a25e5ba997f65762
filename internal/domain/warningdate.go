package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// yearRolloverDays is the cutoff for year inference: a current-year
// interpretation further than this from today means the source intends the
// next year.
const yearRolloverDays = 180

var monthsByName = map[string]time.Month{
	"January":   time.January,
	"February":  time.February,
	"March":     time.March,
	"April":     time.April,
	"May":       time.May,
	"June":      time.June,
	"July":      time.July,
	"August":    time.August,
	"September": time.September,
	"October":   time.October,
	"November":  time.November,
	"December":  time.December,
}

// ParseWarningDate parses a warning banner's free-text date, e.g.
// "Wednesday 3 October, 14:00", relative to today's date.
//
// The text is scanned as whitespace-split tokens: a token of digits and a
// single colon is the HH:MM time; a token matching a month name marks the
// month, with the day taken from the immediately preceding token. The source
// gives no year, so one is inferred: if the absolute day difference between
// the current-year interpretation and today exceeds 180 days, the date rolls
// to the next year.
//
// Any missing or out-of-range component is an error; a warning with a
// silently-wrong date is worse than a visible failure.
func ParseWarningDate(text string, today time.Time) (time.Time, error) {
	var (
		hour, minute = -1, -1
		day          = -1
		month        time.Month
	)

	tokens := strings.Fields(text)
	for i, raw := range tokens {
		token := strings.Trim(raw, ",.")
		if h, m, ok := parseClock(token); ok {
			hour, minute = h, m
			continue
		}
		if mo, ok := monthsByName[token]; ok {
			if i == 0 {
				return time.Time{}, fmt.Errorf("warning date %q: month %q has no preceding day token", text, token)
			}
			d, err := strconv.Atoi(strings.Trim(tokens[i-1], ",."))
			if err != nil || d < 1 || d > 31 {
				return time.Time{}, fmt.Errorf("warning date %q: bad day token %q before month", text, tokens[i-1])
			}
			month, day = mo, d
		}
	}

	if hour < 0 {
		return time.Time{}, fmt.Errorf("warning date %q: no HH:MM time token", text)
	}
	if month == 0 || day < 0 {
		return time.Time{}, fmt.Errorf("warning date %q: no day-and-month tokens", text)
	}

	year := today.Year()
	candidate := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	midnight := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)
	diff := candidate.Sub(midnight)
	if diff < 0 {
		diff = -diff
	}
	if diff > yearRolloverDays*24*time.Hour {
		year++
	}

	return time.Date(year, month, day, hour, minute, 0, 0, time.UTC), nil
}

// parseClock recognizes an HH:MM token: digits and exactly one colon.
func parseClock(token string) (hour, minute int, ok bool) {
	if !strings.Contains(token, ":") {
		return 0, 0, false
	}
	for _, r := range token {
		if r != ':' && (r < '0' || r > '9') {
			return 0, 0, false
		}
	}
	hh, mm, found := strings.Cut(token, ":")
	if !found || strings.Contains(mm, ":") {
		return 0, 0, false
	}
	h, err1 := strconv.Atoi(hh)
	m, err2 := strconv.Atoi(mm)
	if err1 != nil || err2 != nil || h > 23 || m > 59 {
		return 0, 0, false
	}
	return h, m, true
}

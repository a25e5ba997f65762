package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseWarningDate(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		today    time.Time
		expected time.Time
	}{
		{
			name:     "same year within window",
			text:     "Wednesday 3 October, 14:00",
			today:    time.Date(2024, 11, 20, 0, 0, 0, 0, time.UTC),
			expected: time.Date(2024, 10, 3, 14, 0, 0, 0, time.UTC),
		},
		{
			name:     "rolls to next year across boundary",
			text:     "Friday 3 January, 09:00",
			today:    time.Date(2024, 12, 20, 0, 0, 0, 0, time.UTC),
			expected: time.Date(2025, 1, 3, 9, 0, 0, 0, time.UTC),
		},
		{
			name:     "future date in same year",
			text:     "Saturday 14 December, 18:30",
			today:    time.Date(2024, 11, 20, 0, 0, 0, 0, time.UTC),
			expected: time.Date(2024, 12, 14, 18, 30, 0, 0, time.UTC),
		},
		{
			name:     "issued-at prose with extra tokens",
			text:     "Issued at 05:12 on Monday 7 October",
			today:    time.Date(2024, 10, 7, 0, 0, 0, 0, time.UTC),
			expected: time.Date(2024, 10, 7, 5, 12, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseWarningDate(tt.text, tt.today)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestParseWarningDate_Errors(t *testing.T) {
	today := time.Date(2024, 10, 7, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		text string
	}{
		{"empty text", ""},
		{"no time token", "Wednesday 3 October"},
		{"no month token", "Wednesday 3rd at 14:00"},
		{"month without day", "October, 14:00"},
		{"non-numeric day", "Wednesday third October, 14:00"},
		{"day out of range", "Wednesday 32 October, 14:00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseWarningDate(tt.text, today)
			require.Error(t, err)
			assert.Contains(t, err.Error(), "warning date")
		})
	}
}

func TestParseClock(t *testing.T) {
	tests := []struct {
		token        string
		hour, minute int
		ok           bool
	}{
		{"14:00", 14, 0, true},
		{"09:05", 9, 5, true},
		{"00:00", 0, 0, true},
		{"24:00", 0, 0, false},
		{"12:60", 0, 0, false},
		{"12:00:00", 0, 0, false},
		{"1a:00", 0, 0, false},
		{"Monday", 0, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			h, m, ok := parseClock(tt.token)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.hour, h)
				assert.Equal(t, tt.minute, m)
			}
		})
	}
}

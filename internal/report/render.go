// Package report renders weather summaries and delivers them by email on a
// fixed daily schedule.
package report

import (
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/couchcryptid/weatherwatch/internal/domain"
)

// Summary is everything one rendered report covers.
type Summary struct {
	Location    domain.Location
	GeneratedAt time.Time
	Hourly      []domain.HourlyReading
	Daily       []domain.DailyCondition
	Warnings    []domain.Warning
}

// Subject is the email subject line for a summary.
func (s Summary) Subject() string {
	subject := fmt.Sprintf("Weather for %s, %s", s.Location.Name, s.GeneratedAt.Format("Mon 2 Jan"))
	if len(s.Warnings) > 0 {
		subject += fmt.Sprintf(" (%d warnings in force)", len(s.Warnings))
	}
	return subject
}

var reportTemplate = template.Must(template.New("report").Funcs(template.FuncMap{
	"hour":   func(t time.Time) string { return t.Format("15:04") },
	"day":    func(t time.Time) string { return t.Format("Mon 2 Jan") },
	"moment": func(t time.Time) string { return t.Format("Mon 2 Jan, 15:04") },
	"deref": func(p *int) string {
		if p == nil {
			return "n/a"
		}
		return fmt.Sprintf("%d", *p)
	},
}).Parse(`<html>
<body>
<h1>{{.Location.Name}}, {{.Location.Region}}</h1>

{{if .Warnings}}
<h2>Warnings</h2>
{{range .Warnings}}
<p><strong>{{.Level}} warning of {{.WeatherType}}</strong>{{if .ActiveAt $.GeneratedAt}} (in force now){{end}}<br>
{{moment .Start}} to {{moment .End}}<br>
{{.Description}}</p>
{{end}}
{{end}}

<h2>Next hours</h2>
<table border="1" cellpadding="4">
<tr><th>Time</th><th>Weather</th><th>Temp</th><th>Feels like</th><th>Wind</th><th>Humidity</th><th>Rain</th><th>Pressure</th><th>Visibility</th></tr>
{{range .Hourly}}
<tr><td>{{hour .Timestamp}}</td><td>{{.WeatherType}}</td><td>{{.Temperature}}&deg;C</td><td>{{.FeelsLike}}&deg;C</td><td>{{.WindSpeed}} mph {{.WindDirection}}</td><td>{{.Humidity}}%</td><td>{{.PrecipitationOdds}}%</td><td>{{.Pressure}} hPa</td><td>{{.Visibility}}</td></tr>
{{end}}
</table>

<h2>Coming days</h2>
<table border="1" cellpadding="4">
<tr><th>Day</th><th>Max</th><th>Min</th><th>Sunrise</th><th>Sunset</th><th>UV</th><th>Pollution</th><th>Pollen</th></tr>
{{range .Daily}}
<tr><td>{{day .Date}}</td><td>{{.MaxTemperature}}&deg;C</td><td>{{.MinTemperature}}&deg;C</td><td>{{.Sunrise}}</td><td>{{.Sunset}}</td><td>{{.UVIndex}}</td><td>{{deref .PollutionIndex}}</td><td>{{deref .PollenIndex}}</td></tr>
{{end}}
</table>
</body>
</html>
`))

// Render produces the HTML body for a summary.
func Render(s Summary) (string, error) {
	var buf strings.Builder
	if err := reportTemplate.Execute(&buf, s); err != nil {
		return "", fmt.Errorf("render report: %w", err)
	}
	return buf.String(), nil
}

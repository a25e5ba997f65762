// Package domain models BBC Weather forecast and warning data.
//
// # Data Source
//
// Each location page at https://www.bbc.com/weather/<id> embeds a single JSON
// payload in a <script data-state-id="forecast"> element. The payload carries
// the location record, an opaque "lastUpdated" value, and a list of per-day
// forecasts, each with hourly detailed reports and a daily summary. Weather
// warnings, when present, appear as separate HTML markup on the same page.
//
// # Timestamps and Offsets
//
// All timestamps in the payload are locale-local wall-clock values with no
// zone information. The payload's issue datetime is the one value that does
// carry an offset; it is parsed once per fetch and the resulting signed
// seconds offset is attached to every hourly and daily record produced from
// that fetch. "Future" comparisons subtract a record's own offset to get an
// absolute instant, so records captured under different offsets (DST
// transitions) compare correctly. See [ForecastOffset].
//
// # Warning Date Text
//
// Warning banners give dates as prose, e.g. "Wednesday 3 October, 14:00",
// with no year. [ParseWarningDate] assumes the source always supplies day,
// month, hour and minute in that relative token order; this is a fixed
// external-format assumption, not a general date parser. The year is
// inferred: if the current-year interpretation lands more than 180 days from
// today, the date is taken to be in the next year (handles a "1 January"
// warning read in late December).
//
// The warning's UTC offset is derived from whether the issued-at text
// contains a literal "GMT" marker (GMT -> 0, otherwise +1 hour, i.e. BST).
// This is a known single-region simplification and deliberately not
// generalized to other timezones. See [WarningOffset].
//
// # Categorical Codes
//
// Visibility, weather type and warning level are closed enumerations stored
// as small integers with bidirectional mappings to the source's display
// strings. This package is the single owner of those mappings; a display
// string or code outside the known set is an error, never silently passed
// through.
package domain

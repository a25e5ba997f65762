package domain

import "fmt"

// Visibility is the source's six-level human-eye visibility scale.
type Visibility int

const (
	VisibilityVeryPoor Visibility = iota
	VisibilityPoor
	VisibilityModerate
	VisibilityGood
	VisibilityVeryGood
	VisibilityExcellent
)

var visibilityNames = map[Visibility]string{
	VisibilityVeryPoor:  "Very Poor",
	VisibilityPoor:      "Poor",
	VisibilityModerate:  "Moderate",
	VisibilityGood:      "Good",
	VisibilityVeryGood:  "Very Good",
	VisibilityExcellent: "Excellent",
}

var visibilityByName = invert(visibilityNames)

// ParseVisibility maps a source display string to its code.
func ParseVisibility(s string) (Visibility, error) {
	v, ok := visibilityByName[s]
	if !ok {
		return 0, fmt.Errorf("unknown visibility %q", s)
	}
	return v, nil
}

// VisibilityFromCode validates a stored integer code.
func VisibilityFromCode(code int) (Visibility, error) {
	v := Visibility(code)
	if _, ok := visibilityNames[v]; !ok {
		return 0, fmt.Errorf("unknown visibility code %d", code)
	}
	return v, nil
}

func (v Visibility) String() string { return visibilityNames[v] }

// WeatherType is the source's weather classification. The integer values
// are the source's own codes, which are sparse by design.
type WeatherType int

const (
	WeatherClearSky         WeatherType = 0
	WeatherSunny            WeatherType = 1
	WeatherPartlyCloudy     WeatherType = 2
	WeatherSunnyIntervals   WeatherType = 3
	WeatherMist             WeatherType = 5
	WeatherFog              WeatherType = 6
	WeatherLightCloud       WeatherType = 7
	WeatherThickCloud       WeatherType = 8
	WeatherLightRainShowers WeatherType = 10
	WeatherDrizzle          WeatherType = 11
	WeatherLightRain        WeatherType = 12
	WeatherHeavyRain        WeatherType = 15
	WeatherSleetShowers     WeatherType = 17
	WeatherSleet            WeatherType = 18
	WeatherHail             WeatherType = 19
	WeatherHailShowers      WeatherType = 20
	WeatherLightSnowShowers WeatherType = 23
	WeatherLightSnow        WeatherType = 24
	WeatherHeavySnowShowers WeatherType = 25
	WeatherHeavySnow        WeatherType = 27
	WeatherThunderyShowers  WeatherType = 28
)

var weatherTypeNames = map[WeatherType]string{
	WeatherClearSky:         "Clear Sky",
	WeatherSunny:            "Sunny",
	WeatherPartlyCloudy:     "Partly Cloudy",
	WeatherSunnyIntervals:   "Sunny Intervals",
	WeatherMist:             "Mist",
	WeatherFog:              "Fog",
	WeatherLightCloud:       "Light Cloud",
	WeatherThickCloud:       "Thick Cloud",
	WeatherLightRainShowers: "Light Rain Showers",
	WeatherDrizzle:          "Drizzle",
	WeatherLightRain:        "Light Rain",
	WeatherHeavyRain:        "Heavy Rain",
	WeatherSleetShowers:     "Sleet Showers",
	WeatherSleet:            "Sleet",
	WeatherHail:             "Hail",
	WeatherHailShowers:      "Hail Showers",
	WeatherLightSnowShowers: "Light Snow Showers",
	WeatherLightSnow:        "Light Snow",
	WeatherHeavySnowShowers: "Heavy Snow Showers",
	WeatherHeavySnow:        "Heavy Snow",
	WeatherThunderyShowers:  "Thundery Showers",
}

// WeatherTypeFromCode validates a source or stored integer code.
func WeatherTypeFromCode(code int) (WeatherType, error) {
	w := WeatherType(code)
	if _, ok := weatherTypeNames[w]; !ok {
		return 0, fmt.Errorf("unknown weather type code %d", code)
	}
	return w, nil
}

func (w WeatherType) String() string { return weatherTypeNames[w] }

// WarningLevel orders warning severity from lowest to highest.
type WarningLevel int

const (
	WarningYellow WarningLevel = iota
	WarningAmber
	WarningRed
)

var warningLevelNames = map[WarningLevel]string{
	WarningYellow: "Yellow",
	WarningAmber:  "Amber",
	WarningRed:    "Red",
}

var warningLevelByName = invert(warningLevelNames)

// ParseWarningLevel maps a source display string to its level.
func ParseWarningLevel(s string) (WarningLevel, error) {
	l, ok := warningLevelByName[s]
	if !ok {
		return 0, fmt.Errorf("unknown warning level %q", s)
	}
	return l, nil
}

// WarningLevelFromCode validates a stored integer code.
func WarningLevelFromCode(code int) (WarningLevel, error) {
	l := WarningLevel(code)
	if _, ok := warningLevelNames[l]; !ok {
		return 0, fmt.Errorf("unknown warning level code %d", code)
	}
	return l, nil
}

func (l WarningLevel) String() string { return warningLevelNames[l] }

func invert[K comparable, V comparable](m map[K]V) map[V]K {
	out := make(map[V]K, len(m))
	for k, v := range m {
		out[v] = k
	}
	return out
}

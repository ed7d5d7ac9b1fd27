// Package units holds the pure conversions and formatting helpers used when
// presenting weather data.
package units

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/i474232898/weather-dashboard/internal/common"
)

// Unit is a temperature scale the dashboard can display.
type Unit int

const (
	Celsius Unit = iota
	Fahrenheit
)

// ErrInvalidUnit is returned when a value is neither "celsius" nor "fahrenheit".
var ErrInvalidUnit = fmt.Errorf("unit must be %q or %q", "celsius", "fahrenheit")

// ParseUnit maps the persisted name of a unit back to a Unit.
func ParseUnit(s string) (Unit, error) {
	switch s {
	case "celsius":
		return Celsius, nil
	case "fahrenheit":
		return Fahrenheit, nil
	default:
		return Celsius, fmt.Errorf("%w: got %q", ErrInvalidUnit, s)
	}
}

func (u Unit) String() string {
	if u == Fahrenheit {
		return "fahrenheit"
	}
	return "celsius"
}

// Symbol returns the suffix appended to formatted temperatures.
func (u Unit) Symbol() string {
	if u == Fahrenheit {
		return "°F"
	}
	return "°C"
}

func (u Unit) MarshalText() ([]byte, error) {
	return []byte(u.String()), nil
}

func (u *Unit) UnmarshalText(b []byte) error {
	parsed, err := ParseUnit(string(b))
	if err != nil {
		return err
	}
	*u = parsed
	return nil
}

// CelsiusToFahrenheit converts a Celsius temperature to Fahrenheit.
func CelsiusToFahrenheit(c float64) float64 {
	return c*9/5 + 32
}

// Convert returns a Celsius value expressed in u.
func Convert(c float64, u Unit) float64 {
	if u == Fahrenheit {
		return CelsiusToFahrenheit(c)
	}
	return c
}

// FormatTemperature renders a Celsius value in u, rounded to a whole degree.
func FormatTemperature(c float64, u Unit) string {
	return fmt.Sprintf("%d%s", roundHalfUp(Convert(c, u)), u.Symbol())
}

// roundHalfUp rounds .5 toward positive infinity, so -2.5 becomes -2.
func roundHalfUp(v float64) int {
	return int(math.Floor(v + 0.5))
}

var compassPoints = [8]string{"N", "NE", "E", "SE", "S", "SW", "W", "NW"}

// CompassDirection maps a wind bearing in degrees to one of eight compass
// labels. Each label owns the 45° sector starting at its own bearing, and a
// full turn wraps back to "N".
func CompassDirection(degrees float64) string {
	d := math.Mod(degrees, 360)
	if d < 0 {
		d += 360
	}
	idx := int(math.Floor(d/45)) % len(compassPoints)
	return compassPoints[idx]
}

// Condition is the coarse category a textual weather description falls into.
type Condition string

const (
	ConditionClear   Condition = "clear"
	ConditionCloudy  Condition = "cloudy"
	ConditionRainy   Condition = "rainy"
	ConditionSnowy   Condition = "snowy"
	ConditionStormy  Condition = "stormy"
	ConditionFoggy   Condition = "foggy"
	ConditionDefault Condition = "default"
)

// conditionRules is evaluated in order; the first matching rule wins.
var conditionRules = []struct {
	keywords []string
	category Condition
}{
	{[]string{"clear"}, ConditionClear},
	{[]string{"cloud"}, ConditionCloudy},
	{[]string{"rain", "drizzle"}, ConditionRainy},
	{[]string{"snow"}, ConditionSnowy},
	{[]string{"thunder"}, ConditionStormy},
	{[]string{"mist", "fog"}, ConditionFoggy},
}

// ClassifyCondition buckets an upstream description such as "light rain".
func ClassifyCondition(description string) Condition {
	for _, rule := range conditionRules {
		if common.HasAny(description, rule.keywords...) {
			return rule.category
		}
	}
	return ConditionDefault
}

// IconURL resolves an upstream icon reference to an absolute URL.
// OpenWeatherMap sends bare codes like "04d"; WeatherAPI sends protocol-relative URLs.
func IconURL(ref string) string {
	switch {
	case ref == "":
		return ""
	case strings.HasPrefix(ref, "//"):
		return "https:" + ref
	case strings.HasPrefix(ref, "http://"), strings.HasPrefix(ref, "https://"):
		return ref
	default:
		return fmt.Sprintf("https://openweathermap.org/img/wn/%s@2x.png", ref)
	}
}

// Zone returns a fixed zone for an upstream timezone offset in seconds.
func Zone(offsetSeconds int) *time.Location {
	if offsetSeconds == 0 {
		return time.UTC
	}
	return time.FixedZone(fmt.Sprintf("UTC%+03d%02d", offsetSeconds/3600, abs(offsetSeconds%3600)/60), offsetSeconds)
}

// FormatDate renders a unix timestamp as "Mon, Jan 2" in the given zone.
func FormatDate(unix int64, loc *time.Location) string {
	return time.Unix(unix, 0).In(loc).Format("Mon, Jan 2")
}

// FormatTime renders a unix timestamp as "3:04 PM" in the given zone.
func FormatTime(unix int64, loc *time.Location) string {
	return time.Unix(unix, 0).In(loc).Format("3:04 PM")
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

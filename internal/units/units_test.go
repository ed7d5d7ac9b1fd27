package units

import (
	"encoding/json"
	"errors"
	"testing"
	"time"
)

func TestFormatTemperature(t *testing.T) {
	cases := []struct {
		value float64
		unit  Unit
		want  string
	}{
		{0, Celsius, "0°C"},
		{0, Fahrenheit, "32°F"},
		{100, Celsius, "100°C"},
		{100, Fahrenheit, "212°F"},
		{21.6, Celsius, "22°C"},
		{-2.5, Celsius, "-2°C"},
		{-0.4, Celsius, "0°C"},
		{-40, Fahrenheit, "-40°F"},
	}

	for _, tc := range cases {
		if got := FormatTemperature(tc.value, tc.unit); got != tc.want {
			t.Errorf("FormatTemperature(%v, %v) = %q; want %q", tc.value, tc.unit, got, tc.want)
		}
	}
}

func TestCelsiusToFahrenheit(t *testing.T) {
	if got := CelsiusToFahrenheit(37); got < 98.59 || got > 98.61 {
		t.Fatalf("CelsiusToFahrenheit(37) = %v; want 98.6", got)
	}
}

func TestCompassDirection(t *testing.T) {
	cases := map[float64]string{
		0:    "N",
		44:   "N",
		45:   "NE",
		46:   "NE",
		90:   "E",
		180:  "S",
		270:  "W",
		315:  "NW",
		359:  "NW",
		360:  "N",
		405:  "NE",
		-45:  "NW",
		22.4: "N",
	}

	for deg, want := range cases {
		if got := CompassDirection(deg); got != want {
			t.Errorf("CompassDirection(%v) = %q; want %q", deg, got, want)
		}
	}
}

func TestClassifyCondition(t *testing.T) {
	cases := map[string]Condition{
		"light rain":             ConditionRainy,
		"clear sky":              ConditionClear,
		"broken clouds":          ConditionCloudy,
		"xyz":                    ConditionDefault,
		"":                       ConditionDefault,
		"Heavy Snow":             ConditionSnowy,
		"thunderstorm":           ConditionStormy,
		"haze and fog":           ConditionFoggy,
		"light drizzle":          ConditionRainy,
		"thunderstorm with rain": ConditionRainy,
		"clouds clearing":        ConditionClear,
		"mist":                   ConditionFoggy,
	}

	for desc, want := range cases {
		if got := ClassifyCondition(desc); got != want {
			t.Errorf("ClassifyCondition(%q) = %q; want %q", desc, got, want)
		}
	}
}

func TestParseUnit(t *testing.T) {
	if u, err := ParseUnit("fahrenheit"); err != nil || u != Fahrenheit {
		t.Fatalf("ParseUnit(fahrenheit) = %v, %v", u, err)
	}
	if u, err := ParseUnit("celsius"); err != nil || u != Celsius {
		t.Fatalf("ParseUnit(celsius) = %v, %v", u, err)
	}
	if _, err := ParseUnit("kelvin"); !errors.Is(err, ErrInvalidUnit) {
		t.Fatalf("ParseUnit(kelvin) err = %v; want ErrInvalidUnit", err)
	}
}

func TestUnitJSON(t *testing.T) {
	var payload struct {
		Unit Unit `json:"unit"`
	}
	if err := json.Unmarshal([]byte(`{"unit":"fahrenheit"}`), &payload); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if payload.Unit != Fahrenheit {
		t.Fatalf("unit = %v; want fahrenheit", payload.Unit)
	}

	if err := json.Unmarshal([]byte(`{"unit":"rankine"}`), &payload); err == nil {
		t.Fatal("expected error for out-of-enum unit")
	}

	out, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(out) != `{"unit":"fahrenheit"}` {
		t.Fatalf("marshal = %s", out)
	}
}

func TestIconURL(t *testing.T) {
	cases := map[string]string{
		"04d": "https://openweathermap.org/img/wn/04d@2x.png",
		"//cdn.weatherapi.com/weather/64x64/day/113.png": "https://cdn.weatherapi.com/weather/64x64/day/113.png",
		"https://example.com/a.png":                      "https://example.com/a.png",
		"":                                               "",
	}
	for ref, want := range cases {
		if got := IconURL(ref); got != want {
			t.Errorf("IconURL(%q) = %q; want %q", ref, got, want)
		}
	}
}

func TestFormatDateAndTime(t *testing.T) {
	// 2024-01-15 23:30 UTC
	ts := time.Date(2024, time.January, 15, 23, 30, 0, 0, time.UTC).Unix()

	if got := FormatDate(ts, time.UTC); got != "Mon, Jan 15" {
		t.Errorf("FormatDate UTC = %q", got)
	}
	if got := FormatTime(ts, time.UTC); got != "11:30 PM" {
		t.Errorf("FormatTime UTC = %q", got)
	}

	tokyo := Zone(9 * 3600)
	if got := FormatDate(ts, tokyo); got != "Tue, Jan 16" {
		t.Errorf("FormatDate +09 = %q", got)
	}
	if got := FormatTime(ts, tokyo); got != "8:30 AM" {
		t.Errorf("FormatTime +09 = %q", got)
	}
	if Zone(0) != time.UTC {
		t.Error("Zone(0) should be UTC")
	}
}

package weather

import (
	"time"
)

// WeatherSnapshot is the current-conditions record for one city key.
// It is replaced wholesale on every successful fetch.
type WeatherSnapshot struct {
	ID             int64   `json:"id"`
	Name           string  `json:"name"`
	Country        string  `json:"country"`
	Temperature    float64 `json:"temp"`
	FeelsLike      float64 `json:"feelsLike"`
	TempMin        float64 `json:"tempMin"`
	TempMax        float64 `json:"tempMax"`
	Humidity       float64 `json:"humidity"`
	Pressure       float64 `json:"pressure"`
	WindSpeed      float64 `json:"windSpeed"` // m/s
	WindDeg        float64 `json:"windDeg"`
	Description    string  `json:"description"`
	Icon           string  `json:"icon"`
	Clouds         float64 `json:"clouds"`
	Visibility     float64 `json:"visibility"` // metres
	ObservedAt     int64   `json:"dt"`         // unix seconds
	TimezoneOffset int     `json:"timezone"`   // seconds east of UTC
}

// ForecastPoint is one entry of a forecast series.
type ForecastPoint struct {
	Time              int64   `json:"dt"`
	Temperature       float64 `json:"temp"`
	TempMin           float64 `json:"tempMin"`
	TempMax           float64 `json:"tempMax"`
	FeelsLike         float64 `json:"feelsLike"`
	Humidity          float64 `json:"humidity"`
	Pressure          float64 `json:"pressure"`
	WindSpeed         float64 `json:"windSpeed"`
	Description       string  `json:"description"`
	Icon              string  `json:"icon"`
	PrecipProbability float64 `json:"pop"` // 0..1
}

// ForecastSeries holds the forecast for one city key in upstream order.
type ForecastSeries struct {
	City   string          `json:"city"`
	Points []ForecastPoint `json:"list"`
}

// Place is a geocoding candidate returned while searching for a city.
type Place struct {
	Name    string  `json:"name"`
	Region  string  `json:"region,omitempty"`
	Country string  `json:"country,omitempty"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
}

// CurrentState is a read-only view of the current-conditions entry for a key.
type CurrentState struct {
	Snapshot    *WeatherSnapshot
	Loading     bool
	Err         string
	LastUpdated time.Time
}

// ForecastState is a read-only view of the forecast entry for a key.
type ForecastState struct {
	Series  *ForecastSeries
	Loading bool
	Err     string
}

// Outcome tells which branch a fetch took.
type Outcome int

const (
	Skipped Outcome = iota
	Succeeded
	Failed
)

func (o Outcome) String() string {
	switch o {
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	default:
		return "skipped"
	}
}

// FetchResult is the outcome of a gated fetch. Value is set only when the
// outcome is Succeeded, Err only when it is Failed.
type FetchResult[T any] struct {
	Outcome Outcome
	Value   T
	Err     error
}

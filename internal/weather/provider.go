package weather

import (
	"context"
	"time"
)

// Gateway abstracts the upstream weather/geocoding service (OpenWeatherMap, WeatherAPI).
type Gateway interface {
	Name() string
	FetchCurrent(ctx context.Context, city string) (WeatherSnapshot, error)
	FetchForecast(ctx context.Context, city string) (ForecastSeries, error)
	// GeocodeSuggestions returns an empty result, not an error, when ctx is cancelled.
	GeocodeSuggestions(ctx context.Context, query string, limit int) ([]Place, error)
}

// Store is the per-city state the Service drives. Current and forecast
// entries live in separate namespaces.
type Store interface {
	BeginCurrent(city string)
	CompleteCurrent(city string, snapshot WeatherSnapshot, at time.Time)
	FailCurrent(city string, msg string)
	Current(city string) CurrentState

	BeginForecast(city string)
	CompleteForecast(city string, series ForecastSeries)
	FailForecast(city string, msg string)
	Forecast(city string) ForecastState

	ClearError(city string)
	// Cities lists every key with current-conditions state.
	Cities() []string
}

package providers

import (
	"fmt"

	"github.com/i474232898/weather-dashboard/internal/weather"
)

const (
	OpenWeather = "openweather"
	WeatherAPI  = "weatherapi"
)

// New returns the gateway registered under kind.
func New(kind string, httpCfg HTTPClientConfig, openWeatherKey, weatherAPIKey string) (weather.Gateway, error) {
	switch kind {
	case OpenWeather, "":
		return NewOpenWeatherGateway(httpCfg, openWeatherKey), nil
	case WeatherAPI:
		return NewWeatherAPIGateway(httpCfg, weatherAPIKey), nil
	default:
		return nil, fmt.Errorf("unknown weather provider %q", kind)
	}
}

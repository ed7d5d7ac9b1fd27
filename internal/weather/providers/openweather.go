package providers

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/sony/gobreaker"

	"github.com/i474232898/weather-dashboard/internal/weather"
)

// OpenWeatherGateway implements weather.Gateway for OpenWeatherMap.
type OpenWeatherGateway struct {
	name    string
	apiKey  string
	baseURL string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
}

func NewOpenWeatherGateway(httpCfg HTTPClientConfig, apiKey string) *OpenWeatherGateway {
	return &OpenWeatherGateway{
		name:    "openweathermap",
		apiKey:  apiKey,
		baseURL: "https://api.openweathermap.org",
		httpCfg: httpCfg,
		circuit: newBreaker("openweather"),
	}
}

func (p *OpenWeatherGateway) Name() string {
	return p.name
}

func (p *OpenWeatherGateway) get(ctx context.Context, path string, values url.Values) (*http.Response, error) {
	if p.apiKey == "" {
		return nil, &weather.UpstreamError{Provider: p.name, Err: fmt.Errorf("openweather api key is not configured")}
	}
	values.Set("appid", p.apiKey)

	buildRequest := func() (*http.Request, error) {
		u := fmt.Sprintf("%s%s?%s", p.baseURL, path, values.Encode())
		return http.NewRequest(http.MethodGet, u, nil)
	}
	return doRequestWithResilience(ctx, p.name, p.httpCfg, p.circuit, buildRequest)
}

type owmMain struct {
	Temp      float64 `json:"temp"`
	FeelsLike float64 `json:"feels_like"`
	TempMin   float64 `json:"temp_min"`
	TempMax   float64 `json:"temp_max"`
	Humidity  float64 `json:"humidity"`
	Pressure  float64 `json:"pressure"`
}

type owmWind struct {
	Speed float64 `json:"speed"`
	Deg   float64 `json:"deg"`
}

type owmCondition struct {
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

func (p *OpenWeatherGateway) FetchCurrent(ctx context.Context, city string) (weather.WeatherSnapshot, error) {
	values := url.Values{}
	values.Set("q", city)
	values.Set("units", "metric")

	resp, err := p.get(ctx, "/data/2.5/weather", values)
	if err != nil {
		return weather.WeatherSnapshot{}, err
	}
	defer resp.Body.Close()

	var payload struct {
		ID   *int64   `json:"id"`
		Name string   `json:"name"`
		Main *owmMain `json:"main"`
		Wind *owmWind `json:"wind"`
		Sys  *struct {
			Country string `json:"country"`
		} `json:"sys"`
		Clouds *struct {
			All float64 `json:"all"`
		} `json:"clouds"`
		Weather    []owmCondition `json:"weather"`
		Visibility float64        `json:"visibility"`
		Dt         int64          `json:"dt"`
		Timezone   int            `json:"timezone"`
	}

	if err := decodeJSON(p.name, resp.Body, &payload); err != nil {
		return weather.WeatherSnapshot{}, err
	}

	switch {
	case payload.ID == nil:
		return weather.WeatherSnapshot{}, missing(p.name, "id")
	case payload.Main == nil:
		return weather.WeatherSnapshot{}, missing(p.name, "main")
	case payload.Wind == nil:
		return weather.WeatherSnapshot{}, missing(p.name, "wind")
	case payload.Sys == nil:
		return weather.WeatherSnapshot{}, missing(p.name, "sys")
	case payload.Clouds == nil:
		return weather.WeatherSnapshot{}, missing(p.name, "clouds")
	case len(payload.Weather) == 0:
		return weather.WeatherSnapshot{}, missing(p.name, "weather[0]")
	}

	return weather.WeatherSnapshot{
		ID:             *payload.ID,
		Name:           payload.Name,
		Country:        payload.Sys.Country,
		Temperature:    payload.Main.Temp,
		FeelsLike:      payload.Main.FeelsLike,
		TempMin:        payload.Main.TempMin,
		TempMax:        payload.Main.TempMax,
		Humidity:       payload.Main.Humidity,
		Pressure:       payload.Main.Pressure,
		WindSpeed:      payload.Wind.Speed,
		WindDeg:        payload.Wind.Deg,
		Description:    payload.Weather[0].Description,
		Icon:           payload.Weather[0].Icon,
		Clouds:         payload.Clouds.All,
		Visibility:     payload.Visibility,
		ObservedAt:     payload.Dt,
		TimezoneOffset: payload.Timezone,
	}, nil
}

func (p *OpenWeatherGateway) FetchForecast(ctx context.Context, city string) (weather.ForecastSeries, error) {
	values := url.Values{}
	values.Set("q", city)
	values.Set("units", "metric")

	resp, err := p.get(ctx, "/data/2.5/forecast", values)
	if err != nil {
		return weather.ForecastSeries{}, err
	}
	defer resp.Body.Close()

	var payload struct {
		List []struct {
			Dt      int64          `json:"dt"`
			Main    *owmMain       `json:"main"`
			Wind    *owmWind       `json:"wind"`
			Weather []owmCondition `json:"weather"`
			Pop     float64        `json:"pop"`
		} `json:"list"`
	}

	if err := decodeJSON(p.name, resp.Body, &payload); err != nil {
		return weather.ForecastSeries{}, err
	}
	if payload.List == nil {
		return weather.ForecastSeries{}, missing(p.name, "list")
	}

	points := make([]weather.ForecastPoint, 0, len(payload.List))
	for i, item := range payload.List {
		switch {
		case item.Main == nil:
			return weather.ForecastSeries{}, missing(p.name, "list["+strconv.Itoa(i)+"].main")
		case item.Wind == nil:
			return weather.ForecastSeries{}, missing(p.name, "list["+strconv.Itoa(i)+"].wind")
		case len(item.Weather) == 0:
			return weather.ForecastSeries{}, missing(p.name, "list["+strconv.Itoa(i)+"].weather[0]")
		}

		points = append(points, weather.ForecastPoint{
			Time:              item.Dt,
			Temperature:       item.Main.Temp,
			TempMin:           item.Main.TempMin,
			TempMax:           item.Main.TempMax,
			FeelsLike:         item.Main.FeelsLike,
			Humidity:          item.Main.Humidity,
			Pressure:          item.Main.Pressure,
			WindSpeed:         item.Wind.Speed,
			Description:       item.Weather[0].Description,
			Icon:              item.Weather[0].Icon,
			PrecipProbability: item.Pop,
		})
	}

	return weather.ForecastSeries{City: city, Points: points}, nil
}

func (p *OpenWeatherGateway) GeocodeSuggestions(ctx context.Context, query string, limit int) ([]weather.Place, error) {
	values := url.Values{}
	values.Set("q", query)
	values.Set("limit", strconv.Itoa(limit))

	resp, err := p.get(ctx, "/geo/1.0/direct", values)
	if err != nil {
		if cancelled(ctx, err) {
			return nil, nil
		}
		return nil, err
	}
	defer resp.Body.Close()

	var payload []struct {
		Name    string  `json:"name"`
		State   string  `json:"state"`
		Country string  `json:"country"`
		Lat     float64 `json:"lat"`
		Lon     float64 `json:"lon"`
	}

	if err := decodeJSON(p.name, resp.Body, &payload); err != nil {
		if cancelled(ctx, err) {
			return nil, nil
		}
		return nil, err
	}

	places := make([]weather.Place, 0, len(payload))
	for _, item := range payload {
		places = append(places, weather.Place{
			Name:    item.Name,
			Region:  item.State,
			Country: item.Country,
			Lat:     item.Lat,
			Lon:     item.Lon,
		})
	}
	return places, nil
}

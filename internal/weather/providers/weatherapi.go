package providers

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/sony/gobreaker"

	"github.com/i474232898/weather-dashboard/internal/weather"
)

// forecastDays is the longest horizon the WeatherAPI free tier serves.
const forecastDays = 3

// WeatherAPIGateway implements weather.Gateway for WeatherAPI.com.
type WeatherAPIGateway struct {
	name    string
	apiKey  string
	baseURL string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
}

func NewWeatherAPIGateway(httpCfg HTTPClientConfig, apiKey string) *WeatherAPIGateway {
	return &WeatherAPIGateway{
		name:    "weatherapi",
		apiKey:  apiKey,
		baseURL: "https://api.weatherapi.com/v1",
		httpCfg: httpCfg,
		circuit: newBreaker("weatherapi"),
	}
}

func (p *WeatherAPIGateway) Name() string {
	return p.name
}

func (p *WeatherAPIGateway) get(ctx context.Context, path string, values url.Values) (*http.Response, error) {
	if p.apiKey == "" {
		return nil, &weather.UpstreamError{Provider: p.name, Err: fmt.Errorf("weatherapi api key is not configured")}
	}
	values.Set("key", p.apiKey)

	buildRequest := func() (*http.Request, error) {
		u := fmt.Sprintf("%s%s?%s", p.baseURL, path, values.Encode())
		return http.NewRequest(http.MethodGet, u, nil)
	}
	return doRequestWithResilience(ctx, p.name, p.httpCfg, p.circuit, buildRequest)
}

type wapiCondition struct {
	Text string `json:"text"`
	Icon string `json:"icon"`
}

type wapiHour struct {
	TimeEpoch    int64          `json:"time_epoch"`
	TempC        float64        `json:"temp_c"`
	FeelsLikeC   float64        `json:"feelslike_c"`
	Humidity     float64        `json:"humidity"`
	PressureMb   float64        `json:"pressure_mb"`
	WindKph      float64        `json:"wind_kph"`
	Condition    *wapiCondition `json:"condition"`
	ChanceOfRain float64        `json:"chance_of_rain"`
}

type wapiForecast struct {
	Location *struct {
		Name           string `json:"name"`
		Country        string `json:"country"`
		TzID           string `json:"tz_id"`
		LocaltimeEpoch int64  `json:"localtime_epoch"`
	} `json:"location"`
	Current *struct {
		LastUpdatedEpoch int64          `json:"last_updated_epoch"`
		TempC            float64        `json:"temp_c"`
		FeelsLikeC       float64        `json:"feelslike_c"`
		Humidity         float64        `json:"humidity"`
		PressureMb       float64        `json:"pressure_mb"`
		WindKph          float64        `json:"wind_kph"`
		WindDegree       float64        `json:"wind_degree"`
		Cloud            float64        `json:"cloud"`
		VisKm            float64        `json:"vis_km"`
		Condition        *wapiCondition `json:"condition"`
	} `json:"current"`
	Forecast *struct {
		ForecastDay []struct {
			Day struct {
				MinTempC float64 `json:"mintemp_c"`
				MaxTempC float64 `json:"maxtemp_c"`
			} `json:"day"`
			Hour []wapiHour `json:"hour"`
		} `json:"forecastday"`
	} `json:"forecast"`
}

func (p *WeatherAPIGateway) fetchForecastPayload(ctx context.Context, city string, days int) (wapiForecast, error) {
	values := url.Values{}
	values.Set("q", city)
	values.Set("days", strconv.Itoa(days))

	var payload wapiForecast
	resp, err := p.get(ctx, "/forecast.json", values)
	if err != nil {
		return payload, err
	}
	defer resp.Body.Close()

	if err := decodeJSON(p.name, resp.Body, &payload); err != nil {
		return payload, err
	}
	return payload, nil
}

// FetchCurrent uses the one-day forecast endpoint so the snapshot carries
// the day's min/max alongside current conditions.
func (p *WeatherAPIGateway) FetchCurrent(ctx context.Context, city string) (weather.WeatherSnapshot, error) {
	payload, err := p.fetchForecastPayload(ctx, city, 1)
	if err != nil {
		return weather.WeatherSnapshot{}, err
	}

	switch {
	case payload.Location == nil:
		return weather.WeatherSnapshot{}, missing(p.name, "location")
	case payload.Current == nil:
		return weather.WeatherSnapshot{}, missing(p.name, "current")
	case payload.Current.Condition == nil:
		return weather.WeatherSnapshot{}, missing(p.name, "current.condition")
	}

	cur := payload.Current
	// WeatherAPI locations carry no numeric id, so ID is left at zero; the
	// city key is the only identifier for these snapshots.
	snapshot := weather.WeatherSnapshot{
		Name:           payload.Location.Name,
		Country:        payload.Location.Country,
		Temperature:    cur.TempC,
		FeelsLike:      cur.FeelsLikeC,
		TempMin:        cur.TempC,
		TempMax:        cur.TempC,
		Humidity:       cur.Humidity,
		Pressure:       cur.PressureMb,
		WindSpeed:      kphToMS(cur.WindKph),
		WindDeg:        cur.WindDegree,
		Description:    cur.Condition.Text,
		Icon:           cur.Condition.Icon,
		Clouds:         cur.Cloud,
		Visibility:     cur.VisKm * 1000,
		ObservedAt:     cur.LastUpdatedEpoch,
		TimezoneOffset: zoneOffset(payload.Location.TzID, time.Unix(cur.LastUpdatedEpoch, 0)),
	}
	if snapshot.ObservedAt == 0 {
		snapshot.ObservedAt = payload.Location.LocaltimeEpoch
	}
	if payload.Forecast != nil && len(payload.Forecast.ForecastDay) > 0 {
		day := payload.Forecast.ForecastDay[0].Day
		snapshot.TempMin = day.MinTempC
		snapshot.TempMax = day.MaxTempC
	}
	return snapshot, nil
}

// FetchForecast flattens the hourly entries of each forecast day, in order.
func (p *WeatherAPIGateway) FetchForecast(ctx context.Context, city string) (weather.ForecastSeries, error) {
	payload, err := p.fetchForecastPayload(ctx, city, forecastDays)
	if err != nil {
		return weather.ForecastSeries{}, err
	}
	if payload.Forecast == nil {
		return weather.ForecastSeries{}, missing(p.name, "forecast")
	}

	var points []weather.ForecastPoint
	for d, day := range payload.Forecast.ForecastDay {
		for h, hour := range day.Hour {
			if hour.Condition == nil {
				return weather.ForecastSeries{}, missing(p.name, fmt.Sprintf("forecastday[%d].hour[%d].condition", d, h))
			}
			points = append(points, weather.ForecastPoint{
				Time:              hour.TimeEpoch,
				Temperature:       hour.TempC,
				TempMin:           hour.TempC,
				TempMax:           hour.TempC,
				FeelsLike:         hour.FeelsLikeC,
				Humidity:          hour.Humidity,
				Pressure:          hour.PressureMb,
				WindSpeed:         kphToMS(hour.WindKph),
				Description:       hour.Condition.Text,
				Icon:              hour.Condition.Icon,
				PrecipProbability: hour.ChanceOfRain / 100,
			})
		}
	}

	return weather.ForecastSeries{City: city, Points: points}, nil
}

func (p *WeatherAPIGateway) GeocodeSuggestions(ctx context.Context, query string, limit int) ([]weather.Place, error) {
	values := url.Values{}
	values.Set("q", query)

	resp, err := p.get(ctx, "/search.json", values)
	if err != nil {
		if cancelled(ctx, err) {
			return nil, nil
		}
		return nil, err
	}
	defer resp.Body.Close()

	var payload []struct {
		Name    string  `json:"name"`
		Region  string  `json:"region"`
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

	if limit > 0 && len(payload) > limit {
		payload = payload[:limit]
	}
	places := make([]weather.Place, 0, len(payload))
	for _, item := range payload {
		places = append(places, weather.Place{
			Name:    item.Name,
			Region:  item.Region,
			Country: item.Country,
			Lat:     item.Lat,
			Lon:     item.Lon,
		})
	}
	return places, nil
}

// Convert wind from kph to m/s.
func kphToMS(kph float64) float64 {
	return kph / 3.6
}

// zoneOffset resolves an IANA zone name to its UTC offset at t; unknown
// zones fall back to UTC.
func zoneOffset(tzID string, t time.Time) int {
	if tzID == "" {
		return 0
	}
	loc, err := time.LoadLocation(tzID)
	if err != nil {
		return 0
	}
	_, offset := t.In(loc).Zone()
	return offset
}

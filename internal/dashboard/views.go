package dashboard

import (
	"math"
	"time"

	"github.com/i474232898/weather-dashboard/internal/units"
	"github.com/i474232898/weather-dashboard/internal/weather"
)

const (
	hourlyPoints    = 12
	chartStride     = 4
	chartPoints     = 14
	dailySummaries  = 7
	metresPerKm     = 1000.0
	percentPerRatio = 100.0
)

// Card summarises one favorite. A card with Loading set and no Weather is a
// placeholder for a first fetch still in flight.
type Card struct {
	City     string       `json:"city"`
	Loading  bool         `json:"loading"`
	Favorite bool         `json:"favorite"`
	Error    string       `json:"error,omitempty"`
	Weather  *CardWeather `json:"weather,omitempty"`
}

type CardWeather struct {
	Name         string          `json:"name"`
	Country      string          `json:"country"`
	Temperature  string          `json:"temperature"`
	Description  string          `json:"description"`
	Condition    units.Condition `json:"condition"`
	IconURL      string          `json:"iconUrl"`
	Humidity     float64         `json:"humidity"`
	WindSpeed    float64         `json:"windSpeed"`
	VisibilityKm float64         `json:"visibilityKm"`
	Clouds       float64         `json:"clouds"`
}

// Detail is the expanded view of one city.
type Detail struct {
	City          string        `json:"city"`
	Current       CurrentDetail `json:"current"`
	Unit          units.Unit    `json:"unit"`
	ForecastState string        `json:"forecastState"`
	ForecastError string        `json:"forecastError,omitempty"`
	Hourly        []HourlyPoint `json:"hourly,omitempty"`
	Chart         *Chart        `json:"chart,omitempty"`
	Daily         []DailyRow    `json:"daily,omitempty"`
}

type CurrentDetail struct {
	Name          string          `json:"name"`
	Country       string          `json:"country"`
	Temperature   string          `json:"temperature"`
	FeelsLike     string          `json:"feelsLike"`
	TempMin       string          `json:"tempMin"`
	TempMax       string          `json:"tempMax"`
	Description   string          `json:"description"`
	Condition     units.Condition `json:"condition"`
	IconURL       string          `json:"iconUrl"`
	Humidity      float64         `json:"humidity"`
	Pressure      float64         `json:"pressure"`
	WindSpeed     float64         `json:"windSpeed"`
	WindDirection string          `json:"windDirection"`
	VisibilityKm  float64         `json:"visibilityKm"`
	Clouds        float64         `json:"clouds"`
	ObservedDate  string          `json:"observedDate"`
	ObservedTime  string          `json:"observedTime"`
	Loading       bool            `json:"loading"`
	Error         string          `json:"error,omitempty"`
}

type HourlyPoint struct {
	Time            string `json:"time"`
	Temperature     string `json:"temperature"`
	IconURL         string `json:"iconUrl"`
	Description     string `json:"description"`
	PrecipitationPc int    `json:"precipitationPct"`
}

// Chart carries raw converted values for plotting.
type Chart struct {
	Symbol string       `json:"symbol"`
	Points []ChartPoint `json:"points"`
}

type ChartPoint struct {
	Label       string  `json:"label"`
	Temperature float64 `json:"temperature"`
	FeelsLike   float64 `json:"feelsLike"`
}

type DailyRow struct {
	Date        string  `json:"date"`
	High        string  `json:"high"`
	Low         string  `json:"low"`
	Description string  `json:"description"`
	IconURL     string  `json:"iconUrl"`
	Humidity    float64 `json:"humidity"`
	WindSpeed   float64 `json:"windSpeed"`
}

func buildCard(city string, state weather.CurrentState, favorite bool, unit units.Unit) (Card, bool) {
	card := Card{City: city, Loading: state.Loading, Favorite: favorite, Error: state.Err}
	if state.Snapshot == nil {
		// A failed first fetch renders nothing.
		return card, state.Loading
	}
	s := state.Snapshot
	card.Weather = &CardWeather{
		Name:         s.Name,
		Country:      s.Country,
		Temperature:  units.FormatTemperature(s.Temperature, unit),
		Description:  s.Description,
		Condition:    units.ClassifyCondition(s.Description),
		IconURL:      units.IconURL(s.Icon),
		Humidity:     s.Humidity,
		WindSpeed:    s.WindSpeed,
		VisibilityKm: visibilityKm(s.Visibility),
		Clouds:       s.Clouds,
	}
	return card, true
}

func buildDetail(city string, cur weather.CurrentState, fc weather.ForecastState, unit units.Unit) *Detail {
	if cur.Snapshot == nil {
		return nil
	}
	s := cur.Snapshot
	loc := units.Zone(s.TimezoneOffset)

	d := &Detail{
		City: city,
		Unit: unit,
		Current: CurrentDetail{
			Name:          s.Name,
			Country:       s.Country,
			Temperature:   units.FormatTemperature(s.Temperature, unit),
			FeelsLike:     units.FormatTemperature(s.FeelsLike, unit),
			TempMin:       units.FormatTemperature(s.TempMin, unit),
			TempMax:       units.FormatTemperature(s.TempMax, unit),
			Description:   s.Description,
			Condition:     units.ClassifyCondition(s.Description),
			IconURL:       units.IconURL(s.Icon),
			Humidity:      s.Humidity,
			Pressure:      s.Pressure,
			WindSpeed:     s.WindSpeed,
			WindDirection: units.CompassDirection(s.WindDeg),
			VisibilityKm:  visibilityKm(s.Visibility),
			Clouds:        s.Clouds,
			ObservedDate:  units.FormatDate(s.ObservedAt, loc),
			ObservedTime:  units.FormatTime(s.ObservedAt, loc),
			Loading:       cur.Loading,
			Error:         cur.Err,
		},
		ForecastError: fc.Err,
	}

	switch {
	case fc.Loading:
		d.ForecastState = "loading"
	case fc.Series != nil:
		d.ForecastState = "ready"
	case fc.Err != "":
		d.ForecastState = "error"
	default:
		d.ForecastState = "absent"
	}

	if fc.Series != nil {
		points := fc.Series.Points
		d.Hourly = hourly(points, loc, unit)
		d.Chart = chart(points, loc, unit)
		d.Daily = daily(points, loc, unit)
	}
	return d
}

func hourly(points []weather.ForecastPoint, loc *time.Location, unit units.Unit) []HourlyPoint {
	n := min(len(points), hourlyPoints)
	out := make([]HourlyPoint, 0, n)
	for _, p := range points[:n] {
		out = append(out, HourlyPoint{
			Time:            units.FormatTime(p.Time, loc),
			Temperature:     units.FormatTemperature(p.Temperature, unit),
			IconURL:         units.IconURL(p.Icon),
			Description:     p.Description,
			PrecipitationPc: int(math.Floor(p.PrecipProbability*percentPerRatio + 0.5)),
		})
	}
	return out
}

func chart(points []weather.ForecastPoint, loc *time.Location, unit units.Unit) *Chart {
	c := &Chart{Symbol: unit.Symbol(), Points: make([]ChartPoint, 0, chartPoints)}
	for i := 0; i < len(points) && len(c.Points) < chartPoints; i += chartStride {
		p := points[i]
		c.Points = append(c.Points, ChartPoint{
			Label:       units.FormatDate(p.Time, loc),
			Temperature: units.Convert(p.Temperature, unit),
			FeelsLike:   units.Convert(p.FeelsLike, unit),
		})
	}
	return c
}

func daily(points []weather.ForecastPoint, loc *time.Location, unit units.Unit) []DailyRow {
	days := weather.AggregateDaily(points, loc, dailySummaries)
	out := make([]DailyRow, 0, len(days))
	for _, day := range days {
		out = append(out, DailyRow{
			Date:        day.Date.Format("Mon, Jan 2"),
			High:        units.FormatTemperature(day.TempMax, unit),
			Low:         units.FormatTemperature(day.TempMin, unit),
			Description: day.Description,
			IconURL:     units.IconURL(day.Icon),
			Humidity:    day.Humidity,
			WindSpeed:   day.WindSpeed,
		})
	}
	return out
}

func visibilityKm(metres float64) float64 {
	return math.Round(metres/metresPerKm*10) / 10
}

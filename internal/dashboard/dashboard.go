// Package dashboard turns the cache, favorites and settings into the views a
// client renders, and carries out user commands against them.
package dashboard

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"

	"github.com/i474232898/weather-dashboard/internal/favorites"
	"github.com/i474232898/weather-dashboard/internal/settings"
	"github.com/i474232898/weather-dashboard/internal/units"
	"github.com/i474232898/weather-dashboard/internal/weather"
)

var ErrBlankCity = errors.New("city name must not be blank")

// Tracker owns the periodic refresh of displayed cities.
type Tracker interface {
	Track(city string) error
	Untrack(city string)
	Sync(cities []string) error
}

type Dashboard struct {
	weather   *weather.Service
	favorites *favorites.Store
	settings  *settings.Store
	tracker   Tracker
	logger    *slog.Logger

	mu       sync.RWMutex
	selected string
}

func New(svc *weather.Service, favs *favorites.Store, prefs *settings.Store, tracker Tracker, logger *slog.Logger) *Dashboard {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dashboard{
		weather:   svc,
		favorites: favs,
		settings:  prefs,
		tracker:   tracker,
		logger:    logger,
	}
}

// Start begins refreshing every favorite.
func (d *Dashboard) Start() error {
	return d.tracker.Sync(d.favorites.Cities())
}

// Cards returns the favorites in display order. Cities without a snapshot
// appear only while their first fetch is in flight.
func (d *Dashboard) Cards() []Card {
	unit := d.settings.Unit()
	cards := make([]Card, 0)
	for _, city := range d.favorites.Cities() {
		if card, ok := buildCard(city, d.weather.Current(city), true, unit); ok {
			cards = append(cards, card)
		}
	}
	return cards
}

// Detail returns the expanded view of city, or nil when it has no snapshot.
func (d *Dashboard) Detail(city string) *Detail {
	return buildDetail(city, d.weather.Current(city), d.weather.Forecast(city), d.settings.Unit())
}

// AddCity adds city to the favorites and starts refreshing it. It reports
// whether the city was new.
func (d *Dashboard) AddCity(ctx context.Context, city string) (bool, error) {
	city = strings.TrimSpace(city)
	if city == "" {
		return false, ErrBlankCity
	}
	added, err := d.favorites.Add(ctx, city)
	if err != nil {
		return added, err
	}
	if err := d.tracker.Track(city); err != nil {
		return added, err
	}
	if added {
		d.logger.Info("city added", "city", city)
	}
	return added, nil
}

// RemoveCity drops city from the favorites and stops refreshing it. Cached
// weather for the city is kept.
func (d *Dashboard) RemoveCity(ctx context.Context, city string) error {
	if err := d.favorites.Remove(ctx, city); err != nil {
		return err
	}
	d.tracker.Untrack(city)
	d.logger.Info("city removed", "city", city)
	return nil
}

// ToggleFavorite adds or removes city and returns whether it is now a favorite.
func (d *Dashboard) ToggleFavorite(ctx context.Context, city string) (bool, error) {
	if d.favorites.Contains(city) {
		return false, d.RemoveCity(ctx, city)
	}
	_, err := d.AddCity(ctx, city)
	return err == nil, err
}

func (d *Dashboard) Reorder(ctx context.Context, order []string) error {
	return d.favorites.Reorder(ctx, order)
}

// SelectCity opens the detail view of city and fetches its forecast.
func (d *Dashboard) SelectCity(ctx context.Context, city string) (*Detail, weather.FetchResult[weather.ForecastSeries]) {
	d.mu.Lock()
	d.selected = city
	d.mu.Unlock()

	res := d.weather.FetchForecast(ctx, city)
	return d.Detail(city), res
}

func (d *Dashboard) CloseDetail() {
	d.mu.Lock()
	d.selected = ""
	d.mu.Unlock()
}

// Selected returns the city whose detail view is open, if any.
func (d *Dashboard) Selected() (string, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.selected, d.selected != ""
}

func (d *Dashboard) Unit() units.Unit {
	return d.settings.Unit()
}

func (d *Dashboard) SetUnit(ctx context.Context, u units.Unit) error {
	return d.settings.SetUnit(ctx, u)
}

// DismissError clears the refresh error shown on the card of city.
func (d *Dashboard) DismissError(city string) {
	d.weather.ClearError(city)
}

// Cached lists every city with cached conditions, favorite or not.
func (d *Dashboard) Cached() []string {
	return d.weather.Cached()
}

// Refresh re-fetches current conditions for city, subject to the staleness gate.
func (d *Dashboard) Refresh(ctx context.Context, city string) weather.FetchResult[weather.WeatherSnapshot] {
	return d.weather.FetchCurrent(ctx, city)
}

// RefreshAll refreshes every favorite in order, one at a time.
func (d *Dashboard) RefreshAll(ctx context.Context) []weather.FetchResult[weather.WeatherSnapshot] {
	cities := d.favorites.Cities()
	if len(cities) == 0 {
		return nil
	}
	return d.weather.RefreshAll(ctx, cities)
}

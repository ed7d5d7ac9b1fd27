package weather

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"
)

// StalenessThreshold is how long a successful current-conditions fetch
// suppresses further fetches for the same city key.
const StalenessThreshold = 60 * time.Second

// Service gates gateway calls behind the staleness policy and records every
// outcome in the store. Errors are folded into per-key state and returned as
// FetchResult values; nothing panics past this boundary.
type Service struct {
	store   Store
	gateway Gateway
	logger  *slog.Logger
	now     func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithClock replaces the wall clock used by the staleness gate.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// NewService creates a new Service.
func NewService(store Store, gateway Gateway, logger *slog.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Service{
		store:   store,
		gateway: gateway,
		logger:  logger,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// FetchCurrent fetches current conditions for city unless the last
// successful fetch is younger than StalenessThreshold, in which case it
// returns Skipped without touching any state.
func (s *Service) FetchCurrent(ctx context.Context, city string) FetchResult[WeatherSnapshot] {
	if last := s.store.Current(city).LastUpdated; !last.IsZero() && s.now().Sub(last) < StalenessThreshold {
		s.logger.Debug("current conditions are fresh; skipping fetch", "city", city, "age", s.now().Sub(last).Round(time.Second))
		return FetchResult[WeatherSnapshot]{Outcome: Skipped}
	}

	if s.gateway == nil {
		err := fmt.Errorf("no weather gateway configured")
		s.store.BeginCurrent(city)
		s.store.FailCurrent(city, err.Error())
		return FetchResult[WeatherSnapshot]{Outcome: Failed, Err: err}
	}

	s.store.BeginCurrent(city)
	snapshot, err := s.gateway.FetchCurrent(ctx, city)
	if err != nil {
		s.logger.Warn("current conditions fetch failed", "city", city, "provider", s.gateway.Name(), "err", err)
		s.store.FailCurrent(city, failureMessage(err, "Failed to fetch weather data"))
		return FetchResult[WeatherSnapshot]{Outcome: Failed, Err: err}
	}

	s.store.CompleteCurrent(city, snapshot, s.now())
	return FetchResult[WeatherSnapshot]{Outcome: Succeeded, Value: snapshot}
}

// FetchForecast always calls the gateway; forecasts carry no staleness gate.
func (s *Service) FetchForecast(ctx context.Context, city string) FetchResult[ForecastSeries] {
	if s.gateway == nil {
		err := fmt.Errorf("no weather gateway configured")
		s.store.BeginForecast(city)
		s.store.FailForecast(city, err.Error())
		return FetchResult[ForecastSeries]{Outcome: Failed, Err: err}
	}

	s.store.BeginForecast(city)
	series, err := s.gateway.FetchForecast(ctx, city)
	if err != nil {
		s.logger.Warn("forecast fetch failed", "city", city, "provider", s.gateway.Name(), "err", err)
		s.store.FailForecast(city, failureMessage(err, "Failed to fetch forecast"))
		return FetchResult[ForecastSeries]{Outcome: Failed, Err: err}
	}

	s.store.CompleteForecast(city, series)
	return FetchResult[ForecastSeries]{Outcome: Succeeded, Value: series}
}

// RefreshAll fetches current conditions for each city in turn.
func (s *Service) RefreshAll(ctx context.Context, cities []string) []FetchResult[WeatherSnapshot] {
	results := make([]FetchResult[WeatherSnapshot], 0, len(cities))
	for _, city := range cities {
		if ctx.Err() != nil {
			break
		}
		results = append(results, s.FetchCurrent(ctx, city))
	}
	return results
}

// Suggest looks up geocoding candidates for a partial city name.
func (s *Service) Suggest(ctx context.Context, query string, limit int) ([]Place, error) {
	if s.gateway == nil {
		return nil, fmt.Errorf("no weather gateway configured")
	}
	return s.gateway.GeocodeSuggestions(ctx, query, limit)
}

// Current delegates to the underlying store.
func (s *Service) Current(city string) CurrentState {
	return s.store.Current(city)
}

// Forecast delegates to the underlying store.
func (s *Service) Forecast(city string) ForecastState {
	return s.store.Forecast(city)
}

// ClearError drops the recorded current-conditions error for city.
func (s *Service) ClearError(city string) {
	s.store.ClearError(city)
}

// Cached lists the city keys with current-conditions state, sorted.
func (s *Service) Cached() []string {
	cities := s.store.Cities()
	slices.Sort(cities)
	return cities
}

func failureMessage(err error, fallback string) string {
	if msg := err.Error(); msg != "" {
		return msg
	}
	return fallback
}

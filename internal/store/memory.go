package store

import (
	"sync"
	"time"

	"github.com/i474232898/weather-dashboard/internal/weather"
)

// currentEntry is the current-conditions slot for one city key.
type currentEntry struct {
	snapshot    *weather.WeatherSnapshot
	inFlight    int
	err         string
	lastUpdated time.Time
}

// forecastEntry is the forecast slot for one city key.
type forecastEntry struct {
	series   *weather.ForecastSeries
	inFlight int
	err      string
}

// MemoryStore is a concurrency-safe in-memory implementation of weather.Store.
// Keys are used exactly as given; "Paris" and "paris" are different entries.
type MemoryStore struct {
	mu sync.RWMutex

	current   map[string]*currentEntry
	forecasts map[string]*forecastEntry
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		current:   make(map[string]*currentEntry),
		forecasts: make(map[string]*forecastEntry),
	}
}

func (s *MemoryStore) currentFor(city string) *currentEntry {
	e, ok := s.current[city]
	if !ok {
		e = &currentEntry{}
		s.current[city] = e
	}
	return e
}

func (s *MemoryStore) forecastFor(city string) *forecastEntry {
	e, ok := s.forecasts[city]
	if !ok {
		e = &forecastEntry{}
		s.forecasts[city] = e
	}
	return e
}

// BeginCurrent marks a request in flight and clears the previous error.
func (s *MemoryStore) BeginCurrent(city string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := s.currentFor(city)
	e.inFlight++
	e.err = ""
}

// CompleteCurrent replaces the snapshot and stamps the staleness record.
func (s *MemoryStore) CompleteCurrent(city string, snapshot weather.WeatherSnapshot, at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := s.currentFor(city)
	e.settle()
	e.snapshot = &snapshot
	e.lastUpdated = at
}

// FailCurrent records msg and keeps whatever snapshot was already cached.
func (s *MemoryStore) FailCurrent(city string, msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := s.currentFor(city)
	e.settle()
	e.err = msg
}

// Current returns a copy of the current-conditions state for city.
func (s *MemoryStore) Current(city string) weather.CurrentState {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.current[city]
	if !ok {
		return weather.CurrentState{}
	}
	state := weather.CurrentState{
		Loading:     e.inFlight > 0,
		Err:         e.err,
		LastUpdated: e.lastUpdated,
	}
	if e.snapshot != nil {
		snap := *e.snapshot
		state.Snapshot = &snap
	}
	return state
}

// BeginForecast marks a forecast request in flight.
func (s *MemoryStore) BeginForecast(city string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := s.forecastFor(city)
	e.inFlight++
	e.err = ""
}

// CompleteForecast replaces the cached series for city.
func (s *MemoryStore) CompleteForecast(city string, series weather.ForecastSeries) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := s.forecastFor(city)
	if e.inFlight > 0 {
		e.inFlight--
	}
	e.series = &series
}

// FailForecast records msg and keeps the previous series.
func (s *MemoryStore) FailForecast(city string, msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := s.forecastFor(city)
	if e.inFlight > 0 {
		e.inFlight--
	}
	e.err = msg
}

// Forecast returns a copy of the forecast state for city.
func (s *MemoryStore) Forecast(city string) weather.ForecastState {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.forecasts[city]
	if !ok {
		return weather.ForecastState{}
	}
	state := weather.ForecastState{
		Loading: e.inFlight > 0,
		Err:     e.err,
	}
	if e.series != nil {
		series := weather.ForecastSeries{
			City:   e.series.City,
			Points: append([]weather.ForecastPoint(nil), e.series.Points...),
		}
		state.Series = &series
	}
	return state
}

// ClearError drops the current-conditions error for city, if any.
func (s *MemoryStore) ClearError(city string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e, ok := s.current[city]; ok {
		e.err = ""
	}
}

// Cities lists every key that has current-conditions state, favourite or not.
func (s *MemoryStore) Cities() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]string, 0, len(s.current))
	for city := range s.current {
		out = append(out, city)
	}
	return out
}

func (e *currentEntry) settle() {
	if e.inFlight > 0 {
		e.inFlight--
	}
}

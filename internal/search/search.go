// Package search implements debounced, superseding city lookups for
// search-as-you-type clients.
package search

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/i474232898/weather-dashboard/internal/common"
	"github.com/i474232898/weather-dashboard/internal/weather"
)

const (
	// DebounceDelay is how long a submission waits for a newer one before
	// reaching the gateway.
	DebounceDelay = 300 * time.Millisecond
	DefaultLimit  = 5
)

// PopularCities answers lookups when no gateway is configured.
var PopularCities = []string{
	"London", "New York", "Tokyo", "Paris", "Sydney",
	"Dubai", "Singapore", "Mumbai", "Toronto", "Berlin",
	"Madrid", "Rome", "Amsterdam", "Barcelona", "Seoul",
}

// Suggester resolves partial city names. *weather.Service satisfies it.
type Suggester interface {
	Suggest(ctx context.Context, query string, limit int) ([]weather.Place, error)
}

// Session holds the single in-flight lookup of one client. A new Submit
// cancels the previous one and discards its result.
type Session struct {
	suggester Suggester
	delay     time.Duration
	limit     int

	mu       sync.Mutex
	seq      uint64
	cancel   context.CancelFunc
	lastUsed time.Time
}

// NewSession creates a Session. A nil suggester serves PopularCities.
func NewSession(suggester Suggester, limit int) *Session {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &Session{
		suggester: suggester,
		delay:     DebounceDelay,
		limit:     limit,
		lastUsed:  time.Now(),
	}
}

// Submit supersedes any pending lookup, waits out the debounce delay and
// queries the suggester. It returns weather.ErrCancelled when a newer
// submission arrived in the meantime. An empty query yields no suggestions.
func (s *Session) Submit(ctx context.Context, query string) ([]weather.Place, error) {
	ctx, token := s.begin(ctx)
	defer s.end(token)

	query = strings.TrimSpace(query)
	if query == "" {
		return nil, nil
	}

	timer := time.NewTimer(s.delay)
	select {
	case <-ctx.Done():
		timer.Stop()
		return nil, weather.ErrCancelled
	case <-timer.C:
	}

	var (
		places []weather.Place
		err    error
	)
	if s.suggester == nil {
		places = Popular(query, s.limit)
	} else {
		places, err = s.suggester.Suggest(ctx, query, s.limit)
	}

	if !s.isLatest(token) || ctx.Err() != nil {
		return nil, weather.ErrCancelled
	}
	if err != nil {
		return nil, err
	}
	return places, nil
}

func (s *Session) begin(parent context.Context) (context.Context, uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
	}
	ctx, cancel := context.WithCancel(parent)
	s.seq++
	s.cancel = cancel
	s.lastUsed = time.Now()
	return ctx, s.seq
}

func (s *Session) end(token uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.seq == token && s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}

func (s *Session) isLatest(token uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.seq == token
}

// Close cancels the pending lookup, if any.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.seq++
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}

func (s *Session) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastUsed
}

// Popular returns up to limit entries of PopularCities containing query,
// ignoring case.
func Popular(query string, limit int) []weather.Place {
	var places []weather.Place
	for _, city := range PopularCities {
		if len(places) == limit {
			break
		}
		if common.HasAny(city, query) {
			places = append(places, weather.Place{Name: city})
		}
	}
	return places
}

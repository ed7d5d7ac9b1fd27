// Package favorites keeps the ordered list of city keys the user tracks.
package favorites

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/i474232898/weather-dashboard/internal/storage"
)

// StorageKey is where the list is persisted, as a JSON array of strings.
const StorageKey = "weather_favorites"

// DefaultCities seeds the list on first run.
var DefaultCities = []string{"London", "New York", "Tokyo", "Paris"}

// ErrNotPermutation is returned by Reorder when the new order does not contain
// exactly the current cities.
var ErrNotPermutation = errors.New("new order is not a permutation of the current favorites")

// Store is the favorites list. Every mutation is persisted before it returns.
type Store struct {
	mu     sync.RWMutex
	cities []string
	kv     storage.KV
	logger *slog.Logger
}

// Load restores the list from kv, falling back to DefaultCities when the key
// is absent or unreadable.
func Load(ctx context.Context, kv storage.KV, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Store{kv: kv, logger: logger}

	raw, ok, err := kv.Get(ctx, StorageKey)
	if err != nil {
		return nil, fmt.Errorf("load favorites: %w", err)
	}
	if !ok {
		s.cities = slices.Clone(DefaultCities)
		return s, nil
	}

	var cities []string
	if err := json.Unmarshal([]byte(raw), &cities); err != nil {
		logger.Warn("stored favorites are unreadable; using defaults", "err", err)
		s.cities = slices.Clone(DefaultCities)
		return s, nil
	}
	if cities == nil {
		cities = []string{}
	}
	s.cities = cities
	return s, nil
}

// Cities returns a copy of the list in display order.
func (s *Store) Cities() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.cities)
}

// Contains reports whether city is tracked (exact match).
func (s *Store) Contains(city string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Contains(s.cities, city)
}

// Add appends city unless it is already present. It reports whether the list changed.
func (s *Store) Add(ctx context.Context, city string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if slices.Contains(s.cities, city) {
		return false, nil
	}
	s.cities = append(s.cities, city)
	return true, s.persist(ctx)
}

// Remove drops every entry equal to city. Removing an absent city is not an error.
func (s *Store) Remove(ctx context.Context, city string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cities = slices.DeleteFunc(s.cities, func(c string) bool { return c == city })
	return s.persist(ctx)
}

// Reorder replaces the list with order, which must hold the same cities.
func (s *Store) Reorder(ctx context.Context, order []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !isPermutation(s.cities, order) {
		return ErrNotPermutation
	}
	s.cities = slices.Clone(order)
	return s.persist(ctx)
}

func (s *Store) persist(ctx context.Context) error {
	raw, err := json.Marshal(s.cities)
	if err != nil {
		return fmt.Errorf("encode favorites: %w", err)
	}
	if err := s.kv.Set(ctx, StorageKey, string(raw)); err != nil {
		s.logger.Error("failed to persist favorites", "err", err)
		return fmt.Errorf("persist favorites: %w", err)
	}
	return nil
}

func isPermutation(current, order []string) bool {
	if len(current) != len(order) {
		return false
	}
	seen := make(map[string]int, len(current))
	for _, c := range current {
		seen[c]++
	}
	for _, c := range order {
		if seen[c] == 0 {
			return false
		}
		seen[c]--
	}
	return true
}

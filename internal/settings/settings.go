// Package settings holds the user's display preferences.
package settings

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/i474232898/weather-dashboard/internal/storage"
	"github.com/i474232898/weather-dashboard/internal/units"
)

// StorageKey is where settings are persisted as a JSON object.
const StorageKey = "weather_settings"

type persisted struct {
	TemperatureUnit units.Unit `json:"temperatureUnit"`
}

// Store holds the temperature unit preference.
type Store struct {
	mu     sync.RWMutex
	unit   units.Unit
	kv     storage.KV
	logger *slog.Logger
}

// Load restores settings from kv; a missing or unreadable entry means celsius.
func Load(ctx context.Context, kv storage.KV, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Store{kv: kv, logger: logger, unit: units.Celsius}

	raw, ok, err := kv.Get(ctx, StorageKey)
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}
	if !ok {
		return s, nil
	}

	var p persisted
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		logger.Warn("stored settings are unreadable; using defaults", "err", err)
		return s, nil
	}
	s.unit = p.TemperatureUnit
	return s, nil
}

// Unit returns the current temperature unit.
func (s *Store) Unit() units.Unit {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.unit
}

// SetUnit replaces the preference and persists it.
func (s *Store) SetUnit(ctx context.Context, u units.Unit) error {
	if u != units.Celsius && u != units.Fahrenheit {
		return units.ErrInvalidUnit
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.unit = u
	raw, err := json.Marshal(persisted{TemperatureUnit: u})
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}
	if err := s.kv.Set(ctx, StorageKey, string(raw)); err != nil {
		s.logger.Error("failed to persist settings", "err", err)
		return fmt.Errorf("persist settings: %w", err)
	}
	return nil
}

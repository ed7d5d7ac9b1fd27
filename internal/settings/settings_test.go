package settings

import (
	"context"
	"errors"
	"testing"

	"github.com/i474232898/weather-dashboard/internal/storage"
	"github.com/i474232898/weather-dashboard/internal/units"
)

func TestDefaultIsCelsius(t *testing.T) {
	s, err := Load(context.Background(), storage.NewMemory(), nil)
	if err != nil {
		t.Fatal(err)
	}
	if s.Unit() != units.Celsius {
		t.Fatalf("unit = %v; want celsius", s.Unit())
	}
}

func TestSetUnitSurvivesReload(t *testing.T) {
	ctx := context.Background()
	kv := storage.NewMemory()

	s, _ := Load(ctx, kv, nil)
	if err := s.SetUnit(ctx, units.Fahrenheit); err != nil {
		t.Fatalf("SetUnit: %v", err)
	}

	raw, ok, _ := kv.Get(ctx, StorageKey)
	if !ok || raw != `{"temperatureUnit":"fahrenheit"}` {
		t.Fatalf("persisted = %q", raw)
	}

	reloaded, err := Load(ctx, kv, nil)
	if err != nil {
		t.Fatal(err)
	}
	if reloaded.Unit() != units.Fahrenheit {
		t.Fatalf("reloaded unit = %v; want fahrenheit", reloaded.Unit())
	}
}

func TestSetUnitRejectsUnknown(t *testing.T) {
	s, _ := Load(context.Background(), storage.NewMemory(), nil)
	if err := s.SetUnit(context.Background(), units.Unit(7)); !errors.Is(err, units.ErrInvalidUnit) {
		t.Fatalf("err = %v; want ErrInvalidUnit", err)
	}
	if s.Unit() != units.Celsius {
		t.Fatal("rejected unit changed the preference")
	}
}

func TestUnreadableSettingsFallBack(t *testing.T) {
	ctx := context.Background()
	kv := storage.NewMemory()
	kv.Set(ctx, StorageKey, `{"temperatureUnit":"kelvin"}`)

	s, err := Load(ctx, kv, nil)
	if err != nil {
		t.Fatal(err)
	}
	if s.Unit() != units.Celsius {
		t.Fatalf("unit = %v; want celsius fallback", s.Unit())
	}
}

package weather

import (
	"testing"
	"time"
)

func TestAggregateDaily(t *testing.T) {
	day1 := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	points := []ForecastPoint{
		{Time: day1.Add(3 * time.Hour).Unix(), TempMin: 5, TempMax: 8, Description: "light rain", Icon: "10d"},
		{Time: day1.Add(12 * time.Hour).Unix(), TempMin: 7, TempMax: 14, Description: "clear sky"},
		{Time: day1.Add(21 * time.Hour).Unix(), TempMin: 2, TempMax: 6},
		{Time: day1.Add(27 * time.Hour).Unix(), TempMin: 1, TempMax: 3, Description: "snow"},
		{Time: day1.Add(51 * time.Hour).Unix(), TempMin: 0, TempMax: 1},
	}

	days := AggregateDaily(points, time.UTC, 0)
	if len(days) != 3 {
		t.Fatalf("days = %d; want 3", len(days))
	}
	first := days[0]
	if first.TempMin != 2 || first.TempMax != 14 {
		t.Errorf("day 1 min/max = %v/%v; want 2/14", first.TempMin, first.TempMax)
	}
	if first.Description != "light rain" || first.Icon != "10d" {
		t.Errorf("day 1 keeps first point's description, got %q/%q", first.Description, first.Icon)
	}
	if !first.Date.Equal(day1) {
		t.Errorf("day 1 date = %v", first.Date)
	}
	if days[1].Description != "snow" {
		t.Errorf("day 2 description = %q", days[1].Description)
	}

	if got := AggregateDaily(points, time.UTC, 2); len(got) != 2 {
		t.Fatalf("limited days = %d; want 2", len(got))
	}
}

func TestAggregateDailyUsesZone(t *testing.T) {
	// 21:00 and 23:00 UTC on the same day land on different local days at +02:00.
	base := time.Date(2024, 3, 1, 21, 0, 0, 0, time.UTC)
	points := []ForecastPoint{
		{Time: base.Unix(), TempMin: 1, TempMax: 1},
		{Time: base.Add(2 * time.Hour).Unix(), TempMin: 2, TempMax: 2},
	}

	if got := AggregateDaily(points, time.UTC, 0); len(got) != 1 {
		t.Fatalf("UTC days = %d; want 1", len(got))
	}
	if got := AggregateDaily(points, time.FixedZone("x", 2*3600), 0); len(got) != 2 {
		t.Fatalf("+02 days = %d; want 2", len(got))
	}
}

package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"slices"
	"sync"
	"testing"

	"github.com/i474232898/weather-dashboard/internal/favorites"
	"github.com/i474232898/weather-dashboard/internal/settings"
	"github.com/i474232898/weather-dashboard/internal/storage"
	"github.com/i474232898/weather-dashboard/internal/store"
	"github.com/i474232898/weather-dashboard/internal/units"
	"github.com/i474232898/weather-dashboard/internal/weather"
)

type stubGateway struct {
	mu            sync.Mutex
	currentCalls  map[string]int
	forecastCalls map[string]int
	points        []weather.ForecastPoint
}

func newStubGateway() *stubGateway {
	return &stubGateway{currentCalls: map[string]int{}, forecastCalls: map[string]int{}}
}

func (g *stubGateway) Name() string { return "stub" }

func (g *stubGateway) FetchCurrent(_ context.Context, city string) (weather.WeatherSnapshot, error) {
	g.mu.Lock()
	g.currentCalls[city]++
	g.mu.Unlock()
	return weather.WeatherSnapshot{
		Name: city, Country: "XX", Temperature: 20, FeelsLike: 19, TempMin: 15, TempMax: 25,
		Humidity: 50, WindSpeed: 3, WindDeg: 180, Description: "light rain", Icon: "10d",
		Visibility: 9500, Clouds: 40, ObservedAt: 1700000000,
	}, nil
}

func (g *stubGateway) FetchForecast(_ context.Context, city string) (weather.ForecastSeries, error) {
	g.mu.Lock()
	g.forecastCalls[city]++
	g.mu.Unlock()
	return weather.ForecastSeries{City: city, Points: g.points}, nil
}

func (g *stubGateway) GeocodeSuggestions(context.Context, string, int) ([]weather.Place, error) {
	return nil, nil
}

type fakeTracker struct {
	tracked []string
}

func (f *fakeTracker) Track(city string) error {
	if !slices.Contains(f.tracked, city) {
		f.tracked = append(f.tracked, city)
	}
	return nil
}

func (f *fakeTracker) Untrack(city string) {
	f.tracked = slices.DeleteFunc(f.tracked, func(c string) bool { return c == city })
}

func (f *fakeTracker) Sync(cities []string) error {
	f.tracked = slices.Clone(cities)
	return nil
}

type fixture struct {
	dash    *Dashboard
	store   *store.MemoryStore
	gateway *stubGateway
	tracker *fakeTracker
}

func newFixture(t *testing.T, favs ...string) fixture {
	t.Helper()
	ctx := context.Background()
	kv := storage.NewMemory()
	if favs != nil {
		raw, _ := json.Marshal(favs)
		kv.Set(ctx, favorites.StorageKey, string(raw))
	}
	favStore, err := favorites.Load(ctx, kv, nil)
	if err != nil {
		t.Fatal(err)
	}
	prefs, err := settings.Load(ctx, kv, nil)
	if err != nil {
		t.Fatal(err)
	}

	st := store.NewMemoryStore()
	gw := newStubGateway()
	tr := &fakeTracker{}
	svc := weather.NewService(st, gw, nil)
	return fixture{dash: New(svc, favStore, prefs, tr, nil), store: st, gateway: gw, tracker: tr}
}

func TestStartTracksFavorites(t *testing.T) {
	f := newFixture(t)
	if err := f.dash.Start(); err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(f.tracker.tracked, favorites.DefaultCities) {
		t.Fatalf("tracked = %v", f.tracker.tracked)
	}
}

func TestCards(t *testing.T) {
	f := newFixture(t, "Tokyo", "Lima", "Oslo")
	ctx := context.Background()

	// Tokyo: first fetch in flight. Lima: first fetch failed. Oslo: ready.
	f.store.BeginCurrent("Tokyo")
	f.store.BeginCurrent("Lima")
	f.store.FailCurrent("Lima", "city not found")
	f.dash.Refresh(ctx, "Oslo")
	f.dash.SetUnit(ctx, units.Fahrenheit)

	cards := f.dash.Cards()
	if len(cards) != 2 {
		t.Fatalf("cards = %+v; want Tokyo placeholder and Oslo", cards)
	}
	if cards[0].City != "Tokyo" || !cards[0].Loading || cards[0].Weather != nil {
		t.Errorf("placeholder = %+v", cards[0])
	}

	oslo := cards[1]
	if oslo.Weather == nil || !oslo.Favorite {
		t.Fatalf("oslo = %+v", oslo)
	}
	w := oslo.Weather
	if w.Temperature != "68°F" {
		t.Errorf("temperature = %q", w.Temperature)
	}
	if w.Condition != units.ConditionRainy {
		t.Errorf("condition = %q", w.Condition)
	}
	if w.VisibilityKm != 9.5 {
		t.Errorf("visibility = %v", w.VisibilityKm)
	}
	if w.IconURL != "https://openweathermap.org/img/wn/10d@2x.png" {
		t.Errorf("icon = %q", w.IconURL)
	}
}

func TestCardKeepsSnapshotOnRefreshFailure(t *testing.T) {
	f := newFixture(t, "Oslo")
	f.dash.Refresh(context.Background(), "Oslo")
	f.store.BeginCurrent("Oslo")
	f.store.FailCurrent("Oslo", "timeout")

	cards := f.dash.Cards()
	if len(cards) != 1 || cards[0].Weather == nil || cards[0].Error != "timeout" {
		t.Fatalf("cards = %+v", cards)
	}

	f.dash.DismissError("Oslo")
	if cards := f.dash.Cards(); cards[0].Error != "" {
		t.Fatalf("error not dismissed: %+v", cards[0])
	}
}

func TestCachedIncludesNonFavorites(t *testing.T) {
	f := newFixture(t, "Oslo")
	ctx := context.Background()
	f.dash.Refresh(ctx, "Oslo")
	f.dash.Refresh(ctx, "Lima")
	if got := f.dash.Cached(); !slices.Equal(got, []string{"Lima", "Oslo"}) {
		t.Fatalf("cached = %v", got)
	}
}

func TestDetail(t *testing.T) {
	f := newFixture(t, "Oslo")
	ctx := context.Background()

	if f.dash.Detail("Oslo") != nil {
		t.Fatal("detail without a snapshot should be nil")
	}

	for i := 0; i < 30; i++ {
		f.gateway.points = append(f.gateway.points, weather.ForecastPoint{
			Time: 1700000000 + int64(i)*3*3600, Temperature: float64(i), FeelsLike: float64(i) - 1,
			TempMin: float64(i), TempMax: float64(i) + 2, Icon: "01d", Description: "clear sky",
			PrecipProbability: 0.256,
		})
	}
	f.dash.Refresh(ctx, "Oslo")

	d, res := f.dash.SelectCity(ctx, "Oslo")
	if res.Outcome != weather.Succeeded {
		t.Fatalf("forecast outcome = %v", res.Outcome)
	}
	if d == nil {
		t.Fatal("nil detail")
	}
	if d.Current.WindDirection != "S" || d.Current.FeelsLike != "19°C" {
		t.Errorf("current = %+v", d.Current)
	}
	if d.ForecastState != "ready" {
		t.Errorf("forecast state = %q", d.ForecastState)
	}
	if len(d.Hourly) != 12 || d.Hourly[0].PrecipitationPc != 26 {
		t.Errorf("hourly = %d points, first %+v", len(d.Hourly), d.Hourly[0])
	}
	if d.Chart == nil || len(d.Chart.Points) != 8 || d.Chart.Points[1].Temperature != 4 {
		t.Errorf("chart = %+v", d.Chart)
	}
	if d.Chart.Symbol != "°C" {
		t.Errorf("symbol = %q", d.Chart.Symbol)
	}
	// 30 three-hourly points span four or five calendar days.
	if n := len(d.Daily); n < 4 || n > 5 {
		t.Errorf("daily = %d rows", n)
	}

	if city, ok := f.dash.Selected(); !ok || city != "Oslo" {
		t.Errorf("selected = %q, %v", city, ok)
	}
	f.dash.CloseDetail()
	if _, ok := f.dash.Selected(); ok {
		t.Error("selection not cleared")
	}
}

func TestSelectCityAlwaysFetchesForecast(t *testing.T) {
	f := newFixture(t, "Oslo")
	ctx := context.Background()
	f.dash.SelectCity(ctx, "Oslo")
	f.dash.SelectCity(ctx, "Oslo")
	if got := f.gateway.forecastCalls["Oslo"]; got != 2 {
		t.Fatalf("forecast calls = %d; want 2", got)
	}
}

func TestAddRemoveToggle(t *testing.T) {
	f := newFixture(t, "Oslo")
	ctx := context.Background()

	if _, err := f.dash.AddCity(ctx, "   "); !errors.Is(err, ErrBlankCity) {
		t.Fatalf("blank add err = %v", err)
	}
	if added, err := f.dash.AddCity(ctx, " Lima "); err != nil || !added {
		t.Fatalf("add = %v, %v", added, err)
	}
	if !slices.Contains(f.tracker.tracked, "Lima") {
		t.Error("added city not tracked")
	}

	if fav, err := f.dash.ToggleFavorite(ctx, "Lima"); err != nil || fav {
		t.Fatalf("toggle off = %v, %v", fav, err)
	}
	if slices.Contains(f.tracker.tracked, "Lima") {
		t.Error("removed city still tracked")
	}
	if fav, err := f.dash.ToggleFavorite(ctx, "Lima"); err != nil || !fav {
		t.Fatalf("toggle on = %v, %v", fav, err)
	}

	if err := f.dash.RemoveCity(ctx, "Nowhere"); err != nil {
		t.Fatalf("removing an absent city: %v", err)
	}
	if err := f.dash.Reorder(ctx, []string{"Lima"}); !errors.Is(err, favorites.ErrNotPermutation) {
		t.Fatalf("reorder err = %v", err)
	}
	if err := f.dash.Reorder(ctx, []string{"Lima", "Oslo"}); err != nil {
		t.Fatal(err)
	}
}

func TestRefreshAllIsGated(t *testing.T) {
	f := newFixture(t, "Oslo", "Lima")
	ctx := context.Background()

	first := f.dash.RefreshAll(ctx)
	if len(first) != 2 || first[0].Outcome != weather.Succeeded || first[1].Outcome != weather.Succeeded {
		t.Fatalf("first refresh = %+v", first)
	}
	second := f.dash.RefreshAll(ctx)
	if second[0].Outcome != weather.Skipped || second[1].Outcome != weather.Skipped {
		t.Fatalf("second refresh = %+v", second)
	}
	if f.gateway.currentCalls["Oslo"] != 1 {
		t.Fatalf("gateway calls = %d; want 1", f.gateway.currentCalls["Oslo"])
	}
}

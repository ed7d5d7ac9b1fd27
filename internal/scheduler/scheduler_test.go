package scheduler

import (
	"context"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/i474232898/weather-dashboard/internal/weather"
)

type recordingFetcher struct {
	mu    sync.Mutex
	calls map[string]int
	seen  chan string
}

func newRecordingFetcher() *recordingFetcher {
	return &recordingFetcher{calls: make(map[string]int), seen: make(chan string, 64)}
}

func (f *recordingFetcher) FetchCurrent(_ context.Context, city string) weather.FetchResult[weather.WeatherSnapshot] {
	f.mu.Lock()
	f.calls[city]++
	f.mu.Unlock()
	f.seen <- city
	return weather.FetchResult[weather.WeatherSnapshot]{Outcome: weather.Succeeded}
}

func (f *recordingFetcher) count(city string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[city]
}

func waitFor(t *testing.T, f *recordingFetcher, city string) {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case got := <-f.seen:
			if got == city {
				return
			}
		case <-deadline:
			t.Fatalf("no refresh for %s", city)
		}
	}
}

func TestTrackRunsImmediately(t *testing.T) {
	f := newRecordingFetcher()
	s := New(f, time.Hour, nil)
	s.Start()
	defer s.Stop()

	if err := s.Track("Tokyo"); err != nil {
		t.Fatal(err)
	}
	waitFor(t, f, "Tokyo")

	if err := s.Track("Tokyo"); err != nil {
		t.Fatal(err)
	}
	if got := s.Tracked(); !slices.Equal(got, []string{"Tokyo"}) {
		t.Fatalf("tracked = %v", got)
	}
}

func TestTrackRepeats(t *testing.T) {
	f := newRecordingFetcher()
	s := New(f, time.Second, nil)
	s.Start()
	defer s.Stop()

	s.Track("Oslo")
	waitFor(t, f, "Oslo")
	waitFor(t, f, "Oslo")
	if f.count("Oslo") < 2 {
		t.Fatalf("calls = %d; want at least 2", f.count("Oslo"))
	}
}

func TestUntrackStopsRefresh(t *testing.T) {
	f := newRecordingFetcher()
	s := New(f, time.Second, nil)
	s.Start()
	defer s.Stop()

	s.Track("Rome")
	waitFor(t, f, "Rome")
	s.Untrack("Rome")
	s.Untrack("Rome")

	calls := f.count("Rome")
	time.Sleep(1500 * time.Millisecond)
	if f.count("Rome") != calls {
		t.Fatal("untracked city kept refreshing")
	}
	if len(s.Tracked()) != 0 {
		t.Fatalf("tracked = %v", s.Tracked())
	}
}

func TestSync(t *testing.T) {
	f := newRecordingFetcher()
	s := New(f, time.Hour, nil)

	s.Sync([]string{"London", "Paris"})
	s.Sync([]string{"Paris", "Lima"})
	if got := s.Tracked(); !slices.Equal(got, []string{"Lima", "Paris"}) {
		t.Fatalf("tracked = %v", got)
	}

	s.Start()
	defer s.Stop()
	waitFor(t, f, "Lima")
	if f.count("London") != 0 {
		t.Fatal("untracked city was refreshed")
	}
}

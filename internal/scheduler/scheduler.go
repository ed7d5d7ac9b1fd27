package scheduler

import (
	"context"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/i474232898/weather-dashboard/internal/weather"
)

const (
	// RefreshInterval is the period of each tracked city's refresh job.
	RefreshInterval = 60 * time.Second
	fetchTimeout    = 30 * time.Second
)

// Fetcher issues a staleness-gated current-conditions fetch.
type Fetcher interface {
	FetchCurrent(ctx context.Context, city string) weather.FetchResult[weather.WeatherSnapshot]
}

// Scheduler owns one repeating refresh job per displayed city.
type Scheduler struct {
	scheduler *gocron.Scheduler
	fetcher   Fetcher
	interval  time.Duration
	logger    *slog.Logger

	mu   sync.Mutex
	jobs map[string]*gocron.Job
}

// New creates a new Scheduler. A non-positive interval means RefreshInterval.
func New(fetcher Fetcher, interval time.Duration, logger *slog.Logger) *Scheduler {
	if interval <= 0 {
		interval = RefreshInterval
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.UTC),
		fetcher:   fetcher,
		interval:  interval,
		logger:    logger,
		jobs:      make(map[string]*gocron.Job),
	}
}

// Start starts the underlying scheduler; jobs tracked earlier begin running.
func (s *Scheduler) Start() {
	s.scheduler.StartAsync()
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}

// Track schedules a refresh job for city that runs once right away and then
// every interval. Tracking an already tracked city is a no-op.
func (s *Scheduler) Track(city string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.jobs[city]; ok {
		return nil
	}

	job, err := s.scheduler.Every(s.interval).
		Tag(city).
		SingletonMode().
		StartImmediately().
		Do(s.refresh, city)
	if err != nil {
		return err
	}
	s.jobs[city] = job
	s.logger.Debug("tracking city", "city", city, "interval", s.interval)
	return nil
}

// Untrack cancels the refresh job of city, if any.
func (s *Scheduler) Untrack(city string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.jobs[city]; !ok {
		return
	}
	if err := s.scheduler.RemoveByTag(city); err != nil {
		s.logger.Warn("failed to remove refresh job", "city", city, "err", err)
	}
	delete(s.jobs, city)
	s.logger.Debug("untracked city", "city", city)
}

// Sync makes the tracked set equal to cities.
func (s *Scheduler) Sync(cities []string) error {
	for _, city := range s.Tracked() {
		if !slices.Contains(cities, city) {
			s.Untrack(city)
		}
	}
	for _, city := range cities {
		if err := s.Track(city); err != nil {
			return err
		}
	}
	return nil
}

// Tracked returns the tracked cities in lexical order.
func (s *Scheduler) Tracked() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	cities := make([]string, 0, len(s.jobs))
	for city := range s.jobs {
		cities = append(cities, city)
	}
	slices.Sort(cities)
	return cities
}

// Every schedules an untracked housekeeping job.
func (s *Scheduler) Every(interval time.Duration, task func()) error {
	_, err := s.scheduler.Every(interval).SingletonMode().WaitForSchedule().Do(task)
	return err
}

func (s *Scheduler) refresh(city string) {
	ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
	defer cancel()

	res := s.fetcher.FetchCurrent(ctx, city)
	switch res.Outcome {
	case weather.Failed:
		s.logger.Warn("scheduled refresh failed", "city", city, "err", res.Err)
	case weather.Succeeded:
		s.logger.Debug("scheduled refresh completed", "city", city)
	}
}

package scheduler

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/go-co-op/gocron/v2"

	"github.com/gridrank/gridrank/internal/service"
)

// Config holds scheduler configuration
type Config struct {
	Season      int           // season to keep refreshed, e.g. 2025
	RefreshHour int           // Default: 6 (6 AM)
	MaxRetries  int           // Default: 3
	RetryDelay  time.Duration // Default: 5s
}

// DefaultConfig returns default scheduler configuration
func DefaultConfig(season int) *Config {
	return &Config{
		Season:      season,
		RefreshHour: 6,
		MaxRetries:  3,
		RetryDelay:  5 * time.Second,
	}
}

// Scheduler refreshes the season's games on a daily cadence so rankings
// pick up newly completed games without manual intervention.
type Scheduler struct {
	s        gocron.Scheduler
	rankings *service.RankingService
	config   *Config
}

// NewScheduler creates a scheduler around the ranking service.
func NewScheduler(rankings *service.RankingService, config *Config) (*Scheduler, error) {
	if config == nil {
		config = DefaultConfig(time.Now().Year())
	}

	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}

	return &Scheduler{
		s:        s,
		rankings: rankings,
		config:   config,
	}, nil
}

// Start registers the daily refresh job and launches the scheduler.
// The first refresh runs immediately so a fresh deploy has data.
func (s *Scheduler) Start() error {
	_, err := s.s.NewJob(
		gocron.DailyJob(1, gocron.NewAtTimes(gocron.NewAtTime(uint(s.config.RefreshHour), 0, 0))),
		gocron.NewTask(s.refreshSeason),
		gocron.WithStartAt(gocron.WithStartImmediately()),
	)
	if err != nil {
		return fmt.Errorf("failed to create season refresh job: %w", err)
	}

	s.s.Start()
	log.Printf("[scheduler] ✓ Started (daily refresh at %02d:00 for season %d)", s.config.RefreshHour, s.config.Season)
	return nil
}

// Stop shuts the scheduler down, waiting for a running job to finish.
func (s *Scheduler) Stop() error {
	log.Println("[scheduler] Stopping...")
	return s.s.Shutdown()
}

// RefreshNow triggers an out-of-band refresh, used at startup and by
// operators who do not want to wait for the next scheduled run.
func (s *Scheduler) RefreshNow(ctx context.Context) error {
	return s.rankings.RefreshSeason(ctx, s.config.Season)
}

func (s *Scheduler) refreshSeason() {
	for attempt := 1; attempt <= s.config.MaxRetries; attempt++ {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		err := s.rankings.RefreshSeason(ctx, s.config.Season)
		cancel()
		if err == nil {
			log.Printf("[scheduler] ✓ Refreshed season %d", s.config.Season)
			return
		}
		log.Printf("[scheduler] Refresh attempt %d/%d failed: %v", attempt, s.config.MaxRetries, err)
		if attempt < s.config.MaxRetries {
			time.Sleep(s.config.RetryDelay)
		}
	}
	log.Printf("[scheduler] ✗ Season %d refresh failed after %d attempts", s.config.Season, s.config.MaxRetries)
}

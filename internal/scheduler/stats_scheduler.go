package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/echofort/threatintel/internal/models"
)

// StatsGenerator produces the daily statistics rollup. Satisfied by
// database.PostgresStatsRepository.
type StatsGenerator interface {
	GenerateDaily(ctx context.Context, day time.Time) (*models.DailyStats, error)
}

// StatsScheduler runs the daily statistics job at a fixed time of day.
type StatsScheduler struct {
	generator StatsGenerator
	timeOfDay string
	logger    *slog.Logger

	checkInterval time.Duration
	now           func() time.Time
	stopChan      chan struct{}
	lastRunAt     *time.Time
}

// NewStatsScheduler creates a scheduler firing at timeOfDay (15:04 format).
func NewStatsScheduler(generator StatsGenerator, timeOfDay string, logger *slog.Logger) *StatsScheduler {
	return &StatsScheduler{
		generator:     generator,
		timeOfDay:     timeOfDay,
		logger:        logger,
		checkInterval: 1 * time.Minute,
		now:           time.Now,
		stopChan:      make(chan struct{}),
	}
}

// Start begins the scheduler loop.
func (s *StatsScheduler) Start(ctx context.Context) {
	s.logger.Info("starting stats scheduler", "time_of_day", s.timeOfDay)
	ticker := time.NewTicker(s.checkInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.checkAndRun(ctx)
		case <-s.stopChan:
			s.logger.Info("stats scheduler stopped")
			return
		case <-ctx.Done():
			s.logger.Info("stats scheduler stopping due to context cancellation")
			return
		}
	}
}

// Stop stops the scheduler.
func (s *StatsScheduler) Stop() {
	close(s.stopChan)
}

func (s *StatsScheduler) checkAndRun(ctx context.Context) {
	now := s.now()
	if now.Format("15:04") != s.timeOfDay {
		return
	}

	// Check if we already ran today
	if s.lastRunAt != nil &&
		s.lastRunAt.Year() == now.Year() && s.lastRunAt.YearDay() == now.YearDay() {
		return
	}

	stats, err := s.generator.GenerateDaily(ctx, now)
	if err != nil {
		s.logger.Error("failed to generate daily stats", "error", err)
		return
	}

	s.lastRunAt = &now
	s.logger.Info("daily stats generated",
		"date", stats.Date.Format("2006-01-02"),
		"scans_run", stats.ScansRun,
		"items_collected", stats.ItemsCollected,
		"alerts_raised", stats.AlertsRaised)
}

package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/echofort/threatintel/internal/models"
	"github.com/echofort/threatintel/internal/scanner"
)

// ScanRunner executes one collection cycle. Satisfied by scanner.Pipeline.
type ScanRunner interface {
	Run(ctx context.Context, trigger models.ScanTrigger) (*models.ScanRun, error)
}

// LastRunSource reports when the most recent scan started, so the
// schedule survives process restarts.
type LastRunSource interface {
	LatestStartedAt(ctx context.Context) (*time.Time, error)
}

// ScanScheduler triggers periodic scan runs. A minute-resolution check
// loop compares against the next due time; a run missed by more than the
// grace window is skipped rather than executed late.
type ScanScheduler struct {
	runner   ScanRunner
	lastRuns LastRunSource
	logger   *slog.Logger

	interval      time.Duration
	grace         time.Duration
	checkInterval time.Duration
	now           func() time.Time
	stopChan      chan struct{}

	mu      sync.Mutex
	nextDue time.Time
}

// NewScanScheduler creates a scheduler running the pipeline every interval.
func NewScanScheduler(runner ScanRunner, lastRuns LastRunSource, interval, grace time.Duration, logger *slog.Logger) *ScanScheduler {
	return &ScanScheduler{
		runner:        runner,
		lastRuns:      lastRuns,
		logger:        logger,
		interval:      interval,
		grace:         grace,
		checkInterval: 1 * time.Minute,
		now:           time.Now,
		stopChan:      make(chan struct{}),
	}
}

// Start validates the schedule, recovers the next due time from the scan
// history, and launches the check loop. A returned error means no
// scheduled scans will run; manual triggers remain available.
func (s *ScanScheduler) Start(ctx context.Context) error {
	if s.interval <= 0 {
		return fmt.Errorf("scan interval must be positive, got %s", s.interval)
	}
	if s.grace < 0 {
		return fmt.Errorf("misfire grace must not be negative, got %s", s.grace)
	}

	lastStart, err := s.lastRuns.LatestStartedAt(ctx)
	if err != nil {
		return fmt.Errorf("failed to recover scan history: %w", err)
	}

	now := s.now()
	if lastStart != nil {
		s.nextDue = lastStart.Add(s.interval)
	} else {
		// Never scanned before: run at the first check.
		s.nextDue = now
	}

	s.logger.Info("starting scan scheduler",
		"interval", s.interval,
		"grace", s.grace,
		"next_due", s.nextDue.Format(time.RFC3339))

	go s.loop(ctx)
	return nil
}

// Stop stops the scheduler loop.
func (s *ScanScheduler) Stop() {
	close(s.stopChan)
}

// NextDue returns the time of the next scheduled run.
func (s *ScanScheduler) NextDue() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.nextDue
}

func (s *ScanScheduler) loop(ctx context.Context) {
	ticker := time.NewTicker(s.checkInterval)
	defer ticker.Stop()

	s.check(ctx)

	for {
		select {
		case <-ticker.C:
			s.check(ctx)
		case <-s.stopChan:
			s.logger.Info("scan scheduler stopped")
			return
		case <-ctx.Done():
			s.logger.Info("scan scheduler stopping due to context cancellation")
			return
		}
	}
}

// check runs the pipeline when the due time falls inside the grace
// window, and reschedules either way.
func (s *ScanScheduler) check(ctx context.Context) {
	now := s.now()

	s.mu.Lock()
	due := s.nextDue
	s.mu.Unlock()

	if now.Before(due) {
		return
	}

	if now.After(due.Add(s.grace)) {
		// Too late to run the missed cycle; realign to the cadence.
		next := due
		for !next.After(now) {
			next = next.Add(s.interval)
		}
		s.setNextDue(next)
		s.logger.Warn("missed scan window, skipping to next cycle",
			"was_due", due.Format(time.RFC3339),
			"next_due", next.Format(time.RFC3339))
		return
	}

	s.setNextDue(now.Add(s.interval))

	scan, err := s.runner.Run(ctx, models.ScanTriggerScheduled)
	if errors.Is(err, scanner.ErrScanInFlight) {
		s.logger.Warn("scheduled scan skipped, another run in progress")
		return
	}
	if err != nil {
		s.logger.Error("scheduled scan failed", "error", err)
		return
	}

	s.logger.Info("scheduled scan finished",
		"scan_id", scan.ID,
		"status", scan.Status,
		"items_collected", scan.ItemsCollected)
}

func (s *ScanScheduler) setNextDue(t time.Time) {
	s.mu.Lock()
	s.nextDue = t
	s.mu.Unlock()
}

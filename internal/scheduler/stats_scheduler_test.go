package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/echofort/threatintel/internal/models"
)

type fakeStatsGenerator struct {
	calls int
}

func (f *fakeStatsGenerator) GenerateDaily(ctx context.Context, day time.Time) (*models.DailyStats, error) {
	f.calls++
	return &models.DailyStats{Date: day}, nil
}

func TestStatsSchedulerRunsAtConfiguredTime(t *testing.T) {
	gen := &fakeStatsGenerator{}
	s := NewStatsScheduler(gen, "23:59", testLogger())

	now := time.Date(2026, 3, 10, 23, 59, 10, 0, time.UTC)
	s.now = func() time.Time { return now }

	s.checkAndRun(context.Background())
	if gen.calls != 1 {
		t.Fatalf("expected 1 run at configured time, got %d", gen.calls)
	}

	// Same minute again: already ran today.
	s.checkAndRun(context.Background())
	if gen.calls != 1 {
		t.Errorf("expected no second run on the same day, got %d", gen.calls)
	}

	// Next day at the same time runs again.
	now = now.Add(24 * time.Hour)
	s.checkAndRun(context.Background())
	if gen.calls != 2 {
		t.Errorf("expected a run on the next day, got %d", gen.calls)
	}
}

func TestStatsSchedulerIgnoresOtherTimes(t *testing.T) {
	gen := &fakeStatsGenerator{}
	s := NewStatsScheduler(gen, "23:59", testLogger())
	s.now = func() time.Time { return time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC) }

	s.checkAndRun(context.Background())
	if gen.calls != 0 {
		t.Errorf("expected no run outside the configured minute, got %d", gen.calls)
	}
}

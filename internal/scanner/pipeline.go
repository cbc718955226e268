package scanner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/echofort/threatintel/internal/models"
)

// ErrScanInFlight is returned when a scan is triggered while another run
// is still in progress.
var ErrScanInFlight = errors.New("a scan is already in progress")

// MetricsRecorder receives pipeline observations. Satisfied by
// metrics.Collector.
type MetricsRecorder interface {
	ObserveScanRun(status string, items, patterns, alerts int, duration time.Duration)
	ObserveFetchFailure(kind string)
}

type noopMetrics struct{}

func (noopMetrics) ObserveScanRun(string, int, int, int, time.Duration) {}
func (noopMetrics) ObserveFetchFailure(string)                         {}

// SourceResult reports the outcome of processing one source within a run.
type SourceResult struct {
	SourceID   string
	SourceName string
	Items      int
	FetchErr   error
	PersistErr error
}

// Config holds pipeline tuning parameters.
type Config struct {
	MaxParallelFetches     int
	PatternMinOccurrences  int
	AlertSeverityThreshold int
	MaxPhoneNumbers        int
	MaxURLs                int
	MaxKeywords            int
	ExcerptLimit           int
	FetchTimeout           time.Duration
}

// Pipeline orchestrates one complete threat intelligence collection cycle.
type Pipeline struct {
	sources    SourceRepository
	scans      ScanRepository
	items      ItemRepository
	fetcher    *Fetcher
	extractor  *Extractor
	classifier *Classifier
	aggregator *PatternAggregator
	alertGen   *AlertGenerator
	metrics    MetricsRecorder
	logger     *slog.Logger

	maxParallel  int
	excerptLimit int
	running      atomic.Bool
}

// NewPipeline wires a pipeline from its repositories and configuration.
func NewPipeline(
	sources SourceRepository,
	scans ScanRepository,
	items ItemRepository,
	patterns PatternRepository,
	alerts AlertRepository,
	cfg Config,
	recorder MetricsRecorder,
	logger *slog.Logger,
) *Pipeline {
	if recorder == nil {
		recorder = noopMetrics{}
	}

	return &Pipeline{
		sources:      sources,
		scans:        scans,
		items:        items,
		fetcher:      NewFetcher(cfg.FetchTimeout),
		extractor:    NewExtractor(cfg.MaxPhoneNumbers, cfg.MaxURLs),
		classifier:   NewClassifier(cfg.MaxKeywords),
		aggregator:   NewPatternAggregator(patterns, cfg.PatternMinOccurrences, logger),
		alertGen:     NewAlertGenerator(alerts, cfg.AlertSeverityThreshold),
		metrics:      recorder,
		logger:       logger,
		maxParallel:  cfg.MaxParallelFetches,
		excerptLimit: cfg.ExcerptLimit,
	}
}

// Running reports whether a scan is currently in flight.
func (p *Pipeline) Running() bool {
	return p.running.Load()
}

// Run executes one scan cycle synchronously. At most one run may be in
// flight; a concurrent trigger returns ErrScanInFlight. Individual source
// failures are tolerated; persistence failures mark the whole run failed
// while preserving rows already written.
func (p *Pipeline) Run(ctx context.Context, trigger models.ScanTrigger) (*models.ScanRun, error) {
	scan, err := p.begin(ctx, trigger)
	if err != nil {
		return nil, err
	}

	defer p.running.Store(false)
	return p.execute(ctx, *scan)
}

// Trigger starts a scan cycle in the background and returns the pending
// run record immediately. Used by the manual trigger endpoint.
func (p *Pipeline) Trigger(ctx context.Context, trigger models.ScanTrigger) (*models.ScanRun, error) {
	scan, err := p.begin(ctx, trigger)
	if err != nil {
		return nil, err
	}

	go func() {
		defer p.running.Store(false)
		// Detached from the request context; the run outlives it.
		if _, err := p.execute(context.Background(), *scan); err != nil {
			p.logger.Error("background scan failed", "scan_id", scan.ID, "error", err)
		}
	}()

	return scan, nil
}

// begin claims the single-flight slot and persists the pending record.
func (p *Pipeline) begin(ctx context.Context, trigger models.ScanTrigger) (*models.ScanRun, error) {
	if !p.running.CompareAndSwap(false, true) {
		return nil, ErrScanInFlight
	}

	scan := models.ScanRun{
		ID:        uuid.New().String(),
		Status:    models.ScanStatusPending,
		Trigger:   trigger,
		StartedAt: time.Now(),
	}

	if err := p.scans.Create(ctx, scan); err != nil {
		p.running.Store(false)
		return nil, fmt.Errorf("failed to create scan record: %w", err)
	}

	return &scan, nil
}

func (p *Pipeline) execute(ctx context.Context, scan models.ScanRun) (*models.ScanRun, error) {
	start := scan.StartedAt

	p.logger.Info("scan started", "scan_id", scan.ID, "trigger", scan.Trigger)

	sources, err := p.sources.ListActive(ctx)
	if err != nil {
		return p.fail(ctx, &scan, start, 0, fmt.Errorf("failed to list sources: %w", err))
	}

	if err := p.scans.MarkRunning(ctx, scan.ID); err != nil {
		return p.fail(ctx, &scan, start, 0, err)
	}
	scan.Status = models.ScanStatusRunning

	results, collected := p.processSources(ctx, scan.ID, sources)

	failedFetches := 0
	for _, result := range results {
		if result.PersistErr != nil {
			return p.fail(ctx, &scan, start, len(collected), fmt.Errorf("source %s: %w", result.SourceName, result.PersistErr))
		}
		if result.FetchErr != nil {
			failedFetches++
			p.logger.Warn("source fetch failed",
				"scan_id", scan.ID,
				"source", result.SourceName,
				"error", result.FetchErr)
		}
	}

	now := time.Now()
	newPatterns, err := p.aggregator.Aggregate(ctx, collected, now)
	if err != nil {
		return p.fail(ctx, &scan, start, len(collected), err)
	}

	alertsRaised, err := p.alertGen.Generate(ctx, collected, now)
	if err != nil {
		return p.fail(ctx, &scan, start, len(collected), err)
	}

	completedAt := time.Now()
	if err := p.scans.Complete(ctx, scan.ID, len(collected), newPatterns, completedAt); err != nil {
		return p.fail(ctx, &scan, start, len(collected), fmt.Errorf("failed to finalize scan: %w", err))
	}

	scan.Status = models.ScanStatusCompleted
	scan.CompletedAt = &completedAt
	scan.ItemsCollected = len(collected)
	scan.NewPatterns = newPatterns

	duration := completedAt.Sub(start)
	p.metrics.ObserveScanRun(string(models.ScanStatusCompleted), len(collected), newPatterns, alertsRaised, duration)
	p.logger.Info("scan completed",
		"scan_id", scan.ID,
		"sources", len(sources),
		"failed_fetches", failedFetches,
		"items_collected", len(collected),
		"new_patterns", newPatterns,
		"alerts_raised", alertsRaised,
		"duration", duration)

	return &scan, nil
}

// processSources runs fetch+extract+classify+score+persist for each source
// through a bounded worker pool and joins before returning.
func (p *Pipeline) processSources(ctx context.Context, scanID string, sources []models.Source) ([]SourceResult, []models.ThreatItem) {
	poolSize := p.maxParallel
	if len(sources) < poolSize {
		poolSize = len(sources)
	}
	if poolSize < 1 {
		poolSize = 1
	}

	semaphore := make(chan struct{}, poolSize)
	results := make([]sourceOutcome, len(sources))

	var mu sync.Mutex
	collected := []models.ThreatItem{}

	var wg sync.WaitGroup
	for i, source := range sources {
		wg.Add(1)
		go func(idx int, src models.Source) {
			defer wg.Done()
			semaphore <- struct{}{}
			defer func() { <-semaphore }()

			result := p.processSource(ctx, scanID, src)
			results[idx] = result

			if result.storedItems != nil {
				mu.Lock()
				collected = append(collected, result.storedItems...)
				mu.Unlock()
			}
		}(i, source)
	}
	wg.Wait()

	public := make([]SourceResult, len(results))
	for i, r := range results {
		public[i] = r.SourceResult
	}
	return public, collected
}

type sourceOutcome struct {
	SourceResult
	storedItems []models.ThreatItem
}

// truncateExcerpt caps the excerpt at limit bytes without splitting a
// multibyte rune. Postgres rejects invalid UTF-8 in text columns.
func truncateExcerpt(text string, limit int) string {
	if len(text) <= limit {
		return text
	}
	cut := limit
	for cut > 0 && !utf8.RuneStart(text[cut]) {
		cut--
	}
	return text[:cut]
}

func (p *Pipeline) processSource(ctx context.Context, scanID string, source models.Source) sourceOutcome {
	outcome := sourceOutcome{
		SourceResult: SourceResult{SourceID: source.ID, SourceName: source.Name},
	}

	text, err := p.fetcher.Fetch(ctx, source.URL)
	if err != nil {
		outcome.FetchErr = err
		var fetchErr *FetchError
		if errors.As(err, &fetchErr) {
			p.metrics.ObserveFetchFailure(string(fetchErr.Kind))
		}
		return outcome
	}

	scamType, keywords := p.classifier.Classify(text)
	phones := p.extractor.Phones(text)
	urls := p.extractor.URLs(text)

	// Pages with no scam signal at all produce no item.
	if scamType == models.ScamTypeUnknown && len(phones) == 0 && len(urls) == 0 {
		return outcome
	}

	excerpt := truncateExcerpt(text, p.excerptLimit)

	item := models.ThreatItem{
		ID:           uuid.New().String(),
		ScanID:       scanID,
		SourceID:     source.ID,
		ScamType:     scamType,
		Severity:     Score(scamType, len(phones), len(urls)),
		Confidence:   models.DefaultConfidence,
		PhoneNumbers: phones,
		URLs:         urls,
		Keywords:     keywords,
		RawExcerpt:   excerpt,
		CollectedAt:  time.Now(),
	}

	if err := p.items.Store(ctx, item); err != nil {
		outcome.PersistErr = fmt.Errorf("failed to store item: %w", err)
		return outcome
	}

	outcome.Items = 1
	outcome.storedItems = []models.ThreatItem{item}
	return outcome
}

func (p *Pipeline) fail(ctx context.Context, scan *models.ScanRun, start time.Time, itemsStored int, cause error) (*models.ScanRun, error) {
	completedAt := time.Now()
	if err := p.scans.Fail(ctx, scan.ID, cause.Error(), itemsStored, completedAt); err != nil {
		p.logger.Error("failed to record scan failure", "scan_id", scan.ID, "error", err)
	}

	scan.Status = models.ScanStatusFailed
	scan.CompletedAt = &completedAt
	scan.ErrorMessage = cause.Error()
	scan.ItemsCollected = itemsStored

	p.metrics.ObserveScanRun(string(models.ScanStatusFailed), itemsStored, 0, 0, completedAt.Sub(start))
	p.logger.Error("scan failed", "scan_id", scan.ID, "error", cause)

	return scan, cause
}

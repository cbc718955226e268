package scanner

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/echofort/threatintel/internal/models"
)

// SourceRepository defines the interface for reading scan sources.
type SourceRepository interface {
	// ListActive retrieves all active sources ordered by priority.
	ListActive(ctx context.Context) ([]models.Source, error)
}

// ScanRepository defines the interface for scan run lifecycle records.
type ScanRepository interface {
	// Create inserts a new scan run record.
	Create(ctx context.Context, scan models.ScanRun) error

	// MarkRunning transitions a scan from pending to running.
	MarkRunning(ctx context.Context, id string) error

	// Complete transitions a scan to completed with its final counters.
	Complete(ctx context.Context, id string, itemsCollected, newPatterns int, completedAt time.Time) error

	// Fail transitions a scan to failed, recording the error message and
	// how many items had been persisted before the run aborted.
	Fail(ctx context.Context, id string, errorMessage string, itemsCollected int, completedAt time.Time) error

	// GetByID retrieves a scan run by its ID.
	GetByID(ctx context.Context, id string) (*models.ScanRun, error)
}

// ItemRepository defines the interface for storing threat items.
type ItemRepository interface {
	// Store saves a single threat item.
	Store(ctx context.Context, item models.ThreatItem) error
}

// PatternRepository defines the interface for aggregated threat patterns.
type PatternRepository interface {
	// Upsert records occurrences of a pattern value. Returns true when a
	// new pattern row was created.
	Upsert(ctx context.Context, pattern models.ThreatPattern) (bool, error)
}

// AlertRepository defines the interface for storing alerts.
type AlertRepository interface {
	// Store saves a single alert.
	Store(ctx context.Context, alert models.Alert) error
}

// MemorySourceRepository implements an in-memory source repository for testing/development.
type MemorySourceRepository struct {
	mu      sync.Mutex
	sources map[string]models.Source
}

// NewMemorySourceRepository creates a new in-memory source repository.
func NewMemorySourceRepository() *MemorySourceRepository {
	return &MemorySourceRepository{sources: make(map[string]models.Source)}
}

// Store saves a source to memory.
func (r *MemorySourceRepository) Store(ctx context.Context, source models.Source) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sources[source.ID] = source
	return nil
}

// ListActive retrieves active sources ordered by priority, highest first.
func (r *MemorySourceRepository) ListActive(ctx context.Context) ([]models.Source, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	result := make([]models.Source, 0, len(r.sources))
	for _, source := range r.sources {
		if source.Active {
			result = append(result, source)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].Priority != result[j].Priority {
			return result[i].Priority > result[j].Priority
		}
		return result[i].Name < result[j].Name
	})

	return result, nil
}

// MemoryScanRepository implements an in-memory scan repository for testing/development.
type MemoryScanRepository struct {
	mu    sync.Mutex
	scans map[string]models.ScanRun
}

// NewMemoryScanRepository creates a new in-memory scan repository.
func NewMemoryScanRepository() *MemoryScanRepository {
	return &MemoryScanRepository{scans: make(map[string]models.ScanRun)}
}

// Create inserts a new scan run record.
func (r *MemoryScanRepository) Create(ctx context.Context, scan models.ScanRun) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.scans[scan.ID] = scan
	return nil
}

// MarkRunning transitions a scan from pending to running.
func (r *MemoryScanRepository) MarkRunning(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	scan, ok := r.scans[id]
	if !ok || scan.Status != models.ScanStatusPending {
		return nil
	}
	scan.Status = models.ScanStatusRunning
	r.scans[id] = scan
	return nil
}

// Complete transitions a scan to completed with its final counters.
func (r *MemoryScanRepository) Complete(ctx context.Context, id string, itemsCollected, newPatterns int, completedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	scan, ok := r.scans[id]
	if !ok {
		return nil
	}
	scan.Status = models.ScanStatusCompleted
	scan.CompletedAt = &completedAt
	scan.ItemsCollected = itemsCollected
	scan.NewPatterns = newPatterns
	r.scans[id] = scan
	return nil
}

// Fail transitions a scan to failed, recording the error message and the
// number of items persisted before the abort.
func (r *MemoryScanRepository) Fail(ctx context.Context, id string, errorMessage string, itemsCollected int, completedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	scan, ok := r.scans[id]
	if !ok {
		return nil
	}
	scan.Status = models.ScanStatusFailed
	scan.CompletedAt = &completedAt
	scan.ErrorMessage = errorMessage
	scan.ItemsCollected = itemsCollected
	r.scans[id] = scan
	return nil
}

// GetByID retrieves a scan run by its ID.
func (r *MemoryScanRepository) GetByID(ctx context.Context, id string) (*models.ScanRun, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	scan, ok := r.scans[id]
	if !ok {
		return nil, nil
	}
	return &scan, nil
}

// MemoryItemRepository implements an in-memory item repository for testing/development.
type MemoryItemRepository struct {
	mu    sync.Mutex
	items []models.ThreatItem
}

// NewMemoryItemRepository creates a new in-memory item repository.
func NewMemoryItemRepository() *MemoryItemRepository {
	return &MemoryItemRepository{}
}

// Store saves a threat item to memory.
func (r *MemoryItemRepository) Store(ctx context.Context, item models.ThreatItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = append(r.items, item)
	return nil
}

// Items returns a copy of all stored items.
func (r *MemoryItemRepository) Items() []models.ThreatItem {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.ThreatItem, len(r.items))
	copy(out, r.items)
	return out
}

// MemoryPatternRepository implements an in-memory pattern repository for testing/development.
type MemoryPatternRepository struct {
	mu       sync.Mutex
	patterns map[string]models.ThreatPattern
}

// NewMemoryPatternRepository creates a new in-memory pattern repository.
func NewMemoryPatternRepository() *MemoryPatternRepository {
	return &MemoryPatternRepository{patterns: make(map[string]models.ThreatPattern)}
}

// Upsert records occurrences of a pattern value, keyed by type and value.
func (r *MemoryPatternRepository) Upsert(ctx context.Context, pattern models.ThreatPattern) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := string(pattern.PatternType) + "|" + pattern.PatternValue
	existing, ok := r.patterns[key]
	if !ok {
		pattern.Active = true
		r.patterns[key] = pattern
		return true, nil
	}

	existing.OccurrenceCount += pattern.OccurrenceCount
	existing.LastSeen = pattern.LastSeen
	for _, st := range pattern.ScamTypes {
		found := false
		for _, have := range existing.ScamTypes {
			if have == st {
				found = true
				break
			}
		}
		if !found {
			existing.ScamTypes = append(existing.ScamTypes, st)
		}
	}
	r.patterns[key] = existing
	return false, nil
}

// Get retrieves a pattern by type and value.
func (r *MemoryPatternRepository) Get(patternType models.PatternType, value string) (*models.ThreatPattern, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	pattern, ok := r.patterns[string(patternType)+"|"+value]
	if !ok {
		return nil, false
	}
	return &pattern, true
}

// Size returns the number of stored patterns.
func (r *MemoryPatternRepository) Size() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.patterns)
}

// MemoryAlertRepository implements an in-memory alert repository for testing/development.
type MemoryAlertRepository struct {
	mu     sync.Mutex
	alerts []models.Alert
}

// NewMemoryAlertRepository creates a new in-memory alert repository.
func NewMemoryAlertRepository() *MemoryAlertRepository {
	return &MemoryAlertRepository{}
}

// Store saves an alert to memory.
func (r *MemoryAlertRepository) Store(ctx context.Context, alert models.Alert) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.alerts = append(r.alerts, alert)
	return nil
}

// Alerts returns a copy of all stored alerts.
func (r *MemoryAlertRepository) Alerts() []models.Alert {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.Alert, len(r.alerts))
	copy(out, r.alerts)
	return out
}

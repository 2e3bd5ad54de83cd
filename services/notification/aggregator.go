package notification

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"taskmate/models"
	"taskmate/utils"
)

// FetchFunc retrieves the server's canonical notification list. Wired to the
// marketplace API in production, stubbed in tests.
type FetchFunc func(ctx context.Context) ([]models.Notification, error)

// Aggregator owns the in-memory notification set for the current session and
// derives unread counts from it. Ingestion is idempotent by message ID, so
// duplicate push deliveries never double-count. Counts are always computed
// from the records, never cached alongside them.
type Aggregator struct {
	mu      sync.Mutex
	records []models.Notification
	seen    map[string]bool
	fetch   FetchFunc
	logger  *zap.Logger
}

func NewAggregator(fetch FetchFunc) *Aggregator {
	return &Aggregator{
		seen:   make(map[string]bool),
		fetch:  fetch,
		logger: utils.GetLogger(),
	}
}

// Ingest records one push delivery. Payloads without a data type are
// irrelevant to badges and are dropped silently; payloads whose message ID
// was already seen are a no-op.
func (a *Aggregator) Ingest(p models.PushPayload) {
	if p.Data.Type == "" {
		a.logger.Debug("Dropping push payload without type", zap.String("messageId", p.MessageID))
		return
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if a.seen[p.MessageID] {
		return
	}
	a.seen[p.MessageID] = true

	record := models.Notification{
		ID:        p.MessageID,
		Type:      p.Data.Type,
		Message:   p.Data.MessageType,
		TaskID:    p.Data.TaskID,
		ChatID:    p.Data.ChatID,
		CreatedAt: time.Now(),
	}
	// Most-recent-first.
	a.records = append([]models.Notification{record}, a.records...)
}

// FetchAll replaces the collection with the server's canonical list. A failed
// fetch leaves the existing records untouched; stale-but-consistent beats
// clearing to empty.
func (a *Aggregator) FetchAll(ctx context.Context) error {
	records, err := a.fetch(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch notifications: %w", err)
	}

	seen := make(map[string]bool, len(records))
	for _, r := range records {
		seen[r.ID] = true
	}

	a.mu.Lock()
	a.records = records
	a.seen = seen
	a.mu.Unlock()
	return nil
}

// MarkRead flips one record's read flag. Unknown IDs and already-read
// records are no-ops.
func (a *Aggregator) MarkRead(id string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	for i := range a.records {
		if a.records[i].ID == id {
			a.records[i].Read = true
			return
		}
	}
}

// ClearByCategoryAndTask marks read every record matching both the category
// and the task. Used when the user opens a task's detail view.
func (a *Aggregator) ClearByCategoryAndTask(category, taskID string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	for i := range a.records {
		if a.records[i].TaskID == taskID && a.records[i].Category() == category {
			a.records[i].Read = true
		}
	}
}

// CountUnread returns the number of unread records matching pred.
func (a *Aggregator) CountUnread(pred func(models.Notification) bool) int {
	a.mu.Lock()
	defer a.mu.Unlock()
	count := 0
	for _, r := range a.records {
		if !r.Read && pred(r) {
			count++
		}
	}
	return count
}

// All returns a copy of the current records, most recent first.
func (a *Aggregator) All() []models.Notification {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]models.Notification, len(a.records))
	copy(out, a.records)
	return out
}

// Reset drops all records. Called on session teardown.
func (a *Aggregator) Reset() {
	a.mu.Lock()
	a.records = nil
	a.seen = make(map[string]bool)
	a.mu.Unlock()
}

// Package eventlog layers an in-memory snapshot over the remote event store
// so trace queries do not amplify reads against the rate-limited Sheets API.
// Reads may lag writes by the refresh interval; appends write through.
package eventlog

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/mamadbah2/wiptrace/internal/domain/models"
	"github.com/mamadbah2/wiptrace/internal/repository/sheets"
)

// Log is the query contract consumed by the scan service and trace queries.
type Log interface {
	EventsByOrder(ctx context.Context, order string) ([]models.Event, error)
	EventsByBarcode(ctx context.Context, code string) ([]models.Event, error)
	Append(ctx context.Context, event models.Event) error
	Refresh(ctx context.Context) error
}

// Cache is a mutex-guarded snapshot of the full event log. A single writer
// mutates the snapshot; concurrent readers get consistent copies.
type Cache struct {
	store  sheets.Repository
	logger *zap.Logger

	mu     sync.RWMutex
	events []models.Event
	loaded bool
}

// NewCache wraps the given store. The snapshot is loaded lazily on first
// read, then kept fresh by the scheduler.
func NewCache(store sheets.Repository, logger *zap.Logger) *Cache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Cache{store: store, logger: logger}
}

// Refresh replaces the snapshot with the store's current contents.
func (c *Cache) Refresh(ctx context.Context) error {
	events, err := c.store.ReadEvents(ctx)
	if err != nil {
		return fmt.Errorf("refresh event snapshot: %w", err)
	}

	c.mu.Lock()
	c.events = events
	c.loaded = true
	c.mu.Unlock()

	c.logger.Debug("event snapshot refreshed", zap.Int("count", len(events)))
	return nil
}

// Append writes the event through to the store, then into the snapshot. A
// failed remote write never leaves a phantom event in the cache.
func (c *Cache) Append(ctx context.Context, event models.Event) error {
	if err := c.store.AppendEvent(ctx, event); err != nil {
		return err
	}

	c.mu.Lock()
	if c.loaded {
		c.events = append(c.events, event)
	}
	c.mu.Unlock()
	return nil
}

// EventsByOrder returns every event recorded for the order, in log order.
func (c *Cache) EventsByOrder(ctx context.Context, order string) ([]models.Event, error) {
	events, err := c.snapshot(ctx)
	if err != nil {
		return nil, err
	}

	order = strings.ToUpper(strings.TrimSpace(order))
	matched := make([]models.Event, 0)
	for _, ev := range events {
		if strings.ToUpper(strings.TrimSpace(ev.Order)) == order {
			matched = append(matched, ev)
		}
	}
	return matched, nil
}

// EventsByBarcode returns every event whose scanned or minted barcode matches
// code. URL-embedded codes ("https://host/b=<code>") match their bare form.
func (c *Cache) EventsByBarcode(ctx context.Context, code string) ([]models.Event, error) {
	events, err := c.snapshot(ctx)
	if err != nil {
		return nil, err
	}

	code = normalizeBarcode(code)
	matched := make([]models.Event, 0)
	for _, ev := range events {
		if normalizeBarcode(ev.ScannedBarcode) == code || normalizeBarcode(ev.NewBarcode) == code {
			matched = append(matched, ev)
		}
	}
	return matched, nil
}

// snapshot returns a stable copy of the cached events, loading them on first
// use.
func (c *Cache) snapshot(ctx context.Context) ([]models.Event, error) {
	c.mu.RLock()
	if c.loaded {
		events := make([]models.Event, len(c.events))
		copy(events, c.events)
		c.mu.RUnlock()
		return events, nil
	}
	c.mu.RUnlock()

	if err := c.Refresh(ctx); err != nil {
		return nil, err
	}
	return c.snapshot(ctx)
}

func normalizeBarcode(code string) string {
	if i := strings.LastIndex(code, "/b="); i >= 0 {
		code = code[i+3:]
	}
	return strings.TrimSpace(code)
}

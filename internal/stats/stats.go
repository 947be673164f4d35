// Package stats counts page views and block clicks in memory and
// flushes them to storage on a schedule, so the public read path
// never writes to the database inline.
package stats

import (
	"context"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"biolink/internal/store"
)

// Collector buffers counter increments between flushes.
type Collector struct {
	mu     sync.Mutex
	buf    map[store.StatKey]store.StatDelta
	stats  *store.StatsStore
	cron   *cron.Cron
	logger *zap.Logger

	now func() time.Time
}

func NewCollector(stats *store.StatsStore, logger *zap.Logger) *Collector {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Collector{
		buf:    make(map[store.StatKey]store.StatDelta),
		stats:  stats,
		logger: logger,
		now:    time.Now,
	}
}

// View records one page view.
func (c *Collector) View(pageID string) {
	c.add(store.StatKey{PageID: pageID, Day: store.DayKey(c.now())}, store.StatDelta{Views: 1})
}

// Click records one click on a block.
func (c *Collector) Click(pageID, blockID string) {
	key := store.StatKey{PageID: pageID, BlockID: blockID, Day: store.DayKey(c.now())}
	c.add(key, store.StatDelta{Clicks: 1})
}

func (c *Collector) add(key store.StatKey, d store.StatDelta) {
	c.mu.Lock()
	defer c.mu.Unlock()
	cur := c.buf[key]
	cur.Views += d.Views
	cur.Clicks += d.Clicks
	c.buf[key] = cur
}

// Flush writes the buffered counters to storage. On failure the
// buffer is restored so no counts are lost.
func (c *Collector) Flush(ctx context.Context) error {
	c.mu.Lock()
	if len(c.buf) == 0 {
		c.mu.Unlock()
		return nil
	}
	pending := c.buf
	c.buf = make(map[store.StatKey]store.StatDelta)
	c.mu.Unlock()

	if err := c.stats.Add(ctx, pending); err != nil {
		c.mu.Lock()
		for k, d := range pending {
			cur := c.buf[k]
			cur.Views += d.Views
			cur.Clicks += d.Clicks
			c.buf[k] = cur
		}
		c.mu.Unlock()
		c.logger.Warn("stats flush failed", zap.Int("buckets", len(pending)), zap.Error(err))
		return err
	}

	c.logger.Debug("stats flushed", zap.Int("buckets", len(pending)))
	return nil
}

// Start schedules a periodic flush. The argument is a cron expression,
// e.g. "@every 30s".
func (c *Collector) Start(spec string) error {
	c.cron = cron.New()
	_, err := c.cron.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := c.Flush(ctx); err != nil {
			// Flush already logged; counters stay buffered for the
			// next tick.
			return
		}
	})
	if err != nil {
		return err
	}
	c.cron.Start()
	return nil
}

// Stop halts the schedule and flushes whatever is left.
func (c *Collector) Stop(ctx context.Context) error {
	if c.cron != nil {
		<-c.cron.Stop().Done()
	}
	return c.Flush(ctx)
}

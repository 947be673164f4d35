package store

import (
	"context"
	"fmt"
	"time"

	"biolink/internal/db"
)

type StatsStore struct {
	db *db.DB
}

// StatKey identifies one counter bucket: a page, optionally a block
// within it, on one day. BlockID "" is the page-level view counter.
type StatKey struct {
	PageID  string
	BlockID string
	Day     string // YYYY-MM-DD
}

// StatDelta is the increment a flush applies to one bucket.
type StatDelta struct {
	Views  int64
	Clicks int64
}

// DayKey formats t into the bucket day string.
func DayKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// Add upserts counter increments in one transaction.
func (s *StatsStore) Add(ctx context.Context, deltas map[StatKey]StatDelta) error {
	if len(deltas) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin stats flush: %w", err)
	}
	defer tx.Rollback()

	upsert := s.db.Rebind(`
		INSERT INTO stats (page_id, block_id, day, views, clicks)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (page_id, block_id, day)
		DO UPDATE SET views = stats.views + excluded.views,
			clicks = stats.clicks + excluded.clicks`)
	for key, d := range deltas {
		if _, err := tx.ExecContext(ctx, upsert, key.PageID, key.BlockID, key.Day, d.Views, d.Clicks); err != nil {
			return fmt.Errorf("upsert stats for %s/%s: %w", key.PageID, key.BlockID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit stats flush: %w", err)
	}
	return nil
}

// DaySummary is one day of counters for a page.
type DaySummary struct {
	Day    string `json:"day"`
	Views  int64  `json:"views"`
	Clicks int64  `json:"clicks"`
}

// Summary returns per-day totals for a page over the last `days`
// days, newest first.
func (s *StatsStore) Summary(ctx context.Context, pageID string, days int) ([]DaySummary, error) {
	since := DayKey(time.Now().AddDate(0, 0, -days))
	rows, err := s.db.QueryContext(ctx, s.db.Rebind(`
		SELECT day, SUM(views), SUM(clicks) FROM stats
		WHERE page_id = ? AND day >= ?
		GROUP BY day ORDER BY day DESC`), pageID, since)
	if err != nil {
		return nil, fmt.Errorf("stats summary: %w", err)
	}
	defer rows.Close()

	var out []DaySummary
	for rows.Next() {
		var d DaySummary
		if err := rows.Scan(&d.Day, &d.Views, &d.Clicks); err != nil {
			return nil, fmt.Errorf("scan stats summary: %w", err)
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate stats summary: %w", err)
	}
	return out, nil
}

// BlockClicks returns total clicks per block for a page.
func (s *StatsStore) BlockClicks(ctx context.Context, pageID string) (map[string]int64, error) {
	rows, err := s.db.QueryContext(ctx, s.db.Rebind(`
		SELECT block_id, SUM(clicks) FROM stats
		WHERE page_id = ? AND block_id != ''
		GROUP BY block_id`), pageID)
	if err != nil {
		return nil, fmt.Errorf("block clicks: %w", err)
	}
	defer rows.Close()

	out := make(map[string]int64)
	for rows.Next() {
		var id string
		var clicks int64
		if err := rows.Scan(&id, &clicks); err != nil {
			return nil, fmt.Errorf("scan block clicks: %w", err)
		}
		out[id] = clicks
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate block clicks: %w", err)
	}
	return out, nil
}

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"biolink/internal/content"
	"biolink/internal/db"
)

type BlockStore struct {
	db *db.DB
}

// ListByPage returns a page's blocks ordered by position.
func (s *BlockStore) ListByPage(ctx context.Context, pageID string) ([]*content.Block, error) {
	rows, err := s.db.QueryContext(ctx, s.db.Rebind(`
		SELECT id, type, title, description, url, icon, images_json, price,
			currency, languages_json, parent_id, anchor, visible, position
		FROM blocks WHERE page_id = ?
		ORDER BY position`), pageID)
	if err != nil {
		return nil, fmt.Errorf("list blocks: %w", err)
	}
	defer rows.Close()

	var out []*content.Block
	for rows.Next() {
		b, err := scanBlock(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate blocks: %w", err)
	}
	return out, nil
}

// ReplaceAll swaps a page's whole block set in one transaction:
// delete everything, reinsert the given blocks. The save path always
// sends the full list, so partial updates never exist.
func (s *BlockStore) ReplaceAll(ctx context.Context, pageID string, blocks []*content.Block) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin replace blocks: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, s.db.Rebind(`DELETE FROM blocks WHERE page_id = ?`), pageID); err != nil {
		return fmt.Errorf("clear blocks: %w", err)
	}

	now := time.Now().UTC()
	for _, b := range blocks {
		images, err := json.Marshal(b.Images)
		if err != nil {
			return fmt.Errorf("marshal images for %s: %w", b.ID, err)
		}
		languages, err := json.Marshal(b.Languages)
		if err != nil {
			return fmt.Errorf("marshal languages for %s: %w", b.ID, err)
		}
		_, err = tx.ExecContext(ctx, s.db.Rebind(`
			INSERT INTO blocks (id, page_id, type, title, description, url,
				icon, images_json, price, currency, languages_json, parent_id,
				anchor, visible, position, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`),
			b.ID, pageID, string(b.Type), b.Title, b.Description, b.URL,
			b.Icon, string(images), b.Price, b.Currency, string(languages),
			b.ParentID, b.Anchor, b.Visible, b.Order, now)
		if err != nil {
			return fmt.Errorf("insert block %s: %w", b.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit replace blocks: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBlock(row rowScanner) (*content.Block, error) {
	var b content.Block
	var typ, images, languages string
	err := row.Scan(&b.ID, &typ, &b.Title, &b.Description, &b.URL, &b.Icon,
		&images, &b.Price, &b.Currency, &languages, &b.ParentID,
		&b.Anchor, &b.Visible, &b.Order)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan block: %w", err)
	}
	b.Type = content.Type(typ)
	if images != "" {
		if err := json.Unmarshal([]byte(images), &b.Images); err != nil {
			return nil, fmt.Errorf("unmarshal images: %w", err)
		}
	}
	if languages != "" && languages != "{}" {
		if err := json.Unmarshal([]byte(languages), &b.Languages); err != nil {
			return nil, fmt.Errorf("unmarshal languages: %w", err)
		}
	}
	return &b, nil
}

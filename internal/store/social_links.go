package store

import (
	"context"
	"fmt"

	"biolink/internal/content"
	"biolink/internal/db"
)

type SocialLinkStore struct {
	db *db.DB
}

// ListByPage returns a page's social links in display order.
func (s *SocialLinkStore) ListByPage(ctx context.Context, pageID string) ([]content.SocialLink, error) {
	rows, err := s.db.QueryContext(ctx, s.db.Rebind(`
		SELECT platform, url FROM social_links
		WHERE page_id = ? ORDER BY position`), pageID)
	if err != nil {
		return nil, fmt.Errorf("list social links: %w", err)
	}
	defer rows.Close()

	var out []content.SocialLink
	for rows.Next() {
		var l content.SocialLink
		var platform string
		if err := rows.Scan(&platform, &l.URL); err != nil {
			return nil, fmt.Errorf("scan social link: %w", err)
		}
		l.Platform = content.Platform(platform)
		out = append(out, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate social links: %w", err)
	}
	return out, nil
}

// ReplaceAll swaps a page's social link set in one transaction, same
// shape as the block save.
func (s *SocialLinkStore) ReplaceAll(ctx context.Context, pageID string, links []content.SocialLink) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin replace social links: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, s.db.Rebind(`DELETE FROM social_links WHERE page_id = ?`), pageID); err != nil {
		return fmt.Errorf("clear social links: %w", err)
	}
	for i, l := range links {
		_, err := tx.ExecContext(ctx, s.db.Rebind(`
			INSERT INTO social_links (page_id, platform, url, position)
			VALUES (?, ?, ?, ?)`),
			pageID, string(l.Platform), l.URL, i)
		if err != nil {
			return fmt.Errorf("insert social link %s: %w", l.Platform, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit replace social links: %w", err)
	}
	return nil
}

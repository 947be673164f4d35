package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"biolink/internal/content"
	"biolink/internal/db"
)

type PageStore struct {
	db *db.DB
}

const pageColumns = `id, user_id, display_name, bio, avatar_json, alignment,
	brand_color, background_color, theme, language, footer_text,
	multi_language, live`

// Create inserts a page record.
func (s *PageStore) Create(ctx context.Context, p *content.Page) error {
	avatar, err := json.Marshal(p.AvatarImages)
	if err != nil {
		return fmt.Errorf("marshal avatar: %w", err)
	}
	now := time.Now().UTC()
	_, err = s.db.ExecContext(ctx, s.db.Rebind(`
		INSERT INTO pages (`+pageColumns+`, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`),
		p.ID, p.UserID, p.DisplayName, p.Bio, string(avatar), string(p.Alignment),
		p.BrandColor, p.BackgroundColor, p.Theme, p.Language, p.FooterText,
		p.MultiLanguage, p.Live, now, now)
	if err != nil {
		return fmt.Errorf("create page: %w", err)
	}
	return nil
}

// Update overwrites every editable page column.
func (s *PageStore) Update(ctx context.Context, p *content.Page) error {
	avatar, err := json.Marshal(p.AvatarImages)
	if err != nil {
		return fmt.Errorf("marshal avatar: %w", err)
	}
	res, err := s.db.ExecContext(ctx, s.db.Rebind(`
		UPDATE pages SET display_name = ?, bio = ?, avatar_json = ?,
			alignment = ?, brand_color = ?, background_color = ?, theme = ?,
			language = ?, footer_text = ?, multi_language = ?, live = ?,
			updated_at = ?
		WHERE id = ?`),
		p.DisplayName, p.Bio, string(avatar), string(p.Alignment),
		p.BrandColor, p.BackgroundColor, p.Theme, p.Language, p.FooterText,
		p.MultiLanguage, p.Live, time.Now().UTC(), p.ID)
	if err != nil {
		return fmt.Errorf("update page: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update page: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// ByID fetches a page by id.
func (s *PageStore) ByID(ctx context.Context, id string) (*content.Page, error) {
	return scanPage(s.db.QueryRowContext(ctx, s.db.Rebind(`
		SELECT `+pageColumns+` FROM pages WHERE id = ?`), id))
}

// ByUserID fetches the page owned by a user.
func (s *PageStore) ByUserID(ctx context.Context, userID string) (*content.Page, error) {
	return scanPage(s.db.QueryRowContext(ctx, s.db.Rebind(`
		SELECT `+pageColumns+` FROM pages WHERE user_id = ?`), userID))
}

// ByUsername fetches a page through its owner's username. This is the
// public read path.
func (s *PageStore) ByUsername(ctx context.Context, username string) (*content.Page, error) {
	return scanPage(s.db.QueryRowContext(ctx, s.db.Rebind(`
		SELECT p.id, p.user_id, p.display_name, p.bio, p.avatar_json,
			p.alignment, p.brand_color, p.background_color, p.theme,
			p.language, p.footer_text, p.multi_language, p.live
		FROM pages p JOIN users u ON u.id = p.user_id
		WHERE u.username = ?`), username))
}

func scanPage(row *sql.Row) (*content.Page, error) {
	var p content.Page
	var avatar, alignment string
	err := row.Scan(&p.ID, &p.UserID, &p.DisplayName, &p.Bio, &avatar,
		&alignment, &p.BrandColor, &p.BackgroundColor, &p.Theme,
		&p.Language, &p.FooterText, &p.MultiLanguage, &p.Live)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan page: %w", err)
	}
	p.Alignment = content.Alignment(alignment)
	if avatar != "" {
		if err := json.Unmarshal([]byte(avatar), &p.AvatarImages); err != nil {
			return nil, fmt.Errorf("unmarshal avatar: %w", err)
		}
	}
	return &p, nil
}

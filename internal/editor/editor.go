// Package editor coordinates one user's editing session: it loads the
// persisted page into a draft, translates form submissions and canvas
// gestures into draft edits, and renders the live preview.
package editor

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"biolink/internal/content"
	"biolink/internal/draft"
	"biolink/internal/render"
	"biolink/internal/theme"
)

// Loader fetches the persisted state a session hydrates from.
type Loader interface {
	PageByUser(ctx context.Context, userID string) (*content.Page, error)
	Blocks(ctx context.Context, pageID string) ([]*content.Block, error)
	SocialLinks(ctx context.Context, pageID string) ([]content.SocialLink, error)
}

// Notifier is told whenever the draft changed, so preview clients can
// refetch. It must not block.
type Notifier interface {
	DraftChanged(pageID string)
}

// NotifierFunc adapts a function to the Notifier interface.
type NotifierFunc func(pageID string)

func (f NotifierFunc) DraftChanged(pageID string) { f(pageID) }

// FormInput is one submission of the block form. Zero values mean the
// field was left empty.
type FormInput struct {
	Title       string             `json:"title"`
	Description string             `json:"description"`
	URL         string             `json:"url"`
	Icon        string             `json:"icon"`
	Price       float64            `json:"price"`
	Currency    string             `json:"currency"`
	Images      []content.ImageRef `json:"images"`
	ParentID    string             `json:"parent_id"`
	Anchor      bool               `json:"anchor"`
}

// UIState mirrors what the editing surface shows: which block is
// selected and whether the block form is open, and for which variant.
type UIState struct {
	SelectedBlockID string       `json:"selected_block_id,omitempty"`
	FormOpen        bool         `json:"form_open"`
	FormType        content.Type `json:"form_type,omitempty"`
}

// Session is one user's editing session over one page.
type Session struct {
	mu     sync.Mutex
	pageID string
	userID string
	draft  *draft.Draft
	ui     UIState

	notifier Notifier
	logger   *zap.Logger
}

// Start loads the user's page and opens a session on it.
func Start(ctx context.Context, userID string, loader Loader, saver draft.Saver, notifier Notifier, logger *zap.Logger) (*Session, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if notifier == nil {
		notifier = NotifierFunc(func(string) {})
	}

	page, err := loader.PageByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load page: %w", err)
	}
	blocks, err := loader.Blocks(ctx, page.ID)
	if err != nil {
		return nil, fmt.Errorf("load blocks: %w", err)
	}
	socials, err := loader.SocialLinks(ctx, page.ID)
	if err != nil {
		return nil, fmt.Errorf("load social links: %w", err)
	}

	d := draft.New(saver, logger)
	d.Hydrate(page, blocks, socials)
	logger.Info("editing session started",
		zap.String("user_id", userID),
		zap.String("page_id", page.ID),
		zap.Int("blocks", len(blocks)))

	return &Session{
		pageID:   page.ID,
		userID:   userID,
		draft:    d,
		notifier: notifier,
		logger:   logger,
	}, nil
}

// PageID returns the id of the page under edit.
func (s *Session) PageID() string { return s.pageID }

// Dirty reports whether the session has unsaved edits.
func (s *Session) Dirty() bool { return s.draft.Dirty() }

// State reports the draft save state.
func (s *Session) State() draft.State { return s.draft.State() }

// UI returns the current surface state.
func (s *Session) UI() UIState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ui
}

// OpenForm opens the block form for a variant. Unknown variants are
// rejected before any UI state changes.
func (s *Session) OpenForm(t content.Type) error {
	if _, err := content.FieldsFor(t); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ui.FormOpen = true
	s.ui.FormType = t
	s.ui.SelectedBlockID = ""
	return nil
}

// SelectBlock opens the form prefilled for an existing block.
func (s *Session) SelectBlock(id string) error {
	l, err := s.draft.Blocks()
	if err != nil {
		return err
	}
	b, ok := l.Get(id)
	if !ok {
		return fmt.Errorf("select %q: %w", id, content.ErrNotFound)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ui.FormOpen = true
	s.ui.FormType = b.Type
	s.ui.SelectedBlockID = id
	return nil
}

// CloseForm dismisses the block form without touching the draft.
func (s *Session) CloseForm() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ui = UIState{}
}

// SubmitForm turns a form submission into a block. A fresh block gets
// the variant's defaults before the input is applied; validation
// failures leave the draft untouched and keep the form open.
func (s *Session) SubmitForm(t content.Type, in FormInput) (*content.Block, error) {
	s.mu.Lock()
	editing := s.ui.SelectedBlockID
	s.mu.Unlock()

	var b *content.Block
	if editing != "" {
		l, err := s.draft.Blocks()
		if err != nil {
			return nil, err
		}
		existing, ok := l.Get(editing)
		if !ok {
			return nil, fmt.Errorf("edit %q: %w", editing, content.ErrNotFound)
		}
		b = existing.Clone()
	} else {
		b = content.New(t)
	}
	applyInput(b, in)

	if err := b.Validate(); err != nil {
		return nil, err
	}

	if editing != "" {
		if err := s.draft.UpdateBlock(b); err != nil {
			return nil, err
		}
	} else {
		if err := s.draft.InsertBlock(b); err != nil {
			return nil, err
		}
	}

	s.mu.Lock()
	s.ui = UIState{}
	s.mu.Unlock()
	s.changed()
	return b, nil
}

func applyInput(b *content.Block, in FormInput) {
	b.Title = in.Title
	b.Description = in.Description
	b.URL = in.URL
	b.Icon = in.Icon
	if b.Icon == "" {
		b.Icon = content.DefaultIcon(b.Type)
	}
	b.Price = in.Price
	b.Currency = in.Currency
	b.Images = in.Images
	b.ParentID = in.ParentID
	b.Anchor = in.Anchor
}

// MoveBlock handles the drag gesture: drop the block at a position in
// the visible sequence.
func (s *Session) MoveBlock(id string, target int) error {
	if err := s.draft.ReorderBlock(id, target); err != nil {
		return err
	}
	s.changed()
	return nil
}

// ToggleBlock flips a block's visibility.
func (s *Session) ToggleBlock(id string) error {
	if err := s.draft.ToggleBlockVisible(id); err != nil {
		return err
	}
	s.changed()
	return nil
}

// DeleteBlock removes a block from the draft.
func (s *Session) DeleteBlock(id string) error {
	if err := s.draft.RemoveBlock(id); err != nil {
		return err
	}
	s.mu.Lock()
	if s.ui.SelectedBlockID == id {
		s.ui = UIState{}
	}
	s.mu.Unlock()
	s.changed()
	return nil
}

// AssignToCategory nests a block under a category block, or clears
// the nesting when parentID is empty.
func (s *Session) AssignToCategory(id, parentID string) error {
	if err := s.draft.SetBlockParent(id, parentID); err != nil {
		return err
	}
	s.changed()
	return nil
}

// SetTheme switches the page theme. Unknown themes are rejected here
// so the stored value never needs the render-time fallback.
func (s *Session) SetTheme(id theme.ID) error {
	if !id.Valid() {
		return &content.ValidationError{Field: "theme", Message: "unknown theme " + string(id)}
	}
	return s.updatePage(func(p *content.Page) { p.Theme = string(id) })
}

// UpdatePage applies an edit to the page record, validates the result
// and keeps the draft unchanged if validation fails.
func (s *Session) UpdatePage(apply func(*content.Page)) error {
	return s.updatePage(apply)
}

func (s *Session) updatePage(apply func(*content.Page)) error {
	p, err := s.draft.Page()
	if err != nil {
		return err
	}
	apply(p)
	if err := p.Validate(); err != nil {
		return err
	}
	if err := s.draft.UpdatePage(func(dst *content.Page) { *dst = *p }); err != nil {
		return err
	}
	s.changed()
	return nil
}

// SetSocialLinks replaces the page's social link set.
func (s *Session) SetSocialLinks(links []content.SocialLink) error {
	for _, l := range links {
		if !l.Platform.Valid() {
			return &content.ValidationError{Field: "platform", Message: "unknown platform " + string(l.Platform)}
		}
	}
	if err := s.draft.SetSocialLinks(links); err != nil {
		return err
	}
	s.changed()
	return nil
}

// Save persists the draft.
func (s *Session) Save(ctx context.Context) error {
	return s.draft.Save(ctx)
}

// Preview renders the draft in edit mode for the session's canvas.
func (s *Session) Preview() (*render.Document, error) {
	return s.renderDraft(render.ModeEdit)
}

// PublicPreview renders the draft the way visitors would see it.
func (s *Session) PublicPreview() (*render.Document, error) {
	return s.renderDraft(render.ModePublic)
}

func (s *Session) renderDraft(mode render.Mode) (*render.Document, error) {
	p, err := s.draft.Page()
	if err != nil {
		return nil, err
	}
	l, err := s.draft.Blocks()
	if err != nil {
		return nil, err
	}
	socials, err := s.draft.SocialLinks()
	if err != nil {
		return nil, err
	}
	return render.Page(p, l, socials, mode), nil
}

func (s *Session) changed() {
	s.notifier.DraftChanged(s.pageID)
}

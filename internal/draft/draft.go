// Package draft holds the editor's working copy of a page. All edits
// land here first; nothing touches persistence until Save pushes the
// whole draft through a Saver.
package draft

import (
	"context"
	"errors"
	"reflect"
	"sync"

	"go.uber.org/zap"

	"biolink/internal/content"
)

// State of the draft relative to persistence.
type State string

const (
	StateClean  State = "clean"
	StateDirty  State = "dirty"
	StateSaving State = "saving"
)

var (
	ErrNotHydrated = errors.New("draft: not hydrated")
)

// Saver persists a draft snapshot. The page record and the block list
// are pushed as two calls; the block call replaces the page's whole
// block set atomically.
type Saver interface {
	SavePage(ctx context.Context, page *content.Page) error
	ReplaceBlocks(ctx context.Context, pageID string, blocks []*content.Block) error
	ReplaceSocialLinks(ctx context.Context, pageID string, links []content.SocialLink) error
}

// snapshot is what a save run sends, kept to decide whether the draft
// changed while the save was in flight.
type snapshot struct {
	page    *content.Page
	blocks  []*content.Block
	socials []content.SocialLink
}

// Draft is the single working copy for one editing session. Edits are
// retained across failed and concurrent saves; only a save whose
// snapshot still matches the draft settles it back to clean.
type Draft struct {
	mu       sync.Mutex
	page     *content.Page
	list     *content.List
	socials  []content.SocialLink
	state    State
	pending  bool
	hydrated bool

	saver  Saver
	logger *zap.Logger
}

func New(saver Saver, logger *zap.Logger) *Draft {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Draft{state: StateClean, saver: saver, logger: logger}
}

// Hydrate loads persisted state into the draft and resets it to
// clean. It is the session's load path and discards any prior draft.
func (d *Draft) Hydrate(page *content.Page, blocks []*content.Block, socials []content.SocialLink) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.page = page.Clone()
	d.list = content.NewList(blocks).Clone()
	d.socials = cloneSocials(socials)
	d.state = StateClean
	d.pending = false
	d.hydrated = true
}

// State reports where the draft stands relative to persistence.
func (d *Draft) State() State {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}

// Dirty reports whether unsaved edits exist.
func (d *Draft) Dirty() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state != StateClean
}

// Page returns a copy of the draft page record.
func (d *Draft) Page() (*content.Page, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.hydrated {
		return nil, ErrNotHydrated
	}
	return d.page.Clone(), nil
}

// Blocks returns a copy of the draft block list.
func (d *Draft) Blocks() (*content.List, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.hydrated {
		return nil, ErrNotHydrated
	}
	return d.list.Clone(), nil
}

// SocialLinks returns a copy of the draft social link set.
func (d *Draft) SocialLinks() ([]content.SocialLink, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.hydrated {
		return nil, ErrNotHydrated
	}
	return cloneSocials(d.socials), nil
}

// UpdatePage applies an edit to the page record.
func (d *Draft) UpdatePage(apply func(*content.Page)) error {
	return d.mutate(func() error {
		apply(d.page)
		return nil
	})
}

// SetSocialLinks replaces the draft's social link set.
func (d *Draft) SetSocialLinks(links []content.SocialLink) error {
	return d.mutate(func() error {
		d.socials = cloneSocials(links)
		return nil
	})
}

// InsertBlock appends a block to the draft list.
func (d *Draft) InsertBlock(b *content.Block) error {
	return d.mutate(func() error {
		return d.list.Insert(b.Clone())
	})
}

// UpdateBlock replaces the stored block with the same id.
func (d *Draft) UpdateBlock(b *content.Block) error {
	return d.mutate(func() error {
		return d.list.Update(b.Clone())
	})
}

// RemoveBlock deletes a block from the draft list.
func (d *Draft) RemoveBlock(id string) error {
	return d.mutate(func() error {
		return d.list.Remove(id)
	})
}

// ReorderBlock moves a block to a target position in the visible
// sequence.
func (d *Draft) ReorderBlock(id string, target int) error {
	return d.mutate(func() error {
		return d.list.Reorder(id, target)
	})
}

// ToggleBlockVisible flips a block's visibility.
func (d *Draft) ToggleBlockVisible(id string) error {
	return d.mutate(func() error {
		return d.list.ToggleVisible(id)
	})
}

// SetBlockParent reassigns a block to a category.
func (d *Draft) SetBlockParent(id, parentID string) error {
	return d.mutate(func() error {
		return d.list.SetParent(id, parentID)
	})
}

// mutate runs an edit under the lock and marks the draft dirty when
// it succeeds. Edits during an in-flight save are legal and keep the
// draft dirty after that save lands.
func (d *Draft) mutate(edit func() error) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.hydrated {
		return ErrNotHydrated
	}
	if err := edit(); err != nil {
		return err
	}
	if d.state != StateSaving {
		d.state = StateDirty
	}
	return nil
}

// Save pushes the current draft through the saver. A save requested
// while another is in flight is coalesced: the in-flight run picks up
// the newest state in a follow-up push, and this call returns
// immediately. On failure the draft stays dirty with every edit
// intact.
func (d *Draft) Save(ctx context.Context) error {
	d.mu.Lock()
	if !d.hydrated {
		d.mu.Unlock()
		return ErrNotHydrated
	}
	if d.state == StateSaving {
		d.pending = true
		d.mu.Unlock()
		return nil
	}
	if d.state == StateClean {
		d.mu.Unlock()
		return nil
	}

	for {
		snap := snapshot{
			page:    d.page.Clone(),
			blocks:  d.list.Clone().Blocks(),
			socials: cloneSocials(d.socials),
		}
		d.state = StateSaving
		d.pending = false
		d.mu.Unlock()

		err := d.push(ctx, snap)

		d.mu.Lock()
		if err != nil {
			d.state = StateDirty
			d.mu.Unlock()
			d.logger.Warn("draft save failed", zap.String("page_id", snap.page.ID), zap.Error(err))
			return err
		}
		if d.pending || !d.matches(snap) {
			// Edits arrived mid-flight; push once more.
			if d.pending {
				continue
			}
			d.state = StateDirty
			d.mu.Unlock()
			return nil
		}
		d.state = StateClean
		d.mu.Unlock()
		d.logger.Debug("draft saved", zap.String("page_id", snap.page.ID), zap.Int("blocks", len(snap.blocks)))
		return nil
	}
}

func (d *Draft) push(ctx context.Context, snap snapshot) error {
	if err := d.saver.SavePage(ctx, snap.page); err != nil {
		return err
	}
	if err := d.saver.ReplaceBlocks(ctx, snap.page.ID, snap.blocks); err != nil {
		return err
	}
	return d.saver.ReplaceSocialLinks(ctx, snap.page.ID, snap.socials)
}

// matches reports whether the draft still equals a sent snapshot.
// Caller holds the lock.
func (d *Draft) matches(snap snapshot) bool {
	return reflect.DeepEqual(d.page, snap.page) &&
		reflect.DeepEqual(d.list.Blocks(), snap.blocks) &&
		reflect.DeepEqual(d.socials, snap.socials)
}

func cloneSocials(in []content.SocialLink) []content.SocialLink {
	if in == nil {
		return nil
	}
	out := make([]content.SocialLink, len(in))
	copy(out, in)
	return out
}

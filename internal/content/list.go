package content

import (
	"errors"
	"fmt"
	"sort"
)

// ErrNotFound is returned when a list operation names a block id that
// is not in the list. Callers treat it as a no-op report, never as a
// render-path panic.
var ErrNotFound = errors.New("block not found")

// List is the ordered block collection for one page. Iteration order
// is by ascending Order, ties broken by insertion sequence. Order
// values may have gaps (remove never renumbers); Reorder renumbers
// the visible sequence densely so values never drift.
type List struct {
	items []*Block
}

// NewList builds a list from existing blocks, sorting them by Order
// while keeping the given sequence for equal orders.
func NewList(blocks []*Block) *List {
	l := &List{items: make([]*Block, len(blocks))}
	copy(l.items, blocks)
	l.sort()
	return l
}

func (l *List) sort() {
	sort.SliceStable(l.items, func(i, j int) bool {
		return l.items[i].Order < l.items[j].Order
	})
}

// Len returns the number of blocks, hidden ones included.
func (l *List) Len() int { return len(l.items) }

// Blocks returns all blocks in display order. The slice is a copy;
// the blocks are shared.
func (l *List) Blocks() []*Block {
	out := make([]*Block, len(l.items))
	copy(out, l.items)
	return out
}

// Visible returns the visible blocks in display order.
func (l *List) Visible() []*Block {
	var out []*Block
	for _, b := range l.items {
		if b.Visible {
			out = append(out, b)
		}
	}
	return out
}

// Get returns the block with the given id.
func (l *List) Get(id string) (*Block, bool) {
	for _, b := range l.items {
		if b.ID == id {
			return b, true
		}
	}
	return nil, false
}

// Insert appends the block at the end of the display order. A
// non-empty ParentID must name a block already in the list.
func (l *List) Insert(b *Block) error {
	if err := l.validateParent(b.ID, b.ParentID); err != nil {
		return err
	}
	max := -1
	for _, it := range l.items {
		if it.Order > max {
			max = it.Order
		}
	}
	b.Order = max + 1
	l.items = append(l.items, b)
	return nil
}

// Remove deletes the block with the given id. Remaining order values
// are left untouched; gaps are legal.
func (l *List) Remove(id string) error {
	for i, b := range l.items {
		if b.ID == id {
			l.items = append(l.items[:i], l.items[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("remove %q: %w", id, ErrNotFound)
}

// Update replaces the stored block with the same id, preserving its
// order, and re-sorts in case the caller changed Order deliberately.
// A changed ParentID passes the same checks SetParent applies, so
// updates cannot dangle a parent or close a cycle.
func (l *List) Update(b *Block) error {
	for i, it := range l.items {
		if it.ID == b.ID {
			if b.ParentID != it.ParentID {
				if err := l.validateParent(b.ID, b.ParentID); err != nil {
					return err
				}
			}
			l.items[i] = b
			l.sort()
			return nil
		}
	}
	return fmt.Errorf("update %q: %w", b.ID, ErrNotFound)
}

// Reorder moves the block to targetIndex within the visible,
// order-sorted sequence and renumbers that whole sequence to dense
// increasing integers. targetIndex is clamped to the sequence bounds.
// The move is rejected if the current parent links contain a cycle,
// so a corrupted hierarchy is never silently renumbered.
func (l *List) Reorder(id string, targetIndex int) error {
	if err := l.checkAcyclic(); err != nil {
		return err
	}
	visible := l.Visible()
	from := -1
	for i, b := range visible {
		if b.ID == id {
			from = i
			break
		}
	}
	if from == -1 {
		return fmt.Errorf("reorder %q: %w", id, ErrNotFound)
	}
	if targetIndex < 0 {
		targetIndex = 0
	}
	if targetIndex > len(visible)-1 {
		targetIndex = len(visible) - 1
	}

	moved := visible[from]
	visible = append(visible[:from], visible[from+1:]...)
	visible = append(visible[:targetIndex], append([]*Block{moved}, visible[targetIndex:]...)...)

	for i, b := range visible {
		b.Order = i
	}
	l.sort()
	return nil
}

// ToggleVisible flips the visibility flag without touching order.
func (l *List) ToggleVisible(id string) error {
	b, ok := l.Get(id)
	if !ok {
		return fmt.Errorf("toggle %q: %w", id, ErrNotFound)
	}
	b.Visible = !b.Visible
	return nil
}

// SetParent nests the block under parentID (empty clears the
// nesting). The parent must exist in this list, must not be the block
// itself and must not create a cycle through any ancestor chain.
func (l *List) SetParent(id, parentID string) error {
	b, ok := l.Get(id)
	if !ok {
		return fmt.Errorf("set parent of %q: %w", id, ErrNotFound)
	}
	if parentID != "" {
		if _, ok := l.Get(parentID); !ok {
			return fmt.Errorf("parent %q: %w", parentID, ErrNotFound)
		}
	}
	if err := l.validateParent(id, parentID); err != nil {
		return err
	}
	b.ParentID = parentID
	return nil
}

// validateParent checks that parentID can legally become the parent
// of the block with the given id: it must name another block in the
// list and must not close a cycle through any ancestor chain. Empty
// parentID (top level) is always legal.
func (l *List) validateParent(id, parentID string) error {
	if parentID == "" {
		return nil
	}
	if parentID == id {
		return &ValidationError{Field: "parent_id", Message: "block cannot be its own parent"}
	}
	if _, ok := l.Get(parentID); !ok {
		return &ValidationError{Field: "parent_id", Message: "unknown parent block " + parentID}
	}
	// Walk up from the proposed parent; hitting id means a cycle.
	seen := make(map[string]bool, len(l.items))
	cur := parentID
	for cur != "" && !seen[cur] {
		if cur == id {
			return &ValidationError{Field: "parent_id", Message: "cyclic parent reference"}
		}
		seen[cur] = true
		p, ok := l.Get(cur)
		if !ok {
			break
		}
		cur = p.ParentID
	}
	return nil
}

// ByParent returns the blocks nested under parentID, in display
// order. parentID "" selects the top-level blocks.
func (l *List) ByParent(parentID string) []*Block {
	var out []*Block
	for _, b := range l.items {
		if b.ParentID == parentID {
			out = append(out, b)
		}
	}
	return out
}

// Anchors returns the CATEGORY blocks flagged as section anchors, in
// display order. The strip renderer decides what to do with empty
// titles.
func (l *List) Anchors() []*Block {
	var out []*Block
	for _, b := range l.items {
		if b.Type == TypeCategory && b.Anchor {
			out = append(out, b)
		}
	}
	return out
}

// Clone deep-copies the list and every block in it.
func (l *List) Clone() *List {
	items := make([]*Block, len(l.items))
	for i, b := range l.items {
		items[i] = b.Clone()
	}
	return &List{items: items}
}

func (l *List) checkAcyclic() error {
	for _, b := range l.items {
		seen := make(map[string]bool)
		cur := b.ParentID
		for cur != "" {
			if cur == b.ID || seen[cur] {
				return &ValidationError{Field: "parent_id", Message: "cyclic parent reference involving " + b.ID}
			}
			seen[cur] = true
			p, ok := l.Get(cur)
			if !ok {
				break
			}
			cur = p.ParentID
		}
	}
	return nil
}

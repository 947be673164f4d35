package draft

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"biolink/internal/content"
)

type fakeSaver struct {
	pages      []*content.Page
	blockSets  [][]*content.Block
	socialSets [][]content.SocialLink

	pageErr    error
	blocksErr  error
	onSavePage func()
}

func (f *fakeSaver) SavePage(_ context.Context, p *content.Page) error {
	if f.pageErr != nil {
		return f.pageErr
	}
	f.pages = append(f.pages, p)
	if f.onSavePage != nil {
		hook := f.onSavePage
		f.onSavePage = nil
		hook()
	}
	return nil
}

func (f *fakeSaver) ReplaceBlocks(_ context.Context, _ string, blocks []*content.Block) error {
	if f.blocksErr != nil {
		return f.blocksErr
	}
	f.blockSets = append(f.blockSets, blocks)
	return nil
}

func (f *fakeSaver) ReplaceSocialLinks(_ context.Context, _ string, links []content.SocialLink) error {
	f.socialSets = append(f.socialSets, links)
	return nil
}

func hydrated(t *testing.T, saver Saver) (*Draft, *content.Page, *content.Block) {
	t.Helper()
	d := New(saver, zaptest.NewLogger(t))
	page := content.NewPage("user-1")
	b := content.New(content.TypeLink)
	b.URL = "https://example.com"
	d.Hydrate(page, []*content.Block{b}, nil)
	return d, page, b
}

func TestMutationRequiresHydrate(t *testing.T) {
	d := New(&fakeSaver{}, zaptest.NewLogger(t))
	require.ErrorIs(t, d.InsertBlock(content.New(content.TypeBlank)), ErrNotHydrated)
	require.ErrorIs(t, d.Save(context.Background()), ErrNotHydrated)
}

func TestHydrateStartsClean(t *testing.T) {
	saver := &fakeSaver{}
	d, _, _ := hydrated(t, saver)
	assert.Equal(t, StateClean, d.State())

	require.NoError(t, d.Save(context.Background()))
	assert.Empty(t, saver.pages, "clean saves must not hit persistence")
}

func TestEditThenSave(t *testing.T) {
	saver := &fakeSaver{}
	d, page, _ := hydrated(t, saver)

	require.NoError(t, d.UpdatePage(func(p *content.Page) { p.DisplayName = "Ana" }))
	assert.Equal(t, StateDirty, d.State())

	require.NoError(t, d.Save(context.Background()))
	assert.Equal(t, StateClean, d.State())
	require.Len(t, saver.pages, 1)
	assert.Equal(t, "Ana", saver.pages[0].DisplayName)
	assert.Equal(t, page.ID, saver.pages[0].ID)
	require.Len(t, saver.blockSets, 1)
	assert.Len(t, saver.blockSets[0], 1)
}

func TestFailedSaveKeepsEdits(t *testing.T) {
	boom := errors.New("db down")
	saver := &fakeSaver{blocksErr: boom}
	d, _, block := hydrated(t, saver)

	require.NoError(t, d.UpdateBlock(withTitle(block, "edited")))
	require.ErrorIs(t, d.Save(context.Background()), boom)
	assert.Equal(t, StateDirty, d.State())

	l, err := d.Blocks()
	require.NoError(t, err)
	got, ok := l.Get(block.ID)
	require.True(t, ok)
	assert.Equal(t, "edited", got.Title)

	// Retry once the backend recovers.
	saver.blocksErr = nil
	require.NoError(t, d.Save(context.Background()))
	assert.Equal(t, StateClean, d.State())
}

func TestEditDuringFlightStaysDirty(t *testing.T) {
	saver := &fakeSaver{}
	var d *Draft
	saver.onSavePage = func() {
		require.NoError(t, d.UpdatePage(func(p *content.Page) { p.Bio = "mid-flight" }))
	}
	d, _, _ = hydrated(t, saver)

	require.NoError(t, d.UpdatePage(func(p *content.Page) { p.DisplayName = "Ana" }))
	require.NoError(t, d.Save(context.Background()))

	assert.Equal(t, StateDirty, d.State(), "mid-flight edit outlives the save")
	require.Len(t, saver.pages, 1)
	assert.Empty(t, saver.pages[0].Bio, "saved snapshot predates the edit")

	p, err := d.Page()
	require.NoError(t, err)
	assert.Equal(t, "mid-flight", p.Bio)
}

func TestSaveDuringFlightIsCoalesced(t *testing.T) {
	saver := &fakeSaver{}
	var d *Draft
	saver.onSavePage = func() {
		require.NoError(t, d.UpdatePage(func(p *content.Page) { p.Bio = "second" }))
		require.NoError(t, d.Save(context.Background()), "queued, returns immediately")
	}
	d, _, _ = hydrated(t, saver)

	require.NoError(t, d.UpdatePage(func(p *content.Page) { p.DisplayName = "Ana" }))
	require.NoError(t, d.Save(context.Background()))

	require.Len(t, saver.pages, 2, "one follow-up push, not one per request")
	assert.Empty(t, saver.pages[0].Bio)
	assert.Equal(t, "second", saver.pages[1].Bio)
	assert.Equal(t, StateClean, d.State())
}

func TestHydrateIsolatesCallerData(t *testing.T) {
	saver := &fakeSaver{}
	d := New(saver, zaptest.NewLogger(t))
	page := content.NewPage("user-1")
	b := content.New(content.TypeLink)
	b.URL = "https://example.com"
	d.Hydrate(page, []*content.Block{b}, nil)

	b.Title = "changed outside"
	page.DisplayName = "changed outside"

	l, err := d.Blocks()
	require.NoError(t, err)
	got, _ := l.Get(b.ID)
	assert.Empty(t, got.Title)
	p, err := d.Page()
	require.NoError(t, err)
	assert.Empty(t, p.DisplayName)
}

func TestSocialLinkEditsAreSaved(t *testing.T) {
	saver := &fakeSaver{}
	d, _, _ := hydrated(t, saver)

	links := []content.SocialLink{{Platform: content.PlatformGithub, URL: "https://github.com/ana"}}
	require.NoError(t, d.SetSocialLinks(links))
	require.NoError(t, d.Save(context.Background()))

	require.Len(t, saver.socialSets, 1)
	assert.Equal(t, links, saver.socialSets[0])
}

func TestBlockMutationsGoThroughListRules(t *testing.T) {
	saver := &fakeSaver{}
	d, _, block := hydrated(t, saver)

	require.ErrorIs(t, d.RemoveBlock("ghost"), content.ErrNotFound)
	assert.Equal(t, StateClean, d.State(), "failed edits do not dirty the draft")

	require.NoError(t, d.ToggleBlockVisible(block.ID))
	assert.Equal(t, StateDirty, d.State())
}

func withTitle(b *content.Block, title string) *content.Block {
	c := b.Clone()
	c.Title = title
	return c
}

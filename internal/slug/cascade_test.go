package slug

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pagetree/pagetree/internal/domain"
	domainerrors "github.com/pagetree/pagetree/internal/errors"
	"github.com/pagetree/pagetree/internal/logger"
	"github.com/pagetree/pagetree/internal/store"
)

// flakyStore wraps a real store and fails GetNode for selected IDs.
type flakyStore struct {
	store.NodeStore
	getErr map[string]error
}

func (f *flakyStore) GetNode(ctx context.Context, id string) (*domain.Node, error) {
	if err, ok := f.getErr[id]; ok {
		return nil, err
	}
	return f.NodeStore.GetNode(ctx, id)
}

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.NewInMemory(nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func page(id, parentID, segment string) *domain.Node {
	n := &domain.Node{
		Syncable: domain.Syncable{ID: id},
		Model:    "pages",
		ParentID: parentID,
		Slug:     domain.SlugPath{Segment: segment},
	}
	n.InitTimestamps()
	return n
}

// seedABC saves a -> b -> c through the cascader.
func seedABC(t *testing.T, c *Cascader) {
	t.Helper()
	ctx := context.Background()
	for _, n := range []*domain.Node{page("a", "", "a"), page("b", "a", "b"), page("c", "b", "c")} {
		_, err := c.Save(ctx, n)
		require.NoError(t, err)
	}
}

func fullSlug(t *testing.T, s store.NodeStore, id string) string {
	t.Helper()
	n, err := s.GetNode(context.Background(), id)
	require.NoError(t, err)
	return n.Slug.Full
}

func TestCascader_DerivesFullSlugs(t *testing.T) {
	s := newTestStore(t)
	seedABC(t, NewCascader(s, logger.Discard()))

	assert.Equal(t, "a", fullSlug(t, s, "a"))
	assert.Equal(t, "a/b", fullSlug(t, s, "b"))
	assert.Equal(t, "a/b/c", fullSlug(t, s, "c"))
}

func TestCascader_RenameCascades(t *testing.T) {
	s := newTestStore(t)
	c := NewCascader(s, logger.Discard())
	seedABC(t, c)
	ctx := context.Background()

	a, err := s.GetNode(ctx, "a")
	require.NoError(t, err)
	a.Slug.Segment = "alpha"

	saved, err := c.Save(ctx, a)
	require.NoError(t, err)
	assert.Equal(t, 3, saved)

	assert.Equal(t, "alpha", fullSlug(t, s, "a"))
	assert.Equal(t, "alpha/b", fullSlug(t, s, "b"))
	assert.Equal(t, "alpha/b/c", fullSlug(t, s, "c"))
}

func TestCascader_UnchangedSlugTouchesNoDescendant(t *testing.T) {
	s := newTestStore(t)
	c := NewCascader(s, logger.Discard())
	seedABC(t, c)
	ctx := context.Background()

	before, err := s.GetNode(ctx, "b")
	require.NoError(t, err)

	a, err := s.GetNode(ctx, "a")
	require.NoError(t, err)
	a.Title = "New title"

	saved, err := c.Save(ctx, a)
	require.NoError(t, err)
	assert.Equal(t, 1, saved)

	after, err := s.GetNode(ctx, "b")
	require.NoError(t, err)
	assert.True(t, before.UpdatedAt.Equal(after.UpdatedAt))
}

func TestCascader_SegmentFallsBackToFullSlug(t *testing.T) {
	s := newTestStore(t)
	c := NewCascader(s, logger.Discard())
	ctx := context.Background()

	_, err := c.Save(ctx, page("a", "", "a"))
	require.NoError(t, err)

	n := page("b", "a", "")
	n.Slug.Full = "old/prefix/b"
	_, err = c.Save(ctx, n)
	require.NoError(t, err)

	assert.Equal(t, "a/b", n.Slug.Full)
	assert.Equal(t, "b", n.Slug.Segment)
}

func TestCascader_MissingParentLeavesSlugUnprefixed(t *testing.T) {
	s := newTestStore(t)
	c := NewCascader(s, logger.Discard())

	n := page("b", "ghost", "b")
	_, err := c.Save(context.Background(), n)
	require.NoError(t, err)
	assert.Equal(t, "b", n.Slug.Full)
}

func TestCascader_EmptySlugRejected(t *testing.T) {
	s := newTestStore(t)
	c := NewCascader(s, logger.Discard())

	_, err := c.Save(context.Background(), page("a", "", ""))
	assert.ErrorIs(t, err, domainerrors.ErrValidation)

	_, err = s.GetNode(context.Background(), "a")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestCascader_LookupFailureAbortsBranch(t *testing.T) {
	s := newTestStore(t)
	seedABC(t, NewCascader(s, logger.Discard()))
	ctx := context.Background()

	boom := errors.New("store unavailable")
	c := NewCascader(&flakyStore{NodeStore: s, getErr: map[string]error{"c": boom}}, logger.Discard())

	a, err := s.GetNode(ctx, "a")
	require.NoError(t, err)
	a.Slug.Segment = "alpha"

	saved, err := c.Save(ctx, a)
	require.ErrorIs(t, err, boom)
	assert.Equal(t, 2, saved)

	// Writes above the failure stay.
	assert.Equal(t, "alpha", fullSlug(t, s, "a"))
	assert.Equal(t, "alpha/b", fullSlug(t, s, "b"))
	assert.Equal(t, "a/b/c", fullSlug(t, s, "c"))
}

func TestCascader_PersistenceFailureStopsCascade(t *testing.T) {
	s := newTestStore(t)
	c := NewCascader(s, logger.Discard())
	seedABC(t, c)
	ctx := context.Background()

	squatter := page("squatter", "", "")
	squatter.Slug.Full = "alpha/b"
	require.NoError(t, s.SaveNode(ctx, squatter))

	a, err := s.GetNode(ctx, "a")
	require.NoError(t, err)
	a.Slug.Segment = "alpha"

	saved, err := c.Save(ctx, a)
	require.ErrorIs(t, err, store.ErrAlreadyExists)
	assert.Equal(t, 1, saved)

	assert.Equal(t, "alpha", fullSlug(t, s, "a"))
	assert.Equal(t, "a/b", fullSlug(t, s, "b"))
	assert.Equal(t, "a/b/c", fullSlug(t, s, "c"))
}

func TestCascader_FullSlugInvariant(t *testing.T) {
	s := newTestStore(t)
	c := NewCascader(s, logger.Discard())
	ctx := context.Background()

	nodes := []*domain.Node{
		page("r", "", "docs"),
		page("g", "r", "guide"),
		page("i", "g", "install"),
		page("u", "g", "usage"),
		page("f", "r", "faq"),
	}
	for _, n := range nodes {
		_, err := c.Save(ctx, n)
		require.NoError(t, err)
	}

	r, err := s.GetNode(ctx, "r")
	require.NoError(t, err)
	r.Slug.Segment = "manual"
	saved, err := c.Save(ctx, r)
	require.NoError(t, err)
	assert.Equal(t, 5, saved)

	for _, n := range nodes {
		got, err := s.GetNode(ctx, n.ID)
		require.NoError(t, err)
		if got.IsRoot() {
			assert.Equal(t, got.Slug.Segment, got.Slug.Full)
			continue
		}
		parent, err := s.GetNode(ctx, got.ParentID)
		require.NoError(t, err)
		assert.Equal(t, parent.Slug.Full+"/"+got.Slug.Segment, got.Slug.Full)
	}
}

func TestCascader_ParentCycleStops(t *testing.T) {
	s := newTestStore(t)
	c := NewCascader(s, logger.Discard())
	ctx := context.Background()

	// Written straight to the store: the cascader would never produce a cycle.
	a := page("a", "b", "a")
	a.Slug.Full = "b/a"
	b := page("b", "a", "b")
	b.Slug.Full = "a/b"
	require.NoError(t, s.SaveNode(ctx, a))
	require.NoError(t, s.SaveNode(ctx, b))

	a.Slug.Segment = "alpha"
	saved, err := c.Save(ctx, a)
	require.Error(t, err)
	assert.ErrorIs(t, err, domainerrors.ErrInconsistent)
	assert.Contains(t, err.Error(), "parent cycle at a")
	assert.Equal(t, 2, saved)

	assert.Equal(t, "a/b/alpha", fullSlug(t, s, "a"))
	assert.Equal(t, "a/b/alpha/b", fullSlug(t, s, "b"))
}

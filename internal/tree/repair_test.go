package tree

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pagetree/pagetree/internal/domain"
	"github.com/pagetree/pagetree/internal/logger"
	"github.com/pagetree/pagetree/internal/store"
)

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.NewInMemory(nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func seed(t *testing.T, s store.NodeStore, nodes ...*domain.Node) {
	t.Helper()
	for _, n := range nodes {
		n.Slug.Full = n.ID
		n.InitTimestamps()
		require.NoError(t, s.SaveNode(context.Background(), n))
	}
}

func TestRepairer_Repair(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	// All intervals zeroed; ID order keeps parents ahead of children.
	seed(t, s,
		node("n1", ""),
		node("n2", "n1"),
		node("n3", "n2"),
		node("n4", ""),
	)

	r := NewRepairer(s, logger.Discard())
	report, err := r.Repair(ctx, "pages")
	require.NoError(t, err)

	assert.Equal(t, "pages", report.Model)
	assert.Equal(t, 4, report.Nodes)
	assert.Equal(t, 2, report.Trees)
	assert.Equal(t, 4, report.Changed)
	assert.Empty(t, report.Inconsistencies)

	nodes, err := s.ListNodesInTreeOrder(ctx, "pages")
	require.NoError(t, err)
	assert.Empty(t, Verify(nodes))

	got := byID(nodes)
	assert.Equal(t, domain.TreeFields{TreeID: 1, Lft: 1, Rght: 6, Level: 0}, got["n1"].Tree)
	assert.Equal(t, domain.TreeFields{TreeID: 1, Lft: 2, Rght: 5, Level: 1}, got["n2"].Tree)
	assert.Equal(t, domain.TreeFields{TreeID: 1, Lft: 3, Rght: 4, Level: 2}, got["n3"].Tree)
	assert.Equal(t, domain.TreeFields{TreeID: 2, Lft: 1, Rght: 2, Level: 0}, got["n4"].Tree)
}

func TestRepairer_SecondRunWritesNothing(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	seed(t, s, node("n1", ""), node("n2", "n1"), node("n3", ""))

	r := NewRepairer(s, logger.Discard())
	_, err := r.Repair(ctx, "pages")
	require.NoError(t, err)

	before, err := s.ListNodesInTreeOrder(ctx, "pages")
	require.NoError(t, err)

	report, err := r.Repair(ctx, "pages")
	require.NoError(t, err)
	assert.Zero(t, report.Changed)

	after, err := s.ListNodesInTreeOrder(ctx, "pages")
	require.NoError(t, err)
	require.Len(t, after, len(before))
	for i := range before {
		assert.Equal(t, before[i].Tree, after[i].Tree)
		assert.True(t, before[i].UpdatedAt.Equal(after[i].UpdatedAt), "node %s rewritten", before[i].ID)
	}
}

func TestRepairer_OrphanReported(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	seed(t, s, node("n1", ""), node("n2", "deleted-parent"))

	report, err := NewRepairer(s, logger.Discard()).Repair(ctx, "pages")
	require.NoError(t, err)

	require.Len(t, report.Inconsistencies, 1)
	assert.Equal(t, ParentMissing, report.Inconsistencies[0].Kind)
	assert.Equal(t, 2, report.Trees)

	orphan, err := s.GetNode(ctx, "n2")
	require.NoError(t, err)
	assert.Equal(t, domain.TreeFields{TreeID: 2, Lft: 1, Rght: 2, Level: 0}, orphan.Tree)
	assert.Equal(t, "deleted-parent", orphan.ParentID)
}

func TestRepairer_EmptyModel(t *testing.T) {
	s := newTestStore(t)

	report, err := NewRepairer(s, logger.Discard()).Repair(context.Background(), "pages")
	require.NoError(t, err)
	assert.Zero(t, report.Nodes)
	assert.Zero(t, report.Trees)
}

// failingStore lists fixed nodes and fails every write.
type failingStore struct {
	nodes   []*domain.Node
	listErr error
	saveErr error
	saved   int
}

func (f *failingStore) ListNodesInTreeOrder(context.Context, string) ([]*domain.Node, error) {
	return f.nodes, f.listErr
}

func (f *failingStore) GetNode(context.Context, string) (*domain.Node, error) {
	return nil, store.ErrNotFound
}

func (f *failingStore) SaveNode(context.Context, *domain.Node) error {
	f.saved++
	return f.saveErr
}

func (f *failingStore) GetNodeChildren(context.Context, string) ([]*domain.Node, error) {
	return nil, nil
}

func TestRepairer_StoreFailures(t *testing.T) {
	boom := errors.New("disk on fire")

	t.Run("list", func(t *testing.T) {
		fs := &failingStore{listErr: boom}
		_, err := NewRepairer(fs, logger.Discard()).Repair(context.Background(), "pages")
		assert.ErrorIs(t, err, boom)
	})

	t.Run("save stops at first failure", func(t *testing.T) {
		fs := &failingStore{nodes: []*domain.Node{node("a", ""), node("b", "")}, saveErr: boom}
		_, err := NewRepairer(fs, logger.Discard()).Repair(context.Background(), "pages")
		assert.ErrorIs(t, err, boom)
		assert.Equal(t, 1, fs.saved)
	})
}

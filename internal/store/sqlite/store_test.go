package sqlite

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/pagetree/pagetree/internal/domain"
	"github.com/pagetree/pagetree/internal/store"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "test.db")
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	s, err := Open(dbPath, logger)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func makeNode(id, parentID, full string, treeID, lft, rght int) *domain.Node {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	return &domain.Node{
		Syncable: domain.Syncable{ID: id, CreatedAt: now, UpdatedAt: now},
		Model:    "pages",
		ParentID: parentID,
		Title:    id,
		Slug:     domain.SlugPath{Full: full},
		Tree:     domain.TreeFields{TreeID: treeID, Lft: lft, Rght: rght},
	}
}

func TestOpen(t *testing.T) {
	s := newTestStore(t)

	var journalMode string
	err := s.db.QueryRow("PRAGMA journal_mode").Scan(&journalMode)
	if err != nil {
		t.Fatalf("query journal_mode: %v", err)
	}
	if journalMode != "wal" {
		t.Errorf("expected wal, got %s", journalMode)
	}

	var name string
	err = s.db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name='nodes'").Scan(&name)
	if err != nil {
		t.Errorf("table nodes not found: %v", err)
	}
}

func TestSaveAndGetNode(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	n := makeNode("node-a", "", "about", 1, 1, 2)
	n.Slug.Segment = "about"
	if err := s.SaveNode(ctx, n); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := s.GetNode(ctx, "node-a")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Slug != n.Slug {
		t.Errorf("slug = %+v, want %+v", got.Slug, n.Slug)
	}
	if got.Tree != n.Tree {
		t.Errorf("tree = %+v, want %+v", got.Tree, n.Tree)
	}
	if got.ParentID != "" {
		t.Errorf("parent = %q, want empty", got.ParentID)
	}
	if !got.CreatedAt.Equal(n.CreatedAt) {
		t.Errorf("created_at = %v, want %v", got.CreatedAt, n.CreatedAt)
	}

	bySlug, err := s.GetNodeBySlug(ctx, "pages", "about")
	if err != nil {
		t.Fatalf("get by slug: %v", err)
	}
	if bySlug.ID != "node-a" {
		t.Errorf("by slug id = %q", bySlug.ID)
	}
}

func TestSaveNodeUpdates(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	n := makeNode("node-a", "", "a", 1, 1, 2)
	if err := s.SaveNode(ctx, n); err != nil {
		t.Fatalf("save: %v", err)
	}

	n.Tree = domain.TreeFields{TreeID: 3, Lft: 2, Rght: 5, Level: 1}
	n.ParentID = "node-root"
	n.Slug.Full = "root/a"
	if err := s.SaveNode(ctx, n); err != nil {
		t.Fatalf("resave: %v", err)
	}

	got, err := s.GetNode(ctx, "node-a")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Tree != n.Tree || got.ParentID != "node-root" || got.Slug.Full != "root/a" {
		t.Errorf("update not applied: %+v", got)
	}
}

func TestSaveNodeDuplicateSlug(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.SaveNode(ctx, makeNode("node-a", "", "about", 1, 1, 2)); err != nil {
		t.Fatalf("save: %v", err)
	}
	err := s.SaveNode(ctx, makeNode("node-b", "", "about", 2, 1, 2))
	if !errors.Is(err, store.ErrAlreadyExists) {
		t.Errorf("expected ErrAlreadyExists, got %v", err)
	}

	other := makeNode("node-c", "", "about", 1, 1, 2)
	other.Model = "categories"
	if err := s.SaveNode(ctx, other); err != nil {
		t.Errorf("same slug in another model: %v", err)
	}
}

func TestGetNodeNotFound(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if _, err := s.GetNode(ctx, "missing"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("GetNode: expected ErrNotFound, got %v", err)
	}
	if _, err := s.GetNodeBySlug(ctx, "pages", "missing"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("GetNodeBySlug: expected ErrNotFound, got %v", err)
	}
	if err := s.DeleteNode(ctx, "missing"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("DeleteNode: expected ErrNotFound, got %v", err)
	}
}

func TestListNodesInTreeOrder(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for _, n := range []*domain.Node{
		makeNode("node-c", "node-a", "a/c", 1, 2, 3),
		makeNode("node-b", "", "b", 2, 1, 2),
		makeNode("node-a", "", "a", 1, 1, 4),
	} {
		if err := s.SaveNode(ctx, n); err != nil {
			t.Fatalf("save %s: %v", n.ID, err)
		}
	}

	nodes, err := s.ListNodesInTreeOrder(ctx, "pages")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	want := []string{"node-a", "node-b", "node-c"}
	if len(nodes) != len(want) {
		t.Fatalf("got %d nodes, want %d", len(nodes), len(want))
	}
	for i, n := range nodes {
		if n.ID != want[i] {
			t.Errorf("nodes[%d] = %s, want %s", i, n.ID, want[i])
		}
	}
}

func TestGetNodeChildren(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for _, n := range []*domain.Node{
		makeNode("node-a", "", "a", 1, 1, 6),
		makeNode("node-c", "node-a", "a/c", 1, 4, 5),
		makeNode("node-b", "node-a", "a/b", 1, 2, 3),
	} {
		if err := s.SaveNode(ctx, n); err != nil {
			t.Fatalf("save %s: %v", n.ID, err)
		}
	}

	children, err := s.GetNodeChildren(ctx, "node-a")
	if err != nil {
		t.Fatalf("children: %v", err)
	}
	if len(children) != 2 || children[0].ID != "node-b" || children[1].ID != "node-c" {
		t.Errorf("unexpected children: %v", children)
	}

	roots, err := s.GetNodeChildren(ctx, "")
	if err != nil {
		t.Fatalf("roots: %v", err)
	}
	if len(roots) != 1 || roots[0].ID != "node-a" {
		t.Errorf("unexpected roots: %v", roots)
	}
}

func TestDeleteNode(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.SaveNode(ctx, makeNode("node-a", "", "a", 1, 1, 2)); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := s.DeleteNode(ctx, "node-a"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := s.GetNode(ctx, "node-a"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
}

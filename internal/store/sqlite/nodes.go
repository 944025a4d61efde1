package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/pagetree/pagetree/internal/domain"
	"github.com/pagetree/pagetree/internal/store"
)

// nodeColumns is the ordered list of columns selected in node queries.
// Must match the scan order in scanNode.
const nodeColumns = `id, created_at, updated_at, model, parent_id, title,
	slug_segment, full_slug, tree_id, lft, rght, level`

// scanNode scans a sql.Row (or sql.Rows via its Scan method) into a domain.Node.
func scanNode(scanner interface{ Scan(dest ...any) error }) (*domain.Node, error) {
	var n domain.Node

	var (
		createdAt string
		updatedAt string
		parentID  sql.NullString
	)

	err := scanner.Scan(
		&n.ID,
		&createdAt,
		&updatedAt,
		&n.Model,
		&parentID,
		&n.Title,
		&n.Slug.Segment,
		&n.Slug.Full,
		&n.Tree.TreeID,
		&n.Tree.Lft,
		&n.Tree.Rght,
		&n.Tree.Level,
	)
	if err != nil {
		return nil, err
	}

	n.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	n.UpdatedAt, err = parseTime(updatedAt)
	if err != nil {
		return nil, err
	}
	if parentID.Valid {
		n.ParentID = parentID.String
	}

	return &n, nil
}

// queryNodes runs a SELECT and scans every row.
func (s *Store) queryNodes(ctx context.Context, query string, args ...any) ([]*domain.Node, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var nodes []*domain.Node
	for rows.Next() {
		n, err := scanNode(rows)
		if err != nil {
			return nil, fmt.Errorf("scan node: %w", err)
		}
		nodes = append(nodes, n)
	}
	return nodes, rows.Err()
}

// GetNode retrieves a node by ID.
func (s *Store) GetNode(ctx context.Context, id string) (*domain.Node, error) {
	n, err := scanNode(s.db.QueryRowContext(ctx,
		`SELECT `+nodeColumns+` FROM nodes WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get node %s: %w", id, err)
	}
	return n, nil
}

// GetNodeBySlug retrieves a node by model and full slug.
func (s *Store) GetNodeBySlug(ctx context.Context, model, fullSlug string) (*domain.Node, error) {
	n, err := scanNode(s.db.QueryRowContext(ctx,
		`SELECT `+nodeColumns+` FROM nodes WHERE model = ? AND full_slug = ?`, model, fullSlug))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get node by slug: %w", err)
	}
	return n, nil
}

// SaveNode inserts or replaces a node.
func (s *Store) SaveNode(ctx context.Context, n *domain.Node) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO nodes (`+nodeColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			updated_at = excluded.updated_at,
			model = excluded.model,
			parent_id = excluded.parent_id,
			title = excluded.title,
			slug_segment = excluded.slug_segment,
			full_slug = excluded.full_slug,
			tree_id = excluded.tree_id,
			lft = excluded.lft,
			rght = excluded.rght,
			level = excluded.level`,
		n.ID,
		formatTime(n.CreatedAt),
		formatTime(n.UpdatedAt),
		n.Model,
		nullString(n.ParentID),
		n.Title,
		n.Slug.Segment,
		n.Slug.Full,
		n.Tree.TreeID,
		n.Tree.Lft,
		n.Tree.Rght,
		n.Tree.Level,
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return store.ErrAlreadyExists
		}
		return fmt.Errorf("save node %s: %w", n.ID, err)
	}
	return nil
}

// DeleteNode removes a node. Children are not touched.
func (s *Store) DeleteNode(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM nodes WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete node %s: %w", id, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	return nil
}

// ListNodesInTreeOrder returns every node of a model ordered by lft, then tree_id.
func (s *Store) ListNodesInTreeOrder(ctx context.Context, model string) ([]*domain.Node, error) {
	nodes, err := s.queryNodes(ctx,
		`SELECT `+nodeColumns+` FROM nodes WHERE model = ? ORDER BY lft, tree_id, id`, model)
	if err != nil {
		return nil, fmt.Errorf("list nodes: %w", err)
	}
	return nodes, nil
}

// GetNodeChildren returns direct children of a node ordered by lft.
// An empty parentID selects root nodes.
func (s *Store) GetNodeChildren(ctx context.Context, parentID string) ([]*domain.Node, error) {
	var (
		nodes []*domain.Node
		err   error
	)
	if parentID == "" {
		nodes, err = s.queryNodes(ctx,
			`SELECT `+nodeColumns+` FROM nodes WHERE parent_id IS NULL ORDER BY lft, tree_id, id`)
	} else {
		nodes, err = s.queryNodes(ctx,
			`SELECT `+nodeColumns+` FROM nodes WHERE parent_id = ? ORDER BY lft, tree_id, id`, parentID)
	}
	if err != nil {
		return nil, fmt.Errorf("get children of %q: %w", parentID, err)
	}
	return nodes, nil
}

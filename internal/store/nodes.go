package store

import (
	"cmp"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"

	"github.com/dgraph-io/badger/v4"

	"github.com/pagetree/pagetree/internal/domain"
)

// Compile-time check.
var _ Backend = (*Store)(nil)

// GetNode retrieves a node by ID.
func (s *Store) GetNode(ctx context.Context, id string) (*domain.Node, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var n domain.Node
	key := buildKey(nodePrefix, id)
	defer releaseKey(key)

	err := s.db.View(func(txn *badger.Txn) error {
		return getJSON(txn, key, &n)
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get node %s: %w", id, err)
	}
	return &n, nil
}

// GetNodeBySlug retrieves a node by model and full slug.
func (s *Store) GetNodeBySlug(ctx context.Context, model, fullSlug string) (*domain.Node, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var nodeID string
	key := buildKey(nodeBySlugPrefix, model, fullSlug)
	defer releaseKey(key)

	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			nodeID = string(val)
			return nil
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get node by slug: %w", err)
	}

	return s.GetNode(ctx, nodeID)
}

// SaveNode inserts or replaces a node and keeps the slug, parent and model
// indexes in step within one transaction.
func (s *Store) SaveNode(ctx context.Context, n *domain.Node) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("marshal node: %w", err)
	}

	return s.db.Update(func(txn *badger.Txn) error {
		var old *domain.Node
		var prev domain.Node
		switch err := getJSON(txn, ownedKey(nodePrefix, n.ID), &prev); {
		case err == nil:
			old = &prev
		case errors.Is(err, badger.ErrKeyNotFound):
		default:
			return err
		}

		// Uniqueness of the full slug within the model.
		slugKey := ownedKey(nodeBySlugPrefix, n.Model, n.Slug.Full)
		item, err := txn.Get(slugKey)
		switch {
		case err == nil:
			var owner string
			if err := item.Value(func(val []byte) error {
				owner = string(val)
				return nil
			}); err != nil {
				return err
			}
			if owner != n.ID {
				return ErrAlreadyExists
			}
		case !errors.Is(err, badger.ErrKeyNotFound):
			return err
		}

		if err := txn.Set(ownedKey(nodePrefix, n.ID), data); err != nil {
			return err
		}

		if old != nil {
			if old.Model != n.Model || old.Slug.Full != n.Slug.Full {
				if err := deleteIfPresent(txn, ownedKey(nodeBySlugPrefix, old.Model, old.Slug.Full)); err != nil {
					return err
				}
			}
			if old.ParentID != n.ParentID {
				if err := deleteIfPresent(txn, ownedKey(nodeByParentPrefix, parentSegment(old.ParentID), n.ID)); err != nil {
					return err
				}
			}
			if old.Model != n.Model {
				if err := deleteIfPresent(txn, ownedKey(nodeByModelPrefix, old.Model, n.ID)); err != nil {
					return err
				}
			}
		}

		if err := txn.Set(slugKey, []byte(n.ID)); err != nil {
			return err
		}
		if err := txn.Set(ownedKey(nodeByParentPrefix, parentSegment(n.ParentID), n.ID), []byte{}); err != nil {
			return err
		}
		return txn.Set(ownedKey(nodeByModelPrefix, n.Model, n.ID), []byte{})
	})
}

// DeleteNode removes a node and its index entries.
func (s *Store) DeleteNode(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return s.db.Update(func(txn *badger.Txn) error {
		var n domain.Node
		err := getJSON(txn, ownedKey(nodePrefix, id), &n)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}

		keys := [][]byte{
			ownedKey(nodePrefix, id),
			ownedKey(nodeBySlugPrefix, n.Model, n.Slug.Full),
			ownedKey(nodeByParentPrefix, parentSegment(n.ParentID), id),
			ownedKey(nodeByModelPrefix, n.Model, id),
		}
		for _, key := range keys {
			if err := deleteIfPresent(txn, key); err != nil {
				return err
			}
		}
		return nil
	})
}

// ListNodesInTreeOrder returns every node of a model ordered by lft, then tree_id.
func (s *Store) ListNodesInTreeOrder(ctx context.Context, model string) ([]*domain.Node, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	prefix := buildKey(nodeByModelPrefix, model, "")
	ids, err := s.scanSuffixes(prefix)
	releaseKey(prefix)
	if err != nil {
		return nil, fmt.Errorf("scan model index: %w", err)
	}

	nodes, err := s.loadNodes(ctx, ids)
	if err != nil {
		return nil, err
	}

	slices.SortStableFunc(nodes, compareTreeOrder)
	return nodes, nil
}

// GetNodeChildren returns direct children of a node ordered by lft.
func (s *Store) GetNodeChildren(ctx context.Context, parentID string) ([]*domain.Node, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	prefix := buildKey(nodeByParentPrefix, parentSegment(parentID), "")
	ids, err := s.scanSuffixes(prefix)
	releaseKey(prefix)
	if err != nil {
		return nil, fmt.Errorf("scan parent index: %w", err)
	}

	children, err := s.loadNodes(ctx, ids)
	if err != nil {
		return nil, err
	}

	slices.SortStableFunc(children, compareTreeOrder)
	return children, nil
}

// loadNodes fetches nodes by ID in a single read transaction.
// IDs whose record vanished between the index scan and the read are skipped.
func (s *Store) loadNodes(ctx context.Context, ids []string) ([]*domain.Node, error) {
	nodes := make([]*domain.Node, 0, len(ids))

	err := s.db.View(func(txn *badger.Txn) error {
		for _, id := range ids {
			if err := ctx.Err(); err != nil {
				return err
			}

			var n domain.Node
			key := buildKey(nodePrefix, id)
			err := getJSON(txn, key, &n)
			releaseKey(key)

			if errors.Is(err, badger.ErrKeyNotFound) {
				s.logger.Warn("dangling node index entry", "node_id", id)
				continue
			}
			if err != nil {
				return fmt.Errorf("load node %s: %w", id, err)
			}
			nodes = append(nodes, &n)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return nodes, nil
}

// compareTreeOrder orders by lft, then tree_id, then ID for determinism.
func compareTreeOrder(a, b *domain.Node) int {
	return cmp.Or(
		cmp.Compare(a.Tree.Lft, b.Tree.Lft),
		cmp.Compare(a.Tree.TreeID, b.Tree.TreeID),
		cmp.Compare(a.ID, b.ID),
	)
}

// Package store defines the node persistence contract and its Badger backend.
package store

import (
	"context"

	"github.com/pagetree/pagetree/internal/domain"
)

// NodeStore is everything the tree engines need from persistence.
type NodeStore interface {
	// ListNodesInTreeOrder returns all nodes of a model ordered by lft, then tree_id.
	// The stored values may be inconsistent; only the order is relied upon.
	ListNodesInTreeOrder(ctx context.Context, model string) ([]*domain.Node, error)

	// GetNode returns the persisted node or ErrNotFound.
	GetNode(ctx context.Context, id string) (*domain.Node, error)

	// SaveNode inserts or replaces a node.
	// Returns ErrAlreadyExists when the full slug is taken by another node of the model.
	SaveNode(ctx context.Context, n *domain.Node) error

	// GetNodeChildren returns direct children ordered by lft.
	GetNodeChildren(ctx context.Context, parentID string) ([]*domain.Node, error)
}

// Backend is a NodeStore with the extra operations the page service and
// lifecycle management need.
type Backend interface {
	NodeStore

	// GetNodeBySlug looks a node up by model and full slug.
	GetNodeBySlug(ctx context.Context, model, fullSlug string) (*domain.Node, error)

	// DeleteNode removes a node. Children are not touched.
	DeleteNode(ctx context.Context, id string) error

	Close() error
}

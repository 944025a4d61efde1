package slug

import (
	"context"
	"errors"
	"fmt"

	"github.com/pagetree/pagetree/internal/domain"
	domainerrors "github.com/pagetree/pagetree/internal/errors"
	"github.com/pagetree/pagetree/internal/logger"
	"github.com/pagetree/pagetree/internal/store"
)

// Cascader recomputes full slugs on save and pushes changes to descendants.
type Cascader struct {
	store  store.NodeStore
	logger *logger.Logger
}

// NewCascader creates a Cascader.
func NewCascader(s store.NodeStore, log *logger.Logger) *Cascader {
	return &Cascader{store: s, logger: log}
}

// Save derives n's full slug from its parent, persists n, and re-saves every
// child depth-first when the full slug differs from the persisted one. A node
// that has never been persisted counts as unchanged.
//
// It stops at the first error. Nodes saved before the failure stay saved; each
// of them is consistent with its parent as it was at write time. The returned
// count is the number of nodes written, including n.
//
// Reaching a node twice in one cascade means the parent references form a
// cycle, which is reported as an inconsistency.
func (c *Cascader) Save(ctx context.Context, n *domain.Node) (int, error) {
	return c.save(ctx, n, make(map[string]bool))
}

func (c *Cascader) save(ctx context.Context, n *domain.Node, visited map[string]bool) (int, error) {
	if visited[n.ID] {
		return 0, domainerrors.Inconsistentf("parent cycle at %s", n.ID)
	}
	visited[n.ID] = true

	if err := c.derive(ctx, n); err != nil {
		return 0, err
	}

	changed := false
	prev, err := c.store.GetNode(ctx, n.ID)
	switch {
	case err == nil:
		changed = prev.Slug.Full != n.Slug.Full
	case errors.Is(err, store.ErrNotFound):
	default:
		return 0, fmt.Errorf("look up previous slug of %s: %w", n.ID, err)
	}

	n.Touch()
	if err := c.store.SaveNode(ctx, n); err != nil {
		return 0, fmt.Errorf("save node %s: %w", n.ID, err)
	}
	saved := 1

	if !changed {
		return saved, nil
	}

	c.logger.Debug("full slug changed, cascading",
		"node_id", n.ID,
		"old", prev.Slug.Full,
		"new", n.Slug.Full,
	)

	children, err := c.store.GetNodeChildren(ctx, n.ID)
	if err != nil {
		return saved, fmt.Errorf("get children of %s: %w", n.ID, err)
	}
	for _, child := range children {
		count, err := c.save(ctx, child, visited)
		saved += count
		if err != nil {
			return saved, err
		}
	}
	return saved, nil
}

// derive sets n.Slug.Full from its parent and fills in a missing segment.
func (c *Cascader) derive(ctx context.Context, n *domain.Node) error {
	segment := n.Slug.Segment
	if segment == "" {
		segment = Truncate(n.Slug.Full)
	}
	if segment == "" {
		return domainerrors.Validationf("node %s has no slug", n.ID)
	}
	n.Slug.Segment = segment

	parentFull := ""
	if !n.IsRoot() {
		parent, err := c.store.GetNode(ctx, n.ParentID)
		switch {
		case err == nil:
			parentFull = parent.Slug.Full
		case errors.Is(err, store.ErrNotFound):
			c.logger.Warn("parent not found, slug left unprefixed",
				"node_id", n.ID,
				"parent_id", n.ParentID,
			)
		default:
			return fmt.Errorf("look up parent of %s: %w", n.ID, err)
		}
	}

	n.Slug.Full = Join(parentFull, segment)
	return nil
}

// Package tree rebuilds and checks the nested-interval encoding of node forests.
package tree

import (
	"container/list"
	"fmt"

	"github.com/pagetree/pagetree/internal/domain"
)

// InconsistencyKind classifies a structural problem found while rebuilding.
type InconsistencyKind string

const (
	// ParentMissing: the parent ID is not part of the input at all.
	ParentMissing InconsistencyKind = "parent_missing"
	// ParentUnprocessed: the parent exists but comes later in tree order,
	// which also covers parent cycles.
	ParentUnprocessed InconsistencyKind = "parent_unprocessed"
	// DuplicateNode: the same ID appeared more than once in the input.
	DuplicateNode InconsistencyKind = "duplicate_node"
)

// Inconsistency is one recovered structural problem. Orphans are placed as
// roots of their own tree and keep their parent reference.
type Inconsistency struct {
	Kind     InconsistencyKind `json:"kind"`
	NodeID   string            `json:"node_id"`
	ParentID string            `json:"parent_id,omitempty"`
	TreeID   int               `json:"tree_id,omitempty"`
}

func (i Inconsistency) String() string {
	switch i.Kind {
	case ParentMissing:
		return fmt.Sprintf("node %s references missing parent %s; placed as root of tree %d", i.NodeID, i.ParentID, i.TreeID)
	case ParentUnprocessed:
		return fmt.Sprintf("node %s encountered before its parent %s; placed as root of tree %d", i.NodeID, i.ParentID, i.TreeID)
	default:
		return fmt.Sprintf("node %s appears more than once; later copies ignored", i.NodeID)
	}
}

// Result is the outcome of an in-memory rebuild.
type Result struct {
	// Nodes are copies of the input carrying the rebuilt tree fields,
	// in input order with duplicates removed.
	Nodes []*domain.Node
	// Changed is the subset of Nodes whose tree fields differ from the input.
	Changed         []*domain.Node
	Trees           int
	Inconsistencies []Inconsistency
}

// placeholder marks either the opening or the closing position of a node
// inside its tree's working sequence.
type placeholder struct {
	node    *domain.Node
	closing bool
}

type placed struct {
	node    *domain.Node
	closing *list.Element
}

// Build reconstructs tree_id, lft, rght and level from parent references.
//
// nodes must be ordered by current lft, then tree_id. The existing interval
// values are used only through that order. A node is attached under its
// parent only when the parent has already been seen; otherwise it starts a
// new tree and the problem is reported in the result. The input is not
// modified.
func Build(nodes []*domain.Node) *Result {
	present := make(map[string]struct{}, len(nodes))
	for _, n := range nodes {
		present[n.ID] = struct{}{}
	}

	res := &Result{Nodes: make([]*domain.Node, 0, len(nodes))}
	seen := make(map[string]*placed, len(nodes))
	original := make(map[string]domain.TreeFields, len(nodes))
	var trees []*list.List

	newTree := func(n *domain.Node) *list.Element {
		seq := list.New()
		trees = append(trees, seq)
		n.Tree.TreeID = len(trees)
		n.Tree.Level = 0
		seq.PushBack(placeholder{node: n})
		return seq.PushBack(placeholder{node: n, closing: true})
	}

	for _, in := range nodes {
		if _, dup := seen[in.ID]; dup {
			res.Inconsistencies = append(res.Inconsistencies, Inconsistency{Kind: DuplicateNode, NodeID: in.ID})
			continue
		}

		n := in.Clone()
		original[n.ID] = in.Tree
		res.Nodes = append(res.Nodes, n)

		var closing *list.Element
		if n.ParentID == "" {
			closing = newTree(n)
		} else if parent, ok := seen[n.ParentID]; ok {
			n.Tree.TreeID = parent.node.Tree.TreeID
			n.Tree.Level = parent.node.Tree.Level + 1
			seq := trees[n.Tree.TreeID-1]
			seq.InsertBefore(placeholder{node: n}, parent.closing)
			closing = seq.InsertBefore(placeholder{node: n, closing: true}, parent.closing)
		} else {
			closing = newTree(n)
			kind := ParentUnprocessed
			if _, ok := present[n.ParentID]; !ok {
				kind = ParentMissing
			}
			res.Inconsistencies = append(res.Inconsistencies, Inconsistency{
				Kind:     kind,
				NodeID:   n.ID,
				ParentID: n.ParentID,
				TreeID:   n.Tree.TreeID,
			})
		}
		seen[n.ID] = &placed{node: n, closing: closing}
	}

	for _, seq := range trees {
		pos := 1
		for e := seq.Front(); e != nil; e = e.Next() {
			p := e.Value.(placeholder)
			if p.closing {
				p.node.Tree.Rght = pos
			} else {
				p.node.Tree.Lft = pos
			}
			pos++
		}
	}

	for _, n := range res.Nodes {
		if n.Tree != original[n.ID] {
			res.Changed = append(res.Changed, n)
		}
	}
	res.Trees = len(trees)
	return res
}

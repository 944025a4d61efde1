package tree

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/pagetree/pagetree/internal/domain"
)

// Rule names a nested-interval invariant.
type Rule string

const (
	RuleInterval  Rule = "interval"  // lft < rght
	RuleLevel     Rule = "level"     // level = parent level + 1, roots 0
	RuleParent    Rule = "parent"    // parent exists in the model
	RuleNesting   Rule = "nesting"   // strictly inside the parent, same tree
	RuleTreeRoot  Rule = "tree_root" // exactly one root per tree_id
	RulePositions Rule = "positions" // positions 1..2n used once each
)

// Violation describes one broken invariant.
type Violation struct {
	Rule   Rule   `json:"rule"`
	NodeID string `json:"node_id,omitempty"`
	TreeID int    `json:"tree_id"`
	Detail string `json:"detail"`
}

func (v Violation) String() string {
	if v.NodeID == "" {
		return fmt.Sprintf("tree %d: %s: %s", v.TreeID, v.Rule, v.Detail)
	}
	return fmt.Sprintf("node %s (tree %d): %s: %s", v.NodeID, v.TreeID, v.Rule, v.Detail)
}

// Verify checks the stored tree fields of one model's nodes and returns every
// violation found, ordered by tree, then node. An empty result means the
// encoding is consistent with the parent references.
func Verify(nodes []*domain.Node) []Violation {
	byID := make(map[string]*domain.Node, len(nodes))
	for _, n := range nodes {
		byID[n.ID] = n
	}

	var out []Violation
	add := func(rule Rule, n *domain.Node, format string, args ...any) {
		out = append(out, Violation{Rule: rule, NodeID: n.ID, TreeID: n.Tree.TreeID, Detail: fmt.Sprintf(format, args...)})
	}

	roots := make(map[int][]string)
	positions := make(map[int]map[int]int)

	for _, n := range nodes {
		t := n.Tree
		if t.Lft >= t.Rght {
			add(RuleInterval, n, "lft %d is not below rght %d", t.Lft, t.Rght)
		}

		if positions[t.TreeID] == nil {
			positions[t.TreeID] = make(map[int]int)
		}
		positions[t.TreeID][t.Lft]++
		positions[t.TreeID][t.Rght]++

		if n.IsRoot() {
			roots[t.TreeID] = append(roots[t.TreeID], n.ID)
			if t.Level != 0 {
				add(RuleLevel, n, "root has level %d", t.Level)
			}
			continue
		}

		parent, ok := byID[n.ParentID]
		if !ok {
			add(RuleParent, n, "parent %s does not exist", n.ParentID)
			continue
		}
		if t.Level != parent.Tree.Level+1 {
			add(RuleLevel, n, "level %d, parent level %d", t.Level, parent.Tree.Level)
		}
		if !parent.Tree.Contains(t) {
			add(RuleNesting, n, "[%d,%d] in tree %d not inside parent [%d,%d] in tree %d",
				t.Lft, t.Rght, t.TreeID, parent.Tree.Lft, parent.Tree.Rght, parent.Tree.TreeID)
		}
	}

	for treeID, seen := range positions {
		if ids := roots[treeID]; len(ids) != 1 {
			slices.Sort(ids)
			out = append(out, Violation{
				Rule:   RuleTreeRoot,
				TreeID: treeID,
				Detail: fmt.Sprintf("%d roots %v", len(ids), ids),
			})
		}

		want := 2 * countInTree(nodes, treeID)
		for pos := 1; pos <= want; pos++ {
			if seen[pos] != 1 {
				out = append(out, Violation{
					Rule:   RulePositions,
					TreeID: treeID,
					Detail: fmt.Sprintf("position %d used %d times", pos, seen[pos]),
				})
			}
		}
		for pos := range seen {
			if pos < 1 || pos > want {
				out = append(out, Violation{
					Rule:   RulePositions,
					TreeID: treeID,
					Detail: fmt.Sprintf("position %d outside 1..%d", pos, want),
				})
			}
		}
	}

	slices.SortStableFunc(out, func(a, b Violation) int {
		return cmp.Or(
			cmp.Compare(a.TreeID, b.TreeID),
			cmp.Compare(a.NodeID, b.NodeID),
			cmp.Compare(a.Rule, b.Rule),
			cmp.Compare(a.Detail, b.Detail),
		)
	})
	return out
}

func countInTree(nodes []*domain.Node, treeID int) int {
	count := 0
	for _, n := range nodes {
		if n.Tree.TreeID == treeID {
			count++
		}
	}
	return count
}

// SortPreorder orders nodes by tree, then lft, which is a depth-first
// listing when the encoding is consistent.
func SortPreorder(nodes []*domain.Node) {
	slices.SortStableFunc(nodes, func(a, b *domain.Node) int {
		return cmp.Or(
			cmp.Compare(a.Tree.TreeID, b.Tree.TreeID),
			cmp.Compare(a.Tree.Lft, b.Tree.Lft),
			cmp.Compare(a.ID, b.ID),
		)
	})
}

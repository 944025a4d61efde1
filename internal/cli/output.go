package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/pagetree/pagetree/internal/domain"
	"github.com/pagetree/pagetree/internal/tree"
)

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printReport(w io.Writer, r *tree.Report) {
	fmt.Fprintf(w, "%s: %d nodes in %d trees, %d updated (%s)\n",
		r.Model, r.Nodes, r.Trees, r.Changed, r.Duration.Round(time.Microsecond))
	for _, inc := range r.Inconsistencies {
		fmt.Fprintf(w, "  warning: %s\n", inc)
	}
}

// printTree writes nodes, already in preorder, one per line indented by
// level. Inner nodes end with their descendant count:
//
//	About [1,6] about  node-x  (2 below)
//	  Team [2,3] about/team  node-y
func printTree(w io.Writer, nodes []*domain.Node) {
	for _, n := range nodes {
		below := ""
		if !n.IsLeaf() {
			below = fmt.Sprintf("  (%d below)", n.DescendantCount())
		}
		fmt.Fprintf(w, "%s%s [%d,%d] %s  %s%s\n",
			strings.Repeat("  ", n.Tree.Level),
			n.Title, n.Tree.Lft, n.Tree.Rght, n.Slug.Full, n.ID, below)
	}
}

func printNode(w io.Writer, verb string, n *domain.Node, saved int) {
	fmt.Fprintf(w, "%s %s %s (%d written)\n", verb, n.ID, n.Slug.Full, saved)
}

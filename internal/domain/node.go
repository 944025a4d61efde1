package domain

// TreeFields is the nested-interval encoding of a node's position in its forest.
// For any node N and descendant D: Lft(N) < Lft(D) < Rght(D) < Rght(N).
type TreeFields struct {
	TreeID int `json:"tree_id"`
	Lft    int `json:"lft"`
	Rght   int `json:"rght"`
	Level  int `json:"level"`
}

// Contains reports whether other lies strictly inside this interval of the same tree.
func (t TreeFields) Contains(other TreeFields) bool {
	return t.TreeID == other.TreeID && t.Lft < other.Lft && other.Rght < t.Rght
}

// SlugPath holds a node's own path component and its derived full path.
type SlugPath struct {
	Segment string `json:"slug_segment"` // "epic-fantasy"
	Full    string `json:"full_slug"`    // "fiction/fantasy/epic-fantasy"
}

// Node is one entry of a hierarchical content model.
// Nodes of different models never share a tree.
type Node struct {
	Syncable
	Model    string     `json:"model"`               // Content model: "pages"
	ParentID string     `json:"parent_id,omitempty"` // Empty for roots
	Title    string     `json:"title"`
	Slug     SlugPath   `json:"slug"`
	Tree     TreeFields `json:"tree"`
}

// IsRoot returns true if the node has no parent.
func (n *Node) IsRoot() bool {
	return n.ParentID == ""
}

// IsLeaf reports whether the stored interval leaves no room for children.
func (n *Node) IsLeaf() bool {
	return n.Tree.Rght == n.Tree.Lft+1
}

// DescendantCount derives the subtree size from the interval width.
func (n *Node) DescendantCount() int {
	if n.Tree.Rght <= n.Tree.Lft {
		return 0
	}
	return (n.Tree.Rght - n.Tree.Lft - 1) / 2
}

// Clone returns a copy safe to mutate independently.
func (n *Node) Clone() *Node {
	c := *n
	return &c
}

package tree

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pagetree/pagetree/internal/domain"
)

func rules(vs []Violation) []Rule {
	out := make([]Rule, 0, len(vs))
	for _, v := range vs {
		out = append(out, v.Rule)
	}
	return out
}

func TestVerify_Consistent(t *testing.T) {
	nodes := []*domain.Node{
		node("a", "", 1, 1, 6, 0),
		node("b", "a", 1, 2, 3, 1),
		node("c", "a", 1, 4, 5, 1),
		node("d", "", 2, 1, 2, 0),
	}
	assert.Empty(t, Verify(nodes))
}

func TestVerify_DetectsCorruption(t *testing.T) {
	tests := []struct {
		name  string
		nodes []*domain.Node
		want  Rule
	}{
		{
			name: "inverted interval",
			nodes: []*domain.Node{
				node("a", "", 1, 2, 1, 0),
			},
			want: RuleInterval,
		},
		{
			name: "wrong level",
			nodes: []*domain.Node{
				node("a", "", 1, 1, 4, 0),
				node("b", "a", 1, 2, 3, 3),
			},
			want: RuleLevel,
		},
		{
			name: "child outside parent",
			nodes: []*domain.Node{
				node("a", "", 1, 1, 2, 0),
				node("b", "a", 1, 3, 4, 1),
			},
			want: RuleNesting,
		},
		{
			name: "child in another tree",
			nodes: []*domain.Node{
				node("a", "", 1, 1, 4, 0),
				node("b", "a", 2, 2, 3, 1),
			},
			want: RuleNesting,
		},
		{
			name: "missing parent",
			nodes: []*domain.Node{
				node("b", "ghost", 1, 1, 2, 1),
			},
			want: RuleParent,
		},
		{
			name: "two roots share a tree",
			nodes: []*domain.Node{
				node("a", "", 1, 1, 2, 0),
				node("b", "", 1, 3, 4, 0),
			},
			want: RuleTreeRoot,
		},
		{
			name: "gap in positions",
			nodes: []*domain.Node{
				node("a", "", 1, 1, 5, 0),
				node("b", "a", 1, 2, 3, 1),
			},
			want: RulePositions,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Verify(tt.nodes)
			require.NotEmpty(t, got)
			assert.Contains(t, rules(got), tt.want)
		})
	}
}

func TestVerify_RepairedOutputIsClean(t *testing.T) {
	corrupt := []*domain.Node{
		node("a", "", 3, 1, 1, 4),
		node("b", "a", 3, 1, 1, 0),
		node("c", "b", 8, 2, 2, 2),
	}
	require.NotEmpty(t, Verify(corrupt))

	res := Build(corrupt)
	assert.Empty(t, Verify(res.Nodes))
}

func TestViolation_String(t *testing.T) {
	v := Violation{Rule: RuleLevel, NodeID: "b", TreeID: 1, Detail: "level 3, parent level 0"}
	assert.Equal(t, "node b (tree 1): level: level 3, parent level 0", v.String())

	v = Violation{Rule: RuleTreeRoot, TreeID: 2, Detail: "2 roots [a b]"}
	assert.Equal(t, "tree 2: tree_root: 2 roots [a b]", v.String())
}

func TestSortPreorder(t *testing.T) {
	nodes := []*domain.Node{
		node("d", "", 2, 1, 2, 0),
		node("c", "a", 1, 4, 5, 1),
		node("a", "", 1, 1, 6, 0),
		node("b", "a", 1, 2, 3, 1),
	}
	SortPreorder(nodes)

	ids := make([]string, 0, len(nodes))
	for _, n := range nodes {
		ids = append(ids, n.ID)
	}
	assert.Equal(t, []string{"a", "b", "c", "d"}, ids)
}

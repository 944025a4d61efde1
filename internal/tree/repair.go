package tree

import (
	"context"
	"fmt"
	"time"

	"github.com/pagetree/pagetree/internal/domain"
	"github.com/pagetree/pagetree/internal/logger"
	"github.com/pagetree/pagetree/internal/store"
)

// Report summarises one repair run.
type Report struct {
	Model           string          `json:"model"`
	Nodes           int             `json:"nodes"`
	Trees           int             `json:"trees"`
	Changed         int             `json:"changed"`
	Inconsistencies []Inconsistency `json:"inconsistencies,omitempty"`
	Duration        time.Duration   `json:"duration"`
}

// Repairer runs Build against a NodeStore and writes the results back.
type Repairer struct {
	store  store.NodeStore
	logger *logger.Logger
}

// NewRepairer creates a Repairer.
func NewRepairer(s store.NodeStore, log *logger.Logger) *Repairer {
	return &Repairer{store: s, logger: log}
}

// Repair rebuilds the tree fields of every node of model.
// Structural inconsistencies are logged and reported but never abort the run;
// only store failures do. Nodes whose fields did not change are not written,
// so repairing a consistent forest performs no writes.
func (r *Repairer) Repair(ctx context.Context, model string) (*Report, error) {
	start := time.Now()

	nodes, err := r.store.ListNodesInTreeOrder(ctx, model)
	if err != nil {
		return nil, fmt.Errorf("load %s nodes: %w", model, err)
	}

	res := Build(nodes)
	for _, inc := range res.Inconsistencies {
		r.logger.Warn("structural inconsistency",
			"model", model,
			"kind", string(inc.Kind),
			"node_id", inc.NodeID,
			"parent_id", inc.ParentID,
			"tree_id", inc.TreeID,
		)
	}

	if err := r.Persist(ctx, res.Changed); err != nil {
		return nil, err
	}

	report := &Report{
		Model:           model,
		Nodes:           len(res.Nodes),
		Trees:           res.Trees,
		Changed:         len(res.Changed),
		Inconsistencies: res.Inconsistencies,
		Duration:        time.Since(start),
	}

	r.logger.Info("tree repaired",
		"model", model,
		"nodes", report.Nodes,
		"trees", report.Trees,
		"changed", report.Changed,
		"inconsistencies", len(report.Inconsistencies),
		"duration", report.Duration,
	)

	return report, nil
}

// Persist saves nodes in order, stopping at the first failure.
func (r *Repairer) Persist(ctx context.Context, nodes []*domain.Node) error {
	for _, n := range nodes {
		n.Touch()
		if err := r.store.SaveNode(ctx, n); err != nil {
			return fmt.Errorf("save node %s: %w", n.ID, err)
		}
		r.logger.Debug("tree fields saved",
			"node_id", n.ID,
			"tree_id", n.Tree.TreeID,
			"lft", n.Tree.Lft,
			"rght", n.Tree.Rght,
			"level", n.Tree.Level,
		)
	}
	return nil
}

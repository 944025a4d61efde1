// Package service orchestrates page edits on top of the tree and slug engines.
package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/pagetree/pagetree/internal/content"
	"github.com/pagetree/pagetree/internal/domain"
	domainerrors "github.com/pagetree/pagetree/internal/errors"
	"github.com/pagetree/pagetree/internal/id"
	"github.com/pagetree/pagetree/internal/logger"
	"github.com/pagetree/pagetree/internal/slug"
	"github.com/pagetree/pagetree/internal/store"
	"github.com/pagetree/pagetree/internal/tree"
	"github.com/pagetree/pagetree/internal/validation"
)

// PageService keeps intervals and slugs consistent across structural edits.
type PageService struct {
	store     store.Backend
	registry  *content.Registry
	repairer  *tree.Repairer
	cascader  *slug.Cascader
	validator *validation.Validator
	logger    *logger.Logger
}

// NewPageService creates a new page service.
func NewPageService(
	s store.Backend,
	registry *content.Registry,
	repairer *tree.Repairer,
	cascader *slug.Cascader,
	log *logger.Logger,
) *PageService {
	return &PageService{
		store:     s,
		registry:  registry,
		repairer:  repairer,
		cascader:  cascader,
		validator: validation.New(),
		logger:    log,
	}
}

// Change reports the outcome of an edit.
type Change struct {
	Node  *domain.Node `json:"node"`
	Saved int          `json:"saved"` // nodes written, including Node
}

// GetPage returns a single page.
func (s *PageService) GetPage(ctx context.Context, pageID string) (*domain.Node, error) {
	n, err := s.store.GetNode(ctx, pageID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, domainerrors.NotFoundf("page %s not found", pageID)
	}
	return n, err
}

// Tree returns every node of a model in depth-first order.
func (s *PageService) Tree(ctx context.Context, model string) ([]*domain.Node, error) {
	nodes, err := s.store.ListNodesInTreeOrder(ctx, model)
	if err != nil {
		return nil, err
	}
	tree.SortPreorder(nodes)
	return nodes, nil
}

// Repair rebuilds the interval encoding of a model.
func (s *PageService) Repair(ctx context.Context, model string) (*tree.Report, error) {
	return s.repairer.Repair(ctx, model)
}

// Check verifies the stored interval encoding of a model without writing.
func (s *PageService) Check(ctx context.Context, model string) ([]tree.Violation, error) {
	nodes, err := s.store.ListNodesInTreeOrder(ctx, model)
	if err != nil {
		return nil, err
	}
	return tree.Verify(nodes), nil
}

// CreatePageRequest contains fields for creating a page.
type CreatePageRequest struct {
	Model    string `json:"model" validate:"required"`
	ParentID string `json:"parent_id"`
	Title    string `json:"title" validate:"required,max=200"`
	Slug     string `json:"slug" validate:"omitempty,max=100,slug"`
}

// CreatePage adds a page as the last child of its parent, or as the last
// root when it has none. The slug defaults to the slugified title.
func (s *PageService) CreatePage(ctx context.Context, req CreatePageRequest) (*Change, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	if err := s.requireHierarchical(req.Model); err != nil {
		return nil, err
	}

	segment := req.Slug
	if segment == "" {
		segment = slug.Slugify(req.Title)
	}
	if !validation.IsSlugSegment(segment) {
		return nil, domainerrors.Validationf("title %q does not produce a usable slug", req.Title)
	}

	if req.ParentID != "" {
		parent, err := s.GetPage(ctx, req.ParentID)
		if err != nil {
			return nil, err
		}
		if parent.Model != req.Model {
			return nil, domainerrors.Validationf("parent %s belongs to model %s", parent.ID, parent.Model)
		}
	}

	pageID, err := id.NewNodeID()
	if err != nil {
		return nil, err
	}
	n := &domain.Node{
		Syncable: domain.Syncable{ID: pageID},
		Model:    req.Model,
		ParentID: req.ParentID,
		Title:    req.Title,
		Slug:     domain.SlugPath{Segment: segment},
	}
	n.InitTimestamps()

	nodes, err := s.store.ListNodesInTreeOrder(ctx, req.Model)
	if err != nil {
		return nil, err
	}
	res := tree.Build(append(nodes, n))
	placed := res.Nodes[len(res.Nodes)-1]

	// The new page goes first so a slug clash writes nothing.
	saved, err := s.cascader.Save(ctx, placed)
	if err != nil {
		return nil, s.slugError(err, placed)
	}

	others := make([]*domain.Node, 0, len(res.Changed))
	for _, c := range res.Changed {
		if c.ID != placed.ID {
			others = append(others, c)
		}
	}
	if err := s.repairer.Persist(ctx, others); err != nil {
		return nil, err
	}

	s.logger.Info("page created",
		"id", placed.ID,
		"model", placed.Model,
		"parent", placed.ParentID,
		"slug", placed.Slug.Full,
	)
	return &Change{Node: placed, Saved: saved + len(others)}, nil
}

// RenamePageRequest contains fields for renaming a page.
// At least one of them must be set.
type RenamePageRequest struct {
	Title string `json:"title" validate:"omitempty,max=200"`
	Slug  string `json:"slug" validate:"omitempty,max=100,slug"`
}

// RenamePage updates a page's title and slug segment. A new segment cascades
// to every descendant's full slug.
func (s *PageService) RenamePage(ctx context.Context, pageID string, req RenamePageRequest) (*Change, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	if req.Title == "" && req.Slug == "" {
		return nil, domainerrors.Validation("title or slug is required")
	}

	n, err := s.GetPage(ctx, pageID)
	if err != nil {
		return nil, err
	}
	if req.Title != "" {
		n.Title = req.Title
	}
	if req.Slug != "" {
		n.Slug.Segment = req.Slug
	}

	saved, err := s.cascader.Save(ctx, n)
	if err != nil {
		return nil, s.slugError(err, n)
	}

	s.logger.Info("page renamed", "id", n.ID, "slug", n.Slug.Full, "saved", saved)
	return &Change{Node: n, Saved: saved}, nil
}

// MovePage re-parents a page, with its subtree, as the last child of
// newParentID, or as the last root when newParentID is empty.
//
// Intervals are rebuilt and written first, then slugs cascade from the moved
// page. A slug clash further down the subtree stops the cascade; pages above
// it keep their new slugs.
func (s *PageService) MovePage(ctx context.Context, pageID, newParentID string) (*Change, error) {
	n, err := s.GetPage(ctx, pageID)
	if err != nil {
		return nil, err
	}
	if n.ParentID == newParentID {
		return &Change{Node: n}, nil
	}

	parentFull := ""
	if newParentID != "" {
		parent, err := s.GetPage(ctx, newParentID)
		if err != nil {
			return nil, err
		}
		if parent.Model != n.Model {
			return nil, domainerrors.Validationf("parent %s belongs to model %s", parent.ID, parent.Model)
		}
		if err := s.checkNotDescendant(ctx, parent, n.ID); err != nil {
			return nil, err
		}
		parentFull = parent.Slug.Full
	}

	segment := n.Slug.Segment
	if segment == "" {
		segment = slug.Truncate(n.Slug.Full)
	}
	newFull := slug.Join(parentFull, segment)
	existing, err := s.store.GetNodeBySlug(ctx, n.Model, newFull)
	switch {
	case err == nil && existing.ID != n.ID:
		return nil, domainerrors.AlreadyExistsf("slug %q is already used by page %s", newFull, existing.ID)
	case err != nil && !errors.Is(err, store.ErrNotFound):
		return nil, err
	}

	nodes, err := s.store.ListNodesInTreeOrder(ctx, n.Model)
	if err != nil {
		return nil, err
	}
	res := tree.Build(moveToEnd(nodes, n.ID, newParentID))
	if err := s.repairer.Persist(ctx, res.Changed); err != nil {
		return nil, err
	}

	moved, err := s.GetPage(ctx, n.ID)
	if err != nil {
		return nil, err
	}
	saved, err := s.cascader.Save(ctx, moved)
	if err != nil {
		return nil, s.slugError(err, moved)
	}

	s.logger.Info("page moved",
		"id", moved.ID,
		"from", n.ParentID,
		"to", newParentID,
		"slug", moved.Slug.Full,
	)
	return &Change{Node: moved, Saved: len(res.Changed) + saved}, nil
}

// DeletePage removes a leaf page and closes the gap in its tree.
func (s *PageService) DeletePage(ctx context.Context, pageID string) error {
	n, err := s.GetPage(ctx, pageID)
	if err != nil {
		return err
	}

	children, err := s.store.GetNodeChildren(ctx, pageID)
	if err != nil {
		return err
	}
	if len(children) > 0 {
		return domainerrors.Conflictf("page %s still has %d children", pageID, len(children))
	}

	if err := s.store.DeleteNode(ctx, pageID); err != nil {
		return err
	}
	if _, err := s.repairer.Repair(ctx, n.Model); err != nil {
		return fmt.Errorf("rebuild after delete: %w", err)
	}

	s.logger.Info("page deleted", "id", pageID, "model", n.Model)
	return nil
}

func (s *PageService) requireHierarchical(model string) error {
	m, err := s.registry.Model(model)
	if err != nil {
		return err
	}
	if !m.Hierarchical {
		return domainerrors.Validationf("content model %s is not hierarchical", model)
	}
	return nil
}

// checkNotDescendant walks up from candidate and fails if it reaches pageID.
func (s *PageService) checkNotDescendant(ctx context.Context, candidate *domain.Node, pageID string) error {
	visited := map[string]bool{}
	for cur := candidate; ; {
		if cur.ID == pageID {
			return domainerrors.Validationf("cannot move page %s under its own descendant %s", pageID, candidate.ID)
		}
		if cur.ParentID == "" || visited[cur.ID] {
			return nil
		}
		visited[cur.ID] = true

		next, err := s.store.GetNode(ctx, cur.ParentID)
		if errors.Is(err, store.ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		cur = next
	}
}

// slugError turns a store uniqueness failure into a message naming the slug.
func (s *PageService) slugError(err error, n *domain.Node) error {
	if errors.Is(err, store.ErrAlreadyExists) {
		return domainerrors.AlreadyExistsf("slug %q is already in use in %s", n.Slug.Full, n.Model).WithCause(err)
	}
	return err
}

// moveToEnd re-parents pageID and moves it, with every node below it, to the
// end of the sequence. Relative order inside the subtree is kept, so Build
// places the page last under its new parent.
func moveToEnd(nodes []*domain.Node, pageID, newParentID string) []*domain.Node {
	children := make(map[string][]string)
	for _, n := range nodes {
		children[n.ParentID] = append(children[n.ParentID], n.ID)
	}

	subtree := map[string]bool{pageID: true}
	queue := []string{pageID}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, child := range children[cur] {
			if !subtree[child] {
				subtree[child] = true
				queue = append(queue, child)
			}
		}
	}

	out := make([]*domain.Node, 0, len(nodes))
	var moved []*domain.Node
	for _, n := range nodes {
		if !subtree[n.ID] {
			out = append(out, n)
			continue
		}
		if n.ID == pageID {
			n = n.Clone()
			n.ParentID = newParentID
		}
		moved = append(moved, n)
	}
	return append(out, moved...)
}

package providers

import (
	"github.com/samber/do/v2"

	"github.com/pagetree/pagetree/internal/content"
	"github.com/pagetree/pagetree/internal/logger"
	"github.com/pagetree/pagetree/internal/service"
	"github.com/pagetree/pagetree/internal/slug"
	"github.com/pagetree/pagetree/internal/tree"
)

// ProvideRepairer provides the tree repair engine.
func ProvideRepairer(i do.Injector) (*tree.Repairer, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return tree.NewRepairer(storeHandle.Backend, log), nil
}

// ProvideCascader provides the hierarchical slug cascader.
func ProvideCascader(i do.Injector) (*slug.Cascader, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return slug.NewCascader(storeHandle.Backend, log), nil
}

// ProvidePageService provides the page service.
func ProvidePageService(i do.Injector) (*service.PageService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	registry := do.MustInvoke[*content.Registry](i)
	repairer := do.MustInvoke[*tree.Repairer](i)
	cascader := do.MustInvoke[*slug.Cascader](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewPageService(storeHandle.Backend, registry, repairer, cascader, log), nil
}

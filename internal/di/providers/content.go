package providers

import (
	"github.com/samber/do/v2"

	"github.com/pagetree/pagetree/internal/config"
	"github.com/pagetree/pagetree/internal/content"
	"github.com/pagetree/pagetree/internal/logger"
)

// ProvideRegistry loads the content models file, or the built-in models when
// none is configured.
func ProvideRegistry(i do.Injector) (*content.Registry, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	if cfg.Models.File == "" {
		return content.Default(), nil
	}

	reg, err := content.LoadFile(cfg.Models.File)
	if err != nil {
		return nil, err
	}
	log.Debug("content models loaded", "file", cfg.Models.File, "models", len(reg.Models()))
	return reg, nil
}

// Package di provides dependency injection configuration for pagetree.
package di

import (
	"github.com/samber/do/v2"

	"github.com/pagetree/pagetree/internal/config"
	"github.com/pagetree/pagetree/internal/di/providers"
)

// NewContainer creates and configures the DI container with all providers.
// Nothing is constructed until first invoked, so commands that never touch
// the store never open it.
func NewContainer(overrides config.Overrides) *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.ProvideValue(injector, overrides)
	do.Provide(injector, providers.ProvideConfig)
	do.Provide(injector, providers.ProvideLogger)
	do.Provide(injector, providers.ProvideRegistry)

	// Database layer
	do.Provide(injector, providers.ProvideStore)

	// Engines and services
	do.Provide(injector, providers.ProvideRepairer)
	do.Provide(injector, providers.ProvideCascader)
	do.Provide(injector, providers.ProvidePageService)

	return injector
}

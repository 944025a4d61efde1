// Package cli implements the pagetree command line.
package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/samber/do/v2"
	"github.com/spf13/cobra"

	"github.com/pagetree/pagetree/internal/config"
	"github.com/pagetree/pagetree/internal/content"
	"github.com/pagetree/pagetree/internal/di"
	"github.com/pagetree/pagetree/internal/di/providers"
	domainerrors "github.com/pagetree/pagetree/internal/errors"
	"github.com/pagetree/pagetree/internal/service"
)

// App holds the global flags and the container shared by all subcommands.
type App struct {
	overrides config.Overrides
	injector  *do.RootScope
	store     *providers.StoreHandle // set once a command opens the store
}

// NewRootCmd creates the top-level "pagetree" command and registers all
// subcommands against app.
func NewRootCmd(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:   "pagetree",
		Short: "Maintain nested-interval page trees and hierarchical slugs",
		// Errors are printed once by Execute, with their exit status.
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(*cobra.Command, []string) {
			if app.injector == nil {
				app.injector = di.NewContainer(app.overrides)
			}
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&app.overrides.Environment, "env", "", "environment: development, staging or production (env PAGETREE_ENV)")
	flags.StringVar(&app.overrides.LogLevel, "log-level", "", "debug, info, warn or error (env PAGETREE_LOG_LEVEL)")
	flags.StringVar(&app.overrides.LogFormat, "log-format", "", "json or pretty (env PAGETREE_LOG_FORMAT)")
	flags.StringVar(&app.overrides.DataPath, "data-path", "", "directory holding the database (env PAGETREE_DATA_PATH)")
	flags.StringVar(&app.overrides.Backend, "backend", "", "store backend: badger or sqlite (env PAGETREE_STORE_BACKEND)")
	flags.StringVar(&app.overrides.ModelsFile, "models", "", "YAML content model definitions (env PAGETREE_MODELS_FILE)")
	flags.StringVar(&app.overrides.EnvFile, "env-file", "", "dotenv file to load (default .env)")

	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return domainerrors.Validation(err.Error())
	})

	root.AddCommand(
		newRepairCmd(app),
		newCheckCmd(app),
		newTreeCmd(app),
		newCreateCmd(app),
		newRenameCmd(app),
		newMoveCmd(app),
		newDeleteCmd(app),
		newModelsCmd(app),
	)

	return root
}

// Execute runs the command line and returns the process exit status.
func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	app := &App{}
	root := NewRootCmd(app)
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.ExecuteContext(ctx)
	if closeErr := app.Close(); closeErr != nil {
		fmt.Fprintf(stderr, "Warning: %v\n", closeErr)
	}
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return domainerrors.ExitCode(err)
	}
	return 0
}

// Close closes the store if a command opened it.
func (a *App) Close() error {
	if a.store == nil {
		return nil
	}
	h := a.store
	a.store = nil
	if err := h.Shutdown(); err != nil {
		return fmt.Errorf("close store: %w", err)
	}
	return nil
}

// pages opens the store before anything else so Close can release it even
// when a later provider fails.
func (a *App) pages() (*service.PageService, error) {
	h, err := do.Invoke[*providers.StoreHandle](a.injector)
	if err != nil {
		return nil, err
	}
	a.store = h
	return do.Invoke[*service.PageService](a.injector)
}

func (a *App) registry() (*content.Registry, error) {
	return do.Invoke[*content.Registry](a.injector)
}

// exactArgs is cobra.ExactArgs reporting a validation error.
func exactArgs(n int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := cobra.ExactArgs(n)(cmd, args); err != nil {
			return domainerrors.Validation(err.Error())
		}
		return nil
	}
}

package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	domainerrors "github.com/pagetree/pagetree/internal/errors"
	"github.com/pagetree/pagetree/internal/tree"
)

func newRepairCmd(app *App) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "repair <model>...",
		Short: "Rebuild tree ids, intervals and levels from parent references",
		Long: `Rebuild the nested-interval encoding of every node of each model.

Nodes whose parent is missing, or comes after them in tree order, are placed
as roots of their own tree and reported. Only nodes whose fields change are
written, so running repair twice writes nothing the second time.`,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return domainerrors.Validation("at least one model is required")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			pages, err := app.pages()
			if err != nil {
				return err
			}

			var (
				reports []*tree.Report
				errs    []error
			)
			for _, model := range args {
				report, err := pages.Repair(cmd.Context(), model)
				if err != nil {
					errs = append(errs, fmt.Errorf("%s: %w", model, err))
					continue
				}
				reports = append(reports, report)
			}

			if asJSON {
				if err := printJSON(cmd.OutOrStdout(), reports); err != nil {
					return err
				}
			} else {
				for _, r := range reports {
					printReport(cmd.OutOrStdout(), r)
				}
			}
			return errors.Join(errs...)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print reports as JSON")
	return cmd
}

func newCheckCmd(app *App) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "check <model>",
		Short: "Verify stored intervals against parent references without writing",
		Args:  exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pages, err := app.pages()
			if err != nil {
				return err
			}

			model := args[0]
			violations, err := pages.Check(cmd.Context(), model)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				if err := printJSON(out, violations); err != nil {
					return err
				}
			} else {
				for _, v := range violations {
					fmt.Fprintln(out, v)
				}
			}

			if len(violations) > 0 {
				return domainerrors.Inconsistentf("%s: %d violations, run repair", model, len(violations))
			}
			if !asJSON {
				fmt.Fprintf(out, "%s: ok\n", model)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print violations as JSON")
	return cmd
}

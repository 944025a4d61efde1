package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	domainerrors "github.com/pagetree/pagetree/internal/errors"
	"github.com/pagetree/pagetree/internal/service"
)

func newTreeCmd(app *App) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "tree <model>",
		Short: "Print a model's pages in tree order",
		Args:  exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pages, err := app.pages()
			if err != nil {
				return err
			}
			nodes, err := pages.Tree(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if asJSON {
				return printJSON(cmd.OutOrStdout(), nodes)
			}
			printTree(cmd.OutOrStdout(), nodes)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print nodes as JSON")
	return cmd
}

func newCreateCmd(app *App) *cobra.Command {
	var req service.CreatePageRequest

	cmd := &cobra.Command{
		Use:   "create <model> <title>",
		Short: "Add a page as the last child of --parent, or as a new root",
		Args:  exactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			pages, err := app.pages()
			if err != nil {
				return err
			}
			req.Model, req.Title = args[0], args[1]

			change, err := pages.CreatePage(cmd.Context(), req)
			if err != nil {
				return err
			}
			printNode(cmd.OutOrStdout(), "created", change.Node, change.Saved)
			return nil
		},
	}

	cmd.Flags().StringVar(&req.ParentID, "parent", "", "parent page id")
	cmd.Flags().StringVar(&req.Slug, "slug", "", "slug segment (default: derived from the title)")
	return cmd
}

func newRenameCmd(app *App) *cobra.Command {
	var req service.RenamePageRequest

	cmd := &cobra.Command{
		Use:   "rename <id>",
		Short: "Change a page's title or slug segment",
		Long: `Change a page's title or slug segment.

A new slug segment is cascaded to the full slug of every page below it.`,
		Args: exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pages, err := app.pages()
			if err != nil {
				return err
			}
			change, err := pages.RenamePage(cmd.Context(), args[0], req)
			if err != nil {
				return err
			}
			printNode(cmd.OutOrStdout(), "renamed", change.Node, change.Saved)
			return nil
		},
	}

	cmd.Flags().StringVar(&req.Title, "title", "", "new title")
	cmd.Flags().StringVar(&req.Slug, "slug", "", "new slug segment")
	return cmd
}

func newMoveCmd(app *App) *cobra.Command {
	var (
		parentID string
		toRoot   bool
	)

	cmd := &cobra.Command{
		Use:   "move <id>",
		Short: "Re-parent a page and its subtree",
		Args:  exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			hasParent := cmd.Flags().Changed("parent")
			switch {
			case hasParent && toRoot:
				return domainerrors.Validation("--parent and --root cannot be combined")
			case !hasParent && !toRoot:
				return domainerrors.Validation("one of --parent or --root is required")
			case hasParent && parentID == "":
				return domainerrors.Validation("--parent needs a page id, use --root to make a root")
			}

			pages, err := app.pages()
			if err != nil {
				return err
			}
			change, err := pages.MovePage(cmd.Context(), args[0], parentID)
			if err != nil {
				return err
			}
			printNode(cmd.OutOrStdout(), "moved", change.Node, change.Saved)
			return nil
		},
	}

	cmd.Flags().StringVar(&parentID, "parent", "", "new parent page id")
	cmd.Flags().BoolVar(&toRoot, "root", false, "make the page a root")
	return cmd
}

func newDeleteCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a page without children",
		Args:  exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pages, err := app.pages()
			if err != nil {
				return err
			}
			if err := pages.DeletePage(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", args[0])
			return nil
		},
	}
}

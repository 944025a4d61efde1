package cli

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pagetree/pagetree/internal/content"
	domainerrors "github.com/pagetree/pagetree/internal/errors"
)

// modelSummary is the JSON form of one registered model.
type modelSummary struct {
	*content.Model
	UsedLumps     []string                   `json:"used_lumps"`
	Registrations []content.Registration     `json:"registrations"`
	Templates     map[string]templateSummary `json:"templates,omitempty"`
}

// templateSummary holds the resolved templates of one lump kind.
// Render is empty when no template was found.
type templateSummary struct {
	Render string `json:"render,omitempty"`
	Init   string `json:"init,omitempty"`
}

func newModelsCmd(app *App) *cobra.Command {
	var (
		asJSON       bool
		templatesDir string
	)

	cmd := &cobra.Command{
		Use:   "models",
		Short: "List registered content models, their regions and lumps",
		Long: `List registered content models, their regions and lumps.

With --templates, each used lump kind's render and init templates are
resolved against the directory, following the kind's extends chain. The
command fails when a lump kind has no render template.`,
		Args: exactArgs(0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			var fsys fs.FS
			if templatesDir != "" {
				info, err := os.Stat(templatesDir)
				if err != nil || !info.IsDir() {
					return domainerrors.Validationf("templates directory %s not found", templatesDir)
				}
				fsys = os.DirFS(templatesDir)
			}

			reg, err := app.registry()
			if err != nil {
				return err
			}

			var (
				summaries []modelSummary
				missing   []string
			)
			for _, m := range reg.Models() {
				used, err := reg.UsedLumps(m.Name)
				if err != nil {
					return err
				}
				regs, err := reg.LumpRegistrations(m.Name)
				if err != nil {
					return err
				}
				s := modelSummary{Model: m, UsedLumps: used, Registrations: regs}
				if fsys != nil {
					s.Templates, err = resolveTemplates(reg, fsys, used)
					if err != nil {
						return err
					}
					for _, kind := range used {
						if s.Templates[kind].Render == "" && !slices.Contains(missing, kind) {
							missing = append(missing, kind)
						}
					}
				}
				summaries = append(summaries, s)
			}

			if asJSON {
				if err := printJSON(cmd.OutOrStdout(), summaries); err != nil {
					return err
				}
			} else {
				for _, s := range summaries {
					printModel(cmd.OutOrStdout(), s)
				}
			}

			if len(missing) > 0 {
				slices.Sort(missing)
				return domainerrors.NotFoundf("no render template for %s", strings.Join(missing, ", "))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print models as JSON")
	cmd.Flags().StringVar(&templatesDir, "templates", "", "resolve lump templates in this directory")
	return cmd
}

func resolveTemplates(reg *content.Registry, fsys fs.FS, kinds []string) (map[string]templateSummary, error) {
	out := make(map[string]templateSummary, len(kinds))
	for _, kind := range kinds {
		render, err := reg.RenderTemplate(fsys, kind)
		if err != nil && !errors.Is(err, domainerrors.ErrNotFound) {
			return nil, err
		}
		initTmpl, err := reg.InitTemplate(fsys, kind)
		if err != nil {
			return nil, err
		}
		out[kind] = templateSummary{Render: render, Init: initTmpl}
	}
	return out, nil
}

func printModel(w io.Writer, s modelSummary) {
	kind := "flat"
	if s.Hierarchical {
		kind = "hierarchical"
	}
	fmt.Fprintf(w, "%s (%s, %s)\n", s.Name, s.TypeName, kind)

	keys := make([]string, len(s.Regions))
	for i, r := range s.Regions {
		keys[i] = r.Key
	}
	fmt.Fprintf(w, "  regions: %s\n", strings.Join(keys, ", "))
	fmt.Fprintf(w, "  lumps:   %s\n", strings.Join(s.UsedLumps, ", "))
	for _, r := range s.Registrations {
		fmt.Fprintf(w, "    %s / %s -> %s\n", r.Group, r.ContentType, strings.Join(r.Regions, ", "))
	}

	if s.Templates == nil {
		return
	}
	for _, kind := range s.UsedLumps {
		t := s.Templates[kind]
		fmt.Fprintf(w, "  template %s: render %s, init %s\n", kind, orDash(t.Render), orDash(t.Init))
	}
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// Package content holds the registry of content models, their regions and
// the lump kinds that may be placed in each region.
package content

import (
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	domainerrors "github.com/pagetree/pagetree/internal/errors"
)

// DefaultRegion is the region every model gets when it declares none.
var DefaultRegion = Region{Key: "main", Title: "Main"}

// Region is a named slot of a page template.
type Region struct {
	Key   string `yaml:"key" json:"key"`
	Title string `yaml:"title" json:"title"`
}

// LumpKind is a pluggable content block type.
type LumpKind struct {
	Name    string `yaml:"name" json:"name"`       // "Image"
	App     string `yaml:"app" json:"app"`         // "pages"
	Extends string `yaml:"extends" json:"extends"` // "File"; template lookup falls back to it

	// Explicit templates; discovered by convention when empty.
	RenderTemplate string `yaml:"render_template" json:"render_template,omitempty"`
	InitTemplate   string `yaml:"init_template" json:"init_template,omitempty"`
}

// Category groups lump kinds inside a region, in display order.
type Category struct {
	Name  string   `yaml:"name" json:"name"`
	Lumps []string `yaml:"lumps" json:"lumps"`
}

// Model is one registered content model.
type Model struct {
	Name         string   `json:"name"`
	App          string   `json:"app"`
	TypeName     string   `json:"type_name"`
	Hierarchical bool     `json:"hierarchical"`
	Regions      []Region `json:"regions"`

	// Categories per region key, resolved against the default at build time.
	lumps map[string][]Category
}

// HasRegion reports whether key is one of the model's regions.
func (m *Model) HasRegion(key string) bool {
	return slices.ContainsFunc(m.Regions, func(r Region) bool { return r.Key == key })
}

// RegionLumps returns the categories available in a region.
func (m *Model) RegionLumps(region string) []Category {
	return m.lumps[region]
}

// Registration is one lump kind attached to a model, the unit a page editor
// offers as a content type.
type Registration struct {
	Category    string   `json:"category"`
	Group       string   `json:"group"`        // verbose category title
	Lump        string   `json:"lump"`
	ContentType string   `json:"content_type"` // model type name + lump name
	Regions     []string `json:"regions"`
}

// Registry is the read-only set of content models and lump kinds.
// Build one with a Builder or LoadFile.
type Registry struct {
	models map[string]*Model
	order  []string
	kinds  map[string]*LumpKind
}

// Model returns a registered model.
func (r *Registry) Model(name string) (*Model, error) {
	m, ok := r.models[name]
	if !ok {
		return nil, domainerrors.NotFoundf("content model %q is not registered", name)
	}
	return m, nil
}

// Models returns every model in registration order.
func (r *Registry) Models() []*Model {
	out := make([]*Model, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.models[name])
	}
	return out
}

// Kind returns a registered lump kind.
func (r *Registry) Kind(name string) (*LumpKind, error) {
	k, ok := r.kinds[name]
	if !ok {
		return nil, domainerrors.NotFoundf("lump kind %q is not registered", name)
	}
	return k, nil
}

// UsedLumps returns the sorted set of lump kinds used by any region of a model.
func (r *Registry) UsedLumps(model string) ([]string, error) {
	m, err := r.Model(model)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{})
	for _, region := range m.Regions {
		for _, cat := range m.lumps[region.Key] {
			for _, lump := range cat.Lumps {
				seen[lump] = struct{}{}
			}
		}
	}

	out := make([]string, 0, len(seen))
	for lump := range seen {
		out = append(out, lump)
	}
	slices.Sort(out)
	return out, nil
}

// LumpRegistrations regroups a model's region definitions as
// category -> lump -> regions. Categories and lumps keep the order in which
// they first appear while walking the regions in declaration order.
func (r *Registry) LumpRegistrations(model string) ([]Registration, error) {
	m, err := r.Model(model)
	if err != nil {
		return nil, err
	}

	var categories []string
	byCategory := make(map[string][]*Registration)
	for _, region := range m.Regions {
		for _, cat := range m.lumps[region.Key] {
			regs, known := byCategory[cat.Name]
			if !known {
				categories = append(categories, cat.Name)
			}
			for _, lump := range cat.Lumps {
				idx := slices.IndexFunc(regs, func(reg *Registration) bool { return reg.Lump == lump })
				if idx < 0 {
					regs = append(regs, &Registration{
						Category:    cat.Name,
						Group:       Verbosify(cat.Name),
						Lump:        lump,
						ContentType: m.TypeName + lump,
					})
					idx = len(regs) - 1
				}
				if !slices.Contains(regs[idx].Regions, region.Key) {
					regs[idx].Regions = append(regs[idx].Regions, region.Key)
				}
			}
			byCategory[cat.Name] = regs
		}
	}

	var out []Registration
	for _, cat := range categories {
		for _, reg := range byCategory[cat] {
			out = append(out, *reg)
		}
	}
	return out, nil
}

// Verbosify turns a category key into its display title.
// "learn_more" -> "Learn more".
func Verbosify(s string) string {
	if s == "" {
		return s
	}
	first, size := utf8.DecodeRuneInString(s)
	return strings.ReplaceAll(string(unicode.ToUpper(first))+s[size:], "_", " ")
}

// TypeName derives a Go-style type name from a model name.
// "landing_pages" -> "LandingPages".
func TypeName(model string) string {
	title := cases.Title(language.Und)
	parts := strings.FieldsFunc(model, func(r rune) bool {
		return r == '_' || r == '-' || r == ' '
	})
	var b strings.Builder
	for _, p := range parts {
		b.WriteString(title.String(p))
	}
	return b.String()
}

package content

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"

	domainerrors "github.com/pagetree/pagetree/internal/errors"
)

// AnyRegion keys the lump definition used by regions without their own.
const AnyRegion = "*"

// ModelSpec declares a content model for the Builder.
type ModelSpec struct {
	Name         string
	App          string
	TypeName     string // derived from Name when empty
	Hierarchical bool
	Regions      []Region // DefaultRegion when empty

	// Lumps maps a region key, or AnyRegion, to its categories.
	// Definitions for regions the model does not have are ignored.
	Lumps map[string][]Category
}

// Builder collects lump kinds and models and produces a Registry.
// It is used once at startup; the resulting Registry never changes.
type Builder struct {
	kinds  []LumpKind
	models []ModelSpec
}

// NewBuilder creates an empty Builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// Kind adds lump kinds.
func (b *Builder) Kind(kinds ...LumpKind) *Builder {
	b.kinds = append(b.kinds, kinds...)
	return b
}

// Model adds a content model.
func (b *Builder) Model(spec ModelSpec) *Builder {
	spec.Regions = slices.Clone(spec.Regions)
	spec.Lumps = specLumps(spec.Lumps)
	b.models = append(b.models, spec)
	return b
}

// Build validates everything collected so far and returns the Registry.
// All problems are reported together.
func (b *Builder) Build() (*Registry, error) {
	reg := &Registry{
		models: make(map[string]*Model, len(b.models)),
		kinds:  make(map[string]*LumpKind, len(b.kinds)),
	}

	var errs []error
	for i := range b.kinds {
		k := b.kinds[i]
		switch {
		case k.Name == "":
			errs = append(errs, fmt.Errorf("lump kind #%d: name is required", i+1))
			continue
		case k.App == "":
			errs = append(errs, fmt.Errorf("lump kind %s: app is required", k.Name))
		}
		if _, dup := reg.kinds[k.Name]; dup {
			errs = append(errs, fmt.Errorf("lump kind %s: registered twice", k.Name))
			continue
		}
		reg.kinds[k.Name] = &k
	}

	for name, k := range reg.kinds {
		if err := checkLineage(reg.kinds, name); err != nil {
			errs = append(errs, err)
			continue
		}
		if k.Extends != "" {
			if _, ok := reg.kinds[k.Extends]; !ok {
				errs = append(errs, fmt.Errorf("lump kind %s: extends unknown kind %s", name, k.Extends))
			}
		}
	}

	for _, spec := range b.models {
		m, err := buildModel(spec, reg.kinds)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if _, dup := reg.models[m.Name]; dup {
			errs = append(errs, fmt.Errorf("model %s: registered twice", m.Name))
			continue
		}
		reg.models[m.Name] = m
		reg.order = append(reg.order, m.Name)
	}

	if len(errs) > 0 {
		return nil, domainerrors.Validation("invalid content registry").WithCause(errors.Join(errs...))
	}
	return reg, nil
}

func buildModel(spec ModelSpec, kinds map[string]*LumpKind) (*Model, error) {
	if spec.Name == "" {
		return nil, errors.New("model: name is required")
	}
	// Store index keys use ':' as their separator.
	if strings.Contains(spec.Name, ":") {
		return nil, fmt.Errorf("model %s: name must not contain ':'", spec.Name)
	}

	m := &Model{
		Name:         spec.Name,
		App:          spec.App,
		TypeName:     spec.TypeName,
		Hierarchical: spec.Hierarchical,
		Regions:      spec.Regions,
		lumps:        make(map[string][]Category),
	}
	if m.App == "" {
		m.App = m.Name
	}
	if m.TypeName == "" {
		m.TypeName = TypeName(m.Name)
	}
	if len(m.Regions) == 0 {
		m.Regions = []Region{DefaultRegion}
	}

	seen := make(map[string]bool, len(m.Regions))
	for i, r := range m.Regions {
		if r.Key == "" || r.Key == AnyRegion {
			return nil, fmt.Errorf("model %s: region #%d has an invalid key %q", m.Name, i+1, r.Key)
		}
		if seen[r.Key] {
			return nil, fmt.Errorf("model %s: region %s declared twice", m.Name, r.Key)
		}
		seen[r.Key] = true
		if r.Title == "" {
			m.Regions[i].Title = Verbosify(r.Key)
		}
	}

	for _, r := range m.Regions {
		cats, ok := spec.Lumps[r.Key]
		if !ok {
			cats = spec.Lumps[AnyRegion]
		}
		for _, cat := range cats {
			for _, lump := range cat.Lumps {
				if _, ok := kinds[lump]; !ok {
					return nil, fmt.Errorf("model %s: region %s uses unknown lump kind %s", m.Name, r.Key, lump)
				}
			}
		}
		m.lumps[r.Key] = cats
	}
	return m, nil
}

// checkLineage rejects extends chains that loop.
func checkLineage(kinds map[string]*LumpKind, name string) error {
	visited := map[string]bool{}
	for cur := name; cur != ""; {
		if visited[cur] {
			return fmt.Errorf("lump kind %s: extends chain loops", name)
		}
		visited[cur] = true
		k, ok := kinds[cur]
		if !ok {
			return nil
		}
		cur = k.Extends
	}
	return nil
}

func cloneCategories(cats []Category) []Category {
	out := make([]Category, len(cats))
	for i, c := range cats {
		out[i] = Category{Name: c.Name, Lumps: append([]string(nil), c.Lumps...)}
	}
	return out
}

// specLumps copies a lumps map so later edits to the caller's map do not leak in.
func specLumps(in map[string][]Category) map[string][]Category {
	out := maps.Clone(in)
	for k, v := range out {
		out[k] = cloneCategories(v)
	}
	return out
}

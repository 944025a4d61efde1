package content

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	domainerrors "github.com/pagetree/pagetree/internal/errors"
)

// file is the YAML layout of a models file.
//
//	kinds:
//	  - name: File
//	    app: pages
//	  - name: Image
//	    app: pages
//	    extends: File
//	models:
//	  - name: pages
//	    hierarchical: true
//	    regions:
//	      - key: main
//	      - key: sidebar
//	        title: Side bar
//	    lumps:
//	      - region: "*"
//	        categories:
//	          - name: media
//	            lumps: [Image, File]
type file struct {
	Kinds  []LumpKind  `yaml:"kinds"`
	Models []modelFile `yaml:"models"`
}

type modelFile struct {
	Name         string       `yaml:"name"`
	App          string       `yaml:"app"`
	TypeName     string       `yaml:"type_name"`
	Hierarchical bool         `yaml:"hierarchical"`
	Regions      []Region     `yaml:"regions"`
	Lumps        []regionFile `yaml:"lumps"`
}

type regionFile struct {
	Region     string     `yaml:"region"`
	Categories []Category `yaml:"categories"`
}

// LoadFile reads a models file and builds a Registry from it.
func LoadFile(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read models file: %w", err)
	}
	reg, err := Load(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return reg, nil
}

// Load decodes a models definition and builds a Registry from it.
// Unknown fields are rejected.
func Load(r io.Reader) (*Registry, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var f file
	if err := dec.Decode(&f); err != nil && err != io.EOF {
		return nil, domainerrors.Validation("invalid models file").WithCause(err)
	}

	b := NewBuilder().Kind(f.Kinds...)
	for _, m := range f.Models {
		spec := ModelSpec{
			Name:         m.Name,
			App:          m.App,
			TypeName:     m.TypeName,
			Hierarchical: m.Hierarchical,
			Regions:      m.Regions,
			Lumps:        make(map[string][]Category, len(m.Lumps)),
		}
		for _, rl := range m.Lumps {
			if _, dup := spec.Lumps[rl.Region]; dup {
				return nil, domainerrors.Validationf("model %s: lumps for region %q listed twice", m.Name, rl.Region)
			}
			spec.Lumps[rl.Region] = rl.Categories
		}
		b.Model(spec)
	}
	return b.Build()
}

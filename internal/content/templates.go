package content

import (
	"errors"
	"io/fs"
	"path"
	"strings"

	domainerrors "github.com/pagetree/pagetree/internal/errors"
)

// Template file names looked up by convention.
const (
	RenderTemplateName = "render.html"
	InitTemplateName   = "init.html"
)

// TemplateCandidates lists the conventional template paths for a lump kind,
// walking up its extends chain: "<app>/lumps/<kind>/<name>".
func (r *Registry) TemplateCandidates(kind, name string) ([]string, error) {
	k, err := r.Kind(kind)
	if err != nil {
		return nil, err
	}

	var out []string
	for k != nil {
		out = append(out, path.Join(k.App, "lumps", strings.ToLower(k.Name), name))
		if k.Extends == "" {
			break
		}
		k = r.kinds[k.Extends]
	}
	return out, nil
}

// FindTemplate returns the first candidate that exists in fsys.
func (r *Registry) FindTemplate(fsys fs.FS, kind, name string) (string, error) {
	candidates, err := r.TemplateCandidates(kind, name)
	if err != nil {
		return "", err
	}

	for _, c := range candidates {
		_, err := fs.Stat(fsys, c)
		if err == nil {
			return c, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return "", domainerrors.Wrapf(err, domainerrors.CodeInternal, "stat template %s", c)
		}
	}
	return "", domainerrors.NotFoundf("no %s template for lump kind %s", name, kind).
		WithDetails(map[string]any{"candidates": candidates})
}

// RenderTemplate resolves the template used to render a lump kind.
// An explicit template wins over discovery.
func (r *Registry) RenderTemplate(fsys fs.FS, kind string) (string, error) {
	k, err := r.Kind(kind)
	if err != nil {
		return "", err
	}
	if k.RenderTemplate != "" {
		return k.RenderTemplate, nil
	}
	return r.FindTemplate(fsys, kind, RenderTemplateName)
}

// InitTemplate resolves the optional editor init template.
// A missing template is not an error and yields "".
func (r *Registry) InitTemplate(fsys fs.FS, kind string) (string, error) {
	k, err := r.Kind(kind)
	if err != nil {
		return "", err
	}
	if k.InitTemplate != "" {
		return k.InitTemplate, nil
	}
	tmpl, err := r.FindTemplate(fsys, kind, InitTemplateName)
	if errors.Is(err, domainerrors.ErrNotFound) {
		return "", nil
	}
	return tmpl, err
}

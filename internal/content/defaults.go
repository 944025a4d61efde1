package content

// DefaultKinds are the lump kinds available when no models file is configured.
var DefaultKinds = []LumpKind{
	{Name: "Text", App: "pages"},
	{Name: "File", App: "pages"},
	{Name: "Image", App: "pages", Extends: "File"},
	{Name: "Video", App: "pages", Extends: "File"},
	{Name: "Quote", App: "pages", Extends: "Text"},
}

// DefaultModels is a single hierarchical "pages" model with a main region
// and a sidebar, the layout most sites start from.
var DefaultModels = []ModelSpec{
	{
		Name:         "pages",
		TypeName:     "Page",
		Hierarchical: true,
		Regions: []Region{
			{Key: "main", Title: "Main"},
			{Key: "sidebar", Title: "Sidebar"},
		},
		Lumps: map[string][]Category{
			AnyRegion: {
				{Name: "text", Lumps: []string{"Text", "Quote"}},
				{Name: "media", Lumps: []string{"Image", "Video", "File"}},
			},
			"sidebar": {
				{Name: "text", Lumps: []string{"Text"}},
				{Name: "media", Lumps: []string{"Image"}},
			},
		},
	},
}

// Default builds the registry used when no models file is configured.
func Default() *Registry {
	b := NewBuilder().Kind(DefaultKinds...)
	for _, m := range DefaultModels {
		b.Model(m)
	}
	reg, err := b.Build()
	if err != nil {
		panic("content: invalid default registry: " + err.Error())
	}
	return reg
}

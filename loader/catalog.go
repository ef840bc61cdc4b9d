package loader

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Template is one hosted meme template the studio can fetch.
type Template struct {
	ID   string `yaml:"id" json:"id"`
	Name string `yaml:"name" json:"name"`
	URL  string `yaml:"url" json:"url"`
}

// Catalog is the ordered set of available templates. Declared order is
// presentation order.
type Catalog struct {
	templates []Template
	byID      map[string]int
}

// builtinTemplates is the default catalog of commonly hosted meme images.
var builtinTemplates = []Template{
	{ID: "drake", Name: "Drake Hotline Bling", URL: "https://i.imgflip.com/30b1gx.jpg"},
	{ID: "distracted-boyfriend", Name: "Distracted Boyfriend", URL: "https://i.imgflip.com/1ur9b0.jpg"},
	{ID: "two-buttons", Name: "Two Buttons", URL: "https://i.imgflip.com/1g8my4.jpg"},
	{ID: "change-my-mind", Name: "Change My Mind", URL: "https://i.imgflip.com/24y43o.jpg"},
	{ID: "expanding-brain", Name: "Expanding Brain", URL: "https://i.imgflip.com/1jwhww.jpg"},
	{ID: "success-kid", Name: "Success Kid", URL: "https://i.imgflip.com/1bhk.jpg"},
}

// catalogFile is the YAML shape of a TEMPLATES_FILE override.
type catalogFile struct {
	Templates []Template `yaml:"templates"`
}

// LoadCatalog builds the template catalog. An empty path yields the built-in
// catalog; otherwise the YAML file at path replaces it wholesale.
func LoadCatalog(path string) (*Catalog, error) {
	if path == "" {
		return newCatalog(builtinTemplates)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("loader: read templates file %s: %w", path, err)
	}

	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("loader: parse templates file %s: %w", path, err)
	}
	if len(file.Templates) == 0 {
		return nil, fmt.Errorf("loader: templates file %s defines no templates", path)
	}

	return newCatalog(file.Templates)
}

// newCatalog validates entries and builds the id index.
func newCatalog(templates []Template) (*Catalog, error) {
	byID := make(map[string]int, len(templates))
	for i, tpl := range templates {
		if tpl.ID == "" {
			return nil, fmt.Errorf("loader: template %d has no id", i)
		}
		if tpl.URL == "" {
			return nil, fmt.Errorf("loader: template %q has no url", tpl.ID)
		}
		if _, dup := byID[tpl.ID]; dup {
			return nil, fmt.Errorf("loader: duplicate template id %q", tpl.ID)
		}
		byID[tpl.ID] = i
	}
	return &Catalog{templates: templates, byID: byID}, nil
}

// List returns the templates in presentation order. The returned slice is a
// copy; callers may not mutate the catalog.
func (c *Catalog) List() []Template {
	out := make([]Template, len(c.templates))
	copy(out, c.templates)
	return out
}

// Find returns the template with the given id.
func (c *Catalog) Find(id string) (Template, bool) {
	i, ok := c.byID[id]
	if !ok {
		return Template{}, false
	}
	return c.templates[i], true
}

// Len returns the number of templates.
func (c *Catalog) Len() int {
	return len(c.templates)
}

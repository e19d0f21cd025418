package templates

import (
	_ "embed"
	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/jonathan/resume-builder/internal/types"
)

//go:embed catalog.yaml
var defaultCatalog []byte

var accentColorPattern = regexp.MustCompile(`^#(?:[0-9A-Fa-f]{3}|[0-9A-Fa-f]{6})$`)

// CatalogEntry is one template record plus the layout that renders it
type CatalogEntry struct {
	types.Template `yaml:",inline"`
	// Layout names a built-in layout; empty means the entry id
	Layout string `yaml:"layout,omitempty"`
}

// Catalog is the configured set of templates
type Catalog struct {
	Default   string         `yaml:"default"`
	Templates []CatalogEntry `yaml:"templates"`
}

// DefaultCatalog returns the embedded catalog
func DefaultCatalog() (*Catalog, error) {
	return ParseCatalog(defaultCatalog)
}

// LoadCatalog reads a catalog file. An empty path loads the embedded catalog.
func LoadCatalog(path string) (*Catalog, error) {
	if path == "" {
		return DefaultCatalog()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &TemplateError{
			Message: fmt.Sprintf("failed to read catalog file: %s", path),
			Cause:   err,
		}
	}
	return ParseCatalog(data)
}

// ParseCatalog decodes and checks a YAML catalog. Ids are lower-cased; the
// default id must name an entry, and an empty default means the first entry.
func ParseCatalog(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, &TemplateError{Message: "failed to parse catalog", Cause: err}
	}
	if len(c.Templates) == 0 {
		return nil, &TemplateError{Message: "catalog has no templates"}
	}

	seen := make(map[string]bool, len(c.Templates))
	for i := range c.Templates {
		entry := &c.Templates[i]
		entry.ID = normalizeID(entry.ID)
		if entry.ID == "" {
			return nil, &TemplateError{Message: fmt.Sprintf("templates[%d]: id is required", i)}
		}
		if seen[entry.ID] {
			return nil, &TemplateError{Message: fmt.Sprintf("templates[%d]: duplicate id %q", i, entry.ID)}
		}
		seen[entry.ID] = true

		if !accentColorPattern.MatchString(entry.AccentColor) {
			return nil, &TemplateError{
				Message: fmt.Sprintf("templates[%d]: accent_color %q is not a hex color", i, entry.AccentColor),
			}
		}
		if entry.DisplayName == "" {
			entry.DisplayName = entry.ID
		}
		entry.Layout = normalizeID(entry.Layout)
		if entry.Layout == "" {
			entry.Layout = entry.ID
		}
	}

	c.Default = normalizeID(c.Default)
	if c.Default == "" {
		c.Default = c.Templates[0].ID
	}
	if !seen[c.Default] {
		return nil, &TemplateError{Message: fmt.Sprintf("default template %q is not in the catalog", c.Default)}
	}
	return &c, nil
}

func normalizeID(id string) string {
	return strings.ToLower(strings.TrimSpace(id))
}

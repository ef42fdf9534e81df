// =============================================================================
// Revenue Guard - Parts Inventory
// =============================================================================
//
// The inventory is the catalog of parts a technician can bill. It maps an
// item id (e.g. "P101") to a part name and a list price.
//
// SOURCES:
//   - Built-in catalog (used when no inventory file is configured)
//   - XLSX workbook (first sheet, columns Item ID | Item Name | Price)
//   - YAML file (list of {id, name, price})
//
// =============================================================================

package inventory

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// Part is one catalog entry.
type Part struct {
	ID    string          `yaml:"id"`
	Name  string          `yaml:"name"`
	Price decimal.Decimal `yaml:"price"`
}

// Catalog is an ordered list of parts with unique ids.
type Catalog struct {
	// Source is the file the catalog was loaded from, or "built-in".
	Source string

	parts []Part
	byID  map[string]int
}

// NewCatalog builds a catalog, rejecting empty and duplicate ids.
func NewCatalog(source string, parts []Part) (*Catalog, error) {
	c := &Catalog{
		Source: source,
		parts:  make([]Part, 0, len(parts)),
		byID:   make(map[string]int, len(parts)),
	}

	for i, p := range parts {
		p.ID = strings.TrimSpace(p.ID)
		p.Name = strings.TrimSpace(p.Name)

		if p.ID == "" {
			return nil, fmt.Errorf("part %d has no id", i+1)
		}
		if p.Name == "" {
			return nil, fmt.Errorf("part %s has no name", p.ID)
		}
		if _, exists := c.byID[p.ID]; exists {
			return nil, fmt.Errorf("duplicate part id %s", p.ID)
		}
		if p.Price.IsNegative() {
			return nil, fmt.Errorf("part %s has a negative price", p.ID)
		}

		c.byID[p.ID] = len(c.parts)
		c.parts = append(c.parts, p)
	}

	return c, nil
}

// Default returns the built-in catalog.
func Default() *Catalog {
	c, err := NewCatalog("built-in", []Part{
		{ID: "P101", Name: "Oil Filter", Price: decimal.RequireFromString("85.00")},
		{ID: "P102", Name: "Brake Pads", Price: decimal.RequireFromString("120.00")},
		{ID: "P103", Name: "Plastic Clip", Price: decimal.RequireFromString("5.00")},
		{ID: "P104", Name: "Headlight Assembly", Price: decimal.RequireFromString("600.00")},
		{ID: "P105", Name: "Front Bumper", Price: decimal.RequireFromString("1200.00")},
	})
	if err != nil {
		panic(err)
	}
	return c
}

// Load reads a catalog from path. An empty path returns the built-in catalog.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default(), nil
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		return LoadXLSX(path, DefaultCatalogColumns())
	case ".yaml", ".yml":
		return LoadYAML(path)
	default:
		return nil, fmt.Errorf("unsupported inventory file type: %s", path)
	}
}

// LoadYAML reads a catalog from a YAML file of the form:
//
//	parts:
//	  - id: P101
//	    name: Oil Filter
//	    price: "85.00"
func LoadYAML(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read inventory file: %w", err)
	}

	var doc struct {
		Parts []Part `yaml:"parts"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse inventory file: %w", err)
	}

	return NewCatalog(path, doc.Parts)
}

// Parts returns the catalog entries in order.
func (c *Catalog) Parts() []Part {
	return append([]Part(nil), c.parts...)
}

// Names returns the part names in catalog order.
func (c *Catalog) Names() []string {
	names := make([]string, len(c.parts))
	for i, p := range c.parts {
		names[i] = p.Name
	}
	return names
}

// Lookup returns the part with the given id.
func (c *Catalog) Lookup(id string) (Part, bool) {
	i, ok := c.byID[id]
	if !ok {
		return Part{}, false
	}
	return c.parts[i], true
}

// ByName returns the first part whose name equals name exactly.
func (c *Catalog) ByName(name string) (Part, bool) {
	for _, p := range c.parts {
		if p.Name == name {
			return p, true
		}
	}
	return Part{}, false
}

// Len returns the number of parts.
func (c *Catalog) Len() int {
	return len(c.parts)
}

package catalog

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var defaultCatalog []byte

// Medication is a medication with its available doses.
type Medication struct {
	Name  string   `yaml:"name" json:"name"`
	Doses []string `yaml:"doses" json:"doses"`
}

// Category groups medications.
type Category struct {
	Name        string       `yaml:"name" json:"name"`
	Medications []Medication `yaml:"medications" json:"medications"`
}

// Catalog is the ordered list of medication categories offered to the user.
type Catalog struct {
	Categories []Category `yaml:"categories" json:"categories"`
}

// Load parses the embedded catalog.
func Load() (*Catalog, error) {
	return Parse(defaultCatalog)
}

// Parse decodes a catalog from YAML. Every category needs at least one
// medication and every medication at least one dose.
func Parse(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}
	if len(c.Categories) == 0 {
		return nil, fmt.Errorf("catalog has no categories")
	}
	for _, cat := range c.Categories {
		if len(cat.Medications) == 0 {
			return nil, fmt.Errorf("category %q has no medications", cat.Name)
		}
		for _, m := range cat.Medications {
			if len(m.Doses) == 0 {
				return nil, fmt.Errorf("medication %q has no doses", m.Name)
			}
		}
	}
	return &c, nil
}

// Lookup returns the medication named name within category.
func (c *Catalog) Lookup(category, name string) (Medication, bool) {
	for _, cat := range c.Categories {
		if cat.Name != category {
			continue
		}
		for _, m := range cat.Medications {
			if m.Name == name {
				return m, true
			}
		}
	}
	return Medication{}, false
}

package model

import "strings"

// Product associates an ASIN with its display name
type Product struct {
	ASIN string `json:"ASIN"`
	Name string `json:"name"`
}

// Catalog resolves ASINs to display names
type Catalog struct {
	names map[string]string
}

// NewCatalog builds a catalog; later products override earlier ones with the
// same ASIN and blank names are ignored
func NewCatalog(products ...Product) *Catalog {
	c := &Catalog{names: make(map[string]string, len(products))}
	c.Add(products...)
	return c
}

// Add registers products in the catalog
func (c *Catalog) Add(products ...Product) {
	for _, p := range products {
		name := strings.TrimSpace(p.Name)
		if p.ASIN == "" || name == "" {
			continue
		}
		c.names[p.ASIN] = name
	}
}

// Name returns the display name for asin
func (c *Catalog) Name(asin string) (string, bool) {
	if c == nil {
		return "", false
	}
	name, ok := c.names[asin]
	return name, ok
}

// Len returns the number of named products
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.names)
}

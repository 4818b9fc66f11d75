// Package catalog holds the fixed, ordered registry of metadata attributes
// the quality matrix reports on. The registry is a two-level taxonomy:
// category (level 0) -> named attribute (level 1), with each attribute mapped
// to its queryable field path in the search index.
package catalog

import (
	"fmt"

	"github.com/kailas-cloud/metaqual/internal/domain"
)

// Column is an immutable entry of the attribute catalog.
// Category headers carry no field path and live at level 0.
type Column struct {
	category  string
	name      string
	fieldPath string
	level     int
}

// Category returns the coarse grouping label of the column.
func (c Column) Category() string { return c.category }

// Name returns the stable short key used as the column id everywhere.
func (c Column) Name() string { return c.name }

// FieldPath returns the queryable attribute path, empty for headers.
func (c Column) FieldPath() string { return c.fieldPath }

// Level returns 0 for a category header and 1 for a leaf attribute.
func (c Column) Level() int { return c.level }

// IsHeader reports whether the column is a structural category header.
func (c Column) IsHeader() bool { return c.level == 0 }

// Category groups leaf attributes under a shared header.
type Category struct {
	name    string
	columns []Column
}

// NewCategory creates a category with its leaf attributes in declared order.
func NewCategory(name string, attrs ...Attribute) Category {
	cols := make([]Column, 0, len(attrs))
	for _, a := range attrs {
		cols = append(cols, Column{category: name, name: a.Name, fieldPath: a.FieldPath, level: 1})
	}
	return Category{name: name, columns: cols}
}

// Attribute is the declaration input for one leaf column.
type Attribute struct {
	Name      string
	FieldPath string
}

// Header returns the category's structural header column.
func (c Category) Header() Column {
	return Column{category: c.name, name: c.name, level: 0}
}

// Name returns the category name.
func (c Category) Name() string { return c.name }

// Columns returns the category's leaf columns in declared order.
func (c Category) Columns() []Column { return c.columns }

// Catalog is the static ordered attribute registry.
type Catalog struct {
	categories []Category
	byName     map[string]Column
}

// New validates and creates a Catalog. Attribute names must be globally
// unique across the whole catalog, including category names; duplicates are
// a fatal configuration error.
func New(categories ...Category) (Catalog, error) {
	byName := make(map[string]Column)
	for _, cat := range categories {
		if cat.name == "" {
			return Catalog{}, fmt.Errorf("%w: category name is required", domain.ErrCatalogInvalid)
		}
		if _, ok := byName[cat.name]; ok {
			return Catalog{}, fmt.Errorf("%w: duplicate name %q", domain.ErrCatalogInvalid, cat.name)
		}
		byName[cat.name] = cat.Header()
		for _, col := range cat.columns {
			if col.name == "" {
				return Catalog{}, fmt.Errorf("%w: attribute name is required in category %q",
					domain.ErrCatalogInvalid, cat.name)
			}
			if col.fieldPath == "" {
				return Catalog{}, fmt.Errorf("%w: attribute %q has no field path",
					domain.ErrCatalogInvalid, col.name)
			}
			if _, ok := byName[col.name]; ok {
				return Catalog{}, fmt.Errorf("%w: duplicate name %q", domain.ErrCatalogInvalid, col.name)
			}
			byName[col.name] = col
		}
	}
	return Catalog{categories: categories, byName: byName}, nil
}

// MustNew creates a Catalog or panics. For static declarations.
func MustNew(categories ...Category) Catalog {
	c, err := New(categories...)
	if err != nil {
		panic(err)
	}
	return c
}

// Categories returns the categories in declared order.
func (c Catalog) Categories() []Category { return c.categories }

// Leaves returns all leaf attribute columns in catalog order,
// skipping headers.
func (c Catalog) Leaves() []Column {
	var out []Column
	for _, cat := range c.categories {
		out = append(out, cat.columns...)
	}
	return out
}

// ColumnByName looks up a column (header or leaf) by its id.
func (c Catalog) ColumnByName(name string) (Column, bool) {
	col, ok := c.byName[name]
	return col, ok
}

// Default is the attribute registry for educational-resource metadata.
// Declaration order here is the canonical column order of every matrix.
func Default() Catalog {
	return MustNew(
		NewCategory("descriptive",
			Attribute{Name: "title", FieldPath: "cclom_title"},
			Attribute{Name: "description", FieldPath: "cclom_general_description"},
			Attribute{Name: "keywords", FieldPath: "cclom_general_keyword"},
		),
		NewCategory("educational",
			Attribute{Name: "educational_context", FieldPath: "ccm_educationalcontext"},
			Attribute{Name: "intended_role", FieldPath: "ccm_intended_enduser_role"},
			Attribute{Name: "learning_resource_type", FieldPath: "ccm_oeh_lrt"},
		),
		NewCategory("rights",
			Attribute{Name: "license", FieldPath: "ccm_commonlicense_key"},
			Attribute{Name: "author", FieldPath: "ccm_author_freetext"},
		),
		NewCategory("classification",
			Attribute{Name: "discipline", FieldPath: "ccm_taxonid"},
		),
		NewCategory("technical",
			Attribute{Name: "url", FieldPath: "ccm_wwwurl"},
		),
	)
}

// Package matrix assembles sparse per-group missing-attribute counts into
// the complete, deterministically ordered quality matrix served by the API.
package matrix

// Meta carries identity and display info for one row or column.
type Meta struct {
	ID       string
	Label    string
	AltLabel string
	Level    int
}

// Row is one assembled matrix row. Counts maps column name to the
// non-missing document count; category-header rows keep it empty.
type Row struct {
	Meta   Meta
	Counts map[string]int
	Total  int
}

// Matrix is the full response shape: ordered columns, ordered rows.
// Both orders derive from catalog declaration and tree traversal order,
// never from map iteration.
type Matrix struct {
	Columns []Meta
	Rows    []Row
}

// Group identifies one row group of the authoritative group set
// (a collection tree node or a replication source).
type Group struct {
	ID       string
	Label    string
	AltLabel string
	Level    int
}

// GroupAttr keys a missing-count cell by (group id, attribute name).
type GroupAttr struct {
	Group string
	Attr  string
}

// Counts holds the raw output of one grouped aggregation query:
// per-group document totals and per-(group, attribute) missing counts.
// Groups without matching documents appear in neither map.
type Counts struct {
	Totals  map[string]int
	Missing map[GroupAttr]int
}

// Total returns the document total for a group, zero when the index
// omitted its bucket.
func (c Counts) Total(group string) int { return c.Totals[group] }

// MissingFor returns the missing count for a cell, zero when absent.
func (c Counts) MissingFor(group, attr string) int {
	return c.Missing[GroupAttr{Group: group, Attr: attr}]
}

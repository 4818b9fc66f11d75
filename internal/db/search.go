package db

// SearchResult is the output of a list or count search.
type SearchResult struct {
	Total   int
	Entries []SearchEntry
}

// SearchEntry is a single document hit.
type SearchEntry struct {
	Key    string
	Fields map[string]string
}

// Apply is a computed expression evaluated per document before grouping.
type Apply struct {
	Expression string
	As         string
}

// Reducer aggregates per group bucket. Arg names a loaded or applied
// field for SUM; COUNT takes none.
type Reducer struct {
	Func string // COUNT, SUM
	Arg  string
	As   string
}

// AggregateQuery describes one FT.AGGREGATE request: filter, per-document
// applies, a single GROUPBY with its reducers.
type AggregateQuery struct {
	IndexName string
	Query     string
	Load      []string
	Applies   []Apply
	GroupBy   string
	Reducers  []Reducer
	Limit     int
}

// AggregateResult holds the grouped buckets. A group with no matching
// documents yields no bucket at all; callers supply defaults.
type AggregateResult struct {
	Buckets []Bucket
}

// Bucket is one group's reduced values keyed by property name,
// including the GROUPBY key itself.
type Bucket map[string]string

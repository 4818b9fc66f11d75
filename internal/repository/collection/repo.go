// Package collection fetches the flat collection records a tree build
// needs from the search index.
package collection

import (
	"context"
	"fmt"

	"github.com/kailas-cloud/metaqual/internal/db"
	dbredis "github.com/kailas-cloud/metaqual/internal/db/redis"
	"github.com/kailas-cloud/metaqual/internal/domain"
	"github.com/kailas-cloud/metaqual/internal/domain/tree"
)

const defaultMaxNodes = 10000

var treeFields = []string{"node_id", "title", "parent_id"}

// store is the consumer interface for collection retrieval (ISP).
type store interface {
	SearchList(ctx context.Context, index, query string, offset, limit int, fields []string) (*db.SearchResult, error)
}

// Repo reads collection records from the collections index.
type Repo struct {
	store    store
	index    string
	maxNodes int
}

// New creates a collection repository over the named index.
func New(s store, index string) *Repo {
	return &Repo{store: s, index: index, maxNodes: defaultMaxNodes}
}

// WithMaxNodes caps the subtree fetch size.
func (r *Repo) WithMaxNodes(n int) *Repo {
	if n > 0 {
		r.maxNodes = n
	}
	return r
}

// Subtree returns the root record and all descendant records under it in
// one ancestry-scoped query. The root must exist; descendants may be
// empty. Index failures surface as ErrUpstreamQuery, a missing root as
// ErrTreeNotFound.
func (r *Repo) Subtree(ctx context.Context, rootID string) (tree.Record, []tree.Record, error) {
	rootRes, err := r.store.SearchList(ctx, r.index, dbredis.TagFilter("node_id", rootID), 0, 1, treeFields)
	if err != nil {
		return tree.Record{}, nil, fmt.Errorf("%w: fetch root %s: %w", domain.ErrUpstreamQuery, rootID, err)
	}
	if rootRes.Total == 0 || len(rootRes.Entries) == 0 {
		return tree.Record{}, nil, fmt.Errorf("%w: %s", domain.ErrTreeNotFound, rootID)
	}
	root := recordFromEntry(rootRes.Entries[0])

	// The path field carries every ancestor id, so one query covers the
	// whole subtree regardless of depth.
	descRes, err := r.store.SearchList(ctx, r.index, dbredis.TagFilter("path", rootID), 0, r.maxNodes, treeFields)
	if err != nil {
		return tree.Record{}, nil, fmt.Errorf("%w: fetch subtree %s: %w", domain.ErrUpstreamQuery, rootID, err)
	}

	records := make([]tree.Record, 0, len(descRes.Entries))
	for _, e := range descRes.Entries {
		records = append(records, recordFromEntry(e))
	}
	return root, records, nil
}

func recordFromEntry(e db.SearchEntry) tree.Record {
	return tree.Record{
		ID:       e.Fields["node_id"],
		Title:    e.Fields["title"],
		ParentID: e.Fields["parent_id"],
	}
}

// Package aggregation is the single component that runs grouped
// missing-attribute counting against the search index. One FT.AGGREGATE
// per (grouping key, scope) buckets every matching material by the group
// field and sums a per-attribute missing flag inside each bucket; issuing
// one query per (group x attribute) pair would cost O(groups x attributes)
// round trips instead of O(1).
package aggregation

import (
	"context"
	"fmt"
	"strconv"

	"github.com/kailas-cloud/metaqual/internal/db"
	dbredis "github.com/kailas-cloud/metaqual/internal/db/redis"
	"github.com/kailas-cloud/metaqual/internal/domain"
	"github.com/kailas-cloud/metaqual/internal/domain/catalog"
	"github.com/kailas-cloud/metaqual/internal/domain/matrix"
)

const missingPrefix = "__missing_"

// store is the consumer interface for aggregation (ISP).
type store interface {
	Aggregate(ctx context.Context, q *db.AggregateQuery) (*db.AggregateResult, error)
}

// Repo implements the aggregation gateway over the materials index.
type Repo struct {
	store store
	index string
	limit int
}

// New creates an aggregation repository over the named materials index.
func New(s store, index string) *Repo {
	return &Repo{store: s, index: index}
}

// WithBucketLimit caps the number of returned group buckets.
func (r *Repo) WithBucketLimit(n int) *Repo {
	r.limit = n
	return r
}

// GroupedCounts returns per-group document totals and per-(group,
// attribute) missing counts for every leaf attribute, scoped to the
// subtree of rootID. Groups without matching documents appear in neither
// map; callers own the defaulting. Returns only raw counts, never
// ratios. A non-success index response aborts the whole computation with
// ErrUpstreamQuery; there is no partial result.
func (r *Repo) GroupedCounts(
	ctx context.Context, key matrix.GroupKey, rootID string, leaves []catalog.Column,
) (matrix.Counts, error) {
	q := &db.AggregateQuery{
		IndexName: r.index,
		Query:     dbredis.TagFilter("collections", rootID),
		GroupBy:   string(key),
		Limit:     r.limit,
	}

	q.Reducers = append(q.Reducers, db.Reducer{Func: "COUNT", As: "total"})
	for _, leaf := range leaves {
		if leaf.IsHeader() {
			continue
		}
		alias := missingPrefix + leaf.Name()
		q.Load = append(q.Load, leaf.FieldPath())
		q.Applies = append(q.Applies, db.Apply{
			Expression: fmt.Sprintf("1 - exists(@%s)", leaf.FieldPath()),
			As:         alias,
		})
		q.Reducers = append(q.Reducers, db.Reducer{Func: "SUM", Arg: alias, As: alias})
	}

	res, err := r.store.Aggregate(ctx, q)
	if err != nil {
		return matrix.Counts{}, fmt.Errorf("%w: grouped counts by %s: %w", domain.ErrUpstreamQuery, key, err)
	}

	return parseCounts(res, string(key), leaves), nil
}

func parseCounts(res *db.AggregateResult, groupField string, leaves []catalog.Column) matrix.Counts {
	counts := matrix.Counts{
		Totals:  make(map[string]int, len(res.Buckets)),
		Missing: make(map[matrix.GroupAttr]int),
	}
	for _, bucket := range res.Buckets {
		group := bucket[groupField]
		if group == "" {
			continue
		}
		counts.Totals[group] = bucketInt(bucket, "total")
		for _, leaf := range leaves {
			if leaf.IsHeader() {
				continue
			}
			// Absent per-attribute keys read as zero missing.
			counts.Missing[matrix.GroupAttr{Group: group, Attr: leaf.Name()}] =
				bucketInt(bucket, missingPrefix+leaf.Name())
		}
	}
	return counts
}

// bucketInt parses a reduced value; FT.AGGREGATE reports sums as floats.
func bucketInt(b db.Bucket, key string) int {
	v, ok := b[key]
	if !ok {
		return 0
	}
	if n, err := strconv.Atoi(v); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(v, 64); err == nil {
		return int(f)
	}
	return 0
}

package quality

import (
	"context"

	"github.com/kailas-cloud/metaqual/internal/domain/catalog"
	"github.com/kailas-cloud/metaqual/internal/domain/matrix"
	"github.com/kailas-cloud/metaqual/internal/domain/tree"
)

// TreeSource reads the collection subtree rooted at a node.
type TreeSource interface {
	Subtree(ctx context.Context, rootID string) (tree.Record, []tree.Record, error)
}

// CountSource runs the grouped missing-attribute aggregation.
type CountSource interface {
	GroupedCounts(
		ctx context.Context, key matrix.GroupKey, rootID string, leaves []catalog.Column,
	) (matrix.Counts, error)
}

// LabelSource resolves attribute captions.
type LabelSource interface {
	Labels(ctx context.Context) (catalog.LabelSet, error)
}

// Timeline persists and reads immutable matrix snapshots.
type Timeline interface {
	Save(
		ctx context.Context, mode matrix.Mode, nodeID string, ts int64,
		rows []matrix.Row, totals map[string]int,
	) error
	Timestamps(ctx context.Context, mode matrix.Mode, nodeID string) ([]int64, error)
	ByTimestamp(
		ctx context.Context, mode matrix.Mode, nodeID string, ts int64,
	) ([]matrix.Row, map[string]int, error)
}

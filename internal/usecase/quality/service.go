// Package quality computes metadata quality matrices over the collection
// tree and serves their historical snapshots.
package quality

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/metaqual/internal/domain/catalog"
	"github.com/kailas-cloud/metaqual/internal/domain/matrix"
	"github.com/kailas-cloud/metaqual/internal/domain/tree"
	"github.com/kailas-cloud/metaqual/internal/metrics"
)

// Service orchestrates one live matrix computation: subtree, grouped
// aggregation, assembly, orientation.
type Service struct {
	tree     TreeSource
	counts   CountSource
	labels   LabelSource
	timeline Timeline
	cat      catalog.Catalog
	logger   *zap.Logger
}

// New creates a quality service over the given sources.
func New(
	treeSrc TreeSource, counts CountSource, labels LabelSource,
	timeline Timeline, cat catalog.Catalog, logger *zap.Logger,
) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		tree:     treeSrc,
		counts:   counts,
		labels:   labels,
		timeline: timeline,
		cat:      cat,
		logger:   logger,
	}
}

// Compute builds the live quality matrix for the subtree rooted at
// nodeID, oriented per mode.
func (s *Service) Compute(ctx context.Context, nodeID string, mode matrix.Mode) (matrix.Matrix, error) {
	start := time.Now()
	m, _, err := s.compute(ctx, nodeID, mode)

	status := "ok"
	if err != nil {
		status = "error"
	}
	metrics.MatrixComputeTotal.WithLabelValues(string(mode), status).Inc()
	metrics.MatrixComputeDuration.WithLabelValues(string(mode)).Observe(time.Since(start).Seconds())

	return m, err
}

// compute additionally returns the per-group document totals, which the
// snapshot writer persists alongside the rows.
func (s *Service) compute(
	ctx context.Context, nodeID string, mode matrix.Mode,
) (matrix.Matrix, map[string]int, error) {
	rootRec, records, err := s.tree.Subtree(ctx, nodeID)
	if err != nil {
		return matrix.Matrix{}, nil, fmt.Errorf("load subtree: %w", err)
	}

	root, stats, err := tree.Build(rootRec, records)
	if err != nil {
		return matrix.Matrix{}, nil, fmt.Errorf("build tree: %w", err)
	}
	if stats.SkippedUntitled > 0 || stats.Duplicates > 0 || stats.Orphaned > 0 {
		s.logger.Debug("collection tree irregularities",
			zap.String("node_id", nodeID),
			zap.Int("skipped_untitled", stats.SkippedUntitled),
			zap.Int("duplicates", stats.Duplicates),
			zap.Int("orphaned", stats.Orphaned),
		)
	}

	labels, err := s.labels.Labels(ctx)
	if err != nil {
		return matrix.Matrix{}, nil, fmt.Errorf("resolve labels: %w", err)
	}

	counts, err := s.counts.GroupedCounts(ctx, mode.GroupKey(), nodeID, s.cat.Leaves())
	if err != nil {
		return matrix.Matrix{}, nil, err
	}

	if mode == matrix.ModeSources {
		m := s.sourceMatrix(counts, labels)
		return m, counts.Totals, nil
	}
	m := s.collectionMatrix(root, counts, labels)
	return m, counts.Totals, nil
}

// collectionMatrix: one row per tree node in depth-first order, one
// column per catalog attribute with category headers interleaved.
func (s *Service) collectionMatrix(
	root *tree.Node, counts matrix.Counts, labels catalog.LabelSet,
) matrix.Matrix {
	var groups []matrix.Group
	root.Walk(func(n *tree.Node) {
		groups = append(groups, matrix.Group{ID: n.ID(), Label: n.Title(), Level: n.Level()})
	})

	return matrix.Matrix{
		Columns: matrix.OrderColumnsByCatalog(s.cat, s.allLeaves(), labels),
		Rows:    matrix.Assemble(groups, counts, s.cat.Leaves()),
	}
}

// sourceMatrix: one column per replication source present in the index,
// one row per catalog attribute with category header rows interleaved.
// The source set comes from the aggregation itself; a source with zero
// scoped documents has no column.
func (s *Service) sourceMatrix(counts matrix.Counts, labels catalog.LabelSet) matrix.Matrix {
	sources := sortedGroups(counts.Totals)

	groups := make([]matrix.Group, 0, len(sources))
	for _, src := range sources {
		groups = append(groups, matrix.Group{ID: src, Label: src, Level: 1})
	}

	bySource := matrix.Assemble(groups, counts, s.cat.Leaves())
	rows := matrix.Transpose(bySource, leafNames(s.cat))

	// Sources partition the scoped corpus, so every attribute row shares
	// the same denominator: the total document count across sources.
	corpus := sumTotals(counts.Totals)
	for i := range rows {
		rows[i].Total = corpus
	}

	return matrix.Matrix{
		Columns: sourceColumns(sources),
		Rows:    matrix.OrderRowsByCatalog(rows, s.cat, labels),
	}
}

// Snapshot computes the matrix for (nodeID, mode) and appends it to the
// timeline under ts. Persisting an already-present timestamp is a no-op.
func (s *Service) Snapshot(ctx context.Context, nodeID string, mode matrix.Mode, ts int64) error {
	m, totals, err := s.compute(ctx, nodeID, mode)
	if err != nil {
		return err
	}
	if err := s.timeline.Save(ctx, mode, nodeID, ts, m.Rows, totals); err != nil {
		return err
	}
	return nil
}

// Timestamps lists the stored snapshot timestamps for (nodeID, mode),
// oldest first.
func (s *Service) Timestamps(ctx context.Context, nodeID string, mode matrix.Mode) ([]int64, error) {
	return s.timeline.Timestamps(ctx, mode, nodeID)
}

// AtTimestamp returns the snapshot stored at exactly ts. Columns are not
// persisted; they are rebuilt from the catalog for collection matrices
// and from the persisted source totals for source matrices.
func (s *Service) AtTimestamp(
	ctx context.Context, nodeID string, mode matrix.Mode, ts int64,
) (matrix.Matrix, error) {
	rows, totals, err := s.timeline.ByTimestamp(ctx, mode, nodeID, ts)
	if err != nil {
		return matrix.Matrix{}, err
	}

	if mode == matrix.ModeSources {
		return matrix.Matrix{
			Columns: sourceColumns(sortedGroups(totals)),
			Rows:    rows,
		}, nil
	}

	labels, err := s.labels.Labels(ctx)
	if err != nil {
		return matrix.Matrix{}, fmt.Errorf("resolve labels: %w", err)
	}
	return matrix.Matrix{
		Columns: matrix.OrderColumnsByCatalog(s.cat, s.allLeaves(), labels),
		Rows:    rows,
	}, nil
}

func (s *Service) allLeaves() map[string]bool {
	computed := make(map[string]bool, len(s.cat.Leaves()))
	for _, leaf := range s.cat.Leaves() {
		computed[leaf.Name()] = true
	}
	return computed
}

func leafNames(cat catalog.Catalog) []string {
	leaves := cat.Leaves()
	names := make([]string, 0, len(leaves))
	for _, leaf := range leaves {
		names = append(names, leaf.Name())
	}
	return names
}

func sortedGroups(totals map[string]int) []string {
	out := make([]string, 0, len(totals))
	for g := range totals {
		out = append(out, g)
	}
	sort.Strings(out)
	return out
}

func sourceColumns(sources []string) []matrix.Meta {
	cols := make([]matrix.Meta, 0, len(sources))
	for _, src := range sources {
		cols = append(cols, matrix.Meta{ID: src, Label: src, Level: 1})
	}
	return cols
}

func sumTotals(totals map[string]int) int {
	sum := 0
	for _, v := range totals {
		sum += v
	}
	return sum
}

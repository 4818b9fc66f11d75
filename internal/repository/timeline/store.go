// Package timeline persists computed quality-matrix snapshots for
// historical comparison.
package timeline

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/kailas-cloud/metaqual/internal/domain"
	"github.com/kailas-cloud/metaqual/internal/domain/matrix"
)

// schema is the single append-only snapshot table. The primary key makes
// a repeated save of the same snapshot a no-op instead of a duplicate.
const schema = `
CREATE TABLE IF NOT EXISTS quality_timeline (
	ts       BIGINT NOT NULL,
	mode     TEXT   NOT NULL,
	node_id  UUID   NOT NULL,
	quality  JSONB  NOT NULL,
	total    JSONB  NOT NULL,
	PRIMARY KEY (mode, node_id, ts)
)`

// Store implements the timeline persistence over Postgres.
type Store struct {
	db *sql.DB
}

// Open connects to Postgres via the pgx stdlib driver.
func Open(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open timeline db: %w", err)
	}
	return db, nil
}

// New creates a timeline store.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// EnsureSchema creates the snapshot table when absent.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("ensure timeline schema: %w", err)
	}
	return nil
}

// Ping checks database availability.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("ping timeline db: %w", err)
	}
	return nil
}

// Save appends one immutable snapshot. A colliding (mode, node_id, ts)
// key is treated as an idempotent retry and succeeds without writing.
// The store does not gate save frequency; that intent belongs to the
// scheduler calling it.
func (s *Store) Save(
	ctx context.Context, mode matrix.Mode, nodeID string, ts int64,
	rows []matrix.Row, totals map[string]int,
) error {
	quality, err := json.Marshal(rowsToDTO(rows))
	if err != nil {
		return fmt.Errorf("marshal snapshot rows: %w", err)
	}
	total, err := json.Marshal(totals)
	if err != nil {
		return fmt.Errorf("marshal snapshot totals: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
INSERT INTO quality_timeline (ts, mode, node_id, quality, total)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (mode, node_id, ts) DO NOTHING
`, ts, string(mode), nodeID, quality, total)
	if err != nil {
		return fmt.Errorf("%w: save snapshot: %w", domain.ErrUpstreamQuery, err)
	}
	return nil
}

// Timestamps lists the snapshot timestamps for (mode, nodeID), oldest
// first.
func (s *Store) Timestamps(ctx context.Context, mode matrix.Mode, nodeID string) ([]int64, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT ts FROM quality_timeline
WHERE mode = $1 AND node_id = $2
ORDER BY ts ASC
`, string(mode), nodeID)
	if err != nil {
		return nil, fmt.Errorf("%w: list timestamps: %w", domain.ErrUpstreamQuery, err)
	}
	defer rows.Close()

	out := make([]int64, 0)
	for rows.Next() {
		var ts int64
		if err := rows.Scan(&ts); err != nil {
			return nil, fmt.Errorf("scan timestamp: %w", err)
		}
		out = append(out, ts)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterate timestamps: %w", domain.ErrUpstreamQuery, err)
	}
	return out, nil
}

// ByTimestamp loads one snapshot by exact key.
func (s *Store) ByTimestamp(
	ctx context.Context, mode matrix.Mode, nodeID string, ts int64,
) ([]matrix.Row, map[string]int, error) {
	var quality, total []byte
	err := s.db.QueryRowContext(ctx, `
SELECT quality, total FROM quality_timeline
WHERE mode = $1 AND node_id = $2 AND ts = $3
`, string(mode), nodeID, ts).Scan(&quality, &total)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil, fmt.Errorf("%w: %s/%s@%d", domain.ErrSnapshotNotFound, mode, nodeID, ts)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("%w: load snapshot: %w", domain.ErrUpstreamQuery, err)
	}

	var dtos []rowDTO
	if err := json.Unmarshal(quality, &dtos); err != nil {
		return nil, nil, fmt.Errorf("unmarshal snapshot rows: %w", err)
	}
	var totals map[string]int
	if err := json.Unmarshal(total, &totals); err != nil {
		return nil, nil, fmt.Errorf("unmarshal snapshot totals: %w", err)
	}
	return rowsFromDTO(dtos), totals, nil
}

package redis

import (
	"context"
	"fmt"
	"strconv"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/metaqual/internal/db"
)

// Aggregate runs one FT.AGGREGATE request: scope filter, per-document
// APPLY expressions, a single GROUPBY with its reducers.
func (s *Store) Aggregate(ctx context.Context, q *db.AggregateQuery) (*db.AggregateResult, error) {
	if q.IndexName == "" {
		return nil, fmt.Errorf("index name is required")
	}
	if q.GroupBy == "" {
		return nil, fmt.Errorf("group-by field is required")
	}

	args, err := buildAggregateArgs(q)
	if err != nil {
		return nil, err
	}

	cmd := s.b().Arbitrary("FT.AGGREGATE").Args(args...).Build()
	raw, err := s.do(ctx, cmd).ToArray()
	if err != nil {
		return nil, &db.Error{Op: db.OpAggregate, Err: err}
	}

	return parseAggregateResult(raw)
}

func buildAggregateArgs(q *db.AggregateQuery) ([]string, error) {
	query := q.Query
	if query == "" {
		query = "*"
	}
	args := []string{q.IndexName, query}

	if len(q.Load) > 0 {
		args = append(args, "LOAD", strconv.Itoa(len(q.Load)))
		for _, f := range q.Load {
			args = append(args, "@"+f)
		}
	}

	for _, a := range q.Applies {
		if a.As == "" {
			return nil, fmt.Errorf("apply %q needs an alias", a.Expression)
		}
		args = append(args, "APPLY", a.Expression, "AS", a.As)
	}

	args = append(args, "GROUPBY", "1", "@"+q.GroupBy)
	for _, r := range q.Reducers {
		switch r.Func {
		case "COUNT":
			args = append(args, "REDUCE", "COUNT", "0")
		case "SUM":
			if r.Arg == "" {
				return nil, fmt.Errorf("SUM reducer %q needs an argument", r.As)
			}
			args = append(args, "REDUCE", "SUM", "1", "@"+r.Arg)
		default:
			return nil, fmt.Errorf("unsupported reducer %q", r.Func)
		}
		if r.As == "" {
			return nil, fmt.Errorf("reducer %s needs an alias", r.Func)
		}
		args = append(args, "AS", r.As)
	}

	limit := q.Limit
	if limit <= 0 {
		limit = 10000
	}
	args = append(args, "LIMIT", "0", strconv.Itoa(limit), "DIALECT", "2")
	return args, nil
}

// parseAggregateResult parses the RESP2 FT.AGGREGATE reply:
// [groupCount, [prop1, val1, prop2, val2, ...], ...].
func parseAggregateResult(raw []rueidis.RedisMessage) (*db.AggregateResult, error) {
	if len(raw) == 0 {
		return &db.AggregateResult{}, nil
	}

	if _, err := raw[0].AsInt64(); err != nil {
		return nil, fmt.Errorf("parse group count: %w", err)
	}

	buckets := make([]db.Bucket, 0, len(raw)-1)
	for i := 1; i < len(raw); i++ {
		pairs, err := raw[i].ToArray()
		if err != nil {
			continue
		}
		buckets = append(buckets, db.Bucket(parseFieldPairs(pairs)))
	}

	return &db.AggregateResult{Buckets: buckets}, nil
}

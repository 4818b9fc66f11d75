package redis

import (
	"strings"
	"testing"

	"github.com/kailas-cloud/metaqual/internal/db"
)

func TestBuildAggregateArgs_FullQuery(t *testing.T) {
	q := &db.AggregateQuery{
		IndexName: "metaqual:materials:idx",
		Query:     "@collections:{root\\-id}",
		Load:      []string{"cclom_title"},
		Applies: []db.Apply{
			{Expression: "1 - exists(@cclom_title)", As: "__missing_title"},
		},
		GroupBy: "collections",
		Reducers: []db.Reducer{
			{Func: "COUNT", As: "total"},
			{Func: "SUM", Arg: "__missing_title", As: "__missing_title"},
		},
		Limit: 500,
	}

	args, err := buildAggregateArgs(q)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	joined := strings.Join(args, " ")
	for _, want := range []string{
		"metaqual:materials:idx @collections:{root\\-id}",
		"LOAD 1 @cclom_title",
		"APPLY 1 - exists(@cclom_title) AS __missing_title",
		"GROUPBY 1 @collections",
		"REDUCE COUNT 0 AS total",
		"REDUCE SUM 1 @__missing_title AS __missing_title",
		"LIMIT 0 500",
		"DIALECT 2",
	} {
		if !strings.Contains(joined, want) {
			t.Errorf("args missing %q in %q", want, joined)
		}
	}

	if strings.Count(joined, "GROUPBY") != 1 {
		t.Errorf("expected exactly one GROUPBY, got %d", strings.Count(joined, "GROUPBY"))
	}
}

func TestBuildAggregateArgs_DefaultsQueryAndLimit(t *testing.T) {
	q := &db.AggregateQuery{
		IndexName: "idx",
		GroupBy:   "replication_source",
		Reducers:  []db.Reducer{{Func: "COUNT", As: "total"}},
	}

	args, err := buildAggregateArgs(q)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if args[1] != "*" {
		t.Errorf("empty scope must default to *, got %q", args[1])
	}
	joined := strings.Join(args, " ")
	if !strings.Contains(joined, "LIMIT 0 10000") {
		t.Errorf("expected default limit, got %q", joined)
	}
}

func TestBuildAggregateArgs_RejectsUnknownReducer(t *testing.T) {
	q := &db.AggregateQuery{
		IndexName: "idx",
		GroupBy:   "collections",
		Reducers:  []db.Reducer{{Func: "AVG", Arg: "x", As: "avg_x"}},
	}
	if _, err := buildAggregateArgs(q); err == nil {
		t.Fatal("expected error for unsupported reducer")
	}
}

func TestBuildAggregateArgs_RejectsSumWithoutArg(t *testing.T) {
	q := &db.AggregateQuery{
		IndexName: "idx",
		GroupBy:   "collections",
		Reducers:  []db.Reducer{{Func: "SUM", As: "s"}},
	}
	if _, err := buildAggregateArgs(q); err == nil {
		t.Fatal("expected error for SUM without argument")
	}
}

func TestTagFilter_EscapesValue(t *testing.T) {
	got := TagFilter("collections", "7e2b-4a")
	want := "@collections:{7e2b\\-4a}"
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

package timeline

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/kailas-cloud/metaqual/internal/domain"
	"github.com/kailas-cloud/metaqual/internal/domain/matrix"
)

func sampleRows() []matrix.Row {
	return []matrix.Row{
		{
			Meta:   matrix.Meta{ID: "root", Label: "Root", Level: 0},
			Counts: map[string]int{"title": 2314},
			Total:  2314,
		},
	}
}

func TestSave_Inserts(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	defer db.Close()

	store := New(db)
	mock.ExpectExec("INSERT INTO quality_timeline").
		WithArgs(int64(1756400000), "collections", "root", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err = store.Save(context.Background(), matrix.ModeCollections, "root", 1756400000,
		sampleRows(), map[string]int{"title": 2314})
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestSave_DuplicateKeyIsNoop(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	defer db.Close()

	store := New(db)
	// ON CONFLICT DO NOTHING: zero rows affected, still success.
	mock.ExpectExec("INSERT INTO quality_timeline").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err = store.Save(context.Background(), matrix.ModeCollections, "root", 1756400000,
		sampleRows(), map[string]int{"title": 2314})
	if err != nil {
		t.Fatalf("duplicate save must be a no-op, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestTimestamps_OrderedAscending(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	defer db.Close()

	store := New(db)
	rows := sqlmock.NewRows([]string{"ts"}).AddRow(int64(100)).AddRow(int64(200))
	mock.ExpectQuery("SELECT ts FROM quality_timeline").
		WithArgs("sources", "root").
		WillReturnRows(rows)

	got, err := store.Timestamps(context.Background(), matrix.ModeSources, "root")
	if err != nil {
		t.Fatalf("Timestamps() error = %v", err)
	}
	if len(got) != 2 || got[0] != 100 || got[1] != 200 {
		t.Fatalf("unexpected timestamps: %v", got)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestByTimestamp_RoundTrip(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	defer db.Close()

	store := New(db)
	quality := `[{"meta":{"id":"root","label":"Root","level":0},"counts":{"title":2314},"total":2314}]`
	total := `{"title":2314}`
	mock.ExpectQuery("SELECT quality, total FROM quality_timeline").
		WithArgs("collections", "root", int64(100)).
		WillReturnRows(sqlmock.NewRows([]string{"quality", "total"}).AddRow([]byte(quality), []byte(total)))

	rows, totals, err := store.ByTimestamp(context.Background(), matrix.ModeCollections, "root", 100)
	if err != nil {
		t.Fatalf("ByTimestamp() error = %v", err)
	}
	if len(rows) != 1 || rows[0].Meta.ID != "root" || rows[0].Counts["title"] != 2314 {
		t.Fatalf("unexpected rows: %+v", rows)
	}
	if totals["title"] != 2314 {
		t.Fatalf("unexpected totals: %v", totals)
	}
}

func TestByTimestamp_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	defer db.Close()

	store := New(db)
	mock.ExpectQuery("SELECT quality, total FROM quality_timeline").
		WillReturnRows(sqlmock.NewRows([]string{"quality", "total"}))

	_, _, err = store.ByTimestamp(context.Background(), matrix.ModeCollections, "root", 999)
	if !errors.Is(err, domain.ErrSnapshotNotFound) {
		t.Fatalf("expected ErrSnapshotNotFound, got %v", err)
	}
}

func TestTimestamps_QueryFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	defer db.Close()

	store := New(db)
	mock.ExpectQuery("SELECT ts FROM quality_timeline").
		WillReturnError(errors.New("connection reset"))

	_, err = store.Timestamps(context.Background(), matrix.ModeCollections, "root")
	if !errors.Is(err, domain.ErrUpstreamQuery) {
		t.Fatalf("expected ErrUpstreamQuery, got %v", err)
	}
}

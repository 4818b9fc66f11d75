package matrix

import (
	"testing"

	"github.com/kailas-cloud/metaqual/internal/domain/catalog"
)

func testCatalog(t *testing.T) catalog.Catalog {
	t.Helper()
	return catalog.MustNew(
		catalog.NewCategory("descriptive",
			catalog.Attribute{Name: "title", FieldPath: "cclom_title"},
			catalog.Attribute{Name: "url", FieldPath: "ccm_wwwurl"},
		),
		catalog.NewCategory("rights",
			catalog.Attribute{Name: "license", FieldPath: "ccm_commonlicense_key"},
		),
	)
}

func TestAssemble_NonMissingIsTotalMinusMissing(t *testing.T) {
	groups := []Group{
		{ID: "R", Label: "Root", Level: 0},
		{ID: "C1", Label: "Child 1", Level: 1},
		{ID: "C2", Label: "Child 2", Level: 1},
	}
	counts := Counts{
		Totals: map[string]int{"R": 2314, "C1": 87, "C2": 72},
		Missing: map[GroupAttr]int{
			{Group: "R", Attr: "title"}:  0,
			{Group: "C1", Attr: "title"}: 0,
			{Group: "C2", Attr: "title"}: 0,
		},
	}

	rows := Assemble(groups, counts, testCatalog(t).Leaves())
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}

	wantTitle := map[string]int{"R": 2314, "C1": 87, "C2": 72}
	for _, r := range rows {
		if got := r.Counts["title"]; got != wantTitle[r.Meta.ID] {
			t.Errorf("row %s: expected title count %d, got %d", r.Meta.ID, wantTitle[r.Meta.ID], got)
		}
		if r.Counts["title"] != r.Total {
			t.Errorf("row %s: nothing missing, count must equal total", r.Meta.ID)
		}
	}
}

func TestAssemble_AbsentGroupYieldsZeroRowNotOmission(t *testing.T) {
	groups := []Group{{ID: "empty", Label: "Fresh collection", Level: 1}}

	rows := Assemble(groups, Counts{}, testCatalog(t).Leaves())
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	r := rows[0]
	if r.Total != 0 {
		t.Errorf("expected total 0, got %d", r.Total)
	}
	for name, v := range r.Counts {
		if v != 0 {
			t.Errorf("expected zero count for %s, got %d", name, v)
		}
	}
	if len(r.Counts) != 3 {
		t.Errorf("expected all 3 leaf columns populated with zeros, got %d", len(r.Counts))
	}
}

func TestAssemble_InclusionChecksGatewayCounts(t *testing.T) {
	groups := []Group{{ID: "g"}}
	counts := Counts{
		Totals: map[string]int{"g": 10},
		Missing: map[GroupAttr]int{
			{Group: "g", Attr: "title"}: 15, // over-reported
			{Group: "g", Attr: "url"}:   -3,
		},
	}

	rows := Assemble(groups, counts, testCatalog(t).Leaves())
	r := rows[0]
	if r.Counts["title"] != 0 {
		t.Errorf("over-reported missing must clamp to 0, got %d", r.Counts["title"])
	}
	if r.Counts["url"] != 10 {
		t.Errorf("negative missing must clamp count to total, got %d", r.Counts["url"])
	}
	for _, v := range r.Counts {
		if v > r.Total {
			t.Errorf("count %d exceeds total %d", v, r.Total)
		}
	}
}

func TestOrderColumnsByCatalog_SkipsUncomputed(t *testing.T) {
	computed := map[string]bool{"title": true}
	cols := OrderColumnsByCatalog(testCatalog(t), computed, nil)

	// "url" is skipped (not zero-filled), "rights" collapses with its
	// only attribute uncomputed.
	if len(cols) != 2 {
		t.Fatalf("expected header + title, got %d columns", len(cols))
	}
	if cols[0].ID != "descriptive" || cols[0].Level != 0 {
		t.Errorf("expected descriptive header first, got %+v", cols[0])
	}
	if cols[1].ID != "title" || cols[1].Level != 1 {
		t.Errorf("expected title leaf second, got %+v", cols[1])
	}
}

func TestOrderColumnsByCatalog_AppliesLabels(t *testing.T) {
	computed := map[string]bool{"title": true, "url": true, "license": true}
	labels := catalog.LabelSet{
		"title":       {Caption: "Titel", AltCaption: "Title"},
		"descriptive": {Caption: "Beschreibend"},
	}

	cols := OrderColumnsByCatalog(testCatalog(t), computed, labels)
	if cols[0].Label != "Beschreibend" {
		t.Errorf("expected header caption, got %q", cols[0].Label)
	}
	if cols[1].Label != "Titel" || cols[1].AltLabel != "Title" {
		t.Errorf("expected title labels, got %+v", cols[1])
	}
	// No caption in the set: label falls back to the column id.
	if cols[2].Label != "url" {
		t.Errorf("expected fallback label, got %q", cols[2].Label)
	}
}

func TestOrderRowsByCatalog_HeadersAndDeclaredOrder(t *testing.T) {
	rows := []Row{
		{Meta: Meta{ID: "license"}, Counts: map[string]int{"src-a": 5}, Total: 9},
		{Meta: Meta{ID: "title"}, Counts: map[string]int{"src-a": 7}, Total: 9},
	}

	ordered := OrderRowsByCatalog(rows, testCatalog(t), nil)
	want := []struct {
		id    string
		level int
	}{
		{"descriptive", 0},
		{"title", 1},
		{"rights", 0},
		{"license", 1},
	}
	if len(ordered) != len(want) {
		t.Fatalf("expected %d rows, got %d", len(want), len(ordered))
	}
	for i, w := range want {
		if ordered[i].Meta.ID != w.id || ordered[i].Meta.Level != w.level {
			t.Errorf("row %d: expected %s/%d, got %s/%d",
				i, w.id, w.level, ordered[i].Meta.ID, ordered[i].Meta.Level)
		}
	}
	if len(ordered[0].Counts) != 0 {
		t.Errorf("header rows must carry an empty counts map")
	}
	if ordered[1].Counts["src-a"] != 7 || ordered[1].Total != 9 {
		t.Errorf("attribute row data must survive reordering: %+v", ordered[1])
	}
}

func TestOrderRowsByCatalog_ComputedZeroStays(t *testing.T) {
	// Zero values are data; only attributes absent from the computed set
	// are dropped.
	rows := []Row{{Meta: Meta{ID: "title"}, Counts: map[string]int{"src-a": 0}}}

	ordered := OrderRowsByCatalog(rows, testCatalog(t), nil)
	if len(ordered) != 2 {
		t.Fatalf("expected header + title, got %d rows", len(ordered))
	}
	if v, ok := ordered[1].Counts["src-a"]; !ok || v != 0 {
		t.Errorf("computed zero cell must survive, got %v (present=%v)", v, ok)
	}
}

func TestTranspose_RoundTripRestoresCells(t *testing.T) {
	rows := []Row{
		{Meta: Meta{ID: "c1"}, Counts: map[string]int{"title": 4, "url": 2}},
		{Meta: Meta{ID: "c2"}, Counts: map[string]int{"title": 9}},
	}
	colKeys := []string{"title", "url"}
	rowKeys := []string{"c1", "c2"}

	once := Transpose(rows, colKeys)
	if len(once) != 2 {
		t.Fatalf("expected 2 transposed rows, got %d", len(once))
	}
	// c2 never populated "url": the cell must stay absent.
	if _, ok := once[1].Counts["c2"]; ok {
		t.Error("transpose invented a cell for an absent combination")
	}
	if once[0].Counts["c2"] != 9 {
		t.Errorf("expected title/c2 = 9, got %d", once[0].Counts["c2"])
	}

	twice := Transpose(once, rowKeys)
	for i, orig := range rows {
		if len(twice[i].Counts) != len(orig.Counts) {
			t.Fatalf("row %s: cell set size changed: %d != %d",
				orig.Meta.ID, len(twice[i].Counts), len(orig.Counts))
		}
		for k, v := range orig.Counts {
			if twice[i].Counts[k] != v {
				t.Errorf("row %s cell %s: expected %d, got %d", orig.Meta.ID, k, v, twice[i].Counts[k])
			}
		}
	}
}

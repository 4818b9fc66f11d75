package matrix

import "github.com/kailas-cloud/metaqual/internal/domain/catalog"

// Assemble builds one complete row per group in the authoritative group
// set, regardless of which groups the aggregation actually returned.
// A group absent from counts yields a row of zeros, never a missing row.
//
// Cell inversion: the index counts absence, the matrix reports presence,
// so counts[attr] = total - missing. Gateway counts are inclusion-checked
// rather than trusted: a cell can never exceed its row total or drop
// below zero.
func Assemble(groups []Group, counts Counts, leaves []catalog.Column) []Row {
	rows := make([]Row, 0, len(groups))
	for _, g := range groups {
		total := counts.Total(g.ID)
		cells := make(map[string]int, len(leaves))
		for _, leaf := range leaves {
			if leaf.IsHeader() {
				// Structural columns carry no data at any row.
				continue
			}
			present := total - counts.MissingFor(g.ID, leaf.Name())
			if present < 0 {
				present = 0
			}
			if present > total {
				present = total
			}
			cells[leaf.Name()] = present
		}
		rows = append(rows, Row{
			Meta:   Meta{ID: g.ID, Label: g.Label, AltLabel: g.AltLabel, Level: g.Level},
			Counts: cells,
			Total:  total,
		})
	}
	return rows
}

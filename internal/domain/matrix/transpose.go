package matrix

// Transpose flips a group-rows/attribute-columns matrix into
// attribute-rows/group-columns without re-running the aggregation.
// newRowKeys are the old column names in their desired order; each
// becomes a row whose counts map is keyed by the old rows' ids.
// Combinations the old rows never populated stay absent -- transposition
// preserves structure, it does not invent cells.
func Transpose(rows []Row, newRowKeys []string) []Row {
	out := make([]Row, 0, len(newRowKeys))
	for _, key := range newRowKeys {
		cells := make(map[string]int, len(rows))
		for _, old := range rows {
			if v, ok := old.Counts[key]; ok {
				cells[old.Meta.ID] = v
			}
		}
		out = append(out, Row{
			Meta:   Meta{ID: key, Level: 1},
			Counts: cells,
		})
	}
	return out
}

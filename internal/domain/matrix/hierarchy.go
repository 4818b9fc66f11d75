package matrix

import "github.com/kailas-cloud/metaqual/internal/domain/catalog"

// OrderColumnsByCatalog walks the catalog in declaration order and emits
// column metas for the collection-oriented matrix: each category header
// (level 0) followed by its leaf attributes that exist in the computed
// set. Uncomputed attributes are skipped, not zero-filled; this is a
// filter-and-reorder over the attribute set, unlike row assembly which
// is complete over the group set.
func OrderColumnsByCatalog(cat catalog.Catalog, computed map[string]bool, labels catalog.LabelSet) []Meta {
	var out []Meta
	for _, category := range cat.Categories() {
		var leaves []Meta
		for _, col := range category.Columns() {
			if !computed[col.Name()] {
				continue
			}
			leaves = append(leaves, columnMeta(col, labels))
		}
		if len(leaves) == 0 {
			continue
		}
		out = append(out, columnMeta(category.Header(), labels))
		out = append(out, leaves...)
	}
	return out
}

// OrderRowsByCatalog applies the same catalog ordering to attribute rows
// for the source-oriented matrix: a header row (level 0, empty counts)
// per category, then each contained attribute's row if one was computed.
// Within a category the declared order is kept, with no secondary sort.
func OrderRowsByCatalog(rows []Row, cat catalog.Catalog, labels catalog.LabelSet) []Row {
	byID := make(map[string]Row, len(rows))
	for _, r := range rows {
		byID[r.Meta.ID] = r
	}

	var out []Row
	for _, category := range cat.Categories() {
		var members []Row
		for _, col := range category.Columns() {
			r, ok := byID[col.Name()]
			if !ok {
				continue
			}
			r.Meta = columnMeta(col, labels)
			members = append(members, r)
		}
		if len(members) == 0 {
			continue
		}
		out = append(out, Row{
			Meta:   columnMeta(category.Header(), labels),
			Counts: map[string]int{},
		})
		out = append(out, members...)
	}
	return out
}

func columnMeta(col catalog.Column, labels catalog.LabelSet) Meta {
	label := labels.Resolve(col.Name())
	return Meta{
		ID:       col.Name(),
		Label:    label.Caption,
		AltLabel: label.AltCaption,
		Level:    col.Level(),
	}
}

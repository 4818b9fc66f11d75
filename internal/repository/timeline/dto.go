package timeline

import "github.com/kailas-cloud/metaqual/internal/domain/matrix"

// rowDTO is the persisted JSON shape of one matrix row.
type rowDTO struct {
	Meta   metaDTO        `json:"meta"`
	Counts map[string]int `json:"counts"`
	Total  int            `json:"total"`
}

type metaDTO struct {
	ID       string `json:"id"`
	Label    string `json:"label"`
	AltLabel string `json:"alt_label,omitempty"`
	Level    int    `json:"level"`
}

func rowsToDTO(rows []matrix.Row) []rowDTO {
	out := make([]rowDTO, len(rows))
	for i, r := range rows {
		out[i] = rowDTO{
			Meta: metaDTO{
				ID:       r.Meta.ID,
				Label:    r.Meta.Label,
				AltLabel: r.Meta.AltLabel,
				Level:    r.Meta.Level,
			},
			Counts: r.Counts,
			Total:  r.Total,
		}
	}
	return out
}

func rowsFromDTO(dtos []rowDTO) []matrix.Row {
	out := make([]matrix.Row, len(dtos))
	for i, d := range dtos {
		counts := d.Counts
		if counts == nil {
			counts = map[string]int{}
		}
		out[i] = matrix.Row{
			Meta: matrix.Meta{
				ID:       d.Meta.ID,
				Label:    d.Meta.Label,
				AltLabel: d.Meta.AltLabel,
				Level:    d.Meta.Level,
			},
			Counts: counts,
			Total:  d.Total,
		}
	}
	return out
}

package chi

import "github.com/kailas-cloud/metaqual/internal/domain/matrix"

// errorCode is the machine-readable error discriminator of the API.
type errorCode string

const (
	codeBadRequest          errorCode = "bad_request"
	codeUnknownMode         errorCode = "unknown_mode"
	codeCollectionNotFound  errorCode = "collection_not_found"
	codeSnapshotNotFound    errorCode = "snapshot_not_found"
	codeUpstreamQueryFailed errorCode = "upstream_query_failed"
	codeLabelsUnavailable   errorCode = "labels_unavailable"
	codeInternalError       errorCode = "internal_error"
)

type errorResponse struct {
	Code    errorCode `json:"code"`
	Message string    `json:"message"`
}

type metaDTO struct {
	ID       string `json:"id"`
	Label    string `json:"label"`
	AltLabel string `json:"alt_label,omitempty"`
	Level    int    `json:"level"`
}

type rowDTO struct {
	Meta   metaDTO        `json:"meta"`
	Counts map[string]int `json:"counts"`
	Total  int            `json:"total"`
}

type matrixResponse struct {
	Columns []metaDTO `json:"columns"`
	Rows    []rowDTO  `json:"rows"`
}

type timestampsResponse struct {
	Timestamps []int64 `json:"timestamps"`
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

func matrixToDTO(m matrix.Matrix) matrixResponse {
	cols := make([]metaDTO, 0, len(m.Columns))
	for _, c := range m.Columns {
		cols = append(cols, metaToDTO(c))
	}
	rows := make([]rowDTO, 0, len(m.Rows))
	for _, r := range m.Rows {
		counts := r.Counts
		if counts == nil {
			counts = map[string]int{}
		}
		rows = append(rows, rowDTO{Meta: metaToDTO(r.Meta), Counts: counts, Total: r.Total})
	}
	return matrixResponse{Columns: cols, Rows: rows}
}

func metaToDTO(m matrix.Meta) metaDTO {
	return metaDTO{ID: m.ID, Label: m.Label, AltLabel: m.AltLabel, Level: m.Level}
}

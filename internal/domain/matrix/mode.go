package matrix

import (
	"fmt"

	"github.com/kailas-cloud/metaqual/internal/domain"
)

// Mode selects the grouping and orientation of a quality matrix.
type Mode string

const (
	// ModeCollections groups materials by collection: one row per tree
	// node, one column per catalog attribute.
	ModeCollections Mode = "collections"
	// ModeSources groups materials by replication source: one row per
	// catalog attribute, one column per source.
	ModeSources Mode = "sources"
)

// GroupKey names the index field a grouped aggregation buckets by.
type GroupKey string

const (
	// ByCollection buckets materials per ancestor collection id.
	ByCollection GroupKey = "collections"
	// BySource buckets materials per replication source.
	BySource GroupKey = "replication_source"
)

// GroupKey maps the mode to its aggregation bucketing field.
func (m Mode) GroupKey() GroupKey {
	if m == ModeSources {
		return BySource
	}
	return ByCollection
}

// ParseMode validates a mode string from the API path.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeCollections, ModeSources:
		return Mode(s), nil
	default:
		return "", fmt.Errorf("%w: %q", domain.ErrUnknownMode, s)
	}
}

package health

import "context"

// IndexPinger checks search index availability.
type IndexPinger interface {
	Ping(ctx context.Context) error
}

// TimelinePinger checks timeline database availability.
type TimelinePinger interface {
	Ping(ctx context.Context) error
}

package domain

import "errors"

var (
	// ErrTreeNotFound signals that the requested root collection does not
	// resolve to a usable tree (missing node or blank title).
	ErrTreeNotFound = errors.New("collection tree not found")
	// ErrSnapshotNotFound signals a missing timeline snapshot.
	ErrSnapshotNotFound = errors.New("snapshot not found")
	// ErrUnknownMode signals an unsupported matrix mode.
	ErrUnknownMode = errors.New("unknown matrix mode")
	// ErrUpstreamQuery signals that the search index or the database did not
	// return success. No partial result accompanies this error.
	ErrUpstreamQuery = errors.New("upstream query failed")
	// ErrCatalogInvalid signals a misconfigured attribute catalog.
	// Fatal at startup, never a runtime condition.
	ErrCatalogInvalid = errors.New("invalid attribute catalog")
	// ErrLabelsUnavailable signals that the metadata-set label service
	// could not be reached.
	ErrLabelsUnavailable = errors.New("label service unavailable")
)

// Package version holds build metadata injected via ldflags.
package version

import "fmt"

//nolint:revive // Set via ldflags at build time.
var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)

// UserAgent identifies this service on outbound HTTP requests.
func UserAgent() string {
	return fmt.Sprintf("metaqual/%s", Version)
}

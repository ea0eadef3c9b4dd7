package version

import "fmt"

// Build information set by ldflags
var (
	Version = "dev"     // Set by goreleaser: -X github.com/arthur-debert/hostsub/internal/version.Version={{.Version}}
	Commit  = "unknown" // Set by goreleaser: -X github.com/arthur-debert/hostsub/internal/version.Commit={{.Commit}}
	Date    = "unknown" // Set by goreleaser: -X github.com/arthur-debert/hostsub/internal/version.Date={{.Date}}
)

// String formats the build information for "hostsub version".
func String() string {
	return fmt.Sprintf("hostsub %s (commit %s, built %s)", Version, Commit, Date)
}

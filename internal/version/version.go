// Package version carries build metadata for the kaizen binary.
package version

import "fmt"

// Version is set at build time:
// go build -ldflags "-X git.home.luguber.info/inful/kaizen/internal/version.Version=v1.0.0".
var Version = "dev"

var (
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// String renders the version line printed by `kaizen --version`.
func String() string {
	return fmt.Sprintf("kaizen %s (commit %s, built %s)", Version, GitCommit, BuildTime)
}

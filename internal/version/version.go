// Package version holds build metadata injected with -ldflags.
package version

var (
	// Version is the semantic version of the build.
	Version = "dev"
	// GitCommit is the commit the binary was built from.
	GitCommit = "unknown"
	// BuildDate is the build timestamp.
	BuildDate = "unknown"
)

// String returns a one-line description of the build.
func String() string {
	return Version + " (commit " + GitCommit + ", built " + BuildDate + ")"
}

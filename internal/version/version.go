package version

import "runtime"

// These variables are populated at build time using -ldflags
var (
	// Version is the semantic version of the application
	Version = "dev"

	// BuildTime is the time the binary was built
	BuildTime = "unknown"

	// Revision is the git commit the binary was built from
	Revision = "unknown"
)

// GetVersion returns the current version of the application
func GetVersion() string {
	return Version
}

// GetBuildTime returns the build time of the binary
func GetBuildTime() string {
	return BuildTime
}

// GetVersionInfo returns a formatted string with version information
func GetVersionInfo() string {
	return "mirrorplay v" + Version + " (" + Revision + ", built " + BuildTime + ", " + runtime.GOOS + "/" + runtime.GOARCH + ")"
}

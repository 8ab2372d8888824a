// Package types provides the core data structures for the getbook library.
package types

import "runtime"

// Version information for the getbook library.
const (
	Version = "0.4.0"
	Name    = "getbook"
)

// BuildInfo contains version and build information for the getbook library.
type BuildInfo struct {
	Version   string
	Name      string
	GoVersion string
}

// GetBuildInfo returns the current version information.
func GetBuildInfo() BuildInfo {
	return BuildInfo{
		Version:   Version,
		Name:      Name,
		GoVersion: runtime.Version(),
	}
}

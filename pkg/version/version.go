// Package version provides version information for the unit-oracle application.
package version

// Version is the current version of the unit-oracle application.
const Version = "0.3.1"

// AgentString returns the full agent string with versioning.
func AgentString() string {
	return "unit-oracle/v" + Version
}

// SPDX-License-Identifier: MIT

package utils

import "fmt"

// BuildVersion formats the version string shown by --version, from the
// build-time variables goreleaser (or `go build -ldflags`) injects into
// cmd.Version/Commit/Date/BuiltBy.
func BuildVersion(version, commit, date, builtBy string) string {
	if version == "" {
		version = "dev"
	}
	result := version
	if commit != "" {
		result = fmt.Sprintf("%s\ncommit: %s", result, commit)
	}
	if date != "" {
		result = fmt.Sprintf("%s\nbuilt at: %s", result, date)
	}
	if builtBy != "" {
		result = fmt.Sprintf("%s\nbuilt by: %s", result, builtBy)
	}
	return result
}

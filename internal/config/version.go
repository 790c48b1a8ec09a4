package config

import (
	"github.com/datapivot/schemabridge/internal/common"
)

// GetVersion returns the current version string.
func GetVersion() string {
	return common.GetVersion()
}

// GetBuild returns the build timestamp.
func GetBuild() string {
	return common.GetBuild()
}

// GetGitCommit returns the git commit hash.
func GetGitCommit() string {
	return common.GetGitCommit()
}

// GetFullVersion returns version with build info.
func GetFullVersion() string {
	return common.GetFullVersion()
}

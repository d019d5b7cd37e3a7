// Package misc holds build time information. Values are replaced by the
// linker (-X) when building release binaries.
package misc

var (
	appName = "ldtools"
	version = "dev"
	gitHash = "unknown"
)

func GetAppName() string {
	return appName
}

func GetVersion() string {
	return version
}

func GetGitHash() string {
	return gitHash
}

package keyer

import (
	"fmt"
	"runtime/debug"
	"strconv"
)

// Set at build time via `-ldflags "-X 'github.com/doismellburning/cwkeyer/src.CWKEYER_VERSION=X'"`
var CWKEYER_VERSION string

func getBuildSettingOrDefault(bi *debug.BuildInfo, key string, defaultValue string) string {
	if bi == nil {
		return defaultValue
	}

	for _, bs := range bi.Settings {
		if bs.Key == key {
			return bs.Value
		}
	}

	return defaultValue
}

// VersionString is "<version> (revision <commit>, built at <time>)".
func VersionString() string {
	var buildInfo, _ = debug.ReadBuildInfo()

	var buildTimeStr = getBuildSettingOrDefault(buildInfo, "vcs.time", "UNKNOWN")

	var (
		buildCommit               = getBuildSettingOrDefault(buildInfo, "vcs.revision", "UNKNOWN")
		buildDirtyStr             = getBuildSettingOrDefault(buildInfo, "vcs.modified", "INVALID")
		buildDirty, buildDirtyErr = strconv.ParseBool(buildDirtyStr)
	)

	if buildDirty {
		buildCommit += "-DIRTY"
	} else if buildDirtyErr != nil {
		buildCommit += "-UNKNOWNDIRTY"
	}

	var version = CWKEYER_VERSION
	if version == "" {
		version = "!UNKNOWN!"
	}

	return fmt.Sprintf("%s (revision %s, built at %s)", version, buildCommit, buildTimeStr)
}

func PrintVersion(program string, verbose bool) {
	fmt.Printf("%s - Version %s\n", program, VersionString())

	if verbose {
		var buildInfo, _ = debug.ReadBuildInfo()
		fmt.Printf("\nBuildInfo: %+v\n", buildInfo)
	}
}

package keyer

import (
	"runtime/debug"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetBuildSettingOrDefault(t *testing.T) {
	var bi = &debug.BuildInfo{Settings: []debug.BuildSetting{
		{Key: "vcs.revision", Value: "abc123"},
	}}

	assert.Equal(t, "abc123", getBuildSettingOrDefault(bi, "vcs.revision", "UNKNOWN"))
	assert.Equal(t, "UNKNOWN", getBuildSettingOrDefault(bi, "vcs.time", "UNKNOWN"))
	assert.Equal(t, "x", getBuildSettingOrDefault(nil, "vcs.revision", "x"))
}

func TestPrintVersion(t *testing.T) {
	CWKEYER_VERSION = "1.2.3"
	defer func() { CWKEYER_VERSION = "" }()

	AssertOutputContains(t, func() { PrintVersion("cwkeyer", false) }, "cwkeyer - Version 1.2.3 (revision ")
}

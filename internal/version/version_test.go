package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetVersionInfo(t *testing.T) {
	oldVersion, oldBuild := Version, BuildTime
	t.Cleanup(func() { Version, BuildTime = oldVersion, oldBuild })

	Version = "1.2.3"
	BuildTime = "2026-01-01"

	assert.Equal(t, "1.2.3", GetVersion())
	assert.Equal(t, "2026-01-01", GetBuildTime())
	assert.Contains(t, GetVersionInfo(), "mirrorplay v1.2.3")
	assert.Contains(t, GetVersionInfo(), "built 2026-01-01")
}

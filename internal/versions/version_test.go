package versions

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetVersionInfo(t *testing.T) {
	t.Parallel()
	info := GetVersionInfo()

	assert.NotEmpty(t, info.Version)
	assert.NotEmpty(t, info.GoVersion)
	assert.True(t, strings.Contains(info.Platform, "/"), "platform should be GOOS/GOARCH")
}

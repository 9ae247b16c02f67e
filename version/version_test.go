package version

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
)

func stamp(t *testing.T, commit, ver string) {
	t.Helper()
	oldCommit, oldVersion := CommitHash, Version
	CommitHash, Version = commit, ver
	t.Cleanup(func() { CommitHash, Version = oldCommit, oldVersion })
}

func TestGet(t *testing.T) {
	stamp(t, "0123456789abcdef", "v1.2.0")

	info := Get()
	assert.Equal(t, "v1.2.0", info.Version)
	assert.Equal(t, runtime.Version(), info.GoVersion)
	assert.Equal(t, runtime.GOOS+"/"+runtime.GOARCH, info.Platform)
	assert.Equal(t, "0123456", info.Short())
	assert.Contains(t, info.String(), "qfactor v1.2.0 (commit 0123456")
	assert.Equal(t, "qfactor/v1.2.0", info.UserAgent())
}

func TestShortKeepsShortHashes(t *testing.T) {
	stamp(t, "dev", "dev")
	assert.Equal(t, "dev", Get().Short())
}

package cmd

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVersionCommandStructure(t *testing.T) {
	assert.Equal(t, "version", versionCmd.Use)
	assert.NotEmpty(t, versionCmd.Short)
	assert.NotNil(t, versionCmd.Run)
}

func TestRunVersion(t *testing.T) {
	originalVersion, originalCommit := Version, Commit
	defer func() {
		Version, Commit = originalVersion, originalCommit
	}()

	Version = "1.0.0"
	Commit = "abc123def456"

	out, err := executeCommand(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "relgraph version 1.0.0")
	assert.Contains(t, out, "Commit: abc123def456")
	assert.Contains(t, out, "Go version: "+runtime.Version())
	assert.Contains(t, out, "OS/Arch: "+runtime.GOOS+"/"+runtime.GOARCH)
}

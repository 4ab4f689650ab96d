package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func testConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "colorpick.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestConfigCommand(t *testing.T) {
	path := testConfig(t, "rate_limit:\n  tasks: 7\nlogging:\n  level: error\n")
	out, err := execute(t, "config", "--config", path)
	require.NoError(t, err)

	assert.Contains(t, out, "# "+path)
	assert.Contains(t, out, "tasks: 7")
	assert.Contains(t, out, "strategy: contrast")
}

func TestConfigCommand_InvalidFile(t *testing.T) {
	path := testConfig(t, "stats:\n  max_dimension: 0\n")
	_, err := execute(t, "config", "--config", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "stats.max_dimension")
}

func TestRunCommand(t *testing.T) {
	path := testConfig(t, "logging:\n  level: error\ndefaults:\n  interval: 0s\n")
	out, err := execute(t, "run", "--config", path,
		"--nodes", "2", "--frames", "5", "--fps", "200", "--accel", "cpu", "--plain")
	require.NoError(t, err)

	assert.Contains(t, out, "frames: 5")
	assert.Contains(t, out, "node 1")
	assert.Contains(t, out, "node 2")
}

func TestRunCommand_Callback(t *testing.T) {
	path := testConfig(t, "logging:\n  level: error\n")
	out, err := execute(t, "run", "--config", path,
		"--nodes", "2", "--frames", "3", "--fps", "200", "--accel", "cpu", "--plain", "--callback")
	require.NoError(t, err)
	assert.Contains(t, out, "client callback")
}

func TestRunCommand_BadFlags(t *testing.T) {
	path := testConfig(t, "logging:\n  level: error\n")
	_, err := execute(t, "run", "--config", path, "--nodes", "0")
	require.Error(t, err)

	_, err = execute(t, "run", "--config", path, "--accel", "fpga")
	require.Error(t, err)
}

package app

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv blanks the inventory environment variables so ambient values
// cannot switch a test into environment mode.
func clearEnv(t *testing.T) {
	t.Helper()
	t.Setenv("URL", "")
	t.Setenv("INVENTORY", "")
	t.Setenv("SSHKEY", "")
	t.Setenv("COMMIT", "")
}

func executeCommand(args ...string) (stdout, stderr *bytes.Buffer, err error) {
	cmd := NewRootCmd()
	stdout = &bytes.Buffer{}
	stderr = &bytes.Buffer{}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetArgs(args)
	err = cmd.Execute()
	return stdout, stderr, err
}

func TestRootCmd_HostLookupPrintsEmptyMapping(t *testing.T) {
	clearEnv(t)

	stdout, _, err := executeCommand("--host", "web01.example.com")
	require.NoError(t, err)
	assert.Equal(t, "{}\n", stdout.String())
}

func TestRootCmd_MissingArguments(t *testing.T) {
	clearEnv(t)

	stdout, _, err := executeCommand()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "URL")
	assert.Empty(t, stdout.String())
}

func TestRootCmd_FetchFailureWritesNothingToStdout(t *testing.T) {
	clearEnv(t)

	stdout, _, err := executeCommand(filepath.Join(t.TempDir(), "no-such-repo"), "prod.yml")
	require.Error(t, err)
	assert.Empty(t, stdout.String())
}

func TestRootCmd_TooManyArguments(t *testing.T) {
	clearEnv(t)

	_, _, err := executeCommand("url", "prod.yml", "extra")
	assert.Error(t, err)
}

func TestVersionCmd_JSONFormat(t *testing.T) {
	clearEnv(t)

	stdout, _, err := executeCommand("version", "--format", "json")
	require.NoError(t, err)

	var info map[string]string
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &info))
	assert.Contains(t, info, "version")
	assert.Contains(t, info, "go_version")
	assert.Contains(t, info, "platform")
}

func TestVersionCmd_TextFormat(t *testing.T) {
	clearEnv(t)

	stdout, _, err := executeCommand("version")
	require.NoError(t, err)
	assert.Contains(t, stdout.String(), "gitventory")
}

package proc

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun_Success(t *testing.T) {
	dir := t.TempDir()
	var out bytes.Buffer

	err := Run(context.Background(), dir, []string{"sh", "-c", "echo hello"}, &out, &out)
	require.NoError(t, err)
	assert.Contains(t, out.String(), "hello")
}

func TestRun_RunsInWorkDir(t *testing.T) {
	dir := t.TempDir()
	var out bytes.Buffer

	err := Run(context.Background(), dir, []string{"sh", "-c", "echo made > made.txt"}, &out, &out)
	require.NoError(t, err)

	_, statErr := os.Stat(filepath.Join(dir, "made.txt"))
	assert.NoError(t, statErr)
}

func TestRun_PropagatesExitStatus(t *testing.T) {
	dir := t.TempDir()
	var out bytes.Buffer

	err := Run(context.Background(), dir, []string{"sh", "-c", "exit 3"}, &out, &out)
	require.Error(t, err)

	var exitErr *ExitError
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, 3, exitErr.Code)
	assert.Equal(t, "sh", exitErr.Tool)
}

func TestRun_MissingTool(t *testing.T) {
	dir := t.TempDir()
	var out bytes.Buffer

	err := Run(context.Background(), dir, []string{"definitely-not-a-real-tool-xyz"}, &out, &out)
	assert.ErrorContains(t, err, "failed to start")
}

func TestRun_EmptyCommand(t *testing.T) {
	var out bytes.Buffer
	err := Run(context.Background(), t.TempDir(), nil, &out, &out)
	assert.ErrorContains(t, err, "empty command")
}

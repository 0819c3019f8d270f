package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/odvcencio/snap/pkg/object"
	"github.com/odvcencio/snap/pkg/repo"
	"github.com/stretchr/testify/require"
)

// newWorkspace creates an initialized repository, makes it the working
// directory and isolates the test from the user's settings.
func newWorkspace(t *testing.T, initArgs ...string) string {
	t.Helper()
	isolateSettings(t)
	dir := t.TempDir()
	t.Chdir(dir)
	runOK(t, append([]string{"init"}, initArgs...)...)
	return dir
}

func isolateSettings(t *testing.T) {
	t.Helper()
	t.Setenv(envConfigFile, filepath.Join(t.TempDir(), "absent.toml"))
	t.Setenv("SNAP_AUTHOR", "")
	t.Setenv("SNAP_LOG_LEVEL", "")
	t.Setenv("SNAP_LOG_FORMAT", "")
	t.Setenv("USER", "tester")
}

func runSnap(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	root := newRootCmd()
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(args)
	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

func runOK(t *testing.T, args ...string) string {
	t.Helper()
	stdout, stderr, err := runSnap(t, args...)
	require.NoError(t, err, "snap %s\nstderr:\n%s", strings.Join(args, " "), stderr)
	return stdout
}

func writeWorkFile(t *testing.T, rel, content string) {
	t.Helper()
	path := filepath.FromSlash(rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func readWorkFile(t *testing.T, rel string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.FromSlash(rel))
	require.NoError(t, err)
	return string(data)
}

// headCommit opens the repository in the working directory and returns the
// commit HEAD resolves to.
func headCommit(t *testing.T) (object.Hash, *object.CommitObj) {
	t.Helper()
	r, err := repo.Open(".")
	require.NoError(t, err)
	defer r.Close()

	h, err := r.ResolveHead()
	require.NoError(t, err)
	c, err := r.Store.ReadCommit(h)
	require.NoError(t, err)
	return h, c
}

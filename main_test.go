package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func noEnv(string) (string, bool) {
	return "", false
}

func writeFiles(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return dir
}

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout bytes.Buffer
	var stderr bytes.Buffer
	if args == nil {
		args = []string{}
	}
	cmd := newRootCommand(noEnv)
	cmd.SetArgs(args)
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestRunDumpTree(t *testing.T) {
	t.Parallel()

	dir := writeFiles(t, map[string]string{"a.lua": "x = 1"})
	stdout, stderr, err := execute(t, "--root", dir, "--dump-tree", "a.lua")
	require.NoError(t, err)
	require.Empty(t, stderr)
	require.Equal(t, strings.Join([]string{
		"Chunk [0..5] " + filepath.Join(dir, "a.lua"),
		"  Block [0..4]",
		"    Assign [0..4]",
		"      Name [0..0] x",
		"      Number [4..4] 1",
		"",
	}, "\n"), stdout)
}

func TestRunDumpTokensOnly(t *testing.T) {
	t.Parallel()

	dir := writeFiles(t, map[string]string{"partial.lua": "x ="})
	stdout, _, err := execute(t, "--root", dir, "--dump-tokens", "partial.lua")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSuffix(stdout, "\n"), "\n")
	require.Len(t, lines, 4)
	require.True(t, strings.HasSuffix(lines[0], "'x'"))
	require.True(t, strings.HasSuffix(lines[2], "'='"))
}

func TestRunErrors(t *testing.T) {
	t.Parallel()

	dir := writeFiles(t, map[string]string{
		"ok.lua":  "return 1",
		"bad.lua": "if x then",
	})
	stdout, stderr, err := execute(t, "--root", dir, "--dump-tree", "ok.lua", "bad.lua")
	require.ErrorIs(t, err, errReported)
	require.True(t, strings.HasPrefix(stdout, "Chunk "))
	require.Contains(t, stderr, filepath.Join(dir, "bad.lua")+":1:10 -- S0002: ")
}

func TestRunAbsolutePath(t *testing.T) {
	t.Parallel()

	dir := writeFiles(t, map[string]string{"lib/m.lua": "local M = {}\nreturn M\n"})
	stdout, _, err := execute(t, "--dump-tree", filepath.Join(dir, "lib"))
	require.NoError(t, err)
	require.Contains(t, stdout, "LocalAssign [")
	require.Contains(t, stdout, "Return [")
}

func TestRunConfig(t *testing.T) {
	t.Parallel()

	dir := writeFiles(t, map[string]string{
		"a.lua": "x = 1",
		"luaparse.toml": `
[output]
format = "json"
dump_tree = true
`,
	})
	config := filepath.Join(dir, "luaparse.toml")

	stdout, _, err := execute(t, "--config", config, "--root", dir, "a.lua")
	require.NoError(t, err)
	var tree map[string]any
	require.NoError(t, json.Unmarshal([]byte(stdout), &tree))
	require.Equal(t, "Chunk", tree["kind"])

	stdout, _, err = execute(t, "--config", config, "--root", dir, "--format", "yaml", "a.lua")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(stdout, "kind: Chunk\n"), stdout)
}

func TestRunMaxDepth(t *testing.T) {
	t.Parallel()

	dir := writeFiles(t, map[string]string{"deep.lua": "x = ((((((1))))))"})
	_, stderr, err := execute(t, "--root", dir, "--max-depth", "4", "deep.lua")
	require.ErrorIs(t, err, errReported)
	require.Contains(t, stderr, "S0007")

	_, _, err = execute(t, "--root", dir, "deep.lua")
	require.NoError(t, err)
}

func TestRunBadInput(t *testing.T) {
	t.Parallel()

	_, _, err := execute(t, "--format", "xml", "a.lua")
	require.Error(t, err)
	require.NotErrorIs(t, err, errReported)

	_, _, err = execute(t)
	require.Error(t, err)

	_, _, err = execute(t, "--config", filepath.Join(t.TempDir(), "missing.toml"), "a.lua")
	require.Error(t, err)
}

func TestVersion(t *testing.T) {
	t.Parallel()

	stdout, _, err := execute(t, "version")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(stdout, "luaparse dev\n"))
}

package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeDefinition(t *testing.T, content string) string {
	t.Helper()
	filePath := filepath.Join(t.TempDir(), "main.hcl")
	require.NoError(t, os.WriteFile(filePath, []byte(content), 0o600), "failed to set up test file")
	return filePath
}

func TestRun_PanicRecovery(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	// A syntax error makes app.NewApp panic while loading the definition.
	filePath := writeDefinition(t, `
		binding "total" {
			code = x
		// Missing closing brace here
	`)
	out := &bytes.Buffer{}

	// --- Act ---
	runErr := run(out, &bytes.Buffer{}, []string{"eval", filePath})

	// --- Assert ---
	require.Error(t, runErr, "run() should have returned an error after recovering from a panic")
	require.Contains(t, runErr.Error(), "application startup panicked")
	require.Contains(t, runErr.Error(), "failed to parse")
}

func TestRun_ShouldExit(t *testing.T) {
	t.Parallel()

	out := &bytes.Buffer{}
	err := run(out, &bytes.Buffer{}, []string{"-h"})

	require.NoError(t, err, "run() should return a nil error when shouldExit is true")
	require.Contains(t, out.String(), "Usage:", "Expected help text to be printed to the output buffer")
}

func TestRun_ParseError(t *testing.T) {
	t.Parallel()

	err := run(&bytes.Buffer{}, &bytes.Buffer{}, []string{"eval", "--this-is-not-a-valid-flag"})

	require.Error(t, err, "run() should return an error when argument parsing fails")
	require.Contains(t, err.Error(), "unknown flag: --this-is-not-a-valid-flag")
}

func TestRun_Eval(t *testing.T) {
	t.Parallel()

	filePath := writeDefinition(t, `
expose "x" {
  value = 5
}

binding "double" {
  code = x * 2
}
`)
	out := &bytes.Buffer{}
	err := run(out, &bytes.Buffer{}, []string{"eval", filePath, "--set", "x=21", "--log-format", "json"})

	require.NoError(t, err)
	require.Contains(t, out.String(), `"outputs":{"double":42}`)
}

func TestRun_Deps(t *testing.T) {
	t.Parallel()

	filePath := writeDefinition(t, `
expose "x" {
  value = 5
}

binding "double" {
  code = x * 2
}
`)
	out := &bytes.Buffer{}
	require.NoError(t, run(out, &bytes.Buffer{}, []string{"deps", "-f", filePath}))
	require.Contains(t, out.String(), "double (code)")
	require.Contains(t, out.String(), "x = 5")

	out.Reset()
	require.NoError(t, run(out, &bytes.Buffer{}, []string{"deps", "-f", filePath, "--path", "x"}))
	require.Contains(t, out.String(), "double")
}

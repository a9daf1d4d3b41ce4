package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/taskrig/taskrig/internal/cli"
)

func writeRig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "rig.hcl")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestRun_PanicRecovery(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	// A rig file with a syntax error causes a panic during app.NewApp.
	path := writeRig(t, `
		task "scripts" {
			step "exec" {
		// Missing closing brace here
	`)
	args := []string{"-f", path, "scripts"}
	out := &bytes.Buffer{}

	// --- Act ---
	runErr := run(out, args)

	// --- Assert ---
	require.Error(t, runErr, "run() should have returned an error after recovering from a panic")
	errStr := runErr.Error()
	require.True(t, strings.Contains(errStr, "critical startup error"), "The error message should indicate that a panic was recovered.")
	require.True(t, strings.Contains(errStr, "failed to parse"), "The error message should contain the underlying reason for the panic.")
}

func TestRun_ShouldExit(t *testing.T) {
	t.Parallel()

	// The "-h" (help) flag should cause cli.Parse to return `shouldExit=true`.
	args := []string{"-h"}
	out := &bytes.Buffer{}

	err := run(out, args)

	require.NoError(t, err, "run() should return a nil error when shouldExit is true")
	require.Contains(t, out.String(), "Usage:", "Expected help text to be printed to the output buffer")
}

func TestRun_SuccessfulTask(t *testing.T) {
	t.Parallel()

	path := writeRig(t, `
		task "noop" {
			step "exec" {
				command = "sh"
				args    = ["-c", "exit 0"]
			}
		}
	`)

	err := run(&bytes.Buffer{}, []string{"-f", path, "noop"})

	require.NoError(t, err)
}

func TestRun_DeferredCompileFailureExitsWithCode8(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	// In test mode a keep_going compile failure flags the run but lets the
	// test step stream to completion; the process then exits with the
	// reserved code 8.
	path := writeRig(t, `
		task "scripts" {
			step "exec" {
				keep_going = true
				command    = "sh"
				args       = ["-c", "exit 2"]
			}
		}

		task "test" {
			deps = ["scripts"]
			step "exec" {
				command = "sh"
				args    = ["-c", "exit 0"]
			}
		}
	`)

	// --- Act ---
	err := run(&bytes.Buffer{}, []string{"-f", path, "test"})

	// --- Assert ---
	var exitErr *cli.ExitError
	require.ErrorAs(t, err, &exitErr)
	require.Equal(t, 8, exitErr.Code)
	require.Contains(t, exitErr.Message, "deferred failure")
}

func TestRun_ListTasks(t *testing.T) {
	t.Parallel()

	path := writeRig(t, `
		task "test" {}
		task "clean" {}
	`)
	out := &bytes.Buffer{}

	err := run(out, []string{"-f", path, "-list"})

	require.NoError(t, err)
	require.Equal(t, "clean\ntest\n", out.String())
}

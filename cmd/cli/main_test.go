package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/specialistvlad/pathscript/internal/cli"
	"github.com/stretchr/testify/require"
)

func TestRun_Generate(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	description := `
run_type = "trajectory"
engine {
  script = "in.lammps"
}
cv "phi" {
  class = "FunctionCV"
  arguments {
    f = raw("lambda s: s.xyz[0][0]")
  }
}
state "A" {
  cv         = "phi"
  lambda_min = 0
  lambda_max = 1
}
parameters {
  n_sim_steps = 5
}
`
	filePath := filepath.Join(t.TempDir(), "main.hcl")
	require.NoError(t, os.WriteFile(filePath, []byte(description), 0o600), "failed to set up test file")
	out, errOut := &bytes.Buffer{}, &bytes.Buffer{}

	// --- Act ---
	err := run(context.Background(), out, errOut, []string{"generate", "-o", "-", filePath})

	// --- Assert ---
	require.NoError(t, err)
	require.Contains(t, out.String(), "cv_1 = paths.FunctionCV(f=lambda s: s.xyz[0][0], name='phi')\n")
	require.Contains(t, out.String(), "sim.run(5)\n")
}

func TestRun_LoadError(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	invalidHCL := `
		cv "phi" {
			arguments {
		// Missing closing brace here
	`
	filePath := filepath.Join(t.TempDir(), "main.hcl")
	require.NoError(t, os.WriteFile(filePath, []byte(invalidHCL), 0o600), "failed to set up test file")

	// --- Act ---
	err := run(context.Background(), &bytes.Buffer{}, &bytes.Buffer{}, []string{"validate", filePath})

	// --- Assert ---
	require.Error(t, err)
	require.Contains(t, err.Error(), "failed to parse")
	_, isExit := err.(*cli.ExitError)
	require.False(t, isExit, "load failures are not usage errors")
}

func TestRun_Help(t *testing.T) {
	t.Parallel()

	out := &bytes.Buffer{}

	err := run(context.Background(), out, &bytes.Buffer{}, []string{"-h"})

	require.NoError(t, err, "run() should return a nil error for help")
	require.Contains(t, out.String(), "Usage:", "Expected help text to be printed to the output buffer")
}

func TestRun_ParseError(t *testing.T) {
	t.Parallel()

	err := run(context.Background(), &bytes.Buffer{}, &bytes.Buffer{}, []string{"generate", "--this-is-not-a-valid-flag", "x.hcl"})

	require.Error(t, err, "run() should return an error when argument parsing fails")
	exitErr, ok := err.(*cli.ExitError)
	require.True(t, ok)
	require.Equal(t, 2, exitErr.Code)
	require.Contains(t, err.Error(), "unknown flag: --this-is-not-a-valid-flag")
}

package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const description = `
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

func writeDescription(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "run.hcl")
	require.NoError(t, os.WriteFile(path, []byte(description), 0o600))
	return path
}

func TestExecute_GenerateToFile(t *testing.T) {
	// Arrange
	out := filepath.Join(t.TempDir(), "trajectory.py")
	var stdout, stderr bytes.Buffer

	// Act
	err := Execute(context.Background(), []string{"generate", writeDescription(t), "--output", out, "--log-level", "debug"}, &stdout, &stderr)

	// Assert
	require.NoError(t, err)
	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(data), "states = [volume_1]\n")
	assert.Contains(t, stderr.String(), "Script written.")
	assert.Empty(t, stdout.String())
}

func TestExecute_Validate(t *testing.T) {
	path := writeDescription(t)
	var stdout bytes.Buffer

	err := Execute(context.Background(), []string{"validate", path}, &stdout, &bytes.Buffer{})

	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(stdout.String(), path+": ok (trajectory run, "), stdout.String())
}

func TestExecute_RunTypes(t *testing.T) {
	var stdout bytes.Buffer

	err := Execute(context.Background(), []string{"run-types"}, &stdout, &bytes.Buffer{})

	require.NoError(t, err)
	assert.Contains(t, stdout.String(), "NAME")
	assert.Contains(t, stdout.String(), "committor")
	assert.Contains(t, stdout.String(), "initial_frame, n_sim_steps")
	assert.Contains(t, stdout.String(), "tps.nc")
}

func TestExecute_UsageErrors(t *testing.T) {
	testCases := []struct {
		name     string
		args     []string
		contains string
	}{
		{name: "unknown flag", args: []string{"generate", "--nope", "x.hcl"}, contains: "unknown flag: --nope"},
		{name: "missing path", args: []string{"generate"}, contains: "accepts 1 arg(s), received 0"},
		{name: "unknown command", args: []string{"render"}, contains: `unknown command "render"`},
		{name: "bad log level", args: []string{"validate", "x.hcl", "--log-level", "loud"}, contains: "invalid log level"},
		{name: "bad format", args: []string{"validate", "x.hcl", "--format", "toml"}, contains: "invalid description format"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := Execute(context.Background(), tc.args, &bytes.Buffer{}, &bytes.Buffer{})

			var exitErr *ExitError
			require.ErrorAs(t, err, &exitErr)
			assert.Equal(t, 2, exitErr.Code)
			assert.Contains(t, exitErr.Message, tc.contains)
		})
	}
}

func TestGenerateFlags_Preview(t *testing.T) {
	// Arrange
	opts := &options{}
	var out, errOut bytes.Buffer
	cmd := newGenerateCommand(opts, &out, &errOut)

	// Act
	require.NoError(t, cmd.ParseFlags([]string{
		"--preview-url", "https://preview.local:8443",
		"--preview-namespace", "/scripts",
		"--preview-reply-event", "stored",
		"--preview-insecure",
		"--preview-timeout", "3s",
	}))
	cfg, err := opts.config("run.hcl")

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "https://preview.local:8443", cfg.PreviewURL)
	assert.Equal(t, "/scripts", cfg.PreviewNamespace)
	assert.Equal(t, "script", cfg.PreviewEvent)
	assert.Equal(t, "stored", cfg.PreviewReplyEvent)
	assert.Equal(t, 3*time.Second, cfg.PreviewTimeout)
	assert.True(t, cfg.PreviewInsecureTLS)
}

func TestEnvName(t *testing.T) {
	assert.Equal(t, "PATHSCRIPT_LOG_LEVEL", EnvName("log-level"))
	assert.Equal(t, "PATHSCRIPT_OUTPUT", EnvName("output"))
}

func TestApplyEnv(t *testing.T) {
	// Arrange
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	level := flags.String("log-level", "info", "")
	output := flags.String("output", "run.py", "")
	force := flags.Bool("force", false, "")
	require.NoError(t, flags.Parse([]string{"--output", "cli.py"}))
	env := map[string]string{
		"PATHSCRIPT_LOG_LEVEL": "debug",
		"PATHSCRIPT_OUTPUT":    "env.py",
		"PATHSCRIPT_FORCE":     "true",
	}

	// Act
	err := applyEnv(flags, env)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "debug", *level)
	assert.Equal(t, "cli.py", *output, "flags given on the command line win")
	assert.True(t, *force)
}

func TestApplyEnv_InvalidValue(t *testing.T) {
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.Bool("force", false, "")

	err := applyEnv(flags, map[string]string{"PATHSCRIPT_FORCE": "maybe"})

	assert.ErrorContains(t, err, "invalid PATHSCRIPT_FORCE")
}

package testutil

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/specialistvlad/pathscript/internal/app"
	"github.com/stretchr/testify/require"
)

// HarnessResult holds the outcomes of an integration test run.
type HarnessResult struct {
	LogOutput string
	Text      string // rendered script, empty on error
	Err       error
	App       *app.App
}

// RunScriptTest writes files into a temporary directory and renders it as
// one description, using a default background context.
func RunScriptTest(t *testing.T, files map[string]string) *HarnessResult {
	t.Helper()
	return RunScriptTestWithContext(context.Background(), t, files)
}

// RunScriptTestWithContext is RunScriptTest with a caller-provided context.
// File names may contain subdirectories.
func RunScriptTestWithContext(ctx context.Context, t *testing.T, files map[string]string) *HarnessResult {
	t.Helper()

	dir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}

	cfg, err := app.NewConfig(app.Config{
		DescriptionPath: dir,
		OutputPath:      app.StdoutPath,
		LogLevel:        "debug",
		LogFormat:       "text",
	})
	require.NoError(t, err)

	testApp, _, logBuffer := app.SetupAppTest(t, cfg)
	res, runErr := testApp.Validate(ctx)

	result := &HarnessResult{
		LogOutput: logBuffer.String(),
		Err:       runErr,
		App:       testApp,
	}
	if res != nil {
		result.Text = res.Text
	}
	return result
}

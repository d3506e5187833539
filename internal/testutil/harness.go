package testutil

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/specialistvlad/extforge/internal/app"
	"github.com/specialistvlad/extforge/internal/compiler"
	"github.com/specialistvlad/extforge/internal/config"
	"github.com/specialistvlad/extforge/internal/registry"
)

// HarnessResult holds the outcomes of a compile run.
type HarnessResult struct {
	LogOutput string
	Results   []compiler.Result
	Err       error
	App       *app.App
	// OutDir holds the written documents.
	OutDir string
}

// WriteFiles writes files, keyed by slash-separated relative path, under a
// fresh temporary directory and returns it.
func WriteFiles(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for name, content := range files {
		p := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(Unindent(content)), 0o644))
	}
	return root
}

// TestConfig returns a debug-level configuration reading declarations from
// root/declarations and writing documents to root/out.
func TestConfig(root string) *config.Config {
	cfg := config.Default()
	cfg.Sources = []string{filepath.Join(root, "declarations")}
	cfg.Output.Dir = filepath.Join(root, "out")
	cfg.Log.Level = "debug"
	cfg.Server.Addr = "127.0.0.1:0"
	return cfg
}

// SetupApp creates an App logging into a SafeBuffer. Logs are printed when
// EXTFORGE_TEST_LOGS=true.
func SetupApp(t *testing.T, cfg *config.Config, modules ...registry.Module) (*app.App, *SafeBuffer) {
	t.Helper()

	logBuffer := &SafeBuffer{}
	a, err := app.New(logBuffer, cfg, modules...)
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = a.Close()
		if os.Getenv("EXTFORGE_TEST_LOGS") == "true" {
			t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), logBuffer.String())
		}
	})
	return a, logBuffer
}

// RunCompileTest writes files under declarations/ in a temporary root and
// runs one compile pass over them and the modules' declarations.
func RunCompileTest(ctx context.Context, t *testing.T, files map[string]string, modules ...registry.Module) *HarnessResult {
	t.Helper()

	prefixed := make(map[string]string, len(files))
	for name, content := range files {
		prefixed["declarations/"+name] = content
	}
	root := WriteFiles(t, prefixed)
	cfg := TestConfig(root)

	if len(modules) == 0 {
		modules = []registry.Module{&NoOpModule{}}
	}
	a, logs := SetupApp(t, cfg, modules...)
	results, err := a.Compile(ctx)

	return &HarnessResult{
		LogOutput: logs.String(),
		Results:   results,
		Err:       err,
		App:       a,
		OutDir:    cfg.Output.Dir,
	}
}

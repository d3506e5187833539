package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDefault_IsValid(t *testing.T) {
	t.Parallel()
	require.NoError(t, Default().Validate())
}

func TestLoadFromFile(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	path := filepath.Join(t.TempDir(), "extforge.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
sources:
  - rules/**/*.hcl
output:
  database_url: postgres://localhost/extforge
compile:
  workers: 8
  debounce: 1s
log:
  level: debug
`), 0o644))

	// --- Act ---
	cfg, err := LoadFromFile(path)

	// --- Assert ---
	require.NoError(t, err)
	require.Equal(t, []string{"rules/**/*.hcl"}, cfg.Sources)
	require.Equal(t, "postgres://localhost/extforge", cfg.Output.DatabaseURL)
	require.Equal(t, "build/definitions", cfg.Output.Dir, "unset keys keep defaults")
	require.Equal(t, 8, cfg.Compile.Workers)
	require.Equal(t, time.Second, cfg.Compile.Debounce)
	require.Equal(t, "debug", cfg.Log.Level)
	require.Equal(t, "text", cfg.Log.Format)
	require.NoError(t, cfg.Validate())
}

func TestLoadFromFile_Errors(t *testing.T) {
	t.Parallel()

	_, err := LoadFromFile(filepath.Join(t.TempDir(), "missing.yaml"))
	require.ErrorContains(t, err, "failed to read config file")

	_, err = Parse([]byte("compile: [unclosed"))
	require.ErrorContains(t, err, "failed to parse config file")
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"bad level", func(c *Config) { c.Log.Level = "trace" }, "log.level"},
		{"bad format", func(c *Config) { c.Log.Format = "xml" }, "log.format"},
		{"no workers", func(c *Config) { c.Compile.Workers = 0 }, "compile.workers"},
		{"negative debounce", func(c *Config) { c.Compile.Debounce = -time.Second }, "compile.debounce"},
		{"no dtd", func(c *Config) { c.Output.DTD = "" }, "output.dtd"},
		{"nats without subject", func(c *Config) { c.NATS.URL = "nats://x"; c.NATS.Subject = "" }, "nats.subject"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			cfg := Default()
			tc.mutate(cfg)
			require.ErrorContains(t, cfg.Validate(), tc.want)
		})
	}
}

func TestMerge(t *testing.T) {
	t.Parallel()

	cfg := Default()
	cfg.Merge(&Config{
		Sources: []string{"a.hcl"},
		Output:  OutputConfig{Dir: "out", NotifyURL: "http://localhost:3000/socket.io"},
		Log:     LogConfig{Format: "json"},
		NATS:    NATSConfig{URL: "nats://localhost:4222"},
	})
	cfg.Merge(nil)

	require.Equal(t, []string{"a.hcl"}, cfg.Sources)
	require.Equal(t, "out", cfg.Output.Dir)
	require.Equal(t, "http://localhost:3000/socket.io", cfg.Output.NotifyURL)
	require.Equal(t, "object.dtd", cfg.Output.DTD)
	require.Equal(t, "json", cfg.Log.Format)
	require.Equal(t, "info", cfg.Log.Level)
	require.Equal(t, "nats://localhost:4222", cfg.NATS.URL)
	require.Equal(t, "extforge.dispatch", cfg.NATS.Subject)
}

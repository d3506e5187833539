package app

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/specialistvlad/extforge/internal/config"
)

func TestNewLogger(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name      string
		cfg       config.LogConfig
		wantDebug bool
		wantJSON  bool
	}{
		{name: "info text", cfg: config.LogConfig{Level: "info", Format: "text"}},
		{name: "debug json", cfg: config.LogConfig{Level: "DEBUG", Format: "json"}, wantDebug: true, wantJSON: true},
		{name: "unknown level falls back to info", cfg: config.LogConfig{Level: "loud"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			// --- Arrange ---
			var buf bytes.Buffer
			logger := newLogger(tc.cfg, &buf)

			// --- Act ---
			logger.Debug("hidden unless debug")
			logger.Info("visible")

			// --- Assert ---
			out := buf.String()
			require.Contains(t, out, "visible")
			require.Equal(t, tc.wantDebug, bytes.Contains(buf.Bytes(), []byte("hidden unless debug")))
			if tc.wantJSON {
				var line map[string]any
				first, _, _ := bytes.Cut(buf.Bytes(), []byte("\n"))
				require.NoError(t, json.Unmarshal(first, &line))
				require.Contains(t, line, "source")
			}
		})
	}
}

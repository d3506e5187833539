package ctxlog

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFromContext_FallsBackToDefault(t *testing.T) {
	t.Parallel()

	logger := FromContext(context.Background())
	require.Same(t, slog.Default(), logger, "a bare context should yield the default logger")
}

func TestWith_AddsAttributes(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	var buf bytes.Buffer
	base := slog.New(slog.NewTextHandler(&buf, nil))
	ctx := WithLogger(context.Background(), base)

	// --- Act ---
	ctx = With(ctx, "class", "sample.Rule")
	FromContext(ctx).Info("dispatching")

	// --- Assert ---
	require.Contains(t, buf.String(), "class=sample.Rule")
	require.Contains(t, buf.String(), "msg=dispatching")
}

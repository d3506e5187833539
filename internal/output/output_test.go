package output

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/specialistvlad/extforge/internal/model"
	"github.com/specialistvlad/extforge/internal/synth"
)

func sampleDoc() synth.Document {
	return synth.Document{
		Kind:        model.KindCustom,
		Name:        "SampleObject",
		LogicalName: "Custom/SampleObject.xml",
		Data:        []byte("<Custom/>\n"),
	}
}

func TestDirWriter_Write(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	root := t.TempDir()
	w := NewDirWriter(root)

	// --- Act ---
	err := w.Write(context.Background(), sampleDoc())

	// --- Assert ---
	require.NoError(t, err)
	data, err := os.ReadFile(filepath.Join(root, "Custom", "SampleObject.xml"))
	require.NoError(t, err)
	require.Equal(t, "<Custom/>\n", string(data))

	entries, err := os.ReadDir(filepath.Join(root, "Custom"))
	require.NoError(t, err)
	require.Len(t, entries, 1, "no temp files should be left behind")
}

func TestDirWriter_WriteError(t *testing.T) {
	t.Parallel()

	// A regular file where the kind directory should go makes MkdirAll fail.
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "Custom"), []byte("x"), 0o600))

	err := NewDirWriter(root).Write(context.Background(), sampleDoc())

	var werr *WriteError
	require.True(t, errors.As(err, &werr), "expected *WriteError, got %v", err)
	require.Equal(t, model.KindCustom, werr.Kind)
	require.Equal(t, "SampleObject", werr.Name)
	require.Contains(t, err.Error(), `Custom "SampleObject"`)
}

func TestWriters_RespectCancelledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.ErrorIs(t, NewDirWriter(t.TempDir()).Write(ctx, sampleDoc()), context.Canceled)
	require.ErrorIs(t, NewMemoryWriter().Write(ctx, sampleDoc()), context.Canceled)
}

func TestMulti(t *testing.T) {
	t.Parallel()

	a, b := NewMemoryWriter(), NewMemoryWriter()
	require.NoError(t, Multi{a, b}.Write(context.Background(), sampleDoc()))

	require.Equal(t, []string{"Custom/SampleObject.xml"}, a.Names())
	doc, ok := b.Get("Custom/SampleObject.xml")
	require.True(t, ok)
	require.Equal(t, "SampleObject", doc.Name)
}

package fsutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeTree(t *testing.T, files ...string) string {
	t.Helper()
	root := t.TempDir()
	for _, f := range files {
		p := filepath.Join(root, f)
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte("x"), 0o644))
	}
	return root
}

func TestFindFiles(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	root := writeTree(t, "a.hcl", "nested/b.hcl", "nested/deeper/c.hcl", "nested/readme.md")
	j := func(p ...string) string { return filepath.Join(append([]string{root}, p...)...) }

	// --- Act ---
	byDir, err := FindFiles([]string{root}, ".hcl")
	require.NoError(t, err)
	byGlob, err := FindFiles([]string{j("nested", "**", "*.hcl"), j("a.hcl"), j("missing")}, ".hcl")
	require.NoError(t, err)

	// --- Assert ---
	require.Equal(t, []string{j("a.hcl"), j("nested", "b.hcl"), j("nested", "deeper", "c.hcl")}, byDir)
	require.Equal(t, byDir, byGlob, "overlapping patterns yield each file once")
	require.Equal(t, []string{root, j("nested"), j("nested", "deeper")}, Dirs(byDir))
}

func TestFindFiles_PanicsOnEmptyExtension(t *testing.T) {
	t.Parallel()
	require.Panics(t, func() { _, _ = FindFiles([]string{"."}, "") })
}

func TestRoots(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	root := writeTree(t, "a.hcl", "nested/b.hcl", "other/c.hcl")
	j := func(p ...string) string { return filepath.Join(append([]string{root}, p...)...) }

	// --- Act ---
	roots := Roots([]string{
		j("nested"),
		j("a.hcl"),
		j("other", "**", "*.hcl"),
		j("nested"),
		j("missing"),
	})

	// --- Assert ---
	require.Equal(t, []string{root, j("nested"), j("other")}, roots)
}

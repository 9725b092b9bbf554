package classify

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/tdgraph/internal/types"
)

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	full := filepath.Join(root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
	require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
}

func TestDiscoverSortedAndLanguageTagged(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "b.go", "package main\n")
	writeFile(t, root, "a.py", "def f():\n    pass\n")
	writeFile(t, root, "src/c.rs", "fn main() {}\n")

	c, err := New(root, Options{})
	require.NoError(t, err)

	res, err := c.Discover()
	require.NoError(t, err)
	require.Len(t, res.Candidates, 3)

	var paths []string
	for _, cand := range res.Candidates {
		paths = append(paths, cand.Path)
	}
	assert.True(t, sort.StringsAreSorted(paths))

	byPath := map[string]types.Language{}
	for _, cand := range res.Candidates {
		byPath[cand.Path] = cand.Language
	}
	assert.Equal(t, types.LangGo, byPath["b.go"])
	assert.Equal(t, types.LangPython, byPath["a.py"])
	assert.Equal(t, types.LangRust, byPath["src/c.rs"])
}

func TestDiscoverSkipsVendorDirectory(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "node_modules/pkg/index.js", "module.exports = {}\n")
	writeFile(t, root, "main.js", "console.log(1)\n")

	c, err := New(root, Options{})
	require.NoError(t, err)
	res, err := c.Discover()
	require.NoError(t, err)

	require.Len(t, res.Candidates, 1)
	assert.Equal(t, "main.js", res.Candidates[0].Path)
}

func TestDiscoverSkipsBinaryContent(t *testing.T) {
	root := t.TempDir()
	full := filepath.Join(root, "blob.py")
	require.NoError(t, os.WriteFile(full, []byte("abc\x00def"), 0o644))

	c, err := New(root, Options{})
	require.NoError(t, err)
	res, err := c.Discover()
	require.NoError(t, err)

	require.Empty(t, res.Candidates)
	require.Len(t, res.Skipped, 1)
	assert.Equal(t, SkipBinary, res.Skipped[0].Kind)
}

func TestDiscoverHonoursGitignore(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, ".gitignore", "ignored/\n")
	writeFile(t, root, "ignored/x.go", "package ignored\n")
	writeFile(t, root, "keep.go", "package keep\n")

	c, err := New(root, Options{})
	require.NoError(t, err)
	res, err := c.Discover()
	require.NoError(t, err)

	require.Len(t, res.Candidates, 1)
	assert.Equal(t, "keep.go", res.Candidates[0].Path)
}

func TestDiscoverMinifiedHeuristic(t *testing.T) {
	root := t.TempDir()
	var sb strings.Builder
	for i := 0; i < 300; i++ {
		sb.WriteByte(byte(33 + (i*37)%90))
	}
	writeFile(t, root, "bundle.min.js", sb.String())

	c, err := New(root, Options{})
	require.NoError(t, err)
	res, err := c.Discover()
	require.NoError(t, err)

	require.Empty(t, res.Candidates)
	require.Len(t, res.Skipped, 1)
	assert.Equal(t, SkipMinified, res.Skipped[0].Kind)
}

func TestDiscoverFailsOnUnreadableRoot(t *testing.T) {
	_, err := New(filepath.Join(t.TempDir(), "does-not-exist"), Options{})
	require.NoError(t, err) // New only loads .gitignore, missing root is fine there

	c, err := New(filepath.Join(t.TempDir(), "does-not-exist"), Options{})
	require.NoError(t, err)
	_, err = c.Discover()
	require.Error(t, err)
}

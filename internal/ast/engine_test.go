package ast

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/tdgraph/internal/cache"
	"github.com/standardbeagle/tdgraph/internal/config"
	"github.com/standardbeagle/tdgraph/internal/types"
)

func writeProject(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for rel, content := range files {
		path := filepath.Join(root, rel)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return root
}

func TestParseProject_SortsFilesAndBuildsSummary(t *testing.T) {
	root := writeProject(t, map[string]string{
		"b.go": "package b\n\nfunc Hello() {}\n",
		"a.go": "package a\n\nfunc World() {}\n",
	})

	e := New(nil)
	pc, err := e.ParseProject(context.Background(), root, config.Default())
	require.NoError(t, err)

	require.Len(t, pc.Files, 2)
	assert.Equal(t, "a.go", pc.Files[0].Path)
	assert.Equal(t, "b.go", pc.Files[1].Path)
	assert.Equal(t, 2, pc.Summary.FileCount)
	assert.Equal(t, 2, pc.Summary.ItemsByKind[types.ItemFunction])
	assert.NotEmpty(t, pc.Files[0].ContentHash)
}

func TestParseProject_CachesRepeatedParse(t *testing.T) {
	root := writeProject(t, map[string]string{
		"only.go": "package only\n\nfunc F() {}\n",
	})

	c, err := cache.New(cache.Options{L1Capacity: 16})
	require.NoError(t, err)
	e := New(c)

	pc1, err := e.ParseProject(context.Background(), root, config.Default())
	require.NoError(t, err)
	pc2, err := e.ParseProject(context.Background(), root, config.Default())
	require.NoError(t, err)

	assert.Equal(t, pc1.Files[0].ContentHash, pc2.Files[0].ContentHash)
	stats := c.Stats()
	assert.GreaterOrEqual(t, stats.Hits, int64(1))
}

func TestParseProject_SkipsVendoredDirectories(t *testing.T) {
	root := writeProject(t, map[string]string{
		"main.go":               "package main\n\nfunc main() {}\n",
		"vendor/dep/dep.go":     "package dep\n\nfunc Dep() {}\n",
		"node_modules/x/x.js":   "function x() {}\n",
	})

	e := New(nil)
	pc, err := e.ParseProject(context.Background(), root, config.Default())
	require.NoError(t, err)

	require.Len(t, pc.Files, 1)
	assert.Equal(t, "main.go", pc.Files[0].Path)
}

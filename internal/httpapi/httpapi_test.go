package httpapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/tdgraph/internal/pipeline"
)

func sampleProject(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "lib.go"), []byte("package lib\n\nfunc Add(a, b int) int {\n\treturn a + b\n}\n"), 0o644))
	return root
}

func TestHandler_GetComplexityReturnsData(t *testing.T) {
	root := sampleProject(t)
	s := NewServer(pipeline.New(nil, nil, nil), nil)
	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/analyze/complexity?root=" + root)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var env envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	assert.Nil(t, env.Error)
	assert.NotNil(t, env.Data)
}

func TestHandler_MissingRootIsBadRequest(t *testing.T) {
	s := NewServer(pipeline.New(nil, nil, nil), nil)
	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/analyze/complexity")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHandler_UnreadableRootIsErrorEnvelope(t *testing.T) {
	s := NewServer(pipeline.New(nil, nil, nil), nil)
	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/analyze/dag?root=" + filepath.Join(t.TempDir(), "missing"))
	require.NoError(t, err)
	defer resp.Body.Close()

	var env envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	require.NotNil(t, env.Error)
}

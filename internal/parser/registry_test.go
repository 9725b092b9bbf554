package parser_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/tdgraph/internal/parser"
	"github.com/standardbeagle/tdgraph/internal/types"
)

func TestGoStrategyExtractsFunctionsAndImports(t *testing.T) {
	src := []byte(`package sample

import "fmt"

func Add(a, b int) int {
	if a > b {
		return a
	}
	return a + b
}

func private() {}
`)
	r := parser.NewDefaultRegistry()
	fc := r.ParseFile(context.Background(), "sample.go", types.LangGo, src)

	require.Empty(t, fc.Diagnostics)
	var names []string
	var imports []string
	for _, item := range fc.Items {
		if item.Kind == types.ItemFunction {
			names = append(names, item.Name)
		}
		if item.Kind == types.ItemImport {
			imports = append(imports, item.ImportPath)
		}
	}
	assert.Contains(t, names, "Add")
	assert.Contains(t, names, "private")
	assert.Contains(t, imports, "fmt")

	for _, item := range fc.Items {
		if item.Name == "Add" {
			assert.GreaterOrEqual(t, item.Cyclomatic, uint32(2))
			assert.Equal(t, types.VisPublic, item.Visibility)
		}
		if item.Name == "private" {
			assert.Equal(t, types.VisPrivate, item.Visibility)
		}
	}
}

func TestGoStrategyExtractsCallNames(t *testing.T) {
	src := []byte(`package sample

func caller() int {
	return callee()
}

func callee() int {
	return 1
}
`)
	r := parser.NewDefaultRegistry()
	fc := r.ParseFile(context.Background(), "sample.go", types.LangGo, src)

	for _, item := range fc.Items {
		if item.Name == "caller" {
			assert.Contains(t, item.CallNames, "callee")
		}
	}
}

func TestRegistryReturnsDiagnosticForUnknownLanguage(t *testing.T) {
	r := parser.NewRegistry()
	fc := r.ParseFile(context.Background(), "x.rb", types.Language("ruby"), []byte("puts 1"))
	require.Len(t, fc.Diagnostics, 1)
	assert.Equal(t, types.DiagParseError, fc.Diagnostics[0].Kind)
}

func TestRegistryEnforcesSizeGuard(t *testing.T) {
	r := parser.NewDefaultRegistry()
	r.MaxSize = 4
	fc := r.ParseFile(context.Background(), "big.go", types.LangGo, []byte("package main\n"))
	require.Len(t, fc.Diagnostics, 1)
	assert.Equal(t, types.DiagDegraded, fc.Diagnostics[0].Kind)
}

func TestRegistryEnforcesTimeout(t *testing.T) {
	r := parser.NewDefaultRegistry()
	r.Timeout = time.Nanosecond
	fc := r.ParseFile(context.Background(), "slow.go", types.LangGo, []byte("package main\nfunc F() {}\n"))
	// Either it completes within the nanosecond window (unlikely) or times out;
	// both are valid outcomes for this guard, but a timeout must carry the
	// DiagTimeout diagnostic and no items.
	if len(fc.Diagnostics) > 0 {
		assert.Equal(t, types.DiagTimeout, fc.Diagnostics[0].Kind)
		assert.Empty(t, fc.Items)
	}
}

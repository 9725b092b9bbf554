package duplicate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/tdgraph/internal/types"
)

func projectFor(files map[string]string) (*types.ProjectContext, map[string][]byte) {
	pc := &types.ProjectContext{}
	contents := make(map[string][]byte)
	for path, src := range files {
		lines := 1
		for _, c := range src {
			if c == '\n' {
				lines++
			}
		}
		pc.Files = append(pc.Files, types.FileContext{Path: path, SourceLines: lines})
		contents[path] = []byte(src)
	}
	pc.SortFiles()
	return pc, contents
}

func TestAnalyze_IdenticalFilesFormType1Group(t *testing.T) {
	src := `func doThing(x int) int {
	if x > 0 {
		return x * 2
	}
	return x
}
`
	pc, contents := projectFor(map[string]string{"a.go": src, "b.go": src})

	report := Analyze(pc, contents)

	require.Len(t, report.Groups, 1)
	group := report.Groups[0]
	assert.Equal(t, types.CloneType1, group.Type)
	assert.InDelta(t, 1.0, group.Similarity, 1e-9)
	require.Len(t, group.Members, 2)
	assert.Equal(t, "a.go", group.Members[0].File)
	assert.Equal(t, "b.go", group.Members[1].File)
	assert.InDelta(t, 1.0, report.CoverageRatio, 1e-9)
}

func TestAnalyze_UnrelatedFilesProduceNoGroups(t *testing.T) {
	pc, contents := projectFor(map[string]string{
		"a.go": "package a\nfunc Alpha() {}\n",
		"b.py": "import os\nclass Zeta:\n    pass\n",
	})

	report := Analyze(pc, contents)

	assert.Empty(t, report.Groups)
	assert.Equal(t, 0.0, report.CoverageRatio)
}

func TestAnalyze_RenamedIdentifiersFormType3Group(t *testing.T) {
	a := `func compute(value int) int {
	total := 0
	for i := 0; i < value; i++ {
		total += i
	}
	return total
}
`
	b := `func calculate(count int) int {
	sum := 0
	for j := 0; j < count; j++ {
		sum += j
	}
	return sum
}
`
	pc, contents := projectFor(map[string]string{"a.go": a, "b.go": b})

	report := Analyze(pc, contents)

	require.Len(t, report.Groups, 1)
	assert.Equal(t, types.CloneType3, report.Groups[0].Type)
	assert.GreaterOrEqual(t, report.Groups[0].Similarity, similarityThreshold)
}

func TestAnalyze_SingleFileNeverGroups(t *testing.T) {
	pc, contents := projectFor(map[string]string{"only.go": "package only\n"})

	report := Analyze(pc, contents)

	assert.Empty(t, report.Groups)
}

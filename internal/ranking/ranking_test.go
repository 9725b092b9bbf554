package ranking

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

type item struct {
	path  string
	score float64
}

func TestTopK_OrdersByScoreDescending(t *testing.T) {
	items := []item{
		{"a.go", 1.0},
		{"b.go", 5.0},
		{"c.go", 3.0},
	}

	top := TopK(items, func(i item) float64 { return i.score }, func(i item) string { return i.path }, 2)

	assert.Len(t, top, 2)
	assert.Equal(t, "b.go", top[0].path)
	assert.Equal(t, "c.go", top[1].path)
}

func TestTopK_TieBreaksBySecondaryKey(t *testing.T) {
	items := []item{
		{"z.go", 1.0},
		{"a.go", 1.0},
		{"m.go", 1.0},
	}

	top := TopK(items, func(i item) float64 { return i.score }, func(i item) string { return i.path }, 3)

	assert.Equal(t, []string{"a.go", "m.go", "z.go"}, []string{top[0].path, top[1].path, top[2].path})
}

func TestTopK_ZeroOrLargeKReturnsAll(t *testing.T) {
	items := []item{{"a.go", 1}, {"b.go", 2}}
	score := func(i item) float64 { return i.score }
	key := func(i item) string { return i.path }

	assert.Len(t, TopK(items, score, key, 0), 2)
	assert.Len(t, TopK(items, score, key, 100), 2)
}

func TestTopK_ChunkedScoringPreservesOrdering(t *testing.T) {
	items := make([]item, 1000)
	for i := range items {
		items[i] = item{path: fmt.Sprintf("f%04d.go", i), score: float64(len(items) - i)}
	}

	top := TopK(items, func(i item) float64 { return i.score }, func(i item) string { return i.path }, 5)

	for i, it := range top {
		assert.Equal(t, fmt.Sprintf("f%04d.go", i), it.path)
	}
}

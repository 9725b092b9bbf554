// Package ranking implements the generic top-K scoring engine (C14). C5's
// top-N file view (ComplexityReport.TopN) is built on it; the SATD and
// TDG analyzers sort their own results.
//
// Ordering uses sort.SliceStable for a stable, deterministic result;
// chunked scoring of large item sets uses golang.org/x/sync/errgroup, the
// same concurrency primitive internal/pipeline already uses for
// data-parallel fan-out.
package ranking

import (
	"context"
	"sort"

	"golang.org/x/sync/errgroup"
)

// Scorer computes a ranking score for one item. Higher scores rank first.
type Scorer[T any] func(T) float64

// SecondaryKey breaks score ties with a stable, deterministic ordering:
// callers typically key on path+line so that two items with an identical
// score still sort the same way on every run.
type SecondaryKey[T any] func(T) string

// scored pairs an item with its precomputed score, so scoring (which may
// run concurrently) and sorting (which must be deterministic) are
// separate passes.
type scored[T any] struct {
	item  T
	score float64
	key   string
}

// chunkSize bounds how much work one goroutine does per scoring chunk;
// below this, scoring runs inline with no goroutine overhead.
const chunkSize = 256

// TopK scores every item, sorts descending by score (ties broken
// ascending by secondary key), and returns the first k. k <= 0 or k
// larger than len(items) returns the full sorted slice.
func TopK[T any](items []T, score Scorer[T], secondary SecondaryKey[T], k int) []T {
	scoredItems := scoreAll(items, score, secondary)

	sort.SliceStable(scoredItems, func(i, j int) bool {
		if scoredItems[i].score != scoredItems[j].score {
			return scoredItems[i].score > scoredItems[j].score
		}
		return scoredItems[i].key < scoredItems[j].key
	})

	if k <= 0 || k > len(scoredItems) {
		k = len(scoredItems)
	}

	out := make([]T, k)
	for i := 0; i < k; i++ {
		out[i] = scoredItems[i].item
	}
	return out
}

// scoreAll computes every item's score, splitting into chunks processed
// by a bounded errgroup when the item count justifies it. Each chunk
// writes into its own slice region, so no ordering is lost to goroutine
// completion order — the result is indexed identically to items
// regardless of which chunk finished first.
func scoreAll[T any](items []T, score Scorer[T], secondary SecondaryKey[T]) []scored[T] {
	out := make([]scored[T], len(items))
	if len(items) <= chunkSize {
		for i, it := range items {
			out[i] = scored[T]{item: it, score: score(it), key: secondary(it)}
		}
		return out
	}

	g, _ := errgroup.WithContext(context.Background())
	for start := 0; start < len(items); start += chunkSize {
		start := start
		end := min(start+chunkSize, len(items))
		g.Go(func() error {
			for i := start; i < end; i++ {
				out[i] = scored[T]{item: items[i], score: score(items[i]), key: secondary(items[i])}
			}
			return nil
		})
	}
	_ = g.Wait() // scoring functions never error; chunks only ever write their own slice region
	return out
}

// Package duplicate implements the Duplicate Detector (C9): per-file
// token streams are shingled into sliding windows, hashed into MinHash
// signatures, and grouped via LSH banding into Type-1/2 clone groups
// (raw token identity) and Type-3 clone groups (identifier-normalised
// token identity).
//
// Sliding windows of length W, MinHash K=128, LSH bands b=32 r=4, and a
// Jaccard cutoff of 0.8, using github.com/cespare/xxhash/v2 for
// shingle/band hashing (minhash.go) and github.com/hbollon/go-edlib for
// refining near-duplicate candidates once LSH narrows the field to a
// small candidate set.
package duplicate

import (
	"sort"

	"github.com/hbollon/go-edlib"

	"github.com/standardbeagle/tdgraph/internal/types"
)

// similarityThreshold is the Jaccard cutoff used for both Type-1/2 and
// Type-3 grouping.
const similarityThreshold = 0.8

// fileSignature bundles one file's raw and normalised-token signatures.
type fileSignature struct {
	path       string
	rawTokens  int
	normTokens int
	rawSig     [signatureLen]uint64
	normSig    [signatureLen]uint64
	rawSample  string // joined prefix of raw tokens, for edlib refinement
	lines      int
}

// Analyze computes a project-wide CloneReport. contents maps each
// pc.Files[i].Path to its raw source bytes; the pipeline reads these once
// and shares them with internal/satd's scan to avoid duplicate file I/O.
func Analyze(pc *types.ProjectContext, contents map[string][]byte) types.CloneReport {
	sigs := make([]fileSignature, 0, len(pc.Files))
	for _, fc := range pc.Files {
		content, ok := contents[fc.Path]
		if !ok || len(content) == 0 {
			continue
		}
		rawTokens := tokenize(content)
		normTokens := normalize(rawTokens)
		sigs = append(sigs, fileSignature{
			path:       fc.Path,
			rawTokens:  len(rawTokens),
			normTokens: len(normTokens),
			rawSig:     signature(shingles(rawTokens)),
			normSig:    signature(shingles(normTokens)),
			rawSample:  sampleTokens(rawTokens),
			lines:      fc.SourceLines,
		})
	}
	sort.Slice(sigs, func(i, j int) bool { return sigs[i].path < sigs[j].path })

	n := len(sigs)
	if n < 2 {
		return types.CloneReport{}
	}

	rawPairs := candidatePairs(sigs, func(s fileSignature) [signatureLen]uint64 { return s.rawSig })
	normPairs := candidatePairs(sigs, func(s fileSignature) [signatureLen]uint64 { return s.normSig })

	rawUF := newUnionFind(n)
	rawSim := make(map[[2]int]float64)
	for _, p := range rawPairs {
		sim := estimatedJaccard(sigs[p[0]].rawSig, sigs[p[1]].rawSig)
		if sim >= similarityThreshold {
			rawUF.union(p[0], p[1])
			rawSim[p] = sim
		}
	}

	rawComponents := components(rawUF, n)

	normUF := newUnionFind(n)
	normSim := make(map[[2]int]float64)
	for _, p := range normPairs {
		// Skip pairs already grouped at the raw level; Type-3 reports
		// identifier-renamed duplicates the raw pass didn't already catch.
		if rawUF.find(p[0]) == rawUF.find(p[1]) {
			continue
		}
		sim := estimatedJaccard(sigs[p[0]].normSig, sigs[p[1]].normSig)
		if sim >= similarityThreshold {
			normUF.union(p[0], p[1])
			normSim[p] = sim
		}
	}
	normComponents := components(normUF, n)

	var groups []types.CloneGroup
	coveredLines := make(map[string]bool)

	for _, comp := range rawComponents {
		if len(comp) < 2 {
			continue
		}
		groups = append(groups, buildGroup(sigs, comp, rawSim, classifyRawType(sigs, comp)))
		for _, idx := range comp {
			coveredLines[sigs[idx].path] = true
		}
	}
	for _, comp := range normComponents {
		if len(comp) < 2 {
			continue
		}
		groups = append(groups, buildGroup(sigs, comp, normSim, types.CloneType3))
		for _, idx := range comp {
			coveredLines[sigs[idx].path] = true
		}
	}

	sort.Slice(groups, func(i, j int) bool {
		if groups[i].Type != groups[j].Type {
			return groups[i].Type < groups[j].Type
		}
		if groups[i].Similarity != groups[j].Similarity {
			return groups[i].Similarity > groups[j].Similarity
		}
		return groups[i].Members[0].File < groups[j].Members[0].File
	})

	totalLines, coveredCount := 0, 0
	for _, s := range sigs {
		totalLines += s.lines
		if coveredLines[s.path] {
			coveredCount += s.lines
		}
	}
	var coverage float64
	if totalLines > 0 {
		coverage = float64(coveredCount) / float64(totalLines)
	}

	return types.CloneReport{Groups: groups, CoverageRatio: coverage}
}

// candidatePairs runs LSH banding over every signature (selected by sigOf)
// and returns every within-band co-occurring pair exactly once, sorted
// for deterministic downstream iteration.
func candidatePairs(sigs []fileSignature, sigOf func(fileSignature) [signatureLen]uint64) [][2]int {
	band := make(map[uint64][]int)
	for i, s := range sigs {
		for _, key := range bandKeys(sigOf(s)) {
			band[key] = append(band[key], i)
		}
	}

	seen := make(map[[2]int]bool)
	var pairs [][2]int
	bandKeysSorted := make([]uint64, 0, len(band))
	for k := range band {
		bandKeysSorted = append(bandKeysSorted, k)
	}
	sort.Slice(bandKeysSorted, func(i, j int) bool { return bandKeysSorted[i] < bandKeysSorted[j] })

	for _, k := range bandKeysSorted {
		members := band[k]
		sort.Ints(members)
		for i := 0; i < len(members); i++ {
			for j := i + 1; j < len(members); j++ {
				pair := [2]int{members[i], members[j]}
				if !seen[pair] {
					seen[pair] = true
					pairs = append(pairs, pair)
				}
			}
		}
	}
	return pairs
}

// components returns the union-find's connected components as sorted
// index slices, in ascending order of each component's smallest member.
func components(uf *unionFind, n int) [][]int {
	byRoot := make(map[int][]int)
	for i := 0; i < n; i++ {
		root := uf.find(i)
		byRoot[root] = append(byRoot[root], i)
	}
	roots := make([]int, 0, len(byRoot))
	for r := range byRoot {
		roots = append(roots, r)
	}
	sort.Ints(roots)
	out := make([][]int, 0, len(roots))
	for _, r := range roots {
		members := byRoot[r]
		sort.Ints(members)
		out = append(out, members)
	}
	return out
}

// classifyRawType distinguishes Type-1 (byte-for-byte identical token
// streams) from Type-2 (near-identical, same raw-signature cluster but
// not token-identical) using go-edlib's Levenshtein similarity over a
// token-stream sample as a refinement the MinHash estimate alone can't
// give: two files can land in the same LSH band with sim>=0.8 yet not be
// exact duplicates.
func classifyRawType(sigs []fileSignature, comp []int) types.CloneType {
	for i := 0; i < len(comp); i++ {
		for j := i + 1; j < len(comp); j++ {
			a, b := sigs[comp[i]], sigs[comp[j]]
			if a.rawTokens != b.rawTokens || a.rawSig != b.rawSig {
				return types.CloneType2
			}
			// go-edlib's StringsSimilarity returns a normalised similarity
			// (1 = identical, 0 = completely different), not a distance.
			sim, err := edlib.StringsSimilarity(a.rawSample, b.rawSample, edlib.Levenshtein)
			if err == nil && sim < 0.999 {
				return types.CloneType2
			}
		}
	}
	return types.CloneType1
}

// sampleTokens joins a bounded prefix of the token stream so edlib's
// O(n*m) Levenshtein comparison stays cheap even for large files.
func sampleTokens(tokens []string) string {
	const maxSample = 512
	if len(tokens) > maxSample {
		tokens = tokens[:maxSample]
	}
	total := 0
	for _, t := range tokens {
		total += len(t) + 1
	}
	out := make([]byte, 0, total)
	for _, t := range tokens {
		out = append(out, t...)
		out = append(out, '\x1f')
	}
	return string(out)
}

func buildGroup(sigs []fileSignature, comp []int, sim map[[2]int]float64, cloneType types.CloneType) types.CloneGroup {
	members := make([]types.CloneMember, 0, len(comp))
	var total, count float64
	for i := 0; i < len(comp); i++ {
		s := sigs[comp[i]]
		members = append(members, types.CloneMember{File: s.path, StartLine: 1, EndLine: uint32(maxInt(s.lines, 1))})
		for j := i + 1; j < len(comp); j++ {
			key := [2]int{comp[i], comp[j]}
			if v, ok := sim[key]; ok {
				total += v
				count++
			}
		}
	}
	avg := 1.0
	if count > 0 {
		avg = total / count
	}
	sort.Slice(members, func(i, j int) bool { return members[i].File < members[j].File })
	return types.CloneGroup{Type: cloneType, Similarity: avg, Members: members}
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

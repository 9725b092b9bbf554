// Package classify implements file discovery and vendor rejection (C1):
// a deterministic, path-sorted walk that pairs each source file with its
// detected language while skipping build output, vendored, binary, and
// minified content before it ever reaches a parser. Gitignore matching,
// build-artifact-directory detection, and binary sniffing each get their
// own typed SkipKind rather than a single boolean "should index" check.
package classify

import (
	"bufio"
	"bytes"
	"io"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/standardbeagle/tdgraph/internal/config"
	"github.com/standardbeagle/tdgraph/internal/errors"
	"github.com/standardbeagle/tdgraph/internal/types"
)

// SkipKind records why a candidate file was rejected before parsing.
type SkipKind string

const (
	SkipNone         SkipKind = ""
	SkipMinified     SkipKind = "Minified"
	SkipBinary       SkipKind = "Binary"
	SkipBuildArtifact SkipKind = "BuildArtifact"
	SkipVendored     SkipKind = "Vendored"
	SkipIgnored      SkipKind = "Ignored"
	SkipUnsupported  SkipKind = "UnsupportedLanguage"
)

// entropySampleSize is the prefix length inspected for the minified/binary
// heuristics.
const entropySampleSize = 8 * 1024

// vendoredSizeThreshold marks a file vendored by size+entropy alone even
// absent a recognised vendor directory segment.
const vendoredSizeThreshold = 1 << 20

// vendorDirSegments are path components that always mark a file vendored,
// regardless of content.
var vendorDirSegments = map[string]bool{
	"vendor":       true,
	"node_modules": true,
	".venv":        true,
	"venv":         true,
	"target":       true,
	"dist":         true,
	"build":        true,
	".git":         true,
	".hg":          true,
	".svn":         true,
	"__pycache__":  true,
	".tox":         true,
	"third_party":  true,
	"bower_components": true,
}

// Candidate is one file surviving discovery, paired with its detected
// language. Discover emits these sorted by Path.
type Candidate struct {
	Path     string // relative to root, forward-slash normalized
	AbsPath  string
	Language types.Language
	Size     int64
}

// Skipped records one rejected path and the reason, for diagnostics.
type Skipped struct {
	Path string
	Kind SkipKind
}

// Result is the output of one Discover call.
type Result struct {
	Candidates []Candidate
	Skipped    []Skipped
}

// Options configures a Discover walk.
type Options struct {
	Include []string // doublestar patterns; empty means "all"
	Exclude []string // doublestar patterns, merged with built-ins
}

// Classifier walks a root directory applying gitignore rules, built-in
// exclusions, build-artifact detection, and content heuristics.
type Classifier struct {
	root      string
	opts      Options
	gitignore *config.GitignoreParser
	artifacts []string
}

// New builds a Classifier for root. It loads root/.gitignore (if present)
// and runs the build-artifact detector once up front; both are immutable
// for the lifetime of the Classifier.
func New(root string, opts Options) (*Classifier, error) {
	gi := config.NewGitignoreParser()
	if err := gi.LoadGitignore(root); err != nil {
		return nil, errors.New(errors.KindDiscovery, "classify.New", err).WithFile(root)
	}
	detector := config.NewBuildArtifactDetector(root)
	artifacts := config.DeduplicatePatterns(detector.DetectOutputDirectories())

	return &Classifier{root: root, opts: opts, gitignore: gi, artifacts: artifacts}, nil
}

// Discover walks the tree rooted at c.root and returns a deterministic,
// path-sorted stream of surviving candidates plus the skip diagnostics for
// everything rejected along the way. It fails only when the root itself
// cannot be read; individual file errors become Skipped entries, never an
// aborted walk.
func (c *Classifier) Discover() (*Result, error) {
	if _, err := os.Stat(c.root); err != nil {
		return nil, errors.New(errors.KindDiscovery, "classify.Discover", err).WithFile(c.root)
	}

	res := &Result{}

	walkErr := filepath.WalkDir(c.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// unreadable entry below the root: record and continue
			rel, _ := filepath.Rel(c.root, path)
			res.Skipped = append(res.Skipped, Skipped{Path: filepath.ToSlash(rel), Kind: SkipIgnored})
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		rel, relErr := filepath.Rel(c.root, path)
		if relErr != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)
		if rel == "." {
			return nil
		}

		if d.IsDir() {
			if c.dirRejected(rel) {
				return filepath.SkipDir
			}
			return nil
		}

		kind, lang := c.classifyFile(path, rel)
		if kind != SkipNone {
			res.Skipped = append(res.Skipped, Skipped{Path: rel, Kind: kind})
			return nil
		}

		info, infoErr := d.Info()
		var size int64
		if infoErr == nil {
			size = info.Size()
		}
		res.Candidates = append(res.Candidates, Candidate{
			Path:     rel,
			AbsPath:  path,
			Language: lang,
			Size:     size,
		})
		return nil
	})
	if walkErr != nil {
		return nil, errors.New(errors.KindDiscovery, "classify.Discover", walkErr).WithFile(c.root)
	}

	sort.Slice(res.Candidates, func(i, j int) bool { return res.Candidates[i].Path < res.Candidates[j].Path })
	sort.Slice(res.Skipped, func(i, j int) bool { return res.Skipped[i].Path < res.Skipped[j].Path })
	return res, nil
}

// dirRejected reports whether an entire subtree should be pruned without
// inspecting its contents: vendor directory segments and gitignore
// directory matches.
func (c *Classifier) dirRejected(rel string) bool {
	base := filepath.Base(rel)
	if vendorDirSegments[base] {
		return true
	}
	if c.gitignore.ShouldIgnore(rel, true) {
		return true
	}
	if matchesAny(c.opts.Exclude, rel+"/**") || matchesAny(c.opts.Exclude, rel) {
		return true
	}
	return false
}

// classifyFile applies, in order: include/exclude filters, gitignore,
// build-artifact patterns, vendor segment check, extension support, then
// the content-based heuristics (binary / minified / vendored-by-size).
func (c *Classifier) classifyFile(absPath, rel string) (SkipKind, types.Language) {
	if len(c.opts.Include) > 0 && !matchesAny(c.opts.Include, rel) {
		return SkipIgnored, types.LangUnknown
	}
	if matchesAny(c.opts.Exclude, rel) {
		return SkipIgnored, types.LangUnknown
	}
	if c.gitignore.ShouldIgnore(rel, false) {
		return SkipIgnored, types.LangUnknown
	}
	if matchesAny(c.artifacts, rel) {
		return SkipBuildArtifact, types.LangUnknown
	}
	for _, seg := range strings.Split(rel, "/") {
		if vendorDirSegments[seg] {
			return SkipVendored, types.LangUnknown
		}
	}

	lang := types.LanguageFromExtension(rel)
	if lang == types.LangUnknown {
		return SkipUnsupported, lang
	}

	f, err := os.Open(absPath)
	if err != nil {
		return SkipIgnored, lang
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return SkipIgnored, lang
	}

	sample := make([]byte, entropySampleSize)
	n, _ := io.LimitReader(f, entropySampleSize).Read(sample)
	sample = sample[:n]

	if bytes.IndexByte(sample, 0) >= 0 {
		return SkipBinary, lang
	}
	if isMinified(sample) {
		return SkipMinified, lang
	}
	if info.Size() >= vendoredSizeThreshold && hasHighEntropySingleLine(sample) {
		return SkipVendored, lang
	}

	return SkipNone, lang
}

// isMinified applies a minified-source heuristic: Shannon entropy of
// the sample exceeds 5.2 bits/byte AND average line length exceeds 200.
func isMinified(sample []byte) bool {
	if len(sample) == 0 {
		return false
	}
	if shannonEntropy(sample) <= 5.2 {
		return false
	}
	return averageLineLength(sample) > 200
}

// hasHighEntropySingleLine checks for the large-vendored-file heuristic: a
// sample dominated by one line (few newlines) with high entropy.
func hasHighEntropySingleLine(sample []byte) bool {
	lines := bytes.Count(sample, []byte{'\n'})
	if lines > 2 {
		return false
	}
	return shannonEntropy(sample) > 5.2
}

func shannonEntropy(data []byte) float64 {
	if len(data) == 0 {
		return 0
	}
	var freq [256]int
	for _, b := range data {
		freq[b]++
	}
	entropy := 0.0
	total := float64(len(data))
	for _, f := range freq {
		if f == 0 {
			continue
		}
		p := float64(f) / total
		entropy -= p * math.Log2(p)
	}
	return entropy
}

func averageLineLength(sample []byte) float64 {
	scanner := bufio.NewScanner(bytes.NewReader(sample))
	scanner.Buffer(make([]byte, entropySampleSize), entropySampleSize)
	var total, count int
	for scanner.Scan() {
		total += len(scanner.Text())
		count++
	}
	if count == 0 {
		return float64(len(sample))
	}
	return float64(total) / float64(count)
}

func matchesAny(patterns []string, path string) bool {
	for _, p := range patterns {
		if ok, err := doublestar.Match(p, path); err == nil && ok {
			return true
		}
	}
	return false
}

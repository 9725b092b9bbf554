// Package artifact implements the atomic artifact writer (C12): durable
// output files written temp-then-renamed, with a SHA-256 manifest sorted
// by path and a VerifyTree pass that re-hashes every entry against it.
//
// Writes use the same temp-file + fsync + os.Rename sequence as
// internal/cache/cache.go's writeL2, so a concurrent reader never
// observes a partially-written artifact.
package artifact

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/standardbeagle/tdgraph/internal/errors"
)

// ManifestEntry records one written file's integrity hash.
type ManifestEntry struct {
	Path   string `json:"path"`
	SHA256 string `json:"sha256"`
	Bytes  int    `json:"bytes"`
}

// Manifest is the sorted-by-path record of everything one Writer session
// produced, serialized alongside the artifacts it describes.
type Manifest struct {
	GeneratedAt time.Time       `json:"generated_at"`
	Entries     []ManifestEntry `json:"entries"`
}

// Writer durably writes a tree of output artifacts under Root, building a
// Manifest as it goes.
type Writer struct {
	Root    string
	entries []ManifestEntry
}

// NewWriter prepares Root for writing, creating it if absent.
func NewWriter(root string) (*Writer, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, errors.New(errors.KindIntegrity, "artifact.NewWriter", err).WithFile(root)
	}
	return &Writer{Root: root}, nil
}

// Write durably writes data to relPath under Root via temp-write + fsync
// + rename, and records its SHA-256 hash in the session's manifest.
func (w *Writer) Write(relPath string, data []byte) error {
	full := filepath.Join(w.Root, relPath)
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return errors.New(errors.KindIntegrity, "artifact.Write", err).WithFile(relPath)
	}

	tmp, err := os.CreateTemp(filepath.Dir(full), filepath.Base(full)+".tmp-*")
	if err != nil {
		return errors.New(errors.KindIntegrity, "artifact.Write", err).WithFile(relPath)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return errors.New(errors.KindIntegrity, "artifact.Write", err).WithFile(relPath)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return errors.New(errors.KindIntegrity, "artifact.Write", err).WithFile(relPath)
	}
	if err := tmp.Close(); err != nil {
		return errors.New(errors.KindIntegrity, "artifact.Write", err).WithFile(relPath)
	}
	if err := os.Rename(tmpName, full); err != nil {
		return errors.New(errors.KindIntegrity, "artifact.Write", err).WithFile(relPath)
	}

	sum := sha256.Sum256(data)
	w.entries = append(w.entries, ManifestEntry{
		Path:   filepath.ToSlash(relPath),
		SHA256: hex.EncodeToString(sum[:]),
		Bytes:  len(data),
	})
	return nil
}

// Finalize writes the manifest itself (manifest.json, sorted by path) and
// returns it for the caller's own inspection.
func (w *Writer) Finalize() (Manifest, error) {
	sort.Slice(w.entries, func(i, j int) bool { return w.entries[i].Path < w.entries[j].Path })
	m := Manifest{GeneratedAt: time.Now(), Entries: w.entries}

	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return Manifest{}, errors.New(errors.KindIntegrity, "artifact.Finalize", err)
	}
	if err := w.Write("manifest.json", data); err != nil {
		// m.Entries was taken before this call, so m never lists
		// manifest.json itself; Write records an entry only after it succeeds.
		return m, err
	}
	return m, nil
}

// VerifyTree re-hashes every entry in manifest against root and returns
// one errors.IntegrityFailure per mismatch (including missing files).
func VerifyTree(root string, manifest Manifest) []errors.IntegrityFailure {
	var failures []errors.IntegrityFailure
	for _, entry := range manifest.Entries {
		full := filepath.Join(root, filepath.FromSlash(entry.Path))
		data, err := os.ReadFile(full)
		if err != nil {
			failures = append(failures, errors.IntegrityFailure{Path: entry.Path, Expected: entry.SHA256, Actual: "missing"})
			continue
		}
		sum := sha256.Sum256(data)
		actual := hex.EncodeToString(sum[:])
		if actual != entry.SHA256 {
			failures = append(failures, errors.IntegrityFailure{Path: entry.Path, Expected: entry.SHA256, Actual: actual})
		}
	}
	return failures
}

// LoadManifest reads and parses a manifest.json file under root.
func LoadManifest(root string) (Manifest, error) {
	data, err := os.ReadFile(filepath.Join(root, "manifest.json"))
	if err != nil {
		return Manifest{}, errors.New(errors.KindIntegrity, "artifact.LoadManifest", err)
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return Manifest{}, errors.New(errors.KindIntegrity, "artifact.LoadManifest", err)
	}
	return m, nil
}

// Package errors defines the taxonomy of error kinds the pipeline assigns
// a recovery policy to: a typed error carrying a Kind plus a
// Recoverable flag, so callers can distinguish a degraded-but-continuable
// stage from one that must abort the run.
package errors

import (
	"fmt"
	"time"
)

// Kind enumerates the error taxonomy. Each kind carries its
// own recovery policy, documented alongside the constant.
type Kind string

const (
	// KindDiscovery: unreadable root. Fatal for the run.
	KindDiscovery Kind = "discovery"
	// KindParse: a single file failed to parse. Logged; the file is
	// downgraded to an empty FileContext with a diagnostic; the
	// pipeline continues.
	KindParse Kind = "parse"
	// KindCache: transparent fallback to computation; a corrupted L2
	// entry is deleted.
	KindCache Kind = "cache"
	// KindTimeout: a stage or file exceeded its deadline. A diagnostic
	// is emitted, the pipeline continues with partial data, and the
	// affected analysis is marked degraded.
	KindTimeout Kind = "timeout"
	// KindIntegrity: a manifest hash mismatch. Surfaced to the caller;
	// the artefact is not overwritten.
	KindIntegrity Kind = "integrity"
	// KindCancellation: propagated to the caller; partial outputs are
	// discarded.
	KindCancellation Kind = "cancellation"
	// KindConfig: fatal, reported before any work begins.
	KindConfig Kind = "config"
)

// Error is the concrete error type every fallible stage returns. Pure
// computation never returns one of these with Recoverable=false outside
// of KindDiscovery/KindConfig/KindCancellation — those three are the only
// kinds that are fatal/propagated; see the Kind constants above.
type Error struct {
	Kind        Kind
	Stage       string
	File        string
	Underlying  error
	Timestamp   time.Time
	Recoverable bool
}

func New(kind Kind, stage string, err error) *Error {
	return &Error{
		Kind:        kind,
		Stage:       stage,
		Underlying:  err,
		Timestamp:   time.Now(),
		Recoverable: kind != KindDiscovery && kind != KindConfig && kind != KindCancellation,
	}
}

func (e *Error) WithFile(path string) *Error {
	e.File = path
	return e
}

func (e *Error) Error() string {
	if e.File != "" {
		return fmt.Sprintf("%s: %s (%s): %v", e.Kind, e.Stage, e.File, e.Underlying)
	}
	return fmt.Sprintf("%s: %s: %v", e.Kind, e.Stage, e.Underlying)
}

func (e *Error) Unwrap() error { return e.Underlying }

// IntegrityFailure describes one manifest-vs-disk hash mismatch found by
// Artifact Writer's VerifyTree.
type IntegrityFailure struct {
	Path     string
	Expected string
	Actual   string
}

func (f IntegrityFailure) Error() string {
	return fmt.Sprintf("integrity check failed for %s: expected %s, got %s", f.Path, f.Expected, f.Actual)
}

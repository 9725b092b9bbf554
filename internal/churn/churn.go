// Package churn implements the ChurnSource collaborator:
// "ChurnSource::recent_changes(path, window_days) ->
// {commits_recent, commits_total, unique_authors}". internal/tdg needs a
// concrete collaborator to exercise against, so this package ships a real
// git-backed implementation: exec.Command("git", ...) against a repo
// root resolved via `git rev-parse --show-toplevel`.
//
// window_days is interpreted as calendar days, not commit count — see
// DESIGN.md.
package churn

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/standardbeagle/tdgraph/internal/errors"
	"github.com/standardbeagle/tdgraph/internal/tdg"
)

// GitSource implements tdg.ChurnSource by shelling out to `git log`,
// scoped to one repository root.
type GitSource struct {
	repoRoot string
}

// NewGitSource resolves repoRoot's actual git top-level directory and
// returns a GitSource rooted there. Returns an error (KindConfig, since
// churn unavailability is handled by the caller treating a nil source as
// "no churn data" rather than failing the whole pipeline) if root isn't
// inside a git repository.
func NewGitSource(ctx context.Context, root string) (*GitSource, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, errors.New(errors.KindConfig, "churn.NewGitSource", err)
	}
	cmd := exec.CommandContext(ctx, "git", "rev-parse", "--show-toplevel")
	cmd.Dir = absRoot
	out, err := cmd.Output()
	if err != nil {
		return nil, errors.New(errors.KindConfig, "churn.NewGitSource", fmt.Errorf("not a git repository: %s", absRoot))
	}
	return &GitSource{repoRoot: strings.TrimSpace(string(out))}, nil
}

// RecentChanges implements tdg.ChurnSource. ok is false when a git command
// fails; a path with no commits is not a failure and reports zero counts
// with ok true. Per §4.8 the caller treats ok=false exactly like a nil
// ChurnSource, Δ(f) = 0.
func (g *GitSource) RecentChanges(path string, windowDays int) (tdg.ChurnStats, bool) {
	if windowDays <= 0 {
		windowDays = 90
	}
	recent, err := g.commitCount(path, fmt.Sprintf("--since=%d days ago", windowDays))
	if err != nil {
		return tdg.ChurnStats{}, false
	}
	total, err := g.commitCount(path)
	if err != nil {
		return tdg.ChurnStats{}, false
	}
	authors, err := g.uniqueAuthors(path, fmt.Sprintf("--since=%d days ago", windowDays))
	if err != nil {
		return tdg.ChurnStats{}, false
	}
	return tdg.ChurnStats{
		CommitsRecent: recent,
		CommitsTotal:  total,
		UniqueAuthors: authors,
	}, true
}

func (g *GitSource) commitCount(path string, extraArgs ...string) (int, error) {
	args := append([]string{"log", "--pretty=format:%H"}, extraArgs...)
	args = append(args, "--", path)
	out, err := g.run(args...)
	if err != nil {
		return 0, err
	}
	return countNonEmptyLines(out), nil
}

func (g *GitSource) uniqueAuthors(path string, extraArgs ...string) (int, error) {
	args := append([]string{"log", "--pretty=format:%ae"}, extraArgs...)
	args = append(args, "--", path)
	out, err := g.run(args...)
	if err != nil {
		return 0, err
	}
	seen := make(map[string]bool)
	scanner := bufio.NewScanner(bytes.NewReader(out))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" {
			seen[line] = true
		}
	}
	return len(seen), nil
}

func (g *GitSource) run(args ...string) ([]byte, error) {
	cmd := exec.Command("git", args...)
	cmd.Dir = g.repoRoot
	return cmd.Output()
}

func countNonEmptyLines(out []byte) int {
	n := 0
	scanner := bufio.NewScanner(bytes.NewReader(out))
	for scanner.Scan() {
		if strings.TrimSpace(scanner.Text()) != "" {
			n++
		}
	}
	return n
}


// Package satd implements the Self-Admitted Technical Debt Detector (C6):
// a keyword/regex scan over comment lines that classifies each marker
// into a category and severity, with a deterministic context hash for
// stable identity across runs.
//
// Grounded directly on other_examples/…panbanda-omen…satd.go: the
// severity-ordered pattern table, the false-positive filters
// (markdown-header, bug-tracking-ID, fixed-bug-description,
// ignore-directive), and the severity escalate/reduce-by-context idiom
// are all ported from that analyzer. Like it, this is a regex scan over
// the file's comment lines: the test/security context comes from the
// file path and the comment line's own words, not from function
// boundaries.
// `Security`-flavoured markers classify as DebtDefect rather than adding
// a seventh DebtCategory value — see DESIGN.md's enum fidelity note.
package satd

import (
	"bufio"
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"regexp"
	"sort"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/standardbeagle/tdgraph/internal/types"
)

type pattern struct {
	regex    *regexp.Regexp
	category types.DebtCategory
	severity types.Severity
}

// patterns is the fixed keyword table §4.6 specifies: TODO, FIXME, HACK,
// XXX, plus category-specific cues, ordered most-severe first so the
// first match wins when a line carries more than one marker.
var patterns = []pattern{
	{regexp.MustCompile(`(?i)\b(SECURITY|VULN|VULNERABILITY|CVE|XSS|UNSAFE)\b[:\s]*(.+)?`), types.DebtDefect, types.SeverityCritical},

	{regexp.MustCompile(`(?i)\b(FIXME|FIX\s*ME)\b[:\s]*(.+)?`), types.DebtDefect, types.SeverityHigh},
	{regexp.MustCompile(`(?i)\bBUG\b[:\s]*(.+)?`), types.DebtDefect, types.SeverityHigh},
	{regexp.MustCompile(`(?i)\bBROKEN\b[:\s]*(.+)?`), types.DebtDefect, types.SeverityHigh},

	{regexp.MustCompile(`(?i)\b(HACK|KLUDGE|SMELL|XXX)\b[:\s]*(.+)?`), types.DebtDesign, types.SeverityMedium},
	{regexp.MustCompile(`(?i)\bREFACTOR\b[:\s]*(.+)?`), types.DebtDesign, types.SeverityMedium},
	{regexp.MustCompile(`(?i)\bCLEANUP\b[:\s]*(.+)?`), types.DebtDesign, types.SeverityMedium},
	{regexp.MustCompile(`(?i)\btechnical\s+debt\b[:\s]*(.+)?`), types.DebtDesign, types.SeverityMedium},
	{regexp.MustCompile(`(?i)\bcode\s+smell\b[:\s]*(.+)?`), types.DebtDesign, types.SeverityMedium},
	{regexp.MustCompile(`(?i)\b(WORKAROUND|TEMP|TEMPORARY)\b[:\s]*(.+)?`), types.DebtDesign, types.SeverityLow},

	{regexp.MustCompile(`(?i)\bperformance\s+(issue|problem)\b[:\s]*(.+)?`), types.DebtPerformance, types.SeverityMedium},
	{regexp.MustCompile(`(?i)\b(OPTIMIZE|SLOW)\b[:\s]*(.+)?`), types.DebtPerformance, types.SeverityLow},

	{regexp.MustCompile(`(?i)\btest.*\b(disabled|skipped|failing)\b[:\s]*(.+)?`), types.DebtTest, types.SeverityMedium},
	{regexp.MustCompile(`(?i)\bUNTESTED\b[:\s]*(.+)?`), types.DebtTest, types.SeverityMedium},
	{regexp.MustCompile(`(?i)\bTEST\s*(THIS|ME)?\b[:\s]*(.+)?`), types.DebtTest, types.SeverityLow},

	{regexp.MustCompile(`(?i)\bTODO\b[:\s]*(.+)?`), types.DebtRequirement, types.SeverityLow},
	{regexp.MustCompile(`(?i)\bNOTE\b[:\s]*(.+)?`), types.DebtDocumentation, types.SeverityLow},
	{regexp.MustCompile(`(?i)\bNB\b[:\s]*(.+)?`), types.DebtDocumentation, types.SeverityLow},
	{regexp.MustCompile(`(?i)\bIDEA\b[:\s]*(.+)?`), types.DebtDocumentation, types.SeverityLow},
	{regexp.MustCompile(`(?i)\bIMPROVE\b[:\s]*(.+)?`), types.DebtDocumentation, types.SeverityLow},
}

// commentStyle picks the line/block comment markers a language uses; the
// SATD scan only looks at comment text.
type commentStyle struct {
	line  []string
	block [2]string
}

// bugCueWords catches a TODO that is really describing a live defect
// (a race, a crash, a deadlock, something to "fix") rather than a plain
// unscheduled requirement — "TODO: fix race" reads the same as a FIXME,
// so it gets FIXME's category and severity instead of TODO's default.
var bugCueWords = regexp.MustCompile(`(?i)\b(fix|race|crash|deadlock|corrupt\w*)\b`)

func styleFor(lang types.Language) commentStyle {
	switch lang {
	case types.LangPython:
		return commentStyle{line: []string{"#"}, block: [2]string{`"""`, `"""`}}
	default:
		return commentStyle{line: []string{"//"}, block: [2]string{"/*", "*/"}}
	}
}

// Scan finds every SATD marker in content's comment lines and returns
// them unranked; callers aggregate with Summarize.
func Scan(path string, lang types.Language, content []byte) []types.SatdItem {
	style := styleFor(lang)
	isTest := isTestFile(path)
	isSecurity := isSecurityContext(path)

	var items []types.SatdItem
	scanner := bufio.NewScanner(bytes.NewReader(content))
	var lineNum uint32
	var allLines []string
	// buffer every line up front so the context hash can look at the 3
	// surrounding lines regardless of scan position.
	for scanner.Scan() {
		allLines = append(allLines, scanner.Text())
	}

	inBlock := false
	for idx, line := range allLines {
		lineNum = uint32(idx + 1)
		trimmed := strings.TrimSpace(line)

		isComment, blockNowOpen := classifyCommentLine(trimmed, style, inBlock)
		inBlock = blockNowOpen
		if !isComment {
			continue
		}
		if shouldSkip(line) {
			continue
		}

		for _, pat := range patterns {
			matches := pat.regex.FindStringSubmatch(line)
			if matches == nil {
				continue
			}
			description := strings.TrimSpace(line)
			if len(matches) > 1 && matches[1] != "" {
				description = strings.TrimSpace(matches[1])
			}
			col := uint32(strings.Index(line, matches[0]) + 1)

			category, baseSeverity := pat.category, pat.severity
			if category == types.DebtRequirement && bugCueWords.MatchString(description) {
				category, baseSeverity = types.DebtDefect, types.SeverityHigh
			}

			severity := adjustSeverity(baseSeverity, isTest, isSecurity, line)
			items = append(items, types.SatdItem{
				File:        path,
				Line:        lineNum,
				Column:      col,
				RawText:     description,
				Category:    category,
				Severity:    severity,
				ContextHash: contextHash(path, idx, allLines),
			})
			break
		}
	}
	return items
}

// classifyCommentLine reports whether trimmed is (part of) a comment, and
// whether a block comment remains open after this line.
func classifyCommentLine(trimmed string, style commentStyle, inBlock bool) (isComment bool, blockOpen bool) {
	if inBlock {
		if strings.Contains(trimmed, style.block[1]) {
			return true, false
		}
		return true, true
	}
	for _, lc := range style.line {
		if strings.HasPrefix(trimmed, lc) {
			return true, false
		}
	}
	if style.block[0] != "" && strings.Contains(trimmed, style.block[0]) {
		closed := strings.Contains(trimmed, style.block[1])
		return true, !closed
	}
	return false, false
}

// shouldSkip applies the false-positive filters: markdown headers, bug
// tracking IDs, fixed-bug descriptions, and the project's ignore
// directive (a project-neutral "satd:ignore", unlike the upstream
// "omen:ignore" this logic is grounded on).
func shouldSkip(line string) bool {
	trimmed := strings.TrimSpace(line)
	return isMarkdownHeader(trimmed) || isBugTrackingID(trimmed) || isFixedBugDescription(trimmed) || hasIgnoreDirective(line)
}

func hasIgnoreDirective(line string) bool {
	return strings.Contains(strings.ToLower(line), "satd:ignore")
}

func isMarkdownHeader(trimmed string) bool {
	if !strings.HasPrefix(trimmed, "#") {
		return false
	}
	content := strings.TrimSpace(strings.TrimLeft(trimmed, "#"))
	headers := []string{"Security", "Added", "Changed", "Deprecated", "Removed", "Fixed", "Unreleased", "Changelog", "CHANGELOG"}
	for _, h := range headers {
		if content == h {
			return true
		}
	}
	return strings.HasPrefix(content, "[")
}

func isBugTrackingID(line string) bool {
	lower := strings.ToLower(line)
	if idx := strings.Index(lower, "bug-"); idx >= 0 && idx+4 < len(line) {
		digits := 0
		for _, c := range line[idx+4:] {
			if c >= '0' && c <= '9' {
				digits++
			} else {
				break
			}
		}
		if digits >= 1 {
			return true
		}
	}
	return strings.Contains(lower, "-bug-")
}

func isFixedBugDescription(line string) bool {
	lower := strings.ToLower(line)
	if strings.HasPrefix(lower, "bug:") && strings.Contains(lower, "previous") {
		return true
	}
	return strings.Contains(lower, " fix:")
}

func isTestFile(path string) bool {
	return strings.HasSuffix(path, "_test.go") || strings.Contains(path, "_test.py") ||
		strings.Contains(path, ".test.") || strings.Contains(path, ".spec.") ||
		strings.Contains(path, "__tests__/") || strings.HasSuffix(path, "_test.rs")
}

func isSecurityContext(path string) bool {
	lower := strings.ToLower(path)
	for _, term := range []string{"auth", "security", "crypto", "password", "credential", "token", "session", "permission", "access"} {
		if strings.Contains(lower, term) {
			return true
		}
	}
	return false
}

// adjustSeverity escalates security-context markers and reduces
// test-file markers by one step each.
func adjustSeverity(base types.Severity, isTest, isSecurity bool, line string) types.Severity {
	lower := strings.ToLower(line)
	for _, term := range []string{"security", "vuln", "auth", "password", "inject", "xss", "csrf", "sql"} {
		if strings.Contains(lower, term) {
			isSecurity = true
			break
		}
	}
	switch {
	case isSecurity:
		return escalate(base)
	case isTest:
		return reduce(base)
	default:
		return base
	}
}

func escalate(s types.Severity) types.Severity {
	switch s {
	case types.SeverityLow:
		return types.SeverityMedium
	case types.SeverityMedium:
		return types.SeverityHigh
	case types.SeverityHigh:
		return types.SeverityCritical
	default:
		return s
	}
}

func reduce(s types.Severity) types.Severity {
	switch s {
	case types.SeverityCritical:
		return types.SeverityHigh
	case types.SeverityHigh:
		return types.SeverityMedium
	case types.SeverityMedium:
		return types.SeverityLow
	default:
		return s
	}
}

// contextHash hashes (file, 3 surrounding NFC-normalised lines) per §3's
// stable-identity requirement for this field. SHA-256 keeps the two
// "stable identity hash" call sites (this and DagNode.id) on the same
// algorithm.
func contextHash(path string, lineIdx int, lines []string) string {
	start := lineIdx - 1
	if start < 0 {
		start = 0
	}
	end := lineIdx + 2
	if end > len(lines) {
		end = len(lines)
	}

	h := sha256.New()
	h.Write([]byte(path))
	for _, l := range lines[start:end] {
		h.Write([]byte{0})
		h.Write([]byte(norm.NFC.String(l)))
	}
	return hex.EncodeToString(h.Sum(nil)[:16])
}

// Summarize ranks items by severity (descending) then file, and builds
// the category/severity counts §4.6's ranked summary requires.
func Summarize(items []types.SatdItem) types.SatdSummary {
	sorted := append([]types.SatdItem(nil), items...)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Severity.Weight() != sorted[j].Severity.Weight() {
			return sorted[i].Severity.Weight() > sorted[j].Severity.Weight()
		}
		if sorted[i].File != sorted[j].File {
			return sorted[i].File < sorted[j].File
		}
		return sorted[i].Line < sorted[j].Line
	})

	byCategory := make(map[types.DebtCategory]int)
	bySeverity := make(map[types.Severity]int)
	files := make(map[string]bool)
	for _, it := range sorted {
		byCategory[it.Category]++
		bySeverity[it.Severity]++
		files[it.File] = true
	}

	return types.SatdSummary{
		Items:         sorted,
		ByCategory:    byCategory,
		BySeverity:    bySeverity,
		FilesWithDebt: len(files),
	}
}

// AnalyzeProject scans every file in pc and returns the ranked summary,
// filtered to items at or above minSeverity.
func AnalyzeProject(pc *types.ProjectContext, sources map[string][]byte, minSeverity types.Severity) types.SatdSummary {
	var all []types.SatdItem
	for _, fc := range pc.Files {
		content, ok := sources[fc.Path]
		if !ok {
			continue
		}
		for _, item := range Scan(fc.Path, fc.Language, content) {
			if item.Severity.Weight() >= minSeverity.Weight() {
				all = append(all, item)
			}
		}
	}
	return Summarize(all)
}

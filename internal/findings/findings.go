// Package findings parses the review tool's free-form textual report into
// structured findings.
//
// The report format is human-oriented and produced by a process we do not
// control, so extraction runs in two tiers: a strict block-oriented
// key/value parser first, then a heuristic regex fallback used only when
// the first pass recognizes nothing. Records without corroborating signal
// are discarded rather than guessed at. A report is clean exactly when zero
// findings survive both passes; the hopeful "no issues" phrasing some
// reports end with is too fragile to trust on its own.
package findings

import (
	"path/filepath"
	"regexp"
	"strings"
)

// maxFileLen bounds how long a value can be and still count as a file path.
const maxFileLen = 240

// Finding is a single reported issue: a file reference, an optional line
// locator kept as free text ("42", "10-20", "10 to 20"), and an optional
// category label.
type Finding struct {
	File string `json:"file"`
	Line string `json:"line,omitempty"`
	Type string `json:"type,omitempty"`
}

// Report is the structured result of parsing one review output.
type Report struct {
	Findings []Finding
	Clean    bool
}

var (
	ansiPattern = regexp.MustCompile(`\x1b\[[0-9;?]*[A-Za-z]`)
	kvPattern   = regexp.MustCompile(`^\s*([A-Za-z][A-Za-z _-]*?)\s*:\s*(.*)$`)

	// Fallback extraction: an @path token and a line-range phrase on the
	// same line, e.g. "@src/app.py lines 10 to 20" or "@cmd/run.go lines 4-7".
	// The path must still pass isPathLike, so bare filenames are discarded.
	atPathPattern    = regexp.MustCompile(`@([^\s@]+)`)
	lineRangePattern = regexp.MustCompile(`(?i)\blines?\s+(\d+)(?:\s*(?:to|-)\s*(\d+))?`)

	noFindingsPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)no\s+(issues|findings|problems|concerns)(\s+found)?`),
		regexp.MustCompile(`(?i)nothing\s+to\s+report`),
	}
)

// record accumulates the currently open key/value block during the primary
// pass. Prompt bodies are multi-line and never needed for the summary, so
// prompt keys collapse into a marker.
type record struct {
	file   string
	line   string
	typ    string
	prompt bool
}

// Parse extracts findings from the raw combined output of a review
// invocation. repoRoot, when non-empty, is used to rewrite absolute paths
// under the repository root as repository-relative.
func Parse(output, repoRoot string) Report {
	text := normalize(output)

	result := parseBlocks(text, repoRoot)
	if len(result) == 0 {
		result = parseFallback(text, repoRoot)
	}
	return Report{Findings: result, Clean: len(result) == 0}
}

// LooksClean reports whether the output textually claims a clean result.
// Redundant with the structural check in Parse and never authoritative on
// its own: it can confirm a clean report but cannot override findings.
func LooksClean(output string) bool {
	stripped := strings.TrimSpace(normalize(output))
	if stripped == "" {
		return true
	}
	for _, p := range noFindingsPatterns {
		if p.MatchString(stripped) {
			return true
		}
	}
	return false
}

func normalize(s string) string {
	s = ansiPattern.ReplaceAllString(s, "")
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\r", "\n")
}

// parseBlocks is the primary pass: block-oriented key/value parsing where a
// new file key flushes the open record.
func parseBlocks(text, repoRoot string) []Finding {
	var out []Finding
	var cur *record

	flush := func() {
		if f, ok := finalize(cur, repoRoot); ok {
			out = append(out, f)
		}
		cur = nil
	}

	for _, line := range strings.Split(text, "\n") {
		m := kvPattern.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		value := strings.TrimSpace(m[2])
		switch canonicalKey(m[1]) {
		case "file":
			flush()
			cur = &record{file: value}
		case "line":
			if cur != nil && cur.line == "" {
				cur.line = value
			}
		case "type":
			if cur != nil && cur.typ == "" {
				cur.typ = value
			}
		case "prompt":
			if cur != nil {
				cur.prompt = true
			}
		}
	}
	flush()
	return out
}

// canonicalKey maps a raw key to one of file, line, type, or prompt.
// Unrecognized keys map to "".
func canonicalKey(key string) string {
	switch strings.ToLower(strings.TrimSpace(key)) {
	case "file", "filename", "file path":
		return "file"
	case "line", "lines", "line number":
		return "line"
	case "type", "category", "issue type":
		return "type"
	case "prompt", "ai prompt", "prompt for ai", "prompt for ai agent", "prompt for ai agents":
		return "prompt"
	}
	return ""
}

// finalize turns an open record into a Finding. A record materializes only
// when its file value is path-like and it carries at least one of
// line/type/prompt; incidental "File: ..." mentions in prose carry no
// corroborating signal and are dropped.
func finalize(r *record, repoRoot string) (Finding, bool) {
	if r == nil {
		return Finding{}, false
	}
	if !isPathLike(r.file) {
		return Finding{}, false
	}
	if r.line == "" && r.typ == "" && !r.prompt {
		return Finding{}, false
	}
	return Finding{
		File: relativize(r.file, repoRoot),
		Line: r.line,
		Type: r.typ,
	}, true
}

// parseFallback recovers reports that deviate from the canonical block
// format: any line carrying both an @path token and a line-range phrase
// yields one finding.
func parseFallback(text, repoRoot string) []Finding {
	var out []Finding
	for _, line := range strings.Split(text, "\n") {
		m := atPathPattern.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		lr := lineRangePattern.FindStringSubmatch(line)
		if lr == nil {
			continue
		}
		path := strings.TrimRight(m[1], ".,:;)]\"'")
		if !isPathLike(path) {
			continue
		}
		locator := lr[1]
		if lr[2] != "" {
			locator = lr[1] + "-" + lr[2]
		}
		out = append(out, Finding{File: relativize(path, repoRoot), Line: locator})
	}
	return out
}

// isPathLike reports whether value plausibly references a file: it must
// contain a path separator, must not be a bare URL, and must be of bounded
// length.
func isPathLike(value string) bool {
	if value == "" || len(value) > maxFileLen {
		return false
	}
	if strings.Contains(value, "://") {
		return false
	}
	return strings.ContainsRune(value, '/')
}

// relativize rewrites an absolute path under the repository root as
// root-relative. Other paths are reported as-is.
func relativize(path, repoRoot string) string {
	if repoRoot == "" || !filepath.IsAbs(path) {
		return path
	}
	rel, err := filepath.Rel(repoRoot, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return path
	}
	return rel
}

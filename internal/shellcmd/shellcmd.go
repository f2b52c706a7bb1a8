// Package shellcmd classifies shell command lines without a real shell parser.
//
// The push classifier tokenizes with quote awareness and scans each command
// segment for a git invocation followed by a push subcommand. When
// tokenization fails on malformed quoting, it falls back to a permissive
// regex match: an extra review is cheap, a missed push review is not.
package shellcmd

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/google/shlex"
)

// pushPattern is the permissive fallback: a git token with push reachable
// before any segment separator.
var pushPattern = regexp.MustCompile(`(^|\s)git(\s+[^;&|]+)*\s+push(\s|$)`)

// assignPattern matches a leading VAR=value environment assignment token.
var assignPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*=`)

// separatorPattern splits compound command tokens on shell control operators.
var separatorPattern = regexp.MustCompile(`(\|\||&&|;|\||&)`)

// IsPush reports whether the command line would execute a git push.
// It tolerates compound commands, leading VAR=value assignments, and
// subshell wrappers like (cd dir && git push).
func IsPush(command string) bool {
	if strings.TrimSpace(command) == "" {
		return false
	}
	tokens, err := shlex.Split(command)
	if err != nil {
		return pushPattern.MatchString(command)
	}

	inGit := false
	atSegmentStart := true
	for _, tok := range splitSeparators(tokens) {
		switch {
		case isSeparator(tok):
			inGit = false
			atSegmentStart = true
		case inGit:
			if tok == "push" {
				return true
			}
		case atSegmentStart && assignPattern.MatchString(tok):
			// VAR=value prefix keeps the segment-start state
		case atSegmentStart && tok == "git":
			inGit = true
			atSegmentStart = false
		default:
			atSegmentStart = false
		}
	}
	return false
}

// WorkDir returns the effective working directory for a command: an explicit
// git -C <dir> flag wins, then a leading cd <dir> wrapper, then the fallback.
func WorkDir(command, fallback string) string {
	tokens, err := shlex.Split(command)
	if err != nil {
		return fallback
	}
	tokens = splitSeparators(tokens)

	for i, tok := range tokens {
		if tok == "-C" && i+1 < len(tokens) {
			return expandHome(tokens[i+1])
		}
		if strings.HasPrefix(tok, "-C") && len(tok) > 2 {
			return expandHome(tok[2:])
		}
	}

	// cd <dir> && ... or (cd <dir>; ...) wrapper
	if len(tokens) >= 3 && tokens[0] == "cd" && isSeparator(tokens[2]) {
		return expandHome(tokens[1])
	}

	return fallback
}

// splitSeparators re-splits tokens so control operators become their own
// tokens even when written without surrounding whitespace. Quoting was
// already consumed by shlex, so a rare quoted separator produces a false
// split; the classifier's false-positive bias makes that acceptable.
func splitSeparators(tokens []string) []string {
	var out []string
	for _, tok := range tokens {
		tok = strings.TrimPrefix(tok, "(")
		tok = strings.TrimSuffix(tok, ")")
		if tok == "" {
			continue
		}
		if !strings.ContainsAny(tok, ";&|") {
			out = append(out, tok)
			continue
		}
		last := 0
		for _, loc := range separatorPattern.FindAllStringIndex(tok, -1) {
			if loc[0] > last {
				out = append(out, tok[last:loc[0]])
			}
			out = append(out, tok[loc[0]:loc[1]])
			last = loc[1]
		}
		if last < len(tok) {
			out = append(out, tok[last:])
		}
	}
	return out
}

func isSeparator(tok string) bool {
	switch tok {
	case "&&", "||", ";", "|", "&":
		return true
	}
	return false
}

func expandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err == nil {
			return filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}
	return path
}

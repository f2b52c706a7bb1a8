// Package policy maps tool names to allow/ask/deny decisions using glob
// patterns from configuration.
//
// Patterns come in two shapes. A plain pattern globs against the full tool
// name. A server:tool pattern matches MCP-style tool names of the form
// mcp__server__tool (split on runs of two or more underscores, optional
// leading mcp segment); either side may be omitted to mean any. Matching is
// case-insensitive because the TOML loader lowercases table keys.
package policy

import (
	"regexp"
	"strings"

	"github.com/gobwas/glob"

	"github.com/droidhooks/droidguard/internal/config"
)

// Decision precedence when several lists match: deny wins over ask, ask
// over allow.
var precedence = []string{"deny", "ask", "allow"}

var mcpSplitPattern = regexp.MustCompile(`_{2,}`)

// Decision is the outcome of evaluating a tool name against the policy.
type Decision struct {
	Action string // allow | ask | deny
	Reason string
}

// Engine evaluates tool names against a compiled policy.
type Engine struct {
	lists     map[string][]string
	messages  map[string]string
	overrides []override
}

type override struct {
	pattern  string
	decision string
	message  string
}

// New builds an Engine from the policy configuration.
func New(cfg config.Policy) *Engine {
	e := &Engine{
		lists: map[string][]string{
			"allow": cfg.Allow,
			"ask":   cfg.Ask,
			"deny":  cfg.Deny,
		},
		messages: map[string]string{
			"allow": cfg.Messages.Allow,
			"ask":   cfg.Messages.Ask,
			"deny":  cfg.Messages.Deny,
		},
	}
	for pattern, ov := range cfg.Overrides {
		decision := ov.Decision
		if decision != "allow" && decision != "ask" && decision != "deny" {
			decision = ""
		}
		e.overrides = append(e.overrides, override{
			pattern:  pattern,
			decision: decision,
			message:  ov.Message,
		})
	}
	return e
}

// Decide evaluates a tool name. The second return value is false when no
// rule matches and the hook should defer to the host's default handling.
func (e *Engine) Decide(toolName string) (Decision, bool) {
	var ov *override
	for i := range e.overrides {
		if MatchTool(toolName, e.overrides[i].pattern) {
			ov = &e.overrides[i]
			break
		}
	}

	base := ""
	for _, action := range precedence {
		if matchAny(toolName, e.lists[action]) {
			base = action
			break
		}
	}

	action := base
	if ov != nil && ov.decision != "" {
		action = ov.decision
	}
	if action == "" {
		return Decision{}, false
	}

	message := e.messages[action]
	if ov != nil && ov.message != "" {
		message = ov.message
	}
	return Decision{
		Action: action,
		Reason: strings.ReplaceAll(message, "{tool_name}", toolName),
	}, true
}

func matchAny(toolName string, patterns []string) bool {
	for _, p := range patterns {
		if MatchTool(toolName, p) {
			return true
		}
	}
	return false
}

// MatchTool reports whether a tool name matches a policy pattern.
func MatchTool(toolName, pattern string) bool {
	p := strings.ToLower(strings.TrimSpace(pattern))
	name := strings.ToLower(strings.TrimSpace(toolName))
	if p == "" {
		return false
	}

	if !strings.Contains(p, ":") {
		return globMatch(name, p)
	}

	serverPattern, toolPattern, _ := strings.Cut(p, ":")
	if serverPattern == "" {
		serverPattern = "*"
	}
	if toolPattern == "" {
		toolPattern = "*"
	}

	parts := mcpSplitPattern.Split(name, 3)
	if len(parts) > 0 && parts[0] == "mcp" {
		parts = parts[1:]
	}
	if len(parts) < 2 {
		return false
	}
	for _, part := range parts {
		if part == "" {
			return false
		}
	}
	server, tool := parts[0], parts[len(parts)-1]

	// Server naming is loose across hosts, so accept wildcard, glob, or
	// substring matches on the server side.
	if serverPattern != "*" && !globMatch(server, serverPattern) && !strings.Contains(server, serverPattern) {
		return false
	}
	return globMatch(tool, toolPattern)
}

func globMatch(s, pattern string) bool {
	g, err := glob.Compile(pattern)
	if err != nil {
		return false
	}
	return g.Match(s)
}

package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/droidhooks/droidguard/internal/config"
)

func TestMatchTool(t *testing.T) {
	tests := []struct {
		name    string
		tool    string
		pattern string
		want    bool
	}{
		{"exact", "Bash", "Bash", true},
		{"case insensitive", "Bash", "bash", true},
		{"glob suffix", "WebSearch", "Web*", true},
		{"glob miss", "Read", "Web*", false},
		{"empty pattern", "Bash", "", false},
		{"wildcard", "anything", "*", true},

		{"mcp full", "mcp__github__create_issue", "github:create_issue", true},
		{"mcp tool glob", "mcp__github__create_issue", "github:create_*", true},
		{"mcp any tool", "mcp__github__create_issue", "github:", true},
		{"mcp any server", "mcp__github__create_issue", ":create_issue", true},
		{"mcp server substring", "mcp__github-enterprise__create_issue", "github:create_issue", true},
		{"mcp wrong server", "mcp__linear__create_issue", "github:create_issue", false},
		{"mcp wrong tool", "mcp__github__list_issues", "github:create_issue", false},
		{"no mcp prefix", "github__create_issue", "github:create_issue", true},
		{"plain name against mcp pattern", "Bash", "github:create_issue", false},
		{"empty segment", "mcp____create_issue", "github:create_issue", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MatchTool(tt.tool, tt.pattern))
		})
	}
}

func TestDecide_Precedence(t *testing.T) {
	e := New(config.Policy{
		Allow: []string{"*"},
		Ask:   []string{"Web*"},
		Deny:  []string{"WebFetch"},
	})

	tests := []struct {
		tool string
		want string
	}{
		{"Read", "allow"},
		{"WebSearch", "ask"},
		{"WebFetch", "deny"},
	}
	for _, tt := range tests {
		d, matched := e.Decide(tt.tool)
		require.True(t, matched, tt.tool)
		assert.Equal(t, tt.want, d.Action, tt.tool)
	}
}

func TestDecide_NoMatchDefers(t *testing.T) {
	e := New(config.Policy{Deny: []string{"WebFetch"}})
	_, matched := e.Decide("Read")
	assert.False(t, matched)
}

func TestDecide_MessageTemplating(t *testing.T) {
	e := New(config.Policy{
		Deny: []string{"WebFetch"},
		Messages: config.PolicyMessages{
			Deny: "Tool {tool_name} is blocked by policy.",
		},
	})

	d, matched := e.Decide("WebFetch")
	require.True(t, matched)
	assert.Equal(t, "Tool WebFetch is blocked by policy.", d.Reason)
}

func TestDecide_Overrides(t *testing.T) {
	e := New(config.Policy{
		Deny: []string{"github:*"},
		Messages: config.PolicyMessages{
			Deny: "blocked: {tool_name}",
		},
		Overrides: map[string]config.PolicyOverride{
			"github:get_*": {Decision: "allow"},
			"github:create_issue": {
				Decision: "ask",
				Message:  "Creating issues needs confirmation.",
			},
		},
	})

	t.Run("override flips decision", func(t *testing.T) {
		d, matched := e.Decide("mcp__github__get_pull_request")
		require.True(t, matched)
		assert.Equal(t, "allow", d.Action)
	})

	t.Run("override message wins", func(t *testing.T) {
		d, matched := e.Decide("mcp__github__create_issue")
		require.True(t, matched)
		assert.Equal(t, "ask", d.Action)
		assert.Equal(t, "Creating issues needs confirmation.", d.Reason)
	})

	t.Run("unmatched tools keep base decision", func(t *testing.T) {
		d, matched := e.Decide("mcp__github__delete_repo")
		require.True(t, matched)
		assert.Equal(t, "deny", d.Action)
		assert.Equal(t, "blocked: mcp__github__delete_repo", d.Reason)
	})

	t.Run("invalid override decision keeps base", func(t *testing.T) {
		e := New(config.Policy{
			Deny: []string{"WebFetch"},
			Overrides: map[string]config.PolicyOverride{
				"WebFetch": {Decision: "maybe"},
			},
		})
		d, matched := e.Decide("WebFetch")
		require.True(t, matched)
		assert.Equal(t, "deny", d.Action)
	})
}

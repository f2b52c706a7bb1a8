package guard

import (
	"context"
	"strings"
	"testing"

	"github.com/droidhooks/droidguard/internal/config"
	"github.com/droidhooks/droidguard/internal/gitctx"
	"github.com/droidhooks/droidguard/internal/hookio"
	"github.com/droidhooks/droidguard/internal/logger"
	"github.com/droidhooks/droidguard/internal/reviewer"
)

func testConfig(t *testing.T) config.ReviewGuard {
	t.Helper()
	return config.ReviewGuard{
		Mode:            config.ModeCommitted,
		MaxChars:        6000,
		TimeoutSeconds:  30,
		FailurePolicy:   config.FailureDeny,
		CacheDir:        t.TempDir(),
		CacheTTLSeconds: 900,
	}
}

func testRepo() gitctx.RepoContext {
	return gitctx.RepoContext{
		Root:   "/repo",
		Branch: "feature",
		Head:   "aaaa111",
		Base:   "bbbb222",
	}
}

// newTestGuard builds a Guard whose reviewer produces the given output and
// exit status, counting invocations in *calls.
func newTestGuard(t *testing.T, cfg config.ReviewGuard, inv reviewer.Invocation, calls *int) *Guard {
	t.Helper()
	g, err := New(cfg, logger.New("error", nil))
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	g.resolve = func(string) (gitctx.RepoContext, bool) { return testRepo(), true }
	g.lookup = func() (string, bool) { return "/usr/bin/coderabbit", true }
	g.run = func(context.Context, reviewer.Options) reviewer.Invocation {
		if calls != nil {
			*calls++
		}
		return inv
	}
	return g
}

func pushEvent(command string) *hookio.Event {
	return &hookio.Event{
		HookEventName: hookio.EventPreToolUse,
		ToolName:      "Bash",
		ToolInput:     map[string]any{"command": command},
		CWD:           "/repo",
	}
}

func TestEvaluate_NotAPush(t *testing.T) {
	g := newTestGuard(t, testConfig(t), reviewer.Invocation{}, nil)
	g.resolve = func(string) (gitctx.RepoContext, bool) {
		t.Fatal("resolver must not run for a non-push command")
		return gitctx.RepoContext{}, false
	}

	d := g.Evaluate(context.Background(), pushEvent("echo push && ls"))
	if d.Deny || d.Warning != "" {
		t.Errorf("decision = %+v, want silent proceed", d)
	}
}

func TestEvaluate_NoRepo(t *testing.T) {
	g := newTestGuard(t, testConfig(t), reviewer.Invocation{}, nil)
	g.resolve = func(string) (gitctx.RepoContext, bool) { return gitctx.RepoContext{}, false }

	d := g.Evaluate(context.Background(), pushEvent("git push"))
	if d.Deny || d.Warning != "" {
		t.Errorf("decision = %+v, want silent proceed outside a repo", d)
	}
}

func TestEvaluate_ToolMissing(t *testing.T) {
	g := newTestGuard(t, testConfig(t), reviewer.Invocation{}, nil)
	g.lookup = func() (string, bool) { return "", false }

	d := g.Evaluate(context.Background(), pushEvent("git push"))
	if d.Deny {
		t.Error("missing tool must not deny")
	}
	if !strings.Contains(d.Warning, "not found") {
		t.Errorf("Warning = %q, want a skip notice", d.Warning)
	}
}

func TestEvaluate_FindingsDeny(t *testing.T) {
	inv := reviewer.Invocation{Output: "File: src/app.py\nLine: 42\nType: bug\n"}
	g := newTestGuard(t, testConfig(t), inv, nil)

	d := g.Evaluate(context.Background(), pushEvent("git push"))
	if !d.Deny {
		t.Fatal("findings must deny the push")
	}
	for _, want := range []string{"/repo", "feature", "Findings: 1", "src/app.py"} {
		if !strings.Contains(d.Reason, want) {
			t.Errorf("Reason missing %q:\n%s", want, d.Reason)
		}
	}
}

func TestEvaluate_ExcerptScrubsSecrets(t *testing.T) {
	inv := reviewer.Invocation{
		Output: "File: config/settings.py\nLine: 12\nType: security\n" +
			"Hardcoded credential: api_key = \"sk-1234567890abcdefghijklmn\"\n",
	}
	g := newTestGuard(t, testConfig(t), inv, nil)

	d := g.Evaluate(context.Background(), pushEvent("git push"))
	if !d.Deny {
		t.Fatal("findings must deny the push")
	}
	if strings.Contains(d.Reason, "sk-1234567890abcdefghijklmn") {
		t.Errorf("secret leaked into the deny reason:\n%s", d.Reason)
	}
	if !strings.Contains(d.Reason, "config/settings.py") {
		t.Errorf("excerpt lost the finding context:\n%s", d.Reason)
	}
}

func TestEvaluate_CleanStoresVerdict(t *testing.T) {
	var calls int
	g := newTestGuard(t, testConfig(t), reviewer.Invocation{Output: "No issues found.\n"}, &calls)

	if d := g.Evaluate(context.Background(), pushEvent("git push")); d.Deny {
		t.Fatalf("clean run denied: %+v", d)
	}
	if calls != 1 {
		t.Fatalf("reviewer ran %d times, want 1", calls)
	}

	// Identical revision range within the TTL: cache hit, no re-invocation.
	if d := g.Evaluate(context.Background(), pushEvent("git push")); d.Deny {
		t.Fatalf("cached clean verdict denied: %+v", d)
	}
	if calls != 1 {
		t.Errorf("reviewer ran %d times, want 1 (second push should hit the cache)", calls)
	}
}

func TestEvaluate_HeadChangeMissesCache(t *testing.T) {
	var calls int
	cfg := testConfig(t)
	g := newTestGuard(t, cfg, reviewer.Invocation{Output: "No issues found.\n"}, &calls)

	g.Evaluate(context.Background(), pushEvent("git push"))

	repo := testRepo()
	repo.Head = "cccc333"
	g.resolve = func(string) (gitctx.RepoContext, bool) { return repo, true }

	g.Evaluate(context.Background(), pushEvent("git push"))
	if calls != 2 {
		t.Errorf("reviewer ran %d times, want 2 (new head must re-review)", calls)
	}
}

func TestEvaluate_FindingsNeverCached(t *testing.T) {
	var calls int
	inv := reviewer.Invocation{Output: "File: src/app.py\nLine: 42\n"}
	g := newTestGuard(t, testConfig(t), inv, &calls)

	g.Evaluate(context.Background(), pushEvent("git push"))
	g.Evaluate(context.Background(), pushEvent("git push"))
	if calls != 2 {
		t.Errorf("reviewer ran %d times, want 2 (findings verdicts are never cached)", calls)
	}
}

func TestEvaluate_InvocationFailure(t *testing.T) {
	tests := []struct {
		name     string
		policy   string
		inv      reviewer.Invocation
		wantDeny bool
		wantIn   string
	}{
		{
			name:     "nonzero exit denies by default",
			policy:   config.FailureDeny,
			inv:      reviewer.Invocation{ExitCode: 2, Output: "auth expired"},
			wantDeny: true,
			wantIn:   "exit status 2",
		},
		{
			name:     "timeout denies by default",
			policy:   config.FailureDeny,
			inv:      reviewer.Invocation{ExitCode: -1, TimedOut: true, Output: "partial report"},
			wantDeny: true,
			wantIn:   "timed out",
		},
		{
			name:     "allow policy downgrades to warning",
			policy:   config.FailureAllow,
			inv:      reviewer.Invocation{ExitCode: 2, Output: "auth expired"},
			wantDeny: false,
			wantIn:   "exit status 2",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig(t)
			cfg.FailurePolicy = tt.policy
			g := newTestGuard(t, cfg, tt.inv, nil)

			d := g.Evaluate(context.Background(), pushEvent("git push"))
			if d.Deny != tt.wantDeny {
				t.Fatalf("Deny = %v, want %v", d.Deny, tt.wantDeny)
			}
			text := d.Reason
			if !tt.wantDeny {
				text = d.Warning
			}
			if !strings.Contains(text, tt.wantIn) {
				t.Errorf("diagnostic missing %q:\n%s", tt.wantIn, text)
			}
			if !strings.Contains(text, tt.inv.Output) {
				t.Errorf("diagnostic should carry the captured output")
			}
		})
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		text  string
		limit int
		want  string
	}{
		{"short", 100, "short"},
		{"anything", 0, ""},
		{"anything", -5, ""},
		{strings.Repeat("x", 50), 30, strings.Repeat("x", 15) + "... [truncated]"},
		// Marker does not fit: cap still holds, marker omitted.
		{strings.Repeat("y", 50), 10, strings.Repeat("y", 10)},
	}
	for _, tt := range tests {
		got := Truncate(tt.text, tt.limit)
		if got != tt.want {
			t.Errorf("Truncate(len %d, %d) = %q, want %q", len(tt.text), tt.limit, got, tt.want)
		}
		if tt.limit >= 0 && len(got) > tt.limit {
			t.Errorf("Truncate(len %d, %d) overflowed the limit: %q", len(tt.text), tt.limit, got)
		}
	}
}

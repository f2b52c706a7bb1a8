// Package guard implements the pre-push review-gating pipeline: classify
// the command, resolve the repository context, consult the verdict cache,
// run the external review tool, extract findings, and decide.
package guard

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/droidhooks/droidguard/internal/config"
	"github.com/droidhooks/droidguard/internal/findings"
	"github.com/droidhooks/droidguard/internal/gitctx"
	"github.com/droidhooks/droidguard/internal/hookio"
	"github.com/droidhooks/droidguard/internal/redact"
	"github.com/droidhooks/droidguard/internal/reviewer"
	"github.com/droidhooks/droidguard/internal/shellcmd"
	"github.com/droidhooks/droidguard/internal/verdict"
)

const truncationMarker = "... [truncated]"

// Decision is the pipeline outcome. A zero Decision means proceed with no
// output; Warning carries a diagnostic to surface without blocking.
type Decision struct {
	Deny    bool
	Reason  string
	Warning string
}

// Guard runs the review-gating pipeline. The lookup, run, and resolve
// seams default to the real implementations and exist for tests.
type Guard struct {
	cfg   config.ReviewGuard
	cache *verdict.Cache
	log   *slog.Logger

	lookup  func() (string, bool)
	run     func(context.Context, reviewer.Options) reviewer.Invocation
	resolve func(string) (gitctx.RepoContext, bool)
}

// New creates a Guard. The verdict cache directory and TTL come from the
// configuration.
func New(cfg config.ReviewGuard, log *slog.Logger) (*Guard, error) {
	cache, err := verdict.New(cfg.CacheDir, cfg.CacheTTLSeconds)
	if err != nil {
		return nil, fmt.Errorf("opening verdict cache: %w", err)
	}
	return &Guard{
		cfg:     cfg,
		cache:   cache,
		log:     log,
		lookup:  reviewer.Lookup,
		run:     reviewer.Run,
		resolve: gitctx.Resolve,
	}, nil
}

// Evaluate runs the full pipeline for one PreToolUse event and returns a
// single decision. It never returns an error: every failure mode degrades
// to a proceed, a warning, or a structured deny.
func (g *Guard) Evaluate(ctx context.Context, ev *hookio.Event) Decision {
	command := ev.Command()
	if !shellcmd.IsPush(command) {
		return Decision{}
	}

	dir := shellcmd.WorkDir(command, ev.CWD)
	repo, ok := g.resolve(dir)
	if !ok {
		g.log.Debug("push outside a git repository, skipping review", "dir", dir)
		return Decision{}
	}

	if entry, ok := g.cache.Lookup(repo.Root, repo.Head, repo.Base, g.cfg.Mode); ok {
		g.log.Info("clean verdict cached, skipping review",
			"repo", repo.Root, "head", repo.Head, "age", time.Since(entry.CreatedAt).Round(time.Second))
		return Decision{}
	}

	bin, found := g.lookup()
	if !found {
		return Decision{Warning: "[review-guard] review CLI not found; skipping push review."}
	}

	inv := g.run(ctx, reviewer.Options{
		Binary:     bin,
		RepoRoot:   repo.Root,
		Mode:       g.cfg.Mode,
		BaseCommit: repo.Base,
		BaseBranch: repo.BaseBranch,
		Timeout:    time.Duration(g.cfg.TimeoutSeconds) * time.Second,
	})

	if inv.ExitCode != 0 {
		return g.invocationFailure(repo, inv)
	}

	report := findings.Parse(inv.Output, repo.Root)
	if report.Clean {
		entry := verdict.Entry{
			Head:    repo.Head,
			Base:    repo.Base,
			Mode:    g.cfg.Mode,
			Verdict: verdict.Clean,
		}
		if err := g.cache.Store(repo.Root, entry); err != nil {
			g.log.Warn("storing clean verdict failed", "error", err)
		}
		return Decision{}
	}

	return Decision{
		Deny: true,
		Reason: fmt.Sprintf(
			"[review-guard] Issues found before push.\nRepo: %s\nBranch: %s\nFindings: %d\n\nExcerpt:\n%s\n\nFix critical issues, then re-run push to recheck.",
			repo.Root, repo.Branch, len(report.Findings), excerpt(inv.Output, g.cfg.MaxChars)),
	}
}

func (g *Guard) invocationFailure(repo gitctx.RepoContext, inv reviewer.Invocation) Decision {
	cause := fmt.Sprintf("exit status %d", inv.ExitCode)
	if inv.TimedOut {
		cause = fmt.Sprintf("timed out after %ds", g.cfg.TimeoutSeconds)
	}
	diagnostic := fmt.Sprintf(
		"[review-guard] Review tool failed before push (%s).\nRepo: %s\nBranch: %s\n\nExcerpt:\n%s",
		cause, repo.Root, repo.Branch, excerpt(inv.Output, g.cfg.MaxChars))

	if g.cfg.FailurePolicy == config.FailureAllow {
		return Decision{Warning: diagnostic + "\n\nAllowing push per failure policy."}
	}
	return Decision{Deny: true, Reason: diagnostic}
}

// excerpt prepares review tool output for embedding in a decision: secrets
// scrubbed, then capped at the configured size. Review output quotes diff
// hunks, so credentials touched by the diff would otherwise leak into the
// transcript.
func excerpt(output string, limit int) string {
	return Truncate(redact.Secrets(output), limit)
}

// Truncate caps text at limit characters, appending a marker when content
// was dropped. The cap is strict: when the marker itself does not fit, it
// is omitted rather than overflowing the limit. A non-positive limit yields
// the empty string.
func Truncate(text string, limit int) string {
	if limit <= 0 {
		return ""
	}
	if len(text) <= limit {
		return text
	}
	cut := limit - len(truncationMarker)
	if cut < 0 {
		return text[:limit]
	}
	return text[:cut] + truncationMarker
}

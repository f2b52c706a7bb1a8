// Package gitctx resolves the repository context needed to scope a push
// review: repository root, current branch, head revision, and the base
// revision the push will be compared against.
//
// Every query shells out to git in the target directory. Only the root
// lookup is load-bearing; all other lookups are best-effort and yield empty
// results on failure.
package gitctx

import (
	"fmt"
	"os/exec"
	"strings"
)

// defaultBranchCandidates is probed in order when the remote has no
// symbolic HEAD configured locally.
var defaultBranchCandidates = []string{"main", "master", "develop"}

// RepoContext describes the repository a push operates on.
type RepoContext struct {
	// Root is the absolute repository top-level directory.
	Root string
	// Branch is the current branch name, or "detached".
	Branch string
	// Head is the current commit id, empty in a repo with no commits.
	Head string
	// Base is the revision the push is compared against: the upstream
	// tracking commit when one exists, else the resolved tip of the
	// remote default branch. Empty when neither can be determined.
	Base string
	// BaseBranch is the default branch name Base was resolved from, set
	// only when no upstream tracking revision exists.
	BaseBranch string
}

// Resolve builds the repository context for dir. The second return value is
// false when dir is not inside a git repository.
func Resolve(dir string) (RepoContext, bool) {
	root, err := gitOutput(dir, "rev-parse", "--show-toplevel")
	if err != nil || root == "" {
		return RepoContext{}, false
	}

	ctx := RepoContext{Root: root, Branch: "detached"}
	if branch, err := gitOutput(root, "rev-parse", "--abbrev-ref", "HEAD"); err == nil && branch != "" {
		ctx.Branch = branch
	}
	if head, err := gitOutput(root, "rev-parse", "HEAD"); err == nil {
		ctx.Head = head
	}

	if upstream, err := gitOutput(root, "rev-parse", "@{u}"); err == nil && upstream != "" {
		ctx.Base = upstream
		return ctx, true
	}

	branch := defaultBranch(root)
	if branch == "" {
		return ctx, true
	}
	ctx.BaseBranch = branch
	if rev, err := gitOutput(root, "rev-parse", "refs/remotes/origin/"+branch); err == nil {
		ctx.Base = rev
	}
	return ctx, true
}

// defaultBranch returns the remote's default branch name, preferring the
// symbolic origin/HEAD ref and falling back to probing common branch names.
func defaultBranch(root string) string {
	out, err := gitOutput(root, "symbolic-ref", "refs/remotes/origin/HEAD")
	if err == nil && strings.HasPrefix(out, "refs/remotes/origin/") {
		return strings.TrimPrefix(out, "refs/remotes/origin/")
	}
	for _, candidate := range defaultBranchCandidates {
		if _, err := gitOutput(root, "show-ref", "--verify", "refs/remotes/origin/"+candidate); err == nil {
			return candidate
		}
	}
	return ""
}

func gitOutput(dir string, args ...string) (string, error) {
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	out, err := cmd.Output()
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			return "", fmt.Errorf("git %s: %s: %s", strings.Join(args, " "), err, string(exitErr.Stderr))
		}
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}

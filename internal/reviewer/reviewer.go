// Package reviewer locates and runs the external review CLI as a bounded
// child process.
package reviewer

import (
	"context"
	"errors"
	"os/exec"
	"time"
)

// binaryCandidates are the executable names probed on PATH, in order.
var binaryCandidates = []string{"coderabbit", "cr"}

// timeoutExitCode is the synthetic exit status for a timed-out invocation.
const timeoutExitCode = -1

// Invocation records a single run of the review tool.
type Invocation struct {
	Args     []string
	ExitCode int
	Output   string
	TimedOut bool
}

// Options configures a review invocation.
type Options struct {
	Binary     string
	RepoRoot   string
	Mode       string // all | committed | uncommitted
	BaseCommit string
	BaseBranch string
	Timeout    time.Duration
}

// Lookup returns the path of the first review binary found on PATH.
func Lookup() (string, bool) {
	for _, name := range binaryCandidates {
		if path, err := exec.LookPath(name); err == nil {
			return path, true
		}
	}
	return "", false
}

// BuildArgs assembles the argument vector for a prompt-oriented,
// non-colorized review scoped to the repository and revision baseline.
// An explicit base commit wins over a named base branch.
func BuildArgs(opts Options) []string {
	args := []string{
		"--prompt-only",
		"--no-color",
		"--cwd", opts.RepoRoot,
		"--type", opts.Mode,
	}
	switch {
	case opts.BaseCommit != "":
		args = append(args, "--base-commit", opts.BaseCommit)
	case opts.BaseBranch != "":
		args = append(args, "--base", opts.BaseBranch)
	}
	return args
}

// Run executes the review tool and captures its combined output. A timeout
// terminates the child and is reported as a distinguished outcome with a
// synthetic non-zero exit status; whatever partial output was captured is
// kept. Run never returns an error: every failure mode is encoded in the
// Invocation.
func Run(ctx context.Context, opts Options) Invocation {
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	args := BuildArgs(opts)
	cmd := exec.CommandContext(ctx, opts.Binary, args...)
	cmd.Dir = opts.RepoRoot
	// Without a wait delay, a grandchild process holding the output pipe
	// keeps CombinedOutput blocked long after the timeout killed the tool.
	cmd.WaitDelay = time.Second
	out, err := cmd.CombinedOutput()

	inv := Invocation{Args: args, Output: string(out)}
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		inv.TimedOut = true
		inv.ExitCode = timeoutExitCode
		return inv
	}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			inv.ExitCode = exitErr.ExitCode()
		} else {
			inv.ExitCode = timeoutExitCode
		}
	}
	return inv
}

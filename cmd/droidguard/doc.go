// Droidguard is a set of lifecycle hook handlers for interactive coding
// agents.
//
// Each handler reads one JSON event from stdin and writes at most one JSON
// decision to stdout. Register the handlers in the host agent's hook
// settings:
//
//	droidguard hook review-guard --config-file ~/.droidguard.toml   # PreToolUse
//	droidguard hook policy --config-file ~/.droidguard.toml         # PreToolUse
//	droidguard hook block-auto-compact                              # PreCompact
//
// The review guard intercepts git push commands, runs the CodeRabbit CLI
// against the outgoing revision range, and denies the push while findings
// remain. Clean verdicts are cached per repository so repeated pushes on an
// unchanged range skip re-review:
//
//	droidguard cache show
//	droidguard cache clear
package main

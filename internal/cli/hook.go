package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/droidhooks/droidguard/internal/config"
	"github.com/droidhooks/droidguard/internal/guard"
	"github.com/droidhooks/droidguard/internal/hookio"
	"github.com/droidhooks/droidguard/internal/logger"
	"github.com/droidhooks/droidguard/internal/policy"
)

var (
	flagConfigFile string
	flagLogLevel   string

	// review-guard overrides
	flagMode          string
	flagMaxChars      int
	flagTimeout       int
	flagFailurePolicy string
	flagCacheDir      string
	flagCacheTTL      int

	// policy overrides
	flagAllow []string
	flagAsk   []string
	flagDeny  []string
)

var hookCmd = &cobra.Command{
	Use:   "hook",
	Short: "Hook handlers invoked by the host agent",
	Long:  "Hook handlers read one JSON event from stdin and write at most one JSON decision to stdout. The host agent registers them in its hook settings; they are not meant to be run by hand.",
}

var reviewGuardCmd = &cobra.Command{
	Use:   "review-guard",
	Short: "PreToolUse handler gating git push behind an external review",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadReviewGuard(flagConfigFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "[review-guard] Config error: %v\n", err)
			exitCode = ExitRuntimeError
			return nil
		}
		applyReviewGuardFlags(cmd, &cfg)
		if err := cfg.Validate(); err != nil {
			fmt.Fprintf(os.Stderr, "[review-guard] Config error: %v\n", err)
			exitCode = ExitRuntimeError
			return nil
		}

		ev, err := hookio.ReadAs(os.Stdin, hookio.EventPreToolUse)
		if err != nil {
			fmt.Fprintf(os.Stderr, "[review-guard] Hook input error: %v\n", err)
			exitCode = ExitRuntimeError
			return nil
		}
		if !isExecTool(ev.ToolName) {
			return nil
		}

		g, err := guard.New(cfg, logger.New(flagLogLevel, nil))
		if err != nil {
			fmt.Fprintf(os.Stderr, "[review-guard] %v\n", err)
			exitCode = ExitRuntimeError
			return nil
		}

		decision := g.Evaluate(cmd.Context(), ev)
		if decision.Warning != "" {
			fmt.Fprintln(os.Stderr, decision.Warning)
		}
		if decision.Deny {
			return hookio.Emit(os.Stdout, hookio.Decision(hookio.DecisionDeny, decision.Reason))
		}
		return nil
	},
}

var policyCmd = &cobra.Command{
	Use:   "policy",
	Short: "PreToolUse handler applying tool permission policies",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadPolicy(flagConfigFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "[policy] Config error: %v\n", err)
			exitCode = ExitRuntimeError
			return nil
		}
		cfg.Allow = append(cfg.Allow, flagAllow...)
		cfg.Ask = append(cfg.Ask, flagAsk...)
		cfg.Deny = append(cfg.Deny, flagDeny...)

		ev, err := hookio.ReadAs(os.Stdin, hookio.EventPreToolUse)
		if err != nil {
			fmt.Fprintf(os.Stderr, "[policy] Hook input error: %v\n", err)
			exitCode = ExitRuntimeError
			return nil
		}

		if decision, ok := policy.New(cfg).Decide(ev.ToolName); ok {
			return hookio.Emit(os.Stdout, hookio.Decision(decision.Action, decision.Reason))
		}
		// No rule matched: defer to the host's default handling.
		return nil
	},
}

var blockAutoCompactCmd = &cobra.Command{
	Use:   "block-auto-compact",
	Short: "PreCompact handler blocking automatic compaction",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := config.Validate(flagConfigFile); err != nil {
			fmt.Fprintf(os.Stderr, "[block-auto-compact] Config error: %v\n", err)
			exitCode = ExitRuntimeError
			return nil
		}

		ev, err := hookio.ReadAs(os.Stdin, hookio.EventPreCompact)
		if err != nil {
			fmt.Fprintf(os.Stderr, "[block-auto-compact] Hook input error: %v\n", err)
			exitCode = ExitRuntimeError
			return nil
		}

		if ev.Trigger == hookio.TriggerAuto {
			return hookio.Emit(os.Stdout, hookio.Stop("Auto compaction blocked by hook. Use /compact manually when ready."))
		}
		return nil
	},
}

// isExecTool reports whether the tool executes shell commands. Host agents
// differ on the tool's name.
func isExecTool(name string) bool {
	switch name {
	case "Bash", "Execute":
		return true
	}
	return false
}

func applyReviewGuardFlags(cmd *cobra.Command, cfg *config.ReviewGuard) {
	flags := cmd.Flags()
	if flags.Changed("mode") {
		cfg.Mode = flagMode
	}
	if flags.Changed("max-chars") {
		cfg.MaxChars = flagMaxChars
	}
	if flags.Changed("timeout-seconds") {
		cfg.TimeoutSeconds = flagTimeout
	}
	if flags.Changed("failure-policy") {
		cfg.FailurePolicy = flagFailurePolicy
	}
	if flags.Changed("cache-dir") {
		cfg.CacheDir = flagCacheDir
	}
	if flags.Changed("cache-ttl-seconds") {
		cfg.CacheTTLSeconds = flagCacheTTL
	}
}

func init() {
	hookCmd.PersistentFlags().StringVar(&flagConfigFile, "config-file", "", "Path to TOML config file")
	hookCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "info", "Log level (debug, info, warn, error)")

	reviewGuardCmd.Flags().StringVar(&flagMode, "mode", "", "Review mode (all, committed, uncommitted)")
	reviewGuardCmd.Flags().IntVar(&flagMaxChars, "max-chars", 0, "Maximum characters of report excerpt in the deny reason")
	reviewGuardCmd.Flags().IntVar(&flagTimeout, "timeout-seconds", 0, "Review tool timeout in seconds")
	reviewGuardCmd.Flags().StringVar(&flagFailurePolicy, "failure-policy", "", "Behavior on review tool failure (deny, allow)")
	reviewGuardCmd.Flags().StringVar(&flagCacheDir, "cache-dir", "", "Verdict cache directory")
	reviewGuardCmd.Flags().IntVar(&flagCacheTTL, "cache-ttl-seconds", 0, "Verdict cache time-to-live in seconds")

	policyCmd.Flags().StringArrayVar(&flagAllow, "allow", nil, "Tool pattern to allow (repeatable)")
	policyCmd.Flags().StringArrayVar(&flagAsk, "ask", nil, "Tool pattern to ask about (repeatable)")
	policyCmd.Flags().StringArrayVar(&flagDeny, "deny", nil, "Tool pattern to deny (repeatable)")

	// Handler subcommands are called by the hook system, not by users;
	// hide them to reduce command surface noise.
	for _, sub := range []*cobra.Command{reviewGuardCmd, policyCmd, blockAutoCompactCmd} {
		sub.Hidden = true
		hookCmd.AddCommand(sub)
	}
}

package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

const version = "0.1.0"

// Exit codes. Hook handlers always exit 0 after emitting a decision;
// non-zero exits are reserved for config and input errors that abort
// before the pipeline runs.
const (
	ExitSuccess      = 0
	ExitRuntimeError = 1
	ExitUsageError   = 2
)

var rootCmd = &cobra.Command{
	Use:   "droidguard",
	Short: "Guard hooks for interactive coding agents",
	Long:  "Droidguard provides lifecycle hook handlers for interactive coding agents: a pre-push review gate, a tool permission policy, and a compaction guard.",
}

// Run executes the root command and returns an exit code.
func Run() int {
	rootCmd.AddCommand(hookCmd)
	rootCmd.AddCommand(cacheCmd)
	rootCmd.AddCommand(versionCmd)

	if err := rootCmd.Execute(); err != nil {
		// Cobra already prints the error
		return ExitUsageError
	}

	return exitCode
}

// exitCode is set by command handlers to control the process exit code.
var exitCode = ExitSuccess

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print droidguard version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(os.Stdout, "droidguard version %s\n", version)
	},
}

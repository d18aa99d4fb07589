package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"typewatch/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "typewatch",
	Short: "Incremental type-error checker for Go projects",
	Long: `typewatch keeps a warm type-checking session over a project and
answers check queries incrementally: single files, VCS-changed sets,
the whole project, or a continuous watch loop.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// exitCode carries the diagnostics outcome out of RunE: tool failures
// travel as errors (exit 2), found diagnostics only flip this to 1.
var exitCode int

func main() {
	rootCmd.Version = version.Version

	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(checkChangedCmd)
	rootCmd.AddCommand(checkAllCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(cleanCmd)
	rootCmd.AddCommand(versionCmd)

	rootCmd.PersistentFlags().String("format", "pretty", "output format (pretty|json|markdown)")
	rootCmd.PersistentFlags().String("color", "auto", "colorize output (auto|on|off)")
	rootCmd.PersistentFlags().Bool("quiet", false, "suppress non-essential output")
	rootCmd.PersistentFlags().Bool("metrics", false, "include timing and count metrics")
	rootCmd.PersistentFlags().Bool("no-cache", false, "bypass snapshot and diagnostics caches")
	rootCmd.PersistentFlags().Bool("no-warnings", false, "report errors only, drop warnings")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "typewatch: %v\n", err)
		os.Exit(2)
	}
	os.Exit(exitCode)
}

// isTerminal reports whether the file is attached to a terminal.
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

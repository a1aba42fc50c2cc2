package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Version is set by build flags.
	Version = "0.1.0-dev"
)

var rootCmd = &cobra.Command{
	Use:   "hmc",
	Short: "Hindley-Milner inference engine CLI",
	Long: `hmc parses, type-checks, and elaborates programs written in the
engine's s-expression surface syntax: lambda, let, letrec, if, sequencing,
application, algebraic data type definitions, and top-level declarations
and definitions.`,
	Version: Version,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// Main runs the root command to completion and returns a process exit code,
// so it can back both the real binary's main() and a testscript harness.
func Main() int {
	if err := Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func exitWithError(msg string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+msg+"\n", args...)
	os.Exit(1)
}

// Package cli provides the Cobra command structure for volblock.
package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/yaklabco/volblock/internal/configloader"
	"github.com/yaklabco/volblock/internal/logging"
)

// BuildInfo holds build-time version information.
type BuildInfo struct {
	Version string
	Commit  string
	Date    string
}

// NewRootCommand creates the root volblock command with all subcommands.
func NewRootCommand(info BuildInfo) *cobra.Command {
	var debug bool

	rootCmd := &cobra.Command{
		Use:   "volblock",
		Short: "Force memory accesses in marked C blocks through volatile pointers",
		Long: `volblock rewrites C sources so that code inside marker blocks survives
optimization.

A marker block is a conditional whose test is cast to a reserved sentinel type:

  if ((___VOLATILE_BLOCK_MARKER) 1) { ... }

"volatilize" routes every variable access inside such a block through a
volatile-qualified pointer. "optnone" inserts an optimization-disabling
directive before every function that contains a marker block. Both read
compile commands from the compile_commands.json of a build directory.` + envHelp(),
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			if debug {
				logging.SetLevel("debug")
			}
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags.
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().String("config", "", "path to config file")
	rootCmd.PersistentFlags().String("color", "auto", "colorize output: auto, always, never")

	rootCmd.AddCommand(newVolatilizeCommand())
	rootCmd.AddCommand(newOptnoneCommand())
	rootCmd.AddCommand(newVersionCommand(info))

	return rootCmd
}

// envHelp lists the environment overrides for the root help text.
func envHelp() string {
	var b strings.Builder
	b.WriteString("\n\nEnvironment:\n")
	for _, v := range configloader.ListEnvVars() {
		fmt.Fprintf(&b, "  %-24s%s\n", v[0], v[1])
	}
	return strings.TrimRight(b.String(), "\n")
}

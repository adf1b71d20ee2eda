package main

import (
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"reflex/internal/version"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "reflex",
		Short:         "Compile-time reflection core",
		Long:          `reflex hosts the metafunction table, its engine and the splice protocol, with tools to inspect and check them`,
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newTableCmd())
	root.AddCommand(newManifestCmd())
	root.AddCommand(newSelftestCmd())
	root.AddCommand(newVersionCmd())

	root.PersistentFlags().String("config", "", "path to reflex.toml (default: ./reflex.toml when present)")
	root.PersistentFlags().String("color", "auto", "colorize output (auto|on|off)")
	root.PersistentFlags().String("trace-level", "", "trace level (off|error|phase|detail|debug), overrides [trace].level")
	root.PersistentFlags().Int("max-depth", 0, "nested evaluation limit, overrides [limits].max_depth")
	root.PersistentFlags().Bool("timings", false, "show timing information")
	root.PersistentFlags().String("cpu-profile", "", "write a CPU profile to this file")
	root.PersistentFlags().String("mem-profile", "", "write a heap profile to this file on exit")
	root.PersistentFlags().String("runtime-trace", "", "write a Go runtime trace to this file")
	return root
}

// main builds the command tree and runs it. Any command error exits with
// status 1.
func main() {
	root := newRootCmd()
	if err := root.Execute(); err != nil {
		root.PrintErrln("error:", err)
		os.Exit(1)
	}
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd())) // #nosec G115 -- file descriptors fit in int
}

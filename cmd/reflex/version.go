package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"reflex/internal/version"
)

func newVersionCmd() *cobra.Command {
	var full bool
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show reflex build information",
		RunE: func(cmd *cobra.Command, args []string) error {
			mode, err := cmd.Root().PersistentFlags().GetString("color")
			if err != nil {
				return err
			}
			colored, err := resolveColor(mode, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "reflex %s\n", version.Banner(colored))
			if full {
				fmt.Fprintf(out, "commit: %s\n", valueOrUnknown(version.GitCommit))
				fmt.Fprintf(out, "built:  %s\n", valueOrUnknown(version.BuildDate))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&full, "full", false, "show every recorded bit of build metadata")
	return cmd
}

func valueOrUnknown(s string) string {
	if s = strings.TrimSpace(s); s == "" {
		return "unknown"
	}
	return s
}

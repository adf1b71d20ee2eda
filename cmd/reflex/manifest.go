package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"reflex/internal/manifest"
)

func newManifestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "manifest",
		Short: "Persist or verify the metafunction ID manifest",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "write FILE",
		Short: "Write the current table to FILE",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m := manifest.Snapshot()
			if err := manifest.Write(args[0], m); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %d metafunctions to %s\n", len(m.Records), args[0])
			return nil
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "check FILE",
		Short: "Check that the current table only appends to FILE",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			old, err := manifest.Read(args[0])
			if err != nil {
				return err
			}
			current := manifest.Snapshot()
			mismatches, err := manifest.Check(old, current)
			for _, m := range mismatches {
				fmt.Fprintln(cmd.ErrOrStderr(), m.String())
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "ok: %d stored, %d appended\n",
				len(old.Records), len(current.Records)-len(old.Records))
			return nil
		},
	})
	return cmd
}

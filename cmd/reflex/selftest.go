package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"reflex/internal/diagfmt"
	"reflex/internal/observ"
	"reflex/internal/scenario"
	"reflex/internal/trace"
)

var errSelftestFailed = errors.New("self-test failed")

func newSelftestCmd() *cobra.Command {
	var (
		jobs    int
		verbose bool
		format  string
		uiFlag  string
	)
	cmd := &cobra.Command{
		Use:   "selftest",
		Short: "Run the built-in reflection scenarios",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, cleanup, err := loadSettings(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			mode, err := readUIMode(uiFlag)
			if err != nil {
				return err
			}
			opts, err := st.cfg.SessionOptions(nil, st.tracer)
			if err != nil {
				return err
			}
			runOpts := scenario.Options{
				Session:        opts,
				MaxDiagnostics: st.cfg.Limits.MaxDiagnostics,
				Jobs:           jobs,
			}

			out := cmd.OutOrStdout()
			sp := trace.Begin(st.tracer, trace.ScopeCommand, "selftest", 0)
			var outcomes []scenario.Outcome
			if shouldUseTUI(mode, out) {
				outcomes, err = runScenariosWithUI(cmd.Context(), out, scenario.All(), runOpts)
			} else {
				outcomes, err = scenario.RunAll(cmd.Context(), scenario.All(), runOpts)
			}
			if err != nil {
				sp.End(err.Error())
				return err
			}

			pass, fail := color.New(color.FgGreen, color.Bold), color.New(color.FgRed, color.Bold)
			for _, c := range []*color.Color{pass, fail} {
				if st.color {
					c.EnableColor()
				} else {
					c.DisableColor()
				}
			}
			base, _ := os.Getwd()
			failed := 0
			for i := range outcomes {
				o := &outcomes[i]
				if o.Passed() {
					fmt.Fprintf(out, "%s %s\n", pass.Sprint("PASS"), o.Name)
				} else {
					failed++
					fmt.Fprintf(out, "%s %s: %v\n", fail.Sprint("FAIL"), o.Name, o.Err)
				}
				if o.Passed() && !verbose {
					continue
				}
				o.Bag.Sort()
				switch format {
				case "json":
					err = diagfmt.JSON(out, o.Bag, o.Files, diagfmt.JSONOpts{IncludePositions: true, IncludeNotes: true, BaseDir: base})
				default:
					err = diagfmt.Pretty(out, o.Bag, o.Files, diagfmt.PrettyOpts{Color: st.color, ShowNotes: true, BaseDir: base})
				}
				if err != nil {
					return err
				}
			}
			fmt.Fprintf(out, "%d passed, %d failed\n", len(outcomes)-failed, failed)
			if st.timings {
				timer := observ.NewTimer()
				for i := range outcomes {
					note := ""
					if !outcomes[i].Passed() {
						note = "failed"
					}
					timer.Record(outcomes[i].Name, outcomes[i].Duration, note)
				}
				fmt.Fprint(out, timer.Summary())
			}
			if failed > 0 {
				sp.End("failed")
				return fmt.Errorf("%w: %d of %d scenarios", errSelftestFailed, failed, len(outcomes))
			}
			sp.End("ok")
			return nil
		},
	}
	cmd.Flags().IntVar(&jobs, "jobs", 0, "scenarios to run at once (default: GOMAXPROCS)")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "print diagnostics of passing scenarios too")
	cmd.Flags().StringVar(&format, "format", "pretty", "diagnostic format (pretty|json)")
	cmd.Flags().StringVar(&uiFlag, "ui", "auto", "progress view (auto|on|off)")
	return cmd
}

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"reflex/internal/scenario"
	"reflex/internal/ui"
)

type uiMode string

const (
	uiModeAuto uiMode = "auto"
	uiModeOn   uiMode = "on"
	uiModeOff  uiMode = "off"
)

func readUIMode(value string) (uiMode, error) {
	switch strings.TrimSpace(strings.ToLower(value)) {
	case "", "auto":
		return uiModeAuto, nil
	case "on":
		return uiModeOn, nil
	case "off":
		return uiModeOff, nil
	default:
		return "", fmt.Errorf("invalid --ui value %q (expected auto|on|off)", value)
	}
}

func shouldUseTUI(mode uiMode, out io.Writer) bool {
	switch mode {
	case uiModeOn:
		return true
	case uiModeOff:
		return false
	default:
		f, ok := out.(*os.File)
		return ok && isTerminal(f)
	}
}

type runOutcome struct {
	outcomes []scenario.Outcome
	err      error
}

// runScenariosWithUI runs the scenarios while a progress view renders to out.
func runScenariosWithUI(ctx context.Context, out io.Writer, scenarios []scenario.Scenario, opts scenario.Options) ([]scenario.Outcome, error) {
	events := make(chan scenario.Event, 3*len(scenarios)+1)
	outcomeCh := make(chan runOutcome, 1)

	go func() {
		o := opts
		o.Progress = scenario.ChannelSink{Ch: events}
		res, err := scenario.RunAll(ctx, scenarios, o)
		outcomeCh <- runOutcome{outcomes: res, err: err}
		close(events)
	}()

	names := make([]string, len(scenarios))
	for i, sc := range scenarios {
		names[i] = sc.Name
	}
	model := ui.NewProgressModel("reflex selftest", names, events)
	program := tea.NewProgram(model, tea.WithOutput(out), tea.WithInput(nil))
	_, uiErr := program.Run()
	outcome := <-outcomeCh
	if uiErr != nil {
		return outcome.outcomes, uiErr
	}
	return outcome.outcomes, outcome.err
}

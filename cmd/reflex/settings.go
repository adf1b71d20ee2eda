package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"reflex/internal/config"
	"reflex/internal/prof"
	"reflex/internal/trace"
)

// settings is the merged view of reflex.toml and the global flags.
type settings struct {
	cfg     config.Config
	color   bool
	timings bool
	tracer  trace.Tracer
}

// loadSettings reads the configuration file, applies flag overrides, opens
// the tracer and starts any requested profilers. The returned cleanup stops
// the profilers and closes the tracer.
func loadSettings(cmd *cobra.Command) (*settings, func(), error) {
	flags := cmd.Root().PersistentFlags()

	path, err := flags.GetString("config")
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get config flag: %w", err)
	}
	optional := path == ""
	if optional {
		path = config.FileName
	}
	cfg, err := config.Load(path, optional)
	if err != nil {
		return nil, nil, err
	}

	if flags.Changed("trace-level") {
		if cfg.Trace.Level, err = flags.GetString("trace-level"); err != nil {
			return nil, nil, fmt.Errorf("failed to get trace-level flag: %w", err)
		}
	}
	if flags.Changed("max-depth") {
		if cfg.Limits.MaxDepth, err = flags.GetInt("max-depth"); err != nil {
			return nil, nil, fmt.Errorf("failed to get max-depth flag: %w", err)
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	mode, err := flags.GetString("color")
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get color flag: %w", err)
	}
	color, err := resolveColor(mode, cmd.OutOrStdout())
	if err != nil {
		return nil, nil, err
	}

	timings, err := flags.GetBool("timings")
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get timings flag: %w", err)
	}

	var popts prof.Options
	if popts.CPU, err = flags.GetString("cpu-profile"); err != nil {
		return nil, nil, fmt.Errorf("failed to get cpu-profile flag: %w", err)
	}
	if popts.Mem, err = flags.GetString("mem-profile"); err != nil {
		return nil, nil, fmt.Errorf("failed to get mem-profile flag: %w", err)
	}
	if popts.Trace, err = flags.GetString("runtime-trace"); err != nil {
		return nil, nil, fmt.Errorf("failed to get runtime-trace flag: %w", err)
	}

	tracer, err := cfg.Tracer()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create tracer: %w", err)
	}
	profiler, err := prof.Start(popts)
	if err != nil {
		_ = tracer.Close()
		return nil, nil, fmt.Errorf("failed to start profiling: %w", err)
	}
	cleanup := func() {
		if err := profiler.Stop(); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "profile: %v\n", err)
		}
		if err := tracer.Close(); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "trace: close error: %v\n", err)
		}
	}
	return &settings{cfg: cfg, color: color, timings: timings, tracer: tracer}, cleanup, nil
}

func resolveColor(mode string, out io.Writer) (bool, error) {
	switch strings.ToLower(mode) {
	case "on":
		return true, nil
	case "off":
		return false, nil
	case "auto":
		if os.Getenv("NO_COLOR") != "" {
			return false, nil
		}
		f, ok := out.(*os.File)
		return ok && isTerminal(f), nil
	default:
		return false, fmt.Errorf("invalid color mode %q (expected auto|on|off)", mode)
	}
}

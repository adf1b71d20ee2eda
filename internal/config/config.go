// Package config loads reflex.toml.
//
//	[target]
//	triple = "x86_64-linux-gnu"
//	pointer_size = 8   # only for triples layout does not know
//	pointer_align = 8
//
//	[limits]
//	max_depth = 512
//	max_diagnostics = 100
//
//	[trace]
//	level = "off"      # off|error|phase|detail|debug
//	mode = "ring"      # stream|ring
//	output = "-"
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/BurntSushi/toml"

	"reflex/internal/diag"
	"reflex/internal/layout"
	"reflex/internal/meta"
	"reflex/internal/trace"
)

// FileName is the configuration file looked up in the working directory.
const FileName = "reflex.toml"

type Target struct {
	Triple       string `toml:"triple"`
	PointerSize  int    `toml:"pointer_size"`
	PointerAlign int    `toml:"pointer_align"`
}

type Limits struct {
	MaxDepth       int `toml:"max_depth"`
	MaxDiagnostics int `toml:"max_diagnostics"`
}

type Trace struct {
	Level  string `toml:"level"`
	Mode   string `toml:"mode"`
	Output string `toml:"output"`
}

// Config is the decoded file with defaults applied.
type Config struct {
	Target Target `toml:"target"`
	Limits Limits `toml:"limits"`
	Trace  Trace  `toml:"trace"`
}

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		Target: Target{Triple: layout.X86_64LinuxGNU().Triple},
		Limits: Limits{MaxDepth: meta.DefaultMaxDepth, MaxDiagnostics: 100},
		Trace:  Trace{Level: "off", Mode: "ring", Output: "-"},
	}
}

// Load reads path over the defaults. A missing file is not an error when
// optional is set. Keys the schema does not know are rejected.
func Load(path string, optional bool) (Config, error) {
	cfg := Default()
	// #nosec G304 -- path is provided by the caller
	data, err := os.ReadFile(path)
	if err != nil {
		if optional && errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return cfg, err
	}
	return Parse(string(data), path, cfg)
}

// Parse decodes data over base. name labels errors.
func Parse(data, name string, base Config) (Config, error) {
	cfg := base
	md, err := toml.Decode(data, &cfg)
	if err != nil {
		return base, fmt.Errorf("%s: %w", name, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return base, fmt.Errorf("%s: unknown keys: %s", name, strings.Join(keys, ", "))
	}
	if err := cfg.Validate(); err != nil {
		return base, fmt.Errorf("%s: %w", name, err)
	}
	return cfg, nil
}

// Validate checks value ranges and enumerations.
func (c Config) Validate() error {
	if c.Limits.MaxDepth < 1 {
		return fmt.Errorf("limits.max_depth must be positive, got %d", c.Limits.MaxDepth)
	}
	if c.Limits.MaxDiagnostics < 1 {
		return fmt.Errorf("limits.max_diagnostics must be positive, got %d", c.Limits.MaxDiagnostics)
	}
	if _, err := c.LayoutTarget(); err != nil {
		return err
	}
	if _, err := trace.ParseLevel(c.Trace.Level); err != nil {
		return err
	}
	if _, err := trace.ParseMode(c.Trace.Mode); err != nil {
		return err
	}
	return nil
}

// LayoutTarget resolves the [target] table. Unknown triples need an explicit
// pointer size and alignment.
func (c Config) LayoutTarget() (layout.Target, error) {
	t := c.Target
	known, err := layout.LookupTarget(t.Triple)
	if err == nil {
		if t.PointerSize != 0 && t.PointerSize != known.PtrSize {
			return layout.Target{}, fmt.Errorf("target %s has %d-byte pointers, config says %d", t.Triple, known.PtrSize, t.PointerSize)
		}
		return known, nil
	}
	if t.PointerSize <= 0 || t.PointerAlign <= 0 {
		return layout.Target{}, fmt.Errorf("%w: set target.pointer_size and target.pointer_align", err)
	}
	if t.PointerAlign&(t.PointerAlign-1) != 0 {
		return layout.Target{}, fmt.Errorf("target.pointer_align %d is not a power of two", t.PointerAlign)
	}
	return layout.Target{Triple: t.Triple, PtrSize: t.PointerSize, PtrAlign: t.PointerAlign}, nil
}

// Tracer builds the tracer described by [trace].
func (c Config) Tracer() (trace.Tracer, error) {
	level, err := trace.ParseLevel(c.Trace.Level)
	if err != nil {
		return nil, err
	}
	mode, err := trace.ParseMode(c.Trace.Mode)
	if err != nil {
		return nil, err
	}
	return trace.New(trace.Config{Level: level, Mode: mode, OutputPath: c.Trace.Output})
}

// SessionOptions returns the meta options for a session that reports into r
// and traces into t.
func (c Config) SessionOptions(r diag.Reporter, t trace.Tracer) (meta.Options, error) {
	target, err := c.LayoutTarget()
	if err != nil {
		return meta.Options{}, err
	}
	return meta.Options{Target: target, MaxDepth: c.Limits.MaxDepth, Reporter: r, Tracer: t}, nil
}

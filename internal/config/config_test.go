package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"reflex/internal/config"
	"reflex/internal/diag"
	"reflex/internal/trace"
)

func TestMissingOptionalFileYieldsDefaults(t *testing.T) {
	cfg, err := config.Load(filepath.Join(t.TempDir(), config.FileName), true)
	require.NoError(t, err)
	require.Equal(t, config.Default(), cfg)

	_, err = config.Load(filepath.Join(t.TempDir(), config.FileName), false)
	require.Error(t, err)
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), config.FileName)
	require.NoError(t, os.WriteFile(path, []byte(`
[target]
triple = "i686-linux-gnu"

[limits]
max_depth = 64
`), 0o600))

	cfg, err := config.Load(path, true)
	require.NoError(t, err)
	require.Equal(t, 64, cfg.Limits.MaxDepth)
	require.Equal(t, 100, cfg.Limits.MaxDiagnostics)

	opts, err := cfg.SessionOptions(diag.NopReporter{}, trace.Nop)
	require.NoError(t, err)
	require.Equal(t, 4, opts.Target.PtrSize)
	require.Equal(t, 64, opts.MaxDepth)
}

func TestUnknownKeysAreRejected(t *testing.T) {
	_, err := config.Parse("[limits]\nmax_dept = 3\n", "reflex.toml", config.Default())
	require.ErrorContains(t, err, "unknown keys: limits.max_dept")
}

func TestCustomTargetNeedsPointerProperties(t *testing.T) {
	_, err := config.Parse("[target]\ntriple = \"riscv64-elf\"\n", "reflex.toml", config.Default())
	require.ErrorContains(t, err, "pointer_size")

	cfg, err := config.Parse("[target]\ntriple = \"riscv64-elf\"\npointer_size = 8\npointer_align = 8\n", "reflex.toml", config.Default())
	require.NoError(t, err)
	target, err := cfg.LayoutTarget()
	require.NoError(t, err)
	require.Equal(t, 8, target.PtrAlign)

	_, err = config.Parse("[target]\ntriple = \"riscv64-elf\"\npointer_size = 8\npointer_align = 6\n", "reflex.toml", config.Default())
	require.ErrorContains(t, err, "power of two")
}

func TestInvalidValues(t *testing.T) {
	cases := map[string]string{
		"depth": "[limits]\nmax_depth = 0\n",
		"level": "[trace]\nlevel = \"loud\"\n",
		"mode":  "[trace]\nmode = \"tape\"\n",
		"ptr":   "[target]\npointer_size = 4\n",
	}
	for name, src := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := config.Parse(src, "reflex.toml", config.Default())
			require.Error(t, err)
		})
	}
}

func TestTracerFollowsLevel(t *testing.T) {
	tr, err := config.Default().Tracer()
	require.NoError(t, err)
	require.False(t, trace.Enabled(tr))

	cfg := config.Default()
	cfg.Trace.Level = "detail"
	tr, err = cfg.Tracer()
	require.NoError(t, err)
	require.Equal(t, trace.LevelDetail, tr.Level())
}

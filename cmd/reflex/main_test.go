package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"reflex/internal/manifest"
)

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	root := newRootCmd()
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), errOut.String(), err
}

func TestTableSelectsByNameAndID(t *testing.T) {
	out, _, err := run(t, "table", "--color=off", "is_public", "0")
	require.NoError(t, err)
	require.Contains(t, out, "is_public")
	require.Contains(t, out, "get_begin_enumerator_decl_of")
	require.NotContains(t, out, "\x1b[")

	_, _, err = run(t, "table", "no_such_thing")
	require.ErrorContains(t, err, "unknown metafunction")
}

func TestTableJSON(t *testing.T) {
	out, _, err := run(t, "table", "--format=json", "is_accessible")
	require.NoError(t, err)
	var rows []tableRow
	require.NoError(t, json.Unmarshal([]byte(out), &rows))
	require.Len(t, rows, 1)
	require.Equal(t, "1..2", rows[0].Arity)
	require.True(t, rows[0].Vacuous)
}

func TestManifestWriteThenCheck(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ids.mp")
	out, _, err := run(t, "manifest", "write", path)
	require.NoError(t, err)
	require.Contains(t, out, "wrote")

	out, _, err = run(t, "manifest", "check", path)
	require.NoError(t, err)
	require.Contains(t, out, "0 appended")

	m, err := manifest.Read(path)
	require.NoError(t, err)
	m.Records[3].Name = "renamed"
	require.NoError(t, manifest.Write(path, m))
	_, errOut, err := run(t, "manifest", "check", path)
	require.ErrorIs(t, err, manifest.ErrIncompatible)
	require.Contains(t, errOut, "name renamed -> get_ith_template_argument_of")
}

func TestSelftestPasses(t *testing.T) {
	out, _, err := run(t, "selftest", "--color=off", "--jobs=2")
	require.NoError(t, err)
	require.Contains(t, out, "PASS define-class-named-member")
	require.Contains(t, out, "0 failed")
	require.NotContains(t, out, "REF4010")

	out, _, err = run(t, "selftest", "--color=off", "--verbose")
	require.NoError(t, err)
	require.Contains(t, out, "ERROR REF4010")
	require.Contains(t, out, "note:")
}

func TestFlagOverridesAreValidated(t *testing.T) {
	_, _, err := run(t, "selftest", "--max-depth=0")
	require.ErrorContains(t, err, "max_depth must be positive")

	_, _, err = run(t, "selftest", "--trace-level=loud")
	require.ErrorContains(t, err, "invalid trace level")
}

func TestConfigFileIsValidated(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reflex.toml")
	require.NoError(t, os.WriteFile(path, []byte("[limits]\nmax_depht = 3\n"), 0o600))
	_, _, err := run(t, "table", "--config", path)
	require.ErrorContains(t, err, "unknown keys")

	_, _, err = run(t, "table", "--config", filepath.Join(t.TempDir(), "missing.toml"))
	require.Error(t, err)
}

func TestColorFlag(t *testing.T) {
	_, _, err := run(t, "table", "--color=sometimes")
	require.ErrorContains(t, err, "invalid color mode")

	on, err := resolveColor("on", &bytes.Buffer{})
	require.NoError(t, err)
	require.True(t, on)
	auto, err := resolveColor("auto", &bytes.Buffer{})
	require.NoError(t, err)
	require.False(t, auto)
}

func TestVersion(t *testing.T) {
	out, _, err := run(t, "version", "--color=off", "--full")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	require.True(t, strings.HasPrefix(lines[0], "reflex 0.1.0-dev"))
	require.Equal(t, "commit: unknown", lines[1])
}

func TestSelftestTimingsAndProfile(t *testing.T) {
	cpu := filepath.Join(t.TempDir(), "cpu.pprof")
	out, _, err := run(t, "selftest", "--color=off", "--timings", "--cpu-profile", cpu)
	require.NoError(t, err)
	require.Contains(t, out, "timings:\n")
	require.Contains(t, out, "splice-round-trip")
	info, err := os.Stat(cpu)
	require.NoError(t, err)
	require.NotZero(t, info.Size())
}

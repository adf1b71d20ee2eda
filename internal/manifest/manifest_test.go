package manifest_test

import (
	"bytes"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"reflex/internal/manifest"
	"reflex/internal/meta"
)

func TestSnapshotFollowsTableOrder(t *testing.T) {
	m := manifest.Snapshot()
	entries := meta.Entries()
	require.Len(t, m.Records, len(entries))
	for i, rec := range m.Records {
		require.Equal(t, uint32(i), rec.ID)
		require.Equal(t, entries[i].Name, rec.Name)
	}
	require.Equal(t, "get_begin_enumerator_decl_of", m.Records[0].Name)
}

func TestWriteReadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "ids.mp")
	want := manifest.Snapshot()
	require.NoError(t, manifest.Write(path, want))

	got, err := manifest.Read(path)
	require.NoError(t, err)
	require.Equal(t, want, got)

	mismatches, err := manifest.Check(got, manifest.Snapshot())
	require.NoError(t, err)
	require.Empty(t, mismatches)
}

func TestCheckAllowsAppend(t *testing.T) {
	current := manifest.Snapshot()
	old := &manifest.Manifest{Schema: current.Schema, Records: current.Records[:10]}
	mismatches, err := manifest.Check(old, current)
	require.NoError(t, err)
	require.Empty(t, mismatches)
}

func TestCheckDetectsRenumbering(t *testing.T) {
	current := manifest.Snapshot()
	old := &manifest.Manifest{Schema: current.Schema, Records: append([]manifest.Record(nil), current.Records...)}
	old.Records[0], old.Records[1] = old.Records[1], old.Records[0]
	old.Records[0].ID, old.Records[1].ID = 0, 1
	old.Records = append(old.Records, manifest.Record{ID: 100000, Name: "gone", Result: 1, MinArgs: 1, MaxArgs: 1})

	mismatches, err := manifest.Check(old, current)
	require.True(t, errors.Is(err, manifest.ErrIncompatible))
	require.Len(t, mismatches, 3)
	require.Contains(t, mismatches[0].String(), "name get_next_enumerator_decl_of -> get_begin_enumerator_decl_of")
	require.Equal(t, "ID 100000 (gone) was removed", mismatches[2].String())
}

func TestCheckDetectsArityChange(t *testing.T) {
	current := manifest.Snapshot()
	old := &manifest.Manifest{Schema: current.Schema, Records: append([]manifest.Record(nil), current.Records[:1]...)}
	old.Records[0].MaxArgs = meta.Variadic

	mismatches, err := manifest.Check(old, current)
	require.Error(t, err)
	require.Len(t, mismatches, 1)
	require.Contains(t, mismatches[0].String(), "arity 2.. -> 2")
}

func TestDecodeRejectsOtherSchema(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, manifest.Encode(&buf, &manifest.Manifest{Schema: 99}))
	_, err := manifest.Decode(&buf)
	require.ErrorContains(t, err, "schema 99")
}

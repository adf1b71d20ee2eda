// Package manifest persists the metafunction ID table so that a later build
// can verify it only ever grew. Compiled library code embeds the numeric IDs,
// so renumbering an entry silently changes which operation runs.
package manifest

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/vmihailenco/msgpack/v5"

	"reflex/internal/meta"
)

// Current schema version - increment when the Manifest format changes.
const schemaVersion uint16 = 1

// Record is the persisted shape of one table entry.
type Record struct {
	ID      uint32
	Name    string
	Result  uint8 // meta.ResultKind
	MinArgs int
	MaxArgs int
}

// Manifest is a snapshot of the whole table in ID order.
type Manifest struct {
	Schema  uint16
	Records []Record
}

// Snapshot captures the current table.
func Snapshot() *Manifest {
	entries := meta.Entries()
	m := &Manifest{Schema: schemaVersion, Records: make([]Record, len(entries))}
	for i := range entries {
		e := &entries[i]
		m.Records[i] = Record{
			ID:      uint32(e.ID),
			Name:    e.Name,
			Result:  uint8(e.Result),
			MinArgs: e.MinArgs,
			MaxArgs: e.MaxArgs,
		}
	}
	return m
}

// Encode writes m to w.
func Encode(w io.Writer, m *Manifest) error {
	return msgpack.NewEncoder(w).Encode(m)
}

// Decode reads a manifest from r.
func Decode(r io.Reader) (*Manifest, error) {
	var m Manifest
	if err := msgpack.NewDecoder(r).Decode(&m); err != nil {
		return nil, fmt.Errorf("decode manifest: %w", err)
	}
	if m.Schema != schemaVersion {
		return nil, fmt.Errorf("manifest schema %d, want %d", m.Schema, schemaVersion)
	}
	return &m, nil
}

// Write stores m at path, replacing any previous file atomically.
func Write(path string, m *Manifest) (err error) {
	dir := filepath.Dir(path)
	if err = os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(dir, "manifest-*")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = os.Remove(f.Name())
		}
	}()
	if err = Encode(f, m); err != nil {
		_ = f.Close()
		return err
	}
	if err = f.Close(); err != nil {
		return err
	}
	return os.Rename(f.Name(), path)
}

// Read loads a manifest from path.
func Read(path string) (*Manifest, error) {
	// #nosec G304 -- path is provided by the caller
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = f.Close()
	}()
	return Decode(f)
}

// Mismatch describes one stored record that the current table broke.
type Mismatch struct {
	Old Record
	New *Record // nil when the entry disappeared
}

func (m Mismatch) String() string {
	if m.New == nil {
		return fmt.Sprintf("ID %d (%s) was removed", m.Old.ID, m.Old.Name)
	}
	var diffs []string
	if m.Old.Name != m.New.Name {
		diffs = append(diffs, fmt.Sprintf("name %s -> %s", m.Old.Name, m.New.Name))
	}
	if m.Old.Result != m.New.Result {
		diffs = append(diffs, fmt.Sprintf("result %s -> %s",
			meta.ResultKind(m.Old.Result), meta.ResultKind(m.New.Result)))
	}
	if m.Old.MinArgs != m.New.MinArgs || m.Old.MaxArgs != m.New.MaxArgs {
		diffs = append(diffs, fmt.Sprintf("arity %s -> %s",
			arity(m.Old.MinArgs, m.Old.MaxArgs), arity(m.New.MinArgs, m.New.MaxArgs)))
	}
	return fmt.Sprintf("ID %d (%s): %s", m.Old.ID, m.Old.Name, strings.Join(diffs, ", "))
}

func arity(lo, hi int) string {
	switch {
	case hi == meta.Variadic:
		return fmt.Sprintf("%d..", lo)
	case lo == hi:
		return fmt.Sprint(lo)
	default:
		return fmt.Sprintf("%d..%d", lo, hi)
	}
}

// ErrIncompatible is wrapped by Check when the current table breaks the stored one.
var ErrIncompatible = errors.New("metafunction table is not append-compatible")

// Check verifies that current extends old: every stored ID still exists with
// the same name, result kind and arity. Entries appended after the stored
// ones are allowed.
func Check(old, current *Manifest) ([]Mismatch, error) {
	byID := make(map[uint32]*Record, len(current.Records))
	for i := range current.Records {
		byID[current.Records[i].ID] = &current.Records[i]
	}
	var out []Mismatch
	for _, rec := range old.Records {
		cur, ok := byID[rec.ID]
		if !ok {
			out = append(out, Mismatch{Old: rec})
			continue
		}
		if *cur != rec {
			out = append(out, Mismatch{Old: rec, New: cur})
		}
	}
	if len(out) > 0 {
		return out, fmt.Errorf("%w: %d entries changed", ErrIncompatible, len(out))
	}
	return nil, nil
}

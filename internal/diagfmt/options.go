package diagfmt

import (
	"path/filepath"
	"strings"

	"reflex/internal/source"
)

// PathMode specifies how file paths are displayed.
type PathMode uint8

const (
	// PathModeAuto shows paths relative to BaseDir when they lie below it.
	PathModeAuto PathMode = iota
	// PathModeAbsolute always uses absolute paths.
	PathModeAbsolute
	PathModeRelative
	PathModeBasename
)

// PrettyOpts configures pretty-printing of diagnostics.
type PrettyOpts struct {
	Color     bool
	PathMode  PathMode
	BaseDir   string
	ShowNotes bool
}

// JSONOpts configures JSON output of diagnostics.
type JSONOpts struct {
	IncludePositions bool
	PathMode         PathMode
	BaseDir          string
	Max              int // truncates the output, not the Bag
	IncludeNotes     bool
}

// synthesized is shown for spans outside any known file.
const synthesized = "<synthesized>"

func displayPath(f *source.File, mode PathMode, base string) string {
	if f == nil {
		return synthesized
	}
	switch mode {
	case PathModeAbsolute:
		if abs, err := filepath.Abs(f.Path); err == nil && f.Flags&source.FileVirtual == 0 {
			return filepath.ToSlash(abs)
		}
		return f.Path
	case PathModeBasename:
		return filepath.Base(f.Path)
	case PathModeRelative, PathModeAuto:
		if base == "" {
			return f.Path
		}
		rel, err := filepath.Rel(base, f.Path)
		if err != nil || (mode == PathModeAuto && strings.HasPrefix(rel, "..")) {
			return f.Path
		}
		return filepath.ToSlash(rel)
	}
	return f.Path
}

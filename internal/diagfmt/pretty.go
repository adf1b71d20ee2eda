package diagfmt

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"reflex/internal/diag"
	"reflex/internal/source"
)

const tabWidth = 4

type palette struct {
	sev   map[diag.Severity]*color.Color
	code  *color.Color
	caret *color.Color
	note  *color.Color
	dim   *color.Color
}

func newPalette(enabled bool) palette {
	mk := func(attrs ...color.Attribute) *color.Color {
		c := color.New(attrs...)
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
		return c
	}
	return palette{
		sev: map[diag.Severity]*color.Color{
			diag.SevError:   mk(color.FgRed, color.Bold),
			diag.SevWarning: mk(color.FgYellow, color.Bold),
			diag.SevInfo:    mk(color.FgCyan, color.Bold),
		},
		code:  mk(color.Bold),
		caret: mk(color.FgGreen, color.Bold),
		note:  mk(color.FgBlue, color.Bold),
		dim:   mk(color.FgHiBlack),
	}
}

// Pretty writes the diagnostics in bag in a human-readable form, in bag
// order (callers sort the bag first when they want file order):
//
//	<path>:<line>:<col>: <SEV> <CODE>: <message>
//	  <n> | <source line>
//	      |     ^~~~
//	  note: <path>:<line>:<col>: <message>
func Pretty(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts PrettyOpts) error {
	bw := bufio.NewWriter(w)
	pal := newPalette(opts.Color)
	for _, d := range bag.Items() {
		sev := pal.sev[d.Severity]
		if sev == nil {
			sev = pal.code
		}
		fmt.Fprintf(bw, "%s: %s %s: %s\n",
			position(fs, d.Primary, opts), sev.Sprint(d.Severity.String()), pal.code.Sprint(d.Code.ID()), d.Message)
		snippet(bw, fs, d.Primary, pal)
		if !opts.ShowNotes {
			continue
		}
		for _, n := range d.Notes {
			fmt.Fprintf(bw, "  %s %s: %s\n", pal.note.Sprint("note:"), position(fs, n.Span, opts), n.Msg)
		}
	}
	return bw.Flush()
}

func position(fs *source.FileSet, sp source.Span, opts PrettyOpts) string {
	f := fs.Get(sp.File)
	if f == nil {
		return synthesized
	}
	start, _ := fs.Resolve(sp)
	return fmt.Sprintf("%s:%d:%d", displayPath(f, opts.PathMode, opts.BaseDir), start.Line, start.Col)
}

// snippet prints the primary line of sp with a caret underline. Spans that
// cross lines are underlined to the end of the first line.
func snippet(w io.Writer, fs *source.FileSet, sp source.Span, pal palette) {
	f := fs.Get(sp.File)
	if f == nil {
		return
	}
	start, end := fs.Resolve(sp)
	line := f.Line(start.Line)
	if line == "" && start.Col <= 1 {
		return
	}
	from := min(int(start.Col)-1, len(line))
	to := len(line)
	if end.Line == start.Line {
		to = min(max(int(end.Col)-1, from), len(line))
	}
	pad := runewidth.StringWidth(expandTabs(line[:from]))
	width := max(runewidth.StringWidth(expandTabs(line[from:to])), 1)

	num := strconv.FormatUint(uint64(start.Line), 10)
	gutter := strings.Repeat(" ", len(num))
	fmt.Fprintf(w, "  %s %s %s\n", pal.dim.Sprint(num), pal.dim.Sprint("|"), expandTabs(line))
	fmt.Fprintf(w, "  %s %s %s%s\n", gutter, pal.dim.Sprint("|"), strings.Repeat(" ", pad),
		pal.caret.Sprint("^"+strings.Repeat("~", width-1)))
}

func expandTabs(s string) string {
	return strings.ReplaceAll(s, "\t", strings.Repeat(" ", tabWidth))
}

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"reflex/internal/meta"
)

type tableRow struct {
	ID      uint32 `json:"id"`
	Name    string `json:"name"`
	Result  string `json:"result"`
	Arity   string `json:"arity"`
	Vacuous bool   `json:"vacuous_false"`
}

func newTableCmd() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "table [name-or-id...]",
		Short: "List the metafunction table",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, cleanup, err := loadSettings(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			rows, err := selectRows(args)
			if err != nil {
				return err
			}
			switch format {
			case "pretty":
				renderTable(cmd.OutOrStdout(), rows, st.color)
				return nil
			case "json":
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(rows)
			default:
				return fmt.Errorf("unsupported format %q (must be pretty or json)", format)
			}
		},
	}
	cmd.Flags().StringVar(&format, "format", "pretty", "output format (pretty|json)")
	return cmd
}

func rowOf(e *meta.Entry) tableRow {
	arity := strconv.Itoa(e.MinArgs)
	switch {
	case e.MaxArgs == meta.Variadic:
		arity += "+"
	case e.MaxArgs != e.MinArgs:
		arity += ".." + strconv.Itoa(e.MaxArgs)
	}
	return tableRow{
		ID:      uint32(e.ID),
		Name:    e.Name,
		Result:  e.Result.String(),
		Arity:   arity,
		Vacuous: meta.IsVacuousFalse(e.ID),
	}
}

// selectRows picks entries by name or numeric ID; no selectors means all.
func selectRows(selectors []string) ([]tableRow, error) {
	if len(selectors) == 0 {
		entries := meta.Entries()
		rows := make([]tableRow, len(entries))
		for i := range entries {
			rows[i] = rowOf(&entries[i])
		}
		return rows, nil
	}
	rows := make([]tableRow, 0, len(selectors))
	for _, sel := range selectors {
		e, ok := meta.LookupName(sel)
		if !ok {
			if n, err := strconv.ParseUint(sel, 10, 32); err == nil {
				e, ok = meta.Lookup(meta.ID(n))
			}
		}
		if !ok {
			return nil, fmt.Errorf("unknown metafunction %q", sel)
		}
		rows = append(rows, rowOf(e))
	}
	return rows, nil
}

func renderTable(w io.Writer, rows []tableRow, colored bool) {
	data := make([][]string, len(rows))
	for i, r := range rows {
		vac := ""
		if r.Vacuous {
			vac = "yes"
		}
		data[i] = []string{strconv.FormatUint(uint64(r.ID), 10), r.Name, r.Result, r.Arity, vac}
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("ID", "NAME", "RESULT", "ARITY", "VACUOUS").
		Rows(data...)
	if colored {
		header := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("6")).Padding(0, 1)
		cell := lipgloss.NewStyle().Padding(0, 1)
		t = t.BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("8"))).
			StyleFunc(func(row, _ int) lipgloss.Style {
				if row == 0 {
					return header
				}
				return cell
			})
	} else {
		plain := lipgloss.NewStyle().Padding(0, 1)
		t = t.StyleFunc(func(_, _ int) lipgloss.Style { return plain })
	}
	fmt.Fprintln(w, t.Render())
}

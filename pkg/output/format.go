// Package output provides utilities for formatting and displaying curve tables.
package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/iwvelando/compound-curves/internal/curve"
	"github.com/iwvelando/compound-curves/internal/session"
	"github.com/iwvelando/compound-curves/internal/store"
	"github.com/iwvelando/compound-curves/pkg/format"
)

// PrettyFormat writes a human-readable rather than machine-readable table.
func PrettyFormat(w io.Writer, frame session.Frame) {
	p := frame.Params
	fmt.Fprintf(w, "--- %s of %s at %s over %d years ---\n",
		p.Mode.Title(), format.Currency(p.Principal), format.Percent(p.Rate), p.Years)

	width := len("Value")
	for _, row := range frame.Rows {
		if len(row.Display) > width {
			width = len(row.Display)
		}
	}
	fmt.Fprintf(w, "Year | %*s\n", width, "Value")
	fmt.Fprintf(w, "____ | %s\n", strings.Repeat("_", width))
	for _, row := range frame.Rows {
		fmt.Fprintf(w, "%4d | %*s\n", row.Year, width, row.Display)
	}

	if len(frame.Curves) > 0 {
		fmt.Fprintf(w, "\n--- Stored curves ---\n")
		for _, c := range frame.Curves {
			fmt.Fprintf(w, "%s %s -> %s\n", c.Color, c.Label, format.Currency(curve.Final(c.Points)))
		}
	}
}

// CsvFormat writes the preview table in comma-separated value format.
func CsvFormat(w io.Writer, frame session.Frame) {
	fmt.Fprintf(w, `"year","value (%s)"`+"\n", frame.Params.Mode)
	for _, row := range frame.Rows {
		fmt.Fprintf(w, `"%d","%.2f"`+"\n", row.Year, row.Value)
	}
}

// CurvesCsv writes the stored curves side by side, one column per curve.
// Curves of different horizons leave trailing cells empty.
func CurvesCsv(w io.Writer, curves []store.Curve) {
	fmt.Fprintf(w, `"year"`)
	longest := 0
	for _, c := range curves {
		fmt.Fprintf(w, `,"%s"`, strings.ReplaceAll(c.Label, `"`, `""`))
		if len(c.Points) > longest {
			longest = len(c.Points)
		}
	}
	fmt.Fprintf(w, "\n")
	for year := 0; year < longest; year++ {
		fmt.Fprintf(w, `"%d"`, year)
		for _, c := range curves {
			if year < len(c.Points) {
				fmt.Fprintf(w, `,"%.2f"`, c.Points[year].Value)
			} else {
				fmt.Fprintf(w, `,""`)
			}
		}
		fmt.Fprintf(w, "\n")
	}
}

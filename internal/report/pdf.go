// Package report renders a printable comparison report of a session.
package report

import (
	"bytes"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/iwvelando/compound-curves/internal/curve"
	"github.com/iwvelando/compound-curves/internal/session"
	"github.com/iwvelando/compound-curves/pkg/format"
)

const (
	marginLeft   = 20.0
	marginTop    = 20.0
	marginRight  = 20.0
	marginBottom = 20.0
	pageWidth    = 210.0
	contentWidth = pageWidth - marginLeft - marginRight
)

// Report accumulates one PDF document.
type Report struct {
	pdf *fpdf.Fpdf
	tr  func(string) string
	now func() time.Time
}

// New creates an empty A4 report.
func New() *Report {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(marginLeft, marginTop, marginRight)
	pdf.SetAutoPageBreak(true, marginBottom)
	return &Report{
		pdf: pdf,
		tr:  pdf.UnicodeTranslatorFromDescriptor(""),
		now: time.Now,
	}
}

// PDF writes the report for frame to w.
func PDF(w io.Writer, frame session.Frame) error {
	return New().Write(w, frame)
}

// Write lays out frame and writes the finished document to w.
func (r *Report) Write(w io.Writer, frame session.Frame) error {
	r.pdf.AddPage()
	r.header(frame)
	r.parameters(frame)
	r.table(frame)
	r.curves(frame)

	var buf bytes.Buffer
	if err := r.pdf.Output(&buf); err != nil {
		return fmt.Errorf("failed to render PDF report: %w", err)
	}
	if _, err := w.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("failed to write PDF report: %w", err)
	}
	return nil
}

func (r *Report) header(frame session.Frame) {
	r.pdf.SetFont("Arial", "B", 20)
	r.pdf.SetTextColor(0, 51, 102)
	r.pdf.CellFormat(contentWidth, 12, r.tr(frame.Params.Mode.Title()+" Calculator"), "", 1, "C", false, 0, "")

	r.pdf.SetFont("Arial", "I", 10)
	r.pdf.SetTextColor(120, 120, 120)
	r.pdf.CellFormat(contentWidth, 6, fmt.Sprintf("Generated: %s", r.now().Format("2 January 2006 15:04")), "", 1, "C", false, 0, "")
	r.pdf.Ln(6)
}

func (r *Report) parameters(frame session.Frame) {
	p := frame.Params
	r.sectionTitle("Parameters")
	r.pdf.SetFont("Arial", "", 11)
	r.pdf.SetTextColor(50, 50, 50)
	lines := []string{
		"Principal: " + format.Currency(p.Principal),
		"Annual rate: " + format.Percent(p.Rate),
		fmt.Sprintf("Horizon: %d years, compounded annually", p.Years),
	}
	for _, line := range lines {
		r.pdf.CellFormat(contentWidth, 7, r.tr(line), "", 1, "L", false, 0, "")
	}
	r.pdf.Ln(4)
}

func (r *Report) table(frame session.Frame) {
	r.sectionTitle("Preview")
	yearWidth := 30.0
	valueWidth := 60.0

	r.pdf.SetFont("Arial", "B", 10)
	r.pdf.SetFillColor(230, 230, 230)
	r.pdf.SetDrawColor(200, 200, 200)
	r.pdf.SetTextColor(0, 0, 0)
	r.pdf.CellFormat(yearWidth, 7, "Year", "1", 0, "C", true, 0, "")
	r.pdf.CellFormat(valueWidth, 7, "Value", "1", 1, "C", true, 0, "")

	r.pdf.SetFont("Arial", "", 10)
	for _, row := range frame.Rows {
		r.setFill(row.Background)
		r.setText(row.Foreground)
		r.pdf.CellFormat(yearWidth, 6, strconv.Itoa(row.Year), "1", 0, "C", true, 0, "")
		r.pdf.CellFormat(valueWidth, 6, r.tr(row.Display), "1", 1, "R", true, 0, "")
	}
	r.pdf.SetTextColor(0, 0, 0)
	r.pdf.Ln(4)
}

func (r *Report) curves(frame session.Frame) {
	r.sectionTitle(fmt.Sprintf("Stored curves (%d)", len(frame.Curves)))
	r.pdf.SetFont("Arial", "", 10)
	r.pdf.SetTextColor(50, 50, 50)
	if len(frame.Curves) == 0 {
		r.pdf.CellFormat(contentWidth, 6, "No curves committed.", "", 1, "L", false, 0, "")
		return
	}
	for _, c := range frame.Curves {
		r.setFill(c.Color)
		r.pdf.CellFormat(6, 6, "", "1", 0, "C", true, 0, "")
		r.pdf.CellFormat(4, 6, "", "", 0, "L", false, 0, "")
		r.pdf.CellFormat(110, 6, r.tr(c.Label), "", 0, "L", false, 0, "")
		r.pdf.CellFormat(contentWidth-120, 6, r.tr(format.Currency(curve.Final(c.Points))), "", 1, "R", false, 0, "")
	}
}

func (r *Report) sectionTitle(title string) {
	r.pdf.SetFont("Arial", "B", 12)
	r.pdf.SetTextColor(0, 51, 102)
	r.pdf.CellFormat(contentWidth, 8, r.tr(title), "B", 1, "L", false, 0, "")
	r.pdf.Ln(2)
}

func (r *Report) setFill(hex string) {
	red, green, blue, ok := parseHex(hex)
	if !ok {
		red, green, blue = 255, 255, 255
	}
	r.pdf.SetFillColor(red, green, blue)
}

func (r *Report) setText(hex string) {
	red, green, blue, ok := parseHex(hex)
	if !ok {
		red, green, blue = 0, 0, 0
	}
	r.pdf.SetTextColor(red, green, blue)
}

func parseHex(hex string) (int, int, int, bool) {
	hex = strings.TrimPrefix(hex, "#")
	if len(hex) != 6 {
		return 0, 0, 0, false
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return 0, 0, 0, false
	}
	return int(v >> 16 & 0xff), int(v >> 8 & 0xff), int(v & 0xff), true
}

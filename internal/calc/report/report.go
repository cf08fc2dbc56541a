package report

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/phpdave11/gofpdf"

	"Civica/internal/calc/quantity"
	"Civica/internal/calc/session"
	"Civica/internal/calc/units"
)

// Render writes a one-document PDF of the snapshot: header, inputs, results.
func Render(w io.Writer, snap session.Snapshot, now time.Time) error {
	return render(w, snap, now, true)
}

// document wraps gofpdf so every string passes through the cp1252 translator
// of the core fonts (m³, °C and the like).
type document struct {
	*gofpdf.Fpdf
	tr func(string) string
}

func (d document) Cell(w, h float64, text string) { d.Fpdf.Cell(w, h, d.tr(text)) }

func (d document) CellFormat(w, h float64, text, border string, ln int, align string, fill bool, link int, linkStr string) {
	d.Fpdf.CellFormat(w, h, d.tr(text), border, ln, align, fill, link, linkStr)
}

func (d document) MultiCell(w, h float64, text, border, align string, fill bool) {
	d.Fpdf.MultiCell(w, h, d.tr(text), border, align, fill)
}

func render(w io.Writer, snap session.Snapshot, now time.Time, compress bool) error {
	f := gofpdf.New("P", "mm", "A4", "")
	f.SetCompression(compress)
	pdf := document{Fpdf: f, tr: f.UnicodeTranslatorFromDescriptor("")}
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(0, 10, snap.CalculatorName)
	pdf.Ln(12)
	pdf.SetFont("Helvetica", "", 11)
	pdf.Cell(0, 6, fmt.Sprintf("Standard: %s", snap.StandardTitle))
	pdf.Ln(6)
	if snap.StandardClause != "" {
		pdf.Cell(0, 6, fmt.Sprintf("Clause: %s", snap.StandardClause))
		pdf.Ln(6)
	}
	pdf.Cell(0, 6, fmt.Sprintf("Date: %s", now.Format("2006-01-02")))
	pdf.Ln(10)

	writeInputs(pdf, snap)

	if snap.Output == nil {
		pdf.SetFont("Helvetica", "I", 11)
		pdf.Cell(0, 6, "No result: inputs are incomplete.")
		pdf.Ln(6)
	} else {
		out := snap.Output
		if len(out.Gradation) > 0 {
			writeGradation(pdf, out)
		}
		if out.Quantity != nil {
			writeQuantities(pdf, out.Quantity)
		}
		if out.BOD != nil {
			writeBOD(pdf, out.BOD)
		}
	}

	for _, warn := range snap.Warnings {
		pdf.SetFont("Helvetica", "I", 9)
		pdf.MultiCell(0, 5, "Note: "+warn, "", "L", false)
	}
	return pdf.Output(w)
}

func heading(pdf document, text string) {
	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, text)
	pdf.Ln(8)
	pdf.SetFont("Helvetica", "", 10)
}

func writeInputs(pdf document, snap session.Snapshot) {
	in := snap.Input
	heading(pdf, "Inputs")
	if in.Sample.TotalWeight > 0 || len(in.Sample.Retained) > 0 {
		pdf.Cell(0, 6, fmt.Sprintf("Total sample weight: %.2f g", in.Sample.TotalWeight))
		pdf.Ln(6)
	}
	if len(in.Geometry.Dimensions) > 0 {
		names := make([]string, 0, len(in.Geometry.Dimensions))
		for name := range in.Geometry.Dimensions {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			m := in.Geometry.Meters(name)
			pdf.Cell(0, 6, fmt.Sprintf("%s: %s", name, units.FormatLength(m, in.Geometry.System)))
			pdf.Ln(6)
		}
	}
	if in.Surface != "" {
		pdf.Cell(0, 6, fmt.Sprintf("Surface: %s, rate %.3f", in.Surface, in.Rate))
		pdf.Ln(6)
	}
	if in.Count > 0 {
		pdf.Cell(0, 6, fmt.Sprintf("Count: %d", in.Count))
		pdf.Ln(6)
	}
	pdf.Ln(4)
}

func writeGradation(pdf document, out *session.Result) {
	heading(pdf, "Sieve analysis")
	cols := []struct {
		title string
		width float64
	}{
		{"Sieve", 25}, {"Retained g", 25}, {"% Ret", 22}, {"Cum % Ret", 25},
		{"% Pass", 22}, {"Band", 30}, {"Status", 20},
	}
	pdf.SetFont("Helvetica", "B", 9)
	for _, c := range cols {
		pdf.CellFormat(c.width, 7, c.title, "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)
	pdf.SetFont("Helvetica", "", 9)
	for _, r := range out.Gradation {
		cells := []string{
			r.Label,
			fmt.Sprintf("%.2f", r.Retained),
			fmt.Sprintf("%.2f", r.PercentRetained),
			fmt.Sprintf("%.2f", r.CumulativePercentRetained),
			fmt.Sprintf("%.2f", r.PercentPassing),
			fmt.Sprintf("%g - %g", r.MinPassing, r.MaxPassing),
			string(r.Status),
		}
		for i, c := range cells {
			pdf.CellFormat(cols[i].width, 6, c, "1", 0, "C", false, 0, "")
		}
		pdf.Ln(-1)
	}
	if s := out.Summary; s != nil {
		pdf.Ln(3)
		verdict := "All sieves within limits"
		if !s.AllPass {
			verdict = fmt.Sprintf("Out of limits: %v", s.Failures)
		}
		pdf.Cell(0, 6, fmt.Sprintf("Pan: %.2f g (%.2f%%). %s", s.PanWeight, s.PanPercent, verdict))
		pdf.Ln(8)
	}
}

func writeQuantities(pdf document, q *quantity.Result) {
	heading(pdf, "Quantities")
	for _, item := range q.Quantities {
		pdf.CellFormat(70, 6, item.Name, "1", 0, "L", false, 0, "")
		pdf.CellFormat(50, 6, fmt.Sprintf("%.3f", item.Value), "1", 0, "R", false, 0, "")
		pdf.CellFormat(30, 6, item.Unit, "1", 0, "L", false, 0, "")
		pdf.Ln(-1)
	}
	pdf.Ln(4)
}

func writeBOD(pdf document, b *quantity.BODResult) {
	heading(pdf, fmt.Sprintf("BOD (%g days at %g °C)", b.IncubationDays, b.TemperatureC))
	for i, row := range b.Rows {
		val := "-"
		if row.BOD != nil {
			val = fmt.Sprintf("%.2f mg/L", *row.BOD)
		}
		pdf.Cell(0, 6, fmt.Sprintf("Sample %d: %s", i+1, val))
		pdf.Ln(6)
	}
	if b.Average != nil {
		pdf.SetFont("Helvetica", "B", 10)
		pdf.Cell(0, 6, fmt.Sprintf("Average: %.2f mg/L", *b.Average))
		pdf.Ln(6)
	}
}

// Package textmetrics measures rendered text for content-aware sizing.
//
// Every measurer treats the requested size as the em height in the same unit
// as the returned width, so a size given in millimeters yields a width in
// millimeters. Measurers are not safe for concurrent use.
package textmetrics

import (
	"github.com/jung-kurt/gofpdf"
)

// PDF measures text with the Helvetica core font metrics used by the PDF
// exporter, so minimum sizes match printed output.
type PDF struct {
	pdf *gofpdf.Fpdf
	tr  func(string) string
}

// NewPDF returns a measurer backed by an unused gofpdf document.
func NewPDF() *PDF {
	pdf := gofpdf.New("P", "mm", "A4", "")
	return &PDF{
		pdf: pdf,
		tr:  pdf.UnicodeTranslatorFromDescriptor(""),
	}
}

// TextWidth returns the advance width of s at the given size.
func (m *PDF) TextWidth(s string, size float64, bold bool) float64 {
	if s == "" || size <= 0 {
		return 0
	}
	style := ""
	if bold {
		style = "B"
	}
	m.pdf.SetFont("Helvetica", style, 0)
	m.pdf.SetFontUnitSize(size)
	return m.pdf.GetStringWidth(m.tr(s))
}

// Package export writes templates as paginated PDF documents.
//
// The exporter walks a template in paint order and draws each element at its
// millimeter position. Placeholders are filled from a value map, the table
// element is expanded with the line items and continues on new pages when it
// reaches the footer reserve, and a footer with the item count and the
// generation date closes the last page. A template without visible elements
// is rendered with a fixed single-column layout instead.
//
// Example:
//
//	exp := export.New(export.WithCompression(false))
//	report, err := exp.ExportFile("quote.pdf", tpl, export.FromQuote(q))
package export

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/lvillar/doclayout/layout"
	"github.com/lvillar/doclayout/placeholder"
	"github.com/lvillar/doclayout/quote"
)

// Data is the content merged into a template.
type Data struct {
	Values placeholder.Values
	Items  []quote.Item
}

// FromQuote returns the export data for q.
func FromQuote(q *quote.Quote) Data {
	return Data{Values: q.Values(), Items: q.Items}
}

// TextRun is one string drawn on the document.
type TextRun struct {
	Page  int
	X, Y  float64 // left end of the baseline, mm
	Size  float64 // font size, pt
	Bold  bool    // always false inside the line-item table
	Color layout.RGB
	Text  string
}

// Report describes an exported document.
type Report struct {
	Pages      int
	FooterPage int
	Runs       []TextRun
	Rows       int  // line-item rows drawn
	Legacy     bool // the fixed fallback layout was used
}

// Find returns the first run whose text contains substr.
func (r *Report) Find(substr string) (TextRun, bool) {
	for _, run := range r.Runs {
		if strings.Contains(run.Text, substr) {
			return run, true
		}
	}
	return TextRun{}, false
}

// Count returns the number of runs whose text contains substr.
func (r *Report) Count(substr string) int {
	n := 0
	for _, run := range r.Runs {
		if strings.Contains(run.Text, substr) {
			n++
		}
	}
	return n
}

// Exporter renders templates to PDF. An Exporter holds no per-document
// state and may be reused.
type Exporter struct {
	cfg   config
	subst *placeholder.Engine
}

// New returns an exporter configured by opts.
func New(opts ...Option) *Exporter {
	cfg := newConfig(opts)
	return &Exporter{cfg: cfg, subst: placeholder.New(cfg.formatter)}
}

// Export renders t merged with d and writes the PDF to w.
func (e *Exporter) Export(w io.Writer, t *layout.Template, d Data) (*Report, error) {
	if t == nil {
		return nil, fmt.Errorf("export: nil template")
	}
	k, ok := unitScale(e.cfg.unit)
	if !ok {
		return nil, fmt.Errorf("export: unsupported unit %q", e.cfg.unit)
	}
	tpl := t.Clone()
	tpl.Normalize()

	doc := e.newDoc(tpl, d, k)
	if len(layout.PaintOrder(tpl.Elements, "")) == 0 {
		doc.report.Legacy = true
		doc.legacy()
	} else {
		doc.layout()
	}
	doc.footer()
	doc.reference()

	if doc.pdf.Err() {
		return nil, fmt.Errorf("export: %q: %w", tpl.Name, doc.pdf.Error())
	}
	if err := doc.pdf.Output(w); err != nil {
		return nil, fmt.Errorf("export: %q: write: %w", tpl.Name, err)
	}
	doc.report.Pages = doc.pdf.PageCount()

	e.cfg.logger.Info("exported document",
		"template", tpl.Name,
		"pages", doc.report.Pages,
		"rows", doc.report.Rows,
		"legacy", doc.report.Legacy)
	return &doc.report, nil
}

// ExportFile renders t merged with d to the file at path. Nothing is written
// when rendering fails.
func (e *Exporter) ExportFile(path string, t *layout.Template, d Data) (*Report, error) {
	var buf bytes.Buffer
	report, err := e.Export(&buf, t, d)
	if err != nil {
		return nil, err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return nil, fmt.Errorf("export: %w", err)
	}
	return report, nil
}

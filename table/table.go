package table

import (
	"github.com/jung-kurt/gofpdf"
)

// Column defines the properties of a table column.
type Column struct {
	Ratio float64 // share of the table width relative to the other columns
	Align string  // "L", "C" or "R"
}

// LineItemColumns are the quotation columns: product, quantity,
// presentation, unit price, discount and total.
var LineItemColumns = []Column{
	{Ratio: 80, Align: "L"},
	{Ratio: 20, Align: "C"},
	{Ratio: 25, Align: "C"},
	{Ratio: 30, Align: "R"},
	{Ratio: 25, Align: "R"},
	{Ratio: 30, Align: "R"},
}

// TextFunc observes every string drawn by a table. x and y are the left end
// of the baseline in document units.
type TextFunc func(x, y float64, s string)

// Result describes a rendered table.
type Result struct {
	EndY       float64 // y of the closing rule
	PageBreaks int     // pages added while rendering
	Rows       int     // body rows drawn, not counting the empty row
}

// Table is a line-item table builder.
type Table struct {
	pdf       *gofpdf.Fpdf
	tr        func(string) string
	columns   []Column
	header    *Row
	rows      []*Row
	style     Style
	x, y      float64 // header baseline origin
	width     float64 // 0 means page width minus margins
	breakAt   float64 // 0 means page height minus bottom margin
	restartY  float64 // header baseline on continuation pages
	emptyText string
	onText    TextFunc
}

// New creates a new Table associated with the given PDF document.
func New(pdf *gofpdf.Fpdf) *Table {
	return &Table{
		pdf:     pdf,
		tr:      pdf.UnicodeTranslatorFromDescriptor(""),
		columns: LineItemColumns,
		style:   DefaultStyle(9),
	}
}

// SetColumns sets column definitions for the table.
func (t *Table) SetColumns(cols ...Column) *Table {
	t.columns = cols
	return t
}

// SetStyle sets the table-wide style.
func (t *Table) SetStyle(s Style) *Table {
	t.style = s
	return t
}

// SetPosition sets the left edge and the header baseline.
func (t *Table) SetPosition(x, y float64) *Table {
	t.x = x
	t.y = y
	return t
}

// SetWidth sets the total table width.
func (t *Table) SetWidth(w float64) *Table {
	t.width = w
	return t
}

// SetBreak starts a new page whenever the cursor passes limit before a row,
// continuing with the header at restartY.
func (t *Table) SetBreak(limit, restartY float64) *Table {
	t.breakAt = limit
	t.restartY = restartY
	return t
}

// SetEmptyText sets the muted text drawn in place of rows when the table has
// none.
func (t *Table) SetEmptyText(s string) *Table {
	t.emptyText = s
	return t
}

// OnText registers fn to observe every string the table draws.
func (t *Table) OnText(fn TextFunc) *Table {
	t.onText = fn
	return t
}

// Header returns the header row, creating it on first use. The header is
// repeated at the top of each continuation page.
func (t *Table) Header() *Row {
	if t.header == nil {
		t.header = &Row{}
	}
	return t.header
}

// AddRow adds a new data row to the table and returns it for chaining.
func (t *Table) AddRow() *Row {
	r := &Row{}
	t.rows = append(t.rows, r)
	return r
}

// Widths returns the column widths scaled to the table width.
func (t *Table) Widths() []float64 {
	total := t.width
	if total <= 0 {
		pageW, _ := t.pdf.GetPageSize()
		l, _, r, _ := t.pdf.GetMargins()
		total = pageW - l - r
	}
	var sum float64
	for _, c := range t.columns {
		sum += c.Ratio
	}
	widths := make([]float64, len(t.columns))
	if sum <= 0 {
		return widths
	}
	for i, c := range t.columns {
		widths[i] = c.Ratio / sum * total
	}
	return widths
}

// Render draws the table to the PDF document.
func (t *Table) Render() (Result, error) {
	if t.pdf.Err() {
		return Result{}, t.pdf.Error()
	}

	widths := t.Widths()
	var tableW float64
	for _, w := range widths {
		tableW += w
	}
	limit := t.breakAt
	if limit <= 0 {
		_, pageH := t.pdf.GetPageSize()
		_, _, _, b := t.pdf.GetMargins()
		limit = pageH - b
	}
	restart := t.restartY
	if restart <= 0 {
		restart = t.y
	}

	var res Result
	y := t.renderHeader(widths, tableW, t.y)

	if len(t.rows) == 0 && t.emptyText != "" {
		t.setFont(t.style.BodyFont, false)
		t.setColor(Muted)
		t.text(t.x, y, tableW, "C", t.emptyText)
		y += t.style.RowHeight
	}

	for _, r := range t.rows {
		if y > limit {
			t.pdf.AddPage()
			res.PageBreaks++
			y = t.renderHeader(widths, tableW, restart)
		}
		t.renderRow(r, widths, y)
		if r.note != "" {
			y += t.style.NoteRowHeight
		} else {
			y += t.style.RowHeight
		}
		res.Rows++
	}

	y += t.style.ClosingGap
	t.rule(y, tableW)
	t.setColor(Black)
	res.EndY = y
	return res, t.pdf.Error()
}

// renderHeader draws the header row with its rule at baseline y and returns
// the baseline of the first body row.
func (t *Table) renderHeader(widths []float64, tableW, y float64) float64 {
	if t.header == nil {
		return y
	}
	x := t.x
	for i, cell := range t.header.cells {
		if i >= len(widths) {
			break
		}
		style := t.resolve(cell, t.header, i)
		t.setFont(t.style.HeaderFont, style.Bold)
		t.setColor(*style.TextColor)
		t.text(x, y, widths[i], style.Align, cell.text)
		x += widths[i]
	}
	t.setColor(Black)
	y += t.style.HeaderGap
	t.rule(y, tableW)
	return y + t.style.HeaderGap
}

func (t *Table) renderRow(r *Row, widths []float64, y float64) {
	x := t.x
	for i, cell := range r.cells {
		if i >= len(widths) {
			break
		}
		style := t.resolve(cell, r, i)
		t.setFont(t.style.BodyFont, style.Bold)
		t.setColor(*style.TextColor)
		t.text(x, y, widths[i], style.Align, cell.text)

		if i == 0 && r.note != "" {
			t.setFont(t.style.NoteFont, false)
			t.setColor(t.style.NoteColor)
			t.text(x, y+t.style.NoteOffset, widths[i], "L", r.note)
		}
		x += widths[i]
	}
	t.setColor(Black)
}

// resolve merges column, row and cell styles. The result always has a text
// color and an alignment.
func (t *Table) resolve(cell *Cell, row *Row, col int) CellStyle {
	black := Black
	out := CellStyle{TextColor: &black, Align: "L"}
	if col < len(t.columns) && t.columns[col].Align != "" {
		out.Align = t.columns[col].Align
	}
	for _, s := range []*CellStyle{row.style, cell.style} {
		if s == nil {
			continue
		}
		if s.TextColor != nil {
			out.TextColor = s.TextColor
		}
		if s.Align != "" {
			out.Align = s.Align
		}
		out.Bold = out.Bold || s.Bold
	}
	return out
}

// text draws s on baseline y inside the column [x, x+w] with the given
// alignment.
func (t *Table) text(x, y, w float64, align, s string) {
	if s == "" {
		return
	}
	enc := t.tr(s)
	sw := t.pdf.GetStringWidth(enc)
	tx := x + t.style.Inset
	switch align {
	case "C":
		tx = x + (w-sw)/2
	case "R":
		tx = x + w - t.style.Inset - sw
	}
	t.pdf.Text(tx, y, enc)
	if t.onText != nil {
		t.onText(tx, y, s)
	}
}

func (t *Table) rule(y, w float64) {
	c := t.style.RuleColor
	t.pdf.SetDrawColor(c.R, c.G, c.B)
	t.pdf.SetLineWidth(t.style.RuleWidth)
	t.pdf.Line(t.x, y, t.x+w, y)
}

func (t *Table) setFont(f FontSpec, bold bool) {
	style := f.Style
	if bold && style == "" {
		style = "B"
	}
	t.pdf.SetFont(f.Family, style, f.Size)
}

func (t *Table) setColor(c RGBColor) {
	t.pdf.SetTextColor(c.R, c.G, c.B)
}

package export

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/boombuler/barcode/qr"
	"github.com/jung-kurt/gofpdf"
	"github.com/jung-kurt/gofpdf/contrib/barcode"

	"github.com/lvillar/doclayout/layout"
	"github.com/lvillar/doclayout/placeholder"
	"github.com/lvillar/doclayout/table"
)

// Default banner texts, used when the title or subtitle block is missing.
const (
	DefaultTitle    = "COTIZACIÓN - NOTA DE VENTA"
	DefaultSubtitle = "Sistema de Gestión"
)

var (
	black = layout.RGB{}
	white = layout.RGB{R: 255, G: 255, B: 255}
	gray  = layout.RGB{R: 100, G: 100, B: 100}
	red   = layout.RGB{R: 220, G: 38, B: 38}
	rule  = layout.RGB{R: 200, G: 200, B: 200}
)

// doc is the state of one export. All positions it takes are millimeters.
type doc struct {
	pdf    *gofpdf.Fpdf
	tr     func(string) string
	k      float64 // document units per mm
	cfg    *config
	tpl    *layout.Template
	data   Data
	subst  *placeholder.Engine
	report Report

	tableEnd float64 // where a following summary starts; 0 before any table
	bold     bool
}

func (e *Exporter) newDoc(tpl *layout.Template, d Data, k float64) *doc {
	pdf := gofpdf.New("P", e.cfg.unit, "A4", "")
	pdf.SetCompression(e.cfg.compress)
	m := tpl.Margin * k
	pdf.SetMargins(m, m, m)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetTitle(tpl.Name, true)
	pdf.SetCreator("doclayout", true)
	if e.cfg.author != "" {
		pdf.SetAuthor(e.cfg.author, true)
	}
	pdf.AddPage()
	return &doc{
		pdf:   pdf,
		tr:    pdf.UnicodeTranslatorFromDescriptor(""),
		k:     k,
		cfg:   &e.cfg,
		tpl:   tpl,
		data:  d,
		subst: e.subst,
	}
}

func (d *doc) fill(s string) string {
	return d.subst.Substitute(s, d.data.Values)
}

func (d *doc) font(size float64, bold bool) {
	style := ""
	if bold {
		style = "B"
	}
	d.pdf.SetFont("Helvetica", style, size)
	d.bold = bold
}

func (d *doc) color(c layout.RGB) {
	d.pdf.SetTextColor(c.R, c.G, c.B)
}

// text draws s on baseline y. x is the left edge, the center or the right
// edge depending on align.
func (d *doc) text(x, y float64, align layout.Align, s string) {
	if s == "" {
		return
	}
	enc := d.tr(s)
	w := d.pdf.GetStringWidth(enc) / d.k
	switch align {
	case layout.AlignCenter:
		x -= w / 2
	case layout.AlignRight:
		x -= w
	}
	d.pdf.Text(x*d.k, y*d.k, enc)
	d.record(x, y, d.bold, s)
}

func (d *doc) record(x, y float64, bold bool, s string) {
	size, _ := d.pdf.GetFontSize()
	r, g, b := d.pdf.GetTextColor()
	d.report.Runs = append(d.report.Runs, TextRun{
		Page:  d.pdf.PageNo(),
		X:     x,
		Y:     y,
		Size:  size,
		Bold:  bold,
		Color: layout.RGB{R: r, G: g, B: b},
		Text:  s,
	})
}

func (d *doc) rule(x1, y, x2 float64) {
	d.pdf.SetDrawColor(rule.R, rule.G, rule.B)
	d.pdf.SetLineWidth(0.5 * d.k)
	d.pdf.Line(x1*d.k, y*d.k, x2*d.k, y*d.k)
}

func (d *doc) visibleText(id string) (*layout.TextBlock, bool) {
	tb, ok := d.tpl.FindText(id)
	if !ok || !tb.Frame.Visible {
		return nil, false
	}
	return tb, true
}

// layout draws every visible element in paint order.
func (d *doc) layout() {
	hasBanner := false
	for _, el := range d.tpl.Elements {
		if el.Kind() == layout.KindBanner && el.Box().Visible {
			hasBanner = true
		}
	}
	for _, el := range layout.PaintOrder(d.tpl.Elements, "") {
		switch e := el.(type) {
		case *layout.Banner:
			d.banner(e)
		case *layout.TextBlock:
			d.textBlock(e, hasBanner)
		case *layout.Table:
			d.table(e)
		case *layout.SummaryBlock:
			d.summary(e)
		}
	}
}

// banner fills the strip across the page and draws the title and subtitle
// centered inside it.
func (d *doc) banner(e *layout.Banner) {
	b := e.Frame
	c := layout.ParseColor(e.Background, layout.ParseColor(d.tpl.PrimaryColor, black))
	d.pdf.SetFillColor(c.R, c.G, c.B)
	d.pdf.Rect(0, b.Y*d.k, max(b.Width, layout.PageWidth)*d.k, b.Height*d.k, "F")

	title, size := DefaultTitle, 20.0
	if tb, ok := d.visibleText(layout.IDTitle); ok {
		if tb.Text != "" {
			title = tb.Text
		}
		size = max(tb.FontSize, 20)
	}
	d.font(size, true)
	d.color(white)
	d.text(layout.PageWidth/2, b.Y+12, layout.AlignCenter, d.fill(title))

	subtitle, size := DefaultSubtitle, 12.0
	if tb, ok := d.visibleText(layout.IDSubtitle); ok {
		if tb.Text != "" {
			subtitle = tb.Text
		}
		size = max(tb.FontSize, 12)
	}
	d.font(size, false)
	d.text(layout.PageWidth/2, b.Y+25, layout.AlignCenter, d.fill(subtitle))
	d.color(black)
}

func isDivider(e *layout.TextBlock) bool {
	switch e.Frame.ID {
	case layout.IDDivider1, layout.IDDivider2:
		return true
	}
	return e.Frame.Height <= 2 && strings.TrimSpace(e.Text) == ""
}

func (d *doc) textBlock(e *layout.TextBlock, hasBanner bool) {
	b := e.Frame
	switch {
	case (b.ID == layout.IDTitle || b.ID == layout.IDSubtitle) && hasBanner:
		return
	case isDivider(e):
		d.rule(b.X, b.Y, b.Right())
		return
	}

	lines := strings.Split(d.fill(e.Text), "\n")
	y := b.Y + 4
	switch b.ID {
	case layout.IDInfo:
		first := lines[0]
		if first == "" {
			first = "INFORMACIÓN DE LA COTIZACIÓN"
		}
		d.font(e.FontSize, true)
		d.color(black)
		d.text(b.X, y, layout.AlignLeft, first)
		y += 5
		d.font(e.FontSize, e.Bold)
		for _, line := range lines[1:] {
			d.text(b.X, y, layout.AlignLeft, line)
			y += 4.5
		}

	case layout.IDTotals:
		d.font(max(e.FontSize, 11), e.Bold)
		for _, line := range lines {
			d.color(black)
			label, value, ok := splitPair(line)
			if !ok {
				d.text(d.tpl.Margin, y, layout.AlignLeft, line)
				y += 5
				continue
			}
			d.text(d.tpl.Margin, y, layout.AlignLeft, label)
			if strings.Contains(line, "Descuento General") {
				d.color(red)
			}
			d.text(layout.PageWidth-d.tpl.Margin, y, layout.AlignRight, value)
			y += 5
		}
		d.color(black)

	case layout.IDTotal:
		d.font(e.FontSize, true)
		d.color(layout.ParseColor(d.tpl.Accent(), black))
		if label, value, ok := splitPair(lines[0]); ok {
			d.text(d.tpl.Margin, y, layout.AlignLeft, label)
			d.text(layout.PageWidth-d.tpl.Margin, y, layout.AlignRight, value)
		} else {
			d.text(b.Right()-2, y, layout.AlignRight, lines[0])
		}
		d.color(black)

	case layout.IDObservations:
		d.font(max(e.FontSize, 11), e.Bold)
		d.color(black)
		for _, line := range lines {
			d.text(b.X, y, layout.AlignLeft, line)
			y += 5.5
		}

	default:
		size := max(e.FontSize, 11)
		d.font(size, e.Bold)
		d.color(layout.ParseColor(e.Color, black))
		x := b.X
		switch e.Align {
		case layout.AlignCenter:
			x = b.X + b.Width/2
		case layout.AlignRight:
			x = b.Right() - 2
		}
		lh := size * 0.5
		for i, line := range lines {
			d.text(x, b.Y+float64(i+1)*lh+5, e.Align, line)
		}
		d.color(black)
	}
}

// splitPair splits "Label: value" lines. Lines with no colon or more than
// one are not pairs.
func splitPair(line string) (label, value string, ok bool) {
	parts := strings.Split(line, ":")
	if len(parts) != 2 {
		return "", "", false
	}
	return parts[0] + ":", strings.TrimSpace(parts[1]), true
}

// table draws the title above the element and the line items from its top
// edge, continuing on new pages below the footer reserve.
func (d *doc) table(e *layout.Table) {
	b := e.Frame
	d.rule(b.X, b.Y-10, b.Right())
	d.font(max(e.FontSize+1, 12), true)
	d.color(layout.ParseColor(e.TitleColor, black))
	d.text(b.X, b.Y-4, layout.AlignLeft, d.fill(e.Title))
	d.color(black)

	k := d.k
	width := min(b.Width, layout.PageWidth)
	limit := layout.PageHeight - d.cfg.footerReserve
	tb := table.New(d.pdf).
		SetStyle(table.DefaultStyle(e.FontSize).Scaled(k)).
		SetPosition(b.X*k, (b.Y+2)*k).
		SetWidth(width*k).
		SetBreak(limit*k, (b.Y+2)*k).
		SetEmptyText("Sin productos").
		OnText(func(x, y float64, s string) { d.record(x/k, y/k, false, s) })

	h := tb.Header()
	for _, col := range e.Headers {
		c := layout.ParseColor(col.Color, black)
		h.AddCell(col.Text).SetTextColor(table.RGBColor{R: c.R, G: c.G, B: c.B})
	}

	f := d.subst.Formatter()
	for _, it := range d.data.Items {
		if it.Cantidad == 0 {
			it.Cantidad = 1
		}
		name := it.Nombre
		if name == "" {
			name = "Producto sin nombre"
		}
		presentation := it.Presentacion
		if presentation == "" {
			presentation = "Unidad"
		}

		r := tb.AddRow()
		if it.CodigoInterno != "" {
			r.SetNote("Cód: " + it.CodigoInterno)
		}
		r.AddCell(name)
		r.AddCell(strconv.FormatFloat(it.Cantidad, 'f', -1, 64))
		r.AddCell(presentation)
		r.AddCell(f.Currency(it.PrecioUnitario))
		if it.DescuentoMonto > 0 {
			r.AddCell("-" + f.Currency(it.DescuentoMonto)).SetTextColor(table.Warning)
		} else {
			r.AddCell("-")
		}
		r.AddCell(f.Currency(it.Total())).SetBold(true)
	}

	res, err := tb.Render()
	if err != nil {
		d.pdf.SetError(err)
		return
	}
	d.report.Rows += res.Rows
	d.tableEnd = res.EndY/k + 8
}

// summary draws the totals breakdown. Lines bind to subtotal, discount and
// tax by position; the last line always shows the total.
func (d *doc) summary(e *layout.SummaryBlock) {
	b := e.Frame
	y := b.Y
	if d.tableEnd > 0 {
		y = d.tableEnd
	}
	width := b.Width
	if width <= 0 {
		width = 100
	}
	slots := []string{
		d.amount(placeholder.Subtotal),
		d.amount(placeholder.Descuento),
		d.amount(placeholder.Impuesto),
	}
	total := d.amount(placeholder.Total)

	n := len(e.Lines)
	for i, line := range e.Lines {
		last := i == n-1
		value := total
		if !last {
			value = ""
			if i < len(slots) {
				value = slots[i]
			}
		}
		size := e.FontSize
		if last {
			size += 2
		}
		c := layout.ParseColor(line.Color, black)

		d.font(size, last)
		d.color(c)
		d.text(b.X+2, y, layout.AlignLeft, line.Label)
		d.font(size, true)
		if i == 1 && !last {
			d.color(red)
		}
		d.text(b.X+width-2, y, layout.AlignRight, value)
		y += 6

		if i == n-2 {
			y += 2
			d.rule(b.X, y-2, b.X+width)
			y += 5
		}
	}
	d.color(black)
}

// amount returns the formatted value of a currency token, or zero when the
// value map lacks it.
func (d *doc) amount(token string) string {
	raw := "{" + token + "}"
	if s := d.subst.Substitute(raw, d.data.Values); s != raw {
		return s
	}
	return d.subst.Formatter().Currency(0)
}

// footer closes the last page with the item count and generation date.
func (d *doc) footer() {
	y := layout.PageHeight - 15
	d.font(9, false)
	d.color(gray)
	d.text(layout.PageWidth/2, y, layout.AlignCenter, fmt.Sprintf("Total de productos: %d", len(d.data.Items)))
	d.text(layout.PageWidth/2, y+4, layout.AlignCenter, "Generado el "+d.cfg.clock().Format(placeholder.DateLayout))
	d.color(black)
	d.report.FooterPage = d.pdf.PageNo()
}

// reference draws the optional reference code at the bottom right of the
// last page.
func (d *doc) reference() {
	code := d.cfg.refCode
	if code == "" {
		return
	}
	var key string
	w, h := 20.0, 20.0
	switch d.cfg.refKind {
	case ReferencePDF417:
		key = barcode.RegisterPdf417(d.pdf, code, 8, 2)
		w, h = 45, 12
	default:
		key = barcode.RegisterQR(d.pdf, code, qr.M, qr.Unicode)
	}
	if d.pdf.Err() {
		return
	}
	x := layout.PageWidth - d.tpl.Margin - w
	y := layout.PageHeight - d.tpl.Margin - h
	barcode.Barcode(d.pdf, key, x*d.k, y*d.k, w*d.k, h*d.k, false)
}

// legacy draws the fixed single-column layout used for templates with
// nothing to show.
func (d *doc) legacy() {
	m := d.tpl.Margin
	primary := layout.ParseColor(d.tpl.PrimaryColor, black)
	d.pdf.SetFillColor(primary.R, primary.G, primary.B)
	d.pdf.Rect(0, 0, layout.PageWidth*d.k, 40*d.k, "F")

	d.font(20, true)
	d.color(white)
	d.text(layout.PageWidth/2, 15, layout.AlignCenter, DefaultTitle)
	d.font(12, false)
	d.text(layout.PageWidth/2, 25, layout.AlignCenter, DefaultSubtitle)

	y := 55.0
	d.font(10, true)
	d.color(black)
	d.text(layout.PageWidth/2, y, layout.AlignCenter, "INFORMACIÓN DE LA COTIZACIÓN")
	y += 8
	d.font(10, false)
	fields := []struct{ label, token string }{
		{"Cliente", placeholder.Cliente},
		{"Fecha", placeholder.Fecha},
		{"Vencimiento", placeholder.FechaVencimiento},
		{"Vendedor", placeholder.Vendedor},
		{"Estado", placeholder.Estado},
	}
	for _, f := range fields {
		raw := "{" + f.token + "}"
		v := d.fill(raw)
		if v == raw || v == "" {
			continue
		}
		d.text(layout.PageWidth/2, y, layout.AlignCenter, f.label+": "+v)
		y += 6
	}

	tbl := &layout.Table{
		Frame:    layout.Box{ID: layout.IDTable, X: m, Y: y + 16, Width: layout.PageWidth - 2*m, Visible: true},
		Title:    "DETALLE DE PRODUCTOS",
		Headers:  layout.DefaultHeaders(),
		FontSize: 9,
	}
	d.table(tbl)

	const boxW = 90.0
	d.summary(&layout.SummaryBlock{
		Frame:    layout.Box{X: layout.PageWidth - m - boxW, Width: boxW},
		Lines:    layout.DefaultSummaryLines(d.tpl.Accent()),
		FontSize: 10,
	})

	if v, ok := d.data.Values[placeholder.Observaciones].(string); ok && strings.TrimSpace(v) != "" {
		y := d.tableEnd + 40
		d.font(11, true)
		d.text(m, y, layout.AlignLeft, "Observaciones:")
		d.font(11, false)
		for _, line := range strings.Split(v, "\n") {
			y += 5.5
			d.text(m, y, layout.AlignLeft, line)
		}
	}
}

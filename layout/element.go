// Package layout defines the document template model used by the editor and
// the exporter.
//
// A Template is a named, ordered list of elements placed on a fixed A4 page.
// Coordinates and sizes are in millimeters with the origin at the top-left
// corner of the page. The list order is the baseline paint order, except that
// banners are always painted first.
//
// Example JSON:
//
//	{
//	  "name": "Quote",
//	  "margin": 15,
//	  "colorPrimario": "#2563eb",
//	  "colorSecundario": "#6b7280",
//	  "elements": [
//	    {"id": "banner", "kind": "banner", "x": 0, "y": 0, "width": 210, "height": 35, "backgroundColor": "#f97316"},
//	    {"id": "info", "kind": "text", "x": 20, "y": 42, "width": 170, "height": 30, "text": "Cliente: {cliente}"}
//	  ]
//	}
package layout

// Page geometry in millimeters. Only portrait A4 is supported.
const (
	PageWidth     = 210.0
	PageHeight    = 297.0
	DefaultMargin = 15.0
)

// Default template colors.
const (
	DefaultPrimaryColor   = "#2563eb"
	DefaultSecondaryColor = "#6b7280"
	DefaultTextColor      = "#000000"
	DefaultAccentColor    = "#0284c7"
)

// Well-known element identifiers. The geometry engine and the exporter give
// these elements special treatment.
const (
	IDBanner       = "banner"
	IDTitle        = "title"
	IDSubtitle     = "subtitle"
	IDInfo         = "info"
	IDDivider1     = "divider1"
	IDTable        = "table"
	IDTotals       = "totals"
	IDDivider2     = "divider2"
	IDTotal        = "total"
	IDObservations = "observations"
	IDFooter       = "footer"
)

// Kind identifies an element variant.
type Kind string

const (
	KindBanner  Kind = "banner"
	KindText    Kind = "text"
	KindTable   Kind = "table"
	KindSummary Kind = "summary"
)

// Align is a horizontal text alignment.
type Align string

const (
	AlignLeft   Align = "left"
	AlignCenter Align = "center"
	AlignRight  Align = "right"
)

// Box holds the attributes shared by every element.
type Box struct {
	ID      string  `json:"id"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Width   float64 `json:"width"`
	Height  float64 `json:"height"`
	Visible bool    `json:"visible"`
	Locked  bool    `json:"locked,omitempty"`
}

// Right returns the x coordinate of the right edge.
func (b Box) Right() float64 { return b.X + b.Width }

// Bottom returns the y coordinate of the bottom edge.
func (b Box) Bottom() float64 { return b.Y + b.Height }

// Element is one placeable unit of a template. The set of implementations is
// closed: *Banner, *TextBlock, *Table and *SummaryBlock.
type Element interface {
	Kind() Kind
	Box() *Box
	Clone() Element
	element()
}

// Banner is a full-width header strip. Its text is drawn by the companion
// title and subtitle text blocks.
type Banner struct {
	Frame      Box
	Background string
}

// TextBlock is a multi-line text that may contain placeholder tokens.
type TextBlock struct {
	Frame    Box
	Text     string
	FontSize float64
	Color    string
	Bold     bool
	Align    Align
}

// Header is a table column header.
type Header struct {
	Text  string `json:"text"`
	Color string `json:"color"`
}

// Table is the line-item table. Its geometry is always locked because column
// widths are derived from the available width at render time.
type Table struct {
	Frame      Box
	Title      string
	TitleColor string
	Headers    []Header
	FontSize   float64
}

// SummaryLine is one labeled line of a summary block.
type SummaryLine struct {
	Label string `json:"label"`
	Color string `json:"color"`
}

// SummaryBlock is the totals breakdown. Lines bind to value slots by
// position and the final line is always the grand total.
type SummaryBlock struct {
	Frame       Box
	Lines       []SummaryLine
	FontSize    float64
	AccentColor string
}

func (e *Banner) Kind() Kind       { return KindBanner }
func (e *TextBlock) Kind() Kind    { return KindText }
func (e *Table) Kind() Kind        { return KindTable }
func (e *SummaryBlock) Kind() Kind { return KindSummary }

func (e *Banner) Box() *Box       { return &e.Frame }
func (e *TextBlock) Box() *Box    { return &e.Frame }
func (e *Table) Box() *Box        { return &e.Frame }
func (e *SummaryBlock) Box() *Box { return &e.Frame }

func (e *Banner) element()       {}
func (e *TextBlock) element()    {}
func (e *Table) element()        {}
func (e *SummaryBlock) element() {}

func (e *Banner) Clone() Element {
	c := *e
	return &c
}

func (e *TextBlock) Clone() Element {
	c := *e
	return &c
}

func (e *Table) Clone() Element {
	c := *e
	c.Headers = append([]Header(nil), e.Headers...)
	return &c
}

func (e *SummaryBlock) Clone() Element {
	c := *e
	c.Lines = append([]SummaryLine(nil), e.Lines...)
	return &c
}

// Movable reports whether el can be dragged or resized through the editor.
func Movable(el Element) bool {
	if el.Box().Locked {
		return false
	}
	switch el.(type) {
	case *Table, *SummaryBlock:
		return false
	}
	return true
}

// Resizable reports whether el exposes resize handles.
func Resizable(el Element) bool {
	if _, ok := el.(*Banner); ok {
		return false
	}
	return Movable(el)
}

// DefaultHeaders returns the standard line-item table columns.
func DefaultHeaders() []Header {
	return []Header{
		{Text: "Producto", Color: DefaultTextColor},
		{Text: "Cant.", Color: DefaultTextColor},
		{Text: "Pres.", Color: DefaultTextColor},
		{Text: "P. Unit.", Color: DefaultTextColor},
		{Text: "Desc.", Color: DefaultTextColor},
		{Text: "Total", Color: DefaultTextColor},
	}
}

// DefaultSummaryLines returns the four standard summary lines. The last line
// uses accent as its color.
func DefaultSummaryLines(accent string) []SummaryLine {
	if accent == "" {
		accent = DefaultAccentColor
	}
	return []SummaryLine{
		{Label: "Subtotal:", Color: DefaultTextColor},
		{Label: "Descuento General:", Color: DefaultTextColor},
		{Label: "Impuesto (15.25%):", Color: DefaultTextColor},
		{Label: "TOTAL:", Color: accent},
	}
}

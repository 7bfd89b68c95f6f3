// Package table renders line-item tables onto a gofpdf document.
//
// Columns are proportional: each column carries a ratio and the table scales
// the ratios to its actual width at render time. Rows are drawn as text on
// baselines with a light rule under the header and after the last row, and
// may carry a smaller note line under the first cell. When the cursor passes
// the break limit a new page is started and the header is repeated.
package table

// RGBColor represents an RGB color value.
type RGBColor struct {
	R, G, B int
}

// Colors used by the default style.
var (
	Black   = RGBColor{0, 0, 0}
	Gray    = RGBColor{100, 100, 100}
	Rule    = RGBColor{200, 200, 200}
	Warning = RGBColor{220, 38, 38}
	Muted   = RGBColor{156, 163, 175}
)

// FontSpec defines font properties for text rendering.
type FontSpec struct {
	Family string
	Style  string  // "", "B", "I", "BI"
	Size   float64 // in points
}

// CellStyle overrides the row defaults for a single cell or row.
type CellStyle struct {
	TextColor *RGBColor
	Bold      bool
	Align     string // "L", "C", "R"
}

// Style defines the overall appearance of a table.
type Style struct {
	HeaderFont FontSpec
	BodyFont   FontSpec
	NoteFont   FontSpec
	NoteColor  RGBColor
	RuleColor  RGBColor
	RuleWidth  float64

	// Distances below are in document units.
	RowHeight     float64 // advance after a plain row
	NoteRowHeight float64 // advance after a row with a note
	NoteOffset    float64 // note baseline below the row baseline
	HeaderGap     float64 // header baseline to rule, and rule to first row
	ClosingGap    float64 // last row advance to closing rule
	Inset         float64 // horizontal gap between text and column edge
}

// DefaultStyle returns the line-item style, in millimeters, for a body font
// size in points. Headers use at least 11 pt.
func DefaultStyle(size float64) Style {
	if size <= 0 {
		size = 9
	}
	return Style{
		HeaderFont:    FontSpec{Family: "Helvetica", Style: "B", Size: max(size, 11)},
		BodyFont:      FontSpec{Family: "Helvetica", Size: size},
		NoteFont:      FontSpec{Family: "Helvetica", Size: size - 1},
		NoteColor:     Gray,
		RuleColor:     Rule,
		RuleWidth:     0.5,
		RowHeight:     7,
		NoteRowHeight: 9,
		NoteOffset:    3.5,
		HeaderGap:     6,
		ClosingGap:    2,
		Inset:         1,
	}
}

// Scaled returns s with every distance multiplied by k, for documents whose
// unit is not the millimeter.
func (s Style) Scaled(k float64) Style {
	s.RuleWidth *= k
	s.RowHeight *= k
	s.NoteRowHeight *= k
	s.NoteOffset *= k
	s.HeaderGap *= k
	s.ClosingGap *= k
	s.Inset *= k
	return s
}

package table

import "fmt"

// Cell is a single text cell in a row.
type Cell struct {
	text  string
	style *CellStyle
}

// Text returns the cell text.
func (c *Cell) Text() string { return c.text }

// SetStyle sets the style for this cell, overriding row defaults.
func (c *Cell) SetStyle(s CellStyle) *Cell {
	c.style = &s
	return c
}

// SetTextColor sets the text color for this cell.
func (c *Cell) SetTextColor(col RGBColor) *Cell {
	if c.style == nil {
		c.style = &CellStyle{}
	}
	c.style.TextColor = &col
	return c
}

// SetBold draws this cell in the bold variant of the row font.
func (c *Cell) SetBold(bold bool) *Cell {
	if c.style == nil {
		c.style = &CellStyle{}
	}
	c.style.Bold = bold
	return c
}

// SetAlign sets the horizontal alignment for this cell.
func (c *Cell) SetAlign(align string) *Cell {
	if c.style == nil {
		c.style = &CellStyle{}
	}
	c.style.Align = align
	return c
}

// Row represents a single row in a table.
type Row struct {
	cells []*Cell
	note  string
	style *CellStyle
}

// AddCell adds a text cell to the row and returns the cell for chaining.
func (r *Row) AddCell(text string) *Cell {
	c := &Cell{text: text}
	r.cells = append(r.cells, c)
	return c
}

// AddCellf adds a formatted text cell to the row.
func (r *Row) AddCellf(format string, args ...any) *Cell {
	return r.AddCell(fmt.Sprintf(format, args...))
}

// Cells returns the cells of the row.
func (r *Row) Cells() []*Cell { return r.cells }

// SetNote sets a smaller secondary line drawn under the first cell. A row
// with a note advances the cursor by the taller note row height.
func (r *Row) SetNote(note string) *Row {
	r.note = note
	return r
}

// Note returns the row note.
func (r *Row) Note() string { return r.note }

// SetStyle sets the style for all cells in this row.
func (r *Row) SetStyle(s CellStyle) *Row {
	r.style = &s
	return r
}

package canvas

import (
	"math"

	"github.com/lvillar/doclayout/geometry"
	"github.com/lvillar/doclayout/layout"
)

// DeadZone is the smallest geometry change, in millimeters, written back
// while a pointer is captured.
const DeadZone = 0.5

// Point is a pointer position in canvas pixels.
type Point struct {
	X, Y float64
}

// PointerCapture owns the pointer between a press and its release. Moves
// are buffered and only the latest one is applied on the next frame.
type PointerCapture struct {
	ElementID string
	Handle    geometry.Handle // set while resizing
	Offset    Point           // pointer minus element origin, mm; set while dragging
	Origin    Point           // pointer at press, mm
	Start     layout.Box      // element geometry at press

	pending *Point
	last    layout.Box
}

func newCapture(id string, start layout.Box) *PointerCapture {
	return &PointerCapture{ElementID: id, Start: start, last: start}
}

// Move buffers p, replacing any move not yet applied.
func (c *PointerCapture) Move(p Point) {
	c.pending = &p
}

// take returns and clears the buffered move.
func (c *PointerCapture) take() (Point, bool) {
	if c.pending == nil {
		return Point{}, false
	}
	p := *c.pending
	c.pending = nil
	return p, true
}

// changed reports whether b differs from the last applied geometry by more
// than the dead zone.
func (c *PointerCapture) changed(b layout.Box) bool {
	return math.Abs(b.X-c.last.X) > DeadZone ||
		math.Abs(b.Y-c.last.Y) > DeadZone ||
		math.Abs(b.Width-c.last.Width) > DeadZone ||
		math.Abs(b.Height-c.last.Height) > DeadZone
}

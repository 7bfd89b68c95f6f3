package canvas

import (
	"github.com/lvillar/doclayout/geometry"
	"github.com/lvillar/doclayout/layout"
)

// Rect is an axis-aligned rectangle in canvas pixels.
type Rect struct {
	X, Y, W, H float64
}

// Tick is a ruler mark.
type Tick struct {
	Pos   float64 // pixels from the page edge
	MM    int
	Major bool // labeled every 10 mm
}

// Overlay holds the non-model guides drawn over the page.
type Overlay struct {
	Page   Rect
	Margin Rect // content area inside the margin guides
	Rulers bool
	TicksX []Tick
	TicksY []Tick
}

// Overlay returns the margin guides and, when enabled, ruler ticks every
// 5 mm at the current zoom.
func (c *Controller) Overlay() Overlay {
	s := c.Scale()
	m := c.tpl.Margin
	o := Overlay{
		Page:   Rect{W: layout.PageWidth * s, H: layout.PageHeight * s},
		Margin: Rect{X: m * s, Y: m * s, W: (layout.PageWidth - 2*m) * s, H: (layout.PageHeight - 2*m) * s},
		Rulers: c.rulers,
	}
	if c.rulers {
		o.TicksX = ticks(int(layout.PageWidth), s)
		o.TicksY = ticks(int(layout.PageHeight), s)
	}
	return o
}

func ticks(length int, scale float64) []Tick {
	out := make([]Tick, 0, length/5+1)
	for mm := 0; mm <= length; mm += 5 {
		out = append(out, Tick{Pos: float64(mm) * scale, MM: mm, Major: mm%10 == 0})
	}
	return out
}

// HandleRect is a resize handle drawn on the selected element.
type HandleRect struct {
	Handle geometry.Handle
	Rect   Rect
}

// Sprite is one element as drawn on the canvas.
type Sprite struct {
	ID       string
	Kind     layout.Kind
	Rect     Rect
	Text     string
	Selected bool
	Locked   bool
	Handles  []HandleRect
}

// Scene returns the visible elements in paint order, scaled to pixels.
// Only the selected, resizable element carries handles.
func (c *Controller) Scene() []Sprite {
	s := c.Scale()
	order := layout.PaintOrder(c.tpl.Elements, c.selected)
	out := make([]Sprite, 0, len(order))
	for _, el := range order {
		b := *el.Box()
		sp := Sprite{
			ID:       b.ID,
			Kind:     el.Kind(),
			Rect:     Rect{X: b.X * s, Y: b.Y * s, W: b.Width * s, H: b.Height * s},
			Text:     c.DisplayText(el),
			Selected: b.ID == c.selected,
			Locked:   !layout.Movable(el),
		}
		if sp.Selected && layout.Resizable(el) {
			for _, h := range geometry.Handles {
				p := handlePoint(b, h)
				sp.Handles = append(sp.Handles, HandleRect{
					Handle: h,
					Rect:   Rect{X: p.X*s - HandleSize/2, Y: p.Y*s - HandleSize/2, W: HandleSize, H: HandleSize},
				})
			}
		}
		out = append(out, sp)
	}
	return out
}

package geometry

import (
	"math"
	"sort"

	"github.com/lvillar/doclayout/layout"
)

// slot is the canonical geometry of a well-known element.
type slot struct {
	id         string
	x, y, w, h float64
}

// canonical lists well-known elements in arrangement order. The totals
// block is sized from the template margin at arrange time.
var canonical = []slot{
	{layout.IDBanner, 0, 0, layout.PageWidth, 35},
	{layout.IDTitle, 0, 12, layout.PageWidth, 12},
	{layout.IDSubtitle, 0, 25, layout.PageWidth, 8},
	{layout.IDInfo, 20, 42, 170, 30},
	{layout.IDDivider1, 20, 75, 170, 1},
	{layout.IDTable, 20, 78, 170, 100},
	{layout.IDTotals, 0, 185, 0, 20},
	{layout.IDDivider2, 20, 208, 170, 1},
	{layout.IDTotal, 20, 210, 170, 8},
	{layout.IDObservations, 20, 225, 170, 20},
	{layout.IDFooter, 0, 285, layout.PageWidth, 8},
}

// AutoArrange assigns every well-known element its canonical geometry and
// reorders the template so well-known elements come first in canonical
// order. Other elements keep their geometry and relative order after them.
// The result depends only on which well-known identifiers are present.
func AutoArrange(t *layout.Template) {
	ordered := make([]layout.Element, 0, len(t.Elements))
	known := make(map[string]bool, len(canonical))

	for _, s := range canonical {
		known[s.id] = true
		el, ok := t.Find(s.id)
		if !ok {
			continue
		}
		b := el.Box()
		b.X, b.Y, b.Width, b.Height = s.x, s.y, s.w, s.h
		if s.id == layout.IDTotals {
			b.X = t.Margin
			b.Width = layout.PageWidth - 2*t.Margin
		}
		if el.Kind() == layout.KindBanner {
			b.X, b.Y, b.Width = 0, 0, layout.PageWidth
		}
		if tb, ok := el.(*layout.TextBlock); ok {
			switch s.id {
			case layout.IDInfo, layout.IDObservations:
				tb.Align = layout.AlignLeft
			case layout.IDTotals:
				tb.Align = layout.AlignRight
			case layout.IDTotal:
				tb.Align = layout.AlignRight
				tb.Bold = true
				tb.Color = t.Accent()
			case layout.IDFooter:
				tb.Align = layout.AlignCenter
			}
		}
		ordered = append(ordered, el)
	}
	for _, el := range t.Elements {
		if !known[el.Box().ID] {
			ordered = append(ordered, el)
		}
	}
	t.Elements = ordered
}

// Place positions a new element so that it does not collide with the
// visible elements already in t. el is not added to t.
//
// Banners go to the origin. Other elements go Gap below the lowest visible
// element, wrapping back to just below the banner area past 250 mm. If that
// spot collides, the first vertical gap large enough is used, scanning down
// from 50 mm.
func Place(t *layout.Template, el layout.Element) {
	b := el.Box()
	if el.Kind() == layout.KindBanner {
		b.X, b.Y, b.Width = 0, 0, layout.PageWidth
		return
	}

	var visible []layout.Element
	for _, other := range t.Elements {
		if other.Box().Visible && other.Box().ID != b.ID {
			visible = append(visible, other)
		}
	}

	b.X = 20
	if el.Kind() == layout.KindSummary {
		b.X = 105
	}
	b.Y = 35
	if len(visible) > 0 {
		var lowest float64
		for _, other := range visible {
			lowest = math.Max(lowest, other.Box().Bottom())
		}
		b.Y = lowest + Gap
		if b.Y > 250 {
			b.Y = 35
		}
	}

	if collidesAny(el, visible) {
		b.Y = freeY(*b, visible)
	}
	b.X = clampAxis(b.X, b.Width, layout.PageWidth, t.Margin)
	b.Y = clampAxis(b.Y, b.Height, layout.PageHeight, t.Margin)
}

func collidesAny(el layout.Element, others []layout.Element) bool {
	for _, o := range others {
		if Collides(el, o) {
			return true
		}
	}
	return false
}

// freeY scans down the page for the first vertical gap that fits b.
func freeY(b layout.Box, others []layout.Element) float64 {
	sorted := append([]layout.Element(nil), others...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Box().Y < sorted[j].Box().Y
	})
	cur := 50.0
	for _, o := range sorted {
		ob := o.Box()
		if ob.Y-cur >= b.Height+Gap {
			return cur
		}
		cur = math.Max(cur, ob.Bottom()+Gap)
	}
	if cur+b.Height <= layout.PageHeight {
		return cur
	}
	return math.Max(0, math.Min(layout.PageHeight-b.Height, b.Y))
}

package geometry

import (
	"math"
	"sort"
	"strings"

	"github.com/lvillar/doclayout/layout"
)

// Handle names a resize handle by compass direction.
type Handle string

const (
	HandleN  Handle = "n"
	HandleS  Handle = "s"
	HandleE  Handle = "e"
	HandleW  Handle = "w"
	HandleNE Handle = "ne"
	HandleNW Handle = "nw"
	HandleSE Handle = "se"
	HandleSW Handle = "sw"
)

// Handles lists every resize handle.
var Handles = []Handle{HandleNW, HandleN, HandleNE, HandleE, HandleSE, HandleS, HandleSW, HandleW}

// Valid reports whether h is one of the eight handles.
func (h Handle) Valid() bool {
	for _, v := range Handles {
		if h == v {
			return true
		}
	}
	return false
}

func (h Handle) has(dir byte) bool { return strings.IndexByte(string(h), dir) >= 0 }

// Engine resolves moves and resizes against a template.
type Engine struct {
	Measurer Measurer
}

// New returns an engine that sizes text with m.
func New(m Measurer) *Engine {
	return &Engine{Measurer: m}
}

// Move returns the geometry of element id after a request to place its
// top-left corner at (x, y). The template is not modified. Banners stay at
// the origin and locked elements keep their geometry.
//
// The position is clamped to the page margins. If the element then collides
// with exactly one other visible element, it is snapped flush against the
// side of that element with the smallest penetration, trying the remaining
// sides in order of increasing penetration when a side would collide with
// something else. When no side is free the clamped position is kept and the
// overlap remains.
func (e *Engine) Move(t *layout.Template, id string, x, y float64) (layout.Box, bool) {
	el, ok := t.Find(id)
	if !ok {
		return layout.Box{}, false
	}
	b := *el.Box()
	if el.Kind() == layout.KindBanner {
		b.X, b.Y = 0, 0
		return b, true
	}
	if !layout.Movable(el) {
		return b, true
	}

	b.X = clampAxis(x, b.Width, layout.PageWidth, t.Margin)
	b.Y = clampAxis(y, b.Height, layout.PageHeight, t.Margin)

	moved := el.Clone()
	*moved.Box() = b
	hits := e.collisions(t, moved)
	if len(hits) != 1 {
		return b, true
	}
	obs := *hits[0].Box()

	type candidate struct {
		depth float64
		x, y  float64
	}
	cands := []candidate{
		{obs.Right() - b.X, obs.Right(), b.Y},
		{b.Right() - obs.X, obs.X - b.Width, b.Y},
		{obs.Bottom() - b.Y, b.X, obs.Bottom()},
		{b.Bottom() - obs.Y, b.X, obs.Y - b.Height},
	}
	sort.SliceStable(cands, func(i, j int) bool {
		return math.Abs(cands[i].depth) < math.Abs(cands[j].depth)
	})
	for _, c := range cands {
		nb := b
		nb.X = clampAxis(c.x, b.Width, layout.PageWidth, t.Margin)
		nb.Y = clampAxis(c.y, b.Height, layout.PageHeight, t.Margin)
		*moved.Box() = nb
		if len(e.collisions(t, moved)) == 0 {
			return nb, true
		}
	}
	return b, true
}

// collisions returns the visible elements of t, other than el itself,
// that collide with el.
func (e *Engine) collisions(t *layout.Template, el layout.Element) []layout.Element {
	var out []layout.Element
	for _, other := range t.Elements {
		if !other.Box().Visible || other.Box().ID == el.Box().ID {
			continue
		}
		if Collides(el, other) {
			out = append(out, other)
		}
	}
	return out
}

// Resize returns the geometry of element id when handle h is dragged by
// (dx, dy) from the start geometry. The edge opposite the handle stays
// anchored. The result never crosses the page margin and never drops below
// the element's minimum size; the minimum size wins if both cannot hold.
// Banners, tables, summaries and locked elements keep their geometry.
func (e *Engine) Resize(t *layout.Template, id string, h Handle, start layout.Box, dx, dy float64) (layout.Box, bool) {
	el, ok := t.Find(id)
	if !ok {
		return layout.Box{}, false
	}
	if !layout.Resizable(el) || !h.Valid() {
		return *el.Box(), true
	}
	minW, minH := MinSize(el, e.Measurer)
	m := t.Margin

	b := start
	switch {
	case h.has('e'):
		b.Width = start.Width + dx
		b.Width = math.Min(b.Width, layout.PageWidth-m-b.X)
		b.Width = math.Max(b.Width, minW)
	case h.has('w'):
		b.X = math.Max(start.X+dx, m)
		b.X = math.Min(b.X, start.Right()-minW)
		b.Width = start.Right() - b.X
	}
	switch {
	case h.has('s'):
		b.Height = start.Height + dy
		b.Height = math.Min(b.Height, layout.PageHeight-m-b.Y)
		b.Height = math.Max(b.Height, minH)
	case h.has('n'):
		b.Y = math.Max(start.Y+dy, m)
		b.Y = math.Min(b.Y, start.Bottom()-minH)
		b.Height = start.Bottom() - b.Y
	}
	return b, true
}

// Apply writes b into the element with the same id and reports whether it
// was found.
func Apply(t *layout.Template, b layout.Box) bool {
	el, ok := t.Find(b.ID)
	if !ok {
		return false
	}
	*el.Box() = b
	return true
}

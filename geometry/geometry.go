// Package geometry implements the placement rules of the layout editor:
// overlap tests, content-aware minimum sizes, move and resize conflict
// resolution, automatic arrangement and default placement of new elements.
//
// All functions work in millimeters and never fail; out of range input is
// clamped.
package geometry

import (
	"math"
	"strings"

	"github.com/lvillar/doclayout/layout"
)

// Sizing constants in millimeters.
const (
	MinWidth   = 10.0
	MinHeight  = 5.0
	Padding    = 8.0 // combined horizontal or vertical padding of a text block
	LineHeight = 1.3 // line height as a multiple of the font size
	Gap        = 5.0 // spacing left between stacked elements
)

// Measurer reports the advance width of a single line of text. Widths are in
// the same unit as size.
type Measurer interface {
	TextWidth(s string, size float64, bold bool) float64
}

// Overlaps reports whether the boxes of a and b intersect with a nonzero
// area. Touching edges do not overlap and an element never overlaps itself.
func Overlaps(a, b layout.Element) bool {
	return boxesOverlap(*a.Box(), *b.Box())
}

func boxesOverlap(a, b layout.Box) bool {
	if a.ID != "" && a.ID == b.ID {
		return false
	}
	w := math.Min(a.Right(), b.Right()) - math.Max(a.X, b.X)
	h := math.Min(a.Bottom(), b.Bottom()) - math.Max(a.Y, b.Y)
	return w > 0 && h > 0
}

// Collides is Overlaps except that a banner and its title or subtitle
// companions never collide.
func Collides(a, b layout.Element) bool {
	if companions(a, b) || companions(b, a) {
		return false
	}
	return Overlaps(a, b)
}

func companions(banner, text layout.Element) bool {
	if banner.Kind() != layout.KindBanner {
		return false
	}
	id := text.Box().ID
	return id == layout.IDTitle || id == layout.IDSubtitle
}

// HasOverlaps reports whether any two visible elements collide.
func HasOverlaps(elements []layout.Element) bool {
	for i := 0; i < len(elements); i++ {
		if !elements[i].Box().Visible {
			continue
		}
		for j := i + 1; j < len(elements); j++ {
			if elements[j].Box().Visible && Collides(elements[i], elements[j]) {
				return true
			}
		}
	}
	return false
}

// MinSize returns the smallest width and height el can be resized to. Text
// blocks are sized to their measured content plus padding; every other kind
// uses the fixed floor.
func MinSize(el layout.Element, m Measurer) (w, h float64) {
	tb, ok := el.(*layout.TextBlock)
	if !ok || m == nil || strings.TrimSpace(tb.Text) == "" {
		return MinWidth, MinHeight
	}
	size := tb.FontSize
	if size <= 0 {
		size = 11
	}
	lines := strings.Split(tb.Text, "\n")
	var widest float64
	for _, line := range lines {
		widest = math.Max(widest, m.TextWidth(line, size, tb.Bold))
	}
	w = math.Max(MinWidth, widest+Padding)
	h = math.Max(MinHeight, float64(len(lines))*LineHeight*size+Padding)
	return w, h
}

// clampAxis keeps an element of the given size inside [margin, extent-margin].
// Elements larger than the content area are kept on the page instead.
func clampAxis(v, size, extent, margin float64) float64 {
	lo, hi := margin, extent-size-margin
	if hi < lo {
		lo, hi = 0, math.Max(0, extent-size)
	}
	return math.Max(lo, math.Min(hi, v))
}

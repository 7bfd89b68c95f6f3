package textmetrics

import "testing"

type measurer interface {
	TextWidth(s string, size float64, bold bool) float64
}

func TestMeasurers(t *testing.T) {
	scr, err := NewScreen()
	if err != nil {
		t.Fatalf("NewScreen failed: %v", err)
	}
	for name, m := range map[string]measurer{"pdf": NewPDF(), "screen": scr} {
		t.Run(name, func(t *testing.T) {
			if w := m.TextWidth("", 10, false); w != 0 {
				t.Errorf("empty width = %v", w)
			}
			short := m.TextWidth("abc", 10, false)
			long := m.TextWidth("abcabc", 10, false)
			if short <= 0 || long <= short {
				t.Errorf("widths short=%v long=%v", short, long)
			}
			if big := m.TextWidth("abc", 20, false); big <= short*1.9 || big >= short*2.1 {
				t.Errorf("width does not scale with size: %v vs %v", big, short)
			}
			if bold := m.TextWidth("abc", 10, true); bold < short {
				t.Errorf("bold width %v narrower than regular %v", bold, short)
			}
			// A glyph advance never exceeds the em size for Latin text.
			if w := m.TextWidth("M", 10, false); w > 10 {
				t.Errorf("M width = %v at size 10", w)
			}
		})
	}
}

func TestPDFHandlesAccents(t *testing.T) {
	m := NewPDF()
	if w := m.TextWidth("COTIZACIÓN", 5, true); w <= m.TextWidth("COTIZACI", 5, true) {
		t.Errorf("accented glyph not measured: %v", w)
	}
}

package textmetrics

import (
	"fmt"
	"math"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

type faceKey struct {
	size int // tenths of a unit
	bold bool
}

// Screen measures text with the Go fonts, approximating the on-screen
// editor rendering.
type Screen struct {
	regular *opentype.Font
	bold    *opentype.Font
	faces   map[faceKey]font.Face
}

// NewScreen parses the embedded Go fonts.
func NewScreen() (*Screen, error) {
	reg, err := opentype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("textmetrics: parse regular font: %w", err)
	}
	bol, err := opentype.Parse(gobold.TTF)
	if err != nil {
		return nil, fmt.Errorf("textmetrics: parse bold font: %w", err)
	}
	return &Screen{regular: reg, bold: bol, faces: make(map[faceKey]font.Face)}, nil
}

// TextWidth returns the advance width of s at the given size.
func (m *Screen) TextWidth(s string, size float64, bold bool) float64 {
	if s == "" || size <= 0 {
		return 0
	}
	face, err := m.face(size, bold)
	if err != nil {
		return 0
	}
	adv := font.MeasureString(face, s)
	return float64(adv) / 64 * (size / m.faceSize(size))
}

// faceSize is the size the cached face was built with.
func (m *Screen) faceSize(size float64) float64 {
	return float64(int(math.Round(size*10))) / 10
}

func (m *Screen) face(size float64, bold bool) (font.Face, error) {
	key := faceKey{size: int(math.Round(size * 10)), bold: bold}
	if f, ok := m.faces[key]; ok {
		return f, nil
	}
	base := m.regular
	if bold {
		base = m.bold
	}
	f, err := opentype.NewFace(base, &opentype.FaceOptions{
		Size:    m.faceSize(size),
		DPI:     72,
		Hinting: font.HintingNone,
	})
	if err != nil {
		return nil, err
	}
	m.faces[key] = f
	return f, nil
}

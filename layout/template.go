package layout

import "strings"

// Template is a named, persisted layout.
type Template struct {
	Name           string
	Elements       []Element
	Margin         float64
	PrimaryColor   string
	SecondaryColor string
}

// Clone returns a deep copy of t.
func (t *Template) Clone() *Template {
	if t == nil {
		return nil
	}
	c := *t
	c.Elements = make([]Element, len(t.Elements))
	for i, el := range t.Elements {
		c.Elements[i] = el.Clone()
	}
	return &c
}

// Index returns the position of the element with the given id, or -1.
func (t *Template) Index(id string) int {
	for i, el := range t.Elements {
		if el.Box().ID == id {
			return i
		}
	}
	return -1
}

// Find returns the element with the given id.
func (t *Template) Find(id string) (Element, bool) {
	if i := t.Index(id); i >= 0 {
		return t.Elements[i], true
	}
	return nil, false
}

// FindText returns the text block with the given id.
func (t *Template) FindText(id string) (*TextBlock, bool) {
	el, ok := t.Find(id)
	if !ok {
		return nil, false
	}
	tb, ok := el.(*TextBlock)
	return tb, ok
}

// Remove deletes the element with the given id and reports whether it existed.
func (t *Template) Remove(id string) bool {
	i := t.Index(id)
	if i < 0 {
		return false
	}
	t.Elements = append(t.Elements[:i], t.Elements[i+1:]...)
	return true
}

// Accent returns the color used for emphasized totals.
func (t *Template) Accent() string {
	if t.PrimaryColor == "" {
		return DefaultPrimaryColor
	}
	return t.PrimaryColor
}

// Normalize fills defaults and enforces the per-kind geometry rules: banners
// are pinned to the top of the page at full width, tables and summaries are
// locked. Normalize is idempotent.
func (t *Template) Normalize() {
	t.Name = strings.TrimSpace(t.Name)
	if t.Margin <= 0 {
		t.Margin = DefaultMargin
	}
	if t.PrimaryColor == "" {
		t.PrimaryColor = DefaultPrimaryColor
	}
	if t.SecondaryColor == "" {
		t.SecondaryColor = DefaultSecondaryColor
	}

	for _, el := range t.Elements {
		switch e := el.(type) {
		case *Banner:
			e.Frame.X, e.Frame.Y = 0, 0
			e.Frame.Width = PageWidth
			if e.Background == "" {
				e.Background = t.PrimaryColor
			}
		case *TextBlock:
			if e.FontSize <= 0 {
				e.FontSize = 11
			}
			if e.Color == "" {
				e.Color = DefaultTextColor
			}
			if e.Align == "" {
				e.Align = AlignLeft
			}
		case *Table:
			e.Frame.Locked = true
			if e.Title == "" {
				e.Title = "DETALLE DE PRODUCTOS"
			}
			if e.TitleColor == "" {
				e.TitleColor = DefaultTextColor
			}
			if len(e.Headers) == 0 {
				e.Headers = DefaultHeaders()
			}
			for i := range e.Headers {
				if e.Headers[i].Color == "" {
					e.Headers[i].Color = DefaultTextColor
				}
			}
			if e.FontSize <= 0 {
				e.FontSize = 9
			}
		case *SummaryBlock:
			e.Frame.Locked = true
			if e.AccentColor == "" {
				e.AccentColor = t.Accent()
			}
			if e.Lines == nil {
				e.Lines = DefaultSummaryLines(e.AccentColor)
			}
			for i := range e.Lines {
				if e.Lines[i].Color == "" {
					e.Lines[i].Color = DefaultTextColor
				}
			}
			if e.FontSize <= 0 {
				e.FontSize = 10
			}
		}
	}
}

// Blank returns an empty template with default margins and colors.
func Blank(name string) *Template {
	return &Template{
		Name:           name,
		Elements:       []Element{},
		Margin:         DefaultMargin,
		PrimaryColor:   DefaultPrimaryColor,
		SecondaryColor: DefaultSecondaryColor,
	}
}

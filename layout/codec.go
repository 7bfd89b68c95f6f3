package layout

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// wireElement is the persisted shape of an element. Fields without a
// canonical counterpart are accepted on decode only and never written.
type wireElement struct {
	ID      string  `json:"id"`
	Kind    string  `json:"kind,omitempty"`
	Tipo    string  `json:"tipo,omitempty"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Width   float64 `json:"width"`
	Height  float64 `json:"height"`
	Visible *bool   `json:"visible,omitempty"`
	Locked  bool    `json:"locked,omitempty"`

	Background string `json:"backgroundColor,omitempty"`

	Text       string  `json:"text,omitempty"`
	Texto      string  `json:"texto,omitempty"`
	FontSize   float64 `json:"fontSize,omitempty"`
	FontWeight string  `json:"fontWeight,omitempty"`
	Bold       bool    `json:"bold,omitempty"`
	Color      string  `json:"color,omitempty"`
	Align      string  `json:"align,omitempty"`

	Title            string     `json:"title,omitempty"`
	TituloTabla      string     `json:"tituloTabla,omitempty"`
	TitleColor       string     `json:"titleColor,omitempty"`
	ColorTituloTabla string     `json:"colorTituloTabla,omitempty"`
	Headers          headerList `json:"headers,omitempty"`

	Lines       *[]SummaryLine `json:"lines,omitempty"`
	Lineas      *[]SummaryLine `json:"lineas,omitempty"`
	AccentColor string         `json:"accentColor,omitempty"`
	ColorTotal  string         `json:"colorTotal,omitempty"`
}

type wireTemplate struct {
	Name           string            `json:"name"`
	Nombre         string            `json:"nombre,omitempty"`
	Elements       []json.RawMessage `json:"elements"`
	Elementos      []json.RawMessage `json:"elementos,omitempty"`
	Margin         float64           `json:"margin"`
	Margen         float64           `json:"margen,omitempty"`
	PrimaryColor   string            `json:"colorPrimario"`
	SecondaryColor string            `json:"colorSecundario"`
}

// headerList decodes both {text, color} objects and the older bare string
// headers.
type headerList []Header

func (h *headerList) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out := make(headerList, 0, len(raw))
	for _, r := range raw {
		r = bytes.TrimSpace(r)
		if len(r) > 0 && r[0] == '"' {
			var s string
			if err := json.Unmarshal(r, &s); err != nil {
				return err
			}
			out = append(out, Header{Text: s, Color: DefaultTextColor})
			continue
		}
		var obj struct {
			Text  string `json:"text"`
			Texto string `json:"texto"`
			Color string `json:"color"`
		}
		if err := json.Unmarshal(r, &obj); err != nil {
			return err
		}
		text := obj.Text
		if text == "" {
			text = obj.Texto
		}
		if obj.Color == "" {
			obj.Color = DefaultTextColor
		}
		out = append(out, Header{Text: text, Color: obj.Color})
	}
	*h = out
	return nil
}

// bannerHeight is the height given to banners rebuilt from old title strips.
const bannerHeight = 35

var legacyKinds = map[string]Kind{
	"header":  KindBanner,
	"banner":  KindBanner,
	"texto":   KindText,
	"text":    KindText,
	"tabla":   KindTable,
	"table":   KindTable,
	"totales": KindSummary,
	"summary": KindSummary,
}

var legacyIDs = map[string]string{
	"header":          IDBanner,
	"titulo":          IDTitle,
	"subtitulo":       IDSubtitle,
	"info_cliente":    IDInfo,
	"separador1":      IDDivider1,
	"productos":       IDTable,
	"tabla_productos": IDTable,
	"totales":         IDTotals,
	"separador2":      IDDivider2,
	"observaciones":   IDObservations,
}

// MarshalElement encodes a single element in its persisted form.
func MarshalElement(el Element) ([]byte, error) {
	return json.Marshal(toWire(el))
}

// MarshalJSON implements json.Marshaler.
func (t *Template) MarshalJSON() ([]byte, error) {
	w := wireTemplate{
		Name:           t.Name,
		Elements:       make([]json.RawMessage, 0, len(t.Elements)),
		Margin:         t.Margin,
		PrimaryColor:   t.PrimaryColor,
		SecondaryColor: t.SecondaryColor,
	}
	for _, el := range t.Elements {
		b, err := MarshalElement(el)
		if err != nil {
			return nil, err
		}
		w.Elements = append(w.Elements, b)
	}
	return json.Marshal(w)
}

// UnmarshalJSON implements json.Unmarshaler. The decoded template is
// sanitized and normalized; legacy shapes are upgraded silently. Elements of
// an unknown kind are rejected.
func (t *Template) UnmarshalJSON(data []byte) error {
	out, _, err := decodeTemplate(data, false)
	if err != nil {
		return err
	}
	*t = *out
	return nil
}

// decodeTemplate parses one template. In lenient mode undecodable elements
// are left out and reported in skipped instead of failing the template.
func decodeTemplate(data []byte, lenient bool) (*Template, []error, error) {
	var w wireTemplate
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, nil, fmt.Errorf("layout: decode template: %w", err)
	}
	if w.Name == "" {
		w.Name = w.Nombre
	}
	if w.Margin == 0 {
		w.Margin = w.Margen
	}
	raw := w.Elements
	if len(raw) == 0 {
		raw = w.Elementos
	}

	out := &Template{
		Name:           SanitizeText(w.Name),
		Elements:       make([]Element, 0, len(raw)),
		Margin:         w.Margin,
		PrimaryColor:   w.PrimaryColor,
		SecondaryColor: w.SecondaryColor,
	}
	var skipped []error
	split := make(map[*Banner]bool)
	for i, r := range raw {
		var we wireElement
		var els []Element
		err := json.Unmarshal(r, &we)
		if err == nil {
			els, err = fromWire(&we)
		} else {
			err = fmt.Errorf("layout: decode element: %w", err)
		}
		if err != nil {
			err = fmt.Errorf("layout: template %q element %d: %w", out.Name, i, err)
			if !lenient {
				return nil, nil, err
			}
			skipped = append(skipped, err)
			continue
		}
		if len(els) > 1 {
			split[els[0].(*Banner)] = true
		}
		out.Elements = append(out.Elements, els...)
	}
	out.Elements = dropSplitBanners(out.Elements, split)
	out.Normalize()
	return out, skipped, nil
}

// dropSplitBanners keeps at most one banner per template: a banner derived
// from an old title strip is discarded when a stored banner already exists.
func dropSplitBanners(els []Element, split map[*Banner]bool) []Element {
	if len(split) == 0 {
		return els
	}
	seen := false
	for _, el := range els {
		if b, ok := el.(*Banner); ok && b.Frame.ID == IDBanner && !split[b] {
			seen = true
		}
	}
	out := els[:0]
	for _, el := range els {
		if b, ok := el.(*Banner); ok && split[b] {
			if seen {
				continue
			}
			seen = true
		}
		out = append(out, el)
	}
	return out
}

// Decode parses a single template.
func Decode(data []byte) (*Template, error) {
	t := new(Template)
	if err := json.Unmarshal(data, t); err != nil {
		return nil, err
	}
	return t, nil
}

// Encode serializes a single template.
func Encode(t *Template) ([]byte, error) {
	return json.Marshal(t)
}

// DecodeList parses an ordered template collection.
func DecodeList(data []byte) ([]*Template, error) {
	var list []*Template
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, err
	}
	out := list[:0]
	for _, t := range list {
		if t != nil {
			out = append(out, t)
		}
	}
	return out, nil
}

// DecodeListLenient parses an ordered template collection, leaving out the
// templates and elements that cannot be decoded. Each omission is reported
// in skipped. An error is returned only when data is not a JSON array.
func DecodeListLenient(data []byte) (list []*Template, skipped []error, err error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, nil, fmt.Errorf("layout: decode templates: %w", err)
	}
	for i, r := range raw {
		if bytes.Equal(bytes.TrimSpace(r), []byte("null")) {
			continue
		}
		t, bad, err := decodeTemplate(r, true)
		if err != nil {
			skipped = append(skipped, fmt.Errorf("layout: template %d: %w", i, err))
			continue
		}
		skipped = append(skipped, bad...)
		list = append(list, t)
	}
	return list, skipped, nil
}

// EncodeList serializes an ordered template collection.
func EncodeList(list []*Template) ([]byte, error) {
	if list == nil {
		list = []*Template{}
	}
	return json.Marshal(list)
}

func toWire(el Element) *wireElement {
	b := el.Box()
	visible := b.Visible
	w := &wireElement{
		ID:      b.ID,
		Kind:    string(el.Kind()),
		X:       b.X,
		Y:       b.Y,
		Width:   b.Width,
		Height:  b.Height,
		Visible: &visible,
		Locked:  b.Locked,
	}
	switch e := el.(type) {
	case *Banner:
		w.Background = e.Background
	case *TextBlock:
		w.Text = e.Text
		w.FontSize = e.FontSize
		w.Color = e.Color
		w.Bold = e.Bold
		w.Align = string(e.Align)
	case *Table:
		w.Title = e.Title
		w.TitleColor = e.TitleColor
		w.Headers = headerList(e.Headers)
		w.FontSize = e.FontSize
	case *SummaryBlock:
		lines := e.Lines
		if lines == nil {
			lines = []SummaryLine{}
		}
		w.Lines = &lines
		w.FontSize = e.FontSize
		w.AccentColor = e.AccentColor
	}
	return w
}

// fromWire upgrades a persisted element. Old title strips were stored as a
// header carrying its own text; they come back as a pinned banner followed
// by the title text block.
func fromWire(w *wireElement) ([]Element, error) {
	name := w.Kind
	if name == "" {
		name = w.Tipo
	}
	kind, ok := legacyKinds[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("layout: element %q: unknown kind %q", w.ID, name)
	}

	id := w.ID
	if canon, ok := legacyIDs[id]; ok {
		id = canon
	}
	text := w.Text
	if text == "" {
		text = w.Texto
	}
	text = SanitizeText(text)

	box := Box{
		ID:      id,
		X:       w.X,
		Y:       w.Y,
		Width:   w.Width,
		Height:  w.Height,
		Visible: w.Visible == nil || *w.Visible,
		Locked:  w.Locked,
	}

	textBlock := func(box Box) *TextBlock {
		return &TextBlock{
			Frame:    box,
			Text:     text,
			FontSize: w.FontSize,
			Color:    w.Color,
			Bold:     w.Bold || strings.EqualFold(w.FontWeight, "bold"),
			Align:    parseAlign(w.Align),
		}
	}

	switch kind {
	case KindBanner:
		if text != "" {
			strip := Box{ID: IDBanner, Height: max(bannerHeight, w.Y+w.Height), Visible: box.Visible}
			if box.ID == IDBanner {
				box.ID = IDTitle
			}
			return []Element{&Banner{Frame: strip, Background: w.Background}, textBlock(box)}, nil
		}
		bg := w.Background
		if bg == "" {
			bg = w.Color
		}
		return []Element{&Banner{Frame: box, Background: bg}}, nil

	case KindText:
		return []Element{textBlock(box)}, nil

	case KindTable:
		title := w.Title
		if title == "" {
			title = w.TituloTabla
		}
		color := w.TitleColor
		if color == "" {
			color = w.ColorTituloTabla
		}
		headers := make([]Header, len(w.Headers))
		for i, h := range w.Headers {
			headers[i] = Header{Text: SanitizeText(h.Text), Color: h.Color}
		}
		return []Element{&Table{
			Frame:      box,
			Title:      SanitizeText(title),
			TitleColor: color,
			Headers:    headers,
			FontSize:   w.FontSize,
		}}, nil

	default:
		accent := w.AccentColor
		if accent == "" {
			accent = w.ColorTotal
		}
		lines := w.Lines
		if lines == nil {
			lines = w.Lineas
		}
		s := &SummaryBlock{Frame: box, FontSize: w.FontSize, AccentColor: accent}
		if lines != nil {
			s.Lines = make([]SummaryLine, len(*lines))
			for i, l := range *lines {
				s.Lines[i] = SummaryLine{Label: SanitizeText(l.Label), Color: l.Color}
			}
		}
		return []Element{s}, nil
	}
}

func parseAlign(s string) Align {
	switch strings.ToLower(s) {
	case "center", "c":
		return AlignCenter
	case "right", "r":
		return AlignRight
	case "left", "l":
		return AlignLeft
	}
	return ""
}

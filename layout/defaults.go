package layout

import "strings"

// DemoName is the name of the protected default template.
const DemoName = "DEMO"

// Demo returns a fresh copy of the protected default template.
func Demo() *Template {
	t := &Template{
		Name:           DemoName,
		Margin:         DefaultMargin,
		PrimaryColor:   DefaultPrimaryColor,
		SecondaryColor: DefaultSecondaryColor,
		Elements: []Element{
			&Banner{
				Frame:      Box{ID: IDBanner, X: 0, Y: 0, Width: PageWidth, Height: 35, Visible: true},
				Background: "#f97316",
			},
			&TextBlock{
				Frame:    Box{ID: IDTitle, X: 0, Y: 12, Width: PageWidth, Height: 12, Visible: true},
				Text:     "COTIZACIÓN - NOTA DE VENTA",
				FontSize: 20,
				Color:    "#ffffff",
				Bold:     true,
				Align:    AlignCenter,
			},
			&TextBlock{
				Frame:    Box{ID: IDSubtitle, X: 0, Y: 25, Width: PageWidth, Height: 8, Visible: true},
				Text:     "Sistema de Gestión",
				FontSize: 12,
				Color:    "#ffffff",
				Align:    AlignCenter,
			},
			&TextBlock{
				Frame: Box{ID: IDInfo, X: 20, Y: 42, Width: 170, Height: 30, Visible: true},
				Text: "INFORMACIÓN DE LA COTIZACIÓN\nCliente: {cliente}\nFecha: {fecha}\n" +
					"Vencimiento: {fechaVencimiento}\nVendedor: {vendedor}\nEstado: {estado}",
				FontSize: 10,
				Color:    DefaultTextColor,
				Align:    AlignLeft,
			},
			&TextBlock{
				Frame:    Box{ID: IDDivider1, X: 20, Y: 75, Width: 170, Height: 1, Visible: true},
				FontSize: 10,
				Color:    "#d1d5db",
				Align:    AlignLeft,
			},
			&Table{
				Frame:      Box{ID: IDTable, X: 20, Y: 78, Width: 170, Height: 100, Visible: true, Locked: true},
				Title:      "DETALLE DE PRODUCTOS",
				TitleColor: DefaultTextColor,
				Headers:    DefaultHeaders(),
				FontSize:   9,
			},
			&SummaryBlock{
				Frame:       Box{ID: IDTotals, X: DefaultMargin, Y: 185, Width: PageWidth - 2*DefaultMargin, Height: 20, Visible: true, Locked: true},
				Lines:       DefaultSummaryLines(DefaultAccentColor),
				FontSize:    10,
				AccentColor: DefaultAccentColor,
			},
			&TextBlock{
				Frame:    Box{ID: IDObservations, X: 20, Y: 225, Width: 170, Height: 20, Visible: true},
				Text:     "Observaciones:\n{observaciones}",
				FontSize: 11,
				Color:    DefaultTextColor,
				Align:    AlignLeft,
			},
		},
	}
	t.Normalize()
	return t
}

// NewElement returns an element of the given kind with the default size and
// payload used by the editor's "add element" action. The position is left at
// the origin; callers place it. accent colors new banners and summaries.
func NewElement(kind Kind, id, accent string) (Element, bool) {
	if accent == "" {
		accent = DefaultPrimaryColor
	}
	box := Box{ID: id, Visible: true}
	switch kind {
	case KindBanner:
		box.Width, box.Height = PageWidth, 35
		return &Banner{Frame: box, Background: accent}, true
	case KindText:
		box.Width, box.Height = 170, 20
		return &TextBlock{Frame: box, Text: "Nuevo texto", FontSize: 11, Color: DefaultTextColor, Align: AlignLeft}, true
	case KindTable:
		box.Width, box.Height = 170, 100
		box.Locked = true
		return &Table{Frame: box, Title: "DETALLE DE PRODUCTOS", TitleColor: DefaultTextColor, Headers: DefaultHeaders(), FontSize: 9}, true
	case KindSummary:
		box.Width, box.Height = 100, 40
		box.Locked = true
		return &SummaryBlock{Frame: box, Lines: DefaultSummaryLines(DefaultAccentColor), FontSize: 10, AccentColor: DefaultAccentColor}, true
	}
	return nil, false
}

// ParseKind maps a kind name, including the older Spanish names, to a Kind.
func ParseKind(s string) (Kind, bool) {
	k, ok := legacyKinds[strings.ToLower(strings.TrimSpace(s))]
	return k, ok
}

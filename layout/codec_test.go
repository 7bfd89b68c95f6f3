package layout

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestDecodeUpgradesStringHeaders(t *testing.T) {
	data := `{
		"name": "Old",
		"elements": [
			{"id": "table", "kind": "table", "x": 20, "y": 78, "width": 170, "height": 100,
			 "headers": ["Producto", "Cant."]}
		]
	}`
	tpl, err := Decode([]byte(data))
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	tbl, ok := tpl.Elements[0].(*Table)
	if !ok {
		t.Fatalf("element is %T, want *Table", tpl.Elements[0])
	}
	want := []Header{
		{Text: "Producto", Color: "#000000"},
		{Text: "Cant.", Color: "#000000"},
	}
	if diff := cmp.Diff(want, tbl.Headers); diff != "" {
		t.Errorf("headers mismatch (-want +got):\n%s", diff)
	}
	if !tbl.Frame.Locked {
		t.Error("table should be locked after decode")
	}
}

func TestDecodeAddsDefaultSummaryLines(t *testing.T) {
	data := `{
		"name": "Old",
		"colorPrimario": "#112233",
		"elements": [
			{"id": "totals", "kind": "summary", "x": 15, "y": 185, "width": 180, "height": 20}
		]
	}`
	tpl, err := Decode([]byte(data))
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	sum := tpl.Elements[0].(*SummaryBlock)
	if len(sum.Lines) != 4 {
		t.Fatalf("got %d lines, want 4", len(sum.Lines))
	}
	if got := sum.Lines[3]; got.Label != "TOTAL:" || got.Color != "#112233" {
		t.Errorf("last line = %+v, want TOTAL: in accent color", got)
	}
	for _, l := range sum.Lines[:3] {
		if l.Color != DefaultTextColor {
			t.Errorf("line %q color = %s, want %s", l.Label, l.Color, DefaultTextColor)
		}
	}
}

func TestDecodeLegacyShape(t *testing.T) {
	data := `{
		"nombre": "Vieja",
		"margen": 12,
		"elementos": [
			{"id": "header", "tipo": "header", "x": 5, "y": 7, "width": 100, "height": 35, "color": "#ff0000"},
			{"id": "titulo", "tipo": "header", "texto": "HOLA", "x": 105, "y": 15, "width": 180, "height": 10,
			 "fontSize": 20, "fontWeight": "bold", "align": "center", "color": "#ffffff"},
			{"id": "tabla_productos", "tipo": "tabla", "x": 15, "y": 90, "width": 180, "height": 100,
			 "headers": [{"texto": "Producto", "color": "#333333"}], "tituloTabla": "DETALLE"},
			{"id": "totales", "tipo": "totales", "x": 15, "y": 200, "width": 180, "height": 20,
			 "colorTotal": "#0284c7", "lineas": [{"label": "Subtotal:", "color": "#000000"}]},
			{"id": "oculto", "tipo": "texto", "texto": "x", "visible": false}
		]
	}`
	tpl, err := Decode([]byte(data))
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if tpl.Name != "Vieja" || tpl.Margin != 12 {
		t.Errorf("name/margin = %q/%v", tpl.Name, tpl.Margin)
	}

	banner := tpl.Elements[0].(*Banner)
	if banner.Frame.ID != IDBanner || banner.Frame.X != 0 || banner.Frame.Y != 0 || banner.Frame.Width != PageWidth {
		t.Errorf("banner not pinned: %+v", banner.Frame)
	}
	if banner.Background != "#ff0000" {
		t.Errorf("banner background = %s", banner.Background)
	}

	title := tpl.Elements[1].(*TextBlock)
	if title.Frame.ID != IDTitle || !title.Bold || title.Align != AlignCenter || title.Text != "HOLA" {
		t.Errorf("title = %+v", title)
	}

	tbl := tpl.Elements[2].(*Table)
	if tbl.Frame.ID != IDTable || tbl.Title != "DETALLE" || tbl.Headers[0].Color != "#333333" {
		t.Errorf("table = %+v", tbl)
	}

	sum := tpl.Elements[3].(*SummaryBlock)
	if sum.Frame.ID != IDTotals || len(sum.Lines) != 1 || sum.AccentColor != "#0284c7" {
		t.Errorf("summary = %+v", sum)
	}

	if tpl.Elements[4].Box().Visible {
		t.Error("explicit visible=false was lost")
	}
}

func TestDecodeUnknownKind(t *testing.T) {
	_, err := Decode([]byte(`{"name":"x","elements":[{"id":"a","kind":"image"}]}`))
	if err == nil || !strings.Contains(err.Error(), "unknown kind") {
		t.Fatalf("err = %v, want unknown kind", err)
	}
}

func TestDecodeTitleStrip(t *testing.T) {
	data := `{"name": "Vieja", "elementos": [
		{"id": "titulo", "tipo": "header", "texto": "COTIZACION", "x": 15, "y": 12, "width": 180, "height": 12,
		 "fontSize": 22, "backgroundColor": "#f97316", "color": "#ffffff"}
	]}`
	tpl, err := Decode([]byte(data))
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if len(tpl.Elements) != 2 {
		t.Fatalf("got %d elements, want banner and title", len(tpl.Elements))
	}
	banner, ok := tpl.Elements[0].(*Banner)
	if !ok {
		t.Fatalf("first element is %T, want *Banner", tpl.Elements[0])
	}
	if banner.Frame.ID != IDBanner || banner.Background != "#f97316" {
		t.Errorf("banner = %+v", banner)
	}
	if banner.Frame.X != 0 || banner.Frame.Y != 0 || banner.Frame.Width != PageWidth || banner.Frame.Height < 24 {
		t.Errorf("banner frame = %+v", banner.Frame)
	}
	title, ok := tpl.Elements[1].(*TextBlock)
	if !ok {
		t.Fatalf("second element is %T, want *TextBlock", tpl.Elements[1])
	}
	if title.Frame.ID != IDTitle || title.Text != "COTIZACION" || title.Color != "#ffffff" || title.Frame.Y != 12 {
		t.Errorf("title = %+v", title)
	}
}

func TestDecodeTitleStripKeepsStoredBanner(t *testing.T) {
	data := `{"name": "Vieja", "elementos": [
		{"id": "header", "tipo": "header", "height": 35, "backgroundColor": "#ff0000"},
		{"id": "titulo", "tipo": "header", "texto": "HOLA", "backgroundColor": "#00ff00"}
	]}`
	tpl, err := Decode([]byte(data))
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	banners := 0
	for _, el := range tpl.Elements {
		if b, ok := el.(*Banner); ok {
			banners++
			if b.Background != "#ff0000" {
				t.Errorf("background = %s, want the stored banner's", b.Background)
			}
		}
	}
	if banners != 1 {
		t.Errorf("got %d banners, want 1", banners)
	}
}

func TestDecodeListLenient(t *testing.T) {
	data := `[
		{"name": "Mine", "elements": [{"id": "a", "kind": "text", "text": "hola"}]},
		{"name": "Other", "elements": [
			{"id": "b", "kind": "text", "text": "ok"},
			{"id": "c", "tipo": "imagen"}
		]},
		"garbage",
		null
	]`
	list, skipped, err := DecodeListLenient([]byte(data))
	if err != nil {
		t.Fatalf("DecodeListLenient failed: %v", err)
	}
	var names []string
	for _, tpl := range list {
		names = append(names, tpl.Name)
	}
	if diff := cmp.Diff([]string{"Mine", "Other"}, names); diff != "" {
		t.Errorf("names mismatch (-want +got):\n%s", diff)
	}
	if n := len(list[1].Elements); n != 1 {
		t.Errorf("Other has %d elements, want 1", n)
	}
	if len(skipped) != 2 {
		t.Fatalf("skipped = %v, want 2 entries", skipped)
	}
	if !strings.Contains(skipped[0].Error(), "unknown kind") {
		t.Errorf("skipped[0] = %v", skipped[0])
	}

	if _, _, err := DecodeListLenient([]byte("{not json")); err == nil {
		t.Error("expected an error for a non-array collection")
	}
}

func TestRoundTrip(t *testing.T) {
	tpl := Demo()
	tpl.Elements = append(tpl.Elements, &TextBlock{
		Frame:    Box{ID: "extra", X: 30, Y: 250, Width: 50, Height: 10, Visible: false},
		Text:     "a < b & c",
		FontSize: 9,
		Color:    "#123456",
		Align:    AlignRight,
	})
	tpl.Normalize()

	data, err := Encode(tpl)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	got, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if diff := cmp.Diff(tpl, got); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestEncodeUsesCanonicalKeys(t *testing.T) {
	data, err := Encode(Demo())
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		t.Fatal(err)
	}
	for _, k := range []string{"name", "elements", "margin", "colorPrimario", "colorSecundario"} {
		if _, ok := m[k]; !ok {
			t.Errorf("missing key %q", k)
		}
	}
	for _, k := range []string{"nombre", "elementos", "margen"} {
		if _, ok := m[k]; ok {
			t.Errorf("legacy key %q written", k)
		}
	}
}

func TestListRoundTrip(t *testing.T) {
	list := []*Template{Demo(), Blank("Empty")}
	list[1].Normalize()
	data, err := EncodeList(list)
	if err != nil {
		t.Fatalf("EncodeList failed: %v", err)
	}
	got, err := DecodeList(data)
	if err != nil {
		t.Fatalf("DecodeList failed: %v", err)
	}
	if diff := cmp.Diff(list, got); diff != "" {
		t.Errorf("list mismatch (-want +got):\n%s", diff)
	}
}

func TestSanitizeText(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Hola {cliente}", "Hola {cliente}"},
		{"line1\nline2", "line1\nline2"},
		{"<b>Total</b>", "Total"},
		{"<script>alert(1)</script>ok", "ok"},
		{"a < b", "a < b"},
		{"Entrega <5 días>", "Entrega <5 días>"},
	}
	for _, tt := range tests {
		if got := SanitizeText(tt.in); got != tt.want {
			t.Errorf("SanitizeText(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

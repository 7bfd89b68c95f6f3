package mcp

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/lvillar/doclayout/export"
	"github.com/lvillar/doclayout/geometry"
	"github.com/lvillar/doclayout/kv"
	"github.com/lvillar/doclayout/layout"
	"github.com/lvillar/doclayout/placeholder"
	"github.com/lvillar/doclayout/store"
	"github.com/lvillar/doclayout/textmetrics"
)

func newTestBackend(t *testing.T) *Backend {
	t.Helper()
	clock := func() time.Time { return time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC) }
	return &Backend{
		Store:    store.New(context.Background(), kv.NewMemory()),
		Exporter: export.New(export.WithClock(clock)),
		Engine:   geometry.New(textmetrics.NewPDF()),
		Subst:    placeholder.New(nil),
	}
}

// callTool invokes a tool through the protocol and decodes its result.
func callTool(t *testing.T, s *Server, name string, args map[string]interface{}) ToolResult {
	t.Helper()
	resp := sendRequest(t, s, "tools/call", 1, map[string]interface{}{
		"name":      name,
		"arguments": args,
	})
	if resp.Error != nil {
		t.Fatalf("%s: unexpected protocol error: %v", name, resp.Error.Message)
	}
	data, err := json.Marshal(resp.Result)
	if err != nil {
		t.Fatal(err)
	}
	var res ToolResult
	if err := json.Unmarshal(data, &res); err != nil {
		t.Fatal(err)
	}
	if len(res.Content) == 0 {
		t.Fatalf("%s: empty result", name)
	}
	return res
}

func mustSucceed(t *testing.T, s *Server, name string, args map[string]interface{}) string {
	t.Helper()
	res := callTool(t, s, name, args)
	if res.IsError {
		t.Fatalf("%s: %s", name, res.Content[0].Text)
	}
	return res.Content[0].Text
}

func newToolServer(t *testing.T) (*Server, *Backend) {
	b := newTestBackend(t)
	s := NewServerWithIO(nil, nil)
	RegisterDefaultTools(s, b)
	return s, b
}

func TestTemplateLifecycleTools(t *testing.T) {
	s, b := newToolServer(t)

	mustSucceed(t, s, "create_template", map[string]interface{}{"name": "Mi Plantilla"})
	mustSucceed(t, s, "duplicate_template", map[string]interface{}{"name": "DEMO"})
	mustSucceed(t, s, "rename_template", map[string]interface{}{"name": "Mi Plantilla", "newName": "Ventas"})
	mustSucceed(t, s, "activate_template", map[string]interface{}{"name": "Ventas"})
	mustSucceed(t, s, "delete_template", map[string]interface{}{"name": "DEMO - Copy"})

	want := []string{"DEMO", "Ventas"}
	if got := b.Store.Names(); strings.Join(got, ",") != strings.Join(want, ",") {
		t.Fatalf("names = %v, want %v", got, want)
	}
	if b.Store.ActiveName() != "Ventas" {
		t.Fatalf("active = %q", b.Store.ActiveName())
	}

	list := mustSucceed(t, s, "list_templates", nil)
	if !strings.Contains(list, `"active": true`) || !strings.Contains(list, `"protected": true`) {
		t.Fatalf("unexpected listing: %s", list)
	}

	got := mustSucceed(t, s, "get_template", nil)
	tpl, err := layout.Decode([]byte(got))
	if err != nil {
		t.Fatal(err)
	}
	if tpl.Name != "Ventas" {
		t.Fatalf("get_template resolved %q, want the active template", tpl.Name)
	}
}

func TestProtectedTemplateTools(t *testing.T) {
	s, _ := newToolServer(t)

	for _, tc := range []struct {
		tool string
		args map[string]interface{}
	}{
		{"delete_template", map[string]interface{}{"name": "DEMO"}},
		{"rename_template", map[string]interface{}{"name": "DEMO", "newName": "X"}},
		{"move_element", map[string]interface{}{"id": "info", "x": 30.0, "y": 42.0}},
		{"create_template", map[string]interface{}{"name": "  "}},
	} {
		res := callTool(t, s, tc.tool, tc.args)
		if !res.IsError {
			t.Errorf("%s: expected error, got %s", tc.tool, res.Content[0].Text)
		}
	}
}

func TestMoveAndResizeTools(t *testing.T) {
	s, b := newToolServer(t)
	mustSucceed(t, s, "create_template", map[string]interface{}{"name": "Mi Plantilla"})

	mustSucceed(t, s, "move_element", map[string]interface{}{
		"template": "Mi Plantilla", "id": "info", "x": 5.0, "y": 42.0,
	})
	mustSucceed(t, s, "resize_element", map[string]interface{}{
		"template": "Mi Plantilla", "id": "info", "handle": "e", "dx": -10.0,
	})

	tpl, err := b.Store.Get("Mi Plantilla")
	if err != nil {
		t.Fatal(err)
	}
	el, _ := tpl.Find(layout.IDInfo)
	box := el.Box()
	if math.Abs(box.X-15) > 1e-6 || math.Abs(box.Width-160) > 1e-6 {
		t.Fatalf("info box = %+v, want x=15 width=160", *box)
	}

	res := callTool(t, s, "resize_element", map[string]interface{}{
		"template": "Mi Plantilla", "id": "info", "handle": "middle",
	})
	if !res.IsError {
		t.Fatal("expected error for an unknown handle")
	}
	res = callTool(t, s, "move_element", map[string]interface{}{
		"template": "Mi Plantilla", "id": "missing", "x": 20.0, "y": 20.0,
	})
	if !res.IsError {
		t.Fatal("expected error for an unknown element")
	}
}

func TestAddAndRemoveElementTools(t *testing.T) {
	s, b := newToolServer(t)
	mustSucceed(t, s, "create_template", map[string]interface{}{"name": "Mi Plantilla"})

	out := mustSucceed(t, s, "add_element", map[string]interface{}{
		"template": "Mi Plantilla", "kind": "texto", "text": "Nota para {cliente}",
	})
	var box layout.Box
	if err := json.Unmarshal([]byte(out), &box); err != nil {
		t.Fatal(err)
	}

	tpl, _ := b.Store.Get("Mi Plantilla")
	tb, ok := tpl.FindText(box.ID)
	if !ok || tb.Text != "Nota para {cliente}" {
		t.Fatalf("added element %q not stored with its text", box.ID)
	}

	overlaps := mustSucceed(t, s, "check_overlaps", map[string]interface{}{"template": "Mi Plantilla"})
	if strings.TrimSpace(overlaps) != "[]" {
		t.Fatalf("placed element overlaps: %s", overlaps)
	}

	mustSucceed(t, s, "remove_element", map[string]interface{}{"template": "Mi Plantilla", "id": box.ID})
	tpl, _ = b.Store.Get("Mi Plantilla")
	if _, ok := tpl.Find(box.ID); ok {
		t.Fatal("element still present after remove_element")
	}

	res := callTool(t, s, "add_element", map[string]interface{}{"template": "Mi Plantilla", "kind": "imagen"})
	if !res.IsError {
		t.Fatal("expected error for an unknown kind")
	}
	if _, ok := b.Store.Draft(); ok {
		t.Fatal("draft left behind after successful saves")
	}
}

func TestRejectedEditIsKeptAsDraft(t *testing.T) {
	s, b := newToolServer(t)

	res := callTool(t, s, "add_element", map[string]interface{}{"kind": "text"})
	if !res.IsError {
		t.Fatal("expected DEMO to reject the edit")
	}
	d, ok := b.Store.Draft()
	if !ok {
		t.Fatal("rejected edit was not kept as a draft")
	}
	if len(d.Elements) != len(layout.Demo().Elements)+1 {
		t.Fatalf("draft has %d elements", len(d.Elements))
	}
}

func TestAutoArrangeTool(t *testing.T) {
	s, b := newToolServer(t)

	tpl := layout.Demo()
	tpl.Name = "Desordenada"
	el, _ := tpl.Find(layout.IDInfo)
	el.Box().Y = 80
	if err := b.Store.Save(context.Background(), tpl); err != nil {
		t.Fatal(err)
	}

	mustSucceed(t, s, "auto_arrange", map[string]interface{}{"template": "Desordenada"})

	got, _ := b.Store.Get("Desordenada")
	if geometry.HasOverlaps(got.Elements) {
		t.Fatal("template still has overlaps after auto_arrange")
	}
}

func TestSaveTemplateToolUpgradesLegacyShape(t *testing.T) {
	s, b := newToolServer(t)

	mustSucceed(t, s, "save_template", map[string]interface{}{
		"template": map[string]interface{}{
			"nombre": "Antigua",
			"elementos": []interface{}{
				map[string]interface{}{"id": "productos", "tipo": "tabla", "x": 20.0, "y": 80.0, "width": 170.0, "height": 100.0},
			},
		},
	})

	tpl, err := b.Store.Get("Antigua")
	if err != nil {
		t.Fatal(err)
	}
	el, ok := tpl.Find(layout.IDTable)
	if !ok || !el.Box().Locked {
		t.Fatal("legacy table not upgraded")
	}
}

func TestPreviewTextTool(t *testing.T) {
	s, _ := newToolServer(t)

	got := mustSucceed(t, s, "preview_text", map[string]interface{}{"text": "Cliente: {cliente}"})
	if got != "Cliente: ____________" {
		t.Fatalf("preview = %q", got)
	}
	got = mustSucceed(t, s, "preview_text", map[string]interface{}{
		"text":   "Cliente: {cliente}",
		"values": map[string]interface{}{"cliente": "Juan"},
	})
	if got != "Cliente: Juan" {
		t.Fatalf("substitute = %q", got)
	}
}

func TestExportPDFTool(t *testing.T) {
	s, _ := newToolServer(t)

	res := callTool(t, s, "export_pdf", map[string]interface{}{
		"values": map[string]interface{}{"cliente": "Juan"},
		"items": []interface{}{
			map[string]interface{}{"nombre": "Cable", "cantidad": 2.0, "precioUnitario": 10.0},
		},
	})
	if res.IsError {
		t.Fatalf("export_pdf: %s", res.Content[0].Text)
	}
	if len(res.Content) != 2 || res.Content[1].MIMEType != "application/pdf" {
		t.Fatalf("unexpected content: %+v", res.Content)
	}
	data, err := base64.StdEncoding.DecodeString(res.Content[1].Data)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(data), "%PDF-") {
		t.Fatal("output is not a PDF")
	}

	path := filepath.Join(t.TempDir(), "cotizacion.pdf")
	mustSucceed(t, s, "export_pdf", map[string]interface{}{
		"quote": map[string]interface{}{
			"cliente": "Juan",
			"fecha":   "2024-01-15T00:00:00Z",
			"items":   []interface{}{map[string]interface{}{"nombre": "Cable", "cantidad": 1.0, "precioUnitario": 5.0}},
		},
		"outputPath": path,
	})
	written, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(written), "%PDF-") {
		t.Fatal("written file is not a PDF")
	}
}

func TestEndToEndScenario(t *testing.T) {
	s, b := newToolServer(t)
	if got := b.Store.Names(); len(got) != 1 || got[0] != layout.DemoName {
		t.Fatalf("fresh store names = %v", got)
	}

	mustSucceed(t, s, "save_template", map[string]interface{}{
		"template": map[string]interface{}{
			"name": "Escenario",
			"elements": []interface{}{
				map[string]interface{}{
					"id": "saludo", "kind": "text", "x": 20.0, "y": 40.0, "width": 100.0, "height": 10.0,
					"text": "Hola {cliente}",
				},
			},
		},
	})

	tpl, err := b.Store.Get("Escenario")
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	report, err := b.Exporter.Export(&buf, tpl, export.Data{Values: placeholder.Values{"cliente": "Juan"}})
	if err != nil {
		t.Fatal(err)
	}
	run, ok := report.Find("Hola Juan")
	if !ok || math.Abs(run.X-20) > 1e-6 {
		t.Fatalf("Hola Juan run = %+v, found %v", run, ok)
	}

	out := mustSucceed(t, s, "move_element", map[string]interface{}{
		"template": "Escenario", "id": "saludo", "x": 5.0, "y": 40.0,
	})
	var box layout.Box
	if err := json.Unmarshal([]byte(out), &box); err != nil {
		t.Fatal(err)
	}
	if box.X != 15 {
		t.Fatalf("moved x = %v, want 15", box.X)
	}

	if res := callTool(t, s, "delete_template", map[string]interface{}{"name": "DEMO"}); !res.IsError {
		t.Fatal("DEMO was deleted")
	}
	if got := b.Store.Names(); got[0] != layout.DemoName {
		t.Fatalf("names = %v", got)
	}
}

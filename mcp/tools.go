package mcp

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/lvillar/doclayout"
	"github.com/lvillar/doclayout/canvas"
	"github.com/lvillar/doclayout/export"
	"github.com/lvillar/doclayout/geometry"
	"github.com/lvillar/doclayout/layout"
	"github.com/lvillar/doclayout/placeholder"
	"github.com/lvillar/doclayout/quote"
	"github.com/lvillar/doclayout/store"
)

// Backend is what the default tools operate on.
type Backend struct {
	Store    *store.Store
	Exporter *export.Exporter
	Engine   *geometry.Engine
	Subst    *placeholder.Engine
}

// RegisterDefaultTools adds all built-in template tools to the server.
func RegisterDefaultTools(s *Server, b *Backend) {
	s.AddTool(listTemplatesTool(b))
	s.AddTool(getTemplateTool(b))
	s.AddTool(createTemplateTool(b))
	s.AddTool(duplicateTemplateTool(b))
	s.AddTool(renameTemplateTool(b))
	s.AddTool(deleteTemplateTool(b))
	s.AddTool(saveTemplateTool(b))
	s.AddTool(activateTemplateTool(b))
	s.AddTool(addElementTool(b))
	s.AddTool(removeElementTool(b))
	s.AddTool(moveElementTool(b))
	s.AddTool(resizeElementTool(b))
	s.AddTool(autoArrangeTool(b))
	s.AddTool(checkOverlapsTool(b))
	s.AddTool(previewTextTool(b))
	s.AddTool(exportPDFTool(b))
}

func schema(required []string, props map[string]interface{}) map[string]interface{} {
	out := map[string]interface{}{
		"type":       "object",
		"properties": props,
	}
	if len(required) > 0 {
		out["required"] = required
	}
	return out
}

func prop(typ, desc string) map[string]interface{} {
	return map[string]interface{}{"type": typ, "description": desc}
}

var templateProp = prop("string", "Template name. Defaults to the active template, or DEMO when none is active.")

func textResult(format string, args ...interface{}) ToolResult {
	return ToolResult{Content: []ContentBlock{{Type: "text", Text: fmt.Sprintf(format, args...)}}}
}

func jsonResult(v interface{}) (ToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return ToolResult{}, fmt.Errorf("encoding result: %w", err)
	}
	return ToolResult{Content: []ContentBlock{{Type: "text", MIMEType: "application/json", Text: string(data)}}}, nil
}

func stringArg(args map[string]interface{}, key string) (string, error) {
	v, ok := args[key].(string)
	if !ok || strings.TrimSpace(v) == "" {
		return "", fmt.Errorf("missing '%s' argument", key)
	}
	return v, nil
}

func optString(args map[string]interface{}, key string) string {
	v, _ := args[key].(string)
	return v
}

func numberArg(args map[string]interface{}, key string) (float64, error) {
	v, ok := args[key].(float64)
	if !ok {
		return 0, fmt.Errorf("missing or non-numeric '%s' argument", key)
	}
	return v, nil
}

// resolve returns a copy of the named template, the active one, or DEMO.
func (b *Backend) resolve(args map[string]interface{}) (*layout.Template, error) {
	if name := optString(args, "template"); name != "" {
		return b.Store.Get(name)
	}
	if t, ok := b.Store.Active(); ok {
		return t, nil
	}
	return b.Store.Get(layout.DemoName)
}

func listTemplatesTool(b *Backend) Tool {
	return Tool{
		Name:        "list_templates",
		Description: "List the stored templates with their element count and the active marker.",
		InputSchema: schema(nil, map[string]interface{}{}),
		Handler: func(ctx context.Context, args map[string]interface{}) (ToolResult, error) {
			type entry struct {
				Name      string `json:"name"`
				Elements  int    `json:"elements"`
				Active    bool   `json:"active"`
				Protected bool   `json:"protected"`
			}
			var out []entry
			for _, t := range b.Store.List() {
				out = append(out, entry{
					Name:      t.Name,
					Elements:  len(t.Elements),
					Active:    t.Name == b.Store.ActiveName(),
					Protected: store.Protected(t.Name),
				})
			}
			return jsonResult(out)
		},
	}
}

func getTemplateTool(b *Backend) Tool {
	return Tool{
		Name:        "get_template",
		Description: "Return a template as JSON.",
		InputSchema: schema(nil, map[string]interface{}{"template": templateProp}),
		Handler: func(ctx context.Context, args map[string]interface{}) (ToolResult, error) {
			t, err := b.resolve(args)
			if err != nil {
				return ToolResult{}, err
			}
			return jsonResult(t)
		},
	}
}

func createTemplateTool(b *Backend) Tool {
	return Tool{
		Name:        "create_template",
		Description: "Create a template. It starts as a copy of the DEMO layout unless blank is true.",
		InputSchema: schema([]string{"name"}, map[string]interface{}{
			"name":  prop("string", "Unique template name"),
			"blank": prop("boolean", "Start with no elements"),
		}),
		Handler: func(ctx context.Context, args map[string]interface{}) (ToolResult, error) {
			name, err := stringArg(args, "name")
			if err != nil {
				return ToolResult{}, err
			}
			blank, _ := args["blank"].(bool)
			t, err := b.Store.Create(ctx, name, blank)
			if err != nil {
				return ToolResult{}, err
			}
			return textResult("Template created: %s (%d elements)", t.Name, len(t.Elements)), nil
		},
	}
}

func duplicateTemplateTool(b *Backend) Tool {
	return Tool{
		Name:        "duplicate_template",
		Description: "Copy a template under a new \"<name> - Copy\" name. This is the only way to derive an editable template from DEMO.",
		InputSchema: schema([]string{"name"}, map[string]interface{}{"name": prop("string", "Template to copy")}),
		Handler: func(ctx context.Context, args map[string]interface{}) (ToolResult, error) {
			name, err := stringArg(args, "name")
			if err != nil {
				return ToolResult{}, err
			}
			copyName, err := b.Store.Duplicate(ctx, name)
			if err != nil {
				return ToolResult{}, err
			}
			return textResult("Template duplicated: %s", copyName), nil
		},
	}
}

func renameTemplateTool(b *Backend) Tool {
	return Tool{
		Name:        "rename_template",
		Description: "Rename a template. DEMO cannot be renamed.",
		InputSchema: schema([]string{"name", "newName"}, map[string]interface{}{
			"name":    prop("string", "Current name"),
			"newName": prop("string", "New unique name"),
		}),
		Handler: func(ctx context.Context, args map[string]interface{}) (ToolResult, error) {
			name, err := stringArg(args, "name")
			if err != nil {
				return ToolResult{}, err
			}
			newName, err := stringArg(args, "newName")
			if err != nil {
				return ToolResult{}, err
			}
			if err := b.Store.Rename(ctx, name, newName); err != nil {
				return ToolResult{}, err
			}
			return textResult("Template renamed: %s -> %s", name, newName), nil
		},
	}
}

func deleteTemplateTool(b *Backend) Tool {
	return Tool{
		Name:        "delete_template",
		Description: "Delete a template. DEMO cannot be deleted.",
		InputSchema: schema([]string{"name"}, map[string]interface{}{"name": prop("string", "Template to delete")}),
		Handler: func(ctx context.Context, args map[string]interface{}) (ToolResult, error) {
			name, err := stringArg(args, "name")
			if err != nil {
				return ToolResult{}, err
			}
			if err := b.Store.Delete(ctx, name); err != nil {
				return ToolResult{}, err
			}
			return textResult("Template deleted: %s", name), nil
		},
	}
}

func saveTemplateTool(b *Backend) Tool {
	return Tool{
		Name:        "save_template",
		Description: "Insert or replace a template from its JSON form. Legacy shapes are upgraded on load.",
		InputSchema: schema([]string{"template"}, map[string]interface{}{
			"template": prop("object", "Template JSON with name, margin, colors and elements"),
		}),
		Handler: func(ctx context.Context, args map[string]interface{}) (ToolResult, error) {
			raw, ok := args["template"]
			if !ok {
				return ToolResult{}, fmt.Errorf("missing 'template' argument")
			}
			data, err := json.Marshal(raw)
			if err != nil {
				return ToolResult{}, fmt.Errorf("encoding template: %w", err)
			}
			t, err := layout.Decode(data)
			if err != nil {
				return ToolResult{}, err
			}
			if err := b.Store.Save(ctx, t); err != nil {
				return ToolResult{}, err
			}
			return textResult("Template saved: %s (%d elements)", t.Name, len(t.Elements)), nil
		},
	}
}

func activateTemplateTool(b *Backend) Tool {
	return Tool{
		Name:        "activate_template",
		Description: "Mark a template as the one used for new documents.",
		InputSchema: schema([]string{"name"}, map[string]interface{}{"name": prop("string", "Template to activate")}),
		Handler: func(ctx context.Context, args map[string]interface{}) (ToolResult, error) {
			name, err := stringArg(args, "name")
			if err != nil {
				return ToolResult{}, err
			}
			if err := b.Store.SetActive(ctx, name); err != nil {
				return ToolResult{}, err
			}
			return textResult("Active template: %s", name), nil
		},
	}
}

// edit loads the target template into an editor controller, applies fn and
// saves the committed result. Every commit is kept as the store's draft until
// the save succeeds.
func (b *Backend) edit(ctx context.Context, args map[string]interface{}, fn func(*canvas.Controller) error) (*layout.Template, error) {
	t, err := b.resolve(args)
	if err != nil {
		return nil, err
	}
	var committed *layout.Template
	ctl := canvas.New(
		canvas.WithMeasurer(b.Engine.Measurer),
		canvas.WithSubstituter(b.Subst),
		canvas.WithCommit(func(t *layout.Template) {
			committed = t
			b.Store.SaveDraft(ctx, t)
		}),
	)
	ctl.Load(t)
	if err := fn(ctl); err != nil {
		return nil, err
	}
	if committed == nil {
		committed = ctl.Template()
	}
	if err := b.Store.Save(ctx, committed); err != nil {
		return nil, err
	}
	b.Store.ClearDraft(ctx)
	return committed, nil
}

func addElementTool(b *Backend) Tool {
	return Tool{
		Name:        "add_element",
		Description: "Add an element of the given kind (banner, text, table, summary) at the first free position.",
		InputSchema: schema([]string{"kind"}, map[string]interface{}{
			"template": templateProp,
			"kind":     prop("string", "Element kind"),
			"text":     prop("string", "Initial text for text elements"),
		}),
		Handler: func(ctx context.Context, args map[string]interface{}) (ToolResult, error) {
			name, err := stringArg(args, "kind")
			if err != nil {
				return ToolResult{}, err
			}
			kind, ok := layout.ParseKind(name)
			if !ok {
				return ToolResult{}, doclayout.NewError("add_element", name, doclayout.ErrUnsupported)
			}
			var id string
			t, err := b.edit(ctx, args, func(c *canvas.Controller) error {
				if id, err = c.AddElement(kind); err != nil {
					return err
				}
				if s := optString(args, "text"); s != "" {
					return c.Edit(id, func(el layout.Element) {
						if tb, ok := el.(*layout.TextBlock); ok {
							tb.Text = layout.SanitizeText(s)
						}
					})
				}
				return nil
			})
			if err != nil {
				return ToolResult{}, err
			}
			el, _ := t.Find(id)
			return jsonResult(el.Box())
		},
	}
}

func removeElementTool(b *Backend) Tool {
	return Tool{
		Name:        "remove_element",
		Description: "Remove an element from a template.",
		InputSchema: schema([]string{"id"}, map[string]interface{}{
			"template": templateProp,
			"id":       prop("string", "Element id"),
		}),
		Handler: func(ctx context.Context, args map[string]interface{}) (ToolResult, error) {
			id, err := stringArg(args, "id")
			if err != nil {
				return ToolResult{}, err
			}
			if _, err := b.edit(ctx, args, func(c *canvas.Controller) error { return c.RemoveElement(id) }); err != nil {
				return ToolResult{}, err
			}
			return textResult("Element removed: %s", id), nil
		},
	}
}

func moveElementTool(b *Backend) Tool {
	return Tool{
		Name:        "move_element",
		Description: "Move an element's top-left corner to (x, y) in millimeters. The position is clamped to the margins and snapped clear of a single overlapped element.",
		InputSchema: schema([]string{"id", "x", "y"}, map[string]interface{}{
			"template": templateProp,
			"id":       prop("string", "Element id"),
			"x":        prop("number", "Left edge, mm"),
			"y":        prop("number", "Top edge, mm"),
		}),
		Handler: func(ctx context.Context, args map[string]interface{}) (ToolResult, error) {
			id, err := stringArg(args, "id")
			if err != nil {
				return ToolResult{}, err
			}
			x, err := numberArg(args, "x")
			if err != nil {
				return ToolResult{}, err
			}
			y, err := numberArg(args, "y")
			if err != nil {
				return ToolResult{}, err
			}
			return b.applyGeometry(ctx, args, id, func(t *layout.Template) (layout.Box, bool) {
				return b.Engine.Move(t, id, x, y)
			})
		},
	}
}

func resizeElementTool(b *Backend) Tool {
	return Tool{
		Name:        "resize_element",
		Description: "Drag a resize handle (n, s, e, w, ne, nw, se, sw) by (dx, dy) millimeters. The opposite edge stays anchored.",
		InputSchema: schema([]string{"id", "handle"}, map[string]interface{}{
			"template": templateProp,
			"id":       prop("string", "Element id"),
			"handle":   prop("string", "Handle to drag"),
			"dx":       prop("number", "Horizontal drag, mm"),
			"dy":       prop("number", "Vertical drag, mm"),
		}),
		Handler: func(ctx context.Context, args map[string]interface{}) (ToolResult, error) {
			id, err := stringArg(args, "id")
			if err != nil {
				return ToolResult{}, err
			}
			h := geometry.Handle(optString(args, "handle"))
			if !h.Valid() {
				return ToolResult{}, fmt.Errorf("unknown handle %q", h)
			}
			dx, _ := args["dx"].(float64)
			dy, _ := args["dy"].(float64)
			return b.applyGeometry(ctx, args, id, func(t *layout.Template) (layout.Box, bool) {
				el, ok := t.Find(id)
				if !ok {
					return layout.Box{}, false
				}
				return b.Engine.Resize(t, id, h, *el.Box(), dx, dy)
			})
		},
	}
}

func (b *Backend) applyGeometry(ctx context.Context, args map[string]interface{}, id string, fn func(*layout.Template) (layout.Box, bool)) (ToolResult, error) {
	t, err := b.resolve(args)
	if err != nil {
		return ToolResult{}, err
	}
	box, ok := fn(t)
	if !ok {
		return ToolResult{}, doclayout.NewError("geometry", id, doclayout.ErrUnknownElement)
	}
	geometry.Apply(t, box)
	if err := b.Store.Save(ctx, t); err != nil {
		return ToolResult{}, err
	}
	return jsonResult(box)
}

func autoArrangeTool(b *Backend) Tool {
	return Tool{
		Name:        "auto_arrange",
		Description: "Move the well-known elements to their canonical positions.",
		InputSchema: schema(nil, map[string]interface{}{"template": templateProp}),
		Handler: func(ctx context.Context, args map[string]interface{}) (ToolResult, error) {
			t, err := b.edit(ctx, args, func(c *canvas.Controller) error {
				c.AutoArrange()
				return nil
			})
			if err != nil {
				return ToolResult{}, err
			}
			return textResult("Template arranged: %s", t.Name), nil
		},
	}
}

func checkOverlapsTool(b *Backend) Tool {
	return Tool{
		Name:        "check_overlaps",
		Description: "List the pairs of visible elements that overlap.",
		InputSchema: schema(nil, map[string]interface{}{"template": templateProp}),
		Handler: func(ctx context.Context, args map[string]interface{}) (ToolResult, error) {
			t, err := b.resolve(args)
			if err != nil {
				return ToolResult{}, err
			}
			pairs := [][2]string{}
			for i, a := range t.Elements {
				for _, c := range t.Elements[i+1:] {
					if a.Box().Visible && c.Box().Visible && geometry.Collides(a, c) {
						pairs = append(pairs, [2]string{a.Box().ID, c.Box().ID})
					}
				}
			}
			return jsonResult(pairs)
		},
	}
}

func previewTextTool(b *Backend) Tool {
	return Tool{
		Name:        "preview_text",
		Description: "Substitute placeholder tokens such as {cliente} or {total} in a text. Without values, tokens are shown as blanks.",
		InputSchema: schema([]string{"text"}, map[string]interface{}{
			"text":   prop("string", "Text with tokens"),
			"values": prop("object", "Token values"),
		}),
		Handler: func(ctx context.Context, args map[string]interface{}) (ToolResult, error) {
			s, ok := args["text"].(string)
			if !ok {
				return ToolResult{}, fmt.Errorf("missing 'text' argument")
			}
			values, ok := args["values"].(map[string]interface{})
			if !ok {
				return textResult("%s", b.Subst.Preview(s)), nil
			}
			return textResult("%s", b.Subst.Substitute(s, placeholder.Values(values))), nil
		},
	}
}

func exportPDFTool(b *Backend) Tool {
	return Tool{
		Name:        "export_pdf",
		Description: "Render a template as PDF. Pass a quotation, or a value map plus line items. Returns base64 unless outputPath is given.",
		InputSchema: schema(nil, map[string]interface{}{
			"template":   templateProp,
			"quote":      prop("object", "Quotation with cliente, vendedor, fecha, estado, items, descuento"),
			"values":     prop("object", "Token values, used when no quote is given"),
			"items":      prop("array", "Line items: nombre, codigoInterno, cantidad, precioUnitario, descuentoMonto, presentacion"),
			"outputPath": prop("string", "Optional file path to save the PDF. If omitted, returns base64."),
		}),
		Handler: func(ctx context.Context, args map[string]interface{}) (ToolResult, error) {
			t, err := b.resolve(args)
			if err != nil {
				return ToolResult{}, err
			}
			data, err := exportData(args)
			if err != nil {
				return ToolResult{}, err
			}

			var buf bytes.Buffer
			report, err := b.Exporter.Export(&buf, t, data)
			if err != nil {
				return ToolResult{}, err
			}

			if outputPath := optString(args, "outputPath"); outputPath != "" {
				if err := os.WriteFile(outputPath, buf.Bytes(), 0644); err != nil {
					return ToolResult{}, fmt.Errorf("writing file: %w", err)
				}
				return textResult("PDF exported: %s (%d pages, %d bytes)", outputPath, report.Pages, buf.Len()), nil
			}
			return ToolResult{
				Content: []ContentBlock{
					{Type: "text", Text: fmt.Sprintf("PDF exported (%d pages, %d bytes)", report.Pages, buf.Len())},
					{Type: "resource", MIMEType: "application/pdf", Data: base64.StdEncoding.EncodeToString(buf.Bytes())},
				},
			}, nil
		},
	}
}

// exportData decodes either a quote or a value map and item list.
func exportData(args map[string]interface{}) (export.Data, error) {
	if raw, ok := args["quote"]; ok {
		var q quote.Quote
		if err := remarshal(raw, &q); err != nil {
			return export.Data{}, fmt.Errorf("decoding quote: %w", err)
		}
		return export.FromQuote(&q), nil
	}
	var d export.Data
	if v, ok := args["values"].(map[string]interface{}); ok {
		d.Values = placeholder.Values(v)
	}
	if raw, ok := args["items"]; ok {
		if err := remarshal(raw, &d.Items); err != nil {
			return export.Data{}, fmt.Errorf("decoding items: %w", err)
		}
	}
	return d, nil
}

func remarshal(in, out interface{}) error {
	data, err := json.Marshal(in)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, out)
}

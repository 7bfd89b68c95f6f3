package cli

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/lvillar/doclayout"
	"github.com/lvillar/doclayout/canvas"
	"github.com/lvillar/doclayout/export"
	"github.com/lvillar/doclayout/layout"
	"github.com/lvillar/doclayout/placeholder"
	"github.com/lvillar/doclayout/quote"
	"github.com/lvillar/doclayout/store"
)

func (a *App) flags(name, operands string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(a.Err)
	fs.Usage = func() {
		fmt.Fprintf(a.Err, "Usage: doclayout %s [options] %s\n\n", name, operands)
		fmt.Fprintln(a.Err, "Options:")
		fs.PrintDefaults()
	}
	return fs
}

func parse(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return err
		}
		return fmt.Errorf("%w: %v", errUsage, err)
	}
	return nil
}

// templateArg returns operand i, or asks the user to pick a stored template.
func (a *App) templateArg(ctx context.Context, fs *flag.FlagSet, i int) (string, error) {
	if fs.NArg() > i {
		return fs.Arg(i), nil
	}
	return a.Prompt.Select(ctx, "Template:", a.Env.Store.Names())
}

// nameArg returns operand i, or asks the user to type a name.
func (a *App) nameArg(ctx context.Context, fs *flag.FlagSet, i int, message, def string) (string, error) {
	if fs.NArg() > i {
		return fs.Arg(i), nil
	}
	return a.Prompt.Input(ctx, message, def)
}

func (a *App) list(ctx context.Context, args []string) error {
	fs := a.flags("list", "")
	asJSON := fs.Bool("json", false, "Output the listing as JSON")
	if err := parse(fs, args); err != nil {
		return err
	}

	type entry struct {
		Name      string `json:"name"`
		Elements  int    `json:"elements"`
		Active    bool   `json:"active"`
		Protected bool   `json:"protected"`
	}
	var entries []entry
	for _, t := range a.Env.Store.List() {
		entries = append(entries, entry{
			Name:      t.Name,
			Elements:  len(t.Elements),
			Active:    t.Name == a.Env.Store.ActiveName(),
			Protected: store.Protected(t.Name),
		})
	}

	if *asJSON {
		enc := json.NewEncoder(a.Out)
		enc.SetIndent("", "  ")
		return enc.Encode(entries)
	}
	for _, e := range entries {
		marker := " "
		if e.Active {
			marker = "*"
		}
		note := ""
		if e.Protected {
			note = " (protected)"
		}
		fmt.Fprintf(a.Out, "%s %s%s, %d elements\n", marker, e.Name, note, e.Elements)
	}
	return nil
}

func (a *App) show(ctx context.Context, args []string) error {
	fs := a.flags("show", "[template]")
	if err := parse(fs, args); err != nil {
		return err
	}
	name, err := a.templateArg(ctx, fs, 0)
	if err != nil {
		return err
	}
	t, err := a.Env.Store.Get(name)
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(t, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(a.Out, string(data))
	return nil
}

func (a *App) create(ctx context.Context, args []string) error {
	fs := a.flags("create", "[name]")
	blank := fs.Bool("blank", false, "Start with no elements instead of the DEMO layout")
	if err := parse(fs, args); err != nil {
		return err
	}
	name, err := a.nameArg(ctx, fs, 0, "Template name:", "")
	if err != nil {
		return err
	}
	t, err := a.Env.Store.Create(ctx, name, *blank)
	if err != nil {
		return err
	}
	if *blank {
		if err := a.Env.Store.Save(ctx, a.Env.NewTemplate(t.Name)); err != nil {
			return err
		}
	}
	fmt.Fprintf(a.Out, "Created template %q\n", t.Name)
	return nil
}

func (a *App) duplicate(ctx context.Context, args []string) error {
	fs := a.flags("duplicate", "[template]")
	if err := parse(fs, args); err != nil {
		return err
	}
	name, err := a.templateArg(ctx, fs, 0)
	if err != nil {
		return err
	}
	copyName, err := a.Env.Store.Duplicate(ctx, name)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.Out, "Created template %q\n", copyName)
	return nil
}

func (a *App) rename(ctx context.Context, args []string) error {
	fs := a.flags("rename", "[template] [new-name]")
	if err := parse(fs, args); err != nil {
		return err
	}
	oldName, err := a.templateArg(ctx, fs, 0)
	if err != nil {
		return err
	}
	if store.Protected(oldName) {
		return doclayout.NewError("Rename", oldName, doclayout.ErrProtectedTemplate)
	}
	newName, err := a.nameArg(ctx, fs, 1, "New name:", oldName)
	if err != nil {
		return err
	}
	if err := a.Env.Store.Rename(ctx, oldName, newName); err != nil {
		return err
	}
	fmt.Fprintf(a.Out, "Renamed %q to %q\n", oldName, newName)
	return nil
}

func (a *App) delete(ctx context.Context, args []string) error {
	fs := a.flags("delete", "[template]")
	yes := fs.Bool("yes", false, "Do not ask for confirmation")
	if err := parse(fs, args); err != nil {
		return err
	}
	name, err := a.templateArg(ctx, fs, 0)
	if err != nil {
		return err
	}
	if store.Protected(name) {
		return doclayout.NewError("Delete", name, doclayout.ErrProtectedTemplate)
	}
	if _, err := a.Env.Store.Get(name); err != nil {
		return err
	}
	if !*yes {
		ok, err := a.Prompt.Confirm(ctx, fmt.Sprintf("Delete template %q?", name), false)
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintln(a.Out, "Canceled")
			return nil
		}
	}
	if err := a.Env.Store.Delete(ctx, name); err != nil {
		return err
	}
	fmt.Fprintf(a.Out, "Deleted template %q\n", name)
	return nil
}

func (a *App) activate(ctx context.Context, args []string) error {
	fs := a.flags("activate", "[template]")
	if err := parse(fs, args); err != nil {
		return err
	}
	name, err := a.templateArg(ctx, fs, 0)
	if err != nil {
		return err
	}
	if err := a.Env.Store.SetActive(ctx, name); err != nil {
		return err
	}
	fmt.Fprintf(a.Out, "Active template: %s\n", a.Env.Store.ActiveName())
	return nil
}

func (a *App) arrange(ctx context.Context, args []string) error {
	fs := a.flags("arrange", "[template]")
	if err := parse(fs, args); err != nil {
		return err
	}
	name, err := a.templateArg(ctx, fs, 0)
	if err != nil {
		return err
	}
	t, err := a.Env.Store.Get(name)
	if err != nil {
		return err
	}

	var arranged *layout.Template
	ctl := a.Env.Controller(canvas.WithCommit(func(t *layout.Template) {
		arranged = t
		a.Env.Store.SaveDraft(ctx, t)
	}))
	ctl.Load(t)
	ctl.AutoArrange()
	if err := a.Env.Store.Save(ctx, arranged); err != nil {
		return err
	}
	a.Env.Store.ClearDraft(ctx)
	fmt.Fprintf(a.Out, "Arranged template %q\n", arranged.Name)
	return nil
}

func (a *App) preview(ctx context.Context, args []string) error {
	fs := a.flags("preview", "[template]")
	valuesPath := fs.String("values", "", "JSON file with token values")
	quotePath := fs.String("quote", "", "JSON file with a quotation")
	if err := parse(fs, args); err != nil {
		return err
	}
	name, err := a.templateArg(ctx, fs, 0)
	if err != nil {
		return err
	}
	t, err := a.Env.Store.Get(name)
	if err != nil {
		return err
	}
	data, err := loadData(*valuesPath, *quotePath)
	if err != nil {
		return err
	}

	ctl := a.Env.Controller()
	ctl.Load(t)
	ctl.SetPreviewValues(data.Values)
	for _, el := range layout.PaintOrder(t.Elements, "") {
		s := ctl.DisplayText(el)
		if strings.TrimSpace(s) == "" {
			continue
		}
		fmt.Fprintf(a.Out, "[%s]\n%s\n\n", el.Box().ID, s)
	}
	return nil
}

func (a *App) export(ctx context.Context, args []string) error {
	fs := a.flags("export", "[template]")
	output := fs.String("o", "", "Output file (default: <output-dir>/<template>.pdf)")
	valuesPath := fs.String("values", "", "JSON file with token values")
	quotePath := fs.String("quote", "", "JSON file with a quotation")
	reference := fs.String("ref", "", "Document reference drawn as a QR or PDF417 code")
	if err := parse(fs, args); err != nil {
		return err
	}
	name, err := a.templateArg(ctx, fs, 0)
	if err != nil {
		return err
	}
	t, err := a.Env.Store.Get(name)
	if err != nil {
		return err
	}
	data, err := loadData(*valuesPath, *quotePath)
	if err != nil {
		return err
	}

	path := *output
	if path == "" {
		path = a.Env.OutputPath(t.Name)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating output directory: %w", err)
		}
	}

	report, err := a.Env.Exporter(*reference).ExportFile(path, t, data)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.Out, "Exported %s (%d pages, %d rows)\n", path, report.Pages, report.Rows)
	return nil
}

// loadData reads the export data from a quotation file, or a token value
// file. With neither, values are nil and previews show placeholders.
func loadData(valuesPath, quotePath string) (export.Data, error) {
	if quotePath != "" {
		var q quote.Quote
		if err := readJSON(quotePath, &q); err != nil {
			return export.Data{}, err
		}
		return export.FromQuote(&q), nil
	}
	if valuesPath != "" {
		var v placeholder.Values
		if err := readJSON(valuesPath, &v); err != nil {
			return export.Data{}, err
		}
		return export.Data{Values: v}, nil
	}
	return export.Data{}, nil
}

func readJSON(path string, v interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decoding %s: %w", path, err)
	}
	return nil
}

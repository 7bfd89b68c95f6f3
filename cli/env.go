package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/lvillar/doclayout/canvas"
	"github.com/lvillar/doclayout/config"
	"github.com/lvillar/doclayout/export"
	"github.com/lvillar/doclayout/geometry"
	"github.com/lvillar/doclayout/kv"
	"github.com/lvillar/doclayout/layout"
	"github.com/lvillar/doclayout/mcp"
	"github.com/lvillar/doclayout/placeholder"
	"github.com/lvillar/doclayout/store"
	"github.com/lvillar/doclayout/textmetrics"
)

// Env holds the components built from a configuration.
type Env struct {
	Config    *config.Config
	Log       *slog.Logger
	Store     *store.Store
	Formatter *placeholder.TextFormatter
	Subst     *placeholder.Engine
	Engine    *geometry.Engine
}

// NewEnv opens the template store and builds the editor and exporter
// components described by cfg.
func NewEnv(ctx context.Context, cfg *config.Config, log *slog.Logger) (*Env, error) {
	if log == nil {
		log = cfg.Log.Logger(os.Stderr)
	}

	var backend kv.Store
	if dir := expandHome(cfg.Storage.Dir); dir != "" {
		d, err := kv.NewDir(dir)
		if err != nil {
			return nil, fmt.Errorf("cli: opening storage: %w", err)
		}
		backend = d
	}

	f, err := placeholder.NewFormatter(cfg.Export.Currency, cfg.Export.Locale)
	if err != nil {
		return nil, fmt.Errorf("cli: %w", err)
	}

	var m geometry.Measurer = textmetrics.NewPDF()
	if cfg.Editor.Measurer == "screen" {
		s, err := textmetrics.NewScreen()
		if err != nil {
			return nil, fmt.Errorf("cli: loading screen fonts: %w", err)
		}
		m = s
	}

	st := store.New(ctx, backend, store.WithLogger(log))
	if err := st.Err(); err != nil {
		log.Warn("template storage unavailable, using defaults", "err", err)
	}

	return &Env{
		Config:    cfg,
		Log:       log,
		Store:     st,
		Formatter: f,
		Subst:     placeholder.New(f),
		Engine:    geometry.New(m),
	}, nil
}

// Exporter returns an exporter configured from the export settings. A
// non-empty reference is drawn as the configured symbology.
func (e *Env) Exporter(reference string) *export.Exporter {
	c := e.Config.Export
	opts := []export.Option{
		export.WithFormatter(e.Formatter),
		export.WithFooterReserve(c.FooterReserve),
		export.WithCompression(c.Compress),
		export.WithUnit(c.Unit),
		export.WithLogger(e.Log),
	}
	if reference != "" && c.ReferenceSymbology != "none" {
		opts = append(opts, export.WithReferenceCode(export.ReferenceKind(c.ReferenceSymbology), reference))
	}
	return export.New(opts...)
}

// Controller returns an editor controller using the configured measurer,
// zoom and rulers.
func (e *Env) Controller(opts ...canvas.Option) *canvas.Controller {
	base := []canvas.Option{
		canvas.WithMeasurer(e.Engine.Measurer),
		canvas.WithSubstituter(e.Subst),
		canvas.WithLogger(e.Log),
		canvas.WithZoom(e.Config.Editor.Zoom),
		canvas.WithRulers(e.Config.Editor.Rulers),
	}
	return canvas.New(append(base, opts...)...)
}

// Backend returns the components the MCP tools operate on.
func (e *Env) Backend() *mcp.Backend {
	return &mcp.Backend{
		Store:    e.Store,
		Exporter: e.Exporter(""),
		Engine:   e.Engine,
		Subst:    e.Subst,
	}
}

// NewTemplate returns a blank template with the configured page defaults.
func (e *Env) NewTemplate(name string) *layout.Template {
	t := layout.Blank(name)
	t.Margin = e.Config.Page.Margin
	t.PrimaryColor = e.Config.Page.PrimaryColor
	t.SecondaryColor = e.Config.Page.SecondaryColor
	t.Normalize()
	return t
}

// OutputPath returns where a template's PDF is written when no path is given.
func (e *Env) OutputPath(name string) string {
	base := strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|':
			return '_'
		}
		return r
	}, name) + ".pdf"
	return filepath.Join(expandHome(e.Config.Export.OutputDir), base)
}

func expandHome(p string) string {
	if p == "~" || strings.HasPrefix(p, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, p[1:])
		}
	}
	return p
}

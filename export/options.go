package export

import (
	"io"
	"log/slog"
	"time"

	"github.com/lvillar/doclayout/placeholder"
)

// Output units accepted by WithUnit.
const (
	UnitMillimeter = "mm"
	UnitCentimeter = "cm"
	UnitInch       = "in"
	UnitPoint      = "pt"
)

// DefaultFooterReserve is the space kept free at the bottom of each page
// before a table continues on a new page, in millimeters.
const DefaultFooterReserve = 60.0

// ReferenceKind selects the symbology of the optional reference code.
type ReferenceKind string

const (
	ReferenceQR     ReferenceKind = "qr"
	ReferencePDF417 ReferenceKind = "pdf417"
)

// Option is a functional option for configuring an Exporter via New.
type Option func(*config)

type config struct {
	formatter     placeholder.Formatter
	clock         func() time.Time
	footerReserve float64
	compress      bool
	unit          string
	refKind       ReferenceKind
	refCode       string
	logger        *slog.Logger
	author        string
}

// WithFormatter sets the currency and date formatter used for placeholders,
// table cells and summary values.
func WithFormatter(f placeholder.Formatter) Option {
	return func(c *config) {
		c.formatter = f
	}
}

// WithClock sets the time source for the footer generation date.
func WithClock(now func() time.Time) Option {
	return func(c *config) {
		c.clock = now
	}
}

// WithFooterReserve sets the bottom space, in millimeters, that table rows
// never enter.
func WithFooterReserve(mm float64) Option {
	return func(c *config) {
		c.footerReserve = mm
	}
}

// WithCompression enables or disables stream compression.
func WithCompression(on bool) Option {
	return func(c *config) {
		c.compress = on
	}
}

// WithUnit sets the document unit. Template coordinates stay in
// millimeters and are converted on output.
// Use UnitMillimeter, UnitCentimeter, UnitInch or UnitPoint.
func WithUnit(unit string) Option {
	return func(c *config) {
		c.unit = unit
	}
}

// WithReferenceCode draws code as a QR or PDF417 symbol at the bottom right
// of the last page.
func WithReferenceCode(kind ReferenceKind, code string) Option {
	return func(c *config) {
		c.refKind = kind
		c.refCode = code
	}
}

// WithLogger sets the logger for export diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithAuthor sets the document author metadata.
func WithAuthor(name string) Option {
	return func(c *config) {
		c.author = name
	}
}

func newConfig(opts []Option) config {
	cfg := config{
		formatter:     placeholder.DefaultFormatter(),
		clock:         time.Now,
		footerReserve: DefaultFooterReserve,
		compress:      true,
		unit:          UnitMillimeter,
		logger:        slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// unitScale returns the number of document units per millimeter.
func unitScale(unit string) (float64, bool) {
	switch unit {
	case UnitMillimeter:
		return 1, true
	case UnitCentimeter:
		return 0.1, true
	case UnitInch:
		return 1 / 25.4, true
	case UnitPoint:
		return 72 / 25.4, true
	}
	return 0, false
}

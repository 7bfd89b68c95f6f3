// Package config loads the editor and exporter settings from YAML.
//
// Example:
//
//	storage:
//	  dir: ~/.local/share/doclayout
//	page:
//	  margin: 15
//	  primary-color: "#2563eb"
//	editor:
//	  zoom: 100
//	  measurer: pdf
//	export:
//	  currency: PEN
//	  footer-reserve: 60
//	  reference-symbology: qr
//	log:
//	  level: debug
//	  format: json
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"golang.org/x/text/currency"
	"gopkg.in/yaml.v3"
)

// Common errors
var (
	ErrConfigurationError = errors.New("configuration error")
	ErrUnknownValue       = errors.New("unknown value")
	ErrOutOfRange         = errors.New("value out of range")
)

// ConfigError represents a configuration error with context.
type ConfigError struct {
	Field   string
	Message string
	Err     error
}

func (e *ConfigError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("config error in '%s': %s", e.Field, e.Message)
	}
	return fmt.Sprintf("config error: %s", e.Message)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// NewConfigError creates a new ConfigError.
func NewConfigError(field, message string) *ConfigError {
	return &ConfigError{Field: field, Message: message, Err: ErrConfigurationError}
}

// StorageConfig selects where templates are persisted.
type StorageConfig struct {
	// Dir is the directory of the file backend. Empty keeps templates in memory.
	Dir string `yaml:"dir" json:"dir,omitempty"`
}

// PageConfig holds the defaults for new templates.
type PageConfig struct {
	Margin         float64 `yaml:"margin" json:"margin"`
	PrimaryColor   string  `yaml:"primary-color" json:"primary_color"`
	SecondaryColor string  `yaml:"secondary-color" json:"secondary_color"`
}

// EditorConfig holds the canvas settings.
type EditorConfig struct {
	Zoom   int  `yaml:"zoom" json:"zoom"`
	Rulers bool `yaml:"rulers" json:"rulers"`

	// Measurer selects the text metrics for minimum sizes: "pdf" uses the
	// exporter's Helvetica metrics, "screen" the Go fonts.
	Measurer string `yaml:"measurer" json:"measurer"`
}

// ExportConfig holds the PDF exporter settings.
type ExportConfig struct {
	Currency           string  `yaml:"currency" json:"currency"`
	Locale             string  `yaml:"locale" json:"locale,omitempty"`
	FooterReserve      float64 `yaml:"footer-reserve" json:"footer_reserve"`
	Compress           bool    `yaml:"compress" json:"compress"`
	Unit               string  `yaml:"unit" json:"unit"`
	ReferenceSymbology string  `yaml:"reference-symbology" json:"reference_symbology"`
	OutputDir          string  `yaml:"output-dir" json:"output_dir,omitempty"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	// Level is the log level (debug, info, warn, error).
	Level string `yaml:"level" json:"level,omitempty"`

	// Format is the log format (text, json).
	Format string `yaml:"format" json:"format,omitempty"`
}

// Config contains the complete application configuration.
type Config struct {
	Storage StorageConfig `yaml:"storage" json:"storage"`
	Page    PageConfig    `yaml:"page" json:"page"`
	Editor  EditorConfig  `yaml:"editor" json:"editor"`
	Export  ExportConfig  `yaml:"export" json:"export"`
	Log     LoggingConfig `yaml:"log" json:"log"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Page: PageConfig{
			Margin:         15,
			PrimaryColor:   "#2563eb",
			SecondaryColor: "#6b7280",
		},
		Editor: EditorConfig{
			Zoom:     100,
			Rulers:   true,
			Measurer: "pdf",
		},
		Export: ExportConfig{
			Currency:           "USD",
			FooterReserve:      60,
			Compress:           true,
			Unit:               "mm",
			ReferenceSymbology: "none",
		},
		Log: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads the configuration file at filename. Keys absent from the file
// keep their defaults. An empty filename or a missing file yields the
// defaults.
func Load(filename string) (*Config, error) {
	if filename == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(filename)
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML over the defaults and validates the result.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	cfg.Export.Currency = strings.ToUpper(strings.TrimSpace(cfg.Export.Currency))
	cfg.Log.Level = strings.ToLower(cfg.Log.Level)
	cfg.Log.Format = strings.ToLower(cfg.Log.Format)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks every field for a usable value.
func (c *Config) Validate() error {
	if c.Page.Margin <= 0 || c.Page.Margin > 50 {
		return rangeError("page.margin", "margin must be greater than 0 and at most 50 mm")
	}
	if c.Editor.Zoom < 25 || c.Editor.Zoom > 100 {
		return rangeError("editor.zoom", "zoom must be between 25 and 100")
	}
	if err := oneOf("editor.measurer", c.Editor.Measurer, "pdf", "screen"); err != nil {
		return err
	}
	if _, err := currency.ParseISO(c.Export.Currency); err != nil {
		return &ConfigError{Field: "export.currency", Message: fmt.Sprintf("unknown currency %q", c.Export.Currency), Err: err}
	}
	if c.Export.FooterReserve <= 0 {
		return rangeError("export.footer-reserve", "footer reserve must be positive")
	}
	if err := oneOf("export.unit", c.Export.Unit, "mm", "cm", "in", "pt"); err != nil {
		return err
	}
	if err := oneOf("export.reference-symbology", c.Export.ReferenceSymbology, "none", "qr", "pdf417"); err != nil {
		return err
	}
	if err := oneOf("log.level", c.Log.Level, "debug", "info", "warn", "error"); err != nil {
		return err
	}
	return oneOf("log.format", c.Log.Format, "text", "json")
}

func rangeError(field, msg string) *ConfigError {
	return &ConfigError{Field: field, Message: msg, Err: ErrOutOfRange}
}

func oneOf(field, value string, allowed ...string) error {
	for _, a := range allowed {
		if value == a {
			return nil
		}
	}
	return &ConfigError{
		Field:   field,
		Message: fmt.Sprintf("%q is not one of %s", value, strings.Join(allowed, ", ")),
		Err:     ErrUnknownValue,
	}
}

// Logger returns a logger writing to w with the configured level and
// format.
func (c *LoggingConfig) Logger(w io.Writer) *slog.Logger {
	var level slog.Level
	switch c.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if c.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

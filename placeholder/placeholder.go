// Package placeholder replaces {token} markers in template text with live
// values or with preview glyphs.
//
// The token vocabulary is fixed and case-sensitive. Unknown tokens, and known
// tokens with no value, are left in the text unchanged.
package placeholder

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Token names.
const (
	Cliente          = "cliente"
	Fecha            = "fecha"
	FechaVencimiento = "fechaVencimiento"
	Vendedor         = "vendedor"
	Estado           = "estado"
	Subtotal         = "subtotal"
	Descuento        = "descuento"
	Impuesto         = "impuesto"
	Total            = "total"
	Observaciones    = "observaciones"
)

type tokenKind int

const (
	kindText tokenKind = iota
	kindCurrency
	kindDate
)

var tokens = map[string]tokenKind{
	Cliente:          kindText,
	Fecha:            kindDate,
	FechaVencimiento: kindDate,
	Vendedor:         kindText,
	Estado:           kindText,
	Subtotal:         kindCurrency,
	Descuento:        kindCurrency,
	Impuesto:         kindCurrency,
	Total:            kindCurrency,
	Observaciones:    kindText,
}

// Tokens returns the recognized token names.
func Tokens() []string {
	return []string{
		Cliente, Fecha, FechaVencimiento, Vendedor, Estado,
		Subtotal, Descuento, Impuesto, Total, Observaciones,
	}
}

// Known reports whether name is a recognized token.
func Known(name string) bool {
	_, ok := tokens[name]
	return ok
}

var tokenRe = regexp.MustCompile(`\{([A-Za-z]+)\}`)

// Values maps token names to raw values. Currency tokens accept numbers or
// numeric strings, date tokens accept time.Time or "2006-01-02" and RFC 3339
// strings, text tokens accept anything printable.
type Values map[string]any

// Engine substitutes tokens using a Formatter.
type Engine struct {
	f Formatter
}

// New returns an engine. A nil formatter selects DefaultFormatter.
func New(f Formatter) *Engine {
	if f == nil {
		f = DefaultFormatter()
	}
	return &Engine{f: f}
}

// Formatter returns the formatter used by e.
func (e *Engine) Formatter() Formatter { return e.f }

// Substitute replaces every recognized token present in v with its
// formatted value. Substituted values are not scanned again.
func (e *Engine) Substitute(text string, v Values) string {
	if !strings.Contains(text, "{") {
		return text
	}
	return tokenRe.ReplaceAllStringFunc(text, func(m string) string {
		name := m[1 : len(m)-1]
		kind, ok := tokens[name]
		if !ok {
			return m
		}
		raw, ok := v[name]
		if !ok || raw == nil {
			return m
		}
		switch kind {
		case kindCurrency:
			if f, ok := toFloat(raw); ok {
				return e.f.Currency(f)
			}
		case kindDate:
			if t, ok := toTime(raw); ok {
				return e.f.Date(t)
			}
		}
		return toString(raw)
	})
}

// Preview replaces every recognized token with an underscore glyph so a
// template can be edited without live data.
func (e *Engine) Preview(text string) string {
	if !strings.Contains(text, "{") {
		return text
	}
	money := e.f.CurrencySymbol() + " ______"
	return tokenRe.ReplaceAllStringFunc(text, func(m string) string {
		name := m[1 : len(m)-1]
		kind, ok := tokens[name]
		switch {
		case !ok:
			return m
		case kind == kindCurrency:
			return money
		case kind == kindDate:
			return "__/__/____"
		case name == Observaciones:
			return strings.Repeat("_", 48)
		}
		return "____________"
	})
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case int32:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		return f, err == nil
	}
	return 0, false
}

func toTime(v any) (time.Time, bool) {
	switch t := v.(type) {
	case time.Time:
		return t, !t.IsZero()
	case *time.Time:
		if t == nil {
			return time.Time{}, false
		}
		return *t, !t.IsZero()
	case string:
		s := strings.TrimSpace(t)
		for _, layout := range []string{"2006-01-02", time.RFC3339, DateLayout} {
			if p, err := time.Parse(layout, s); err == nil {
				return p, true
			}
		}
	}
	return time.Time{}, false
}

func toString(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case fmt.Stringer:
		return s.String()
	}
	return fmt.Sprint(v)
}

package placeholder

import (
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// Formatter renders currency amounts and dates for substitution.
type Formatter interface {
	Currency(v float64) string
	Date(t time.Time) string
	CurrencySymbol() string
}

// DateLayout is the day/month/year layout used for date tokens.
const DateLayout = "02/01/2006"

var symbols = map[string]string{
	"USD": "$",
	"PEN": "S/",
}

var locales = map[string]string{
	"USD": "en-US",
	"PEN": "es-PE",
}

// TextFormatter formats amounts with a fixed two decimal places using the
// number rules of a locale, prefixed by the currency symbol.
type TextFormatter struct {
	unit    currency.Unit
	symbol  string
	printer *message.Printer
}

// NewFormatter returns a formatter for an ISO 4217 currency code. An empty
// locale selects the usual locale for the currency.
func NewFormatter(code, locale string) (*TextFormatter, error) {
	unit, err := currency.ParseISO(strings.ToUpper(code))
	if err != nil {
		return nil, fmt.Errorf("placeholder: currency %q: %w", code, err)
	}
	if locale == "" {
		locale = locales[unit.String()]
	}
	tag := language.AmericanEnglish
	if locale != "" {
		if tag, err = language.Parse(locale); err != nil {
			return nil, fmt.Errorf("placeholder: locale %q: %w", locale, err)
		}
	}
	f := &TextFormatter{unit: unit, printer: message.NewPrinter(tag)}
	if s, ok := symbols[unit.String()]; ok {
		f.symbol = s
	} else {
		f.symbol = f.printer.Sprint(currency.NarrowSymbol(unit))
	}
	return f, nil
}

// DefaultFormatter formats US dollars.
func DefaultFormatter() *TextFormatter {
	f, err := NewFormatter("USD", "")
	if err != nil {
		panic(err)
	}
	return f
}

// Currency formats v as "<symbol> 1,234.50". Negative amounts carry a
// leading minus sign before the symbol.
func (f *TextFormatter) Currency(v float64) string {
	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
	}
	return sign + f.symbol + " " + f.printer.Sprint(number.Decimal(v, number.Scale(2)))
}

// Date formats t as dd/mm/yyyy.
func (f *TextFormatter) Date(t time.Time) string {
	return t.Format(DateLayout)
}

// CurrencySymbol returns the symbol used as prefix, for example "$".
func (f *TextFormatter) CurrencySymbol() string {
	return f.symbol
}

// Code returns the ISO 4217 code of the currency.
func (f *TextFormatter) Code() string {
	return f.unit.String()
}

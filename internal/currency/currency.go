// Package currency renders numeric amounts as localized currency strings.
//
// Formatting is driven by an explicit Formatter value instead of a
// process-wide locale setting, so concurrent requests can never observe
// each other's locale.
package currency

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// Formatter renders amounts for one locale and currency symbol.
// The zero value is not usable; construct with New or BRL.
type Formatter struct {
	printer *message.Printer
	symbol  string
}

// New returns a Formatter for the given locale tag and currency symbol.
func New(tag language.Tag, symbol string) Formatter {
	return Formatter{
		printer: message.NewPrinter(tag),
		symbol:  symbol,
	}
}

// BRL returns the default formatter: Brazilian Portuguese, R$.
func BRL() Formatter {
	return New(language.BrazilianPortuguese, "R$")
}

// Format renders v with grouped thousands and two decimal places,
// prefixed by the currency symbol.
func (f Formatter) Format(v float64) string {
	return f.symbol + " " + f.printer.Sprint(number.Decimal(v,
		number.MinFractionDigits(2),
		number.MaxFractionDigits(2),
	))
}

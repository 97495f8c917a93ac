package format

import (
	"fmt"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Money formats amounts for display. Rounding happens here only; stored
// amounts keep full precision.
type Money struct {
	printer *message.Printer
	symbol  string
}

func NewMoney(symbol string) Money {
	if symbol == "" {
		symbol = "$"
	}
	return Money{
		printer: message.NewPrinter(language.English),
		symbol:  symbol,
	}
}

// Headline formats aggregate figures with grouping and no decimals: $8,100.
func (m Money) Headline(amount decimal.Decimal) string {
	rounded := amount.Round(0)
	sign := ""
	if rounded.IsNegative() {
		sign = "-"
		rounded = rounded.Abs()
	}
	return m.printer.Sprintf("%s%s%d", sign, m.symbol, rounded.IntPart())
}

// Line formats line item figures with grouping and two decimals: $1,250.50.
func (m Money) Line(amount decimal.Decimal) string {
	rounded := amount.Round(2)
	sign := ""
	if rounded.IsNegative() {
		sign = "-"
		rounded = rounded.Abs()
	}
	whole := rounded.Truncate(0)
	cents := rounded.Sub(whole).Shift(2).IntPart()
	return m.printer.Sprintf("%s%s%d", sign, m.symbol, whole.IntPart()) + fmt.Sprintf(".%02d", cents)
}

// Plain formats a number with two decimals and no symbol, as used in
// spreadsheets.
func (m Money) Plain(amount decimal.Decimal) string {
	return amount.StringFixed(2)
}

// Quantity prints a quantity without trailing zeros.
func Quantity(q decimal.Decimal) string {
	return q.String()
}

// Percent prints a tax rate as shown in the totals block, e.g. 8 or 7.25.
func Percent(rate decimal.Decimal) string {
	return rate.String()
}

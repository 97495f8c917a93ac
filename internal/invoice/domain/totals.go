package domain

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// ComputeAmount is quantity * rate with no rounding.
func ComputeAmount(quantity, rate decimal.Decimal) decimal.Decimal {
	return quantity.Mul(rate)
}

// ComputeSubtotal sums item amounts. An empty list yields zero.
func ComputeSubtotal(items []WorkItem) decimal.Decimal {
	subtotal := decimal.Zero
	for _, item := range items {
		subtotal = subtotal.Add(ComputeAmount(item.Quantity, item.Rate))
	}
	return subtotal
}

// ComputeTax returns subtotal * taxRate / 100. A zero or negative rate
// yields zero.
func ComputeTax(subtotal, taxRate decimal.Decimal) decimal.Decimal {
	rate := NormalizeTaxRate(taxRate)
	if rate.IsZero() {
		return decimal.Zero
	}
	return subtotal.Mul(rate).Div(hundred)
}

func ComputeTotal(subtotal, tax decimal.Decimal) decimal.Decimal {
	return subtotal.Add(tax)
}

// NormalizeTaxRate clamps negative rates to zero.
func NormalizeTaxRate(rate decimal.Decimal) decimal.Decimal {
	if rate.IsNegative() {
		return decimal.Zero
	}
	return rate
}

package domain

import (
	"github.com/shopspring/decimal"
)

// Cents is a monetary amount in minor currency units. All internal
// arithmetic happens on this type; decimals exist only at the edges.
type Cents int64

var hundred = decimal.NewFromInt(100)

// CentsFromDecimal converts a decimal currency amount to minor units,
// rounding half away from zero. This is the single conversion point from
// external decimal amounts into the core.
func CentsFromDecimal(d decimal.Decimal) Cents {
	return Cents(d.Mul(hundred).Round(0).IntPart())
}

// Decimal converts back to a decimal currency amount with two places.
func (c Cents) Decimal() decimal.Decimal {
	return decimal.NewFromInt(int64(c)).Div(hundred)
}

// String renders the amount as a decimal string, e.g. "33.34".
func (c Cents) String() string {
	return c.Decimal().StringFixed(2)
}

// Abs returns the absolute value.
func (c Cents) Abs() Cents {
	if c < 0 {
		return -c
	}
	return c
}

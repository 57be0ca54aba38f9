// Package money provides the currency arithmetic rules used at every
// externally observable boundary: round to the currency's minor unit
// there, keep internal running sums unrounded, and compare with a one
// cent epsilon to absorb floating point drift.
package money

import (
	"fmt"
	"math"
	"strings"

	gomoney "github.com/Rhymond/go-money"
)

// Epsilon is the equality tolerance for settled/assigned checks.
const Epsilon = 0.01

// DecimalPlaces returns the number of decimal places for the currency
// per ISO 4217 (USD=2, JPY=0, KWD=3). Defaults to 2 for empty or
// unknown codes.
func DecimalPlaces(currency string) int {
	code := gomoney.USD
	if strings.TrimSpace(currency) != "" {
		code = strings.ToUpper(currency)
	}
	c := gomoney.GetCurrency(code)
	if c == nil {
		return 2
	}
	return c.Fraction
}

// RoundIn rounds a value to the currency's minor unit.
func RoundIn(value float64, currency string) float64 {
	pow := math.Pow(10, float64(DecimalPlaces(currency)))
	return math.Round(value*pow) / pow
}

// Round rounds to cents, the default for USD bills.
func Round(value float64) float64 {
	return RoundIn(value, gomoney.USD)
}

// Equal reports whether two amounts are the same within Epsilon.
func Equal(a, b float64) bool {
	return math.Abs(a-b) < Epsilon
}

// Amount is a monetary value that marshals with fixed decimal precision
// (12.95 stays "12.95", 22 becomes "22.00").
type Amount struct {
	Value    float64
	Currency string
}

// NewAmount rounds the value to the currency's precision.
func NewAmount(value float64, currency string) Amount {
	return Amount{Value: RoundIn(value, currency), Currency: currency}
}

// MarshalJSON implements json.Marshaler with currency-aware precision.
func (a Amount) MarshalJSON() ([]byte, error) {
	format := fmt.Sprintf("%%.%df", DecimalPlaces(a.Currency))
	return []byte(fmt.Sprintf(format, a.Value)), nil
}

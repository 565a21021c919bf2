// Package money converts between decimal amounts and integer minor units
// (Rappen, cents). All persisted and transmitted amounts are minor units;
// decimals only appear at the formatting and input boundaries.
package money

import (
	"strings"

	"github.com/shopspring/decimal"

	"glowdesk/internal/model"
)

// exponents maps lowercase ISO currency codes to their minor-unit exponent.
var exponents = map[string]int32{
	"chf": 2,
	"eur": 2,
	"usd": 2,
	"gbp": 2,
	"jpy": 0,
}

// Exponent returns the minor-unit exponent for a currency.
func Exponent(currency string) (int32, error) {
	exp, ok := exponents[strings.ToLower(currency)]
	if !ok {
		return 0, model.NewDomainError(model.ErrCodeUnsupportedCurrency, "Unsupported currency: "+currency)
	}
	return exp, nil
}

// ToMinorUnits converts a decimal amount to integer minor units, rounding
// half-up to the currency's precision. toMinor(10.999, chf) = 1100.
func ToMinorUnits(amount decimal.Decimal, currency string) (int64, error) {
	exp, err := Exponent(currency)
	if err != nil {
		return 0, err
	}
	// Round rounds half away from zero, which is half-up for the
	// non-negative amounts this system deals in.
	return amount.Shift(exp).Round(0).IntPart(), nil
}

// FromMinorUnits converts integer minor units back to a decimal amount. It is
// the exact inverse of ToMinorUnits for inputs that need no rounding.
func FromMinorUnits(minor int64, currency string) (decimal.Decimal, error) {
	exp, err := Exponent(currency)
	if err != nil {
		return decimal.Zero, err
	}
	return decimal.NewFromInt(minor).Shift(-exp), nil
}

// ParseAmount parses a decimal string ("99.90") into minor units.
func ParseAmount(s, currency string) (int64, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, model.NewValidationError(map[string]string{"amount": "not a valid decimal amount"})
	}
	return ToMinorUnits(d, currency)
}

package domain

import (
	"errors"
	"math"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

var ErrNotDecimal = errors.New("not a plain decimal number")

// At most 15 integer and 20 fraction digits, no exponent.
var plainDecimal = regexp.MustCompile(`^-?[0-9]{1,15}(\.[0-9]{1,20})?$`)

// ParseDecimal reads plain decimal text such as "12.5", "12,5" or "1,250.75".
// A comma is the decimal separator unless the text also has a period, in which
// case commas are thousand separators.
func ParseDecimal(raw string) (decimal.Decimal, error) {
	value := strings.TrimSpace(raw)
	if strings.Contains(value, ".") {
		value = strings.ReplaceAll(value, ",", "")
	} else {
		value = strings.ReplaceAll(value, ",", ".")
	}
	if !plainDecimal.MatchString(value) {
		return decimal.Zero, ErrNotDecimal
	}
	return decimal.NewFromString(value)
}

// ParseWeight reads a kilogram amount with ParseDecimal. Anything unparsable,
// and negative amounts, count as 0 so a bad entry never poisons a total.
func ParseWeight(raw string) float64 {
	parsed, err := ParseDecimal(raw)
	if err != nil || parsed.IsNegative() {
		return 0
	}
	value := parsed.InexactFloat64()
	if math.IsInf(value, 0) || math.IsNaN(value) {
		return 0
	}
	return value
}

// Round2 rounds half away from zero to two decimal places. Non-finite input
// gives 0.
func Round2(value float64) float64 {
	if math.IsInf(value, 0) || math.IsNaN(value) {
		return 0
	}
	return decimal.NewFromFloat(value).Round(2).InexactFloat64()
}

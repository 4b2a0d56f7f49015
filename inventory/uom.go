package inventory

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// ConvertToBase converts qty expressed in fromUOM into whole base units.
//
// A conversion {from_uom: A, to_uom: B, multiplier: m} means 1 A = m B. It is
// used directly when A is fromUOM and B is baseUOM, and inverted when the
// pair is reversed.
func ConvertToBase(qty decimal.Decimal, fromUOM, baseUOM string, conversions []UOMConversion) (int64, error) {
	base := qty
	if fromUOM != "" && fromUOM != baseUOM {
		m, inverse, err := findConversion(fromUOM, baseUOM, conversions)
		if err != nil {
			return 0, err
		}
		if inverse {
			base = qty.Div(m)
		} else {
			base = qty.Mul(m)
		}
	}
	if !base.IsInteger() {
		return 0, fmt.Errorf("%w: %s %s is %s base units", ErrFractionalQuantity, qty, fromUOM, base)
	}
	n := base.IntPart()
	if !decimal.NewFromInt(n).Equal(base) {
		return 0, fmt.Errorf("%w: %s out of range", ErrInvalidAdjustment, base)
	}
	return n, nil
}

func findConversion(from, to string, conversions []UOMConversion) (decimal.Decimal, bool, error) {
	for _, c := range conversions {
		if c.Multiplier.IsPositive() && c.FromUOM == from && c.ToUOM == to {
			return c.Multiplier, false, nil
		}
	}
	for _, c := range conversions {
		if c.Multiplier.IsPositive() && c.FromUOM == to && c.ToUOM == from {
			return c.Multiplier, true, nil
		}
	}
	return decimal.Zero, false, fmt.Errorf("%w: %s to %s", ErrNoConversion, from, to)
}

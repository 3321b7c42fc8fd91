package domain

import (
	"fmt"
	"math/big"
	"strings"
)

// ParseAmount parses a decimal price string such as "25.00".
func ParseAmount(s string) (*big.Rat, error) {
	r, ok := new(big.Rat).SetString(strings.TrimSpace(s))
	if !ok {
		return nil, fmt.Errorf("invalid amount %q", s)
	}
	return r, nil
}

// ValidPriceRange reports whether min <= max, compared as decimals. A missing
// or unparsable side is not checked here, so callers must reject non-numeric
// amounts first (the request DTOs carry the numeric tag on both fields).
func ValidPriceRange(min, max *string) bool {
	if min == nil || max == nil {
		return true
	}
	lo, err := ParseAmount(*min)
	if err != nil {
		return true
	}
	hi, err := ParseAmount(*max)
	if err != nil {
		return true
	}
	return lo.Cmp(hi) <= 0
}

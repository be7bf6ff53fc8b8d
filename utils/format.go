package utils

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/shopspring/decimal"
)

// ParseTokenAmount converts a human decimal amount ("10.5") into the token's
// smallest unit by scaling with 10^decimals. The result is integer-exact;
// fractional dust below the smallest unit is truncated. Returns an error for
// unparseable or negative input.
func ParseTokenAmount(amount string, decimals uint8) (*big.Int, error) {
	amount = strings.TrimSpace(amount)
	if amount == "" {
		return nil, fmt.Errorf("empty amount")
	}

	dec, err := decimal.NewFromString(amount)
	if err != nil {
		return nil, fmt.Errorf("invalid amount %q: %v", amount, err)
	}
	if dec.IsNegative() {
		return nil, fmt.Errorf("negative amount %q", amount)
	}

	raw := dec.Shift(int32(decimals)).Truncate(0)

	return raw.BigInt(), nil
}

// FormatTokenAmount renders a raw smallest-unit amount as a human decimal
// string, trimming trailing zeros.
func FormatTokenAmount(raw *big.Int, decimals uint8) string {
	if raw == nil {
		return "0"
	}

	dec := decimal.NewFromBigInt(raw, -int32(decimals))

	return dec.String()
}

// FormatAmountWithSymbol appends the token symbol to a formatted amount.
func FormatAmountWithSymbol(raw *big.Int, decimals uint8, symbol string) string {
	formatted := FormatTokenAmount(raw, decimals)
	if symbol == "" {
		return formatted
	}

	return formatted + " " + symbol
}

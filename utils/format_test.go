package utils

import (
	"math/big"
	"testing"
)

func TestParseTokenAmount(t *testing.T) {
	tests := []struct {
		name     string
		amount   string
		decimals uint8
		expected string
		wantErr  bool
	}{
		{"whole amount", "10", 6, "10000000", false},
		{"fractional amount", "1.5", 18, "1500000000000000000", false},
		{"zero", "0", 18, "0", false},
		{"dust truncated", "0.0000001", 6, "0", false},
		{"full precision", "0.000001", 6, "1", false},
		{"whitespace trimmed", " 2.5 ", 6, "2500000", false},
		{"empty", "", 6, "", true},
		{"garbage", "ten", 6, "", true},
		{"negative", "-1", 6, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw, err := ParseTokenAmount(tt.amount, tt.decimals)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error for %q", tt.amount)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if raw.String() != tt.expected {
				t.Errorf("ParseTokenAmount(%q, %v) = %v, expected %v", tt.amount, tt.decimals, raw, tt.expected)
			}
		})
	}
}

func TestFormatTokenAmount(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		decimals uint8
		expected string
	}{
		{"whole amount", "10000000", 6, "10"},
		{"fractional amount", "1500000000000000000", 18, "1.5"},
		{"trailing zeros trimmed", "1000000", 6, "1"},
		{"sub-unit amount", "1", 6, "0.000001"},
		{"zero", "0", 18, "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw, _ := new(big.Int).SetString(tt.raw, 10)
			got := FormatTokenAmount(raw, tt.decimals)
			if got != tt.expected {
				t.Errorf("FormatTokenAmount(%v, %v) = %v, expected %v", tt.raw, tt.decimals, got, tt.expected)
			}
		})
	}

	if got := FormatTokenAmount(nil, 6); got != "0" {
		t.Errorf("FormatTokenAmount(nil) = %v, expected 0", got)
	}
}

func TestParseFormatRoundTrip(t *testing.T) {
	for _, amount := range []string{"10", "1.5", "0.000001", "123456.789"} {
		raw, err := ParseTokenAmount(amount, 6)
		if err != nil {
			t.Fatalf("unexpected error for %q: %v", amount, err)
		}
		if got := FormatTokenAmount(raw, 6); got != amount {
			t.Errorf("round trip for %q yielded %q", amount, got)
		}
	}
}

func TestFormatAmountWithSymbol(t *testing.T) {
	raw := big.NewInt(1000000)
	if got := FormatAmountWithSymbol(raw, 6, "USDC"); got != "1 USDC" {
		t.Errorf("expected '1 USDC', got %q", got)
	}
	if got := FormatAmountWithSymbol(raw, 6, ""); got != "1" {
		t.Errorf("expected '1', got %q", got)
	}
}

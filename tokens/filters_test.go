package tokens

import (
	"reflect"
	"testing"

	"github.com/Jds-23/curly-octo-memory/types"
)

func floatPtr(v float64) *float64 {
	return &v
}

func filterPool() []*types.TokenWithBalance {
	usdc := testToken("1", "0x1111111111111111111111111111111111111111", "USDC", "USD Coin", "verified", "stablecoin")
	usdc.Amount = "5000000"
	usdc.PriceUsd = 1
	usdc.ValueUsd = 5

	eth := testToken("1", NativeMarkerAddress, "ETH", "Ether", "verified")
	eth.IsNative = true
	eth.Amount = "0"
	eth.PriceUsd = 3000

	shitcoin := testToken("8453", "0x2222222222222222222222222222222222222222", "MOON", "Mooncoin")
	shitcoin.Amount = "1"
	shitcoin.PriceUsd = 0.0001
	shitcoin.ValueUsd = 0.01
	shitcoin.LowLiquidity = true

	return []*types.TokenWithBalance{usdc, eth, shitcoin}
}

func TestApplyAdvancedFilters(t *testing.T) {
	tests := []struct {
		name     string
		filters  *types.AdvancedFilters
		expected []string
	}{
		{"nil filters", nil, []string{"USDC", "ETH", "MOON"}},
		{"empty filters", &types.AdvancedFilters{}, []string{"USDC", "ETH", "MOON"}},
		{"min price", &types.AdvancedFilters{MinPriceUsd: floatPtr(0.5)}, []string{"USDC", "ETH"}},
		{"max price", &types.AdvancedFilters{MaxPriceUsd: floatPtr(1)}, []string{"USDC", "MOON"}},
		{"min balance usd", &types.AdvancedFilters{MinBalanceUsd: floatPtr(1)}, []string{"USDC"}},
		{"verified only", &types.AdvancedFilters{VerifiedOnly: true}, []string{"USDC", "ETH"}},
		{"native only", &types.AdvancedFilters{NativeOnly: true}, []string{"ETH"}},
		{"with balance only", &types.AdvancedFilters{WithBalanceOnly: true}, []string{"USDC", "MOON"}},
		{"exclude low liquidity", &types.AdvancedFilters{ExcludeLowLiquidity: true}, []string{"USDC", "ETH"}},
		{"chain allow-list", &types.AdvancedFilters{ChainIds: []string{"8453"}}, []string{"MOON"}},
		{"category allow-list", &types.AdvancedFilters{Categories: []string{"stablecoin"}}, []string{"USDC"}},
		{"conjunction", &types.AdvancedFilters{VerifiedOnly: true, WithBalanceOnly: true}, []string{"USDC"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			filtered := ApplyAdvancedFilters(filterPool(), tt.filters)

			symbols := make([]string, 0, len(filtered))
			for _, token := range filtered {
				symbols = append(symbols, token.Symbol)
			}
			if !reflect.DeepEqual(symbols, tt.expected) {
				t.Errorf("expected %v, got %v", tt.expected, symbols)
			}
		})
	}
}

func TestApplyAdvancedFiltersIdempotent(t *testing.T) {
	filters := &types.AdvancedFilters{
		MinPriceUsd:  floatPtr(0.5),
		VerifiedOnly: true,
	}

	once := ApplyAdvancedFilters(filterPool(), filters)
	twice := ApplyAdvancedFilters(once, filters)

	if !reflect.DeepEqual(once, twice) {
		t.Errorf("filtering is not idempotent: %v != %v", once, twice)
	}
}

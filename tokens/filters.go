package tokens

import (
	"math/big"

	"github.com/Jds-23/curly-octo-memory/types"
)

// ApplyAdvancedFilters reduces the token list with a conjunction of
// independent predicates. Unset filter fields are no-ops, so filtering with
// an empty filter object returns the input unchanged. The filters are
// independent, so application order does not affect the result and the
// function is idempotent.
func ApplyAdvancedFilters(tokens []*types.TokenWithBalance, filters *types.AdvancedFilters) []*types.TokenWithBalance {
	if filters == nil {
		return tokens
	}

	filtered := make([]*types.TokenWithBalance, 0, len(tokens))
	for _, token := range tokens {
		if !matchesFilters(token, filters) {
			continue
		}
		filtered = append(filtered, token)
	}

	return filtered
}

func matchesFilters(token *types.TokenWithBalance, filters *types.AdvancedFilters) bool {
	if filters.MinPriceUsd != nil && token.PriceUsd < *filters.MinPriceUsd {
		return false
	}
	if filters.MaxPriceUsd != nil && token.PriceUsd > *filters.MaxPriceUsd {
		return false
	}
	if filters.MinBalanceUsd != nil && token.ValueUsd < *filters.MinBalanceUsd {
		return false
	}
	if filters.MaxBalanceUsd != nil && token.ValueUsd > *filters.MaxBalanceUsd {
		return false
	}
	if filters.VerifiedOnly && !token.HasTag("verified") {
		return false
	}
	if filters.NativeOnly && !token.IsNative {
		return false
	}
	if filters.WithBalanceOnly && !hasBalance(token) {
		return false
	}
	if filters.ExcludeLowLiquidity && token.LowLiquidity {
		return false
	}
	if len(filters.ChainIds) > 0 && !containsString(filters.ChainIds, token.ChainId) {
		return false
	}
	if len(filters.Categories) > 0 && !hasAnyTag(token, filters.Categories) {
		return false
	}

	return true
}

func hasBalance(token *types.TokenWithBalance) bool {
	if token.Amount == "" {
		return false
	}
	amount, ok := new(big.Int).SetString(token.Amount, 10)
	if !ok {
		return false
	}

	return amount.Sign() > 0
}

func hasAnyTag(token *types.TokenWithBalance, categories []string) bool {
	for _, category := range categories {
		if token.HasTag(category) {
			return true
		}
	}
	return false
}

func containsString(list []string, target string) bool {
	for _, s := range list {
		if s == target {
			return true
		}
	}
	return false
}

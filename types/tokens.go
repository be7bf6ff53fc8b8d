package types

import "strings"

// Token is the canonical token shape all source records are normalized into.
// Identity is (ChainId, lowercase Address); instances are treated as immutable
// once constructed.
type Token struct {
	Address   string   `json:"address"`
	Symbol    string   `json:"symbol"`
	Decimals  uint8    `json:"decimals"`
	Name      string   `json:"name"`
	ChainId   string   `json:"chainId"`
	ChainName string   `json:"chainName,omitempty"`
	Icon      string   `json:"icon,omitempty"`
	IsNative  bool     `json:"isNative,omitempty"`
	Tags      []string `json:"tags,omitempty"`
}

// Key returns the unique token identity within a list.
func (t *Token) Key() string {
	return t.ChainId + ":" + strings.ToLower(t.Address)
}

// HasTag reports whether the token carries the given tag (case-insensitive).
func (t *Token) HasTag(tag string) bool {
	for _, h := range t.Tags {
		if strings.EqualFold(h, tag) {
			return true
		}
	}
	return false
}

// TokenWithBalance is a Token merged with balance-query results.
// Amount is the raw balance in the token's smallest unit, kept as a decimal
// string to avoid precision loss past the 53-bit float boundary.
type TokenWithBalance struct {
	Token
	Amount       string  `json:"amount"`
	ValueUsd     float64 `json:"valueUsd"`
	PriceUsd     float64 `json:"priceUsd"`
	LowLiquidity bool    `json:"lowLiquidity,omitempty"`
}

// SearchResult is an ephemeral per-query ranking entry, recomputed per request
// and never persisted.
type SearchResult struct {
	Token         *TokenWithBalance `json:"token"`
	Score         float64           `json:"score"`
	MatchedFields []string          `json:"matchedFields,omitempty"`
	ExactMatch    bool              `json:"exactMatch"`
}

// SearchOptions tunes the ranking pass.
type SearchOptions struct {
	Threshold  float64
	MaxResults int
	Fuzzy      bool
}

// AdvancedFilters is a structured token query. Every field is optional;
// a nil field disables the corresponding predicate.
type AdvancedFilters struct {
	MinPriceUsd         *float64 `json:"minPriceUsd,omitempty"`
	MaxPriceUsd         *float64 `json:"maxPriceUsd,omitempty"`
	MinBalanceUsd       *float64 `json:"minBalanceUsd,omitempty"`
	MaxBalanceUsd       *float64 `json:"maxBalanceUsd,omitempty"`
	VerifiedOnly        bool     `json:"verifiedOnly,omitempty"`
	NativeOnly          bool     `json:"nativeOnly,omitempty"`
	WithBalanceOnly     bool     `json:"withBalanceOnly,omitempty"`
	ExcludeLowLiquidity bool     `json:"excludeLowLiquidity,omitempty"`
	ChainIds            []string `json:"chainIds,omitempty"`
	Categories          []string `json:"categories,omitempty"`
}

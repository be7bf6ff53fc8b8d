package tokens

import (
	"strconv"
	"strings"

	"github.com/mitchellh/mapstructure"

	"github.com/Jds-23/curly-octo-memory/types"
)

// Native-marker sentinel addresses. A token whose address equals one of these
// is flagged native regardless of what the source record claims.
const (
	ZeroAddress         = "0x0000000000000000000000000000000000000000"
	NativeMarkerAddress = "0xeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeee"
)

// IsNativeAddress reports whether the address is one of the native sentinels.
func IsNativeAddress(address string) bool {
	address = strings.ToLower(strings.TrimSpace(address))
	return address == ZeroAddress || address == NativeMarkerAddress
}

// BalanceApiRow is the row shape of the balance backend. Numeric fields come
// in as strings or numbers depending on the upstream source, so decoding is
// deliberately loose.
type BalanceApiRow struct {
	Address      string  `mapstructure:"address" json:"address"`
	Symbol       string  `mapstructure:"symbol" json:"symbol"`
	Decimals     uint8   `mapstructure:"decimals" json:"decimals"`
	Name         string  `mapstructure:"name" json:"name"`
	Amount       string  `mapstructure:"amount" json:"amount"`
	Balance      string  `mapstructure:"balance" json:"balance"`
	ValueUsd     float64 `mapstructure:"value_usd" json:"value_usd"`
	PriceUsd     float64 `mapstructure:"price_usd" json:"price_usd"`
	Logo         string  `mapstructure:"logo" json:"logo"`
	LowLiquidity bool    `mapstructure:"low_liquidity" json:"low_liquidity"`
	ChainId      string  `mapstructure:"chain_id" json:"chain_id"`
	ChainName    string  `mapstructure:"chain" json:"chain"`
}

// GenericApiRow is the row shape of generic token-list and remote-search
// responses.
type GenericApiRow struct {
	Address   string   `mapstructure:"address" json:"address"`
	Symbol    string   `mapstructure:"symbol" json:"symbol"`
	Decimals  uint8    `mapstructure:"decimals" json:"decimals"`
	Name      string   `mapstructure:"name" json:"name"`
	ChainId   string   `mapstructure:"chainId" json:"chainId"`
	ChainName string   `mapstructure:"chainName" json:"chainName"`
	LogoURI   string   `mapstructure:"logoURI" json:"logoURI"`
	IsNative  bool     `mapstructure:"isNative" json:"isNative"`
	Tags      []string `mapstructure:"tags" json:"tags"`
}

// DecodeBalanceApiRow loosely decodes a dynamic third-party payload into a
// BalanceApiRow. Unknown fields are ignored, number/string mismatches are
// coerced. Never fails hard: on decode error an empty row is returned.
func DecodeBalanceApiRow(raw map[string]interface{}) *BalanceApiRow {
	row := &BalanceApiRow{}
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           row,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return row
	}
	_ = decoder.Decode(raw)

	return row
}

// DecodeGenericApiRow loosely decodes a dynamic third-party payload into a
// GenericApiRow. Same degradation policy as DecodeBalanceApiRow.
func DecodeGenericApiRow(raw map[string]interface{}) *GenericApiRow {
	row := &GenericApiRow{}
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           row,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return row
	}
	_ = decoder.Decode(raw)

	return row
}

// AdaptBalanceApiRow normalizes a balance backend row into the canonical
// TokenWithBalance shape. The adapter is total: missing fields degrade to
// defaults (name falls back to symbol, missing amount to "0") instead of
// erroring, because the data originates from third-party APIs whose
// completeness cannot be guaranteed.
func AdaptBalanceApiRow(row *BalanceApiRow, chain *types.ChainConfig) *types.TokenWithBalance {
	token := &types.TokenWithBalance{
		Token: types.Token{
			Address:   strings.ToLower(strings.TrimSpace(row.Address)),
			Symbol:    row.Symbol,
			Decimals:  row.Decimals,
			Name:      row.Name,
			ChainId:   normalizeChainId(row.ChainId),
			ChainName: row.ChainName,
			Icon:      row.Logo,
		},
		ValueUsd:     row.ValueUsd,
		PriceUsd:     row.PriceUsd,
		LowLiquidity: row.LowLiquidity,
	}

	token.Amount = row.Amount
	if token.Amount == "" {
		token.Amount = row.Balance
	}
	if token.Amount == "" {
		token.Amount = "0"
	}

	applyChainDefaults(&token.Token, chain)
	applyTokenDefaults(&token.Token)

	return token
}

// AdaptGenericApiRow normalizes a generic token row into the canonical Token
// shape with a zero balance.
func AdaptGenericApiRow(row *GenericApiRow, chain *types.ChainConfig) *types.TokenWithBalance {
	token := &types.TokenWithBalance{
		Token: types.Token{
			Address:   strings.ToLower(strings.TrimSpace(row.Address)),
			Symbol:    row.Symbol,
			Decimals:  row.Decimals,
			Name:      row.Name,
			ChainId:   normalizeChainId(row.ChainId),
			ChainName: row.ChainName,
			Icon:      row.LogoURI,
			IsNative:  row.IsNative,
			Tags:      row.Tags,
		},
		Amount: "0",
	}

	applyChainDefaults(&token.Token, chain)
	applyTokenDefaults(&token.Token)

	return token
}

// AdaptAddressTuple normalizes a minimal (chainId, address, symbol, decimals)
// tuple into the canonical Token shape.
func AdaptAddressTuple(chainId, address, symbol string, decimals uint8, chain *types.ChainConfig) *types.TokenWithBalance {
	token := &types.TokenWithBalance{
		Token: types.Token{
			Address:  strings.ToLower(strings.TrimSpace(address)),
			Symbol:   symbol,
			Decimals: decimals,
			ChainId:  normalizeChainId(chainId),
		},
		Amount: "0",
	}

	applyChainDefaults(&token.Token, chain)
	applyTokenDefaults(&token.Token)

	return token
}

func applyChainDefaults(token *types.Token, chain *types.ChainConfig) {
	if chain == nil {
		return
	}
	if token.ChainId == "" {
		token.ChainId = chain.ChainId
	}
	if token.ChainName == "" {
		token.ChainName = chain.Name
	}
	if IsNativeAddress(token.Address) {
		token.IsNative = true
		if token.Symbol == "" {
			token.Symbol = chain.NativeSymbol
		}
		if token.Name == "" {
			token.Name = chain.NativeName
		}
		if token.Decimals == 0 {
			token.Decimals = 18
		}
	}
}

func applyTokenDefaults(token *types.Token) {
	if IsNativeAddress(token.Address) {
		token.IsNative = true
	}
	if token.Name == "" {
		token.Name = token.Symbol
	}
	if token.Symbol == "" {
		token.Symbol = token.Name
	}
}

// normalizeChainId coerces numeric or string chain identifiers to a decimal
// string.
func normalizeChainId(chainId string) string {
	chainId = strings.TrimSpace(chainId)
	if chainId == "" {
		return ""
	}
	if parsed, err := strconv.ParseUint(chainId, 10, 64); err == nil {
		return strconv.FormatUint(parsed, 10)
	}

	return chainId
}

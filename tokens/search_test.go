package tokens

import (
	"fmt"
	"testing"

	"github.com/Jds-23/curly-octo-memory/types"
)

func testToken(chainId, address, symbol, name string, tags ...string) *types.TokenWithBalance {
	return &types.TokenWithBalance{
		Token: types.Token{
			Address:  address,
			Symbol:   symbol,
			Name:     name,
			ChainId:  chainId,
			Decimals: 18,
			Tags:     tags,
		},
		Amount: "0",
	}
}

func TestSearchTokensExactSymbolFirst(t *testing.T) {
	pool := []*types.TokenWithBalance{
		testToken("137", "0x1111111111111111111111111111111111111111", "usdc-bridged", "Bridged USDC"),
		testToken("1", "0x2222222222222222222222222222222222222222", "USDC", "USD Coin"),
		testToken("1", "0x3333333333333333333333333333333333333333", "WETH", "Wrapped Ether"),
	}

	results := SearchTokens(pool, "USDC", nil)
	if len(results) < 2 {
		t.Fatalf("expected at least 2 results, got %v", len(results))
	}
	if !results[0].ExactMatch {
		t.Errorf("expected first result to be an exact match")
	}
	if results[0].Token.Symbol != "USDC" {
		t.Errorf("expected USDC first, got %v", results[0].Token.Symbol)
	}
	if results[1].Token.Symbol != "usdc-bridged" {
		t.Errorf("expected usdc-bridged second, got %v", results[1].Token.Symbol)
	}
}

func TestSearchTokensScoreBounds(t *testing.T) {
	pool := []*types.TokenWithBalance{
		testToken("1", "0x2222222222222222222222222222222222222222", "USDC", "USD Coin", "stablecoin"),
		testToken("1", "0x3333333333333333333333333333333333333333", "WETH", "Wrapped Ether"),
		testToken("8453", "0x4444444444444444444444444444444444444444", "DEGEN", "Degen"),
	}

	for _, query := range []string{"usd", "eth", "de", "0x3333", "coin", "zzz"} {
		results := SearchTokens(pool, query, nil)
		for idx, result := range results {
			if result.Score < DefaultThreshold || result.Score > 1 {
				t.Errorf("query %q result %v: score %v out of [%v,1]", query, idx, result.Score, DefaultThreshold)
			}
			if idx > 0 {
				prev := results[idx-1]
				if !prev.ExactMatch && result.ExactMatch {
					t.Errorf("query %q: exact match ranked below non-exact", query)
				}
				if prev.ExactMatch == result.ExactMatch && prev.Score < result.Score {
					t.Errorf("query %q: results not sorted by score", query)
				}
			}
		}
	}
}

func TestSearchTokensBlankQuery(t *testing.T) {
	pool := []*types.TokenWithBalance{
		testToken("1", "0x2222222222222222222222222222222222222222", "USDC", "USD Coin"),
		testToken("1", "0x3333333333333333333333333333333333333333", "WETH", "Wrapped Ether"),
	}

	results := SearchTokens(pool, "   ", nil)
	if len(results) != 2 {
		t.Fatalf("expected all tokens for blank query, got %v", len(results))
	}
	for idx, result := range results {
		if result.Score != blankQueryScore {
			t.Errorf("result %v: expected flat score %v, got %v", idx, blankQueryScore, result.Score)
		}
		if result.Token != pool[idx] {
			t.Errorf("result %v: input order not preserved", idx)
		}
	}
}

func TestSearchTokensBlankQueryIgnoresResultCap(t *testing.T) {
	pool := make([]*types.TokenWithBalance, 0, DefaultMaxResults+10)
	for i := 0; i < DefaultMaxResults+10; i++ {
		pool = append(pool, testToken("1", fmt.Sprintf("0x%040x", i+1), fmt.Sprintf("TOK%d", i), "Token"))
	}

	results := SearchTokens(pool, "", nil)
	if len(results) != len(pool) {
		t.Fatalf("expected all %v tokens for blank query, got %v", len(pool), len(results))
	}

	results = SearchTokens(pool, "", &types.SearchOptions{MaxResults: 5})
	if len(results) != len(pool) {
		t.Fatalf("expected blank query to bypass MaxResults, got %v of %v", len(results), len(pool))
	}
}

func TestSearchTokensAddressMatch(t *testing.T) {
	pool := []*types.TokenWithBalance{
		testToken("1", "0xa0b86991c6218b36c1d19d4a2e9eb0ce3606eb48", "USDC", "USD Coin"),
		testToken("1", "0x3333333333333333333333333333333333333333", "WETH", "Wrapped Ether"),
	}

	results := SearchTokens(pool, "0xa0b86991", nil)
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %v", len(results))
	}
	if results[0].Token.Symbol != "USDC" {
		t.Errorf("expected USDC, got %v", results[0].Token.Symbol)
	}
	hasAddressField := false
	for _, field := range results[0].MatchedFields {
		if field == "address" {
			hasAddressField = true
		}
	}
	if !hasAddressField {
		t.Errorf("expected address in matched fields, got %v", results[0].MatchedFields)
	}
}

func TestSearchTokensTagMatch(t *testing.T) {
	pool := []*types.TokenWithBalance{
		testToken("1", "0x2222222222222222222222222222222222222222", "USDC", "USD Coin", "stablecoin", "verified"),
		testToken("1", "0x3333333333333333333333333333333333333333", "WETH", "Wrapped Ether", "verified"),
	}

	results := SearchTokens(pool, "stablecoin", nil)
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %v", len(results))
	}
	if results[0].Token.Symbol != "USDC" {
		t.Errorf("expected USDC, got %v", results[0].Token.Symbol)
	}
}

func TestSearchTokensMaxResults(t *testing.T) {
	pool := []*types.TokenWithBalance{}
	for i := 0; i < 10; i++ {
		pool = append(pool, testToken("1", "0x000000000000000000000000000000000000000"+string(rune('a'+i)), "TOK", "Token"))
	}

	results := SearchTokens(pool, "tok", &types.SearchOptions{MaxResults: 3, Threshold: DefaultThreshold, Fuzzy: true})
	if len(results) != 3 {
		t.Fatalf("expected truncation to 3 results, got %v", len(results))
	}
}

func TestSearchTokensFuzzyDisabled(t *testing.T) {
	pool := []*types.TokenWithBalance{
		testToken("1", "0x3333333333333333333333333333333333333333", "WETH", "Wrapped Ether"),
	}

	// subsequence-only match, no exact/prefix/substring hit
	fuzzyResults := SearchTokens(pool, "wth", &types.SearchOptions{Fuzzy: true})
	if len(fuzzyResults) != 1 {
		t.Errorf("expected fuzzy subsequence match, got %v results", len(fuzzyResults))
	}

	strictResults := SearchTokens(pool, "wth", &types.SearchOptions{Fuzzy: false})
	if len(strictResults) != 0 {
		t.Errorf("expected no match with fuzzy disabled, got %v results", len(strictResults))
	}
}

func TestSubsequenceScore(t *testing.T) {
	tests := []struct {
		name     string
		value    string
		query    string
		expected float64
	}{
		{"full subsequence", "wrapped ether", "wpe", 1},
		{"partial subsequence", "usdc", "usx", 2.0 / 3.0},
		{"no overlap", "weth", "xyz", 0},
		{"empty query", "weth", "", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := subsequenceScore(tt.value, tt.query)
			if got != tt.expected {
				t.Errorf("subsequenceScore(%q, %q) = %v, expected %v", tt.value, tt.query, got, tt.expected)
			}
		})
	}
}

func TestDedupTokens(t *testing.T) {
	first := testToken("1", "0xAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA", "USDC", "USD Coin")
	first.Amount = "100"
	duplicate := testToken("1", "0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa", "USDC", "USD Coin")
	otherChain := testToken("8453", "0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa", "USDC", "USD Coin")

	deduped := DedupTokens([]*types.TokenWithBalance{first, duplicate, otherChain})
	if len(deduped) != 2 {
		t.Fatalf("expected 2 tokens after dedup, got %v", len(deduped))
	}
	if deduped[0].Amount != "100" {
		t.Errorf("expected first occurrence to win the dedup")
	}
}

package tokens

import (
	"sort"
	"strings"

	"github.com/Jds-23/curly-octo-memory/types"
)

const (
	weightSymbol    = 1.0
	weightName      = 0.8
	weightAddress   = 0.9
	weightChainName = 0.6
	weightTag       = 0.7

	scoreExact     = 1.0
	scorePrefix    = 0.9
	scoreSubstring = 0.7
	fuzzyScale     = 0.5

	blankQueryScore = 0.5

	DefaultThreshold  = 0.1
	DefaultMaxResults = 50
)

// DefaultSearchOptions returns the standard ranking options.
func DefaultSearchOptions() *types.SearchOptions {
	return &types.SearchOptions{
		Threshold:  DefaultThreshold,
		MaxResults: DefaultMaxResults,
		Fuzzy:      true,
	}
}

// SearchTokens ranks the in-memory token list against a free-text query.
// A blank query returns all tokens unscored with a flat score, preserving the
// input order. Otherwise each token is scored per field, filtered by the
// threshold, sorted by (exactMatch desc, score desc) and truncated to
// MaxResults.
func SearchTokens(tokens []*types.TokenWithBalance, query string, opts *types.SearchOptions) []*types.SearchResult {
	if opts == nil {
		opts = DefaultSearchOptions()
	}
	threshold := opts.Threshold
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	maxResults := opts.MaxResults
	if maxResults <= 0 {
		maxResults = DefaultMaxResults
	}

	// blank queries pass the whole list through, the result cap only applies
	// to ranked results
	query = strings.TrimSpace(strings.ToLower(query))
	if query == "" {
		results := make([]*types.SearchResult, 0, len(tokens))
		for _, token := range tokens {
			results = append(results, &types.SearchResult{
				Token: token,
				Score: blankQueryScore,
			})
		}
		return results
	}

	results := make([]*types.SearchResult, 0, len(tokens))
	for _, token := range tokens {
		result := scoreToken(token, query, opts.Fuzzy)
		if result.Score < threshold {
			continue
		}
		results = append(results, result)
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].ExactMatch != results[j].ExactMatch {
			return results[i].ExactMatch
		}
		return results[i].Score > results[j].Score
	})

	if len(results) > maxResults {
		results = results[:maxResults]
	}

	return results
}

func scoreToken(token *types.TokenWithBalance, query string, fuzzy bool) *types.SearchResult {
	result := &types.SearchResult{
		Token: token,
	}

	scoreField := func(name, value string, weight float64, allowFuzzy bool) {
		if value == "" {
			return
		}
		value = strings.ToLower(value)

		fieldScore := matchScore(value, query, allowFuzzy && fuzzy)
		if fieldScore <= 0 {
			return
		}
		if value == query {
			result.ExactMatch = true
		}

		weighted := fieldScore * weight
		if weighted > 1 {
			weighted = 1
		}
		if weighted > result.Score {
			result.Score = weighted
		}
		result.MatchedFields = append(result.MatchedFields, name)
	}

	scoreField("symbol", token.Symbol, weightSymbol, true)
	scoreField("name", token.Name, weightName, true)
	scoreField("address", token.Address, weightAddress, false)
	scoreField("chainName", token.ChainName, weightChainName, true)
	for _, tag := range token.Tags {
		scoreField("tag", tag, weightTag, true)
	}

	return result
}

func matchScore(value, query string, fuzzy bool) float64 {
	switch {
	case value == query:
		return scoreExact
	case strings.HasPrefix(value, query):
		return scorePrefix
	case strings.Contains(value, query):
		return scoreSubstring
	}

	if fuzzy {
		return subsequenceScore(value, query) * fuzzyScale
	}

	return 0
}

// subsequenceScore counts query characters matched in order within the value
// and divides by the query length. Not edit-distance based.
func subsequenceScore(value, query string) float64 {
	if len(query) == 0 {
		return 0
	}

	matched := 0
	pos := 0
	for _, qr := range query {
		found := false
		for i, vr := range value[pos:] {
			if vr == qr {
				pos += i + len(string(vr))
				found = true
				break
			}
		}
		if found {
			matched++
		}
	}

	return float64(matched) / float64(len([]rune(query)))
}

// DedupTokens removes duplicate tokens by (chainId, lowercase address),
// keeping the first occurrence.
func DedupTokens(tokens []*types.TokenWithBalance) []*types.TokenWithBalance {
	seen := make(map[string]bool, len(tokens))
	deduped := make([]*types.TokenWithBalance, 0, len(tokens))
	for _, token := range tokens {
		key := token.Key()
		if seen[key] {
			continue
		}
		seen[key] = true
		deduped = append(deduped, token)
	}

	return deduped
}

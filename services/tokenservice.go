package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Jds-23/curly-octo-memory/cache"
	"github.com/Jds-23/curly-octo-memory/clients/balanceapi"
	"github.com/Jds-23/curly-octo-memory/config"
	"github.com/Jds-23/curly-octo-memory/tokens"
	"github.com/Jds-23/curly-octo-memory/types"
	"github.com/Jds-23/curly-octo-memory/utils"
)

// TokenService aggregates token sources (static lists, balance backend) and
// exposes the ranked search over them.
type TokenService struct {
	logger        logrus.FieldLogger
	chains        []types.ChainConfig
	balanceClient *balanceapi.Client
	tieredCache   *cache.TieredCache
	history       *tokens.History

	staticTokens map[string][]*types.TokenWithBalance

	balanceCacheTtl time.Duration
	listCacheTtl    time.Duration
	searchOptions   *types.SearchOptions
}

var GlobalTokenService *TokenService

// StartTokenService initializes the global token service from the loaded config.
func StartTokenService(store tokens.KeyValueStore) error {
	if GlobalTokenService != nil {
		return nil
	}

	cacheSize := utils.Config.Cache.LocalCacheSize
	if cacheSize == 0 {
		cacheSize = 100
	}
	tieredCache, err := cache.NewTieredCache(cacheSize, utils.Config.Cache.RedisCacheAddr, utils.Config.Cache.RedisCachePrefix)
	if err != nil {
		return fmt.Errorf("error initializing token cache: %w", err)
	}

	searchOptions := tokens.DefaultSearchOptions()
	if utils.Config.TokenSearch.Threshold > 0 {
		searchOptions.Threshold = utils.Config.TokenSearch.Threshold
	}
	if utils.Config.TokenSearch.MaxResults > 0 {
		searchOptions.MaxResults = utils.Config.TokenSearch.MaxResults
	}
	searchOptions.Fuzzy = !utils.Config.TokenSearch.DisableFuzzy

	service := &TokenService{
		logger:          logrus.StandardLogger().WithField("module", "tokens"),
		chains:          utils.Config.Chains,
		balanceClient:   balanceapi.NewClient(utils.Config.BalanceApi.Endpoint, utils.Config.BalanceApi.ApiKey, utils.Config.BalanceApi.Timeout),
		tieredCache:     tieredCache,
		history:         tokens.NewHistory(store),
		balanceCacheTtl: utils.Config.BalanceApi.CacheTtl,
		listCacheTtl:    utils.Config.TokenSearch.ListCacheTtl,
		searchOptions:   searchOptions,
	}
	if service.balanceCacheTtl == 0 {
		service.balanceCacheTtl = 30 * time.Second
	}

	err = service.loadStaticTokens()
	if err != nil {
		return err
	}

	GlobalTokenService = service

	return nil
}

func (ts *TokenService) loadStaticTokens() error {
	ts.staticTokens = map[string][]*types.TokenWithBalance{}

	for idx := range ts.chains {
		chain := &ts.chains[idx]
		listData, err := config.TokenLists.ReadFile(fmt.Sprintf("tokenlists/%s.json", chain.ChainId))
		if err != nil {
			ts.logger.Debugf("no embedded token list for chain %v", chain.ChainId)
			continue
		}

		rows := []map[string]interface{}{}
		err = json.Unmarshal(listData, &rows)
		if err != nil {
			return fmt.Errorf("error decoding token list for chain %v: %w", chain.ChainId, err)
		}

		chainTokens := make([]*types.TokenWithBalance, 0, len(rows))
		for _, raw := range rows {
			row := tokens.DecodeGenericApiRow(raw)
			chainTokens = append(chainTokens, tokens.AdaptGenericApiRow(row, chain))
		}
		ts.staticTokens[chain.ChainId] = tokens.DedupTokens(chainTokens)

		ts.logger.Infof("loaded %v static tokens for chain %v", len(chainTokens), chain.Name)
	}

	return nil
}

// GetChainConfig returns the configuration for a chain id, or nil.
func (ts *TokenService) GetChainConfig(chainId string) *types.ChainConfig {
	for idx := range ts.chains {
		if ts.chains[idx].ChainId == chainId {
			return &ts.chains[idx]
		}
	}
	return nil
}

// GetChains returns all configured chains.
func (ts *TokenService) GetChains() []types.ChainConfig {
	return ts.chains
}

// GetWalletBalances returns all token balances of a wallet across the
// configured chains, served from cache within the configured ttl.
func (ts *TokenService) GetWalletBalances(ctx context.Context, wallet string) ([]*types.TokenWithBalance, error) {
	wallet = utils.NormalizeAddress(wallet)

	cacheKey := "balances:" + wallet
	cached := []*types.TokenWithBalance{}
	if err := ts.tieredCache.Get(cacheKey, &cached); err == nil {
		return cached, nil
	}

	chainIds := make([]string, 0, len(ts.chains))
	for _, chain := range ts.chains {
		chainIds = append(chainIds, chain.ChainId)
	}

	rows, err := ts.balanceClient.GetBalances(ctx, wallet, chainIds)
	if err != nil {
		return nil, fmt.Errorf("error fetching wallet balances: %w", err)
	}

	balances := make([]*types.TokenWithBalance, 0, len(rows))
	for _, row := range rows {
		chain := ts.GetChainConfig(row.ChainId)
		if chain == nil {
			// upstream may report chains we do not serve
			continue
		}
		balances = append(balances, tokens.AdaptBalanceApiRow(row, chain))
	}
	balances = tokens.DedupTokens(balances)

	sort.SliceStable(balances, func(i, j int) bool {
		return balances[i].ValueUsd > balances[j].ValueUsd
	})

	err = ts.tieredCache.Set(cacheKey, balances, ts.balanceCacheTtl)
	if err != nil {
		ts.logger.WithError(err).Warnf("error caching balances for %v", wallet)
	}

	return balances, nil
}

// SearchRequest is one token search invocation.
type SearchRequest struct {
	Query   string
	Wallet  string
	Owner   string
	Filters *types.AdvancedFilters
}

// Search builds the token pool (wallet balances first so their amounts win
// the dedup, then static lists), filters and ranks it. A non-empty owner
// records the query in the search history.
func (ts *TokenService) Search(ctx context.Context, request *SearchRequest) ([]*types.SearchResult, error) {
	pool := []*types.TokenWithBalance{}

	if request.Wallet != "" {
		balances, err := ts.GetWalletBalances(ctx, request.Wallet)
		if err != nil {
			// balance backend outage degrades the search to static lists
			ts.logger.WithError(err).Warnf("could not fetch balances for %v, searching static lists only", request.Wallet)
		} else {
			pool = append(pool, balances...)
		}
	}

	for _, chain := range ts.chains {
		pool = append(pool, ts.staticTokens[chain.ChainId]...)
	}
	pool = tokens.DedupTokens(pool)
	pool = tokens.ApplyAdvancedFilters(pool, request.Filters)

	results := tokens.SearchTokens(pool, request.Query, ts.searchOptions)

	if request.Owner != "" && strings.TrimSpace(request.Query) != "" {
		ts.history.RecordQuery(request.Owner, request.Query)
	}

	return results, nil
}

// History returns the search history manager.
func (ts *TokenService) History() *tokens.History {
	return ts.history
}

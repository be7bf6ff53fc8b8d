package api

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"github.com/Jds-23/curly-octo-memory/services"
	"github.com/Jds-23/curly-octo-memory/types"
	"github.com/Jds-23/curly-octo-memory/utils"
)

type APITokenSearchResponseV1 struct {
	Query   string                `json:"query"`
	Results []*types.SearchResult `json:"results"`
	Count   int                   `json:"count"`
}

// ApiTokenSearchV1 godoc
// @Summary Search tokens
// @Tags Tokens
// @Description Returns a ranked, filtered token list for a query. Passing a wallet address includes the wallet's balances in the searched pool.
// @Produce json
// @Param q query string false "Search query (symbol, name, address, chain or tag)"
// @Param wallet query string false "Wallet address whose balances join the search pool"
// @Param owner query string false "Owner address used for search history recording"
// @Param chains query string false "Comma separated chain id allow-list"
// @Param categories query string false "Comma separated tag allow-list"
// @Success 200 {object} ApiResponse{data=APITokenSearchResponseV1} "Success"
// @Failure 400 {object} ApiResponse "Failure"
// @Failure 500 {object} ApiResponse "Server Error"
// @Router /api/v1/tokens/search [get]
func ApiTokenSearchV1(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	query := r.URL.Query()
	request := &services.SearchRequest{
		Query:  query.Get("q"),
		Wallet: query.Get("wallet"),
		Owner:  query.Get("owner"),
	}

	if request.Wallet != "" && !utils.IsValidAddress(request.Wallet) {
		sendBadRequestResponse(w, r.URL.String(), "invalid wallet address provided")
		return
	}
	if request.Owner != "" && !utils.IsValidAddress(request.Owner) {
		sendBadRequestResponse(w, r.URL.String(), "invalid owner address provided")
		return
	}

	filters, err := parseFilterParams(query)
	if err != nil {
		sendBadRequestResponse(w, r.URL.String(), err.Error())
		return
	}
	request.Filters = filters

	// searches with a wallet address fan out to the balance backend
	callCost := uint(1)
	if request.Wallet != "" {
		callCost = 2
	}
	if err := services.GlobalCallRateLimiter.CheckCallLimit(r, callCost); err != nil {
		sendTooManyRequestsResponse(w, r.URL.String(), err.Error())
		return
	}

	results, err := services.GlobalTokenService.Search(r.Context(), request)
	if err != nil {
		sendServerErrorResponse(w, r.URL.String(), "token search failed")
		return
	}

	sendOKResponse(w, r.URL.String(), &APITokenSearchResponseV1{
		Query:   request.Query,
		Results: results,
		Count:   len(results),
	})
}

func parseFilterParams(query map[string][]string) (*types.AdvancedFilters, error) {
	get := func(name string) string {
		values := query[name]
		if len(values) == 0 {
			return ""
		}
		return values[0]
	}

	filters := &types.AdvancedFilters{}
	hasFilter := false

	for _, bound := range []struct {
		name   string
		target **float64
	}{
		{"minPrice", &filters.MinPriceUsd},
		{"maxPrice", &filters.MaxPriceUsd},
		{"minBalance", &filters.MinBalanceUsd},
		{"maxBalance", &filters.MaxBalanceUsd},
	} {
		raw := get(bound.name)
		if raw == "" {
			continue
		}
		value, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid %v parameter", bound.name)
		}
		*bound.target = &value
		hasFilter = true
	}

	for _, flag := range []struct {
		name   string
		target *bool
	}{
		{"verifiedOnly", &filters.VerifiedOnly},
		{"nativeOnly", &filters.NativeOnly},
		{"withBalanceOnly", &filters.WithBalanceOnly},
		{"excludeLowLiquidity", &filters.ExcludeLowLiquidity},
	} {
		raw := get(flag.name)
		if raw == "" {
			continue
		}
		value, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid %v parameter", flag.name)
		}
		*flag.target = value
		hasFilter = true
	}

	if chains := get("chains"); chains != "" {
		filters.ChainIds = strings.Split(chains, ",")
		hasFilter = true
	}
	if categories := get("categories"); categories != "" {
		filters.Categories = strings.Split(categories, ",")
		hasFilter = true
	}

	if !hasFilter {
		return nil, nil
	}
	return filters, nil
}

type APITokenBalancesResponseV1 struct {
	Address  string                    `json:"address"`
	Balances []*types.TokenWithBalance `json:"balances"`
}

// ApiTokenBalancesV1 godoc
// @Summary Get wallet token balances
// @Tags Tokens
// @Description Returns all token balances of a wallet across the configured chains, sorted by USD value.
// @Produce json
// @Param address path string true "Wallet address"
// @Success 200 {object} ApiResponse{data=APITokenBalancesResponseV1} "Success"
// @Failure 400 {object} ApiResponse "Failure"
// @Failure 500 {object} ApiResponse "Server Error"
// @Router /api/v1/tokens/balances/{address} [get]
func ApiTokenBalancesV1(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	vars := mux.Vars(r)
	address := vars["address"]
	if !utils.IsValidAddress(address) {
		sendBadRequestResponse(w, r.URL.String(), "invalid wallet address provided")
		return
	}

	if err := services.GlobalCallRateLimiter.CheckCallLimit(r, 2); err != nil {
		sendTooManyRequestsResponse(w, r.URL.String(), err.Error())
		return
	}

	balances, err := services.GlobalTokenService.GetWalletBalances(r.Context(), address)
	if err != nil {
		sendServerErrorResponse(w, r.URL.String(), "could not fetch wallet balances")
		return
	}

	sendOKResponse(w, r.URL.String(), &APITokenBalancesResponseV1{
		Address:  utils.NormalizeAddress(address),
		Balances: balances,
	})
}

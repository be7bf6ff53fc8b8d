package api

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/Jds-23/curly-octo-memory/services"
	"github.com/Jds-23/curly-octo-memory/tokens"
	"github.com/Jds-23/curly-octo-memory/types"
	"github.com/Jds-23/curly-octo-memory/utils"
)

type APITokenHistoryResponseV1 struct {
	Owner      string                 `json:"owner"`
	Queries    []string               `json:"queries"`
	Selections []tokens.SelectedToken `json:"selections"`
}

// ApiTokenHistoryV1 godoc
// @Summary Get search history
// @Tags Tokens
// @Description Returns the owner's recent search queries and recently selected tokens, most recent first.
// @Produce json
// @Param owner path string true "Owner address"
// @Success 200 {object} ApiResponse{data=APITokenHistoryResponseV1} "Success"
// @Failure 400 {object} ApiResponse "Failure"
// @Router /api/v1/tokens/history/{owner} [get]
func ApiTokenHistoryV1(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	vars := mux.Vars(r)
	owner := vars["owner"]
	if !utils.IsValidAddress(owner) {
		sendBadRequestResponse(w, r.URL.String(), "invalid owner address provided")
		return
	}

	history := services.GlobalTokenService.History()
	sendOKResponse(w, r.URL.String(), &APITokenHistoryResponseV1{
		Owner:      utils.NormalizeAddress(owner),
		Queries:    history.RecentQueries(owner),
		Selections: history.RecentSelections(owner),
	})
}

type apiTokenSelectionRequest struct {
	Token *types.Token `json:"token"`
}

// ApiTokenSelectV1 godoc
// @Summary Record a token selection
// @Tags Tokens
// @Description Moves the token to the front of the owner's recently-selected list.
// @Accept json
// @Produce json
// @Param owner path string true "Owner address"
// @Param request body apiTokenSelectionRequest true "Selected token"
// @Success 200 {object} ApiResponse "Success"
// @Failure 400 {object} ApiResponse "Failure"
// @Router /api/v1/tokens/history/{owner}/select [post]
func ApiTokenSelectV1(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	vars := mux.Vars(r)
	owner := vars["owner"]
	if !utils.IsValidAddress(owner) {
		sendBadRequestResponse(w, r.URL.String(), "invalid owner address provided")
		return
	}

	request := &apiTokenSelectionRequest{}
	err := json.NewDecoder(r.Body).Decode(request)
	if err != nil {
		sendBadRequestResponse(w, r.URL.String(), "invalid request body")
		return
	}
	if request.Token == nil || request.Token.Address == "" || request.Token.ChainId == "" {
		sendBadRequestResponse(w, r.URL.String(), "token with address and chainId required")
		return
	}

	services.GlobalTokenService.History().RecordSelection(owner, request.Token)

	sendOKResponse(w, r.URL.String(), nil)
}

// ApiTokenHistoryClearV1 godoc
// @Summary Clear search history
// @Tags Tokens
// @Description Drops the owner's recent queries and selections.
// @Produce json
// @Param owner path string true "Owner address"
// @Success 200 {object} ApiResponse "Success"
// @Failure 400 {object} ApiResponse "Failure"
// @Router /api/v1/tokens/history/{owner} [delete]
func ApiTokenHistoryClearV1(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	vars := mux.Vars(r)
	owner := vars["owner"]
	if !utils.IsValidAddress(owner) {
		sendBadRequestResponse(w, r.URL.String(), "invalid owner address provided")
		return
	}

	services.GlobalTokenService.History().Clear(owner)

	sendOKResponse(w, r.URL.String(), nil)
}

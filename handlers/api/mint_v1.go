package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/Jds-23/curly-octo-memory/services"
	"github.com/Jds-23/curly-octo-memory/types"
)

type APIMintAttemptResponseV1 struct {
	*types.MintAttemptState
	IsReady     bool `json:"isReady"`
	IsExecuting bool `json:"isExecuting"`
}

func mintAttemptResponse(state *types.MintAttemptState) *APIMintAttemptResponseV1 {
	return &APIMintAttemptResponseV1{
		MintAttemptState: state,
		IsReady:          services.GlobalMintService.IsReady(state.Id),
		IsExecuting:      services.GlobalMintService.IsExecuting(state.Id),
	}
}

// ApiMintCreateV1 godoc
// @Summary Create a mint attempt
// @Tags Mint
// @Description Validates the mint parameters and registers a new attempt in idle state.
// @Accept json
// @Produce json
// @Param request body types.MintParams true "Mint parameters"
// @Success 200 {object} ApiResponse{data=APIMintAttemptResponseV1} "Success"
// @Failure 400 {object} ApiResponse "Failure"
// @Router /api/v1/mint [post]
func ApiMintCreateV1(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	params := &types.MintParams{}
	err := json.NewDecoder(r.Body).Decode(params)
	if err != nil {
		sendBadRequestResponse(w, r.URL.String(), "invalid request body")
		return
	}

	state, err := services.GlobalMintService.CreateAttempt(params)
	if err != nil {
		sendBadRequestResponse(w, r.URL.String(), err.Error())
		return
	}

	sendOKResponse(w, r.URL.String(), mintAttemptResponse(state))
}

// ApiMintStatusV1 godoc
// @Summary Get mint attempt status
// @Tags Mint
// @Description Returns the current status, balance advisory and transaction hashes of a mint attempt.
// @Produce json
// @Param id path string true "Attempt id"
// @Success 200 {object} ApiResponse{data=APIMintAttemptResponseV1} "Success"
// @Failure 404 {object} ApiResponse "Not Found"
// @Router /api/v1/mint/{id} [get]
func ApiMintStatusV1(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	vars := mux.Vars(r)
	state, err := services.GlobalMintService.GetAttempt(vars["id"])
	if err != nil {
		sendNotFoundResponse(w, r.URL.String(), err.Error())
		return
	}

	sendOKResponse(w, r.URL.String(), mintAttemptResponse(state))
}

// ApiMintExecuteV1 godoc
// @Summary Execute a mint attempt
// @Tags Mint
// @Description Starts the mint pipeline for an idle attempt. Progress is observed via the status endpoint.
// @Produce json
// @Param id path string true "Attempt id"
// @Success 200 {object} ApiResponse{data=APIMintAttemptResponseV1} "Success"
// @Failure 404 {object} ApiResponse "Not Found"
// @Failure 409 {object} ApiResponse "Not Executable"
// @Router /api/v1/mint/{id}/execute [post]
func ApiMintExecuteV1(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if err := services.GlobalCallRateLimiter.CheckCallLimit(r, 2); err != nil {
		sendTooManyRequestsResponse(w, r.URL.String(), err.Error())
		return
	}

	vars := mux.Vars(r)
	state, err := services.GlobalMintService.Execute(vars["id"])
	if err != nil {
		if strings.Contains(err.Error(), "unknown mint attempt") {
			sendNotFoundResponse(w, r.URL.String(), err.Error())
		} else {
			sendConflictResponse(w, r.URL.String(), err.Error())
		}
		return
	}

	sendOKResponse(w, r.URL.String(), mintAttemptResponse(state))
}

// ApiMintResetV1 godoc
// @Summary Reset a mint attempt
// @Tags Mint
// @Description Returns a terminal attempt to idle so it can be executed again.
// @Produce json
// @Param id path string true "Attempt id"
// @Success 200 {object} ApiResponse{data=APIMintAttemptResponseV1} "Success"
// @Failure 404 {object} ApiResponse "Not Found"
// @Failure 409 {object} ApiResponse "Not Resettable"
// @Router /api/v1/mint/{id}/reset [post]
func ApiMintResetV1(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	vars := mux.Vars(r)
	state, err := services.GlobalMintService.Reset(vars["id"])
	if err != nil {
		if strings.Contains(err.Error(), "unknown mint attempt") {
			sendNotFoundResponse(w, r.URL.String(), err.Error())
		} else {
			sendConflictResponse(w, r.URL.String(), err.Error())
		}
		return
	}

	sendOKResponse(w, r.URL.String(), mintAttemptResponse(state))
}

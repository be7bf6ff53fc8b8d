package api

import (
	"net/http"

	"github.com/Jds-23/curly-octo-memory/services"
)

type APIChainResponseV1 struct {
	Name         string `json:"name"`
	ChainId      string `json:"chainId"`
	NativeSymbol string `json:"nativeSymbol"`
	NativeName   string `json:"nativeName"`
}

// ApiChainsV1 godoc
// @Summary List configured chains
// @Tags Chains
// @Description Returns the chains this service is configured for.
// @Produce json
// @Success 200 {object} ApiResponse{data=[]APIChainResponseV1} "Success"
// @Router /api/v1/chains [get]
func ApiChainsV1(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	chains := services.GlobalTokenService.GetChains()
	data := make([]*APIChainResponseV1, 0, len(chains))
	for _, chain := range chains {
		data = append(data, &APIChainResponseV1{
			Name:         chain.Name,
			ChainId:      chain.ChainId,
			NativeSymbol: chain.NativeSymbol,
			NativeName:   chain.NativeName,
		})
	}

	sendOKResponse(w, r.URL.String(), data)
}

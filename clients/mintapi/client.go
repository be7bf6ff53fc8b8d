package mintapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/Jds-23/curly-octo-memory/types"
)

// Client talks to the mint-preparation backend which computes pool/tick
// state and returns an unsigned mint transaction payload.
type Client struct {
	endpoint   string
	apiKey     string
	httpClient *http.Client
}

func NewClient(endpoint, apiKey string, timeout time.Duration) *Client {
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	return &Client{
		endpoint:   strings.TrimRight(endpoint, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type prepareRequest struct {
	ChainId           string `json:"chainId"`
	TokenA            string `json:"tokenA"`
	TokenB            string `json:"tokenB"`
	AmountA           string `json:"amountA"`
	AmountB           string `json:"amountB"`
	FeeTier           uint32 `json:"feeTier"`
	FullRange         bool   `json:"fullRange"`
	TickLower         *int32 `json:"tickLower,omitempty"`
	TickUpper         *int32 `json:"tickUpper,omitempty"`
	SlippageTolerance string `json:"slippageTolerance"`
	Recipient         string `json:"recipient"`
}

type prepareResponse struct {
	Success         bool   `json:"success"`
	Message         string `json:"message"`
	Spender         string `json:"spender"`
	TransactionData *struct {
		To    string `json:"to"`
		Data  string `json:"data"`
		Value string `json:"value"`
	} `json:"transactionData"`
}

// PrepareMint asks the backend for the unsigned mint transaction. A
// {success:false} answer is returned as an error carrying the backend's
// message.
func (c *Client) PrepareMint(ctx context.Context, params *types.MintParams) (*types.PreparedTransaction, error) {
	request := &prepareRequest{
		ChainId:           params.ChainId,
		TokenA:            params.TokenA.Address,
		TokenB:            params.TokenB.Address,
		AmountA:           params.AmountA,
		AmountB:           params.AmountB,
		FeeTier:           params.FeeTier,
		FullRange:         params.FullRange,
		TickLower:         params.TickLower,
		TickUpper:         params.TickUpper,
		SlippageTolerance: fmt.Sprintf("%g", params.SlippageTolerance),
		Recipient:         params.Recipient,
	}

	requestBody, err := json.Marshal(request)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+"/lp/create", bytes.NewReader(requestBody))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("X-Api-Key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("mint preparation request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("error reading mint preparation response: %w", err)
	}

	response := &prepareResponse{}
	err = json.Unmarshal(body, response)
	if err != nil {
		return nil, fmt.Errorf("error decoding mint preparation response (status %v): %w", resp.StatusCode, err)
	}

	if !response.Success || response.TransactionData == nil {
		message := response.Message
		if message == "" {
			message = fmt.Sprintf("mint preparation backend returned status %v", resp.StatusCode)
		}
		return nil, fmt.Errorf("%s", message)
	}

	prepared := &types.PreparedTransaction{
		Call: types.TransactionCall{
			To:    response.TransactionData.To,
			Data:  response.TransactionData.Data,
			Value: response.TransactionData.Value,
		},
		Spender: response.Spender,
	}
	if prepared.Spender == "" {
		// without an explicit spender the mint contract itself is approved
		prepared.Spender = prepared.Call.To
	}

	return prepared, nil
}

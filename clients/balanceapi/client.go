package balanceapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Jds-23/curly-octo-memory/tokens"
)

var logger = logrus.StandardLogger().WithField("module", "balanceapi")

// Client queries the third-party balance backend for per-wallet token
// balances across chains.
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

// balancesResponse is the backend's envelope. Rows are decoded loosely since
// the upstream mixes string and numeric encodings per field.
type balancesResponse struct {
	Balances []map[string]interface{} `json:"balances"`
	Errors   *struct {
		ErrorMessage string `json:"error_message"`
	} `json:"errors"`
}

// GetBalances fetches all token balances of a wallet. chainIds restricts the
// queried chains when non-empty. Malformed rows degrade to partial records,
// they are never fatal.
func (c *Client) GetBalances(ctx context.Context, wallet string, chainIds []string) ([]*tokens.BalanceApiRow, error) {
	requestUrl := fmt.Sprintf("%s/balances/evm/%s", c.endpoint, url.PathEscape(wallet))
	if len(chainIds) > 0 {
		requestUrl += "?chain_ids=" + url.QueryEscape(strings.Join(chainIds, ","))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestUrl, nil)
	if err != nil {
		return nil, err
	}
	if c.apiKey != "" {
		req.Header.Set("X-Dune-Api-Key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("balance request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("error reading balance response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("balance backend returned status %v", resp.StatusCode)
	}

	response := &balancesResponse{}
	err = json.Unmarshal(body, response)
	if err != nil {
		return nil, fmt.Errorf("error decoding balance response: %w", err)
	}
	if response.Errors != nil && response.Errors.ErrorMessage != "" {
		logger.Warnf("balance backend reported partial errors for %v: %v", wallet, response.Errors.ErrorMessage)
	}

	rows := make([]*tokens.BalanceApiRow, 0, len(response.Balances))
	for _, raw := range response.Balances {
		rows = append(rows, tokens.DecodeBalanceApiRow(raw))
	}

	return rows, nil
}

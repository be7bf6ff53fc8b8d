package types

import "time"

// MintStatus is the lifecycle status of a single position mint attempt.
type MintStatus string

const (
	MintStatusIdle              MintStatus = "idle"
	MintStatusCheckingBalance   MintStatus = "checking-balance"
	MintStatusPreparing         MintStatus = "preparing"
	MintStatusCheckingAllowance MintStatus = "checking-allowance"
	MintStatusExecuting         MintStatus = "executing"
	MintStatusConfirming        MintStatus = "confirming"
	MintStatusSuccess           MintStatus = "success"
	MintStatusError             MintStatus = "error"
)

// IsTerminal reports whether the status is a final one.
func (s MintStatus) IsTerminal() bool {
	return s == MintStatusSuccess || s == MintStatusError
}

// MintParams describes one position mint request as received from the API.
// Amounts are human decimal strings and get scaled by 10^decimals internally.
type MintParams struct {
	ChainId           string  `json:"chainId"`
	TokenA            *Token  `json:"tokenA"`
	TokenB            *Token  `json:"tokenB"`
	AmountA           string  `json:"amountA"`
	AmountB           string  `json:"amountB"`
	FeeTier           uint32  `json:"feeTier"`
	FullRange         bool    `json:"fullRange"`
	TickLower         *int32  `json:"tickLower,omitempty"`
	TickUpper         *int32  `json:"tickUpper,omitempty"`
	SlippageTolerance float64 `json:"slippageTolerance"`
	Recipient         string  `json:"recipient"`
	Owner             string  `json:"owner"`
}

// TransactionCall is one unsigned call of a mint submission (approval or mint).
type TransactionCall struct {
	To    string `json:"to"`
	Data  string `json:"data"`
	Value string `json:"value"`
}

// PreparedTransaction is the mint-preparation backend's answer: the mint call
// plus the spender the owner has to approve the input tokens for.
type PreparedTransaction struct {
	Call    TransactionCall
	Spender string
}

// BalanceInfo is the per-token result of the balance-check step.
type BalanceInfo struct {
	Token     *Token `json:"token"`
	Required  string `json:"required"`
	Available string `json:"available"`
	Shortfall string `json:"shortfall,omitempty"`
}

// MintAttemptState is the externally visible state of one mint attempt.
type MintAttemptState struct {
	Id           string         `json:"id"`
	Status       MintStatus     `json:"status"`
	Error        string         `json:"error,omitempty"`
	BalanceError string         `json:"balanceError,omitempty"`
	Balances     []*BalanceInfo `json:"balances,omitempty"`
	TxHashes     []string       `json:"txHashes,omitempty"`
	BatchId      string         `json:"batchId,omitempty"`
	CreatedAt    time.Time      `json:"createdAt"`
	UpdatedAt    time.Time      `json:"updatedAt"`
}

package rpc

import (
	"context"
	"fmt"
	"math/big"
	"strconv"

	"github.com/Jds-23/curly-octo-memory/types"
)

// EIP-5792 wallet call batching. The endpoint's wallet may expose
// wallet_getCapabilities / wallet_sendCalls / wallet_getCallsStatus; if it
// does not, callers fall back to sequential eth_sendTransaction submission.

// WalletCapability is the per-chain capability object of wallet_getCapabilities.
type WalletCapability struct {
	AtomicBatch struct {
		Supported bool `json:"supported"`
	} `json:"atomicBatch"`
	Atomic struct {
		Status string `json:"status"`
	} `json:"atomic"`
}

// walletCall is the wire shape of one call in a wallet_sendCalls batch.
type walletCall struct {
	To    string `json:"to"`
	Data  string `json:"data,omitempty"`
	Value string `json:"value,omitempty"`
}

type sendCallsRequest struct {
	Version string       `json:"version"`
	ChainId string       `json:"chainId"`
	From    string       `json:"from"`
	Calls   []walletCall `json:"calls"`
}

type sendCallsResponse struct {
	Id string `json:"id"`
}

// CallsStatus is the wallet_getCallsStatus result. Status codes follow
// EIP-5792: 100 pending, 200 confirmed, 4xx/5xx failure.
type CallsStatus struct {
	Status   int `json:"status"`
	Receipts []struct {
		TransactionHash string `json:"transactionHash"`
		Status          string `json:"status"`
	} `json:"receipts"`
}

func (cs *CallsStatus) IsPending() bool {
	return cs.Status < 200
}

func (cs *CallsStatus) IsConfirmed() bool {
	return cs.Status >= 200 && cs.Status < 300
}

// SupportsAtomicBatch probes the wallet for atomic call batching on this
// client's chain. A probe failure is reported as an error so callers can
// distinguish "not supported" from "could not ask".
func (ec *ExecutionClient) SupportsAtomicBatch(ctx context.Context, from string) (bool, error) {
	var capabilities map[string]WalletCapability
	err := ec.rpcClient.CallContext(ctx, &capabilities, "wallet_getCapabilities", from)
	if err != nil {
		return false, err
	}

	capability, found := capabilities[chainIdHex(ec.chainId)]
	if !found {
		return false, nil
	}

	return capability.AtomicBatch.Supported || capability.Atomic.Status == "supported" || capability.Atomic.Status == "ready", nil
}

// SendCalls submits a call batch via wallet_sendCalls and returns the batch id.
func (ec *ExecutionClient) SendCalls(ctx context.Context, from string, calls []*types.TransactionCall) (string, error) {
	request := sendCallsRequest{
		Version: "1.0",
		ChainId: chainIdHex(ec.chainId),
		From:    from,
		Calls:   make([]walletCall, 0, len(calls)),
	}
	for _, call := range calls {
		request.Calls = append(request.Calls, walletCall{
			To:    call.To,
			Data:  call.Data,
			Value: valueHex(call.Value),
		})
	}

	var response sendCallsResponse
	err := ec.rpcClient.CallContext(ctx, &response, "wallet_sendCalls", request)
	if err != nil {
		return "", fmt.Errorf("wallet_sendCalls failed: %w", err)
	}
	if response.Id == "" {
		return "", fmt.Errorf("wallet_sendCalls returned empty batch id")
	}

	return response.Id, nil
}

// GetCallsStatus polls the status of a previously submitted call batch.
func (ec *ExecutionClient) GetCallsStatus(ctx context.Context, batchId string) (*CallsStatus, error) {
	status := &CallsStatus{}
	err := ec.rpcClient.CallContext(ctx, status, "wallet_getCallsStatus", batchId)
	if err != nil {
		return nil, fmt.Errorf("wallet_getCallsStatus failed: %w", err)
	}

	return status, nil
}

func chainIdHex(chainId string) string {
	parsed, err := strconv.ParseUint(chainId, 10, 64)
	if err != nil {
		return chainId
	}

	return "0x" + strconv.FormatUint(parsed, 16)
}

func valueHex(value string) string {
	if value == "" || value == "0" {
		return "0x0"
	}
	parsed, ok := new(big.Int).SetString(value, 0)
	if !ok {
		return "0x0"
	}

	return "0x" + parsed.Text(16)
}

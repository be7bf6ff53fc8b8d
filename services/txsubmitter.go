package services

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/sethvargo/go-retry"

	"github.com/Jds-23/curly-octo-memory/rpc"
	"github.com/Jds-23/curly-octo-memory/types"
)

// ChainClient is the execution-layer surface the mint pipeline needs.
// *rpc.ExecutionClient implements it; tests substitute a stub.
type ChainClient interface {
	GetBalanceAt(ctx context.Context, wallet common.Address, blockNumber *big.Int) (*big.Int, error)
	GetTokenBalance(ctx context.Context, token, owner common.Address) (*big.Int, error)
	GetTokenAllowance(ctx context.Context, token, owner, spender common.Address) (*big.Int, error)
	SupportsAtomicBatch(ctx context.Context, from string) (bool, error)
	SendCalls(ctx context.Context, from string, calls []*types.TransactionCall) (string, error)
	GetCallsStatus(ctx context.Context, batchId string) (*rpc.CallsStatus, error)
	SendTransaction(ctx context.Context, from string, call *types.TransactionCall) (common.Hash, error)
	GetTransactionReceipt(ctx context.Context, txHash common.Hash) (*ethtypes.Receipt, error)
}

// Submission is the handle of an in-flight call batch.
type Submission struct {
	BatchId  string
	TxHashes []string

	pendingHash string
}

// TransactionSubmitter abstracts how a call batch reaches the chain: in one
// atomic unit or as sequential transactions. Submit broadcasts the calls,
// WaitConfirmation blocks until the final call is terminal.
type TransactionSubmitter interface {
	Submit(ctx context.Context, from string, calls []*types.TransactionCall) (*Submission, error)
	WaitConfirmation(ctx context.Context, submission *Submission) error
}

// SelectSubmitter probes the wallet for atomic batching support and picks the
// matching strategy. A failed probe conservatively selects the sequential path.
func SelectSubmitter(ctx context.Context, client ChainClient, from string, interval, timeout time.Duration, disableBatching bool) TransactionSubmitter {
	if !disableBatching {
		supported, err := client.SupportsAtomicBatch(ctx, from)
		if err == nil && supported {
			return &AtomicSubmitter{client: client, interval: interval, timeout: timeout}
		}
	}

	return &SequentialSubmitter{client: client, interval: interval, timeout: timeout}
}

// AtomicSubmitter submits all calls as one EIP-5792 batch that is either
// all-applied or all-rejected.
type AtomicSubmitter struct {
	client   ChainClient
	interval time.Duration
	timeout  time.Duration
}

func (s *AtomicSubmitter) Submit(ctx context.Context, from string, calls []*types.TransactionCall) (*Submission, error) {
	batchId, err := s.client.SendCalls(ctx, from, calls)
	if err != nil {
		return nil, err
	}

	return &Submission{BatchId: batchId}, nil
}

func (s *AtomicSubmitter) WaitConfirmation(ctx context.Context, submission *Submission) error {
	return pollUntilTerminal(ctx, s.interval, s.timeout, func(ctx context.Context) (bool, error) {
		status, err := s.client.GetCallsStatus(ctx, submission.BatchId)
		if err != nil {
			// transient status read failures are retried until the deadline
			return false, nil
		}
		if status.IsPending() {
			return false, nil
		}
		if !status.IsConfirmed() {
			return true, fmt.Errorf("call batch failed with status %v", status.Status)
		}

		for _, receipt := range status.Receipts {
			submission.TxHashes = append(submission.TxHashes, receipt.TransactionHash)
		}

		return true, nil
	})
}

// SequentialSubmitter submits the calls one at a time, waiting for each
// transaction to confirm before sending the next and aborting the remaining
// sequence if any transaction reverts. Partially submitted prefixes are not
// rolled back.
type SequentialSubmitter struct {
	client   ChainClient
	interval time.Duration
	timeout  time.Duration
}

func (s *SequentialSubmitter) Submit(ctx context.Context, from string, calls []*types.TransactionCall) (*Submission, error) {
	submission := &Submission{}

	for idx, call := range calls {
		txHash, err := s.client.SendTransaction(ctx, from, call)
		if err != nil {
			return nil, fmt.Errorf("error sending transaction %v/%v: %w", idx+1, len(calls), err)
		}
		submission.TxHashes = append(submission.TxHashes, txHash.Hex())

		if idx < len(calls)-1 {
			// intermediate calls must land before the next one is sent
			err = s.waitReceipt(ctx, txHash)
			if err != nil {
				return submission, fmt.Errorf("transaction %v/%v: %w", idx+1, len(calls), err)
			}
		} else {
			submission.pendingHash = txHash.Hex()
		}
	}

	return submission, nil
}

func (s *SequentialSubmitter) WaitConfirmation(ctx context.Context, submission *Submission) error {
	if submission.pendingHash == "" {
		return nil
	}

	return s.waitReceipt(ctx, common.HexToHash(submission.pendingHash))
}

func (s *SequentialSubmitter) waitReceipt(ctx context.Context, txHash common.Hash) error {
	return pollUntilTerminal(ctx, s.interval, s.timeout, func(ctx context.Context) (bool, error) {
		receipt, err := s.client.GetTransactionReceipt(ctx, txHash)
		if err != nil || receipt == nil {
			// not yet mined
			return false, nil
		}
		if receipt.Status == ethtypes.ReceiptStatusFailed {
			return true, fmt.Errorf("transaction %v reverted", txHash.Hex())
		}

		return true, nil
	})
}

var errStillPending = fmt.Errorf("still pending")

// pollUntilTerminal invokes check on a constant interval until it reports a
// terminal result or the timeout elapses.
func pollUntilTerminal(ctx context.Context, interval, timeout time.Duration, check func(ctx context.Context) (bool, error)) error {
	if interval <= 0 {
		interval = 3 * time.Second
	}

	backoff := retry.NewConstant(interval)
	if timeout > 0 {
		backoff = retry.WithMaxDuration(timeout, backoff)
	}

	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		terminal, checkErr := check(ctx)
		if !terminal {
			return retry.RetryableError(errStillPending)
		}

		return checkErr
	})
	if err == errStillPending {
		return fmt.Errorf("timed out waiting for confirmation")
	}

	return err
}

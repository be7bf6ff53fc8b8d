package services

import (
	"context"
	"fmt"
	"math/big"
	"sort"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/sirupsen/logrus"

	"github.com/Jds-23/curly-octo-memory/rpc"
	"github.com/Jds-23/curly-octo-memory/tokens"
	"github.com/Jds-23/curly-octo-memory/types"
	"github.com/Jds-23/curly-octo-memory/utils"
)

var mintAttemptsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "lppool_mint_attempts_total",
	Help: "Number of finished mint attempts by terminal status.",
}, []string{"status"})

// MintPreparer computes pool/tick state server-side and returns the unsigned
// mint transaction. *mintapi.Client implements it.
type MintPreparer interface {
	PrepareMint(ctx context.Context, params *types.MintParams) (*types.PreparedTransaction, error)
}

// ClientProvider resolves the execution client for a chain id.
type ClientProvider func(ctx context.Context, chainId string) (ChainClient, error)

// MintOrchestrator drives position mint attempts through the pipeline
// balance check, transaction preparation, allowance check, submission and
// confirmation. Each attempt owns its state exclusively; the orchestrator
// only keeps the registry of attempts.
type MintOrchestrator struct {
	logger   logrus.FieldLogger
	preparer MintPreparer
	clients  ClientProvider

	confirmInterval time.Duration
	confirmTimeout  time.Duration
	retention       time.Duration
	disableBatching bool

	attemptsMutex sync.RWMutex
	attempts      map[string]*mintAttempt
}

type mintAttempt struct {
	mutex  sync.Mutex
	params *types.MintParams
	state  types.MintAttemptState
}

var GlobalMintService *MintOrchestrator

// StartMintService initializes the global mint orchestrator from the loaded config.
func StartMintService(preparer MintPreparer, clients ClientProvider) error {
	if GlobalMintService != nil {
		return nil
	}

	service := &MintOrchestrator{
		logger:          logrus.StandardLogger().WithField("module", "mint"),
		preparer:        preparer,
		clients:         clients,
		confirmInterval: utils.Config.Mint.ConfirmInterval,
		confirmTimeout:  utils.Config.Mint.ConfirmTimeout,
		retention:       utils.Config.Mint.AttemptRetention,
		disableBatching: utils.Config.Mint.DisableBatching,
		attempts:        map[string]*mintAttempt{},
	}
	if service.confirmInterval == 0 {
		service.confirmInterval = 3 * time.Second
	}
	if service.confirmTimeout == 0 {
		service.confirmTimeout = 10 * time.Minute
	}
	if service.retention == 0 {
		service.retention = 1 * time.Hour
	}

	GlobalMintService = service
	go service.runCleanupLoop()

	return nil
}

// NewMintOrchestrator builds a standalone orchestrator. Used by tests; the
// server uses the global instance.
func NewMintOrchestrator(preparer MintPreparer, clients ClientProvider, confirmInterval, confirmTimeout time.Duration, disableBatching bool) *MintOrchestrator {
	return &MintOrchestrator{
		logger:          logrus.StandardLogger().WithField("module", "mint"),
		preparer:        preparer,
		clients:         clients,
		confirmInterval: confirmInterval,
		confirmTimeout:  confirmTimeout,
		retention:       1 * time.Hour,
		disableBatching: disableBatching,
		attempts:        map[string]*mintAttempt{},
	}
}

// CreateAttempt registers a new mint attempt in idle state.
func (mo *MintOrchestrator) CreateAttempt(params *types.MintParams) (*types.MintAttemptState, error) {
	err := validateMintParams(params)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	attempt := &mintAttempt{
		params: params,
		state: types.MintAttemptState{
			Id:        uuid.New().String(),
			Status:    types.MintStatusIdle,
			CreatedAt: now,
			UpdatedAt: now,
		},
	}

	mo.attemptsMutex.Lock()
	mo.attempts[attempt.state.Id] = attempt
	mo.attemptsMutex.Unlock()

	state := attempt.state
	return &state, nil
}

func validateMintParams(params *types.MintParams) error {
	switch {
	case params == nil:
		return fmt.Errorf("missing mint parameters")
	case params.TokenA == nil || params.TokenB == nil:
		return fmt.Errorf("both tokens must be set")
	case params.AmountA == "" || params.AmountB == "":
		return fmt.Errorf("both amounts must be set")
	case params.Owner == "":
		return fmt.Errorf("owner address must be set")
	case !utils.IsValidAddress(params.Owner):
		return fmt.Errorf("invalid owner address: %v", params.Owner)
	case params.ChainId == "":
		return fmt.Errorf("chain id must be set")
	case !params.FullRange && (params.TickLower == nil || params.TickUpper == nil):
		return fmt.Errorf("tick range must be set unless minting full range")
	}

	if params.Recipient == "" {
		params.Recipient = params.Owner
	}

	return nil
}

// GetAttempt returns a snapshot of the attempt's state.
func (mo *MintOrchestrator) GetAttempt(id string) (*types.MintAttemptState, error) {
	attempt := mo.getAttempt(id)
	if attempt == nil {
		return nil, fmt.Errorf("unknown mint attempt: %v", id)
	}

	attempt.mutex.Lock()
	state := attempt.state
	attempt.mutex.Unlock()

	return &state, nil
}

func (mo *MintOrchestrator) getAttempt(id string) *mintAttempt {
	mo.attemptsMutex.RLock()
	defer mo.attemptsMutex.RUnlock()

	return mo.attempts[id]
}

// IsReady reports whether the attempt can be executed: parameters complete,
// no outstanding balance shortfall and status idle.
func (mo *MintOrchestrator) IsReady(id string) bool {
	attempt := mo.getAttempt(id)
	if attempt == nil {
		return false
	}

	attempt.mutex.Lock()
	defer attempt.mutex.Unlock()

	return attempt.state.Status == types.MintStatusIdle && attempt.state.BalanceError == ""
}

// IsExecuting reports whether the attempt is in a non-terminal, non-idle state.
func (mo *MintOrchestrator) IsExecuting(id string) bool {
	attempt := mo.getAttempt(id)
	if attempt == nil {
		return false
	}

	attempt.mutex.Lock()
	defer attempt.mutex.Unlock()

	return attempt.state.Status != types.MintStatusIdle && !attempt.state.Status.IsTerminal()
}

// Reset returns a terminal or idle attempt to a clean idle state so it can be
// executed again. Resetting a running attempt is rejected.
func (mo *MintOrchestrator) Reset(id string) (*types.MintAttemptState, error) {
	attempt := mo.getAttempt(id)
	if attempt == nil {
		return nil, fmt.Errorf("unknown mint attempt: %v", id)
	}

	attempt.mutex.Lock()
	defer attempt.mutex.Unlock()

	if attempt.state.Status != types.MintStatusIdle && !attempt.state.Status.IsTerminal() {
		return nil, fmt.Errorf("cannot reset attempt in status %v", attempt.state.Status)
	}

	attempt.state.Status = types.MintStatusIdle
	attempt.state.Error = ""
	attempt.state.BalanceError = ""
	attempt.state.Balances = nil
	attempt.state.TxHashes = nil
	attempt.state.BatchId = ""
	attempt.state.UpdatedAt = time.Now()

	state := attempt.state
	return &state, nil
}

// Execute starts the mint pipeline for an idle attempt. The pipeline runs in
// the background; callers observe progress via GetAttempt.
func (mo *MintOrchestrator) Execute(id string) (*types.MintAttemptState, error) {
	attempt := mo.getAttempt(id)
	if attempt == nil {
		return nil, fmt.Errorf("unknown mint attempt: %v", id)
	}

	attempt.mutex.Lock()
	if attempt.state.Status != types.MintStatusIdle {
		status := attempt.state.Status
		attempt.mutex.Unlock()
		return nil, fmt.Errorf("attempt is in status %v, executable from idle only", status)
	}
	attempt.state.Status = types.MintStatusCheckingBalance
	attempt.state.Error = ""
	attempt.state.BalanceError = ""
	attempt.state.UpdatedAt = time.Now()
	state := attempt.state
	attempt.mutex.Unlock()

	go func() {
		defer utils.HandleSubroutinePanic(fmt.Sprintf("mint.execute.%v", id))
		mo.runPipeline(attempt)
	}()

	return &state, nil
}

// runPipeline walks the attempt through all pipeline steps. Every step that
// fails sets a human-readable error; a balance shortfall is an advisory and
// returns the attempt to idle instead.
func (mo *MintOrchestrator) runPipeline(attempt *mintAttempt) {
	ctx, cancel := context.WithTimeout(context.Background(), mo.confirmTimeout+2*time.Minute)
	defer cancel()

	params := attempt.params
	logger := mo.logger.WithField("attempt", attempt.state.Id)

	client, err := mo.clients(ctx, params.ChainId)
	if err != nil {
		mo.failAttempt(attempt, fmt.Sprintf("chain %v is not available: %v", params.ChainId, err))
		return
	}

	// checking-balance
	balances, balanceError, err := mo.checkBalances(ctx, client, params)
	if err != nil {
		mo.failAttempt(attempt, fmt.Sprintf("balance check failed: %v", err))
		return
	}
	if balanceError != "" {
		logger.Infof("balance shortfall: %v", balanceError)
		mo.updateAttempt(attempt, func(state *types.MintAttemptState) {
			state.Status = types.MintStatusIdle
			state.BalanceError = balanceError
			state.Balances = balances
		})
		return
	}
	mo.updateAttempt(attempt, func(state *types.MintAttemptState) {
		state.Status = types.MintStatusPreparing
		state.Balances = balances
	})

	// preparing
	prepared, err := mo.preparer.PrepareMint(ctx, params)
	if err != nil {
		mo.failAttempt(attempt, fmt.Sprintf("mint preparation failed: %v", err))
		return
	}
	mo.updateAttempt(attempt, func(state *types.MintAttemptState) {
		state.Status = types.MintStatusCheckingAllowance
	})

	// checking-allowance
	approvals, err := mo.collectApprovals(ctx, client, params, prepared.Spender)
	if err != nil {
		mo.failAttempt(attempt, fmt.Sprintf("allowance check failed: %v", err))
		return
	}

	calls := make([]*types.TransactionCall, 0, len(approvals)+1)
	calls = append(calls, approvals...)
	mintCall := prepared.Call
	calls = append(calls, &mintCall)

	mo.updateAttempt(attempt, func(state *types.MintAttemptState) {
		state.Status = types.MintStatusExecuting
	})

	// executing
	submitter := SelectSubmitter(ctx, client, params.Owner, mo.confirmInterval, mo.confirmTimeout, mo.disableBatching)
	submission, err := submitter.Submit(ctx, params.Owner, calls)
	if submission != nil {
		mo.updateAttempt(attempt, func(state *types.MintAttemptState) {
			state.BatchId = submission.BatchId
			state.TxHashes = submission.TxHashes
		})
	}
	if err != nil {
		mo.failAttempt(attempt, fmt.Sprintf("transaction submission failed: %v", err))
		return
	}

	mo.updateAttempt(attempt, func(state *types.MintAttemptState) {
		state.Status = types.MintStatusConfirming
	})

	// confirming
	err = submitter.WaitConfirmation(ctx, submission)
	if err != nil {
		mo.failAttempt(attempt, fmt.Sprintf("confirmation failed: %v", err))
		return
	}

	logger.Infof("mint confirmed (%v calls, batch %v)", len(calls), submission.BatchId)
	mintAttemptsTotal.WithLabelValues(string(types.MintStatusSuccess)).Inc()
	mo.updateAttempt(attempt, func(state *types.MintAttemptState) {
		state.Status = types.MintStatusSuccess
		state.TxHashes = submission.TxHashes
	})
}

// checkBalances derives the required raw amounts from the decimal inputs and
// compares them against live balances. A shortfall is returned as an advisory
// string, not an error.
func (mo *MintOrchestrator) checkBalances(ctx context.Context, client ChainClient, params *types.MintParams) ([]*types.BalanceInfo, string, error) {
	owner := common.HexToAddress(params.Owner)

	sides := []struct {
		token  *types.Token
		amount string
	}{
		{params.TokenA, params.AmountA},
		{params.TokenB, params.AmountB},
	}

	required := make([]*big.Int, len(sides))
	for idx, side := range sides {
		amount, err := utils.ParseTokenAmount(side.amount, side.token.Decimals)
		if err != nil {
			return nil, "", fmt.Errorf("invalid amount %q for %v: %w", side.amount, side.token.Symbol, err)
		}
		if amount.Sign() < 0 {
			return nil, "", fmt.Errorf("negative amount for %v", side.token.Symbol)
		}
		required[idx] = amount
	}

	// fetch both sides concurrently
	available := make([]*big.Int, len(sides))
	readErrs := make([]error, len(sides))

	var wg sync.WaitGroup
	for idx, side := range sides {
		wg.Add(1)
		go func(idx int, token *types.Token) {
			defer wg.Done()
			if token.IsNative || tokens.IsNativeAddress(token.Address) {
				available[idx], readErrs[idx] = client.GetBalanceAt(ctx, owner, nil)
			} else {
				available[idx], readErrs[idx] = client.GetTokenBalance(ctx, common.HexToAddress(token.Address), owner)
			}
		}(idx, side.token)
	}
	wg.Wait()

	balances := make([]*types.BalanceInfo, 0, 2)
	shortfalls := make([]*types.BalanceInfo, 0, 2)

	for idx, side := range sides {
		if readErrs[idx] != nil {
			return nil, "", fmt.Errorf("could not fetch %v balance: %w", side.token.Symbol, readErrs[idx])
		}

		info := &types.BalanceInfo{
			Token:     side.token,
			Required:  required[idx].String(),
			Available: available[idx].String(),
		}
		if available[idx].Cmp(required[idx]) < 0 {
			info.Shortfall = new(big.Int).Sub(required[idx], available[idx]).String()
			shortfalls = append(shortfalls, info)
		}
		balances = append(balances, info)
	}

	switch len(shortfalls) {
	case 0:
		return balances, "", nil
	case 1:
		info := shortfalls[0]
		missing, _ := new(big.Int).SetString(info.Shortfall, 10)
		return balances, fmt.Sprintf("Need %v more %v", utils.FormatTokenAmount(missing, info.Token.Decimals), info.Token.Symbol), nil
	default:
		return balances, fmt.Sprintf("Insufficient %v and %v balance", params.TokenA.Symbol, params.TokenB.Symbol), nil
	}
}

// collectApprovals reads the current allowances for the spender and builds an
// approval call for every non-native token whose allowance falls short. An
// allowance read failure counts as approval required.
func (mo *MintOrchestrator) collectApprovals(ctx context.Context, client ChainClient, params *types.MintParams, spender string) ([]*types.TransactionCall, error) {
	if spender == "" {
		return nil, fmt.Errorf("preparation backend returned no spender")
	}

	owner := common.HexToAddress(params.Owner)
	spenderAddr := common.HexToAddress(spender)

	sides := []struct {
		token  *types.Token
		amount string
	}{
		{params.TokenA, params.AmountA},
		{params.TokenB, params.AmountB},
	}

	required := make([]*big.Int, len(sides))
	for idx, side := range sides {
		if side.token.IsNative || tokens.IsNativeAddress(side.token.Address) {
			continue
		}
		amount, err := utils.ParseTokenAmount(side.amount, side.token.Decimals)
		if err != nil {
			return nil, fmt.Errorf("invalid amount %q for %v: %w", side.amount, side.token.Symbol, err)
		}
		required[idx] = amount
	}

	// read both allowances concurrently
	allowances := make([]*big.Int, len(sides))
	readErrs := make([]error, len(sides))

	var wg sync.WaitGroup
	for idx, side := range sides {
		if required[idx] == nil {
			continue
		}
		wg.Add(1)
		go func(idx int, token *types.Token) {
			defer wg.Done()
			allowances[idx], readErrs[idx] = client.GetTokenAllowance(ctx, common.HexToAddress(token.Address), owner, spenderAddr)
		}(idx, side.token)
	}
	wg.Wait()

	approvals := make([]*types.TransactionCall, 0, 2)
	for idx, side := range sides {
		if required[idx] == nil {
			continue
		}

		needsApproval := true
		if readErrs[idx] != nil {
			mo.logger.Warnf("allowance read for %v failed, assuming approval needed: %v", side.token.Symbol, readErrs[idx])
		} else if allowances[idx].Cmp(required[idx]) >= 0 {
			needsApproval = false
		}
		if !needsApproval {
			continue
		}

		callData, err := rpc.EncodeApproveCall(spenderAddr, required[idx])
		if err != nil {
			return nil, fmt.Errorf("could not encode approval for %v: %w", side.token.Symbol, err)
		}

		approvals = append(approvals, &types.TransactionCall{
			To:    side.token.Address,
			Data:  callData,
			Value: "0",
		})
	}

	return approvals, nil
}

func (mo *MintOrchestrator) failAttempt(attempt *mintAttempt, message string) {
	mo.logger.WithField("attempt", attempt.state.Id).Warnf("mint attempt failed: %v", message)
	mintAttemptsTotal.WithLabelValues(string(types.MintStatusError)).Inc()
	mo.updateAttempt(attempt, func(state *types.MintAttemptState) {
		state.Status = types.MintStatusError
		state.Error = message
	})
}

func (mo *MintOrchestrator) updateAttempt(attempt *mintAttempt, update func(state *types.MintAttemptState)) {
	attempt.mutex.Lock()
	update(&attempt.state)
	attempt.state.UpdatedAt = time.Now()
	attempt.mutex.Unlock()
}

// ListAttempts returns snapshots of all known attempts, newest first.
func (mo *MintOrchestrator) ListAttempts() []*types.MintAttemptState {
	mo.attemptsMutex.RLock()
	attempts := make([]*mintAttempt, 0, len(mo.attempts))
	for _, attempt := range mo.attempts {
		attempts = append(attempts, attempt)
	}
	mo.attemptsMutex.RUnlock()

	states := make([]*types.MintAttemptState, 0, len(attempts))
	for _, attempt := range attempts {
		attempt.mutex.Lock()
		state := attempt.state
		attempt.mutex.Unlock()
		states = append(states, &state)
	}

	sort.Slice(states, func(a, b int) bool {
		return states[a].CreatedAt.After(states[b].CreatedAt)
	})

	return states
}

// runCleanupLoop drops terminal attempts older than the retention window.
func (mo *MintOrchestrator) runCleanupLoop() {
	defer utils.HandleSubroutinePanic("mint.cleanup")

	for {
		time.Sleep(mo.retention / 4)

		cutoff := time.Now().Add(-mo.retention)
		mo.attemptsMutex.Lock()
		for id, attempt := range mo.attempts {
			attempt.mutex.Lock()
			expired := attempt.state.Status.IsTerminal() && attempt.state.UpdatedAt.Before(cutoff)
			attempt.mutex.Unlock()
			if expired {
				delete(mo.attempts, id)
			}
		}
		mo.attemptsMutex.Unlock()
	}
}

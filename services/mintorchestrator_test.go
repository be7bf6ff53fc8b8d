package services

import (
	"context"
	"fmt"
	"math/big"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"

	"github.com/Jds-23/curly-octo-memory/rpc"
	"github.com/Jds-23/curly-octo-memory/types"
)

const (
	testOwner   = "0x1000000000000000000000000000000000000001"
	testSpender = "0x2000000000000000000000000000000000000002"
	testMintTo  = "0x3000000000000000000000000000000000000003"

	usdcAddress = "0xa0b86991c6218b36c1d19d4a2e9eb0ce3606eb48"
	wethAddress = "0xc02aaa39b223fe8d0a0e5c4f27ead9083c756cc2"
)

func usdcToken() *types.Token {
	return &types.Token{Address: usdcAddress, Symbol: "USDC", Decimals: 6, ChainId: "1"}
}

func wethToken() *types.Token {
	return &types.Token{Address: wethAddress, Symbol: "WETH", Decimals: 18, ChainId: "1"}
}

// stubChainClient is an in-memory ChainClient with scriptable balances,
// allowances and submission behavior.
type stubChainClient struct {
	mu sync.Mutex

	nativeBalance *big.Int
	balances      map[common.Address]*big.Int
	allowances    map[common.Address]*big.Int
	allowanceErr  error

	atomicSupported bool
	atomicProbeErr  error

	sentBatches [][]*types.TransactionCall
	sentTxs     []*types.TransactionCall
}

func newStubChainClient() *stubChainClient {
	return &stubChainClient{
		nativeBalance: big.NewInt(0),
		balances:      map[common.Address]*big.Int{},
		allowances:    map[common.Address]*big.Int{},
	}
}

func (c *stubChainClient) setBalance(token string, amount *big.Int) {
	c.balances[common.HexToAddress(token)] = amount
}

func (c *stubChainClient) setAllowance(token string, amount *big.Int) {
	c.allowances[common.HexToAddress(token)] = amount
}

func (c *stubChainClient) GetBalanceAt(ctx context.Context, wallet common.Address, blockNumber *big.Int) (*big.Int, error) {
	return c.nativeBalance, nil
}

func (c *stubChainClient) GetTokenBalance(ctx context.Context, token, owner common.Address) (*big.Int, error) {
	if balance, ok := c.balances[token]; ok {
		return balance, nil
	}
	return big.NewInt(0), nil
}

func (c *stubChainClient) GetTokenAllowance(ctx context.Context, token, owner, spender common.Address) (*big.Int, error) {
	if c.allowanceErr != nil {
		return nil, c.allowanceErr
	}
	if allowance, ok := c.allowances[token]; ok {
		return allowance, nil
	}
	return big.NewInt(0), nil
}

func (c *stubChainClient) SupportsAtomicBatch(ctx context.Context, from string) (bool, error) {
	return c.atomicSupported, c.atomicProbeErr
}

func (c *stubChainClient) SendCalls(ctx context.Context, from string, calls []*types.TransactionCall) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sentBatches = append(c.sentBatches, calls)
	return fmt.Sprintf("batch-%d", len(c.sentBatches)), nil
}

func (c *stubChainClient) GetCallsStatus(ctx context.Context, batchId string) (*rpc.CallsStatus, error) {
	return &rpc.CallsStatus{Status: 200}, nil
}

func (c *stubChainClient) SendTransaction(ctx context.Context, from string, call *types.TransactionCall) (common.Hash, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sentTxs = append(c.sentTxs, call)
	return common.BigToHash(big.NewInt(int64(len(c.sentTxs)))), nil
}

func (c *stubChainClient) GetTransactionReceipt(ctx context.Context, txHash common.Hash) (*ethtypes.Receipt, error) {
	return &ethtypes.Receipt{Status: ethtypes.ReceiptStatusSuccessful}, nil
}

func (c *stubChainClient) submittedCalls() []*types.TransactionCall {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.sentBatches) > 0 {
		return c.sentBatches[len(c.sentBatches)-1]
	}
	return c.sentTxs
}

type stubPreparer struct {
	mu       sync.Mutex
	calls    int
	err      error
	prepared *types.PreparedTransaction
}

func newStubPreparer() *stubPreparer {
	return &stubPreparer{
		prepared: &types.PreparedTransaction{
			Call:    types.TransactionCall{To: testMintTo, Data: "0xdeadbeef", Value: "0"},
			Spender: testSpender,
		},
	}
}

func (p *stubPreparer) PrepareMint(ctx context.Context, params *types.MintParams) (*types.PreparedTransaction, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	if p.err != nil {
		return nil, p.err
	}
	return p.prepared, nil
}

func (p *stubPreparer) callCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}

func testOrchestrator(client *stubChainClient, preparer *stubPreparer) *MintOrchestrator {
	return NewMintOrchestrator(preparer, func(ctx context.Context, chainId string) (ChainClient, error) {
		return client, nil
	}, time.Millisecond, time.Second, false)
}

func testMintParams() *types.MintParams {
	return &types.MintParams{
		ChainId:           "1",
		TokenA:            usdcToken(),
		TokenB:            wethToken(),
		AmountA:           "10",
		AmountB:           "1",
		FeeTier:           3000,
		FullRange:         true,
		SlippageTolerance: 0.5,
		Owner:             testOwner,
	}
}

// waitForSettled polls the attempt until it leaves the transient pipeline
// states or the timeout elapses.
func waitForSettled(t *testing.T, mo *MintOrchestrator, id string) *types.MintAttemptState {
	t.Helper()

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		state, err := mo.GetAttempt(id)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if state.Status.IsTerminal() {
			return state
		}
		if state.Status == types.MintStatusIdle && state.BalanceError != "" {
			return state
		}
		time.Sleep(time.Millisecond)
	}

	t.Fatalf("attempt %v did not settle in time", id)
	return nil
}

func TestMintShortfallLeavesIdle(t *testing.T) {
	client := newStubChainClient()
	client.setBalance(usdcAddress, big.NewInt(9_000000))
	client.setBalance(wethAddress, new(big.Int).Mul(big.NewInt(10), big.NewInt(1e18)))
	preparer := newStubPreparer()
	mo := testOrchestrator(client, preparer)

	state, err := mo.CreateAttempt(testMintParams())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err = mo.Execute(state.Id)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	state = waitForSettled(t, mo, state.Id)

	if state.Status != types.MintStatusIdle {
		t.Errorf("expected idle after shortfall, got %v", state.Status)
	}
	if state.BalanceError != "Need 1 more USDC" {
		t.Errorf("expected advisory 'Need 1 more USDC', got %q", state.BalanceError)
	}
	if preparer.callCount() != 0 {
		t.Errorf("preparation backend must not be invoked on shortfall")
	}
	if mo.IsReady(state.Id) {
		t.Errorf("attempt with outstanding shortfall must not be ready")
	}
}

func TestMintMultipleShortfalls(t *testing.T) {
	client := newStubChainClient()
	preparer := newStubPreparer()
	mo := testOrchestrator(client, preparer)

	state, _ := mo.CreateAttempt(testMintParams())
	_, err := mo.Execute(state.Id)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	state = waitForSettled(t, mo, state.Id)

	if state.Status != types.MintStatusIdle {
		t.Errorf("expected idle after shortfall, got %v", state.Status)
	}
	if state.BalanceError != "Insufficient USDC and WETH balance" {
		t.Errorf("unexpected advisory %q", state.BalanceError)
	}
}

func TestMintSufficientAllowancesSkipApprovals(t *testing.T) {
	client := newStubChainClient()
	client.atomicSupported = true
	client.setBalance(usdcAddress, big.NewInt(20_000000))
	client.setBalance(wethAddress, new(big.Int).Mul(big.NewInt(10), big.NewInt(1e18)))
	client.setAllowance(usdcAddress, big.NewInt(100_000000))
	client.setAllowance(wethAddress, new(big.Int).Mul(big.NewInt(100), big.NewInt(1e18)))
	preparer := newStubPreparer()
	mo := testOrchestrator(client, preparer)

	state, _ := mo.CreateAttempt(testMintParams())
	mo.Execute(state.Id)
	state = waitForSettled(t, mo, state.Id)

	if state.Status != types.MintStatusSuccess {
		t.Fatalf("expected success, got %v (%v)", state.Status, state.Error)
	}

	calls := client.submittedCalls()
	if len(calls) != 1 {
		t.Fatalf("expected 1 submitted call (mint only), got %v", len(calls))
	}
	if calls[0].To != testMintTo {
		t.Errorf("expected mint call target %v, got %v", testMintTo, calls[0].To)
	}
}

// rendezvousChainClient blocks every token balance and allowance read until
// the read for the other pool side is in flight too. Reads issued one after
// another would stall here.
type rendezvousChainClient struct {
	*stubChainClient

	balanceBarrier   chan struct{}
	allowanceBarrier chan struct{}
	stalledReads     int32
}

func (c *rendezvousChainClient) await(barrier chan struct{}) {
	select {
	case barrier <- struct{}{}:
	case <-barrier:
	case <-time.After(time.Second):
		atomic.AddInt32(&c.stalledReads, 1)
	}
}

func (c *rendezvousChainClient) GetTokenBalance(ctx context.Context, token, owner common.Address) (*big.Int, error) {
	c.await(c.balanceBarrier)
	return c.stubChainClient.GetTokenBalance(ctx, token, owner)
}

func (c *rendezvousChainClient) GetTokenAllowance(ctx context.Context, token, owner, spender common.Address) (*big.Int, error) {
	c.await(c.allowanceBarrier)
	return c.stubChainClient.GetTokenAllowance(ctx, token, owner, spender)
}

func TestMintBalanceAndAllowanceReadsFanOut(t *testing.T) {
	stub := newStubChainClient()
	stub.atomicSupported = true
	stub.setBalance(usdcAddress, big.NewInt(20_000000))
	stub.setBalance(wethAddress, new(big.Int).Mul(big.NewInt(10), big.NewInt(1e18)))

	client := &rendezvousChainClient{
		stubChainClient:  stub,
		balanceBarrier:   make(chan struct{}),
		allowanceBarrier: make(chan struct{}),
	}
	preparer := newStubPreparer()
	mo := NewMintOrchestrator(preparer, func(ctx context.Context, chainId string) (ChainClient, error) {
		return client, nil
	}, time.Millisecond, time.Second, false)

	state, _ := mo.CreateAttempt(testMintParams())
	mo.Execute(state.Id)
	state = waitForSettled(t, mo, state.Id)

	if stalled := atomic.LoadInt32(&client.stalledReads); stalled != 0 {
		t.Fatalf("%v chain reads stalled waiting for their counterpart", stalled)
	}
	if state.Status != types.MintStatusSuccess {
		t.Fatalf("expected success, got %v (%v)", state.Status, state.Error)
	}
	if calls := client.submittedCalls(); len(calls) != 3 {
		t.Errorf("expected 2 approvals and the mint call, got %v calls", len(calls))
	}
}

func TestMintTwoApprovalsAtomicBatch(t *testing.T) {
	client := newStubChainClient()
	client.atomicSupported = true
	client.setBalance(usdcAddress, big.NewInt(20_000000))
	client.setBalance(wethAddress, new(big.Int).Mul(big.NewInt(10), big.NewInt(1e18)))
	preparer := newStubPreparer()
	mo := testOrchestrator(client, preparer)

	state, _ := mo.CreateAttempt(testMintParams())
	mo.Execute(state.Id)
	state = waitForSettled(t, mo, state.Id)

	if state.Status != types.MintStatusSuccess {
		t.Fatalf("expected success, got %v (%v)", state.Status, state.Error)
	}

	if len(client.sentBatches) != 1 {
		t.Fatalf("expected 1 atomic batch, got %v", len(client.sentBatches))
	}
	calls := client.sentBatches[0]
	if len(calls) != 3 {
		t.Fatalf("expected 3 calls (2 approvals + mint), got %v", len(calls))
	}
	if calls[0].To != usdcAddress || calls[1].To != wethAddress {
		t.Errorf("expected approvals in token order, got %v then %v", calls[0].To, calls[1].To)
	}
	if calls[2].To != testMintTo {
		t.Errorf("expected mint call last, got %v", calls[2].To)
	}
	if state.BatchId == "" {
		t.Errorf("expected batch id to be recorded")
	}
}

func TestMintSequentialFallback(t *testing.T) {
	client := newStubChainClient()
	client.atomicSupported = false
	client.setBalance(usdcAddress, big.NewInt(20_000000))
	client.setBalance(wethAddress, new(big.Int).Mul(big.NewInt(10), big.NewInt(1e18)))
	preparer := newStubPreparer()
	mo := testOrchestrator(client, preparer)

	state, _ := mo.CreateAttempt(testMintParams())
	mo.Execute(state.Id)
	state = waitForSettled(t, mo, state.Id)

	if state.Status != types.MintStatusSuccess {
		t.Fatalf("expected success, got %v (%v)", state.Status, state.Error)
	}

	client.mu.Lock()
	sentTxs := client.sentTxs
	client.mu.Unlock()
	if len(sentTxs) != 3 {
		t.Fatalf("expected 3 sequential transactions, got %v", len(sentTxs))
	}
	if sentTxs[2].To != testMintTo {
		t.Errorf("expected mint transaction last, got %v", sentTxs[2].To)
	}
	if len(state.TxHashes) != 3 {
		t.Errorf("expected 3 recorded tx hashes, got %v", len(state.TxHashes))
	}
}

func TestMintAllowanceReadFailureForcesApproval(t *testing.T) {
	client := newStubChainClient()
	client.atomicSupported = true
	client.setBalance(usdcAddress, big.NewInt(20_000000))
	client.setBalance(wethAddress, new(big.Int).Mul(big.NewInt(10), big.NewInt(1e18)))
	client.setAllowance(usdcAddress, big.NewInt(100_000000))
	client.setAllowance(wethAddress, new(big.Int).Mul(big.NewInt(100), big.NewInt(1e18)))
	client.allowanceErr = fmt.Errorf("rpc unavailable")
	preparer := newStubPreparer()
	mo := testOrchestrator(client, preparer)

	state, _ := mo.CreateAttempt(testMintParams())
	mo.Execute(state.Id)
	state = waitForSettled(t, mo, state.Id)

	if state.Status != types.MintStatusSuccess {
		t.Fatalf("expected success, got %v (%v)", state.Status, state.Error)
	}

	// despite sufficient allowances, the failed reads must include approvals
	calls := client.submittedCalls()
	if len(calls) != 3 {
		t.Fatalf("expected 3 calls with forced approvals, got %v", len(calls))
	}
}

func TestMintPreparationFailure(t *testing.T) {
	client := newStubChainClient()
	client.setBalance(usdcAddress, big.NewInt(20_000000))
	client.setBalance(wethAddress, new(big.Int).Mul(big.NewInt(10), big.NewInt(1e18)))
	preparer := newStubPreparer()
	preparer.err = fmt.Errorf("no route for pool")
	mo := testOrchestrator(client, preparer)

	state, _ := mo.CreateAttempt(testMintParams())
	mo.Execute(state.Id)
	state = waitForSettled(t, mo, state.Id)

	if state.Status != types.MintStatusError {
		t.Fatalf("expected error status, got %v", state.Status)
	}
	if state.Error == "" {
		t.Errorf("expected human-readable error message")
	}
}

func TestMintNativeTokenSkipsApproval(t *testing.T) {
	client := newStubChainClient()
	client.atomicSupported = true
	client.nativeBalance = new(big.Int).Mul(big.NewInt(10), big.NewInt(1e18))
	client.setBalance(usdcAddress, big.NewInt(20_000000))
	preparer := newStubPreparer()
	mo := testOrchestrator(client, preparer)

	params := testMintParams()
	params.TokenB = &types.Token{Address: "0xeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeee", Symbol: "ETH", Decimals: 18, ChainId: "1", IsNative: true}
	state, err := mo.CreateAttempt(params)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	mo.Execute(state.Id)
	state = waitForSettled(t, mo, state.Id)

	if state.Status != types.MintStatusSuccess {
		t.Fatalf("expected success, got %v (%v)", state.Status, state.Error)
	}

	// native side never gets an approval call: only the USDC approval + mint
	calls := client.submittedCalls()
	if len(calls) != 2 {
		t.Fatalf("expected 2 calls, got %v", len(calls))
	}
	if calls[0].To != usdcAddress {
		t.Errorf("expected USDC approval first, got %v", calls[0].To)
	}
}

func TestMintExecuteOnlyFromIdle(t *testing.T) {
	client := newStubChainClient()
	client.setBalance(usdcAddress, big.NewInt(20_000000))
	client.setBalance(wethAddress, new(big.Int).Mul(big.NewInt(10), big.NewInt(1e18)))
	preparer := newStubPreparer()
	preparer.err = fmt.Errorf("boom")
	mo := testOrchestrator(client, preparer)

	state, _ := mo.CreateAttempt(testMintParams())
	mo.Execute(state.Id)
	state = waitForSettled(t, mo, state.Id)

	if state.Status != types.MintStatusError {
		t.Fatalf("expected error status, got %v", state.Status)
	}

	_, err := mo.Execute(state.Id)
	if err == nil {
		t.Errorf("expected error when executing a non-idle attempt")
	}
}

func TestMintReset(t *testing.T) {
	client := newStubChainClient()
	preparer := newStubPreparer()
	preparer.err = fmt.Errorf("boom")
	client.setBalance(usdcAddress, big.NewInt(20_000000))
	client.setBalance(wethAddress, new(big.Int).Mul(big.NewInt(10), big.NewInt(1e18)))
	mo := testOrchestrator(client, preparer)

	state, _ := mo.CreateAttempt(testMintParams())
	mo.Execute(state.Id)
	waitForSettled(t, mo, state.Id)

	state, err := mo.Reset(state.Id)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if state.Status != types.MintStatusIdle {
		t.Errorf("expected idle after reset, got %v", state.Status)
	}
	if state.Error != "" || state.BalanceError != "" || len(state.TxHashes) != 0 {
		t.Errorf("expected reset to clear attempt results: %+v", state)
	}
	if !mo.IsReady(state.Id) {
		t.Errorf("expected reset attempt to be ready")
	}
}

func TestMintCreateAttemptValidation(t *testing.T) {
	mo := testOrchestrator(newStubChainClient(), newStubPreparer())

	tests := []struct {
		name   string
		mutate func(params *types.MintParams)
	}{
		{"missing token", func(p *types.MintParams) { p.TokenB = nil }},
		{"missing amount", func(p *types.MintParams) { p.AmountA = "" }},
		{"missing owner", func(p *types.MintParams) { p.Owner = "" }},
		{"invalid owner", func(p *types.MintParams) { p.Owner = "not-an-address" }},
		{"missing chain", func(p *types.MintParams) { p.ChainId = "" }},
		{"missing tick range", func(p *types.MintParams) { p.FullRange = false }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			params := testMintParams()
			tt.mutate(params)
			_, err := mo.CreateAttempt(params)
			if err == nil {
				t.Errorf("expected validation error")
			}
		})
	}
}

func TestMintRecipientDefaultsToOwner(t *testing.T) {
	mo := testOrchestrator(newStubChainClient(), newStubPreparer())

	params := testMintParams()
	params.Recipient = ""
	_, err := mo.CreateAttempt(params)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if params.Recipient != testOwner {
		t.Errorf("expected recipient to default to owner, got %q", params.Recipient)
	}
}

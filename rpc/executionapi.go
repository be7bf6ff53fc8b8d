package rpc

import (
	"context"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/sirupsen/logrus"

	"github.com/Jds-23/curly-octo-memory/types"
)

var logger = logrus.StandardLogger().WithField("module", "rpc")

// ExecutionClient wraps an EVM json-rpc endpoint for one chain.
type ExecutionClient struct {
	name     string
	chainId  string
	endpoint string
	headers  map[string]string

	initMutex sync.Mutex
	rpcClient *rpc.Client
	ethClient *ethclient.Client
}

// NewExecutionClient is used to create a new execution client
func NewExecutionClient(name, chainId, endpoint string, headers map[string]string) *ExecutionClient {
	return &ExecutionClient{
		name:     name,
		chainId:  chainId,
		endpoint: endpoint,
		headers:  headers,
	}
}

// Initialize dials the endpoint on first use. Safe for concurrent callers,
// the first one wins and the others wait for it.
func (ec *ExecutionClient) Initialize(ctx context.Context) error {
	ec.initMutex.Lock()
	defer ec.initMutex.Unlock()

	if ec.ethClient != nil {
		return nil
	}

	rpcClient, err := rpc.DialContext(ctx, ec.endpoint)
	if err != nil {
		return err
	}

	for hKey, hVal := range ec.headers {
		rpcClient.SetHeader(hKey, hVal)
	}

	ec.rpcClient = rpcClient
	ec.ethClient = ethclient.NewClient(rpcClient)

	return nil
}

func (ec *ExecutionClient) GetName() string {
	return ec.name
}

func (ec *ExecutionClient) GetConfiguredChainId() string {
	return ec.chainId
}

func (ec *ExecutionClient) GetEthClient() *ethclient.Client {
	return ec.ethClient
}

func (ec *ExecutionClient) GetClientVersion(ctx context.Context) (string, error) {
	var result string
	err := ec.rpcClient.CallContext(ctx, &result, "web3_clientVersion")

	return result, err
}

func (ec *ExecutionClient) GetChainId(ctx context.Context) (*big.Int, error) {
	chainId, err := ec.ethClient.ChainID(ctx)
	if err != nil {
		return nil, err
	}

	return chainId, nil
}

func (ec *ExecutionClient) GetLatestBlockHeader(ctx context.Context) (*ethtypes.Header, error) {
	block, err := ec.ethClient.HeaderByNumber(ctx, nil)
	if err != nil {
		return nil, err
	}

	return block, nil
}

// GetBalanceAt reads the native balance of a wallet at the given block
// (nil for latest).
func (ec *ExecutionClient) GetBalanceAt(ctx context.Context, wallet common.Address, blockNumber *big.Int) (*big.Int, error) {
	return ec.ethClient.BalanceAt(ctx, wallet, blockNumber)
}

func (ec *ExecutionClient) GetNonceAt(ctx context.Context, wallet common.Address, blockNumber *big.Int) (uint64, error) {
	return ec.ethClient.NonceAt(ctx, wallet, blockNumber)
}

func (ec *ExecutionClient) GetTransactionReceipt(ctx context.Context, txHash common.Hash) (*ethtypes.Receipt, error) {
	return ec.ethClient.TransactionReceipt(ctx, txHash)
}

// SendTransaction submits one unsigned call via eth_sendTransaction; the
// node/wallet behind the endpoint owns the key and signs it. Returns the
// transaction hash.
func (ec *ExecutionClient) SendTransaction(ctx context.Context, from string, call *types.TransactionCall) (common.Hash, error) {
	txArgs := map[string]interface{}{
		"from": from,
		"to":   call.To,
	}
	if call.Data != "" {
		txArgs["data"] = call.Data
	}
	if call.Value != "" && call.Value != "0" {
		value, ok := new(big.Int).SetString(call.Value, 0)
		if ok && value.Sign() > 0 {
			txArgs["value"] = "0x" + value.Text(16)
		}
	}

	var txHash common.Hash
	err := ec.rpcClient.CallContext(ctx, &txHash, "eth_sendTransaction", txArgs)

	return txHash, err
}

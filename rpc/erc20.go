package rpc

import (
	"context"
	"fmt"
	"math/big"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

const erc20AbiJson = `[
	{"constant":true,"inputs":[{"name":"account","type":"address"}],"name":"balanceOf","outputs":[{"name":"","type":"uint256"}],"stateMutability":"view","type":"function"},
	{"constant":true,"inputs":[{"name":"owner","type":"address"},{"name":"spender","type":"address"}],"name":"allowance","outputs":[{"name":"","type":"uint256"}],"stateMutability":"view","type":"function"},
	{"constant":false,"inputs":[{"name":"spender","type":"address"},{"name":"amount","type":"uint256"}],"name":"approve","outputs":[{"name":"","type":"bool"}],"stateMutability":"nonpayable","type":"function"},
	{"constant":true,"inputs":[],"name":"symbol","outputs":[{"name":"","type":"string"}],"stateMutability":"view","type":"function"},
	{"constant":true,"inputs":[],"name":"name","outputs":[{"name":"","type":"string"}],"stateMutability":"view","type":"function"},
	{"constant":true,"inputs":[],"name":"decimals","outputs":[{"name":"","type":"uint8"}],"stateMutability":"view","type":"function"}
]`

var (
	erc20AbiOnce sync.Once
	erc20Abi     abi.ABI
	erc20AbiErr  error
)

func getErc20Abi() (abi.ABI, error) {
	erc20AbiOnce.Do(func() {
		erc20Abi, erc20AbiErr = abi.JSON(strings.NewReader(erc20AbiJson))
	})

	return erc20Abi, erc20AbiErr
}

func (ec *ExecutionClient) callErc20(ctx context.Context, token common.Address, method string, args ...interface{}) ([]interface{}, error) {
	contractAbi, err := getErc20Abi()
	if err != nil {
		return nil, err
	}

	callData, err := contractAbi.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("error packing %v call: %w", method, err)
	}

	result, err := ec.ethClient.CallContract(ctx, ethereum.CallMsg{
		To:   &token,
		Data: callData,
	}, nil)
	if err != nil {
		return nil, fmt.Errorf("error calling %v on %v: %w", method, token.Hex(), err)
	}

	values, err := contractAbi.Unpack(method, result)
	if err != nil {
		return nil, fmt.Errorf("error unpacking %v result: %w", method, err)
	}

	return values, nil
}

// GetTokenBalance reads the ERC-20 balance of an owner.
func (ec *ExecutionClient) GetTokenBalance(ctx context.Context, token, owner common.Address) (*big.Int, error) {
	values, err := ec.callErc20(ctx, token, "balanceOf", owner)
	if err != nil {
		return nil, err
	}

	balance, ok := values[0].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("unexpected balanceOf result type %T", values[0])
	}

	return balance, nil
}

// GetTokenAllowance reads the ERC-20 allowance an owner has granted a spender.
func (ec *ExecutionClient) GetTokenAllowance(ctx context.Context, token, owner, spender common.Address) (*big.Int, error) {
	values, err := ec.callErc20(ctx, token, "allowance", owner, spender)
	if err != nil {
		return nil, err
	}

	allowance, ok := values[0].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("unexpected allowance result type %T", values[0])
	}

	return allowance, nil
}

// GetTokenSymbol reads the ERC-20 symbol.
func (ec *ExecutionClient) GetTokenSymbol(ctx context.Context, token common.Address) (string, error) {
	values, err := ec.callErc20(ctx, token, "symbol")
	if err != nil {
		return "", err
	}

	symbol, ok := values[0].(string)
	if !ok {
		return "", fmt.Errorf("unexpected symbol result type %T", values[0])
	}

	return symbol, nil
}

// GetTokenDecimals reads the ERC-20 decimals.
func (ec *ExecutionClient) GetTokenDecimals(ctx context.Context, token common.Address) (uint8, error) {
	values, err := ec.callErc20(ctx, token, "decimals")
	if err != nil {
		return 0, err
	}

	decimals, ok := values[0].(uint8)
	if !ok {
		return 0, fmt.Errorf("unexpected decimals result type %T", values[0])
	}

	return decimals, nil
}

// EncodeApproveCall builds the calldata for an ERC-20 approve(spender, amount).
func EncodeApproveCall(spender common.Address, amount *big.Int) (string, error) {
	contractAbi, err := getErc20Abi()
	if err != nil {
		return "", err
	}

	callData, err := contractAbi.Pack("approve", spender, amount)
	if err != nil {
		return "", fmt.Errorf("error packing approve call: %w", err)
	}

	return hexutil.Encode(callData), nil
}

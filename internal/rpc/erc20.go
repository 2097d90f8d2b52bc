package rpc

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"dai-bridge-monitor/internal/models"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

const erc20ABIJSON = `[
	{"constant":true,"inputs":[{"name":"owner","type":"address"}],"name":"balanceOf","outputs":[{"name":"","type":"uint256"}],"stateMutability":"view","type":"function"},
	{"constant":true,"inputs":[],"name":"totalSupply","outputs":[{"name":"","type":"uint256"}],"stateMutability":"view","type":"function"}
]`

var erc20ABI = mustParseABI(erc20ABIJSON)

func mustParseABI(raw string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(raw))
	if err != nil {
		panic(fmt.Sprintf("parse erc20 abi: %v", err))
	}
	return parsed
}

// BalanceOf returns holder's token balance as of block.
func (c *Client) BalanceOf(ctx context.Context, token, holder common.Address, block uint64) (*uint256.Int, error) {
	value, err := c.callUint256(ctx, token, block, "balanceOf", holder)
	if err != nil {
		return nil, &models.RemoteReadError{Op: "balanceOf", Contract: token, Account: &holder, Block: block, Err: err}
	}
	return value, nil
}

// TotalSupply returns the token's total supply as of block.
func (c *Client) TotalSupply(ctx context.Context, token common.Address, block uint64) (*uint256.Int, error) {
	value, err := c.callUint256(ctx, token, block, "totalSupply")
	if err != nil {
		return nil, &models.RemoteReadError{Op: "totalSupply", Contract: token, Block: block, Err: err}
	}
	return value, nil
}

func (c *Client) callUint256(ctx context.Context, token common.Address, block uint64, method string, args ...interface{}) (*uint256.Int, error) {
	data, err := erc20ABI.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("pack %s: %w", method, err)
	}

	msg := ethereum.CallMsg{To: &token, Data: data}
	blockNumber := new(big.Int).SetUint64(block)

	var raw []byte
	err = c.call(ctx, "eth_call", func(ctx context.Context) error {
		var err error
		raw, err = c.eth.CallContract(ctx, msg, blockNumber)
		return err
	})
	if err != nil {
		return nil, err
	}

	return decodeUint256(method, raw)
}

func decodeUint256(method string, raw []byte) (*uint256.Int, error) {
	if len(raw) == 0 {
		return nil, errors.New("empty return data")
	}

	out, err := erc20ABI.Unpack(method, raw)
	if err != nil {
		return nil, fmt.Errorf("unpack %s: %w", method, err)
	}
	if len(out) != 1 {
		return nil, fmt.Errorf("unpack %s: expected 1 value, got %d", method, len(out))
	}

	value, ok := out[0].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("unpack %s: unexpected type %T", method, out[0])
	}

	result, overflow := uint256.FromBig(value)
	if overflow {
		return nil, fmt.Errorf("%s result %s overflows 256 bits", method, value)
	}
	return result, nil
}

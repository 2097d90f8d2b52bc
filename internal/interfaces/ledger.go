package interfaces

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// BalanceReader reads ERC20 balances at a historical block height.
type BalanceReader interface {
	BalanceOf(ctx context.Context, token, holder common.Address, block uint64) (*uint256.Int, error)
}

// SupplyReader reads ERC20 total supply at a historical block height.
type SupplyReader interface {
	TotalSupply(ctx context.Context, token common.Address, block uint64) (*uint256.Int, error)
}

// ChainIDReader resolves the network identity.
type ChainIDReader interface {
	ChainID(ctx context.Context) (uint64, error)
}

// BlockHeadReader returns the current chain head.
type BlockHeadReader interface {
	BlockNumber(ctx context.Context) (uint64, error)
}

// Ledger is everything the invariant checks read from the remote ledger.
type Ledger interface {
	ChainIDReader
	BalanceReader
	SupplyReader
}

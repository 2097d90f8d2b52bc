package models

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
)

// RemoteReadError is returned when a ledger query fails: transport error,
// missing block, reverted call or an undecodable result. Contract is zero for
// node queries such as eth_chainId.
type RemoteReadError struct {
	Op       string
	Contract common.Address
	Account  *common.Address
	Block    uint64
	Err      error
}

func (e *RemoteReadError) Error() string {
	if e.Contract == (common.Address{}) {
		if e.Block == 0 {
			return fmt.Sprintf("remote read %s: %v", e.Op, e.Err)
		}
		return fmt.Sprintf("remote read %s at block %d: %v", e.Op, e.Block, e.Err)
	}
	if e.Account != nil {
		return fmt.Sprintf("remote read %s(%s) on %s at block %d: %v", e.Op, e.Account.Hex(), e.Contract.Hex(), e.Block, e.Err)
	}
	return fmt.Sprintf("remote read %s on %s at block %d: %v", e.Op, e.Contract.Hex(), e.Block, e.Err)
}

func (e *RemoteReadError) Unwrap() error {
	return e.Err
}

// QueryError is returned when the notification store cannot be queried or
// returns a record that cannot be used.
type QueryError struct {
	BotID   string
	AlertID string
	ChainID uint64
	Err     error
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("query notifications bot=%s alert=%s chain=%d: %v", e.BotID, e.AlertID, e.ChainID, e.Err)
}

func (e *QueryError) Unwrap() error {
	return e.Err
}

// UninitializedModeError is returned when a block is evaluated before the
// chain id has been resolved.
type UninitializedModeError struct{}

func (UninitializedModeError) Error() string {
	return "block evaluated before chain id was resolved"
}

package models

import (
	"errors"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
)

func TestRemoteReadError_Error(t *testing.T) {
	cause := errors.New("connection refused")
	token := common.HexToAddress("0x6B175474E89094C44Da98b954EedeAC495271d0F")
	holder := common.HexToAddress("0xA10c7CE4b876998858b1a9E12b10092229539400")

	tests := []struct {
		name     string
		err      *RemoteReadError
		expected string
	}{
		{
			name:     "node query",
			err:      &RemoteReadError{Op: "eth_chainId", Err: cause},
			expected: "remote read eth_chainId: connection refused",
		},
		{
			name:     "supply",
			err:      &RemoteReadError{Op: "totalSupply", Contract: token, Block: 7, Err: cause},
			expected: "remote read totalSupply on " + token.Hex() + " at block 7: connection refused",
		},
		{
			name:     "balance",
			err:      &RemoteReadError{Op: "balanceOf", Contract: token, Account: &holder, Block: 7, Err: cause},
			expected: "remote read balanceOf(" + holder.Hex() + ") on " + token.Hex() + " at block 7: connection refused",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.err.Error())
			assert.ErrorIs(t, tt.err, cause)
		})
	}
}

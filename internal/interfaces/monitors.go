package interfaces

import (
	"context"

	"dai-bridge-monitor/internal/models"
)

// BlockchainMonitor defines the interface for blockchain monitoring
type BlockchainMonitor interface {
	Start(ctx context.Context) error

	// GetChainName returns the name of the network, valid once started
	GetChainName() models.BlockchainName

	GetChainID() uint64
	GetMode() string
	GetBlockHead(ctx context.Context) (uint64, error)
	LastEvaluatedBlock() uint64
	Stop(ctx context.Context) error
}

package models

import (
	"time"

	"github.com/holiman/uint256"
)

const (
	// AlertIDBalanceChangeL1 is published by the mainnet instance whenever an escrow balance moves.
	AlertIDBalanceChangeL1 = "balance-change-layer1"
	// AlertIDSupplyImbalanceL2 is published by a layer 2 instance when its supply exceeds the escrow.
	AlertIDSupplyImbalanceL2 = "supply-imbalance-layer2"

	MetadataEscrowArbitrum = "escrowBalanceArbitrum"
	MetadataEscrowOptimism = "escrowBalanceOptimism"
	MetadataL1Balance      = "L1Bal"
	MetadataL2Balance      = "L2Bal"
)

// Snapshot is the last escrow balances seen on layer 1.
type Snapshot struct {
	BlockNumber uint64
	Arbitrum    *uint256.Int
	Optimism    *uint256.Int
}

// CrossChainNotification is a previously published layer 1 alert as returned by a notification store.
type CrossChainNotification struct {
	AlertID       string            `json:"alertId"`
	BotID         string            `json:"botId"`
	ChainIDOrigin uint64            `json:"chainIdOrigin"`
	BlockNumber   uint64            `json:"blockNumber"`
	Metadata      map[string]string `json:"metadata"`
	CreatedAt     time.Time         `json:"createdAt"`
}

// Alert is a Finding together with the context it was observed in. It is the
// record handed to the alerting transport.
type Alert struct {
	Finding     Finding   `json:"finding"`
	BotID       string    `json:"botId"`
	ChainID     uint64    `json:"chainId"`
	BlockNumber uint64    `json:"blockNumber"`
	Timestamp   time.Time `json:"timestamp"`
}

// Notification converts a published alert into the form layer 2 instances query for.
func (a Alert) Notification() CrossChainNotification {
	metadata := make(map[string]string, len(a.Finding.Metadata))
	for k, v := range a.Finding.Metadata {
		metadata[k] = v
	}
	return CrossChainNotification{
		AlertID:       a.Finding.AlertID,
		BotID:         a.BotID,
		ChainIDOrigin: a.ChainID,
		BlockNumber:   a.BlockNumber,
		Metadata:      metadata,
		CreatedAt:     a.Timestamp,
	}
}

package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAlert_Notification(t *testing.T) {
	alert := Alert{
		Finding: Finding{
			AlertID:  AlertIDBalanceChangeL1,
			Metadata: map[string]string{MetadataEscrowArbitrum: "123456789012345678901234567", MetadataEscrowOptimism: "25"},
		},
		BotID:       "0x1234",
		ChainID:     EthereumChainID,
		BlockNumber: 30,
		Timestamp:   time.Unix(1700000000, 0).UTC(),
	}

	n := alert.Notification()
	assert.Equal(t, CrossChainNotification{
		AlertID:       AlertIDBalanceChangeL1,
		BotID:         "0x1234",
		ChainIDOrigin: EthereumChainID,
		BlockNumber:   30,
		Metadata:      map[string]string{MetadataEscrowArbitrum: "123456789012345678901234567", MetadataEscrowOptimism: "25"},
		CreatedAt:     time.Unix(1700000000, 0).UTC(),
	}, n)

	n.Metadata[MetadataEscrowOptimism] = "0"
	assert.Equal(t, "25", alert.Finding.Metadata[MetadataEscrowOptimism])
}

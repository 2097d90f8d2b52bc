package bridge

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"dai-bridge-monitor/internal/interfaces"
	"dai-bridge-monitor/internal/models"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// Checker compares the local layer 2 DAI supply with the escrow balance
// last published from layer 1.
type Checker struct {
	reader  interfaces.SupplyReader
	store   interfaces.NotificationStore
	token   common.Address
	botID   string
	network models.Network
}

func NewChecker(reader interfaces.SupplyReader, store interfaces.NotificationStore, token common.Address, botID string, network models.Network) *Checker {
	return &Checker{
		reader:  reader,
		store:   store,
		token:   token,
		botID:   botID,
		network: network,
	}
}

// Check returns a supply imbalance finding when the local total supply at
// block is strictly greater than the layer 1 escrow balance. No layer 1
// notification yet means nothing to compare against and is not an error.
func (c *Checker) Check(ctx context.Context, block uint64) ([]models.Finding, error) {
	notifications, err := c.store.QueryRecent(ctx, c.botID, models.AlertIDBalanceChangeL1, models.EthereumChainID)
	if err != nil {
		return nil, c.queryError(err)
	}
	if len(notifications) == 0 {
		return nil, nil
	}

	l1Balance, err := c.escrowBalance(notifications[0])
	if err != nil {
		return nil, c.queryError(err)
	}

	l2Supply, err := c.reader.TotalSupply(ctx, c.token, block)
	if err != nil {
		return nil, err
	}

	if !l2Supply.Gt(l1Balance) {
		return nil, nil
	}

	return []models.Finding{supplyImbalanceFinding(c.network.Name, l1Balance, l2Supply)}, nil
}

func (c *Checker) metadataKey() string {
	if c.network.ChainID == models.ArbitrumChainID {
		return models.MetadataEscrowArbitrum
	}
	return models.MetadataEscrowOptimism
}

func (c *Checker) escrowBalance(n models.CrossChainNotification) (*uint256.Int, error) {
	key := c.metadataKey()
	raw, ok := n.Metadata[key]
	if !ok {
		return nil, fmt.Errorf("notification metadata has no %s", key)
	}
	value, err := uint256.FromDecimal(raw)
	if err != nil {
		return nil, fmt.Errorf("notification metadata %s=%q: %w", key, raw, err)
	}
	return value, nil
}

func (c *Checker) queryError(err error) error {
	var qe *models.QueryError
	if errors.As(err, &qe) {
		return err
	}
	return &models.QueryError{
		BotID:   c.botID,
		AlertID: models.AlertIDBalanceChangeL1,
		ChainID: models.EthereumChainID,
		Err:     err,
	}
}

func supplyImbalanceFinding(network models.BlockchainName, l1Balance, l2Supply *uint256.Int) models.Finding {
	return models.Finding{
		Name: fmt.Sprintf("%s layer 2 DAI supply is more than the layer 1 escrow DAI balance", network),
		Description: fmt.Sprintf("l1-escrow-balance: %s, %s-l2-supply-balance: %s",
			l1Balance.Dec(), strings.ToLower(network.String()), l2Supply.Dec()),
		AlertID:  models.AlertIDSupplyImbalanceL2,
		Severity: models.SeverityHigh,
		Type:     models.TypeDegraded,
		Protocol: network.String(),
		Metadata: map[string]string{
			models.MetadataL1Balance: l1Balance.Dec(),
			models.MetadataL2Balance: l2Supply.Dec(),
		},
	}
}

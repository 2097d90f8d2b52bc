package bridge

import (
	"context"
	"fmt"

	"dai-bridge-monitor/internal/interfaces"
	"dai-bridge-monitor/internal/models"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"golang.org/x/sync/errgroup"
)

// Escrows are the layer 1 accounts holding DAI that backs each layer 2 supply.
type Escrows struct {
	Token    common.Address
	Arbitrum common.Address
	Optimism common.Address
}

// Tracker watches the layer 1 escrow balances.
type Tracker struct {
	reader   interfaces.BalanceReader
	escrows  Escrows
	snapshot *SnapshotStore
}

func NewTracker(reader interfaces.BalanceReader, escrows Escrows, snapshot *SnapshotStore) *Tracker {
	return &Tracker{
		reader:   reader,
		escrows:  escrows,
		snapshot: snapshot,
	}
}

// Track reads both escrow balances at block and returns a balance change
// finding if either differs from the snapshot. Read errors leave the snapshot
// untouched.
func (t *Tracker) Track(ctx context.Context, block uint64) ([]models.Finding, error) {
	var arbitrum, optimism *uint256.Int

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		arbitrum, err = t.reader.BalanceOf(gctx, t.escrows.Token, t.escrows.Arbitrum, block)
		return err
	})
	g.Go(func() error {
		var err error
		optimism, err = t.reader.BalanceOf(gctx, t.escrows.Token, t.escrows.Optimism, block)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if !t.snapshot.ReplaceIfChanged(block, arbitrum, optimism) {
		return nil, nil
	}

	return []models.Finding{balanceChangeFinding(arbitrum, optimism)}, nil
}

func balanceChangeFinding(arbitrum, optimism *uint256.Int) models.Finding {
	return models.Finding{
		Name:        "Combined DAI balance of Optimism and Arbitrum MakerDao escrows on layer 1",
		Description: fmt.Sprintf("escrow-balance-arbitrum: %s, escrow-balance-optimism: %s", arbitrum.Dec(), optimism.Dec()),
		AlertID:     models.AlertIDBalanceChangeL1,
		Severity:    models.SeverityInfo,
		Type:        models.TypeInfo,
		Protocol:    models.Ethereum.String(),
		Metadata: map[string]string{
			models.MetadataEscrowArbitrum: arbitrum.Dec(),
			models.MetadataEscrowOptimism: optimism.Dec(),
		},
	}
}

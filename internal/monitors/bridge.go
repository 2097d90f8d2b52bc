package monitors

import (
	"context"
	"fmt"
	"sync"
	"time"

	"dai-bridge-monitor/internal/bridge"
	"dai-bridge-monitor/internal/interfaces"
	"dai-bridge-monitor/internal/models"
)

var _ interfaces.BlockchainMonitor = (*BridgeMonitor)(nil)

// BridgeMonitor feeds every new block height to the dispatcher and emits
// the findings it returns. Blocks are evaluated one at a time.
type BridgeMonitor struct {
	*BaseMonitor
	dispatcher *bridge.Dispatcher
	heads      interfaces.BlockHeadReader
	closer     func()

	latestBlockHeight uint64
	cancel            context.CancelFunc
	wg                sync.WaitGroup
}

func NewBridgeMonitor(base *BaseMonitor, dispatcher *bridge.Dispatcher, heads interfaces.BlockHeadReader, closer func()) *BridgeMonitor {
	return &BridgeMonitor{
		BaseMonitor: base,
		dispatcher:  dispatcher,
		heads:       heads,
		closer:      closer,
	}
}

func (m *BridgeMonitor) GetChainName() models.BlockchainName {
	return m.dispatcher.Network().Name
}

func (m *BridgeMonitor) GetChainID() uint64 {
	return m.dispatcher.Network().ChainID
}

func (m *BridgeMonitor) GetMode() string {
	return m.dispatcher.Mode().String()
}

func (m *BridgeMonitor) GetBlockHead(ctx context.Context) (uint64, error) {
	return m.heads.BlockNumber(ctx)
}

func (m *BridgeMonitor) LastEvaluatedBlock() uint64 {
	m.Mu.RLock()
	defer m.Mu.RUnlock()
	return m.latestBlockHeight
}

// Start resolves the network, positions the monitor at the current head and
// launches the polling loop.
func (m *BridgeMonitor) Start(ctx context.Context) error {
	if err := m.Initialize(ctx); err != nil {
		m.Logger.Error().Err(err).Msg("Failed to initialize bridge monitor")
		return err
	}

	loopCtx, cancel := context.WithCancel(ctx)
	m.cancel = cancel

	m.Logger.Info().
		Str("network", m.GetChainName().String()).
		Str("mode", m.GetMode()).
		Uint64("blockNumber", m.LastEvaluatedBlock()).
		Dur("pollInterval", m.PollInterval).
		Msg("Starting bridge monitoring loop")

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		m.monitorBlocks(loopCtx)
	}()

	return nil
}

// Initialize resolves the chain id and records the current head as the
// starting point. Blocks before the head are never evaluated.
func (m *BridgeMonitor) Initialize(ctx context.Context) error {
	if err := m.dispatcher.Initialize(ctx); err != nil {
		return err
	}

	head, err := m.heads.BlockNumber(ctx)
	if err != nil {
		return fmt.Errorf("failed to get latest block: %w", err)
	}

	m.Mu.Lock()
	m.latestBlockHeight = head
	m.Mu.Unlock()

	// The head itself has not been evaluated yet.
	m.evaluate(ctx, head)
	return nil
}

func (m *BridgeMonitor) monitorBlocks(ctx context.Context) {
	ticker := time.NewTicker(m.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			m.Logger.Info().Msg("Bridge monitor shutting down")
			return
		case <-ticker.C:
			m.poll(ctx)
		}
	}
}

// poll evaluates every block between the last evaluated one and the head.
func (m *BridgeMonitor) poll(ctx context.Context) {
	currentBlock, err := m.heads.BlockNumber(ctx)
	if err != nil {
		m.Logger.Error().Err(err).Msg("Failed to get current block")
		return
	}

	for blockNum := m.LastEvaluatedBlock() + 1; blockNum <= currentBlock; blockNum++ {
		if ctx.Err() != nil {
			return
		}
		m.evaluate(ctx, blockNum)
	}
}

func (m *BridgeMonitor) evaluate(ctx context.Context, blockNum uint64) {
	findings := m.dispatcher.HandleBlock(ctx, blockNum)

	m.Logger.Debug().
		Uint64("blockNumber", blockNum).
		Int("findings", len(findings)).
		Msg("Evaluated block")

	m.EmitFindings(ctx, m.dispatcher.Network(), blockNum, findings)

	m.Mu.Lock()
	m.latestBlockHeight = blockNum
	m.Mu.Unlock()
}

func (m *BridgeMonitor) Stop(_ context.Context) error {
	m.Logger.Info().Msg("Stopping bridge monitor")

	if m.cancel != nil {
		m.cancel()
	}
	m.wg.Wait()

	if m.closer != nil {
		m.closer()
	}
	return nil
}

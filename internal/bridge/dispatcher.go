package bridge

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"dai-bridge-monitor/internal/interfaces"
	"dai-bridge-monitor/internal/metrics"
	"dai-bridge-monitor/internal/models"

	"github.com/ethereum/go-ethereum/common"
	"github.com/rs/zerolog"
)

type Mode int

const (
	ModeUninitialized Mode = iota
	ModeL1
	ModeL2
)

func (m Mode) String() string {
	switch m {
	case ModeL1:
		return "l1"
	case ModeL2:
		return "l2"
	default:
		return "uninitialized"
	}
}

// Config carries the static addresses and identity the dispatcher injects
// into the tracker or checker.
type Config struct {
	BotID   string
	Escrows Escrows
	L2Token common.Address
}

// Dispatcher routes each block height to the tracker (mainnet) or the
// checker (layer 2). It owns all state of one monitoring session.
type Dispatcher struct {
	ledger  interfaces.Ledger
	store   interfaces.NotificationStore
	cfg     Config
	logger  *zerolog.Logger
	metrics *metrics.Metrics // nil if metrics disabled

	mu       sync.Mutex
	mode     Mode
	network  models.Network
	snapshot *SnapshotStore
	tracker  *Tracker
	checker  *Checker
}

// Option configures the Dispatcher.
type Option func(*Dispatcher)

// WithMetrics counts evaluations and suppressed failures.
func WithMetrics(m *metrics.Metrics) Option {
	return func(d *Dispatcher) {
		d.metrics = m
	}
}

// NewDispatcher creates an uninitialized dispatcher. store is only used on
// layer 2 networks and may be nil on mainnet.
func NewDispatcher(ledger interfaces.Ledger, store interfaces.NotificationStore, cfg Config, logger *zerolog.Logger, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		ledger:   ledger,
		store:    store,
		cfg:      cfg,
		logger:   logger,
		snapshot: NewSnapshotStore(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Initialize resolves the chain id and selects the mode. Once a mode is
// selected further calls do nothing.
func (d *Dispatcher) Initialize(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.mode != ModeUninitialized {
		return nil
	}

	chainID, err := d.ledger.ChainID(ctx)
	if err != nil {
		return fmt.Errorf("resolve chain id: %w", err)
	}
	if chainID == 0 {
		return errors.New("resolve chain id: ledger reported chain id 0")
	}

	d.network = models.NetworkForChainID(chainID)
	if d.network.IsLayer1() {
		d.tracker = NewTracker(d.ledger, d.cfg.Escrows, d.snapshot)
		d.mode = ModeL1
	} else {
		if d.store == nil {
			return errors.New("layer 2 network requires a notification store")
		}
		d.checker = NewChecker(d.ledger, d.store, d.cfg.L2Token, d.cfg.BotID, d.network)
		d.mode = ModeL2
	}

	d.logger.Info().
		Uint64("chainId", chainID).
		Str("network", d.network.Name.String()).
		Str("mode", d.mode.String()).
		Msg("Dispatcher initialized")

	return nil
}

// Mode returns the selected mode.
func (d *Dispatcher) Mode() Mode {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.mode
}

// Network returns the resolved network. Zero before Initialize.
func (d *Dispatcher) Network() models.Network {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.network
}

// Snapshot returns a copy of the layer 1 snapshot.
func (d *Dispatcher) Snapshot() models.Snapshot {
	return d.snapshot.Load()
}

// HandleBlock evaluates one block height and returns its findings.
//
// Failures never leave this method: a read, query or initialization error
// yields an empty result for the block, so one flaky RPC does not stop the
// monitoring loop. The alerting layer cannot tell such a block apart from a
// quiet one; the failure is only visible in the logs and in the
// suppressed_failures_total metric.
func (d *Dispatcher) HandleBlock(ctx context.Context, block uint64) []models.Finding {
	start := time.Now()
	mode := d.Mode()

	findings, err := d.evaluate(ctx, mode, block)
	if d.metrics != nil {
		d.metrics.RecordEvaluation(mode.String(), block, err, time.Since(start).Seconds())
	}

	if err != nil {
		kind := failureKind(err)
		d.logger.Warn().
			Err(err).
			Uint64("blockNumber", block).
			Str("mode", mode.String()).
			Str("kind", kind).
			Msg("Block evaluation failed, returning no findings")
		if d.metrics != nil {
			d.metrics.RecordSuppressed(mode.String(), kind)
		}
		return []models.Finding{}
	}

	if d.metrics != nil {
		for _, f := range findings {
			d.metrics.RecordFinding(f.AlertID)
		}
	}
	if findings == nil {
		findings = []models.Finding{}
	}
	return findings
}

func (d *Dispatcher) evaluate(ctx context.Context, mode Mode, block uint64) (findings []models.Finding, err error) {
	defer func() {
		if r := recover(); r != nil {
			findings, err = nil, fmt.Errorf("panic during evaluation: %v", r)
		}
	}()

	switch mode {
	case ModeL1:
		return d.tracker.Track(ctx, block)
	case ModeL2:
		return d.checker.Check(ctx, block)
	default:
		return nil, models.UninitializedModeError{}
	}
}

func failureKind(err error) string {
	var (
		readErr  *models.RemoteReadError
		queryErr *models.QueryError
		uninit   models.UninitializedModeError
	)
	switch {
	case errors.As(err, &readErr):
		return "remote_read"
	case errors.As(err, &queryErr):
		return "query"
	case errors.As(err, &uninit):
		return "uninitialized"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	default:
		return "other"
	}
}

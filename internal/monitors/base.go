package monitors

import (
	"context"
	"sync"
	"time"

	"dai-bridge-monitor/internal/interfaces"
	"dai-bridge-monitor/internal/metrics"
	"dai-bridge-monitor/internal/models"

	"github.com/rs/zerolog"
)

// BaseMonitor contains the fields shared by block-driven monitors
type BaseMonitor struct {
	BotID        string
	Emitter      interfaces.AlertEmitter
	PollInterval time.Duration
	Mu           sync.RWMutex
	Logger       *zerolog.Logger
	Metrics      *metrics.Metrics // nil if metrics disabled
	Now          func() time.Time
}

func NewBaseMonitor(botID string, pollInterval time.Duration, emitter interfaces.AlertEmitter, logger *zerolog.Logger, m *metrics.Metrics) *BaseMonitor {
	return &BaseMonitor{
		BotID:        botID,
		Emitter:      emitter,
		PollInterval: pollInterval,
		Logger:       logger,
		Metrics:      m,
		Now:          time.Now,
	}
}

// EmitFindings wraps each finding in an Alert for the given block and hands
// it to the emitter. Delivery errors are logged, not returned.
func (b *BaseMonitor) EmitFindings(ctx context.Context, network models.Network, block uint64, findings []models.Finding) {
	if len(findings) == 0 {
		return
	}
	if b.Emitter == nil {
		b.Logger.Warn().Int("findings", len(findings)).Msg("Emitter is nil, cannot emit alerts")
		return
	}

	for _, f := range findings {
		alert := models.Alert{
			Finding:     f,
			BotID:       b.BotID,
			ChainID:     network.ChainID,
			BlockNumber: block,
			Timestamp:   b.Now().UTC(),
		}
		err := b.Emitter.EmitAlert(ctx, alert)
		if b.Metrics != nil {
			b.Metrics.RecordAlertEmitted(err)
		}
		if err != nil {
			b.Logger.Error().
				Err(err).
				Str("alertId", f.AlertID).
				Uint64("blockNumber", block).
				Msg("Error emitting alert")
		}
	}
}

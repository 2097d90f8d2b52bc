package events

import (
	"context"
	"errors"

	"dai-bridge-monitor/internal/interfaces"
	"dai-bridge-monitor/internal/models"

	"github.com/rs/zerolog"
)

var _ interfaces.AlertEmitter = (*FanoutEmitter)(nil)

// FanoutEmitter logs every alert and forwards it to each wrapped emitter.
type FanoutEmitter struct {
	Emitters []interfaces.AlertEmitter
	Logger   *zerolog.Logger
}

func NewFanoutEmitter(logger *zerolog.Logger, emitters ...interfaces.AlertEmitter) *FanoutEmitter {
	return &FanoutEmitter{Emitters: emitters, Logger: logger}
}

// EmitAlert delivers to all wrapped emitters; one failing does not stop the others.
func (f *FanoutEmitter) EmitAlert(ctx context.Context, alert models.Alert) error {
	event := f.Logger.Info()
	if alert.Finding.Severity >= models.SeverityHigh {
		event = f.Logger.Warn()
	}
	event.
		Str("alertId", alert.Finding.AlertID).
		Str("severity", alert.Finding.Severity.String()).
		Str("type", alert.Finding.Type.String()).
		Str("protocol", alert.Finding.Protocol).
		Uint64("chainId", alert.ChainID).
		Uint64("blockNumber", alert.BlockNumber).
		Interface("metadata", alert.Finding.Metadata).
		Msg(alert.Finding.Description)

	var errs []error
	for _, e := range f.Emitters {
		if err := e.EmitAlert(ctx, alert); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

package interfaces

import (
	"context"

	"dai-bridge-monitor/internal/models"
)

// AlertEmitter defines the alerting transport.
type AlertEmitter interface {
	EmitAlert(ctx context.Context, alert models.Alert) error
}

// NotificationStore returns previously published alerts, most recent first.
type NotificationStore interface {
	QueryRecent(ctx context.Context, botID, alertID string, originChainID uint64) ([]models.CrossChainNotification, error)
}

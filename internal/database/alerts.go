package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"dai-bridge-monitor/internal/interfaces"
	"dai-bridge-monitor/internal/models"
)

var (
	_ interfaces.AlertEmitter      = (*AlertStore)(nil)
	_ interfaces.NotificationStore = (*AlertStore)(nil)
)

// AlertStore persists published alerts and serves them back as cross-chain
// notifications.
type AlertStore struct {
	db    *sql.DB
	limit int
}

func NewAlertStore(db *sql.DB, limit int) *AlertStore {
	if limit < 1 {
		limit = 1
	}
	return &AlertStore{db: db, limit: limit}
}

// EmitAlert saves an alert. Re-publishing the same alert for the same block is a no-op.
func (s *AlertStore) EmitAlert(ctx context.Context, alert models.Alert) error {
	metadata, err := encodeMetadata(alert.Finding.Metadata)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO alerts (bot_id, alert_id, chain_id, block_number, name, description, severity, finding_type, protocol, metadata, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (bot_id, alert_id, chain_id, block_number) DO NOTHING
	`, alert.BotID, alert.Finding.AlertID, alert.ChainID, alert.BlockNumber,
		alert.Finding.Name, alert.Finding.Description, alert.Finding.Severity.String(),
		alert.Finding.Type.String(), alert.Finding.Protocol, metadata, alert.Timestamp)
	if err != nil {
		return fmt.Errorf("failed to save alert: %w", err)
	}
	return nil
}

// QueryRecent returns the latest matching alerts, highest block first.
func (s *AlertStore) QueryRecent(ctx context.Context, botID, alertID string, originChainID uint64) ([]models.CrossChainNotification, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT alert_id, bot_id, chain_id, block_number, metadata, created_at
		FROM alerts
		WHERE bot_id = $1 AND alert_id = $2 AND chain_id = $3
		ORDER BY block_number DESC, id DESC
		LIMIT $4
	`, botID, alertID, originChainID, s.limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query alerts: %w", err)
	}
	defer rows.Close()

	var notifications []models.CrossChainNotification
	for rows.Next() {
		var (
			n         models.CrossChainNotification
			metadata  []byte
			createdAt time.Time
		)
		if err := rows.Scan(&n.AlertID, &n.BotID, &n.ChainIDOrigin, &n.BlockNumber, &metadata, &createdAt); err != nil {
			return nil, err
		}
		n.Metadata, err = decodeMetadata(metadata)
		if err != nil {
			return nil, err
		}
		n.CreatedAt = createdAt
		notifications = append(notifications, n)
	}
	return notifications, rows.Err()
}

func encodeMetadata(metadata map[string]string) ([]byte, error) {
	if metadata == nil {
		metadata = map[string]string{}
	}
	raw, err := json.Marshal(metadata)
	if err != nil {
		return nil, fmt.Errorf("failed to encode alert metadata: %w", err)
	}
	return raw, nil
}

func decodeMetadata(raw []byte) (map[string]string, error) {
	metadata := map[string]string{}
	if len(raw) == 0 {
		return metadata, nil
	}
	if err := json.Unmarshal(raw, &metadata); err != nil {
		return nil, fmt.Errorf("failed to decode alert metadata: %w", err)
	}
	return metadata, nil
}

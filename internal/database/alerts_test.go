package database

import (
	"context"
	"database/sql/driver"
	"errors"
	"regexp"
	"testing"
	"time"

	"dai-bridge-monitor/internal/config"
	"dai-bridge-monitor/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupMockStore(t *testing.T, limit int) (*AlertStore, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, mock.ExpectationsWereMet())
		db.Close()
	})
	return NewAlertStore(db, limit), mock
}

func balanceChangeAlert(block uint64, arbitrum, optimism string) models.Alert {
	return models.Alert{
		Finding: models.Finding{
			Name:        "Combined DAI balance of Optimism and Arbitrum MakerDao escrows on layer 1",
			Description: "escrow-balance-arbitrum: " + arbitrum + ", escrow-balance-optimism: " + optimism,
			AlertID:     models.AlertIDBalanceChangeL1,
			Severity:    models.SeverityInfo,
			Type:        models.TypeInfo,
			Protocol:    "Ethereum",
			Metadata: map[string]string{
				models.MetadataEscrowArbitrum: arbitrum,
				models.MetadataEscrowOptimism: optimism,
			},
		},
		BotID:       "0x1234",
		ChainID:     models.EthereumChainID,
		BlockNumber: block,
		Timestamp:   time.Unix(1700000000+int64(block), 0).UTC(),
	}
}

var alertColumns = []string{"alert_id", "bot_id", "chain_id", "block_number", "metadata", "created_at"}

func alertRow(rows *sqlmock.Rows, alert models.Alert) *sqlmock.Rows {
	metadata, _ := encodeMetadata(alert.Finding.Metadata)
	return rows.AddRow(alert.Finding.AlertID, alert.BotID, int64(alert.ChainID), int64(alert.BlockNumber), metadata, alert.Timestamp)
}

func TestAlertStore_QueryRecent(t *testing.T) {
	store, mock := setupMockStore(t, 2)

	newest := balanceChangeAlert(30, "123456789012345678901234567", "25")
	older := balanceChangeAlert(20, "30", "25")

	rows := sqlmock.NewRows(alertColumns)
	alertRow(rows, newest)
	alertRow(rows, older)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE bot_id = $1 AND alert_id = $2 AND chain_id = $3 ORDER BY block_number DESC, id DESC LIMIT $4")).
		WithArgs("0x1234", models.AlertIDBalanceChangeL1, models.EthereumChainID, 2).
		WillReturnRows(rows)

	notifications, err := store.QueryRecent(context.Background(), "0x1234", models.AlertIDBalanceChangeL1, models.EthereumChainID)
	require.NoError(t, err)

	// Rows come back in store order; the first one is the most recent.
	assert.Equal(t, []models.CrossChainNotification{newest.Notification(), older.Notification()}, notifications)
}

func TestAlertStore_QueryRecent_Empty(t *testing.T) {
	store, mock := setupMockStore(t, 5)

	mock.ExpectQuery(regexp.QuoteMeta("FROM alerts")).
		WithArgs("0x1234", models.AlertIDBalanceChangeL1, models.EthereumChainID, 5).
		WillReturnRows(sqlmock.NewRows(alertColumns))

	notifications, err := store.QueryRecent(context.Background(), "0x1234", models.AlertIDBalanceChangeL1, models.EthereumChainID)
	require.NoError(t, err)
	assert.Empty(t, notifications)
}

func TestAlertStore_QueryRecent_Errors(t *testing.T) {
	t.Run("query fails", func(t *testing.T) {
		store, mock := setupMockStore(t, 5)
		mock.ExpectQuery(regexp.QuoteMeta("FROM alerts")).WillReturnError(errors.New("connection reset"))

		_, err := store.QueryRecent(context.Background(), "0x1234", models.AlertIDBalanceChangeL1, models.EthereumChainID)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "connection reset")
	})

	t.Run("malformed metadata", func(t *testing.T) {
		store, mock := setupMockStore(t, 5)
		rows := sqlmock.NewRows(alertColumns).
			AddRow(models.AlertIDBalanceChangeL1, "0x1234", int64(1), int64(20), []byte(`{"escrowBalanceOptimism": 25}`), time.Unix(0, 0))
		mock.ExpectQuery(regexp.QuoteMeta("FROM alerts")).WillReturnRows(rows)

		_, err := store.QueryRecent(context.Background(), "0x1234", models.AlertIDBalanceChangeL1, models.EthereumChainID)
		require.Error(t, err)
	})
}

func TestAlertStore_EmitAlert(t *testing.T) {
	store, mock := setupMockStore(t, 5)
	alert := balanceChangeAlert(30, "123456789012345678901234567", "25")
	metadata, err := encodeMetadata(alert.Finding.Metadata)
	require.NoError(t, err)

	insert := regexp.QuoteMeta("ON CONFLICT (bot_id, alert_id, chain_id, block_number) DO NOTHING")
	args := []driver.Value{
		"0x1234", models.AlertIDBalanceChangeL1, models.EthereumChainID, uint64(30),
		alert.Finding.Name, alert.Finding.Description, "Info", "Info", "Ethereum", metadata, alert.Timestamp,
	}

	mock.ExpectExec(insert).WithArgs(args...).WillReturnResult(sqlmock.NewResult(1, 1))
	// Same alert again: the unique key swallows it.
	mock.ExpectExec(insert).WithArgs(args...).WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, store.EmitAlert(context.Background(), alert))
	require.NoError(t, store.EmitAlert(context.Background(), alert))
}

func TestAlertStore_EmitAlert_Error(t *testing.T) {
	store, mock := setupMockStore(t, 5)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO alerts")).WillReturnError(errors.New("disk full"))

	err := store.EmitAlert(context.Background(), balanceChangeAlert(30, "30", "25"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to save alert")
}

func TestMetadataRoundTrip(t *testing.T) {
	raw, err := encodeMetadata(map[string]string{"escrowBalanceArbitrum": "30", "escrowBalanceOptimism": "25"})
	require.NoError(t, err)

	metadata, err := decodeMetadata(raw)
	require.NoError(t, err)
	assert.Equal(t, "30", metadata["escrowBalanceArbitrum"])
	assert.Equal(t, "25", metadata["escrowBalanceOptimism"])
}

func TestEncodeMetadata_Nil(t *testing.T) {
	raw, err := encodeMetadata(nil)
	require.NoError(t, err)
	assert.Equal(t, "{}", string(raw))
}

func TestDecodeMetadata(t *testing.T) {
	metadata, err := decodeMetadata(nil)
	require.NoError(t, err)
	assert.Empty(t, metadata)

	_, err = decodeMetadata([]byte(`{"escrowBalanceOptimism": 25}`))
	require.Error(t, err)
}

func TestNewAlertStore_Limit(t *testing.T) {
	assert.Equal(t, 1, NewAlertStore(nil, 0).limit)
	assert.Equal(t, 5, NewAlertStore(nil, 5).limit)
}

func TestConnString(t *testing.T) {
	cfg := config.DatabaseConfig{Host: "db", Port: 5432, User: "u", Password: "p", DBName: "alerts", SSLMode: "disable"}
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=alerts sslmode=disable", ConnString(cfg))
}

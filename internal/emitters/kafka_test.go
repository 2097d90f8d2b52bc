package emitters

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"dai-bridge-monitor/internal/config"
	"dai-bridge-monitor/internal/models"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWriter struct {
	messages []kafka.Message
	err      error
	closed   bool
}

func (f *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if f.err != nil {
		return f.err
	}
	f.messages = append(f.messages, msgs...)
	return nil
}

func (f *fakeWriter) Close() error {
	f.closed = true
	return nil
}

func testAlert() models.Alert {
	return models.Alert{
		Finding: models.Finding{
			Name:     "Combined DAI balance of Optimism and Arbitrum MakerDao escrows on layer 1",
			AlertID:  models.AlertIDBalanceChangeL1,
			Severity: models.SeverityInfo,
			Type:     models.TypeInfo,
			Protocol: "Ethereum",
			Metadata: map[string]string{"escrowBalanceArbitrum": "30", "escrowBalanceOptimism": "25"},
		},
		BotID:       "0x1234",
		ChainID:     1,
		BlockNumber: 25,
		Timestamp:   time.Unix(1700000000, 0).UTC(),
	}
}

func TestKafkaEmitter_EmitAlert(t *testing.T) {
	logger := zerolog.Nop()
	writer := &fakeWriter{}
	emitter := &KafkaEmitter{writer: writer, logger: &logger}

	require.NoError(t, emitter.EmitAlert(context.Background(), testAlert()))
	require.Len(t, writer.messages, 1)

	msg := writer.messages[0]
	assert.Equal(t, "1", string(msg.Key))

	var decoded models.Alert
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, testAlert(), decoded)

	var raw map[string]interface{}
	require.NoError(t, json.Unmarshal(msg.Value, &raw))
	finding := raw["finding"].(map[string]interface{})
	assert.Equal(t, "Info", finding["severity"])
}

func TestMessageKey_SameChainSamePartition(t *testing.T) {
	balance := testAlert()
	imbalance := testAlert()
	imbalance.Finding.AlertID = models.AlertIDSupplyImbalanceL2

	assert.Equal(t, messageKey(balance), messageKey(imbalance))

	other := testAlert()
	other.ChainID = models.ArbitrumChainID
	assert.Equal(t, "42161", string(messageKey(other)))
}

func TestKafkaEmitter_WriteError(t *testing.T) {
	logger := zerolog.Nop()
	emitter := &KafkaEmitter{writer: &fakeWriter{err: errors.New("broker down")}, logger: &logger}

	err := emitter.EmitAlert(context.Background(), testAlert())
	require.Error(t, err)
}

func TestKafkaEmitter_Close(t *testing.T) {
	logger := zerolog.Nop()
	writer := &fakeWriter{}
	emitter := &KafkaEmitter{writer: writer, logger: &logger}

	require.NoError(t, emitter.Close())
	assert.True(t, writer.closed)
	require.NoError(t, emitter.Close())
	require.Error(t, emitter.EmitAlert(context.Background(), testAlert()))
}

func TestNewKafkaEmitter(t *testing.T) {
	logger := zerolog.Nop()
	emitter := NewKafkaEmitter(config.KafkaConfig{BrokerAddress: "localhost:9092", Topic: "alerts", BatchSize: 1}, &logger)

	w, ok := emitter.writer.(*kafka.Writer)
	require.True(t, ok)
	assert.Equal(t, "alerts", w.Topic)
	require.NoError(t, emitter.Close())
}

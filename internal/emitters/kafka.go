package emitters

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"sync"

	"dai-bridge-monitor/internal/config"
	"dai-bridge-monitor/internal/interfaces"
	"dai-bridge-monitor/internal/models"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
)

var _ interfaces.AlertEmitter = (*KafkaEmitter)(nil)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaEmitter publishes alerts to a Kafka topic
type KafkaEmitter struct {
	writer messageWriter
	logger *zerolog.Logger
	mu     sync.Mutex
}

// NewKafkaEmitter creates a new KafkaEmitter
func NewKafkaEmitter(cfg config.KafkaConfig, logger *zerolog.Logger) *KafkaEmitter {
	return &KafkaEmitter{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(cfg.BrokerAddress),
			Topic:        cfg.Topic,
			Balancer:     &kafka.Hash{},
			BatchSize:    cfg.BatchSize,
			BatchTimeout: cfg.BatchTimeout,
			RequiredAcks: kafka.RequireAll,
		},
		logger: logger,
	}
}

func (k *KafkaEmitter) EmitAlert(ctx context.Context, alert models.Alert) error {
	k.mu.Lock()
	defer k.mu.Unlock()

	if k.writer == nil {
		return fmt.Errorf("kafka emitter is closed")
	}

	value, err := json.Marshal(alert)
	if err != nil {
		return fmt.Errorf("failed to marshal alert: %w", err)
	}

	err = k.writer.WriteMessages(ctx, kafka.Message{
		Key:   messageKey(alert),
		Value: value,
		Headers: []kafka.Header{
			{Key: "alertId", Value: []byte(alert.Finding.AlertID)},
			{Key: "chainId", Value: []byte(strconv.FormatUint(alert.ChainID, 10))},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to write message to Kafka: %w", err)
	}

	k.logger.Info().
		Str("alertId", alert.Finding.AlertID).
		Uint64("chainId", alert.ChainID).
		Uint64("blockNumber", alert.BlockNumber).
		Msg("Successfully emitted alert to Kafka")
	return nil
}

// messageKey keeps every alert kind of one chain on the same partition so
// consumers see them in block order.
func messageKey(alert models.Alert) []byte {
	return []byte(strconv.FormatUint(alert.ChainID, 10))
}

func (k *KafkaEmitter) Close() error {
	k.mu.Lock()
	defer k.mu.Unlock()

	if k.writer != nil {
		err := k.writer.Close()
		k.writer = nil
		return err
	}
	return nil
}

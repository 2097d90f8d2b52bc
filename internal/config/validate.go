package config

import (
	"errors"
	"fmt"

	"dai-bridge-monitor/internal/validation"
)

// Validate checks the loaded configuration for values the monitor cannot run with.
func (c *Config) Validate() error {
	var errs []error

	if err := validation.ValidateBotID(c.BotID); err != nil {
		errs = append(errs, fmt.Errorf("BOT_ID: %w", err))
	}
	if err := validation.ValidateURL(c.RPC.Endpoint); err != nil {
		errs = append(errs, fmt.Errorf("RPC_ENDPOINT: %w", err))
	}
	if c.RPC.RateLimit <= 0 {
		errs = append(errs, errors.New("RPC_RATE_LIMIT: must be positive"))
	}
	if c.PollInterval <= 0 {
		errs = append(errs, errors.New("POLL_INTERVAL: must be positive"))
	}

	addresses := map[string]string{
		"L1_DAI_ADDRESS":     c.Contracts.L1DAI,
		"L1_ESCROW_ARBITRUM": c.Contracts.EscrowArbitrum,
		"L1_ESCROW_OPTIMISM": c.Contracts.EscrowOptimism,
		"L2_DAI_ADDRESS":     c.Contracts.L2DAI,
	}
	for key, addr := range addresses {
		if err := validation.ValidateAddress(addr, "ethereum"); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", key, err))
		}
	}

	switch c.Notification.Store {
	case StorePostgres:
		if !c.Database.Enabled {
			errs = append(errs, errors.New("NOTIFICATION_STORE=postgres requires DB_ENABLED"))
		}
	case StoreAPI:
		if err := validation.ValidateURL(c.Notification.APIURL); err != nil {
			errs = append(errs, fmt.Errorf("ALERTS_API_URL: %w", err))
		}
	default:
		errs = append(errs, fmt.Errorf("NOTIFICATION_STORE: unknown store %q", c.Notification.Store))
	}
	if c.Notification.QueryLimit < 1 {
		errs = append(errs, errors.New("ALERTS_QUERY_LIMIT: must be at least 1"))
	}

	if c.Kafka.Enabled && c.Kafka.BrokerAddress == "" {
		errs = append(errs, errors.New("KAFKA_BROKER_ADDRESS: required when KAFKA_ENABLED"))
	}

	return errors.Join(errs...)
}

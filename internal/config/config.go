package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	StorePostgres = "postgres"
	StoreAPI      = "api"
)

// Config holds all configuration for the application
type Config struct {
	LogLevel     string
	Environment  string
	MaxRetries   int
	RetryDelay   time.Duration
	PollInterval time.Duration
	BotID        string
	HTTPAddr     string
	HTTP         HTTPConfig
	RPC          RPCConfig
	Contracts    ContractsConfig
	Notification NotificationConfig
	Kafka        KafkaConfig
	Database     DatabaseConfig
}

// HTTPConfig holds HTTP client configuration
type HTTPConfig struct {
	Timeout time.Duration
}

// RPCConfig holds the ledger endpoint of the network this instance watches
type RPCConfig struct {
	Endpoint  string
	ApiKey    string
	RateLimit float64
}

// ContractsConfig holds the DAI token and escrow addresses
type ContractsConfig struct {
	L1DAI          string
	EscrowArbitrum string
	EscrowOptimism string
	L2DAI          string
}

// NotificationConfig selects where layer 2 instances read layer 1 alerts from
type NotificationConfig struct {
	Store      string
	APIURL     string
	APIKey     string
	QueryLimit int
}

// KafkaConfig holds Kafka configuration
type KafkaConfig struct {
	Enabled       bool
	BrokerAddress string
	Topic         string
	BatchSize     int
	BatchTimeout  time.Duration
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Enabled  bool
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// A missing .env file is fine, env vars might be set externally.
	_ = godotenv.Load()

	config := &Config{
		LogLevel:     getEnv("LOG_LEVEL", "info"),
		Environment:  getEnv("ENVIRONMENT", "production"),
		MaxRetries:   getEnvAsInt("MAX_RETRIES", 3),
		RetryDelay:   time.Duration(getEnvAsInt("RETRY_DELAY", 2)) * time.Second,
		PollInterval: time.Duration(getEnvAsInt("POLL_INTERVAL", 12)) * time.Second,
		BotID:        getEnv("BOT_ID", ""),
		HTTPAddr:     getEnv("HTTP_ADDR", ":8080"),
		HTTP: HTTPConfig{
			Timeout: time.Duration(getEnvAsInt("HTTP_TIMEOUT", 30)) * time.Second,
		},
		RPC: RPCConfig{
			Endpoint:  getEnv("RPC_ENDPOINT", "https://svc.blockdaemon.com/ethereum/mainnet/native"),
			ApiKey:    getEnv("RPC_API_KEY", ""),
			RateLimit: getEnvAsFloat("RPC_RATE_LIMIT", 4),
		},
		Contracts: ContractsConfig{
			L1DAI:          getEnv("L1_DAI_ADDRESS", "0x6B175474E89094C44Da98b954EedeAC495271d0F"),
			EscrowArbitrum: getEnv("L1_ESCROW_ARBITRUM", "0xA10c7CE4b876998858b1a9E12b10092229539400"),
			EscrowOptimism: getEnv("L1_ESCROW_OPTIMISM", "0x467194771dAe2967Aef3ECbEDD3Bf9a310C76C65"),
			L2DAI:          getEnv("L2_DAI_ADDRESS", "0xDA10009cBd5D07dd0CeCc66161FC93D7c9000da1"),
		},
		Notification: NotificationConfig{
			Store:      strings.ToLower(getEnv("NOTIFICATION_STORE", StorePostgres)),
			APIURL:     getEnv("ALERTS_API_URL", "https://api.forta.network/graphql"),
			APIKey:     getEnv("ALERTS_API_KEY", ""),
			QueryLimit: getEnvAsInt("ALERTS_QUERY_LIMIT", 5),
		},
		Kafka: KafkaConfig{
			Enabled:       getEnvAsBool("KAFKA_ENABLED", true),
			BrokerAddress: getEnv("KAFKA_BROKER_ADDRESS", "localhost:9092"),
			Topic:         getEnv("KAFKA_TOPIC", "bridge-invariant-alerts"),
			BatchSize:     getEnvAsInt("KAFKA_BATCH_SIZE", 10),
			BatchTimeout:  time.Duration(getEnvAsInt("KAFKA_BATCH_TIMEOUT", 1)) * time.Second,
		},
		Database: DatabaseConfig{
			Enabled:  getEnvAsBool("DB_ENABLED", true),
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvAsInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			DBName:   getEnv("DB_NAME", "bridge_monitor"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt gets an environment variable as int or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvAsFloat gets an environment variable as float64 or returns a default value
func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

// getEnvAsBool gets an environment variable as bool or returns a default value
func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

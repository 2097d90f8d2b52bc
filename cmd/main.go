package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"dai-bridge-monitor/internal/alerts"
	"dai-bridge-monitor/internal/bridge"
	"dai-bridge-monitor/internal/config"
	"dai-bridge-monitor/internal/database"
	"dai-bridge-monitor/internal/emitters"
	"dai-bridge-monitor/internal/events"
	"dai-bridge-monitor/internal/health"
	"dai-bridge-monitor/internal/interfaces"
	"dai-bridge-monitor/internal/logger"
	"dai-bridge-monitor/internal/metrics"
	"dai-bridge-monitor/internal/monitors"
	"dai-bridge-monitor/internal/rpc"

	"github.com/ethereum/go-ethereum/common"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			logger.GetLogger().Error().Interface("panic", r).Msg("Application panicked, recovering")
		}
	}()

	cfg, err := config.Load()
	if err != nil {
		logger.GetLogger().Fatal().Err(err).Msg("Failed to load configuration")
	}

	logger.Init(cfg.LogLevel, "botId", cfg.BotID)
	log := logger.GetLogger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m, err := metrics.NewWithLabels(reg, metrics.Labels{Environment: cfg.Environment})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to register metrics")
	}

	client, err := rpc.NewClient(
		cfg.RPC.Endpoint,
		cfg.RPC.ApiKey,
		cfg.RPC.RateLimit,
		cfg.MaxRetries,
		cfg.RetryDelay,
		cfg.HTTP.Timeout,
		logger.Component("rpc"),
		rpc.WithMetrics(m),
	)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create RPC client")
	}

	var sinks []interfaces.AlertEmitter
	var store interfaces.NotificationStore

	if cfg.Database.Enabled {
		if err := database.InitDB(cfg.Database); err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize database")
		}
		defer database.Close()

		if err := database.RunMigrations(cfg.Database); err != nil {
			log.Fatal().Err(err).Msg("Failed to run migrations")
		}

		alertStore := database.NewAlertStore(database.DB, cfg.Notification.QueryLimit)
		sinks = append(sinks, alertStore)
		if cfg.Notification.Store == config.StorePostgres {
			store = alertStore
		}
	}

	if cfg.Notification.Store == config.StoreAPI {
		store = alerts.NewAPIStore(
			cfg.Notification.APIURL,
			cfg.Notification.APIKey,
			cfg.Notification.QueryLimit,
			cfg.MaxRetries,
			cfg.RetryDelay,
			cfg.HTTP.Timeout,
			logger.Component("alerts"),
		)
	}

	if cfg.Kafka.Enabled {
		kafka := emitters.NewKafkaEmitter(cfg.Kafka, logger.Component("kafka"))
		defer func() {
			if err := kafka.Close(); err != nil {
				log.Error().Err(err).Msg("Failed to close Kafka writer")
			}
		}()
		sinks = append(sinks, kafka)
	}

	emitter := events.NewFanoutEmitter(logger.Component("alerts"), sinks...)

	dispatcher := bridge.NewDispatcher(client, store, bridge.Config{
		BotID: cfg.BotID,
		Escrows: bridge.Escrows{
			Token:    common.HexToAddress(cfg.Contracts.L1DAI),
			Arbitrum: common.HexToAddress(cfg.Contracts.EscrowArbitrum),
			Optimism: common.HexToAddress(cfg.Contracts.EscrowOptimism),
		},
		L2Token: common.HexToAddress(cfg.Contracts.L2DAI),
	}, logger.Component("dispatcher"), bridge.WithMetrics(m))

	base := monitors.NewBaseMonitor(cfg.BotID, cfg.PollInterval, emitter, logger.Component("monitor"), m)
	monitor := monitors.NewBridgeMonitor(base, dispatcher, client, client.Close)

	registry := health.NewRegistry(logger.Component("health"))
	server := metrics.NewServer(cfg.HTTPAddr, reg)
	server.HandleFunc("/healthz", registry.LivenessHandler)
	server.HandleFunc("/readyz", registry.ReadinessHandler)
	serverErr := server.Start()

	if err := monitor.Start(ctx); err != nil {
		log.Fatal().Err(err).Msg("Failed to start bridge monitor")
	}
	registry.RegisterMonitor(ctx, monitor, cfg.PollInterval)
	registry.SetReady(true)

	log.Info().
		Uint64("chainId", monitor.GetChainID()).
		Str("mode", monitor.GetMode()).
		Str("httpAddr", cfg.HTTPAddr).
		Msg("Bridge monitor running")

	select {
	case <-ctx.Done():
		log.Info().Msg("Shutdown signal received")
	case err := <-serverErr:
		log.Error().Err(err).Msg("HTTP server failed")
	}

	registry.SetReady(false)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := monitor.Stop(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Failed to stop bridge monitor")
	}
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Failed to shut down HTTP server")
	}
}

package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/shopspring/decimal"

	"tc.com/unit-oracle/pkg/basket"
	"tc.com/unit-oracle/pkg/candle"
	"tc.com/unit-oracle/pkg/config"
	"tc.com/unit-oracle/pkg/feed"
	"tc.com/unit-oracle/pkg/logging"
	"tc.com/unit-oracle/pkg/metrics"
	"tc.com/unit-oracle/pkg/sampler"
	"tc.com/unit-oracle/pkg/server/api"
	"tc.com/unit-oracle/pkg/version"
)

var (
	configFile = flag.String("config", "config/config.yaml", "Path to configuration file")
	showVer    = flag.Bool("version", false, "Show version and exit")
	simulated  = flag.Bool("simulated", false, "Force simulated feeds (no upstream calls)")
)

func main() {
	flag.Parse()

	if *showVer {
		fmt.Printf("unit-oracle version %s\n", version.Version)
		os.Exit(0)
	}

	cfg, err := config.Load(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	if *simulated {
		cfg.Feeds.Mode = config.FeedModeSimulated
	}

	if err := config.Validate(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.Init(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	logger.Info("Starting unit-oracle",
		"version", version.Version,
		"strategy", cfg.Basket.Strategy,
		"feeds", cfg.Feeds.Mode)

	if cfg.Metrics.Enabled {
		metrics.Init()
		go func() {
			logger.Info("Starting metrics server", "addr", cfg.Metrics.Addr)
			if err := metrics.ServeHTTP(cfg.Metrics.Addr); err != nil {
				logger.Error("Metrics server failed", "error", err)
			}
		}()
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	errChan := make(chan error, 1)
	go func() {
		errChan <- run(ctx, cfg, logger)
	}()

	select {
	case sig := <-sigChan:
		logger.Info("Received shutdown signal", "signal", sig.String())
		cancel()
	case err := <-errChan:
		if err != nil {
			logger.Error("Server failed", "error", err)
			cancel()
		}
	}

	logger.Info("Shutdown complete")
}

func run(ctx context.Context, cfg *config.Config, logger *logging.Logger) error {
	goldSource, fxSource, sources, err := buildSources(cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to build feed sources: %w", err)
	}

	for _, source := range sources {
		if err := source.Initialize(ctx); err != nil {
			return fmt.Errorf("failed to initialize source %s: %w", source.Name(), err)
		}
		if err := source.Start(ctx); err != nil {
			return fmt.Errorf("failed to start source %s: %w", source.Name(), err)
		}
		logger.Info("Feed source started", "source", source.Name())
	}

	adapter := feed.NewAdapter(
		goldSource,
		fxSource,
		cfg.Feeds.Timeout.ToDuration(),
		decimal.NewFromFloat(cfg.Feeds.Gold.Fallback),
		decimalMap(cfg.Feeds.FX.Fallbacks),
		logger,
	)

	composer, err := basket.NewComposer(
		cfg.Basket.Strategy,
		decimal.NewFromFloat(cfg.Basket.GoldGramsPerUnit),
		cfg.Basket.Currencies,
		decimalMap(cfg.Basket.GenesisRates),
		logger,
	)
	if err != nil {
		return fmt.Errorf("failed to create composer: %w", err)
	}
	logger.Info("Created composer", "strategy", composer.Name())

	engine := basket.NewEngine(adapter, composer, cfg.Basket.Window.ToDuration(), cfg.Basket.Currencies, logger)
	candles := candle.NewStore(cfg.Candles.Timeframes, cfg.Candles.MaxPerTimeframe)

	var wsServer *api.WebSocketServer
	if cfg.Server.WebSocket.Enabled {
		wsServer = api.NewWebSocketServer(logger)
	}

	server := api.NewServer(
		cfg.Server.HTTP.Addr,
		engine,
		candles,
		cfg.Server.CORSOrigin,
		cfg.Server.StaticDir,
		logger,
	)
	if wsServer != nil {
		server.SetWebSocketServer(wsServer)
	}

	var smp *sampler.Sampler
	if cfg.Sampler.Enabled {
		smp, err = sampler.New(cfg.Sampler.Schedule, func() {
			quote := engine.ComputeQuote(ctx)
			if quote.UnitUSD > 0 {
				candles.Fold(decimal.NewFromFloat(quote.UnitUSD), quote.TimestampUTC)
			}
			if wsServer != nil {
				wsServer.SendUpdate(quote)
			}
		}, logger)
		if err != nil {
			return fmt.Errorf("failed to create sampler: %w", err)
		}
		smp.Start()
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if smp != nil {
			smp.Stop()
		}
		_ = server.Stop(shutdownCtx)
		for _, source := range sources {
			_ = source.Stop()
		}
	}()

	return server.Start()
}

// buildSources wires the configured feed mode: one simulated source backing
// both legs, or the live gold and FX sources.
func buildSources(cfg *config.Config, logger *logging.Logger) (feed.GoldSource, feed.FXSource, []feed.Source, error) {
	timeout := cfg.Feeds.Timeout.ToDuration()
	interval := cfg.Feeds.Interval.ToDuration()

	if cfg.Feeds.Mode == config.FeedModeSimulated {
		sim := feed.NewSimulatedSource(
			decimal.NewFromFloat(cfg.Feeds.Gold.Fallback),
			decimalMap(cfg.Feeds.FX.Fallbacks),
			cfg.Feeds.SimSeed,
			interval,
			logger,
		)
		return sim, sim, []feed.Source{sim}, nil
	}

	gold := feed.NewGoldAPISource(cfg.Feeds.Gold.URL, cfg.Feeds.Gold.APIKey, timeout, interval, logger)
	fx, err := feed.NewFrankfurterSource(cfg.Feeds.FX.URL, cfg.Basket.Currencies, timeout, interval, logger)
	if err != nil {
		return nil, nil, nil, err
	}
	return gold, fx, []feed.Source{gold, fx}, nil
}

func decimalMap(in map[string]float64) map[string]decimal.Decimal {
	out := make(map[string]decimal.Decimal, len(in))
	for k, v := range in {
		out[k] = decimal.NewFromFloat(v)
	}
	return out
}

package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"DebtVsDCA/internal/collector"
	"DebtVsDCA/internal/config"
	"DebtVsDCA/internal/logger"
	"DebtVsDCA/internal/metrics"
	"DebtVsDCA/internal/model"
	"DebtVsDCA/internal/pricecache"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// app is everything the subcommands share, built once from config.
type app struct {
	cfg       *config.Config
	log       *zap.SugaredLogger
	metrics   *metrics.Metrics
	cache     pricecache.Store // nil when caching is off
	collector *collector.Collector
}

func (a *app) Close() {
	if a.cache != nil {
		if err := a.cache.Close(); err != nil {
			a.log.Warnw("close price cache", "error", err)
		}
	}
	_ = a.log.Sync()
}

func newApp(ctx context.Context, cfgPath string) (*app, error) {
	// Load config
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	log, err := logger.New(logger.Options{Level: cfg.Log.Level, Dev: cfg.Log.Dev, File: cfg.Log.File})
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	a := &app{cfg: cfg, log: log, metrics: metrics.New()}

	// Init fetcher
	fetcher, err := collector.NewFetcher(cfg.SourceOptions())
	if err != nil {
		return nil, fmt.Errorf("init price source: %w", err)
	}
	log.Infow("data source", "provider", fetcher.Name())

	// Init cache
	if cfg.Cache.Backend != "none" {
		store, err := pricecache.Open(ctx, pricecache.Options{
			Backend:       cfg.Cache.Backend,
			SQLitePath:    cfg.Cache.SQLitePath,
			RedisAddr:     cfg.Cache.RedisAddr,
			RedisPassword: cfg.Cache.RedisPassword,
			RedisDB:       cfg.Cache.RedisDB,
		})
		if err != nil {
			log.Warnw("price cache unavailable, fetching directly", "backend", cfg.Cache.Backend, "error", err)
		} else {
			a.cache = store
			fetcher = collector.NewCachedFetcher(fetcher, store, cfg.Cache.TTL, a.metrics)
		}
	}

	// Init collector
	col := collector.NewCollector(fetcher)
	col.FallbackMean = cfg.Simulation.FallbackMeanDailyReturn
	col.FallbackVolatility = cfg.Simulation.FallbackDailyVolatility
	col.Metrics = a.metrics
	a.collector = col

	return a, nil
}

// period resolves a --period flag, falling back to the configured default.
func (a *app) period(flag string) (model.Period, error) {
	if flag == "" {
		flag = a.cfg.Simulation.Period
	}
	return model.ParsePeriod(flag)
}

func newRootCmd() *cobra.Command {
	var cfgPath string
	var a *app

	root := &cobra.Command{
		Use:           "debtvsdca",
		Short:         "Compare paying down debt against dollar-cost averaging into an asset",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			built, err := newApp(cmd.Context(), cfgPath)
			if err != nil {
				return err
			}
			a = built
			cmd.SetContext(logger.WithContext(cmd.Context(), a.log))
			return nil
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if a != nil {
				a.Close()
			}
		},
	}

	defaultCfg := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		defaultCfg = v
	}
	root.PersistentFlags().StringVar(&cfgPath, "config", defaultCfg, "path to the YAML config file")

	getApp := func() *app { return a }
	root.AddCommand(
		newSimulateCmd(getApp),
		newEstimateCmd(getApp),
		newAssetsCmd(getApp),
		newServeCmd(getApp),
	)
	return root
}

func main() {
	ctx := context.Background()
	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		if errors.Is(err, errUsage) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

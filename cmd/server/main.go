package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/barterfeed/backend/config"
	"github.com/barterfeed/backend/internal/domain"
	"github.com/barterfeed/backend/internal/infrastructure/cache"
	"github.com/barterfeed/backend/internal/infrastructure/store"
	"github.com/barterfeed/backend/internal/logger"
	"github.com/barterfeed/backend/internal/usecase"
)

const app = "barterfeed"

var (
	cfgFile   string
	debugFlag bool
	jsonFlag  bool

	rootCmd = &cobra.Command{
		Use:           app,
		Short:         "barterfeed serves personalized barter offer feeds",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is config.yaml in ., ./config or /etc/barterfeed)")
	rootCmd.PersistentFlags().BoolVarP(&debugFlag, "debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolVarP(&jsonFlag, "json", "j", false, "json format for logging")

	rootCmd.AddCommand(serveCmd, feedCmd, evaluateCmd, migrateCmd)
}

// loadConfig reads configuration and applies logging flags on top of it
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}
	if cmd.Flags().Changed("debug") {
		cfg.Log.Debug = debugFlag
	}
	if cmd.Flags().Changed("json") {
		cfg.Log.JSON = jsonFlag
	}
	return cfg, nil
}

// application bundles the wired dependencies shared by commands
type application struct {
	cfg    *config.Config
	logger *zap.Logger
	store  *store.Store
	cache  domain.CacheRepository
	feeds  *usecase.FeedService

	closers []io.Closer
}

func newApplication(cfg *config.Config) (*application, error) {
	log, err := logger.New(cfg.Log.JSON, cfg.Log.Debug)
	if err != nil {
		return nil, fmt.Errorf("building logger: %w", err)
	}

	s, err := store.Open(cfg.Store.Path)
	if err != nil {
		return nil, fmt.Errorf("opening store: %w", err)
	}

	a := &application{cfg: cfg, logger: log, store: s, closers: []io.Closer{s}}

	a.cache, err = newCache(cfg.Cache, log)
	if err != nil {
		a.Close()
		return nil, err
	}
	if c, ok := a.cache.(io.Closer); ok {
		a.closers = append(a.closers, c)
	}

	a.feeds = usecase.NewFeedService(s, s, s, a.cache, log, usecase.FeedServiceConfig{
		TaxonomyTTL: cfg.Cache.TTL,
		Workers:     cfg.Feed.Workers,
	})

	return a, nil
}

func newCache(cfg config.CacheConfig, log *zap.Logger) (domain.CacheRepository, error) {
	switch cfg.Type {
	case "redis":
		c, err := cache.NewRedisCacheWithURL(cfg.RedisURL)
		if err != nil {
			return nil, err
		}
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := c.Ping(ctx); err != nil {
			_ = c.Close()
			return nil, fmt.Errorf("connecting to redis: %w", err)
		}
		log.Info("using redis cache", zap.Duration("ttl", cfg.TTL))
		return c, nil
	default:
		log.Info("using memory cache", zap.Duration("ttl", cfg.TTL))
		return cache.NewMemoryCache(), nil
	}
}

// Close releases resources in reverse order of acquisition
func (a *application) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			a.logger.Warn("close failed", zap.Error(err))
		}
	}
	_ = a.logger.Sync()
}

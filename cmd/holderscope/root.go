package main

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/liamashdown/holderscope/internal/cache"
	"github.com/liamashdown/holderscope/internal/config"
	"github.com/liamashdown/holderscope/internal/market"
	"github.com/liamashdown/holderscope/internal/pnl"
	"github.com/liamashdown/holderscope/internal/polymarket/dataapi"
	"github.com/liamashdown/holderscope/internal/polymarket/gammaapi"
	"github.com/liamashdown/holderscope/internal/polymarket/lbapi"
	"github.com/liamashdown/holderscope/internal/polymarket/profile"
	"github.com/liamashdown/holderscope/internal/processor"
)

//nolint:gochecknoglobals // Cobra boilerplate
var rootCmd = &cobra.Command{
	Use:   "holderscope",
	Short: "Polymarket top holder analysis",
	Long: `holderscope looks up the largest holders of each side of a Polymarket
binary market, enriches every holder with their position, recent trading
activity and all-time profit, and compares how profitable the YES and NO
holders have been.

Settings are read from the environment and from a .env file in the working
directory when one exists.`,
	SilenceUsage: true,
}

// app holds the wired components shared by every command
type app struct {
	cfg       *config.Config
	log       *logrus.Logger
	resolver  market.EventResolver
	processor *processor.Processor
	cache     *cache.EventCache
}

// newApp loads configuration and wires clients, resolvers and the processor.
// json selects the JSON log formatter on stdout, otherwise text on stderr.
func newApp(json bool) (*app, error) {
	// A missing .env is fine; the environment may already be set
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	log := newLogger(cfg.LogLevel, json)

	dataClient := dataapi.NewClient(cfg)
	gammaClient := gammaapi.NewClient(cfg)

	eventCache, err := cache.NewEventCache(cache.DefaultConfig(), log)
	if err != nil {
		return nil, err
	}
	resolver := cache.NewCachingResolver(market.NewResolver(gammaClient, log), eventCache, cfg.EventCacheTTL)

	pnlResolver := pnl.NewDefaultResolver(cfg, pnl.Sources{
		Profit:      lbapi.NewClient(cfg),
		Leaderboard: dataClient,
		Profile:     profile.NewClient(cfg),
		Positions:   dataClient,
	}, log)

	proc := processor.New(cfg, dataClient, dataClient, dataClient, pnlResolver, log)

	log.WithFields(logrus.Fields{
		"top_holders":    cfg.TopHolders,
		"enrich_workers": cfg.EnrichWorkers,
		"holder_delay":   cfg.HolderDelay.String(),
		"publish_mode":   cfg.PublishMode,
		"pnl_strategies": pnlResolver.Strategies(),
	}).Debug("Configuration loaded")

	return &app{
		cfg:       cfg,
		log:       log,
		resolver:  resolver,
		processor: proc,
		cache:     eventCache,
	}, nil
}

func (a *app) Close() {
	a.cache.Close()
}

func newLogger(level string, json bool) *logrus.Logger {
	log := logrus.New()
	if json {
		log.SetFormatter(&logrus.JSONFormatter{})
		log.SetOutput(os.Stdout)
	} else {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
		log.SetOutput(os.Stderr)
	}

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		log.WithField("log_level", level).Warn("Unknown log level, using info")
		lvl = logrus.InfoLevel
	}
	log.SetLevel(lvl)
	return log
}

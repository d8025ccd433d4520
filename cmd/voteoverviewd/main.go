// Command voteoverviewd runs the representative-vote telemetry aggregator:
// it subscribes to an upstream node's event stream, merges votes into
// per-election state, periodically recomputes a ranked overview, and
// serves it to browser clients over HTTP/WS.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/nanovote/votewatch/internal/broadcast"
	"github.com/nanovote/votewatch/internal/cache"
	"github.com/nanovote/votewatch/internal/config"
	"github.com/nanovote/votewatch/internal/election"
	"github.com/nanovote/votewatch/internal/events"
	"github.com/nanovote/votewatch/internal/httpapi"
	"github.com/nanovote/votewatch/internal/overview"
	"github.com/nanovote/votewatch/internal/reps"
	"github.com/nanovote/votewatch/internal/xlog"
)

// eventQueueSize is the bounded upstream event queue capacity.
const eventQueueSize = 4096

// electionCacheSize is an advisory in-process cache size, generously above
// the expected raw-election retention.
const electionCacheSize = 20000

// overviewCacheSize bounds the in-process overview cache: the capped
// confirmed/unconfirmed groups plus their two key-list entries.
const overviewCacheSize = overview.MaxConfirmedEntries + overview.MaxUnconfirmedEntries + 2

func main() {
	app := &cli.App{
		Name:  "voteoverviewd",
		Usage: "representative vote telemetry aggregator",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Usage: "optional TOML config file overlaying environment variables"},
			&cli.StringFlag{Name: "verbosity", Value: "info", Usage: "log level: trace, debug, info, warn, error, crit"},
		},
		Action: run,
	}
	if err := app.Run(os.Args); err != nil {
		xlog.Crit("fatal startup error", "error", err)
	}
}

func run(c *cli.Context) error {
	xlog.SetDefault(xlog.NewLogger(xlog.NewTerminalHandler(os.Stderr, xlog.ParseLevel(c.String("verbosity")))))

	cfg := config.FromEnv()
	if path := c.String("config"); path != "" {
		if err := config.LoadFile(path, &cfg); err != nil {
			return err
		}
	}
	// A missing WS_URL/RPC_URL is a fatal config error that aborts
	// startup; every other error kind in this system is non-fatal.
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	electionCache, err := buildElectionCache(cfg)
	if err != nil {
		return err
	}
	overviewCache, err := buildOverviewCache(cfg)
	if err != nil {
		return err
	}

	store := election.NewStore(electionCache)
	delta := election.NewWorkingDelta()
	consumer := election.NewConsumer(delta)

	listener := events.NewListener(cfg.WSURL, eventQueueSize)

	rpcClient := reps.NewClient(cfg.RPCURL, cfg.RPCUsername, cfg.RPCPassword)
	registry := reps.NewRegistry(rpcClient, reps.StaticAliases())

	hub := broadcast.NewHub(nil) // source wired below once the aggregator exists
	aggregator := overview.NewAggregator(delta, store, registry, hub, overviewCache, overview.DefaultTopFinalVoters)
	hub.SetSource(aggregator)

	detailSource := broadcast.NewDetailSource(store, registry, cfg.BlockExplorer)
	server := httpapi.NewServer(store, detailSource, hub)

	httpServer := &http.Server{Addr: cfg.HTTPAddr, Handler: server}

	if err := aggregator.Bootstrap(ctx); err != nil {
		xlog.Warn("overview bootstrap from election store failed, starting empty", "error", err)
	}

	go listener.Run(ctx)
	go consumer.Run(ctx, listener.Events())
	go registry.Run(ctx)
	go aggregator.Run(ctx)
	go func() {
		xlog.Info("http server listening", "addr", cfg.HTTPAddr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			xlog.Error("http server exited", "error", err)
		}
	}()

	<-ctx.Done()
	xlog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), broadcast.SendDeadline)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}

// buildElectionCache provisions the raw-election cache (key prefix el_).
func buildElectionCache(cfg config.Config) (cache.Cache, error) {
	if cfg.UsesMemcache() {
		return cache.NewMemcache(cfg.MemcacheAddr(), election.KeyPrefix), nil
	}
	return cache.NewLRU(electionCacheSize)
}

// buildOverviewCache provisions the published-overview cache (key prefix
// ov_), a disjoint namespace from the election store so the two carry
// independent TTLs and eviction.
func buildOverviewCache(cfg config.Config) (cache.Cache, error) {
	if cfg.UsesMemcache() {
		return cache.NewMemcache(cfg.MemcacheAddr(), overview.KeyPrefix), nil
	}
	return cache.NewLRU(overviewCacheSize)
}

// SPDX-License-Identifier: MIT

// Command metaseekd is the server daemon: it loads configuration, wires
// every collaborator package together, and serves HTTP until a signal
// asks it to stop.
//
// Grounded on src/main.go's flag parsing, service construction order,
// and its signal.Notify/srv.Shutdown graceful-shutdown block.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/net/proxy"

	"github.com/apimgr/metaseek/internal/cache"
	"github.com/apimgr/metaseek/internal/config"
	"github.com/apimgr/metaseek/internal/engines"
	"github.com/apimgr/metaseek/internal/executor"
	"github.com/apimgr/metaseek/internal/geoip"
	"github.com/apimgr/metaseek/internal/httpclient"
	"github.com/apimgr/metaseek/internal/logging"
	"github.com/apimgr/metaseek/internal/metrics"
	"github.com/apimgr/metaseek/internal/plugins"
	"github.com/apimgr/metaseek/internal/registry"
	"github.com/apimgr/metaseek/internal/retry"
	"github.com/apimgr/metaseek/internal/scheduler"
	"github.com/apimgr/metaseek/internal/server"
	"github.com/apimgr/metaseek/internal/store"
	"github.com/apimgr/metaseek/internal/torproxy"
)

// Build-time variables, set via -ldflags.
var (
	version   = "dev"
	commitID  = "unknown"
	buildDate = "unknown"
)

func main() {
	var configDir, dataDir, address, port string

	args := os.Args[1:]
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--help", "-h":
			printHelp()
			return
		case "--version", "-v":
			fmt.Printf("metaseekd v%s (%s) built %s\n", version, commitID, buildDate)
			return
		case "--config":
			if i+1 < len(args) {
				i++
				configDir = args[i]
			}
		case "--data":
			if i+1 < len(args) {
				i++
				dataDir = args[i]
			}
		case "--address":
			if i+1 < len(args) {
				i++
				address = args[i]
			}
		case "--port":
			if i+1 < len(args) {
				i++
				port = args[i]
			}
		}
	}

	cfg, configPath, err := config.Load(configDir, dataDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if address != "" {
		cfg.Server.BindAddress = address
	}
	if port != "" {
		cfg.Server.Port = port
	}
	config.Version = version

	logger, err := logging.New(cfg.General.Logs)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger initialization failed: %v\n", err)
		os.Exit(1)
	}
	defer logger.Close()
	logger.Info("starting metaseekd", map[string]any{"config": configPath, "version": version})

	geoipSvc, err := geoip.New(cfg.General.GeoIP)
	if err != nil {
		logger.Warn("geoip initialization failed", map[string]any{"error": err.Error()})
	}

	db, err := store.Open(cfg.General.Database)
	if err != nil {
		logger.Error("database open failed", map[string]any{"error": err.Error()})
		os.Exit(1)
	}
	defer db.Close()

	bans, err := store.NewBanStore(db)
	if err != nil {
		logger.Error("ban store initialization failed", map[string]any{"error": err.Error()})
		os.Exit(1)
	}

	cacheImpl := cache.New(cfg.General.Cache, cfg.Redis)
	metricsMgr := metrics.New(cfg.General.Metrics)

	var dialer proxy.Dialer
	if cfg.Outgoing.Proxies.Tor.Enabled {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		torProxy, err := torproxy.Start(ctx, cfg.General.Database.SQLite.Path+"-tor")
		cancel()
		if err != nil {
			logger.Warn("tor proxy start failed, continuing without it", map[string]any{"error": err.Error()})
		} else {
			defer torProxy.Close()
			dialer = torProxy.Dialer()
		}
	}

	fingerprint := httpclient.FingerprintNone
	if cfg.Outgoing.SpoofTLS {
		fingerprint = httpclient.FingerprintChrome
	}
	breakers := retry.NewRegistry(nil)
	fetcher := httpclient.New(httpclient.Config{
		Timeout:     time.Duration(cfg.Outgoing.RequestTimeout * float64(time.Second)),
		Fingerprint: fingerprint,
		ProxyDialer: dialer,
		Breakers:    breakers,
	})

	var regOpts []registry.Option
	for _, e := range cfg.Engines {
		regOpts = append(regOpts, registry.WithConfig(e.Name, registry.EngineConfig{
			Disabled: e.Disabled,
			Weight:   e.Weight,
			Timeout:  int(e.Timeout),
			Shortcut: e.Shortcut,
		}))
	}
	reg, err := registry.New(engines.All(), regOpts...)
	if err != nil {
		logger.Error("registry initialization failed", map[string]any{"error": err.Error()})
		os.Exit(1)
	}

	ex := executor.New(reg, fetcher)

	pipeline := plugins.NewDefaultPipeline()
	for _, id := range cfg.Plugins.Disabled {
		pipeline.Disable(id)
	}
	for _, id := range cfg.Plugins.Enabled {
		pipeline.Enable(id)
	}

	sched := scheduler.New()
	if cfg.General.Scheduler.Enabled {
		if err := sched.Register("ban-sweep", cfg.General.Scheduler.BanSweep, func(ctx context.Context) error {
			_, err := bans.SweepExpired(ctx)
			return err
		}, 10*time.Second); err != nil {
			logger.Warn("ban-sweep schedule invalid", map[string]any{"error": err.Error()})
		}
		if geoipSvc != nil {
			if err := sched.Register("geoip-refresh", cfg.General.Scheduler.GeoIPRefresh, func(ctx context.Context) error {
				return geoipSvc.Reload()
			}, time.Minute); err != nil {
				logger.Warn("geoip-refresh schedule invalid", map[string]any{"error": err.Error()})
			}
		}
		sched.Start()
		defer sched.Stop()
	}

	srv := server.New(server.Deps{
		Config:   cfg,
		Registry: reg,
		Executor: ex,
		Pipeline: pipeline,
		Cache:    cacheImpl,
		Metrics:  metricsMgr,
		GeoIP:    geoipSvc,
		Bans:     bans,
		Breakers: breakers,
		Logger:   logger,
	})

	listenAddr := cfg.Server.BindAddress + ":" + cfg.Server.Port

	go func() {
		logger.Info("listening", map[string]any{"address": listenAddr})
		if err := srv.ListenAndServe(listenAddr); err != nil {
			logger.Error("server error", map[string]any{"error": err.Error()})
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
	sig := <-quit
	logger.Info("received signal, shutting down", map[string]any{"signal": sig.String()})

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("shutdown error", map[string]any{"error": err.Error()})
		os.Exit(1)
	}
	logger.Info("server stopped", nil)
}

func printHelp() {
	fmt.Print(`metaseekd - privacy-respecting metasearch aggregator daemon

Usage: metaseekd [options]

Options:
  --config DIR     Configuration directory
  --data DIR       Data directory
  --address ADDR   Bind address (overrides config)
  --port PORT      Listen port (overrides config)
  --help           Show this help message
  --version        Show version information
`)
}

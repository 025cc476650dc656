package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jaymes17/catalyst-chart/internal/cache"
	"github.com/jaymes17/catalyst-chart/internal/collector"
	"github.com/jaymes17/catalyst-chart/internal/config"
	"github.com/jaymes17/catalyst-chart/internal/engine"
	"github.com/jaymes17/catalyst-chart/internal/httpapi"
	"github.com/jaymes17/catalyst-chart/internal/layout"
	"github.com/jaymes17/catalyst-chart/internal/news"
	"github.com/jaymes17/catalyst-chart/internal/notifier"
	"github.com/jaymes17/catalyst-chart/internal/scheduler"
	"github.com/jaymes17/catalyst-chart/internal/watchlist"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("[INFO] catalyst-chart starting...")

	// Load config
	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("[FATAL] load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("[FATAL] config validation: %v", err)
	}

	// Init response cache
	var store cache.Store
	if cfg.Database.SQLitePath != "" {
		ss, err := cache.NewSQLiteStore(cfg.Database.SQLitePath)
		if err != nil {
			log.Printf("[WARN] init sqlite cache failed, using noop: %v", err)
			store = cache.NewNoopStore()
		} else {
			store = ss
		}
	} else {
		store = cache.NewNoopStore()
	}
	defer store.Close()

	// Init fetcher and news
	fetcher := collector.NewYahooFetcher(cfg.Proxy, store, cfg.Cache.ChartTTL)
	log.Printf("[INFO] data source: %s", fetcher.Name())

	var headlines engine.HeadlineSource
	if !cfg.News.Disabled {
		headlines = news.NewClient(cfg.Proxy, store, cfg.Cache.NewsTTL, cfg.News.Rate, cfg.News.Burst)
	}
	eng := engine.New(fetcher, headlines, cfg.News.Timeout)

	// Init watchlist
	wl, err := watchlist.NewManager(cfg.Watchlist.StateFile, cfg.Watchlist.Symbols, cfg.Range())
	if err != nil {
		log.Fatalf("[FATAL] init watchlist: %v", err)
	}

	// Context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Telegram digest and commands
	if cfg.TelegramEnabled() {
		tn := notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy)

		sched := scheduler.NewScheduler(ctx, eng, wl, tn, store, cfg.MaxCacheAge(), cfg.Range())
		if err := sched.RegisterAll(cfg.Schedule.DigestCron, cfg.Schedule.PruneCron); err != nil {
			log.Fatalf("[FATAL] register cron tasks: %v", err)
		}
		sched.Start()
		defer sched.Stop()

		go tn.StartPolling(ctx, sched.HandleCommand)
		log.Println("[INFO] Telegram polling started")

		// Optional: run immediately on start
		if os.Getenv("RUN_ON_START") == "true" {
			log.Println("[INFO] RUN_ON_START enabled, executing digest now")
			go sched.RunDigestNow()
		}
	}

	// HTTP API
	var srv *http.Server
	if cfg.Server.Addr != "" {
		api := httpapi.NewServer(eng, wl, cfg.Range(), layout.Frame{Width: cfg.Chart.Width, Height: cfg.Chart.Height})
		srv = &http.Server{
			Addr:              cfg.Server.Addr,
			Handler:           api.Handler(),
			ReadHeaderTimeout: 10 * time.Second,
		}
		go func() {
			log.Printf("[INFO] HTTP API listening on %s", cfg.Server.Addr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Printf("[ERROR] HTTP server: %v", err)
				cancel()
			}
		}()
	}

	log.Println("[INFO] catalyst-chart is running. Press Ctrl+C to stop.")

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sigCh:
		log.Println("[INFO] shutdown signal received, stopping...")
	case <-ctx.Done():
		log.Println("[INFO] context cancelled, stopping...")
	}

	if srv != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("[WARN] HTTP shutdown: %v", err)
		}
		shutdownCancel()
	}
	cancel()
	log.Println("[INFO] catalyst-chart stopped")
}

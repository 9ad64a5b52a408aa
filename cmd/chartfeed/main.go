package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"ChartFeed/internal/cache"
	"ChartFeed/internal/collector"
	"ChartFeed/internal/config"
	"ChartFeed/internal/model"
	"ChartFeed/internal/realtime"
	"ChartFeed/internal/recorder"
	"ChartFeed/internal/report"
	"ChartFeed/internal/scheduler"
	"ChartFeed/internal/session"
	"ChartFeed/internal/surface"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("[INFO] ChartFeed starting...")

	// Load config
	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	envPath := ".env"
	if v := os.Getenv("ENV_PATH"); v != "" {
		envPath = v
	}
	cfg, err := config.Load(cfgPath, envPath)
	if err != nil {
		log.Fatalf("[FATAL] load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("[FATAL] config validation: %v", err)
	}

	// Context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Init historical feed
	var feed collector.Feed
	var cached *collector.CachedFeed
	if cfg.Feed.Mock {
		feed = &collector.MockFeed{Price: mockPrice(cfg.Asset)}
	} else {
		feed = collector.NewAPIFetcher(cfg.Feed.BaseURL, cfg.Feed.APIKey, cfg.Proxy, cfg.Feed.Timeout)
	}
	if cfg.Cache.RedisAddr != "" {
		rc := cache.NewCache(cfg.Cache.RedisAddr, cfg.Cache.Password, cfg.Cache.DB)
		if err := rc.Ping(ctx); err != nil {
			log.Printf("[WARN] redis unavailable, serving uncached: %v", err)
		}
		defer rc.Close()
		cached = collector.NewCachedFeed(feed, rc, cfg.Cache.TTL)
		feed = cached
	}
	log.Printf("[INFO] data source: %s", feed.Name())

	// Init realtime feed
	var rt realtime.Feed
	if cfg.Realtime.URL != "" && !cfg.Realtime.Disabled {
		rt = realtime.NewWSFeed(cfg.Realtime.URL)
	}

	// Init recorder
	var rec recorder.Recorder
	var sqlRec *recorder.SQLRecorder
	if cfg.Database.Driver == recorder.DriverSQLite {
		if err := os.MkdirAll(filepath.Dir(cfg.Database.DSN), 0o755); err != nil {
			log.Printf("[WARN] create database dir: %v", err)
		}
	}
	sr, err := recorder.NewSQLRecorder(cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		log.Printf("[WARN] init %s recorder failed, using noop: %v", cfg.Database.Driver, err)
		rec = recorder.NewNoopRecorder()
	} else {
		rec, sqlRec = sr, sr
	}
	defer rec.Close()

	if sqlRec != nil && os.Getenv("SHOW_LAST") == "true" {
		showLast(sqlRec, cfg)
	}

	// Init session
	surf := surface.NewMemory()
	sess, err := session.New(session.Options{
		Asset:           cfg.Asset,
		Currency:        cfg.Display.Currency,
		Period:          cfg.Period(),
		Preset:          cfg.Display.Preset,
		DisableRealtime: cfg.Realtime.Disabled,
		OnReady: func(state model.SeriesState) {
			log.Printf("[INFO] series ready: %d rows", len(state.Rows))
		},
	}, session.Deps{
		Historical: feed,
		DayLevel:   feed,
		Realtime:   rt,
		Surface:    surf,
		Recorder:   rec,
	})
	if err != nil {
		log.Fatalf("[FATAL] init session: %v", err)
	}
	if err := sess.Start(ctx); err != nil {
		log.Printf("[WARN] initial load: %v", err)
	}
	defer sess.Close()

	// Init scheduler
	sched := scheduler.NewScheduler(ctx, sess)
	if cached != nil {
		sched.Cache = cached
	}
	if err := sched.RegisterAll(cfg.Schedule.RefreshCron, os.Getenv("CRON_SUMMARY")); err != nil {
		log.Fatalf("[FATAL] register cron tasks: %v", err)
	}
	sched.Start()
	defer sched.Stop()

	// Read commands from stdin
	go readCommands(ctx, sched.HandleCommand)

	log.Println("[INFO] ChartFeed is running. Press Ctrl+C to stop.")

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Println("[INFO] shutdown signal received, stopping...")
	cancel()
	log.Println("[INFO] ChartFeed stopped")
}

func readCommands(ctx context.Context, handle func(string) string) {
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		if ctx.Err() != nil {
			return
		}
		if reply := handle(scanner.Text()); reply != "" {
			fmt.Println(reply)
		}
	}
}

func showLast(sr *recorder.SQLRecorder, cfg *config.Config) {
	p := cfg.Period()
	rows, err := sr.LatestSnapshot(cfg.Asset.ID, string(cfg.Display.Currency), p.Title)
	if err != nil {
		log.Printf("[WARN] load last snapshot: %v", err)
		return
	}
	state := model.SeriesState{Rows: rows, Empty: len(rows) == 0}
	fmt.Println(report.FormatSeriesSummary(state, cfg.Asset, cfg.Display.Currency, p))
	if n, err := sr.ReloadCount(); err != nil {
		log.Printf("[WARN] count reloads: %v", err)
	} else {
		fmt.Printf("reloads recorded: %d\n", n)
	}
}

func mockPrice(a model.Asset) float64 {
	if a.IsBase() {
		return 1
	}
	if a.Rate > 0 {
		return a.Rate
	}
	return 0.05
}

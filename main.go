// Command irk-media-monitoring ingests posts and comments from regional
// media sources, scores their tourism relevance and persists the results.
// It runs once by default, or on a cron schedule when configured.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/robfig/cron/v3"

	"github.com/JartiX/Irk-media-monitoring/internal/api"
	"github.com/JartiX/Irk-media-monitoring/internal/cache"
	"github.com/JartiX/Irk-media-monitoring/internal/classifier"
	"github.com/JartiX/Irk-media-monitoring/internal/config"
	"github.com/JartiX/Irk-media-monitoring/internal/database"
	"github.com/JartiX/Irk-media-monitoring/internal/fetcher"
	"github.com/JartiX/Irk-media-monitoring/internal/logger"
	"github.com/JartiX/Irk-media-monitoring/internal/metrics"
	"github.com/JartiX/Irk-media-monitoring/internal/monitor"
	"github.com/JartiX/Irk-media-monitoring/internal/report"
	"github.com/JartiX/Irk-media-monitoring/internal/ruleset"
)

const shutdownTimeout = 10 * time.Second

func main() {
	configPath := flag.String("config", "config.yml", "path to configuration file")
	runOnce := flag.Bool("once", false, "run a single monitoring pass and exit")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync() //nolint:errcheck

	rules, err := loadRuleset(cfg.RulesetPath)
	if err != nil {
		fatal(log, "ruleset load failed", err)
	}

	db, err := database.NewPostgresConnection(cfg.Database)
	if err != nil {
		fatal(log, "database connection failed", err)
	}
	store := database.NewStore(db)
	defer store.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	backend := classifier.NewBackend(ctx, cfg.Backend, rules, log)
	scorer := classifier.NewKeywordScorer(rules, log)
	pipeline := classifier.NewPipeline(scorer, backend, rules, log)
	flagger := classifier.NewCommentFlagger(scorer, log)

	scoreCache := cache.New(cfg.Cache, log)
	defer scoreCache.Close()

	mon := monitor.New(
		cfg.Monitor,
		buildFetchers(cfg, log),
		store,
		pipeline,
		flagger,
		scoreCache,
		metrics.New(prometheus.DefaultRegisterer),
		log,
	)

	notifiers := []report.Notifier{report.NewLogNotifier(log)}
	if cfg.WebhookURL != "" {
		notifiers = append(notifiers, report.NewWebhookNotifier(cfg.WebhookURL, 0))
	}

	runPass := func(ctx context.Context) {
		stats := mon.Run(ctx)
		report.Dispatch(ctx, stats, notifiers, log)
	}

	gate := api.NewRunGate(runPass, log)
	srv := api.NewServer(cfg.API, api.NewHandler(store, pipeline, backend, gate, log), log)
	go srv.Start()

	if *runOnce || cfg.Schedule == "" {
		runPass(ctx)
	} else {
		runScheduled(ctx, cfg.Schedule, gate, log)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn("http server shutdown failed", logger.Error(err))
	}
}

// runScheduled triggers a pass immediately, then on every cron tick, until
// the context ends. Ticks that land while a run is still in progress are
// skipped rather than queued.
func runScheduled(ctx context.Context, schedule string, gate api.RunTrigger, log logger.Logger) {
	c := cron.New()
	_, err := c.AddFunc(schedule, func() {
		if !gate() {
			log.Warn("scheduled run skipped, previous run still in progress")
		}
	})
	if err != nil {
		fatal(log, "invalid schedule", err)
	}

	gate()
	c.Start()
	log.Info("scheduler started", logger.String("schedule", schedule))

	<-ctx.Done()
	log.Info("shutting down")
	<-c.Stop().Done()
}

func buildFetchers(cfg *config.Config, log logger.Logger) []fetcher.Fetcher {
	sources := cfg.EnabledSources(log)
	fetchers := make([]fetcher.Fetcher, 0, len(sources))
	for _, s := range sources {
		g := fetcher.NewGateway(s.GatewayConfig, log)
		fetchers = append(fetchers, fetcher.WithRetry(g, cfg.RetryConfig(), s.RequestsPerSecond, log))
	}
	return fetchers
}

func loadRuleset(path string) (*ruleset.Ruleset, error) {
	if path == "" {
		return ruleset.Default(), nil
	}
	return ruleset.Load(path)
}

func fatal(log logger.Logger, msg string, err error) {
	log.Error(msg, logger.Error(err))
	log.Sync() //nolint:errcheck
	os.Exit(1)
}

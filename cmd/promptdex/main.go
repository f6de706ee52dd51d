// Command promptdex aggregates prompt listings from two upstream catalogs,
// deduplicates and moderates them, and publishes the merged dataset.
//
//	promptdex generate [config.yaml]   run the aggregation pipeline
//	promptdex serve    [config.yaml]   serve the published artifacts
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/promptdex/promptdex/artifact"
	"github.com/promptdex/promptdex/catalog"
	"github.com/promptdex/promptdex/dedup"
	"github.com/promptdex/promptdex/moderation"
	"github.com/promptdex/promptdex/pipeline"
	"github.com/promptdex/promptdex/runlog"
)

func main() {
	cmd := "generate"
	args := os.Args[1:]
	if len(args) > 0 {
		cmd = args[0]
		args = args[1:]
	}

	// Logging.
	var lvl slog.Level
	switch env("LOG_LEVEL", "info") {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
	slog.SetDefault(logger)

	cfg, err := loadConfig(args)
	if err != nil {
		logger.Error("config", "error", err)
		os.Exit(1)
	}

	// Signal context.
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	switch cmd {
	case "generate":
		if err := generate(ctx, cfg, logger); err != nil {
			logger.Error("generate", "error", err)
			os.Exit(1)
		}
	case "serve":
		if err := serve(ctx, cfg, logger); err != nil {
			logger.Error("serve", "error", err)
			os.Exit(1)
		}
	default:
		fmt.Fprintf(os.Stderr, "usage: promptdex [generate|serve] [config.yaml]\n")
		os.Exit(2)
	}
}

func loadConfig(args []string) (*pipeline.Config, error) {
	if len(args) > 0 {
		return pipeline.LoadConfig(args[0])
	}
	cfg := pipeline.DefaultConfig()
	return cfg, cfg.Validate()
}

func generate(ctx context.Context, cfg *pipeline.Config, logger *slog.Logger) error {
	// Moderation credentials are the one fatal precondition: fail before
	// any network activity.
	mod, err := moderation.New(moderation.Config{
		Endpoint:        cfg.ModerationEndpoint,
		AccessKeyID:     os.Getenv("ALIYUN_ACCESS_KEY_ID"),
		AccessKeySecret: os.Getenv("ALIYUN_ACCESS_KEY_SECRET"),
		Timeout:         cfg.Timeout(),
	}, logger)
	if err != nil {
		return err
	}

	// Optional run ledger.
	var events *runlog.Logger
	if cfg.RunLogDB != "" {
		db, err := runlog.Open(cfg.RunLogDB)
		if err != nil {
			return err
		}
		defer db.Close()
		events = runlog.NewLogger(db, logger)
		logger.Info("run ledger enabled", "db", cfg.RunLogDB, "run_id", events.RunID())
	}

	catCfg := catalog.Config{Timeout: cfg.Timeout()}

	// Catalog A fully, then catalog B: first-seen merge identity depends
	// on this order.
	tbl := dedup.NewTable()
	paged := catalog.NewPagedSource(cfg.PagedCatalogURL, catCfg, logger).Fetch(ctx)
	events.Event(ctx, runlog.StageCatalogFetch, cfg.PagedCatalogURL, fmt.Sprintf("%d records", len(paged)), true)
	tbl.Ingest(paged)

	listed := catalog.NewListingSource(cfg.ListingCatalogURL, catCfg, logger).Fetch(ctx)
	events.Event(ctx, runlog.StageCatalogFetch, cfg.ListingCatalogURL, fmt.Sprintf("%d records", len(listed)), true)
	tbl.Ingest(listed)

	logger.Info("merge complete", "fetched", len(paged)+len(listed), "distinct", tbl.Len())
	events.Event(ctx, runlog.StageMerge, "", fmt.Sprintf("%d distinct", tbl.Len()), true)

	blacklist := artifact.LoadBlacklist(cfg.BlacklistPath, logger)
	existing := artifact.LoadExisting(cfg.OutputPath, logger)

	p := pipeline.New(mod, blacklist, existing, logger, pipeline.WithRunLog(events))
	records := p.Run(ctx, tbl.Entries())

	if len(records) == 0 {
		logger.Warn("no compliant records, leaving previous artifacts untouched")
		return nil
	}

	if err := artifact.WriteOutput(cfg.OutputPath, records); err != nil {
		return err
	}
	stats := pipeline.BuildStats(records)
	if err := artifact.WriteStats(cfg.StatsPath, stats); err != nil {
		return err
	}
	events.Event(ctx, runlog.StageArtifactsWrite, cfg.OutputPath, fmt.Sprintf("%d records", len(records)), true)
	logger.Info("artifacts written",
		"output", cfg.OutputPath, "stats", cfg.StatsPath, "records", len(records))
	return nil
}

func env(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

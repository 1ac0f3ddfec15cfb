package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/claude/liftcycle/internal/config"
	"github.com/claude/liftcycle/internal/importer"
	"github.com/claude/liftcycle/internal/planner"
	"github.com/claude/liftcycle/internal/storage"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	dumpPath := flag.String("path", "", "maxes dump file, or directory of .json/.json.gz dumps (required)")
	dryRun := flag.Bool("dry-run", false, "validate dumps without creating cycles")
	flag.Parse()

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	if *dumpPath == "" {
		fmt.Fprintf(os.Stderr, "Usage: liftcycle-import -config config.yaml -path maxes.json [-dry-run]\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	if _, err := os.Stat(*dumpPath); err != nil {
		log.Error("dump path does not exist", "path", *dumpPath)
		os.Exit(1)
	}

	// Load config
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	if *dryRun {
		log.Info("DRY RUN mode: no cycles will be created")
	}

	ctx := context.Background()
	db, closeDB, err := storage.Open(ctx, cfg.Database, "migrations")
	if err != nil {
		log.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer closeDB()
	log.Info("database ready", "driver", cfg.Database.Driver)

	// Run import
	imp := importer.New(planner.New(db, log), log, *dryRun)
	stats, err := imp.Import(ctx, *dumpPath)
	if err != nil {
		log.Error("import failed", "error", err)
		printStats(log, stats)
		os.Exit(1)
	}

	printStats(log, stats)
	log.Info("import complete")
}

func printStats(log *slog.Logger, stats *importer.Stats) {
	log.Info("import stats",
		"files_processed", stats.FilesProcessed,
		"files_skipped", stats.FilesSkipped,
		"files_errored", stats.FilesErrored,
		"entries_read", stats.EntriesRead,
		"cycles_created", stats.CyclesCreated,
	)
	if stats.CyclesCreated > 0 {
		log.Info("cycle range", "first", stats.FirstIndex, "last", stats.LastIndex)
	}
}

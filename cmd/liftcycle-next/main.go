package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/claude/liftcycle/internal/config"
	"github.com/claude/liftcycle/internal/cycle"
	"github.com/claude/liftcycle/internal/export"
	"github.com/claude/liftcycle/internal/models"
	"github.com/claude/liftcycle/internal/planner"
	"github.com/claude/liftcycle/internal/prompt"
	"github.com/claude/liftcycle/internal/storage"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	withXLSX := flag.Bool("xlsx", false, "also write cycle.xlsx next to the week CSVs")
	flag.Parse()

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()
	db, closeDB, err := storage.Open(ctx, cfg.Database, "migrations")
	if err != nil {
		log.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer closeDB()

	c, err := nextCycle(ctx, planner.New(db, log))
	if err != nil {
		log.Error("creating cycle failed", "error", err)
		os.Exit(1)
	}

	plan, err := c.Plan()
	if err != nil {
		log.Error("rebuilding plan failed", "cycle_index", c.Index, "error", err)
		os.Exit(1)
	}
	dir, err := export.WriteCycleCSVs(cfg.Export.Dir, plan)
	if err != nil {
		log.Error("writing CSVs failed", "error", err)
		os.Exit(1)
	}
	if *withXLSX {
		if err := writeWorkbook(filepath.Join(dir, "cycle.xlsx"), c.Index, plan); err != nil {
			log.Error("writing workbook failed", "error", err)
			os.Exit(1)
		}
	}

	fmt.Printf("\nCycle %d written to %s\n", c.Index, dir)
	for _, l := range c.TrainingMaxes.Lifts() {
		line := fmt.Sprintf("  %-12s %s", l, c.TrainingMaxes[l].StringFixed(2))
		if d, ok := c.Deltas[l]; ok {
			line += fmt.Sprintf(" (%s)", d.StringFixed(2))
		}
		fmt.Println(line)
	}
}

// nextCycle advances from the latest cycle, or asks for one set per lift
// when there is no history yet.
func nextCycle(ctx context.Context, pl *planner.Planner) (*models.Cycle, error) {
	c, err := pl.Advance(ctx)
	if !errors.Is(err, cycle.ErrNotFound) {
		return c, err
	}

	fmt.Println("No previous cycle found. Enter a recent set for each lift.")
	perfs, err := prompt.NewReader(os.Stdin, os.Stdout).Performances(cycle.AllLifts())
	if err != nil {
		return nil, err
	}
	return pl.Bootstrap(ctx, perfs)
}

func writeWorkbook(path string, index int, plan cycle.CyclePlan) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := export.WriteXLSX(f, index, plan); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/claude/liftcycle/internal/config"
	"github.com/claude/liftcycle/internal/cycle"
	"github.com/claude/liftcycle/internal/export"
	"github.com/claude/liftcycle/internal/storage"
	"github.com/shopspring/decimal"
)

const usage = `Usage: liftcycle-admin [-config config.yaml] <command> [flags]

Commands:
  create                                  apply the schema and seed lifts with default increments
  drop                                    remove every table
  dump      [-o file]                     write all training maxes as JSON
  increment -lift L -amount A             set the default increment of a lift
  override  -cycle N -lift L -value V     record an increment or "deload" for the next cycle
  reps      -cycle N -week W -lift L -set S -reps R
                                          record reps achieved on a set
`

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	flag.Parse()

	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(2)
	}

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()
	cmd, args := flag.Arg(0), flag.Args()[1:]

	switch cmd {
	case "create":
		err = runCreate(ctx, cfg)
	case "drop":
		err = runDrop(ctx, cfg)
	case "dump":
		err = runDump(ctx, cfg, args)
	case "increment":
		err = runIncrement(ctx, cfg, args)
	case "override":
		err = runOverride(ctx, cfg, args)
	case "reps":
		err = runReps(ctx, cfg, args)
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n", cmd)
		flag.Usage()
		os.Exit(2)
	}
	if err != nil {
		log.Error(cmd+" failed", "error", err)
		os.Exit(1)
	}
	log.Info(cmd + " done")
}

func withStore(ctx context.Context, cfg *config.Config, fn func(storage.Backend) error) error {
	db, closeDB, err := storage.Open(ctx, cfg.Database, "migrations")
	if err != nil {
		return err
	}
	defer closeDB()
	return fn(db)
}

func runCreate(ctx context.Context, cfg *config.Config) error {
	return withStore(ctx, cfg, func(storage.Backend) error {
		fmt.Println("Created DB")
		fmt.Printf("Added %d main lifts and their default increments\n", len(cycle.AllLifts()))
		return nil
	})
}

func runDrop(ctx context.Context, cfg *config.Config) error {
	if cfg.Database.IsSQLite() {
		local, err := storage.OpenLocal(cfg.Database.Path)
		if err != nil {
			return err
		}
		defer local.Close()
		return local.Reset(ctx)
	}
	return storage.DropMigrations(cfg.Database.DSN(), "migrations")
}

func runDump(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("dump", flag.ExitOnError)
	out := fs.String("o", "", "output file (default stdout)")
	fs.Parse(args)

	return withStore(ctx, cfg, func(db storage.Backend) error {
		cycles, err := db.ListCycles(ctx)
		if err != nil {
			return err
		}
		entries := make([]export.IndexedMaxes, 0, len(cycles))
		for _, c := range cycles {
			entries = append(entries, export.IndexedMaxes{Index: c.Index, TrainingMaxes: c.TrainingMaxes})
		}

		var w io.Writer = os.Stdout
		if *out != "" {
			f, err := os.Create(*out)
			if err != nil {
				return err
			}
			defer f.Close()
			w = f
		}
		return export.EncodeMaxes(w, entries)
	})
}

func runIncrement(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("increment", flag.ExitOnError)
	liftName := fs.String("lift", "", "lift name")
	amount := fs.String("amount", "", "default increment, e.g. 2.5")
	fs.Parse(args)

	lift, err := cycle.ParseLift(*liftName)
	if err != nil {
		return err
	}
	amt, err := decimal.NewFromString(*amount)
	if err != nil || !amt.IsPositive() {
		return fmt.Errorf("%w: increment must be a positive number, got %q", cycle.ErrValidation, *amount)
	}
	if err := cycle.CheckScale(amt); err != nil {
		return fmt.Errorf("increment: %w", err)
	}
	return withStore(ctx, cfg, func(db storage.Backend) error {
		return db.SetLiftIncrement(ctx, lift, amt)
	})
}

func runOverride(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("override", flag.ExitOnError)
	index := fs.Int("cycle", 0, "cycle index")
	liftName := fs.String("lift", "", "lift name")
	value := fs.String("value", "", `increment amount or "deload"`)
	fs.Parse(args)

	lift, err := cycle.ParseLift(*liftName)
	if err != nil {
		return err
	}
	o, err := cycle.ParseOverride(*value)
	if err != nil {
		return err
	}
	return withStore(ctx, cfg, func(db storage.Backend) error {
		return db.SetCycleOverride(ctx, *index, lift, o)
	})
}

func runReps(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("reps", flag.ExitOnError)
	index := fs.Int("cycle", 0, "cycle index")
	week := fs.Int("week", 0, "week (1-4)")
	liftName := fs.String("lift", "", "lift name")
	set := fs.Int("set", 0, "set number (1-3)")
	reps := fs.Int("reps", 0, "reps achieved")
	fs.Parse(args)

	lift, err := cycle.ParseLift(*liftName)
	if err != nil {
		return err
	}
	if err := cycle.CheckSetRef(*week, *set, *reps); err != nil {
		return err
	}
	return withStore(ctx, cfg, func(db storage.Backend) error {
		return db.RecordReps(ctx, *index, *week, lift, *set, *reps)
	})
}

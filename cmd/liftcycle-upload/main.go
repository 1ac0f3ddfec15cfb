package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/claude/liftcycle/internal/upload"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	serverURL := flag.String("server", "", "liftcycle server URL (e.g. https://liftcycle.tail1234.ts.net)")
	dumpPath := flag.String("path", "", "maxes dump file, or directory of .json/.json.gz dumps")
	dryRun := flag.Bool("dry-run", false, "validate dumps but don't send them")
	version := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *version {
		fmt.Println("liftcycle-upload", Version)
		return
	}

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	if *dumpPath == "" {
		fmt.Fprintf(os.Stderr, "Usage: liftcycle-upload -server <URL> -path <dump file or dir> [-dry-run]\n\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	apiKey := os.Getenv("LIFTCYCLE_AUTH_API_KEY")
	if !*dryRun && (*serverURL == "" || apiKey == "") {
		fmt.Fprintf(os.Stderr, "Error: -server and LIFTCYCLE_AUTH_API_KEY are required (or use -dry-run)\n")
		os.Exit(1)
	}

	// Strip trailing slash from server URL
	*serverURL = strings.TrimRight(*serverURL, "/")

	// Open state database
	homeDir, err := os.UserHomeDir()
	if err != nil {
		log.Error("failed to get home directory", "error", err)
		os.Exit(1)
	}
	state, err := upload.OpenStateDB(filepath.Join(homeDir, ".liftcycle-upload"))
	if err != nil {
		log.Error("failed to open state database", "error", err)
		os.Exit(1)
	}
	defer state.Close()

	var sender upload.Sender
	if !*dryRun {
		sender = upload.NewClient(*serverURL, apiKey)
	} else {
		log.Info("DRY RUN mode: dumps will be validated but not sent")
	}

	stats, err := upload.New(sender, state, *dumpPath, *dryRun, log).Run(context.Background())
	if err != nil {
		log.Error("upload failed", "error", err)
		printStats(stats)
		os.Exit(1)
	}

	printStats(stats)
	log.Info("upload complete")
}

func printStats(stats *upload.Stats) {
	fmt.Println()
	fmt.Println("=== Upload Summary ===")
	fmt.Printf("  Files total:      %d\n", stats.FilesTotal)
	fmt.Printf("  Files uploaded:   %d\n", stats.FilesUploaded)
	fmt.Printf("  Files skipped:    %d (already uploaded or empty)\n", stats.FilesSkipped)
	fmt.Printf("  Files errored:    %d\n", stats.FilesErrored)
	fmt.Println()
	fmt.Printf("  Entries sent:     %d\n", stats.EntriesSent)
	if len(stats.CyclesCreated) > 0 {
		fmt.Printf("  Cycles created:   %v\n", stats.CyclesCreated)
	}
	fmt.Println()
}

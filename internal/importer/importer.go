package importer

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/claude/liftcycle/internal/cycle"
	"github.com/claude/liftcycle/internal/export"
	"github.com/claude/liftcycle/internal/models"
)

// Target saves imported training maxes as new cycles. *planner.Planner
// satisfies it.
type Target interface {
	Import(ctx context.Context, sets []cycle.TrainingMaxSet) ([]*models.Cycle, error)
}

// Stats tracks import progress.
type Stats struct {
	FilesProcessed int
	FilesSkipped   int
	FilesErrored   int

	EntriesRead   int
	CyclesCreated int
	FirstIndex    int
	LastIndex     int
}

// Importer reads JSON maxes dumps and creates one cycle per entry.
type Importer struct {
	target Target
	log    *slog.Logger
	dryRun bool
	stats  Stats
}

// New creates a new Importer.
func New(target Target, log *slog.Logger, dryRun bool) *Importer {
	return &Importer{target: target, log: log, dryRun: dryRun}
}

// Import processes a dump file, or every .json and .json.gz file in a
// directory in name order. Unreadable or malformed files are counted and
// skipped; a failure to save stops the import.
func (imp *Importer) Import(ctx context.Context, path string) (*Stats, error) {
	files, err := DumpFiles(path)
	if err != nil {
		return &imp.stats, err
	}

	for _, f := range files {
		data, err := ReadDump(f)
		if err != nil {
			imp.log.Warn("read failed", "file", f, "error", err)
			imp.stats.FilesErrored++
			continue
		}

		sets, err := export.DecodeMaxes(bytes.NewReader(data))
		if err != nil {
			imp.log.Warn("parse failed", "file", f, "error", err)
			imp.stats.FilesErrored++
			continue
		}
		if len(sets) == 0 {
			imp.stats.FilesSkipped++
			continue
		}

		imp.stats.FilesProcessed++
		imp.stats.EntriesRead += len(sets)
		if imp.dryRun {
			imp.log.Info("dry run: would import", "file", filepath.Base(f), "cycles", len(sets))
			continue
		}

		saved, err := imp.target.Import(ctx, sets)
		imp.record(saved)
		if err != nil {
			return &imp.stats, fmt.Errorf("importing %s: %w", filepath.Base(f), err)
		}
		imp.log.Info("file imported", "file", filepath.Base(f), "cycles", len(saved))
	}

	return &imp.stats, nil
}

func (imp *Importer) record(saved []*models.Cycle) {
	for _, c := range saved {
		if imp.stats.FirstIndex == 0 {
			imp.stats.FirstIndex = c.Index
		}
		imp.stats.LastIndex = c.Index
		imp.stats.CyclesCreated++
	}
}

// DumpFiles lists path itself, or the .json and .json.gz files directly
// inside it in name order.
func DumpFiles(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	if !info.IsDir() {
		return []string{path}, nil
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	var files []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !(strings.HasSuffix(name, ".json") || strings.HasSuffix(name, ".json.gz")) {
			continue
		}
		files = append(files, filepath.Join(path, name))
	}
	sort.Strings(files)
	return files, nil
}

// Package upload pushes maxes dumps from a workstation to a remote
// liftcycle server, remembering what was already sent.
package upload

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/claude/liftcycle/internal/export"
	"github.com/claude/liftcycle/internal/importer"
)

// Stats tracks upload progress.
type Stats struct {
	FilesTotal    int
	FilesUploaded int
	FilesSkipped  int
	FilesErrored  int

	EntriesSent   int
	CyclesCreated []int
}

// Sender delivers one dump. *Client satisfies it.
type Sender interface {
	SendDump(ctx context.Context, dump []byte) ([]int, error)
}

// Uploader sends every dump under a path that the state database has not
// seen yet.
type Uploader struct {
	sender Sender
	state  *StateDB
	path   string
	dryRun bool
	log    *slog.Logger
	stats  Stats
}

// New creates a new Uploader. sender may be nil in dry-run mode.
func New(sender Sender, state *StateDB, path string, dryRun bool, log *slog.Logger) *Uploader {
	return &Uploader{sender: sender, state: state, path: path, dryRun: dryRun, log: log}
}

// Run executes the upload. Malformed files are counted and skipped. A
// rejected upload stops the run, since later dumps usually build on the
// cycles of earlier ones.
func (u *Uploader) Run(ctx context.Context) (*Stats, error) {
	files, err := importer.DumpFiles(u.path)
	if err != nil {
		return &u.stats, err
	}
	u.stats.FilesTotal = len(files)

	for _, f := range files {
		name := filepath.Base(f)
		data, err := importer.ReadDump(f)
		if err != nil {
			u.log.Warn("read failed", "file", name, "error", err)
			u.stats.FilesErrored++
			continue
		}

		// Validate locally so a typo does not cost a round trip.
		sets, err := export.DecodeMaxes(bytes.NewReader(data))
		if err != nil {
			u.log.Warn("parse failed", "file", name, "error", err)
			u.stats.FilesErrored++
			continue
		}
		if len(sets) == 0 {
			u.stats.FilesSkipped++
			continue
		}

		hash, err := HashDump(bytes.NewReader(data))
		if err != nil {
			return &u.stats, fmt.Errorf("hashing %s: %w", name, err)
		}
		sent, prev, err := u.state.Sent(ctx, hash)
		if err != nil {
			return &u.stats, fmt.Errorf("checking state for %s: %w", name, err)
		}
		if sent {
			u.log.Info("already uploaded", "file", name, "cycles", prev)
			u.stats.FilesSkipped++
			continue
		}

		if u.dryRun {
			u.log.Info("dry run: would upload", "file", name, "entries", len(sets))
			u.stats.EntriesSent += len(sets)
			continue
		}

		created, err := u.sender.SendDump(ctx, data)
		if err != nil {
			u.stats.FilesErrored++
			return &u.stats, fmt.Errorf("uploading %s: %w", name, err)
		}
		if err := u.state.MarkSent(ctx, hash, name, created); err != nil {
			return &u.stats, fmt.Errorf("recording %s: %w", name, err)
		}

		u.stats.FilesUploaded++
		u.stats.EntriesSent += len(sets)
		u.stats.CyclesCreated = append(u.stats.CyclesCreated, created...)
		u.log.Info("file uploaded", "file", name, "cycles", created)
	}

	return &u.stats, nil
}

package upload

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	_ "modernc.org/sqlite"
)

// StateDB remembers which dump files were accepted by the server so a
// rerun does not create the same cycles twice.
type StateDB struct {
	db *sql.DB
}

// OpenStateDB opens (or creates) the SQLite state database at dir/state.db.
func OpenStateDB(dir string) (*StateDB, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating state dir %s: %w", dir, err)
	}

	db, err := sql.Open("sqlite", filepath.Join(dir, "state.db"))
	if err != nil {
		return nil, fmt.Errorf("opening state db: %w", err)
	}

	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS sent_dumps (
		hash        TEXT PRIMARY KEY,
		name        TEXT NOT NULL,
		cycles      TEXT NOT NULL,
		uploaded_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating state table: %w", err)
	}

	return &StateDB{db: db}, nil
}

// Sent reports whether a dump with this content hash was already accepted,
// and the cycle indexes it created.
func (s *StateDB) Sent(ctx context.Context, hash string) (bool, []int, error) {
	var cycles string
	err := s.db.QueryRowContext(ctx,
		`SELECT cycles FROM sent_dumps WHERE hash = ?`, hash,
	).Scan(&cycles)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil, nil
	}
	if err != nil {
		return false, nil, err
	}

	var indexes []int
	for _, f := range strings.Fields(cycles) {
		n, err := strconv.Atoi(f)
		if err != nil {
			return false, nil, fmt.Errorf("corrupt state for %s: %w", hash, err)
		}
		indexes = append(indexes, n)
	}
	return true, indexes, nil
}

// MarkSent records that a dump was accepted and which cycles it created.
func (s *StateDB) MarkSent(ctx context.Context, hash, name string, created []int) error {
	parts := make([]string, len(created))
	for i, n := range created {
		parts[i] = strconv.Itoa(n)
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO sent_dumps (hash, name, cycles) VALUES (?, ?, ?)`,
		hash, name, strings.Join(parts, " "),
	)
	return err
}

// Close closes the state database.
func (s *StateDB) Close() error {
	return s.db.Close()
}

// HashDump computes the SHA-256 hash of dump content.
func HashDump(r io.Reader) (string, error) {
	h := sha256.New()
	if _, err := io.Copy(h, r); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

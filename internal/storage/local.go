package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/claude/liftcycle/internal/cycle"
	"github.com/claude/liftcycle/internal/models"
	"github.com/shopspring/decimal"

	_ "modernc.org/sqlite"
)

const localSchema = `
CREATE TABLE IF NOT EXISTS lifts (
	name TEXT PRIMARY KEY
);
CREATE TABLE IF NOT EXISTS lift_increments (
	lift   TEXT PRIMARY KEY REFERENCES lifts(name),
	amount TEXT NOT NULL CHECK (CAST(amount AS REAL) > 0)
);
CREATE TABLE IF NOT EXISTS cycles (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	idx        INTEGER NOT NULL UNIQUE,
	start_date TIMESTAMP NOT NULL
);
CREATE TABLE IF NOT EXISTS cycle_lift_max (
	cycle_id INTEGER NOT NULL REFERENCES cycles(id) ON DELETE CASCADE,
	lift     TEXT NOT NULL REFERENCES lifts(name),
	amount   TEXT NOT NULL CHECK (CAST(amount AS REAL) > 0),
	delta    TEXT,
	PRIMARY KEY (cycle_id, lift)
);
CREATE TABLE IF NOT EXISTS cycle_lift_weekly (
	cycle_id      INTEGER NOT NULL REFERENCES cycles(id) ON DELETE CASCADE,
	week          INTEGER NOT NULL CHECK (week BETWEEN 1 AND 4),
	lift          TEXT NOT NULL REFERENCES lifts(name),
	set_number    INTEGER NOT NULL CHECK (set_number BETWEEN 1 AND 3),
	percentage    INTEGER NOT NULL CHECK (percentage BETWEEN 1 AND 100),
	reps          INTEGER NOT NULL CHECK (reps BETWEEN 1 AND 5),
	amrap         BOOLEAN NOT NULL DEFAULT 0,
	amount        TEXT NOT NULL,
	reps_achieved INTEGER CHECK (reps_achieved >= 0),
	PRIMARY KEY (cycle_id, week, lift, set_number)
);
CREATE TABLE IF NOT EXISTS cycle_lift_increments (
	cycle_id INTEGER NOT NULL REFERENCES cycles(id) ON DELETE CASCADE,
	lift     TEXT NOT NULL REFERENCES lifts(name),
	amount   TEXT,
	deload   BOOLEAN NOT NULL DEFAULT 0,
	PRIMARY KEY (cycle_id, lift),
	CHECK (deload OR amount IS NOT NULL)
);`

const localTables = "cycle_lift_increments,cycle_lift_weekly,cycle_lift_max,cycles,lift_increments,lifts"

// LocalDB is a single-file SQLite store with the same repository methods as
// DB, for running without a PostgreSQL server.
type LocalDB struct {
	db *sql.DB
}

// OpenLocal opens (or creates) the SQLite database at path and ensures the
// schema exists.
func OpenLocal(path string) (*LocalDB, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating database dir %s: %w", dir, err)
		}
	}

	db, err := sql.Open("sqlite", "file:"+path+"?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_txlock=immediate")
	if err != nil {
		return nil, fmt.Errorf("opening local db: %w", err)
	}
	// SQLite has a single writer; one connection keeps saves serialized.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(localSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating local schema: %w", err)
	}
	return &LocalDB{db: db}, nil
}

// Close closes the database.
func (l *LocalDB) Close() error {
	return l.db.Close()
}

// Reset drops every table and recreates the empty schema.
func (l *LocalDB) Reset(ctx context.Context) error {
	for _, t := range strings.Split(localTables, ",") {
		if _, err := l.db.ExecContext(ctx, "DROP TABLE IF EXISTS "+t); err != nil {
			return fmt.Errorf("dropping %s: %w", t, err)
		}
	}
	if _, err := l.db.ExecContext(ctx, localSchema); err != nil {
		return fmt.Errorf("recreating local schema: %w", err)
	}
	return nil
}

// Seed inserts the main lifts and their default increments.
func (l *LocalDB) Seed(ctx context.Context) error {
	for _, lift := range cycle.AllLifts() {
		if _, err := l.db.ExecContext(ctx,
			`INSERT OR IGNORE INTO lifts (name) VALUES (?)`, string(lift)); err != nil {
			return fmt.Errorf("seeding lift %s: %w", lift, err)
		}
		if _, err := l.db.ExecContext(ctx,
			`INSERT OR IGNORE INTO lift_increments (lift, amount) VALUES (?, ?)`,
			string(lift), amountText(cycle.DefaultIncrement(lift))); err != nil {
			return fmt.Errorf("seeding increment for %s: %w", lift, err)
		}
	}
	return nil
}

// LiftIncrements returns the default progression step of every lift.
func (l *LocalDB) LiftIncrements(ctx context.Context) (map[cycle.Lift]decimal.Decimal, error) {
	rows, err := l.db.QueryContext(ctx, `SELECT lift, amount FROM lift_increments`)
	if err != nil {
		return nil, fmt.Errorf("querying lift increments: %w", err)
	}
	defer rows.Close()

	result := make(map[cycle.Lift]decimal.Decimal)
	for rows.Next() {
		var lift, amount string
		if err := rows.Scan(&lift, &amount); err != nil {
			return nil, fmt.Errorf("scanning lift increment: %w", err)
		}
		d, err := parseAmount(amount)
		if err != nil {
			return nil, err
		}
		result[cycle.Lift(lift)] = d
	}
	return result, rows.Err()
}

// ListLiftIncrements returns the increments as rows in lift order.
func (l *LocalDB) ListLiftIncrements(ctx context.Context) ([]models.LiftIncrementRow, error) {
	incs, err := l.LiftIncrements(ctx)
	if err != nil {
		return nil, err
	}
	return incrementRows(incs), nil
}

// SetLiftIncrement replaces the default step of a lift.
func (l *LocalDB) SetLiftIncrement(ctx context.Context, lift cycle.Lift, amount decimal.Decimal) error {
	amt, err := exactAmountText(amount)
	if err != nil {
		return fmt.Errorf("increment for %s: %w", lift, err)
	}
	_, err = l.db.ExecContext(ctx,
		`INSERT INTO lift_increments (lift, amount) VALUES (?, ?)
		 ON CONFLICT (lift) DO UPDATE SET amount = excluded.amount`,
		string(lift), amt)
	if err != nil {
		return fmt.Errorf("setting increment for %s: %w", lift, err)
	}
	return nil
}

// LatestCycle returns the cycle with the highest index, or nil if none exist.
func (l *LocalDB) LatestCycle(ctx context.Context) (*models.Cycle, error) {
	return l.findCycle(ctx, `SELECT id, idx, start_date FROM cycles ORDER BY idx DESC LIMIT 1`)
}

// GetCycle returns the cycle with the given index, or nil if it does not exist.
func (l *LocalDB) GetCycle(ctx context.Context, index int) (*models.Cycle, error) {
	return l.findCycle(ctx, `SELECT id, idx, start_date FROM cycles WHERE idx = ?`, index)
}

func (l *LocalDB) findCycle(ctx context.Context, query string, args ...any) (*models.Cycle, error) {
	var row models.CycleRow
	err := l.db.QueryRowContext(ctx, query, args...).Scan(&row.ID, &row.Index, &row.StartDate)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying cycle: %w", err)
	}

	maxes, err := l.queryMaxes(ctx, row.ID)
	if err != nil {
		return nil, err
	}
	weekly, err := l.queryWeekly(ctx, row.ID)
	if err != nil {
		return nil, err
	}
	incs, err := l.queryCycleIncrements(ctx, row.ID)
	if err != nil {
		return nil, err
	}
	return models.AssembleCycle(row, maxes, weekly, incs), nil
}

// ListCycles returns every cycle's training maxes in index order.
func (l *LocalDB) ListCycles(ctx context.Context) ([]models.CycleSummary, error) {
	rows, err := l.db.QueryContext(ctx,
		`SELECT c.idx, c.start_date, m.lift, m.amount
		 FROM cycles c JOIN cycle_lift_max m ON m.cycle_id = c.id
		 ORDER BY c.idx`)
	if err != nil {
		return nil, fmt.Errorf("querying cycles: %w", err)
	}
	defer rows.Close()

	var result []models.CycleSummary
	for rows.Next() {
		var (
			idx          int
			start        time.Time
			lift, amount string
		)
		if err := rows.Scan(&idx, &start, &lift, &amount); err != nil {
			return nil, fmt.Errorf("scanning cycle max: %w", err)
		}
		d, err := parseAmount(amount)
		if err != nil {
			return nil, err
		}
		if n := len(result); n == 0 || result[n-1].Index != idx {
			result = append(result, models.CycleSummary{Index: idx, StartDate: start, TrainingMaxes: cycle.TrainingMaxSet{}})
		}
		result[len(result)-1].TrainingMaxes[cycle.Lift(lift)] = d
	}
	return result, rows.Err()
}

// SaveCycles stores the batch under consecutive indexes in one transaction.
// Transactions on LocalDB begin IMMEDIATE, so the index read below already
// holds the database write lock. Unless base is AnyBase, the latest stored
// index must equal base or ErrStaleBase is returned and nothing is written.
func (l *LocalDB) SaveCycles(ctx context.Context, base int, batch []models.NewCycle) ([]*models.Cycle, error) {
	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	var latest int
	if err := tx.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(idx), 0) FROM cycles`).Scan(&latest); err != nil {
		return nil, fmt.Errorf("reading latest cycle index: %w", err)
	}
	if err := checkBase(latest, base); err != nil {
		return nil, err
	}

	start := time.Now().UTC()
	saved := make([]*models.Cycle, 0, len(batch))
	for i, nc := range batch {
		row := models.CycleRow{Index: latest + i + 1, StartDate: start}
		res, err := tx.ExecContext(ctx,
			`INSERT INTO cycles (idx, start_date) VALUES (?, ?)`, row.Index, row.StartDate)
		if err != nil {
			return nil, fmt.Errorf("inserting cycle %d: %w", row.Index, err)
		}
		if row.ID, err = res.LastInsertId(); err != nil {
			return nil, fmt.Errorf("reading cycle id: %w", err)
		}

		maxRows := maxRowsFor(row.ID, nc.Plan.TrainingMaxes, nc.Deltas)
		for _, m := range maxRows {
			amt, err := exactAmountText(m.Amount)
			if err != nil {
				return nil, fmt.Errorf("max for %s: %w", m.Lift, err)
			}
			delta, err := nullAmountText(m.Delta)
			if err != nil {
				return nil, fmt.Errorf("delta for %s: %w", m.Lift, err)
			}
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO cycle_lift_max (cycle_id, lift, amount, delta) VALUES (?, ?, ?, ?)`,
				m.CycleID, string(m.Lift), amt, delta); err != nil {
				return nil, fmt.Errorf("inserting max for %s: %w", m.Lift, err)
			}
		}

		weekly := models.WeeklyRows(nc.Plan)
		if err := insertWeeklyLocal(ctx, tx, row.ID, weekly); err != nil {
			return nil, err
		}
		saved = append(saved, models.AssembleCycle(row, maxRows, weekly, nil))
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing cycles: %w", err)
	}
	return saved, nil
}

func insertWeeklyLocal(ctx context.Context, tx *sql.Tx, cycleID int64, weekly []models.CycleLiftWeeklyRow) error {
	if len(weekly) == 0 {
		return nil
	}
	query := `INSERT INTO cycle_lift_weekly (cycle_id, week, lift, set_number,
		percentage, reps, amrap, amount) VALUES `
	args := make([]any, 0, len(weekly)*weeklyColumns)
	valueStrings := make([]string, 0, len(weekly))
	for i := range weekly {
		weekly[i].CycleID = cycleID
		r := weekly[i]
		valueStrings = append(valueStrings, "(?,?,?,?,?,?,?,?)")
		args = append(args, r.CycleID, r.Week, string(r.Lift), r.SetNumber,
			r.Percentage, r.Reps, r.AtLeast, amountText(r.Amount))
	}
	if _, err := tx.ExecContext(ctx, query+strings.Join(valueStrings, ","), args...); err != nil {
		return fmt.Errorf("inserting weekly sets: %w", err)
	}
	return nil
}

// SetCycleOverride records a manual increment or deload for lift on the
// cycle with the given index.
func (l *LocalDB) SetCycleOverride(ctx context.Context, index int, lift cycle.Lift, o cycle.Override) error {
	amount, _ := o.Amount()
	var amt *string
	if !o.IsDeload() {
		s, err := exactAmountText(amount)
		if err != nil {
			return fmt.Errorf("override for %s: %w", lift, err)
		}
		amt = &s
	}
	res, err := l.db.ExecContext(ctx,
		`INSERT INTO cycle_lift_increments (cycle_id, lift, amount, deload)
		 SELECT id, ?, ?, ? FROM cycles WHERE idx = ?
		 ON CONFLICT (cycle_id, lift) DO UPDATE SET amount = excluded.amount, deload = excluded.deload`,
		string(lift), amt, o.IsDeload(), index)
	if err != nil {
		return fmt.Errorf("setting override for %s on cycle %d: %w", lift, index, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: cycle %d", cycle.ErrNotFound, index)
	}
	return nil
}

// RecordReps stores the reps actually achieved for one prescribed set.
func (l *LocalDB) RecordReps(ctx context.Context, index, week int, lift cycle.Lift, setNumber, reps int) error {
	if reps < 0 {
		return fmt.Errorf("%w: reps must not be negative, got %d", cycle.ErrValidation, reps)
	}
	res, err := l.db.ExecContext(ctx,
		`UPDATE cycle_lift_weekly SET reps_achieved = ?
		 WHERE cycle_id = (SELECT id FROM cycles WHERE idx = ?)
		   AND week = ? AND lift = ? AND set_number = ?`,
		reps, index, week, string(lift), setNumber)
	if err != nil {
		return fmt.Errorf("recording reps: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: cycle %d week %d %s set %d", cycle.ErrNotFound, index, week, lift, setNumber)
	}
	return nil
}

func (l *LocalDB) queryMaxes(ctx context.Context, cycleID int64) ([]models.CycleLiftMaxRow, error) {
	rows, err := l.db.QueryContext(ctx,
		`SELECT lift, amount, delta FROM cycle_lift_max WHERE cycle_id = ?`, cycleID)
	if err != nil {
		return nil, fmt.Errorf("querying cycle maxes: %w", err)
	}
	defer rows.Close()

	var result []models.CycleLiftMaxRow
	for rows.Next() {
		var (
			lift, amount string
			delta        sql.NullString
		)
		if err := rows.Scan(&lift, &amount, &delta); err != nil {
			return nil, fmt.Errorf("scanning cycle max: %w", err)
		}
		r := models.CycleLiftMaxRow{CycleID: cycleID, Lift: cycle.Lift(lift)}
		if r.Amount, err = parseAmount(amount); err != nil {
			return nil, err
		}
		if delta.Valid {
			if r.Delta, err = parseNullAmount(&delta.String); err != nil {
				return nil, err
			}
		}
		result = append(result, r)
	}
	return result, rows.Err()
}

func (l *LocalDB) queryWeekly(ctx context.Context, cycleID int64) ([]models.CycleLiftWeeklyRow, error) {
	rows, err := l.db.QueryContext(ctx,
		`SELECT week, lift, set_number, percentage, reps, amrap, amount, reps_achieved
		 FROM cycle_lift_weekly WHERE cycle_id = ?`, cycleID)
	if err != nil {
		return nil, fmt.Errorf("querying weekly sets: %w", err)
	}
	defer rows.Close()

	var result []models.CycleLiftWeeklyRow
	for rows.Next() {
		var (
			r            models.CycleLiftWeeklyRow
			lift, amount string
			achieved     sql.NullInt64
		)
		if err := rows.Scan(&r.Week, &lift, &r.SetNumber, &r.Percentage, &r.Reps,
			&r.AtLeast, &amount, &achieved); err != nil {
			return nil, fmt.Errorf("scanning weekly set: %w", err)
		}
		r.CycleID = cycleID
		r.Lift = cycle.Lift(lift)
		if r.Amount, err = parseAmount(amount); err != nil {
			return nil, err
		}
		if achieved.Valid {
			n := int(achieved.Int64)
			r.RepsAchieved = &n
		}
		result = append(result, r)
	}
	return result, rows.Err()
}

func (l *LocalDB) queryCycleIncrements(ctx context.Context, cycleID int64) ([]models.CycleLiftIncrementRow, error) {
	rows, err := l.db.QueryContext(ctx,
		`SELECT lift, amount, deload FROM cycle_lift_increments WHERE cycle_id = ?`, cycleID)
	if err != nil {
		return nil, fmt.Errorf("querying cycle increments: %w", err)
	}
	defer rows.Close()

	var result []models.CycleLiftIncrementRow
	for rows.Next() {
		var (
			lift   string
			amount sql.NullString
		)
		r := models.CycleLiftIncrementRow{CycleID: cycleID}
		if err := rows.Scan(&lift, &amount, &r.Deload); err != nil {
			return nil, fmt.Errorf("scanning cycle increment: %w", err)
		}
		r.Lift = cycle.Lift(lift)
		if amount.Valid {
			if r.Amount, err = parseNullAmount(&amount.String); err != nil {
				return nil, err
			}
		}
		result = append(result, r)
	}
	return result, rows.Err()
}

package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/claude/liftcycle/internal/cycle"
	"github.com/claude/liftcycle/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// LatestCycle returns the cycle with the highest index, or nil if none exist.
func (db *DB) LatestCycle(ctx context.Context) (*models.Cycle, error) {
	var row models.CycleRow
	err := db.Pool.QueryRow(ctx,
		`SELECT id, idx, start_date FROM cycles ORDER BY idx DESC LIMIT 1`,
	).Scan(&row.ID, &row.Index, &row.StartDate)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying latest cycle: %w", err)
	}
	return db.loadCycle(ctx, row)
}

// GetCycle returns the cycle with the given index, or nil if it does not exist.
func (db *DB) GetCycle(ctx context.Context, index int) (*models.Cycle, error) {
	var row models.CycleRow
	err := db.Pool.QueryRow(ctx,
		`SELECT id, idx, start_date FROM cycles WHERE idx = $1`, index,
	).Scan(&row.ID, &row.Index, &row.StartDate)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying cycle %d: %w", index, err)
	}
	return db.loadCycle(ctx, row)
}

// ListCycles returns every cycle's training maxes in index order.
func (db *DB) ListCycles(ctx context.Context) ([]models.CycleSummary, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT c.idx, c.start_date, m.lift, m.amount::text
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
// The cycles table is locked for the duration so concurrent saves from any
// process are serialized. Unless base is AnyBase, the latest stored index
// must equal base or ErrStaleBase is returned and nothing is written.
func (db *DB) SaveCycles(ctx context.Context, base int, batch []models.NewCycle) ([]*models.Cycle, error) {
	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	if _, err := tx.Exec(ctx, `LOCK TABLE cycles IN SHARE ROW EXCLUSIVE MODE`); err != nil {
		return nil, fmt.Errorf("locking cycles: %w", err)
	}
	var latest int
	if err := tx.QueryRow(ctx, `SELECT COALESCE(MAX(idx), 0) FROM cycles`).Scan(&latest); err != nil {
		return nil, fmt.Errorf("reading latest cycle index: %w", err)
	}
	if err := checkBase(latest, base); err != nil {
		return nil, err
	}

	start := time.Now().UTC()
	saved := make([]*models.Cycle, 0, len(batch))
	for i, nc := range batch {
		row := models.CycleRow{Index: latest + i + 1, StartDate: start}
		if err := tx.QueryRow(ctx,
			`INSERT INTO cycles (idx, start_date) VALUES ($1, $2) RETURNING id`,
			row.Index, row.StartDate).Scan(&row.ID); err != nil {
			return nil, fmt.Errorf("inserting cycle %d: %w", row.Index, err)
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
			if _, err := tx.Exec(ctx,
				`INSERT INTO cycle_lift_max (cycle_id, lift, amount, delta) VALUES ($1, $2, $3, $4)`,
				m.CycleID, string(m.Lift), amt, delta); err != nil {
				return nil, fmt.Errorf("inserting max for %s: %w", m.Lift, err)
			}
		}

		weekly := models.WeeklyRows(nc.Plan)
		for i := range weekly {
			weekly[i].CycleID = row.ID
		}
		if err := insertWeeklyPG(ctx, tx, weekly); err != nil {
			return nil, err
		}
		saved = append(saved, models.AssembleCycle(row, maxRows, weekly, nil))
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("committing cycles: %w", err)
	}
	return saved, nil
}

// SetCycleOverride records a manual increment or deload for lift on the
// cycle with the given index, replacing any earlier one.
func (db *DB) SetCycleOverride(ctx context.Context, index int, lift cycle.Lift, o cycle.Override) error {
	amount, _ := o.Amount()
	var amt *string
	if !o.IsDeload() {
		s, err := exactAmountText(amount)
		if err != nil {
			return fmt.Errorf("override for %s: %w", lift, err)
		}
		amt = &s
	}
	tag, err := db.Pool.Exec(ctx,
		`INSERT INTO cycle_lift_increments (cycle_id, lift, amount, deload)
		 SELECT id, $2, $3, $4 FROM cycles WHERE idx = $1
		 ON CONFLICT (cycle_id, lift) DO UPDATE SET amount = EXCLUDED.amount, deload = EXCLUDED.deload`,
		index, string(lift), amt, o.IsDeload())
	if err != nil {
		return fmt.Errorf("setting override for %s on cycle %d: %w", lift, index, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: cycle %d", cycle.ErrNotFound, index)
	}
	return nil
}

func (db *DB) loadCycle(ctx context.Context, row models.CycleRow) (*models.Cycle, error) {
	maxes, err := db.queryMaxes(ctx, row.ID)
	if err != nil {
		return nil, err
	}
	weekly, err := db.queryWeekly(ctx, row.ID)
	if err != nil {
		return nil, err
	}
	incs, err := db.queryCycleIncrements(ctx, row.ID)
	if err != nil {
		return nil, err
	}
	return models.AssembleCycle(row, maxes, weekly, incs), nil
}

func (db *DB) queryMaxes(ctx context.Context, cycleID int64) ([]models.CycleLiftMaxRow, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT lift, amount::text, delta::text FROM cycle_lift_max WHERE cycle_id = $1`, cycleID)
	if err != nil {
		return nil, fmt.Errorf("querying cycle maxes: %w", err)
	}
	defer rows.Close()

	var result []models.CycleLiftMaxRow
	for rows.Next() {
		var (
			lift, amount string
			delta        *string
		)
		if err := rows.Scan(&lift, &amount, &delta); err != nil {
			return nil, fmt.Errorf("scanning cycle max: %w", err)
		}
		r := models.CycleLiftMaxRow{CycleID: cycleID, Lift: cycle.Lift(lift)}
		if r.Amount, err = parseAmount(amount); err != nil {
			return nil, err
		}
		if r.Delta, err = parseNullAmount(delta); err != nil {
			return nil, err
		}
		result = append(result, r)
	}
	return result, rows.Err()
}

func (db *DB) queryCycleIncrements(ctx context.Context, cycleID int64) ([]models.CycleLiftIncrementRow, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT lift, amount::text, deload FROM cycle_lift_increments WHERE cycle_id = $1`, cycleID)
	if err != nil {
		return nil, fmt.Errorf("querying cycle increments: %w", err)
	}
	defer rows.Close()

	var result []models.CycleLiftIncrementRow
	for rows.Next() {
		var (
			lift   string
			amount *string
		)
		r := models.CycleLiftIncrementRow{CycleID: cycleID}
		if err := rows.Scan(&lift, &amount, &r.Deload); err != nil {
			return nil, fmt.Errorf("scanning cycle increment: %w", err)
		}
		r.Lift = cycle.Lift(lift)
		if r.Amount, err = parseNullAmount(amount); err != nil {
			return nil, err
		}
		result = append(result, r)
	}
	return result, rows.Err()
}

func maxRowsFor(cycleID int64, maxes cycle.TrainingMaxSet, deltas map[cycle.Lift]decimal.Decimal) []models.CycleLiftMaxRow {
	rows := make([]models.CycleLiftMaxRow, 0, len(maxes))
	for _, l := range maxes.Lifts() {
		r := models.CycleLiftMaxRow{CycleID: cycleID, Lift: l, Amount: maxes[l]}
		if d, ok := deltas[l]; ok {
			d := d
			r.Delta = &d
		}
		rows = append(rows, r)
	}
	return rows
}

package storage

import (
	"context"
	"fmt"

	"github.com/claude/liftcycle/internal/cycle"
	"github.com/claude/liftcycle/internal/models"
	"github.com/shopspring/decimal"
)

// Seed inserts the main lifts and their default increments. Existing rows
// are left untouched.
func (db *DB) Seed(ctx context.Context) error {
	for _, l := range cycle.AllLifts() {
		if _, err := db.Pool.Exec(ctx,
			`INSERT INTO lifts (name) VALUES ($1) ON CONFLICT DO NOTHING`, string(l)); err != nil {
			return fmt.Errorf("seeding lift %s: %w", l, err)
		}
		if _, err := db.Pool.Exec(ctx,
			`INSERT INTO lift_increments (lift, amount) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
			string(l), amountText(cycle.DefaultIncrement(l))); err != nil {
			return fmt.Errorf("seeding increment for %s: %w", l, err)
		}
	}
	return nil
}

// LiftIncrements returns the default progression step of every lift.
func (db *DB) LiftIncrements(ctx context.Context) (map[cycle.Lift]decimal.Decimal, error) {
	rows, err := db.Pool.Query(ctx, `SELECT lift, amount::text FROM lift_increments ORDER BY lift`)
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
func (db *DB) ListLiftIncrements(ctx context.Context) ([]models.LiftIncrementRow, error) {
	incs, err := db.LiftIncrements(ctx)
	if err != nil {
		return nil, err
	}
	return incrementRows(incs), nil
}

// SetLiftIncrement replaces the default step of a lift.
func (db *DB) SetLiftIncrement(ctx context.Context, lift cycle.Lift, amount decimal.Decimal) error {
	amt, err := exactAmountText(amount)
	if err != nil {
		return fmt.Errorf("increment for %s: %w", lift, err)
	}
	_, err = db.Pool.Exec(ctx,
		`INSERT INTO lift_increments (lift, amount) VALUES ($1, $2)
		 ON CONFLICT (lift) DO UPDATE SET amount = EXCLUDED.amount`,
		string(lift), amt)
	if err != nil {
		return fmt.Errorf("setting increment for %s: %w", lift, err)
	}
	return nil
}

func incrementRows(incs map[cycle.Lift]decimal.Decimal) []models.LiftIncrementRow {
	set := make(cycle.TrainingMaxSet, len(incs))
	for l, v := range incs {
		set[l] = v
	}
	rows := make([]models.LiftIncrementRow, 0, len(incs))
	for _, l := range set.Lifts() {
		rows = append(rows, models.LiftIncrementRow{Lift: l, Amount: incs[l]})
	}
	return rows
}

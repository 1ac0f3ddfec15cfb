package storage

import (
	"context"
	"fmt"
	"strings"

	"github.com/claude/liftcycle/internal/cycle"
	"github.com/claude/liftcycle/internal/models"
	"github.com/jackc/pgx/v5"
)

const weeklyColumns = 8

// insertWeeklyPG batch-inserts prescribed sets inside tx.
func insertWeeklyPG(ctx context.Context, tx pgx.Tx, rows []models.CycleLiftWeeklyRow) error {
	if len(rows) == 0 {
		return nil
	}

	query := `INSERT INTO cycle_lift_weekly (cycle_id, week, lift, set_number,
		percentage, reps, amrap, amount) VALUES `
	args := make([]any, 0, len(rows)*weeklyColumns)
	valueStrings := make([]string, 0, len(rows))

	for i, r := range rows {
		base := i * weeklyColumns
		valueStrings = append(valueStrings, fmt.Sprintf(
			"($%d,$%d,$%d,$%d,$%d,$%d,$%d,$%d)",
			base+1, base+2, base+3, base+4, base+5, base+6, base+7, base+8,
		))
		args = append(args, r.CycleID, r.Week, string(r.Lift), r.SetNumber,
			r.Percentage, r.Reps, r.AtLeast, amountText(r.Amount))
	}

	query += strings.Join(valueStrings, ",")

	if _, err := tx.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("inserting weekly sets: %w", err)
	}
	return nil
}

func (db *DB) queryWeekly(ctx context.Context, cycleID int64) ([]models.CycleLiftWeeklyRow, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT week, lift, set_number, percentage, reps, amrap, amount::text, reps_achieved
		 FROM cycle_lift_weekly
		 WHERE cycle_id = $1
		 ORDER BY week, set_number`,
		cycleID)
	if err != nil {
		return nil, fmt.Errorf("querying weekly sets: %w", err)
	}
	defer rows.Close()

	var result []models.CycleLiftWeeklyRow
	for rows.Next() {
		var (
			r      models.CycleLiftWeeklyRow
			lift   string
			amount string
		)
		if err := rows.Scan(&r.Week, &lift, &r.SetNumber, &r.Percentage, &r.Reps,
			&r.AtLeast, &amount, &r.RepsAchieved); err != nil {
			return nil, fmt.Errorf("scanning weekly set: %w", err)
		}
		r.CycleID = cycleID
		r.Lift = cycle.Lift(lift)
		if r.Amount, err = parseAmount(amount); err != nil {
			return nil, err
		}
		result = append(result, r)
	}
	return result, rows.Err()
}

// RecordReps stores the reps actually achieved for one prescribed set.
func (db *DB) RecordReps(ctx context.Context, index, week int, lift cycle.Lift, setNumber, reps int) error {
	if reps < 0 {
		return fmt.Errorf("%w: reps must not be negative, got %d", cycle.ErrValidation, reps)
	}
	tag, err := db.Pool.Exec(ctx,
		`UPDATE cycle_lift_weekly w SET reps_achieved = $5
		 FROM cycles c
		 WHERE w.cycle_id = c.id AND c.idx = $1 AND w.week = $2 AND w.lift = $3 AND w.set_number = $4`,
		index, week, string(lift), setNumber, reps)
	if err != nil {
		return fmt.Errorf("recording reps: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: cycle %d week %d %s set %d", cycle.ErrNotFound, index, week, lift, setNumber)
	}
	return nil
}

package models

import (
	"time"

	"github.com/claude/liftcycle/internal/cycle"
	"github.com/shopspring/decimal"
)

// CycleRow is a row of the cycles table.
type CycleRow struct {
	ID        int64
	Index     int
	StartDate time.Time
}

// CycleLiftMaxRow is a row of the cycle_lift_max table: the training max a
// cycle was generated from and the delta applied to reach it.
type CycleLiftMaxRow struct {
	CycleID int64
	Lift    cycle.Lift
	Amount  decimal.Decimal
	Delta   *decimal.Decimal
}

// CycleLiftWeeklyRow is a row of the cycle_lift_weekly table.
type CycleLiftWeeklyRow struct {
	CycleID      int64           `json:"-"`
	Week         int             `json:"week"`
	Lift         cycle.Lift      `json:"lift"`
	SetNumber    int             `json:"set"`
	Percentage   int             `json:"percentile"`
	Reps         int             `json:"reps"`
	AtLeast      bool            `json:"at_least"`
	Amount       decimal.Decimal `json:"weight"`
	RepsAchieved *int            `json:"reps_achieved"`
}

// CycleLiftIncrementRow is a row of the cycle_lift_increments table. Amount
// is nil when Deload is set.
type CycleLiftIncrementRow struct {
	CycleID int64
	Lift    cycle.Lift
	Amount  *decimal.Decimal
	Deload  bool
}

// LiftIncrementRow is a row of the lift_increments table.
type LiftIncrementRow struct {
	Lift   cycle.Lift      `json:"lift"`
	Amount decimal.Decimal `json:"amount"`
}

package models

import (
	"fmt"
	"sort"
	"time"

	"github.com/claude/liftcycle/internal/cycle"
	"github.com/shopspring/decimal"
)

// Cycle is a persisted training cycle with everything recorded against it.
type Cycle struct {
	Index         int                            `json:"index"`
	StartDate     time.Time                      `json:"start_date"`
	TrainingMaxes cycle.TrainingMaxSet           `json:"training_maxes"`
	Deltas        map[cycle.Lift]decimal.Decimal `json:"deltas,omitempty"`
	Weekly        []CycleLiftWeeklyRow           `json:"weekly"`
	Overrides     map[cycle.Lift]cycle.Override  `json:"overrides,omitempty"`
}

// CycleSummary is a cycle without its weekly rows.
type CycleSummary struct {
	Index         int                  `json:"index"`
	StartDate     time.Time            `json:"start_date"`
	TrainingMaxes cycle.TrainingMaxSet `json:"training_maxes"`
}

// NewCycle is a generated plan waiting to be stored, with the deltas that
// produced its maxes. Deltas is nil for a cycle that starts from scratch.
type NewCycle struct {
	Plan   cycle.CyclePlan
	Deltas map[cycle.Lift]decimal.Decimal
}

// AssembleCycle builds a Cycle from its table rows.
func AssembleCycle(row CycleRow, maxes []CycleLiftMaxRow, weekly []CycleLiftWeeklyRow, incs []CycleLiftIncrementRow) *Cycle {
	c := &Cycle{
		Index:         row.Index,
		StartDate:     row.StartDate,
		TrainingMaxes: make(cycle.TrainingMaxSet, len(maxes)),
		Weekly:        weekly,
	}
	for _, m := range maxes {
		c.TrainingMaxes[m.Lift] = m.Amount
		if m.Delta != nil {
			if c.Deltas == nil {
				c.Deltas = make(map[cycle.Lift]decimal.Decimal)
			}
			c.Deltas[m.Lift] = *m.Delta
		}
	}
	for _, inc := range incs {
		if c.Overrides == nil {
			c.Overrides = make(map[cycle.Lift]cycle.Override)
		}
		switch {
		case inc.Deload:
			c.Overrides[inc.Lift] = cycle.Deload()
		case inc.Amount != nil:
			c.Overrides[inc.Lift] = cycle.Increment(*inc.Amount)
		}
	}
	SortWeekly(c.Weekly)
	return c
}

// SortWeekly orders rows by week, canonical lift order, then set number.
func SortWeekly(rows []CycleLiftWeeklyRow) {
	rank := make(map[cycle.Lift]int)
	for i, l := range cycle.AllLifts() {
		rank[l] = i + 1
	}
	liftLess := func(a, b cycle.Lift) bool {
		ra, rb := rank[a], rank[b]
		if ra == 0 && rb == 0 {
			return a < b
		}
		if ra == 0 || rb == 0 {
			return rb == 0
		}
		return ra < rb
	}
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if a.Week != b.Week {
			return a.Week < b.Week
		}
		if a.Lift != b.Lift {
			return liftLess(a.Lift, b.Lift)
		}
		return a.SetNumber < b.SetNumber
	})
}

// WeeklyRows flattens a plan into cycle_lift_weekly rows. Set numbers are
// 1-based.
func WeeklyRows(plan cycle.CyclePlan) []CycleLiftWeeklyRow {
	rows := make([]CycleLiftWeeklyRow, 0, plan.SetCount())
	for _, wp := range plan.Weeks {
		for _, ls := range wp.Lifts {
			for i, s := range ls.Sets {
				rows = append(rows, CycleLiftWeeklyRow{
					Week:       wp.Week,
					Lift:       ls.Lift,
					SetNumber:  i + 1,
					Percentage: s.Percentile,
					Reps:       s.Reps.Reps,
					AtLeast:    s.Reps.AtLeast,
					Amount:     s.Weight,
				})
			}
		}
	}
	return rows
}

// Plan rebuilds the CyclePlan from the stored weekly rows.
func (c *Cycle) Plan() (cycle.CyclePlan, error) {
	rows := append([]CycleLiftWeeklyRow(nil), c.Weekly...)
	SortWeekly(rows)

	plan := cycle.CyclePlan{TrainingMaxes: c.TrainingMaxes.Clone()}
	for _, r := range rows {
		rs := cycle.RepScheme{Reps: r.Reps, AtLeast: r.AtLeast}
		if err := rs.Validate(); err != nil {
			return cycle.CyclePlan{}, fmt.Errorf("cycle %d week %d %s: %w", c.Index, r.Week, r.Lift, err)
		}
		if n := len(plan.Weeks); n == 0 || plan.Weeks[n-1].Week != r.Week {
			plan.Weeks = append(plan.Weeks, cycle.WeekPlan{Week: r.Week})
		}
		wp := &plan.Weeks[len(plan.Weeks)-1]
		if n := len(wp.Lifts); n == 0 || wp.Lifts[n-1].Lift != r.Lift {
			wp.Lifts = append(wp.Lifts, cycle.LiftSets{Lift: r.Lift})
		}
		ls := &wp.Lifts[len(wp.Lifts)-1]
		ls.Sets = append(ls.Sets, cycle.SetPrescription{
			Percentile: r.Percentage,
			Reps:       rs,
			Weight:     r.Amount,
		})
	}
	return plan, nil
}

// Summary drops the weekly rows.
func (c *Cycle) Summary() CycleSummary {
	return CycleSummary{Index: c.Index, StartDate: c.StartDate, TrainingMaxes: c.TrainingMaxes}
}

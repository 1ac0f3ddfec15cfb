package cycle

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// SetPrescription is one computed set of a cycle.
type SetPrescription struct {
	Percentile int             `json:"percentile"`
	Reps       RepScheme       `json:"reps"`
	Weight     decimal.Decimal `json:"weight"`
}

// LiftSets holds the prescribed sets of one lift within a week.
type LiftSets struct {
	Lift Lift              `json:"lift"`
	Sets []SetPrescription `json:"sets"`
}

// WeekPlan is one week of a cycle. Week is 1-based.
type WeekPlan struct {
	Week  int        `json:"week"`
	Lifts []LiftSets `json:"lifts"`
}

// Sets returns the sets prescribed for l, or nil if the lift is absent.
func (w WeekPlan) Sets(l Lift) []SetPrescription {
	for _, ls := range w.Lifts {
		if ls.Lift == l {
			return ls.Sets
		}
	}
	return nil
}

// CyclePlan is the full prescription generated from a TrainingMaxSet.
type CyclePlan struct {
	TrainingMaxes TrainingMaxSet `json:"training_maxes"`
	Weeks         []WeekPlan     `json:"weeks"`
}

// Week returns the plan for week n (1-based).
func (p CyclePlan) Week(n int) (WeekPlan, bool) {
	for _, w := range p.Weeks {
		if w.Week == n {
			return w, true
		}
	}
	return WeekPlan{}, false
}

// SetCount returns the total number of prescribed sets.
func (p CyclePlan) SetCount() int {
	n := 0
	for _, w := range p.Weeks {
		for _, ls := range w.Lifts {
			n += len(ls.Sets)
		}
	}
	return n
}

// PrescribedWeight computes percentile% of trainingMax, rounds it to cents
// and then to the nearest plate.
func PrescribedWeight(percentile int, trainingMax decimal.Decimal) decimal.Decimal {
	raw := decimal.NewFromInt(int64(percentile)).Mul(trainingMax).Shift(-2)
	return RoundToPlate(roundCents(raw))
}

// Generate builds the four-week plan for maxes. The same maxes always yield
// the same plan.
func Generate(maxes TrainingMaxSet) (CyclePlan, error) {
	if err := maxes.Validate(); err != nil {
		return CyclePlan{}, err
	}

	scheme := WeeklyScheme()
	lifts := maxes.Lifts()
	plan := CyclePlan{
		TrainingMaxes: maxes.Clone(),
		Weeks:         make([]WeekPlan, 0, Weeks),
	}

	for wi, week := range scheme {
		wp := WeekPlan{Week: wi + 1, Lifts: make([]LiftSets, 0, len(lifts))}
		for _, l := range lifts {
			sets := make([]SetPrescription, 0, SetsPerWeek)
			for _, ip := range week {
				sets = append(sets, SetPrescription{
					Percentile: ip.Percentile,
					Reps:       ip.Reps,
					Weight:     PrescribedWeight(ip.Percentile, maxes[l]),
				})
			}
			wp.Lifts = append(wp.Lifts, LiftSets{Lift: l, Sets: sets})
		}
		plan.Weeks = append(plan.Weeks, wp)
	}

	return plan, nil
}

// CheckComplete verifies every lift of the plan has SetsPerWeek valid sets in
// each week. A missing final week is tolerated and reported through
// finalWeekMissing; any other gap is an ErrValidation.
func (p CyclePlan) CheckComplete() (finalWeekMissing bool, err error) {
	if err := p.TrainingMaxes.Validate(); err != nil {
		return false, err
	}
	for n := 1; n <= Weeks; n++ {
		wp, ok := p.Week(n)
		if !ok {
			if n == Weeks {
				finalWeekMissing = true
				continue
			}
			return false, fmt.Errorf("%w: data for week %d is missing", ErrValidation, n)
		}
		for _, l := range p.TrainingMaxes.Lifts() {
			sets := wp.Sets(l)
			if len(sets) != SetsPerWeek {
				return false, fmt.Errorf("%w: week %d has %d sets for %s, want %d",
					ErrValidation, n, len(sets), l, SetsPerWeek)
			}
			for _, s := range sets {
				ip := IntensityPrescription{Percentile: s.Percentile, Reps: s.Reps}
				if err := ip.Validate(); err != nil {
					return false, fmt.Errorf("week %d %s: %w", n, l, err)
				}
			}
		}
	}
	return finalWeekMissing, nil
}

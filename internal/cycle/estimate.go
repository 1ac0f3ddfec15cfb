package cycle

import (
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	repFactor         = decimal.RequireFromString("0.033")
	trainingMaxFactor = decimal.RequireFromString("0.9")
)

// Performance is a single observed set: weight lifted for a number of reps.
type Performance struct {
	Weight decimal.Decimal `json:"weight"`
	Reps   int             `json:"reps"`
}

// EstimateOneRepMax returns weight*reps*0.033 + weight rounded to cents.
func EstimateOneRepMax(weight decimal.Decimal, reps int) (decimal.Decimal, error) {
	if !weight.IsPositive() {
		return decimal.Zero, fmt.Errorf("%w: weight must be positive, got %s", ErrValidation, weight)
	}
	if reps < 1 {
		return decimal.Zero, fmt.Errorf("%w: reps must be positive, got %d", ErrValidation, reps)
	}
	est := weight.Mul(decimal.NewFromInt(int64(reps))).Mul(repFactor).Add(weight)
	return roundCents(est), nil
}

// TrainingMax returns 90% of oneRepMax rounded to cents.
func TrainingMax(oneRepMax decimal.Decimal) (decimal.Decimal, error) {
	if !oneRepMax.IsPositive() {
		return decimal.Zero, fmt.Errorf("%w: one-rep max must be positive, got %s", ErrValidation, oneRepMax)
	}
	return roundCents(oneRepMax.Mul(trainingMaxFactor)), nil
}

// TrainingMaxes estimates a training max for every lift in perfs.
func TrainingMaxes(perfs map[Lift]Performance) (TrainingMaxSet, error) {
	if len(perfs) == 0 {
		return nil, fmt.Errorf("%w: no performances", ErrValidation)
	}
	out := make(TrainingMaxSet, len(perfs))
	for l, p := range perfs {
		orm, err := EstimateOneRepMax(p.Weight, p.Reps)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", l, err)
		}
		tm, err := TrainingMax(orm)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", l, err)
		}
		out[l] = tm
	}
	return out, nil
}

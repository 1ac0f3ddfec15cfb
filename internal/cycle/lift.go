package cycle

import (
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// Lift names one of the main barbell lifts.
type Lift string

const (
	Press      Lift = "Press"
	Deadlift   Lift = "Deadlift"
	BenchPress Lift = "Bench press"
	Squat      Lift = "Squat"
)

// AllLifts returns the main lifts in their canonical order.
func AllLifts() []Lift {
	return []Lift{Press, Deadlift, BenchPress, Squat}
}

// ParseLift matches name against the known lifts, ignoring case and
// surrounding whitespace.
func ParseLift(name string) (Lift, error) {
	trimmed := strings.TrimSpace(name)
	for _, l := range AllLifts() {
		if strings.EqualFold(string(l), trimmed) {
			return l, nil
		}
	}
	return "", fmt.Errorf("%w: unknown lift %q", ErrValidation, name)
}

// DefaultIncrement is the seeded per-cycle step for a lift: 2.5 for
// pressing movements, 5 for everything else.
func DefaultIncrement(l Lift) decimal.Decimal {
	if strings.Contains(strings.ToLower(string(l)), "press") {
		return decimal.RequireFromString("2.5")
	}
	return decimal.NewFromInt(5)
}

// TrainingMaxSet maps each lift to its training max.
type TrainingMaxSet map[Lift]decimal.Decimal

// Lifts returns the lifts in the set, known lifts first in canonical order,
// then any others alphabetically.
func (s TrainingMaxSet) Lifts() []Lift {
	lifts := make([]Lift, 0, len(s))
	seen := make(map[Lift]bool, len(s))
	for _, l := range AllLifts() {
		if _, ok := s[l]; ok {
			lifts = append(lifts, l)
			seen[l] = true
		}
	}
	var rest []Lift
	for l := range s {
		if !seen[l] {
			rest = append(rest, l)
		}
	}
	sort.Slice(rest, func(i, j int) bool { return rest[i] < rest[j] })
	return append(lifts, rest...)
}

// Validate reports an error if the set is empty or holds a max that is not
// positive or has more than two decimal places.
func (s TrainingMaxSet) Validate() error {
	if len(s) == 0 {
		return fmt.Errorf("%w: no training maxes", ErrValidation)
	}
	for _, l := range s.Lifts() {
		if !s[l].IsPositive() {
			return fmt.Errorf("%w: training max for %s must be positive, got %s", ErrValidation, l, s[l])
		}
		if err := CheckScale(s[l]); err != nil {
			return fmt.Errorf("training max for %s: %w", l, err)
		}
	}
	return nil
}

// CheckScale rejects amounts with more than two decimal places, which
// storage could not hold exactly.
func CheckScale(d decimal.Decimal) error {
	if !d.Equal(d.Truncate(2)) {
		return fmt.Errorf("%w: %s has more than 2 decimal places", ErrValidation, d)
	}
	return nil
}

// Clone returns a copy of the set.
func (s TrainingMaxSet) Clone() TrainingMaxSet {
	out := make(TrainingMaxSet, len(s))
	for l, v := range s {
		out[l] = v
	}
	return out
}

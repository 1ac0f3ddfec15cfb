package cycle

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

const deloadMarker = "deload"

// Override replaces a lift's default increment for one progression step.
// It is either a manual increment or a deload; build one with Increment or
// Deload.
type Override struct {
	deload bool
	amount decimal.Decimal
}

// Increment overrides the default step with amount.
func Increment(amount decimal.Decimal) Override {
	return Override{amount: amount}
}

// Deload resets the lift to 90% of its previous training max.
func Deload() Override {
	return Override{deload: true}
}

// IsDeload reports whether o is a deload.
func (o Override) IsDeload() bool { return o.deload }

// Amount returns the manual increment; ok is false for a deload.
func (o Override) Amount() (amount decimal.Decimal, ok bool) {
	if o.deload {
		return decimal.Zero, false
	}
	return o.amount, true
}

func (o Override) String() string {
	if o.deload {
		return deloadMarker
	}
	return o.amount.String()
}

// ParseOverride accepts "deload" (any case) or a decimal increment.
func ParseOverride(s string) (Override, error) {
	raw := strings.TrimSpace(s)
	if strings.EqualFold(raw, deloadMarker) {
		return Deload(), nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return Override{}, fmt.Errorf("%w: override %q is neither %q nor a number", ErrValidation, s, deloadMarker)
	}
	if err := CheckScale(d); err != nil {
		return Override{}, fmt.Errorf("override: %w", err)
	}
	return Increment(d), nil
}

// MarshalJSON encodes a deload as the string "deload" and an increment as a
// JSON number.
func (o Override) MarshalJSON() ([]byte, error) {
	if o.deload {
		return json.Marshal(deloadMarker)
	}
	return []byte(o.amount.String()), nil
}

// UnmarshalJSON accepts "deload", a JSON number or a numeric string.
func (o *Override) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		s = string(b)
	}
	parsed, err := ParseOverride(s)
	if err != nil {
		return err
	}
	*o = parsed
	return nil
}

// Advance computes the next cycle's training maxes from previous. For each
// lift a deload override sets the max to TrainingMax(previous), a manual
// increment is added as is, and otherwise the lift's default increment
// applies. The returned deltas hold new minus previous per lift.
//
// A lift with neither an override nor a default increment fails with
// ErrConfiguration.
func Advance(previous TrainingMaxSet, overrides map[Lift]Override, defaults map[Lift]decimal.Decimal) (TrainingMaxSet, map[Lift]decimal.Decimal, error) {
	if err := previous.Validate(); err != nil {
		return nil, nil, err
	}

	next := make(TrainingMaxSet, len(previous))
	deltas := make(map[Lift]decimal.Decimal, len(previous))

	for _, l := range previous.Lifts() {
		prev := previous[l]
		var newMax, delta decimal.Decimal

		if o, ok := overrides[l]; ok {
			if o.IsDeload() {
				tm, err := TrainingMax(prev)
				if err != nil {
					return nil, nil, fmt.Errorf("%s: %w", l, err)
				}
				newMax, delta = tm, tm.Sub(prev)
			} else {
				amount, _ := o.Amount()
				newMax, delta = prev.Add(amount), amount
			}
		} else {
			step, ok := defaults[l]
			if !ok {
				return nil, nil, fmt.Errorf("%w: no default increment for %s", ErrConfiguration, l)
			}
			newMax, delta = prev.Add(step), step
		}

		if !newMax.IsPositive() {
			return nil, nil, fmt.Errorf("%w: %s would drop to %s", ErrValidation, l, newMax)
		}
		next[l] = newMax
		deltas[l] = delta
	}

	return next, deltas, nil
}

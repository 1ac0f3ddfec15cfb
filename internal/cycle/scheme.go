package cycle

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	// Weeks is the length of a cycle.
	Weeks = 4
	// SetsPerWeek is the number of prescribed sets per lift per week.
	SetsPerWeek = 3
	// MaxReps bounds the rep count of a prescribed set.
	MaxReps = 5
)

// CheckSetRef verifies week and set address a prescribed set and that reps
// achieved is not negative.
func CheckSetRef(week, set, reps int) error {
	if week < 1 || week > Weeks || set < 1 || set > SetsPerWeek || reps < 0 {
		return fmt.Errorf("%w: week %d, set %d, reps %d out of range", ErrValidation, week, set, reps)
	}
	return nil
}

// RepScheme is a prescribed rep count. AtLeast marks an "or more" set,
// written with a trailing plus ("5+").
type RepScheme struct {
	Reps    int
	AtLeast bool
}

// ParseRepScheme parses "N" or "N+" with N between 1 and MaxReps.
func ParseRepScheme(s string) (RepScheme, error) {
	raw := strings.TrimSpace(s)
	rs := RepScheme{}
	if strings.HasSuffix(raw, "+") {
		rs.AtLeast = true
		raw = strings.TrimSuffix(raw, "+")
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return RepScheme{}, fmt.Errorf("%w: malformed rep scheme %q", ErrValidation, s)
	}
	rs.Reps = n
	if err := rs.Validate(); err != nil {
		return RepScheme{}, err
	}
	return rs, nil
}

// Validate checks the rep count is within [1, MaxReps].
func (r RepScheme) Validate() error {
	if r.Reps < 1 || r.Reps > MaxReps {
		return fmt.Errorf("%w: rep count %d outside [1,%d]", ErrValidation, r.Reps, MaxReps)
	}
	return nil
}

func (r RepScheme) String() string {
	if r.AtLeast {
		return strconv.Itoa(r.Reps) + "+"
	}
	return strconv.Itoa(r.Reps)
}

// MarshalText encodes the scheme in its "5+" form.
func (r RepScheme) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// UnmarshalText parses the "5+" form.
func (r *RepScheme) UnmarshalText(b []byte) error {
	parsed, err := ParseRepScheme(string(b))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// IntensityPrescription is one set of a week's scheme.
type IntensityPrescription struct {
	Percentile int       `json:"percentile"`
	Reps       RepScheme `json:"reps"`
}

// Validate checks the percentile is within [1, 100] and the reps are valid.
func (p IntensityPrescription) Validate() error {
	if p.Percentile < 1 || p.Percentile > 100 {
		return fmt.Errorf("%w: percentile %d outside [1,100]", ErrValidation, p.Percentile)
	}
	return p.Reps.Validate()
}

// Scheme is the full four-week table of intensity prescriptions.
type Scheme [Weeks][SetsPerWeek]IntensityPrescription

var weeklyScheme = Scheme{
	{{65, RepScheme{5, false}}, {75, RepScheme{5, false}}, {85, RepScheme{5, true}}},
	{{70, RepScheme{3, false}}, {80, RepScheme{3, false}}, {90, RepScheme{3, true}}},
	{{75, RepScheme{5, false}}, {85, RepScheme{3, false}}, {95, RepScheme{1, true}}},
	{{40, RepScheme{5, false}}, {50, RepScheme{5, false}}, {60, RepScheme{5, true}}},
}

// WeeklyScheme returns the 5/3/1 table. Index 0 is week 1. The result is a
// copy; changing it does not affect generated cycles.
func WeeklyScheme() Scheme {
	return weeklyScheme
}

// SchemeWeek is one week of the scheme, numbered from 1.
type SchemeWeek struct {
	Week int                     `json:"week"`
	Sets []IntensityPrescription `json:"sets"`
}

// Numbered lists the scheme week by week.
func (s Scheme) Numbered() []SchemeWeek {
	weeks := make([]SchemeWeek, 0, len(s))
	for i := range s {
		weeks = append(weeks, SchemeWeek{Week: i + 1, Sets: append([]IntensityPrescription(nil), s[i][:]...)})
	}
	return weeks
}

package prompt

import (
	"errors"
	"strings"
	"testing"

	"github.com/claude/liftcycle/internal/cycle"
	"github.com/shopspring/decimal"
)

// TestPerformances verifies answers are read per lift and invalid answers
// are asked again.
func TestPerformances(t *testing.T) {
	in := strings.NewReader("100\n5\nabc\n-3\n62.5\nfive\n0\n3\n")
	var out strings.Builder
	r := NewReader(in, &out)

	perfs, err := r.Performances([]cycle.Lift{cycle.Squat, cycle.Press})
	if err != nil {
		t.Fatal(err)
	}
	if p := perfs[cycle.Squat]; !p.Weight.Equal(decimal.NewFromInt(100)) || p.Reps != 5 {
		t.Errorf("squat = %+v", p)
	}
	if p := perfs[cycle.Press]; !p.Weight.Equal(decimal.RequireFromString("62.5")) || p.Reps != 3 {
		t.Errorf("press = %+v", p)
	}

	text := out.String()
	for _, want := range []string{"What weight [Squat]?: ", "What weight [Press]?: ", "How many reps?: ", "valid positive number", "whole number"} {
		if !strings.Contains(text, want) {
			t.Errorf("output missing %q:\n%s", want, text)
		}
	}
}

func TestPerformancesEOF(t *testing.T) {
	r := NewReader(strings.NewReader("100\n"), &strings.Builder{})
	_, err := r.Performances([]cycle.Lift{cycle.Squat})
	if !errors.Is(err, ErrNoInput) {
		t.Errorf("err = %v, want ErrNoInput", err)
	}
}

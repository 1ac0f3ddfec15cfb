package cycle

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func TestAdvanceDefaultIncrement(t *testing.T) {
	next, deltas, err := Advance(
		TrainingMaxSet{Squat: dec("300")},
		nil,
		map[Lift]decimal.Decimal{Squat: dec("5")},
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !next[Squat].Equal(dec("305")) {
		t.Errorf("Squat = %s, want 305", next[Squat])
	}
	if !deltas[Squat].Equal(dec("5")) {
		t.Errorf("delta = %s, want 5", deltas[Squat])
	}
}

// TestAdvanceDeload verifies a deload reapplies the 90% training max factor
// to the previous max.
func TestAdvanceDeload(t *testing.T) {
	next, deltas, err := Advance(
		TrainingMaxSet{Press: dec("100")},
		map[Lift]Override{Press: Deload()},
		map[Lift]decimal.Decimal{Press: dec("2.5")},
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !next[Press].Equal(dec("90.00")) {
		t.Errorf("Press = %s, want 90.00", next[Press])
	}
	if !deltas[Press].Equal(dec("-10.00")) {
		t.Errorf("delta = %s, want -10.00", deltas[Press])
	}
}

// TestAdvanceMixed exercises all three branches in one call.
func TestAdvanceMixed(t *testing.T) {
	prev := TrainingMaxSet{
		Press:      dec("57.6"),
		Deadlift:   dec("180"),
		BenchPress: dec("85.05"),
		Squat:      dec("140"),
	}
	overrides := map[Lift]Override{
		Deadlift:   Increment(dec("10")),
		BenchPress: Deload(),
	}
	defaults := map[Lift]decimal.Decimal{
		Press: dec("2.5"), Deadlift: dec("5"), BenchPress: dec("2.5"), Squat: dec("5"),
	}

	next, deltas, err := Advance(prev, overrides, defaults)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := map[Lift][2]string{
		Press:      {"60.1", "2.5"},
		Deadlift:   {"190", "10"},
		BenchPress: {"76.54", "-8.51"}, // 85.05*0.9 = 76.545, half to even
		Squat:      {"145", "5"},
	}

	for l, w := range want {
		if !next[l].Equal(dec(w[0])) {
			t.Errorf("%s max = %s, want %s", l, next[l], w[0])
		}
		if !deltas[l].Equal(dec(w[1])) {
			t.Errorf("%s delta = %s, want %s", l, deltas[l], w[1])
		}
	}
	if !prev[Press].Equal(dec("57.6")) {
		t.Error("Advance mutated its input")
	}
}

// TestAdvanceMissingDefault verifies a lift without an override or default
// increment is a configuration error.
func TestAdvanceMissingDefault(t *testing.T) {
	_, _, err := Advance(
		TrainingMaxSet{Press: dec("100"), Squat: dec("200")},
		nil,
		map[Lift]decimal.Decimal{Press: dec("2.5")},
	)
	if !errors.Is(err, ErrConfiguration) {
		t.Errorf("err = %v, want ErrConfiguration", err)
	}

	// An override covers the missing default.
	_, _, err = Advance(
		TrainingMaxSet{Press: dec("100"), Squat: dec("200")},
		map[Lift]Override{Squat: Increment(dec("10"))},
		map[Lift]decimal.Decimal{Press: dec("2.5")},
	)
	if err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestAdvanceRejects(t *testing.T) {
	if _, _, err := Advance(TrainingMaxSet{}, nil, nil); !errors.Is(err, ErrValidation) {
		t.Errorf("empty: err = %v, want ErrValidation", err)
	}
	_, _, err := Advance(
		TrainingMaxSet{Press: dec("10")},
		map[Lift]Override{Press: Increment(dec("-10"))},
		nil,
	)
	if !errors.Is(err, ErrValidation) {
		t.Errorf("drop to zero: err = %v, want ErrValidation", err)
	}
}

func TestParseOverride(t *testing.T) {
	o, err := ParseOverride("Deload")
	if err != nil || !o.IsDeload() {
		t.Errorf("ParseOverride(Deload) = %v, %v", o, err)
	}

	o, err = ParseOverride("7.5")
	if err != nil {
		t.Fatal(err)
	}
	if amt, ok := o.Amount(); !ok || !amt.Equal(dec("7.5")) {
		t.Errorf("amount = %s, %v; want 7.5, true", amt, ok)
	}

	if _, err := ParseOverride("skip"); !errors.Is(err, ErrValidation) {
		t.Errorf("err = %v, want ErrValidation", err)
	}
	if _, err := ParseOverride("2.555"); !errors.Is(err, ErrValidation) {
		t.Errorf("three decimals: err = %v, want ErrValidation", err)
	}
	var o2 Override
	if err := json.Unmarshal([]byte(`2.555`), &o2); !errors.Is(err, ErrValidation) {
		t.Errorf("three decimals in JSON: err = %v, want ErrValidation", err)
	}
}

// TestOverrideJSON verifies the mixed string/number encoding of overrides.
func TestOverrideJSON(t *testing.T) {
	in := map[Lift]Override{Press: Deload(), Squat: Increment(dec("10"))}
	b, err := json.Marshal(in)
	if err != nil {
		t.Fatal(err)
	}
	if got, want := string(b), `{"Press":"deload","Squat":10}`; got != want {
		t.Errorf("json = %s, want %s", got, want)
	}

	var out map[Lift]Override
	if err := json.Unmarshal([]byte(`{"Press":"deload","Squat":12.5,"Deadlift":"5"}`), &out); err != nil {
		t.Fatal(err)
	}
	if !out[Press].IsDeload() {
		t.Error("Press should be a deload")
	}
	if amt, _ := out[Squat].Amount(); !amt.Equal(dec("12.5")) {
		t.Errorf("Squat = %s, want 12.5", amt)
	}
	if amt, _ := out[Deadlift].Amount(); !amt.Equal(dec("5")) {
		t.Errorf("Deadlift = %s, want 5", amt)
	}
}

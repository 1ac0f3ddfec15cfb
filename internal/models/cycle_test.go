package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/claude/liftcycle/internal/cycle"
	"github.com/shopspring/decimal"
)

// TestPlanRebuild verifies a plan flattened to weekly rows and reassembled
// from them matches the generated plan.
func TestPlanRebuild(t *testing.T) {
	maxes := cycle.TrainingMaxSet{
		cycle.Squat:      decimal.RequireFromString("140"),
		cycle.Press:      decimal.RequireFromString("57.5"),
		cycle.BenchPress: decimal.RequireFromString("82.35"),
	}
	plan, err := cycle.Generate(maxes)
	if err != nil {
		t.Fatal(err)
	}

	rows := WeeklyRows(plan)
	if len(rows) != 36 {
		t.Fatalf("rows = %d, want 36", len(rows))
	}
	// Shuffle order the way a database might return it.
	for i, j := 0, len(rows)-1; i < j; i, j = i+1, j-1 {
		rows[i], rows[j] = rows[j], rows[i]
	}

	var maxRows []CycleLiftMaxRow
	for l, v := range maxes {
		maxRows = append(maxRows, CycleLiftMaxRow{Lift: l, Amount: v})
	}
	c := AssembleCycle(CycleRow{ID: 1, Index: 3, StartDate: time.Now()}, maxRows, rows, nil)

	rebuilt, err := c.Plan()
	if err != nil {
		t.Fatal(err)
	}
	a, _ := json.Marshal(plan)
	b, _ := json.Marshal(rebuilt)
	if string(a) != string(b) {
		t.Errorf("rebuilt plan differs:\n%s\n%s", a, b)
	}
}

// TestAssembleCycleOverrides verifies deload and increment rows become
// overrides and deltas are carried.
func TestAssembleCycleOverrides(t *testing.T) {
	five := decimal.NewFromInt(5)
	minus := decimal.RequireFromString("-10")
	c := AssembleCycle(
		CycleRow{ID: 7, Index: 2},
		[]CycleLiftMaxRow{
			{Lift: cycle.Press, Amount: decimal.NewFromInt(90), Delta: &minus},
			{Lift: cycle.Squat, Amount: decimal.NewFromInt(200)},
		},
		nil,
		[]CycleLiftIncrementRow{
			{Lift: cycle.Press, Deload: true},
			{Lift: cycle.Squat, Amount: &five},
		},
	)

	if !c.Overrides[cycle.Press].IsDeload() {
		t.Error("Press override should be a deload")
	}
	if amt, ok := c.Overrides[cycle.Squat].Amount(); !ok || !amt.Equal(five) {
		t.Errorf("Squat override = %s, want 5", amt)
	}
	if !c.Deltas[cycle.Press].Equal(minus) {
		t.Errorf("Press delta = %s, want -10", c.Deltas[cycle.Press])
	}
	if _, ok := c.Deltas[cycle.Squat]; ok {
		t.Error("Squat has no recorded delta")
	}
}

func TestSortWeeklyUnknownLiftsLast(t *testing.T) {
	rows := []CycleLiftWeeklyRow{
		{Week: 1, Lift: "Row", SetNumber: 1},
		{Week: 1, Lift: cycle.Squat, SetNumber: 2},
		{Week: 1, Lift: cycle.Squat, SetNumber: 1},
		{Week: 1, Lift: cycle.Press, SetNumber: 1},
		{Week: 1, Lift: "Curl", SetNumber: 1},
	}
	SortWeekly(rows)
	want := []string{"Press/1", "Squat/1", "Squat/2", "Curl/1", "Row/1"}
	for i, r := range rows {
		got := string(r.Lift) + "/" + string(rune('0'+r.SetNumber))
		if got != want[i] {
			t.Errorf("row %d = %s, want %s", i, got, want[i])
		}
	}
}

package cycle

import (
	"errors"
	"testing"
)

func TestEstimateOneRepMax(t *testing.T) {
	tests := []struct {
		name   string
		weight string
		reps   int
		want   string
	}{
		{"100x5", "100", 5, "116.50"},
		{"single", "140", 1, "144.62"}, // 140*0.033 = 4.62
		{"80x8", "80", 8, "101.12"},    // 80*8*0.033 = 21.12
		{"cents", "62.5", 3, "68.69"},  // 62.5*3*0.033 = 6.1875
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := EstimateOneRepMax(dec(tt.weight), tt.reps)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !got.Equal(dec(tt.want)) {
				t.Errorf("EstimateOneRepMax(%s, %d) = %s, want %s", tt.weight, tt.reps, got, tt.want)
			}
		})
	}
}

// TestEstimateOneRepMaxRejects verifies non-positive inputs fail validation.
func TestEstimateOneRepMaxRejects(t *testing.T) {
	if _, err := EstimateOneRepMax(dec("0"), 5); !errors.Is(err, ErrValidation) {
		t.Errorf("zero weight: err = %v, want ErrValidation", err)
	}
	if _, err := EstimateOneRepMax(dec("-10"), 5); !errors.Is(err, ErrValidation) {
		t.Errorf("negative weight: err = %v, want ErrValidation", err)
	}
	if _, err := EstimateOneRepMax(dec("100"), 0); !errors.Is(err, ErrValidation) {
		t.Errorf("zero reps: err = %v, want ErrValidation", err)
	}
}

func TestTrainingMax(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"116.50", "104.85"},
		{"100", "90.00"},
		{"150.55", "135.50"}, // 135.495 -> half to even
		{"150.65", "135.58"}, // 135.585 -> half to even
	}
	for _, tt := range tests {
		got, err := TrainingMax(dec(tt.in))
		if err != nil {
			t.Fatalf("TrainingMax(%s): %v", tt.in, err)
		}
		if !got.Equal(dec(tt.want)) {
			t.Errorf("TrainingMax(%s) = %s, want %s", tt.in, got, tt.want)
		}
	}

	if _, err := TrainingMax(dec("0")); !errors.Is(err, ErrValidation) {
		t.Errorf("TrainingMax(0) err = %v, want ErrValidation", err)
	}
}

// TestTrainingMaxes verifies the estimate-then-90% chain across several lifts.
func TestTrainingMaxes(t *testing.T) {
	got, err := TrainingMaxes(map[Lift]Performance{
		Press: {Weight: dec("100"), Reps: 5},
		Squat: {Weight: dec("100"), Reps: 1},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got[Press].Equal(dec("104.85")) {
		t.Errorf("Press = %s, want 104.85", got[Press])
	}
	// 100*1*0.033+100 = 103.30; *0.9 = 92.97
	if !got[Squat].Equal(dec("92.97")) {
		t.Errorf("Squat = %s, want 92.97", got[Squat])
	}

	_, err = TrainingMaxes(map[Lift]Performance{Press: {Weight: dec("100"), Reps: 0}})
	if !errors.Is(err, ErrValidation) {
		t.Errorf("err = %v, want ErrValidation", err)
	}
}

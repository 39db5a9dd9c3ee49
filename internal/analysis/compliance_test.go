package analysis

import (
	"errors"
	"math"
	"testing"
)

var calTable = Table{
	{ForceN: 0, DisplacementMM: 0},
	{ForceN: 100, DisplacementMM: 0.5},
	{ForceN: 200, DisplacementMM: 0.8},
}

func TestCorrect_ExactTablePoint(t *testing.T) {
	got, err := calTable.Correct([]float64{100}, []float64{2.0})
	if err != nil {
		t.Fatalf("Correct: %v", err)
	}
	// At a force exactly on a table entry the correction is exactly that
	// entry's displacement.
	if got[0] != 1.5 {
		t.Errorf("corrected: got %v, want exactly 1.5", got[0])
	}
}

func TestCorrect_Interpolates(t *testing.T) {
	got, err := calTable.Correct([]float64{150}, []float64{2.0})
	if err != nil {
		t.Fatalf("Correct: %v", err)
	}
	want := 2.0 - 0.65 // halfway between 0.5 and 0.8
	if math.Abs(got[0]-want) > 1e-12 {
		t.Errorf("corrected: got %v, want %v", got[0], want)
	}
}

func TestCorrect_ClampsOutsideDomain(t *testing.T) {
	table := Table{
		{ForceN: 10, DisplacementMM: 0.1},
		{ForceN: 20, DisplacementMM: 0.3},
	}
	got, err := table.Correct([]float64{5, 25}, []float64{1.0, 1.0})
	if err != nil {
		t.Fatalf("Correct: %v", err)
	}
	if got[0] != 1.0-0.1 {
		t.Errorf("below domain: got %v, want %v (clamped to first point)", got[0], 1.0-0.1)
	}
	if got[1] != 1.0-0.3 {
		t.Errorf("above domain: got %v, want %v (clamped to last point)", got[1], 1.0-0.3)
	}
}

func TestCorrect_InvalidTable(t *testing.T) {
	cases := []struct {
		name  string
		table Table
	}{
		{"empty", Table{}},
		{"single point", Table{{ForceN: 0, DisplacementMM: 0}}},
		{"descending", Table{{ForceN: 10, DisplacementMM: 0}, {ForceN: 5, DisplacementMM: 0.1}}},
		{"duplicate force", Table{{ForceN: 10, DisplacementMM: 0}, {ForceN: 10, DisplacementMM: 0.1}}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := c.table.Correct([]float64{1}, []float64{1})
			if !errors.Is(err, ErrInvalidTable) {
				t.Errorf("got %v, want ErrInvalidTable", err)
			}
		})
	}
}

func TestCorrect_LengthMismatch(t *testing.T) {
	if _, err := calTable.Correct([]float64{1, 2}, []float64{1}); err == nil {
		t.Fatal("expected error for mismatched series lengths")
	}
}

func TestCorrect_DoesNotMutateInputs(t *testing.T) {
	force := []float64{50, 150}
	disp := []float64{1.0, 2.0}
	if _, err := calTable.Correct(force, disp); err != nil {
		t.Fatalf("Correct: %v", err)
	}
	if force[0] != 50 || force[1] != 150 || disp[0] != 1.0 || disp[1] != 2.0 {
		t.Error("Correct mutated its inputs")
	}
}

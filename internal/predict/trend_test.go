package predict

import (
	"errors"
	"math"
	"testing"
)

func TestNextClose_PerfectLine(t *testing.T) {
	closes := []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}
	got, err := NextClose(closes)
	if err != nil {
		t.Fatalf("NextClose: %v", err)
	}
	if math.Abs(got-11.0) > 1e-9 {
		t.Fatalf("expected 11.0 for a perfect unit slope, got %v", got)
	}
}

func TestNextClose_FlatSeries(t *testing.T) {
	closes := make([]float64, 20)
	for i := range closes {
		closes[i] = 42.5
	}
	got, err := NextClose(closes)
	if err != nil {
		t.Fatalf("NextClose: %v", err)
	}
	if math.Abs(got-42.5) > 1e-9 {
		t.Fatalf("flat series should predict itself, got %v", got)
	}
}

func TestNextClose_DescendingLine(t *testing.T) {
	var closes []float64
	for i := 0; i < 12; i++ {
		closes = append(closes, 100-2*float64(i))
	}
	got, err := NextClose(closes)
	if err != nil {
		t.Fatalf("NextClose: %v", err)
	}
	if math.Abs(got-76.0) > 1e-9 {
		t.Fatalf("expected 76.0 at index 12, got %v", got)
	}
}

func TestNextClose_InsufficientData(t *testing.T) {
	for _, n := range []int{0, 1, 5, 9} {
		closes := make([]float64, n)
		for i := range closes {
			closes[i] = float64(i + 1)
		}
		_, err := NextClose(closes)
		if !errors.Is(err, ErrInsufficientData) {
			t.Fatalf("n=%d: expected ErrInsufficientData, got %v", n, err)
		}
	}

	// Exactly the minimum is enough.
	closes := []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}
	if _, err := NextClose(closes); err != nil {
		t.Fatalf("n=10 should fit: %v", err)
	}
}

func TestNextClose_Deterministic(t *testing.T) {
	closes := []float64{170.1, 171.3, 169.8, 172.4, 173.0, 171.9, 174.2, 175.1, 174.8, 176.3, 177.0}
	first, err := NextClose(closes)
	if err != nil {
		t.Fatalf("NextClose: %v", err)
	}
	for i := 0; i < 100; i++ {
		again, _ := NextClose(closes)
		if again != first {
			t.Fatalf("prediction not reproducible: %v vs %v", again, first)
		}
	}
}

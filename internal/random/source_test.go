package random

import "testing"

// fixed replays a scripted sequence of floats.
type fixed struct {
	vals []float64
	i    int
}

func (f *fixed) Float64() float64 {
	v := f.vals[f.i%len(f.vals)]
	f.i++
	return v
}

func TestWeightedBoundaries(t *testing.T) {
	weights := []int{680, 258, 50, 10, 2}
	tests := []struct {
		roll float64
		want int
	}{
		{0.0, 0},
		{0.6795, 0},
		{0.6805, 1},
		{0.9375, 1},
		{0.9385, 2},
		{0.9885, 3},
		{0.9985, 4},
		{0.9999, 4},
	}
	for _, tt := range tests {
		got := Weighted(&fixed{vals: []float64{tt.roll}}, weights)
		if got != tt.want {
			t.Errorf("Weighted(roll=%v) = %d, want %d", tt.roll, got, tt.want)
		}
	}
}

func TestWeightedSkipsZeroWeights(t *testing.T) {
	if got := Weighted(&fixed{vals: []float64{0.5}}, []int{0, 0, 0}); got != -1 {
		t.Errorf("Weighted(all zero) = %d, want -1", got)
	}
	if got := Weighted(&fixed{vals: []float64{0.5}}, []int{0, 5, 0}); got != 1 {
		t.Errorf("Weighted(single) = %d, want 1", got)
	}
}

func TestBetweenInclusive(t *testing.T) {
	src := NewSeeded(7)
	seenLo, seenHi := false, false
	for i := 0; i < 2000; i++ {
		v := Between(src, 25, 60)
		if v < 25 || v > 60 {
			t.Fatalf("Between(25, 60) = %d out of range", v)
		}
		seenLo = seenLo || v == 25
		seenHi = seenHi || v == 60
	}
	if !seenLo || !seenHi {
		t.Errorf("Between(25, 60) never hit an endpoint: lo=%v hi=%v", seenLo, seenHi)
	}
}

func TestChanceBounds(t *testing.T) {
	src := NewSeeded(1)
	if Chance(src, 0) {
		t.Error("Chance(0) fired")
	}
	if !Chance(src, 1) {
		t.Error("Chance(1) did not fire")
	}
}

func TestSeededIsReproducible(t *testing.T) {
	a, b := NewSeeded(42), NewSeeded(42)
	for i := 0; i < 100; i++ {
		if x, y := a.Float64(), b.Float64(); x != y {
			t.Fatalf("draw %d diverged: %v != %v", i, x, y)
		}
	}
}

func TestDefaultInRange(t *testing.T) {
	src := Default()
	for i := 0; i < 1000; i++ {
		v := src.Float64()
		if v < 0 || v >= 1 {
			t.Fatalf("Default().Float64() = %v out of [0,1)", v)
		}
	}
}

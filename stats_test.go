package projector

import (
	"math"
	"math/rand"
	"testing"
)

func TestEstimateStatsDeterministic(t *testing.T) {
	// Identically seeded sources must produce identical statistics.
	g := newIdentityGenerator()
	a, err := EstimateStats(g, 500, rand.New(rand.NewSource(123)))
	if err != nil {
		t.Fatal(err)
	}
	b, err := EstimateStats(g, 500, rand.New(rand.NewSource(123)))
	if err != nil {
		t.Fatal(err)
	}
	if a.Std != b.Std {
		t.Errorf("Std differs across seeded runs: %f vs %f", a.Std, b.Std)
	}
	for i := range a.Mean {
		if a.Mean[i] != b.Mean[i] {
			t.Fatalf("Mean[%d] differs across seeded runs: %f vs %f", i, a.Mean[i], b.Mean[i])
		}
	}
}

func TestEstimateStatsIdentityMapping(t *testing.T) {
	// With an identity mapping stage, samples are standard normal, so the
	// mean is near zero and the aggregated spread is near sqrt(dim).
	g := newIdentityGenerator()
	s, err := EstimateStats(g, 5000, rand.New(rand.NewSource(7)))
	if err != nil {
		t.Fatal(err)
	}
	if len(s.Mean) != g.LatentDim() {
		t.Fatalf("len(Mean) = %d, want %d", len(s.Mean), g.LatentDim())
	}
	for i, m := range s.Mean {
		if math.Abs(m) > 0.1 {
			t.Errorf("Mean[%d] = %f, want near 0", i, m)
		}
	}
	want := math.Sqrt(float64(g.LatentDim()))
	if math.Abs(s.Std-want)/want > 0.05 {
		t.Errorf("Std = %f, want near %f", s.Std, want)
	}
}

func TestEstimateStatsInvalidSampleCount(t *testing.T) {
	g := newIdentityGenerator()
	if _, err := EstimateStats(g, 0, rand.New(rand.NewSource(1))); err == nil {
		t.Error("expected error for zero samples")
	}
}

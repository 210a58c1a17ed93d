package projector

import (
	"math"
	"testing"
)

func TestLearningRateZeroAtStart(t *testing.T) {
	// At t=0 the ramp-up factor is 0, so the effective rate is 0.
	o := DefaultOptions()
	if lr := learningRate(0, o); lr != 0 {
		t.Errorf("lr(0) = %f, want 0", lr)
	}
}

func TestLearningRateRampUpMonotone(t *testing.T) {
	o := DefaultOptions()
	prev := learningRate(0, o)
	for i := 1; i <= 50; i++ {
		tt := float64(i) / 50 * o.LRRampupLength
		lr := learningRate(tt, o)
		if lr < prev {
			t.Fatalf("lr decreased during ramp-up: lr(%f)=%f < %f", tt, lr, prev)
		}
		prev = lr
	}
}

func TestLearningRatePlateau(t *testing.T) {
	// Once both ramps saturate, the rate equals InitialLearningRate.
	o := DefaultOptions()
	for _, tt := range []float64{0.1, 0.3, 0.5, 0.7} {
		lr := learningRate(tt, o)
		if math.Abs(lr-o.InitialLearningRate) > 1e-12 {
			t.Errorf("lr(%f) = %f, want plateau %f", tt, lr, o.InitialLearningRate)
		}
	}
}

func TestLearningRateDecaysToZero(t *testing.T) {
	o := DefaultOptions()
	prev := learningRate(1-o.LRRampdownLength, o)
	for i := 1; i <= 50; i++ {
		tt := 1 - o.LRRampdownLength + float64(i)/50*o.LRRampdownLength
		if tt >= 1 {
			tt = 1 - 1e-9
		}
		lr := learningRate(tt, o)
		if lr > prev+1e-12 {
			t.Fatalf("lr increased during ramp-down: lr(%f)=%f > %f", tt, lr, prev)
		}
		prev = lr
	}
	if end := learningRate(1-1e-9, o); end > 1e-6 {
		t.Errorf("lr near t=1 = %g, want ~0", end)
	}
}

func TestNoiseStrengthMonotoneNonIncreasing(t *testing.T) {
	o := DefaultOptions()
	prev := math.Inf(1)
	for i := 0; i <= 100; i++ {
		tt := float64(i) / 100
		ns := noiseStrength(1, tt, o)
		if ns > prev {
			t.Fatalf("noise strength increased at t=%f: %f > %f", tt, ns, prev)
		}
		prev = ns
	}
}

func TestNoiseStrengthZeroAfterRamp(t *testing.T) {
	// Injected noise is exactly zero once t >= NoiseRampLength.
	o := DefaultOptions()
	for _, tt := range []float64{o.NoiseRampLength, 0.8, 0.99} {
		if ns := noiseStrength(2.5, tt, o); ns != 0 {
			t.Errorf("noise(%f) = %f, want exactly 0", tt, ns)
		}
	}
	if ns := noiseStrength(2.5, 0, o); ns <= 0 {
		t.Errorf("noise(0) = %f, want > 0", ns)
	}
}

func TestNoiseStrengthScalesWithSpread(t *testing.T) {
	o := DefaultOptions()
	a := noiseStrength(1, 0.1, o)
	b := noiseStrength(3, 0.1, o)
	if math.Abs(b-3*a) > 1e-12 {
		t.Errorf("noise should scale linearly with spread: %f vs 3*%f", b, a)
	}
}

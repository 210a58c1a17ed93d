package projector

import "math"

// learningRate evaluates the trapezoid-shaped rate curve at progress
// t ∈ [0,1): a linear ramp up over the first LRRampupLength of the run, a
// plateau at InitialLearningRate, and a half-cosine eased decay to zero
// over the final LRRampdownLength.
func learningRate(t float64, o Options) float64 {
	ramp := math.Min(1, (1-t)/o.LRRampdownLength)
	ramp = 0.5 - 0.5*math.Cos(ramp*math.Pi)
	ramp *= math.Min(1, t/o.LRRampupLength)
	return o.InitialLearningRate * ramp
}

// noiseStrength evaluates the annealed latent-noise magnitude at progress
// t. The quadratic falloff reaches exactly zero once t >= NoiseRampLength.
func noiseStrength(std, t float64, o Options) float64 {
	r := math.Max(0, 1-t/o.NoiseRampLength)
	return std * o.InitialNoiseFactor * r * r
}

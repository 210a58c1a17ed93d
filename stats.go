package projector

import (
	"fmt"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// Stats describes the generator's mapped latent distribution: the
// elementwise mean of the mapped samples and a single spread value, the
// root-mean-square deviation from that mean aggregated over every
// dimension and sample.
type Stats struct {
	Mean []float64
	Std  float64
}

// EstimateStats draws samples independent standard-normal noise vectors
// from rng, maps each through the generator's noise-to-latent stage, and
// returns the mean and spread of the resulting latent distribution.
//
// Randomness comes only from rng; no global state is touched, so repeated
// calls with identically seeded sources are deterministic.
func EstimateStats(g Generator, samples int, rng *rand.Rand) (Stats, error) {
	if samples <= 0 {
		return Stats{}, fmt.Errorf("%w: sample count %d", ErrInvalidOptions, samples)
	}
	dim := g.LatentDim()

	out := mat.NewDense(samples, dim, nil)
	z := make([]float64, dim)
	for i := 0; i < samples; i++ {
		for j := range z {
			z[j] = rng.NormFloat64()
		}
		out.SetRow(i, g.MapLatent(z))
	}

	mean := make([]float64, dim)
	col := make([]float64, samples)
	for j := 0; j < dim; j++ {
		mat.Col(col, j, out)
		mean[j] = stat.Mean(col, nil)
	}

	// Spread: sqrt(sum((w - mean)^2) / samples), summed over all dims.
	ss := 0.0
	for i := 0; i < samples; i++ {
		row := out.RawRowView(i)
		for j, m := range mean {
			d := row[j] - m
			ss += d * d
		}
	}
	return Stats{Mean: mean, Std: math.Sqrt(ss / float64(samples))}, nil
}

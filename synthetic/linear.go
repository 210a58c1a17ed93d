// Package synthetic provides lightweight differentiable stand-ins for the
// projector's collaborators: a frozen linear generator and a pixel-space
// distance. They exist so the optimization core can be exercised and tested
// without pretrained network weights.
package synthetic

import (
	"fmt"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/mat"

	"github.com/setanarut/projector/tensor"
)

// LinearGenerator is a frozen random linear map from a flattened latent of
// shape (layers, dim) to a CHW image. The map is fully differentiable and
// its vector-Jacobian product is the exact transpose multiply, which makes
// gradient-based inversion of its own outputs a well-posed least-squares
// problem.
//
// All weights are drawn once from a seeded source at construction and never
// change afterwards.
type LinearGenerator struct {
	dim      int
	layers   int
	channels int
	res      int

	mapping *mat.Dense // dim×dim noise-to-latent stage
	synth   *mat.Dense // (channels*res*res)×(layers*dim) synthesis stage
	noises  []*tensor.Dense
}

// NewLinearGenerator builds a generator with the given latent
// dimensionality, latent layer count, image channel count, and square
// output resolution. Weights are scaled by 1/sqrt(fan-in) so outputs stay
// O(1) for standard-normal latents.
func NewLinearGenerator(dim, layers, channels, res int, seed int64) *LinearGenerator {
	rng := rand.New(rand.NewSource(seed))

	mapping := mat.NewDense(dim, dim, nil)
	scale := 1 / math.Sqrt(float64(dim))
	for i := 0; i < dim; i++ {
		for j := 0; j < dim; j++ {
			mapping.Set(i, j, rng.NormFloat64()*scale)
		}
	}

	in := layers * dim
	out := channels * res * res
	synth := mat.NewDense(out, in, nil)
	scale = 1 / math.Sqrt(float64(in))
	for i := 0; i < out; i++ {
		for j := 0; j < in; j++ {
			synth.Set(i, j, rng.NormFloat64()*scale)
		}
	}

	noises := make([]*tensor.Dense, layers)
	for l := range noises {
		n := tensor.NewDense(res, res)
		n.FillNormal(rng)
		noises[l] = n
	}

	return &LinearGenerator{
		dim:      dim,
		layers:   layers,
		channels: channels,
		res:      res,
		mapping:  mapping,
		synth:    synth,
		noises:   noises,
	}
}

func (g *LinearGenerator) LatentDim() int { return g.dim }

func (g *LinearGenerator) NumLayers() int { return g.layers }

// MapLatent applies the frozen mapping stage to a noise vector.
func (g *LinearGenerator) MapLatent(z []float64) []float64 {
	out := mat.NewVecDense(g.dim, nil)
	out.MulVec(g.mapping, mat.NewVecDense(g.dim, z))
	return out.RawVector().Data
}

// Synthesize renders an image. With fromLatent, in must have shape
// (layers, dim); otherwise in is a raw noise vector of shape (dim) that is
// mapped and tiled across every layer first.
func (g *LinearGenerator) Synthesize(in *tensor.Dense, fromLatent bool) (*tensor.Dense, error) {
	lat := in
	if !fromLatent {
		if in.Len() != g.dim {
			return nil, fmt.Errorf("synthetic: noise length %d, want %d", in.Len(), g.dim)
		}
		w := g.MapLatent(in.Data)
		lat = tensor.NewDense(g.layers, g.dim)
		for l := 0; l < g.layers; l++ {
			copy(lat.Data[l*g.dim:(l+1)*g.dim], w)
		}
	}
	if lat.Len() != g.layers*g.dim {
		return nil, fmt.Errorf("synthetic: latent shape %v, want (%d, %d)", lat.Shape, g.layers, g.dim)
	}

	out := mat.NewVecDense(g.channels*g.res*g.res, nil)
	out.MulVec(g.synth, mat.NewVecDense(lat.Len(), lat.Data))
	return tensor.FromSlice(out.RawVector().Data, g.channels, g.res, g.res)
}

// SynthesizeVJP backpropagates an image-space gradient through the frozen
// synthesis: grad_latent = Wᵀ · upstream.
func (g *LinearGenerator) SynthesizeVJP(latent, upstream *tensor.Dense) (*tensor.Dense, error) {
	if upstream.Len() != g.channels*g.res*g.res {
		return nil, fmt.Errorf("synthetic: upstream shape %v, want (%d, %d, %d)",
			upstream.Shape, g.channels, g.res, g.res)
	}
	out := mat.NewVecDense(g.layers*g.dim, nil)
	out.MulVec(g.synth.T(), mat.NewVecDense(upstream.Len(), upstream.Data))
	return tensor.FromSlice(out.RawVector().Data, g.layers, g.dim)
}

// NoiseBuffers returns the generator's stored per-layer noise buffers.
func (g *LinearGenerator) NoiseBuffers() []*tensor.Dense { return g.noises }

// PixelDistance is a mean-squared pixel distance standing in for a learned
// perceptual metric.
type PixelDistance struct{}

// Distance returns the MSE between the two images and its gradient with
// respect to the first.
func (PixelDistance) Distance(generated, target *tensor.Dense) (float64, *tensor.Dense, error) {
	return tensor.MSE(generated, target)
}

package projector

import "github.com/setanarut/projector/tensor"

// Generator is a frozen image-synthesis network. Its parameters are never
// updated; the projector only optimizes the latent fed into it.
//
// Go has no ambient automatic differentiation, so the generator carries its
// own backward pass: SynthesizeVJP must return the vector-Jacobian product
// of the synthesis with respect to the latent input.
type Generator interface {
	// LatentDim is the dimensionality of a single latent layer and of the
	// generator's native noise input.
	LatentDim() int

	// NumLayers is the number of latent layers the synthesis stage expects.
	NumLayers() int

	// MapLatent maps a standard-normal noise vector through the generator's
	// noise-to-latent mapping stage and returns one latent-layer vector.
	MapLatent(z []float64) []float64

	// Synthesize renders an image from in. When fromLatent is true, in has
	// shape (layers, dim) and bypasses the mapping stage; otherwise in is a
	// raw noise vector of shape (dim) that is mapped first.
	// The returned image has shape (channels, height, width).
	Synthesize(in *tensor.Dense, fromLatent bool) (*tensor.Dense, error)

	// SynthesizeVJP backpropagates upstream, a gradient with respect to the
	// synthesized image, through the frozen synthesis and returns the
	// gradient with respect to latent.
	SynthesizeVJP(latent, upstream *tensor.Dense) (*tensor.Dense, error)

	// NoiseBuffers exposes the generator's stored per-layer noise buffers,
	// each of shape (height, width). Only the opt-in noise hooks touch them.
	NoiseBuffers() []*tensor.Dense
}

// Distance is a perceptual similarity metric between two images of equal
// shape. It returns a scalar distance and the gradient of that distance
// with respect to the first image.
type Distance interface {
	Distance(generated, target *tensor.Dense) (float64, *tensor.Dense, error)
}

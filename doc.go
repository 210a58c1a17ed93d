// Package projector performs latent-space inversion for a frozen
// generative image model: given a target photograph, it searches the
// generator's latent space for a code whose synthesized image best matches
// the target under a perceptual distance, using noise-annealed,
// learning-rate-scheduled Adam descent.
//
// The generator and the perceptual metric are opaque collaborators behind
// the [Generator] and [Distance] interfaces; the projector never mutates
// generator parameters, only the latent it feeds in.
//
// Basic usage:
//
//	p, err := projector.New(g, dist, projector.DefaultOptions())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := p.Run(target, 1000); err != nil {
//	    log.Fatal(err)
//	}
//	img, _ := p.Images()
//	latent := p.Latents()
package projector

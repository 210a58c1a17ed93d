package projector

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/setanarut/projector/tensor"
)

// lossSide is the spatial size both images are reduced to before the
// distance is evaluated.
const lossSide = 256

type Options struct {
	// Number of mapped latent samples used to estimate the latent
	// distribution statistics at construction.
	NumLatentSamples int
	// Weight of the optional pixel-space MSE term added to the perceptual
	// distance. Zero disables the term entirely.
	MSEWeight float64
	// Peak learning rate of the trapezoid schedule.
	InitialLearningRate float64
	// Initial latent-noise magnitude as a fraction of the latent spread.
	InitialNoiseFactor float64
	// Fraction of the run over which the learning rate decays to zero.
	LRRampdownLength float64
	// Fraction of the run over which the learning rate ramps up from zero.
	LRRampupLength float64
	// Fraction of the run over which injected latent noise anneals to zero.
	NoiseRampLength float64
	// RegularizeNoise adds the multi-scale noise-buffer penalty (scaled by
	// NoiseRegWeight) to the reported loss. Off by default.
	RegularizeNoise bool
	NoiseRegWeight  float64
	// NormalizeNoise renormalizes the generator's noise buffers to zero
	// mean and unit std after every step. Off by default.
	NormalizeNoise bool
	// Seed for the projector's private random source. Statistics estimation
	// and per-step noise draw from it; process-global randomness is never
	// touched.
	StatsSeed int64
	// Verbose enables per-step progress lines on stdout.
	Verbose bool
}

func DefaultOptions() Options {
	return Options{
		NumLatentSamples:    10000,
		MSEWeight:           0,
		InitialLearningRate: 0.1,
		InitialNoiseFactor:  0.05,
		LRRampdownLength:    0.25,
		LRRampupLength:      0.05,
		NoiseRampLength:     0.75,
		NoiseRegWeight:      1e5,
		StatsSeed:           123,
	}
}

func (o Options) validate() error {
	if o.NumLatentSamples <= 0 {
		return fmt.Errorf("%w: NumLatentSamples = %d", ErrInvalidOptions, o.NumLatentSamples)
	}
	if o.LRRampdownLength <= 0 || o.LRRampupLength <= 0 || o.NoiseRampLength <= 0 {
		return fmt.Errorf("%w: ramp lengths must be > 0 (rampdown=%g rampup=%g noise=%g)",
			ErrInvalidOptions, o.LRRampdownLength, o.LRRampupLength, o.NoiseRampLength)
	}
	if o.InitialLearningRate <= 0 {
		return fmt.Errorf("%w: InitialLearningRate = %g", ErrInvalidOptions, o.InitialLearningRate)
	}
	return nil
}

// Projector searches a frozen generator's latent space for the code whose
// synthesized image best matches a target under a perceptual distance.
//
// A Projector is single-threaded: statistics, latent, and optimizer state
// are private to the instance, only the wrapped generator is shared.
// Reusing one instance across targets warm-starts each run from the
// previous result; call Reset for a cold start.
type Projector struct {
	g    Generator
	dist Distance
	opt  Options

	stats  Stats
	latent *tensor.Dense // (layers, dim), the sole optimization variable
	adam   *Adam
	rng    *rand.Rand

	target   *tensor.Dense
	curStep  int
	numSteps int
	lastLoss float64
	lr       float64
}

// New constructs a Projector bound to a frozen generator and a perceptual
// distance. It estimates the latent distribution statistics from
// Options.NumLatentSamples mapped samples and initializes the latent code
// to the distribution mean repeated across the generator's latent layers.
func New(g Generator, dist Distance, opt Options) (*Projector, error) {
	if err := opt.validate(); err != nil {
		return nil, err
	}
	p := &Projector{
		g:    g,
		dist: dist,
		opt:  opt,
		rng:  rand.New(rand.NewSource(opt.StatsSeed)),
	}

	p.info("estimating latent mean and spread from %d samples", opt.NumLatentSamples)
	stats, err := EstimateStats(g, opt.NumLatentSamples, p.rng)
	if err != nil {
		return nil, err
	}
	p.stats = stats
	p.info("latent spread = %g", stats.Std)

	p.latent = meanLatent(stats.Mean, g.NumLayers())
	p.adam = NewAdam(opt.InitialLearningRate, p.latent.Len())
	return p, nil
}

// Stats returns the latent distribution statistics computed at
// construction.
func (p *Projector) Stats() Stats { return p.stats }

// Run optimizes the latent code against target for exactly steps sequential
// updates. The target must be a CHW image tensor; if its larger spatial
// dimension exceeds 256 it is box-downsampled to 256×256 first.
//
// The step counter resets, but the latent code and optimizer moments carry
// over from any previous run on this instance (warm start). Run aborts with
// ErrNonFiniteLoss if the loss leaves the finite range.
func (p *Projector) Run(target *tensor.Dense, steps int) error {
	if steps < 1 {
		return fmt.Errorf("%w: got %d", ErrInvalidSteps, steps)
	}
	if target == nil {
		return ErrNoTarget
	}
	prepared, err := tensor.Downsample(target, lossSide)
	if err != nil {
		return err
	}
	p.target = prepared
	p.numSteps = steps

	p.info("running %d steps", steps)
	for i := 0; i < steps; i++ {
		p.curStep = i
		if err := p.step(); err != nil {
			return err
		}
		p.info("step %d/%d loss=%.4f lr=%.4f", i+1, steps, p.lastLoss, p.lr)
	}
	return nil
}

// step performs one optimization update at the current step index.
func (p *Projector) step() error {
	t := float64(p.curStep) / float64(p.numSteps)

	// Perturb the stored latent with annealed noise. The perturbed value is
	// what the generator sees; the gradient flows back to the stored latent
	// unchanged since the perturbation is an additive constant.
	expr := p.latent.Clone()
	if ns := noiseStrength(p.stats.Std, t, p.opt); ns > 0 {
		for i := range expr.Data {
			expr.Data[i] += p.rng.NormFloat64() * ns
		}
	}

	p.lr = learningRate(t, p.opt)
	p.adam.SetLR(p.lr)

	img, err := p.g.Synthesize(expr, true)
	if err != nil {
		return err
	}
	srcH, srcW := img.Shape[1], img.Shape[2]
	gen, err := tensor.Downsample(img, lossSide)
	if err != nil {
		return err
	}

	loss, grad, err := p.dist.Distance(gen, p.target)
	if err != nil {
		return err
	}
	if p.opt.MSEWeight != 0 {
		mse, mseGrad, err := tensor.MSE(gen, p.target)
		if err != nil {
			return err
		}
		loss += mse * p.opt.MSEWeight
		if err := grad.AddScaled(p.opt.MSEWeight, mseGrad); err != nil {
			return err
		}
	}
	if p.opt.RegularizeNoise {
		loss += NoiseRegularization(p.g.NoiseBuffers()) * p.opt.NoiseRegWeight
	}
	if math.IsNaN(loss) || math.IsInf(loss, 0) {
		return fmt.Errorf("step %d: %w: %g", p.curStep, ErrNonFiniteLoss, loss)
	}

	imgGrad, err := tensor.DownsampleVJP(grad, srcH, srcW)
	if err != nil {
		return err
	}
	latGrad, err := p.g.SynthesizeVJP(expr, imgGrad)
	if err != nil {
		return err
	}

	p.adam.Step(p.latent.Data, latGrad.Data)

	if p.opt.NormalizeNoise {
		NormalizeNoise(p.g.NoiseBuffers())
	}
	p.lastLoss = loss
	return nil
}

// Images re-runs the generator on the current stored latent with no
// injected noise and returns the final, unperturbed reconstruction at the
// generator's native resolution. Pure read; no state is mutated.
func (p *Projector) Images() (*tensor.Dense, error) {
	return p.g.Synthesize(p.latent, true)
}

// Latents returns a detached copy of the current stored latent code of
// shape (layers, dim). Mutating the copy does not affect the projector.
func (p *Projector) Latents() *tensor.Dense {
	return p.latent.Clone()
}

// LastLoss returns the loss of the most recent step.
func (p *Projector) LastLoss() float64 { return p.lastLoss }

// LearningRate returns the effective learning rate of the most recent step.
func (p *Projector) LearningRate() float64 { return p.lr }

// Reset discards the warm start: the latent returns to the statistics mean
// and the optimizer moments are cleared.
func (p *Projector) Reset() {
	p.latent = meanLatent(p.stats.Mean, p.g.NumLayers())
	p.adam.Reset()
	p.curStep = 0
	p.lastLoss = 0
	p.lr = 0
}

func (p *Projector) info(format string, args ...any) {
	if p.opt.Verbose {
		fmt.Printf("projector: "+format+"\n", args...)
	}
}

// meanLatent tiles the mean vector across every latent layer.
func meanLatent(mean []float64, layers int) *tensor.Dense {
	lat := tensor.NewDense(layers, len(mean))
	for l := 0; l < layers; l++ {
		copy(lat.Data[l*len(mean):(l+1)*len(mean)], mean)
	}
	return lat
}

package projector

import (
	"gonum.org/v1/gonum/stat"

	"github.com/setanarut/projector/tensor"
)

// NoiseRegularization returns the multi-scale autocorrelation penalty over
// the generator's per-layer noise buffers. For each buffer the squared mean
// product of the buffer with its one-pixel horizontal and vertical rolls is
// accumulated, then the buffer is halved by 2x2 averaging and the measure
// repeats until the spatial size falls to 8 or below. White noise scores
// near zero; spatially correlated noise is penalized.
//
// This is an opt-in diagnostic hook (Options.RegularizeNoise); the default
// pipeline never calls it.
func NoiseRegularization(noises []*tensor.Dense) float64 {
	reg := 0.0
	for _, n := range noises {
		if len(n.Shape) != 2 {
			continue
		}
		cur := n
		h, w := n.Shape[0], n.Shape[1]
		for {
			rh := rollProductMean(cur.Data, h, w, 0, 1)
			rv := rollProductMean(cur.Data, h, w, 1, 0)
			reg += rh*rh + rv*rv
			if h <= 8 || w <= 8 || h%2 != 0 || w%2 != 0 {
				break
			}
			cur = halve(cur)
			h, w = cur.Shape[0], cur.Shape[1]
		}
	}
	return reg
}

// NormalizeNoise rescales each noise buffer in place to zero mean and unit
// standard deviation. Opt-in hook (Options.NormalizeNoise); runs after the
// optimizer update when enabled.
func NormalizeNoise(noises []*tensor.Dense) {
	for _, n := range noises {
		if n.Len() < 2 {
			continue
		}
		mean, std := stat.MeanStdDev(n.Data, nil)
		if std == 0 {
			continue
		}
		for i := range n.Data {
			n.Data[i] = (n.Data[i] - mean) / std
		}
	}
}

// rollProductMean is the mean of data[y][x]*data[(y+dy)%h][(x+dx)%w].
func rollProductMean(data []float64, h, w, dy, dx int) float64 {
	sum := 0.0
	for y := 0; y < h; y++ {
		ry := ((y + dy) % h) * w
		row := y * w
		for x := 0; x < w; x++ {
			sum += data[row+x] * data[ry+(x+dx)%w]
		}
	}
	return sum / float64(h*w)
}

// halve downscales a 2D buffer by 2x2 block averaging.
func halve(t *tensor.Dense) *tensor.Dense {
	h, w := t.Shape[0]/2, t.Shape[1]/2
	out := tensor.NewDense(h, w)
	sw := t.Shape[1]
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r0 := (2 * y) * sw
			r1 := r0 + sw
			out.Data[y*w+x] = (t.Data[r0+2*x] + t.Data[r0+2*x+1] +
				t.Data[r1+2*x] + t.Data[r1+2*x+1]) * 0.25
		}
	}
	return out
}

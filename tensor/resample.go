package tensor

import "fmt"

// Downsample reduces a CHW image tensor to side×side by box averaging.
// Both spatial dimensions must be integer multiples of side (generator
// resolutions are powers of two, so this always holds in practice).
// If the image is already side×side or smaller it is returned unchanged.
func Downsample(img *Dense, side int) (*Dense, error) {
	c, h, w, err := chw(img)
	if err != nil {
		return nil, err
	}
	if h <= side && w <= side {
		return img, nil
	}
	if h%side != 0 || w%side != 0 {
		return nil, fmt.Errorf("tensor: cannot box-downsample %dx%d to %dx%d", h, w, side, side)
	}
	fy, fx := h/side, w/side
	inv := 1.0 / float64(fy*fx)
	out := NewDense(c, side, side)
	for ch := 0; ch < c; ch++ {
		src := img.Data[ch*h*w:]
		dst := out.Data[ch*side*side:]
		for y := 0; y < side; y++ {
			for x := 0; x < side; x++ {
				sum := 0.0
				for dy := 0; dy < fy; dy++ {
					row := (y*fy + dy) * w
					for dx := 0; dx < fx; dx++ {
						sum += src[row+x*fx+dx]
					}
				}
				dst[y*side+x] = sum * inv
			}
		}
	}
	return out, nil
}

// DownsampleVJP maps a gradient with respect to the downsampled image back
// to a gradient at the source resolution srcH×srcW. It is the exact
// transpose of the forward box filter: each source pixel inside a block
// receives the block's gradient divided by the block area.
func DownsampleVJP(upstream *Dense, srcH, srcW int) (*Dense, error) {
	c, h, w, err := chw(upstream)
	if err != nil {
		return nil, err
	}
	if srcH == h && srcW == w {
		return upstream, nil
	}
	if srcH%h != 0 || srcW%w != 0 {
		return nil, fmt.Errorf("tensor: gradient %dx%d does not tile %dx%d", h, w, srcH, srcW)
	}
	fy, fx := srcH/h, srcW/w
	inv := 1.0 / float64(fy*fx)
	out := NewDense(c, srcH, srcW)
	for ch := 0; ch < c; ch++ {
		src := upstream.Data[ch*h*w:]
		dst := out.Data[ch*srcH*srcW:]
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				g := src[y*w+x] * inv
				for dy := 0; dy < fy; dy++ {
					row := (y*fy + dy) * srcW
					for dx := 0; dx < fx; dx++ {
						dst[row+x*fx+dx] = g
					}
				}
			}
		}
	}
	return out, nil
}

func chw(t *Dense) (c, h, w int, err error) {
	if len(t.Shape) != 3 {
		return 0, 0, 0, fmt.Errorf("tensor: want CHW image, got shape %v", t.Shape)
	}
	return t.Shape[0], t.Shape[1], t.Shape[2], nil
}

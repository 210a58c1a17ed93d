// Package utils holds the thin glue around the projector core: image
// decode/encode, tensor conversion, preview scaling, and a palette-based
// reconstruction diagnostic.
package utils

import (
	"fmt"
	"image"
	"image/color"
	_ "image/jpeg"
	"image/png"
	"log"
	"math"
	"os"
	"slices"

	"github.com/cenkalti/dominantcolor"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/muesli/clusters"
	"github.com/muesli/kmeans"
	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/webp"

	"github.com/setanarut/projector/tensor"
)

type PaletteMethod int

const (
	PaletteMethodDominantColor PaletteMethod = iota
	PaletteMethodKMeans
)

func (m PaletteMethod) String() string {
	switch m {
	case PaletteMethodKMeans:
		return "kmeans"
	default:
		return "dominantcolor"
	}
}

// ReadImage decodes a PNG, JPEG, or WEBP image from path.
func ReadImage(path string) (image.Image, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	img, _, err := image.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return img, nil
}

// SaveImage encodes img as PNG to filename.
func SaveImage(img image.Image, filename string) error {
	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer f.Close()
	return png.Encode(f, img)
}

// TensorFromImage converts an image to a CHW tensor with values normalized
// to [-1, 1], the canonical range the projector expects.
func TensorFromImage(img image.Image) *tensor.Dense {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	t := tensor.NewDense(3, h, w)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r, g, bl, _ := img.At(b.Min.X+x, b.Min.Y+y).RGBA()
			off := y*w + x
			t.Data[off] = float64(r)/32767.5 - 1
			t.Data[h*w+off] = float64(g)/32767.5 - 1
			t.Data[2*h*w+off] = float64(bl)/32767.5 - 1
		}
	}
	return t
}

// ImageFromTensor converts a CHW tensor in [-1, 1] back to an RGBA image,
// clamping out-of-range values.
func ImageFromTensor(t *tensor.Dense) (*image.RGBA, error) {
	if len(t.Shape) != 3 || t.Shape[0] != 3 {
		return nil, fmt.Errorf("utils: want (3, H, W) tensor, got shape %v", t.Shape)
	}
	h, w := t.Shape[1], t.Shape[2]
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			off := y*w + x
			img.SetRGBA(x, y, color.RGBA{
				channelByte(t.Data[off]),
				channelByte(t.Data[h*w+off]),
				channelByte(t.Data[2*h*w+off]),
				255,
			})
		}
	}
	return img, nil
}

func channelByte(v float64) uint8 {
	return uint8(max(0, min(255, (v+1)*127.5)))
}

// PreviewScale resizes img to side×side for display output. Catmull-Rom is
// used for quality; this path is presentation-only and plays no part in the
// optimization (the core uses its own differentiable downsampler).
func PreviewScale(img image.Image, side int) image.Image {
	dst := image.NewRGBA(image.Rect(0, 0, side, side))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), img, img.Bounds(), xdraw.Over, nil)
	return dst
}

// SortPaletteByBrightness orders colors from darkest to brightest.
func SortPaletteByBrightness(palette []colorful.Color) {
	slices.SortFunc(palette, func(a, b colorful.Color) int {
		ri, gi, bi := a.LinearRgb()
		rj, gj, bj := b.LinearRgb()
		yi := 0.2126*ri + 0.7152*gi + 0.0722*bi
		yj := 0.2126*rj + 0.7152*gj + 0.0722*bj
		if yi < yj {
			return -1
		}
		if yi > yj {
			return 1
		}
		return 0
	})
}

// ExtractPalette extracts the k most representative colors of img using the
// chosen method. An empty kmeans result falls back to dominantcolor.
func ExtractPalette(img image.Image, k int, method PaletteMethod) []colorful.Color {
	switch method {
	case PaletteMethodKMeans:
		p := extractKMeansPalette(img, k)
		if len(p) != 0 {
			return p
		}
		log.Println("palette warning: kmeans returned empty palette, falling back to dominantcolor")
		return extractDominantPalette(img, k)
	default:
		return extractDominantPalette(img, k)
	}
}

func extractDominantPalette(img image.Image, k int) []colorful.Color {
	if k <= 0 {
		return nil
	}
	found := dominantcolor.FindWeight(img, k)
	if len(found) == 0 {
		return nil
	}
	out := make([]colorful.Color, 0, len(found))
	for _, c := range found {
		col, _ := colorful.MakeColor(c.RGBA)
		out = append(out, col.Clamped())
	}
	return out
}

func extractKMeansPalette(img image.Image, k int) []colorful.Color {
	if k <= 0 {
		return nil
	}
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w == 0 || h == 0 {
		return nil
	}

	// Subsample to keep kmeans tractable on large images.
	maxSamples := 12000
	step := 1
	if w*h > maxSamples {
		step = int(math.Sqrt(float64(w*h)/float64(maxSamples))) + 1
	}
	dataset := make(clusters.Observations, 0, min(w*h, maxSamples))
	for y := b.Min.Y; y < b.Max.Y; y += step {
		for x := b.Min.X; x < b.Max.X; x += step {
			r16, g16, b16, a16 := img.At(x, y).RGBA()
			if a16 == 0 {
				continue
			}
			dataset = append(dataset, clusters.Coordinates{
				float64(r16) / 65535.0,
				float64(g16) / 65535.0,
				float64(b16) / 65535.0,
			})
		}
	}
	if len(dataset) < k {
		return nil
	}

	km := kmeans.New()
	cc, err := km.Partition(dataset, k)
	if err != nil || len(cc) == 0 {
		return nil
	}
	// Dominant clusters first.
	slices.SortFunc(cc, func(a, b clusters.Cluster) int {
		return len(b.Observations) - len(a.Observations)
	})
	out := make([]colorful.Color, 0, len(cc))
	for _, c := range cc {
		if len(c.Center) < 3 {
			continue
		}
		out = append(out, colorful.Color{R: c.Center[0], G: c.Center[1], B: c.Center[2]}.Clamped())
	}
	return out
}

// PaletteDistance is a cheap perceptual sanity report for projector output:
// the symmetric mean Lab-space distance between two palettes, where each
// color is matched to its nearest neighbor in the other palette. Identical
// palettes score zero; the score grows as the reconstruction's dominant
// tones drift from the target's.
func PaletteDistance(a, b []colorful.Color) float64 {
	if len(a) == 0 || len(b) == 0 {
		return math.Inf(1)
	}
	return (meanNearest(a, b) + meanNearest(b, a)) / 2
}

func meanNearest(from, to []colorful.Color) float64 {
	sum := 0.0
	for _, c := range from {
		best := math.Inf(1)
		for _, o := range to {
			if d := c.DistanceLab(o); d < best {
				best = d
			}
		}
		sum += best
	}
	return sum / float64(len(from))
}

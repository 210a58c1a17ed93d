package utils

import (
	"image"
	"image/color"
	"math"
	"testing"

	"github.com/lucasb-eyer/go-colorful"
)

func testImage(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, color.RGBA{
				uint8(x * 255 / max(1, w-1)),
				uint8(y * 255 / max(1, h-1)),
				128,
				255,
			})
		}
	}
	return img
}

func TestTensorFromImageRange(t *testing.T) {
	// Converted values must land in the canonical [-1, 1] range.
	tt := TensorFromImage(testImage(8, 8))
	if len(tt.Shape) != 3 || tt.Shape[0] != 3 || tt.Shape[1] != 8 || tt.Shape[2] != 8 {
		t.Fatalf("shape = %v, want (3, 8, 8)", tt.Shape)
	}
	for i, v := range tt.Data {
		if v < -1 || v > 1 {
			t.Fatalf("data[%d] = %f, outside [-1, 1]", i, v)
		}
	}
}

func TestImageTensorRoundTrip(t *testing.T) {
	src := testImage(4, 4)
	tt := TensorFromImage(src)
	back, err := ImageFromTensor(tt)
	if err != nil {
		t.Fatal(err)
	}
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			want := src.RGBAAt(x, y)
			got := back.RGBAAt(x, y)
			if abs8(want.R, got.R) > 1 || abs8(want.G, got.G) > 1 || abs8(want.B, got.B) > 1 {
				t.Fatalf("pixel (%d,%d): got %v, want %v", x, y, got, want)
			}
		}
	}
}

func abs8(a, b uint8) int {
	d := int(a) - int(b)
	if d < 0 {
		return -d
	}
	return d
}

func TestImageFromTensorClamps(t *testing.T) {
	tt := TensorFromImage(testImage(2, 2))
	tt.Data[0] = 5
	tt.Data[1] = -5
	img, err := ImageFromTensor(tt)
	if err != nil {
		t.Fatal(err)
	}
	if img.RGBAAt(0, 0).R != 255 {
		t.Errorf("R(0,0) = %d, want clamped 255", img.RGBAAt(0, 0).R)
	}
	if img.RGBAAt(1, 0).R != 0 {
		t.Errorf("R(1,0) = %d, want clamped 0", img.RGBAAt(1, 0).R)
	}
}

func TestImageFromTensorRejectsNonImage(t *testing.T) {
	tt := TensorFromImage(testImage(2, 2))
	tt.Shape = []int{4, 3}
	if _, err := ImageFromTensor(tt); err == nil {
		t.Error("expected error for non-CHW shape")
	}
}

func TestPreviewScaleSize(t *testing.T) {
	out := PreviewScale(testImage(8, 8), 32)
	b := out.Bounds()
	if b.Dx() != 32 || b.Dy() != 32 {
		t.Errorf("preview size = %dx%d, want 32x32", b.Dx(), b.Dy())
	}
}

func TestPaletteDistanceIdentical(t *testing.T) {
	pal := []colorful.Color{{R: 0.2, G: 0.4, B: 0.6}, {R: 0.9, G: 0.1, B: 0.3}}
	if d := PaletteDistance(pal, pal); d != 0 {
		t.Errorf("distance = %f, want 0 for identical palettes", d)
	}
}

func TestPaletteDistanceGrowsWithDrift(t *testing.T) {
	base := []colorful.Color{{R: 0.5, G: 0.5, B: 0.5}}
	near := []colorful.Color{{R: 0.55, G: 0.5, B: 0.5}}
	far := []colorful.Color{{R: 1, G: 0, B: 0}}
	if PaletteDistance(base, near) >= PaletteDistance(base, far) {
		t.Error("near palette should score below far palette")
	}
}

func TestPaletteDistanceEmpty(t *testing.T) {
	if d := PaletteDistance(nil, []colorful.Color{{}}); !math.IsInf(d, 1) {
		t.Errorf("distance = %f, want +Inf for empty palette", d)
	}
}

func TestSortPaletteByBrightness(t *testing.T) {
	pal := []colorful.Color{
		{R: 1, G: 1, B: 1},
		{R: 0, G: 0, B: 0},
		{R: 0.5, G: 0.5, B: 0.5},
	}
	SortPaletteByBrightness(pal)
	if pal[0].R != 0 || pal[2].R != 1 {
		t.Errorf("palette not sorted dark to bright: %v", pal)
	}
}

func TestExtractPaletteKMeans(t *testing.T) {
	// A two-tone image should yield two clearly separated colors.
	img := image.NewRGBA(image.Rect(0, 0, 16, 16))
	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			c := color.RGBA{255, 0, 0, 255}
			if x >= 8 {
				c = color.RGBA{0, 0, 255, 255}
			}
			img.SetRGBA(x, y, c)
		}
	}
	pal := ExtractPalette(img, 2, PaletteMethodKMeans)
	if len(pal) != 2 {
		t.Fatalf("palette size = %d, want 2", len(pal))
	}
	if d := pal[0].DistanceLab(pal[1]); d < 0.3 {
		t.Errorf("palette colors too close: Lab distance %f", d)
	}
}

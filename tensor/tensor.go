// Package tensor provides the dense float64 tensors the projector core
// optimizes over: latent codes of shape (layers, dim) and images of shape
// (channels, height, width). Storage is flat and row-major.
package tensor

import (
	"fmt"
	"math/rand"

	"gonum.org/v1/gonum/floats"
)

// Dense is a dense tensor with explicit shape and flat row-major storage.
type Dense struct {
	Shape []int
	Data  []float64
}

// NewDense allocates a zero-filled tensor with the given shape.
func NewDense(shape ...int) *Dense {
	n := 1
	for _, s := range shape {
		n *= s
	}
	return &Dense{
		Shape: append([]int(nil), shape...),
		Data:  make([]float64, n),
	}
}

// FromSlice wraps data in a tensor with the given shape. The data is not
// copied; len(data) must equal the shape's element count.
func FromSlice(data []float64, shape ...int) (*Dense, error) {
	n := 1
	for _, s := range shape {
		n *= s
	}
	if len(data) != n {
		return nil, fmt.Errorf("tensor: %d elements do not fit shape %v", len(data), shape)
	}
	return &Dense{Shape: append([]int(nil), shape...), Data: data}, nil
}

// Clone returns a deep copy.
func (t *Dense) Clone() *Dense {
	c := NewDense(t.Shape...)
	copy(c.Data, t.Data)
	return c
}

// Len returns the number of elements.
func (t *Dense) Len() int { return len(t.Data) }

// SameShape reports whether t and o have identical shapes.
func (t *Dense) SameShape(o *Dense) bool {
	if len(t.Shape) != len(o.Shape) {
		return false
	}
	for i := range t.Shape {
		if t.Shape[i] != o.Shape[i] {
			return false
		}
	}
	return true
}

// FillNormal overwrites every element with a standard-normal draw from rng.
func (t *Dense) FillNormal(rng *rand.Rand) {
	for i := range t.Data {
		t.Data[i] = rng.NormFloat64()
	}
}

// AddScaled computes t += s*o elementwise.
func (t *Dense) AddScaled(s float64, o *Dense) error {
	if !t.SameShape(o) {
		return fmt.Errorf("tensor: shape mismatch %v vs %v", t.Shape, o.Shape)
	}
	floats.AddScaled(t.Data, s, o.Data)
	return nil
}

// Scale multiplies every element by s.
func (t *Dense) Scale(s float64) {
	floats.Scale(s, t.Data)
}

// MSE returns the mean squared error between a and b together with its
// gradient with respect to a: 2*(a-b)/n.
func MSE(a, b *Dense) (float64, *Dense, error) {
	if !a.SameShape(b) {
		return 0, nil, fmt.Errorf("tensor: shape mismatch %v vs %v", a.Shape, b.Shape)
	}
	n := float64(a.Len())
	grad := NewDense(a.Shape...)
	sum := 0.0
	for i, av := range a.Data {
		d := av - b.Data[i]
		sum += d * d
		grad.Data[i] = 2 * d / n
	}
	return sum / n, grad, nil
}

// Package tensor provides the uniform numeric buffer the graph engine's
// kernels and node values are built on: an element type, a shape, and
// contiguous storage. It defines no arithmetic of its own — that lives in
// package numeric.
package tensor

import (
	"errors"
	"fmt"
)

// Kind distinguishes the two storage flavors the original engine's
// REALSXP/INTSXP distinction requires: real-valued tensors support
// in-place mutation and are what gradients are made of, integer tensors
// are read-only inputs that get promoted to real on output.
type Kind int

const (
	// Real marks a tensor backed by float64 storage.
	Real Kind = iota
	// Int marks a tensor backed by int storage.
	Int
)

// ErrShapeMismatch is returned when two tensors expected to share a shape
// or length do not.
var ErrShapeMismatch = errors.New("tensor: shape mismatch")

// Tensor is a contiguous, row-major n-dimensional array of either real
// (float64) or integer (int) elements.
type Tensor struct {
	shape   []int
	kind    Kind
	real    []float64
	integer []int
}

// New allocates a real tensor of the given shape, zero-filled.
func New(shape []int) (*Tensor, error) {
	n, err := size(shape)
	if err != nil {
		return nil, err
	}

	return &Tensor{shape: dupShape(shape), kind: Real, real: make([]float64, n)}, nil
}

// NewReal wraps data as a real tensor of the given shape. data is used
// directly, not copied.
func NewReal(shape []int, data []float64) (*Tensor, error) {
	n, err := size(shape)
	if err != nil {
		return nil, err
	}

	if len(data) != n {
		return nil, fmt.Errorf("%w: data length %d does not match shape %v (%d elements)", ErrShapeMismatch, len(data), shape, n)
	}

	return &Tensor{shape: dupShape(shape), kind: Real, real: data}, nil
}

// NewInt wraps data as an integer tensor of the given shape. data is used
// directly, not copied.
func NewInt(shape []int, data []int) (*Tensor, error) {
	n, err := size(shape)
	if err != nil {
		return nil, err
	}

	if len(data) != n {
		return nil, fmt.Errorf("%w: data length %d does not match shape %v (%d elements)", ErrShapeMismatch, len(data), shape, n)
	}

	return &Tensor{shape: dupShape(shape), kind: Int, integer: data}, nil
}

// Scalar wraps a single float64 as a length-1, 0-dimensional tensor.
func Scalar(x float64) *Tensor {
	return &Tensor{shape: []int{}, kind: Real, real: []float64{x}}
}

func size(shape []int) (int, error) {
	n := 1
	for _, d := range shape {
		if d <= 0 {
			return 0, fmt.Errorf("tensor: shape dimension %d must be positive", d)
		}

		n *= d
	}

	return n, nil
}

func dupShape(shape []int) []int {
	out := make([]int, len(shape))
	copy(out, shape)

	return out
}

// Kind reports whether the tensor is backed by real or integer storage.
func (t *Tensor) Kind() Kind {
	return t.kind
}

// Shape returns the tensor's dimensions. The returned slice must not be
// mutated by the caller.
func (t *Tensor) Shape() []int {
	return t.shape
}

// Len returns the number of elements in the tensor.
func (t *Tensor) Len() int {
	if t.kind == Real {
		return len(t.real)
	}

	return len(t.integer)
}

// Data returns the underlying real storage. Panics if the tensor is
// integer-backed; callers that accept either kind should use At/Set.
func (t *Tensor) Data() []float64 {
	if t.kind != Real {
		panic("tensor: Data called on an integer tensor")
	}

	return t.real
}

// IntData returns the underlying integer storage. Panics if the tensor is
// real-backed.
func (t *Tensor) IntData() []int {
	if t.kind != Int {
		panic("tensor: IntData called on a real tensor")
	}

	return t.integer
}

// At returns the i-th element as a float64 regardless of storage kind.
func (t *Tensor) At(i int) float64 {
	if t.kind == Real {
		return t.real[i]
	}

	return float64(t.integer[i])
}

// Set mutates the i-th element in place. It requires real storage —
// integer tensors are immutable inputs, per spec.
func (t *Tensor) Set(i int, v float64) {
	if t.kind != Real {
		panic("tensor: Set called on an integer tensor")
	}

	t.real[i] = v
}

// Dup returns a deep copy of t, preserving kind and shape.
func (t *Tensor) Dup() *Tensor {
	out := &Tensor{shape: dupShape(t.shape), kind: t.kind}

	if t.kind == Real {
		out.real = append([]float64(nil), t.real...)
	} else {
		out.integer = append([]int(nil), t.integer...)
	}

	return out
}

// CopyShapeFrom carries shape metadata from src onto t without touching
// t's data, mirroring the original engine's SHALLOW_DUPLICATE_ATTRIB calls
// that propagate a tensor's dim attribute onto a freshly computed result.
func (t *Tensor) CopyShapeFrom(src *Tensor) {
	t.shape = dupShape(src.shape)
}

// SameShape reports whether t and other have identical dimensions.
func (t *Tensor) SameShape(other *Tensor) bool {
	if len(t.shape) != len(other.shape) {
		return false
	}

	for i, d := range t.shape {
		if other.shape[i] != d {
			return false
		}
	}

	return true
}

// ToSlice returns the tensor's elements as a new []float64, converting
// integer storage to float64.
func (t *Tensor) ToSlice() []float64 {
	if t.kind == Real {
		return append([]float64(nil), t.real...)
	}

	out := make([]float64, len(t.integer))
	for i, v := range t.integer {
		out[i] = float64(v)
	}

	return out
}

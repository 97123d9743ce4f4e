// Package initializer allocates tensors of a requested shape under a
// distribution and wraps them as parameter nodes, grounded on the
// teacher's layers/components weight initializer family (Xavier/He/
// uniform fan-in/fan-out derivations) but sampling through
// gonum.org/v1/gonum/stat/distuv instead of math/rand directly, since
// this module already depends on gonum for its numeric kernels.
package initializer

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/gocgraph/cgraph/graph"
	"github.com/gocgraph/cgraph/tensor"
)

// ErrInvalidArgument marks a non-integer, negative, or too-short shape.
var ErrInvalidArgument = errors.New("initializer: invalid argument")

func validateShape(shape []int, minDims int) error {
	if len(shape) < minDims {
		return fmt.Errorf("%w: shape %v needs at least %d dimensions", ErrInvalidArgument, shape, minDims)
	}

	for _, d := range shape {
		if d <= 0 {
			return fmt.Errorf("%w: shape %v has a non-positive dimension", ErrInvalidArgument, shape)
		}
	}

	return nil
}

func fill(shape []int, sample func() float64) (*tensor.Tensor, error) {
	t, err := tensor.New(shape)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidArgument, err)
	}

	for i := 0; i < t.Len(); i++ {
		t.Set(i, sample())
	}

	return t, nil
}

// Zeros allocates a zero-filled parameter of the given shape.
func Zeros(shape []int, name ...string) (*graph.Node, error) {
	if err := validateShape(shape, 0); err != nil {
		return nil, err
	}

	v, err := tensor.New(shape)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidArgument, err)
	}

	return graph.Parameter(v, name...)
}

// Ones allocates a one-filled parameter of the given shape.
func Ones(shape []int, name ...string) (*graph.Node, error) {
	if err := validateShape(shape, 0); err != nil {
		return nil, err
	}

	v, err := fill(shape, func() float64 { return 1 })
	if err != nil {
		return nil, err
	}

	return graph.Parameter(v, name...)
}

// Uniform allocates a parameter sampled i.i.d. from U(min, max).
func Uniform(shape []int, min, max float64, name ...string) (*graph.Node, error) {
	if err := validateShape(shape, 0); err != nil {
		return nil, err
	}

	dist := distuv.Uniform{Min: min, Max: max}

	v, err := fill(shape, dist.Rand)
	if err != nil {
		return nil, err
	}

	return graph.Parameter(v, name...)
}

// Gaussian allocates a parameter sampled i.i.d. from N(mean, sd²).
func Gaussian(shape []int, mean, sd float64, name ...string) (*graph.Node, error) {
	if err := validateShape(shape, 0); err != nil {
		return nil, err
	}

	dist := distuv.Normal{Mu: mean, Sigma: sd}

	v, err := fill(shape, dist.Rand)
	if err != nil {
		return nil, err
	}

	return graph.Parameter(v, name...)
}

// XavierUniform allocates a parameter sampled from U(-b,b) with
// b = sqrt(6 / (shape[0] + shape[1])). Requires a shape with at least 2
// dimensions.
func XavierUniform(shape []int, name ...string) (*graph.Node, error) {
	if err := validateShape(shape, 2); err != nil {
		return nil, err
	}

	b := math.Sqrt(6.0 / float64(shape[0]+shape[1]))

	return Uniform(shape, -b, b, name...)
}

// XavierGaussian allocates a parameter sampled from
// N(0, 2/(shape[0]+shape[1])). Requires a shape with at least 2
// dimensions.
func XavierGaussian(shape []int, name ...string) (*graph.Node, error) {
	if err := validateShape(shape, 2); err != nil {
		return nil, err
	}

	variance := 2.0 / float64(shape[0]+shape[1])

	return Gaussian(shape, 0, math.Sqrt(variance), name...)
}

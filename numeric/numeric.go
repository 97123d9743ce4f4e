// Package numeric implements the closed set of elementwise and
// reduction primitives spec.md §4.I names, grounded on original_source's
// math.c (stable sigmoid/sigmoid_grad) and subset.c (slice/slice_assign
// along a leading dimension), using gonum.org/v1/gonum/floats for Sum.
// Everything here reads real-or-integer storage and produces real output.
// The elementwise kernels carry the primary input's shape onto their
// result via tensor.CopyShapeFrom, mirroring the original's
// SHALLOW_DUPLICATE_ATTRIB calls; Sum, BlockSum and Slice instead return
// the shape of their reduced or sliced result.
package numeric

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/gocgraph/cgraph/tensor"
)

// ErrShapeMismatch marks operand shapes that cannot be reconciled by
// broadcasting (neither length divides the other) or a block-sum whose
// block size does not divide the input length.
var ErrShapeMismatch = errors.New("numeric: shape mismatch")

func unary(x *tensor.Tensor, f func(float64) float64) (*tensor.Tensor, error) {
	out, err := tensor.New(x.Shape())
	if err != nil {
		return nil, err
	}

	for i := 0; i < x.Len(); i++ {
		out.Set(i, f(x.At(i)))
	}

	out.CopyShapeFrom(x)

	return out, nil
}

// Pos returns x unchanged, carried through a fresh tensor (unary plus).
func Pos(x *tensor.Tensor) (*tensor.Tensor, error) { return unary(x, func(v float64) float64 { return v }) }

// Neg returns -x elementwise.
func Neg(x *tensor.Tensor) (*tensor.Tensor, error) { return unary(x, func(v float64) float64 { return -v }) }

// Square returns x² elementwise.
func Square(x *tensor.Tensor) (*tensor.Tensor, error) {
	return unary(x, func(v float64) float64 { return v * v })
}

// Sqrt returns √x elementwise.
func Sqrt(x *tensor.Tensor) (*tensor.Tensor, error) { return unary(x, math.Sqrt) }

// Cbrt returns ∛x elementwise.
func Cbrt(x *tensor.Tensor) (*tensor.Tensor, error) { return unary(x, math.Cbrt) }

// Exp returns eˣ elementwise.
func Exp(x *tensor.Tensor) (*tensor.Tensor, error) { return unary(x, math.Exp) }

// Exp2 returns 2ˣ elementwise.
func Exp2(x *tensor.Tensor) (*tensor.Tensor, error) { return unary(x, math.Exp2) }

// Ln returns the natural logarithm elementwise.
func Ln(x *tensor.Tensor) (*tensor.Tensor, error) { return unary(x, math.Log) }

// Log2 returns the base-2 logarithm elementwise.
func Log2(x *tensor.Tensor) (*tensor.Tensor, error) { return unary(x, math.Log2) }

// Log10 returns the base-10 logarithm elementwise.
func Log10(x *tensor.Tensor) (*tensor.Tensor, error) { return unary(x, math.Log10) }

// Abs returns |x| elementwise.
func Abs(x *tensor.Tensor) (*tensor.Tensor, error) { return unary(x, math.Abs) }

// Sin returns sin(x) elementwise.
func Sin(x *tensor.Tensor) (*tensor.Tensor, error) { return unary(x, math.Sin) }

// sigmoidEpsilon is the same clamp original_source's math.c applies
// (DBL_EPSILON), keeping backward's s*(1-s) away from zero gradients at
// saturation.
const sigmoidEpsilon = 2.220446049250313e-16

// Sigmoid returns the logistic function elementwise, clamped to
// [ε, 1−ε].
func Sigmoid(x *tensor.Tensor) (*tensor.Tensor, error) {
	return unary(x, func(v float64) float64 {
		s := 1 / (1 + math.Exp(-v))
		if s < sigmoidEpsilon {
			return sigmoidEpsilon
		}

		if s > 1-sigmoidEpsilon {
			return 1 - sigmoidEpsilon
		}

		return s
	})
}

// SigmoidGrad computes grad * val * (1-val), the derivative of Sigmoid
// expressed in terms of its own cached output, avoiding a second call to
// exp.
func SigmoidGrad(val, grad *tensor.Tensor) (*tensor.Tensor, error) {
	if val.Len() != grad.Len() {
		return nil, fmt.Errorf("%w: val has length %d, grad has length %d", ErrShapeMismatch, val.Len(), grad.Len())
	}

	out, err := tensor.New(val.Shape())
	if err != nil {
		return nil, err
	}

	for i := 0; i < val.Len(); i++ {
		s := val.At(i)
		out.Set(i, grad.At(i)*s*(1-s))
	}

	out.CopyShapeFrom(val)

	return out, nil
}

// broadcast combines a and b elementwise. When their lengths differ, the
// shorter operand's length must divide the longer's, and it is indexed
// modulo its own length — the same residue-class scheme block-sum
// reverses during backward.
func broadcast(a, b *tensor.Tensor, f func(x, y float64) float64) (*tensor.Tensor, error) {
	primary, other := a, b
	if b.Len() > a.Len() {
		primary, other = b, a
	}

	if other.Len() == 0 || primary.Len()%other.Len() != 0 {
		return nil, fmt.Errorf("%w: lengths %d and %d are not broadcast-compatible", ErrShapeMismatch, a.Len(), b.Len())
	}

	out, err := tensor.New(primary.Shape())
	if err != nil {
		return nil, err
	}

	for i := 0; i < primary.Len(); i++ {
		av := a.At(i % a.Len())
		bv := b.At(i % b.Len())
		out.Set(i, f(av, bv))
	}

	out.CopyShapeFrom(primary)

	return out, nil
}

// Add returns a+b elementwise, broadcasting the shorter operand over the
// longer by repeating it at stride equal to its own length.
func Add(a, b *tensor.Tensor) (*tensor.Tensor, error) {
	return broadcast(a, b, func(x, y float64) float64 { return x + y })
}

// Sub returns a-b elementwise, with the same broadcasting rule as Add.
func Sub(a, b *tensor.Tensor) (*tensor.Tensor, error) {
	return broadcast(a, b, func(x, y float64) float64 { return x - y })
}

// Mul returns a*b elementwise, with the same broadcasting rule as Add.
func Mul(a, b *tensor.Tensor) (*tensor.Tensor, error) {
	return broadcast(a, b, func(x, y float64) float64 { return x * y })
}

// Div returns a/b elementwise, with the same broadcasting rule as Add.
func Div(a, b *tensor.Tensor) (*tensor.Tensor, error) {
	return broadcast(a, b, func(x, y float64) float64 { return x / y })
}

// Pow returns aᵇ elementwise, with the same broadcasting rule as Add.
func Pow(a, b *tensor.Tensor) (*tensor.Tensor, error) {
	return broadcast(a, b, math.Pow)
}

// Sum reduces x to a scalar tensor using gonum/floats' pairwise summation
// rather than a naive running total.
func Sum(x *tensor.Tensor) (*tensor.Tensor, error) {
	return tensor.Scalar(floats.Sum(x.ToSlice())), nil
}

// BlockSum reduces a flat vector x of length L into a vector y of length
// M (M must divide L), with y[j] = Σ_k x[j + k·M]. It is the reduction
// that reverses Add/Sub/Mul/Div's broadcast during backward: an upstream
// gradient with one value per broadcast repetition is summed back down
// to the length of the operand that was broadcast.
func BlockSum(x *tensor.Tensor, m int) (*tensor.Tensor, error) {
	if m <= 0 || x.Len()%m != 0 {
		return nil, fmt.Errorf("%w: block size %d does not divide length %d", ErrShapeMismatch, m, x.Len())
	}

	out, err := tensor.New([]int{m})
	if err != nil {
		return nil, err
	}

	for j := 0; j < m; j++ {
		total := 0.0
		for k := j; k < x.Len(); k += m {
			total += x.At(k)
		}

		out.Set(j, total)
	}

	return out, nil
}

// Slice extracts the k-th (1-based) leading-dimension page of x: if x has
// shape [n, ...rest] with page size p = product(rest), Slice returns the
// p elements at offset p*(k-1), shaped as rest. Grounded on
// original_source's subset.c slice, generalized from its "at least three
// dimensions" requirement to any shape with a leading dimension.
func Slice(x *tensor.Tensor, k int) (*tensor.Tensor, error) {
	shape := x.Shape()
	if len(shape) < 1 {
		return nil, fmt.Errorf("%w: cannot slice a 0-dimensional tensor", ErrShapeMismatch)
	}

	rest := shape[1:]
	pageLen := 1
	for _, d := range rest {
		pageLen *= d
	}

	if k < 1 || pageLen*k > x.Len() {
		return nil, fmt.Errorf("%w: index %d out of bounds for leading dimension %d", ErrShapeMismatch, k, shape[0])
	}

	out, err := tensor.New(rest)
	if err != nil {
		return nil, err
	}

	offset := pageLen * (k - 1)
	for i := 0; i < pageLen; i++ {
		out.Set(i, x.At(offset+i))
	}

	return out, nil
}

// SliceAssign overwrites the k-th (1-based) leading-dimension page of x
// in place with y's elements, mirroring subset.c's slice_assign.
func SliceAssign(x *tensor.Tensor, k int, y *tensor.Tensor) error {
	shape := x.Shape()
	if len(shape) < 1 {
		return fmt.Errorf("%w: cannot slice-assign a 0-dimensional tensor", ErrShapeMismatch)
	}

	rest := shape[1:]
	pageLen := 1
	for _, d := range rest {
		pageLen *= d
	}

	if k < 1 || pageLen*k > x.Len() {
		return fmt.Errorf("%w: index %d out of bounds for leading dimension %d", ErrShapeMismatch, k, shape[0])
	}

	if y.Len() != pageLen {
		return fmt.Errorf("%w: page length %d does not match replacement length %d", ErrShapeMismatch, pageLen, y.Len())
	}

	offset := pageLen * (k - 1)
	for i := 0; i < pageLen; i++ {
		x.Set(offset+i, y.At(i))
	}

	return nil
}

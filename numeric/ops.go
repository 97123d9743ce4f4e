package numeric

import (
	"github.com/gocgraph/cgraph/graph"
	"github.com/gocgraph/cgraph/tensor"
)

// This file wires the kernels above into ready-made graph.Function
// values, the "default functions" spec.md §2 says the kernels exist to
// serve. Binary kernels accumulate their upstream gradient through
// BlockSum before returning it: BlockSum degenerates to the identity
// when the output and input already have the same length, so the same
// reduction path handles both the broadcast and non-broadcast case.

func reduceTo(full, target *tensor.Tensor) (*tensor.Tensor, error) {
	reduced, err := BlockSum(full, target.Len())
	if err != nil {
		return nil, err
	}

	reduced.CopyShapeFrom(target)

	return reduced, nil
}

func binaryFunction(forward func(a, b *tensor.Tensor) (*tensor.Tensor, error), gradA, gradB func(a, b, grad *tensor.Tensor) (*tensor.Tensor, error)) *graph.Function {
	fn, err := graph.NewFunction(
		func(args graph.Args) (*tensor.Tensor, error) {
			return forward(args.Values[0], args.Values[1])
		},
		[]graph.GradFunc{
			func(args graph.Args, value, grad *tensor.Tensor) (*tensor.Tensor, error) {
				full, err := gradA(args.Values[0], args.Values[1], grad)
				if err != nil {
					return nil, err
				}

				return reduceTo(full, args.Values[0])
			},
			func(args graph.Args, value, grad *tensor.Tensor) (*tensor.Tensor, error) {
				full, err := gradB(args.Values[0], args.Values[1], grad)
				if err != nil {
					return nil, err
				}

				return reduceTo(full, args.Values[1])
			},
		},
	)
	if err != nil {
		panic(err) // the callables above are always valid; a failure here is a programming error.
	}

	return fn
}

func unaryFunction(forward func(x *tensor.Tensor) (*tensor.Tensor, error), grad func(x, value, g *tensor.Tensor) (*tensor.Tensor, error)) *graph.Function {
	fn, err := graph.NewFunction(
		adaptForward(forward),
		[]graph.GradFunc{
			func(args graph.Args, value, g *tensor.Tensor) (*tensor.Tensor, error) {
				return grad(args.Values[0], value, g)
			},
		},
	)
	if err != nil {
		panic(err)
	}

	return fn
}

func adaptForward(f func(x *tensor.Tensor) (*tensor.Tensor, error)) graph.ForwardFunc {
	return func(args graph.Args) (*tensor.Tensor, error) {
		return f(args.Values[0])
	}
}

// AddFunc is the graph.Function for elementwise (broadcast) addition.
var AddFunc = binaryFunction(Add,
	func(a, b, grad *tensor.Tensor) (*tensor.Tensor, error) { return grad.Dup(), nil },
	func(a, b, grad *tensor.Tensor) (*tensor.Tensor, error) { return grad.Dup(), nil },
)

// SubFunc is the graph.Function for elementwise (broadcast) subtraction.
var SubFunc = binaryFunction(Sub,
	func(a, b, grad *tensor.Tensor) (*tensor.Tensor, error) { return grad.Dup(), nil },
	func(a, b, grad *tensor.Tensor) (*tensor.Tensor, error) { return Neg(grad) },
)

// MulFunc is the graph.Function for elementwise (broadcast)
// multiplication.
var MulFunc = binaryFunction(Mul,
	func(a, b, grad *tensor.Tensor) (*tensor.Tensor, error) { return Mul(grad, b) },
	func(a, b, grad *tensor.Tensor) (*tensor.Tensor, error) { return Mul(grad, a) },
)

// DivFunc is the graph.Function for elementwise (broadcast) division.
var DivFunc = binaryFunction(Div,
	func(a, b, grad *tensor.Tensor) (*tensor.Tensor, error) { return Div(grad, b) },
	func(a, b, grad *tensor.Tensor) (*tensor.Tensor, error) {
		num, err := Mul(grad, a)
		if err != nil {
			return nil, err
		}

		denom, err := Mul(b, b)
		if err != nil {
			return nil, err
		}

		ratio, err := Div(num, denom)
		if err != nil {
			return nil, err
		}

		return Neg(ratio)
	},
)

// SquareFunc is the graph.Function for the elementwise square kernel.
var SquareFunc = unaryFunction(Square, func(x, value, grad *tensor.Tensor) (*tensor.Tensor, error) {
	doubled, err := Mul(x, tensor.Scalar(2))
	if err != nil {
		return nil, err
	}

	return Mul(doubled, grad)
})

// SigmoidFunc is the graph.Function for the stable sigmoid kernel.
var SigmoidFunc = unaryFunction(Sigmoid, func(x, value, grad *tensor.Tensor) (*tensor.Tensor, error) {
	return SigmoidGrad(value, grad)
})

// SumFunc is the graph.Function that reduces its input to a scalar.
var SumFunc = unaryFunction(Sum, func(x, value, grad *tensor.Tensor) (*tensor.Tensor, error) {
	out, err := tensor.New(x.Shape())
	if err != nil {
		return nil, err
	}

	g0 := grad.At(0)
	for i := 0; i < out.Len(); i++ {
		out.Set(i, g0)
	}

	return out, nil
})

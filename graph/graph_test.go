package graph_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gocgraph/cgraph/graph"
	"github.com/gocgraph/cgraph/tensor"
)

func squareFunc(t *testing.T) *graph.Function {
	t.Helper()

	fn, err := graph.NewFunction(
		func(a graph.Args) (*tensor.Tensor, error) {
			out, err := tensor.New(a.Values[0].Shape())
			require.NoError(t, err)

			for i := 0; i < out.Len(); i++ {
				x := a.Values[0].At(i)
				out.Set(i, x*x)
			}

			return out, nil
		},
		[]graph.GradFunc{
			func(a graph.Args, value, grad *tensor.Tensor) (*tensor.Tensor, error) {
				out, err := tensor.New(a.Values[0].Shape())
				require.NoError(t, err)

				for i := 0; i < out.Len(); i++ {
					out.Set(i, 2*a.Values[0].At(i)*grad.At(i))
				}

				return out, nil
			},
		},
	)
	require.NoError(t, err)

	return fn
}

func TestGraph_GenNameAndGet(t *testing.T) {
	g := graph.NewGraph(false)

	a, err := graph.Constant(tensor.Scalar(1))
	require.NoError(t, err)
	assert.Equal(t, "v1", a.Name())

	b, err := graph.Constant(tensor.Scalar(2), "b")
	require.NoError(t, err)
	assert.Equal(t, "b", b.Name())

	got, err := g.Get("b")
	require.NoError(t, err)
	assert.Same(t, b, got)

	_, err = g.Get("missing")
	assert.ErrorIs(t, err, graph.ErrNotFound)
}

func TestGraph_Get_MostRecentShadows(t *testing.T) {
	g := graph.NewGraph(false)

	first, err := graph.Constant(tensor.Scalar(1), "x")
	require.NoError(t, err)

	second, err := graph.Constant(tensor.Scalar(2), "x")
	require.NoError(t, err)

	got, err := g.Get("x")
	require.NoError(t, err)
	assert.Same(t, second, got)
	assert.NotSame(t, first, got)
}

func TestGraph_ForwardScalarAddThenSquare(t *testing.T) {
	g := graph.NewGraph(false)

	x, err := graph.Constant(tensor.Scalar(2), "x")
	require.NoError(t, err)

	y, err := graph.Constant(tensor.Scalar(3), "y")
	require.NoError(t, err)

	sum, err := graph.Operator(addFunc(t), []graph.Operand{graph.Use(x), graph.Use(y)}, "sum")
	require.NoError(t, err)

	out, err := graph.Operator(squareFunc(t), []graph.Operand{graph.Use(sum)}, "out")
	require.NoError(t, err)

	require.NoError(t, g.Forward(out))

	v, err := out.Value()
	require.NoError(t, err)
	assert.Equal(t, 25.0, v.At(0)) // (2+3)^2
}

func TestGraph_BackwardScalarAddThenSquare(t *testing.T) {
	g := graph.NewGraph(false)

	x, err := graph.Parameter(tensor.Scalar(2), "x")
	require.NoError(t, err)

	y, err := graph.Parameter(tensor.Scalar(3), "y")
	require.NoError(t, err)

	sum, err := graph.Operator(addFunc(t), []graph.Operand{graph.Use(x), graph.Use(y)}, "sum")
	require.NoError(t, err)

	out, err := graph.Operator(squareFunc(t), []graph.Operand{graph.Use(sum)}, "out")
	require.NoError(t, err)

	require.NoError(t, g.Forward(out))
	require.NoError(t, g.Backward(out, nil))

	// d(out)/dx = d(out)/d(sum) * d(sum)/dx = 2*(x+y) * 1 = 10
	gx, err := x.Grad()
	require.NoError(t, err)
	assert.Equal(t, 10.0, gx.At(0))

	gy, err := y.Grad()
	require.NoError(t, err)
	assert.Equal(t, 10.0, gy.At(0))
}

func TestGraph_BackwardClearsGradsBetweenCalls(t *testing.T) {
	g := graph.NewGraph(true)

	x, err := graph.Parameter(tensor.Scalar(2), "x")
	require.NoError(t, err)

	out, err := graph.Operator(squareFunc(t), []graph.Operand{graph.Use(x)})
	require.NoError(t, err)

	require.NoError(t, g.Backward(out, nil))
	require.NoError(t, g.Backward(out, nil))

	gx, err := x.Grad()
	require.NoError(t, err)
	assert.Equal(t, 4.0, gx.At(0), "second Backward call must not double-accumulate onto the first")
}

func TestGraph_EagerAndLazyAgree(t *testing.T) {
	eager := graph.NewGraph(true)

	ex, err := graph.Constant(tensor.Scalar(4), "x")
	require.NoError(t, err)

	eagerOut, err := graph.Operator(squareFunc(t), []graph.Operand{graph.Use(ex)})
	require.NoError(t, err)

	eagerVal, err := eagerOut.Value()
	require.NoError(t, err)

	lazy := graph.NewGraph(false)

	lx, err := graph.Constant(tensor.Scalar(4), "x")
	require.NoError(t, err)

	lazyOut, err := graph.Operator(squareFunc(t), []graph.Operand{graph.Use(lx)})
	require.NoError(t, err)

	require.NoError(t, lazy.Forward(lazyOut))

	lazyVal, err := lazyOut.Value()
	require.NoError(t, err)

	assert.Equal(t, eagerVal.At(0), lazyVal.At(0))
}

func TestGraph_BackwardRequiresValue(t *testing.T) {
	g := graph.NewGraph(false)

	x, err := graph.Constant(tensor.Scalar(2))
	require.NoError(t, err)

	out, err := graph.Operator(squareFunc(t), []graph.Operand{graph.Use(x)})
	require.NoError(t, err)

	err = g.Backward(out, nil)
	assert.ErrorIs(t, err, graph.ErrNoValue)
}

func TestGraph_BackwardIndexOutOfRange(t *testing.T) {
	g := graph.NewGraph(true)

	x, err := graph.Constant(tensor.Scalar(2))
	require.NoError(t, err)

	out, err := graph.Operator(squareFunc(t), []graph.Operand{graph.Use(x)})
	require.NoError(t, err)

	bad := 5

	err = g.Backward(out, &bad)
	assert.ErrorIs(t, err, graph.ErrInvalidArgument)
}

func TestGraph_Parameters(t *testing.T) {
	graph.NewGraph(false)

	_, err := graph.Constant(tensor.Scalar(1))
	require.NoError(t, err)

	p1, err := graph.Parameter(tensor.Scalar(2))
	require.NoError(t, err)

	p2, err := graph.Parameter(tensor.Scalar(3))
	require.NoError(t, err)

	g, err := graph.CurrentGraph()
	require.NoError(t, err)

	params := g.Parameters()
	require.Len(t, params, 2)
	assert.Same(t, p1, params[0])
	assert.Same(t, p2, params[1])
}

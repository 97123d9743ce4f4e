package numeric_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gocgraph/cgraph/graph"
	"github.com/gocgraph/cgraph/numeric"
	"github.com/gocgraph/cgraph/tensor"
)

func TestScenario_ScalarAddThenSquare(t *testing.T) {
	g := graph.NewGraph(true)

	p, err := graph.Parameter(tensor.Scalar(3), "p")
	require.NoError(t, err)

	c, err := graph.Constant(tensor.Scalar(4), "c")
	require.NoError(t, err)

	n, err := graph.Operator(numeric.AddFunc, []graph.Operand{graph.Use(p), graph.Use(c)}, "n")
	require.NoError(t, err)

	m, err := graph.Operator(numeric.SquareFunc, []graph.Operand{graph.Use(n)}, "m")
	require.NoError(t, err)

	mv, err := m.Value()
	require.NoError(t, err)
	assert.Equal(t, 49.0, mv.At(0))

	require.NoError(t, g.Backward(m, nil))

	pg, err := p.Grad()
	require.NoError(t, err)
	assert.Equal(t, 14.0, pg.At(0))

	ng, err := n.Grad()
	require.NoError(t, err)
	assert.Equal(t, 14.0, ng.At(0))
}

func TestScenario_VectorSigmoidThenSum(t *testing.T) {
	g := graph.NewGraph(true)

	p, err := graph.Parameter(real(t, []int{3}, []float64{1, 2, 3}), "p")
	require.NoError(t, err)

	n, err := graph.Operator(numeric.SigmoidFunc, []graph.Operand{graph.Use(p)}, "n")
	require.NoError(t, err)

	s, err := graph.Operator(numeric.SumFunc, []graph.Operand{graph.Use(n)}, "s")
	require.NoError(t, err)

	require.NoError(t, g.Backward(s, nil))

	pg, err := p.Grad()
	require.NoError(t, err)

	for i, x := range []float64{1, 2, 3} {
		sigma := 1 / (1 + math.Exp(-x))
		assert.InDelta(t, sigma*(1-sigma), pg.At(i), 1e-9)
	}
}

func TestScenario_BroadcastReduction(t *testing.T) {
	g := graph.NewGraph(true)

	p, err := graph.Parameter(real(t, []int{2}, []float64{1, 1}), "p")
	require.NoError(t, err)

	x, err := graph.Constant(real(t, []int{3, 2}, []float64{1, 2, 3, 4, 5, 6}), "x")
	require.NoError(t, err)

	a, err := graph.Operator(numeric.AddFunc, []graph.Operand{graph.Use(x), graph.Use(p)}, "a")
	require.NoError(t, err)

	s, err := graph.Operator(numeric.SumFunc, []graph.Operand{graph.Use(a)}, "s")
	require.NoError(t, err)

	require.NoError(t, g.Backward(s, nil))

	pg, err := p.Grad()
	require.NoError(t, err)
	assert.Equal(t, []float64{3, 3}, pg.ToSlice())
}

func TestScenario_MostRecentLookup(t *testing.T) {
	g := graph.NewGraph(true)

	_, err := graph.Constant(tensor.Scalar(1), "w")
	require.NoError(t, err)

	_, err = graph.Constant(tensor.Scalar(2), "w")
	require.NoError(t, err)

	n, err := g.Get("w")
	require.NoError(t, err)

	v, err := n.Value()
	require.NoError(t, err)
	assert.Equal(t, 2.0, v.At(0))
}


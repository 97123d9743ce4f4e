package initializer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gocgraph/cgraph/graph"
	"github.com/gocgraph/cgraph/initializer"
)

func TestZeros(t *testing.T) {
	graph.NewGraph(true)

	n, err := initializer.Zeros([]int{2, 3})
	require.NoError(t, err)

	v, err := n.Value()
	require.NoError(t, err)
	assert.Equal(t, graph.KindParameter, n.Kind())

	for i := 0; i < v.Len(); i++ {
		assert.Equal(t, 0.0, v.At(i))
	}
}

func TestOnes(t *testing.T) {
	graph.NewGraph(true)

	n, err := initializer.Ones([]int{4})
	require.NoError(t, err)

	v, err := n.Value()
	require.NoError(t, err)

	for i := 0; i < v.Len(); i++ {
		assert.Equal(t, 1.0, v.At(i))
	}
}

func TestUniform_StaysInBounds(t *testing.T) {
	graph.NewGraph(true)

	n, err := initializer.Uniform([]int{100}, -2, 3)
	require.NoError(t, err)

	v, err := n.Value()
	require.NoError(t, err)

	for i := 0; i < v.Len(); i++ {
		assert.GreaterOrEqual(t, v.At(i), -2.0)
		assert.LessOrEqual(t, v.At(i), 3.0)
	}
}

func TestGaussian_Shape(t *testing.T) {
	graph.NewGraph(true)

	n, err := initializer.Gaussian([]int{3, 3}, 0, 1)
	require.NoError(t, err)

	v, err := n.Value()
	require.NoError(t, err)
	assert.Equal(t, []int{3, 3}, v.Shape())
}

func TestXavierUniform_Bounds(t *testing.T) {
	graph.NewGraph(true)

	n, err := initializer.XavierUniform([]int{4, 6})
	require.NoError(t, err)

	v, err := n.Value()
	require.NoError(t, err)

	for i := 0; i < v.Len(); i++ {
		assert.True(t, v.At(i) >= -1 && v.At(i) <= 1)
	}
}

func TestXavierUniform_RequiresTwoDims(t *testing.T) {
	graph.NewGraph(true)

	_, err := initializer.XavierUniform([]int{5})
	assert.ErrorIs(t, err, initializer.ErrInvalidArgument)
}

func TestXavierGaussian_RequiresTwoDims(t *testing.T) {
	graph.NewGraph(true)

	_, err := initializer.XavierGaussian([]int{5})
	assert.ErrorIs(t, err, initializer.ErrInvalidArgument)
}

func TestInvalidShape(t *testing.T) {
	graph.NewGraph(true)

	_, err := initializer.Zeros([]int{2, -1})
	assert.ErrorIs(t, err, initializer.ErrInvalidArgument)
}

package graph

import (
	"fmt"

	"github.com/gocgraph/cgraph/tensor"
)

// Args is the argument list an operator's forward and gradient callables
// receive: one value per input, in declaration order, alongside that
// input's tag (empty when the input is untagged). A callable that cares
// about tags looks them up in Tags; one that doesn't can simply index
// Values positionally.
type Args struct {
	Values []*tensor.Tensor
	Tags   []string
}

// ForwardFunc computes an operator node's value from its inputs' values.
type ForwardFunc func(args Args) (*tensor.Tensor, error)

// GradFunc produces the partial derivative of an operator's output with
// respect to one of its inputs. value is the node's own cached output,
// grad is its accumulated upstream gradient.
type GradFunc func(args Args, value, grad *tensor.Tensor) (*tensor.Tensor, error)

// Function pairs a forward callable with its per-input gradient
// callables. When GradTags is non-empty, gradient callables are resolved
// by matching an input's tag against GradTags instead of by position.
type Function struct {
	Forward  ForwardFunc
	Grads    []GradFunc
	GradTags []string
}

// NewFunction validates and constructs a Function. forward must be
// non-nil; every entry of grads must be non-nil. gradTags, when supplied,
// must have the same length as grads and pairs each gradient callable
// with the input tag it serves.
func NewFunction(forward ForwardFunc, grads []GradFunc, gradTags ...string) (*Function, error) {
	if forward == nil {
		return nil, fmt.Errorf("%w: function 'forward' must be callable", ErrInvalidArgument)
	}

	for i, g := range grads {
		if g == nil {
			return nil, fmt.Errorf("%w: function 'grads' has a non-callable entry at index %d", ErrInvalidArgument, i)
		}
	}

	if len(gradTags) > 0 && len(gradTags) != len(grads) {
		return nil, fmt.Errorf("%w: function 'gradTags' length (%d) must match 'grads' length (%d)",
			ErrInvalidArgument, len(gradTags), len(grads))
	}

	f := &Function{Forward: forward, Grads: append([]GradFunc(nil), grads...)}
	if len(gradTags) > 0 {
		f.GradTags = append([]string(nil), gradTags...)
	}

	return f, nil
}

// resolveGrad selects the gradient callable for input i, which carries
// tag (possibly empty). Untagged functions resolve by position; tagged
// functions require a non-empty tag that matches one of GradTags.
func (f *Function) resolveGrad(i int, tag string, nodeName string) (GradFunc, error) {
	if len(f.GradTags) == 0 {
		if i >= len(f.Grads) {
			return nil, fmt.Errorf("%w: node %q has no gradient for input %d", ErrUndifferentiable, nodeName, i+1)
		}

		return f.Grads[i], nil
	}

	if tag == "" {
		return nil, fmt.Errorf("%w: node %q has no gradient for input %d", ErrUndifferentiable, nodeName, i+1)
	}

	for j, t := range f.GradTags {
		if t == tag {
			return f.Grads[j], nil
		}
	}

	return nil, fmt.Errorf("%w: node %q has no gradient for input %q", ErrUndifferentiable, nodeName, tag)
}

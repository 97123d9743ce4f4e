package graph

import "errors"

// Sentinel errors for the failure kinds spec.md §7 requires. Call sites
// wrap these with fmt.Errorf("...: %w", ..., ErrX) and callers recover the
// kind with errors.Is, following the teacher's graph.ErrInvalidInputCount
// pattern.
var (
	// ErrInvalidArgument marks bad types, out-of-range hyperparameters, or
	// an invalid shape.
	ErrInvalidArgument = errors.New("graph: invalid argument")
	// ErrNotFound marks a node lookup by name that failed.
	ErrNotFound = errors.New("graph: node not found")
	// ErrNoValue marks a read of a value or gradient that has not been set.
	ErrNoValue = errors.New("graph: no value")
	// ErrNoActiveGraph marks a node constructor invoked with no session
	// graph bound.
	ErrNoActiveGraph = errors.New("graph: no active graph")
	// ErrUndifferentiable marks an operator with no gradient callable for
	// an input, or a non-numeric target value.
	ErrUndifferentiable = errors.New("graph: undifferentiable")
	// ErrNonConformingGradient marks a gradient whose length does not
	// match its input's length.
	ErrNonConformingGradient = errors.New("graph: non-conforming gradient")
	// ErrStackEmpty marks an internal traversal invariant violation; it
	// should be unreachable.
	ErrStackEmpty = errors.New("graph: stack empty")
	// ErrEvalFailed marks a foreign forward/gradient callable that
	// returned an error.
	ErrEvalFailed = errors.New("graph: evaluation failed")
)

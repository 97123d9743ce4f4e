// Package graph implements the reverse-mode autodiff engine's computation
// graph: tagged nodes (constants, parameters, inputs, operators), the
// function contract an operator's forward/gradient callables satisfy, the
// graph that owns and traverses nodes, and the process-wide session slot
// node constructors bind to implicitly.
package graph

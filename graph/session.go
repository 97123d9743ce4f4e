package graph

// This file implements component F (Session) from spec.md as part of
// package graph rather than a separate package: node constructors
// (Constant, Parameter, Input, Operator) need the current graph, and the
// current graph needs to construct nodes, so splitting session into its
// own importable package would create an import cycle. Keeping the
// process-wide slot here instead mirrors original_source's session.c,
// which cg_graph itself calls into via cg_session_set_graph.

var current *Graph

// CurrentGraph returns the process-wide graph node constructors bind to,
// failing with ErrNoActiveGraph if none has been set via NewGraph or
// SetCurrentGraph.
func CurrentGraph() (*Graph, error) {
	if current == nil {
		return nil, ErrNoActiveGraph
	}

	return current, nil
}

// SetCurrentGraph rebinds the process-wide current graph, letting callers
// switch between multiple graphs built in the same process.
func SetCurrentGraph(g *Graph) {
	current = g
}

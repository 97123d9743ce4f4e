package graph

import (
	"fmt"

	"github.com/gocgraph/cgraph/tensor"
)

// Graph owns a dense, insertion-ordered set of nodes and evaluates them.
// Eager controls whether Operator evaluates its node immediately at
// construction time (when every input already has a value) or defers
// until an explicit Forward call.
type Graph struct {
	Eager bool
	nodes []*Node
}

// NewGraph constructs an empty graph and binds it as the current session
// graph, mirroring original_source's cg_graph constructor calling
// cg_session_set_graph.
func NewGraph(eager bool) *Graph {
	g := &Graph{Eager: eager}
	SetCurrentGraph(g)

	return g
}

// Nodes returns the graph's nodes in insertion order.
func (g *Graph) Nodes() []*Node {
	return g.nodes
}

func (g *Graph) addNode(n *Node) {
	n.id = len(g.nodes) + 1
	g.nodes = append(g.nodes, n)
}

// GenName returns the name the next inserted node would receive if no
// explicit name is given, matching original_source's cg_graph_gen_name
// ("v<n>" counting from 1).
func (g *Graph) GenName() string {
	return fmt.Sprintf("v%d", len(g.nodes)+1)
}

func (g *Graph) bindName(name string) string {
	if name != "" {
		return name
	}

	return g.GenName()
}

func (g *Graph) newConstant(value *tensor.Tensor, name string) *Node {
	n := &Node{kind: KindConstant, value: value}
	n.name = g.bindName(name)
	g.addNode(n)

	return n
}

func (g *Graph) newParameter(value *tensor.Tensor, name string) *Node {
	n := &Node{kind: KindParameter, value: value.Dup()}
	n.name = g.bindName(name)
	g.addNode(n)

	return n
}

func (g *Graph) newInput(name string) *Node {
	n := &Node{kind: KindInput}
	n.name = g.bindName(name)
	g.addNode(n)

	return n
}

// Get returns the most recently inserted node with the given name,
// matching original_source's cg_graph_get (later insertions shadow
// earlier ones sharing a name).
func (g *Graph) Get(name string) (*Node, error) {
	for i := len(g.nodes) - 1; i >= 0; i-- {
		if g.nodes[i].name == name {
			return g.nodes[i], nil
		}
	}

	return nil, fmt.Errorf("%w: %q", ErrNotFound, name)
}

// Parameters returns every parameter node in insertion order.
func (g *Graph) Parameters() []*Node {
	var params []*Node

	for _, n := range g.nodes {
		if n.kind == KindParameter {
			params = append(params, n)
		}
	}

	return params
}

// traverse performs the stack-based depth-first walk from
// original_source's cg_graph_dfs_from: it descends into the first
// unvisited operator input it finds, and only emits a node, in forward
// topological order, once every input it depends on has already been
// emitted. Reversing the result gives the order Backward dispatches in.
func (g *Graph) traverse(target *Node) ([]*Node, error) {
	visited := make(map[*Node]bool, len(g.nodes))
	order := make([]*Node, 0, len(g.nodes))

	s := newStack(len(g.nodes))
	s.push(target)

	for !s.isEmpty() {
		top, err := s.top()
		if err != nil {
			return nil, err
		}

		if visited[top] {
			if err := s.pop(); err != nil {
				return nil, err
			}

			continue
		}

		descended := false

		if top.kind == KindOperator {
			for _, link := range top.inputs {
				if link.Node.kind == KindOperator && !visited[link.Node] {
					s.push(link.Node)
					descended = true

					break
				}
			}
		}

		if descended {
			continue
		}

		visited[top] = true
		order = append(order, top)

		if err := s.pop(); err != nil {
			return nil, err
		}
	}

	return order, nil
}

func (g *Graph) execForward(n *Node) error {
	if n.kind != KindOperator {
		return nil
	}

	args := Args{
		Values: make([]*tensor.Tensor, len(n.inputs)),
		Tags:   make([]string, len(n.inputs)),
	}

	for i, link := range n.inputs {
		v, err := link.Node.Value()
		if err != nil {
			return fmt.Errorf("node %q: input %d: %w", n.name, i+1, err)
		}

		args.Values[i] = v
		args.Tags[i] = link.Tag
	}

	value, err := n.fn.Forward(args)
	if err != nil {
		return fmt.Errorf("node %q: %w: %v", n.name, ErrEvalFailed, err)
	}

	n.value = value

	return nil
}

// Forward evaluates every operator node that target transitively depends
// on, in dependency order, and caches target's value. Inputs must already
// carry a value (bound via Node.SetValue) before this runs.
func (g *Graph) Forward(target *Node) error {
	order, err := g.traverse(target)
	if err != nil {
		return err
	}

	for _, n := range order {
		if err := g.execForward(n); err != nil {
			return err
		}
	}

	return nil
}

func zerosLike(v *tensor.Tensor) *tensor.Tensor {
	z, _ := tensor.New(v.Shape())

	return z
}

func onesLike(v *tensor.Tensor) *tensor.Tensor {
	z := zerosLike(v)
	for i := 0; i < z.Len(); i++ {
		z.Set(i, 1)
	}

	return z
}

func (g *Graph) accumulate(n *Node, delta *tensor.Tensor) error {
	if n.grad == nil {
		n.grad = zerosLike(n.value)
	}

	if n.grad.Len() != delta.Len() {
		return fmt.Errorf("%w: node %q expected length %d, got %d",
			ErrNonConformingGradient, n.name, n.grad.Len(), delta.Len())
	}

	for i := 0; i < n.grad.Len(); i++ {
		n.grad.Set(i, n.grad.At(i)+delta.At(i))
	}

	return nil
}

func (g *Graph) execBackward(n *Node) error {
	if n.kind != KindOperator {
		return nil
	}

	args := Args{
		Values: make([]*tensor.Tensor, len(n.inputs)),
		Tags:   make([]string, len(n.inputs)),
	}

	for i, link := range n.inputs {
		v, err := link.Node.Value()
		if err != nil {
			return fmt.Errorf("node %q: input %d: %w", n.name, i+1, err)
		}

		args.Values[i] = v
		args.Tags[i] = link.Tag
	}

	for i, link := range n.inputs {
		if link.Node.kind == KindConstant {
			continue
		}

		gradFn, err := n.fn.resolveGrad(i, link.Tag, n.name)
		if err != nil {
			return err
		}

		delta, err := gradFn(args, n.value, n.grad)
		if err != nil {
			return fmt.Errorf("node %q: %w: %v", n.name, ErrEvalFailed, err)
		}

		if err := g.accumulate(link.Node, delta); err != nil {
			return err
		}
	}

	return nil
}

// Backward clears every node's gradient, seeds target's gradient (all
// ones when index is nil, a one-hot at *index otherwise), and propagates
// it through target's dependency graph in reverse topological order.
// index, when given, is 1-based over target's value, matching
// original_source's R-facing convention (seed position index-1). target
// must already have a cached value (run Forward first, or rely on eager
// evaluation).
func (g *Graph) Backward(target *Node, index *int) error {
	value, err := target.Value()
	if err != nil {
		return err
	}

	order, err := g.traverse(target)
	if err != nil {
		return err
	}

	for _, n := range g.nodes {
		n.grad = nil
	}

	var seed *tensor.Tensor

	if index == nil {
		seed = onesLike(value)
	} else {
		seed = zerosLike(value)

		if *index < 1 || *index > seed.Len() {
			return fmt.Errorf("%w: index %d out of range for length %d", ErrInvalidArgument, *index, seed.Len())
		}

		seed.Set(*index-1, 1)
	}

	target.grad = seed

	for i := len(order) - 1; i >= 0; i-- {
		if err := g.execBackward(order[i]); err != nil {
			return err
		}
	}

	return nil
}

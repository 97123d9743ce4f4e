package graph

import (
	"fmt"

	"github.com/gocgraph/cgraph/tensor"
)

// Kind tags the four node variants the engine knows about. The original
// engine also reserves a CGNOP ("no-op") variant it never constructs;
// spec.md resolves that open question by dropping it, so Kind stays at
// four values.
type Kind int

const (
	// KindConstant marks a fixed, non-trainable value.
	KindConstant Kind = iota
	// KindParameter marks learnable state an optimizer updates.
	KindParameter
	// KindInput marks a value bound externally before forward runs.
	KindInput
	// KindOperator marks a node whose value is produced by a Function.
	KindOperator
)

func (k Kind) String() string {
	switch k {
	case KindConstant:
		return "constant"
	case KindParameter:
		return "parameter"
	case KindInput:
		return "input"
	case KindOperator:
		return "operator"
	default:
		return "unknown"
	}
}

// Link is one declared input of an operator node: the upstream node plus
// an optional tag used to pass it as a named rather than positional
// argument to the operator's forward/gradient callables.
type Link struct {
	Node *Node
	Tag  string
}

// Node is a tagged record: constant, parameter, input, or operator. It
// carries an id assigned by the graph at insertion, a name, an optional
// cached value, an optional accumulated gradient, and — for operators —
// its inputs and function.
type Node struct {
	id    int
	name  string
	kind  Kind
	value *tensor.Tensor
	grad  *tensor.Tensor

	inputs []Link
	fn     *Function
}

// ID returns the node's 1-based, dense, stable identifier.
func (n *Node) ID() int { return n.id }

// Name returns the node's name.
func (n *Node) Name() string { return n.name }

// Kind returns the node's tagged variant.
func (n *Node) Kind() Kind { return n.kind }

// Inputs returns the node's declared inputs. Empty for non-operators.
func (n *Node) Inputs() []Link { return n.inputs }

// Function returns the node's Function. Nil for non-operators.
func (n *Node) Function() *Function { return n.fn }

// Value returns the node's cached value, failing with ErrNoValue if it
// has not been set (an unbound input, or an operator not yet evaluated).
func (n *Node) Value() (*tensor.Tensor, error) {
	if n.value == nil {
		return nil, fmt.Errorf("node %q: %w", n.name, ErrNoValue)
	}

	return n.value, nil
}

// Grad returns the node's accumulated gradient, failing with ErrNoValue
// if backward has not run (or has not reached this node) since it was
// last cleared.
func (n *Node) Grad() (*tensor.Tensor, error) {
	if n.grad == nil {
		return nil, fmt.Errorf("node %q: %w", n.name, ErrNoValue)
	}

	return n.grad, nil
}

// SetValue binds an externally supplied value to the node. It is the
// mechanism by which Input nodes, which have no value until forward
// explicitly receives one, get fed.
func (n *Node) SetValue(v *tensor.Tensor) { n.value = v }

// Operand describes one argument to Operator: either an existing node, or
// a raw tensor value that Operator promotes to a freshly inserted
// Constant node before wiring it in, with an optional tag.
type Operand struct {
	node  *Node
	value *tensor.Tensor
	tag   string
}

// Use wires an existing node in as a positional operand.
func Use(n *Node) Operand { return Operand{node: n} }

// UseTagged wires an existing node in as a named operand.
func UseTagged(tag string, n *Node) Operand { return Operand{node: n, tag: tag} }

// Const promotes a raw tensor to a Constant operand.
func Const(v *tensor.Tensor) Operand { return Operand{value: v} }

// ConstTagged promotes a raw tensor to a named Constant operand.
func ConstTagged(tag string, v *tensor.Tensor) Operand { return Operand{value: v, tag: tag} }

func optionalName(name []string) string {
	if len(name) > 0 {
		return name[0]
	}

	return ""
}

// Constant creates a constant node holding value, registering it with
// the current session graph. value is used as-is, no copy required.
func Constant(value *tensor.Tensor, name ...string) (*Node, error) {
	g, err := CurrentGraph()
	if err != nil {
		return nil, err
	}

	return g.newConstant(value, optionalName(name)), nil
}

// Parameter creates a parameter node holding a duplicate of value, so
// that later optimizer updates never alias caller-owned storage,
// registering it with the current session graph.
func Parameter(value *tensor.Tensor, name ...string) (*Node, error) {
	g, err := CurrentGraph()
	if err != nil {
		return nil, err
	}

	return g.newParameter(value, optionalName(name)), nil
}

// Input creates an input node with no value until forward explicitly
// receives one via SetValue, registering it with the current session
// graph.
func Input(name ...string) (*Node, error) {
	g, err := CurrentGraph()
	if err != nil {
		return nil, err
	}

	return g.newInput(optionalName(name)), nil
}

// Operator creates an operator node computed by fn over inputs,
// registering it with the current session graph. inputs entries that are
// not already nodes are promoted to Constant nodes first. If the graph is
// eager and every (promoted) input already has a value, forward runs
// immediately and the result is cached.
func Operator(fn *Function, inputs []Operand, name ...string) (*Node, error) {
	g, err := CurrentGraph()
	if err != nil {
		return nil, err
	}

	if fn == nil {
		return nil, fmt.Errorf("%w: argument 'function' must be a Function", ErrInvalidArgument)
	}

	if len(inputs) == 0 {
		return nil, fmt.Errorf("%w: argument 'inputs' must be non-empty", ErrInvalidArgument)
	}

	links := make([]Link, len(inputs))
	canEval := true

	for i, op := range inputs {
		n := op.node
		if n == nil {
			n = g.newConstant(op.value, "")
		}

		if n.value == nil {
			canEval = false
		}

		links[i] = Link{Node: n, Tag: op.tag}
	}

	node := &Node{kind: KindOperator, fn: fn, inputs: links}
	node.name = g.bindName(optionalName(name))

	if g.Eager && canEval {
		if err := g.execForward(node); err != nil {
			return nil, err
		}
	}

	g.addNode(node)

	return node, nil
}

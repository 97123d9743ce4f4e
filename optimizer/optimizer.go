// Package optimizer implements the gradient-descent family that consumes
// accumulated gradients to update parameter values in place: plain SGD,
// momentum, Adagrad, RMSprop, and Adam, grounded on the teacher's
// training/optimizer package but generalized from its per-dtype engine
// dispatch down to the single real tensor this module's graph package
// produces.
package optimizer

import (
	"errors"
	"fmt"
	"math"

	"github.com/gocgraph/cgraph/graph"
	"github.com/gocgraph/cgraph/tensor"
)

// Sentinel errors mirror spec.md §7's InvalidArgument and
// NonConformingGradient kinds, scoped to optimizer construction and
// stepping.
var (
	ErrInvalidArgument       = errors.New("optimizer: invalid argument")
	ErrNonConformingGradient = errors.New("optimizer: non-conforming gradient")
)

// Kind identifies which update rule Step applies.
type Kind int

const (
	SGD Kind = iota
	Momentum
	Adagrad
	RMSprop
	Adam
)

func (k Kind) String() string {
	switch k {
	case SGD:
		return "sgd"
	case Momentum:
		return "momentum"
	case Adagrad:
		return "adagrad"
	case RMSprop:
		return "rmsprop"
	case Adam:
		return "adam"
	default:
		return "unknown"
	}
}

// Optimizer owns a parameter list, its hyperparameters, and its
// per-parameter state buffers (buf0, buf1), allocated lazily on first
// Step and reused across calls.
type Optimizer struct {
	kind Kind
	eta  float64

	gamma float64
	beta1 float64
	beta2 float64
	eps   float64

	parms []*graph.Node
	buf0  []*tensor.Tensor
	buf1  []*tensor.Tensor
	t     int
}

func validateParms(parms []*graph.Node) error {
	if len(parms) == 0 {
		return fmt.Errorf("%w: 'parms' must be non-empty", ErrInvalidArgument)
	}

	for i, p := range parms {
		if p.Kind() != graph.KindParameter {
			return fmt.Errorf("%w: parms[%d] (%q) is not a parameter node", ErrInvalidArgument, i, p.Name())
		}
	}

	return nil
}

// NewSGD constructs a plain stochastic gradient descent optimizer:
// v ← v − η·g.
func NewSGD(parms []*graph.Node, eta float64) (*Optimizer, error) {
	if err := validateParms(parms); err != nil {
		return nil, err
	}

	if eta <= 0 {
		return nil, fmt.Errorf("%w: learning rate must be > 0, got %v", ErrInvalidArgument, eta)
	}

	return &Optimizer{kind: SGD, eta: eta, parms: parms}, nil
}

// NewMomentum constructs a momentum optimizer: buf0 ← γ·buf0 + η·g;
// v ← v − buf0.
func NewMomentum(parms []*graph.Node, eta, gamma float64) (*Optimizer, error) {
	if err := validateParms(parms); err != nil {
		return nil, err
	}

	if eta <= 0 {
		return nil, fmt.Errorf("%w: learning rate must be > 0, got %v", ErrInvalidArgument, eta)
	}

	if gamma < 0 || gamma >= 1 {
		return nil, fmt.Errorf("%w: momentum gamma must be in [0,1), got %v", ErrInvalidArgument, gamma)
	}

	return &Optimizer{kind: Momentum, eta: eta, gamma: gamma, parms: parms}, nil
}

// NewAdagrad constructs an Adagrad optimizer: buf0 ← buf0 + g²;
// v ← v − η·g / (√buf0 + ε).
func NewAdagrad(parms []*graph.Node, eta, eps float64) (*Optimizer, error) {
	if err := validateParms(parms); err != nil {
		return nil, err
	}

	if eta <= 0 {
		return nil, fmt.Errorf("%w: learning rate must be > 0, got %v", ErrInvalidArgument, eta)
	}

	if eps <= 0 {
		return nil, fmt.Errorf("%w: epsilon must be > 0, got %v", ErrInvalidArgument, eps)
	}

	return &Optimizer{kind: Adagrad, eta: eta, eps: eps, parms: parms}, nil
}

// NewRMSprop constructs an RMSprop optimizer: buf0 ← γ·buf0 + (1−γ)·g²;
// v ← v − η·g / (√buf0 + ε).
func NewRMSprop(parms []*graph.Node, eta, gamma, eps float64) (*Optimizer, error) {
	if err := validateParms(parms); err != nil {
		return nil, err
	}

	if eta <= 0 {
		return nil, fmt.Errorf("%w: learning rate must be > 0, got %v", ErrInvalidArgument, eta)
	}

	if gamma < 0 || gamma >= 1 {
		return nil, fmt.Errorf("%w: decay gamma must be in [0,1), got %v", ErrInvalidArgument, gamma)
	}

	if eps <= 0 {
		return nil, fmt.Errorf("%w: epsilon must be > 0, got %v", ErrInvalidArgument, eps)
	}

	return &Optimizer{kind: RMSprop, eta: eta, gamma: gamma, eps: eps, parms: parms}, nil
}

// NewAdam constructs an Adam optimizer with bias-corrected first and
// second moment estimates.
func NewAdam(parms []*graph.Node, eta, beta1, beta2, eps float64) (*Optimizer, error) {
	if err := validateParms(parms); err != nil {
		return nil, err
	}

	if eta <= 0 {
		return nil, fmt.Errorf("%w: learning rate must be > 0, got %v", ErrInvalidArgument, eta)
	}

	if beta1 <= 0 || beta1 >= 1 {
		return nil, fmt.Errorf("%w: beta1 must be in (0,1), got %v", ErrInvalidArgument, beta1)
	}

	if beta2 <= 0 || beta2 >= 1 {
		return nil, fmt.Errorf("%w: beta2 must be in (0,1), got %v", ErrInvalidArgument, beta2)
	}

	if eps <= 0 {
		return nil, fmt.Errorf("%w: epsilon must be > 0, got %v", ErrInvalidArgument, eps)
	}

	return &Optimizer{kind: Adam, eta: eta, beta1: beta1, beta2: beta2, eps: eps, parms: parms}, nil
}

// Kind reports which update rule this optimizer applies.
func (o *Optimizer) Kind() Kind { return o.kind }

func zerosLike(v *tensor.Tensor) *tensor.Tensor {
	z, _ := tensor.New(v.Shape())

	return z
}

// Step applies one update to every parameter using its currently
// accumulated gradient. It does not clear gradients — callers run
// Backward again (which clears) before the next Step. Updates are
// applied parameter by parameter; if parameter k fails, parameters
// 0..k-1 are already updated.
func (o *Optimizer) Step() error {
	o.t++

	if o.buf0 == nil {
		o.buf0 = make([]*tensor.Tensor, len(o.parms))
		o.buf1 = make([]*tensor.Tensor, len(o.parms))
	}

	for i, p := range o.parms {
		v, err := p.Value()
		if err != nil {
			return fmt.Errorf("optimizer: parameter %q: %w", p.Name(), err)
		}

		g, err := p.Grad()
		if err != nil {
			return fmt.Errorf("optimizer: parameter %q: %w", p.Name(), err)
		}

		if g.Len() != v.Len() {
			return fmt.Errorf("%w: parameter %q expected length %d, got %d",
				ErrNonConformingGradient, p.Name(), v.Len(), g.Len())
		}

		if o.buf0[i] == nil {
			o.buf0[i] = zerosLike(v)
			o.buf1[i] = zerosLike(v)
		}

		o.applyStep(v, g, o.buf0[i], o.buf1[i])
	}

	return nil
}

func (o *Optimizer) applyStep(v, g, buf0, buf1 *tensor.Tensor) {
	switch o.kind {
	case SGD:
		for i := 0; i < v.Len(); i++ {
			v.Set(i, v.At(i)-o.eta*g.At(i))
		}
	case Momentum:
		for i := 0; i < v.Len(); i++ {
			buf0.Set(i, o.gamma*buf0.At(i)+o.eta*g.At(i))
			v.Set(i, v.At(i)-buf0.At(i))
		}
	case Adagrad:
		for i := 0; i < v.Len(); i++ {
			gi := g.At(i)
			buf0.Set(i, buf0.At(i)+gi*gi)
			v.Set(i, v.At(i)-o.eta*gi/(math.Sqrt(buf0.At(i))+o.eps))
		}
	case RMSprop:
		for i := 0; i < v.Len(); i++ {
			gi := g.At(i)
			buf0.Set(i, o.gamma*buf0.At(i)+(1-o.gamma)*gi*gi)
			v.Set(i, v.At(i)-o.eta*gi/(math.Sqrt(buf0.At(i))+o.eps))
		}
	case Adam:
		b1t := 1 - math.Pow(o.beta1, float64(o.t))
		b2t := 1 - math.Pow(o.beta2, float64(o.t))

		for i := 0; i < v.Len(); i++ {
			gi := g.At(i)
			buf0.Set(i, o.beta1*buf0.At(i)+(1-o.beta1)*gi)
			buf1.Set(i, o.beta2*buf1.At(i)+(1-o.beta2)*gi*gi)

			mHat := buf0.At(i) / b1t
			vHat := buf1.At(i) / b2t

			v.Set(i, v.At(i)-o.eta*mHat/(math.Sqrt(vHat)+o.eps))
		}
	}
}

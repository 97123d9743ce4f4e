// Command cgraph is a small demonstration driver for the graph engine:
// it builds a one-parameter least-squares graph, trains it with an
// optimizer chosen by flag, and reports the parameter's value at each
// step, grounded on the teacher's cmd/zerfoo entry point's
// flag/log/os.Exit shape.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/gocgraph/cgraph/graph"
	"github.com/gocgraph/cgraph/numeric"
	"github.com/gocgraph/cgraph/optimizer"
	"github.com/gocgraph/cgraph/tensor"
)

func main() {
	kind := flag.String("optimizer", "sgd", "optimizer kind: sgd, momentum, adagrad, rmsprop, adam")
	eta := flag.Float64("lr", 0.1, "learning rate")
	steps := flag.Int("steps", 20, "number of training steps")
	target := flag.Float64("target", 10, "target value the parameter is trained toward")
	flag.Parse()

	if err := run(*kind, *eta, *steps, *target); err != nil {
		log.Printf("cgraph: %v", err)
		os.Exit(1)
	}
}

func run(kind string, eta float64, steps int, target float64) error {
	graph.NewGraph(true)

	p, err := graph.Parameter(tensor.Scalar(0), "p")
	if err != nil {
		return fmt.Errorf("build graph: %w", err)
	}

	opt, err := newOptimizer(kind, []*graph.Node{p}, eta)
	if err != nil {
		return fmt.Errorf("build optimizer: %w", err)
	}

	g, err := graph.CurrentGraph()
	if err != nil {
		return err
	}

	for i := 1; i <= steps; i++ {
		c, err := graph.Constant(tensor.Scalar(target))
		if err != nil {
			return fmt.Errorf("step %d: %w", i, err)
		}

		diff, err := graph.Operator(numeric.SubFunc, []graph.Operand{graph.Use(p), graph.Use(c)})
		if err != nil {
			return fmt.Errorf("step %d: %w", i, err)
		}

		loss, err := graph.Operator(numeric.SquareFunc, []graph.Operand{graph.Use(diff)})
		if err != nil {
			return fmt.Errorf("step %d: %w", i, err)
		}

		if err := g.Backward(loss, nil); err != nil {
			return fmt.Errorf("step %d: backward: %w", i, err)
		}

		if err := opt.Step(); err != nil {
			return fmt.Errorf("step %d: optimizer: %w", i, err)
		}

		v, err := p.Value()
		if err != nil {
			return err
		}

		lossVal, err := loss.Value()
		if err != nil {
			return err
		}

		log.Printf("step %d: p=%.6f loss=%.6f", i, v.At(0), lossVal.At(0))
	}

	return nil
}

func newOptimizer(kind string, parms []*graph.Node, eta float64) (*optimizer.Optimizer, error) {
	switch kind {
	case "sgd":
		return optimizer.NewSGD(parms, eta)
	case "momentum":
		return optimizer.NewMomentum(parms, eta, 0.9)
	case "adagrad":
		return optimizer.NewAdagrad(parms, eta, 1e-8)
	case "rmsprop":
		return optimizer.NewRMSprop(parms, eta, 0.9, 1e-8)
	case "adam":
		return optimizer.NewAdam(parms, eta, 0.9, 0.999, 1e-8)
	default:
		return nil, fmt.Errorf("unknown optimizer kind %q", kind)
	}
}

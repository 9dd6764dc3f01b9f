package engine

import (
	"fmt"

	"github.com/gomlx/gomlx/pkg/core/graph"
	"github.com/gomlx/gomlx/pkg/core/tensors"
	"github.com/notargets/RecurKernel/compiler"
	"github.com/notargets/RecurKernel/recurrence"
)

// Gradient returns the derivative of y0+y1+y2+y3 with respect to T0..T3 and
// p, evaluated at T and p. Inputs the outputs do not depend on get a zero
// entry; use Program.Reachable to tell those apart.
func Gradient(prog *compiler.Program, T recurrence.StateVector, p float64) ([compiler.NumInputs]float64, error) {
	var grads [compiler.NumInputs]float64
	flat, err := differentiate(prog, T, p, func(in Inputs, out [recurrence.Dim]*graph.Node) *graph.Node {
		sum := out[0]
		for _, y := range out[1:] {
			sum = graph.Add(sum, y)
		}
		return graph.Stack(graph.Gradient(sum, in[:]...), 0)
	})
	if err != nil {
		return grads, err
	}
	copy(grads[:], flat)
	return grads, nil
}

// Jacobian returns the Dim×NumInputs partial derivatives of each output,
// flattened row-major
func Jacobian(prog *compiler.Program, T recurrence.StateVector, p float64) ([]float64, error) {
	return differentiate(prog, T, p, func(in Inputs, out [recurrence.Dim]*graph.Node) *graph.Node {
		rows := make([]*graph.Node, len(out))
		for i, y := range out {
			rows[i] = graph.Stack(graph.Gradient(y, in[:]...), 0)
		}
		return graph.Stack(rows, 0)
	})
}

type derivativeFn func(in Inputs, out [recurrence.Dim]*graph.Node) *graph.Node

// differentiate builds a one-off graph for prog, applies fn to its outputs
// and returns the flat result
func differentiate(prog *compiler.Program, T recurrence.StateVector, p float64, fn derivativeFn) ([]float64, error) {
	if err := Validate(prog); err != nil {
		return nil, err
	}
	b, err := Backend()
	if err != nil {
		return nil, err
	}

	exec, err := graph.NewExec(b, func(t0, t1, t2, t3, param *graph.Node) *graph.Node {
		in := Inputs{t0, t1, t2, t3, param}
		return fn(in, Build(prog, in))
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", prog.Name, err)
	}
	defer exec.Finalize()

	res, err := exec.Exec1(T[0], T[1], T[2], T[3], p)
	if err != nil {
		return nil, fmt.Errorf("%s: gradient: %w", prog.Name, err)
	}
	return tensors.CopyFlatData[float64](res)
}

// Package gradient differentiates recurrence formulations with respect to
// the state vector and the parameter.
//
// Calculate records one evaluation on a tape, lowers the recording to a
// program and differentiates it as a gomlx graph, extracting both gradients
// from that single recording. A gradient that cannot be obtained because the
// formulation broke the recorded path (for instance by resolving p to a
// plain number) is reported as absent, not as an error.
package gradient

import (
	"fmt"

	"github.com/notargets/RecurKernel/compiler"
	"github.com/notargets/RecurKernel/engine"
	"github.com/notargets/RecurKernel/recurrence"
	"github.com/notargets/RecurKernel/tape"
	"gonum.org/v1/gonum/mat"
)

// Pair holds the gradient of the summed output with respect to T and p.
// A nil field means the gradient is absent.
type Pair struct {
	T *recurrence.StateVector
	P *float64
}

// Complete reports whether both gradients are present
func (g Pair) Complete() bool {
	return g.T != nil && g.P != nil
}

func (g Pair) String() string {
	t, p := "absent", "absent"
	if g.T != nil {
		t = fmt.Sprint(*g.T)
	}
	if g.P != nil {
		p = fmt.Sprint(*g.P)
	}
	return fmt.Sprintf("dT=%s dp=%s", t, p)
}

// record watches T and p on tp, evaluates fn once and lowers the recording.
// The recording is a single evaluation: numbers fn resolved with Value.Float
// are baked into the program as constants.
func record(tp *tape.Tape, fn recurrence.Func, T recurrence.StateVector, p float64) (*compiler.Program, error) {
	in := tp.Watch(T[0], T[1], T[2], T[3], p)
	var x recurrence.Vector
	copy(x[:], in[:recurrence.Dim])
	out := fn(x, in[recurrence.Dim])

	prog, err := compiler.Lower("recording", tp, out)
	if err != nil {
		return nil, fmt.Errorf("gradient: %w", err)
	}
	return prog, nil
}

// Calculate computes the gradient of the sum of fn's outputs with respect to
// T and to p. The error is reserved for failures of the recording or the
// graph execution; absence is reported through nil fields of the returned
// Pair.
func Calculate(fn recurrence.Func, T recurrence.StateVector, p float64) (Pair, error) {
	tp := tape.New()
	defer tp.Release()

	prog, err := record(tp, fn, T, p)
	if err != nil {
		return Pair{}, err
	}
	grads, err := engine.Gradient(prog, T, p)
	if err != nil {
		return Pair{}, fmt.Errorf("gradient: %w", err)
	}

	var pair Pair
	reach := prog.Reachable()
	for _, ok := range reach[:recurrence.Dim] {
		if ok {
			var g recurrence.StateVector
			copy(g[:], grads[:recurrence.Dim])
			pair.T = &g
			break
		}
	}
	if reach[compiler.ParamRegister] {
		g := grads[compiler.ParamRegister]
		pair.P = &g
	}
	return pair, nil
}

// Jacobian returns the 4×5 matrix of partial derivatives of each output with
// respect to T0..T3 and p from a single recording. Entries for disconnected
// inputs are zero.
func Jacobian(fn recurrence.Func, T recurrence.StateVector, p float64) (*mat.Dense, error) {
	tp := tape.New()
	defer tp.Release()

	prog, err := record(tp, fn, T, p)
	if err != nil {
		return nil, err
	}
	flat, err := engine.Jacobian(prog, T, p)
	if err != nil {
		return nil, fmt.Errorf("jacobian: %w", err)
	}
	return mat.NewDense(recurrence.Dim, compiler.NumInputs, flat), nil
}

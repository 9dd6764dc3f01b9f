// Package recurrence holds three equivalent formulations of a four-step
// linear recurrence over a state vector T and a weight p:
//
//	y0 = T0
//	y1 = T1 + T0*p
//	y2 = T2 + y1*p
//	y3 = T3 + T2 + y1
//
// ComputeFn is the literal translation, ComputeFnNoRedundantOps shares the
// common sub-expressions, and ComputeFnWithMatmul expresses the recurrence as
// the fixed linear transform M(p)·T.
//
// Formulations are written against tape.Value so the same function can be
// evaluated directly, recorded for differentiation, or traced for
// compilation.
package recurrence

import (
	"github.com/notargets/RecurKernel/tape"
)

// Dim is the fixed length of the state and output vectors
const Dim = 4

// StateVector holds the accumulated recurrence state T[0..3]
type StateVector [Dim]float64

// OutputVector is the result of applying a formulation
type OutputVector [Dim]float64

// Vector is a state or output vector of possibly recorded values
type Vector [Dim]tape.Value

// Func maps (T, p) to the output vector. Implementations must not retain or
// modify their arguments.
type Func func(T Vector, p tape.Value) Vector

// Lift converts a plain state vector into unrecorded values
func Lift(s StateVector) Vector {
	var v Vector
	for i, x := range s {
		v[i] = tape.Const(x)
	}
	return v
}

// Floats reads the numeric values of v
func (v Vector) Floats() OutputVector {
	var out OutputVector
	for i, x := range v {
		out[i] = x.Primal()
	}
	return out
}

// Recorded reports whether any element of v is bound to a tape
func (v Vector) Recorded() bool {
	for _, x := range v {
		if x.Recorded() {
			return true
		}
	}
	return false
}

// Evaluate applies fn to plain inputs
func Evaluate(fn Func, T StateVector, p float64) OutputVector {
	return fn(Lift(T), tape.Const(p)).Floats()
}

// ComputeFn is the unsimplified recurrence. T1 + T0*p is recomputed inside
// the expressions for y2 and y3.
func ComputeFn(T Vector, p tape.Value) Vector {
	return Vector{
		T[0],
		T[1].Add(T[0].Mul(p)),
		T[2].Add(T[1].Add(T[0].Mul(p)).Mul(p)),
		T[3].Add(T[2].Add(T[1]).Add(T[0].Mul(p))),
	}
}

// ComputeFnNoRedundantOps evaluates T0*p and T1 + T0*p once and reuses them.
func ComputeFnNoRedundantOps(T Vector, p tape.Value) Vector {
	t0p := T[0].Mul(p)
	t1PlusT0p := T[1].Add(t0p)
	return Vector{
		T[0],
		t1PlusT0p,
		T[2].Add(t1PlusT0p.Mul(p)),
		T[3].Add(T[2]).Add(t1PlusT0p),
	}
}

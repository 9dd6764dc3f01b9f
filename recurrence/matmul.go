package recurrence

import (
	"github.com/notargets/RecurKernel/tape"
	"gonum.org/v1/gonum/mat"
)

// TransformMatrix builds M(p) such that M(p)·T reproduces the recurrence:
//
//	[[1,  0, 0, 0],
//	 [p,  1, 0, 0],
//	 [p², p, 1, 0],
//	 [p,  1, 1, 1]]
func TransformMatrix(p float64) *mat.Dense {
	p2 := p * p
	return mat.NewDense(Dim, Dim, []float64{
		1, 0, 0, 0,
		p, 1, 0, 0,
		p2, p, 1, 0,
		p, 1, 1, 1,
	})
}

// ComputeFnWithMatmul evaluates the recurrence as M(p)·T. p is resolved to a
// number before the matrix is built, so the result carries no dependency on
// p when recorded: its gradient with respect to p is absent, and the
// formulation cannot be traced for compilation.
func ComputeFnWithMatmul(T Vector, p tape.Value) Vector {
	return MatVec(TransformMatrix(p.Float()), T)
}

// MatVec returns m·T for a Dim×Dim matrix. Unrecorded vectors go through
// the BLAS matrix-vector product; recorded vectors are expanded into
// recorded multiply-adds with the matrix entries as constants so gradients
// with respect to T remain available.
func MatVec(m mat.Matrix, T Vector) Vector {
	if r, c := m.Dims(); r != Dim || c != Dim {
		panic(mat.ErrShape)
	}

	var out Vector
	if !T.Recorded() {
		x := make([]float64, Dim)
		for i, v := range T {
			x[i] = v.Primal()
		}
		var y mat.VecDense
		y.MulVec(m, mat.NewVecDense(Dim, x))
		for i := range out {
			out[i] = tape.Const(y.AtVec(i))
		}
		return out
	}

	for i := 0; i < Dim; i++ {
		acc := tape.Const(m.At(i, 0)).Mul(T[0])
		for j := 1; j < Dim; j++ {
			acc = acc.Add(tape.Const(m.At(i, j)).Mul(T[j]))
		}
		out[i] = acc
	}
	return out
}

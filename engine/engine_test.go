package engine

import (
	"math/rand/v2"
	"testing"

	"github.com/notargets/RecurKernel/compiler"
	"github.com/notargets/RecurKernel/recurrence"
	"github.com/notargets/RecurKernel/tape"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBackend(t *testing.T) {
	a, err := Backend()
	require.NoError(t, err)
	b, err := Backend()
	require.NoError(t, err)
	assert.Same(t, a, b)
	assert.Equal(t, "go", a.String())
}

func TestExecutable_MatchesDirectEvaluation(t *testing.T) {
	rng := rand.New(rand.NewPCG(13, 17))
	for _, f := range recurrence.Formulations()[:2] {
		for _, opts := range []compiler.Options{{}, {Fuse: true}} {
			prog, err := compiler.Compile(f.Name, f.Fn, opts)
			require.NoError(t, err)
			exe, err := Compile(prog)
			require.NoError(t, err)

			out, err := exe.Run(recurrence.StateVector{1, 1, 1, 1}, 0)
			require.NoError(t, err)
			assert.Equal(t, recurrence.OutputVector{1, 1, 1, 3}, out)
			out, err = exe.Run(recurrence.StateVector{1, 0, 0, 0}, 2)
			require.NoError(t, err)
			assert.Equal(t, recurrence.OutputVector{1, 2, 4, 2}, out)

			for trial := 0; trial < 20; trial++ {
				var T recurrence.StateVector
				for i := range T {
					T[i] = -1e5 + 2e5*rng.Float64()
				}
				p := rng.Float64()
				want := recurrence.Evaluate(f.Fn, T, p)
				got, err := exe.Run(T, p)
				require.NoError(t, err)
				assert.InDeltaSlice(t, want[:], got[:], 1e-4, "%s fuse=%v", f.Name, opts.Fuse)
				assert.Equal(t, T[0], got[0])
			}
			exe.Finalize()
		}
	}
}

func TestExecutable_ConstantOutputs(t *testing.T) {
	fn := func(T recurrence.Vector, p tape.Value) recurrence.Vector {
		return recurrence.Vector{T[0], tape.Const(2), T[1].Sub(p), p.Neg()}
	}
	prog, err := compiler.Compile("constants", fn, compiler.Options{Fuse: true})
	require.NoError(t, err)
	exe, err := Compile(prog)
	require.NoError(t, err)
	defer exe.Finalize()

	out, err := exe.Run(recurrence.StateVector{5, 6, 7, 8}, 0.25)
	require.NoError(t, err)
	assert.Equal(t, recurrence.OutputVector{5, 2, 5.75, -0.25}, out)
}

func TestValidate(t *testing.T) {
	good, err := compiler.Compile(recurrence.NameComputeFn, recurrence.ComputeFn, compiler.Options{})
	require.NoError(t, err)
	require.NoError(t, Validate(good))

	testCases := []struct {
		name string
		prog *compiler.Program
		err  error
	}{
		{"TooFewRegisters", &compiler.Program{Name: "x", NumRegs: 2}, ErrMalformedProgram},
		{"UnknownOp", &compiler.Program{Name: "x", NumRegs: 6, Instrs: []compiler.Instr{
			{Op: compiler.Op(99), Dst: 5},
		}}, compiler.ErrUnsupportedOp},
		{"ReadBeforeWrite", &compiler.Program{Name: "x", NumRegs: 7, Instrs: []compiler.Instr{
			{Op: compiler.OpAdd, Dst: 5, A: 0, B: 6},
		}}, ErrMalformedProgram},
		{"WritesInput", &compiler.Program{Name: "x", NumRegs: 6, Instrs: []compiler.Instr{
			{Op: compiler.OpNeg, Dst: 2, A: 0},
		}}, ErrMalformedProgram},
		{"BadOutput", &compiler.Program{Name: "x", NumRegs: 6, Outputs: [recurrence.Dim]int{0, 1, 2, 5}}, ErrMalformedProgram},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.ErrorIs(t, Validate(tc.prog), tc.err)
			_, err := Compile(tc.prog)
			assert.ErrorIs(t, err, tc.err)
		})
	}
}

func TestGradient(t *testing.T) {
	T := recurrence.StateVector{1.5, -2, 0.25, 4}
	p := 0.5
	for _, opts := range []compiler.Options{{}, {Fuse: true}} {
		prog, err := compiler.Compile(recurrence.NameComputeFn, recurrence.ComputeFn, opts)
		require.NoError(t, err)

		grads, err := Gradient(prog, T, p)
		require.NoError(t, err)
		want := []float64{1 + 2*p + p*p, 2 + p, 2, 1, 2*T[0] + 2*p*T[0] + T[1]}
		assert.InDeltaSlice(t, want, grads[:], 1e-12)
	}
}

func TestGradient_DisconnectedInput(t *testing.T) {
	fn := func(T recurrence.Vector, p tape.Value) recurrence.Vector {
		return recurrence.Vector{T[0], T[0].Mul(T[1]), tape.Const(1), T[0]}
	}
	prog, err := compiler.Compile("partial", fn, compiler.Options{})
	require.NoError(t, err)

	grads, err := Gradient(prog, recurrence.StateVector{3, 5, 7, 9}, 2)
	require.NoError(t, err)
	assert.Equal(t, [compiler.NumInputs]float64{2 + 5, 3, 0, 0, 0}, grads)
	assert.Equal(t, [compiler.NumInputs]bool{true, true, false, false, false}, prog.Reachable())
}

func TestJacobian(t *testing.T) {
	T := recurrence.StateVector{2, 3, 5, 7}
	p := 0.5
	prog, err := compiler.Compile(recurrence.NameComputeFnNoRedundantOps, recurrence.ComputeFnNoRedundantOps, compiler.Options{Fuse: true})
	require.NoError(t, err)

	jac, err := Jacobian(prog, T, p)
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{
		1, 0, 0, 0, 0,
		p, 1, 0, 0, T[0],
		p * p, p, 1, 0, T[1] + 2*T[0]*p,
		p, 1, 1, 1, T[0],
	}, jac, 1e-12)
}

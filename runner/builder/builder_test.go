package builder

import (
	"math"
	"strings"
	"testing"

	"github.com/notargets/RecurKernel/compiler"
	"github.com/notargets/RecurKernel/recurrence"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBuilder(t *testing.T) {
	assert.Equal(t, Float64, NewBuilder(Config{}).FloatType)
	assert.Equal(t, Float32, NewBuilder(Config{FloatType: Float32}).FloatType)

	defer func() {
		if r := recover(); r == nil {
			t.Error("Expected panic for unsupported float type")
		}
	}()
	NewBuilder(Config{FloatType: 9})
}

func TestBuilder_Preamble(t *testing.T) {
	testCases := []struct {
		floatType DataType
		lines     []string
	}{
		{Float64, []string{"typedef double real_t;", "#define REAL_ONE 1.0\n", "#define NIN 5", "#define NOUT 4"}},
		{Float32, []string{"typedef float real_t;", "#define REAL_ZERO 0.0f", "#define REAL_ONE 1.0f"}},
	}

	for _, tc := range testCases {
		kb := NewBuilder(Config{FloatType: tc.floatType})
		preamble := kb.GeneratePreamble()
		assert.Equal(t, preamble, kb.KernelPreamble)
		for _, line := range tc.lines {
			assert.Contains(t, preamble, line)
		}
	}
}

func TestTypes(t *testing.T) {
	assert.Equal(t, int64(4), SizeOfType(Float32))
	assert.Equal(t, int64(8), SizeOfType(Float64))
	assert.Equal(t, "float", TypeName(Float32))
	assert.Equal(t, "double", TypeName(Float64))
	assert.Equal(t, "f", TypeSuffix(Float32))
	assert.Equal(t, "", TypeSuffix(Float64))
}

func TestKernelName(t *testing.T) {
	assert.Equal(t, "recur_compute_fn", KernelName(recurrence.NameComputeFn))
	assert.Equal(t, "recur_a_b_c", KernelName("a-b.c"))
}

func TestFormatLiteral(t *testing.T) {
	kb64 := NewBuilder(Config{})
	kb32 := NewBuilder(Config{FloatType: Float32})

	assert.Equal(t, "2e+00", kb64.FormatLiteral(2))
	assert.Equal(t, "(-1.5e-01)", kb64.FormatLiteral(-0.15))
	assert.Equal(t, "1e-01f", kb32.FormatLiteral(0.1))
	assert.Equal(t, "(REAL_ZERO / REAL_ZERO)", kb64.FormatLiteral(math.NaN()))
	assert.Equal(t, "(REAL_ONE / REAL_ZERO)", kb64.FormatLiteral(math.Inf(1)))
	assert.Equal(t, "(-REAL_ONE / REAL_ZERO)", kb32.FormatLiteral(math.Inf(-1)))
}

func TestGenerateKernel(t *testing.T) {
	prog, err := compiler.Compile(recurrence.NameComputeFn, recurrence.ComputeFn, compiler.Options{Fuse: true})
	require.NoError(t, err)

	kb := NewBuilder(Config{})
	name, src, err := kb.GenerateKernel(prog)
	require.NoError(t, err)
	assert.Equal(t, "recur_compute_fn", name)

	for _, want := range []string{
		"@kernel void recur_compute_fn(\n\tconst real_t* in,\n\treal_t* out\n)",
		"@outer",
		"@inner",
		"const real_t r4 = in[4];",
		"const real_t r5 = r0 * r4;",
		"out[0] = r0;",
		"out[3] = ",
	} {
		assert.Contains(t, src, want)
	}
	// one statement per instruction plus inputs and outputs
	assert.Equal(t, compiler.NumInputs+prog.Len()+NumOutputs, strings.Count(src, ";\n"))
	assert.Equal(t, prog.Count(compiler.OpMul)+prog.Count(compiler.OpMulAdd), strings.Count(src, " * r"))
}

func TestGenerateKernel_Constants(t *testing.T) {
	prog := &compiler.Program{
		Name:    "consts",
		NumRegs: 7,
		Instrs: []compiler.Instr{
			{Op: compiler.OpConst, Dst: 5, K: -2.5},
			{Op: compiler.OpNeg, Dst: 6, A: 5},
		},
		Outputs: [recurrence.Dim]int{0, 5, 6, 1},
	}
	_, src, err := NewBuilder(Config{}).GenerateKernel(prog)
	require.NoError(t, err)
	assert.Contains(t, src, "const real_t r5 = (-2.5e+00);")
	assert.Contains(t, src, "const real_t r6 = -r5;")

	prog.Instrs = append(prog.Instrs, compiler.Instr{Op: compiler.Op(99), Dst: 7})
	_, _, err = NewBuilder(Config{}).GenerateKernel(prog)
	assert.ErrorIs(t, err, compiler.ErrUnsupportedOp)
}

package builder

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/notargets/RecurKernel/compiler"
)

// KernelName derives a valid OKL identifier from a program name
func KernelName(programName string) string {
	var sb strings.Builder
	sb.WriteString("recur_")
	for _, r := range programName {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			sb.WriteRune(r)
		default:
			sb.WriteByte('_')
		}
	}
	return sb.String()
}

// GenerateKernel emits prog as a straight-line kernel reading T0..T3,p from
// in and writing the four outputs to out. It returns the kernel name and
// the kernel source without the preamble.
func (kb *Builder) GenerateKernel(prog *compiler.Program) (string, string, error) {
	var sb strings.Builder

	for r := 0; r < compiler.NumInputs; r++ {
		sb.WriteString(fmt.Sprintf("const real_t r%d = in[%d];\n", r, r))
	}

	for _, in := range prog.Instrs {
		var expr string
		switch in.Op {
		case compiler.OpConst:
			expr = kb.FormatLiteral(in.K)
		case compiler.OpAdd:
			expr = fmt.Sprintf("r%d + r%d", in.A, in.B)
		case compiler.OpSub:
			expr = fmt.Sprintf("r%d - r%d", in.A, in.B)
		case compiler.OpMul:
			expr = fmt.Sprintf("r%d * r%d", in.A, in.B)
		case compiler.OpNeg:
			expr = fmt.Sprintf("-r%d", in.A)
		case compiler.OpMulAdd:
			expr = fmt.Sprintf("r%d * r%d + r%d", in.A, in.B, in.C)
		default:
			return "", "", fmt.Errorf("program %s: %w: %s", prog.Name, compiler.ErrUnsupportedOp, in.Op)
		}
		sb.WriteString(fmt.Sprintf("const real_t r%d = %s;\n", in.Dst, expr))
	}

	for k, reg := range prog.Outputs {
		sb.WriteString(fmt.Sprintf("out[%d] = r%d;\n", k, reg))
	}

	name := KernelName(prog.Name)
	return name, kb.GenerateKernelTemplate(name, sb.String()), nil
}

// FormatLiteral formats x as a real_t literal that round-trips at the
// builder's precision
func (kb *Builder) FormatLiteral(x float64) string {
	switch {
	case math.IsNaN(x):
		return "(REAL_ZERO / REAL_ZERO)"
	case math.IsInf(x, 1):
		return "(REAL_ONE / REAL_ZERO)"
	case math.IsInf(x, -1):
		return "(-REAL_ONE / REAL_ZERO)"
	}

	bits := 64
	if kb.FloatType == Float32 {
		bits = 32
	}
	s := strconv.FormatFloat(x, 'e', -1, bits) + TypeSuffix(kb.FloatType)
	if x < 0 {
		return "(" + s + ")"
	}
	return s
}

package compiler

import "github.com/notargets/RecurKernel/recurrence"

// eval interprets the program on the host; passes are checked against it
func (p *Program) eval(T recurrence.StateVector, param float64) recurrence.OutputVector {
	r := make([]float64, p.NumRegs)
	copy(r, T[:])
	r[ParamRegister] = param

	for _, in := range p.Instrs {
		switch in.Op {
		case OpConst:
			r[in.Dst] = in.K
		case OpAdd:
			r[in.Dst] = r[in.A] + r[in.B]
		case OpSub:
			r[in.Dst] = r[in.A] - r[in.B]
		case OpMul:
			r[in.Dst] = float64(r[in.A] * r[in.B])
		case OpNeg:
			r[in.Dst] = -r[in.A]
		case OpMulAdd:
			r[in.Dst] = float64(r[in.A]*r[in.B]) + r[in.C]
		}
	}

	var out recurrence.OutputVector
	for k, reg := range p.Outputs {
		out[k] = r[reg]
	}
	return out
}

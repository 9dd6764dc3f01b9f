package compiler

import (
	"fmt"

	"github.com/notargets/RecurKernel/recurrence"
	"github.com/notargets/RecurKernel/tape"
)

// Options selects the optimisation level of Compile
type Options struct {
	// Fuse runs the full FusionPasses pipeline. Without it only dead code
	// is removed from the traced graph.
	Fuse bool
}

// Compile traces fn and optimises the resulting program
func Compile(name string, fn recurrence.Func, opts Options) (*Program, error) {
	prog, err := Trace(name, fn)
	if err != nil {
		return nil, err
	}
	if opts.Fuse {
		return Optimize(prog, FusionPasses()...), nil
	}
	return Optimize(prog, EliminateDeadCode), nil
}

// Trace records one evaluation of fn against placeholder inputs and lowers
// the recording to a Program. The placeholder values never reach the
// program; a formulation that reads them with Value.Float would bake them in,
// so tracing such a formulation fails with ErrResolvedInput.
func Trace(name string, fn recurrence.Func) (*Program, error) {
	tp := tape.New()
	defer tp.Release()

	in := tp.Watch(make([]float64, NumInputs)...)
	var T recurrence.Vector
	copy(T[:], in[:recurrence.Dim])
	out := fn(T, in[ParamRegister])

	if tp.Resolved() {
		return nil, fmt.Errorf("trace %s: %w", name, ErrResolvedInput)
	}
	return Lower(name, tp, out)
}

// Lower converts the nodes recorded on tp into SSA instructions. Input nodes
// map to the input registers in watch order. Unlike Trace it accepts a
// resolved recording: numbers read with Value.Float were recorded as
// constants, so the program is only valid at the recorded inputs and carries
// no dependency through the resolved path.
func Lower(name string, tp *tape.Tape, out recurrence.Vector) (*Program, error) {
	nodes := tp.Nodes()
	reg := make([]int, len(nodes))
	prog := &Program{Name: name, NumRegs: NumInputs}

	emit := func(in Instr) int {
		in.Dst = prog.NumRegs
		prog.NumRegs++
		prog.Instrs = append(prog.Instrs, in)
		return in.Dst
	}

	inputs := 0
	for i, n := range nodes {
		switch n.Op {
		case tape.OpInput:
			if inputs >= NumInputs {
				return nil, fmt.Errorf("trace %s: %w", name, ErrUnexpectedInput)
			}
			reg[i] = inputs
			inputs++
		case tape.OpConst:
			reg[i] = emit(Instr{Op: OpConst, K: n.Value})
		case tape.OpAdd:
			reg[i] = emit(Instr{Op: OpAdd, A: reg[n.A], B: reg[n.B]})
		case tape.OpSub:
			reg[i] = emit(Instr{Op: OpSub, A: reg[n.A], B: reg[n.B]})
		case tape.OpMul:
			reg[i] = emit(Instr{Op: OpMul, A: reg[n.A], B: reg[n.B]})
		case tape.OpNeg:
			reg[i] = emit(Instr{Op: OpNeg, A: reg[n.A]})
		default:
			return nil, fmt.Errorf("trace %s: node %d: %w: %s", name, i, ErrUnsupportedOp, n.Op)
		}
	}

	for k, y := range out {
		if id, ok := tp.Index(y); ok {
			prog.Outputs[k] = reg[id]
		} else {
			prog.Outputs[k] = emit(Instr{Op: OpConst, K: y.Primal()})
		}
	}
	return prog, nil
}

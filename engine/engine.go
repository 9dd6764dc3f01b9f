// Package engine executes compiled recurrence programs as gomlx computation
// graphs on the pure-Go simplego backend.
//
// Build emits one graph op per program instruction on five scalar parameter
// nodes (T0..T3, p). An Executable JIT-compiles that graph on first use and
// caches it; Gradient and Jacobian differentiate the same emitted graph with
// graph.Gradient.
package engine

import (
	"fmt"
	"sync"

	"github.com/gomlx/gomlx/backends"
	"github.com/gomlx/gomlx/backends/simplego"
	"github.com/gomlx/gomlx/pkg/core/graph"
	"github.com/notargets/RecurKernel/compiler"
	"github.com/notargets/RecurKernel/recurrence"
)

var backend = sync.OnceValues(func() (backends.Backend, error) {
	return simplego.New("")
})

// Backend returns the process-wide simplego backend, created on first use
func Backend() (backends.Backend, error) {
	b, err := backend()
	if err != nil {
		return nil, fmt.Errorf("engine: %w", err)
	}
	return b, nil
}

// Inputs are the parameter nodes of a program graph in register order
type Inputs [compiler.NumInputs]*graph.Node

// Build emits prog on the graph of in and returns the output nodes. The
// program must have passed Validate.
func Build(prog *compiler.Program, in Inputs) [recurrence.Dim]*graph.Node {
	g := in[0].Graph()
	regs := make([]*graph.Node, prog.NumRegs)
	copy(regs, in[:])

	for _, ins := range prog.Instrs {
		var n *graph.Node
		switch ins.Op {
		case compiler.OpConst:
			n = graph.Const(g, ins.K)
		case compiler.OpAdd:
			n = graph.Add(regs[ins.A], regs[ins.B])
		case compiler.OpSub:
			n = graph.Sub(regs[ins.A], regs[ins.B])
		case compiler.OpMul:
			n = graph.Mul(regs[ins.A], regs[ins.B])
		case compiler.OpNeg:
			n = graph.Neg(regs[ins.A])
		case compiler.OpMulAdd:
			// two ops keep the intermediate rounding of the product
			n = graph.Add(graph.Mul(regs[ins.A], regs[ins.B]), regs[ins.C])
		default:
			panic(fmt.Errorf("engine: r%d: %w: %s", ins.Dst, compiler.ErrUnsupportedOp, ins.Op))
		}
		regs[ins.Dst] = n
	}

	var out [recurrence.Dim]*graph.Node
	for k, reg := range prog.Outputs {
		out[k] = regs[reg]
	}
	return out
}

// Validate checks that every instruction of prog can be emitted by Build and
// only reads registers written before it
func Validate(prog *compiler.Program) error {
	if prog.NumRegs < compiler.NumInputs {
		return fmt.Errorf("%s: %w: %d registers", prog.Name, ErrMalformedProgram, prog.NumRegs)
	}
	written := make([]bool, prog.NumRegs)
	for i := 0; i < compiler.NumInputs; i++ {
		written[i] = true
	}
	valid := func(reg int) bool {
		return reg >= 0 && reg < prog.NumRegs && written[reg]
	}

	for i, ins := range prog.Instrs {
		switch ins.Op {
		case compiler.OpConst, compiler.OpAdd, compiler.OpSub, compiler.OpMul, compiler.OpNeg, compiler.OpMulAdd:
		default:
			return fmt.Errorf("%s: instruction %d: %w: %s", prog.Name, i, compiler.ErrUnsupportedOp, ins.Op)
		}
		operands := [3]int{ins.A, ins.B, ins.C}
		for _, reg := range operands[:ins.Op.Arity()] {
			if !valid(reg) {
				return fmt.Errorf("%s: instruction %d reads r%d: %w", prog.Name, i, reg, ErrMalformedProgram)
			}
		}
		if ins.Dst < compiler.NumInputs || ins.Dst >= prog.NumRegs {
			return fmt.Errorf("%s: instruction %d writes r%d: %w", prog.Name, i, ins.Dst, ErrMalformedProgram)
		}
		written[ins.Dst] = true
	}
	for k, reg := range prog.Outputs {
		if !valid(reg) {
			return fmt.Errorf("%s: out[%d] = r%d: %w", prog.Name, k, reg, ErrMalformedProgram)
		}
	}
	return nil
}

// Package compiler lowers a recorded recurrence formulation into a small
// register program and optimises it.
//
// Trace evaluates a formulation once on a recording tape and turns the
// recording into straight-line instructions. Registers 0..3 hold T0..T3 and
// register 4 holds p; every instruction writes a fresh register. Optimize
// applies passes (constant folding, common-subexpression elimination,
// multiply-add fusion, dead code elimination) without changing results.
package compiler

import (
	"fmt"
	"strings"

	"github.com/notargets/RecurKernel/recurrence"
)

// NumInputs is the number of input registers: the state vector and p
const NumInputs = recurrence.Dim + 1

// ParamRegister holds p
const ParamRegister = recurrence.Dim

// Op is a program instruction opcode
type Op uint8

const (
	OpConst Op = iota
	OpAdd
	OpSub
	OpMul
	OpNeg
	// OpMulAdd computes A*B + C with the product rounded before the sum
	OpMulAdd
)

var opNames = [...]string{
	OpConst:  "const",
	OpAdd:    "add",
	OpSub:    "sub",
	OpMul:    "mul",
	OpNeg:    "neg",
	OpMulAdd: "muladd",
}

func (op Op) String() string {
	if int(op) < len(opNames) {
		return opNames[op]
	}
	return fmt.Sprintf("op(%d)", uint8(op))
}

// Arity returns the number of register operands of op
func (op Op) Arity() int {
	switch op {
	case OpConst:
		return 0
	case OpNeg:
		return 1
	case OpMulAdd:
		return 3
	default:
		return 2
	}
}

// Commutative reports whether the first two operands of op can be swapped
func (op Op) Commutative() bool {
	return op == OpAdd || op == OpMul || op == OpMulAdd
}

// Instr is one instruction. Only the first Arity() of A, B, C are used; K is
// the value of an OpConst.
type Instr struct {
	Op      Op
	Dst     int
	A, B, C int
	K       float64
}

// operands returns pointers to the used operand fields
func (in *Instr) operands() []*int {
	ops := [3]*int{&in.A, &in.B, &in.C}
	return ops[:in.Op.Arity()]
}

// Program is a straight-line evaluation of one formulation. It is executed
// by lowering it onto a backend, see package engine and runner/builder.
type Program struct {
	Name    string
	NumRegs int
	Instrs  []Instr
	Outputs [recurrence.Dim]int
}

// Len returns the number of instructions
func (p *Program) Len() int {
	return len(p.Instrs)
}

// Count returns the number of instructions with the given opcode
func (p *Program) Count(op Op) int {
	n := 0
	for _, in := range p.Instrs {
		if in.Op == op {
			n++
		}
	}
	return n
}

// Reachable reports, per input register, whether any output depends on it
func (p *Program) Reachable() [NumInputs]bool {
	deps := make([]uint8, p.NumRegs)
	for i := 0; i < NumInputs; i++ {
		deps[i] = 1 << i
	}
	for _, in := range p.Instrs {
		for _, op := range in.operands() {
			deps[in.Dst] |= deps[*op]
		}
	}

	var used uint8
	for _, reg := range p.Outputs {
		used |= deps[reg]
	}
	var reach [NumInputs]bool
	for i := range reach {
		reach[i] = used&(1<<i) != 0
	}
	return reach
}

// String disassembles the program
func (p *Program) String() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("program %s (%d registers)\n", p.Name, p.NumRegs))
	for _, in := range p.Instrs {
		sb.WriteString(fmt.Sprintf("  r%d = %s", in.Dst, in.Op))
		if in.Op == OpConst {
			sb.WriteString(fmt.Sprintf(" %g", in.K))
		}
		for i, op := range in.operands() {
			if i > 0 {
				sb.WriteString(",")
			}
			sb.WriteString(fmt.Sprintf(" r%d", *op))
		}
		sb.WriteString("\n")
	}
	for k, reg := range p.Outputs {
		sb.WriteString(fmt.Sprintf("  out[%d] = r%d\n", k, reg))
	}
	return sb.String()
}

func (p *Program) clone() *Program {
	c := &Program{
		Name:    p.Name,
		NumRegs: p.NumRegs,
		Instrs:  make([]Instr, len(p.Instrs)),
		Outputs: p.Outputs,
	}
	copy(c.Instrs, p.Instrs)
	return c
}

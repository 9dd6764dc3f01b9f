// Package tape records arithmetic on watched scalars.
//
// A Tape is a scoped recording region: create it, Watch the inputs, evaluate a
// function built from Value arithmetic, read the recording, then Release it.
// The recording is lowered to a program by package compiler, which is what
// gets executed and differentiated.
//
//	tp := tape.New()
//	defer tp.Release()
//	in := tp.Watch(3, 4)
//	y := in[0].Mul(in[1]).Add(in[0])
//	idx, _ := tp.Index(y)
//
// Values that are not bound to a tape behave as plain numbers and carry no
// recording cost beyond a nil check, which is how formulations are evaluated
// directly.
package tape

import "fmt"

// Op identifies a recorded operation
type Op uint8

const (
	OpInput Op = iota
	OpConst
	OpAdd
	OpSub
	OpMul
	OpNeg
)

func (op Op) String() string {
	switch op {
	case OpInput:
		return "input"
	case OpConst:
		return "const"
	case OpAdd:
		return "add"
	case OpSub:
		return "sub"
	case OpMul:
		return "mul"
	case OpNeg:
		return "neg"
	default:
		return fmt.Sprintf("op(%d)", uint8(op))
	}
}

// Node is one recorded operation. A and B index earlier nodes; B is -1 for
// unary operations and both are -1 for inputs and constants.
type Node struct {
	Op    Op
	A, B  int
	Value float64
}

// Tape holds the recording for one evaluation
type Tape struct {
	nodes    []Node
	released bool
	resolved bool
}

// New begins a recording region
func New() *Tape {
	return &Tape{}
}

// Watch creates one input value per argument. Inputs are recorded in call
// order, which is the order a lowered program numbers its input registers.
func (t *Tape) Watch(xs ...float64) []Value {
	if t.released {
		panic("tape: watch on released tape")
	}
	vals := make([]Value, len(xs))
	for i, x := range xs {
		t.nodes = append(t.nodes, Node{Op: OpInput, A: -1, B: -1, Value: x})
		vals[i] = Value{x: x, tp: t, id: len(t.nodes) - 1}
	}
	return vals
}

// Released reports whether the recording has been discarded
func (t *Tape) Released() bool {
	return t.released
}

// Resolved reports whether any recorded value was converted to a plain
// number with Value.Float during the recording.
func (t *Tape) Resolved() bool {
	return t.resolved
}

// Len returns the number of recorded nodes
func (t *Tape) Len() int {
	return len(t.nodes)
}

// Nodes returns the recording in evaluation order. The slice is owned by
// the tape and must not be modified.
func (t *Tape) Nodes() []Node {
	return t.nodes
}

// Index returns the node index of v if v was recorded on this tape
func (t *Tape) Index(v Value) (int, bool) {
	if v.tp != t {
		return -1, false
	}
	return v.id, true
}

// Release discards the recording. Values recorded on the tape keep their
// numeric value but can no longer take part in recorded arithmetic.
func (t *Tape) Release() {
	t.released = true
	t.nodes = nil
}

func (t *Tape) record(op Op, a, b Value, x float64) Value {
	if t.released {
		panic("tape: operation on released tape")
	}
	ia := t.operand(a)
	ib := -1
	if op != OpNeg {
		ib = t.operand(b)
	}
	t.nodes = append(t.nodes, Node{Op: op, A: ia, B: ib, Value: x})
	return Value{x: x, tp: t, id: len(t.nodes) - 1}
}

// operand returns the node index of v, recording v as a constant when it is
// not bound to the tape.
func (t *Tape) operand(v Value) int {
	if v.tp == t {
		return v.id
	}
	t.nodes = append(t.nodes, Node{Op: OpConst, A: -1, B: -1, Value: v.x})
	return len(t.nodes) - 1
}

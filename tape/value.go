package tape

import "strconv"

// Value is a real number, optionally bound to a recording Tape. The zero
// Value is the unrecorded constant 0.
type Value struct {
	x  float64
	tp *Tape
	id int
}

// Const returns an unrecorded value
func Const(x float64) Value {
	return Value{x: x}
}

// Float resolves v to a plain number. Resolving a recorded value is noted on
// its tape: anything computed from the returned number is no longer connected
// to v, so gradients through that path are lost.
func (v Value) Float() float64 {
	if v.tp != nil {
		v.tp.resolved = true
	}
	return v.x
}

// Primal returns the numeric value without marking the tape as resolved.
// It is meant for reading results after an evaluation, not for use inside
// a formulation.
func (v Value) Primal() float64 {
	return v.x
}

// Recorded reports whether v is bound to a tape
func (v Value) Recorded() bool {
	return v.tp != nil
}

// Tape returns the tape v is bound to, or nil
func (v Value) Tape() *Tape {
	return v.tp
}

func (v Value) String() string {
	return strconv.FormatFloat(v.x, 'g', -1, 64)
}

// Add returns v + w
func (v Value) Add(w Value) Value {
	x := v.x + w.x
	tp := join(v, w)
	if tp == nil {
		return Value{x: x}
	}
	return tp.record(OpAdd, v, w, x)
}

// Sub returns v - w
func (v Value) Sub(w Value) Value {
	x := v.x - w.x
	tp := join(v, w)
	if tp == nil {
		return Value{x: x}
	}
	return tp.record(OpSub, v, w, x)
}

// Mul returns v * w. The product is rounded before it is returned so a
// following Add is never contracted into a fused multiply-add.
func (v Value) Mul(w Value) Value {
	x := float64(v.x * w.x)
	tp := join(v, w)
	if tp == nil {
		return Value{x: x}
	}
	return tp.record(OpMul, v, w, x)
}

// Neg returns -v
func (v Value) Neg() Value {
	if v.tp == nil {
		return Value{x: -v.x}
	}
	return v.tp.record(OpNeg, v, Value{}, -v.x)
}

func join(v, w Value) *Tape {
	switch {
	case v.tp == nil:
		return w.tp
	case w.tp == nil, v.tp == w.tp:
		return v.tp
	}
	panic("tape: values recorded on different tapes")
}

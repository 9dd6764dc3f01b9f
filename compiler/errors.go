package compiler

import "errors"

var (
	// ErrResolvedInput indicates a formulation converted a traced input to a
	// plain number, so its program would only be valid for the trace values.
	ErrResolvedInput = errors.New("compiler: formulation resolves a traced input to a concrete value")
	// ErrUnexpectedInput indicates the recording watched more than the state vector and p.
	ErrUnexpectedInput = errors.New("compiler: unexpected input node")
	// ErrUnsupportedOp indicates a recorded operation with no instruction.
	ErrUnsupportedOp = errors.New("compiler: unsupported operation")
)

package engine

import (
	"fmt"

	"github.com/gomlx/gomlx/pkg/core/graph"
	"github.com/gomlx/gomlx/pkg/core/tensors"
	"github.com/notargets/RecurKernel/compiler"
	"github.com/notargets/RecurKernel/recurrence"
)

// Executable is a program compiled to a gomlx graph. The graph is traced and
// JIT-compiled by the backend on the first Run.
type Executable struct {
	Program *compiler.Program
	exec    *graph.Exec
}

// Compile prepares prog for execution on the shared backend
func Compile(prog *compiler.Program) (*Executable, error) {
	if err := Validate(prog); err != nil {
		return nil, err
	}
	b, err := Backend()
	if err != nil {
		return nil, err
	}

	exec, err := graph.NewExec(b, func(t0, t1, t2, t3, p *graph.Node) *graph.Node {
		out := Build(prog, Inputs{t0, t1, t2, t3, p})
		return graph.Stack(out[:], 0)
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", prog.Name, err)
	}
	return &Executable{Program: prog, exec: exec}, nil
}

// Run evaluates the program on T and p
func (e *Executable) Run(T recurrence.StateVector, p float64) (recurrence.OutputVector, error) {
	var out recurrence.OutputVector
	res, err := e.exec.Exec1(T[0], T[1], T[2], T[3], p)
	if err != nil {
		return out, fmt.Errorf("%s: %w", e.Program.Name, err)
	}
	flat, err := tensors.CopyFlatData[float64](res)
	if err != nil {
		return out, fmt.Errorf("%s: %w", e.Program.Name, err)
	}
	copy(out[:], flat)
	return out, nil
}

// Finalize releases the compiled graphs held by the backend
func (e *Executable) Finalize() {
	e.exec.Finalize()
}

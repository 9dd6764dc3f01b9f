// Package strategy provides interchangeable ways of evaluating a recurrence
// formulation: directly, as a traced program, or as a traced program after
// fusion. Traced programs run as gomlx graphs through package engine. Every
// strategy must produce the same output as direct evaluation up to
// floating-point rounding.
package strategy

import (
	"fmt"

	"github.com/notargets/RecurKernel/compiler"
	"github.com/notargets/RecurKernel/engine"
	"github.com/notargets/RecurKernel/recurrence"
)

// Callable evaluates one formulation on plain inputs
type Callable func(T recurrence.StateVector, p float64) (recurrence.OutputVector, error)

// Strategy turns a formulation into a Callable
type Strategy interface {
	Name() string
	Apply(f recurrence.Formulation) (Callable, error)
}

var (
	// Direct calls the Go function on unrecorded values
	Direct Strategy = direct{}
	// Compiled executes the traced program with dead code removed
	Compiled Strategy = compiled{name: "compiled"}
	// CompiledFused executes the traced program after the fusion pipeline
	CompiledFused Strategy = compiled{name: "compiled-fused", opts: compiler.Options{Fuse: true}}
)

// Defaults returns the direct, compiled and compiled-fused strategies in that order
func Defaults() []Strategy {
	return []Strategy{Direct, Compiled, CompiledFused}
}

type direct struct{}

func (direct) Name() string { return "direct" }

func (direct) Apply(f recurrence.Formulation) (Callable, error) {
	fn := f.Fn
	return func(T recurrence.StateVector, p float64) (recurrence.OutputVector, error) {
		return recurrence.Evaluate(fn, T, p), nil
	}, nil
}

type compiled struct {
	name string
	opts compiler.Options
}

func (c compiled) Name() string { return c.name }

func (c compiled) Apply(f recurrence.Formulation) (Callable, error) {
	prog, err := compiler.Compile(f.Name, f.Fn, c.opts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", c.name, err)
	}
	exe, err := engine.Compile(prog)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", c.name, err)
	}
	return exe.Run, nil
}

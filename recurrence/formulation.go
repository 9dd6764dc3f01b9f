package recurrence

import (
	"fmt"
)

// Formulation names, matching the function names reported by the harness
const (
	NameComputeFn               = "compute_fn"
	NameComputeFnNoRedundantOps = "compute_fn_no_redundant_ops"
	NameComputeFnWithMatmul     = "compute_fn_with_matmul"
)

// Formulation pairs a recurrence implementation with its name
type Formulation struct {
	Name string
	Fn   Func
}

// Formulations returns all implementations in declaration order
func Formulations() []Formulation {
	return []Formulation{
		{Name: NameComputeFn, Fn: ComputeFn},
		{Name: NameComputeFnNoRedundantOps, Fn: ComputeFnNoRedundantOps},
		{Name: NameComputeFnWithMatmul, Fn: ComputeFnWithMatmul},
	}
}

// Lookup finds a formulation by name
func Lookup(name string) (Formulation, error) {
	for _, f := range Formulations() {
		if f.Name == name {
			return f, nil
		}
	}
	return Formulation{}, fmt.Errorf("%w: %q", ErrUnknownFormulation, name)
}

package runner

import (
	"fmt"

	"github.com/notargets/RecurKernel/compiler"
	"github.com/notargets/RecurKernel/recurrence"
	"github.com/notargets/RecurKernel/runner/builder"
	"github.com/notargets/RecurKernel/strategy"
	"github.com/notargets/gocca"
)

// Strategy evaluates formulations as fused kernels on an OCCA device. Each
// applied formulation gets its own Runner; Free releases all of them.
type Strategy struct {
	device  *gocca.OCCADevice
	cfg     builder.Config
	runners []*Runner
}

var _ strategy.Strategy = (*Strategy)(nil)

// NewStrategy creates a device strategy. The device remains owned by the
// caller.
func NewStrategy(device *gocca.OCCADevice, cfg builder.Config) *Strategy {
	if device == nil {
		panic("runner: nil Device")
	}
	return &Strategy{device: device, cfg: cfg}
}

func (s *Strategy) Name() string {
	return "device:" + s.device.Mode()
}

// Apply compiles f with the fusion pipeline and builds it as a kernel
func (s *Strategy) Apply(f recurrence.Formulation) (strategy.Callable, error) {
	prog, err := compiler.Compile(f.Name, f.Fn, compiler.Options{Fuse: true})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", s.Name(), err)
	}

	kr := NewRunner(s.device, s.cfg)
	name, err := kr.Define(prog)
	if err != nil {
		kr.Free()
		return nil, fmt.Errorf("%s: %w", s.Name(), err)
	}
	s.runners = append(s.runners, kr)

	return func(T recurrence.StateVector, p float64) (recurrence.OutputVector, error) {
		return kr.Run(name, T, p)
	}, nil
}

// Free releases every runner created by Apply
func (s *Strategy) Free() {
	for _, kr := range s.runners {
		kr.Free()
	}
	s.runners = nil
}

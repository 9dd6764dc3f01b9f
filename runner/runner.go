// Package runner evaluates compiled recurrence programs as OCCA kernels.
//
// A Runner owns one input buffer (T0..T3, p) and one output buffer on the
// device. Each program defined on it becomes one kernel sharing those
// buffers, so a Runner is not safe for concurrent use.
package runner

import (
	"fmt"

	"github.com/notargets/RecurKernel/compiler"
	"github.com/notargets/RecurKernel/recurrence"
	"github.com/notargets/RecurKernel/runner/builder"
	"github.com/notargets/gocca"
)

// Runner orchestrates kernel compilation and execution on one device
type Runner struct {
	*builder.Builder
	Device       *gocca.OCCADevice
	Kernels      map[string]*gocca.OCCAKernel
	PooledMemory map[string]*gocca.OCCAMemory
}

// NewRunner creates a new Runner instance and allocates its device buffers
func NewRunner(device *gocca.OCCADevice, Config builder.Config) (kr *Runner) {
	if device == nil {
		panic("runner: nil Device")
	}
	bld := builder.NewBuilder(Config)

	kr = &Runner{
		Builder:      bld,
		Device:       device,
		Kernels:      make(map[string]*gocca.OCCAKernel),
		PooledMemory: make(map[string]*gocca.OCCAMemory),
	}

	size := builder.SizeOfType(bld.FloatType)
	kr.PooledMemory["in"] = device.Malloc(builder.NumInputs*size, nil, nil)
	kr.PooledMemory["out"] = device.Malloc(builder.NumOutputs*size, nil, nil)
	return
}

// Define generates and builds the kernel for prog. It returns the kernel
// name to pass to Run.
func (kr *Runner) Define(prog *compiler.Program) (string, error) {
	name, source, err := kr.GenerateKernel(prog)
	if err != nil {
		return "", err
	}
	if _, err := kr.BuildKernel(source, name); err != nil {
		return "", err
	}
	return name, nil
}

// BuildKernel compiles kernelSource with the preamble prepended
func (kr *Runner) BuildKernel(kernelSource, kernelName string) (*gocca.OCCAKernel, error) {
	kr.GeneratePreamble()

	// Combine preamble with kernel source
	fullSource := kr.KernelPreamble + "\n" + kernelSource

	var kernel *gocca.OCCAKernel
	var err error

	if kr.Device.Mode() == "OpenMP" {
		// Workaround for OCCA bug: OpenMP doesn't get default -O3 flag
		props := gocca.JsonParse(`{"compiler_flags": "-O3"}`)
		defer props.Free()
		kernel, err = kr.Device.BuildKernelFromString(fullSource, kernelName, props)
	} else {
		kernel, err = kr.Device.BuildKernelFromString(fullSource, kernelName, nil)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to build kernel %s: %w", kernelName, err)
	}
	if kernel == nil {
		return nil, fmt.Errorf("kernel build returned nil for %s", kernelName)
	}

	if old, exists := kr.Kernels[kernelName]; exists {
		old.Free()
	}
	kr.Kernels[kernelName] = kernel
	return kernel, nil
}

// Run evaluates the named kernel on T and p
func (kr *Runner) Run(kernelName string, T recurrence.StateVector, p float64) (recurrence.OutputVector, error) {
	var out recurrence.OutputVector

	kernel, exists := kr.Kernels[kernelName]
	if !exists {
		return out, fmt.Errorf("kernel %s not compiled", kernelName)
	}

	in := [builder.NumInputs]float64{T[0], T[1], T[2], T[3], p}
	if err := kr.copyToDevice(kr.PooledMemory["in"], in[:]); err != nil {
		return out, fmt.Errorf("pre-kernel copy failed: %w", err)
	}

	if err := kernel.RunWithArgs(kr.PooledMemory["in"], kr.PooledMemory["out"]); err != nil {
		return out, fmt.Errorf("kernel execution failed: %w", err)
	}
	kr.Device.Finish()

	if err := kr.copyFromDevice(kr.PooledMemory["out"], out[:]); err != nil {
		return out, fmt.Errorf("post-kernel copy failed: %w", err)
	}
	return out, nil
}

// Free releases all resources
func (kr *Runner) Free() {
	for _, kernel := range kr.Kernels {
		kernel.Free()
	}
	for _, mem := range kr.PooledMemory {
		mem.Free()
	}
	kr.Kernels = make(map[string]*gocca.OCCAKernel)
	kr.PooledMemory = make(map[string]*gocca.OCCAMemory)
}

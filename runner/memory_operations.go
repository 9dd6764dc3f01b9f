package runner

import (
	"fmt"
	"unsafe"

	"github.com/notargets/RecurKernel/runner/builder"
	"github.com/notargets/gocca"
)

// copyToDevice copies host values into mem, narrowing to float32 when the
// runner works in single precision
func (kr *Runner) copyToDevice(mem *gocca.OCCAMemory, data []float64) error {
	if mem == nil {
		return fmt.Errorf("device memory not allocated")
	}
	switch kr.FloatType {
	case builder.Float32:
		converted := make([]float32, len(data))
		for i, v := range data {
			converted[i] = float32(v)
		}
		mem.CopyFrom(unsafe.Pointer(&converted[0]), int64(len(converted)*4))
	case builder.Float64:
		mem.CopyFrom(unsafe.Pointer(&data[0]), int64(len(data)*8))
	default:
		return fmt.Errorf("unsupported conversion from float64 to %v", kr.FloatType)
	}
	return nil
}

// copyFromDevice copies len(data) values from mem into data, widening from
// float32 when needed
func (kr *Runner) copyFromDevice(mem *gocca.OCCAMemory, data []float64) error {
	if mem == nil {
		return fmt.Errorf("device memory not allocated")
	}
	switch kr.FloatType {
	case builder.Float32:
		converted := make([]float32, len(data))
		mem.CopyTo(unsafe.Pointer(&converted[0]), int64(len(converted)*4))
		for i, v := range converted {
			data[i] = float64(v)
		}
	case builder.Float64:
		mem.CopyTo(unsafe.Pointer(&data[0]), int64(len(data)*8))
	default:
		return fmt.Errorf("unsupported conversion from %v to float64", kr.FloatType)
	}
	return nil
}

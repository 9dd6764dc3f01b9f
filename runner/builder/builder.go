package builder

import (
	"fmt"
	"strings"
)

// DataType represents the precision of numerical data
type DataType int

const (
	Float32 DataType = iota + 1
	Float64
)

const (
	// NumInputs is the length of the device input buffer: T0..T3 then p
	NumInputs = 5
	// NumOutputs is the length of the device output buffer
	NumOutputs = 4
)

// Builder generates OKL source for recurrence programs
type Builder struct {
	FloatType DataType

	// Generated code
	KernelPreamble string
}

// Config holds configuration for creating a Builder
type Config struct {
	FloatType DataType
}

// NewBuilder creates a new Builder instance
func NewBuilder(cfg Config) *Builder {
	floatType := cfg.FloatType
	if floatType == 0 {
		floatType = Float64
	}
	if floatType != Float32 && floatType != Float64 {
		panic(fmt.Sprintf("unsupported float type %d", floatType))
	}
	return &Builder{FloatType: floatType}
}

// GeneratePreamble generates the type definitions shared by every kernel
func (kb *Builder) GeneratePreamble() string {
	var sb strings.Builder
	suffix := TypeSuffix(kb.FloatType)

	sb.WriteString(fmt.Sprintf("typedef %s real_t;\n", TypeName(kb.FloatType)))
	sb.WriteString(fmt.Sprintf("#define REAL_ZERO 0.0%s\n", suffix))
	sb.WriteString(fmt.Sprintf("#define REAL_ONE 1.0%s\n", suffix))
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("#define NIN %d\n", NumInputs))
	sb.WriteString(fmt.Sprintf("#define NOUT %d\n", NumOutputs))
	sb.WriteString("\n")

	kb.KernelPreamble = sb.String()
	return kb.KernelPreamble
}

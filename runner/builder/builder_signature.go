package builder

import (
	"fmt"
	"strings"
)

// GenerateKernelSignature generates the parameter list shared by every
// recurrence kernel: the packed inputs and the outputs
func (kb *Builder) GenerateKernelSignature() string {
	params := []string{
		"const real_t* in",
		"real_t* out",
	}
	return strings.Join(params, ",\n\t")
}

// GenerateKernelDeclaration generates a complete kernel function declaration
func (kb *Builder) GenerateKernelDeclaration(kernelName string) string {
	return fmt.Sprintf("@kernel void %s(\n\t%s\n)",
		kernelName,
		kb.GenerateKernelSignature())
}

// GenerateKernelTemplate wraps body in a single-iteration outer/inner loop
// pair, which OCCA requires of every kernel
func (kb *Builder) GenerateKernelTemplate(kernelName string, body string) string {
	var sb strings.Builder

	sb.WriteString(kb.GenerateKernelDeclaration(kernelName))
	sb.WriteString(" {\n")
	sb.WriteString("\tfor (int b = 0; b < 1; ++b; @outer) {\n")
	sb.WriteString("\t\tfor (int t = 0; t < 1; ++t; @inner) {\n")

	if body != "" {
		for _, line := range strings.Split(strings.TrimRight(body, "\n"), "\n") {
			if line != "" {
				sb.WriteString("\t\t\t" + line)
			}
			sb.WriteString("\n")
		}
	}

	sb.WriteString("\t\t}\n")
	sb.WriteString("\t}\n")
	sb.WriteString("}\n")
	return sb.String()
}

package utils

import (
	"fmt"
	"runtime"
	"strings"

	"golang.org/x/sys/cpu"
)

// HostDescription names the host architecture and the SIMD features it
// offers, e.g. "amd64 [avx2 fma]"
func HostDescription() string {
	return fmt.Sprintf("%s [%s]", runtime.GOARCH, strings.Join(SIMDFeatures(), " "))
}

// SIMDFeatures returns the vector extensions detected on this CPU
func SIMDFeatures() []string {
	var features []string
	add := func(ok bool, name string) {
		if ok {
			features = append(features, name)
		}
	}
	switch runtime.GOARCH {
	case "amd64", "386":
		add(cpu.X86.HasSSE41, "sse4.1")
		add(cpu.X86.HasAVX, "avx")
		add(cpu.X86.HasAVX2, "avx2")
		add(cpu.X86.HasFMA, "fma")
		add(cpu.X86.HasAVX512, "avx512")
	case "arm64":
		add(cpu.ARM64.HasASIMD, "asimd")
		add(cpu.ARM64.HasFPHP, "fphp")
		add(cpu.ARM64.HasSVE, "sve")
	}
	return features
}

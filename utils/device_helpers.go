package utils

import (
	"fmt"

	"github.com/notargets/gocca"
)

// CreateDevice creates a Device, preferring parallel backends. While
// accelerators are hidden only the Serial CPU backend is tried.
func CreateDevice() *gocca.OCCADevice {
	device, err := NewDevice()
	if err != nil {
		panic(err)
	}
	fmt.Printf("Created %s Device\n", device.Mode())
	return device
}

// NewDevice returns the first backend that can be created, in the order
// given by Backends
func NewDevice() (*gocca.OCCADevice, error) {
	var lastErr error
	for _, props := range Backends() {
		device, err := gocca.NewDevice(props)
		if err == nil {
			return device, nil
		}
		lastErr = err
	}
	return nil, fmt.Errorf("failed to create any Device: %w", lastErr)
}

// Backends lists the OCCA device properties tried by NewDevice
func Backends() []string {
	if !AcceleratorsVisible() {
		return []string{`{"mode": "Serial"}`}
	}
	return []string{
		`{"mode": "OpenMP"}`,
		`{"mode": "CUDA", "device_id": 0}`,
		`{"mode": "Serial"}`,
	}
}

package gpu

import "errors"

// Package errors for the GPU backend.
var (
	// ErrNotInitialized is returned when operations are called after Close
	// or before the device is ready.
	ErrNotInitialized = errors.New("gpu: backend not initialized")

	// ErrNoGPU is returned when no GPU adapter is available.
	ErrNoGPU = errors.New("gpu: no GPU adapter available")

	// ErrDeviceLost is returned when the GPU device is lost.
	ErrDeviceLost = errors.New("gpu: device lost")

	// ErrNilProvider is returned when a nil DeviceProvider is passed to New.
	ErrNilProvider = errors.New("gpu: nil device provider")
)

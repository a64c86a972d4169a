package sampler

// Device is the telemetry capability for a single GPU.
type Device interface {
	// Name returns a human-readable identifier for the device.
	Name() string
	// LoadFraction returns the current GPU load within [0, 1].
	LoadFraction() (float64, error)
	// VRAMUsed returns the current VRAM usage in bytes.
	VRAMUsed() (uint64, error)
}

// Provider acquires telemetry device handles. Open returns an error when the
// capability is unavailable or no compatible device exists; callers treat
// that as a recoverable condition, not a failure.
type Provider interface {
	// Name tags summaries produced from this provider's devices.
	Name() string
	Open() (Device, error)
}

// Package sampler collects AMD GPU utilisation samples in the background
// while a benchmarked command runs.
package sampler

import (
	"log/slog"
	"math"
	"sync"
	"time"
)

// DefaultInterval is used when a sampler is constructed without one.
const DefaultInterval = 500 * time.Millisecond

// Sample is one (load, VRAM) measurement captured at a polling tick.
type Sample struct {
	LoadFraction float64
	VRAMBytes    uint64
}

// Summary aggregates a closed sequence of samples.
type Summary struct {
	Provider              string  `json:"provider"`
	Device                string  `json:"device,omitempty"`
	SampleIntervalSeconds float64 `json:"sample_interval_seconds"`
	SampleCount           int     `json:"sample_count"`
	AvgGPULoadPercent     float64 `json:"avg_gpu_load_percent"`
	MaxGPULoadPercent     float64 `json:"max_gpu_load_percent"`
	AvgVRAMMB             float64 `json:"avg_vram_mb"`
	MaxVRAMMB             float64 `json:"max_vram_mb"`
}

const (
	stateIdle = iota
	stateRunning
	stateStopped
)

// Sampler polls a GPU device at a fixed interval on a background goroutine.
//
// The sample slice is appended to exclusively by the polling goroutine and
// read only after Stop has joined it, so it carries no lock of its own.
type Sampler struct {
	provider Provider
	interval time.Duration
	logger   *slog.Logger

	mu     sync.Mutex
	state  int
	stop   chan struct{}
	done   chan struct{}
	device Device

	samples []Sample
}

// New builds a Sampler polling devices from the given provider.
func New(provider Provider, interval time.Duration, logger *slog.Logger) *Sampler {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Sampler{
		provider: provider,
		interval: interval,
		logger:   logger.With("component", "gpu_sampler"),
	}
}

// Start acquires a device handle and launches the polling loop. It returns
// false, without error, when telemetry is unavailable or no compatible
// device exists; sampling is then silently disabled.
func (s *Sampler) Start() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != stateIdle {
		return false
	}

	device, err := s.provider.Open()
	if err != nil {
		s.logger.Warn("GPU telemetry unavailable, sampling disabled", "provider", s.provider.Name(), "err", err)
		return false
	}

	s.device = device
	s.stop = make(chan struct{})
	s.done = make(chan struct{})
	s.state = stateRunning
	go s.loop(device, s.stop, s.done)
	return true
}

// Stop signals the polling loop to exit and waits for it, up to twice the
// sampling interval. Idempotent; safe to call without a prior Start.
func (s *Sampler) Stop() {
	s.mu.Lock()
	if s.state == stateRunning {
		close(s.stop)
	}
	s.state = stateStopped
	done := s.done
	s.mu.Unlock()

	if done == nil {
		return
	}
	select {
	case <-done:
	case <-time.After(2 * s.interval):
		s.logger.Warn("polling loop did not exit in time")
	}
}

// Summary aggregates the collected samples, or returns nil when none were
// collected. Call only after Stop has returned.
func (s *Sampler) Summary() *Summary {
	if len(s.samples) == 0 {
		return nil
	}

	var sumLoad, maxLoad, sumVRAM, maxVRAM float64
	for _, sample := range s.samples {
		sumLoad += sample.LoadFraction
		if sample.LoadFraction > maxLoad {
			maxLoad = sample.LoadFraction
		}
		vram := float64(sample.VRAMBytes)
		sumVRAM += vram
		if vram > maxVRAM {
			maxVRAM = vram
		}
	}

	const mib = 1024 * 1024
	count := float64(len(s.samples))
	summary := &Summary{
		Provider:              s.provider.Name(),
		SampleIntervalSeconds: s.interval.Seconds(),
		SampleCount:           len(s.samples),
		AvgGPULoadPercent:     round2(sumLoad / count * 100),
		MaxGPULoadPercent:     round2(maxLoad * 100),
		AvgVRAMMB:             round2(sumVRAM / count / mib),
		MaxVRAMMB:             round2(maxVRAM / mib),
	}
	if s.device != nil {
		summary.Device = s.device.Name()
	}
	return summary
}

// loop samples immediately, then once per interval until stopped. A failed
// query halts the loop without surfacing an error; partial data is kept.
func (s *Sampler) loop(device Device, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		load, err := device.LoadFraction()
		if err != nil {
			s.logger.Debug("load query failed, polling halted", "err", err)
			return
		}
		vram, err := device.VRAMUsed()
		if err != nil {
			s.logger.Debug("vram query failed, polling halted", "err", err)
			return
		}
		s.samples = append(s.samples, Sample{LoadFraction: load, VRAMBytes: vram})

		select {
		case <-stop:
			return
		case <-ticker.C:
		}
	}
}

func round2(value float64) float64 {
	return math.Round(value*100) / 100
}

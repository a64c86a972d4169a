package sampler

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"rocmbench/internal/gpu"
)

const (
	gpuBusyFilename  = "gpu_busy_percent"
	vramUsedFilename = "mem_info_vram_used"

	sysfsProviderName = "amdgpu-sysfs"
)

// ErrNoDevice is returned by SysfsProvider.Open when no usable AMD GPU is
// exposed through sysfs.
var ErrNoDevice = errors.New("no compatible AMD GPU found")

// SysfsProvider opens the first AMD GPU exposed through the amdgpu sysfs
// interface under the configured root.
type SysfsProvider struct {
	sysfsRoot string
	logger    *slog.Logger
}

// NewSysfsProvider builds a provider reading from the given sysfs root
// (normally "/sys").
func NewSysfsProvider(sysfsRoot string, logger *slog.Logger) *SysfsProvider {
	if logger == nil {
		logger = slog.Default()
	}
	return &SysfsProvider{
		sysfsRoot: sysfsRoot,
		logger:    logger.With("component", "sysfs_provider"),
	}
}

// Name implements Provider.
func (p *SysfsProvider) Name() string {
	return sysfsProviderName
}

// Open discovers DRM cards and returns a device for the first AMD one that
// exposes the busy-percent metric.
func (p *SysfsProvider) Open() (Device, error) {
	infos, err := gpu.Discover(p.sysfsRoot, p.logger)
	if err != nil {
		return nil, fmt.Errorf("discover gpus: %w", err)
	}

	for _, info := range infos {
		if !info.IsAMD() {
			continue
		}
		device, err := newSysfsDevice(p.sysfsRoot, info)
		if err != nil {
			p.logger.Warn("skipping card without telemetry", "card", info.ID, "err", err)
			continue
		}
		return device, nil
	}
	return nil, ErrNoDevice
}

type sysfsDevice struct {
	name       string
	devicePath string
}

func newSysfsDevice(sysfsRoot string, info gpu.Info) (*sysfsDevice, error) {
	devicePath := filepath.Join(sysfsRoot, "class", "drm", info.ID, "device")
	if _, err := os.Stat(filepath.Join(devicePath, gpuBusyFilename)); err != nil {
		return nil, fmt.Errorf("stat %s: %w", gpuBusyFilename, err)
	}

	name := info.Name
	if name == "" {
		name = info.ID
	}
	return &sysfsDevice{name: name, devicePath: devicePath}, nil
}

func (d *sysfsDevice) Name() string {
	return d.name
}

func (d *sysfsDevice) LoadFraction() (float64, error) {
	value, err := readFloatFile(filepath.Join(d.devicePath, gpuBusyFilename))
	if err != nil {
		return 0, err
	}
	if value < 0 {
		return 0, fmt.Errorf("negative busy percent %v", value)
	}
	if value > 100 {
		// Some kernels report busy % scaled by 100.
		value = math.Min(value/100, 100)
	}
	return value / 100, nil
}

func (d *sysfsDevice) VRAMUsed() (uint64, error) {
	return readUintFile(filepath.Join(d.devicePath, vramUsedFilename))
}

func readFloatFile(path string) (float64, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	valueStr := strings.TrimSpace(string(data))
	if valueStr == "" {
		return 0, fmt.Errorf("empty value in %s", path)
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return 0, fmt.Errorf("parse float from %s: %w", path, err)
	}
	return value, nil
}

func readUintFile(path string) (uint64, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	valueStr := strings.TrimSpace(string(data))
	if valueStr == "" {
		return 0, fmt.Errorf("empty value in %s", path)
	}
	value, err := strconv.ParseUint(valueStr, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse uint from %s: %w", path, err)
	}
	return value, nil
}

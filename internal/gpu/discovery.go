// Package gpu enumerates GPUs exposed through the Linux DRM sysfs tree.
package gpu

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

const (
	drmClassPath = "class/drm"

	// PCI vendor id shared by AMD/ATI GPUs.
	amdVendorID = "1002"
)

// Info describes a single DRM card discovered via sysfs.
type Info struct {
	ID     string `json:"id"`
	PCI    string `json:"pci"`
	Vendor string `json:"vendor"`
	Device string `json:"device"`
	Name   string `json:"name"`
}

// IsAMD reports whether the card's PCI vendor is AMD/ATI.
func (i Info) IsAMD() bool {
	return i.Vendor == amdVendorID
}

// Discover enumerates DRM cards under the provided sysfs root. A missing DRM
// class directory yields an empty result, not an error.
func Discover(root string, logger *slog.Logger) ([]Info, error) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	classDir := filepath.Join(root, drmClassPath)
	entries, err := os.ReadDir(classDir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			logger.Warn("drm class path missing", "path", classDir)
			return nil, nil
		}
		return nil, fmt.Errorf("read drm class dir: %w", err)
	}

	var infos []Info
	for _, entry := range entries {
		name := entry.Name()
		if !isCardID(name) {
			continue
		}

		info, err := loadCardInfo(filepath.Join(classDir, name), name)
		if err != nil {
			logger.Warn("failed to load card info", "card", name, "err", err)
			continue
		}
		infos = append(infos, info)
	}
	return infos, nil
}

// isCardID matches "cardN" entries, excluding connector nodes like
// "card0-DP-1".
func isCardID(name string) bool {
	if !strings.HasPrefix(name, "card") || strings.ContainsRune(name, '-') {
		return false
	}
	index := name[len("card"):]
	if index == "" {
		return false
	}
	for _, r := range index {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func loadCardInfo(cardPath, cardID string) (Info, error) {
	devicePath := filepath.Join(cardPath, "device")
	if _, err := os.Stat(devicePath); err != nil {
		return Info{}, fmt.Errorf("stat device path: %w", err)
	}

	info := Info{ID: cardID}

	if data, err := os.ReadFile(filepath.Join(devicePath, "uevent")); err == nil {
		text := string(data)
		info.PCI = parseKeyValue(text, "PCI_SLOT_NAME")
		if pciID := parseKeyValue(text, "PCI_ID"); pciID != "" {
			if vendor, device, ok := strings.Cut(pciID, ":"); ok {
				info.Vendor = normalizePCIID(vendor)
				info.Device = normalizePCIID(device)
			}
		}
	}

	if info.Vendor == "" {
		info.Vendor = normalizePCIID(readTrim(devicePath, "vendor"))
		info.Device = normalizePCIID(readTrim(devicePath, "device"))
	}

	info.Name = lookupDeviceName(info.Vendor, info.Device)
	return info, nil
}

func parseKeyValue(data, key string) string {
	prefix := key + "="
	scanner := bufio.NewScanner(strings.NewReader(data))
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, prefix) {
			return strings.TrimSpace(strings.TrimPrefix(line, prefix))
		}
	}
	return ""
}

func readTrim(dir, name string) string {
	data, err := os.ReadFile(filepath.Join(dir, name))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

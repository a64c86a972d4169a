package gpu

import (
	"strings"
	"sync"

	"github.com/jaypipes/pcidb"
)

var (
	pciOnce sync.Once
	pciDB   *pcidb.PCIDB
)

// lookupDeviceName resolves a marketing name for a PCI vendor/device pair
// from the system pci.ids database. Returns "" when either the database or
// the product is unknown.
func lookupDeviceName(vendorID, deviceID string) string {
	vendorID = normalizePCIID(vendorID)
	deviceID = normalizePCIID(deviceID)
	if vendorID == "" || deviceID == "" {
		return ""
	}

	pciOnce.Do(func() {
		pciDB, _ = pcidb.New()
	})
	if pciDB == nil {
		return ""
	}

	product, ok := pciDB.Products[vendorID+deviceID]
	if !ok || product == nil {
		return ""
	}
	return product.Name
}

// normalizePCIID lowercases a hex PCI id and pads it to four digits.
func normalizePCIID(raw string) string {
	value := strings.TrimSpace(raw)
	value = strings.TrimPrefix(value, "0x")
	value = strings.TrimPrefix(value, "0X")
	if value == "" {
		return ""
	}
	value = strings.ToLower(value)
	if len(value) < 4 {
		value = strings.Repeat("0", 4-len(value)) + value
	}
	return value
}

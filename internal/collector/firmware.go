package collector

import (
	"strings"

	"github.com/siderolabs/go-smbios/smbios"
)

// firmwareInfo holds the SMBIOS system and BIOS identity strings.
type firmwareInfo struct {
	Manufacturer string
	Product      string
	BIOSVendor   string
	BIOSVersion  string
}

// readFirmware decodes the SMBIOS tables. Reading them usually needs
// elevated privileges; callers treat an error as "no firmware data".
func readFirmware() (firmwareInfo, error) {
	s, err := smbios.New()
	if err != nil {
		return firmwareInfo{}, err
	}
	return firmwareInfo{
		Manufacturer: strings.TrimSpace(s.SystemInformation.Manufacturer),
		Product:      strings.TrimSpace(s.SystemInformation.ProductName),
		BIOSVendor:   strings.TrimSpace(s.BIOSInformation.Vendor),
		BIOSVersion:  strings.TrimSpace(s.BIOSInformation.Version),
	}, nil
}

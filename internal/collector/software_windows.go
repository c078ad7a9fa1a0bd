//go:build windows

package collector

import (
	"context"
	"errors"
	"strconv"

	"golang.org/x/sys/windows/registry"
)

const uninstallKey = `SOFTWARE\Microsoft\Windows\CurrentVersion\Uninstall`

// DetectSoftwareCapability returns the HKLM uninstall registry probe.
func DetectSoftwareCapability() SoftwareCapability {
	return Supported{Probe: registryProbe{root: registry.LOCAL_MACHINE, path: uninstallKey}}
}

// registryProbe reads one subkey per registered application.
type registryProbe struct {
	root registry.Key
	path string
}

func (p registryProbe) Records(ctx context.Context) ([]SoftwareRecord, error) {
	k, err := registry.OpenKey(p.root, p.path, registry.ENUMERATE_SUB_KEYS|registry.QUERY_VALUE)
	if err != nil {
		return nil, err
	}
	defer k.Close()

	names, err := k.ReadSubKeyNames(-1)
	if err != nil {
		return nil, err
	}

	records := make([]SoftwareRecord, 0, len(names))
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return records, err
		}
		records = append(records, readRecord(k, name))
	}
	return records, nil
}

func readRecord(parent registry.Key, name string) SoftwareRecord {
	rec := SoftwareRecord{Key: name}

	sub, err := registry.OpenKey(parent, name, registry.QUERY_VALUE)
	if err != nil {
		rec.Err = err
		return rec
	}
	defer sub.Close()

	rec.DisplayName, _, err = sub.GetStringValue("DisplayName")
	if err != nil && !errors.Is(err, registry.ErrNotExist) {
		rec.Err = err
		return rec
	}
	rec.InstallDate = readInstallDate(sub)
	return rec
}

// readInstallDate accepts both REG_SZ and REG_DWORD encodings.
func readInstallDate(k registry.Key) string {
	s, _, err := k.GetStringValue("InstallDate")
	if err == nil {
		return s
	}
	if errors.Is(err, registry.ErrUnexpectedType) {
		if n, _, err := k.GetIntegerValue("InstallDate"); err == nil {
			return strconv.FormatUint(n, 10)
		}
	}
	return ""
}

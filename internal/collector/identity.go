package collector

import (
	"context"
	"os"
	"runtime"
	"strings"

	"github.com/shirou/gopsutil/v3/cpu"
)

// kernelInfo is the release/version/machine triple reported by the OS.
type kernelInfo struct {
	Release string
	Version string
	Machine string
}

// IdentityCollector reports platform and host identity.
type IdentityCollector struct {
	goos     string
	hostname func() (string, error)
	kernel   func(ctx context.Context) (kernelInfo, error)
	cpuInfo  func(ctx context.Context) ([]cpu.InfoStat, error)
	firmware func() (firmwareInfo, error)
}

// NewIdentityCollector returns a collector backed by the running OS.
func NewIdentityCollector() *IdentityCollector {
	return &IdentityCollector{
		goos:     runtime.GOOS,
		hostname: os.Hostname,
		kernel:   readKernelInfo,
		cpuInfo:  cpu.InfoWithContext,
		firmware: readFirmware,
	}
}

func (c *IdentityCollector) Category() Category { return CategoryIdentity }

// Collect never fails: fields the host will not disclose are left
// empty, except Machine and Processor which fall back to GOARCH.
func (c *IdentityCollector) Collect(ctx context.Context) (Snapshot, error) {
	id := Identity{Platform: platformName(c.goos)}

	if k, err := c.kernel(ctx); err == nil {
		id.Release = k.Release
		id.Version = k.Version
		id.Machine = k.Machine
	}
	if id.Machine == "" {
		id.Machine = runtime.GOARCH
	}

	if infos, err := c.cpuInfo(ctx); err == nil && len(infos) > 0 {
		id.Processor = strings.TrimSpace(infos[0].ModelName)
	}
	if id.Processor == "" {
		id.Processor = id.Machine
	}

	if name, err := c.hostname(); err == nil {
		id.Hostname = name
	}

	if fw, err := c.firmware(); err == nil {
		id.Manufacturer = fw.Manufacturer
		id.Product = fw.Product
		id.BIOSVendor = fw.BIOSVendor
		id.BIOSVersion = fw.BIOSVersion
	}

	return id, nil
}

var platformNames = map[string]string{
	"linux":     "Linux",
	"windows":   "Windows",
	"darwin":    "Darwin",
	"freebsd":   "FreeBSD",
	"openbsd":   "OpenBSD",
	"netbsd":    "NetBSD",
	"dragonfly": "DragonFly",
	"solaris":   "SunOS",
	"illumos":   "SunOS",
	"aix":       "AIX",
}

// platformName maps GOOS to the name the OS reports for itself.
func platformName(goos string) string {
	if name, ok := platformNames[goos]; ok {
		return name
	}
	if goos == "" {
		return ""
	}
	return strings.ToUpper(goos[:1]) + goos[1:]
}

// windowsRelease shortens a product name such as "Microsoft Windows 11 Pro"
// to "11", and "Microsoft Windows Server 2019 Standard" to "2019Server".
func windowsRelease(product string) string {
	fields := strings.Fields(strings.TrimPrefix(product, "Microsoft Windows"))
	switch {
	case len(fields) == 0:
		return ""
	case fields[0] == "Server" && len(fields) > 1:
		return fields[1] + "Server"
	}
	return fields[0]
}

// windowsVersion drops the trailing "Build N" from gopsutil's platform
// version.
func windowsVersion(v string) string {
	if f := strings.Fields(v); len(f) > 0 {
		return f[0]
	}
	return ""
}

//go:build windows

package collector

import (
	"context"

	"github.com/shirou/gopsutil/v3/host"
)

// readKernelInfo reports the short release ("11", "2019Server") and the
// dotted build version ("10.0.22631").
func readKernelInfo(ctx context.Context) (kernelInfo, error) {
	info, err := host.InfoWithContext(ctx)
	if err != nil {
		return kernelInfo{}, err
	}
	return kernelInfo{
		Release: windowsRelease(info.Platform),
		Version: windowsVersion(info.PlatformVersion),
		Machine: info.KernelArch,
	}, nil
}

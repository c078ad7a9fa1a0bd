//go:build !windows

package collector

import "runtime"

// DetectSoftwareCapability reports that only Windows keeps an uninstall
// registry.
func DetectSoftwareCapability() SoftwareCapability {
	return Unsupported{Reason: "software inventory requires the Windows registry (running on " + runtime.GOOS + ")"}
}

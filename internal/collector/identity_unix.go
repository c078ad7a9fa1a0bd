//go:build unix

package collector

import (
	"context"

	"golang.org/x/sys/unix"
)

// readKernelInfo reads the release, version and machine fields of uname(2).
func readKernelInfo(_ context.Context) (kernelInfo, error) {
	var u unix.Utsname
	if err := unix.Uname(&u); err != nil {
		return kernelInfo{}, err
	}
	return kernelInfo{
		Release: unix.ByteSliceToString(u.Release[:]),
		Version: unix.ByteSliceToString(u.Version[:]),
		Machine: unix.ByteSliceToString(u.Machine[:]),
	}, nil
}

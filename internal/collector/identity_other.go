//go:build !unix && !windows

package collector

import (
	"context"
	"fmt"
	"runtime"
)

func readKernelInfo(_ context.Context) (kernelInfo, error) {
	return kernelInfo{}, fmt.Errorf("%w: kernel identity on %s", ErrProbeUnavailable, runtime.GOOS)
}

//go:build !windows

package winsvc

import (
	"context"

	"github.com/go-kratos/kratos/v2/log"
)

// IsWindowsService always returns false on non-Windows platforms.
func IsWindowsService() bool { return false }

// RunService is not supported on non-Windows platforms.
func RunService(_ string, _ log.Logger, _ func(ctx context.Context) error) error {
	return ErrUnsupported
}

// NewEventLogger is not supported on non-Windows platforms.
func NewEventLogger(_ string) (log.Logger, func() error, error) {
	return nil, nil, ErrUnsupported
}

// Install is not supported on non-Windows platforms.
func Install(_ string, _ []string) error {
	return ErrUnsupported
}

// Uninstall is not supported on non-Windows platforms.
func Uninstall(_ string) error {
	return ErrUnsupported
}

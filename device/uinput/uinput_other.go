//go:build !linux

package uinput

import (
	"log/slog"

	"github.com/phonepad/phonepad/device"
)

// Open always fails outside linux.
func Open(path, name string, vendor, product uint16, logger *slog.Logger) (device.Gamepad, error) {
	return nil, ErrUnsupported
}

// CheckPrerequisites logs that uinput is unavailable.
func CheckPrerequisites(path string, logger *slog.Logger) bool {
	logger.Warn("uinput backend is not available on this platform; use --device.backend=xbox360 with a VIIPER server")
	return false
}

// Package uinput drives a Linux evdev gamepad created through /dev/uinput.
package uinput

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/phonepad/phonepad/device"
)

// ErrUnsupported is returned when uinput is not available on this platform.
var ErrUnsupported = errors.New("uinput is only supported on linux")

func init() {
	device.Register("uinput", backend{})
}

type backend struct{}

func (backend) Description() string { return "Linux evdev gamepad via /dev/uinput" }

func (backend) NewFactory(cfg device.Config, logger *slog.Logger) (device.Factory, error) {
	if cfg.UinputPath == "" {
		return nil, fmt.Errorf("uinput: empty device path")
	}
	if !CheckPrerequisites(cfg.UinputPath, logger) {
		logger.Warn("uinput prerequisites not met, controller creation will fail until they are satisfied")
	}
	return device.FactoryFunc(func(_ context.Context, o *device.CreateOptions) (device.Gamepad, error) {
		name := cfg.Name
		l := logger
		if o != nil {
			if o.Name != "" {
				name = o.Name
			}
			if o.Logger != nil {
				l = o.Logger
			}
		}
		pad, err := Open(cfg.UinputPath, name, cfg.VendorID, cfg.ProductID, l)
		if err != nil {
			return nil, err
		}
		return pad, nil
	}), nil
}

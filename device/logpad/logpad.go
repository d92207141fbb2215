// Package logpad provides a device backend without OS side effects. Every
// committed state is written to the log, which makes it useful for dry runs
// on hosts without a virtual input driver.
package logpad

import (
	"context"
	"log/slog"
	"sync"

	"github.com/phonepad/phonepad/device"
	"github.com/phonepad/phonepad/gamepad"
)

func init() {
	device.Register("log", backend{})
}

type backend struct{}

func (backend) Description() string { return "log resolved states instead of driving a device" }

func (backend) NewFactory(cfg device.Config, logger *slog.Logger) (device.Factory, error) {
	return device.FactoryFunc(func(_ context.Context, o *device.CreateOptions) (device.Gamepad, error) {
		l := logger
		if o != nil && o.Logger != nil {
			l = o.Logger
		}
		return New(l), nil
	}), nil
}

// Gamepad logs instead of driving hardware.
type Gamepad struct {
	mu     sync.Mutex
	logger *slog.Logger
	last   gamepad.Resolved
	closed bool
}

// New returns a Gamepad writing to logger.
func New(logger *slog.Logger) *Gamepad {
	if logger == nil {
		logger = slog.Default()
	}
	return &Gamepad{logger: logger}
}

func (g *Gamepad) Apply(state gamepad.Resolved) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.closed {
		return nil
	}
	if state == g.last {
		return nil
	}
	g.last = state
	g.logger.Debug("gamepad state",
		"buttons", state.Buttons,
		"dpad", state.DPad,
		"lx", state.LX, "ly", state.LY,
		"rx", state.RX, "ry", state.RY,
		"lt", state.LT, "rt", state.RT)
	return nil
}

func (g *Gamepad) Reset() error {
	return g.Apply(gamepad.Neutral())
}

func (g *Gamepad) Close() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.closed = true
	return nil
}

// Last returns the most recently applied state.
func (g *Gamepad) Last() gamepad.Resolved {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.last
}

//go:build linux

package uinput

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"

	ui "github.com/bendahl/uinput"
	"golang.org/x/sys/unix"

	"github.com/phonepad/phonepad/gamepad"
)

type buttonMapping struct {
	code int
	get  func(r *gamepad.Resolved) bool
}

// Capture has no evdev counterpart on the generic gamepad profile. The
// library exposes no writer for ABS_Z/ABS_RZ, so triggers are digital: any
// pull (or ZL/ZR) presses BTN_TL2/BTN_TR2.
var buttonMap = []buttonMapping{
	{ui.ButtonSouth, func(r *gamepad.Resolved) bool { return r.A }},
	{ui.ButtonEast, func(r *gamepad.Resolved) bool { return r.B }},
	{ui.ButtonWest, func(r *gamepad.Resolved) bool { return r.X }},
	{ui.ButtonNorth, func(r *gamepad.Resolved) bool { return r.Y }},
	{ui.ButtonBumperLeft, func(r *gamepad.Resolved) bool { return r.LB }},
	{ui.ButtonBumperRight, func(r *gamepad.Resolved) bool { return r.RB }},
	{ui.ButtonTriggerLeft, func(r *gamepad.Resolved) bool { return r.LT > 0 }},
	{ui.ButtonTriggerRight, func(r *gamepad.Resolved) bool { return r.RT > 0 }},
	{ui.ButtonStart, func(r *gamepad.Resolved) bool { return r.Plus }},
	{ui.ButtonSelect, func(r *gamepad.Resolved) bool { return r.Minus }},
	{ui.ButtonThumbLeft, func(r *gamepad.Resolved) bool { return r.LS }},
	{ui.ButtonThumbRight, func(r *gamepad.Resolved) bool { return r.RS }},
	{ui.ButtonMode, func(r *gamepad.Resolved) bool { return r.Home }},
}

// Gamepad is a uinput-backed controller. Apply only emits events for values
// that changed since the last successful commit.
type Gamepad struct {
	mu     sync.Mutex
	pad    ui.Gamepad
	last   gamepad.Resolved
	synced bool
	closed bool
	logger *slog.Logger
}

// Open creates a new evdev gamepad.
func Open(path, name string, vendor, product uint16, logger *slog.Logger) (*Gamepad, error) {
	pad, err := ui.CreateGamepad(path, []byte(name), vendor, product)
	if err != nil {
		return nil, fmt.Errorf("create uinput gamepad: %w", err)
	}
	g := newGamepad(pad, logger)
	g.logger.Debug("uinput gamepad created", "path", path, "name", name)
	return g, nil
}

func newGamepad(pad ui.Gamepad, logger *slog.Logger) *Gamepad {
	if logger == nil {
		logger = slog.Default()
	}
	return &Gamepad{pad: pad, logger: logger}
}

// Apply sends the changed fields of state. Every library call ends with its
// own SYN_REPORT, so readers may observe the intermediate frames.
func (g *Gamepad) Apply(state gamepad.Resolved) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.closed {
		return errors.New("uinput gamepad closed")
	}

	var errs []error
	prev := g.last
	full := !g.synced

	for _, m := range buttonMap {
		now := m.get(&state)
		if !full && now == m.get(&prev) {
			continue
		}
		if now {
			errs = append(errs, g.pad.ButtonDown(m.code))
		} else {
			errs = append(errs, g.pad.ButtonUp(m.code))
		}
	}

	hats := []struct {
		dir      ui.HatDirection
		now, was bool
	}{
		{ui.HatUp, state.DPad.Up, prev.DPad.Up},
		{ui.HatDown, state.DPad.Down, prev.DPad.Down},
		{ui.HatLeft, state.DPad.Left, prev.DPad.Left},
		{ui.HatRight, state.DPad.Right, prev.DPad.Right},
	}
	// Releases go first: a release zeroes the whole hat axis.
	for _, h := range hats {
		if !h.now && (full || h.was) {
			errs = append(errs, g.pad.HatRelease(h.dir))
		}
	}
	for _, h := range hats {
		if h.now && (full || !h.was) {
			errs = append(errs, g.pad.HatPress(h.dir))
		}
	}

	// evdev Y grows downward, clients send up as positive.
	if full || state.LX != prev.LX || state.LY != prev.LY {
		errs = append(errs, g.pad.LeftStickMove(float32(state.LX), float32(-state.LY)))
	}
	if full || state.RX != prev.RX || state.RY != prev.RY {
		errs = append(errs, g.pad.RightStickMove(float32(state.RX), float32(-state.RY)))
	}

	if err := errors.Join(errs...); err != nil {
		g.synced = false
		return fmt.Errorf("uinput apply: %w", err)
	}
	g.last = state
	g.synced = true
	return nil
}

func (g *Gamepad) Reset() error {
	return g.Apply(gamepad.Neutral())
}

func (g *Gamepad) Close() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.closed {
		return nil
	}
	g.closed = true
	return g.pad.Close()
}

// CheckPrerequisites checks that path is writable and the uinput module is
// available. Returns true if all requirements are satisfied, false otherwise
// with helpful log messages.
func CheckPrerequisites(path string, logger *slog.Logger) bool {
	allOk := true

	if err := unix.Access(path, unix.W_OK); err != nil {
		logger.Warn("uinput device is not writable", "path", path, "error", err)
		logger.Info("Grant access to the uinput device:")
		logger.Info("  sudo modprobe uinput")
		logger.Info("  echo 'KERNEL==\"uinput\", MODE=\"0660\", GROUP=\"input\"' | sudo tee /etc/udev/rules.d/99-phonepad.rules")
		logger.Info("  sudo usermod -aG input $USER")
		allOk = false
	} else {
		logger.Debug("uinput device is writable", "path", path)
	}

	data, err := os.ReadFile("/proc/modules")
	if err != nil {
		logger.Debug("Could not read /proc/modules", "error", err)
	} else if !bytes.Contains(data, []byte("uinput")) {
		// may be built into the kernel
		logger.Debug("uinput kernel module not listed in /proc/modules")
	}

	return allOk
}

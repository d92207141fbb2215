package testing

import (
	"context"
	"errors"
	"sync"

	"github.com/phonepad/phonepad/device"
	"github.com/phonepad/phonepad/gamepad"
)

// ErrInjected is returned by MockGamepad operations configured to fail.
var ErrInjected = errors.New("injected device failure")

// Call is one recorded device operation.
type Call struct {
	Op    string
	State gamepad.Resolved
}

// MockGamepad records every call made to it.
type MockGamepad struct {
	mu    sync.Mutex
	calls []Call

	FailApply bool
	FailReset bool
	FailClose bool
}

func (m *MockGamepad) Apply(state gamepad.Resolved) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, Call{Op: "apply", State: state})
	if m.FailApply {
		return ErrInjected
	}
	return nil
}

func (m *MockGamepad) Reset() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, Call{Op: "reset", State: gamepad.Neutral()})
	if m.FailReset {
		return ErrInjected
	}
	return nil
}

func (m *MockGamepad) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, Call{Op: "close"})
	if m.FailClose {
		return ErrInjected
	}
	return nil
}

// Calls returns a copy of the recorded calls.
func (m *MockGamepad) Calls() []Call {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Call(nil), m.calls...)
}

// Count returns how many times op was called.
func (m *MockGamepad) Count(op string) int {
	n := 0
	for _, c := range m.Calls() {
		if c.Op == op {
			n++
		}
	}
	return n
}

// LastApplied returns the most recent applied state.
func (m *MockGamepad) LastApplied() (gamepad.Resolved, bool) {
	calls := m.Calls()
	for i := len(calls) - 1; i >= 0; i-- {
		if calls[i].Op == "apply" {
			return calls[i].State, true
		}
	}
	return gamepad.Resolved{}, false
}

// MockFactory hands out MockGamepads and keeps them for inspection.
type MockFactory struct {
	mu   sync.Mutex
	pads []*MockGamepad
	opts []device.CreateOptions

	// Err, when set, is returned by Create.
	Err error
}

func (f *MockFactory) Create(_ context.Context, o *device.CreateOptions) (device.Gamepad, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return nil, f.Err
	}
	pad := &MockGamepad{}
	f.pads = append(f.pads, pad)
	if o != nil {
		f.opts = append(f.opts, *o)
	} else {
		f.opts = append(f.opts, device.CreateOptions{})
	}
	return pad, nil
}

// Pads returns the created gamepads in creation order.
func (f *MockFactory) Pads() []*MockGamepad {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*MockGamepad(nil), f.pads...)
}

// Options returns the create options passed for each gamepad.
func (f *MockFactory) Options() []device.CreateOptions {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]device.CreateOptions(nil), f.opts...)
}

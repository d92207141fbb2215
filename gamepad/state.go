// Package gamepad holds the controller state model shared by sessions and
// device backends.
//
// A State is the accumulated, per-connection view of everything a client has
// sent. Resolve turns it into a Resolved state that device backends can commit
// without further interpretation.
package gamepad

// Buttons holds the digital buttons of the generic gamepad profile.
type Buttons struct {
	A, B, X, Y bool
	LB, RB     bool
	Plus       bool // start
	Minus      bool // back/select
	LS, RS     bool // stick clicks
	ZL, ZR     bool // digital triggers
	Home       bool
	Capture    bool
}

// State is the authoritative input record of one session.
// Sticks are in [-1, 1], triggers in [0, 1].
type State struct {
	Buttons
	DPad DPad

	LX, LY float64
	RX, RY float64

	LT, RT float64
}

// Default returns the neutral state.
func Default() State {
	return State{DPad: DPadCenter}
}

// IsDefault reports whether s equals the neutral state.
func (s State) IsDefault() bool {
	d := Default()
	if s.DPad == "" {
		s.DPad = DPadCenter
	}
	return s == d
}

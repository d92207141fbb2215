package gamepad

import "math"

// Resolved is the driver-ready controller state derived from a State.
type Resolved struct {
	Buttons
	DPad DPadFlags

	LX, LY float64
	RX, RY float64

	LT, RT float64
}

// Resolve derives the concrete controller state from s. It has no side
// effects.
//
// A pressed ZL/ZR with a zero analog trigger resolves to a fully pulled
// trigger. A non-zero analog value always wins.
func Resolve(s State) Resolved {
	r := Resolved{
		Buttons: s.Buttons,
		DPad:    s.DPad.Flags(),
		LX:      Clamp(s.LX, -1, 1),
		LY:      Clamp(s.LY, -1, 1),
		RX:      Clamp(s.RX, -1, 1),
		RY:      Clamp(s.RY, -1, 1),
		LT:      Clamp(s.LT, 0, 1),
		RT:      Clamp(s.RT, 0, 1),
	}
	if r.ZL && r.LT == 0 {
		r.LT = 1
	}
	if r.ZR && r.RT == 0 {
		r.RT = 1
	}
	return r
}

// Neutral returns the resolved default state.
func Neutral() Resolved {
	return Resolve(Default())
}

// Clamp limits v to [lo, hi]. NaN clamps to 0.
func Clamp(v, lo, hi float64) float64 {
	switch {
	case math.IsNaN(v):
		return 0
	case v < lo:
		return lo
	case v > hi:
		return hi
	}
	return v
}

package gamepad_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/phonepad/phonepad/gamepad"
)

func TestResolve_Clamp(t *testing.T) {
	tests := []struct {
		name  string
		state gamepad.State
		check func(t *testing.T, r gamepad.Resolved)
	}{
		{
			name:  "in range values unchanged",
			state: gamepad.State{LX: 0.5, LY: -0.25, RX: -1, RY: 1, LT: 0.3, RT: 1},
			check: func(t *testing.T, r gamepad.Resolved) {
				assert.Equal(t, 0.5, r.LX)
				assert.Equal(t, -0.25, r.LY)
				assert.Equal(t, -1.0, r.RX)
				assert.Equal(t, 1.0, r.RY)
				assert.Equal(t, 0.3, r.LT)
				assert.Equal(t, 1.0, r.RT)
			},
		},
		{
			name:  "stick above range",
			state: gamepad.State{LX: 5},
			check: func(t *testing.T, r gamepad.Resolved) { assert.Equal(t, 1.0, r.LX) },
		},
		{
			name:  "stick below range",
			state: gamepad.State{RY: -3.5},
			check: func(t *testing.T, r gamepad.Resolved) { assert.Equal(t, -1.0, r.RY) },
		},
		{
			name:  "negative trigger",
			state: gamepad.State{RT: -2},
			check: func(t *testing.T, r gamepad.Resolved) { assert.Equal(t, 0.0, r.RT) },
		},
		{
			name:  "NaN resolves to zero",
			state: gamepad.State{LX: math.NaN(), LT: math.NaN()},
			check: func(t *testing.T, r gamepad.Resolved) {
				assert.Equal(t, 0.0, r.LX)
				assert.Equal(t, 0.0, r.LT)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.check(t, gamepad.Resolve(tt.state))
		})
	}
}

func TestResolve_Idempotent(t *testing.T) {
	s := gamepad.State{LX: 7, RT: -1, DPad: gamepad.DPadUp, Buttons: gamepad.Buttons{A: true}}
	first := gamepad.Resolve(s)
	again := gamepad.Resolve(gamepad.State{
		Buttons: first.Buttons,
		DPad:    gamepad.DPadUp,
		LX:      first.LX, LY: first.LY, RX: first.RX, RY: first.RY,
		LT: first.LT, RT: first.RT,
	})
	assert.Equal(t, first, again)
}

func TestResolve_DPad(t *testing.T) {
	tests := []struct {
		dpad gamepad.DPad
		want gamepad.DPadFlags
	}{
		{gamepad.DPadCenter, gamepad.DPadFlags{}},
		{gamepad.DPadUp, gamepad.DPadFlags{Up: true}},
		{gamepad.DPadDown, gamepad.DPadFlags{Down: true}},
		{gamepad.DPadLeft, gamepad.DPadFlags{Left: true}},
		{gamepad.DPadRight, gamepad.DPadFlags{Right: true}},
		{gamepad.DPadUpLeft, gamepad.DPadFlags{Up: true, Left: true}},
		{gamepad.DPadUpRight, gamepad.DPadFlags{Up: true, Right: true}},
		{gamepad.DPadDownLeft, gamepad.DPadFlags{Down: true, Left: true}},
		{gamepad.DPadDownRight, gamepad.DPadFlags{Down: true, Right: true}},
		{"bogus", gamepad.DPadFlags{}},
		{"", gamepad.DPadFlags{}},
		{"up_left", gamepad.DPadFlags{Up: true, Left: true}},
	}

	for _, tt := range tests {
		t.Run(string(tt.dpad), func(t *testing.T) {
			r := gamepad.Resolve(gamepad.State{DPad: tt.dpad})
			assert.Equal(t, tt.want, r.DPad)
		})
	}
}

func TestResolve_DPadReplacesPreviousFlags(t *testing.T) {
	s := gamepad.Default()
	s.Merge(gamepad.Message{"dpad": "UP_LEFT"})
	assert.Equal(t, gamepad.DPadFlags{Up: true, Left: true}, gamepad.Resolve(s).DPad)

	s.Merge(gamepad.Message{"dpad": "DOWN"})
	assert.Equal(t, gamepad.DPadFlags{Down: true}, gamepad.Resolve(s).DPad)
}

func TestResolve_TriggerFallback(t *testing.T) {
	tests := []struct {
		name   string
		state  gamepad.State
		wantLT float64
		wantRT float64
	}{
		{"zl pressed with zero lt", gamepad.State{Buttons: gamepad.Buttons{ZL: true}}, 1, 0},
		{"zl pressed with explicit lt", gamepad.State{Buttons: gamepad.Buttons{ZL: true}, LT: 0.4}, 0.4, 0},
		{"zl released", gamepad.State{LT: 0}, 0, 0},
		{"zr pressed with zero rt", gamepad.State{Buttons: gamepad.Buttons{ZR: true}}, 0, 1},
		{"zr pressed with explicit rt", gamepad.State{Buttons: gamepad.Buttons{ZR: true}, RT: 0.75}, 0, 0.75},
		{"zr pressed with negative rt", gamepad.State{Buttons: gamepad.Buttons{ZR: true}, RT: -1}, 0, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gamepad.Resolve(tt.state)
			assert.Equal(t, tt.wantLT, r.LT)
			assert.Equal(t, tt.wantRT, r.RT)
		})
	}
}

func TestNeutral(t *testing.T) {
	n := gamepad.Neutral()
	assert.Equal(t, gamepad.Resolved{}, n)
	assert.True(t, gamepad.Default().IsDefault())
}

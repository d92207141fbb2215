package xbox360_test

import (
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phonepad/phonepad/device"
	"github.com/phonepad/phonepad/device/xbox360"
	"github.com/phonepad/phonepad/gamepad"
)

func TestFromResolved(t *testing.T) {
	tests := []struct {
		name string
		in   gamepad.Resolved
		want xbox360.InputState
	}{
		{
			name: "neutral",
			in:   gamepad.Neutral(),
			want: xbox360.InputState{},
		},
		{
			name: "face buttons and dpad",
			in: gamepad.Resolved{
				Buttons: gamepad.Buttons{A: true, Y: true, Plus: true, Home: true},
				DPad:    gamepad.DPadFlags{Up: true, Left: true},
			},
			want: xbox360.InputState{
				Buttons: xbox360.ButtonA | xbox360.ButtonY | xbox360.ButtonStart | xbox360.ButtonGuide |
					xbox360.ButtonDPadUp | xbox360.ButtonDPadLeft,
			},
		},
		{
			name: "full deflection",
			in:   gamepad.Resolved{LX: 1, LY: -1, RX: 0.5, RY: 0, LT: 1, RT: 0.5},
			want: xbox360.InputState{LX: 32767, LY: -32767, RX: 16384, LT: 255, RT: 128},
		},
		{
			name: "zl without analog falls back through resolve",
			in:   gamepad.Resolve(gamepad.State{Buttons: gamepad.Buttons{ZL: true}}),
			want: xbox360.InputState{LT: 255},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, xbox360.FromResolved(tt.in))
		})
	}
}

func TestInputState_BinaryLayout(t *testing.T) {
	in := xbox360.InputState{Buttons: 0x1234, LT: 1, RT: 2, LX: -1, LY: 2, RX: 3, RY: 4}
	b, err := in.MarshalBinary()
	require.NoError(t, err)
	assert.Equal(t, []byte{
		0x34, 0x12, 0x00, 0x00,
		0x01, 0x02,
		0xff, 0xff, 0x02, 0x00, 0x03, 0x00, 0x04, 0x00,
		0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
	}, b)

	var out xbox360.InputState
	require.NoError(t, out.UnmarshalBinary(b))
	assert.Equal(t, in, out)
	assert.ErrorIs(t, out.UnmarshalBinary(b[:19]), io.ErrUnexpectedEOF)
}

func TestProfile(t *testing.T) {
	p := xbox360.Profile()
	assert.Equal(t, "xbox360", p.Type)
	assert.NotNil(t, device.Lookup("xbox360"))

	b, err := p.Encode(gamepad.Resolved{Buttons: gamepad.Buttons{B: true}}).MarshalBinary()
	require.NoError(t, err)
	var in xbox360.InputState
	require.NoError(t, in.UnmarshalBinary(b))
	assert.Equal(t, xbox360.ButtonB, in.Buttons)

	attrs, err := p.Feedback([]byte{0x40, 0xff})
	require.NoError(t, err)
	assert.Equal(t, []any{"left", uint8(0x40), "right", uint8(0xff)}, attrs)
}

package xbox360

import (
	"encoding/binary"
	"io"
	"math"

	"github.com/phonepad/phonepad/gamepad"
)

const (
	inputStateSize  = 20
	rumbleStateSize = 2
)

// InputState is the XInput-style controller state streamed to VIIPER:
// buttons u32, lt u8, rt u8, lx ly rx ry i16, 6 reserved bytes.
type InputState struct {
	// Button bitfield (lower 16 bits used), higher bits reserved
	Buttons uint32
	// Triggers: 0-255
	LT, RT uint8
	// Sticks: signed 16-bit little endian values, up is positive
	LX, LY   int16
	RX, RY   int16
	Reserved [6]byte
}

// FromResolved converts a resolved gamepad state. ZL/ZR are carried by the
// analog triggers. Capture has no XInput counterpart.
func FromResolved(r gamepad.Resolved) InputState {
	var b uint32
	set := func(on bool, mask uint32) {
		if on {
			b |= mask
		}
	}
	set(r.A, ButtonA)
	set(r.B, ButtonB)
	set(r.X, ButtonX)
	set(r.Y, ButtonY)
	set(r.LB, ButtonLShoulder)
	set(r.RB, ButtonRShoulder)
	set(r.Plus, ButtonStart)
	set(r.Minus, ButtonBack)
	set(r.LS, ButtonLThumb)
	set(r.RS, ButtonRThumb)
	set(r.Home, ButtonGuide)
	set(r.DPad.Up, ButtonDPadUp)
	set(r.DPad.Down, ButtonDPadDown)
	set(r.DPad.Left, ButtonDPadLeft)
	set(r.DPad.Right, ButtonDPadRight)

	return InputState{
		Buttons: b,
		LT:      triggerByte(r.LT),
		RT:      triggerByte(r.RT),
		LX:      axisWord(r.LX),
		LY:      axisWord(r.LY),
		RX:      axisWord(r.RX),
		RY:      axisWord(r.RY),
	}
}

func triggerByte(v float64) uint8 {
	return uint8(math.Round(gamepad.Clamp(v, 0, 1) * 255))
}

func axisWord(v float64) int16 {
	return int16(math.Round(gamepad.Clamp(v, -1, 1) * 32767))
}

// MarshalBinary encodes InputState to 20 bytes.
func (x *InputState) MarshalBinary() ([]byte, error) {
	b := make([]byte, inputStateSize)
	binary.LittleEndian.PutUint32(b[0:4], x.Buttons)
	b[4] = x.LT
	b[5] = x.RT
	binary.LittleEndian.PutUint16(b[6:8], uint16(x.LX))
	binary.LittleEndian.PutUint16(b[8:10], uint16(x.LY))
	binary.LittleEndian.PutUint16(b[10:12], uint16(x.RX))
	binary.LittleEndian.PutUint16(b[12:14], uint16(x.RY))
	copy(b[14:20], x.Reserved[:])
	return b, nil
}

// UnmarshalBinary decodes 20 bytes into InputState.
func (x *InputState) UnmarshalBinary(data []byte) error {
	if len(data) < inputStateSize {
		return io.ErrUnexpectedEOF
	}
	x.Buttons = binary.LittleEndian.Uint32(data[0:4])
	x.LT = data[4]
	x.RT = data[5]
	x.LX = int16(binary.LittleEndian.Uint16(data[6:8]))
	x.LY = int16(binary.LittleEndian.Uint16(data[8:10]))
	x.RX = int16(binary.LittleEndian.Uint16(data[10:12]))
	x.RY = int16(binary.LittleEndian.Uint16(data[12:14]))
	copy(x.Reserved[:], data[14:20])
	return nil
}

// XRumbleState is the rumble command VIIPER forwards from the game.
type XRumbleState struct {
	LeftMotor  uint8
	RightMotor uint8
}

// UnmarshalBinary decodes 2 bytes into XRumbleState.
func (r *XRumbleState) UnmarshalBinary(data []byte) error {
	if len(data) < rumbleStateSize {
		return io.ErrUnexpectedEOF
	}
	r.LeftMotor = data[0]
	r.RightMotor = data[1]
	return nil
}

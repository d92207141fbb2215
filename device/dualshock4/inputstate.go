package dualshock4

import (
	"encoding/binary"
	"io"
	"math"

	"github.com/phonepad/phonepad/gamepad"
)

// InputState is the DualShock 4 report streamed to VIIPER (31 bytes, little
// endian). Sticks follow HID orientation: down and right are positive.
type InputState struct {
	LX, LY  int8
	RX, RY  int8
	Buttons uint16
	DPad    uint8
	L2, R2  uint8

	Touch1X, Touch1Y uint16
	Touch1Active     bool
	Touch2X, Touch2Y uint16
	Touch2Active     bool

	GyroX, GyroY, GyroZ    int16
	AccelX, AccelY, AccelZ int16
}

// FromResolved converts a resolved gamepad state. Nintendo style positions
// map onto PlayStation names: A is Cross, B Circle, X Square, Y Triangle.
// Capture clicks the touchpad.
func FromResolved(r gamepad.Resolved) InputState {
	var b uint16
	set := func(on bool, mask uint16) {
		if on {
			b |= mask
		}
	}
	set(r.A, ButtonCross)
	set(r.B, ButtonCircle)
	set(r.X, ButtonSquare)
	set(r.Y, ButtonTriangle)
	set(r.LB, ButtonL1)
	set(r.RB, ButtonR1)
	set(r.Plus, ButtonOptions)
	set(r.Minus, ButtonShare)
	set(r.LS, ButtonL3)
	set(r.RS, ButtonR3)
	set(r.Home, ButtonPS)
	set(r.Capture, ButtonTouchpadClick)
	set(r.LT > 0, ButtonL2)
	set(r.RT > 0, ButtonR2)

	var d uint8
	if r.DPad.Up {
		d |= DPadUp
	}
	if r.DPad.Down {
		d |= DPadDown
	}
	if r.DPad.Left {
		d |= DPadLeft
	}
	if r.DPad.Right {
		d |= DPadRight
	}

	return InputState{
		LX:      axisByte(r.LX),
		LY:      axisByte(-r.LY),
		RX:      axisByte(r.RX),
		RY:      axisByte(-r.RY),
		Buttons: b,
		DPad:    d,
		L2:      uint8(math.Round(gamepad.Clamp(r.LT, 0, 1) * 255)),
		R2:      uint8(math.Round(gamepad.Clamp(r.RT, 0, 1) * 255)),
		AccelX:  RestAccelX,
		AccelY:  RestAccelY,
		AccelZ:  RestAccelZ,
	}
}

func axisByte(v float64) int8 {
	return int8(math.Round(gamepad.Clamp(v, -1, 1) * 127))
}

func putBool(b []byte, v bool) {
	if v {
		b[0] = 1
	} else {
		b[0] = 0
	}
}

func (s *InputState) MarshalBinary() ([]byte, error) {
	b := make([]byte, inputStateSize)
	b[0] = uint8(s.LX)
	b[1] = uint8(s.LY)
	b[2] = uint8(s.RX)
	b[3] = uint8(s.RY)
	binary.LittleEndian.PutUint16(b[4:6], s.Buttons)
	b[6] = s.DPad
	b[7] = s.L2
	b[8] = s.R2
	binary.LittleEndian.PutUint16(b[9:11], s.Touch1X)
	binary.LittleEndian.PutUint16(b[11:13], s.Touch1Y)
	putBool(b[13:], s.Touch1Active)
	binary.LittleEndian.PutUint16(b[14:16], s.Touch2X)
	binary.LittleEndian.PutUint16(b[16:18], s.Touch2Y)
	putBool(b[18:], s.Touch2Active)
	for i, v := range []int16{s.GyroX, s.GyroY, s.GyroZ, s.AccelX, s.AccelY, s.AccelZ} {
		binary.LittleEndian.PutUint16(b[19+2*i:], uint16(v))
	}
	return b, nil
}

func (s *InputState) UnmarshalBinary(data []byte) error {
	if len(data) < inputStateSize {
		return io.ErrUnexpectedEOF
	}
	s.LX = int8(data[0])
	s.LY = int8(data[1])
	s.RX = int8(data[2])
	s.RY = int8(data[3])
	s.Buttons = binary.LittleEndian.Uint16(data[4:6])
	s.DPad = data[6]
	s.L2 = data[7]
	s.R2 = data[8]
	s.Touch1X = binary.LittleEndian.Uint16(data[9:11])
	s.Touch1Y = binary.LittleEndian.Uint16(data[11:13])
	s.Touch1Active = data[13] != 0
	s.Touch2X = binary.LittleEndian.Uint16(data[14:16])
	s.Touch2Y = binary.LittleEndian.Uint16(data[16:18])
	s.Touch2Active = data[18] != 0
	motion := []*int16{&s.GyroX, &s.GyroY, &s.GyroZ, &s.AccelX, &s.AccelY, &s.AccelZ}
	for i, p := range motion {
		*p = int16(binary.LittleEndian.Uint16(data[19+2*i:]))
	}
	return nil
}

// OutputState is the feedback VIIPER forwards from the game: rumble motors
// and the light bar.
type OutputState struct {
	RumbleSmall uint8
	RumbleLarge uint8
	LedRed      uint8
	LedGreen    uint8
	LedBlue     uint8
	FlashOn     uint8 // units of 2.5ms
	FlashOff    uint8 // units of 2.5ms
}

func (f *OutputState) UnmarshalBinary(data []byte) error {
	if len(data) < outputStateSize {
		return io.ErrUnexpectedEOF
	}
	*f = OutputState{
		RumbleSmall: data[0],
		RumbleLarge: data[1],
		LedRed:      data[2],
		LedGreen:    data[3],
		LedBlue:     data[4],
		FlashOn:     data[5],
		FlashOff:    data[6],
	}
	return nil
}

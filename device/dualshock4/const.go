package dualshock4

// Button bitmasks of the VIIPER DualShock 4 input report.
const (
	ButtonPS            uint16 = 0x0001
	ButtonTouchpadClick uint16 = 0x0002

	ButtonSquare   uint16 = 0x0010
	ButtonCross    uint16 = 0x0020
	ButtonCircle   uint16 = 0x0040
	ButtonTriangle uint16 = 0x0080

	ButtonL1      uint16 = 0x0100
	ButtonR1      uint16 = 0x0200
	ButtonL2      uint16 = 0x0400
	ButtonR2      uint16 = 0x0800
	ButtonShare   uint16 = 0x1000
	ButtonOptions uint16 = 0x2000
	ButtonL3      uint16 = 0x4000
	ButtonR3      uint16 = 0x8000
)

// D-pad direction bits.
const (
	DPadUp    uint8 = 0x01
	DPadDown  uint8 = 0x02
	DPadLeft  uint8 = 0x04
	DPadRight uint8 = 0x08
)

const (
	inputStateSize  = 31
	outputStateSize = 7
)

// Accelerometer counts per m/s². VIIPER carries motion as fixed point int16.
const AccelCountsPerMS2 = 512.0

// Resting accelerometer vector of a controller lying flat (-9.81 m/s² on Z).
// Without it games read the pad as being in free fall.
const (
	RestAccelX int16 = 0
	RestAccelY int16 = 0
	RestAccelZ int16 = -5023
)

package xbox360

// Button bitmasks of the XInput wButtons field.
const (
	ButtonDPadUp    uint32 = 0x0001
	ButtonDPadDown  uint32 = 0x0002
	ButtonDPadLeft  uint32 = 0x0004
	ButtonDPadRight uint32 = 0x0008
	ButtonStart     uint32 = 0x0010 // plus
	ButtonBack      uint32 = 0x0020 // minus
	ButtonLThumb    uint32 = 0x0040
	ButtonRThumb    uint32 = 0x0080
	ButtonLShoulder uint32 = 0x0100
	ButtonRShoulder uint32 = 0x0200
	ButtonGuide     uint32 = 0x0400 // home
	ButtonA         uint32 = 0x1000
	ButtonB         uint32 = 0x2000
	ButtonX         uint32 = 0x4000
	ButtonY         uint32 = 0x8000
)

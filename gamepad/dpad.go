package gamepad

import "strings"

// DPad is the hat position as sent on the wire.
type DPad string

const (
	DPadCenter    DPad = "CENTER"
	DPadUp        DPad = "UP"
	DPadDown      DPad = "DOWN"
	DPadLeft      DPad = "LEFT"
	DPadRight     DPad = "RIGHT"
	DPadUpLeft    DPad = "UP_LEFT"
	DPadUpRight   DPad = "UP_RIGHT"
	DPadDownLeft  DPad = "DOWN_LEFT"
	DPadDownRight DPad = "DOWN_RIGHT"
)

// DPadFlags are the four independent direction switches of a d-pad.
type DPadFlags struct {
	Up, Down, Left, Right bool
}

var dpadFlags = map[DPad]DPadFlags{
	DPadCenter:    {},
	DPadUp:        {Up: true},
	DPadDown:      {Down: true},
	DPadLeft:      {Left: true},
	DPadRight:     {Right: true},
	DPadUpLeft:    {Up: true, Left: true},
	DPadUpRight:   {Up: true, Right: true},
	DPadDownLeft:  {Down: true, Left: true},
	DPadDownRight: {Down: true, Right: true},
}

// ParseDPad decodes a wire value case-insensitively.
// Unknown values decode to DPadCenter.
func ParseDPad(s string) DPad {
	d := DPad(strings.ToUpper(strings.TrimSpace(s)))
	if _, ok := dpadFlags[d]; !ok {
		return DPadCenter
	}
	return d
}

// Flags returns the direction switches for d. Unknown values yield no
// pressed direction.
func (d DPad) Flags() DPadFlags {
	return dpadFlags[ParseDPad(string(d))]
}

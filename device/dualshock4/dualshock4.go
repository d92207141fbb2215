// Package dualshock4 registers a device backend that hosts Sony DualShock 4
// controllers on a VIIPER server.
package dualshock4

import (
	"encoding"

	"github.com/phonepad/phonepad/device/viiper"
	"github.com/phonepad/phonepad/gamepad"
)

func init() {
	viiper.Register(Profile())
}

// Profile describes the dualshock4 VIIPER device type.
func Profile() viiper.Profile {
	return viiper.Profile{
		Type:        "dualshock4",
		Description: "DualShock 4 controller on a VIIPER server",
		Encode: func(r gamepad.Resolved) encoding.BinaryMarshaler {
			s := FromResolved(r)
			return &s
		},
		FeedbackSize: outputStateSize,
		Feedback: func(b []byte) ([]any, error) {
			var out OutputState
			if err := out.UnmarshalBinary(b); err != nil {
				return nil, err
			}
			return []any{
				"rumbleSmall", out.RumbleSmall, "rumbleLarge", out.RumbleLarge,
				"led", [3]uint8{out.LedRed, out.LedGreen, out.LedBlue},
			}, nil
		},
	}
}

// Package xbox360 registers a device backend that hosts Xbox 360 controllers
// on a VIIPER server.
package xbox360

import (
	"encoding"

	"github.com/phonepad/phonepad/device/viiper"
	"github.com/phonepad/phonepad/gamepad"
)

func init() {
	viiper.Register(Profile())
}

// Profile describes the xbox360 VIIPER device type.
func Profile() viiper.Profile {
	return viiper.Profile{
		Type:        "xbox360",
		Description: "Xbox 360 controller on a VIIPER server",
		Encode: func(r gamepad.Resolved) encoding.BinaryMarshaler {
			s := FromResolved(r)
			return &s
		},
		FeedbackSize: rumbleStateSize,
		Feedback: func(b []byte) ([]any, error) {
			var r XRumbleState
			if err := r.UnmarshalBinary(b); err != nil {
				return nil, err
			}
			return []any{"left", r.LeftMotor, "right", r.RightMotor}, nil
		},
	}
}

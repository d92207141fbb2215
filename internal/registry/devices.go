// Package registry links every device backend into the binary.
package registry

import (
	_ "github.com/phonepad/phonepad/device/dualshock4" // Register the VIIPER dualshock4 backend
	_ "github.com/phonepad/phonepad/device/logpad"     // Register the log backend
	_ "github.com/phonepad/phonepad/device/uinput"     // Register the uinput backend
	_ "github.com/phonepad/phonepad/device/xbox360"    // Register the VIIPER xbox360 backend
)

// Package device defines the virtual controller contract that sessions drive
// and the registry of backends that implement it.
package device

import (
	"context"
	"log/slog"

	"github.com/phonepad/phonepad/gamepad"
)

// Gamepad is one virtual controller visible to the operating system.
type Gamepad interface {
	// Apply commits a full controller state.
	Apply(state gamepad.Resolved) error
	// Reset returns the controller to neutral. It is idempotent.
	Reset() error
	// Close releases the controller. The Gamepad must not be used afterwards.
	Close() error
}

// Factory allocates Gamepads. One Gamepad is created per client session.
type Factory interface {
	Create(ctx context.Context, o *CreateOptions) (Gamepad, error)
}

// FactoryFunc adapts a function to the Factory interface.
type FactoryFunc func(ctx context.Context, o *CreateOptions) (Gamepad, error)

func (f FactoryFunc) Create(ctx context.Context, o *CreateOptions) (Gamepad, error) {
	return f(ctx, o)
}

// CreateOptions carries per-device settings.
type CreateOptions struct {
	// Name overrides the product name reported to the OS, if the backend supports it.
	Name string
	// Logger is scoped to the owning session.
	Logger *slog.Logger
}

// Config selects and configures the device backend.
type Config struct {
	Backend    string       `help:"Virtual device backend (see 'phonepad backends')" default:"uinput" env:"PHONEPAD_DEVICE_BACKEND"`
	Name       string       `help:"Product name of created controllers" default:"PhonePad" env:"PHONEPAD_DEVICE_NAME"`
	VendorID   uint16       `help:"USB vendor id reported by created controllers" default:"1118" env:"PHONEPAD_DEVICE_VENDOR_ID"`
	ProductID  uint16       `help:"USB product id reported by created controllers" default:"654" env:"PHONEPAD_DEVICE_PRODUCT_ID"`
	UinputPath string       `help:"Path of the uinput character device" default:"/dev/uinput" env:"PHONEPAD_DEVICE_UINPUT_PATH"`
	Viiper     ViiperConfig `embed:"" prefix:"viiper."`
}

// ViiperConfig points the VIIPER backends (xbox360, dualshock4) at an API server.
type ViiperConfig struct {
	Addr     string `help:"VIIPER API server address" default:"localhost:3242" env:"PHONEPAD_VIIPER_ADDR"`
	Password string `help:"VIIPER API server password (empty disables authentication)" env:"PHONEPAD_VIIPER_PASSWORD"`
	BusID    uint32 `help:"VIIPER bus to attach controllers to (0 picks or creates one)" default:"0" env:"PHONEPAD_VIIPER_BUS_ID"`
}

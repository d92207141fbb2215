// Package viiper drives controllers hosted by a VIIPER server (USB/IP virtual
// input). Every Gamepad is one device on a VIIPER bus, fed through its device
// stream. Concrete controller types plug in through a Profile.
package viiper

import (
	"bufio"
	"context"
	"encoding"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/phonepad/phonepad/apiclient"
	"github.com/phonepad/phonepad/device"
	"github.com/phonepad/phonepad/gamepad"
)

const (
	writeTimeout  = time.Second
	removeTimeout = 5 * time.Second
	maxBusProbe   = 100
)

// ErrClosed is returned by Apply after Close.
var ErrClosed = errors.New("viiper gamepad closed")

// Profile describes one VIIPER device type.
type Profile struct {
	// Type is the VIIPER device type, also used as the backend name.
	Type        string
	Description string
	// Encode converts a resolved state into the device's input report.
	Encode func(gamepad.Resolved) encoding.BinaryMarshaler
	// FeedbackSize is the length of one feedback frame sent by the server.
	// Zero disables reading feedback.
	FeedbackSize int
	// Feedback decodes one feedback frame into slog attributes.
	Feedback func([]byte) ([]any, error)
}

// Register makes p available as a device backend.
func Register(p Profile) {
	device.Register(p.Type, backend{p: p})
}

type backend struct{ p Profile }

func (b backend) Description() string { return b.p.Description }

func (b backend) NewFactory(cfg device.Config, logger *slog.Logger) (device.Factory, error) {
	if cfg.Viiper.Addr == "" {
		return nil, fmt.Errorf("%s: VIIPER address must be set", b.p.Type)
	}
	client := apiclient.NewWithConfig(cfg.Viiper.Addr, &apiclient.Config{
		DialTimeout:  3 * time.Second,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
		Password:     cfg.Viiper.Password,
	})
	return NewFactory(client, cfg, b.p, logger), nil
}

// Factory allocates controllers on one VIIPER bus. The bus is resolved on
// first use and shared by all controllers of the process.
type Factory struct {
	client  *apiclient.Client
	cfg     device.Config
	profile Profile
	logger  *slog.Logger

	busMu sync.Mutex
	busID uint32
}

// NewFactory returns a Factory creating p devices through client.
func NewFactory(client *apiclient.Client, cfg device.Config, p Profile, logger *slog.Logger) *Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &Factory{client: client, cfg: cfg, profile: p, logger: logger, busID: cfg.Viiper.BusID}
}

// bus returns the configured bus (creating it if missing), else the lowest
// existing bus, else the first id the server lets us create.
func (f *Factory) bus(ctx context.Context) (uint32, error) {
	f.busMu.Lock()
	defer f.busMu.Unlock()

	buses, err := f.client.BusListCtx(ctx)
	if err != nil {
		return 0, fmt.Errorf("list buses: %w", err)
	}
	if f.busID != 0 {
		for _, b := range buses.Buses {
			if b == f.busID {
				return f.busID, nil
			}
		}
		if _, err := f.client.BusCreateCtx(ctx, f.busID); err != nil {
			return 0, fmt.Errorf("create bus %d: %w", f.busID, err)
		}
		f.logger.Info("Created VIIPER bus", "busID", f.busID)
		return f.busID, nil
	}
	if len(buses.Buses) > 0 {
		id := buses.Buses[0]
		for _, b := range buses.Buses[1:] {
			if b < id {
				id = b
			}
		}
		f.busID = id
		return id, nil
	}

	var createErr error
	for try := uint32(1); try <= maxBusProbe; try++ {
		r, err := f.client.BusCreateCtx(ctx, try)
		if err == nil {
			f.busID = r.BusID
			f.logger.Info("Created VIIPER bus", "busID", r.BusID)
			return r.BusID, nil
		}
		createErr = err
	}
	return 0, fmt.Errorf("create bus: %w", createErr)
}

func (f *Factory) Create(ctx context.Context, o *device.CreateOptions) (device.Gamepad, error) {
	logger := f.logger
	if o != nil && o.Logger != nil {
		logger = o.Logger
	}
	busID, err := f.bus(ctx)
	if err != nil {
		return nil, err
	}
	stream, dev, err := f.client.AddDeviceAndConnect(ctx, busID, f.profile.Type, f.cfg.VendorID, f.cfg.ProductID)
	if err != nil {
		if dev != nil {
			_, _ = f.client.DeviceRemoveCtx(context.WithoutCancel(ctx), busID, dev.DevId)
		}
		return nil, fmt.Errorf("add %s device: %w", f.profile.Type, err)
	}
	logger.Info("VIIPER controller attached", "type", f.profile.Type, "busID", busID, "devID", dev.DevId)

	g := &Gamepad{
		profile: f.profile,
		stream:  stream,
		client:  f.client,
		busID:   busID,
		devID:   dev.DevId,
		logger:  logger,
	}
	if f.profile.FeedbackSize > 0 && f.profile.Feedback != nil {
		g.watchFeedback()
	}
	return g, nil
}

// Gamepad is one VIIPER hosted controller.
type Gamepad struct {
	profile Profile
	mu      sync.Mutex
	stream  *apiclient.DeviceStream
	client  *apiclient.Client
	busID   uint32
	devID   string
	closed  bool
	logger  *slog.Logger
}

type rawFrame []byte

func (f *rawFrame) UnmarshalBinary(data []byte) error {
	*f = append((*f)[:0], data...)
	return nil
}

// watchFeedback logs rumble/LED frames until the stream closes.
func (g *Gamepad) watchFeedback() {
	size := g.profile.FeedbackSize
	frames, errCh := g.stream.StartReading(context.Background(), 4, func(r *bufio.Reader) (encoding.BinaryUnmarshaler, error) {
		buf := make([]byte, size)
		if _, err := io.ReadFull(r, buf); err != nil {
			return nil, err
		}
		f := new(rawFrame)
		if err := f.UnmarshalBinary(buf); err != nil {
			return nil, err
		}
		return f, nil
	})
	go func() {
		for msg := range frames {
			f, ok := msg.(*rawFrame)
			if !ok {
				continue
			}
			attrs, err := g.profile.Feedback(*f)
			if err != nil {
				g.logger.Debug("bad feedback frame", "error", err)
				continue
			}
			g.logger.Debug("controller feedback", attrs...)
		}
		if err := <-errCh; err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, io.EOF) {
			g.logger.Debug("VIIPER stream read stopped", "error", err)
		}
	}()
}

func (g *Gamepad) Apply(state gamepad.Resolved) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.closed {
		return ErrClosed
	}
	_ = g.stream.SetWriteDeadline(time.Now().Add(writeTimeout))
	if err := g.stream.WriteBinary(g.profile.Encode(state)); err != nil {
		return fmt.Errorf("write input state: %w", err)
	}
	return nil
}

func (g *Gamepad) Reset() error {
	return g.Apply(gamepad.Neutral())
}

// Close closes the stream and removes the device from its bus.
func (g *Gamepad) Close() error {
	g.mu.Lock()
	if g.closed {
		g.mu.Unlock()
		return nil
	}
	g.closed = true
	g.mu.Unlock()

	var errs []error
	if err := g.stream.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close stream: %w", err))
	}
	ctx, cancel := context.WithTimeout(context.Background(), removeTimeout)
	defer cancel()
	if _, err := g.client.DeviceRemoveCtx(ctx, g.busID, g.devID); err != nil {
		errs = append(errs, fmt.Errorf("remove device %d-%s: %w", g.busID, g.devID, err))
	} else {
		g.logger.Info("VIIPER controller removed", "busID", g.busID, "devID", g.devID)
	}
	return errors.Join(errs...)
}

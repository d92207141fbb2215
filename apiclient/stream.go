package apiclient

import (
	"bufio"
	"context"
	"encoding"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/phonepad/phonepad/apitypes"
)

// DeviceStream represents a bidirectional connection to a device stream.
type DeviceStream struct {
	conn  net.Conn
	BusID uint32
	DevID string

	mu     sync.Mutex
	closed bool

	readCancel context.CancelFunc
}

// OpenStream connects to an existing device's stream channel.
// The device must already exist on the bus (use DeviceAddCtx first).
func (c *Client) OpenStream(ctx context.Context, busID uint32, devID string) (*DeviceStream, error) {
	if c.transport.mock != nil {
		return nil, errors.New("stream connections not supported with mock transport")
	}
	conn, err := c.transport.dial(ctx)
	if err != nil {
		return nil, err
	}
	streamPath := fmt.Sprintf("bus/%d/%s\x00", busID, devID)
	if _, err := conn.Write([]byte(streamPath)); err != nil {
		conn.Close()
		return nil, fmt.Errorf("write stream path: %w", err)
	}
	return &DeviceStream{conn: conn, BusID: busID, DevID: devID}, nil
}

// AddDeviceAndConnect creates a device on the specified bus and immediately
// connects to its stream.
func (c *Client) AddDeviceAndConnect(ctx context.Context, busID uint32, deviceType string, vendor, product uint16) (*DeviceStream, *apitypes.Device, error) {
	resp, err := c.DeviceAddCtx(ctx, busID, deviceType, vendor, product)
	if err != nil {
		return nil, nil, err
	}
	stream, err := c.OpenStream(ctx, busID, resp.DevId)
	if err != nil {
		return nil, resp, err
	}
	return stream, resp, nil
}

// WriteBinary marshals and sends a BinaryMarshaler to the device stream.
func (s *DeviceStream) WriteBinary(v encoding.BinaryMarshaler) error {
	data, err := v.MarshalBinary()
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return errors.New("stream closed")
	}
	_, err = s.conn.Write(data)
	return err
}

// StartReading reads device feedback in a background goroutine. decode must
// consume exactly one message from r. Both channels are closed when reading
// stops.
func (s *DeviceStream) StartReading(ctx context.Context, chSize int, decode func(r *bufio.Reader) (encoding.BinaryUnmarshaler, error)) (<-chan encoding.BinaryUnmarshaler, <-chan error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.readCancel != nil {
		panic("StartReading called twice on the same stream")
	}

	msgCh := make(chan encoding.BinaryUnmarshaler, chSize)
	errCh := make(chan error, 1)

	readCtx, cancel := context.WithCancel(ctx)
	s.readCancel = cancel

	go func() {
		defer close(msgCh)
		defer close(errCh)
		defer cancel()

		r := bufio.NewReader(s.conn)
		for {
			msg, err := decode(r)
			if err != nil {
				if readCtx.Err() != nil {
					err = readCtx.Err()
				}
				errCh <- err
				return
			}
			select {
			case msgCh <- msg:
			case <-readCtx.Done():
				errCh <- readCtx.Err()
				return
			}
		}
	}()

	return msgCh, errCh
}

// SetWriteDeadline sets the write deadline for the underlying connection.
func (s *DeviceStream) SetWriteDeadline(t time.Time) error {
	return s.conn.SetWriteDeadline(t)
}

// Close closes the stream connection and stops any background reading.
func (s *DeviceStream) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	cancel := s.readCancel
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	return s.conn.Close()
}

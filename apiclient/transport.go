// Package apiclient is a client for the VIIPER management API, used by the
// device backends to allocate virtual controllers on a VIIPER server.
package apiclient

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/url"
	"strings"
	"time"

	"github.com/phonepad/phonepad/internal/auth"
)

// Config controls low-level transport behavior such as timeouts.
type Config struct {
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	Password     string
}

func defaultConfig() Config {
	return Config{
		DialTimeout:  3 * time.Second,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
	}
}

// Transport implements the VIIPER request framing.
// Request framing: `<path>[ SP <payload>] \x00`. Response framing: the server
// writes a single JSON (or empty success) line terminated by `\n` and then
// closes the connection, so the response is read until EOF.
type Transport struct {
	addr string
	mock func(path string, payload any, pathParams map[string]string) (string, error)
	cfg  Config
}

// NewTransport creates a new low-level transport.
func NewTransport(addr string) *Transport { return NewTransportWithConfig(addr, nil) }

// NewTransportWithConfig creates a new low-level transport with optional configuration.
func NewTransportWithConfig(addr string, cfg *Config) *Transport {
	c := defaultConfig()
	if cfg != nil {
		c = *cfg
	}
	return &Transport{addr: addr, cfg: c}
}

// NewMockTransport creates a transport that returns canned responses without real networking.
// The responder function receives the path, payload and path params and returns the raw line.
func NewMockTransport(responder func(path string, payload any, pathParams map[string]string) (string, error)) *Transport {
	return &Transport{addr: "mock", mock: responder, cfg: defaultConfig()}
}

// dial opens a connection and performs the authentication handshake when a
// password is configured.
func (t *Transport) dial(ctx context.Context) (net.Conn, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("dial: %w", err)
	}
	d := &net.Dialer{Timeout: t.cfg.DialTimeout}
	conn, err := d.DialContext(ctx, "tcp", t.addr)
	if err != nil {
		return nil, fmt.Errorf("dial: %w", err)
	}
	if tcpConn, ok := conn.(*net.TCPConn); ok {
		if err := tcpConn.SetNoDelay(true); err != nil {
			slog.Warn("failed to set TCP_NODELAY", "error", err)
		}
	}
	if t.cfg.Password == "" {
		return conn, nil
	}
	if t.cfg.WriteTimeout > 0 {
		_ = conn.SetDeadline(time.Now().Add(t.cfg.WriteTimeout))
	}
	secured, err := auth.Secure(conn, t.cfg.Password)
	if err != nil {
		conn.Close()
		return nil, err
	}
	_ = conn.SetDeadline(time.Time{})
	return secured, nil
}

// DoCtx sends a request and returns the exact response (without trailing newline).
// Payload handling rules:
//
//	[]byte -> sent as-is
//	string -> UTF-8 bytes
//	struct/other -> JSON marshaled bytes
//	nil -> no payload appended
func (t *Transport) DoCtx(ctx context.Context, path string, payload any, pathParams map[string]string) (string, error) {
	if t.mock != nil {
		return t.mock(path, payload, pathParams)
	}
	fullPath := fillPath(path, pathParams)
	var lineBytes []byte
	if pb, ok := toPayloadBytes(payload); ok && len(pb) > 0 {
		lineBytes = append([]byte(fullPath+" "), pb...)
	} else {
		lineBytes = []byte(fullPath)
	}

	conn, err := t.dial(ctx)
	if err != nil {
		return "", err
	}
	defer conn.Close()

	if t.cfg.WriteTimeout > 0 {
		_ = conn.SetWriteDeadline(time.Now().Add(t.cfg.WriteTimeout))
	}
	if _, err := conn.Write(append(lineBytes, '\x00')); err != nil {
		return "", fmt.Errorf("write: %w", err)
	}
	if t.cfg.ReadTimeout > 0 {
		_ = conn.SetReadDeadline(time.Now().Add(t.cfg.ReadTimeout))
	}
	respBytes, err := io.ReadAll(conn)
	if err != nil && len(respBytes) == 0 {
		return "", fmt.Errorf("read: %w", err)
	}
	return strings.TrimSuffix(string(respBytes), "\n"), nil
}

func fillPath(pattern string, params map[string]string) string {
	out := pattern
	for k, v := range params {
		out = strings.ReplaceAll(out, "{"+k+"}", url.PathEscape(v))
	}
	return strings.ToLower(out)
}

func toPayloadBytes(v any) ([]byte, bool) {
	if v == nil {
		return nil, true
	}
	switch t := v.(type) {
	case []byte:
		return t, true
	case string:
		return []byte(t), true
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return nil, false
		}
		return b, true
	}
}

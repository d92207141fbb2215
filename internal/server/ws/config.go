package ws

import "time"

// Config represents the WebSocket listener configuration.
type Config struct {
	Addr           string        `help:"WebSocket listen address" default:":8765" env:"PHONEPAD_WS_ADDR"`
	Path           string        `help:"HTTP path clients connect to" default:"/" env:"PHONEPAD_WS_PATH"`
	MaxMessageSize int64         `help:"Largest accepted client frame in bytes" default:"4096" env:"PHONEPAD_WS_MAX_MESSAGE_SIZE"`
	WriteTimeout   time.Duration `help:"Deadline for control frames sent to clients" default:"1s" env:"PHONEPAD_WS_WRITE_TIMEOUT"`
	PingInterval   time.Duration `help:"Keepalive ping interval (0 disables keepalive)" default:"20s" env:"PHONEPAD_WS_PING_INTERVAL"`
	PongTimeout    time.Duration `help:"How long to wait for a pong before dropping the client" default:"20s" env:"PHONEPAD_WS_PONG_TIMEOUT"`
}

package log

import (
	"fmt"
	"io"
	"strconv"
	"sync"
	"time"
)

// RawLogger traces client frames verbatim, one line per frame.
type RawLogger interface {
	Log(remote string, in bool, data []byte)
}

// rawLogger implements RawLogger with thread-safe writes.
type rawLogger struct {
	w  io.Writer
	mu sync.Mutex
}

// NewRaw creates a new RawLogger. If writer is nil, returns a no-op logger.
func NewRaw(w io.Writer) RawLogger {
	return &rawLogger{w: w}
}

// Log emits a single-line frame log with timestamp, peer and quoted payload.
// in=true means client->server, in=false means server->client.
func (r *rawLogger) Log(remote string, in bool, data []byte) {
	if r.w == nil || len(data) == 0 {
		return
	}

	dir := "S->C"
	if in {
		dir = "C->S"
	}

	line := fmt.Sprintf("%s %s %s frame: %d bytes, payload: %s\n",
		time.Now().Format("2006/01/02 15:04:05.000"),
		remote,
		dir,
		len(data),
		strconv.Quote(string(data)))

	r.mu.Lock()
	_, _ = io.WriteString(r.w, line)
	r.mu.Unlock()
}

package cmd

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phonepad/phonepad/device"
	_ "github.com/phonepad/phonepad/device/logpad"
	"github.com/phonepad/phonepad/internal/discovery"
	"github.com/phonepad/phonepad/internal/log"
	"github.com/phonepad/phonepad/internal/server/ws"
	"github.com/phonepad/phonepad/internal/session"
)

func testServer() *Server {
	return &Server{
		WS:              ws.Config{Addr: "127.0.0.1:0", Path: "/", MaxMessageSize: 4096, WriteTimeout: time.Second},
		Session:         session.Config{IdleTimeout: 500 * time.Millisecond, PollInterval: 100 * time.Millisecond},
		Device:          device.Config{Backend: "log", Name: "PhonePad"},
		Discovery:       discovery.Config{Enabled: false},
		ShutdownTimeout: 2 * time.Second,
	}
}

func TestStartServer_EndToEnd(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ctx, cancel := context.WithCancel(context.Background())
	ready := make(chan *ws.Server, 1)
	errCh := make(chan error, 1)
	go func() {
		errCh <- testServer().StartServer(ctx, logger, log.NewRaw(nil), ready)
	}()

	var srv *ws.Server
	select {
	case srv = <-ready:
	case err := <-errCh:
		t.Fatalf("server exited early: %v", err)
	case <-time.After(2 * time.Second):
		t.Fatal("server did not start")
	}

	c, resp, err := websocket.DefaultDialer.Dial("ws://"+srv.Addr().String()+"/", nil)
	require.NoError(t, err)
	_ = resp.Body.Close()
	require.NoError(t, c.WriteMessage(websocket.TextMessage, []byte(`{"a":true}`)))
	require.Eventually(t, func() bool { return len(srv.Sessions()) == 1 }, time.Second, 5*time.Millisecond)

	mresp, err := http.Get("http://" + srv.Addr().String() + "/metrics")
	require.NoError(t, err)
	body, _ := io.ReadAll(mresp.Body)
	_ = mresp.Body.Close()
	assert.True(t, strings.Contains(string(body), "go_goroutines"))
	assert.True(t, strings.Contains(string(body), "phonepad_sessions_total 1"))

	cancel()
	select {
	case err := <-errCh:
		require.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("server did not stop")
	}

	_ = c.SetReadDeadline(time.Now().Add(time.Second))
	_, _, err = c.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.CloseGoingAway), "got %v", err)
}

func TestStartServer_UnknownBackend(t *testing.T) {
	s := testServer()
	s.Device.Backend = "joystick"
	err := s.StartServer(context.Background(), slog.New(slog.NewTextHandler(io.Discard, nil)), log.NewRaw(nil), nil)
	require.ErrorIs(t, err, device.ErrUnknownBackend)
}

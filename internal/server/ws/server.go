// Package ws accepts client WebSocket connections and runs one controller
// session per connection.
package ws

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sort"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/phonepad/phonepad/apitypes"
	"github.com/phonepad/phonepad/device"
	"github.com/phonepad/phonepad/internal/log"
	"github.com/phonepad/phonepad/internal/metrics"
	"github.com/phonepad/phonepad/internal/session"
)

const serverName = "PhonePad"

// Options carries the collaborators of a Server.
type Options struct {
	Factory device.Factory
	Session session.Config
	Logger  *slog.Logger
	// Raw, when set, receives every inbound frame.
	Raw     log.RawLogger
	Metrics *metrics.Metrics
	// Gatherer backs /metrics. Nil uses the default Prometheus registry.
	Gatherer prometheus.Gatherer
	Backend  string
	Version  string
}

type client struct {
	conn *websocket.Conn
	sess *session.Session
}

// Server is the connection dispatcher.
type Server struct {
	cfg  Config
	opts Options

	logger   *slog.Logger
	upgrader websocket.Upgrader
	router   chi.Router
	http     *http.Server
	ln       net.Listener

	baseCtx context.Context
	cancel  context.CancelFunc
	nextID  atomic.Uint64
	wg      sync.WaitGroup

	mu      sync.Mutex
	clients map[string]*client
	closing bool
}

// New creates a Server. It does not listen until Start is called.
func New(cfg Config, o Options) *Server {
	if cfg.Path == "" {
		cfg.Path = "/"
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = time.Second
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	ctx, cancel := context.WithCancel(context.Background())
	s := &Server{
		cfg:     cfg,
		opts:    o,
		logger:  o.Logger,
		baseCtx: ctx,
		cancel:  cancel,
		clients: make(map[string]*client),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Clients are native apps on the LAN, not browsers.
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Get("/status", s.handleStatus)
	if o.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(o.Gatherer, promhttp.HandlerOpts{}))
	} else {
		r.Method(http.MethodGet, "/metrics", promhttp.Handler())
	}
	r.Get(cfg.Path, s.handleWS)
	s.router = r
	s.http = &http.Server{Handler: r, ReadHeaderTimeout: 10 * time.Second}
	return s
}

// Handler exposes the router, mostly for tests.
func (s *Server) Handler() http.Handler { return s.router }

// Start binds the listen address and serves in the background. A bind
// failure is returned.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.cfg.Addr, err)
	}
	s.ln = ln
	s.logger.Info("WebSocket server listening", "addr", ln.Addr().String(), "path", s.cfg.Path)
	go func() {
		if err := s.http.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("WebSocket server stopped", "error", err)
		}
	}()
	return nil
}

// Addr returns the bound address, or nil before Start.
func (s *Server) Addr() net.Addr {
	if s.ln == nil {
		return nil
	}
	return s.ln.Addr()
}

// Port returns the bound TCP port, or 0 before Start.
func (s *Server) Port() int {
	if a, ok := s.Addr().(*net.TCPAddr); ok {
		return a.Port
	}
	return 0
}

// Close sends a going-away close frame to every client, waits for their
// sessions to finish and stops the HTTP server.
func (s *Server) Close(ctx context.Context) error {
	s.mu.Lock()
	s.closing = true
	clients := make([]*client, 0, len(s.clients))
	for _, c := range s.clients {
		clients = append(clients, c)
	}
	s.mu.Unlock()

	for _, c := range clients {
		msg := websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutdown")
		_ = c.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(s.cfg.WriteTimeout))
		_ = c.conn.Close()
	}

	err := s.http.Shutdown(ctx)

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		err = errors.Join(err, ctx.Err())
	}
	s.cancel()
	s.logger.Info("WebSocket server stopped")
	return err
}

// Sessions returns the live sessions ordered by id.
func (s *Server) Sessions() []apitypes.SessionInfo {
	s.mu.Lock()
	out := make([]apitypes.SessionInfo, 0, len(s.clients))
	for _, c := range s.clients {
		out = append(out, c.sess.Info())
	}
	s.mu.Unlock()
	sort.Slice(out, func(i, j int) bool {
		a, _ := strconv.ParseUint(out[i].ID, 10, 64)
		b, _ := strconv.ParseUint(out[j].ID, 10, 64)
		return a < b
	})
	return out
}

func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	resp := apitypes.StatusResponse{
		Server:   serverName,
		Version:  s.opts.Version,
		Backend:  s.opts.Backend,
		Sessions: s.Sessions(),
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		s.logger.Debug("write status", "error", err)
	}
}

// begin reserves a handler slot unless the server is shutting down.
func (s *Server) begin() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closing {
		return false
	}
	s.wg.Add(1)
	return true
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	if !s.begin() {
		http.Error(w, "server shutting down", http.StatusServiceUnavailable)
		return
	}
	defer s.wg.Done()

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Debug("websocket upgrade failed", "remote", r.RemoteAddr, "error", err)
		return
	}
	defer conn.Close()

	id := strconv.FormatUint(s.nextID.Add(1), 10)
	remote := r.RemoteAddr
	logger := s.logger.With("remote", remote, "session", id)

	dev, err := s.opts.Factory.Create(s.baseCtx, &device.CreateOptions{Logger: logger})
	if err != nil {
		s.opts.Metrics.DeviceError(metrics.OpCreate)
		logger.Error("failed to create controller", "error", err)
		msg := websocket.FormatCloseMessage(websocket.CloseInternalServerErr, "controller unavailable")
		_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(s.cfg.WriteTimeout))
		return
	}

	sess := session.New(s.baseCtx, dev, s.opts.Session, &session.Options{
		ID:      id,
		Remote:  remote,
		Logger:  logger,
		Metrics: s.opts.Metrics,
	})
	if !s.register(id, &client{conn: conn, sess: sess}) {
		_ = sess.Close()
		return
	}
	defer func() {
		s.unregister(id)
		if err := sess.Close(); err != nil {
			logger.Warn("session cleanup incomplete", "error", err)
		}
	}()
	logger.Info("client connected")

	s.readLoop(conn, sess, remote, logger)
}

func (s *Server) register(id string, c *client) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closing {
		return false
	}
	s.clients[id] = c
	return true
}

func (s *Server) unregister(id string) {
	s.mu.Lock()
	delete(s.clients, id)
	s.mu.Unlock()
}

func (s *Server) readLoop(conn *websocket.Conn, sess *session.Session, remote string, logger *slog.Logger) {
	if s.cfg.MaxMessageSize > 0 {
		conn.SetReadLimit(s.cfg.MaxMessageSize)
	}
	stop := make(chan struct{})
	defer close(stop)
	if s.cfg.PingInterval > 0 {
		s.keepalive(conn, stop)
	}

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			switch {
			case websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseNoStatusReceived):
				logger.Info("client disconnected")
			case s.isClosing():
				logger.Info("client dropped on shutdown")
			default:
				logger.Warn("client connection lost", "error", err)
			}
			return
		}
		s.extendDeadline(conn)
		if s.opts.Raw != nil {
			s.opts.Raw.Log(remote, true, data)
		}
		if err := sess.HandleFrame(data); err != nil {
			logger.Debug("session rejected frame", "error", err)
			return
		}
	}
}

func (s *Server) extendDeadline(conn *websocket.Conn) {
	if s.cfg.PingInterval > 0 {
		_ = conn.SetReadDeadline(time.Now().Add(s.cfg.PingInterval + s.cfg.PongTimeout))
	}
}

// keepalive pings the client every PingInterval until stop is closed. Each
// pong or frame pushes the read deadline out.
func (s *Server) keepalive(conn *websocket.Conn, stop <-chan struct{}) {
	s.extendDeadline(conn)
	conn.SetPongHandler(func(string) error {
		s.extendDeadline(conn)
		return nil
	})
	go func() {
		t := time.NewTicker(s.cfg.PingInterval)
		defer t.Stop()
		for {
			select {
			case <-stop:
				return
			case <-t.C:
				if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(s.cfg.WriteTimeout)); err != nil {
					return
				}
			}
		}
	}()
}

func (s *Server) isClosing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closing
}

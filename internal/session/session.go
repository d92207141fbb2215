// Package session owns one client's virtual controller: its accumulated input
// state, the idle watchdog and the final reset on disconnect.
package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/phonepad/phonepad/apitypes"
	"github.com/phonepad/phonepad/device"
	"github.com/phonepad/phonepad/gamepad"
	"github.com/phonepad/phonepad/internal/metrics"
)

// ErrClosed is returned when a message arrives after Close.
var ErrClosed = errors.New("session closed")

// Phase is the lifecycle position of a Session.
type Phase int32

const (
	PhaseConnecting Phase = iota
	PhaseActive
	PhaseIdleReset
	PhaseDisconnected
)

func (p Phase) String() string {
	switch p {
	case PhaseConnecting:
		return "connecting"
	case PhaseActive:
		return "active"
	case PhaseIdleReset:
		return "idle_reset"
	case PhaseDisconnected:
		return "disconnected"
	default:
		return "unknown"
	}
}

// Config tunes the idle watchdog.
type Config struct {
	IdleTimeout  time.Duration `help:"Input silence after which the controller is reset to neutral" default:"500ms" env:"PHONEPAD_SESSION_IDLE_TIMEOUT"`
	PollInterval time.Duration `help:"How often the idle watchdog checks for silence" default:"100ms" env:"PHONEPAD_SESSION_POLL_INTERVAL"`
}

// Options carries per-session collaborators. All fields are optional.
type Options struct {
	ID      string
	Remote  string
	Logger  *slog.Logger
	Metrics *metrics.Metrics
	// Now overrides the clock used for idle detection.
	Now func() time.Time
}

// Session binds one client connection to one virtual controller.
//
// Merging, resolving and applying happen under a single mutex so a message
// and a watchdog reset never interleave inside one apply.
type Session struct {
	id          string
	remote      string
	connectedAt time.Time
	dev         device.Gamepad
	cfg         Config
	logger      *slog.Logger
	metrics     *metrics.Metrics
	now         func() time.Time

	mu         sync.Mutex
	state      gamepad.State
	lastUpdate time.Time
	phase      Phase
	closed     bool

	cancel    context.CancelFunc
	done      chan struct{}
	closeOnce sync.Once
}

// New starts a session on an already created device. The device receives the
// neutral state once before New returns and the watchdog runs until Close.
func New(ctx context.Context, dev device.Gamepad, cfg Config, o *Options) *Session {
	if o == nil {
		o = &Options{}
	}
	if cfg.IdleTimeout <= 0 {
		cfg.IdleTimeout = 500 * time.Millisecond
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 100 * time.Millisecond
	}
	logger := o.Logger
	if logger == nil {
		logger = slog.Default()
	}
	now := o.Now
	if now == nil {
		now = time.Now
	}

	wctx, cancel := context.WithCancel(ctx)
	s := &Session{
		id:          o.ID,
		remote:      o.Remote,
		connectedAt: now(),
		dev:         dev,
		cfg:         cfg,
		logger:      logger,
		metrics:     o.Metrics,
		now:         now,
		state:       gamepad.Default(),
		phase:       PhaseConnecting,
		cancel:      cancel,
		done:        make(chan struct{}),
	}
	s.lastUpdate = s.connectedAt

	s.mu.Lock()
	s.apply(gamepad.Resolve(s.state))
	s.phase = PhaseActive
	s.mu.Unlock()

	s.metrics.SessionOpened()
	go s.watchdog(wctx)
	return s
}

// HandleFrame decodes one raw client frame and applies it. Malformed frames
// are dropped and do not end the session.
func (s *Session) HandleFrame(data []byte) error {
	msg, err := gamepad.DecodeMessage(data)
	if err != nil {
		s.metrics.Message(metrics.ResultMalformed)
		s.logger.Debug("ignoring malformed message", "error", err)
		return nil
	}
	return s.OnMessage(msg)
}

// OnMessage merges msg into the session state and applies the result.
func (s *Session) OnMessage(msg gamepad.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	s.state.Merge(msg)
	s.lastUpdate = s.now()
	s.phase = PhaseActive
	if s.apply(gamepad.Resolve(s.state)) {
		s.metrics.Message(metrics.ResultApplied)
	} else {
		s.metrics.Message(metrics.ResultError)
	}
	return nil
}

// apply must be called with s.mu held. Device errors are logged and the
// session carries on.
func (s *Session) apply(r gamepad.Resolved) bool {
	if err := s.dev.Apply(r); err != nil {
		s.metrics.DeviceError(metrics.OpApply)
		s.logger.Warn("failed to apply controller state", "error", err)
		return false
	}
	return true
}

func (s *Session) watchdog(ctx context.Context) {
	defer close(s.done)
	t := time.NewTicker(s.cfg.PollInterval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			s.checkIdle()
		}
	}
}

// checkIdle forces neutral after IdleTimeout of silence. It keeps firing on
// every poll while the client stays silent.
func (s *Session) checkIdle() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	if s.now().Sub(s.lastUpdate) <= s.cfg.IdleTimeout {
		return
	}
	if s.phase != PhaseIdleReset {
		s.logger.Debug("input idle, resetting to neutral", "idle", s.now().Sub(s.lastUpdate))
	}
	s.state = gamepad.Default()
	s.phase = PhaseIdleReset
	s.metrics.WatchdogReset()
	s.apply(gamepad.Resolve(s.state))
}

// Close stops the watchdog, resets the device and releases it. Only the
// first call does anything. The device is closed even if the reset fails.
func (s *Session) Close() error {
	var err error
	s.closeOnce.Do(func() {
		s.mu.Lock()
		s.closed = true
		s.phase = PhaseDisconnected
		s.mu.Unlock()

		s.cancel()
		<-s.done

		if rerr := s.dev.Reset(); rerr != nil {
			s.metrics.DeviceError(metrics.OpReset)
			s.logger.Warn("failed to reset controller", "error", rerr)
			err = errors.Join(err, rerr)
		}
		if cerr := s.dev.Close(); cerr != nil {
			s.metrics.DeviceError(metrics.OpClose)
			s.logger.Warn("failed to close controller", "error", cerr)
			err = errors.Join(err, cerr)
		}
		s.metrics.SessionClosed()
		s.logger.Info("session closed", "duration", s.now().Sub(s.connectedAt).Round(time.Millisecond))
	})
	return err
}

// Phase returns the current lifecycle phase.
func (s *Session) Phase() Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

// State returns a copy of the accumulated input state.
func (s *Session) State() gamepad.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) ID() string { return s.id }

// Info describes the session for the status endpoint.
func (s *Session) Info() apitypes.SessionInfo {
	return apitypes.SessionInfo{
		ID:          s.id,
		Remote:      s.remote,
		Phase:       s.Phase().String(),
		ConnectedAt: s.connectedAt.UTC().Format(time.RFC3339),
	}
}

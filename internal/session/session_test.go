package session_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phonepad/phonepad/gamepad"
	"github.com/phonepad/phonepad/internal/session"
	htesting "github.com/phonepad/phonepad/internal/testing"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newClock() *fakeClock {
	return &fakeClock{t: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

func newSession(t *testing.T, pad *htesting.MockGamepad, clk *fakeClock) *session.Session {
	t.Helper()
	cfg := session.Config{IdleTimeout: 500 * time.Millisecond, PollInterval: 5 * time.Millisecond}
	s := session.New(context.Background(), pad, cfg, &session.Options{ID: "test", Remote: "pipe", Now: clk.Now})
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func send(t *testing.T, s *session.Session, frame string) {
	t.Helper()
	require.NoError(t, s.HandleFrame([]byte(frame)))
}

func TestSession_ConnectAppliesNeutral(t *testing.T) {
	pad := &htesting.MockGamepad{}
	s := newSession(t, pad, newClock())

	calls := pad.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "apply", calls[0].Op)
	assert.Equal(t, gamepad.Neutral(), calls[0].State)
	assert.Equal(t, session.PhaseActive, s.Phase())
}

func TestSession_IdleResetAndDisconnect(t *testing.T) {
	pad := &htesting.MockGamepad{}
	clk := newClock()
	s := newSession(t, pad, clk)

	send(t, s, `{"a":true,"lx":0.5}`)
	got, ok := pad.LastApplied()
	require.True(t, ok)
	assert.True(t, got.A)
	assert.Equal(t, 0.5, got.LX)

	clk.Advance(100 * time.Millisecond)
	send(t, s, `{"a":false}`)
	got, _ = pad.LastApplied()
	assert.False(t, got.A)
	assert.Equal(t, 0.5, got.LX, "absent field keeps its value")
	assert.Equal(t, 3, pad.Count("apply"))

	clk.Advance(600 * time.Millisecond)
	require.Eventually(t, func() bool {
		return s.Phase() == session.PhaseIdleReset
	}, time.Second, 5*time.Millisecond)
	got, _ = pad.LastApplied()
	assert.Equal(t, gamepad.Neutral(), got)
	assert.True(t, s.State().IsDefault())

	require.NoError(t, s.Close())
	assert.Equal(t, session.PhaseDisconnected, s.Phase())
	assert.Equal(t, 1, pad.Count("reset"))
	assert.Equal(t, 1, pad.Count("close"))

	calls := pad.Calls()
	assert.Equal(t, "reset", calls[len(calls)-2].Op)
	assert.Equal(t, "close", calls[len(calls)-1].Op)

	time.Sleep(30 * time.Millisecond)
	assert.Len(t, pad.Calls(), len(calls), "watchdog must not fire after close")
}

func TestSession_IdleReappliesNeutralEveryPoll(t *testing.T) {
	pad := &htesting.MockGamepad{}
	clk := newClock()
	s := newSession(t, pad, clk)

	send(t, s, `{"x":true,"ry":0.7}`)
	clk.Advance(time.Second)
	require.Eventually(t, func() bool {
		return s.Phase() == session.PhaseIdleReset
	}, time.Second, 5*time.Millisecond)

	// The clock stays put, so every further apply comes from another poll.
	for i := 0; i < 3; i++ {
		n := pad.Count("apply")
		require.Eventually(t, func() bool {
			return pad.Count("apply") > n
		}, time.Second, time.Millisecond, "poll %d did not re-apply neutral", i)
		got, _ := pad.LastApplied()
		assert.Equal(t, gamepad.Neutral(), got)
	}
	assert.Equal(t, session.PhaseIdleReset, s.Phase())
	assert.Zero(t, pad.Count("reset"), "device reset is reserved for disconnect")
}

func TestSession_NoResetWhileActive(t *testing.T) {
	pad := &htesting.MockGamepad{}
	clk := newClock()
	s := newSession(t, pad, clk)

	for i := 0; i < 5; i++ {
		clk.Advance(400 * time.Millisecond)
		send(t, s, `{"rt":0.3}`)
		time.Sleep(10 * time.Millisecond)
	}
	assert.Equal(t, session.PhaseActive, s.Phase())
	assert.Equal(t, 6, pad.Count("apply"))
}

func TestSession_ResumeAfterIdleKeepsDefaults(t *testing.T) {
	pad := &htesting.MockGamepad{}
	clk := newClock()
	s := newSession(t, pad, clk)

	send(t, s, `{"lx":-1,"dpad":"LEFT","zr":true}`)
	clk.Advance(time.Second)
	require.Eventually(t, func() bool {
		return s.Phase() == session.PhaseIdleReset
	}, time.Second, 5*time.Millisecond)

	send(t, s, `{"b":true}`)
	assert.Equal(t, session.PhaseActive, s.Phase())
	got, _ := pad.LastApplied()
	assert.True(t, got.B)
	assert.Equal(t, 0.0, got.LX)
	assert.Equal(t, gamepad.DPadFlags{}, got.DPad)
	assert.Equal(t, 0.0, got.RT)
}

func TestSession_MalformedFramesIgnored(t *testing.T) {
	pad := &htesting.MockGamepad{}
	s := newSession(t, pad, newClock())

	send(t, s, `{"a":true}`)
	send(t, s, `not json`)
	send(t, s, `[1,2,3]`)
	send(t, s, `null`)
	assert.Equal(t, 2, pad.Count("apply"))

	send(t, s, `{"x":true}`)
	got, _ := pad.LastApplied()
	assert.True(t, got.A)
	assert.True(t, got.X)
}

func TestSession_CloseExactlyOnce(t *testing.T) {
	pad := &htesting.MockGamepad{}
	s := newSession(t, pad, newClock())

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = s.Close()
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, pad.Count("reset"))
	assert.Equal(t, 1, pad.Count("close"))
	assert.ErrorIs(t, s.HandleFrame([]byte(`{"a":true}`)), session.ErrClosed)
	assert.Equal(t, 1, pad.Count("apply"))
}

func TestSession_ResetFailureStillReleasesDevice(t *testing.T) {
	pad := &htesting.MockGamepad{FailReset: true}
	s := newSession(t, pad, newClock())

	err := s.Close()
	require.ErrorIs(t, err, htesting.ErrInjected)
	assert.Equal(t, 1, pad.Count("close"))
	assert.NoError(t, s.Close())
}

func TestSession_ApplyFailureKeepsSession(t *testing.T) {
	pad := &htesting.MockGamepad{FailApply: true}
	s := newSession(t, pad, newClock())

	send(t, s, `{"a":true}`)
	send(t, s, `{"b":true}`)
	assert.Equal(t, session.PhaseActive, s.Phase())
	assert.True(t, s.State().A)
	assert.True(t, s.State().B)
}

func TestSession_Info(t *testing.T) {
	s := newSession(t, &htesting.MockGamepad{}, newClock())
	info := s.Info()
	assert.Equal(t, "test", info.ID)
	assert.Equal(t, "pipe", info.Remote)
	assert.Equal(t, "active", info.Phase)
	assert.Equal(t, "2024-01-01T12:00:00Z", info.ConnectedAt)
}

func TestPhase_String(t *testing.T) {
	assert.Equal(t, "connecting", session.PhaseConnecting.String())
	assert.Equal(t, "idle_reset", session.PhaseIdleReset.String())
	assert.Equal(t, "disconnected", session.PhaseDisconnected.String())
	assert.Equal(t, "unknown", session.Phase(42).String())
}

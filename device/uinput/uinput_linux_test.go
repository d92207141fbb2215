package uinput

import (
	"errors"
	"fmt"
	"testing"

	ui "github.com/bendahl/uinput"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phonepad/phonepad/gamepad"
)

var errWrite = errors.New("write failed")

// recordingPad records the events a Gamepad emits. Methods Apply never calls
// fall through to the nil embedded interface.
type recordingPad struct {
	ui.Gamepad
	events []string
	fail   bool
	closes int
}

func (p *recordingPad) record(ev string) error {
	p.events = append(p.events, ev)
	if p.fail {
		return errWrite
	}
	return nil
}

func (p *recordingPad) take() []string {
	ev := p.events
	p.events = nil
	return ev
}

func (p *recordingPad) ButtonDown(key int) error { return p.record(fmt.Sprintf("down %d", key)) }
func (p *recordingPad) ButtonUp(key int) error   { return p.record(fmt.Sprintf("up %d", key)) }

func (p *recordingPad) HatPress(d ui.HatDirection) error {
	return p.record(fmt.Sprintf("hat press %v", d))
}

func (p *recordingPad) HatRelease(d ui.HatDirection) error {
	return p.record(fmt.Sprintf("hat release %v", d))
}

func (p *recordingPad) LeftStickMove(x, y float32) error {
	return p.record(fmt.Sprintf("left %g %g", x, y))
}

func (p *recordingPad) RightStickMove(x, y float32) error {
	return p.record(fmt.Sprintf("right %g %g", x, y))
}

func (p *recordingPad) Close() error {
	p.closes++
	return nil
}

func resolved(mut func(s *gamepad.State)) gamepad.Resolved {
	s := gamepad.Default()
	mut(&s)
	return gamepad.Resolve(s)
}

func down(code int) string              { return fmt.Sprintf("down %d", code) }
func up(code int) string                { return fmt.Sprintf("up %d", code) }
func hatPress(d ui.HatDirection) string { return fmt.Sprintf("hat press %v", d) }
func hatRel(d ui.HatDirection) string   { return fmt.Sprintf("hat release %v", d) }

// fullSyncLen is one event per mapped button, one release per hat
// direction and one move per stick.
var fullSyncLen = len(buttonMap) + 4 + 2

func TestGamepad_Apply(t *testing.T) {
	tests := []struct {
		name string
		from func(s *gamepad.State)
		to   func(s *gamepad.State)
		want []string
	}{
		{
			name: "unchanged state emits nothing",
			from: func(s *gamepad.State) { s.A = true },
			to:   func(s *gamepad.State) { s.A = true },
			want: nil,
		},
		{
			name: "button press and release",
			from: func(s *gamepad.State) { s.A = true },
			to:   func(s *gamepad.State) { s.B = true },
			want: []string{up(ui.ButtonSouth), down(ui.ButtonEast)},
		},
		{
			name: "stick y is inverted",
			from: func(s *gamepad.State) {},
			to:   func(s *gamepad.State) { s.LX, s.LY, s.RY = 0.25, 0.5, -0.5 },
			want: []string{"left 0.25 -0.5", "right 0 0.5"},
		},
		{
			name: "hat release precedes press",
			from: func(s *gamepad.State) { s.DPad = gamepad.DPadUp },
			to:   func(s *gamepad.State) { s.DPad = gamepad.DPadDown },
			want: []string{hatRel(ui.HatUp), hatPress(ui.HatDown)},
		},
		{
			name: "diagonal to single direction",
			from: func(s *gamepad.State) { s.DPad = gamepad.DPadUpLeft },
			to:   func(s *gamepad.State) { s.DPad = gamepad.DPadLeft },
			want: []string{hatRel(ui.HatUp)},
		},
		{
			name: "analog trigger presses trigger button",
			from: func(s *gamepad.State) {},
			to:   func(s *gamepad.State) { s.LT = 0.3 },
			want: []string{down(ui.ButtonTriggerLeft)},
		},
		{
			name: "digital trigger fallback",
			from: func(s *gamepad.State) {},
			to:   func(s *gamepad.State) { s.ZR = true },
			want: []string{down(ui.ButtonTriggerRight)},
		},
		{
			name: "trigger change within pull emits nothing",
			from: func(s *gamepad.State) { s.RT = 0.2 },
			to:   func(s *gamepad.State) { s.RT = 0.9 },
			want: nil,
		},
		{
			name: "capture is not mapped",
			from: func(s *gamepad.State) {},
			to:   func(s *gamepad.State) { s.Capture = true },
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &recordingPad{}
			g := newGamepad(rec, nil)

			require.NoError(t, g.Apply(resolved(tt.from)))
			assert.Len(t, rec.take(), fullSyncLen, "first apply syncs everything")

			require.NoError(t, g.Apply(resolved(tt.to)))
			assert.Equal(t, tt.want, rec.take())
		})
	}
}

func TestGamepad_ResyncAfterError(t *testing.T) {
	rec := &recordingPad{}
	g := newGamepad(rec, nil)
	require.NoError(t, g.Apply(gamepad.Neutral()))
	rec.take()

	pressed := resolved(func(s *gamepad.State) { s.A = true })
	rec.fail = true
	require.ErrorIs(t, g.Apply(pressed), errWrite)
	rec.take()

	rec.fail = false
	require.NoError(t, g.Apply(pressed))
	ev := rec.take()
	assert.Len(t, ev, fullSyncLen)
	assert.Contains(t, ev, down(ui.ButtonSouth))

	require.NoError(t, g.Apply(pressed))
	assert.Empty(t, rec.take())
}

func TestGamepad_ResetAndClose(t *testing.T) {
	rec := &recordingPad{}
	g := newGamepad(rec, nil)
	require.NoError(t, g.Apply(resolved(func(s *gamepad.State) {
		s.Home = true
		s.DPad = gamepad.DPadRight
	})))
	rec.take()

	require.NoError(t, g.Reset())
	assert.ElementsMatch(t, []string{up(ui.ButtonMode), hatRel(ui.HatRight)}, rec.take())
	require.NoError(t, g.Reset())
	assert.Empty(t, rec.take())

	require.NoError(t, g.Close())
	require.NoError(t, g.Close())
	assert.Equal(t, 1, rec.closes)
	assert.Error(t, g.Apply(gamepad.Neutral()))
	assert.Empty(t, rec.take())
}

package playback

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/require"

	"github.com/PizzaHomicide/mirrorplay/internal/media"
	"github.com/PizzaHomicide/mirrorplay/internal/player"
)

// fakeView records the commands it receives and mirrors them into its state, like a player that obeys instantly
type fakeView struct {
	id     string
	role   player.Role
	opts   player.OpenOptions
	events chan player.ViewEvent

	paused          bool
	muted           bool
	flipped         bool
	fullscreen      bool
	controlsVisible bool
	position        float64
	closed          bool
	seeks           []float64

	fullscreenErr error
}

func (v *fakeView) ID() string                      { return v.id }
func (v *fakeView) Role() player.Role               { return v.role }
func (v *fakeView) Events() <-chan player.ViewEvent { return v.events }

func (v *fakeView) Play() error {
	if v.closed {
		return player.ErrNotRunning
	}
	v.paused = false
	return nil
}

func (v *fakeView) Pause() error {
	if v.closed {
		return player.ErrNotRunning
	}
	v.paused = true
	return nil
}

func (v *fakeView) Seek(position float64) error {
	if v.closed {
		return player.ErrNotRunning
	}
	v.position = position
	v.seeks = append(v.seeks, position)
	return nil
}

func (v *fakeView) SetMuted(muted bool) error {
	if v.closed {
		return player.ErrNotRunning
	}
	v.muted = muted
	return nil
}

func (v *fakeView) SetFlipped(flipped bool) error {
	if v.closed {
		return player.ErrNotRunning
	}
	v.flipped = flipped
	return nil
}

func (v *fakeView) SetFullscreen(fullscreen bool) error {
	if v.closed {
		return player.ErrNotRunning
	}
	if v.fullscreenErr != nil {
		return v.fullscreenErr
	}
	v.fullscreen = fullscreen
	return nil
}

func (v *fakeView) SetControlsVisible(visible bool) error {
	if v.closed {
		return player.ErrNotRunning
	}
	v.controlsVisible = visible
	return nil
}

func (v *fakeView) Close() error {
	if !v.closed {
		v.closed = true
		close(v.events)
	}
	return nil
}

// audible reports whether the view is live, playing and unmuted
func (v *fakeView) audible() bool {
	return !v.closed && !v.paused && !v.muted
}

type fakeFactory struct {
	views   []*fakeView
	openErr error
	// fullscreenErr is handed to every view opened from now on
	fullscreenErr error
	// onOpen runs before Open returns, to queue events on the new view
	onOpen func(*fakeView)
}

func (f *fakeFactory) Open(_ context.Context, opts player.OpenOptions) (player.ViewHandle, error) {
	if f.openErr != nil {
		return nil, f.openErr
	}
	view := &fakeView{
		id:            fmt.Sprintf("view-%d", len(f.views)+1),
		role:          opts.Role,
		opts:          opts,
		events:        make(chan player.ViewEvent, 16),
		paused:        opts.Paused,
		muted:         opts.Muted,
		flipped:       opts.Flipped,
		fullscreen:    opts.Fullscreen,
		position:      opts.Start,
		fullscreenErr: f.fullscreenErr,
	}
	f.views = append(f.views, view)
	if f.onOpen != nil {
		f.onOpen(view)
	}
	return view, nil
}

func (f *fakeFactory) last() *fakeView {
	if len(f.views) == 0 {
		return nil
	}
	return f.views[len(f.views)-1]
}

type fakePresenter struct {
	states        []State
	notifications []Notification
}

func (p *fakePresenter) Render(s State)        { p.states = append(p.states, s) }
func (p *fakePresenter) Notify(n Notification) { p.notifications = append(p.notifications, n) }
func (p *fakePresenter) lastNotification() Notification {
	if len(p.notifications) == 0 {
		return Notification{}
	}
	return p.notifications[len(p.notifications)-1]
}

type harness struct {
	t         *testing.T
	ctrl      *Controller
	factory   *fakeFactory
	presenter *fakePresenter
	clock     clockwork.FakeClock
	posted    chan Event
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		t:         t,
		factory:   &fakeFactory{},
		presenter: &fakePresenter{},
		clock:     clockwork.NewFakeClock(),
		posted:    make(chan Event, 64),
	}
	h.ctrl = NewController(Options{
		Factory:   h.factory,
		Presenter: h.presenter,
		Clock:     h.clock,
		Post:      func(ev Event) { h.posted <- ev },
	})
	return h
}

// load brings the controller to PhaseLoaded with a main view onto a video of the given duration
func (h *harness) load(duration float64) *fakeView {
	h.t.Helper()
	view, err := h.factory.Open(context.Background(), player.OpenOptions{Role: player.RoleMain, Path: "/videos/routine.mp4", Paused: true})
	require.NoError(h.t, err)

	h.ctrl.Dispatch(MediaLoaded{Handle: &MediaHandle{
		File:     media.FileInfo{Path: "/videos/routine.mp4", Name: "routine.mp4", Size: 10 << 20, MIME: "video/mp4"},
		Duration: duration,
		Width:    1920,
		Height:   1080,
		Main:     view,
	}})
	require.Equal(h.t, PhaseLoaded, h.ctrl.Phase())
	return view.(*fakeView)
}

// enter brings a loaded controller into full-screen and returns the clone
func (h *harness) enter() *fakeView {
	h.t.Helper()
	require.NoError(h.t, h.ctrl.EnterFullscreen())
	require.Equal(h.t, PhaseFullscreen, h.ctrl.Phase())
	return h.factory.last()
}

// viewEvent dispatches an event as if it came from the view
func (h *harness) viewEvent(v *fakeView, ev player.ViewEvent) {
	ev.ViewID = v.id
	h.ctrl.Dispatch(ViewUpdate{Event: ev})
}

// waitPosted returns the next event posted back to the controller
func (h *harness) waitPosted() Event {
	h.t.Helper()
	select {
	case ev := <-h.posted:
		return ev
	case <-time.After(2 * time.Second):
		h.t.Fatal("timed out waiting for a posted event")
		return nil
	}
}

// assertNothingPosted checks that no event is posted within a short grace period
func (h *harness) assertNothingPosted() {
	h.t.Helper()
	select {
	case ev := <-h.posted:
		h.t.Fatalf("unexpected posted event %T", ev)
	case <-time.After(50 * time.Millisecond):
	}
}

func (h *harness) state() State {
	return h.ctrl.State()
}

func audibleCount(views ...*fakeView) int {
	n := 0
	for _, v := range views {
		if v != nil && v.audible() {
			n++
		}
	}
	return n
}

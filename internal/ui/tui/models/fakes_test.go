package models

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/require"

	"github.com/PizzaHomicide/mirrorplay/internal/config"
	"github.com/PizzaHomicide/mirrorplay/internal/player"
)

// fakeView obeys every command instantly and reports metadata as soon as it opens
type fakeView struct {
	id     string
	role   player.Role
	opts   player.OpenOptions
	events chan player.ViewEvent

	paused     bool
	muted      bool
	flipped    bool
	fullscreen bool
	position   float64
	closed     bool
}

func (v *fakeView) ID() string                      { return v.id }
func (v *fakeView) Role() player.Role               { return v.role }
func (v *fakeView) Events() <-chan player.ViewEvent { return v.events }
func (v *fakeView) Play() error                     { return v.apply(func() { v.paused = false }) }
func (v *fakeView) Pause() error                    { return v.apply(func() { v.paused = true }) }
func (v *fakeView) Seek(position float64) error     { return v.apply(func() { v.position = position }) }
func (v *fakeView) SetMuted(muted bool) error       { return v.apply(func() { v.muted = muted }) }
func (v *fakeView) SetFlipped(flipped bool) error   { return v.apply(func() { v.flipped = flipped }) }
func (v *fakeView) SetControlsVisible(bool) error   { return v.apply(func() {}) }

func (v *fakeView) SetFullscreen(fullscreen bool) error {
	return v.apply(func() { v.fullscreen = fullscreen })
}

func (v *fakeView) apply(fn func()) error {
	if v.closed {
		return player.ErrNotRunning
	}
	fn()
	return nil
}

func (v *fakeView) Close() error {
	if !v.closed {
		v.closed = true
		close(v.events)
	}
	return nil
}

type fakeFactory struct {
	views []*fakeView
}

func (f *fakeFactory) Open(_ context.Context, opts player.OpenOptions) (player.ViewHandle, error) {
	view := &fakeView{
		id:       fmt.Sprintf("view-%d", len(f.views)+1),
		role:     opts.Role,
		opts:     opts,
		events:   make(chan player.ViewEvent, 16),
		paused:   opts.Paused,
		muted:    opts.Muted,
		flipped:  opts.Flipped,
		position: opts.Start,
	}
	if opts.Role == player.RoleMain {
		view.events <- player.ViewEvent{ViewID: view.id, Kind: player.EventMetadata, Duration: 125, Width: 1280, Height: 720}
	}
	f.views = append(f.views, view)
	return view, nil
}

type testApp struct {
	t       *testing.T
	app     AppModel
	factory *fakeFactory
	dir     string
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()

	dir := t.TempDir()
	writeVideo(t, dir, "routine.mp4")

	cfg := &config.Config{
		Player:   config.PlayerConfig{Path: "mpv", LoadTimeoutSeconds: 5},
		Playback: config.PlaybackConfig{SeekStepSeconds: 10, ControlsHideSeconds: 3},
		Library:  config.LibraryConfig{Dir: dir},
		UI:       config.UIConfig{NotificationSeconds: 3},
	}

	factory := &fakeFactory{}
	app := newAppModel(cfg, "", factory, clockwork.NewFakeClock())
	t.Cleanup(app.shutdown)

	ta := &testApp{t: t, app: app, factory: factory, dir: dir}
	ta.update(tea.WindowSizeMsg{Width: 100, Height: 30})
	return ta
}

// update feeds msg to the app and returns the resulting command without running it
func (ta *testApp) update(msg tea.Msg) tea.Cmd {
	ta.t.Helper()
	next, cmd := ta.app.Update(msg)
	app, ok := next.(AppModel)
	require.True(ta.t, ok)
	ta.app = app
	return cmd
}

// press sends a key and feeds the single message its command produces back into the app
func (ta *testApp) press(key tea.KeyMsg) {
	ta.t.Helper()
	if cmd := ta.update(key); cmd != nil {
		ta.update(cmd())
	}
}

// load loads the video in the test library and returns its main view
func (ta *testApp) load() *fakeView {
	ta.t.Helper()
	path := filepath.Join(ta.dir, "routine.mp4")
	ta.update(LoadVideoMsg{Path: path})
	require.Equal(ta.t, ModalLoading, ta.app.activeModal)

	ta.update(ta.app.loadVideo(path)())
	require.NotEmpty(ta.t, ta.factory.views)
	return ta.factory.views[0]
}

// nextInbox waits for the controller to post an event and feeds it to the app
func (ta *testApp) nextInbox() {
	ta.t.Helper()
	select {
	case ev := <-ta.app.inbox:
		ta.update(inboxMsg{Event: ev})
	case <-time.After(2 * time.Second):
		ta.t.Fatal("nothing posted to the inbox")
	}
}

// writeVideo creates a sparse file that passes validation by extension
func writeVideo(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, f.Truncate(64<<10))
	require.NoError(t, f.Close())
	return path
}

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

package models

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PizzaHomicide/mirrorplay/internal/playback"
	"github.com/PizzaHomicide/mirrorplay/internal/player"
)

func TestAppStartsOnLibrary(t *testing.T) {
	ta := newTestApp(t)

	assert.Equal(t, ViewLibrary, ta.app.activeView)
	assert.Equal(t, ModalNone, ta.app.activeModal)

	// Playback keys do nothing while nothing is loaded
	ta.press(tea.KeyMsg{Type: tea.KeySpace})
	ta.press(keyRunes("f"))
	assert.Equal(t, playback.PhaseIdle, ta.app.playerModel.State().Phase)
	assert.Empty(t, ta.factory.views)
}

func TestAppLoadsVideo(t *testing.T) {
	ta := newTestApp(t)
	main := ta.load()

	assert.Equal(t, ModalNone, ta.app.activeModal)
	assert.Equal(t, ViewPlayer, ta.app.activeView)
	assert.Equal(t, player.RoleMain, main.role)
	assert.True(t, main.paused, "a freshly loaded video waits for the user")

	state := ta.app.playerModel.State()
	assert.Equal(t, playback.PhaseLoaded, state.Phase)
	assert.Equal(t, "routine.mp4", state.File.Name)
	assert.Equal(t, 125.0, state.Duration)
	assert.Equal(t, 1280, state.Width)
	assert.Positive(t, ta.app.notifications.Len())

	assert.Contains(t, ta.app.View(), "1280 × 720")
	assert.Contains(t, ta.app.View(), "2:05")
}

func TestAppLoadFailureStaysOnLibrary(t *testing.T) {
	ta := newTestApp(t)
	path := writeVideo(t, ta.dir, "notes.txt")

	ta.update(LoadVideoMsg{Path: path})
	ta.update(ta.app.loadVideo(path)())

	assert.Equal(t, ModalNone, ta.app.activeModal)
	assert.Equal(t, ViewLibrary, ta.app.activeView)
	assert.Empty(t, ta.factory.views, "no player opens for a rejected file")

	last := ta.app.notifications.items[len(ta.app.notifications.items)-1].notification
	assert.Equal(t, playback.SeverityError, last.Severity)
	assert.Contains(t, last.Message, "Unsupported file format")
}

func TestAppPlayerKeys(t *testing.T) {
	ta := newTestApp(t)
	main := ta.load()

	ta.press(tea.KeyMsg{Type: tea.KeySpace})
	assert.False(t, main.paused)
	assert.False(t, ta.app.playerModel.State().Paused)

	ta.press(keyRunes("f"))
	assert.True(t, main.flipped)
	assert.True(t, ta.app.playerModel.State().Flipped)
	assert.Contains(t, ta.app.View(), "Mirrored")

	ta.press(tea.KeyMsg{Type: tea.KeyRight})
	assert.Equal(t, 10.0, main.position)
	ta.press(tea.KeyMsg{Type: tea.KeyLeft})
	assert.Equal(t, 0.0, main.position)
}

func TestAppFullscreenRoundTrip(t *testing.T) {
	ta := newTestApp(t)
	main := ta.load()
	ta.press(tea.KeyMsg{Type: tea.KeySpace})

	ta.press(tea.KeyMsg{Type: tea.KeyCtrlF})
	require.Len(t, ta.factory.views, 2)
	clone := ta.factory.views[1]
	assert.Equal(t, player.RoleOverlay, clone.role)
	assert.True(t, clone.fullscreen)
	assert.False(t, clone.paused)
	assert.True(t, main.paused || main.muted, "only the clone is heard")
	assert.True(t, ta.app.playerModel.State().FullscreenActive)

	ta.press(tea.KeyMsg{Type: tea.KeyEscape})
	assert.True(t, clone.closed)
	assert.False(t, main.paused)
	assert.False(t, main.muted)
	assert.False(t, ta.app.playerModel.State().FullscreenActive)
}

func TestAppEscapeClosesHelpBeforePlayer(t *testing.T) {
	ta := newTestApp(t)
	ta.load()
	ta.press(tea.KeyMsg{Type: tea.KeyCtrlF})
	require.True(t, ta.app.playerModel.State().FullscreenActive)

	ta.press(keyRunes("?"))
	assert.Equal(t, ModalHelp, ta.app.activeModal)
	assert.Equal(t, ViewPlayer, ta.app.helpModel.context)

	ta.press(tea.KeyMsg{Type: tea.KeyEscape})
	assert.Equal(t, ModalNone, ta.app.activeModal)
	assert.True(t, ta.app.playerModel.State().FullscreenActive, "esc only closed the help")
}

func TestAppChooseNewVideo(t *testing.T) {
	ta := newTestApp(t)
	main := ta.load()

	ta.press(keyRunes("n"))
	assert.True(t, main.closed)
	assert.Equal(t, ViewLibrary, ta.app.activeView)
	assert.Equal(t, playback.PhaseIdle, ta.app.playerModel.State().Phase)
}

func TestAppForwardsViewEvents(t *testing.T) {
	ta := newTestApp(t)
	main := ta.load()

	main.events <- player.ViewEvent{ViewID: main.id, Kind: player.EventTimeUpdate, Position: 42}
	ta.nextInbox()
	assert.Equal(t, 42.0, ta.app.playerModel.State().Position)

	// Closing the player window unloads the video
	main.events <- player.ViewEvent{ViewID: main.id, Kind: player.EventClosed, Position: 42}
	ta.nextInbox()
	assert.Equal(t, ViewLibrary, ta.app.activeView)
}

func TestAppQuitClosesPlayers(t *testing.T) {
	ta := newTestApp(t)
	main := ta.load()
	ta.press(tea.KeyMsg{Type: tea.KeyCtrlF})
	clone := ta.factory.views[1]

	cmd := ta.update(tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	assert.True(t, main.closed)
	assert.True(t, clone.closed)
}

func TestAppSearchModeTypesGlobalKeys(t *testing.T) {
	ta := newTestApp(t)
	ta.update(ta.app.libraryModel.scan()())

	ta.press(keyRunes("/"))
	require.True(t, ta.app.libraryModel.InSearchMode())

	ta.update(keyRunes("?"))
	assert.Equal(t, ModalNone, ta.app.activeModal, "? is typed into the search box")
	assert.Equal(t, "?", ta.app.libraryModel.searchInput.Value())
}

func TestAppNotificationsExpire(t *testing.T) {
	ta := newTestApp(t)
	ta.update(NotifyMsg{Notification: playback.Notification{Message: "hello", Severity: playback.SeverityInfo}})
	require.Equal(t, 1, ta.app.notifications.Len())
	assert.Contains(t, ta.app.View(), "hello")

	ta.update(toastExpiredMsg{ID: ta.app.notifications.items[0].id})
	assert.Equal(t, 0, ta.app.notifications.Len())
}

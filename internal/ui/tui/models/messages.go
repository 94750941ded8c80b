package models

import (
	"github.com/PizzaHomicide/mirrorplay/internal/log"
	"github.com/PizzaHomicide/mirrorplay/internal/media"
	"github.com/PizzaHomicide/mirrorplay/internal/playback"
	tea "github.com/charmbracelet/bubbletea"
)

// PlaybackEventMsg carries an event for the playback controller from one of the child models
type PlaybackEventMsg struct {
	Event playback.Event
}

// inboxMsg carries an event posted asynchronously by the controller's views or timers
type inboxMsg struct {
	Event playback.Event
}

// loadResultMsg is the outcome of loading a video in the background
type loadResultMsg struct {
	Event playback.Event
}

// LoadVideoMsg asks the app to load the video at Path
type LoadVideoMsg struct {
	Path string
}

// LibraryScannedMsg is sent when the video folder has been listed
type LibraryScannedMsg struct {
	Entries []media.Entry
	Error   error
}

// LibraryChangedMsg is sent when video files were added to or removed from the folder
type LibraryChangedMsg struct{}

// NotifyMsg shows a notification that did not come from the controller
type NotifyMsg struct {
	Notification playback.Notification
}

// toastExpiredMsg removes a notification once its time is up
type toastExpiredMsg struct {
	ID int
}

// HandledMsg signals that a key press was consumed without further effect
type HandledMsg struct {
	Reason string
}

// Handled returns a command reporting that a message was consumed.  It stops the app from handling it again.
func Handled(reason string) tea.Cmd {
	return func() tea.Msg {
		log.Trace("Message handled", "reason", reason)
		return HandledMsg{Reason: reason}
	}
}

// dispatch returns a command delivering ev to the playback controller
func dispatch(ev playback.Event) tea.Cmd {
	return func() tea.Msg {
		return PlaybackEventMsg{Event: ev}
	}
}

// notify returns a command showing a notification
func notify(severity playback.Severity, message string) tea.Cmd {
	return func() tea.Msg {
		return NotifyMsg{Notification: playback.Notification{Message: message, Severity: severity}}
	}
}

package player

import (
	"context"
	"errors"
)

// ErrNotRunning is returned when a command is sent to a view whose player has been closed
var ErrNotRunning = errors.New("player is not running")

// Role identifies what a view is used for
type Role string

const (
	// RoleMain is the long-lived view opened when a file is loaded
	RoleMain Role = "main"
	// RoleOverlay is the full-screen duplicate that exists only while full-screen mode is active
	RoleOverlay Role = "overlay"
)

// EventKind represents the type of view event
type EventKind string

const (
	// EventTimeUpdate reports the current playback position
	EventTimeUpdate EventKind = "time_update"
	// EventPause reports a change of the paused state
	EventPause EventKind = "pause"
	// EventMute reports a change of the muted state
	EventMute EventKind = "mute"
	// EventMetadata is sent once, when duration and dimensions are all known
	EventMetadata EventKind = "metadata"
	// EventFullscreen reports the native full-screen state of the view's window
	EventFullscreen EventKind = "fullscreen"
	// EventActivity reports pointer activity over the view's window
	EventActivity EventKind = "activity"
	// EventLoadError reports that the file could not be decoded
	EventLoadError EventKind = "load_error"
	// EventClosed is the last event of a view; the player went away
	EventClosed EventKind = "closed"
)

// ViewEvent is an asynchronous notification from a view.  When HasPosition is set, Position carries the latest
// known position whatever the kind of event.
type ViewEvent struct {
	ViewID      string
	Kind        EventKind
	Position    float64
	HasPosition bool
	Paused      bool
	Muted       bool
	Fullscreen  bool
	Duration    float64
	Width       int
	Height      int
	Err         error
}

// OpenOptions seeds a new view
type OpenOptions struct {
	Role       Role
	Path       string
	Title      string
	Start      float64
	Paused     bool
	Muted      bool
	Flipped    bool
	Fullscreen bool
}

// ViewHandle is one live, renderable instance of a media file.  Commands are fire-and-forget; their effects are
// reported back through Events.
type ViewHandle interface {
	ID() string
	Role() Role

	Play() error
	Pause() error
	// Seek moves to an absolute position in seconds
	Seek(position float64) error
	SetMuted(muted bool) error
	// SetFlipped mirrors the rendered frames horizontally
	SetFlipped(flipped bool) error
	// SetFullscreen requests or leaves native full-screen for the view's window
	SetFullscreen(fullscreen bool) error
	// SetControlsVisible shows or hides the on-screen transport controls drawn over the video
	SetControlsVisible(visible bool) error

	// Events returns the view's event stream.  It is closed after EventClosed.
	Events() <-chan ViewEvent

	// Close stops the view and releases its resources.  Safe to call more than once.
	Close() error
}

// ViewFactory opens views onto media files
type ViewFactory interface {
	Open(ctx context.Context, opts OpenOptions) (ViewHandle, error)
}

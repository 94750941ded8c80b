package playback

import "github.com/PizzaHomicide/mirrorplay/internal/player"

// Event is anything the controller reacts to.  Every event goes through Controller.Dispatch.
type Event interface {
	event()
}

// Input is a keyboard action routed to the controller
type Input int

const (
	InputTogglePlayPause Input = iota + 1
	InputToggleFlip
	InputToggleFullscreen
	InputRewind
	InputForward
	InputEscape
)

func (in Input) String() string {
	switch in {
	case InputTogglePlayPause:
		return "toggle_play_pause"
	case InputToggleFlip:
		return "toggle_flip"
	case InputToggleFullscreen:
		return "toggle_fullscreen"
	case InputRewind:
		return "rewind"
	case InputForward:
		return "forward"
	case InputEscape:
		return "escape"
	default:
		return "unknown"
	}
}

// SeekTo moves playback to a fraction of the duration, as a click or drag on a progress bar does
type SeekTo struct {
	Fraction float64
}

// PointerActivity is pointer movement or a tap anywhere while full-screen
type PointerActivity struct{}

// PointerOverControls reports the pointer entering or leaving the progress/transport region
type PointerOverControls struct {
	Over bool
}

// ViewUpdate wraps an asynchronous event from one of the views
type ViewUpdate struct {
	Event player.ViewEvent
}

// MediaLoaded carries a successfully loaded file
type MediaLoaded struct {
	Handle *MediaHandle
}

// LoadFailed reports a file that failed validation or loading
type LoadFailed struct {
	Path string
	Err  error
}

// HideTimerExpired is posted by the auto-hide timer.  Expiries from a superseded timer carry a stale generation.
type HideTimerExpired struct {
	Generation uint64
}

// ResetRequested asks to unload the current video so a new one can be chosen
type ResetRequested struct{}

func (Input) event()               {}
func (SeekTo) event()              {}
func (PointerActivity) event()     {}
func (PointerOverControls) event() {}
func (ViewUpdate) event()          {}
func (MediaLoaded) event()         {}
func (LoadFailed) event()          {}
func (HideTimerExpired) event()    {}
func (ResetRequested) event()      {}

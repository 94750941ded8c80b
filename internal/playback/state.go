package playback

import (
	"github.com/samber/lo"

	"github.com/PizzaHomicide/mirrorplay/internal/media"
)

// Phase is the controller's top level state
type Phase string

const (
	PhaseIdle       Phase = "idle"
	PhaseLoaded     Phase = "loaded"
	PhaseFullscreen Phase = "fullscreen"
)

// Severity classifies a notification
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeveritySuccess Severity = "success"
	SeverityError   Severity = "error"
)

// Notification is a short, fire-and-forget message for the user
type Notification struct {
	Message  string
	Severity Severity
}

// State is a snapshot of everything the presentation layer needs to draw the player.  Position, Paused and Muted
// describe the authoritative view: the clone while full-screen, the main view otherwise.
type State struct {
	Phase Phase
	File  media.FileInfo

	Duration float64
	Width    int
	Height   int

	Position float64
	Paused   bool
	Muted    bool

	Flipped             bool
	FullscreenActive    bool
	ControlsVisible     bool
	HideTimerArmed      bool
	PointerOverControls bool
}

// Progress returns the position as a fraction of the duration, 0 when the duration is unknown
func (s State) Progress() float64 {
	if s.Duration <= 0 {
		return 0
	}
	return lo.Clamp(s.Position/s.Duration, 0, 1)
}

// Presenter renders controller state.  Both methods are called on the dispatching goroutine and must not block.
type Presenter interface {
	Render(State)
	Notify(Notification)
}

// viewState is the last known playback state of one view
type viewState struct {
	position float64
	paused   bool
	muted    bool
}

package playback

import (
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/samber/lo"

	"github.com/PizzaHomicide/mirrorplay/internal/log"
	"github.com/PizzaHomicide/mirrorplay/internal/player"
)

const (
	DefaultSeekStep  = 10 * time.Second
	DefaultHideDelay = 3 * time.Second
)

// Options wires a Controller to its collaborators
type Options struct {
	Factory   player.ViewFactory
	Presenter Presenter
	// Clock drives the auto-hide timer.  Defaults to the real clock.
	Clock clockwork.Clock
	// Post delivers an event back into Dispatch on the dispatching goroutine.  View events and timer expiries
	// arrive through it.
	Post func(Event)

	SeekStep  time.Duration
	HideDelay time.Duration
}

// Controller is the playback state machine.  It owns the main view of the loaded video and, while full-screen,
// a clone view that takes over audio and position.  It is not safe for concurrent use: every call must come from
// the single goroutine that also consumes Post.
type Controller struct {
	factory   player.ViewFactory
	presenter Presenter
	clock     clockwork.Clock
	post      func(Event)
	seekStep  time.Duration
	hideDelay time.Duration

	phase   Phase
	media   *MediaHandle
	main    player.ViewHandle
	clone   player.ViewHandle
	flipped bool

	mainState  viewState
	cloneState viewState

	// Native full-screen has been observed on the clone's window
	clonePlatformFullscreen bool

	controlsVisible     bool
	pointerOverControls bool
	hideTimer           clockwork.Timer
	hideGeneration      uint64
}

// NewController creates an idle controller
func NewController(opts Options) *Controller {
	c := &Controller{
		factory:   opts.Factory,
		presenter: opts.Presenter,
		clock:     opts.Clock,
		post:      opts.Post,
		seekStep:  opts.SeekStep,
		hideDelay: opts.HideDelay,
		phase:     PhaseIdle,
	}
	if c.clock == nil {
		c.clock = clockwork.NewRealClock()
	}
	if c.post == nil {
		c.post = func(Event) {}
	}
	if c.seekStep <= 0 {
		c.seekStep = DefaultSeekStep
	}
	if c.hideDelay <= 0 {
		c.hideDelay = DefaultHideDelay
	}
	return c
}

// Phase returns the current phase
func (c *Controller) Phase() Phase { return c.phase }

// State returns a snapshot of the current state
func (c *Controller) State() State {
	s := State{
		Phase:               c.phase,
		Flipped:             c.flipped,
		FullscreenActive:    c.phase == PhaseFullscreen,
		ControlsVisible:     c.controlsVisible,
		HideTimerArmed:      c.hideTimer != nil,
		PointerOverControls: c.pointerOverControls,
	}
	if c.media != nil {
		s.File = c.media.File
		s.Duration = c.media.Duration
		s.Width = c.media.Width
		s.Height = c.media.Height

		_, vs := c.authoritative()
		s.Position = vs.position
		s.Paused = vs.paused
		s.Muted = vs.muted
	}
	return s
}

// Dispatch is the single entry point for every inbound event
func (c *Controller) Dispatch(ev Event) {
	switch ev := ev.(type) {
	case Input:
		c.HandleInput(ev)
	case SeekTo:
		c.Seek(ev.Fraction)
	case PointerActivity:
		c.ShowFullscreenControls()
	case PointerOverControls:
		c.SetPointerOverControls(ev.Over)
	case ViewUpdate:
		c.handleViewEvent(ev.Event)
	case MediaLoaded:
		if err := c.LoadMedia(ev.Handle); err != nil {
			c.notify(SeverityError, UserMessage(err))
		}
	case LoadFailed:
		log.Warn("Load failed", "path", ev.Path, "error", ev.Err)
		c.notify(SeverityError, UserMessage(ev.Err))
	case HideTimerExpired:
		c.handleHideTimerExpired(ev.Generation)
	case ResetRequested:
		c.Reset()
		c.notify(SeverityInfo, "Please choose a new video file")
	default:
		log.Warn("Unhandled playback event", "event", fmt.Sprintf("%T", ev))
	}
}

// HandleInput routes a keyboard action.  Input is ignored while nothing is loaded, and counts as activity while
// full-screen.
func (c *Controller) HandleInput(in Input) {
	if c.phase == PhaseIdle {
		log.Trace("Ignoring input, nothing loaded", "input", in)
		return
	}
	if c.phase == PhaseFullscreen {
		c.ShowFullscreenControls()
	}

	switch in {
	case InputTogglePlayPause:
		c.TogglePlayPause()
	case InputToggleFlip:
		c.ToggleFlip()
	case InputToggleFullscreen:
		c.ToggleFullscreen()
	case InputRewind:
		c.Rewind()
	case InputForward:
		c.Forward()
	case InputEscape:
		if c.phase == PhaseFullscreen {
			_ = c.ExitFullscreen()
		}
	default:
		log.Warn("Unknown input", "input", int(in))
	}
}

// LoadMedia makes h the current video.  Any previously loaded video is released first.
func (c *Controller) LoadMedia(h *MediaHandle) error {
	if h == nil || h.Main == nil {
		return fmt.Errorf("%w: no player view", ErrLoad)
	}
	if h.Duration <= 0 || h.Width <= 0 || h.Height <= 0 {
		if err := h.Main.Close(); err != nil {
			log.Debug("Failed to close view of rejected video", "error", err)
		}
		return fmt.Errorf("%w: video metadata unavailable", ErrLoad)
	}

	if c.phase != PhaseIdle {
		log.Info("Replacing loaded video", "old", c.media.File.Path, "new", h.File.Path)
		c.release()
	}

	c.media = h
	c.main = h.Main
	c.mainState = viewState{paused: !h.Playing, muted: h.Muted}
	c.flipped = false
	c.phase = PhaseLoaded
	c.forward(c.main)

	log.Info("Video ready", "path", h.File.Path, "view", c.main.ID())
	c.notify(SeveritySuccess, "Video loaded! You can play and mirror it now.")
	c.render()
	return nil
}

// Reset unloads the current video, leaving full-screen first if needed
func (c *Controller) Reset() {
	if c.phase == PhaseIdle {
		return
	}
	c.release()
	c.render()
}

// release tears down every view and returns to idle without rendering
func (c *Controller) release() {
	if c.phase == PhaseFullscreen {
		c.exitFullscreen()
	}
	if c.main != nil {
		if err := c.main.Close(); err != nil {
			log.Warn("Failed to close main view", "error", err)
		}
	}
	c.media = nil
	c.main = nil
	c.mainState = viewState{}
	c.flipped = false
	c.phase = PhaseIdle
}

// TogglePlayPause toggles the authoritative view.  The new state is shown immediately and reconciled with the
// view's own pause report later.
func (c *Controller) TogglePlayPause() {
	if c.phase == PhaseIdle {
		return
	}

	view, vs := c.authoritative()
	var err error
	if vs.paused {
		err = view.Play()
	} else {
		err = view.Pause()
	}
	if err != nil {
		log.Warn("Failed to toggle playback", "view", view.ID(), "error", err)
		return
	}
	vs.paused = !vs.paused
	log.Debug("Toggled playback", "view", view.ID(), "paused", vs.paused)

	if c.phase == PhaseFullscreen {
		c.updateHideTimer()
	}
	c.render()
}

// Seek moves to a fraction of the duration
func (c *Controller) Seek(fraction float64) {
	if c.phase == PhaseIdle || c.media.Duration <= 0 {
		return
	}
	fraction = lo.Clamp(fraction, 0, 1)
	c.seekTo(fraction * c.media.Duration)
}

// Rewind jumps back one seek step, stopping at the start
func (c *Controller) Rewind() {
	if c.phase == PhaseIdle {
		return
	}
	_, vs := c.authoritative()
	c.seekTo(vs.position - c.seekStep.Seconds())
}

// Forward jumps ahead one seek step, stopping at the end
func (c *Controller) Forward() {
	if c.phase == PhaseIdle {
		return
	}
	_, vs := c.authoritative()
	c.seekTo(vs.position + c.seekStep.Seconds())
}

// seekTo positions the authoritative view, and the passive main view while full-screen
func (c *Controller) seekTo(position float64) {
	position = lo.Clamp(position, 0, c.media.Duration)

	view, vs := c.authoritative()
	if err := view.Seek(position); err != nil {
		log.Warn("Failed to seek", "view", view.ID(), "error", err)
		return
	}
	vs.position = position

	if c.phase == PhaseFullscreen {
		c.mirrorPositionToMain(position)
	}
	c.render()
}

// ToggleFlip mirrors or restores every live view
func (c *Controller) ToggleFlip() {
	if c.phase == PhaseIdle {
		return
	}

	c.flipped = !c.flipped
	for _, view := range c.views() {
		if err := view.SetFlipped(c.flipped); err != nil {
			log.Warn("Failed to apply flip", "view", view.ID(), "error", err)
		}
	}

	status := "original"
	if c.flipped {
		status = "mirrored"
	}
	log.Info("Flip toggled", "flipped", c.flipped)
	c.notify(SeveritySuccess, "Switched to "+status+" orientation")
	c.render()
}

// authoritative returns the view that is heard and seen, and its tracked state
func (c *Controller) authoritative() (player.ViewHandle, *viewState) {
	if c.phase == PhaseFullscreen {
		return c.clone, &c.cloneState
	}
	return c.main, &c.mainState
}

func (c *Controller) views() []player.ViewHandle {
	return lo.Filter([]player.ViewHandle{c.main, c.clone}, func(v player.ViewHandle, _ int) bool {
		return v != nil
	})
}

// forward relays a view's events back into Dispatch until the view is closed
func (c *Controller) forward(view player.ViewHandle) {
	events := view.Events()
	post := c.post
	go func() {
		for ev := range events {
			post(ViewUpdate{Event: ev})
		}
	}()
}

func (c *Controller) handleViewEvent(ev player.ViewEvent) {
	switch {
	case c.main != nil && ev.ViewID == c.main.ID():
		c.handleMainEvent(ev)
	case c.clone != nil && ev.ViewID == c.clone.ID():
		c.handleCloneEvent(ev)
	default:
		log.Trace("Ignoring event from a view that is no longer live", "view", ev.ViewID, "kind", ev.Kind)
	}
}

// positionOf reports the position an event carries, if any
func positionOf(ev player.ViewEvent) (float64, bool) {
	return ev.Position, ev.HasPosition || ev.Kind == player.EventTimeUpdate
}

func (c *Controller) handleMainEvent(ev player.ViewEvent) {
	fullscreen := c.phase == PhaseFullscreen
	if pos, ok := positionOf(ev); ok {
		c.mainState.position = pos
	}

	switch ev.Kind {
	case player.EventTimeUpdate:
		if !fullscreen {
			c.render()
		}

	case player.EventPause:
		c.mainState.paused = ev.Paused
		if fullscreen && !ev.Paused {
			// Only the clone may play while full-screen
			log.Debug("Main view resumed during full-screen, pausing it again")
			c.silenceMain()
			return
		}
		c.render()

	case player.EventMute:
		c.mainState.muted = ev.Muted
		if fullscreen && !ev.Muted {
			c.silenceMain()
			return
		}
		c.render()

	case player.EventFullscreen:
		c.HandlePlatformFullscreenChange(ev.ViewID, ev.Fullscreen)

	case player.EventLoadError:
		log.Error("Main view reported a playback error", "error", ev.Err)
		c.notify(SeverityError, UserMessage(fmt.Errorf("%w: %w", ErrLoad, ev.Err)))
		c.Reset()

	case player.EventClosed:
		log.Info("Main player window closed")
		// The view is gone already, closing it again is harmless
		c.Reset()
		c.notify(SeverityInfo, "Player window closed. Please choose a new video file")
	}
}

func (c *Controller) handleCloneEvent(ev player.ViewEvent) {
	if c.phase != PhaseFullscreen {
		return
	}

	moved := false
	if pos, ok := positionOf(ev); ok && (pos != c.cloneState.position || ev.Kind == player.EventTimeUpdate) {
		c.cloneState.position = pos
		c.mirrorPositionToMain(pos)
		moved = true
	}

	switch ev.Kind {
	case player.EventTimeUpdate:
		c.render()

	case player.EventPause:
		if c.cloneState.paused == ev.Paused {
			if moved {
				c.render()
			}
			return
		}
		c.cloneState.paused = ev.Paused
		if ev.Paused {
			c.showControls()
		}
		c.updateHideTimer()
		c.render()

	case player.EventMute:
		c.cloneState.muted = ev.Muted
		c.render()

	case player.EventActivity:
		c.ShowFullscreenControls()

	case player.EventFullscreen:
		c.HandlePlatformFullscreenChange(ev.ViewID, ev.Fullscreen)

	case player.EventLoadError:
		log.Error("Full-screen view failed", "error", ev.Err)
		_ = c.ExitFullscreen()
		c.notify(SeverityError, "Full-screen playback failed")

	case player.EventClosed:
		log.Info("Full-screen window closed")
		_ = c.ExitFullscreen()
	}
}

// mirrorPositionToMain keeps the passive main view at the clone's position
func (c *Controller) mirrorPositionToMain(position float64) {
	if err := c.main.Seek(position); err != nil {
		log.Debug("Failed to mirror position to main view", "error", err)
		return
	}
	c.mainState.position = position
}

// silenceMain mutes and pauses the main view
func (c *Controller) silenceMain() {
	if err := c.main.SetMuted(true); err != nil {
		log.Warn("Failed to mute main view", "error", err)
	}
	if err := c.main.Pause(); err != nil {
		log.Warn("Failed to pause main view", "error", err)
	}
	c.mainState.muted = true
	c.mainState.paused = true
}

func (c *Controller) notify(severity Severity, message string) {
	if c.presenter == nil {
		return
	}
	c.presenter.Notify(Notification{Message: message, Severity: severity})
}

func (c *Controller) render() {
	if c.presenter == nil {
		return
	}
	c.presenter.Render(c.State())
}

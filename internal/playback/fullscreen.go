package playback

import (
	"context"
	"fmt"

	"github.com/PizzaHomicide/mirrorplay/internal/log"
	"github.com/PizzaHomicide/mirrorplay/internal/player"
)

// EnterFullscreen opens the clone view seeded from the main view and hands audio and position over to it.  The
// main view is muted and paused before the clone exists, so the two are never heard together.
func (c *Controller) EnterFullscreen() error {
	if c.phase != PhaseLoaded {
		return fmt.Errorf("%w: cannot enter full-screen while %s", ErrInvalidState, c.phase)
	}

	snapshot := c.mainState
	log.Info("Entering full-screen", "position", snapshot.position, "paused", snapshot.paused, "muted", snapshot.muted)

	c.silenceMain()

	clone, err := c.factory.Open(context.Background(), player.OpenOptions{
		Role:    player.RoleOverlay,
		Path:    c.media.File.Path,
		Title:   c.media.File.Name,
		Start:   snapshot.position,
		Paused:  snapshot.paused,
		Muted:   snapshot.muted,
		Flipped: c.flipped,
	})
	if err != nil {
		log.Error("Failed to open full-screen view", "error", err)
		c.restoreMain(snapshot)
		c.notify(SeverityError, "Failed to enter full-screen")
		c.render()
		return fmt.Errorf("opening full-screen view: %w", err)
	}

	c.clone = clone
	c.cloneState = snapshot
	c.clonePlatformFullscreen = false
	c.pointerOverControls = false
	c.phase = PhaseFullscreen
	c.forward(clone)

	if err := clone.SetFullscreen(true); err != nil {
		// The clone window still works as a full-screen view without native full-screen
		log.Warn("Native full-screen request failed", "error", fmt.Errorf("%w: %w", ErrPlatformFullscreenUnavailable, err))
	}

	c.showControls()
	c.updateHideTimer()

	c.notify(SeveritySuccess, "Entered full-screen mode")
	c.render()
	return nil
}

// ExitFullscreen closes the clone, hands its position and pause state back to the main view and unmutes it
func (c *Controller) ExitFullscreen() error {
	if c.phase != PhaseFullscreen {
		return fmt.Errorf("%w: not in full-screen", ErrInvalidState)
	}

	c.exitFullscreen()
	c.notify(SeverityInfo, "Exited full-screen mode")
	c.render()
	return nil
}

// ToggleFullscreen enters or leaves full-screen depending on the phase
func (c *Controller) ToggleFullscreen() {
	switch c.phase {
	case PhaseLoaded:
		if err := c.EnterFullscreen(); err != nil {
			log.Warn("Failed to enter full-screen", "error", err)
		}
	case PhaseFullscreen:
		_ = c.ExitFullscreen()
	}
}

// exitFullscreen is ExitFullscreen without notifications or rendering
func (c *Controller) exitFullscreen() {
	final := c.cloneState
	// Main always comes back audible, a mute chosen in the clone stays with the clone
	final.muted = false
	log.Info("Exiting full-screen", "position", final.position, "paused", final.paused, "muted", final.muted)

	c.cancelHideTimer()
	c.controlsVisible = false
	c.pointerOverControls = false
	c.clonePlatformFullscreen = false

	// The clone is gone before main is audible again
	clone := c.clone
	c.clone = nil
	c.phase = PhaseLoaded
	if err := clone.Close(); err != nil {
		log.Warn("Failed to close full-screen view", "error", err)
	}

	c.restoreMain(final)
}

// restoreMain makes the main view authoritative again with the given state
func (c *Controller) restoreMain(state viewState) {
	if err := c.main.Seek(state.position); err != nil {
		log.Warn("Failed to restore main view position", "error", err)
	}
	if err := c.main.SetMuted(state.muted); err != nil {
		log.Warn("Failed to restore main view mute", "error", err)
	}

	var err error
	if state.paused {
		err = c.main.Pause()
	} else {
		err = c.main.Play()
	}
	if err != nil {
		log.Warn("Failed to restore main view playback", "error", err)
	}

	c.mainState = state
}

// HandlePlatformFullscreenChange reacts to a view's window entering or leaving native full-screen.  The main window
// going full-screen directly is redirected into the clone; the clone leaving native full-screen on its own ends
// full-screen mode.
func (c *Controller) HandlePlatformFullscreenChange(viewID string, fullscreen bool) {
	switch {
	case c.main != nil && viewID == c.main.ID():
		if !fullscreen {
			return
		}
		log.Warn("Redirecting to mirrored full-screen", "error", ErrUnexpectedFullscreenTarget)
		if err := c.main.SetFullscreen(false); err != nil {
			log.Warn("Failed to take main view out of native full-screen", "error", err)
		}
		if c.phase == PhaseLoaded {
			c.notify(SeverityInfo, "Switched to mirrored full-screen mode")
			if err := c.EnterFullscreen(); err != nil {
				log.Warn("Failed to enter full-screen", "error", err)
			}
		}

	case c.clone != nil && viewID == c.clone.ID():
		if fullscreen {
			c.clonePlatformFullscreen = true
			return
		}
		if c.clonePlatformFullscreen {
			log.Info("Full-screen window left native full-screen")
			_ = c.ExitFullscreen()
		}

	default:
		log.Trace("Ignoring full-screen change from a view that is no longer live", "view", viewID)
	}
}

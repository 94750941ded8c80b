package playback

import "github.com/PizzaHomicide/mirrorplay/internal/log"

// ShowFullscreenControls records activity while full-screen: the controls appear and the hide countdown restarts
func (c *Controller) ShowFullscreenControls() {
	if c.phase != PhaseFullscreen {
		return
	}
	c.showControls()
	c.updateHideTimer()
	c.render()
}

// SetPointerOverControls tracks the pointer over the progress and transport region.  The controls never hide while
// the pointer is there, and leaving the region counts as activity.
func (c *Controller) SetPointerOverControls(over bool) {
	if c.phase != PhaseFullscreen || over == c.pointerOverControls {
		return
	}
	c.pointerOverControls = over
	if over {
		c.showControls()
		c.cancelHideTimer()
		c.render()
		return
	}
	c.ShowFullscreenControls()
}

func (c *Controller) showControls() {
	if c.controlsVisible {
		return
	}
	c.controlsVisible = true
	if err := c.clone.SetControlsVisible(true); err != nil {
		log.Debug("Failed to show full-screen controls", "error", err)
	}
}

func (c *Controller) hideControls() {
	c.controlsVisible = false
	if err := c.clone.SetControlsVisible(false); err != nil {
		log.Debug("Failed to hide full-screen controls", "error", err)
	}
}

// updateHideTimer arms the countdown when the controls could hide, and cancels it otherwise
func (c *Controller) updateHideTimer() {
	if c.phase == PhaseFullscreen && c.controlsVisible && !c.pointerOverControls && !c.cloneState.paused {
		c.armHideTimer()
		return
	}
	c.cancelHideTimer()
}

// armHideTimer starts a fresh countdown, superseding any pending one
func (c *Controller) armHideTimer() {
	c.cancelHideTimer()

	generation := c.hideGeneration
	post := c.post
	c.hideTimer = c.clock.AfterFunc(c.hideDelay, func() {
		post(HideTimerExpired{Generation: generation})
	})
	log.Trace("Auto-hide armed", "generation", generation, "delay", c.hideDelay)
}

// cancelHideTimer stops any pending countdown.  An expiry already in flight is made stale.
func (c *Controller) cancelHideTimer() {
	if c.hideTimer != nil {
		c.hideTimer.Stop()
		c.hideTimer = nil
	}
	c.hideGeneration++
}

func (c *Controller) handleHideTimerExpired(generation uint64) {
	if generation != c.hideGeneration || c.hideTimer == nil {
		log.Trace("Ignoring stale auto-hide expiry", "generation", generation, "current", c.hideGeneration)
		return
	}
	c.hideTimer = nil
	c.hideGeneration++

	if c.phase != PhaseFullscreen || c.cloneState.paused || c.pointerOverControls {
		return
	}
	c.hideControls()
	c.render()
}

package player

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"sync"
	"time"

	"github.com/PizzaHomicide/mirrorplay/internal/log"
)

const (
	// mirrorFilter is the labelled mpv video filter used for flipping, so it can be removed without touching
	// filters the user configured
	mirrorFilter = "@mirror:hflip"

	// timeUpdateInterval rate limits position reports, roughly the cadence of a browser timeupdate event
	timeUpdateInterval = 250 * time.Millisecond

	connectAttempts   = 40
	connectRetryDelay = 250 * time.Millisecond
	quitGracePeriod   = 500 * time.Millisecond
)

// Observed property ids
const (
	propTimePos = iota + 1
	propPause
	propMute
	propDuration
	propWidth
	propHeight
	propFullscreen
	propMousePos
)

var observedProperties = map[int]string{
	propTimePos:    "time-pos",
	propPause:      "pause",
	propMute:       "mute",
	propDuration:   "duration",
	propWidth:      "width",
	propHeight:     "height",
	propFullscreen: "fullscreen",
	propMousePos:   "mouse-pos",
}

// MPVView implements ViewHandle on top of one mpv process
type MPVView struct {
	id         string
	role       Role
	socketPath string
	log        *log.Logger
	ipc        *MPVIPCClient
	events     chan ViewEvent

	cmd    *exec.Cmd
	exited chan struct{}
	ctx    context.Context
	cancel context.CancelFunc

	mu        sync.Mutex
	connected bool
	closed    bool
	pending   [][]any

	// Owned by the event loop goroutine
	duration         float64
	width, height    int
	metadataSent     bool
	lastActivityEmit time.Time

	// Shared with the trailing time update timer
	timeMu       sync.Mutex
	position     float64
	hasPosition  bool
	lastTimeEmit time.Time
	timeFlush    *time.Timer
	eventsClosed bool
}

func newMPVView(id string, role Role, socketPath string) *MPVView {
	ctx, cancel := context.WithCancel(context.Background())
	return &MPVView{
		id:         id,
		role:       role,
		socketPath: socketPath,
		log:        log.With("view", id, "role", string(role)),
		ipc:        NewMPVIPCClient(socketPath),
		events:     make(chan ViewEvent, 128),
		exited:     make(chan struct{}),
		ctx:        ctx,
		cancel:     cancel,
	}
}

// start takes ownership of a started mpv process
func (v *MPVView) start(ctx context.Context, cmd *exec.Cmd) {
	v.cmd = cmd

	// Reap the process so it never lingers as a zombie
	go func() {
		err := cmd.Wait()
		v.log.Debug("mpv process exited", "error", err)
		close(v.exited)
	}()

	go v.run(ctx)
}

func (v *MPVView) ID() string { return v.id }

func (v *MPVView) Role() Role { return v.role }

func (v *MPVView) Events() <-chan ViewEvent { return v.events }

func (v *MPVView) Play() error { return v.setProperty("pause", false) }

func (v *MPVView) Pause() error { return v.setProperty("pause", true) }

func (v *MPVView) Seek(position float64) error {
	return v.send("seek", position, "absolute")
}

func (v *MPVView) SetMuted(muted bool) error { return v.setProperty("mute", muted) }

func (v *MPVView) SetFlipped(flipped bool) error {
	if flipped {
		return v.send("vf", "add", mirrorFilter)
	}
	return v.send("vf", "remove", "@mirror")
}

func (v *MPVView) SetFullscreen(fullscreen bool) error {
	return v.setProperty("fullscreen", fullscreen)
}

// SetControlsVisible drives the visibility of mpv's on-screen controller
func (v *MPVView) SetControlsVisible(visible bool) error {
	mode := "never"
	if visible {
		mode = "always"
	}
	return v.send("script-message", "osc-visibility", mode, "no-osd")
}

// Close asks mpv to quit, killing it if it does not exit promptly
func (v *MPVView) Close() error {
	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		return nil
	}
	v.closed = true
	connected := v.connected
	v.mu.Unlock()

	// Stops the event loop from blocking on a consumer that is no longer listening
	v.cancel()

	if connected {
		if _, err := v.ipc.SendCommand([]any{"quit"}); err != nil {
			v.log.Debug("Failed to send quit to mpv", "error", err)
		}
	}

	if v.cmd != nil {
		select {
		case <-v.exited:
		case <-time.After(quitGracePeriod):
			v.log.Warn("mpv did not quit in time, killing it")
			if v.cmd.Process != nil {
				_ = v.cmd.Process.Kill()
			}
		}
	}

	err := v.ipc.Close()
	v.removeSocket()
	return err
}

func (v *MPVView) removeSocket() {
	if runtime.GOOS == "windows" {
		return
	}
	if err := os.Remove(v.socketPath); err != nil && !os.IsNotExist(err) {
		v.log.Warn("Failed to remove MPV socket file", "path", v.socketPath, "error", err)
	}
}

func (v *MPVView) setProperty(name string, value any) error {
	return v.send("set_property", name, value)
}

// send issues a command, queueing it if the IPC connection is not up yet
func (v *MPVView) send(cmd ...any) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.closed {
		return ErrNotRunning
	}
	if !v.connected {
		v.pending = append(v.pending, cmd)
		return nil
	}

	_, err := v.ipc.SendCommand(cmd)
	return err
}

// markConnected flushes commands queued while mpv was starting
func (v *MPVView) markConnected() {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.connected = true
	for _, cmd := range v.pending {
		if _, err := v.ipc.SendCommand(cmd); err != nil {
			v.log.Warn("Failed to send queued command", "command", cmd, "error", err)
		}
	}
	v.pending = nil
}

func (v *MPVView) run(ctx context.Context) {
	defer v.closeEvents()

	connCtx, cancel := context.WithTimeout(v.ctx, connectAttempts*connectRetryDelay)
	defer cancel()
	// The caller's context only matters until the connection is up
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	if err := v.ipc.WaitForConnection(connCtx, connectAttempts, connectRetryDelay); err != nil {
		v.log.Error("Failed to connect to MPV", "error", err)
		v.emit(ViewEvent{Kind: EventLoadError, Err: fmt.Errorf("connecting to mpv: %w", err)})
		if v.cmd != nil && v.cmd.Process != nil {
			_ = v.cmd.Process.Kill()
		}
		v.emit(ViewEvent{Kind: EventClosed})
		return
	}

	for id, name := range observedProperties {
		if err := v.ipc.ObserveProperty(id, name); err != nil {
			v.log.Warn("Failed to observe property", "property", name, "error", err)
		}
	}
	v.markConnected()

	for event := range v.ipc.Events() {
		v.handle(event)
	}

	v.log.Info("mpv view closed")
	v.emit(ViewEvent{Kind: EventClosed})
}

// emit publishes an event stamped with the latest known position
func (v *MPVView) emit(ev ViewEvent) {
	v.timeMu.Lock()
	defer v.timeMu.Unlock()
	ev.Position, ev.HasPosition = v.position, v.hasPosition
	v.publish(ev)
}

// publish sends an event unless the view has been closed.  Callers hold timeMu.
func (v *MPVView) publish(ev ViewEvent) {
	if v.eventsClosed {
		return
	}
	ev.ViewID = v.id
	select {
	case v.events <- ev:
	case <-v.ctx.Done():
	}
}

// updatePosition records a new position and reports it at most once per timeUpdateInterval.  A position that
// arrives inside the interval is reported when the interval ends, so the last one is never lost.
func (v *MPVView) updatePosition(pos float64) {
	v.timeMu.Lock()
	defer v.timeMu.Unlock()

	v.position, v.hasPosition = pos, true
	wait := timeUpdateInterval - time.Since(v.lastTimeEmit)
	if wait > 0 {
		if v.timeFlush == nil {
			v.timeFlush = time.AfterFunc(wait, v.flushPosition)
		}
		return
	}
	v.publishPosition()
}

func (v *MPVView) flushPosition() {
	v.timeMu.Lock()
	defer v.timeMu.Unlock()

	v.timeFlush = nil
	v.publishPosition()
}

func (v *MPVView) publishPosition() {
	v.lastTimeEmit = time.Now()
	v.publish(ViewEvent{Kind: EventTimeUpdate, Position: v.position, HasPosition: true})
}

// closeEvents ends the event stream, dropping any pending time update
func (v *MPVView) closeEvents() {
	v.timeMu.Lock()
	defer v.timeMu.Unlock()

	if v.timeFlush != nil {
		v.timeFlush.Stop()
		v.timeFlush = nil
	}
	v.eventsClosed = true
	close(v.events)
}

// handle translates one mpv line into view events
func (v *MPVView) handle(event MPVEvent) {
	switch event.Event {
	case "property-change":
		v.handleProperty(event)

	case "end-file":
		if event.Reason == "error" {
			v.log.Warn("mpv failed to play file", "file_error", event.FileError)
			v.emit(ViewEvent{Kind: EventLoadError, Err: fmt.Errorf("mpv could not play the file: %s", event.FileError)})
		}

	case "":
		if event.Error != "" && event.Error != "success" {
			v.log.Debug("mpv command failed", "request_id", event.RequestID, "error", event.Error)
		}

	default:
		v.log.Trace("Ignoring mpv event", "event", event.Event)
	}
}

func (v *MPVView) handleProperty(event MPVEvent) {
	switch event.Name {
	case "time-pos":
		var pos float64
		if decodeProperty(event.Data, &pos) {
			v.updatePosition(pos)
		}

	case "pause":
		var paused bool
		if decodeProperty(event.Data, &paused) {
			v.emit(ViewEvent{Kind: EventPause, Paused: paused})
		}

	case "mute":
		var muted bool
		if decodeProperty(event.Data, &muted) {
			v.emit(ViewEvent{Kind: EventMute, Muted: muted})
		}

	case "duration":
		if decodeProperty(event.Data, &v.duration) {
			v.maybeEmitMetadata()
		}

	case "width":
		if decodeProperty(event.Data, &v.width) {
			v.maybeEmitMetadata()
		}

	case "height":
		if decodeProperty(event.Data, &v.height) {
			v.maybeEmitMetadata()
		}

	case "fullscreen":
		var fullscreen bool
		if decodeProperty(event.Data, &fullscreen) {
			v.emit(ViewEvent{Kind: EventFullscreen, Fullscreen: fullscreen})
		}

	case "mouse-pos":
		var mouse struct {
			Hover bool `json:"hover"`
		}
		if !decodeProperty(event.Data, &mouse) || !mouse.Hover {
			return
		}
		if time.Since(v.lastActivityEmit) < timeUpdateInterval {
			return
		}
		v.lastActivityEmit = time.Now()
		v.emit(ViewEvent{Kind: EventActivity})
	}
}

// maybeEmitMetadata sends EventMetadata the first time duration and dimensions are all known
func (v *MPVView) maybeEmitMetadata() {
	if v.metadataSent || v.duration <= 0 || v.width <= 0 || v.height <= 0 {
		return
	}
	v.metadataSent = true
	v.emit(ViewEvent{Kind: EventMetadata, Duration: v.duration, Width: v.width, Height: v.height})
}

// decodeProperty unmarshals a property value, reporting false for missing or null values
func decodeProperty(data json.RawMessage, out any) bool {
	if len(data) == 0 || string(data) == "null" {
		return false
	}
	if err := json.Unmarshal(data, out); err != nil {
		log.Debug("Failed to unmarshal property data", "data", string(data), "error", err)
		return false
	}
	return true
}

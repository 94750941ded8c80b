//go:build !windows

package player

import (
	"bufio"
	"context"
	"encoding/json"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PizzaHomicide/mirrorplay/internal/config"
)

// fakeMPV is a minimal stand-in for mpv's JSON IPC server
type fakeMPV struct {
	t        *testing.T
	listener net.Listener
	commands chan []any
	conn     chan net.Conn
}

func newFakeMPV(t *testing.T) (*fakeMPV, string) {
	t.Helper()
	// Keep the path short, unix socket paths are limited to ~100 bytes
	dir, err := os.MkdirTemp("", "mp")
	require.NoError(t, err)
	t.Cleanup(func() { _ = os.RemoveAll(dir) })

	socketPath := filepath.Join(dir, "s.sock")
	listener, err := net.Listen("unix", socketPath)
	require.NoError(t, err)

	f := &fakeMPV{
		t:        t,
		listener: listener,
		commands: make(chan []any, 100),
		conn:     make(chan net.Conn, 1),
	}
	t.Cleanup(func() { _ = listener.Close() })

	go f.serve()
	return f, socketPath
}

func (f *fakeMPV) serve() {
	conn, err := f.listener.Accept()
	if err != nil {
		return
	}
	f.conn <- conn

	scanner := bufio.NewScanner(conn)
	for scanner.Scan() {
		var msg struct {
			Command []any `json:"command"`
		}
		if err := json.Unmarshal(scanner.Bytes(), &msg); err != nil {
			continue
		}
		f.commands <- msg.Command
	}
	close(f.commands)
}

func (f *fakeMPV) nextCommand() []any {
	f.t.Helper()
	select {
	case cmd := <-f.commands:
		return cmd
	case <-time.After(5 * time.Second):
		f.t.Fatal("timed out waiting for a command")
		return nil
	}
}

// nextNonObserve skips the observe_property calls made on connect
func (f *fakeMPV) nextNonObserve() []any {
	f.t.Helper()
	for {
		cmd := f.nextCommand()
		if len(cmd) > 0 && cmd[0] != "observe_property" {
			return cmd
		}
	}
}

func nextEvent(t *testing.T, events <-chan ViewEvent) ViewEvent {
	t.Helper()
	select {
	case ev, ok := <-events:
		require.True(t, ok, "event channel closed")
		return ev
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for a view event")
		return ViewEvent{}
	}
}

func TestMPVIPCClient(t *testing.T) {
	server, socketPath := newFakeMPV(t)
	client := NewMPVIPCClient(socketPath)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, client.WaitForConnection(ctx, 10, 10*time.Millisecond))
	t.Cleanup(func() { _ = client.Close() })

	id, err := client.SendCommand([]any{"set_property", "pause", true})
	require.NoError(t, err)
	assert.Equal(t, 1, id)
	assert.Equal(t, []any{"set_property", "pause", true}, server.nextCommand())

	require.NoError(t, client.ObserveProperty(3, "time-pos"))
	assert.Equal(t, []any{"observe_property", float64(3), "time-pos"}, server.nextCommand())

	conn := <-server.conn
	_, err = conn.Write([]byte(`{"event":"property-change","id":3,"name":"time-pos","data":12.5}` + "\n"))
	require.NoError(t, err)

	select {
	case ev := <-client.Events():
		assert.Equal(t, "property-change", ev.Event)
		assert.Equal(t, "time-pos", ev.Name)
		assert.JSONEq(t, "12.5", string(ev.Data))
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for event")
	}
}

func TestMPVIPCClientNotConnected(t *testing.T) {
	client := NewMPVIPCClient(filepath.Join(t.TempDir(), "missing.sock"))
	_, err := client.SendCommand([]any{"quit"})
	assert.Error(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	assert.Error(t, client.WaitForConnection(ctx, 2, 10*time.Millisecond))
}

func TestMPVViewQueuesCommandsUntilConnected(t *testing.T) {
	server, socketPath := newFakeMPV(t)
	view := newMPVView("view-1", RoleOverlay, socketPath)

	// Issued before the connection exists
	require.NoError(t, view.Pause())
	require.NoError(t, view.SetFlipped(true))

	go view.run(context.Background())

	assert.Equal(t, []any{"set_property", "pause", true}, server.nextNonObserve())
	assert.Equal(t, []any{"vf", "add", mirrorFilter}, server.nextNonObserve())

	conn := <-server.conn
	_, err := conn.Write([]byte(`{"event":"property-change","id":2,"name":"pause","data":false}` + "\n"))
	require.NoError(t, err)

	ev := nextEvent(t, view.Events())
	assert.Equal(t, EventPause, ev.Kind)
	assert.False(t, ev.Paused)
	assert.Equal(t, "view-1", ev.ViewID)

	require.NoError(t, view.SetControlsVisible(false))
	assert.Equal(t, []any{"script-message", "osc-visibility", "never", "no-osd"}, server.nextNonObserve())

	require.NoError(t, view.Close())
	assert.Equal(t, []any{"quit"}, server.nextNonObserve())
	assert.ErrorIs(t, view.Play(), ErrNotRunning)
	assert.NoError(t, view.Close(), "closing twice is harmless")
}

func TestMPVViewClosedWhenPlayerExits(t *testing.T) {
	server, socketPath := newFakeMPV(t)
	view := newMPVView("view-2", RoleMain, socketPath)
	go view.run(context.Background())

	conn := <-server.conn
	require.NoError(t, conn.Close())

	ev := nextEvent(t, view.Events())
	assert.Equal(t, EventClosed, ev.Kind)

	_, ok := <-view.Events()
	assert.False(t, ok, "event channel should be closed after EventClosed")
}

func TestMPVViewHandle(t *testing.T) {
	property := func(name, data string) MPVEvent {
		return MPVEvent{Event: "property-change", Name: name, Data: json.RawMessage(data)}
	}

	t.Run("metadata is sent once when complete", func(t *testing.T) {
		view := newMPVView("v", RoleMain, "unused")

		view.handle(property("duration", "100.5"))
		view.handle(property("width", "null"))
		view.handle(property("width", "1920"))
		assert.Empty(t, view.events)

		view.handle(property("height", "1080"))
		ev := <-view.events
		assert.Equal(t, EventMetadata, ev.Kind)
		assert.Equal(t, 100.5, ev.Duration)
		assert.Equal(t, 1920, ev.Width)
		assert.Equal(t, 1080, ev.Height)

		view.handle(property("duration", "200"))
		assert.Empty(t, view.events)
	})

	t.Run("time updates are rate limited", func(t *testing.T) {
		view := newMPVView("v", RoleMain, "unused")

		view.handle(property("time-pos", "1.0"))
		view.handle(property("time-pos", "1.1"))
		view.handle(property("time-pos", "null"))

		require.Len(t, view.events, 1)
		ev := <-view.events
		assert.Equal(t, 1.0, ev.Position)
		assert.True(t, ev.HasPosition)

		// The latest position rides on the next event
		view.handle(property("pause", "true"))
		ev = <-view.events
		assert.Equal(t, EventPause, ev.Kind)
		assert.Equal(t, 1.1, ev.Position)
		assert.True(t, ev.HasPosition)

		// and is reported on its own once the interval is over
		ev = nextEvent(t, view.events)
		assert.Equal(t, EventTimeUpdate, ev.Kind)
		assert.Equal(t, 1.1, ev.Position)
	})

	t.Run("the last suppressed position is reported", func(t *testing.T) {
		view := newMPVView("v", RoleOverlay, "unused")

		view.handle(property("time-pos", "10"))
		view.handle(property("time-pos", "12.5"))
		view.handle(property("time-pos", "15"))

		var positions []float64
		for len(positions) < 2 {
			ev := nextEvent(t, view.events)
			require.Equal(t, EventTimeUpdate, ev.Kind)
			positions = append(positions, ev.Position)
		}
		assert.Equal(t, []float64{10, 15}, positions)

		time.Sleep(2 * timeUpdateInterval)
		assert.Empty(t, view.events)
	})

	t.Run("events before any position carry none", func(t *testing.T) {
		view := newMPVView("v", RoleMain, "unused")

		view.handle(property("pause", "false"))
		ev := <-view.events
		assert.False(t, ev.HasPosition)
	})

	t.Run("closing drops a pending time update", func(t *testing.T) {
		view := newMPVView("v", RoleMain, "unused")

		view.handle(property("time-pos", "1"))
		view.handle(property("time-pos", "2"))
		view.closeEvents()

		ev, ok := <-view.events
		require.True(t, ok)
		assert.Equal(t, 1.0, ev.Position)
		time.Sleep(2 * timeUpdateInterval)
		_, ok = <-view.events
		assert.False(t, ok)
	})

	t.Run("fullscreen, mute and activity", func(t *testing.T) {
		view := newMPVView("v", RoleOverlay, "unused")

		view.handle(property("fullscreen", "true"))
		view.handle(property("mute", "true"))
		view.handle(property("mouse-pos", `{"x":10,"y":20,"hover":false}`))
		view.handle(property("mouse-pos", `{"x":11,"y":20,"hover":true}`))

		ev := <-view.events
		assert.Equal(t, EventFullscreen, ev.Kind)
		assert.True(t, ev.Fullscreen)
		ev = <-view.events
		assert.Equal(t, EventMute, ev.Kind)
		assert.True(t, ev.Muted)
		ev = <-view.events
		assert.Equal(t, EventActivity, ev.Kind)
		assert.Empty(t, view.events)
	})

	t.Run("decode errors become load errors", func(t *testing.T) {
		view := newMPVView("v", RoleMain, "unused")

		view.handle(MPVEvent{Event: "end-file", Reason: "eof"})
		view.handle(MPVEvent{Event: "end-file", Reason: "error", FileError: "unrecognized file format"})

		ev := <-view.events
		assert.Equal(t, EventLoadError, ev.Kind)
		assert.ErrorContains(t, ev.Err, "unrecognized file format")
	})
}

func TestBuildArgs(t *testing.T) {
	factory := NewMPVFactory(config.PlayerConfig{Path: "mpv", Args: "--hwdec=auto --volume=50"})

	args := factory.buildArgs("/tmp/s.sock", OpenOptions{
		Role:       RoleOverlay,
		Path:       "-weird name.mp4",
		Title:      "Routine",
		Start:      12.25,
		Paused:     true,
		Muted:      true,
		Flipped:    true,
		Fullscreen: true,
	})

	assert.Contains(t, args, "--input-ipc-server=/tmp/s.sock")
	assert.Contains(t, args, "--title=Routine")
	assert.Contains(t, args, "--start=12.250")
	assert.Contains(t, args, "--pause=yes")
	assert.Contains(t, args, "--mute=yes")
	assert.Contains(t, args, "--vf="+mirrorFilter)
	assert.Contains(t, args, "--fullscreen=yes")
	assert.Contains(t, args, "--hwdec=auto")
	assert.Contains(t, args, "--volume=50")
	assert.Equal(t, []string{"--", "-weird name.mp4"}, args[len(args)-2:])

	plain := factory.buildArgs("/tmp/s.sock", OpenOptions{Path: "a.mp4"})
	assert.NotContains(t, plain, "--pause=yes")
	assert.NotContains(t, plain, "--vf="+mirrorFilter)
	assert.Contains(t, plain, "--title=mirrorplay")
	for _, arg := range plain {
		assert.NotContains(t, arg, "--start")
	}
}

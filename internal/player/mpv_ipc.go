package player

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"time"

	"github.com/PizzaHomicide/mirrorplay/internal/log"
)

// MPVIPCClient provides communication with a running MPV instance
type MPVIPCClient struct {
	socketPath string
	events     chan MPVEvent

	mu        sync.Mutex
	conn      net.Conn
	requestID int
}

// MPVEvent is one line received from MPV: either an event or a reply to a command
type MPVEvent struct {
	Event     string          `json:"event,omitempty"`
	ID        int             `json:"id,omitempty"`
	Name      string          `json:"name,omitempty"`
	Data      json.RawMessage `json:"data,omitempty"`
	Reason    string          `json:"reason,omitempty"`
	FileError string          `json:"file_error,omitempty"`
	RequestID int             `json:"request_id,omitempty"`
	Error     string          `json:"error,omitempty"`
}

// NewMPVIPCClient creates a new MPV IPC client
func NewMPVIPCClient(socketPath string) *MPVIPCClient {
	return &MPVIPCClient{
		socketPath: socketPath,
		events:     make(chan MPVEvent, 100),
	}
}

// socketPathFor returns a per-view IPC endpoint so that two mpv processes never share one
func socketPathFor(id string) string {
	if runtime.GOOS == "windows" {
		return `\\.\pipe\mirrorplay-` + id
	}

	dir := os.Getenv("XDG_RUNTIME_DIR")
	if dir == "" {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "mirrorplay-"+id+".sock")
}

// WaitForConnection attempts to connect to MPV with retries
func (c *MPVIPCClient) WaitForConnection(ctx context.Context, maxAttempts int, retryDelay time.Duration) error {
	log.Debug("Waiting for MPV to create socket", "socket_path", c.socketPath, "max_attempts", maxAttempts)

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		socketMissing := false
		if runtime.GOOS != "windows" {
			if _, err := os.Stat(c.socketPath); os.IsNotExist(err) {
				log.Trace("MPV socket does not exist yet", "attempt", attempt, "path", c.socketPath)
				socketMissing = true
			}
		}

		if !socketMissing {
			err := c.Connect(ctx)
			if err == nil {
				log.Debug("Connected to MPV", "attempt", attempt, "socket_path", c.socketPath)
				return nil
			}
			log.Trace("Failed to connect to MPV", "attempt", attempt, "error", err)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(retryDelay):
		}
	}

	return fmt.Errorf("failed to connect to MPV after %d attempts", maxAttempts)
}

// attach installs a freshly dialled connection and starts reading from it
func (c *MPVIPCClient) attach(conn net.Conn) {
	c.mu.Lock()
	c.conn = conn
	c.mu.Unlock()
	go c.readEvents(conn)
}

// Close closes the connection to MPV
func (c *MPVIPCClient) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

// readEvents continuously reads events from MPV until the connection drops
func (c *MPVIPCClient) readEvents(conn net.Conn) {
	scanner := bufio.NewScanner(conn)
	// track-list and similar replies can exceed the default token size
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := scanner.Bytes()
		log.Trace("Raw MPV event", "data", string(line))

		var event MPVEvent
		if err := json.Unmarshal(line, &event); err != nil {
			log.Warn("Failed to unmarshal MPV event", "error", err)
			continue
		}

		c.events <- event
	}

	if err := scanner.Err(); err != nil {
		log.Debug("Error reading from MPV socket", "socket_path", c.socketPath, "error", err)
	}

	log.Debug("MPV event reader stopped", "socket_path", c.socketPath)
	close(c.events)
}

// Events returns the channel for MPV events.  It is closed when the connection drops.
func (c *MPVIPCClient) Events() <-chan MPVEvent {
	return c.events
}

// SendCommand sends a command to MPV.  The reply arrives on Events with the returned request id.
func (c *MPVIPCClient) SendCommand(cmd []any) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn == nil {
		return 0, fmt.Errorf("not connected to MPV")
	}

	c.requestID++
	data, err := json.Marshal(map[string]any{
		"command":    cmd,
		"request_id": c.requestID,
	})
	if err != nil {
		return 0, fmt.Errorf("failed to marshal command: %w", err)
	}

	data = append(data, '\n')
	if _, err := c.conn.Write(data); err != nil {
		return 0, fmt.Errorf("failed to send command: %w", err)
	}

	return c.requestID, nil
}

// ObserveProperty starts observing an MPV property
func (c *MPVIPCClient) ObserveProperty(id int, name string) error {
	_, err := c.SendCommand([]any{"observe_property", id, name})
	return err
}

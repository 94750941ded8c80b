//go:build windows

package player

import (
	"context"
	"fmt"
	"time"

	"github.com/PizzaHomicide/mirrorplay/internal/log"
	"gopkg.in/natefinch/npipe.v2"
)

// Connect establishes a connection with MPV over a Windows named pipe
func (c *MPVIPCClient) Connect(ctx context.Context) error {
	log.Trace("Connecting to Windows named pipe", "path", c.socketPath)

	deadline, ok := ctx.Deadline()
	var conn *npipe.PipeConn
	var err error
	if ok {
		conn, err = npipe.DialTimeout(c.socketPath, time.Until(deadline))
	} else {
		conn, err = npipe.Dial(c.socketPath)
	}
	if err != nil {
		return fmt.Errorf("failed to connect to MPV pipe: %w", err)
	}

	c.attach(conn)
	return nil
}

//go:build !windows

package player

import (
	"context"
	"fmt"
	"net"

	"github.com/PizzaHomicide/mirrorplay/internal/log"
)

// Connect establishes a connection with MPV over a Unix domain socket
func (c *MPVIPCClient) Connect(ctx context.Context) error {
	log.Trace("Connecting to Unix socket", "path", c.socketPath)
	var d net.Dialer
	conn, err := d.DialContext(ctx, "unix", c.socketPath)
	if err != nil {
		return fmt.Errorf("failed to connect to MPV socket: %w", err)
	}

	c.attach(conn)
	return nil
}

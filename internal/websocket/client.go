package websocket

import (
	"context"
	"time"

	ws "github.com/coder/websocket"
)

const (
	outboundBuffer    = 16
	keepaliveInterval = 30 * time.Second
)

// Client is one connected dashboard or kiosk.
type Client struct {
	hub  *Hub
	conn *ws.Conn
	out  chan []byte
}

func NewClient(hub *Hub, conn *ws.Conn) *Client {
	return &Client{
		hub:  hub,
		conn: conn,
		out:  make(chan []byte, outboundBuffer),
	}
}

// Run registers the client with the hub and pumps messages until the
// connection drops, then unregisters.
func (c *Client) Run(ctx context.Context) {
	c.hub.Register(c)
	defer c.hub.Unregister(c)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go c.writePump(ctx)
	c.readPump(ctx)
}

// readPump discards inbound frames. The protocol is one-way; reading only
// serves to notice the close.
func (c *Client) readPump(ctx context.Context) {
	for {
		if _, _, err := c.conn.Read(ctx); err != nil {
			return
		}
	}
}

// writePump drains the outbound channel and pings on an interval so stale
// kiosk connections are noticed and reaped.
func (c *Client) writePump(ctx context.Context) {
	ticker := time.NewTicker(keepaliveInterval)
	defer ticker.Stop()

	for {
		select {
		case msg, ok := <-c.out:
			if !ok {
				// Hub closed the channel, connection is done
				return
			}
			if err := c.conn.Write(ctx, ws.MessageText, msg); err != nil {
				return
			}
		case <-ticker.C:
			if err := c.conn.Ping(ctx); err != nil {
				return
			}
		case <-ctx.Done():
			return
		}
	}
}

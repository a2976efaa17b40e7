package realtime

import (
	"context"
	"encoding/json"
	"time"

	ws "github.com/coder/websocket"
	"github.com/dukerupert/homestock/internal/model"
)

const (
	sendBufferSize = 16
	pingInterval   = 30 * time.Second
)

// Client represents a single change-feed WebSocket connection.
type Client struct {
	hub    *Hub
	conn   *ws.Conn
	send   chan []byte
	filter filter
}

// NewClient creates a Client tied to the given hub and connection that
// receives changes on table matching event.
func NewClient(hub *Hub, conn *ws.Conn, table model.Table, event model.Event) *Client {
	return &Client{
		hub:    hub,
		conn:   conn,
		send:   make(chan []byte, sendBufferSize),
		filter: filter{table: table, event: event},
	}
}

// Run queues the subscription acknowledgement, registers the client, starts
// the write pump and runs the read pump. The acknowledgement is always the
// first frame and is written only once the client is registered. Run blocks
// until the connection is closed, then unregisters.
func (c *Client) Run(ctx context.Context) {
	ack, _ := json.Marshal(Message{Type: MessageTypeSubscribed, Table: c.filter.table, Event: c.filter.event})
	c.send <- ack

	c.hub.Register(c)
	defer c.hub.Unregister(c)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go c.writePump(ctx)
	c.readPump(ctx)
}

// readPump reads and discards all incoming messages. It returns on error
// (connection close), which triggers cleanup.
func (c *Client) readPump(ctx context.Context) {
	for {
		_, _, err := c.conn.Read(ctx)
		if err != nil {
			return
		}
	}
}

// writePump drains the send channel and writes messages to the WebSocket.
// It also sends periodic pings to detect stale connections.
func (c *Client) writePump(ctx context.Context) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case msg, ok := <-c.send:
			if !ok {
				c.conn.Close(ws.StatusTryAgainLater, "unsubscribed")
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

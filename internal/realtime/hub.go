package realtime

import (
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/dukerupert/homestock/internal/model"
)

const (
	MessageTypeChange = "change"
	// MessageTypeSubscribed is sent once to a websocket client after it is
	// registered; changes broadcast from then on are delivered.
	MessageTypeSubscribed = "subscribed"
)

// Message is a change notification pushed to subscribers. It names the
// table and kind of change but carries no row payload.
type Message struct {
	Type  string      `json:"type"`
	Table model.Table `json:"table"`
	Event model.Event `json:"event"`
	ID    string      `json:"id,omitempty"`
}

func NewMessage(table model.Table, event model.Event, id string) Message {
	return Message{
		Type:  MessageTypeChange,
		Table: table,
		Event: event,
		ID:    id,
	}
}

func (m Message) Change() model.Change {
	return model.Change{Table: m.Table, Event: m.Event, RowID: m.ID}
}

type filter struct {
	table model.Table
	event model.Event
}

func (f filter) matches(msg Message) bool {
	return f.table == msg.Table && f.event.Matches(msg.Event)
}

type subscriber struct {
	filter filter
	fn     func(model.Change)
}

// Hub fans change messages out to websocket clients and in-process
// subscribers whose table/event filter matches.
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]struct{}
	subs    map[int]subscriber
	nextSub int
	logger  *slog.Logger
}

func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		clients: make(map[*Client]struct{}),
		subs:    make(map[int]subscriber),
		logger:  logger,
	}
}

// Register adds a client to the hub.
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
	h.logger.Debug("client subscribed", "table", c.filter.table, "event", c.filter.event)
}

// Unregister removes a client from the hub and closes its send channel,
// which makes the write pump close the connection.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
	h.mu.Unlock()
}

// Subscribe registers fn for changes on table matching event. fn runs on the
// broadcasting goroutine and must not block. The returned func unsubscribes;
// calling it more than once is harmless.
func (h *Hub) Subscribe(table model.Table, event model.Event, fn func(model.Change)) func() {
	h.mu.Lock()
	id := h.nextSub
	h.nextSub++
	h.subs[id] = subscriber{filter: filter{table: table, event: event}, fn: fn}
	h.mu.Unlock()

	return func() {
		h.mu.Lock()
		delete(h.subs, id)
		h.mu.Unlock()
	}
}

// Broadcast delivers msg to every matching client and subscriber.
func (h *Hub) Broadcast(msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error("marshal broadcast", "error", err)
		return
	}

	h.mu.RLock()
	var fns []func(model.Change)
	for _, s := range h.subs {
		if s.filter.matches(msg) {
			fns = append(fns, s.fn)
		}
	}
	var slow []*Client
	for c := range h.clients {
		if !c.filter.matches(msg) {
			continue
		}
		select {
		case c.send <- data:
		default:
			slow = append(slow, c)
		}
	}
	h.mu.RUnlock()

	// Slow clients are disconnected; they catch up when they resubscribe.
	for _, c := range slow {
		h.logger.Warn("disconnecting slow client", "table", c.filter.table, "event", c.filter.event)
		h.Unregister(c)
	}

	change := msg.Change()
	for _, fn := range fns {
		fn(change)
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) SubscriberCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

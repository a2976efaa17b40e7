package remote

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	ws "github.com/coder/websocket"
	"github.com/dukerupert/homestock/internal/datastore"
	"github.com/dukerupert/homestock/internal/model"
	"github.com/dukerupert/homestock/internal/realtime"
	"github.com/sethvargo/go-retry"
)

type subscription struct {
	cancel context.CancelFunc
	done   chan struct{}
}

func (s *subscription) Close() error {
	s.cancel()
	<-s.done
	return nil
}

func (c *Client) feedURL(table model.Table, event model.Event) string {
	u := *c.base
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	u.Path += "/realtime/v1"
	u.RawQuery = url.Values{
		"table":  {string(table)},
		"event":  {string(event)},
		"apikey": {c.apiKey},
	}.Encode()
	return u.String()
}

// connect dials the change feed and waits for the subscription
// acknowledgement.
func (c *Client) connect(ctx context.Context, target string) (*ws.Conn, error) {
	conn, resp, err := ws.Dial(ctx, target, &ws.DialOptions{
		HTTPHeader: http.Header{"apikey": {c.apiKey}},
	})
	if err != nil {
		if resp != nil && resp.StatusCode != http.StatusSwitchingProtocols {
			return nil, &StoreError{Status: resp.StatusCode, Message: "change feed rejected subscription"}
		}
		return nil, fmt.Errorf("dial change feed: %w", err)
	}

	msg, err := readMessage(ctx, conn)
	if err != nil {
		conn.CloseNow()
		return nil, fmt.Errorf("await subscription: %w", err)
	}
	if msg.Type != realtime.MessageTypeSubscribed {
		conn.CloseNow()
		return nil, fmt.Errorf("await subscription: unexpected %q frame", msg.Type)
	}
	return conn, nil
}

func readMessage(ctx context.Context, conn *ws.Conn) (realtime.Message, error) {
	var msg realtime.Message
	_, data, err := conn.Read(ctx)
	if err != nil {
		return msg, err
	}
	if err := json.Unmarshal(data, &msg); err != nil {
		return msg, fmt.Errorf("decode frame: %w", err)
	}
	return msg, nil
}

// Subscribe opens a change feed for table filtered by event. The first
// connection is made before Subscribe returns. If the feed drops later it
// is redialed with capped exponential backoff, and after each reconnect fn
// receives one change with an empty RowID and event "*" so the caller can
// catch up on anything missed.
func (c *Client) Subscribe(ctx context.Context, table model.Table, event model.Event, fn func(model.Change)) (datastore.Subscription, error) {
	target := c.feedURL(table, event)
	conn, err := c.connect(ctx, target)
	if err != nil {
		return nil, fmt.Errorf("subscribe %s: %w", table, err)
	}

	ctx, cancel := context.WithCancel(ctx)
	sub := &subscription{cancel: cancel, done: make(chan struct{})}
	logger := c.logger.With("table", table, "event", event)

	go func() {
		defer close(sub.done)
		for {
			c.pump(ctx, conn, fn)
			conn.CloseNow()
			if ctx.Err() != nil {
				return
			}

			logger.Warn("change feed lost, reconnecting")
			conn, err = c.reconnect(ctx, target)
			if err != nil {
				return
			}
			logger.Info("change feed reconnected")
			fn(model.Change{Table: table, Event: model.EventAll})
		}
	}()

	return sub, nil
}

// pump delivers change frames to fn until the connection fails or ctx ends.
func (c *Client) pump(ctx context.Context, conn *ws.Conn, fn func(model.Change)) {
	for {
		msg, err := readMessage(ctx, conn)
		if err != nil {
			return
		}
		if msg.Type == realtime.MessageTypeChange {
			fn(msg.Change())
		}
	}
}

func (c *Client) reconnect(ctx context.Context, target string) (*ws.Conn, error) {
	backoff := retry.WithCappedDuration(c.maxBackoff, retry.NewExponential(c.minBackoff))

	var conn *ws.Conn
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		var err error
		conn, err = c.connect(ctx, target)
		if err != nil {
			var serr *StoreError
			if errors.As(err, &serr) && (serr.Status == http.StatusUnauthorized || serr.Status == http.StatusForbidden) {
				c.logger.Error("change feed refused credentials", "error", err)
				return err
			}
			return retry.RetryableError(err)
		}
		return nil
	})
	return conn, err
}

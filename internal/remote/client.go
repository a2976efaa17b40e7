// Package remote implements datastore.Store against a homestockd service.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dukerupert/homestock/internal/datastore"
	"github.com/dukerupert/homestock/internal/model"
)

var _ datastore.Store = (*Client)(nil)

// StoreError is a non-2xx response from the service.
type StoreError struct {
	Status  int
	Message string
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store responded %d: %s", e.Status, e.Message)
}

// Client talks to the REST surface and change feed of a homestockd service.
type Client struct {
	base       *url.URL
	apiKey     string
	httpClient *http.Client
	logger     *slog.Logger

	minBackoff time.Duration
	maxBackoff time.Duration
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithBackoff bounds the delay between change feed reconnect attempts.
func WithBackoff(min, max time.Duration) Option {
	return func(c *Client) {
		c.minBackoff = min
		c.maxBackoff = max
	}
}

func New(baseURL, apiKey string, logger *slog.Logger, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse store url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("store url must be http or https, got %q", baseURL)
	}

	c := &Client{
		base:       u,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		logger:     logger,
		minBackoff: 500 * time.Millisecond,
		maxBackoff: 30 * time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (c *Client) restURL(table model.Table, id string, orders []model.Order) string {
	u := *c.base
	u.Path += "/rest/v1/" + string(table)
	if id != "" {
		u.Path += "/" + url.PathEscape(id)
	}
	if len(orders) > 0 {
		u.RawQuery = url.Values{"order": {model.FormatOrders(orders)}}.Encode()
	}
	return u.String()
}

// do sends one request. Requests are never retried.
func (c *Client) do(ctx context.Context, method, target string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		serr := &StoreError{Status: resp.StatusCode, Message: errorMessage(resp)}
		if resp.StatusCode == http.StatusNotFound {
			return errors.Join(datastore.ErrNotFound, serr)
		}
		return serr
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func errorMessage(resp *http.Response) string {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
	var body struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(data, &body) == nil && body.Error != "" {
		return body.Error
	}
	if msg := strings.TrimSpace(string(data)); msg != "" {
		return msg
	}
	return http.StatusText(resp.StatusCode)
}

func (c *Client) FetchItems(ctx context.Context, orders ...model.Order) ([]model.Item, error) {
	var items []model.Item
	if err := c.do(ctx, http.MethodGet, c.restURL(model.TableItems, "", orders), nil, &items); err != nil {
		return nil, fmt.Errorf("fetch items: %w", err)
	}
	return items, nil
}

func (c *Client) FetchLogEntries(ctx context.Context, orders ...model.Order) ([]model.LogEntry, error) {
	var entries []model.LogEntry
	if err := c.do(ctx, http.MethodGet, c.restURL(model.TableLogs, "", orders), nil, &entries); err != nil {
		return nil, fmt.Errorf("fetch logs: %w", err)
	}
	return entries, nil
}

func (c *Client) FetchShoppingEntries(ctx context.Context, orders ...model.Order) ([]model.ShoppingEntry, error) {
	var entries []model.ShoppingEntry
	if err := c.do(ctx, http.MethodGet, c.restURL(model.TableShopping, "", orders), nil, &entries); err != nil {
		return nil, fmt.Errorf("fetch shopping: %w", err)
	}
	return entries, nil
}

func (c *Client) InsertItem(ctx context.Context, in model.NewItem) (*model.Item, error) {
	var item model.Item
	if err := c.do(ctx, http.MethodPost, c.restURL(model.TableItems, "", nil), in, &item); err != nil {
		return nil, fmt.Errorf("insert item: %w", err)
	}
	return &item, nil
}

func (c *Client) InsertLogEntry(ctx context.Context, in model.NewLogEntry) (*model.LogEntry, error) {
	var entry model.LogEntry
	if err := c.do(ctx, http.MethodPost, c.restURL(model.TableLogs, "", nil), in, &entry); err != nil {
		return nil, fmt.Errorf("insert log: %w", err)
	}
	return &entry, nil
}

func (c *Client) InsertShoppingEntry(ctx context.Context, in model.NewShoppingEntry) (*model.ShoppingEntry, error) {
	var entry model.ShoppingEntry
	if err := c.do(ctx, http.MethodPost, c.restURL(model.TableShopping, "", nil), in, &entry); err != nil {
		return nil, fmt.Errorf("insert shopping: %w", err)
	}
	return &entry, nil
}

func (c *Client) UpdateItem(ctx context.Context, id string, patch model.ItemPatch) error {
	if err := c.do(ctx, http.MethodPatch, c.restURL(model.TableItems, id, nil), patch, nil); err != nil {
		return fmt.Errorf("update item: %w", err)
	}
	return nil
}

func (c *Client) UpdateShoppingEntry(ctx context.Context, id string, patch model.ShoppingPatch) error {
	if err := c.do(ctx, http.MethodPatch, c.restURL(model.TableShopping, id, nil), patch, nil); err != nil {
		return fmt.Errorf("update shopping: %w", err)
	}
	return nil
}

func (c *Client) DeleteItem(ctx context.Context, id string) error {
	if err := c.do(ctx, http.MethodDelete, c.restURL(model.TableItems, id, nil), nil, nil); err != nil {
		return fmt.Errorf("delete item: %w", err)
	}
	return nil
}

func (c *Client) DeleteShoppingEntry(ctx context.Context, id string) error {
	if err := c.do(ctx, http.MethodDelete, c.restURL(model.TableShopping, id, nil), nil, nil); err != nil {
		return fmt.Errorf("delete shopping: %w", err)
	}
	return nil
}

// Package controller keeps the local replicas of items, log entries and
// shopping entries in step with the store. Every mutation is followed by a
// full refresh of the collections it touched, and every change notification
// from the store triggers a full refresh of that table.
package controller

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/dukerupert/homestock/internal/datastore"
	"github.com/dukerupert/homestock/internal/model"
	"golang.org/x/sync/errgroup"
)

// subscriptions lists the change feeds the controller listens to. Log
// entries are append-only, so only inserts matter.
var subscriptions = []struct {
	table model.Table
	event model.Event
}{
	{model.TableItems, model.EventAll},
	{model.TableLogs, model.EventInsert},
	{model.TableShopping, model.EventAll},
}

type Controller struct {
	store    datastore.Store
	logger   *slog.Logger
	now      func() time.Time
	onChange func(model.Table)

	mu       sync.RWMutex
	items    []model.Item
	logs     []model.LogEntry
	shopping []model.ShoppingEntry
	loading  bool

	subMu    sync.Mutex
	subs     []datastore.Subscription
	closed   bool
	inflight sync.WaitGroup
	cancel   context.CancelFunc
	notifCtx context.Context
}

type Option func(*Controller)

// WithOnChange registers fn to run after a collection is replaced or the
// loading state settles. fn runs on the refreshing goroutine.
func WithOnChange(fn func(model.Table)) Option {
	return func(c *Controller) { c.onChange = fn }
}

// WithClock overrides the source of updated_at and completed_at timestamps.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}

func New(store datastore.Store, logger *slog.Logger, opts ...Option) *Controller {
	c := &Controller{
		store:   store,
		logger:  logger,
		now:     func() time.Time { return time.Now().UTC() },
		loading: true,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Start subscribes to the change feeds of all three collections and then
// loads them, so a change landing between the two is never missed. A
// subscription that cannot be opened is logged and skipped. Subscriptions
// live until Close or until ctx is done.
func (c *Controller) Start(ctx context.Context) {
	c.subMu.Lock()
	if c.closed || c.cancel != nil {
		c.subMu.Unlock()
		return
	}
	c.notifCtx, c.cancel = context.WithCancel(ctx)
	notifCtx := c.notifCtx
	c.subMu.Unlock()

	for _, s := range subscriptions {
		sub, err := c.store.Subscribe(notifCtx, s.table, s.event, c.notify(s.table))
		if err != nil {
			c.logger.Error("subscribe failed", "table", s.table, "event", s.event, "error", err)
			continue
		}

		c.subMu.Lock()
		if c.closed {
			c.subMu.Unlock()
			sub.Close()
			return
		}
		c.subs = append(c.subs, sub)
		c.subMu.Unlock()
	}

	c.RefreshAll(ctx)
	c.logger.Info("controller started", "subscriptions", c.subscriptionCount())
}

func (c *Controller) subscriptionCount() int {
	c.subMu.Lock()
	defer c.subMu.Unlock()
	return len(c.subs)
}

// notify returns the change handler for table. Each notification refreshes
// the table on its own goroutine.
func (c *Controller) notify(table model.Table) func(model.Change) {
	return func(ch model.Change) {
		c.subMu.Lock()
		if c.closed {
			c.subMu.Unlock()
			return
		}
		c.inflight.Add(1)
		ctx := c.notifCtx
		c.subMu.Unlock()

		c.logger.Debug("change notification", "table", table, "event", ch.Event, "id", ch.RowID)
		go func() {
			defer c.inflight.Done()
			c.refresh(ctx, table)
		}()
	}
}

// Close releases every subscription and waits for notification refreshes
// already running. It is safe to call more than once.
func (c *Controller) Close() {
	c.subMu.Lock()
	if c.closed {
		c.subMu.Unlock()
		return
	}
	c.closed = true
	subs := c.subs
	c.subs = nil
	cancel := c.cancel
	c.subMu.Unlock()

	for _, sub := range subs {
		if err := sub.Close(); err != nil {
			c.logger.Warn("release subscription", "error", err)
		}
	}
	if cancel != nil {
		cancel()
	}
	c.inflight.Wait()
}

func (c *Controller) changed(table model.Table) {
	if c.onChange != nil {
		c.onChange(table)
	}
}

// fetch reads table from the store and replaces the local collection.
func (c *Controller) fetch(ctx context.Context, table model.Table) error {
	switch table {
	case model.TableItems:
		items, err := c.store.FetchItems(ctx, model.ItemOrder...)
		c.mu.Lock()
		wasLoading := c.loading
		c.loading = false
		if err == nil {
			c.items = items
		}
		c.mu.Unlock()
		if err != nil {
			if wasLoading {
				c.changed(table)
			}
			return fmt.Errorf("fetch items: %w", err)
		}
	case model.TableLogs:
		logs, err := c.store.FetchLogEntries(ctx, model.LogOrder...)
		if err != nil {
			return fmt.Errorf("fetch logs: %w", err)
		}
		c.mu.Lock()
		c.logs = logs
		c.mu.Unlock()
	case model.TableShopping:
		shopping, err := c.store.FetchShoppingEntries(ctx, model.ShoppingOrder...)
		if err != nil {
			return fmt.Errorf("fetch shopping: %w", err)
		}
		c.mu.Lock()
		c.shopping = shopping
		c.mu.Unlock()
	default:
		return fmt.Errorf("unknown table %q", table)
	}
	c.changed(table)
	return nil
}

// refresh re-reads tables concurrently. Failures are logged; a failed table
// keeps its previous contents.
func (c *Controller) refresh(ctx context.Context, tables ...model.Table) {
	var g errgroup.Group
	for _, table := range tables {
		g.Go(func() error {
			err := c.fetch(ctx, table)
			if err != nil {
				c.logger.Error("refresh failed", "table", table, "error", err)
			}
			return err
		})
	}
	g.Wait()
}

func (c *Controller) RefreshItems(ctx context.Context) {
	c.refresh(ctx, model.TableItems)
}

func (c *Controller) RefreshLogEntries(ctx context.Context) {
	c.refresh(ctx, model.TableLogs)
}

func (c *Controller) RefreshShoppingEntries(ctx context.Context) {
	c.refresh(ctx, model.TableShopping)
}

// RefreshAll re-reads all three collections concurrently.
func (c *Controller) RefreshAll(ctx context.Context) {
	c.refresh(ctx, model.Tables...)
}

// Items returns a copy of the item collection, newest first.
func (c *Controller) Items() []model.Item {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.items)
}

// LogEntries returns a copy of the log collection, newest first.
func (c *Controller) LogEntries() []model.LogEntry {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.logs)
}

// ShoppingEntries returns a copy of the shopping collection, pending first.
func (c *Controller) ShoppingEntries() []model.ShoppingEntry {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.shopping)
}

// Loading reports whether the first items refresh is still outstanding.
func (c *Controller) Loading() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loading
}

func (c *Controller) PendingShoppingCount() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	n := 0
	for _, e := range c.shopping {
		if !e.IsCompleted {
			n++
		}
	}
	return n
}

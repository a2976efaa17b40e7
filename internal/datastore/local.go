package datastore

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"sync"

	"github.com/dukerupert/homestock/internal/model"
	"github.com/dukerupert/homestock/internal/realtime"
	"github.com/dukerupert/homestock/internal/store"
)

var _ Store = (*Local)(nil)

// Local serves the capability straight from SQLite and publishes changes on
// an in-process hub. Mutations broadcast exactly as the REST handlers do, so
// a Local and the service may share one hub.
type Local struct {
	items    *store.ItemStore
	logs     *store.LogStore
	shopping *store.ShoppingStore
	hub      *realtime.Hub
}

// NewLocal builds a Local over db. A nil hub gets a private one.
func NewLocal(db *sql.DB, hub *realtime.Hub, logger *slog.Logger) *Local {
	if hub == nil {
		hub = realtime.NewHub(logger)
	}
	return &Local{
		items:    store.NewItemStore(db),
		logs:     store.NewLogStore(db),
		shopping: store.NewShoppingStore(db),
		hub:      hub,
	}
}

func notFound(err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return errors.Join(ErrNotFound, err)
	}
	return err
}

func (l *Local) publish(table model.Table, event model.Event, id string) {
	l.hub.Broadcast(realtime.NewMessage(table, event, id))
}

func (l *Local) FetchItems(ctx context.Context, orders ...model.Order) ([]model.Item, error) {
	return l.items.List(ctx, orders...)
}

func (l *Local) FetchLogEntries(ctx context.Context, orders ...model.Order) ([]model.LogEntry, error) {
	return l.logs.List(ctx, orders...)
}

func (l *Local) FetchShoppingEntries(ctx context.Context, orders ...model.Order) ([]model.ShoppingEntry, error) {
	return l.shopping.List(ctx, orders...)
}

func (l *Local) InsertItem(ctx context.Context, in model.NewItem) (*model.Item, error) {
	item, err := l.items.Create(ctx, in)
	if err != nil {
		return nil, err
	}
	l.publish(model.TableItems, model.EventInsert, item.ID)
	return item, nil
}

func (l *Local) InsertLogEntry(ctx context.Context, in model.NewLogEntry) (*model.LogEntry, error) {
	entry, err := l.logs.Create(ctx, in)
	if err != nil {
		return nil, err
	}
	l.publish(model.TableLogs, model.EventInsert, entry.ID)
	return entry, nil
}

func (l *Local) InsertShoppingEntry(ctx context.Context, in model.NewShoppingEntry) (*model.ShoppingEntry, error) {
	entry, err := l.shopping.Create(ctx, in)
	if err != nil {
		return nil, err
	}
	l.publish(model.TableShopping, model.EventInsert, entry.ID)
	return entry, nil
}

func (l *Local) UpdateItem(ctx context.Context, id string, patch model.ItemPatch) error {
	if err := l.items.Update(ctx, id, patch); err != nil {
		return notFound(err)
	}
	l.publish(model.TableItems, model.EventUpdate, id)
	return nil
}

func (l *Local) UpdateShoppingEntry(ctx context.Context, id string, patch model.ShoppingPatch) error {
	if err := l.shopping.Update(ctx, id, patch); err != nil {
		return notFound(err)
	}
	l.publish(model.TableShopping, model.EventUpdate, id)
	return nil
}

func (l *Local) DeleteItem(ctx context.Context, id string) error {
	if err := l.items.Delete(ctx, id); err != nil {
		return notFound(err)
	}
	l.publish(model.TableItems, model.EventDelete, id)
	l.publish(model.TableLogs, model.EventUpdate, "")
	return nil
}

func (l *Local) DeleteShoppingEntry(ctx context.Context, id string) error {
	if err := l.shopping.Delete(ctx, id); err != nil {
		return notFound(err)
	}
	l.publish(model.TableShopping, model.EventDelete, id)
	return nil
}

// Subscribe registers fn on the hub. The subscription also ends when ctx is done.
func (l *Local) Subscribe(ctx context.Context, table model.Table, event model.Event, fn func(model.Change)) (Subscription, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	unsubscribe := l.hub.Subscribe(table, event, fn)

	var once sync.Once
	done := make(chan struct{})
	release := func() {
		once.Do(func() {
			unsubscribe()
			close(done)
		})
	}
	go func() {
		select {
		case <-ctx.Done():
			release()
		case <-done:
		}
	}()
	return SubscriptionFunc(release), nil
}

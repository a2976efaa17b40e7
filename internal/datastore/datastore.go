// Package datastore defines the data-access capability the controller
// depends on: fetch, insert, update and delete over the three collections,
// plus change subscriptions.
package datastore

import (
	"context"
	"errors"

	"github.com/dukerupert/homestock/internal/model"
)

// ErrNotFound is returned when an update or delete matches no row.
var ErrNotFound = errors.New("record not found")

// Store is implemented by Local and by remote.Client.
type Store interface {
	FetchItems(ctx context.Context, orders ...model.Order) ([]model.Item, error)
	FetchLogEntries(ctx context.Context, orders ...model.Order) ([]model.LogEntry, error)
	FetchShoppingEntries(ctx context.Context, orders ...model.Order) ([]model.ShoppingEntry, error)

	InsertItem(ctx context.Context, in model.NewItem) (*model.Item, error)
	InsertLogEntry(ctx context.Context, in model.NewLogEntry) (*model.LogEntry, error)
	InsertShoppingEntry(ctx context.Context, in model.NewShoppingEntry) (*model.ShoppingEntry, error)

	UpdateItem(ctx context.Context, id string, patch model.ItemPatch) error
	UpdateShoppingEntry(ctx context.Context, id string, patch model.ShoppingPatch) error

	DeleteItem(ctx context.Context, id string) error
	DeleteShoppingEntry(ctx context.Context, id string) error

	// Subscribe calls fn for every change on table matching event until
	// the subscription is closed or ctx is done. fn may be called from any
	// goroutine.
	Subscribe(ctx context.Context, table model.Table, event model.Event, fn func(model.Change)) (Subscription, error)
}

// Subscription is a live registration on the change feed.
type Subscription interface {
	// Close releases the subscription. It is safe to call more than once.
	Close() error
}

// SubscriptionFunc adapts a release function to Subscription.
type SubscriptionFunc func()

func (f SubscriptionFunc) Close() error {
	f()
	return nil
}

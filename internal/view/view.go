// Package view renders the inventory, activity log and shopping list as
// plain text and turns user intents into controller operations. Views keep
// only transient form state; the collections they render are passed in by
// their owner on every draw.
package view

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/dukerupert/homestock/internal/model"
	"github.com/mattn/go-runewidth"
)

var (
	ErrNoForm         = errors.New("no form is open")
	ErrNameRequired   = errors.New("name is required")
	ErrOutOfStock     = errors.New("nothing left to use")
	ErrNothingPending = errors.New("no delete is pending")
	ErrNoSuchRow      = errors.New("no such row")
)

// Dispatcher hands an operation off for execution. Views call it and
// return at once; they never wait for the operation to finish.
type Dispatcher func(op func(ctx context.Context))

// Async runs each operation on its own goroutine under ctx. wg, when not
// nil, tracks operations still running.
func Async(ctx context.Context, wg *sync.WaitGroup) Dispatcher {
	return func(op func(context.Context)) {
		if wg != nil {
			wg.Add(1)
		}
		go func() {
			if wg != nil {
				defer wg.Done()
			}
			op(ctx)
		}()
	}
}

// Inline runs each operation before returning.
func Inline(ctx context.Context) Dispatcher {
	return func(op func(context.Context)) { op(ctx) }
}

type ItemOps interface {
	AddItem(ctx context.Context, name string, quantity int, category, comment string)
	AdjustQuantity(ctx context.Context, item model.Item, delta int, comment string)
	DeleteItem(ctx context.Context, item model.Item, comment string)
}

type ShoppingOps interface {
	AddShoppingEntry(ctx context.Context, name string, quantity int, memo string)
	ToggleShoppingComplete(ctx context.Context, entry model.ShoppingEntry)
	DeleteShoppingEntry(ctx context.Context, id string)
}

// Controller is everything the App needs from the synchronization layer.
type Controller interface {
	ItemOps
	ShoppingOps
	Items() []model.Item
	LogEntries() []model.LogEntry
	ShoppingEntries() []model.ShoppingEntry
	Loading() bool
	PendingShoppingCount() int
	RefreshAll(ctx context.Context)
}

const nameWidth = 28

func fit(s string) string {
	return runewidth.Truncate(strings.TrimSpace(s), nameWidth, "...")
}

// orDefault returns s trimmed, or def when s is blank.
func orDefault(s, def string) string {
	if s = strings.TrimSpace(s); s != "" {
		return s
	}
	return def
}

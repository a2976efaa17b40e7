package view

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dukerupert/homestock/internal/model"
)

type Tab int

const (
	TabItems Tab = iota
	TabLog
	TabShopping
)

func (t Tab) String() string {
	switch t {
	case TabItems:
		return "Items"
	case TabLog:
		return "Log"
	case TabShopping:
		return "Shopping"
	}
	return fmt.Sprintf("Tab(%d)", int(t))
}

// App is the top-level screen: a tab bar with counts over one active view.
// Row numbers passed to ItemAt and ShoppingAt refer to the rows as last
// rendered. App is not safe for concurrent use.
type App struct {
	ctrl     Controller
	dispatch Dispatcher
	now      func() time.Time

	Items    *ItemsView
	Log      *LogView
	Shopping *ShoppingView

	active Tab

	shownItems    []model.Item
	shownShopping []model.ShoppingEntry
}

type AppOption func(*App)

func WithClock(now func() time.Time) AppOption {
	return func(a *App) { a.now = now }
}

func WithLocation(loc *time.Location) AppOption {
	return func(a *App) { a.Log = NewLogView(loc) }
}

func NewApp(ctrl Controller, dispatch Dispatcher, opts ...AppOption) *App {
	a := &App{
		ctrl:     ctrl,
		dispatch: dispatch,
		now:      time.Now,
		Items:    NewItemsView(ctrl, dispatch),
		Log:      NewLogView(nil),
		Shopping: NewShoppingView(ctrl, dispatch),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func (a *App) Active() Tab { return a.active }

func (a *App) SetTab(t Tab) {
	a.active = t
}

// Refresh reloads every collection in the background.
func (a *App) Refresh() {
	a.dispatch(func(ctx context.Context) { a.ctrl.RefreshAll(ctx) })
}

// ItemAt returns the current state of the item drawn on row n, counting
// from 1. It fails when the row was never drawn or the item is gone.
func (a *App) ItemAt(n int) (model.Item, error) {
	if n < 1 || n > len(a.shownItems) {
		return model.Item{}, fmt.Errorf("%w: item %d", ErrNoSuchRow, n)
	}
	id := a.shownItems[n-1].ID
	for _, item := range a.ctrl.Items() {
		if item.ID == id {
			return item, nil
		}
	}
	return model.Item{}, fmt.Errorf("%w: item %d was removed", ErrNoSuchRow, n)
}

// ShoppingAt is ItemAt for the shopping list.
func (a *App) ShoppingAt(n int) (model.ShoppingEntry, error) {
	if n < 1 || n > len(a.shownShopping) {
		return model.ShoppingEntry{}, fmt.Errorf("%w: entry %d", ErrNoSuchRow, n)
	}
	id := a.shownShopping[n-1].ID
	for _, entry := range a.ctrl.ShoppingEntries() {
		if entry.ID == id {
			return entry, nil
		}
	}
	return model.ShoppingEntry{}, fmt.Errorf("%w: entry %d was removed", ErrNoSuchRow, n)
}

// ConfirmDelete completes a pending item delete against the current items.
func (a *App) ConfirmDelete() error {
	return a.Items.ConfirmDelete(a.ctrl.Items())
}

func (a *App) Render(w io.Writer) {
	if a.ctrl.Loading() {
		fmt.Fprintln(w, "Loading...")
		return
	}

	fmt.Fprintln(w, a.tabBar())
	fmt.Fprintln(w)

	now := a.now()
	switch a.active {
	case TabItems:
		a.shownItems = a.ctrl.Items()
		a.Items.Render(w, a.shownItems, now)
	case TabLog:
		a.Log.Render(w, a.ctrl.LogEntries())
	case TabShopping:
		a.shownShopping = a.ctrl.ShoppingEntries()
		a.Shopping.Render(w, a.shownShopping, now)
	}
}

func (a *App) tabBar() string {
	labels := []string{
		TabItems.String(),
		fmt.Sprintf("%s (%d)", TabLog, len(a.ctrl.LogEntries())),
		TabShopping.String(),
	}
	if n := a.ctrl.PendingShoppingCount(); n > 0 {
		labels[TabShopping] = fmt.Sprintf("%s (%d)", TabShopping, n)
	}
	labels[a.active] = "[" + labels[a.active] + "]"
	return strings.Join(labels, "  ")
}

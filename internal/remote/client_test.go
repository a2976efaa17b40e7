package remote

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	ws "github.com/coder/websocket"
	"github.com/dukerupert/homestock/internal/apikey"
	"github.com/dukerupert/homestock/internal/database"
	"github.com/dukerupert/homestock/internal/datastore"
	"github.com/dukerupert/homestock/internal/model"
	"github.com/dukerupert/homestock/internal/realtime"
	"github.com/dukerupert/homestock/internal/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "remote-test-secret"

var discard = slog.New(slog.DiscardHandler)

func setupService(t *testing.T) *Client {
	t.Helper()
	db, err := database.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	srv := server.New(db, server.Options{JWTSecret: testSecret}, discard)
	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)

	key, err := apikey.Issue(testSecret, apikey.RoleAnon, 0)
	require.NoError(t, err)

	c, err := New(ts.URL, key, discard)
	require.NoError(t, err)
	return c
}

type changeLog struct {
	mu      sync.Mutex
	changes []model.Change
}

func (l *changeLog) add(c model.Change) {
	l.mu.Lock()
	l.changes = append(l.changes, c)
	l.mu.Unlock()
}

func (l *changeLog) snapshot() []model.Change {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]model.Change(nil), l.changes...)
}

func TestNewRejectsBadURL(t *testing.T) {
	_, err := New("ftp://example.com", "k", discard)
	assert.Error(t, err)
	_, err = New("://nope", "k", discard)
	assert.Error(t, err)
}

func TestItemsRoundTrip(t *testing.T) {
	c := setupService(t)
	ctx := context.Background()

	soap, err := c.InsertItem(ctx, model.NewItem{Name: "Soap", Quantity: 2, Category: "Bath"})
	require.NoError(t, err)
	assert.NotEmpty(t, soap.ID)
	_, err = c.InsertItem(ctx, model.NewItem{Name: "Apples", Quantity: 5})
	require.NoError(t, err)

	items, err := c.FetchItems(ctx, model.Asc("name"))
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "Apples", items[0].Name)

	q := 7
	require.NoError(t, c.UpdateItem(ctx, soap.ID, model.ItemPatch{Quantity: &q}))
	items, err = c.FetchItems(ctx, model.ItemOrder...)
	require.NoError(t, err)
	assert.Equal(t, "Apples", items[0].Name, "newest first")
	assert.Equal(t, 7, items[1].Quantity)

	require.NoError(t, c.DeleteItem(ctx, soap.ID))
	err = c.DeleteItem(ctx, soap.ID)
	assert.ErrorIs(t, err, datastore.ErrNotFound)
}

func TestStoreErrors(t *testing.T) {
	c := setupService(t)
	ctx := context.Background()

	_, err := c.InsertItem(ctx, model.NewItem{Name: "Soap", Quantity: -3})
	var serr *StoreError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, http.StatusBadRequest, serr.Status)
	assert.Contains(t, serr.Message, "quantity")

	_, err = c.FetchItems(ctx, model.Desc("secret"))
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, http.StatusBadRequest, serr.Status)

	c.apiKey = "bogus"
	_, err = c.FetchItems(ctx)
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, http.StatusUnauthorized, serr.Status)
}

func TestLogsAndShopping(t *testing.T) {
	c := setupService(t)
	ctx := context.Background()

	item, err := c.InsertItem(ctx, model.NewItem{Name: "Soap", Quantity: 1})
	require.NoError(t, err)
	_, err = c.InsertLogEntry(ctx, model.NewLogEntry{ItemID: &item.ID, ItemName: "Soap", Action: model.ActionAdd, QuantityChange: 1})
	require.NoError(t, err)

	logs, err := c.FetchLogEntries(ctx, model.LogOrder...)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, &item.ID, logs[0].ItemID)

	entry, err := c.InsertShoppingEntry(ctx, model.NewShoppingEntry{ItemName: "Milk", Quantity: 1})
	require.NoError(t, err)
	done := true
	require.NoError(t, c.UpdateShoppingEntry(ctx, entry.ID, model.ShoppingPatch{IsCompleted: &done}))

	list, err := c.FetchShoppingEntries(ctx, model.ShoppingOrder...)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.True(t, list[0].IsCompleted)

	require.NoError(t, c.DeleteShoppingEntry(ctx, entry.ID))
	assert.ErrorIs(t, c.UpdateShoppingEntry(ctx, entry.ID, model.ShoppingPatch{IsCompleted: &done}), datastore.ErrNotFound)
}

func TestSubscribeDeliversChanges(t *testing.T) {
	c := setupService(t)
	ctx := context.Background()

	var items, logs changeLog
	itemSub, err := c.Subscribe(ctx, model.TableItems, model.EventAll, items.add)
	require.NoError(t, err)
	defer itemSub.Close()
	logSub, err := c.Subscribe(ctx, model.TableLogs, model.EventInsert, logs.add)
	require.NoError(t, err)
	defer logSub.Close()

	item, err := c.InsertItem(ctx, model.NewItem{Name: "Soap"})
	require.NoError(t, err)
	_, err = c.InsertLogEntry(ctx, model.NewLogEntry{ItemID: &item.ID, ItemName: "Soap", Action: model.ActionAdd})
	require.NoError(t, err)
	require.NoError(t, c.DeleteItem(ctx, item.ID))

	assert.Eventually(t, func() bool { return len(items.snapshot()) == 2 }, 2*time.Second, 10*time.Millisecond)
	assert.Eventually(t, func() bool { return len(logs.snapshot()) == 1 }, 2*time.Second, 10*time.Millisecond)

	got := items.snapshot()
	assert.Equal(t, model.EventInsert, got[0].Event)
	assert.Equal(t, model.EventDelete, got[1].Event)
	assert.Equal(t, item.ID, got[1].RowID)
	// The logs UPDATE caused by the delete is filtered out.
	assert.Equal(t, model.EventInsert, logs.snapshot()[0].Event)
}

func TestSubscribeRejectedKey(t *testing.T) {
	c := setupService(t)
	c.apiKey = "bogus"

	_, err := c.Subscribe(context.Background(), model.TableItems, model.EventAll, func(model.Change) {})
	var serr *StoreError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, http.StatusUnauthorized, serr.Status)
}

// flakyFeed acknowledges every subscription, then drops the first
// connection immediately and holds later ones open.
func flakyFeed(t *testing.T, dials *atomic.Int32) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := ws.Accept(w, r, nil)
		if err != nil {
			return
		}
		defer conn.CloseNow()

		ack, _ := json.Marshal(realtime.Message{Type: realtime.MessageTypeSubscribed, Table: model.TableItems})
		if err := conn.Write(r.Context(), ws.MessageText, ack); err != nil {
			return
		}
		if dials.Add(1) == 1 {
			conn.Close(ws.StatusGoingAway, "restart")
			return
		}
		conn.Read(r.Context())
	}))
}

func TestSubscribeReconnects(t *testing.T) {
	var dials atomic.Int32
	ts := flakyFeed(t, &dials)
	defer ts.Close()

	c, err := New(ts.URL, "k", discard, WithBackoff(5*time.Millisecond, 20*time.Millisecond))
	require.NoError(t, err)

	var changes changeLog
	sub, err := c.Subscribe(context.Background(), model.TableItems, model.EventAll, changes.add)
	require.NoError(t, err)

	assert.Eventually(t, func() bool { return len(changes.snapshot()) == 1 }, 2*time.Second, 5*time.Millisecond)
	assert.Equal(t, model.Change{Table: model.TableItems, Event: model.EventAll}, changes.snapshot()[0])
	assert.Eventually(t, func() bool { return dials.Load() == 2 }, time.Second, 5*time.Millisecond)

	require.NoError(t, sub.Close())
	require.NoError(t, sub.Close())
}

func TestSubscribeCloseStopsDelivery(t *testing.T) {
	c := setupService(t)
	ctx := context.Background()

	var changes changeLog
	sub, err := c.Subscribe(ctx, model.TableShopping, model.EventAll, changes.add)
	require.NoError(t, err)
	require.NoError(t, sub.Close())

	_, err = c.InsertShoppingEntry(ctx, model.NewShoppingEntry{ItemName: "Milk", Quantity: 1})
	require.NoError(t, err)

	time.Sleep(50 * time.Millisecond)
	assert.Empty(t, changes.snapshot())
}

func TestStoreErrorMessage(t *testing.T) {
	err := error(&StoreError{Status: 422, Message: "rejected"})
	assert.Equal(t, "store responded 422: rejected", err.Error())
	assert.False(t, errors.Is(err, datastore.ErrNotFound))
}

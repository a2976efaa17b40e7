package store

import (
	"context"
	"testing"

	"github.com/dukerupert/homestock/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogCreateAndList(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	items := NewItemStore(db)
	logs := NewLogStore(db)
	clock := steppingClock()
	items.now, logs.now = clock, clock

	item, err := items.Create(ctx, model.NewItem{Name: "Sponges", Quantity: 4})
	require.NoError(t, err)

	first, err := logs.Create(ctx, model.NewLogEntry{
		ItemID: &item.ID, ItemName: item.Name, Action: model.ActionAdd, QuantityChange: 4, Comment: "bulk buy",
	})
	require.NoError(t, err)
	require.NotNil(t, first.ItemID)
	assert.Equal(t, item.ID, *first.ItemID)
	assert.Equal(t, model.ActionAdd, first.Action)
	assert.Equal(t, "bulk buy", first.Comment)

	_, err = logs.Create(ctx, model.NewLogEntry{
		ItemID: &item.ID, ItemName: item.Name, Action: model.ActionRemove, QuantityChange: -1,
	})
	require.NoError(t, err)

	entries, err := logs.List(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, model.ActionRemove, entries[0].Action, "newest first")
	assert.Equal(t, -1, entries[0].QuantityChange)
}

func TestLogItemReferenceClearedOnDelete(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	items := NewItemStore(db)
	logs := NewLogStore(db)

	item, err := items.Create(ctx, model.NewItem{Name: "Matches", Quantity: 2})
	require.NoError(t, err)
	entry, err := logs.Create(ctx, model.NewLogEntry{ItemID: &item.ID, ItemName: item.Name, Action: model.ActionAdd, QuantityChange: 2})
	require.NoError(t, err)

	require.NoError(t, items.Delete(ctx, item.ID))

	got, err := logs.GetByID(ctx, entry.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Nil(t, got.ItemID)
	assert.Equal(t, "Matches", got.ItemName)
}

func TestLogRejectsUnknownAction(t *testing.T) {
	_, err := NewLogStore(setupTestDB(t)).Create(context.Background(), model.NewLogEntry{ItemName: "x", Action: "rename"})
	assert.ErrorIs(t, err, ErrConstraint)
}

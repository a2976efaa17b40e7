package store

import (
	"context"
	"testing"
	"time"

	"github.com/dukerupert/homestock/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShoppingCRUD(t *testing.T) {
	ctx := context.Background()
	s := NewShoppingStore(setupTestDB(t))

	e, err := s.Create(ctx, model.NewShoppingEntry{ItemName: "Toilet Paper", Quantity: 2, Memo: "on sale"})
	require.NoError(t, err)
	assert.Equal(t, "Toilet Paper", e.ItemName)
	assert.Equal(t, 2, e.Quantity)
	assert.False(t, e.IsCompleted)
	assert.Nil(t, e.CompletedAt)

	memo := "any brand"
	require.NoError(t, s.Update(ctx, e.ID, model.ShoppingPatch{Memo: &memo}))
	got, err := s.GetByID(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, "any brand", got.Memo)

	require.NoError(t, s.Delete(ctx, e.ID))
	got, err = s.GetByID(ctx, e.ID)
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.ErrorIs(t, s.Delete(ctx, e.ID), ErrNotFound)
}

func TestShoppingCompletionTimestamp(t *testing.T) {
	ctx := context.Background()
	s := NewShoppingStore(setupTestDB(t))

	e, err := s.Create(ctx, model.NewShoppingEntry{ItemName: "Milk", Quantity: 1})
	require.NoError(t, err)

	done, at := true, time.Date(2026, 5, 4, 18, 30, 0, 0, time.UTC)
	require.NoError(t, s.Update(ctx, e.ID, model.ShoppingPatch{IsCompleted: &done, CompletedAt: &at}))
	got, err := s.GetByID(ctx, e.ID)
	require.NoError(t, err)
	assert.True(t, got.IsCompleted)
	require.NotNil(t, got.CompletedAt)
	assert.True(t, got.CompletedAt.Equal(at))

	// A stray timestamp is ignored when reopening.
	undone := false
	require.NoError(t, s.Update(ctx, e.ID, model.ShoppingPatch{IsCompleted: &undone, CompletedAt: &at}))
	got, err = s.GetByID(ctx, e.ID)
	require.NoError(t, err)
	assert.False(t, got.IsCompleted)
	assert.Nil(t, got.CompletedAt)

	// Completing without a timestamp stamps now.
	require.NoError(t, s.Update(ctx, e.ID, model.ShoppingPatch{IsCompleted: &done}))
	got, err = s.GetByID(ctx, e.ID)
	require.NoError(t, err)
	assert.NotNil(t, got.CompletedAt)
}

func TestShoppingListOrdering(t *testing.T) {
	ctx := context.Background()
	s := NewShoppingStore(setupTestDB(t))
	s.now = steppingClock()

	var ids []string
	for _, name := range []string{"Eggs", "Bread", "Rice", "Oil"} {
		e, err := s.Create(ctx, model.NewShoppingEntry{ItemName: name, Quantity: 1})
		require.NoError(t, err)
		ids = append(ids, e.ID)
	}
	done := true
	require.NoError(t, s.Update(ctx, ids[3], model.ShoppingPatch{IsCompleted: &done})) // Oil
	require.NoError(t, s.Update(ctx, ids[0], model.ShoppingPatch{IsCompleted: &done})) // Eggs

	entries, err := s.List(ctx)
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.ItemName)
	}
	assert.Equal(t, []string{"Rice", "Bread", "Oil", "Eggs"}, names)
}

func TestShoppingQuantityConstraint(t *testing.T) {
	_, err := NewShoppingStore(setupTestDB(t)).Create(context.Background(), model.NewShoppingEntry{ItemName: "Salt", Quantity: 0})
	assert.ErrorIs(t, err, ErrConstraint)
}

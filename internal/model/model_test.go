package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseOrders(t *testing.T) {
	orders, err := ParseOrders("is_completed.asc, created_at.desc")
	require.NoError(t, err)
	assert.Equal(t, []Order{Asc("is_completed"), Desc("created_at")}, orders)
	assert.Equal(t, "is_completed.asc,created_at.desc", FormatOrders(orders))

	orders, err = ParseOrders("name")
	require.NoError(t, err)
	assert.Equal(t, []Order{Asc("name")}, orders)

	orders, err = ParseOrders("  ")
	require.NoError(t, err)
	assert.Nil(t, orders)

	_, err = ParseOrders("name.sideways")
	assert.Error(t, err)
	_, err = ParseOrders("name.asc,")
	assert.Error(t, err)
}

func TestEventMatches(t *testing.T) {
	assert.True(t, EventAll.Matches(EventInsert))
	assert.True(t, EventAll.Matches(EventDelete))
	assert.True(t, EventInsert.Matches(EventInsert))
	assert.False(t, EventInsert.Matches(EventUpdate))
	assert.False(t, EventDelete.Matches(EventAll))
}

func TestParseTableAndEvent(t *testing.T) {
	table, err := ParseTable("shopping_list")
	require.NoError(t, err)
	assert.Equal(t, TableShopping, table)
	_, err = ParseTable("chores")
	assert.Error(t, err)

	event, err := ParseEvent("")
	require.NoError(t, err)
	assert.Equal(t, EventAll, event)
	event, err = ParseEvent("UPDATE")
	require.NoError(t, err)
	assert.Equal(t, EventUpdate, event)
	_, err = ParseEvent("insert")
	assert.Error(t, err)
}

func TestActionValid(t *testing.T) {
	for _, a := range []Action{ActionAdd, ActionUpdate, ActionRemove, ActionDelete} {
		assert.True(t, a.Valid(), a)
	}
	assert.False(t, Action("archive").Valid())
}

func TestPatchEmpty(t *testing.T) {
	assert.True(t, ItemPatch{}.Empty())
	q := 2
	assert.False(t, ItemPatch{Quantity: &q}.Empty())

	assert.True(t, ShoppingPatch{}.Empty())
	done := true
	assert.False(t, ShoppingPatch{IsCompleted: &done}.Empty())
}

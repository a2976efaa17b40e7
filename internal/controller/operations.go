package controller

import (
	"context"
	"strings"

	"github.com/dukerupert/homestock/internal/model"
)

// The operations below run their store calls in sequence and block until
// the follow-up refresh completes. None of them report failure. When the
// primary write fails it is logged and nothing is refreshed. A failed log
// entry after a successful write is logged and the refresh still runs, so
// the local collections show what was saved.

// AddItem inserts an item and its "add" log entry. Names are trimmed; an
// empty name is ignored. A negative quantity is stored as zero.
func (c *Controller) AddItem(ctx context.Context, name string, quantity int, category, comment string) {
	name = strings.TrimSpace(name)
	if name == "" {
		c.logger.Debug("add item ignored: empty name")
		return
	}
	quantity = max(0, quantity)

	item, err := c.store.InsertItem(ctx, model.NewItem{
		Name:     name,
		Quantity: quantity,
		Category: strings.TrimSpace(category),
	})
	if err != nil {
		c.logger.Error("add item failed", "op", "add_item", "name", name, "error", err)
		return
	}

	_, err = c.store.InsertLogEntry(ctx, model.NewLogEntry{
		ItemID:         &item.ID,
		ItemName:       item.Name,
		Action:         model.ActionAdd,
		QuantityChange: quantity,
		Comment:        comment,
	})
	if err != nil {
		c.logger.Error("add item log failed", "op", "add_item", "id", item.ID, "error", err)
	}

	c.refresh(ctx, model.TableItems, model.TableLogs)
}

// AdjustQuantity stores max(0, quantity+delta) and logs the requested
// delta. A positive delta is logged as "update", anything else as "remove".
func (c *Controller) AdjustQuantity(ctx context.Context, item model.Item, delta int, comment string) {
	quantity := max(0, item.Quantity+delta)
	now := c.now()

	if err := c.store.UpdateItem(ctx, item.ID, model.ItemPatch{Quantity: &quantity, UpdatedAt: &now}); err != nil {
		c.logger.Error("adjust quantity failed", "op", "adjust_quantity", "id", item.ID, "delta", delta, "error", err)
		return
	}

	action := model.ActionRemove
	if delta > 0 {
		action = model.ActionUpdate
	}
	_, err := c.store.InsertLogEntry(ctx, model.NewLogEntry{
		ItemID:         &item.ID,
		ItemName:       item.Name,
		Action:         action,
		QuantityChange: delta,
		Comment:        comment,
	})
	if err != nil {
		c.logger.Error("adjust quantity log failed", "op", "adjust_quantity", "id", item.ID, "error", err)
	}

	c.refresh(ctx, model.TableItems, model.TableLogs)
}

// DeleteItem removes the item and records a "delete" entry that keeps its
// name but no reference.
func (c *Controller) DeleteItem(ctx context.Context, item model.Item, comment string) {
	if err := c.store.DeleteItem(ctx, item.ID); err != nil {
		c.logger.Error("delete item failed", "op", "delete_item", "id", item.ID, "error", err)
		return
	}

	_, err := c.store.InsertLogEntry(ctx, model.NewLogEntry{
		ItemName: item.Name,
		Action:   model.ActionDelete,
		Comment:  comment,
	})
	if err != nil {
		c.logger.Error("delete item log failed", "op", "delete_item", "name", item.Name, "error", err)
	}

	c.refresh(ctx, model.TableItems, model.TableLogs)
}

// AddShoppingEntry inserts a shopping entry. Names are trimmed; an empty
// name is ignored. Quantities below one are raised to one.
func (c *Controller) AddShoppingEntry(ctx context.Context, name string, quantity int, memo string) {
	name = strings.TrimSpace(name)
	if name == "" {
		c.logger.Debug("add shopping entry ignored: empty name")
		return
	}

	_, err := c.store.InsertShoppingEntry(ctx, model.NewShoppingEntry{
		ItemName: name,
		Quantity: max(1, quantity),
		Memo:     memo,
	})
	if err != nil {
		c.logger.Error("add shopping entry failed", "op", "add_shopping_entry", "name", name, "error", err)
		return
	}

	c.refresh(ctx, model.TableShopping)
}

// ToggleShoppingComplete flips the completion flag of entry, stamping
// completed_at when it becomes complete and clearing it otherwise.
func (c *Controller) ToggleShoppingComplete(ctx context.Context, entry model.ShoppingEntry) {
	completed := !entry.IsCompleted
	patch := model.ShoppingPatch{IsCompleted: &completed}
	if completed {
		now := c.now()
		patch.CompletedAt = &now
	}

	if err := c.store.UpdateShoppingEntry(ctx, entry.ID, patch); err != nil {
		c.logger.Error("toggle shopping entry failed", "op", "toggle_shopping_complete", "id", entry.ID, "error", err)
		return
	}

	c.refresh(ctx, model.TableShopping)
}

func (c *Controller) DeleteShoppingEntry(ctx context.Context, id string) {
	if err := c.store.DeleteShoppingEntry(ctx, id); err != nil {
		c.logger.Error("delete shopping entry failed", "op", "delete_shopping_entry", "id", id, "error", err)
		return
	}

	c.refresh(ctx, model.TableShopping)
}

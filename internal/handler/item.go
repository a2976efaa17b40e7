package handler

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/dukerupert/homestock/internal/model"
	"github.com/dukerupert/homestock/internal/realtime"
	"github.com/dukerupert/homestock/internal/store"
)

type ItemHandler struct {
	broadcaster
	itemStore *store.ItemStore
	logger    *slog.Logger
}

func NewItemHandler(is *store.ItemStore, hub *realtime.Hub, logger *slog.Logger) *ItemHandler {
	return &ItemHandler{broadcaster: broadcaster{hub}, itemStore: is, logger: logger}
}

func (h *ItemHandler) List(w http.ResponseWriter, r *http.Request) {
	orders, ok := parseOrders(w, r)
	if !ok {
		return
	}
	items, err := h.itemStore.List(r.Context(), orders...)
	if err != nil {
		writeStoreError(w, h.logger, "list items", err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *ItemHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req model.NewItem
	if !decodeJSON(w, r, &req) {
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	if req.Quantity < 0 {
		writeError(w, http.StatusBadRequest, "quantity must not be negative")
		return
	}

	item, err := h.itemStore.Create(r.Context(), req)
	if err != nil {
		writeStoreError(w, h.logger, "create item", err)
		return
	}

	h.broadcast(model.TableItems, model.EventInsert, item.ID)

	writeJSON(w, http.StatusCreated, item)
}

func (h *ItemHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var patch model.ItemPatch
	if !decodeJSON(w, r, &patch) {
		return
	}
	if patch.Empty() {
		writeError(w, http.StatusBadRequest, "empty patch")
		return
	}
	if patch.Name != nil && strings.TrimSpace(*patch.Name) == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	if patch.Quantity != nil && *patch.Quantity < 0 {
		writeError(w, http.StatusBadRequest, "quantity must not be negative")
		return
	}

	if err := h.itemStore.Update(r.Context(), id, patch); err != nil {
		writeStoreError(w, h.logger, "update item", err)
		return
	}

	h.broadcast(model.TableItems, model.EventUpdate, id)

	w.WriteHeader(http.StatusNoContent)
}

func (h *ItemHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	if err := h.itemStore.Delete(r.Context(), id); err != nil {
		writeStoreError(w, h.logger, "delete item", err)
		return
	}

	h.broadcast(model.TableItems, model.EventDelete, id)
	// The foreign key nulls item_id on this item's log entries.
	h.broadcast(model.TableLogs, model.EventUpdate, "")

	w.WriteHeader(http.StatusNoContent)
}

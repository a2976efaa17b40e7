package handler

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/dukerupert/homestock/internal/model"
	"github.com/dukerupert/homestock/internal/realtime"
	"github.com/dukerupert/homestock/internal/store"
)

type ShoppingHandler struct {
	broadcaster
	shoppingStore *store.ShoppingStore
	logger        *slog.Logger
}

func NewShoppingHandler(ss *store.ShoppingStore, hub *realtime.Hub, logger *slog.Logger) *ShoppingHandler {
	return &ShoppingHandler{broadcaster: broadcaster{hub}, shoppingStore: ss, logger: logger}
}

func (h *ShoppingHandler) List(w http.ResponseWriter, r *http.Request) {
	orders, ok := parseOrders(w, r)
	if !ok {
		return
	}
	entries, err := h.shoppingStore.List(r.Context(), orders...)
	if err != nil {
		writeStoreError(w, h.logger, "list shopping", err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func (h *ShoppingHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req model.NewShoppingEntry
	if !decodeJSON(w, r, &req) {
		return
	}

	req.ItemName = strings.TrimSpace(req.ItemName)
	if req.ItemName == "" {
		writeError(w, http.StatusBadRequest, "item_name is required")
		return
	}
	if req.Quantity < 1 {
		writeError(w, http.StatusBadRequest, "quantity must be at least 1")
		return
	}

	entry, err := h.shoppingStore.Create(r.Context(), req)
	if err != nil {
		writeStoreError(w, h.logger, "create shopping", err)
		return
	}

	h.broadcast(model.TableShopping, model.EventInsert, entry.ID)

	writeJSON(w, http.StatusCreated, entry)
}

func (h *ShoppingHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var patch model.ShoppingPatch
	if !decodeJSON(w, r, &patch) {
		return
	}
	if patch.Empty() {
		writeError(w, http.StatusBadRequest, "empty patch")
		return
	}
	if patch.ItemName != nil && strings.TrimSpace(*patch.ItemName) == "" {
		writeError(w, http.StatusBadRequest, "item_name is required")
		return
	}
	if patch.Quantity != nil && *patch.Quantity < 1 {
		writeError(w, http.StatusBadRequest, "quantity must be at least 1")
		return
	}

	if err := h.shoppingStore.Update(r.Context(), id, patch); err != nil {
		writeStoreError(w, h.logger, "update shopping", err)
		return
	}

	h.broadcast(model.TableShopping, model.EventUpdate, id)

	w.WriteHeader(http.StatusNoContent)
}

func (h *ShoppingHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	if err := h.shoppingStore.Delete(r.Context(), id); err != nil {
		writeStoreError(w, h.logger, "delete shopping", err)
		return
	}

	h.broadcast(model.TableShopping, model.EventDelete, id)

	w.WriteHeader(http.StatusNoContent)
}

package handler

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/dukerupert/homestock/internal/model"
	"github.com/dukerupert/homestock/internal/realtime"
	"github.com/dukerupert/homestock/internal/store"
)

// LogHandler serves the append-only activity log: list and insert only.
type LogHandler struct {
	broadcaster
	logStore *store.LogStore
	logger   *slog.Logger
}

func NewLogHandler(ls *store.LogStore, hub *realtime.Hub, logger *slog.Logger) *LogHandler {
	return &LogHandler{broadcaster: broadcaster{hub}, logStore: ls, logger: logger}
}

func (h *LogHandler) List(w http.ResponseWriter, r *http.Request) {
	orders, ok := parseOrders(w, r)
	if !ok {
		return
	}
	entries, err := h.logStore.List(r.Context(), orders...)
	if err != nil {
		writeStoreError(w, h.logger, "list logs", err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func (h *LogHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req model.NewLogEntry
	if !decodeJSON(w, r, &req) {
		return
	}

	if strings.TrimSpace(req.ItemName) == "" {
		writeError(w, http.StatusBadRequest, "item_name is required")
		return
	}
	if !req.Action.Valid() {
		writeError(w, http.StatusBadRequest, "action must be add, update, remove, or delete")
		return
	}

	entry, err := h.logStore.Create(r.Context(), req)
	if err != nil {
		writeStoreError(w, h.logger, "create log", err)
		return
	}

	h.broadcast(model.TableLogs, model.EventInsert, entry.ID)

	writeJSON(w, http.StatusCreated, entry)
}

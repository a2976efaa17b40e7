package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/dukerupert/homestock/internal/model"
	"github.com/dukerupert/homestock/internal/realtime"
	"github.com/dukerupert/homestock/internal/store"
)

const maxBodyBytes = 64 << 10

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return false
	}
	return true
}

func parseOrders(w http.ResponseWriter, r *http.Request) ([]model.Order, bool) {
	orders, err := model.ParseOrders(r.URL.Query().Get("order"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return nil, false
	}
	return orders, true
}

// writeStoreError maps a store failure to a response and logs it.
func writeStoreError(w http.ResponseWriter, logger *slog.Logger, op string, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, store.ErrInvalidOrder):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, store.ErrConstraint):
		logger.Warn(op+" rejected", "error", err)
		writeError(w, http.StatusUnprocessableEntity, "rejected by store constraint")
	default:
		logger.Error(op+" failed", "error", err)
		writeError(w, http.StatusInternalServerError, op+" failed")
	}
}

type broadcaster struct {
	hub *realtime.Hub
}

func (b broadcaster) broadcast(table model.Table, event model.Event, id string) {
	if b.hub != nil {
		b.hub.Broadcast(realtime.NewMessage(table, event, id))
	}
}

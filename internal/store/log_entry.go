package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/dukerupert/homestock/internal/model"
	"github.com/google/uuid"
)

// LogStore appends and lists audit entries. It deliberately has no update
// or delete methods.
type LogStore struct {
	db  *sql.DB
	now func() time.Time
}

func NewLogStore(db *sql.DB) *LogStore {
	return &LogStore{db: db, now: utcNow}
}

func scanLogEntry(s scanner) (*model.LogEntry, error) {
	var e model.LogEntry
	var itemID sql.NullString
	var action string
	err := s.Scan(&e.ID, &itemID, &e.ItemName, &action, &e.QuantityChange, &e.Comment, &e.CreatedAt)
	if err != nil {
		return nil, err
	}
	e.Action = model.Action(action)
	if itemID.Valid {
		e.ItemID = &itemID.String
	}
	return &e, nil
}

const logCols = `id, item_id, item_name, action, quantity_change, comment, created_at`

var logOrderCols = map[string]bool{
	"created_at": true,
	"item_name":  true,
	"action":     true,
}

func (s *LogStore) List(ctx context.Context, orders ...model.Order) ([]model.LogEntry, error) {
	clause, err := orderBy(orders, logOrderCols, model.LogOrder)
	if err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, `SELECT `+logCols+` FROM logs`+clause)
	if err != nil {
		return nil, wrap("list logs", err)
	}
	defer rows.Close()

	entries := []model.LogEntry{}
	for rows.Next() {
		e, err := scanLogEntry(rows)
		if err != nil {
			return nil, wrap("scan log", err)
		}
		entries = append(entries, *e)
	}
	return entries, rows.Err()
}

func (s *LogStore) GetByID(ctx context.Context, id string) (*model.LogEntry, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+logCols+` FROM logs WHERE id = ?`, id)
	e, err := scanLogEntry(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, wrap("get log", err)
	}
	return e, nil
}

func (s *LogStore) Create(ctx context.Context, in model.NewLogEntry) (*model.LogEntry, error) {
	var itemID sql.NullString
	if in.ItemID != nil {
		itemID = sql.NullString{String: *in.ItemID, Valid: true}
	}

	id := uuid.NewString()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO logs (id, item_id, item_name, action, quantity_change, comment, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id, itemID, in.ItemName, string(in.Action), in.QuantityChange, in.Comment, s.now(),
	)
	if err != nil {
		return nil, wrap("insert log", err)
	}
	return s.GetByID(ctx, id)
}

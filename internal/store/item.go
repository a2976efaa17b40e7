package store

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/dukerupert/homestock/internal/model"
	"github.com/google/uuid"
)

type ItemStore struct {
	db  *sql.DB
	now func() time.Time
}

func NewItemStore(db *sql.DB) *ItemStore {
	return &ItemStore{db: db, now: utcNow}
}

func scanItem(s scanner) (*model.Item, error) {
	var item model.Item
	err := s.Scan(&item.ID, &item.Name, &item.Quantity, &item.Category, &item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &item, nil
}

const itemCols = `id, name, quantity, category, created_at, updated_at`

var itemOrderCols = map[string]bool{
	"created_at": true,
	"updated_at": true,
	"name":       true,
	"quantity":   true,
	"category":   true,
}

func (s *ItemStore) List(ctx context.Context, orders ...model.Order) ([]model.Item, error) {
	clause, err := orderBy(orders, itemOrderCols, model.ItemOrder)
	if err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, `SELECT `+itemCols+` FROM items`+clause)
	if err != nil {
		return nil, wrap("list items", err)
	}
	defer rows.Close()

	items := []model.Item{}
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, wrap("scan item", err)
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}

func (s *ItemStore) GetByID(ctx context.Context, id string) (*model.Item, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+itemCols+` FROM items WHERE id = ?`, id)
	item, err := scanItem(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, wrap("get item", err)
	}
	return item, nil
}

func (s *ItemStore) Create(ctx context.Context, in model.NewItem) (*model.Item, error) {
	id := uuid.NewString()
	now := s.now()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO items (id, name, quantity, category, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)`,
		id, strings.TrimSpace(in.Name), in.Quantity, in.Category, now, now,
	)
	if err != nil {
		return nil, wrap("insert item", err)
	}
	return s.GetByID(ctx, id)
}

// Update applies patch to the item. updated_at is refreshed even when the
// patch does not carry it.
func (s *ItemStore) Update(ctx context.Context, id string, patch model.ItemPatch) error {
	var sets []string
	var args []any
	if patch.Name != nil {
		sets = append(sets, "name = ?")
		args = append(args, strings.TrimSpace(*patch.Name))
	}
	if patch.Quantity != nil {
		sets = append(sets, "quantity = ?")
		args = append(args, *patch.Quantity)
	}
	if patch.Category != nil {
		sets = append(sets, "category = ?")
		args = append(args, *patch.Category)
	}
	updatedAt := s.now()
	if patch.UpdatedAt != nil {
		updatedAt = patch.UpdatedAt.UTC()
	}
	sets = append(sets, "updated_at = ?")
	args = append(args, updatedAt, id)

	result, err := s.db.ExecContext(ctx, `UPDATE items SET `+strings.Join(sets, ", ")+` WHERE id = ?`, args...)
	if err != nil {
		return wrap("update item", err)
	}
	return requireRow(result, "update item")
}

func (s *ItemStore) Delete(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM items WHERE id = ?`, id)
	if err != nil {
		return wrap("delete item", err)
	}
	return requireRow(result, "delete item")
}

func requireRow(result sql.Result, op string) error {
	n, err := result.RowsAffected()
	if err != nil {
		return wrap(op+": rows affected", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

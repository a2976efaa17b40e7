package store

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/dukerupert/homestock/internal/model"
	"github.com/google/uuid"
)

type ShoppingStore struct {
	db  *sql.DB
	now func() time.Time
}

func NewShoppingStore(db *sql.DB) *ShoppingStore {
	return &ShoppingStore{db: db, now: utcNow}
}

func scanShoppingEntry(s scanner) (*model.ShoppingEntry, error) {
	var e model.ShoppingEntry
	var completed int
	var completedAt sql.NullTime
	err := s.Scan(&e.ID, &e.ItemName, &e.Quantity, &completed, &e.Memo, &e.CreatedAt, &completedAt)
	if err != nil {
		return nil, err
	}
	e.IsCompleted = completed != 0
	if completedAt.Valid {
		e.CompletedAt = &completedAt.Time
	}
	return &e, nil
}

const shoppingCols = `id, item_name, quantity, is_completed, memo, created_at, completed_at`

var shoppingOrderCols = map[string]bool{
	"is_completed": true,
	"created_at":   true,
	"completed_at": true,
	"item_name":    true,
}

func (s *ShoppingStore) List(ctx context.Context, orders ...model.Order) ([]model.ShoppingEntry, error) {
	clause, err := orderBy(orders, shoppingOrderCols, model.ShoppingOrder)
	if err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, `SELECT `+shoppingCols+` FROM shopping_list`+clause)
	if err != nil {
		return nil, wrap("list shopping", err)
	}
	defer rows.Close()

	entries := []model.ShoppingEntry{}
	for rows.Next() {
		e, err := scanShoppingEntry(rows)
		if err != nil {
			return nil, wrap("scan shopping", err)
		}
		entries = append(entries, *e)
	}
	return entries, rows.Err()
}

func (s *ShoppingStore) GetByID(ctx context.Context, id string) (*model.ShoppingEntry, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+shoppingCols+` FROM shopping_list WHERE id = ?`, id)
	e, err := scanShoppingEntry(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, wrap("get shopping", err)
	}
	return e, nil
}

func (s *ShoppingStore) Create(ctx context.Context, in model.NewShoppingEntry) (*model.ShoppingEntry, error) {
	id := uuid.NewString()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO shopping_list (id, item_name, quantity, memo, created_at) VALUES (?, ?, ?, ?, ?)`,
		id, strings.TrimSpace(in.ItemName), in.Quantity, in.Memo, s.now(),
	)
	if err != nil {
		return nil, wrap("insert shopping", err)
	}
	return s.GetByID(ctx, id)
}

// Update applies patch. Patching is_completed always rewrites completed_at:
// the given timestamp (or now) when completing, NULL when reopening.
func (s *ShoppingStore) Update(ctx context.Context, id string, patch model.ShoppingPatch) error {
	if patch.Empty() {
		return nil
	}

	var sets []string
	var args []any
	if patch.ItemName != nil {
		sets = append(sets, "item_name = ?")
		args = append(args, strings.TrimSpace(*patch.ItemName))
	}
	if patch.Quantity != nil {
		sets = append(sets, "quantity = ?")
		args = append(args, *patch.Quantity)
	}
	if patch.Memo != nil {
		sets = append(sets, "memo = ?")
		args = append(args, *patch.Memo)
	}
	if patch.IsCompleted != nil {
		var completedAt sql.NullTime
		if *patch.IsCompleted {
			at := s.now()
			if patch.CompletedAt != nil {
				at = patch.CompletedAt.UTC()
			}
			completedAt = sql.NullTime{Time: at, Valid: true}
		}
		sets = append(sets, "is_completed = ?", "completed_at = ?")
		args = append(args, boolToInt(*patch.IsCompleted), completedAt)
	}
	args = append(args, id)

	result, err := s.db.ExecContext(ctx, `UPDATE shopping_list SET `+strings.Join(sets, ", ")+` WHERE id = ?`, args...)
	if err != nil {
		return wrap("update shopping", err)
	}
	return requireRow(result, "update shopping")
}

func (s *ShoppingStore) Delete(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM shopping_list WHERE id = ?`, id)
	if err != nil {
		return wrap("delete shopping", err)
	}
	return requireRow(result, "delete shopping")
}

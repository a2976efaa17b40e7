package model

import "time"

// ShoppingEntry is a pending or completed purchase request.
// CompletedAt is non-nil exactly when IsCompleted is true.
type ShoppingEntry struct {
	ID          string     `json:"id"`
	ItemName    string     `json:"item_name"`
	Quantity    int        `json:"quantity"`
	IsCompleted bool       `json:"is_completed"`
	Memo        string     `json:"memo"`
	CreatedAt   time.Time  `json:"created_at"`
	CompletedAt *time.Time `json:"completed_at"`
}

type NewShoppingEntry struct {
	ItemName string `json:"item_name"`
	Quantity int    `json:"quantity"`
	Memo     string `json:"memo"`
}

// ShoppingPatch lists the shopping columns a caller may change. When
// IsCompleted is set the store derives completed_at from it; CompletedAt
// only supplies the timestamp for a transition to complete.
type ShoppingPatch struct {
	ItemName    *string    `json:"item_name,omitempty"`
	Quantity    *int       `json:"quantity,omitempty"`
	Memo        *string    `json:"memo,omitempty"`
	IsCompleted *bool      `json:"is_completed,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

func (p ShoppingPatch) Empty() bool {
	return p.ItemName == nil && p.Quantity == nil && p.Memo == nil && p.IsCompleted == nil
}

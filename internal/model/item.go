package model

import "time"

// Item is a trackable household inventory unit.
type Item struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Quantity  int       `json:"quantity"`
	Category  string    `json:"category"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type NewItem struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
	Category string `json:"category"`
}

// ItemPatch lists the item columns a caller may change. Nil fields are left untouched.
type ItemPatch struct {
	Name      *string    `json:"name,omitempty"`
	Quantity  *int       `json:"quantity,omitempty"`
	Category  *string    `json:"category,omitempty"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

func (p ItemPatch) Empty() bool {
	return p.Name == nil && p.Quantity == nil && p.Category == nil && p.UpdatedAt == nil
}

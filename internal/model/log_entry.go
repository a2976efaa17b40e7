package model

import "time"

type Action string

const (
	ActionAdd    Action = "add"
	ActionUpdate Action = "update"
	ActionRemove Action = "remove"
	ActionDelete Action = "delete"
)

func (a Action) Valid() bool {
	switch a {
	case ActionAdd, ActionUpdate, ActionRemove, ActionDelete:
		return true
	}
	return false
}

// LogEntry is an immutable audit record of one action taken against an item.
// ItemID is nil once the item it refers to has been deleted.
type LogEntry struct {
	ID             string    `json:"id"`
	ItemID         *string   `json:"item_id"`
	ItemName       string    `json:"item_name"`
	Action         Action    `json:"action"`
	QuantityChange int       `json:"quantity_change"`
	Comment        string    `json:"comment"`
	CreatedAt      time.Time `json:"created_at"`
}

type NewLogEntry struct {
	ItemID         *string `json:"item_id"`
	ItemName       string  `json:"item_name"`
	Action         Action  `json:"action"`
	QuantityChange int     `json:"quantity_change"`
	Comment        string  `json:"comment"`
}

package model

import "fmt"

// Table names a collection held by the store.
type Table string

const (
	TableItems    Table = "items"
	TableLogs     Table = "logs"
	TableShopping Table = "shopping_list"
)

// Tables lists every collection in a stable order.
var Tables = []Table{TableItems, TableLogs, TableShopping}

func ParseTable(s string) (Table, error) {
	for _, t := range Tables {
		if string(t) == s {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown table %q", s)
}

// Event is the kind of row-level change reported by the change feed.
type Event string

const (
	EventInsert Event = "INSERT"
	EventUpdate Event = "UPDATE"
	EventDelete Event = "DELETE"
	EventAll    Event = "*"
)

func ParseEvent(s string) (Event, error) {
	switch Event(s) {
	case EventInsert, EventUpdate, EventDelete, EventAll:
		return Event(s), nil
	case "":
		return EventAll, nil
	}
	return "", fmt.Errorf("unknown event %q", s)
}

// Matches reports whether a change of kind e passes the filter f.
func (f Event) Matches(e Event) bool {
	return f == EventAll || f == e
}

// Change is a notification that some row in Table changed. RowID is
// informational; receivers must not rely on it.
type Change struct {
	Table Table  `json:"table"`
	Event Event  `json:"event"`
	RowID string `json:"id,omitempty"`
}

package model

import (
	"fmt"
	"strings"
)

// Order is one term of a fetch ordering, written "column.asc" or "column.desc".
type Order struct {
	Column string
	Desc   bool
}

func Asc(column string) Order  { return Order{Column: column} }
func Desc(column string) Order { return Order{Column: column, Desc: true} }

func (o Order) String() string {
	if o.Desc {
		return o.Column + ".desc"
	}
	return o.Column + ".asc"
}

// FormatOrders joins orders into the comma separated query form.
func FormatOrders(orders []Order) string {
	parts := make([]string, len(orders))
	for i, o := range orders {
		parts[i] = o.String()
	}
	return strings.Join(parts, ",")
}

// ParseOrders parses "col.dir,col.dir". A bare column sorts ascending.
func ParseOrders(s string) ([]Order, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	var orders []Order
	for _, part := range strings.Split(s, ",") {
		col, dir, _ := strings.Cut(strings.TrimSpace(part), ".")
		if col == "" {
			return nil, fmt.Errorf("empty order column in %q", s)
		}
		switch dir {
		case "", "asc":
			orders = append(orders, Asc(col))
		case "desc":
			orders = append(orders, Desc(col))
		default:
			return nil, fmt.Errorf("invalid order direction %q", dir)
		}
	}
	return orders, nil
}

// Default orderings for each collection.
var (
	ItemOrder     = []Order{Desc("created_at")}
	LogOrder      = []Order{Desc("created_at")}
	ShoppingOrder = []Order{Asc("is_completed"), Desc("created_at")}
)

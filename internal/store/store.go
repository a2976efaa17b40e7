package store

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dukerupert/homestock/internal/model"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

var (
	// ErrNotFound is returned by mutations that matched no row.
	ErrNotFound = errors.New("not found")
	// ErrConstraint wraps store-side validation rejections.
	ErrConstraint = errors.New("constraint violation")
	// ErrInvalidOrder is returned when a fetch names a column that cannot be sorted on.
	ErrInvalidOrder = errors.New("invalid order")
)

type scanner interface{ Scan(...any) error }

func utcNow() time.Time { return time.Now().UTC() }

// wrap annotates err with op and tags SQLite constraint failures with ErrConstraint.
func wrap(op string, err error) error {
	var se *sqlite.Error
	if errors.As(err, &se) && se.Code()&0xff == sqlite3.SQLITE_CONSTRAINT {
		return fmt.Errorf("%s: %w: %v", op, ErrConstraint, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

// orderBy renders an ORDER BY clause from orders restricted to allowed
// columns. Rows that tie sort newest-inserted first.
func orderBy(orders []model.Order, allowed map[string]bool, fallback []model.Order) (string, error) {
	if len(orders) == 0 {
		orders = fallback
	}
	terms := make([]string, 0, len(orders)+1)
	for _, o := range orders {
		if !allowed[o.Column] {
			return "", fmt.Errorf("%w: column %q", ErrInvalidOrder, o.Column)
		}
		dir := "ASC"
		if o.Desc {
			dir = "DESC"
		}
		terms = append(terms, o.Column+" "+dir)
	}
	terms = append(terms, "rowid DESC")
	return " ORDER BY " + strings.Join(terms, ", "), nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

package view

import (
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/dukerupert/homestock/internal/model"
	"github.com/dustin/go-humanize"
)

type ShoppingDraft struct {
	Name     string
	Quantity int
	Memo     string
}

func newShoppingDraft() ShoppingDraft {
	return ShoppingDraft{Quantity: 1}
}

// ShoppingView is the shopping list tab: an add form plus per-row
// toggle and delete.
type ShoppingView struct {
	ops      ShoppingOps
	dispatch Dispatcher

	formOpen bool
	draft    ShoppingDraft
}

func NewShoppingView(ops ShoppingOps, dispatch Dispatcher) *ShoppingView {
	return &ShoppingView{ops: ops, dispatch: dispatch, draft: newShoppingDraft()}
}

func (v *ShoppingView) FormOpen() bool { return v.formOpen }
func (v *ShoppingView) Draft() ShoppingDraft { return v.draft }

func (v *ShoppingView) OpenForm() {
	v.formOpen = true
}

func (v *ShoppingView) CancelForm() {
	v.formOpen = false
	v.draft = newShoppingDraft()
}

func (v *ShoppingView) SetName(name string) error {
	if !v.formOpen {
		return ErrNoForm
	}
	v.draft.Name = name
	return nil
}

func (v *ShoppingView) SetQuantity(q int) error {
	if !v.formOpen {
		return ErrNoForm
	}
	if q < 1 {
		return fmt.Errorf("quantity must be at least 1")
	}
	v.draft.Quantity = q
	return nil
}

func (v *ShoppingView) SetMemo(memo string) error {
	if !v.formOpen {
		return ErrNoForm
	}
	v.draft.Memo = memo
	return nil
}

func (v *ShoppingView) Submit() error {
	if !v.formOpen {
		return ErrNoForm
	}
	if strings.TrimSpace(v.draft.Name) == "" {
		return ErrNameRequired
	}
	d := v.draft
	v.dispatch(func(ctx context.Context) {
		v.ops.AddShoppingEntry(ctx, d.Name, d.Quantity, d.Memo)
	})
	v.CancelForm()
	return nil
}

func (v *ShoppingView) Toggle(entry model.ShoppingEntry) {
	v.dispatch(func(ctx context.Context) {
		v.ops.ToggleShoppingComplete(ctx, entry)
	})
}

func (v *ShoppingView) Delete(entry model.ShoppingEntry) {
	id := entry.ID
	v.dispatch(func(ctx context.Context) {
		v.ops.DeleteShoppingEntry(ctx, id)
	})
}

// Render lists pending entries, then completed ones. Row numbers are
// positions in entries so they stay valid as row references.
func (v *ShoppingView) Render(w io.Writer, entries []model.ShoppingEntry, now time.Time) {
	if v.formOpen {
		fmt.Fprintln(w, "New shopping entry")
		fmt.Fprintf(w, "  name:     %s\n", v.draft.Name)
		fmt.Fprintf(w, "  quantity: %d\n", v.draft.Quantity)
		fmt.Fprintf(w, "  memo:     %s\n\n", v.draft.Memo)
	}

	if len(entries) == 0 {
		if !v.formOpen {
			fmt.Fprintln(w, "Shopping list is empty. Type 'new' to add something.")
		}
		return
	}

	var pending, done []int
	for i, e := range entries {
		if e.IsCompleted {
			done = append(done, i)
		} else {
			pending = append(pending, i)
		}
	}

	section := func(title string, rows []int, stamp func(model.ShoppingEntry) time.Time) {
		fmt.Fprintf(w, "%s (%d)\n", title, len(rows))
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		for _, i := range rows {
			e := entries[i]
			fmt.Fprintf(tw, "  %d\t%s\tx%d\t%s\t%s\n", i+1, fit(e.ItemName), e.Quantity,
				humanize.RelTime(stamp(e), now, "ago", "from now"), e.Memo)
		}
		tw.Flush()
	}

	if len(pending) > 0 {
		section("To buy", pending, func(e model.ShoppingEntry) time.Time { return e.CreatedAt })
	}
	if len(done) > 0 {
		if len(pending) > 0 {
			fmt.Fprintln(w)
		}
		section("Bought", done, func(e model.ShoppingEntry) time.Time {
			if e.CompletedAt != nil {
				return *e.CompletedAt
			}
			return e.CreatedAt
		})
	}
}

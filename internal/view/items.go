package view

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/dukerupert/homestock/internal/category"
	"github.com/dukerupert/homestock/internal/model"
	"github.com/dustin/go-humanize"
)

// Categories are the presets offered when adding an item. Any other text is
// accepted too.
var Categories = category.Presets

const (
	commentUsed      = "Used"
	commentRestocked = "Restocked"
	commentDeleted   = "Deleted item"
)

type ItemDraft struct {
	Name     string
	Quantity int
	Category string
	Comment  string
}

func newItemDraft() ItemDraft {
	return ItemDraft{Quantity: 1}
}

// ItemsView is the inventory tab: an add form, per-row use and restock, and
// a two-step delete with an optional comment.
type ItemsView struct {
	ops      ItemOps
	dispatch Dispatcher

	formOpen      bool
	draft         ItemDraft
	editingID     string
	actionComment string
}

func NewItemsView(ops ItemOps, dispatch Dispatcher) *ItemsView {
	return &ItemsView{ops: ops, dispatch: dispatch, draft: newItemDraft()}
}

func (v *ItemsView) FormOpen() bool { return v.formOpen }
func (v *ItemsView) Draft() ItemDraft { return v.draft }
func (v *ItemsView) Editing() string { return v.editingID }

// OpenForm opens the add form, keeping any draft already in progress.
func (v *ItemsView) OpenForm() {
	v.formOpen = true
}

func (v *ItemsView) CancelForm() {
	v.formOpen = false
	v.draft = newItemDraft()
}

func (v *ItemsView) SetName(name string) error {
	if !v.formOpen {
		return ErrNoForm
	}
	v.draft.Name = name
	return nil
}

func (v *ItemsView) SetQuantity(q int) error {
	if !v.formOpen {
		return ErrNoForm
	}
	if q < 0 {
		return fmt.Errorf("quantity must not be negative")
	}
	v.draft.Quantity = q
	return nil
}

// SetCategory sets the draft category. A number picks from Categories and
// "auto" takes the suggestion for the draft name.
func (v *ItemsView) SetCategory(value string) error {
	if !v.formOpen {
		return ErrNoForm
	}
	value = strings.TrimSpace(value)
	if n, err := strconv.Atoi(value); err == nil {
		if n < 1 || n > len(Categories) {
			return fmt.Errorf("category number must be 1-%d", len(Categories))
		}
		value = Categories[n-1]
	}
	if strings.EqualFold(value, "auto") {
		value = category.Suggest(v.draft.Name)
		if value == "" {
			return fmt.Errorf("no category suggestion for %q", v.draft.Name)
		}
	}
	v.draft.Category = value
	return nil
}

func (v *ItemsView) SetComment(comment string) error {
	if !v.formOpen {
		return ErrNoForm
	}
	v.draft.Comment = comment
	return nil
}

// Submit hands the draft to AddItem, then resets and closes the form
// without waiting for the add to finish.
func (v *ItemsView) Submit() error {
	if !v.formOpen {
		return ErrNoForm
	}
	if strings.TrimSpace(v.draft.Name) == "" {
		return ErrNameRequired
	}
	d := v.draft
	v.dispatch(func(ctx context.Context) {
		v.ops.AddItem(ctx, d.Name, d.Quantity, d.Category, d.Comment)
	})
	v.CancelForm()
	return nil
}

// SetActionComment sets the comment used by the next use, restock or delete.
func (v *ItemsView) SetActionComment(comment string) {
	v.actionComment = comment
}

func (v *ItemsView) Use(item model.Item) error {
	if item.Quantity == 0 {
		return ErrOutOfStock
	}
	v.adjust(item, -1, commentUsed)
	return nil
}

func (v *ItemsView) Restock(item model.Item) {
	v.adjust(item, 1, commentRestocked)
}

func (v *ItemsView) adjust(item model.Item, delta int, fallback string) {
	comment := orDefault(v.actionComment, fallback)
	v.dispatch(func(ctx context.Context) {
		v.ops.AdjustQuantity(ctx, item, delta, comment)
	})
	v.actionComment = ""
	v.editingID = ""
}

// BeginDelete marks item for deletion pending ConfirmDelete.
func (v *ItemsView) BeginDelete(item model.Item) {
	v.editingID = item.ID
	v.actionComment = ""
}

func (v *ItemsView) CancelDelete() {
	v.editingID = ""
	v.actionComment = ""
}

// ConfirmDelete deletes the item marked by BeginDelete. items is the
// collection currently shown; the mark is dropped if the item is gone.
func (v *ItemsView) ConfirmDelete(items []model.Item) error {
	if v.editingID == "" {
		return ErrNothingPending
	}
	var target *model.Item
	for i := range items {
		if items[i].ID == v.editingID {
			target = &items[i]
			break
		}
	}
	if target == nil {
		v.CancelDelete()
		return ErrNoSuchRow
	}

	item := *target
	comment := orDefault(v.actionComment, commentDeleted)
	v.dispatch(func(ctx context.Context) {
		v.ops.DeleteItem(ctx, item, comment)
	})
	v.CancelDelete()
	return nil
}

func (v *ItemsView) Render(w io.Writer, items []model.Item, now time.Time) {
	if v.formOpen {
		fmt.Fprintln(w, "New item")
		fmt.Fprintf(w, "  name:     %s\n", v.draft.Name)
		fmt.Fprintf(w, "  quantity: %d\n", v.draft.Quantity)
		fmt.Fprintf(w, "  category: %s\n", v.categoryLine())
		fmt.Fprintf(w, "  comment:  %s\n", v.draft.Comment)
		fmt.Fprintf(w, "  presets:  %s\n\n", presetList())
	}

	if len(items) == 0 {
		if !v.formOpen {
			fmt.Fprintln(w, "No items yet. Type 'new' to add one.")
		}
		return
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tNAME\tQTY\tCATEGORY\tUPDATED")
	for i, item := range items {
		fmt.Fprintf(tw, "%d\t%s\t%d\t%s\t%s\n", i+1, fit(item.Name), item.Quantity, item.Category,
			humanize.RelTime(item.UpdatedAt, now, "ago", "from now"))
		if item.ID == v.editingID {
			fmt.Fprintf(tw, "\t  delete %q? 'confirm' or 'cancel'\t\t\t\n", item.Name)
		}
	}
	tw.Flush()

	if v.actionComment != "" {
		fmt.Fprintf(w, "\nnote: %s\n", v.actionComment)
	}
}

func (v *ItemsView) categoryLine() string {
	if v.draft.Category != "" {
		return v.draft.Category
	}
	if s := category.Suggest(v.draft.Name); s != "" {
		return fmt.Sprintf("(none, 'category auto' for %s)", s)
	}
	return "(none)"
}

func presetList() string {
	parts := make([]string, len(Categories))
	for i, c := range Categories {
		parts[i] = fmt.Sprintf("%d=%s", i+1, c)
	}
	return strings.Join(parts, " ")
}

package view

import (
	"fmt"
	"io"
	"time"

	"github.com/dukerupert/homestock/internal/model"
)

// Describe renders entry as a one-line sentence.
func Describe(entry model.LogEntry) string {
	n := entry.QuantityChange
	if n < 0 {
		n = -n
	}
	switch entry.Action {
	case model.ActionAdd:
		return fmt.Sprintf("Added %q", entry.ItemName)
	case model.ActionRemove:
		return fmt.Sprintf("Used %d of %q", n, entry.ItemName)
	case model.ActionUpdate:
		if entry.QuantityChange > 0 {
			return fmt.Sprintf("Added %d to %q", n, entry.ItemName)
		}
		return fmt.Sprintf("Reduced %q by %d", entry.ItemName, n)
	case model.ActionDelete:
		return fmt.Sprintf("Deleted %q", entry.ItemName)
	default:
		return "Performed an action"
	}
}

// DateGroup holds the entries created on one calendar day.
type DateGroup struct {
	Date    time.Time
	Entries []model.LogEntry
}

// GroupByDate splits entries into runs sharing a calendar day in loc. The
// order of entries, and so of the groups, is preserved.
func GroupByDate(entries []model.LogEntry, loc *time.Location) []DateGroup {
	var groups []DateGroup
	for _, e := range entries {
		t := e.CreatedAt.In(loc)
		day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
		if n := len(groups); n > 0 && groups[n-1].Date.Equal(day) {
			groups[n-1].Entries = append(groups[n-1].Entries, e)
			continue
		}
		groups = append(groups, DateGroup{Date: day, Entries: []model.LogEntry{e}})
	}
	return groups
}

// LogView is the read-only activity tab.
type LogView struct {
	loc *time.Location
}

func NewLogView(loc *time.Location) *LogView {
	if loc == nil {
		loc = time.Local
	}
	return &LogView{loc: loc}
}

func (v *LogView) Render(w io.Writer, entries []model.LogEntry) {
	if len(entries) == 0 {
		fmt.Fprintln(w, "No activity yet.")
		return
	}
	for i, g := range GroupByDate(entries, v.loc) {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintln(w, g.Date.Format("Monday, January 2, 2006"))
		for _, e := range g.Entries {
			fmt.Fprintf(w, "  %s  %s\n", e.CreatedAt.In(v.loc).Format("15:04"), Describe(e))
			if e.Comment != "" {
				fmt.Fprintf(w, "         %s\n", e.Comment)
			}
		}
	}
}

// Package console drives a view.App from line-oriented terminal input.
package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"sync"

	"github.com/dukerupert/homestock/internal/model"
	"github.com/dukerupert/homestock/internal/view"
	"github.com/mattn/go-isatty"
)

const clearScreen = "\033[H\033[2J"

const helpText = `items | log | shop          switch tab
refresh                     reload everything
new                         open the add form on this tab
name|qty <value>            edit the open form
category <value|1-5|auto>   item form category
comment <text>              item form comment
memo <text>                 shopping form memo
save | cancel               submit or discard the form (cancel also drops a pending delete)
note <text>                 comment for the next use, restock or delete
use N | restock N           take one from or add one to item N
rm N                        delete item N (then confirm) or shopping entry N
confirm                     confirm a pending item delete
done N                      toggle shopping entry N
help | quit`

var errUnknownCommand = errors.New("unknown command")

// Console reads commands and redraws the App after each one. Redraw may
// also be called from other goroutines when the data changes; the App must
// then use an asynchronous Dispatcher, since commands hold the screen lock.
type Console struct {
	app    *view.App
	in     io.Reader
	out    io.Writer
	tty    bool
	logger *slog.Logger

	mu      sync.Mutex
	message string
}

func New(app *view.App, in io.Reader, out io.Writer, logger *slog.Logger) *Console {
	return &Console{
		app:    app,
		in:     in,
		out:    out,
		tty:    isTerminal(out),
		logger: logger,
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(interface{ Fd() uintptr })
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Run processes input until quit, end of input, or ctx is done.
func (c *Console) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	lines := make(chan string)
	readErr := make(chan error, 1)
	go func() {
		scanner := bufio.NewScanner(c.in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		readErr <- scanner.Err()
	}()

	c.Redraw()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err := <-readErr:
			if err != nil {
				return fmt.Errorf("read input: %w", err)
			}
			return nil
		case line := <-lines:
			quit := c.handle(line)
			if quit {
				return nil
			}
			c.Redraw()
		}
	}
}

func (c *Console) handle(line string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	quit, err := c.exec(line)
	if err != nil {
		c.logger.Debug("command failed", "line", line, "error", err)
		c.message = "error: " + err.Error()
	}
	return quit
}

// Redraw renders the App and the last status message.
func (c *Console) Redraw() {
	c.mu.Lock()
	defer c.mu.Unlock()

	var b strings.Builder
	if c.tty {
		b.WriteString(clearScreen)
	}
	c.app.Render(&b)
	if c.message != "" {
		b.WriteString("\n" + c.message + "\n")
	}
	b.WriteString("> ")
	io.WriteString(c.out, b.String())
}

// Exec runs a single command line. It reports whether the line asked to quit.
func (c *Console) Exec(line string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.exec(line)
}

func (c *Console) exec(line string) (bool, error) {
	c.message = ""
	cmd, arg, _ := strings.Cut(strings.TrimSpace(line), " ")
	arg = strings.TrimSpace(arg)
	app := c.app
	tab := app.Active()

	switch strings.ToLower(cmd) {
	case "":
		return false, nil
	case "quit", "exit", "q":
		return true, nil
	case "help", "?":
		c.message = helpText
	case "items":
		app.SetTab(view.TabItems)
	case "log":
		app.SetTab(view.TabLog)
	case "shop", "shopping":
		app.SetTab(view.TabShopping)
	case "refresh":
		app.Refresh()
		c.message = "refreshing"

	case "new":
		switch tab {
		case view.TabItems:
			app.Items.OpenForm()
		case view.TabShopping:
			app.Shopping.OpenForm()
		default:
			return false, fmt.Errorf("nothing to add on the %s tab", tab)
		}
	case "name":
		if tab == view.TabShopping {
			return false, app.Shopping.SetName(arg)
		}
		return false, app.Items.SetName(arg)
	case "qty", "quantity":
		n, err := strconv.Atoi(arg)
		if err != nil {
			return false, fmt.Errorf("quantity must be a number")
		}
		if tab == view.TabShopping {
			return false, app.Shopping.SetQuantity(n)
		}
		return false, app.Items.SetQuantity(n)
	case "category":
		return false, app.Items.SetCategory(arg)
	case "comment":
		return false, app.Items.SetComment(arg)
	case "memo":
		return false, app.Shopping.SetMemo(arg)
	case "save":
		if tab == view.TabShopping {
			return false, app.Shopping.Submit()
		}
		return false, app.Items.Submit()
	case "cancel":
		if tab == view.TabShopping {
			app.Shopping.CancelForm()
			return false, nil
		}
		app.Items.CancelForm()
		app.Items.CancelDelete()

	case "note":
		app.Items.SetActionComment(arg)
	case "use":
		item, err := c.item(arg)
		if err != nil {
			return false, err
		}
		return false, app.Items.Use(item)
	case "restock":
		item, err := c.item(arg)
		if err != nil {
			return false, err
		}
		app.Items.Restock(item)
	case "rm", "delete":
		if tab == view.TabShopping {
			entry, err := c.shopping(arg)
			if err != nil {
				return false, err
			}
			app.Shopping.Delete(entry)
			return false, nil
		}
		item, err := c.item(arg)
		if err != nil {
			return false, err
		}
		app.Items.BeginDelete(item)
	case "confirm":
		return false, app.ConfirmDelete()
	case "done":
		entry, err := c.shopping(arg)
		if err != nil {
			return false, err
		}
		app.Shopping.Toggle(entry)

	default:
		return false, fmt.Errorf("%w %q, type 'help'", errUnknownCommand, cmd)
	}
	return false, nil
}

func row(arg string) (int, error) {
	n, err := strconv.Atoi(arg)
	if err != nil {
		return 0, fmt.Errorf("expected a row number, got %q", arg)
	}
	return n, nil
}

func (c *Console) item(arg string) (model.Item, error) {
	n, err := row(arg)
	if err != nil {
		return model.Item{}, err
	}
	return c.app.ItemAt(n)
}

func (c *Console) shopping(arg string) (model.ShoppingEntry, error) {
	n, err := row(arg)
	if err != nil {
		return model.ShoppingEntry{}, err
	}
	return c.app.ShoppingAt(n)
}

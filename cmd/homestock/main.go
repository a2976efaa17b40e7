// Command homestock is the terminal client for a household inventory,
// activity log and shopping list kept in sync across devices.
//
// By default it talks to a homestockd instance at HOMESTOCK_URL. With
// -local it opens a SQLite database directly instead.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dukerupert/homestock/internal/config"
	"github.com/dukerupert/homestock/internal/console"
	"github.com/dukerupert/homestock/internal/controller"
	"github.com/dukerupert/homestock/internal/database"
	"github.com/dukerupert/homestock/internal/datastore"
	"github.com/dukerupert/homestock/internal/logging"
	"github.com/dukerupert/homestock/internal/model"
	"github.com/dukerupert/homestock/internal/remote"
	"github.com/dukerupert/homestock/internal/view"
)

func main() {
	configPath := flag.String("config", "", "config file (default: ./homestock.{env,yaml} if present)")
	localDB := flag.String("local", "", "use this SQLite database instead of a homestockd server")
	flag.Parse()

	if err := run(*configPath, *localDB); err != nil {
		fmt.Fprintln(os.Stderr, "homestock:", err)
		os.Exit(1)
	}
}

func run(configPath, localDB string) error {
	cfg, err := config.LoadClient(configPath)
	if err != nil {
		return err
	}

	logFile, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer logFile.Close()
	logger := logging.Setup(cfg.LogLevel, "text", logFile)

	store, closeStore, err := openStore(cfg, localDB, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var cons *console.Console
	ctrl := controller.New(store, logger.With("component", "controller"),
		controller.WithOnChange(func(model.Table) { cons.Redraw() }))

	var ops sync.WaitGroup
	app := view.NewApp(ctrl, view.Async(ctx, &ops))
	cons = console.New(app, os.Stdin, os.Stdout, logger.With("component", "console"))

	go ctrl.Start(ctx)
	err = cons.Run(ctx)

	ctrl.Close()
	ops.Wait()
	if err != nil && ctx.Err() == nil {
		return err
	}
	fmt.Println()
	return nil
}

func openStore(cfg *config.Client, localDB string, logger *slog.Logger) (datastore.Store, func(), error) {
	if localDB != "" {
		db, err := database.Open(localDB)
		if err != nil {
			return nil, nil, fmt.Errorf("open database: %w", err)
		}
		logger.Info("using local database", "path", localDB)
		return datastore.NewLocal(db, nil, logger.With("component", "datastore")), func() { db.Close() }, nil
	}

	client, err := remote.New(cfg.URL, cfg.APIKey, logger.With("component", "remote"))
	if err != nil {
		return nil, nil, err
	}
	logger.Info("using store service", "url", cfg.URL)
	return client, func() {}, nil
}

// Command homestockd serves the homestock tables over REST with a realtime
// change feed.
//
// Usage:
//
//	homestockd [-config file] [serve]
//	homestockd [-config file] keygen -role anon|service_role [-ttl 720h]
//	homestockd [-config file] backup
//	homestockd [-config file] restore <key> <dst.db>
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dukerupert/homestock/internal/apikey"
	"github.com/dukerupert/homestock/internal/backup"
	"github.com/dukerupert/homestock/internal/config"
	"github.com/dukerupert/homestock/internal/database"
	"github.com/dukerupert/homestock/internal/logging"
	"github.com/dukerupert/homestock/internal/server"
)

func main() {
	configPath := flag.String("config", "", "config file (default: ./homestock.{env,yaml} if present)")
	flag.Parse()

	cfg, err := config.LoadServer(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	logger := logging.Setup(cfg.LogLevel, cfg.LogFormat, os.Stderr)

	cmd, args := "serve", flag.Args()
	if len(args) > 0 {
		cmd, args = args[0], args[1:]
	}

	switch cmd {
	case "serve":
		err = serve(cfg, logger)
	case "keygen":
		err = keygen(cfg, args)
	case "backup":
		err = runBackup(cfg, logger)
	case "restore":
		err = restore(cfg, logger, args)
	default:
		err = fmt.Errorf("unknown command %q", cmd)
	}
	if err != nil {
		slog.Error(cmd+" failed", "error", err)
		os.Exit(1)
	}
}

func serve(cfg *config.Server, logger *slog.Logger) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	db, err := database.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	srv := server.New(db, server.Options{
		JWTSecret: cfg.JWTSecret,
		RateLimit: cfg.RateLimit,
		Backup:    cfg.Backup(),
	}, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go srv.RateLimiter().Run(ctx, 5*time.Minute)
	srv.BackupManager().Start(ctx)
	defer srv.BackupManager().Stop()

	httpServer := &http.Server{
		Addr:         cfg.Addr,
		Handler:      srv.Router(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("homestockd listening", "addr", cfg.Addr, "db", cfg.DBPath, "backups", srv.BackupManager().Enabled())
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("listen: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func keygen(cfg *config.Server, args []string) error {
	fs := flag.NewFlagSet("keygen", flag.ContinueOnError)
	role := fs.String("role", string(apikey.RoleAnon), "key role: anon or service_role")
	ttl := fs.Duration("ttl", 0, "key lifetime; 0 never expires")
	if err := fs.Parse(args); err != nil {
		return err
	}

	r, err := apikey.ParseRole(*role)
	if err != nil {
		return err
	}
	key, err := apikey.Issue(cfg.JWTSecret, r, *ttl)
	if err != nil {
		return err
	}
	fmt.Println(key)
	return nil
}

func backupManager(cfg *config.Server, logger *slog.Logger) (*backup.Manager, func(), error) {
	db, err := database.Open(cfg.DBPath)
	if err != nil {
		return nil, nil, fmt.Errorf("open database: %w", err)
	}
	m := backup.NewManager(cfg.Backup(), db, logger.With("component", "backup"))
	if !m.Enabled() {
		db.Close()
		return nil, nil, backup.ErrDisabled
	}
	return m, func() { db.Close() }, nil
}

func runBackup(cfg *config.Server, logger *slog.Logger) error {
	m, closeDB, err := backupManager(cfg, logger)
	if err != nil {
		return err
	}
	defer closeDB()

	key, err := m.RunNow(context.Background())
	if err != nil {
		return err
	}
	fmt.Println(key)
	return nil
}

func restore(cfg *config.Server, logger *slog.Logger, args []string) error {
	if len(args) != 2 {
		return errors.New("usage: homestockd restore <key> <dst.db>")
	}
	m, closeDB, err := backupManager(cfg, logger)
	if err != nil {
		return err
	}
	defer closeDB()

	if err := m.Restore(context.Background(), args[0], args[1]); err != nil {
		return err
	}
	logger.Info("restored backup", "key", args[0], "path", args[1])
	return nil
}

package server

import (
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/dukerupert/homestock/internal/apikey"
	"github.com/dukerupert/homestock/internal/backup"
	"github.com/dukerupert/homestock/internal/handler"
	"github.com/dukerupert/homestock/internal/middleware"
	"github.com/dukerupert/homestock/internal/realtime"
	"github.com/dukerupert/homestock/internal/store"
)

// Options configures the store service.
type Options struct {
	JWTSecret string
	// RateLimit caps mutating requests per client IP per minute; zero disables it.
	RateLimit int
	Backup    backup.Config
}

type Server struct {
	hub           *realtime.Hub
	itemH         *handler.ItemHandler
	logH          *handler.LogHandler
	shoppingH     *handler.ShoppingHandler
	backupH       *handler.BackupHandler
	rateLimiter   *middleware.RateLimiter
	backupManager *backup.Manager
	opts          Options
	logger        *slog.Logger
}

func New(db *sql.DB, opts Options, logger *slog.Logger) *Server {
	hub := realtime.NewHub(logger.With("component", "realtime"))
	backupMgr := backup.NewManager(opts.Backup, db, logger.With("component", "backup"))

	return &Server{
		hub:           hub,
		itemH:         handler.NewItemHandler(store.NewItemStore(db), hub, logger.With("component", "items")),
		logH:          handler.NewLogHandler(store.NewLogStore(db), hub, logger.With("component", "logs")),
		shoppingH:     handler.NewShoppingHandler(store.NewShoppingStore(db), hub, logger.With("component", "shopping")),
		backupH:       handler.NewBackupHandler(backupMgr, logger.With("component", "backup_handler")),
		rateLimiter:   middleware.NewRateLimiter(),
		backupManager: backupMgr,
		opts:          opts,
		logger:        logger,
	}
}

// Hub returns the change feed hub.
func (s *Server) Hub() *realtime.Hub {
	return s.hub
}

// RateLimiter returns the rate limiter for cleanup tasks.
func (s *Server) RateLimiter() *middleware.RateLimiter {
	return s.rateLimiter
}

// BackupManager returns the backup manager.
func (s *Server) BackupManager() *backup.Manager {
	return s.backupManager
}

func (s *Server) Router() http.Handler {
	outerMux := http.NewServeMux()

	// Public routes
	outerMux.HandleFunc("GET /health", s.healthHandler)

	restMux := http.NewServeMux()
	s.registerRESTRoutes(restMux)
	anon := middleware.RequireAPIKey(s.opts.JWTSecret, apikey.RoleAnon)
	limited := middleware.RateLimit(s.rateLimiter, s.opts.RateLimit, time.Minute)
	outerMux.Handle("/rest/v1/", anon(limited(restMux)))

	outerMux.Handle("GET /realtime/v1", anon(realtime.HandleWebSocket(s.hub)))

	adminMux := http.NewServeMux()
	adminMux.HandleFunc("POST /admin/backup", s.backupH.Run)
	adminMux.HandleFunc("GET /admin/backup", s.backupH.Status)
	outerMux.Handle("/admin/", middleware.RequireAPIKey(s.opts.JWTSecret, apikey.RoleService)(adminMux))

	return middleware.RequestLogger(s.logger.With("component", "http"))(outerMux)
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) registerRESTRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /rest/v1/items", s.itemH.List)
	mux.HandleFunc("POST /rest/v1/items", s.itemH.Create)
	mux.HandleFunc("PATCH /rest/v1/items/{id}", s.itemH.Update)
	mux.HandleFunc("DELETE /rest/v1/items/{id}", s.itemH.Delete)

	// Logs are append-only
	mux.HandleFunc("GET /rest/v1/logs", s.logH.List)
	mux.HandleFunc("POST /rest/v1/logs", s.logH.Create)

	mux.HandleFunc("GET /rest/v1/shopping_list", s.shoppingH.List)
	mux.HandleFunc("POST /rest/v1/shopping_list", s.shoppingH.Create)
	mux.HandleFunc("PATCH /rest/v1/shopping_list/{id}", s.shoppingH.Update)
	mux.HandleFunc("DELETE /rest/v1/shopping_list/{id}", s.shoppingH.Delete)
}

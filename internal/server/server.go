// Package server sets up the HTTP server, router, and all route definitions.
//
// SERVER ARCHITECTURE:
// This package is the "wiring" layer — it connects handlers, middleware, and routes.
// Think of it as the control centre that decides:
// - Which URL patterns map to which handler functions
// - What middleware runs on which routes
// - How the server starts and stops gracefully
//
// DEPENDENCY INJECTION FLOW:
// main.go reads config and passes it here. New() then assembles:
//
//	sqlite.DB ──────────────┐
//	disk.Store ─────────────┼→ services → handlers → routes
//	auth.TokenService ──────┤
//	auth.PasswordService ───┘
//
// This is the "composition root" pattern — all dependencies are wired
// in one place, rather than scattered across the codebase.
package server

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/sakif/image-describer/internal/auth"
	"github.com/sakif/image-describer/internal/describe"
	"github.com/sakif/image-describer/internal/handler"
	"github.com/sakif/image-describer/internal/middleware"
	sqliteRepo "github.com/sakif/image-describer/internal/repository/sqlite"
	"github.com/sakif/image-describer/internal/service"
	"github.com/sakif/image-describer/internal/storage/disk"
)

// Config holds server configuration.
// Using a struct for config (instead of individual parameters) makes it easy to:
// - Add new config options without changing function signatures
// - Pass config around as a single value
// - Load config from files/env vars in one place
type Config struct {
	Port      int
	DBPath    string // path to the SQLite database file
	UploadDir string // directory uploaded images are written to
	JWTSecret string // HMAC secret for session tokens — injected, never hardcoded

	// AllowedOrigins is the CORS whitelist for the mobile client.
	// Empty means allow all origins (development default, matching the
	// original deployment where the app and API ran on separate hosts).
	AllowedOrigins []string
}

// Server represents the HTTP server and all its dependencies.
//
// RESOURCE MANAGEMENT:
// The Server owns the database connection. When the server shuts down we
// must close it to flush the WAL and release the file lock — handled in
// Start() during graceful shutdown.
type Server struct {
	router *chi.Mux
	config Config
	logger *slog.Logger
	db     *sqliteRepo.DB
}

// New creates a new Server with the given config.
func New(cfg Config, logger *slog.Logger) (*Server, error) {
	db, err := sqliteRepo.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
		db:     db,
	}

	if err := s.setupRoutes(); err != nil {
		db.Close() // Clean up DB if route setup fails
		return nil, fmt.Errorf("setting up routes: %w", err)
	}

	return s, nil
}

// setupRoutes configures all middleware and route handlers.
//
// ROUTE STRUCTURE:
// POST /api/check-email   → email availability (advisory)
// POST /api/signup        → create account, returns token
// POST /api/login         → verify credentials, returns token
// POST /api/upload-image  → [auth required] ingest + describe one image
// GET  /api/health        → liveness probe
// GET  /uploads/*         → static serving of stored images
//
// MIDDLEWARE ORDER MATTERS:
// Middleware executes in the order it's added. Our order:
// 1. RequestID — assigns unique ID to each request (for tracing)
// 2. RealIP — extracts real client IP from proxy headers
// 3. Recoverer — catches panics and returns 500 instead of crashing
// 4. CORS — the mobile client calls from a different origin
// 5. Logger — logs each request with timing info
func (s *Server) setupRoutes() error {
	// === Global Middleware ===
	s.router.Use(chimiddleware.RequestID) // Adds X-Request-ID header
	s.router.Use(chimiddleware.RealIP)    // Extracts real IP from X-Forwarded-For
	s.router.Use(chimiddleware.Recoverer) // Recovers from panics, returns 500

	origins := s.config.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	// Our custom logging middleware
	s.router.Use(middleware.Logger(s.logger))

	// === Build the dependency chain ===
	// Notice: handlers never touch the database or the disk directly.
	// Services never touch HTTP. Clean separation.
	tokens, err := auth.NewTokenService(s.config.JWTSecret)
	if err != nil {
		return fmt.Errorf("creating token service: %w", err)
	}
	passwords := auth.NewPasswordService()

	store, err := disk.New(s.config.UploadDir)
	if err != nil {
		return fmt.Errorf("creating upload store: %w", err)
	}

	authService := service.NewAuthService(s.db, tokens, passwords, s.logger)
	imageService := service.NewImageService(store, describe.NewStatic(), s.logger)

	authHandler := handler.NewAuthHandler(authService, s.logger)
	imageHandler := handler.NewImageHandler(imageService, s.logger)

	// === API Routes ===
	s.router.Route("/api", func(r chi.Router) {
		r.Post("/check-email", authHandler.HandleCheckEmail)
		r.Post("/signup", authHandler.HandleSignup)
		r.Post("/login", authHandler.HandleLogin)

		r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"status":"ok"}`))
		})

		// Protected routes get their own group so RequireAuth wraps
		// ONLY them — signup/login must stay reachable without a token.
		r.Group(func(r chi.Router) {
			r.Use(auth.RequireAuth(tokens))
			r.Post("/upload-image", imageHandler.HandleUpload)
		})
	})

	// === Stored Images ===
	// http.FileServer serves files from the upload directory.
	// http.StripPrefix removes "/uploads/" from the URL path first, so
	// GET /uploads/1756...-cat.jpg serves {UploadDir}/1756...-cat.jpg
	fileServer := http.FileServer(noDirFS{http.Dir(store.Dir())})
	s.router.Handle("/uploads/*", http.StripPrefix("/uploads/", fileServer))

	return nil
}

// noDirFS wraps a filesystem and refuses to open directories. Without it
// http.FileServer would answer GET /uploads/ with an index page listing
// every image anyone has ever uploaded.
type noDirFS struct {
	root http.FileSystem
}

func (n noDirFS) Open(name string) (http.File, error) {
	f, err := n.root.Open(name)
	if err != nil {
		return nil, err
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	if info.IsDir() {
		f.Close()
		return nil, fs.ErrNotExist
	}
	return f, nil
}

// Handler exposes the assembled router. Tests drive the full middleware
// and route stack through this without opening a socket.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Close releases the server's resources without going through Start's
// shutdown path. Used by tests; production uses Start, which closes the
// database itself.
func (s *Server) Close() error {
	return s.db.Close()
}

// Start starts the HTTP server and handles graceful shutdown.
//
// GRACEFUL SHUTDOWN:
// 1. Stop accepting new HTTP connections
// 2. Wait for in-flight requests to finish (30s timeout)
// 3. Close the database connection (flushes WAL, releases file lock)
//
// If we skip step 3, the database file might be left in an inconsistent state.
// The `defer s.db.Close()` ensures this happens even if something panics.
func (s *Server) Start() error {
	defer s.db.Close()

	// Create the HTTP server with sensible timeouts.
	// ReadTimeout is generous because image uploads from mobile networks
	// can be slow; it still bounds a stalled client.
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
		Handler:      s.router,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Channel to receive OS signals
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	// Channel to receive server errors
	serverErrors := make(chan error, 1)

	// Start the server in a goroutine (so it doesn't block)
	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Port),
			slog.String("database", s.config.DBPath),
			slog.String("uploads", s.config.UploadDir),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	// Block until we receive a signal or server error
	select {
	case err := <-serverErrors:
		if err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		// Give in-flight requests 30 seconds to complete
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}

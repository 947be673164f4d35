package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"biolink/internal/api"
	"biolink/internal/auth"
	"biolink/internal/config"
	"biolink/internal/db"
	"biolink/internal/images"
	"biolink/internal/preview"
	"biolink/internal/stats"
	"biolink/internal/store"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize logger
	logger := config.MustInitLogger(cfg.Env, cfg.LogLevel)
	defer logger.Sync() // Flush any buffered log entries

	logger.Info("Starting biolink API",
		zap.String("env", cfg.Env),
		zap.String("port", cfg.Port),
	)

	// Initialize database with auto-migrations
	dbCfg := db.Config{
		Driver: cfg.DBDriver,
		DBPath: cfg.DBPath,
		DSN:    cfg.DBDSN,
	}

	database, err := db.New(dbCfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer database.Close()

	// Create background context with cancel for graceful shutdown
	bgCtx, bgCancel := context.WithCancel(context.Background())
	defer bgCancel()

	// Initialize auth service
	authService := auth.NewService(cfg.JWTSecret, cfg.JWTExpiry())

	// Initialize live preview hub for WebSocket connections
	hub := preview.NewHub(bgCtx, logger)

	// Initialize image storage
	imageStore, err := images.NewStore(cfg.MediaDir, logger)
	if err != nil {
		logger.Fatal("Failed to initialize image storage", zap.Error(err))
	}

	// Initialize stats collector with periodic flushing
	collector := stats.NewCollector(store.New(database).Stats, logger)
	if err := collector.Start(cfg.StatsFlushSpec); err != nil {
		logger.Fatal("Failed to start stats collector", zap.Error(err))
	}

	// Create server with logger
	server := api.NewServer(database, cfg, logger)
	server.SetAuthService(authService)
	server.SetPreviewHub(hub)
	server.SetImageStore(imageStore)
	server.SetStatsCollector(collector)

	// Setup router
	r := chi.NewRouter()

	// Middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(api.RequestLogger(logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	// Request size limit (10MB, image uploads included)
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r.Body = http.MaxBytesReader(w, r.Body, 10<<20)
			next.ServeHTTP(w, r)
		})
	})

	// CORS configuration
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSAllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Public routes
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, `{"message":"biolink API","version":"0.1.0"}`)
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := database.HealthCheck(ctx); err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			fmt.Fprintf(w, `{"status":"error","message":"database unavailable"}`)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, `{"status":"ok","database":"connected"}`)
	})

	// Stored images (public, rate limited)
	r.Group(func(r chi.Router) {
		r.Use(api.RateLimitMiddleware(120))
		r.Get("/media/{name}", server.HandleServeImage)
	})

	// API routes
	r.Route("/api", func(r chi.Router) {
		// Version endpoint (public)
		r.Get("/version", server.HandleVersion)

		// Auth routes (public) with rate limiting
		r.Route("/auth", func(r chi.Router) {
			// Apply stricter rate limiting to auth endpoints (20 req/min)
			r.Use(api.RateLimitMiddleware(20))
			r.Post("/signup", server.HandleSignup)
			r.Post("/login", server.HandleLogin)
		})

		// Public page routes (rate limited)
		r.Group(func(r chi.Router) {
			r.Use(api.RateLimitMiddleware(60))
			r.Get("/p/{username}", server.HandlePublicPage)
			r.Get("/p/{username}/qr", server.HandlePageQR)
			r.Post("/p/{username}/blocks/{blockId}/click", server.HandleBlockClick)
		})

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(server.JWTAuth)
			// Apply general rate limiting (100 req/min)
			r.Use(api.RateLimitMiddleware(cfg.RateLimitRequests))

			r.Get("/me", server.HandleMe)

			// Editing session routes
			r.Get("/editor", server.HandleEditorState)
			r.Delete("/editor/session", server.HandleEndEditorSession)
			r.Get("/editor/preview", server.HandleEditorPreview)
			r.Get("/editor/preview/public", server.HandleEditorPublicPreview)
			r.Get("/editor/preview/ws", server.HandlePreviewSocket)
			r.Post("/editor/blocks", server.HandleSubmitBlock)
			r.Post("/editor/blocks/{blockId}/move", server.HandleMoveBlock)
			r.Post("/editor/blocks/{blockId}/toggle", server.HandleToggleBlock)
			r.Post("/editor/blocks/{blockId}/parent", server.HandleAssignBlock)
			r.Delete("/editor/blocks/{blockId}", server.HandleDeleteBlock)
			r.Put("/editor/page", server.HandleUpdateEditorPage)
			r.Put("/editor/social-links", server.HandleSetSocialLinks)
			r.Post("/editor/save", server.HandleSaveDraft)

			// Image upload routes
			r.Post("/images", server.HandleUploadImage)
			r.Delete("/images/{name}", server.HandleDeleteImage)

			// Stats routes
			r.Get("/stats", server.HandleStatsSummary)
			r.Get("/stats/blocks", server.HandleBlockStats)
		})
	})

	// Create HTTP server
	addr := fmt.Sprintf(":%s", cfg.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Channel to listen for server errors
	serverErrors := make(chan error, 1)

	// Start server in goroutine
	go func() {
		logger.Info("Server listening", zap.String("addr", addr))
		serverErrors <- srv.ListenAndServe()
	}()

	// Channel to listen for interrupt signals
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Block until we receive shutdown signal or server error
	select {
	case err := <-serverErrors:
		logger.Fatal("Server error", zap.Error(err))
	case sig := <-shutdown:
		logger.Info("Received shutdown signal, starting graceful shutdown", zap.String("signal", sig.String()))

		// Give outstanding requests 30 seconds to complete
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		// Gracefully shutdown server
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Graceful shutdown failed", zap.Error(err))
			if err := srv.Close(); err != nil {
				logger.Fatal("Failed to close server", zap.Error(err))
			}
		}

		// Push any buffered stats before exiting
		if err := collector.Stop(ctx); err != nil {
			logger.Error("Stats collector shutdown failed", zap.Error(err))
		}

		logger.Info("Server stopped gracefully")
	}
}

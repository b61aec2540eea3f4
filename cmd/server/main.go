package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"github.com/lifequest/backend/internal/auth"
	"github.com/lifequest/backend/internal/catalog"
	"github.com/lifequest/backend/internal/config"
	"github.com/lifequest/backend/internal/database"
	"github.com/lifequest/backend/internal/gamification"
	"github.com/lifequest/backend/internal/middleware"
	"github.com/lifequest/backend/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	loc, err := cfg.Location()
	if err != nil {
		log.Fatalf("Failed to load time zone: %v", err)
	}

	cat, err := catalog.Load(cfg.CatalogPath)
	if err != nil {
		log.Fatalf("Failed to load catalog: %v", err)
	}

	// Initialize store
	var backend store.Adapter
	if cfg.DBDriver == "memory" {
		log.Printf("Using in-memory store; progress is lost on restart")
		backend = store.NewMemoryStore()
	} else {
		db, err := database.Connect(cfg)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer db.Close()

		if err := database.Migrate(db, cfg.DBDriver); err != nil {
			log.Fatalf("Failed to run migrations: %v", err)
		}
		backend = store.NewSQLStore(db, cfg.DBDriver)
	}
	cached := store.NewCachedAdapter(backend)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cached.EnsurePlayer(ctx, cfg.PlayerID); err != nil {
		log.Fatalf("Failed to create player %s: %v", cfg.PlayerID, err)
	}

	// Initialize handlers
	service := gamification.NewService(cached, cat, gamification.WithLocation(loc))
	gameHandler := gamification.NewHandler(service)
	authHandler := auth.NewHandler(cfg.PlayerID, cfg.OperatorPasswordHash, []byte(cfg.JWTSecret), cfg.TokenTTL)

	// Setup router
	r := mux.NewRouter()
	api := r.PathPrefix("/api/v1").Subrouter()

	// Public routes
	api.HandleFunc("/auth/login", authHandler.Login).Methods("POST")

	// Protected routes
	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.AuthMiddleware([]byte(cfg.JWTSecret)))
	protected.HandleFunc("/auth/me", authHandler.Me).Methods("GET")
	gameHandler.Register(protected)

	// Health check
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	// CORS
	c := cors.New(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           c.Handler(r),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("Shutdown error: %v", err)
		}
	}()

	log.Printf("Server starting on :%s (player %s, zone %s)", cfg.Port, cfg.PlayerID, loc)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("Server failed: %v", err)
	}
	log.Printf("Server stopped")
}

package main

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/afroman-media/storefront-backend/internal/auth"
	"github.com/afroman-media/storefront-backend/internal/cache"
	"github.com/afroman-media/storefront-backend/internal/checkout"
	"github.com/afroman-media/storefront-backend/internal/config"
	"github.com/afroman-media/storefront-backend/internal/database"
	"github.com/afroman-media/storefront-backend/internal/handlers"
	"github.com/afroman-media/storefront-backend/internal/logger"
	"github.com/afroman-media/storefront-backend/internal/middleware"
	"github.com/afroman-media/storefront-backend/internal/shutdown"
	"github.com/afroman-media/storefront-backend/internal/store"
)

type HealthResponse struct {
	Status    string `json:"status"`
	Database  string `json:"database"`
	Redis     string `json:"redis"`
	Timestamp string `json:"timestamp"`
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func healthHandler(db *database.DB, redisClient *cache.Redis) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		dbStatus := "connected"
		if err := db.Ping(); err != nil {
			dbStatus = "disconnected"
		}

		redisStatus := "connected"
		if err := redisClient.Ping(r.Context()); err != nil {
			redisStatus = "disconnected"
		}

		response := HealthResponse{
			Status:    "healthy",
			Database:  dbStatus,
			Redis:     redisStatus,
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		}
		writeJSON(w, http.StatusOK, response)
	}
}

func main() {
	cfg := config.Load()
	log := logger.New(logger.Options{
		Service: cfg.ServiceName,
		Env:     cfg.AppEnv,
		Level:   cfg.LogLevel,
	})

	// Connect to database
	db, err := database.New(cfg.DSN())
	if err != nil {
		log.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	// Run migrations
	if err := db.RunMigrations("internal/database/migrations"); err != nil {
		log.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	// Connect to Redis
	redisClient, err := cache.NewRedis(cfg.RedisAddr())
	if err != nil {
		log.Error("failed to connect to redis", "error", err)
		os.Exit(1)
	}
	defer redisClient.Close()

	// Stores and services
	authService := auth.NewService(redisClient, db, cfg.SessionTTL, log)
	carts := store.NewCartStore(redisClient, log)
	access := store.NewAccessStore(redisClient, db, log)
	purchases := store.NewPurchaseStore(redisClient, log)
	downloads := store.NewDownloadStore(redisClient, log)

	links := checkout.Links{
		Premium:     cfg.PremiumPaymentLink,
		Merchandise: cfg.MerchPaymentLink,
	}

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService)
	cartHandler := handlers.NewCartHandler(carts, authService, links)
	accessHandler := handlers.NewAccessHandler(access, authService)
	catalogHandler := handlers.NewCatalogHandler(db, authService)
	orderHandler := handlers.NewOrderHandler(db, authService)
	purchaseHandler := handlers.NewPurchaseHandler(purchases, authService)
	downloadHandler := handlers.NewDownloadHandler(downloads, authService)

	// Setup routes
	mux := http.NewServeMux()

	mux.HandleFunc("/health", healthHandler(db, redisClient))

	mux.HandleFunc("/auth/signin", authHandler.SignIn)
	mux.HandleFunc("/auth/signout", authHandler.SignOut)
	mux.HandleFunc("/auth/me", authHandler.Me)

	mux.HandleFunc("/cart", cartHandler.Cart)
	mux.HandleFunc("/cart/items", cartHandler.AddItem)
	mux.HandleFunc("/cart/items/", cartHandler.Item)
	mux.HandleFunc("/cart/count", cartHandler.Count)
	mux.HandleFunc("/cart/checkout", cartHandler.Checkout)

	mux.HandleFunc("/premium/access", accessHandler.Check)
	mux.HandleFunc("/premium/confirm", accessHandler.Confirm)
	mux.HandleFunc("/premium/revoke", accessHandler.Revoke)

	mux.HandleFunc("/movies", catalogHandler.Movies)
	mux.HandleFunc("/movies/", catalogHandler.Movie)
	mux.HandleFunc("/merchandise", catalogHandler.Merchandise)

	mux.HandleFunc("/orders", orderHandler.Orders)

	mux.HandleFunc("/purchases", purchaseHandler.Purchases)
	mux.HandleFunc("/purchases/", purchaseHandler.Purchase)

	mux.HandleFunc("/downloads", downloadHandler.Downloads)
	mux.HandleFunc("/downloads/", downloadHandler.Download)

	// Apply middleware
	guarded := middleware.RateLimiter(redisClient)(
		middleware.Idempotency(redisClient)(mux),
	)
	rateLimited := middleware.RateLimiter(redisClient)(mux)

	// Reads, health and auth skip the idempotency requirement
	finalHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet ||
			strings.HasPrefix(r.URL.Path, "/health") ||
			strings.HasPrefix(r.URL.Path, "/auth/") {
			rateLimited.ServeHTTP(w, r)
			return
		}
		guarded.ServeHTTP(w, r)
	})

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      finalHandler,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, cancel := shutdown.WithSignals(context.Background())
	defer cancel()

	go func() {
		log.Info("starting server", "addr", cfg.HTTPAddr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server failed", "error", err)
			cancel()
		}
	}()

	<-ctx.Done()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
	}
	log.Info("server stopped")
}

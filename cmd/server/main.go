package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"time"

	"rent-backend/internal/cache"
	"rent-backend/internal/config"
	"rent-backend/internal/database"
	"rent-backend/internal/db"
	"rent-backend/internal/handlers"
	"rent-backend/internal/health"
	h "rent-backend/internal/http"
	"rent-backend/internal/middleware"
	"rent-backend/internal/repositories"
	"rent-backend/internal/services"
)

func main() {
	port := flag.Int("port", 0, "Server port (overrides config)")
	flag.Parse()

	// Load configuration
	cfg := config.Load()
	if *port != 0 {
		cfg.Server.Port = *port
	}

	// Connect to database
	pool := db.Connect(cfg)
	defer pool.Close()
	log.Printf("Connected to database %s@%s:%d", cfg.Database.Name, cfg.Database.Host, cfg.Database.Port)

	// Initialize Redis cache (optional - graceful fallback if unavailable)
	if err := cache.Init(); err != nil {
		log.Printf("[Redis] Cache unavailable: %v (summary reads will hit the database)", err)
	} else {
		log.Println("[Redis] Cache connected successfully")
	}

	// Run database migrations
	log.Println("Running database migrations...")
	migrator := database.NewMigrator(pool, "migrations")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := migrator.RunMigrations(ctx); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Initialize repositories
	rentRepo := repositories.NewRentRepository(pool)
	directoryRepo := repositories.NewDirectoryRepository(pool)

	// Initialize services
	rentService := services.NewRentService(rentRepo, directoryRepo)
	sweeper := services.NewOverdueSweeper(rentRepo)
	if cfg.Sweeper.Enabled {
		sweeper.Start()
		defer sweeper.Stop()
	} else {
		log.Println("[Sweeper] Internal scheduler disabled, relying on external trigger")
	}

	// Initialize handlers
	healthChecker := health.NewHealthChecker(pool)
	healthHandler := handlers.NewHealthHandler(healthChecker)
	rentHandler := handlers.NewRentHandler(rentService, sweeper)

	// Build router with middleware
	router := h.NewRouter(rentHandler, healthHandler)
	corsMiddleware := middleware.NewCORS(cfg)
	handler := middleware.PanicRecovery(middleware.MetricsMiddleware(corsMiddleware(router)))

	// Start server
	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	log.Printf("Rent ledger running on %s", addr)
	if err := http.ListenAndServe(addr, handler); err != nil {
		log.Fatalf("Server failed to start: %v", err)
	}
}

package main

import (
	"fmt"
	"log"
	"os"

	"github.com/kurihiro0119/github-user-audit/internal/api"
	"github.com/kurihiro0119/github-user-audit/internal/config"
	"github.com/kurihiro0119/github-user-audit/internal/history"
	"github.com/kurihiro0119/github-user-audit/internal/history/postgres"
	"github.com/kurihiro0119/github-user-audit/internal/history/sqlite"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize run history storage
	var store history.Store
	switch cfg.StorageType {
	case "postgres":
		store, err = postgres.NewPostgresStore(cfg.PostgresURL)
		if err != nil {
			log.Fatalf("Failed to initialize PostgreSQL storage: %v", err)
		}
	case "off":
		log.Fatalf("Run history storage is disabled (STORAGE_TYPE=off); the API server needs a store")
	default:
		store, err = sqlite.NewSQLiteStore(cfg.SQLitePath)
		if err != nil {
			log.Fatalf("Failed to initialize SQLite storage: %v", err)
		}
	}
	defer store.Close()

	// Initialize handler
	handler := api.NewHandler(store)

	// Setup routes
	router := api.SetupRoutes(handler)

	// Start server
	addr := fmt.Sprintf("%s:%s", cfg.APIHost, cfg.APIPort)
	fmt.Printf("Starting API server on %s\n", addr)
	fmt.Printf("Storage type: %s\n", cfg.StorageType)

	if err := router.Run(addr); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to start server: %v\n", err)
		os.Exit(1)
	}
}

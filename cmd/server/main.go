package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"

	"github.com/filedepot/filedepot/internal/api"
	"github.com/filedepot/filedepot/internal/config"
	"github.com/filedepot/filedepot/internal/files"
	"github.com/filedepot/filedepot/internal/health"
	"github.com/filedepot/filedepot/internal/storage"
)

const version = "0.1.0"

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "config/dev.example.yaml", "Path to configuration file")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	log.Printf("Starting FileDepot Server v%s", version)
	log.Printf("Configuration loaded from: %s", *configPath)

	// Initialize storage backend
	backend, err := storage.NewBackend(cfg.Storage)
	if err != nil {
		log.Fatalf("Failed to create storage backend: %v", err)
	}
	defer backend.Close()
	log.Printf("Storage backend initialized: %s", cfg.Storage.Backend)

	// Initialize file reference repository
	repo, err := files.NewRepository(cfg.Database.Path)
	if err != nil {
		log.Fatalf("Failed to open reference database: %v", err)
	}
	defer repo.Close()
	log.Printf("Reference database opened: %s", cfg.Database.Path)

	// Initialize health checks
	healthHandler := health.NewHandler(version)

	healthHandler.Register("database", func(ctx context.Context) (health.Status, error) {
		if err := repo.Ping(ctx); err != nil {
			return health.StatusUnhealthy, err
		}
		return health.StatusHealthy, nil
	})

	// Set up HTTP routes
	router := mux.NewRouter()

	router.HandleFunc("/health/live", healthHandler.LivenessHandler())
	router.HandleFunc("/health/ready", healthHandler.ReadinessHandler())
	router.HandleFunc("/health", healthHandler.HealthHandler())
	router.HandleFunc("/api/v1/info", infoHandler(cfg.Storage.Backend))

	fileHandler := api.NewFileHandler(backend, repo)
	fileHandler.RegisterRoutes(router)

	// Create HTTP server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Printf("Server listening on %s", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server stopped")
}

// infoHandler returns basic server information
func infoHandler(backendName string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"version":"%s","storage_backend":"%s"}`, version, backendName)
	}
}

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/medlink/dosage-service/internal/adapters/formulary"
	"github.com/medlink/dosage-service/internal/artifacts"
	"github.com/medlink/dosage-service/internal/prediction"
	"github.com/medlink/dosage-service/internal/shared/auth"
	"github.com/medlink/dosage-service/internal/shared/config"
	"github.com/medlink/dosage-service/internal/shared/database"
	"github.com/medlink/dosage-service/internal/shared/events"
	"github.com/medlink/dosage-service/internal/shared/metrics"
	secmiddleware "github.com/medlink/dosage-service/internal/shared/middleware"
)

// App holds all application dependencies
type App struct {
	Config    *config.Config
	DB        *database.DB
	Bus       *events.Bus
	Store     *artifacts.Store
	Formulary *formulary.Adapter
}

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	app := &App{Config: cfg}

	// Initialize database (optional - skip if not available)
	db, err := database.New(ctx, cfg.Database)
	if err != nil {
		fmt.Printf("Warning: Database not available: %v\n", err)
		fmt.Println("Running without prediction history...")
	} else {
		app.DB = db
		defer db.Close()

		// Run migrations
		if err := database.Migrate(ctx, db.Pool); err != nil {
			fmt.Printf("Warning: Migration failed: %v\n", err)
		}
	}

	// Initialize event bus (optional - skip if not available)
	if cfg.EventStore.Enabled {
		bus, err := events.NewBus(ctx, cfg.EventStore)
		if err != nil {
			fmt.Printf("Warning: EventStore not available: %v\n", err)
			fmt.Println("Running without prediction audit events...")
		} else {
			app.Bus = bus
			defer bus.Close()
			fmt.Println("Prediction audit stream initialized")
		}
	}

	// Initialize hospital formulary source (optional - compiled-in profiles
	// are used when disabled or unreachable)
	var profileSource artifacts.ProfileSource
	if cfg.Formulary.Enabled {
		adapter := formulary.New(cfg.Formulary)
		if err := adapter.Connect(ctx); err != nil {
			fmt.Printf("Warning: Formulary not available: %v\n", err)
			fmt.Println("Using compiled-in drug profiles...")
		} else {
			app.Formulary = adapter
			profileSource = adapter
			defer adapter.Close()
			fmt.Println("Hospital formulary connected")
		}
	}

	// Load model artifacts. The service starts degraded when the load fails:
	// predictions return 503 until a reload succeeds.
	app.Store = artifacts.NewStore(cfg.Model.Path, profileSource)
	if err := app.Store.Load(ctx); err != nil {
		fmt.Printf("Warning: Failed to load model artifacts: %v\n", err)
		fmt.Println("Predictions unavailable until artifacts are reloaded...")
	} else {
		bundle, _ := app.Store.Bundle()
		fmt.Printf("Model artifacts loaded (model: %s)\n", bundle.ModelName)
	}

	var repo *prediction.Repository
	if app.DB != nil {
		repo = prediction.NewRepository(app.DB.Pool)
	}

	service := prediction.NewService(app.Store, nil, repo, app.Bus)
	predictionHandler := prediction.NewHandler(service, app.Store, repo)

	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(secmiddleware.SecurityHeaders)
	r.Use(secmiddleware.InputSanitizer)
	r.Use(secmiddleware.RateLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst))
	r.Use(metrics.Middleware)
	r.Use(secmiddleware.CORS)

	// Health checks (unauthenticated)
	r.Get("/health", healthHandler(service))
	r.Get("/ready", readyHandler(app))
	r.Handle("/metrics", metrics.Handler())

	// API info
	r.Get("/", infoHandler)

	// API routes
	r.Route("/api/v1", func(r chi.Router) {
		if cfg.Server.Env == "production" {
			r.Use(auth.Middleware(cfg.Auth))
		}

		r.Mount("/", predictionHandler.Routes())
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	done := make(chan bool)
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		fmt.Println("\nShutting down server...")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			fmt.Printf("Server shutdown error: %v\n", err)
		}
		close(done)
	}()

	fmt.Println("============================================")
	fmt.Println("MedLink Dosage Classification Service")
	fmt.Println("============================================")
	fmt.Printf("Environment:  %s\n", cfg.Server.Env)
	fmt.Printf("Server:       http://localhost:%d\n", cfg.Server.Port)
	fmt.Printf("API:          http://localhost:%d/api/v1\n", cfg.Server.Port)
	fmt.Printf("Health:       http://localhost:%d/health\n", cfg.Server.Port)
	fmt.Printf("Model:        %s\n", cfg.Model.Path)
	fmt.Printf("Formulary:    %v\n", cfg.Formulary.Enabled)
	fmt.Printf("EventStore:   %v\n", cfg.EventStore.Enabled)
	fmt.Println("============================================")

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		fmt.Fprintf(os.Stderr, "server error: %v\n", err)
		os.Exit(1)
	}

	<-done
	fmt.Println("Server stopped")
}

func infoHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"name":    "MedLink Dosage Classification Service",
		"version": "0.1.0",
		"docs":    "/api/v1",
	})
}

// healthHandler reports liveness plus whether the model can serve
func healthHandler(service *prediction.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := service.Health()

		code := http.StatusOK
		if status.Status != "ok" {
			code = http.StatusServiceUnavailable
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		json.NewEncoder(w).Encode(status)
	}
}

func readyHandler(app *App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		checks := map[string]string{
			"server": "ready",
		}

		if app.Store.Ready() {
			checks["artifacts"] = "ready"
		} else {
			checks["artifacts"] = "not ready: artifacts not loaded"
		}

		if app.DB != nil {
			if err := app.DB.Health(r.Context()); err != nil {
				checks["database"] = "not ready: " + err.Error()
			} else {
				checks["database"] = "ready"
			}
		} else {
			checks["database"] = "not configured"
		}

		if app.Bus != nil {
			if err := app.Bus.Health(); err != nil {
				checks["eventstore"] = "not ready: " + err.Error()
			} else {
				checks["eventstore"] = "ready"
			}
		} else {
			checks["eventstore"] = "not configured"
		}

		if app.Formulary != nil {
			if err := app.Formulary.Health(r.Context()); err != nil {
				checks["formulary"] = "not ready: " + err.Error()
			} else {
				checks["formulary"] = "ready"
			}
		} else {
			checks["formulary"] = "not configured"
		}

		allReady := true
		for _, status := range checks {
			if status != "ready" && status != "not configured" {
				allReady = false
				break
			}
		}

		status := http.StatusOK
		if !allReady {
			status = http.StatusServiceUnavailable
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(map[string]any{
			"status": map[bool]string{true: "ready", false: "not ready"}[allReady],
			"checks": checks,
		})
	}
}

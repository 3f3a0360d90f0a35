package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tably/pos-backend/internal/config"
	"github.com/tably/pos-backend/internal/handlers"
	"github.com/tably/pos-backend/internal/inventory"
	"github.com/tably/pos-backend/internal/middleware"
	"github.com/tably/pos-backend/internal/repository"
	"github.com/tably/pos-backend/internal/service"
	"github.com/tably/pos-backend/internal/session"
	"github.com/tably/pos-backend/pkg/logger"
)

func main() {
	// Load configuration from environment
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize structured logger
	log := logger.New(cfg.LogLevel)
	slog.SetDefault(log)

	log.Info("starting table order server",
		"port", cfg.Server.Port,
		"host", cfg.Server.Host,
		"log_level", cfg.LogLevel,
	)

	ctx := context.Background()

	// Initialize repositories: Postgres when configured, in-memory otherwise
	var (
		productRepo repository.ProductRepository
		tableRepo   repository.TableRepository
		stockRepo   repository.StockRepository
	)
	if cfg.Database.URL != "" {
		pool, err := repository.ConnectPostgres(ctx, cfg.Database.URL)
		if err != nil {
			log.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer pool.Close()

		productRepo = repository.NewPostgresProductRepository(pool)
		tableRepo = repository.NewPostgresTableRepository(pool)
		stockRepo = repository.NewPostgresStockRepository(pool)
		log.Info("connected to postgres document store")
	} else {
		productRepo = repository.NewInMemoryProductRepository()
		tableRepo = repository.NewInMemoryTableRepository()
		stockRepo = repository.NewInMemoryStockRepository()
		log.Warn("DATABASE_URL not set, running with in-memory storage")
	}

	// Initialize the inventory usage publisher
	var sink session.UsageSink
	if cfg.Rabbit.URL != "" {
		publisher, err := inventory.Dial(cfg.Rabbit.URL)
		if err != nil {
			log.Error("failed to connect to rabbitmq", "error", err)
			os.Exit(1)
		}
		defer publisher.Close()
		sink = publisher
		log.Info("connected to rabbitmq usage exchange")
	} else {
		sink = inventory.NopPublisher{}
		log.Warn("RABBITMQ_URL not set, ingredient usage reports are discarded")
	}

	// Initialize services
	productService := service.NewProductService(productRepo)
	stockService := service.NewStockService(stockRepo)
	tableService := service.NewTableService(tableRepo, productRepo, sink, log)

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler(log)
	productHandler := handlers.NewProductHandler(productService, log)
	stockHandler := handlers.NewStockHandler(stockService, log)
	tableHandler := handlers.NewTableHandler(tableService, log)

	metrics := middleware.NewMetrics("server")

	// Create router
	r := chi.NewRouter()

	// Apply middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logger(log))
	r.Use(metrics.Handler)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(60 * time.Second))

	// CORS configuration
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token", "api_key", middleware.BranchHeader},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Operational endpoints
	r.Get("/health", healthHandler.ServeHTTP)
	r.Handle("/metrics", promhttp.Handler())

	// API routes: every operation is scoped to a branch and keyed
	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.APIKeyAuth(cfg.Auth))
		r.Use(middleware.RequireBranch)

		// Catalog endpoints
		r.Get("/product", productHandler.ListProducts)
		r.Get("/product/grouped", productHandler.ListGrouped)
		r.Get("/product/{productId}", productHandler.GetProduct)
		r.Post("/product", productHandler.CreateProduct)

		// Inventory endpoints
		r.Get("/inventory", stockHandler.ListItems)
		r.Post("/inventory", stockHandler.AddItem)

		// Table order endpoints
		r.Get("/table", tableHandler.ListTables)
		r.Post("/table", tableHandler.CreateTable)
		r.Get("/table/{tableNumber}", tableHandler.GetTable)
		r.Post("/table/{tableNumber}/order", tableHandler.AddProducts)
		r.Post("/table/{tableNumber}/order/edits", tableHandler.EditOrder)
		r.Post("/table/{tableNumber}/order/submit", tableHandler.SubmitOrder)
	})

	// Create HTTP server
	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Info("server listening", "address", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	// Create shutdown context with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
	defer cancel()

	// Attempt graceful shutdown
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	log.Info("server stopped gracefully")
}

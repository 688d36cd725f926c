package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"

	"github.com/vnmchuo/llm-compare/config"
	"github.com/vnmchuo/llm-compare/internal/compare"
	"github.com/vnmchuo/llm-compare/internal/gateway"
	"github.com/vnmchuo/llm-compare/internal/registry"
	"github.com/vnmchuo/llm-compare/internal/server"
	"github.com/vnmchuo/llm-compare/internal/storage"
	"github.com/vnmchuo/llm-compare/internal/telemetry"
	"github.com/vnmchuo/llm-compare/internal/worker"
)

func main() {
	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// 2. Init telemetry
	shutdownTracer, err := telemetry.InitTracer("llm-compare", cfg)
	if err != nil {
		log.Fatalf("failed to init tracer: %v", err)
	}
	defer shutdownTracer()

	// 3. Connect PostgreSQL
	ctx := context.Background()
	pool, err := pgxpool.New(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatalf("failed to connect postgres: %v", err)
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		log.Fatalf("failed to ping postgres: %v", err)
	}
	log.Println("PostgreSQL connected")

	if err := storage.InitSchema(ctx, pool); err != nil {
		log.Fatalf("failed to init schema: %v", err)
	}

	// 4. Init store, with Redis cache when configured
	var store storage.Store = storage.NewPostgresStore(pool)
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		defer rdb.Close()

		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Fatalf("failed to ping redis: %v", err)
		}
		log.Println("Redis connected")
		store = storage.NewCachedStore(store, rdb)
	}

	// 5. Init model registry
	models := registry.Default()
	if err := registry.Validate(models); err != nil {
		log.Fatalf("invalid model registry: %v", err)
	}

	// 6. Init invoker and orchestrator
	invoker := gateway.New(cfg.GatewayURL, cfg.GatewayAPIKey, models)
	tracer := otel.GetTracerProvider().Tracer("llm-compare")
	orchestrator := compare.NewOrchestrator(invoker, models, tracer)

	// 7. Init background saver (used in async persist mode)
	saver := worker.NewSaver(store, 64)
	saver.Start()
	defer saver.Close()

	// 8. Init handler
	persistSync := cfg.PersistMode == config.PersistSync
	handler := server.NewHandler(orchestrator, store, saver, persistSync)
	log.Printf("Persist mode: %s", cfg.PersistMode)

	// 9. Init Chi router
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok","service":"llm-compare"}`))
	})

	r.Post("/compare", handler.HandleCompare)
	r.Get("/comparison/{id}", handler.HandleGetComparison)
	r.Get("/history", handler.HandleHistory)

	// 10. Graceful shutdown
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 90 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Printf("LLM Compare starting on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	<-quit
	log.Println("Shutting down gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("forced shutdown: %v", err)
	}
	log.Println("Server stopped")
}

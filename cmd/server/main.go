package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"ballot/internal/docstore"
	"ballot/internal/platform/config"
	"ballot/internal/platform/httpserver"
	"ballot/internal/platform/logger"
	"ballot/internal/platform/metrics"
	platformredis "ballot/internal/platform/redis"
	"ballot/internal/registration/handler"
	"ballot/internal/registration/service"
	"ballot/internal/registration/store"
	"ballot/internal/sequence"
	"ballot/pkg/platform/audit"
	"ballot/pkg/platform/middleware/admin"
	"ballot/pkg/platform/middleware/metadata"
	"ballot/pkg/platform/middleware/requestid"
	"ballot/pkg/platform/middleware/requesttime"
)

// main wires dependencies and keeps the server lifecycle small. Business
// logic lives in the internal service packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New()
	ctx := context.Background()

	// Document store: Postgres when configured, in-memory otherwise.
	var docs docstore.Store
	if cfg.PostgresDSN != "" {
		db, err := sql.Open("postgres", cfg.PostgresDSN)
		if err != nil {
			log.Error("open postgres", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		pg := docstore.NewPostgres(db)
		if err := pg.EnsureSchema(ctx); err != nil {
			log.Error("ensure schema", "error", err)
			os.Exit(1)
		}
		docs = pg
	} else {
		log.Warn("no postgres DSN configured, using in-memory document store")
		docs = docstore.NewMemory()
	}

	redisClient, err := platformredis.New(cfg.Redis)
	if err != nil {
		log.Error("connect redis", "error", err)
		os.Exit(1)
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	// ID allocation goes through Redis when available; otherwise the counter
	// document in the store carries the sequence.
	var allocator sequence.Allocator
	if redisClient != nil {
		ra := sequence.NewRedis(redisClient.Client)
		if err := ra.Seed(ctx); err != nil {
			log.Error("seed ID counters", "error", err)
			os.Exit(1)
		}
		allocator = ra
	} else {
		da := sequence.NewDocstore(docs, cfg.Collections.Extras)
		if err := da.Seed(ctx); err != nil {
			log.Error("seed ID counters", "error", err)
			os.Exit(1)
		}
		allocator = da
	}

	var auditor audit.Publisher = audit.NopPublisher{}
	if len(cfg.Kafka.SeedBrokers) > 0 {
		kafka, err := audit.NewKafkaPublisher(cfg.Kafka.SeedBrokers, cfg.Kafka.AuditTopic)
		if err != nil {
			log.Error("connect kafka", "error", err)
			os.Exit(1)
		}
		defer kafka.Close()
		auditor = kafka
	}

	svc, err := service.New(
		store.NewEvents(docs, cfg.Collections),
		store.NewUsers(docs, cfg.Collections),
		store.NewNotifications(docs, cfg.Collections),
		allocator,
		service.WithLogger(log),
		service.WithAuditPublisher(auditor),
		service.WithMetrics(metrics.New()),
	)
	if err != nil {
		log.Error("build service", "error", err)
		os.Exit(1)
	}

	h := handler.New(svc, log)

	router := chi.NewRouter()
	router.Use(chimiddleware.Recoverer)
	router.Use(requestid.Middleware)
	router.Use(requesttime.Middleware)
	router.Use(metadata.ClientMetadata)

	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		if redisClient != nil {
			if err := redisClient.Health(r.Context()); err != nil {
				w.WriteHeader(http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
	})
	router.Handle("/metrics", promhttp.Handler())

	h.Register(router)
	if cfg.AdminToken != "" {
		router.Route("/admin", func(r chi.Router) {
			r.Use(admin.RequireAdminToken(cfg.AdminToken, log))
			h.RegisterAdmin(r)
		})
	} else {
		log.Warn("no admin token configured, administrative routes disabled")
	}

	srv := httpserver.New(cfg.Addr, router)

	go func() {
		log.Info("server starting", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
		os.Exit(1)
	}
	log.Info("server stopped")
}

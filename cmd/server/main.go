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
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/tradedash/portfolio-engine/internal/alert"
	"github.com/tradedash/portfolio-engine/internal/auth"
	"github.com/tradedash/portfolio-engine/internal/config"
	"github.com/tradedash/portfolio-engine/internal/dashboard"
	"github.com/tradedash/portfolio-engine/internal/metrics"
	"github.com/tradedash/portfolio-engine/internal/ranking"
	"github.com/tradedash/portfolio-engine/internal/store"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg := config.Load()

	// --- Initialize backend source ---
	var src store.Source
	var cleanup []func()

	switch {
	case cfg.BackendURL != "":
		src = store.NewRESTSource(cfg.BackendURL, store.WithToken(cfg.BackendToken))
		slog.Info("using REST backend", "url", cfg.BackendURL)

	case cfg.DatabaseURL != "":
		pool, err := pgxpool.New(context.Background(), cfg.DatabaseURL)
		if err != nil {
			slog.Error("database connection failed", "err", err)
			os.Exit(1)
		}
		cleanup = append(cleanup, pool.Close)
		src = store.NewPostgresSource(pool)
		slog.Info("connected to PostgreSQL")

	default:
		slog.Warn("BACKEND_URL and DATABASE_URL not set, using in-memory source (empty until seeded)")
		src = store.NewMemorySource()
	}

	// Wrap with Redis read-through cache if configured.
	if cfg.RedisURL != "" {
		opt, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			slog.Error("invalid REDIS_URL", "err", err)
			os.Exit(1)
		}
		rdb := redis.NewClient(opt)
		cleanup = append(cleanup, func() { rdb.Close() })
		src = store.NewCachedSource(src, rdb, cfg.CacheTTL)
		slog.Info("Redis cache enabled", "ttl", cfg.CacheTTL.String())
	}

	defer func() {
		for _, fn := range cleanup {
			fn()
		}
	}()

	// --- Ranking and alerts ---
	composer := ranking.NewComposer(src,
		ranking.WithLogger(logger),
		ranking.WithConcurrency(cfg.RankingConcurrency),
		ranking.WithFetchTimeout(cfg.RankingFetchTimeout),
		ranking.WithInitialBalance(cfg.InitialBalance),
	)
	checker := alert.NewChecker(cfg.AlertMaxWeight, cfg.AlertMaxLossPercent)

	// --- WebSocket hub ---
	wsHub := dashboard.NewWSHub()
	go wsHub.Run()

	// --- Dashboard service ---
	svc := dashboard.NewService(src, composer, checker, wsHub)

	// --- HTTP router ---
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(metrics.Middleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok","service":"portfolio-engine"}`))
	})

	// Prometheus metrics endpoint.
	r.Handle("/metrics", metrics.Handler())

	var jwtSvc *auth.JWTService
	if cfg.AuthEnabled() {
		jwtSvc = auth.NewJWTService(cfg.JWTSecret)
		slog.Info("bearer authentication enabled for portfolio routes")
	} else {
		slog.Warn("JWT_SECRET not set, portfolio routes are unauthenticated")
	}

	r.Route("/api/v1", func(r chi.Router) {
		// WebSocket endpoint for leaderboard pushes.
		r.Get("/ws", wsHub.HandleWS)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Timeout(30 * time.Second))

			// Leaderboard.
			r.Get("/ranking", svc.GetRanking)

			// Portfolio views, scoped to the path user.
			r.Route("/portfolio/{userID}", func(r chi.Router) {
				if jwtSvc != nil {
					r.Use(auth.Middleware(jwtSvc))
					r.Use(auth.RequirePathUser("userID"))
				}
				r.Get("/", svc.GetPortfolio)
				r.Get("/distribution", svc.GetDistribution)
				r.Get("/alerts", svc.GetAlerts)
				r.Get("/transactions", svc.GetTransactions)
				r.Post("/refresh", svc.Refresh)
			})
		})
	})

	// --- Server ---
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("portfolio-engine listening", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "err", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	slog.Info("shutting down portfolio-engine...")
	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("shutdown error", "err", err)
	}
	fmt.Println("portfolio-engine stopped")
}

package main

import (
	"context"
	"net/http"
	"time"

	"librarycat/internal/catalog"
	"librarycat/internal/config"
	"librarycat/internal/httpx"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

type pinger interface {
	Ping(ctx context.Context) error
}

// newRouter assembles the middleware chain and mounts the catalog routes.
// The returned limiter must be closed on shutdown.
func newRouter(cfg config.Config, log *zap.Logger, db pinger, handler *catalog.HTTPHandler) (http.Handler, *httpx.RateLimitMiddleware) {
	limiter := httpx.NewRateLimitMiddleware(cfg.RateLimitRPS, cfg.RateLimitBurst)

	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(httpx.RequestIDMiddleware)
	r.Use(httpx.AccessLogMiddleware(log))
	r.Use(httpx.RecoveryMiddleware)
	r.Use(httpx.SecurityHeadersMiddleware(cfg.EnableHSTS))
	r.Use(httpx.CORSMiddleware(cfg.CORSAllowedOrigins))
	r.Use(httpx.RequestSizeLimitMiddleware(cfg.MaxBodyBytes))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 500*time.Millisecond)
		defer cancel()
		if err := db.Ping(ctx); err != nil {
			http.Error(w, "db not ready", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	r.Group(func(r chi.Router) {
		r.Use(limiter.Middleware)
		handler.Routes(r)
	})

	return r, limiter
}

package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/ashureev/battleplan/internal/api"
	"github.com/ashureev/battleplan/internal/config"
	"github.com/ashureev/battleplan/web"
)

// newRouter builds the chi router. RealIP is mounted only when proxy headers
// are trusted; otherwise clients are keyed by the connection address.
func newRouter(cfg *config.Config, handler *api.Handler, strategyMW ...func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	// Global middleware.
	r.Use(chiMiddleware.RequestID)
	if cfg.TrustProxyHeaders {
		r.Use(chiMiddleware.RealIP)
	}
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/health"))

	handler.RegisterRoutes(r, strategyMW...)
	r.Handle("/static/*", web.StaticHandler())

	return r
}

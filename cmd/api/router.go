package main

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/pkordes/tagstore/internal/config"
	"github.com/pkordes/tagstore/internal/handler"
	"github.com/pkordes/tagstore/internal/middleware"
)

// newRouter builds the full middleware stack and registers every route.
//
// Middleware is applied in order: RequestID → RealIP → Principal → Logger →
// Recoverer → Metrics → CORS → MaxBodySize.
// Recoverer sits inside the logger so a panic is still logged as a 500.
func newRouter(cfg config.Config, svc handler.TagServicer, logger *slog.Logger, metrics *middleware.Metrics) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewPrincipalHandler(cfg.PrincipalHeader, cfg.DefaultPrincipal))
	r.Use(middleware.NewSlogLogger(logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(metrics.Handler)
	r.Use(middleware.NewCORSHandler(cfg.CORSOrigins, cfg.PrincipalHeader))
	r.Use(middleware.NewMaxBodySizeHandler(cfg.MaxBodyBytes))

	r.Method(http.MethodGet, "/metrics", metrics.Exposition())
	handler.NewServer(svc).Routes(r)
	return r
}

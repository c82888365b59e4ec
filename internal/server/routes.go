package server

import (
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"socialpulse/internal/handlers"
	"socialpulse/internal/handlers/api"
	"socialpulse/internal/store"
)

// RegisterRoutes registers all application routes.
func (s *Server) RegisterRoutes(st store.Store, ingester api.Ingester) {
	// Initialize handlers
	accountsHandler := api.NewAccountsHandler(st, s.Cfg)
	uploadHandler := api.NewUploadHandler(ingester, s.Cfg)
	statsHandler := api.NewStatsHandler(st)
	probeHandler := handlers.NewProbeHandler(st)

	// Probes and metrics
	s.App.Get("/healthz", probeHandler.Liveness)
	s.App.Get("/readyz", probeHandler.Readiness)
	s.App.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	// Account queries
	accounts := s.App.Group("/accounts")
	accounts.Get("/category/:name", accountsHandler.ByCategory)
	accounts.Get("/million-plus", accountsHandler.MillionPlus)
	accounts.Get("/growth", accountsHandler.Growth)
	accounts.Post("/upload", uploadHandler.Upload)

	s.App.Get("/stats", statsHandler.Tables)
}

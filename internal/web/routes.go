package web

import (
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/gatewise/gatekeeper/internal/web/handlers"
)

func (s *Server) setupRoutes(deps handlers.Deps) {
	enrollHandler := handlers.NewEnrollHandler(deps.Enroller)
	gatepassHandler := handlers.NewGatepassHandler(deps.Issuer, deps.Enroller, deps.Metrics)
	verifyHandler := handlers.NewVerifyHandler(deps.Verifier)

	s.router.Get("/api/v1/health", handlers.HealthCheck)
	s.router.Handle("/metrics", promhttp.Handler())

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Post("/gatepass", gatepassHandler.Issue)
		r.Post("/enroll", enrollHandler.Enroll)
		r.Post("/verify", verifyHandler.Verify)
	})
}

/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the chi router, middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. Logger:     Request logging
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. RequestID:  Unique ID per request for tracing
  4. CORS:       Cross-origin requests for the dashboard frontend

ROUTE GROUPS:
  /api/projects/*         Project views and project-scoped reports
  /api/reports/*          Month-wise reports
  /api/financial-years/*  FY summaries and project lists
  /api/departments        Department views
  /api/organisations/*    Organisation views
  /api/scenarios/*        Demo data loading

SECURITY NOTE:
  Authentication belongs to the surrounding application's API gateway;
  the engine itself never touches credentials.

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:8080"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	// API routes
	r.Route("/api", func(r chi.Router) {
		r.Route("/projects", func(r chi.Router) {
			r.Get("/", h.ListProjects)
			r.Get("/{id}", h.GetProject)
			r.Get("/{id}/total-cost", h.GetProjectTotalCost)
			r.Get("/{id}/assignments", h.GetProjectAssignments)
			r.Get("/{id}/contributions", h.GetEmployeeContributions)
		})

		r.Route("/reports", func(r chi.Router) {
			r.Get("/monthwise", h.GetMonthWiseReport)
		})

		r.Route("/financial-years", func(r chi.Router) {
			r.Get("/", h.ListFinancialYears)
			r.Get("/{label}/summary", h.GetFinancialYearSummary)
			r.Get("/{label}/projects", h.GetFinancialYearProjects)
		})

		r.Get("/departments", h.ListDepartments)
		r.Get("/organisations/{id}", h.GetOrganisation)

		r.Route("/scenarios", func(r chi.Router) {
			r.Get("/", h.ListScenarios)
			r.Get("/current", h.GetCurrentScenario)
			r.Post("/load", h.LoadScenario)
		})
	})

	return r
}

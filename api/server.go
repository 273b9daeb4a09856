/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

ROUTER: chi
  Chi was chosen for:
  - Lightweight and fast
  - Context-based
  - Middleware support
  - RESTful route patterns

MIDDLEWARE STACK:
  1. Logger:     Request logging
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. RequestID:  Unique ID per request for tracing
  4. CORS:       Cross-origin requests for frontend

ROUTE GROUPS:
  /api/candidates       Candidate intake
  /api/employees/*      Employee records, history, timeline
  /api/contracts/*      Contract lifecycle and ledger
  /api/positions/*      Staffing positions and vacancies
  /api/catalog/*        Reference data seeding

SECURITY NOTE:
  No authentication middleware currently. All endpoints are public.

SEE ALSO:
  - handlers.go: handler implementations
  - cmd/server/main.go: server startup
*/
package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler, allowedOrigins []string) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	// API routes
	r.Route("/api", func(r chi.Router) {
		r.Post("/candidates", h.RegisterCandidate)

		// Employee routes
		r.Route("/employees", func(r chi.Router) {
			r.Get("/{id}", h.GetEmployee)
			r.Delete("/{id}", h.DeleteEmployee)
			r.Get("/{id}/timeline", h.GetTimeline)
			r.Get("/{id}/movements", h.GetEmployeeMovements)
			r.Get("/{id}/closed", h.GetClosedContracts)
		})

		// Contract routes
		r.Route("/contracts", func(r chi.Router) {
			r.Post("/", h.Hire)
			r.Get("/pending", h.ListPendingMovements)
			r.Get("/{caseFile}", h.GetContract)
			r.Post("/{caseFile}/move", h.Move)
			r.Post("/{caseFile}/flag", h.FlagForMovement)
			r.Post("/{caseFile}/terminate", h.Terminate)
			r.Get("/{caseFile}/movements", h.GetCaseMovements)
			r.Get("/{caseFile}/notice", h.GetNotice)
		})

		// Position routes
		r.Route("/positions", func(r chi.Router) {
			r.Get("/", h.ListPositions)
			r.Post("/", h.CreatePosition)
			r.Get("/vacancies", h.VacancyReport)
		})

		// Catalog routes
		r.Route("/catalog", func(r chi.Router) {
			r.Post("/seed", h.SeedCatalog)
		})
	})

	return r
}

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
  /api/policies/*   Policy documents and their acknowledgements
  /api/surveys/*    Survey documents and their acknowledgements
  /api/employees/*  Employee directory and lifecycle
  /api/departments  The configured department universe

  The policy and survey groups are the same handler set mounted twice;
  the engine behind each mount carries the kind.

SECURITY NOTE:
  No authentication middleware currently. All endpoints are public.

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/garnet/ack-portal/engine"
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
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	// API routes
	r.Route("/api", func(r chi.Router) {
		// Document routes, one mount per kind
		r.Route("/policies", documentRouter(h, engine.KindPolicy))
		r.Route("/surveys", documentRouter(h, engine.KindSurvey))

		// Employee routes
		r.Route("/employees", func(r chi.Router) {
			r.Get("/", h.ListEmployees)
			r.Post("/", h.RegisterEmployee)
			r.Get("/{id}", h.GetEmployee)
			r.Put("/{id}", h.UpdateEmployee)
			r.Post("/{id}/activate", h.ActivateEmployee)
			r.Post("/{id}/deactivate", h.DeactivateEmployee)
			r.Put("/{id}/department", h.ChangeDepartment)
		})

		// Department universe
		r.Get("/departments", func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, http.StatusOK, h.cfg.Departments)
		})
	})

	return r
}

func documentRouter(h *Handler, kind engine.Kind) func(chi.Router) {
	d := documentRoutes{h: h, eng: h.engineFor(kind)}
	return func(r chi.Router) {
		r.Get("/", d.List)
		r.Post("/", d.Create)
		r.Get("/{id}", d.Get)
		r.Put("/{id}", d.Update)
		r.Delete("/{id}", d.Delete)
		r.Post("/{id}/acknowledge", d.Acknowledge)
		r.Get("/{id}/unacknowledged", d.Unacknowledged)
		r.Get("/employees/{employeeID}", d.EmployeeDocuments)
	}
}

package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/sumerudigitals/onboard/internal/api/handlers"
	"github.com/sumerudigitals/onboard/internal/api/middleware"
	"github.com/sumerudigitals/onboard/internal/config"
)

// NewRouter creates the HTTP router with all API routes.
func NewRouter(cfg *config.Config, h *handlers.Handlers) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Compress(5))
	r.Use(middleware.Logger)
	r.Use(middleware.Telemetry)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-Id"},
		ExposedHeaders:   []string{"X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	hrAuth := middleware.NewHRAuth(cfg.Auth.HRAPIKeys)

	// Health & info
	r.Get("/health", healthHandler)
	r.Get("/version", versionHandler(cfg))

	// Chat
	r.Route("/chatbot", func(r chi.Router) {
		r.Post("/chat", h.Chat)
	})

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		// Employees
		r.Route("/employees", func(r chi.Router) {
			r.Get("/", h.ListEmployees)
			r.Post("/", h.CreateEmployee)
			r.Get("/search", h.SearchEmployees)
			r.Route("/{employeeId}", func(r chi.Router) {
				r.Get("/", h.GetEmployee)
				r.Put("/", h.UpdateEmployee)
				r.Get("/personal-info", h.GetPersonalInfo)
				r.Put("/personal-info", h.UpsertPersonalInfo)
			})
		})

		// Tasks & modules
		r.Put("/tasks/{token}/{title}", h.UpdateTask)
		r.Route("/modules", func(r chi.Router) {
			r.Get("/", h.ListModules)
			r.Post("/", h.CreateModule)
			r.Put("/{token}/{moduleId}", h.UpdateModuleProgress)
		})

		// Feedback
		r.Post("/feedback/{token}", h.SubmitFeedback)

		// Grounding inspection: the exact data the chat prompt sees
		r.Route("/grounding", func(r chi.Router) {
			r.Get("/context/{token}/{page}", h.GetPageContext)
			r.Get("/tasks/{token}", h.GetTaskStatus)
			r.Get("/next-task/{token}", h.GetNextTask)
			r.Get("/documents/{token}", h.GetDocumentStatus)
			r.Get("/module-progress/{token}", h.GetModuleProgress)
		})

		// HR analytics, API-key protected when keys are configured
		r.Route("/hr", func(r chi.Router) {
			r.Use(hrAuth.Middleware)
			r.Get("/analytics", h.GetAnalytics)
			r.Get("/summary", h.GetPopulationSummary)
			r.Get("/departments/{department}/stats", h.GetDepartmentStats)
			r.Get("/feedback/summary", h.GetFeedbackSummary)
			r.Get("/employees", h.ListHREmployees)
			r.Get("/employees/{employeeId}", h.GetEmployeeDetails)
		})
	})

	return r
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	json.NewEncoder(w).Encode(map[string]string{
		"status":  "healthy",
		"service": "onboard-backend",
	})
}

func versionHandler(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{
			"version": cfg.Version,
		})
	}
}

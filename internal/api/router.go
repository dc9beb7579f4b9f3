package api

import (
	"log/slog"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/kartsetup/setupsheet/internal/api/handler"
	"github.com/kartsetup/setupsheet/internal/api/middleware"
	"github.com/kartsetup/setupsheet/internal/auth"
	"github.com/kartsetup/setupsheet/internal/submission"
	"github.com/kartsetup/setupsheet/internal/team"
)

// AuthService is everything the router needs from manager authentication.
type AuthService interface {
	handler.ManagerAuthenticator
	middleware.TokenAuthenticator
	middleware.TeamAuthorizer
}

var _ AuthService = (*auth.Service)(nil)

// RouterDeps holds all dependencies needed by the router.
type RouterDeps struct {
	DBPinger       handler.DBPinger
	Version        string
	Teams          team.Repository
	Submissions    *submission.Service
	Auth           AuthService
	OpenAPISpec    []byte
	AllowedOrigins []string
}

// NewRouter creates and configures a Chi router with all middleware and routes.
func NewRouter(deps RouterDeps) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recovery)
	r.Use(chimiddleware.Logger)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   deps.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"Content-Disposition", "X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	healthHandler := handler.NewHealthHandler(deps.DBPinger, deps.Version)
	r.Get("/health", healthHandler.ServeHTTP)

	if len(deps.OpenAPISpec) > 0 {
		openapiHandler, err := handler.NewOpenAPIHandler(deps.OpenAPISpec)
		if err != nil {
			slog.Error("OpenAPI document unavailable", "error", err)
		} else {
			r.Get("/openapi.json", openapiHandler.ServeHTTP)
		}
	}

	if deps.Teams != nil {
		teamHandler := handler.NewTeamHandler(deps.Teams)
		r.Route("/teams", func(r chi.Router) {
			r.Get("/", teamHandler.List)
			r.Get("/{slug}", teamHandler.Get)
			r.Get("/{slug}/config", teamHandler.Config)
		})
	}

	if deps.Auth != nil {
		authHandler := handler.NewAuthHandler(deps.Auth)
		r.Route("/auth/manager", func(r chi.Router) {
			r.Post("/login", authHandler.Login)
			r.Get("/check/{email}", authHandler.CheckManager)
		})
	}

	if deps.Submissions != nil && deps.Auth != nil {
		subHandler := handler.NewSubmissionHandler(deps.Submissions, deps.Auth)
		r.Route("/submissions", func(r chi.Router) {
			r.Post("/", subHandler.Create)
			r.Get("/last/{email}", subHandler.Last)

			r.Group(func(r chi.Router) {
				r.Use(middleware.Auth(deps.Auth))
				r.Get("/", subHandler.List)
				r.Get("/export", subHandler.Export)
				r.Post("/bulk-delete", subHandler.BulkDelete)
				r.Get("/{id}", subHandler.Get)
				r.Get("/{id}/pdf", subHandler.PDF)
				r.Put("/{id}", subHandler.Update)
				r.Patch("/{id}/favorite", subHandler.Favorite)
				r.Delete("/{id}", subHandler.Delete)
			})
		})
	}

	return r
}

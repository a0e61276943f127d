package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/Rayyy-dev/User-Management/internal/api/auth"
	"github.com/Rayyy-dev/User-Management/internal/api/health"
	"github.com/Rayyy-dev/User-Management/internal/api/user"
)

// Config contains the handlers and middleware needed for the router setup.
type Config struct {
	UserHandler       user.Handler
	AuthHandler       auth.Handler
	HealthHandler     *health.HandlerImpl
	SessionMiddleware func(http.Handler) http.Handler
}

// SetupRouter wires all routes. Server-wide middleware (request ID, real
// IP, recoverer, timeout) is applied before mounting this router in main.
func SetupRouter(cfg *Config) chi.Router {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:3000"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", cfg.HealthHandler.Health)

	// Public routes
	r.Group(func(r chi.Router) {
		r.Get("/api", cfg.UserHandler.APIInfo)
		r.Post("/api/users", cfg.UserHandler.CreateUser)
		r.Get("/api/users", cfg.UserHandler.ListUsers)
		r.Get("/api/users/{id}", cfg.UserHandler.GetUser)
		r.Delete("/api/users/{id}", cfg.UserHandler.DeleteUser)

		r.Post("/login", cfg.AuthHandler.Login)
		r.Get("/logout", cfg.AuthHandler.Logout)
	})

	// Session-protected routes
	r.Group(func(r chi.Router) {
		r.Use(cfg.SessionMiddleware)

		r.Get("/profile", cfg.AuthHandler.GetProfile)
		r.Put("/profile", cfg.AuthHandler.UpdateProfile)
	})

	return r
}

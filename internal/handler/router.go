package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/digi0/ACE/internal/middleware"
	"github.com/digi0/ACE/internal/pkg/response"
	"github.com/digi0/ACE/internal/service"
	"github.com/digi0/ACE/internal/vault"
)

// Deps are the collaborators the router is built from.
type Deps struct {
	Auth         service.AuthService
	OAuth        service.OAuthService
	Chats        service.ChatService
	Intelligence service.IntelligenceService
	Vault        *vault.Vault
	Cookies      SessionCookies
	CORSOrigins  []string
	// RequestTimeout bounds each request. It must exceed the model timeout.
	RequestTimeout time.Duration
	Components     map[string]Pinger
	Logger         *slog.Logger
}

// NewRouter builds the full HTTP surface.
func NewRouter(d Deps) http.Handler {
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	if d.RequestTimeout <= 0 {
		d.RequestTimeout = 120 * time.Second
	}

	authHandler := NewAuthHandler(d.Auth, d.OAuth, d.Cookies)
	userHandler := NewUserHandler(d.Auth, d.Intelligence)
	chatHandler := NewChatHandler(d.Chats)
	policyHandler := NewPolicyHandler(d.Vault, d.Auth)
	requireSession := middleware.RequireSession(d.Auth, d.Cookies.Name)

	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logging(d.Logger))
	r.Use(middleware.Metrics())
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.CORS(d.CORSOrigins))
	r.Use(chimiddleware.Timeout(d.RequestTimeout))

	r.Get("/health", Health)
	r.Get("/ready", Ready(d.Components))
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			response.OK(w, MessageResponse{Message: "ACE API is running"})
		})

		r.Mount("/auth", authHandler.Routes(requireSession))

		r.Get("/user/profile-options", userHandler.ProfileOptions)
		r.Get("/policies", policyHandler.List)
		r.Get("/policies/{id}", policyHandler.Get)

		// Authenticated routes
		r.Group(func(r chi.Router) {
			r.Use(requireSession)

			r.Get("/user/profile", userHandler.GetProfile)
			r.Post("/user/profile", userHandler.SaveProfile)
			r.Get("/student/intelligence", userHandler.Intelligence)

			r.Get("/chats", chatHandler.List)
			r.Post("/chat/send", chatHandler.Send)
			r.Get("/chat/{id}", chatHandler.Get)
			r.Delete("/chat/{id}", chatHandler.Delete)

			r.Route("/admin", func(r chi.Router) {
				r.Use(middleware.RequireAdmin)
				r.Mount("/", policyHandler.AdminRoutes())
			})
		})
	})

	return r
}

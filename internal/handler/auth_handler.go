package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/digi0/ACE/internal/middleware"
	apierrors "github.com/digi0/ACE/internal/pkg/errors"
	"github.com/digi0/ACE/internal/pkg/response"
	"github.com/digi0/ACE/internal/service"
)

// AuthHandler handles signup, login, OAuth exchange and logout.
type AuthHandler struct {
	auth     service.AuthService
	oauth    service.OAuthService
	cookies  SessionCookies
	validate *validator.Validate
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(auth service.AuthService, oauth service.OAuthService, cookies SessionCookies) *AuthHandler {
	return &AuthHandler{
		auth:     auth,
		oauth:    oauth,
		cookies:  cookies,
		validate: newValidator(),
	}
}

// Routes returns a chi router with auth routes. requireSession guards the
// routes that act on the caller's own session.
func (h *AuthHandler) Routes(requireSession func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	r.Post("/signup", h.Signup)
	r.Post("/login", h.Login)
	r.Post("/session", h.ExchangeSession)

	r.With(requireSession).Get("/me", h.Me)
	r.With(requireSession).Post("/logout", h.Logout)

	return r
}

// SignupRequest is the HTTP request body for account creation.
type SignupRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
	Name     string `json:"name" validate:"required"`
}

// Signup handles POST /api/auth/signup
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req SignupRequest
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}

	user, session, err := h.auth.Signup(r.Context(), req.Email, req.Password, req.Name)
	if err != nil {
		response.Error(w, err)
		return
	}

	h.cookies.Set(w, r, session.Token)
	response.OK(w, toUserResponse(user, session.Token))
}

// LoginRequest is the HTTP request body for password login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// Login handles POST /api/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}

	user, session, err := h.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		response.Error(w, err)
		return
	}

	h.cookies.Set(w, r, session.Token)
	response.OK(w, toUserResponse(user, session.Token))
}

// ExchangeSessionRequest carries the identity provider's session id.
type ExchangeSessionRequest struct {
	SessionID string `json:"session_id" validate:"required"`
}

// ExchangeSession handles POST /api/auth/session
func (h *AuthHandler) ExchangeSession(w http.ResponseWriter, r *http.Request) {
	var req ExchangeSessionRequest
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}

	user, session, err := h.oauth.ExchangeSession(r.Context(), req.SessionID)
	if err != nil {
		response.Error(w, err)
		return
	}

	h.cookies.Set(w, r, session.Token)
	response.OK(w, toUserResponse(user, session.Token))
}

// Me handles GET /api/auth/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())
	if user == nil {
		response.Error(w, apierrors.ErrUnauthenticated)
		return
	}
	response.OK(w, toUserResponse(user, ""))
}

// Logout handles POST /api/auth/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.auth.RevokeSession(r.Context(), middleware.GetSessionToken(r.Context())); err != nil {
		response.Error(w, err)
		return
	}

	h.cookies.Clear(w, r)
	response.OK(w, MessageResponse{Message: "Logged out successfully"})
}

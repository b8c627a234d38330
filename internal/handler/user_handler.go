package handler

import (
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/digi0/ACE/internal/middleware"
	"github.com/digi0/ACE/internal/models"
	"github.com/digi0/ACE/internal/pkg/response"
	"github.com/digi0/ACE/internal/service"
)

// UserHandler serves the caller's profile and dashboard insight.
type UserHandler struct {
	auth         service.AuthService
	intelligence service.IntelligenceService
	options      service.ProfileOptions
	validate     *validator.Validate
}

// NewUserHandler creates a new user handler.
func NewUserHandler(auth service.AuthService, intelligence service.IntelligenceService) *UserHandler {
	return &UserHandler{
		auth:         auth,
		intelligence: intelligence,
		options:      service.DefaultProfileOptions(),
		validate:     newValidator(),
	}
}

// ProfileResponse wraps the caller's profile.
type ProfileResponse struct {
	ProfileComplete bool            `json:"profile_complete"`
	Profile         *models.Profile `json:"profile"`
}

// GetProfile handles GET /api/user/profile
func (h *UserHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())
	response.OK(w, ProfileResponse{ProfileComplete: user.ProfileComplete, Profile: user.Profile})
}

// SaveProfile handles POST /api/user/profile. Repeated calls replace the
// stored profile.
func (h *UserHandler) SaveProfile(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())

	var req models.Profile
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}

	updated, err := h.auth.UpdateProfile(r.Context(), user.ID, req)
	if err != nil {
		response.Error(w, err)
		return
	}

	response.OK(w, ProfileResponse{ProfileComplete: updated.ProfileComplete, Profile: updated.Profile})
}

// ProfileOptions handles GET /api/user/profile-options
func (h *UserHandler) ProfileOptions(w http.ResponseWriter, r *http.Request) {
	response.OK(w, h.options)
}

// Intelligence handles GET /api/student/intelligence
func (h *UserHandler) Intelligence(w http.ResponseWriter, r *http.Request) {
	response.OK(w, h.intelligence.ForUser(middleware.GetUser(r.Context())))
}

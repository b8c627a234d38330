package handler

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/digi0/ACE/internal/models"
	apierrors "github.com/digi0/ACE/internal/pkg/errors"
	"github.com/digi0/ACE/internal/pkg/response"
	"github.com/digi0/ACE/internal/service"
	"github.com/digi0/ACE/internal/vault"
)

// PolicyHandler serves the policy vault and the admin endpoints.
type PolicyHandler struct {
	vault    *vault.Vault
	auth     service.AuthService
	validate *validator.Validate
}

// NewPolicyHandler creates a new policy handler.
func NewPolicyHandler(v *vault.Vault, auth service.AuthService) *PolicyHandler {
	return &PolicyHandler{
		vault:    v,
		auth:     auth,
		validate: newValidator(),
	}
}

// AdminRoutes returns the routes mounted under /api/admin. Callers must
// already be authenticated admins.
func (h *PolicyHandler) AdminRoutes() chi.Router {
	r := chi.NewRouter()

	r.Get("/policies", h.List)
	r.Post("/policies", h.Create)
	r.Get("/policies/{id}", h.Get)
	r.Put("/policies/{id}", h.Update)
	r.Delete("/policies/{id}", h.Delete)
	r.Post("/make-admin/{user_id}", h.MakeAdmin)

	return r
}

func vaultError(err error) error {
	switch {
	case errors.Is(err, vault.ErrPolicyNotFound):
		return apierrors.NewNotFoundError("Policy")
	case errors.Is(err, vault.ErrPolicyExists):
		return apierrors.ErrConflict.WithMessage("Policy already exists")
	default:
		return err
	}
}

// List handles GET /api/policies and GET /api/admin/policies
func (h *PolicyHandler) List(w http.ResponseWriter, r *http.Request) {
	response.OK(w, h.vault.List())
}

// Create handles POST /api/admin/policies
func (h *PolicyHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.Policy
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}

	p, err := h.vault.Create(r.Context(), req)
	if err != nil {
		response.Error(w, vaultError(err))
		return
	}
	response.Created(w, p)
}

// Update handles PUT /api/admin/policies/{id}. The id in the path wins over
// any vault_id in the body.
func (h *PolicyHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req models.Policy
	if !decodeJSON(w, r, &req) {
		return
	}
	req.VaultID = id
	if !validateStruct(w, h.validate, &req) {
		return
	}

	p, err := h.vault.Update(r.Context(), id, req)
	if err != nil {
		response.Error(w, vaultError(err))
		return
	}
	response.OK(w, p)
}

// Delete handles DELETE /api/admin/policies/{id}
func (h *PolicyHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.vault.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		response.Error(w, vaultError(err))
		return
	}
	response.OK(w, map[string]string{"status": "deleted"})
}

// MakeAdmin handles POST /api/admin/make-admin/{user_id}
func (h *PolicyHandler) MakeAdmin(w http.ResponseWriter, r *http.Request) {
	userID, err := uuid.Parse(chi.URLParam(r, "user_id"))
	if err != nil {
		response.Error(w, apierrors.NewValidationError("user_id", "invalid UUID format"))
		return
	}

	user, err := h.auth.PromoteToAdmin(r.Context(), userID)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.OK(w, toUserResponse(user, ""))
}

// Get handles GET /api/policies/{id}
func (h *PolicyHandler) Get(w http.ResponseWriter, r *http.Request) {
	p, err := h.vault.Get(chi.URLParam(r, "id"))
	if err != nil {
		response.Error(w, vaultError(err))
		return
	}
	response.OK(w, p)
}

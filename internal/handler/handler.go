// Package handler provides HTTP handlers for the ACE API.
package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/digi0/ACE/internal/models"
	apierrors "github.com/digi0/ACE/internal/pkg/errors"
	"github.com/digi0/ACE/internal/pkg/response"
)

// newValidator returns a validator that reports fields by their JSON names.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// decodeAndValidate reads a JSON body into dst and validates it. On failure
// it writes the error response and returns false.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, v *validator.Validate, dst any) bool {
	return decodeJSON(w, r, dst) && validateStruct(w, v, dst)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		response.Error(w, apierrors.ErrBadRequest.WithMessage("Invalid request body"))
		return false
	}
	return true
}

func validateStruct(w http.ResponseWriter, v *validator.Validate, dst any) bool {
	if err := v.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			response.Error(w, apierrors.ErrBadRequest.WithMessage("Invalid request body"))
			return false
		}
		fields := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			fields[fe.Field()] = validationMessage(fe)
		}
		response.ValidationErrors(w, fields)
		return false
	}
	return true
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "email":
		return "must be a valid email address"
	case "oneof":
		return "must be one of: " + fe.Param()
	case "max":
		return "must be at most " + fe.Param() + " characters"
	case "url":
		return "must be a valid URL"
	default:
		return "is invalid"
	}
}

// UserResponse is the public shape of a user. SessionToken is only set on
// the responses that create a session.
type UserResponse struct {
	UserID          string `json:"user_id"`
	Email           string `json:"email"`
	Name            string `json:"name"`
	Picture         string `json:"picture"`
	IsAdmin         bool   `json:"is_admin"`
	ProfileComplete bool   `json:"profile_complete"`
	SessionToken    string `json:"session_token,omitempty"`
}

func toUserResponse(u *models.User, token string) UserResponse {
	resp := UserResponse{
		UserID:          u.ID.String(),
		Email:           u.Email,
		Name:            u.Name,
		IsAdmin:         u.IsAdmin,
		ProfileComplete: u.ProfileComplete,
		SessionToken:    token,
	}
	if u.AvatarURL != nil {
		resp.Picture = *u.AvatarURL
	}
	return resp
}

// MessageResponse is a bare {"message": ...} body.
type MessageResponse struct {
	Message string `json:"message"`
}

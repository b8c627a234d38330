// Package models defines the records persisted by ACE.
package models

import (
	"time"

	"github.com/google/uuid"
)

// AuthProviderOAuth marks users created through the external identity exchange.
const AuthProviderOAuth = "oauth"

// User represents a student or staff account.
type User struct {
	ID              uuid.UUID `json:"user_id" db:"id"`
	Email           string    `json:"email" db:"email"`
	Name            string    `json:"name" db:"name"`
	AvatarURL       *string   `json:"picture,omitempty" db:"avatar_url"`
	PasswordHash    *string   `json:"-" db:"password_hash"`
	AuthProvider    *string   `json:"auth_provider,omitempty" db:"auth_provider"`
	IsAdmin         bool      `json:"is_admin" db:"is_admin"`
	Profile         *Profile  `json:"profile,omitempty" db:"profile"`
	ProfileComplete bool      `json:"profile_complete" db:"profile_complete"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
}

// Profile holds the onboarding answers used to personalize advice.
type Profile struct {
	Campus               string `json:"campus" validate:"required"`
	Major                string `json:"major" validate:"required"`
	AcademicLevel        string `json:"academic_level" validate:"required"`
	CreditLoad           string `json:"credit_load" validate:"required"`
	FinancialAidStatus   string `json:"financial_aid_status" validate:"required"`
	InternationalStudent bool   `json:"international_student"`
	ExpectedGraduation   string `json:"expected_graduation" validate:"required"`
	CurrentSemester      string `json:"current_semester" validate:"required"`
}

// Session represents an authenticated user session.
type Session struct {
	Token     string    `json:"token" db:"token"`
	UserID    uuid.UUID `json:"user_id" db:"user_id"`
	ExpiresAt time.Time `json:"expires_at" db:"expires_at"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// ExpiredAt reports whether the session is past its expiry at now.
// Both instants are compared in UTC.
func (s *Session) ExpiredAt(now time.Time) bool {
	return s.ExpiresAt.UTC().Before(now.UTC())
}

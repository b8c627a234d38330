package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionCookies_Set(t *testing.T) {
	cookies := SessionCookies{Name: "session_token", MaxAge: 7 * 24 * time.Hour}

	tests := []struct {
		host         string
		wantSecure   bool
		wantSameSite http.SameSite
	}{
		{"localhost:8001", false, http.SameSiteLaxMode},
		{"LOCALHOST", false, http.SameSiteLaxMode},
		{"127.0.0.1:8001", false, http.SameSiteLaxMode},
		{"127.1.2.3", false, http.SameSiteLaxMode},
		{"[::1]:8001", false, http.SameSiteLaxMode},
		{"api.ace.psu.edu", true, http.SameSiteNoneMode},
		{"10.0.0.5:8001", true, http.SameSiteNoneMode},
	}

	for _, tt := range tests {
		t.Run(tt.host, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
			req.Host = tt.host
			rec := httptest.NewRecorder()

			cookies.Set(rec, req, "session_abc")

			got := rec.Result().Cookies()
			require.Len(t, got, 1)
			c := got[0]
			assert.Equal(t, "session_token", c.Name)
			assert.Equal(t, "session_abc", c.Value)
			assert.Equal(t, "/", c.Path)
			assert.True(t, c.HttpOnly)
			assert.Equal(t, 604800, c.MaxAge)
			assert.Equal(t, tt.wantSecure, c.Secure)
			assert.Equal(t, tt.wantSameSite, c.SameSite)
		})
	}
}

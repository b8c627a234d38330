package handler

import (
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/sessions"
)

// SessionCookies writes and clears the session cookie.
type SessionCookies struct {
	Name   string
	MaxAge time.Duration
}

// isLoopbackHost reports whether the request was addressed to this machine,
// in which case the cookie cannot be Secure over plain http.
func isLoopbackHost(r *http.Request) bool {
	host := r.Host
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	host = strings.Trim(host, "[]")
	if strings.EqualFold(host, "localhost") {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}

func (c SessionCookies) options(r *http.Request, maxAge int) *sessions.Options {
	opts := &sessions.Options{
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteNoneMode,
	}
	if isLoopbackHost(r) {
		opts.Secure = false
		opts.SameSite = http.SameSiteLaxMode
	}
	return opts
}

// Set attaches a cookie carrying token to w.
func (c SessionCookies) Set(w http.ResponseWriter, r *http.Request, token string) {
	http.SetCookie(w, sessions.NewCookie(c.Name, token, c.options(r, int(c.MaxAge.Seconds()))))
}

// Clear expires the cookie on the client.
func (c SessionCookies) Clear(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, sessions.NewCookie(c.Name, "", c.options(r, -1)))
}

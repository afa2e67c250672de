// Package auth identifies household members by the first name stored in a
// long-lived cookie. There are no passwords; the cookie is an attribution
// label, not a credential.
package auth

import (
	"context"
	"net/http"
	"net/url"
	"time"
)

const (
	CookieName   = "dinner_roulette_user"
	CookieMaxAge = 365 * 24 * time.Hour

	NotRegisteredMessage = "User not registered. Please register first."
)

type contextKey struct{}

// Auth reads and writes the identity cookie
type Auth struct {
	secure bool
}

// New creates a new Auth. secure marks the cookie HTTPS-only.
func New(secure bool) *Auth {
	return &Auth{secure: secure}
}

// UserFromRequest returns the username stored in the cookie, if any
func (a *Auth) UserFromRequest(r *http.Request) (string, bool) {
	cookie, err := r.Cookie(CookieName)
	if err != nil || cookie.Value == "" {
		return "", false
	}
	name, err := url.QueryUnescape(cookie.Value)
	if err != nil || name == "" {
		return "", false
	}
	return name, true
}

// SetUserCookie stores username on the response. The value is escaped so
// names with spaces, apostrophes or accents survive the cookie grammar.
func (a *Auth) SetUserCookie(w http.ResponseWriter, username string) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    url.QueryEscape(username),
		Path:     "/",
		HttpOnly: true,
		Secure:   a.secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(CookieMaxAge.Seconds()),
	})
}

// ClearUserCookie removes the identity cookie
func (a *Auth) ClearUserCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   a.secure,
		MaxAge:   -1,
	})
}

// RequireUser middleware for API endpoints that attribute writes (returns 401)
func (a *Auth) RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if name, ok := a.UserFromRequest(r); ok {
			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), name)))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"success":false,"code":"UNAUTHORIZED","error":"` + NotRegisteredMessage + `"}`))
	})
}

// WithUser returns a context carrying username
func WithUser(ctx context.Context, username string) context.Context {
	return context.WithValue(ctx, contextKey{}, username)
}

// UserFromContext returns the username set by RequireUser
func UserFromContext(ctx context.Context) string {
	name, _ := ctx.Value(contextKey{}).(string)
	return name
}
